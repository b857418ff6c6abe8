package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/binhbb2204/RateMyProf-Group13/pkg/models"
)

// Login exchanges an email and password for a bearer token.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (Credentials, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := c.validate.Struct(req); err != nil {
		return Credentials{}, &FetchError{Op: "login", Detail: "a valid email and a password are required", Err: err}
	}

	var tok models.TokenResponse
	if err := c.sendJSON(ctx, "login", http.MethodPost, "/auth/login", req, &tok); err != nil {
		return Credentials{}, fetchError("login", err)
	}
	if tok.AccessToken == "" {
		return Credentials{}, &FetchError{Op: "login", Err: errors.Join(ErrMalformedResponse, errors.New("empty access token"))}
	}
	return Credentials{Token: tok.AccessToken}, nil
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (models.UserOut, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := c.validate.Struct(req); err != nil {
		return models.UserOut{}, &FetchError{Op: "register", Detail: "a valid email and a password of at least 6 characters are required", Err: err}
	}

	var user models.UserOut
	if err := c.sendJSON(ctx, "register", http.MethodPost, "/auth/register", req, &user); err != nil {
		return models.UserOut{}, fetchError("register", err)
	}
	return user, nil
}
