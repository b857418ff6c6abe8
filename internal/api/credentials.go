package api

import "context"

// Credentials are attached to a single call through its context. The client
// itself never stores a token.
type Credentials struct {
	Token string
}

func (c Credentials) Present() bool { return c.Token != "" }

type credentialsKey struct{}

func WithCredentials(ctx context.Context, c Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, c)
}

func CredentialsFrom(ctx context.Context) (Credentials, bool) {
	c, ok := ctx.Value(credentialsKey{}).(Credentials)
	return c, ok && c.Present()
}

type endpointKey struct{}

func withEndpoint(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, endpointKey{}, name)
}

func endpointFrom(ctx context.Context) string {
	if name, ok := ctx.Value(endpointKey{}).(string); ok {
		return name
	}
	return "unknown"
}
