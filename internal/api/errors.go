package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrNotFound          = errors.New("not found")
	ErrInvalidSubmission = errors.New("invalid rating")
	ErrUnexpectedStatus  = errors.New("unexpected status")
	ErrMalformedResponse = errors.New("malformed response")
)

// FetchError is returned by every read operation. Status is zero when the
// request never got a response.
type FetchError struct {
	Op     string
	Status int
	Detail string
	Err    error
}

func (e *FetchError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Status != 0 {
		fmt.Fprintf(&b, ": HTTP %d", e.Status)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *FetchError) Unwrap() error { return e.Err }

// UserMessage is the short text shown next to a failed view.
func (e *FetchError) UserMessage() string {
	switch {
	case errors.Is(e.Err, ErrNotFound):
		return "Not found or failed to load."
	case e.Status == 0:
		return "Could not reach the server. Check your connection and try again."
	case e.Detail != "":
		return e.Detail
	default:
		return "Something went wrong while loading data."
	}
}

// SubmissionError is returned when a rating could not be created.
type SubmissionError struct {
	ProfessorID int
	Status      int
	Detail      string
	Err         error
}

func (e *SubmissionError) Error() string {
	msg := fmt.Sprintf("submit rating for professor %d", e.ProfessorID)
	if e.Status != 0 {
		msg += fmt.Sprintf(": HTTP %d", e.Status)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// UserMessage prefers the server's detail and falls back to a generic text.
func (e *SubmissionError) UserMessage() string {
	if e.Detail != "" {
		return e.Detail
	}
	if errors.Is(e.Err, ErrNotAuthenticated) {
		return "You need to log in before rating."
	}
	return "Could not submit your rating. Please try again."
}

// statusError carries a non-2xx answer up to the operation that wraps it.
type statusError struct {
	status int
	detail string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.status, e.detail)
}

func classify(status int) error {
	switch status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrNotAuthenticated
	default:
		return ErrUnexpectedStatus
	}
}

func fetchError(op string, err error) error {
	var se *statusError
	if errors.As(err, &se) {
		return &FetchError{Op: op, Status: se.status, Detail: se.detail, Err: classify(se.status)}
	}
	return &FetchError{Op: op, Err: err}
}

// detailFromBody pulls a human message out of an error body. FastAPI style
// {"detail": "..."} and {"detail": [{"msg": "..."}]} as well as
// {"error": "..."} are understood.
func detailFromBody(body []byte) string {
	var payload struct {
		Detail any    `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	switch d := payload.Detail.(type) {
	case string:
		return d
	case []any:
		msgs := make([]string, 0, len(d))
		for _, item := range d {
			if m, ok := item.(map[string]any); ok {
				if s, ok := m["msg"].(string); ok {
					msgs = append(msgs, s)
				}
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return payload.Error
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Field() {
		case "Stars":
			msgs = append(msgs, "stars must be between 1 and 5")
		case "Comment":
			msgs = append(msgs, "comment must be at most "+fe.Param()+" characters")
		default:
			msgs = append(msgs, strings.ToLower(fe.Field())+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}
