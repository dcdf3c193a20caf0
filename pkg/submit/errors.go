package submit

import (
	"errors"
	"fmt"
	"net/url"
)

var (
	// ErrActionRequired is returned when the form carries no action URL.
	ErrActionRequired = errors.New("submit: action is required")
	// ErrUnhealthy is returned by Ping when the service answers without
	// reporting itself as ok.
	ErrUnhealthy = errors.New("submit: service reported unhealthy")
)

// Messenger is implemented by every error Submit surfaces to the user.
// Message returns the text shown in the notification.
type Messenger interface {
	error
	Message() string
}

// ServerError is a non-success HTTP answer.
type ServerError struct {
	StatusCode int
	Detail     string
}

// Message returns the detail reported by the server, or a generic text that
// embeds the status code.
func (e *ServerError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("Server error (%d)", e.StatusCode)
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("submit: server answered %d: %s", e.StatusCode, e.Message())
}

// TransportError means the request could not be sent or its response could
// not be read.
type TransportError struct {
	Err error
}

// Message returns "Network error: <detail>".
func (e *TransportError) Message() string {
	return "Network error: " + transportDetail(e.Err)
}

func (e *TransportError) Error() string {
	return "submit: network error: " + transportDetail(e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// SaveError means the payload arrived but could not be written under its
// final name.
type SaveError struct {
	Err error
}

// Message returns "Save failed: <detail>".
func (e *SaveError) Message() string {
	detail := "unknown error"
	if e.Err != nil {
		detail = e.Err.Error()
	}
	return "Save failed: " + detail
}

func (e *SaveError) Error() string {
	detail := "unknown error"
	if e.Err != nil {
		detail = e.Err.Error()
	}
	return "submit: save failed: " + detail
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// MessageOf returns the user-facing text for err: the Message of a surfaced
// error anywhere in the chain, otherwise err's own text.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var m Messenger
	if errors.As(err, &m) {
		return m.Message()
	}
	return err.Error()
}

// transportDetail strips the "Post \"<url>\": " envelope net/http puts around
// round trip failures so the underlying reason is what the user reads.
func transportDetail(err error) string {
	if err == nil {
		return "unknown error"
	}
	for {
		var urlErr *url.Error
		if !errors.As(err, &urlErr) || urlErr.Err == nil {
			break
		}
		err = urlErr.Err
	}
	return err.Error()
}
