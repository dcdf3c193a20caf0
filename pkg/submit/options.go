package submit

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goliatone/go-formpost/pkg/download"
	"github.com/goliatone/go-formpost/pkg/notify"
	"github.com/goliatone/go-formpost/pkg/status"
	"go.uber.org/zap"
)

const (
	// DefaultFilename is the name the generated file is saved under.
	DefaultFilename = "generated.pptx"
	// DefaultWorkingMessage is shown while the request is in flight.
	DefaultWorkingMessage = "Generating… this can take a moment depending on your model."
	// MaxRedirects caps how many redirects a submission follows.
	MaxRedirects = 10
)

var errTooManyRedirects = errors.New("submit: stopped after 10 redirects")

// DefaultCompletionMessage renders the status shown after a successful save.
func DefaultCompletionMessage(res Result) string {
	return "Done! Saved to " + res.Path
}

// Option customises a Submitter.
type Option func(*Submitter)

// WithHTTPClient replaces the HTTP client. Its redirect policy is kept as is.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Submitter) {
		if client != nil {
			s.client = client
		}
	}
}

// WithTimeout bounds each submission, response body included. Zero disables
// the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Submitter) {
		s.timeout = timeout
	}
}

// WithStatus sets the status display updated by Submit.
func WithStatus(display status.Display) Option {
	return func(s *Submitter) {
		if display != nil {
			s.status = display
		}
	}
}

// WithNotifier sets where failures are presented.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Submitter) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithSaver sets how successful payloads are saved.
func WithSaver(saver download.Saver) Option {
	return func(s *Submitter) {
		if saver != nil {
			s.saver = saver
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Submitter) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFilename overrides the suggested filename.
func WithFilename(name string) Option {
	return func(s *Submitter) {
		if name != "" {
			s.filename = name
		}
	}
}

// WithWorkingMessage overrides the in-progress status text.
func WithWorkingMessage(msg string) Option {
	return func(s *Submitter) {
		s.working = msg
	}
}

// WithCompletionMessage overrides how the completion status is rendered.
func WithCompletionMessage(fn func(Result) string) Option {
	return func(s *Submitter) {
		if fn != nil {
			s.completion = fn
		}
	}
}

// WithRequestIDs overrides the generator for X-Request-ID values.
func WithRequestIDs(next func() string) Option {
	return func(s *Submitter) {
		if next != nil {
			s.requestID = next
		}
	}
}

func newHTTPClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= MaxRedirects {
				return fmt.Errorf("%w (last %s)", errTooManyRedirects, req.URL.Redacted())
			}
			return nil
		},
	}
}
