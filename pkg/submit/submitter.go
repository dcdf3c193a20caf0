package submit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-formpost/pkg/download"
	"github.com/goliatone/go-formpost/pkg/model"
	"github.com/goliatone/go-formpost/pkg/notify"
	"github.com/goliatone/go-formpost/pkg/status"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Request is one form submission.
type Request struct {
	Form   model.FormModel
	Values model.Values
}

// Result describes a saved response payload.
type Result struct {
	Path      string
	Size      int64
	RequestID string
}

// Submitter posts forms and saves what the server sends back. Every handle it
// writes to is passed in explicitly; a Submitter holds no per-call state and
// may run several submissions at once. Overlapping submissions are neither
// cancelled nor queued.
type Submitter struct {
	client     *http.Client
	timeout    time.Duration
	status     status.Display
	notifier   notify.Notifier
	saver      download.Saver
	logger     *zap.Logger
	filename   string
	working    string
	completion func(Result) string
	requestID  func() string
}

// New returns a Submitter. Without options it saves into the working
// directory, prints alerts to stderr and keeps the status in memory.
func New(options ...Option) *Submitter {
	s := &Submitter{
		client:     newHTTPClient(),
		status:     &status.Discard{},
		notifier:   notify.NewWriter(os.Stderr, ""),
		logger:     zap.NewNop(),
		filename:   DefaultFilename,
		working:    DefaultWorkingMessage,
		completion: DefaultCompletionMessage,
		requestID:  uuid.NewString,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.saver == nil {
		s.saver = download.NewFileSaver(".", false, s.logger)
	}
	return s
}

// Status returns the display Submit writes to.
func (s *Submitter) Status() status.Display {
	return s.status
}

// Submit posts the form values to the form action and saves a successful
// response under the configured filename.
//
// Failures are terminal: the status is cleared, the notifier receives the
// user-facing message and the error is returned as *ServerError,
// *TransportError or *SaveError. Nothing is retried.
func (s *Submitter) Submit(ctx context.Context, req Request) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("submit: context is required")
	}
	action := strings.TrimSpace(req.Form.Action)
	if action == "" {
		return Result{}, ErrActionRequired
	}

	requestID := s.requestID()
	log := s.logger.With(zap.String("request_id", requestID), zap.String("action", action))

	s.status.Set(s.working)

	body, contentType, err := model.Encode(req.Form, req.Values)
	if err != nil {
		return Result{}, s.fail(ctx, log, fmt.Errorf("submit: build body: %w", err))
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, action, body)
	if err != nil {
		return Result{}, s.fail(ctx, log, fmt.Errorf("submit: build request: %w", err))
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("X-Request-ID", requestID)

	log.Debug("posting form", zap.Int("bytes", body.Len()))
	resp, err := s.client.Do(httpReq)
	if err != nil {
		return Result{}, s.fail(ctx, log, &TransportError{Err: err})
	}
	defer resp.Body.Close()

	log = log.With(zap.Int("status", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, s.fail(ctx, log, &ServerError{
			StatusCode: resp.StatusCode,
			Detail:     readDetail(resp.Body),
		})
	}

	return s.save(ctx, log, requestID, resp.Body)
}

func (s *Submitter) save(ctx context.Context, log *zap.Logger, requestID string, body io.Reader) (Result, error) {
	blob, err := s.saver.Acquire(body)
	if err != nil {
		var readErr *download.ReadError
		if errors.As(err, &readErr) {
			return Result{}, s.fail(ctx, log, &TransportError{Err: readErr.Err})
		}
		return Result{}, s.fail(ctx, log, &SaveError{Err: err})
	}

	path, err := s.trigger(ctx, log, blob)
	if err != nil {
		return Result{}, s.fail(ctx, log, &SaveError{Err: err})
	}

	res := Result{Path: path, Size: blob.Size, RequestID: requestID}
	s.status.Set(s.completion(res))
	log.Info("response saved", zap.String("path", path), zap.Int64("bytes", blob.Size))
	return res, nil
}

// trigger saves the blob and releases it as soon as the save returns, on
// every path.
func (s *Submitter) trigger(ctx context.Context, log *zap.Logger, blob *download.Blob) (string, error) {
	defer func() {
		if err := s.saver.Release(blob); err != nil {
			log.Warn("release temporary payload", zap.String("path", blob.Path), zap.Error(err))
		}
	}()
	return s.saver.Trigger(ctx, blob, s.filename)
}

func (s *Submitter) fail(ctx context.Context, log *zap.Logger, err error) error {
	s.status.Set("")
	log.Info("submission failed", zap.Error(err))
	if alertErr := s.notifier.Alert(context.WithoutCancel(ctx), MessageOf(err)); alertErr != nil {
		log.Error("alert failed", zap.Error(alertErr))
	}
	return err
}
