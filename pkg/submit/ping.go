package submit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

type healthBody struct {
	OK bool `json:"ok"`
}

// Ping calls a health endpoint and expects {"ok": true}. It neither touches
// the status display nor alerts; callers report the outcome themselves.
func (s *Submitter) Ping(ctx context.Context, target string) error {
	if target == "" {
		return ErrActionRequired
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("submit: build health request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", s.requestID())

	resp, err := s.client.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServerError{StatusCode: resp.StatusCode, Detail: readDetail(resp.Body)}
	}

	var body healthBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&body); err != nil {
		return fmt.Errorf("%w: %v", ErrUnhealthy, err)
	}
	if !body.OK {
		return ErrUnhealthy
	}
	s.logger.Debug("service healthy", zap.String("action", target))
	return nil
}
