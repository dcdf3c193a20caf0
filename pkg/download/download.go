// Package download turns a response payload into a saved file. The payload
// is first held in a temporary file (the blob), then copied under its final
// name, and the temporary file is released whatever the outcome.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ErrInvalidFilename is returned when the suggested filename has no usable
// base name.
var ErrInvalidFilename = errors.New("download: invalid filename")

// Saver acquires, saves and releases binary payloads.
type Saver interface {
	Acquire(r io.Reader) (*Blob, error)
	Trigger(ctx context.Context, blob *Blob, filename string) (string, error)
	Release(blob *Blob) error
}

// Blob is a temporary, locally resolvable copy of a payload.
type Blob struct {
	Path string
	Size int64

	mu       sync.Mutex
	released bool
}

// Released reports whether Release has run for the blob.
func (b *Blob) Released() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.released
}

// ReadError marks a failure reading the payload source, as opposed to a
// failure writing the temporary file.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	return "download: read payload: " + e.Err.Error()
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// FileSaver saves payloads into Dir.
type FileSaver struct {
	Dir       string
	Overwrite bool
	Logger    *zap.Logger
}

// NewFileSaver returns a FileSaver for dir ("." when empty).
func NewFileSaver(dir string, overwrite bool, logger *zap.Logger) *FileSaver {
	if dir == "" {
		dir = "."
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSaver{Dir: dir, Overwrite: overwrite, Logger: logger}
}

var _ Saver = (*FileSaver)(nil)

// Acquire streams r into a hidden temporary file inside Dir.
func (s *FileSaver) Acquire(r io.Reader) (*Blob, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("download: create %s: %w", s.Dir, err)
	}
	tmp, err := os.CreateTemp(s.Dir, ".formpost-*.part")
	if err != nil {
		return nil, fmt.Errorf("download: create temporary file: %w", err)
	}

	src := &trackingReader{r: r}
	size, copyErr := io.Copy(tmp, src)
	closeErr := tmp.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = os.Remove(tmp.Name())
		if src.err != nil {
			return nil, &ReadError{Err: src.err}
		}
		return nil, fmt.Errorf("download: write temporary file: %w", copyErr)
	}

	s.logger().Debug("payload acquired", zap.String("path", tmp.Name()), zap.Int64("bytes", size))
	return &Blob{Path: tmp.Name(), Size: size}, nil
}

// Trigger copies the blob to filename inside Dir and returns the final path.
// Without Overwrite an existing file is kept and the new one is suffixed
// " (1)", " (2)", ... before the extension.
func (s *FileSaver) Trigger(ctx context.Context, blob *Blob, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if blob == nil || blob.Released() {
		return "", errors.New("download: blob is not available")
	}
	name, err := cleanFilename(filename)
	if err != nil {
		return "", err
	}

	src, err := os.Open(blob.Path)
	if err != nil {
		return "", fmt.Errorf("download: open blob: %w", err)
	}
	defer src.Close()

	dst, target, err := s.createTarget(name)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("download: write %s: %w", target, err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("download: write %s: %w", target, err)
	}

	s.logger().Debug("payload saved", zap.String("path", target), zap.Int64("bytes", blob.Size))
	return target, nil
}

// Release removes the blob's temporary file. Releasing twice is a no-op.
func (s *FileSaver) Release(blob *Blob) error {
	if blob == nil {
		return nil
	}
	blob.mu.Lock()
	defer blob.mu.Unlock()
	if blob.released {
		return nil
	}
	blob.released = true
	if err := os.Remove(blob.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("download: release blob: %w", err)
	}
	s.logger().Debug("payload released", zap.String("path", blob.Path))
	return nil
}

const maxSuffix = 1000

func (s *FileSaver) createTarget(name string) (*os.File, string, error) {
	target := filepath.Join(s.Dir, name)
	if s.Overwrite {
		f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, "", fmt.Errorf("download: create %s: %w", target, err)
		}
		return f, target, nil
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; i < maxSuffix; i++ {
		candidate := target
		if i > 0 {
			candidate = filepath.Join(s.Dir, fmt.Sprintf("%s (%d)%s", stem, i, ext))
		}
		f, err := os.OpenFile(candidate, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, candidate, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", fmt.Errorf("download: create %s: %w", candidate, err)
		}
	}
	return nil, "", fmt.Errorf("download: no free name for %s in %s", name, s.Dir)
}

func (s *FileSaver) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func cleanFilename(filename string) (string, error) {
	name := filepath.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	if name == "." || name == "/" || name == ".." || name == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}
	return name, nil
}

type trackingReader struct {
	r   io.Reader
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		t.err = err
	}
	return n, err
}
