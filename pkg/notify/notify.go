// Package notify presents blocking messages to the user, the terminal
// counterpart of a browser alert box.
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Notifier presents msg and returns once the user has been told. Interactive
// implementations block until the message is acknowledged.
type Notifier interface {
	Alert(ctx context.Context, msg string) error
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, msg string) error

func (f Func) Alert(ctx context.Context, msg string) error {
	return f(ctx, msg)
}

// Writer prints alerts to an io.Writer, usually stderr. It never blocks on
// the user.
type Writer struct {
	mu     sync.Mutex
	out    io.Writer
	prefix string
}

// NewWriter returns a Writer printing each alert as "<prefix><msg>".
func NewWriter(out io.Writer, prefix string) *Writer {
	return &Writer{out: out, prefix: prefix}
}

func (w *Writer) Alert(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := fmt.Fprintln(w.out, w.prefix+msg)
	return err
}

// Acknowledger shows a message and waits for the user to dismiss it.
type Acknowledger interface {
	Acknowledge(ctx context.Context, msg string) error
}

// Prompt is the interactive Notifier. It blocks until the user acknowledges
// the message through the prompt driver.
type Prompt struct {
	driver Acknowledger
}

// NewPrompt wraps an Acknowledger, typically a prompt.Driver.
func NewPrompt(driver Acknowledger) *Prompt {
	return &Prompt{driver: driver}
}

func (p *Prompt) Alert(ctx context.Context, msg string) error {
	return p.driver.Acknowledge(ctx, msg)
}

// Recorder stores alerts in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *Recorder) Alert(_ context.Context, msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return nil
}

// Messages returns every alert received, oldest first.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

// Last returns the most recent alert, or "".
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return ""
	}
	return r.messages[len(r.messages)-1]
}
