// Package status carries the single user-visible status text of a
// submission. The submitter writes it; terminals and tests read it.
package status

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/term"
)

// Display is the status text handle a submission writes to.
type Display interface {
	Set(text string)
	Text() string
}

// Line renders the status on a terminal. On a TTY the text is redrawn in
// place on one line; elsewhere every non-empty update is printed on its own
// line so logs stay readable.
type Line struct {
	mu      sync.Mutex
	out     io.Writer
	inPlace bool
	text    string
	width   int
}

// NewLine returns a Line writing to out. In-place redraw is enabled when out
// is a terminal.
func NewLine(out io.Writer) *Line {
	inPlace := false
	if f, ok := out.(*os.File); ok {
		inPlace = term.IsTerminal(int(f.Fd()))
	}
	return &Line{out: out, inPlace: inPlace}
}

// NewPlainLine returns a Line that never redraws in place.
func NewPlainLine(out io.Writer) *Line {
	return &Line{out: out}
}

// Set replaces the status text.
func (l *Line) Set(text string) {
	text = strings.ReplaceAll(text, "\n", " ")

	l.mu.Lock()
	defer l.mu.Unlock()
	if text == l.text {
		return
	}
	l.text = text

	if !l.inPlace {
		if text != "" {
			fmt.Fprintln(l.out, text)
		}
		return
	}

	pad := l.width - utf8.RuneCountInString(text)
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(l.out, "\r%s%s\r", text, strings.Repeat(" ", pad))
	l.width = utf8.RuneCountInString(text)
}

// Text returns the current status text.
func (l *Line) Text() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.text
}

// Finish moves the cursor past an in-place status line so later output does
// not overwrite it.
func (l *Line) Finish() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inPlace && l.width > 0 {
		fmt.Fprintln(l.out)
		l.width = 0
	}
}

// Recorder keeps the status in memory together with every text it was set
// to.
type Recorder struct {
	mu      sync.Mutex
	text    string
	history []string
}

// Set records text as the current status.
func (r *Recorder) Set(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.text = text
	r.history = append(r.history, text)
}

// Text returns the current status.
func (r *Recorder) Text() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.text
}

// History returns every status set so far, oldest first.
func (r *Recorder) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.history...)
}

// Discard is a Display that keeps the text and prints nothing.
type Discard struct {
	mu   sync.Mutex
	text string
}

func (d *Discard) Set(text string) {
	d.mu.Lock()
	d.text = text
	d.mu.Unlock()
}

func (d *Discard) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text
}
