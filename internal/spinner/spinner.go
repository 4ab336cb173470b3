// Package spinner draws a one-line progress indicator for long subgroup
// sweeps on an interactive stderr.
package spinner

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/term"
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const interval = 80 * time.Millisecond

// Spinner counts finished work items while animating on its writer.
// A nil *Spinner is valid and does nothing.
type Spinner struct {
	w     io.Writer
	label string
	total int
	done  atomic.Int64

	stopOnce sync.Once
	stopped  chan struct{}
	cleared  chan struct{}
	width    int
}

// Start animates "label done/total" on w until Stop is called.
func Start(w io.Writer, label string, total int) *Spinner {
	s := &Spinner{
		w:       w,
		label:   label,
		total:   total,
		stopped: make(chan struct{}),
		cleared: make(chan struct{}),
	}
	go s.run()
	return s
}

// StartIfTerminal is Start when f is a terminal and nil otherwise, so piped
// or redirected output never carries control characters.
func StartIfTerminal(f *os.File, label string, total int) *Spinner {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return nil
	}
	return Start(f, label, total)
}

// Advance records one finished item. Safe for concurrent use.
func (s *Spinner) Advance() {
	if s == nil {
		return
	}
	s.done.Add(1)
}

// Stop halts the animation and clears the line. Calling it more than once
// is fine.
func (s *Spinner) Stop() {
	if s == nil {
		return
	}
	s.stopOnce.Do(func() { close(s.stopped) })
	<-s.cleared
}

func (s *Spinner) frame(i int) string {
	return fmt.Sprintf("%s %s %d/%d", frames[i%len(frames)], s.label, s.done.Load(), s.total)
}

func (s *Spinner) run() {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for i := 0; ; i++ {
		select {
		case <-s.stopped:
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width)) //nolint:errcheck
			close(s.cleared)
			return
		case <-ticker.C:
			line := s.frame(i)
			if n := len(line); n > s.width {
				s.width = n
			}
			fmt.Fprintf(s.w, "\r%s", line) //nolint:errcheck
		}
	}
}
