package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// dialSpinner shows progress while a network store is dialed:
//
//	⠹ Connecting to redis at localhost:6379 (attempt 2/3, 4s)
//
// The attempt counter appears once a retry starts and the elapsed time once
// a second has passed. The spinner stops by itself when ctx ends.
type dialSpinner struct {
	target   string
	attempts int
	w        io.Writer
	ctx      context.Context
	cancel   context.CancelFunc
	began    time.Time
	done     chan struct{}
	stopped  chan struct{}

	mu      sync.Mutex
	attempt int
	width   int // visible width of the last line drawn
}

func newDialSpinner(ctx context.Context, w io.Writer, target string, attempts int) *dialSpinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &dialSpinner{
		target:   target,
		attempts: attempts,
		w:        w,
		ctx:      spinnerCtx,
		cancel:   cancel,
		began:    time.Now(),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		attempt:  1,
	}
}

// Start begins drawing. Stop or Finish must follow.
func (s *dialSpinner) Start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

// Attempt records that dial attempt n has started.
func (s *dialSpinner) Attempt(n int) {
	s.mu.Lock()
	s.attempt = n
	s.mu.Unlock()
}

func (s *dialSpinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.status(time.Since(s.began))
	s.width = max(s.width, len(msg)+2)
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(msg))
}

// status is the text after the spinner frame. s.mu must be held.
func (s *dialSpinner) status(elapsed time.Duration) string {
	var extra []string
	if s.attempt > 1 {
		extra = append(extra, fmt.Sprintf("attempt %d/%d", s.attempt, s.attempts))
	}
	if elapsed >= time.Second {
		extra = append(extra, elapsed.Truncate(time.Second).String())
	}
	msg := "Connecting to " + s.target
	if len(extra) > 0 {
		msg += " (" + strings.Join(extra, ", ") + ")"
	}
	return msg
}

// Stop stops drawing and clears the line. It is safe to call more than once.
func (s *dialSpinner) Stop() {
	s.mu.Lock()
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	s.mu.Unlock()
	<-s.stopped
	s.cancel()
	s.clearLine()
}

// Finish stops the spinner and reports the outcome of the dial. A dial
// that succeeds first time leaves no trace; retries and failures leave
// one line.
func (s *dialSpinner) Finish(err error) {
	cancelled := s.Cancelled()
	s.Stop()

	s.mu.Lock()
	attempt := s.attempt
	s.mu.Unlock()
	elapsed := time.Since(s.began).Truncate(time.Millisecond)

	switch {
	case err == nil && attempt > 1:
		printSuccess(s.w, "Connected to %s after %d attempts", s.target, attempt)
	case err == nil:
	case cancelled:
		printError(s.w, "Gave up on %s after %s", s.target, elapsed)
	default:
		printError(s.w, "Could not reach %s (%d of %d attempts)", s.target, attempt, s.attempts)
	}
}

func (s *dialSpinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width == 0 {
		return
	}
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
	s.width = 0
}

// Cancelled reports whether the spinner's context ended before Stop.
func (s *dialSpinner) Cancelled() bool {
	select {
	case <-s.done:
		return false
	default:
		return s.ctx.Err() != nil
	}
}
