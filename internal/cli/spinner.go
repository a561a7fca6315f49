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

// spinnerShowElapsed is how long a step runs before the spinner shows its
// elapsed time.
const spinnerShowElapsed = time.Second

// Spinner draws a progress line while a command works. The message can change
// between steps; it stops on its own when ctx is canceled.
type Spinner struct {
	w       io.Writer
	ctx     context.Context
	stop    context.CancelFunc
	stopped chan struct{}
	once    sync.Once

	mu      sync.Mutex
	message string
	since   time.Time
	width   int
	started bool
}

func newSpinner(ctx context.Context, w io.Writer, message string) *Spinner {
	ctx, stop := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		ctx:     ctx,
		stop:    stop,
		stopped: make(chan struct{}),
		message: message,
		since:   time.Now(),
	}
}

// SetMessage switches to the next step and restarts the elapsed clock.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.since = time.Now()
	s.mu.Unlock()
}

// Start begins drawing on a background goroutine.
func (s *Spinner) Start() {
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clear()
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text := s.message
	if elapsed := time.Since(s.since); elapsed >= spinnerShowElapsed {
		text += fmt.Sprintf(" (%ds)", int(elapsed.Seconds()))
	}
	s.width = max(s.width, len(text)+2)
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(text))
}

func (s *Spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
	}
}

// Stop ends the animation and clears the line. It is safe to call more than
// once, and before Start.
func (s *Spinner) Stop() {
	s.once.Do(s.stop)
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if started {
		<-s.stopped
	}
}
