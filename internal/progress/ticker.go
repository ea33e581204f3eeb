// Package progress prints a row of dots while the runner waits on a build.
package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
)

const (
	DefaultChar      = "."
	DefaultStep      = time.Second
	DefaultLineWidth = 60
)

// Ticker writes Char every Step and breaks the line after LineWidth ticks.
type Ticker struct {
	w         io.Writer
	char      string
	step      time.Duration
	lineWidth int
	clock     clockwork.Clock

	mu      sync.Mutex
	sched   gocron.Scheduler
	col     int
	running bool
}

// Option configures a Ticker.
type Option func(*Ticker)

// WithChar sets the tick character. An empty string disables output entirely.
func WithChar(c string) Option { return func(t *Ticker) { t.char = c } }

func WithStep(d time.Duration) Option {
	return func(t *Ticker) {
		if d > 0 {
			t.step = d
		}
	}
}

func WithLineWidth(n int) Option {
	return func(t *Ticker) {
		if n > 0 {
			t.lineWidth = n
		}
	}
}

// WithClock drives the scheduler from c.
func WithClock(c clockwork.Clock) Option {
	return func(t *Ticker) {
		if c != nil {
			t.clock = c
		}
	}
}

// New returns a stopped ticker writing to w.
func New(w io.Writer, opts ...Option) *Ticker {
	t := &Ticker{
		w:         w,
		char:      DefaultChar,
		step:      DefaultStep,
		lineWidth: DefaultLineWidth,
		clock:     clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start begins ticking, the first tick is written immediately. Starting a running ticker is a no-op.
func (t *Ticker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running || t.char == "" || t.w == nil {
		return nil
	}

	s, err := gocron.NewScheduler(gocron.WithClock(t.clock))
	if err != nil {
		return fmt.Errorf("failed to create progress scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(t.step),
		gocron.NewTask(t.tick),
		gocron.WithName("progress"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = s.Shutdown()
		return fmt.Errorf("failed to schedule progress ticks: %w", err)
	}
	t.sched = s
	t.running = true
	s.Start()
	return nil
}

// Stop halts ticking and ends a partially written line. Stopping a ticker that is not running is a no-op.
func (t *Ticker) Stop() error {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return nil
	}
	s := t.sched
	t.running = false
	t.sched = nil
	t.mu.Unlock()

	// Shutdown waits for an in-flight tick, which needs the lock.
	err := s.Shutdown()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.col > 0 {
		_, _ = io.WriteString(t.w, "\n")
		t.col = 0
	}
	if err != nil {
		return fmt.Errorf("failed to stop progress scheduler: %w", err)
	}
	return nil
}

func (t *Ticker) tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	var b strings.Builder
	b.WriteString(t.char)
	t.col++
	if t.col >= t.lineWidth {
		b.WriteString("\n")
		t.col = 0
	}
	_, _ = io.WriteString(t.w, b.String())
}
