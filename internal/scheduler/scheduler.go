// Package scheduler drives a function at a fixed interval without ever
// overlapping two calls.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrAlreadyRunning = errors.New("scheduler already running")
var ErrInvalidInterval = errors.New("interval must be positive")

type TickFunc func(ctx context.Context)

// Scheduler runs one tick per interval on a single goroutine. The timer is
// re-armed only after the tick returns, so a slow tick delays the next one
// instead of stacking up behind it.
type Scheduler struct {
	interval time.Duration
	tick     TickFunc
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(interval time.Duration, tick TickFunc, logger *zap.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		interval: interval,
		tick:     tick,
		logger:   logger,
	}, nil
}

// Start begins ticking until Stop is called or ctx is cancelled. It may be
// called again after Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(ctx, s.done)
	s.logger.Debug("scheduler started", zap.Duration("interval", s.interval))
	return nil
}

// Stop halts ticking and waits for an in-flight tick to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	done := s.done
	s.mu.Unlock()

	<-done
	s.logger.Debug("scheduler stopped")
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(done)
	}()

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.tick(ctx)
			timer.Reset(s.interval)
		}
	}
}
