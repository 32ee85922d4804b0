// Package goroutine runs fire-and-forget work on a bounded pool that can be
// drained at shutdown.
package goroutine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/shandysiswandi/gotwofa/internal/pkg/stacktrace"
	"go.uber.org/atomic"
)

// DefaultMaxGoroutine is used when NewManager receives a non-positive limit.
const DefaultMaxGoroutine int = 100

// ErrPanic wraps a value recovered from a task.
var ErrPanic = errors.New("goroutine: task panicked")

// Manager runs functions in goroutines with a concurrency limit. Tasks that
// do not fit are dropped rather than queued, and Wait closes the manager.
type Manager struct {
	wg   sync.WaitGroup
	sema chan struct{}

	stateMu sync.RWMutex
	closed  bool

	errMu sync.Mutex
	errs  []error

	running *atomic.Int64
	dropped *atomic.Int64
}

// Stats is a point-in-time view of the manager counters.
type Stats struct {
	Running int64
	Dropped int64
}

// NewManager creates a new Manager with the provided maximum concurrency.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU() * DefaultMaxGoroutine
	}

	return &Manager{
		sema:    make(chan struct{}, maxGoroutine),
		running: atomic.NewInt64(0),
		dropped: atomic.NewInt64(0),
	}
}

// Go schedules f and reports whether it was accepted. A task is refused when
// the manager is closed or every slot is busy.
func (g *Manager) Go(ctx context.Context, f func(ctx context.Context) error) bool {
	if g == nil {
		return false
	}

	g.stateMu.RLock()
	defer g.stateMu.RUnlock()

	if g.closed {
		g.dropped.Inc()
		slog.WarnContext(ctx, "goroutine manager is closed, task dropped")
		return false
	}

	select {
	case g.sema <- struct{}{}:
	default:
		g.dropped.Inc()
		slog.WarnContext(ctx, "maximum goroutine limit reached, task dropped", "limit", cap(g.sema))
		return false
	}

	g.running.Inc()
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer g.running.Dec()
		defer func() { <-g.sema }()

		g.record(g.run(ctx, f))
	}()

	return true
}

func (g *Manager) run(ctx context.Context, f func(ctx context.Context) error) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			stack := debug.Stack()
			slog.ErrorContext(ctx, "panic occurred in goroutine", "because", rvr, "stack", stacktrace.InternalFrames(stack))
			err = fmt.Errorf("%w: %v", ErrPanic, rvr)
		}
	}()

	if err := ctx.Err(); err != nil {
		slog.WarnContext(ctx, "goroutine canceled before start", "because", err)
		return nil
	}

	return f(ctx)
}

func (g *Manager) record(err error) {
	if err == nil {
		return
	}
	g.errMu.Lock()
	g.errs = append(g.errs, err)
	g.errMu.Unlock()
}

// Stats returns the current counters.
func (g *Manager) Stats() Stats {
	if g == nil {
		return Stats{}
	}
	return Stats{Running: g.running.Load(), Dropped: g.dropped.Load()}
}

// Wait closes the manager, blocks until all accepted tasks finish and returns
// their joined errors.
func (g *Manager) Wait() error {
	if g == nil {
		return nil
	}

	g.stateMu.Lock()
	g.closed = true
	g.stateMu.Unlock()

	g.wg.Wait()

	g.errMu.Lock()
	defer g.errMu.Unlock()
	return errors.Join(g.errs...)
}
