// Package runloop provides the single execution context that owns the
// playback engine. Every engine mutation is funneled through one
// goroutine, giving a total order over mutations without any locking on
// the engine handle itself.
package runloop

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned when a synchronous task is submitted to a loop
// that has shut down. The task was not applied.
var ErrClosed = errors.New("runloop: loop closed")

const taskBufferSize = 16

// Loop runs submitted tasks one at a time, in submission order, on a
// dedicated goroutine. Tasks may be submitted from any goroutine.
type Loop struct {
	log   *slog.Logger
	tasks chan task
	quit  chan struct{}
	done  chan struct{}
	gid   atomic.Uint64

	closeOnce sync.Once
}

type task struct {
	fn   func() error
	errc chan error // nil for fire-and-forget tasks
}

// New starts the loop goroutine and returns a handle to it.
func New(log *slog.Logger) *Loop {
	l := &Loop{
		log:   log,
		tasks: make(chan task, taskBufferSize),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	started := make(chan struct{})
	go l.run(started)
	<-started
	return l
}

func (l *Loop) run(started chan<- struct{}) {
	defer close(l.done)
	l.gid.Store(goroutineID())
	close(started)
	for {
		select {
		case <-l.quit:
			// Drain whatever was already queued so that a posted
			// teardown still runs, then exit.
			for {
				select {
				case t := <-l.tasks:
					l.execute(t)
				default:
					return
				}
			}
		case t := <-l.tasks:
			l.execute(t)
		}
	}
}

func (l *Loop) execute(t task) {
	err := l.protect(t.fn)
	if t.errc != nil {
		t.errc <- err
		return
	}
	if err != nil {
		l.log.Error("fire-and-forget task failed", "error", err)
	}
}

// protect converts a panic inside fn into an error so a single bad
// command cannot take down the loop.
func (l *Loop) protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("runloop: task panicked: %v", r)
		}
	}()
	return fn()
}

// Run executes fn on the loop goroutine and blocks until it completes,
// returning whatever fn returned. When the caller already is the loop
// goroutine, fn runs inline; without that fast path a nested Run would
// deadlock waiting on the queue it is currently draining.
func (l *Loop) Run(fn func() error) error {
	if l.IsCurrent() {
		return l.protect(fn)
	}
	errc := make(chan error, 1)
	select {
	case l.tasks <- task{fn: fn, errc: errc}:
	case <-l.done:
		return ErrClosed
	}
	select {
	case err := <-errc:
		return err
	case <-l.done:
		// The loop may have executed fn just before exiting; prefer
		// its result if one is there.
		select {
		case err := <-errc:
			return err
		default:
			return ErrClosed
		}
	}
}

// Post schedules fn on the loop goroutine and returns immediately.
// A failure inside fn is logged, never surfaced to the caller. Calls
// from the loop goroutine itself run inline.
func (l *Loop) Post(fn func() error) {
	if l.IsCurrent() {
		l.execute(task{fn: fn})
		return
	}
	select {
	case l.tasks <- task{fn: fn}:
	case <-l.done:
		l.log.Warn("loop closed, task dropped")
	}
}

// IsCurrent reports whether the caller is running on the loop goroutine.
func (l *Loop) IsCurrent() bool {
	return goroutineID() == l.gid.Load()
}

// Close stops the loop goroutine. Tasks already queued still run;
// submissions after Close fail with ErrClosed.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		close(l.quit)
	})
	if l.IsCurrent() {
		// Called from a task; the loop exits once that task returns.
		return
	}
	<-l.done
}

// goroutineID parses the current goroutine's id from its stack header
// ("goroutine N [...]"); the runtime offers no direct accessor.
func goroutineID() uint64 {
	var buf [32]byte
	n := runtime.Stack(buf[:], false)
	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.ParseUint(string(fields[1]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
