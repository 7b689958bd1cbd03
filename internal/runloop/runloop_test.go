package runloop

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestLoop(t *testing.T) *Loop {
	t.Helper()
	l := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(l.Close)
	return l
}

func TestRun_ExecutesOnLoopGoroutine(t *testing.T) {
	l := newTestLoop(t)

	require.False(t, l.IsCurrent(), "test goroutine must not be the loop")

	var onLoop bool
	err := l.Run(func() error {
		onLoop = l.IsCurrent()
		return nil
	})
	require.NoError(t, err)
	require.True(t, onLoop, "task must run on the loop goroutine")
}

func TestRun_PropagatesError(t *testing.T) {
	l := newTestLoop(t)

	want := errors.New("engine rejected command")
	err := l.Run(func() error { return want })
	require.ErrorIs(t, err, want)
}

func TestRun_NestedRunsInline(t *testing.T) {
	l := newTestLoop(t)

	// A task submitting another synchronous task to its own loop must
	// not deadlock: the nested Run takes the inline fast path.
	var nested bool
	err := l.Run(func() error {
		return l.Run(func() error {
			nested = l.IsCurrent()
			return nil
		})
	})
	require.NoError(t, err)
	require.True(t, nested)
}

func TestRun_PanicBecomesError(t *testing.T) {
	l := newTestLoop(t)

	err := l.Run(func() error { panic("boom") })
	require.Error(t, err)
	require.Contains(t, err.Error(), "boom")

	// The loop survives the panic.
	require.NoError(t, l.Run(func() error { return nil }))
}

func TestPost_FireAndForget(t *testing.T) {
	l := newTestLoop(t)

	ran := make(chan struct{})
	l.Post(func() error {
		close(ran)
		return nil
	})

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("posted task never ran")
	}
}

func TestPost_ErrorIsSwallowed(t *testing.T) {
	l := newTestLoop(t)

	done := make(chan struct{})
	l.Post(func() error {
		defer close(done)
		return errors.New("ignored")
	})
	<-done

	// Loop still functional after a failed posted task.
	require.NoError(t, l.Run(func() error { return nil }))
}

func TestRun_AfterClose(t *testing.T) {
	l := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	l.Close()

	err := l.Run(func() error { return nil })
	require.ErrorIs(t, err, ErrClosed)
}

func TestClose_DrainsQueuedTasks(t *testing.T) {
	l := New(slog.New(slog.NewTextHandler(io.Discard, nil)))

	var mu sync.Mutex
	ran := 0
	// Park the loop so the follow-up posts queue behind it.
	gate := make(chan struct{})
	l.Post(func() error {
		<-gate
		return nil
	})
	for range 5 {
		l.Post(func() error {
			mu.Lock()
			ran++
			mu.Unlock()
			return nil
		})
	}
	close(gate)
	l.Close()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 5, ran, "queued tasks must run before shutdown")
}

func TestRun_TotalOrder(t *testing.T) {
	l := newTestLoop(t)

	// Unsynchronized counter: safe only because all tasks run on the
	// single loop goroutine.
	counter := 0
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Run(func() error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()

	require.NoError(t, l.Run(func() error {
		require.Equal(t, 50, counter)
		return nil
	}))
}
