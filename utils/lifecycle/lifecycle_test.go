package lifecycle

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type idle struct {
	closed atomic.Bool
}

func (w *idle) Close_() { w.closed.Store(true) }

func (*idle) String() string { return "IDLE" }

func (*idle) Step(stop <-chan struct{}) error {
	select {
	case <-stop:
		return &BreakError{}
	case <-time.After(time.Millisecond):
		return nil
	}
}

type failing struct {
	idle
	steps atomic.Int64
	panic bool
}

func (w *failing) Step(stop <-chan struct{}) error {
	w.steps.Add(1)
	select {
	case <-stop:
		return &BreakError{}
	default:
	}
	time.Sleep(time.Millisecond)
	if w.panic {
		panic("step")
	}
	return errors.New("step failed")
}

func managers[T Worker]() map[string]func(T) Manager[T] {
	return map[string]func(T) Manager[T]{
		"plain":    NewManager[T],
		"failsafe": NewFailSafeManager[T],
	}
}

func TestStartAndClose(t *testing.T) {
	t.Parallel()

	for name, newManager := range managers[*idle]() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			w := &idle{}
			m := newManager(w)
			require.NoError(t, m.Start(func(*idle) error { return nil }))

			var already *StartedAlreadyError
			require.ErrorAs(t, m.Start(func(*idle) error { return nil }), &already)

			m.Close()
			require.True(t, w.closed.Load())
			select {
			case <-m.Done():
			default:
				t.Fatal("loop still running after close")
			}

			var afterClose *StartedAfterCloseError
			require.ErrorAs(t, m.Start(func(*idle) error { return nil }), &afterClose)
		})
	}
}

func TestCloseBeforeStart(t *testing.T) {
	t.Parallel()

	for name, newManager := range managers[*idle]() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			w := &idle{}
			m := newManager(w)
			m.Close()
			m.Close()
			require.True(t, w.closed.Load())
			<-m.Done()
		})
	}
}

func TestFailingStart(t *testing.T) {
	t.Parallel()

	plain := NewManager(&idle{})
	require.Error(t, plain.Start(func(*idle) error { return errors.New("start") }))
	select {
	case <-plain.Done():
	default:
		t.Fatal("plain manager must be done after a failed start")
	}

	failsafe := NewFailSafeManager(&idle{})
	require.NoError(t, failsafe.Start(func(*idle) error { return errors.New("start") }))
	select {
	case <-failsafe.Done():
		t.Fatal("failsafe manager must keep running")
	case <-time.After(20 * time.Millisecond):
	}
	failsafe.Close()
}

func TestStepErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		panic bool
	}{
		{"error", false},
		{"panic", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			plain := &failing{panic: tt.panic}
			m := NewManager(plain)
			require.NoError(t, m.Start(func(*failing) error { return nil }))
			select {
			case <-m.Done():
			case <-time.After(time.Second):
				t.Fatal("plain manager must stop on the first failure")
			}
			require.Equal(t, int64(1), plain.steps.Load())

			failsafe := &failing{panic: tt.panic}
			fm := NewFailSafeManager(failsafe)
			require.NoError(t, fm.Start(func(*failing) error { return nil }))
			require.Eventually(t, func() bool { return failsafe.steps.Load() > 3 }, time.Second, time.Millisecond)
			select {
			case <-fm.Done():
				t.Fatal("failsafe manager must keep stepping")
			default:
			}
			fm.Close()
			require.True(t, failsafe.closed.Load())
		})
	}
}
