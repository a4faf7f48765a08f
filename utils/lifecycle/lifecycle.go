// Package lifecycle runs long-lived workers in their own goroutine with a
// start-once, close-once contract.
package lifecycle

import (
	"errors"
	"runtime/debug"
	"sync"

	"github.com/ugparu/mediaprobe/utils/logger"
)

// Worker is driven by a Manager. Step is called in a loop until it returns
// an error; returning BreakError ends the loop quietly.
type Worker interface {
	Step(stop <-chan struct{}) error
	Close_()
	String() string
}

// Manager starts a worker loop once and stops it once.
type Manager[T Worker] interface {
	Start(func(T) error) error
	Close()
	Done() <-chan struct{}
}

type BreakError struct{}

func (*BreakError) Error() string {
	return "break"
}

type StartedAlreadyError struct{}

func (*StartedAlreadyError) Error() string {
	return "started already"
}

type StartedAfterCloseError struct{}

func (*StartedAfterCloseError) Error() string {
	return "start after close"
}

type manager[T Worker] struct {
	worker               T
	failsafe             bool
	stopChan, doneChan   chan struct{}
	startOnce, closeOnce *sync.Once
}

// NewManager ends the loop on the first step error or panic.
func NewManager[T Worker](worker T) Manager[T] {
	return newManager(worker, false)
}

// NewFailSafeManager logs step errors and panics and keeps looping until the
// worker breaks or the manager is closed. A failing start is logged too.
func NewFailSafeManager[T Worker](worker T) Manager[T] {
	return newManager(worker, true)
}

func newManager[T Worker](worker T, failsafe bool) *manager[T] {
	return &manager[T]{
		worker:    worker,
		failsafe:  failsafe,
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
		startOnce: &sync.Once{},
		closeOnce: &sync.Once{},
	}
}

func (m *manager[T]) Start(startFunc func(T) error) (err error) {
	select {
	case <-m.stopChan:
		return &StartedAfterCloseError{}
	default:
		err = &StartedAlreadyError{}
	}
	m.startOnce.Do(func() {
		logger.Debugf(m.worker, "Starting, failsafe=%t", m.failsafe)
		if err = startFunc(m.worker); err != nil {
			if !m.failsafe {
				close(m.doneChan)
				return
			}
			logger.Warningf(m.worker, "Start failed: %s", err.Error())
			err = nil
		}
		go m.process()
	})
	return err
}

func (m *manager[T]) process() {
	logger.Debug(m.worker, "Entering main loop")

	defer close(m.doneChan)
	running := true
	for running {
		running = m.step()
	}
	logger.Debug(m.worker, "Left main loop")
}

func (m *manager[T]) step() (running bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf(m.worker, "Panic detected! Recovering from: %v", r)
			logger.Errorf(m.worker, "%s", debug.Stack())
			running = m.failsafe
		}
	}()
	err := m.worker.Step(m.stopChan)
	if err == nil {
		return true
	}
	var brk *BreakError
	if errors.As(err, &brk) {
		return false
	}
	logger.Warningf(m.worker, "Detected error: %s", err.Error())
	return m.failsafe
}

func (m *manager[T]) Close() {
	m.closeOnce.Do(func() {
		close(m.stopChan)
		m.startOnce.Do(func() {
			close(m.doneChan)
		})
		<-m.doneChan
		m.worker.Close_()
	})
}

func (m *manager[T]) Done() <-chan struct{} {
	return m.doneChan
}
