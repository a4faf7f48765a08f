package reader

import (
	"context"
	"fmt"
	"sync"

	"github.com/ugparu/mediaprobe"
	"github.com/ugparu/mediaprobe/utils"
	"github.com/ugparu/mediaprobe/utils/lifecycle"
	"github.com/ugparu/mediaprobe/utils/logger"
)

// Job describes one probe run by a Pool.
type Job struct {
	Open             func(ctx context.Context) (Source, error)
	CanSkipVideoData bool
	Options          Options
}

type result struct {
	report *Report
	err    error
}

type request struct {
	ctx context.Context
	job Job
	res chan result
}

// Pool probes sources on a fixed number of workers.
type Pool struct {
	requests  chan request
	closed    chan struct{}
	closeOnce sync.Once
	managers  []lifecycle.Manager[*poolWorker]
}

// NewPool starts n workers, at least one.
func NewPool(n int) (*Pool, error) {
	if n < 1 {
		n = 1
	}
	p := &Pool{
		requests:  make(chan request),
		closed:    make(chan struct{}),
		closeOnce: sync.Once{},
		managers:  make([]lifecycle.Manager[*poolWorker], 0, n),
	}
	for i := range n {
		m := lifecycle.NewFailSafeManager(&poolWorker{id: i, requests: p.requests})
		if err := m.Start(func(*poolWorker) error { return nil }); err != nil {
			p.Close()
			return nil, err
		}
		p.managers = append(p.managers, m)
	}
	return p, nil
}

func (p *Pool) String() string {
	return fmt.Sprintf("PROBE POOL %d", len(p.managers))
}

// Submit runs job on the next free worker and waits for its report.
func (p *Pool) Submit(ctx context.Context, job Job) (*Report, error) {
	req := request{ctx: ctx, job: job, res: make(chan result, 1)}
	select {
	case p.requests <- req:
	case <-p.closed:
		return nil, &utils.ProtocolMisuseError{Reason: "probe pool closed"}
	case <-ctx.Done():
		return nil, &utils.CancelledError{Err: ctx.Err()}
	}
	res := <-req.res
	return res.report, res.err
}

// Close stops the workers after their current probes finish.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.closed)
		for _, m := range p.managers {
			m.Close()
		}
		logger.Debug(p, "Closed")
	})
}

type poolWorker struct {
	id       int
	requests <-chan request
	probes   int
}

func (w *poolWorker) String() string {
	return fmt.Sprintf("PROBE WORKER %d", w.id)
}

func (w *poolWorker) Step(stop <-chan struct{}) error {
	select {
	case <-stop:
		return &lifecycle.BreakError{}
	case req := <-w.requests:
		w.probe(req)
		return nil
	}
}

func (w *poolWorker) probe(req request) {
	w.probes++
	defer func() {
		if r := recover(); r != nil {
			select {
			case req.res <- result{report: nil, err: fmt.Errorf("probe panicked: %v", r)}:
			default:
			}
			panic(r)
		}
	}()

	src, err := req.job.Open(req.ctx)
	if err != nil {
		req.res <- result{report: nil, err: err}
		return
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			logger.Warningf(w, "Closing source: %v", cerr)
		}
	}()

	state := mediaprobe.NewParserState(mediaprobe.WithCanSkipVideoData(req.job.CanSkipVideoData))
	report, err := Probe(req.ctx, src, state, req.job.Options)
	req.res <- result{report: report, err: err}
}

func (w *poolWorker) Close_() {
	logger.Debugf(w, "Stopped after %d probes", w.probes)
}
