// Package reader feeds byte sources into the incremental parsers, seeking
// over media data the parser does not need.
package reader

import (
	"context"
	"errors"
	"io"

	"github.com/ugparu/mediaprobe"
	"github.com/ugparu/mediaprobe/format"
	"github.com/ugparu/mediaprobe/format/mp4"
	"github.com/ugparu/mediaprobe/utils"
	"github.com/ugparu/mediaprobe/utils/buffer"
	"github.com/ugparu/mediaprobe/utils/logger"
)

// Report is the outcome of a probe.
type Report struct {
	Structure  *mp4.Structure     `json:"-"`
	Tracks     []mediaprobe.Track `json:"tracks"`
	BytesRead  int64              `json:"bytesRead"`
	Seeks      int                `json:"seeks"`
	PeakWindow int64              `json:"peakWindow"` // Most bytes buffered at once.
	Complete   bool               `json:"complete"`   // False when MaxBytes stopped the probe.
}

type prober struct {
	src   Source
	buf   *Buffer
	opts  Options
	read  int64
	seeks int
	peak  int
}

func (p *prober) String() string {
	return "PROBE"
}

// Probe parses src until its structure is complete, reading it in chunks and
// seeking over payloads when the parser asks for it.
func Probe(ctx context.Context, src Source, state *mediaprobe.ParserState, opts Options) (*Report, error) {
	if state == nil {
		state = mediaprobe.NewParserState()
	}
	p := &prober{
		src:   src,
		buf:   NewBuffer(src.SupportsRange()),
		opts:  opts,
		read:  0,
		seeks: 0,
		peak:  0,
	}

	var res *mp4.Result
	for res == nil {
		if !p.buf.Ended() {
			if stop, err := p.fill(ctx); err != nil {
				return nil, err
			} else if stop {
				return p.report(nil, false)
			}
		}
		var err error
		if res, err = format.Parse(ctx, p.buf, state); err != nil {
			var again *utils.TryAgainError
			if !errors.As(err, &again) {
				return nil, err
			}
			res = nil
		}
	}

	for !res.Done() {
		if off, ok := res.SkipTo(); ok {
			logger.Debugf(p, "Seeking to %d", off)
			if err := p.buf.Seek(off); err != nil {
				return nil, err
			}
			p.seeks++
		} else if p.buf.Remaining() < 0 && p.buf.SupportsRange() && !p.buf.Retained() {
			// Jump over discarded bytes instead of downloading them.
			if err := p.buf.Seek(p.buf.Offset()); err != nil {
				return nil, err
			}
		}
		stop, err := p.fill(ctx)
		if err != nil {
			return nil, err
		}
		if stop {
			return p.report(res.Structure(), false)
		}
		if res, err = res.Resume(ctx); err != nil {
			return nil, err
		}
	}
	return p.report(res.Structure(), true)
}

// fill reads the next chunk into the buffer. It reports stop once MaxBytes
// was reached.
func (p *prober) fill(ctx context.Context) (stop bool, err error) {
	n := p.opts.chunkSize()
	if p.opts.MaxBytes > 0 {
		left := p.opts.MaxBytes - p.read
		if left <= 0 {
			logger.Infof(p, "Byte limit %d reached", p.opts.MaxBytes)
			return true, nil
		}
		if int64(n) > left {
			n = int(left)
		}
	}

	chunk := buffer.Get(n)
	defer chunk.Release()

	off := p.buf.NextOffset()
	read, err := p.src.ReadAt(ctx, chunk.Data(), off)
	p.read += int64(read)
	p.buf.Feed(chunk.Data()[:read])
	p.peak = max(p.peak, p.buf.Window())
	logger.Tracef(p, "Read %d bytes at %d", read, off)
	if errors.Is(err, io.EOF) {
		p.buf.Close()
		return false, nil
	}
	return false, err
}

func (p *prober) report(s *mp4.Structure, complete bool) (*Report, error) {
	r := &Report{
		Structure:  s,
		Tracks:     nil,
		BytesRead:  p.read,
		Seeks:      p.seeks,
		PeakWindow: int64(p.peak),
		Complete:   complete,
	}
	if s != nil {
		tracks, err := mp4.GetTracks(s)
		if err != nil {
			return nil, err
		}
		r.Tracks = tracks
	}
	logger.Debugf(p, "Probe finished: %d tracks, %d bytes read, %d seeks", len(r.Tracks), r.BytesRead, r.Seeks)
	return r, nil
}
