package mp4

import (
	"context"

	"github.com/ugparu/mediaprobe"
	"github.com/ugparu/mediaprobe/format/mp4/mp4io"
	"github.com/ugparu/mediaprobe/utils"
)

// Structure is the top-level box sequence built so far.
type Structure struct {
	Boxes []mp4io.Box
}

func (s *Structure) Container() mediaprobe.Container {
	return mediaprobe.ISOBaseMedia
}

// Movie returns the moov box, or nil before it was parsed.
func (s *Structure) Movie() *mp4io.Movie {
	for _, b := range s.Boxes {
		if m, ok := b.(*mp4io.Movie); ok {
			return m
		}
	}
	return nil
}

// MediaData returns the retained mdat box.
func (s *Structure) MediaData() *mp4io.MediaData {
	for _, b := range s.Boxes {
		if m, ok := b.(*mp4io.MediaData); ok {
			return m
		}
	}
	return nil
}

// LastFragment returns the last moof box.
func (s *Structure) LastFragment() mp4io.Box {
	for i := len(s.Boxes) - 1; i >= 0; i-- {
		if s.Boxes[i].Tag() == mp4io.MOOF {
			return s.Boxes[i]
		}
	}
	return nil
}

// putMediaData stores md as the single retained mdat and returns the one it replaced.
func (s *Structure) putMediaData(md *mp4io.MediaData) (old *mp4io.MediaData) {
	for i, b := range s.Boxes {
		m, ok := b.(*mp4io.MediaData)
		if !ok {
			continue
		}
		if m.Offset == md.Offset {
			s.Boxes[i] = md
			return m
		}
		s.Boxes = append(s.Boxes[:i], s.Boxes[i+1:]...)
		s.Boxes = append(s.Boxes, md)
		return m
	}
	s.Boxes = append(s.Boxes, md)
	return nil
}

// pass is the plain state a suspended parse continues from.
type pass struct {
	maxBytes        int64 // Negative means unbounded.
	allowIncomplete bool
	sampleEntries   bool
	mdat            *partialMdat
	rewindTo        int64 // Negative means none.
}

func topLevelPass() pass {
	return pass{maxBytes: -1, allowIncomplete: true, rewindTo: -1}
}

type partialMdat struct {
	offset     int64
	size       int64
	headerSize int64
}

// Result is the outcome of a parse pass: done, or suspended until the caller
// supplies more bytes or seeks to SkipTo.
type Result struct {
	parser    *Parser
	structure *Structure
	done      bool
	resumed   bool
	next      pass
	skipTo    int64
	hasSkip   bool
}

func (r *Result) Done() bool {
	return r.done
}

func (r *Result) Structure() *Structure {
	return r.structure
}

// SkipTo returns the offset the byte source must be repositioned to before Resume.
func (r *Result) SkipTo() (int64, bool) {
	return r.skipTo, r.hasSkip
}

// Resume continues a suspended parse. The cursor must have been fed with more
// bytes, or moved to SkipTo when one was requested.
func (r *Result) Resume(ctx context.Context) (*Result, error) {
	if r.done {
		return nil, &utils.ProtocolMisuseError{Reason: "resume of a finished parse"}
	}
	if r.resumed {
		return nil, &utils.ProtocolMisuseError{Reason: "result resumed twice"}
	}
	r.resumed = true

	cur := r.parser.cur
	if r.hasSkip && cur.Offset() != r.skipTo {
		return nil, &utils.ProtocolMisuseError{Reason: "cursor is not at the requested seek target"}
	}
	next := r.next
	if next.rewindTo >= 0 {
		if err := cur.SkipTo(next.rewindTo); err != nil {
			return nil, err
		}
		next.rewindTo = -1
	}
	return r.parser.parseBoxes(ctx, next, r.structure)
}
