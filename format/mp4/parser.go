// Package mp4 builds the box tree of ISO base media files (MP4, MOV,
// fragmented MP4) incrementally from a byte cursor that may hold only part of
// the file, suspending whenever more bytes or a seek are needed.
package mp4

import (
	"context"
	"errors"
	"math"

	"github.com/deepch/vdk/utils/bits/pio"
	"github.com/ugparu/mediaprobe"
	"github.com/ugparu/mediaprobe/format/mp4/mp4io"
	"github.com/ugparu/mediaprobe/utils"
	"github.com/ugparu/mediaprobe/utils/logger"
)

// Parser drives the box decoders over a cursor and registers the tracks it
// finds on the session state. It is not safe for concurrent use.
type Parser struct {
	cur     mediaprobe.Cursor
	state   *mediaprobe.ParserState
	handler mp4io.Tag
	index   *sampleIndex
}

// NewParser creates a parser reading from cur, positioned at the start of the file.
func NewParser(cur mediaprobe.Cursor, state *mediaprobe.ParserState) *Parser {
	if state == nil {
		state = mediaprobe.NewParserState()
	}
	return &Parser{
		cur:     cur,
		state:   state,
		handler: 0,
		index:   nil,
	}
}

func (p *Parser) String() string {
	return "MP4"
}

// Parse starts a top-level pass over an empty structure.
func (p *Parser) Parse(ctx context.Context) (*Result, error) {
	return p.parseBoxes(ctx, topLevelPass(), &Structure{})
}

type outcome uint8

const (
	boxComplete outcome = iota + 1
	boxIncomplete
	mdatPartial
)

type boxResult struct {
	kind   outcome
	box    mp4io.Box
	skipTo int64
	mdat   *partialMdat
}

func complete(box mp4io.Box) boxResult {
	return boxResult{kind: boxComplete, box: box, skipTo: -1}
}

func (p *Parser) suspend(s *Structure, next pass) *Result {
	logger.Tracef(p, "Suspended at %d", p.cur.Offset())
	return &Result{parser: p, structure: s, next: next, skipTo: -1}
}

func (p *Parser) suspendSkip(s *Structure, next pass, skipTo int64) *Result {
	logger.Debugf(p, "Suspended with seek to %d", skipTo)
	return &Result{parser: p, structure: s, next: next, skipTo: skipTo, hasSkip: true}
}

// parseBoxes is the tree-building loop. A negative ps.maxBytes makes it the
// top-level pass which may suspend; a bounded pass parses the children of a
// fully buffered box and never suspends.
func (p *Parser) parseBoxes(ctx context.Context, ps pass, s *Structure) (*Result, error) {
	top := ps.maxBytes < 0
	if !top && ps.allowIncomplete {
		return nil, &utils.ProtocolMisuseError{Reason: "incomplete boxes allowed in a bounded pass"}
	}

	start := p.cur.Offset()
	for {
		if err := utils.CheckContext(ctx); err != nil {
			return nil, err
		}

		limit := int64(-1)
		if !top {
			consumed := p.cur.Offset() - start
			if consumed >= ps.maxBytes {
				break
			}
			limit = ps.maxBytes - consumed
		} else if p.cur.Remaining() <= 0 {
			if !p.cur.Ended() {
				return p.suspend(s, ps), nil
			}
			if ps.mdat != nil || p.cur.Remaining() < 0 {
				return nil, utils.Malformed(p.cur.Offset(), "input ends inside a box")
			}
			break
		}

		var res boxResult
		var err error
		if ps.mdat != nil {
			res, err = p.parseMdatPartially(ctx, ps.mdat, s)
		} else {
			res, err = p.processBox(ctx, limit, top, ps.allowIncomplete, ps.sampleEntries, s)
		}
		if err != nil {
			return nil, err
		}

		switch res.kind {
		case boxIncomplete:
			// Also suspends in a revisit pass, which disallows incomplete
			// boxes: a header cut by a chunk boundary is only fatal once the
			// input has ended.
			if p.cur.Ended() {
				return nil, utils.Malformed(p.cur.Offset(), "input ends inside a box header")
			}
			next := ps
			next.mdat = nil
			return p.suspend(s, next), nil
		case mdatPartial:
			if p.cur.Ended() {
				return nil, utils.Malformed(res.mdat.offset, "input ends inside media data")
			}
			next := ps
			next.mdat = res.mdat
			return p.suspend(s, next), nil
		}
		ps.mdat = nil

		if md, ok := res.box.(*mp4io.MediaData); ok && top {
			old := s.putMediaData(md)
			if old != nil && old.Offset == md.Offset {
				p.cur.Release()
				if md.Status != mp4io.SamplesProcessed {
					return nil, utils.Malformed(md.Offset, "media data still %s on revisit, movie box incomplete", md.Status)
				}
				logger.Debugf(p, "Media data at %d processed on revisit", md.Offset)
				break
			}
		} else {
			s.Boxes = append(s.Boxes, res.box)
		}

		if res.skipTo >= 0 {
			if !p.cur.SupportsRange() {
				return nil, &utils.ProtocolMisuseError{Reason: "seek requested on a source without range support"}
			}
			return p.suspendSkip(s, ps, res.skipTo), nil
		}
		if p.cur.Remaining() < 0 {
			if p.cur.Ended() {
				return nil, utils.Malformed(p.cur.Offset(), "input ends inside a box")
			}
			return p.suspend(s, ps), nil
		}
		if top {
			p.cur.Compact()
		}
	}

	if !top {
		if consumed := p.cur.Offset() - start; consumed != ps.maxBytes {
			return nil, utils.Malformed(start, "children span %d bytes of %d", consumed, ps.maxBytes)
		}
		return &Result{parser: p, structure: s, done: true, skipTo: -1}, nil
	}

	if md := s.MediaData(); md != nil {
		canSkip := p.state.CanSkipVideoData()
		next := pass{maxBytes: -1, allowIncomplete: false, rewindTo: -1}
		switch {
		case md.Status == mp4io.SamplesSkipped && !canSkip && p.cur.SupportsRange():
			logger.Debugf(p, "Revisiting skipped media data at %d", md.Offset)
			return p.suspendSkip(s, next, md.Offset), nil
		case md.Status == mp4io.SamplesBuffered && !canSkip:
			logger.Debugf(p, "Revisiting buffered media data at %d", md.Offset)
			next.rewindTo = md.Offset
			return p.suspend(s, next), nil
		case md.Status == mp4io.SamplesBuffered:
			p.cur.Release()
		}
	}
	logger.Debugf(p, "Parsed %d top-level boxes", len(s.Boxes))
	return &Result{parser: p, structure: s, done: true, skipTo: -1}, nil
}

// processBox decodes the box at the cursor. limit bounds the box size inside
// a parent and is negative at the top level. A top-level box whose header is
// not buffered yet is reported incomplete; inside a parent that is malformed.
func (p *Parser) processBox(
	ctx context.Context, limit int64, top, allowIncomplete, sampleEntries bool, s *Structure,
) (boxResult, error) {
	offset := p.cur.Offset()
	avail := p.cur.Remaining()
	if limit >= 0 && limit < avail {
		avail = limit
	}
	incomplete := func() (boxResult, error) {
		if !top {
			return boxResult{}, utils.Malformed(offset, "incomplete box, %d bytes available", avail)
		}
		return boxResult{kind: boxIncomplete, skipTo: -1}, nil
	}

	if avail < 4 {
		return incomplete()
	}
	b, err := p.cur.Read(4)
	if err != nil {
		return boxResult{}, err
	}
	size := int64(pio.U32BE(b))
	if size == 0 {
		logger.Tracef(p, "Void box at %d", offset)
		return complete(&mp4io.VoidBox{BoxPos: mp4io.BoxPos{Offset: offset, Size: 4}}), nil
	}

	hdrLen := int64(mp4io.HeaderSize)
	if size == 1 {
		hdrLen = mp4io.ExtendedHeaderSize
	}
	if avail < hdrLen {
		if err = p.cur.Rewind(4); err != nil {
			return boxResult{}, err
		}
		return incomplete()
	}
	if b, err = p.cur.Read(int(hdrLen - 4)); err != nil {
		return boxResult{}, err
	}
	tag := mp4io.Tag(pio.U32BE(b))
	if size == 1 {
		large := pio.U64BE(b[4:])
		if large > math.MaxInt64 {
			return boxResult{}, utils.Malformed(offset, "%s size %d overflows", tag, large)
		}
		size = int64(large)
	}
	if size < hdrLen {
		return boxResult{}, utils.Malformed(offset, "%s size %d smaller than its header", tag, size)
	}
	if limit >= 0 && size > limit {
		return boxResult{}, utils.Malformed(offset, "%s size %d exceeds the %d bytes left in its parent", tag, size, limit)
	}

	if size > avail {
		if top && tag == mp4io.MDAT {
			return p.processLargeMdat(ctx, offset, size, hdrLen, allowIncomplete, s)
		}
		if err = p.cur.Rewind(hdrLen); err != nil {
			return boxResult{}, err
		}
		return incomplete()
	}

	if top && tag == mp4io.MDAT {
		md, err := p.processMdat(ctx, offset, size, hdrLen, s)
		if err != nil {
			return boxResult{}, err
		}
		return complete(md), nil
	}

	box, err := p.decodeBox(ctx, tag, offset, size, hdrLen, sampleEntries)
	if err != nil {
		return boxResult{}, err
	}
	logger.Tracef(p, "Parsed %s at %d size %d", tag, offset, size)
	return complete(box), nil
}

// decodeBox decodes a fully buffered box whose header was already consumed.
func (p *Parser) decodeBox(
	ctx context.Context, tag mp4io.Tag, offset, size, hdrLen int64, sampleEntries bool,
) (mp4io.Box, error) {
	bodyLen := size - hdrLen

	var dec mp4io.Decoder
	if sampleEntries {
		dec = mp4io.NewSampleEntry(tag, p.handler)
	} else {
		dec = mp4io.NewDecoder(tag)
	}
	if tag == mp4io.TRAK {
		p.handler = 0
	}
	if dec == nil {
		p.cur.Discard(bodyLen)
		return &mp4io.RegularBox{Type: tag, BoxPos: mp4io.BoxPos{Offset: offset, Size: size}}, nil
	}
	dec.SetPos(offset, size)

	body, err := p.cur.Read(int(bodyLen))
	if err != nil {
		return nil, err
	}
	n, err := dec.Unmarshal(body, offset+hdrLen)
	if err != nil {
		errOffset := offset
		var pe *mp4io.ParseError
		if errors.As(err, &pe) {
			errOffset = pe.Innermost()
		}
		return nil, &utils.MalformedInputError{Reason: "decoding " + tag.String(), Offset: errOffset, Err: err}
	}

	if parent, ok := dec.(mp4io.Parent); ok {
		rest := bodyLen - int64(n)
		if err = p.cur.Rewind(rest); err != nil {
			return nil, err
		}
		if rest > 0 {
			res, err := p.parseBoxes(ctx, pass{maxBytes: rest, sampleEntries: tag == mp4io.STSD, rewindTo: -1}, &Structure{})
			if err != nil {
				return nil, err
			}
			parent.SetChildren(res.structure.Boxes)
		}
	}

	switch box := dec.(type) {
	case *mp4io.HandlerRefer:
		p.handler = box.SubType
	case *mp4io.Track:
		p.index = nil
		track, err := MakeTrack(box)
		if err != nil {
			return nil, err
		}
		if track != nil {
			if err = p.state.RegisterTrack(ctx, track); err != nil {
				return nil, err
			}
		}
	case *mp4io.RegularBox:
		if box.Type == mp4io.MOOF {
			p.index = nil
		}
	}
	return dec, nil
}
