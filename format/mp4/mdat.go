package mp4

import (
	"context"

	"github.com/ugparu/mediaprobe/format/mp4/mp4io"
	"github.com/ugparu/mediaprobe/utils"
	"github.com/ugparu/mediaprobe/utils/logger"
)

// SkipThreshold is the smallest number of unread media data bytes worth a
// seek. Smaller gaps are waited for.
const SkipThreshold = 1_000_000

// processLargeMdat handles a top-level mdat that extends past the buffered
// bytes. A pass that disallows incomplete boxes never skips it.
func (p *Parser) processLargeMdat(
	ctx context.Context, offset, size, hdrLen int64, allowIncomplete bool, s *Structure,
) (boxResult, error) {
	shouldSkip := allowIncomplete && (p.state.CanSkipVideoData() || !HasTracks(s)) && p.cur.SupportsRange()
	if !shouldSkip {
		return p.parseMdatPartially(ctx, &partialMdat{offset: offset, size: size, headerSize: hdrLen}, s)
	}

	end := offset + size
	if toSkip := end - p.cur.Offset(); toSkip > SkipThreshold {
		logger.Debugf(p, "Skipping %d bytes of media data at %d", toSkip, offset)
		md := &mp4io.MediaData{
			Status:     mp4io.SamplesSkipped,
			HeaderSize: hdrLen,
			BoxPos:     mp4io.BoxPos{Offset: offset, Size: size},
		}
		return boxResult{kind: boxComplete, box: md, skipTo: end}, nil
	}

	if err := p.cur.Rewind(hdrLen); err != nil {
		return boxResult{}, err
	}
	return boxResult{kind: boxIncomplete, skipTo: -1}, nil
}

// processMdat handles a top-level mdat whose whole extent is buffered.
func (p *Parser) processMdat(ctx context.Context, offset, size, hdrLen int64, s *Structure) (*mp4io.MediaData, error) {
	maySkip := p.cur.SupportsRange() && size-hdrLen > SkipThreshold
	return p.parseMdat(ctx, &partialMdat{offset: offset, size: size, headerSize: hdrLen}, s, maySkip)
}

// parseMdatPartially walks as much of the mdat as is buffered. The box is
// complete once the cursor reached its end.
func (p *Parser) parseMdatPartially(ctx context.Context, pm *partialMdat, s *Structure) (boxResult, error) {
	md, err := p.parseMdat(ctx, pm, s, p.cur.SupportsRange())
	if err != nil {
		return boxResult{}, err
	}
	if p.cur.Offset() == md.End() {
		return complete(md), nil
	}
	// Drops the samples emitted so far. No-op while the window is retained.
	p.cur.Compact()
	return boxResult{kind: mdatPartial, mdat: pm, skipTo: -1}, nil
}

// parseMdat applies the payload policy from the current cursor offset inside
// the mdat. Without known tracks the payload is skipped when maySkip, and
// otherwise retained in the cursor for a later pass. With tracks, every fully
// buffered sample is emitted.
func (p *Parser) parseMdat(ctx context.Context, pm *partialMdat, s *Structure, maySkip bool) (*mp4io.MediaData, error) {
	end := pm.offset + pm.size
	md := &mp4io.MediaData{
		Status:     mp4io.SamplesProcessed,
		HeaderSize: pm.headerSize,
		BoxPos:     mp4io.BoxPos{Offset: pm.offset, Size: pm.size},
	}

	if !HasTracks(s) {
		p.cur.Discard(end - p.cur.Offset())
		if maySkip {
			md.Status = mp4io.SamplesSkipped
			logger.Debugf(p, "Media data at %d skipped, tracks unknown", pm.offset)
			return md, nil
		}
		p.cur.Retain()
		md.Status = mp4io.SamplesBuffered
		logger.Debugf(p, "Media data at %d buffered, tracks unknown", pm.offset)
		return md, nil
	}

	if p.index == nil || p.index.mdat != pm.offset {
		idx, err := buildSampleIndex(s, pm.offset, end)
		if err != nil {
			return nil, err
		}
		p.index = idx
	}
	for p.cur.Offset() < end {
		if err := utils.CheckContext(ctx); err != nil {
			return nil, err
		}
		pos := p.cur.Offset()
		sample, ok := p.index.at(pos, end)
		if !ok {
			if next, found := p.index.nextAfter(pos, end); found {
				p.cur.Discard(next - pos)
				continue
			}
			p.cur.Discard(end - pos)
			break
		}
		if p.cur.Remaining() < int64(sample.Size) {
			break
		}
		data, err := p.cur.Read(sample.Size)
		if err != nil {
			return nil, err
		}
		out := sample
		out.Data = data
		if err = p.state.EmitSample(ctx, &out); err != nil {
			return nil, err
		}
	}
	return md, nil
}

// HasTracks reports whether the moov was parsed and holds every track its
// header announces.
func HasTracks(s *Structure) bool {
	moov := s.Movie()
	if moov == nil {
		return false
	}
	var expected int
	if mvhd := moov.Header(); mvhd != nil && mvhd.NextTrackID > 0 {
		expected = int(mvhd.NextTrackID) - 1
	}
	return len(moov.Tracks()) == expected
}
