package mp4_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ugparu/mediaprobe"
	"github.com/ugparu/mediaprobe/format/mp4"
	"github.com/ugparu/mediaprobe/format/mp4/mp4io"
	"github.com/ugparu/mediaprobe/format/mp4/mp4test"
	"github.com/ugparu/mediaprobe/reader"
	"github.com/ugparu/mediaprobe/utils"
)

// source feeds a byte slice into a reader.Buffer chunk by chunk.
type source struct {
	data  []byte
	chunk int
	buf   *reader.Buffer
	seeks []int64
}

func newSource(data []byte, chunk int, rangeOK bool) *source {
	return &source{data: data, chunk: chunk, buf: reader.NewBuffer(rangeOK)}
}

func (s *source) feed() {
	off := s.buf.NextOffset()
	if off >= int64(len(s.data)) {
		s.buf.Close()
		return
	}
	end := min(off+int64(s.chunk), int64(len(s.data)))
	s.buf.Feed(s.data[off:end])
	if end == int64(len(s.data)) {
		s.buf.Close()
	}
}

// run parses the whole input, honoring seek requests.
func (s *source) run(ctx context.Context, state *mediaprobe.ParserState) (*mp4.Structure, error) {
	s.feed()
	res, err := mp4.NewParser(s.buf, state).Parse(ctx)
	for err == nil && !res.Done() {
		if off, ok := res.SkipTo(); ok {
			s.seeks = append(s.seeks, off)
			if err = s.buf.Seek(off); err != nil {
				return nil, err
			}
		}
		s.feed()
		res, err = res.Resume(ctx)
	}
	if err != nil {
		return nil, err
	}
	return res.Structure(), nil
}

type collected struct {
	tracks  []uint32
	samples []mediaprobe.Sample
}

func collectingState(canSkip bool) (*mediaprobe.ParserState, *collected) {
	c := &collected{}
	state := mediaprobe.NewParserState(
		mediaprobe.WithCanSkipVideoData(canSkip),
		mediaprobe.WithOnTrack(func(t mediaprobe.Track) { c.tracks = append(c.tracks, t.ID()) }),
		mediaprobe.WithOnSample(func(smp *mediaprobe.Sample) error {
			out := *smp
			out.Data = bytes.Clone(smp.Data)
			c.samples = append(c.samples, out)
			return nil
		}),
	)
	return state, c
}

type boxInfo struct {
	Tag    string
	Offset int64
	Size   int64
}

func topLevel(s *mp4.Structure) []boxInfo {
	out := make([]boxInfo, 0, len(s.Boxes))
	for _, b := range s.Boxes {
		off, size := b.Pos()
		out = append(out, boxInfo{Tag: b.Tag().String(), Offset: off, Size: size})
	}
	return out
}

func fill(n int, v byte) []byte {
	return bytes.Repeat([]byte{v}, n)
}

func videoTrack() mp4test.Track {
	return mp4test.Track{
		ID:        1,
		Handler:   "vide",
		Timescale: 30000,
		Delta:     1000,
		Entry:     mp4test.VisualEntry("avc1", 640, 480, mp4test.AvcC(0x64, 0x00, 0x1f), mp4test.Pasp(1, 1)),
		Width:     640,
		Height:    480,
		Samples:   [][]byte{fill(100, 0xa1), fill(50, 0xa2), fill(60, 0xa3)},
		Sync:      []uint32{1},
	}
}

func audioTrack() mp4test.Track {
	return mp4test.Track{
		ID:        2,
		Handler:   "soun",
		Timescale: 44100,
		Delta:     1024,
		Entry:     mp4test.AudioEntry("mp4a", 2, 16, 44100, mp4test.Esds(mp4io.ObjectTypeAAC, []byte{0x12, 0x10})),
		Samples:   [][]byte{fill(20, 0xb1), fill(30, 0xb2)},
	}
}

func sampleFile() mp4test.File {
	return mp4test.File{Tracks: []mp4test.Track{videoTrack(), audioTrack()}}
}

func requireMalformed(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var malformed *utils.MalformedInputError
	require.ErrorAs(t, err, &malformed)
}
