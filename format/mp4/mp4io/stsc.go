package mp4io

import (
	"fmt"

	"github.com/deepch/vdk/utils/bits/pio"
)

type SampleToChunkEntry struct {
	FirstChunk      uint32
	SamplesPerChunk uint32
	SampleDescID    uint32
}

const LenSampleToChunkEntry = 12

// SampleToChunk is the stsc box.
type SampleToChunk struct {
	FullBox
	Entries []SampleToChunkEntry
	BoxPos
}

func (self *SampleToChunk) Tag() Tag        { return STSC }
func (self *SampleToChunk) Children() []Box { return nil }

func (self *SampleToChunk) String() string {
	return fmt.Sprintf("entries=%d", len(self.Entries))
}

func (self *SampleToChunk) Unmarshal(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	var count int
	if count, n, err = entryCount(b, n, LenSampleToChunkEntry, offset); err != nil {
		return
	}
	self.Entries = make([]SampleToChunkEntry, count)
	for i := range self.Entries {
		self.Entries[i] = SampleToChunkEntry{
			FirstChunk:      pio.U32BE(b[n:]),
			SamplesPerChunk: pio.U32BE(b[n+4:]),
			SampleDescID:    pio.U32BE(b[n+8:]),
		}
		n += LenSampleToChunkEntry
	}
	return
}
