package mp4io

import (
	"fmt"

	"github.com/deepch/vdk/utils/bits/pio"
)

// ChunkOffset is the stco box, or co64 when Type says so.
type ChunkOffset struct {
	FullBox
	Type    Tag
	Entries []uint64
	BoxPos
}

func (self *ChunkOffset) Tag() Tag        { return self.Type }
func (self *ChunkOffset) Children() []Box { return nil }

func (self *ChunkOffset) String() string {
	return fmt.Sprintf("chunks=%d", len(self.Entries))
}

func (self *ChunkOffset) Unmarshal(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	entrySize := 4
	if self.Type == CO64 {
		entrySize = 8
	}
	var count int
	if count, n, err = entryCount(b, n, entrySize, offset); err != nil {
		return
	}
	self.Entries = make([]uint64, count)
	for i := range self.Entries {
		if entrySize == 8 {
			self.Entries[i] = pio.U64BE(b[n:])
		} else {
			self.Entries[i] = uint64(pio.U32BE(b[n:]))
		}
		n += entrySize
	}
	return
}

// SyncSample is the stss box. Entries are one-based sample numbers.
type SyncSample struct {
	FullBox
	Entries []uint32
	BoxPos
}

func (self *SyncSample) Tag() Tag        { return STSS }
func (self *SyncSample) Children() []Box { return nil }

func (self *SyncSample) String() string {
	return fmt.Sprintf("entries=%d", len(self.Entries))
}

func (self *SyncSample) Unmarshal(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	var count int
	if count, n, err = entryCount(b, n, 4, offset); err != nil {
		return
	}
	self.Entries = make([]uint32, count)
	for i := range self.Entries {
		self.Entries[i] = pio.U32BE(b[n:])
		n += 4
	}
	return
}

type CompositionOffsetEntry struct {
	Count  uint32
	Offset int32
}

const LenCompositionOffsetEntry = 8

// CompositionOffset is the ctts box. Version 0 offsets are unsigned on disk;
// values above math.MaxInt32 are written by some muxers to mean negative
// offsets, so both versions are read as signed.
type CompositionOffset struct {
	FullBox
	Entries []CompositionOffsetEntry
	BoxPos
}

func (self *CompositionOffset) Tag() Tag        { return CTTS }
func (self *CompositionOffset) Children() []Box { return nil }

func (self *CompositionOffset) String() string {
	return fmt.Sprintf("entries=%d", len(self.Entries))
}

func (self *CompositionOffset) Unmarshal(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	var count int
	if count, n, err = entryCount(b, n, LenCompositionOffsetEntry, offset); err != nil {
		return
	}
	self.Entries = make([]CompositionOffsetEntry, count)
	for i := range self.Entries {
		self.Entries[i] = CompositionOffsetEntry{
			Count:  pio.U32BE(b[n:]),
			Offset: pio.I32BE(b[n+4:]),
		}
		n += LenCompositionOffsetEntry
	}
	return
}
