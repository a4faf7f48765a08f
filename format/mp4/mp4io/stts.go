package mp4io

import (
	"fmt"

	"github.com/deepch/vdk/utils/bits/pio"
)

type TimeToSampleEntry struct {
	Count    uint32
	Duration uint32
}

const LenTimeToSampleEntry = 8

// TimeToSample is the stts box.
type TimeToSample struct {
	FullBox
	Entries []TimeToSampleEntry
	BoxPos
}

func (self *TimeToSample) Tag() Tag        { return STTS }
func (self *TimeToSample) Children() []Box { return nil }

func (self *TimeToSample) String() string {
	return fmt.Sprintf("entries=%d", len(self.Entries))
}

// SampleCount sums the sample counts of all entries.
func (self *TimeToSample) SampleCount() (n uint64) {
	for _, e := range self.Entries {
		n += uint64(e.Count)
	}
	return
}

func (self *TimeToSample) Unmarshal(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	var count int
	if count, n, err = entryCount(b, n, LenTimeToSampleEntry, offset); err != nil {
		return
	}
	self.Entries = make([]TimeToSampleEntry, count)
	for i := range self.Entries {
		self.Entries[i] = TimeToSampleEntry{
			Count:    pio.U32BE(b[n:]),
			Duration: pio.U32BE(b[n+4:]),
		}
		n += LenTimeToSampleEntry
	}
	return
}

// entryCount reads a 32-bit entry count at n and checks that the entries fit in b.
func entryCount(b []byte, n, entrySize int, offset int64) (count, next int, err error) {
	if len(b) < n+4 {
		err = parseErr("EntryCount", offset+int64(n), err)
		return
	}
	c := uint64(pio.U32BE(b[n:]))
	n += 4
	if uint64(len(b)-n) < c*uint64(entrySize) {
		err = parseErr("Entries", offset+int64(n), err)
		return
	}
	return int(c), n, nil
}
