package mp4io

import (
	"fmt"

	"github.com/deepch/vdk/utils/bits/pio"
)

// SampleSize is the stsz box. When SampleSize is non-zero every sample has
// that size and Entries is empty.
type SampleSize struct {
	FullBox
	SampleSize  uint32
	SampleCount uint32
	Entries     []uint32
	BoxPos
}

func (self *SampleSize) Tag() Tag        { return STSZ }
func (self *SampleSize) Children() []Box { return nil }

func (self *SampleSize) String() string {
	return fmt.Sprintf("samples=%d", self.SampleCount)
}

// Size returns the size of the i-th sample, zero based.
func (self *SampleSize) Size(i int) uint32 {
	if self.SampleSize != 0 {
		return self.SampleSize
	}
	if i < len(self.Entries) {
		return self.Entries[i]
	}
	return 0
}

func (self *SampleSize) Unmarshal(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	if len(b) < n+4 {
		err = parseErr("SampleSize", offset+int64(n), err)
		return
	}
	self.SampleSize = pio.U32BE(b[n:])
	n += 4
	if self.SampleSize != 0 {
		if len(b) < n+4 {
			err = parseErr("SampleCount", offset+int64(n), err)
			return
		}
		self.SampleCount = pio.U32BE(b[n:])
		n += 4
		return
	}
	var count int
	if count, n, err = entryCount(b, n, 4, offset); err != nil {
		return
	}
	self.SampleCount = uint32(count)
	self.Entries = make([]uint32, count)
	for i := range self.Entries {
		self.Entries[i] = pio.U32BE(b[n:])
		n += 4
	}
	return
}
