package mp4io

import (
	"fmt"
	"time"

	"github.com/deepch/vdk/utils/bits/pio"
)

// MovieHeader is the mvhd box.
type MovieHeader struct {
	FullBox
	CreateTime      time.Time
	ModifyTime      time.Time
	TimeScale       uint32
	Duration        uint64
	PreferredRate   float64
	PreferredVolume float64
	Matrix          [9]int32
	NextTrackID     uint32
	BoxPos
}

func (self *MovieHeader) Tag() Tag        { return MVHD }
func (self *MovieHeader) Children() []Box { return nil }

func (self *MovieHeader) String() string {
	return fmt.Sprintf("timescale=%d duration=%d next_track_id=%d", self.TimeScale, self.Duration, self.NextTrackID)
}

func (self *MovieHeader) Unmarshal(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	timeLen := 4
	if self.Version == 1 {
		timeLen = 8
	}
	if len(b) < n+3*timeLen+4 {
		err = parseErr("Times", offset+int64(n), err)
		return
	}
	if self.Version == 1 {
		self.CreateTime = GetTime64(b[n:])
		self.ModifyTime = GetTime64(b[n+8:])
		self.TimeScale = pio.U32BE(b[n+16:])
		self.Duration = pio.U64BE(b[n+20:])
	} else {
		self.CreateTime = GetTime32(b[n:])
		self.ModifyTime = GetTime32(b[n+4:])
		self.TimeScale = pio.U32BE(b[n+8:])
		self.Duration = uint64(pio.U32BE(b[n+12:]))
	}
	n += 3*timeLen + 4
	if len(b) < n+80 {
		err = parseErr("PreferredRate", offset+int64(n), err)
		return
	}
	self.PreferredRate = GetFixed32(b[n:])
	n += 4
	self.PreferredVolume = GetFixed16(b[n:])
	n += 2
	n += 10
	for i := range self.Matrix {
		self.Matrix[i] = pio.I32BE(b[n:])
		n += 4
	}
	n += 24
	self.NextTrackID = pio.U32BE(b[n:])
	n += 4
	return
}
