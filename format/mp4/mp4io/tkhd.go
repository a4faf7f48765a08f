package mp4io

import (
	"fmt"
	"math"
	"time"

	"github.com/deepch/vdk/utils/bits/pio"
)

// TrackHeader is the tkhd box.
type TrackHeader struct {
	FullBox
	CreateTime     time.Time
	ModifyTime     time.Time
	TrackID        uint32
	Duration       uint64
	Layer          int16
	AlternateGroup int16
	Volume         float64
	Matrix         [9]int32
	TrackWidth     float64
	TrackHeight    float64
	BoxPos
}

func (self *TrackHeader) Tag() Tag        { return TKHD }
func (self *TrackHeader) Children() []Box { return nil }

func (self *TrackHeader) String() string {
	return fmt.Sprintf("track_id=%d %gx%g", self.TrackID, self.TrackWidth, self.TrackHeight)
}

// Rotation returns the clockwise display rotation in degrees encoded in the matrix.
func (self *TrackHeader) Rotation() int {
	a := float64(self.Matrix[0]) / 65536
	b := float64(self.Matrix[1]) / 65536
	deg := int(math.Round(math.Atan2(b, a) * 180 / math.Pi))
	if deg < 0 {
		deg += 360
	}
	return deg % 360
}

func (self *TrackHeader) Unmarshal(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	if self.Version == 1 {
		if len(b) < n+32 {
			err = parseErr("Times", offset+int64(n), err)
			return
		}
		self.CreateTime = GetTime64(b[n:])
		self.ModifyTime = GetTime64(b[n+8:])
		self.TrackID = pio.U32BE(b[n+16:])
		self.Duration = pio.U64BE(b[n+24:])
		n += 32
	} else {
		if len(b) < n+20 {
			err = parseErr("Times", offset+int64(n), err)
			return
		}
		self.CreateTime = GetTime32(b[n:])
		self.ModifyTime = GetTime32(b[n+4:])
		self.TrackID = pio.U32BE(b[n+8:])
		self.Duration = uint64(pio.U32BE(b[n+16:]))
		n += 20
	}
	n += 8
	if len(b) < n+8 {
		err = parseErr("Layer", offset+int64(n), err)
		return
	}
	self.Layer = pio.I16BE(b[n:])
	n += 2
	self.AlternateGroup = pio.I16BE(b[n:])
	n += 2
	self.Volume = GetFixed16(b[n:])
	n += 2
	n += 2
	if len(b) < n+4*len(self.Matrix) {
		err = parseErr("Matrix", offset+int64(n), err)
		return
	}
	for i := range self.Matrix {
		self.Matrix[i] = pio.I32BE(b[n:])
		n += 4
	}
	if len(b) < n+8 {
		err = parseErr("TrackWidth", offset+int64(n), err)
		return
	}
	self.TrackWidth = GetFixed32(b[n:])
	n += 4
	self.TrackHeight = GetFixed32(b[n:])
	n += 4
	return
}
