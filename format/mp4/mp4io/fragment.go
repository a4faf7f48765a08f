package mp4io

import (
	"fmt"

	"github.com/deepch/vdk/utils/bits/pio"
)

// tfhd flags.
const (
	TFHDBaseDataOffset    = uint32(0x01)
	TFHDStsdID            = uint32(0x02)
	TFHDDefaultDuration   = uint32(0x08)
	TFHDDefaultSize       = uint32(0x10)
	TFHDDefaultFlags      = uint32(0x20)
	TFHDDurationIsEmpty   = uint32(0x10000)
	TFHDDefaultBaseIsMOOF = uint32(0x20000)
)

// TrackFragHeader is the tfhd box.
type TrackFragHeader struct {
	FullBox
	TrackID         uint32
	BaseDataOffset  uint64
	StsdID          uint32
	DefaultDuration uint32
	DefaultSize     uint32
	DefaultFlags    uint32
	BoxPos
}

func (self *TrackFragHeader) Tag() Tag        { return TFHD }
func (self *TrackFragHeader) Children() []Box { return nil }

func (self *TrackFragHeader) String() string {
	return fmt.Sprintf("track_id=%d", self.TrackID)
}

func (self *TrackFragHeader) Unmarshal(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	if len(b) < n+4 {
		err = parseErr("TrackID", offset+int64(n), err)
		return
	}
	self.TrackID = pio.U32BE(b[n:])
	n += 4
	if self.Flags&TFHDBaseDataOffset != 0 {
		if len(b) < n+8 {
			err = parseErr("BaseDataOffset", offset+int64(n), err)
			return
		}
		self.BaseDataOffset = pio.U64BE(b[n:])
		n += 8
	}
	for _, f := range []struct {
		flag uint32
		name string
		dst  *uint32
	}{
		{TFHDStsdID, "StsdID", &self.StsdID},
		{TFHDDefaultDuration, "DefaultDuration", &self.DefaultDuration},
		{TFHDDefaultSize, "DefaultSize", &self.DefaultSize},
		{TFHDDefaultFlags, "DefaultFlags", &self.DefaultFlags},
	} {
		if self.Flags&f.flag == 0 {
			continue
		}
		if len(b) < n+4 {
			err = parseErr(f.name, offset+int64(n), err)
			return
		}
		*f.dst = pio.U32BE(b[n:])
		n += 4
	}
	return
}

// TrackFragDecodeTime is the tfdt box.
type TrackFragDecodeTime struct {
	FullBox
	Time uint64
	BoxPos
}

func (self *TrackFragDecodeTime) Tag() Tag        { return TFDT }
func (self *TrackFragDecodeTime) Children() []Box { return nil }

func (self *TrackFragDecodeTime) String() string {
	return fmt.Sprintf("time=%d", self.Time)
}

func (self *TrackFragDecodeTime) Unmarshal(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	if self.Version == 1 {
		if len(b) < n+8 {
			err = parseErr("Time", offset+int64(n), err)
			return
		}
		self.Time = pio.U64BE(b[n:])
		n += 8
		return
	}
	if len(b) < n+4 {
		err = parseErr("Time", offset+int64(n), err)
		return
	}
	self.Time = uint64(pio.U32BE(b[n:]))
	n += 4
	return
}

// trun flags.
const (
	TRUNDataOffset       = 0x01
	TRUNFirstSampleFlags = 0x04
	TRUNSampleDuration   = 0x100
	TRUNSampleSize       = 0x200
	TRUNSampleFlags      = 0x400
	TRUNSampleCTS        = 0x800
)

type TrackFragRunEntry struct {
	Duration uint32
	Size     uint32
	Flags    uint32
	Cts      int32
}

// TrackFragRun is the trun box.
type TrackFragRun struct {
	FullBox
	DataOffset       int32
	FirstSampleFlags uint32
	Entries          []TrackFragRunEntry
	BoxPos
}

func (self *TrackFragRun) Tag() Tag        { return TRUN }
func (self *TrackFragRun) Children() []Box { return nil }

func (self *TrackFragRun) String() string {
	return fmt.Sprintf("samples=%d data_offset=%d", len(self.Entries), self.DataOffset)
}

func (self *TrackFragRun) entrySize() (n int) {
	for _, f := range []uint32{TRUNSampleDuration, TRUNSampleSize, TRUNSampleFlags, TRUNSampleCTS} {
		if self.Flags&f != 0 {
			n += 4
		}
	}
	return
}

func (self *TrackFragRun) Unmarshal(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	if len(b) < n+4 {
		err = parseErr("SampleCount", offset+int64(n), err)
		return
	}
	count := uint64(pio.U32BE(b[n:]))
	n += 4
	if self.Flags&TRUNDataOffset != 0 {
		if len(b) < n+4 {
			err = parseErr("DataOffset", offset+int64(n), err)
			return
		}
		self.DataOffset = pio.I32BE(b[n:])
		n += 4
	}
	if self.Flags&TRUNFirstSampleFlags != 0 {
		if len(b) < n+4 {
			err = parseErr("FirstSampleFlags", offset+int64(n), err)
			return
		}
		self.FirstSampleFlags = pio.U32BE(b[n:])
		n += 4
	}
	if uint64(len(b)-n) < count*uint64(self.entrySize()) {
		err = parseErr("Entries", offset+int64(n), err)
		return
	}
	self.Entries = make([]TrackFragRunEntry, count)
	for i := range self.Entries {
		entry := &self.Entries[i]
		if self.Flags&TRUNSampleDuration != 0 {
			entry.Duration = pio.U32BE(b[n:])
			n += 4
		}
		if self.Flags&TRUNSampleSize != 0 {
			entry.Size = pio.U32BE(b[n:])
			n += 4
		}
		if self.Flags&TRUNSampleFlags != 0 {
			entry.Flags = pio.U32BE(b[n:])
			n += 4
		}
		if self.Flags&TRUNSampleCTS != 0 {
			entry.Cts = pio.I32BE(b[n:])
			n += 4
		}
	}
	return
}
