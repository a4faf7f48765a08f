package mp4io

import (
	"fmt"
	"time"

	"github.com/deepch/vdk/utils/bits/pio"
)

// MediaHeader is the mdhd box.
type MediaHeader struct {
	FullBox
	CreateTime time.Time
	ModifyTime time.Time
	TimeScale  uint32
	Duration   uint64
	Language   string
	Quality    int16
	BoxPos
}

func (self *MediaHeader) Tag() Tag        { return MDHD }
func (self *MediaHeader) Children() []Box { return nil }

func (self *MediaHeader) String() string {
	return fmt.Sprintf("timescale=%d duration=%d lang=%s", self.TimeScale, self.Duration, self.Language)
}

func (self *MediaHeader) Unmarshal(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	if self.Version == 1 {
		if len(b) < n+28 {
			err = parseErr("Times", offset+int64(n), err)
			return
		}
		self.CreateTime = GetTime64(b[n:])
		self.ModifyTime = GetTime64(b[n+8:])
		self.TimeScale = pio.U32BE(b[n+16:])
		self.Duration = pio.U64BE(b[n+20:])
		n += 28
	} else {
		if len(b) < n+16 {
			err = parseErr("Times", offset+int64(n), err)
			return
		}
		self.CreateTime = GetTime32(b[n:])
		self.ModifyTime = GetTime32(b[n+4:])
		self.TimeScale = pio.U32BE(b[n+8:])
		self.Duration = uint64(pio.U32BE(b[n+12:]))
		n += 16
	}
	if len(b) < n+4 {
		err = parseErr("Language", offset+int64(n), err)
		return
	}
	self.Language = decodeLanguage(pio.U16BE(b[n:]))
	n += 2
	self.Quality = pio.I16BE(b[n:])
	n += 2
	return
}

// decodeLanguage unpacks the ISO-639-2/T code stored as three 5-bit letters.
func decodeLanguage(v uint16) string {
	if v == 0 || v == 0x7fff {
		return "und"
	}
	return string([]byte{
		byte(v>>10&0x1f) + 0x60,
		byte(v>>5&0x1f) + 0x60,
		byte(v&0x1f) + 0x60,
	})
}
