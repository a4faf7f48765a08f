package mp4io

import (
	"fmt"

	"github.com/deepch/vdk/utils/bits/pio"
)

const (
	MP4ESDescrTag          = 3
	MP4DecConfigDescrTag   = 4
	MP4DecSpecificDescrTag = 5
	MP4SLConfigDescrTag    = 6
)

// Object type indications of the decoder config descriptor.
const (
	ObjectTypeAAC       = 0x40
	ObjectTypeAACMain   = 0x66
	ObjectTypeAACLC     = 0x67
	ObjectTypeAACSSR    = 0x68
	ObjectTypeMP3       = 0x69
	ObjectTypeMP1Audio  = 0x6B
	ObjectTypeVorbis    = 0xDD
	ObjectTypeUndefined = 0
)

// ElemStreamDesc is the esds box.
type ElemStreamDesc struct {
	FullBox
	ESID          uint16
	ObjectType    uint8
	StreamType    uint8
	MaxBitrate    uint32
	AvgBitrate    uint32
	DecConfig     []byte
	hasDecoderCfg bool
	BoxPos
}

func (self *ElemStreamDesc) Tag() Tag        { return ESDS }
func (self *ElemStreamDesc) Children() []Box { return nil }

func (self *ElemStreamDesc) String() string {
	return fmt.Sprintf("object_type=0x%02x config=%d", self.ObjectType, len(self.DecConfig))
}

// HasDecoderConfig reports whether a decoder config descriptor was present.
func (self *ElemStreamDesc) HasDecoderConfig() bool {
	return self.hasDecoderCfg
}

func (self *ElemStreamDesc) Unmarshal(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	for n < len(b) {
		var m int
		if m, err = self.parseDesc(b[n:], offset+int64(n)); err != nil {
			return
		}
		n += m
	}
	return
}

func (self *ElemStreamDesc) parseDesc(b []byte, offset int64) (n int, err error) {
	var hdrlen, datalen int
	var tag uint8
	if hdrlen, tag, datalen, err = self.parseDescHdr(b, offset); err != nil {
		return
	}
	n += hdrlen

	if len(b) < n+datalen {
		err = parseErr("datalen", offset+int64(n), err)
		return
	}
	body := b[n : n+datalen]

	switch tag {
	case MP4ESDescrTag:
		if len(body) < 3 {
			err = parseErr("MP4ESDescrTag", offset+int64(n), err)
			return
		}
		self.ESID = pio.U16BE(body)
		flags := body[2]
		skip := 3
		if flags&0x80 != 0 {
			skip += 2
		}
		if flags&0x40 != 0 {
			if len(body) < skip+1 {
				err = parseErr("URL", offset+int64(n+skip), err)
				return
			}
			skip += 1 + int(body[skip])
		}
		if flags&0x20 != 0 {
			skip += 2
		}
		if err = self.parseDescs(body, skip, offset+int64(n)); err != nil {
			return
		}

	case MP4DecConfigDescrTag:
		const size = 1 + 1 + 3 + 4 + 4
		if len(body) < size {
			err = parseErr("MP4DecConfigDescrTag", offset+int64(n), err)
			return
		}
		self.hasDecoderCfg = true
		self.ObjectType = body[0]
		self.StreamType = body[1] >> 2
		self.MaxBitrate = pio.U32BE(body[5:])
		self.AvgBitrate = pio.U32BE(body[9:])
		if err = self.parseDescs(body, size, offset+int64(n)); err != nil {
			return
		}

	case MP4DecSpecificDescrTag:
		self.DecConfig = append([]byte(nil), body...)
	}

	n += datalen
	return
}

func (self *ElemStreamDesc) parseDescs(b []byte, n int, offset int64) (err error) {
	for n < len(b) {
		var m int
		if m, err = self.parseDesc(b[n:], offset+int64(n)); err != nil {
			return
		}
		n += m
	}
	return
}

func (self *ElemStreamDesc) parseLength(b []byte, offset int64) (n int, length int, err error) {
	for n < 4 {
		if len(b) < n+1 {
			err = parseErr("len", offset+int64(n), err)
			return
		}
		c := b[n]
		n++
		length = (length << 7) | (int(c) & 0x7f)
		if c&0x80 == 0 {
			break
		}
	}
	return
}

func (self *ElemStreamDesc) parseDescHdr(b []byte, offset int64) (n int, tag uint8, datalen int, err error) {
	if len(b) < n+1 {
		err = parseErr("tag", offset+int64(n), err)
		return
	}
	tag = b[n]
	n++
	var lenlen int
	if lenlen, datalen, err = self.parseLength(b[n:], offset+int64(n)); err != nil {
		return
	}
	n += lenlen
	return
}
