package mp4io

import (
	"bytes"

	"github.com/deepch/vdk/utils/bits/pio"
)

// HandlerRefer is the hdlr box. SubType is the media handler, e.g. vide or soun.
type HandlerRefer struct {
	FullBox
	Type    Tag
	SubType Tag
	Name    string
	BoxPos
}

func (self *HandlerRefer) Tag() Tag        { return HDLR }
func (self *HandlerRefer) Children() []Box { return nil }

func (self *HandlerRefer) String() string {
	return "handler=" + self.SubType.String()
}

func (self *HandlerRefer) Unmarshal(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	if len(b) < n+20 {
		err = parseErr("SubType", offset+int64(n), err)
		return
	}
	self.Type = Tag(pio.U32BE(b[n:]))
	self.SubType = Tag(pio.U32BE(b[n+4:]))
	n += 20
	name := b[n:]
	// QuickTime writes a counted string, ISO a null terminated one.
	if len(name) > 0 && int(name[0]) == len(name)-1 && self.Type != 0 {
		name = name[1:]
	}
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	self.Name = string(name)
	n = len(b)
	return
}
