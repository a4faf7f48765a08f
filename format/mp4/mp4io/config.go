package mp4io

import (
	"fmt"

	"github.com/deepch/vdk/utils/bits/pio"
)

// CodecConfig holds the raw body of a decoder configuration box: avcC, hvcC,
// av1C or dOps. The record itself is decoded by the codec packages.
type CodecConfig struct {
	Type Tag
	Data []byte
	BoxPos
}

func (self *CodecConfig) Tag() Tag        { return self.Type }
func (self *CodecConfig) Children() []Box { return nil }

func (self *CodecConfig) String() string {
	return fmt.Sprintf("bytes=%d", len(self.Data))
}

func (self *CodecConfig) Unmarshal(b []byte, offset int64) (n int, err error) {
	self.Data = append([]byte(nil), b...)
	n = len(b)
	return
}

// Colour types of the colr box.
var (
	ColourNCLX = StringToTag("nclx")
	ColourNCLC = StringToTag("nclc")
	ColourRICC = StringToTag("rICC")
	ColourPROF = StringToTag("prof")
)

// ColourInfo is the colr box. The coefficient fields are set only for the
// nclx and nclc colour types.
type ColourInfo struct {
	ColourType              Tag
	ColourPrimaries         uint16
	TransferCharacteristics uint16
	MatrixCoefficients      uint16
	FullRange               bool
	Profile                 []byte
	BoxPos
}

func (self *ColourInfo) Tag() Tag        { return COLR }
func (self *ColourInfo) Children() []Box { return nil }

func (self *ColourInfo) String() string {
	return fmt.Sprintf("type=%s primaries=%d transfer=%d matrix=%d",
		self.ColourType, self.ColourPrimaries, self.TransferCharacteristics, self.MatrixCoefficients)
}

// HasCoefficients reports whether the box carries coded colour parameters.
func (self *ColourInfo) HasCoefficients() bool {
	return self.ColourType == ColourNCLX || self.ColourType == ColourNCLC
}

func (self *ColourInfo) Unmarshal(b []byte, offset int64) (n int, err error) {
	if len(b) < 4 {
		err = parseErr("ColourType", offset, err)
		return
	}
	self.ColourType = Tag(pio.U32BE(b))
	n += 4
	switch self.ColourType {
	case ColourNCLX, ColourNCLC:
		if len(b) < n+6 {
			err = parseErr("Coefficients", offset+int64(n), err)
			return
		}
		self.ColourPrimaries = pio.U16BE(b[n:])
		self.TransferCharacteristics = pio.U16BE(b[n+2:])
		self.MatrixCoefficients = pio.U16BE(b[n+4:])
		n += 6
		if self.ColourType == ColourNCLX && len(b) > n {
			self.FullRange = b[n]&0x80 != 0
			n++
		}
	default:
		self.Profile = append([]byte(nil), b[n:]...)
		n = len(b)
	}
	return
}

// PixelAspect is the pasp box.
type PixelAspect struct {
	HSpacing uint32
	VSpacing uint32
	BoxPos
}

func (self *PixelAspect) Tag() Tag        { return PASP }
func (self *PixelAspect) Children() []Box { return nil }

func (self *PixelAspect) String() string {
	return fmt.Sprintf("%d:%d", self.HSpacing, self.VSpacing)
}

func (self *PixelAspect) Unmarshal(b []byte, offset int64) (n int, err error) {
	if len(b) < 8 {
		err = parseErr("Spacing", offset, err)
		return
	}
	self.HSpacing = pio.U32BE(b)
	self.VSpacing = pio.U32BE(b[4:])
	n = 8
	return
}
