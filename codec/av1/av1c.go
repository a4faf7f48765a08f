// Package av1 decodes the AV1 codec configuration record carried by av1C boxes.
package av1

import (
	"errors"
	"fmt"
)

const recordHeaderSize = 4

var ErrConfigInvalid = errors.New("av1parser: AV1CodecConfigurationRecord invalid")

// CodecConfigurationRecord is the fixed part of the av1C box followed by the
// configuration OBUs.
type CodecConfigurationRecord struct {
	Version              uint8
	SeqProfile           uint8
	SeqLevelIdx0         uint8
	SeqTier0             uint8
	HighBitdepth         bool
	TwelveBit            bool
	Monochrome           bool
	ChromaSubsamplingX   uint8
	ChromaSubsamplingY   uint8
	ChromaSamplePosition uint8
	ConfigOBUs           []byte
}

// Color is the coded colour description appended to the codec string.
type Color struct {
	Primaries uint16
	Transfer  uint16
	Matrix    uint16
	FullRange bool
}

func (c *CodecConfigurationRecord) Unmarshal(b []byte) (n int, err error) {
	if len(b) < recordHeaderSize || b[0]&0x80 == 0 {
		err = ErrConfigInvalid
		return
	}
	c.Version = b[0] & 0x7f
	c.SeqProfile = b[1] >> 5
	c.SeqLevelIdx0 = b[1] & 0x1f
	c.SeqTier0 = b[2] >> 7
	c.HighBitdepth = b[2]&0x40 != 0
	c.TwelveBit = b[2]&0x20 != 0
	c.Monochrome = b[2]&0x10 != 0
	c.ChromaSubsamplingX = b[2] >> 3 & 1
	c.ChromaSubsamplingY = b[2] >> 2 & 1
	c.ChromaSamplePosition = b[2] & 0x03
	c.ConfigOBUs = b[recordHeaderSize:]
	n = len(b)
	return
}

// BitDepth returns 8, 10 or 12.
func (c *CodecConfigurationRecord) BitDepth() int {
	switch {
	case c.SeqProfile == 2 && c.HighBitdepth && c.TwelveBit:
		return 12
	case c.HighBitdepth:
		return 10
	}
	return 8
}

// CodecString returns the codec string of the form av01.P.LLT.DD, extended
// with the colour fields when color is not nil.
func (c *CodecConfigurationRecord) CodecString(color *Color) string {
	tier := 'M'
	if c.SeqTier0 == 1 {
		tier = 'H'
	}
	s := fmt.Sprintf("av01.%d.%02d%c.%02d", c.SeqProfile, c.SeqLevelIdx0, tier, c.BitDepth())
	if color == nil {
		return s
	}
	mono := 0
	if c.Monochrome {
		mono = 1
	}
	position := c.ChromaSamplePosition
	if c.ChromaSubsamplingX != 1 || c.ChromaSubsamplingY != 1 {
		position = 0
	}
	full := 0
	if color.FullRange {
		full = 1
	}
	return fmt.Sprintf("%s.%d.%d%d%d.%02d.%02d.%02d.%d", s, mono,
		c.ChromaSubsamplingX, c.ChromaSubsamplingY, position,
		color.Primaries, color.Transfer, color.Matrix, full)
}
