// Package h265 decodes the HEVC decoder configuration record carried by hvcC boxes.
package h265

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"

	"github.com/deepch/vdk/utils/bits/pio"
)

// NAL unit types of the parameter set arrays.
const (
	NaluVPS = 32
	NaluSPS = 33
	NaluPPS = 34
)

const minRecordSize = 23

var ErrDecconfInvalid = errors.New("h265parser: HEVCDecoderConfRecord invalid")

// HEVCDecoderConfRecord represents the HEVC decoder configuration record.
type HEVCDecoderConfRecord struct {
	GeneralProfileSpace              uint8
	GeneralTierFlag                  bool
	GeneralProfileIDC                uint8
	GeneralProfileCompatibilityFlags uint32
	GeneralConstraintIndicatorFlags  [6]byte
	GeneralLevelIDC                  uint8
	ChromaFormat                     uint8
	BitDepthLuma                     uint8
	BitDepthChroma                   uint8
	LengthSizeMinusOne               uint8
	VPS                              [][]byte
	SPS                              [][]byte
	PPS                              [][]byte
}

func (hevc *HEVCDecoderConfRecord) Unmarshal(b []byte) (n int, err error) {
	if len(b) < minRecordSize {
		err = ErrDecconfInvalid
		return
	}
	hevc.GeneralProfileSpace = b[1] >> 6
	hevc.GeneralTierFlag = b[1]&0x20 != 0
	hevc.GeneralProfileIDC = b[1] & 0x1f
	hevc.GeneralProfileCompatibilityFlags = pio.U32BE(b[2:])
	copy(hevc.GeneralConstraintIndicatorFlags[:], b[6:12])
	hevc.GeneralLevelIDC = b[12]
	hevc.ChromaFormat = b[16] & 0x03
	hevc.BitDepthLuma = b[17]&0x07 + 8
	hevc.BitDepthChroma = b[18]&0x07 + 8
	hevc.LengthSizeMinusOne = b[21] & 0x03
	arrays := int(b[22])
	n = minRecordSize

	for range arrays {
		if len(b) < n+3 {
			err = ErrDecconfInvalid
			return
		}
		typ := b[n] & 0x3f
		count := int(pio.U16BE(b[n+1:]))
		n += 3
		for range count {
			if len(b) < n+2 {
				err = ErrDecconfInvalid
				return
			}
			l := int(pio.U16BE(b[n:]))
			n += 2
			if len(b) < n+l {
				err = ErrDecconfInvalid
				return
			}
			nalu := b[n : n+l]
			n += l
			switch typ {
			case NaluVPS:
				hevc.VPS = append(hevc.VPS, nalu)
			case NaluSPS:
				hevc.SPS = append(hevc.SPS, nalu)
			case NaluPPS:
				hevc.PPS = append(hevc.PPS, nalu)
			}
		}
	}
	return
}

// CodecString returns the RFC 6381 codec string for the sample entry
// format, e.g. hvc1.1.6.L93.B0.
func (hevc *HEVCDecoderConfRecord) CodecString(format string) string {
	var sb strings.Builder
	sb.WriteString(format)
	sb.WriteByte('.')
	if hevc.GeneralProfileSpace > 0 {
		sb.WriteByte('A' + hevc.GeneralProfileSpace - 1)
	}
	fmt.Fprintf(&sb, "%d.%X.", hevc.GeneralProfileIDC, bits.Reverse32(hevc.GeneralProfileCompatibilityFlags))
	if hevc.GeneralTierFlag {
		sb.WriteByte('H')
	} else {
		sb.WriteByte('L')
	}
	fmt.Fprintf(&sb, "%d", hevc.GeneralLevelIDC)

	constraints := hevc.GeneralConstraintIndicatorFlags[:]
	for len(constraints) > 0 && constraints[len(constraints)-1] == 0 {
		constraints = constraints[:len(constraints)-1]
	}
	for _, c := range constraints {
		fmt.Fprintf(&sb, ".%X", c)
	}
	return sb.String()
}
