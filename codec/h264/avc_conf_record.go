// Package h264 decodes the AVC decoder configuration record carried by avcC boxes.
package h264

import (
	"errors"
	"fmt"

	"github.com/deepch/vdk/utils/bits/pio"
)

const (
	maskLengthSizeMinusOne = 0x03
	maskSPSCount           = 0x1f
	minRecordSize          = 7
)

var ErrDecconfInvalid = errors.New("h264parser: AVCDecoderConfRecord invalid")

// AVCDecoderConfRecord represents the AVC decoder configuration record.
type AVCDecoderConfRecord struct {
	AVCProfileIndication uint8    // Profile indication for the AVC stream.
	ProfileCompatibility uint8    // Profile compatibility for the AVC stream.
	AVCLevelIndication   uint8    // Level indication for the AVC stream.
	LengthSizeMinusOne   uint8    // Length size (in bytes) minus one for the AVC stream.
	SPS                  [][]byte // Sequence Parameter Sets (SPS) containing the SPS NALUs.
	PPS                  [][]byte // Picture Parameter Sets (PPS) containing the PPS NALUs.
}

// Unmarshal decodes the binary representation of AVCDecoderConfRecord from the given byte slice.
// It returns the number of bytes read and any decoding error encountered.
func (avc *AVCDecoderConfRecord) Unmarshal(b []byte) (n int, err error) {
	if len(b) < minRecordSize {
		err = ErrDecconfInvalid
		return
	}

	avc.AVCProfileIndication = b[1]
	avc.ProfileCompatibility = b[2]
	avc.AVCLevelIndication = b[3]
	avc.LengthSizeMinusOne = b[4] & maskLengthSizeMinusOne
	spscount := int(b[5] & maskSPSCount)
	n += 6

	if avc.SPS, n, err = readParamSets(b, n, spscount); err != nil {
		return
	}

	if len(b) < n+1 {
		err = ErrDecconfInvalid
		return
	}
	ppscount := int(b[n])
	n++

	avc.PPS, n, err = readParamSets(b, n, ppscount)
	return
}

func readParamSets(b []byte, n, count int) (sets [][]byte, next int, err error) {
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
		sets = append(sets, b[n:n+l])
		n += l
	}
	next = n
	return
}

// CodecString returns the RFC 6381 codec string for the sample entry
// format, e.g. avc1.64001f.
func (avc *AVCDecoderConfRecord) CodecString(format string) string {
	return fmt.Sprintf("%s.%02x%02x%02x", format, avc.AVCProfileIndication, avc.ProfileCompatibility, avc.AVCLevelIndication)
}
