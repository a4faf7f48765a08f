// Package opus decodes the Opus specific box (dOps) of Opus sample entries.
package opus

import (
	"errors"

	"github.com/deepch/vdk/utils/bits/pio"
)

const specificBoxSize = 11

var ErrSpecificBoxInvalid = errors.New("opus: OpusSpecificBox invalid")

// SpecificBox is the body of dOps.
type SpecificBox struct {
	Version              uint8
	OutputChannelCount   uint8
	PreSkip              uint16
	InputSampleRate      uint32
	OutputGain           int16
	ChannelMappingFamily uint8
	StreamCount          uint8
	CoupledCount         uint8
	ChannelMapping       []byte
}

// OutputSampleRate is the rate Opus always decodes at.
const OutputSampleRate = 48000

func (s *SpecificBox) Unmarshal(b []byte) (n int, err error) {
	if len(b) < specificBoxSize {
		err = ErrSpecificBoxInvalid
		return
	}
	s.Version = b[0]
	s.OutputChannelCount = b[1]
	s.PreSkip = pio.U16BE(b[2:])
	s.InputSampleRate = pio.U32BE(b[4:])
	s.OutputGain = pio.I16BE(b[8:])
	s.ChannelMappingFamily = b[10]
	n = specificBoxSize
	if s.ChannelMappingFamily == 0 {
		return
	}
	if len(b) < n+2+int(s.OutputChannelCount) {
		err = ErrSpecificBoxInvalid
		return
	}
	s.StreamCount = b[n]
	s.CoupledCount = b[n+1]
	n += 2
	s.ChannelMapping = b[n : n+int(s.OutputChannelCount)]
	n += int(s.OutputChannelCount)
	return
}
