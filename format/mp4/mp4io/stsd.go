package mp4io

import (
	"bytes"
	"fmt"
	"math"

	"github.com/deepch/vdk/utils/bits/pio"
)

// Parent is a Decoder whose body continues with child boxes after the
// fields Unmarshal consumed.
type Parent interface {
	Decoder
	SetChildren(boxes []Box)
}

// SampleDesc is the stsd box.
type SampleDesc struct {
	FullBox
	EntryCount uint32
	Entries    []Box
	BoxPos
}

func (self *SampleDesc) Tag() Tag                { return STSD }
func (self *SampleDesc) Children() []Box         { return self.Entries }
func (self *SampleDesc) SetChildren(boxes []Box) { self.Entries = boxes }

func (self *SampleDesc) Unmarshal(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	if len(b) < n+4 {
		err = parseErr("EntryCount", offset+int64(n), err)
		return
	}
	self.EntryCount = pio.U32BE(b[n:])
	n += 4
	return
}

// First returns the first sample entry.
func (self *SampleDesc) First() Box {
	if len(self.Entries) == 0 {
		return nil
	}
	return self.Entries[0]
}

// sampleEntry is the part shared by all sample entries.
type sampleEntry struct {
	Format     Tag
	DataRefIdx uint16
}

const lenSampleEntry = 8

func (self *sampleEntry) unmarshalEntry(b []byte, offset int64) (n int, err error) {
	if len(b) < lenSampleEntry {
		err = parseErr("DataRefIdx", offset, err)
		return
	}
	self.DataRefIdx = pio.U16BE(b[6:])
	n = lenSampleEntry
	return
}

// LenVideoSampleFields is the size of the fixed part of a visual sample entry.
const LenVideoSampleFields = 78

// VideoSample is a visual sample entry such as avc1 or hvc1.
type VideoSample struct {
	sampleEntry
	Width          uint16
	Height         uint16
	HorizontalRes  float64
	VerticalRes    float64
	FrameCount     uint16
	CompressorName string
	Depth          uint16
	Boxes          []Box
	BoxPos
}

func (self *VideoSample) Tag() Tag                { return self.Format }
func (self *VideoSample) Children() []Box         { return self.Boxes }
func (self *VideoSample) SetChildren(boxes []Box) { self.Boxes = boxes }

func (self *VideoSample) String() string {
	return fmt.Sprintf("%dx%d", self.Width, self.Height)
}

func (self *VideoSample) Unmarshal(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalEntry(b, offset); err != nil {
		return
	}
	if len(b) < LenVideoSampleFields {
		err = parseErr("VideoSampleFields", offset+int64(n), err)
		return
	}
	n += 16
	self.Width = pio.U16BE(b[n:])
	self.Height = pio.U16BE(b[n+2:])
	n += 4
	self.HorizontalRes = GetFixed32(b[n:])
	self.VerticalRes = GetFixed32(b[n+4:])
	n += 12
	self.FrameCount = pio.U16BE(b[n:])
	n += 2
	name := b[n : n+32]
	if l := int(name[0]); l < 32 {
		name = name[1 : 1+l]
	}
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	self.CompressorName = string(name)
	n += 32
	self.Depth = pio.U16BE(b[n:])
	n += 4
	return
}

// Config returns the first decoder configuration child with the tag.
func (self *VideoSample) Config(tag Tag) *CodecConfig {
	for _, b := range self.Boxes {
		if c, ok := b.(*CodecConfig); ok && c.Type == tag {
			return c
		}
	}
	return nil
}

// LenAudioSampleFields is the size of the fixed part of a version 0 audio
// sample entry. Version 1 adds LenAudioSampleV1 bytes, version 2 LenAudioSampleV2.
const (
	LenAudioSampleFields = 28
	LenAudioSampleV1     = 16
	LenAudioSampleV2     = 36
)

// LPCM format flags of version 2 audio sample entries.
const (
	LPCMFlagFloat     = 0x1
	LPCMFlagBigEndian = 0x2
	LPCMFlagSigned    = 0x4
)

// AudioSample is a sound sample entry such as mp4a or twos.
type AudioSample struct {
	sampleEntry
	Version          uint16
	NumberOfChannels uint32
	SampleSize       uint32
	CompressionID    int16
	SampleRate       float64

	SamplesPerPacket uint32
	BytesPerPacket   uint32
	BytesPerFrame    uint32
	BytesPerSample   uint32

	FormatFlags uint32

	Boxes []Box
	BoxPos
}

func (self *AudioSample) Tag() Tag                { return self.Format }
func (self *AudioSample) Children() []Box         { return self.Boxes }
func (self *AudioSample) SetChildren(boxes []Box) { self.Boxes = boxes }

func (self *AudioSample) String() string {
	return fmt.Sprintf("channels=%d rate=%g bits=%d", self.NumberOfChannels, self.SampleRate, self.SampleSize)
}

func (self *AudioSample) Unmarshal(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalEntry(b, offset); err != nil {
		return
	}
	if len(b) < LenAudioSampleFields {
		err = parseErr("AudioSampleFields", offset+int64(n), err)
		return
	}
	self.Version = pio.U16BE(b[n:])
	n += 8
	self.NumberOfChannels = uint32(pio.U16BE(b[n:]))
	self.SampleSize = uint32(pio.U16BE(b[n+2:]))
	self.CompressionID = pio.I16BE(b[n+4:])
	n += 8
	self.SampleRate = float64(pio.U16BE(b[n:]))
	n += 4

	switch self.Version {
	case 1:
		if len(b) < n+LenAudioSampleV1 {
			err = parseErr("AudioSampleV1", offset+int64(n), err)
			return
		}
		self.SamplesPerPacket = pio.U32BE(b[n:])
		self.BytesPerPacket = pio.U32BE(b[n+4:])
		self.BytesPerFrame = pio.U32BE(b[n+8:])
		self.BytesPerSample = pio.U32BE(b[n+12:])
		n += LenAudioSampleV1
	case 2:
		if len(b) < n+LenAudioSampleV2 {
			err = parseErr("AudioSampleV2", offset+int64(n), err)
			return
		}
		self.SampleRate = math.Float64frombits(pio.U64BE(b[n+4:]))
		self.NumberOfChannels = pio.U32BE(b[n+12:])
		self.SampleSize = pio.U32BE(b[n+20:])
		self.FormatFlags = pio.U32BE(b[n+24:])
		self.BytesPerFrame = pio.U32BE(b[n+28:])
		self.SamplesPerPacket = pio.U32BE(b[n+32:])
		n += LenAudioSampleV2
	}
	return
}

// ElemStreamDesc returns the esds child, looking into a wave box if needed.
func (self *AudioSample) ElemStreamDesc() *ElemStreamDesc {
	esds, _ := Find[*ElemStreamDesc](self)
	return esds
}

// Config returns the first decoder configuration child with the tag.
func (self *AudioSample) Config(tag Tag) *CodecConfig {
	for _, b := range self.Boxes {
		if c, ok := b.(*CodecConfig); ok && c.Type == tag {
			return c
		}
	}
	return nil
}

// MetadataSample is the mebx timed metadata sample entry.
type MetadataSample struct {
	sampleEntry
	Boxes []Box
	BoxPos
}

func (self *MetadataSample) Tag() Tag                { return MEBX }
func (self *MetadataSample) Children() []Box         { return self.Boxes }
func (self *MetadataSample) SetChildren(boxes []Box) { self.Boxes = boxes }

func (self *MetadataSample) Unmarshal(b []byte, offset int64) (n int, err error) {
	self.Format = MEBX
	return self.unmarshalEntry(b, offset)
}

// UnknownSample is a sample entry of a format nothing decodes. Its body is skipped.
type UnknownSample struct {
	sampleEntry
	BoxPos
}

func (self *UnknownSample) Tag() Tag        { return self.Format }
func (self *UnknownSample) Children() []Box { return nil }

func (self *UnknownSample) Unmarshal(b []byte, offset int64) (n int, err error) {
	if _, err = self.unmarshalEntry(b, offset); err != nil {
		return
	}
	n = len(b)
	return
}

// NewSampleEntry returns the decoder for a sample entry of the given format.
// The handler of the enclosing track decides formats not known by tag.
func NewSampleEntry(format, handler Tag) Decoder {
	switch {
	case format == MEBX:
		return &MetadataSample{}
	case VideoFormats[format]:
		return &VideoSample{sampleEntry: sampleEntry{Format: format}}
	case AudioFormats[format]:
		return &AudioSample{sampleEntry: sampleEntry{Format: format}}
	case handler == HandlerVideo:
		return &VideoSample{sampleEntry: sampleEntry{Format: format}}
	case handler == HandlerAudio:
		return &AudioSample{sampleEntry: sampleEntry{Format: format}}
	}
	return &UnknownSample{sampleEntry: sampleEntry{Format: format}}
}
