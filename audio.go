package mediaprobe

import "math/bits"

// SampleFormat is the layout of one uncompressed audio sample.
type SampleFormat uint8

const (
	U8 SampleFormat = iota + 1
	S16
	S24 // Packed, three bytes.
	S32
	FLT
)

var sampleFormats = [...]struct {
	name  string
	bytes int
}{
	U8:  {"u8", 1},
	S16: {"s16", 2},
	S24: {"s24", 3},
	S32: {"s32", 4},
	FLT: {"f32", 4},
}

func (sf SampleFormat) valid() bool {
	return sf != 0 && int(sf) < len(sampleFormats)
}

// BytesPerSample is the size of one sample of one channel, 0 for compressed audio.
func (sf SampleFormat) BytesPerSample() int {
	if !sf.valid() {
		return 0
	}
	return sampleFormats[sf].bytes
}

func (sf SampleFormat) String() string {
	if !sf.valid() {
		return "none"
	}
	return sampleFormats[sf].name
}

// ChannelLayout is a bit set of speaker positions.
type ChannelLayout uint16

const (
	ChFrontCenter ChannelLayout = 1 << iota
	ChFrontLeft
	ChFrontRight
	ChBackCenter
	ChBackLeft
	ChBackRight
	ChSideLeft
	ChSideRight
	ChLowFreq

	ChMono     = ChFrontCenter
	ChStereo   = ChFrontLeft | ChFrontRight
	ChSurround = ChStereo | ChFrontCenter
	Ch3P1      = ChSurround | ChLowFreq
	Ch5P0      = ChSurround | ChBackLeft | ChBackRight
	Ch5P1      = Ch5P0 | ChLowFreq
	Ch7P1      = Ch5P1 | ChSideLeft | ChSideRight
)

// Layouts indexed by channel count, following the MPEG-4 channel configurations.
var layoutsByCount = map[int]ChannelLayout{
	1: ChMono,
	2: ChStereo,
	3: ChSurround,
	4: Ch3P1,
	5: Ch5P0,
	6: Ch5P1,
	8: Ch7P1,
}

var layoutNames = map[ChannelLayout]string{
	ChMono:     "mono",
	ChStereo:   "stereo",
	ChSurround: "3.0",
	Ch3P1:      "3.1",
	Ch5P0:      "5.0",
	Ch5P1:      "5.1",
	Ch7P1:      "7.1",
}

// LayoutForChannels returns the usual layout for n channels, 0 when there is none.
func LayoutForChannels(n int) ChannelLayout {
	return layoutsByCount[n]
}

// Count is the number of speaker positions in the layout.
func (ch ChannelLayout) Count() int {
	return bits.OnesCount16(uint16(ch))
}

func (ch ChannelLayout) String() string {
	if name, ok := layoutNames[ch]; ok {
		return name
	}
	if ch == 0 {
		return "unknown"
	}
	return "custom"
}
