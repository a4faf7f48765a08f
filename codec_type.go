package mediaprobe

// CodecType represents the type of a codec.
type CodecType uint32

// avCodecTypeMagic is a magic number used to create unique codec types.
const avCodecTypeMagic = 233333

// makeAudioCodecType creates an audio CodecType based on the provided base.
func makeAudioCodecType(base uint32) (c CodecType) {
	c = CodecType(base)<<codecTypeOtherBits | CodecType(codecTypeAudioBit)
	return
}

// makeVideoCodecType creates a video CodecType based on the provided base.
func makeVideoCodecType(base uint32) (c CodecType) {
	c = CodecType(base) << codecTypeOtherBits
	return
}

// variables representing specific codec types.
var (
	H264     = makeVideoCodecType(avCodecTypeMagic + 1) //nolint:mnd
	H265     = makeVideoCodecType(avCodecTypeMagic + 2) //nolint:mnd
	VP8      = makeVideoCodecType(avCodecTypeMagic + 4) //nolint:mnd
	VP9      = makeVideoCodecType(avCodecTypeMagic + 5) //nolint:mnd
	AV1      = makeVideoCodecType(avCodecTypeMagic + 6) //nolint:mnd
	MJPEG    = makeVideoCodecType(avCodecTypeMagic + 7) //nolint:mnd
	ProRes   = makeVideoCodecType(avCodecTypeMagic + 8) //nolint:mnd
	AAC      = makeAudioCodecType(avCodecTypeMagic + 1) //nolint:mnd
	PCMMulaw = makeAudioCodecType(avCodecTypeMagic + 2) //nolint:mnd
	PCMAlaw  = makeAudioCodecType(avCodecTypeMagic + 3) //nolint:mnd
	Opus     = makeAudioCodecType(avCodecTypeMagic + 7) //nolint:mnd
	MP3      = makeAudioCodecType(avCodecTypeMagic + 8) //nolint:mnd
	Vorbis   = makeAudioCodecType(avCodecTypeMagic + 9) //nolint:mnd
	PCMU8    = makeAudioCodecType(avCodecTypeMagic + 10) //nolint:mnd
	PCMS16   = makeAudioCodecType(avCodecTypeMagic + 11) //nolint:mnd
	PCMS24   = makeAudioCodecType(avCodecTypeMagic + 12) //nolint:mnd
	PCMS32   = makeAudioCodecType(avCodecTypeMagic + 13) //nolint:mnd
	PCMF32   = makeAudioCodecType(avCodecTypeMagic + 14) //nolint:mnd
	AIFF     = makeAudioCodecType(avCodecTypeMagic + 15) //nolint:mnd
)

// Bitwise flags for codec types.
const (
	codecTypeAudioBit  = 0x1
	codecTypeOtherBits = 1
)

// String returns the short lowercase codec name used in track listings.
func (ct CodecType) String() string {
	switch ct {
	case H264:
		return "h264"
	case H265:
		return "h265"
	case VP8:
		return "vp8"
	case VP9:
		return "vp9"
	case AV1:
		return "av1"
	case MJPEG:
		return "mjpeg"
	case ProRes:
		return "prores"
	case AAC:
		return "aac"
	case PCMMulaw:
		return "pcm-mulaw"
	case PCMAlaw:
		return "pcm-alaw"
	case Opus:
		return "opus"
	case MP3:
		return "mp3"
	case Vorbis:
		return "vorbis"
	case PCMU8:
		return "pcm-u8"
	case PCMS16:
		return "pcm-s16"
	case PCMS24:
		return "pcm-s24"
	case PCMS32:
		return "pcm-s32"
	case PCMF32:
		return "pcm-f32"
	case AIFF:
		return "aiff"
	}
	return "unknown"
}

// MarshalText renders the codec by name in JSON and YAML output.
func (ct CodecType) MarshalText() ([]byte, error) {
	return []byte(ct.String()), nil
}

// IsAudio returns true if the CodecType represents an audio codec.
func (ct CodecType) IsAudio() bool {
	return ct&codecTypeAudioBit != 0
}

// IsVideo returns true if the CodecType represents a video codec.
func (ct CodecType) IsVideo() bool {
	return ct&codecTypeAudioBit == 0
}

// SampleFormat returns the sample layout of uncompressed PCM codecs, 0 otherwise.
func (ct CodecType) SampleFormat() SampleFormat {
	switch ct {
	case PCMU8:
		return U8
	case PCMS16, AIFF:
		return S16
	case PCMS24:
		return S24
	case PCMS32:
		return S32
	case PCMF32:
		return FLT
	}
	return 0
}
