package mediaprobe

// Rational is a numerator/denominator pair.
type Rational struct {
	Num uint32 `json:"num"`
	Den uint32 `json:"den"`
}

// ColorParams carries the color description of a video track. Fields the
// container does not map to a known name are empty.
type ColorParams struct {
	TransferCharacteristics string `json:"transferCharacteristics,omitempty"`
	MatrixCoefficients      string `json:"matrixCoefficients,omitempty"`
	Primaries               string `json:"primaries,omitempty"`
	FullRange               *bool  `json:"fullRange,omitempty"`
}

// VideoTrack describes a video track.
type VideoTrack struct {
	TrackID             uint32       `json:"trackId"`
	TrackTimescale      uint32       `json:"timescale"`
	Codec               string       `json:"codec"`
	CodecType           CodecType    `json:"codecWithoutConfig"`
	SampleAspectRatio   Rational     `json:"sampleAspectRatio"`
	Width               uint32       `json:"width"`
	Height              uint32       `json:"height"`
	DisplayAspectWidth  uint32       `json:"displayAspectWidth"`
	DisplayAspectHeight uint32       `json:"displayAspectHeight"`
	CodedWidth          uint32       `json:"codedWidth"`
	CodedHeight         uint32       `json:"codedHeight"`
	Rotation            int          `json:"rotation"`
	FPS                 *float64     `json:"fps,omitempty"`
	Color               *ColorParams `json:"color,omitempty"`
	CodecPrivate        []byte       `json:"codecPrivate,omitempty"`
	Trak                Element      `json:"-"`
}

func (t *VideoTrack) Kind() TrackKind   { return KindVideo }
func (t *VideoTrack) ID() uint32        { return t.TrackID }
func (t *VideoTrack) Timescale() uint32 { return t.TrackTimescale }
func (t *VideoTrack) Source() Element   { return t.Trak }

// AudioTrack describes an audio track.
type AudioTrack struct {
	TrackID          uint32    `json:"trackId"`
	TrackTimescale   uint32    `json:"timescale"`
	Codec            string    `json:"codec"`
	CodecType        CodecType `json:"codecWithoutConfig"`
	NumberOfChannels uint32    `json:"numberOfChannels"`
	SampleRate       uint32    `json:"sampleRate"`
	CodecPrivate     []byte    `json:"codecPrivate,omitempty"`
	Trak             Element   `json:"-"`
}

func (t *AudioTrack) Kind() TrackKind   { return KindAudio }
func (t *AudioTrack) ID() uint32        { return t.TrackID }
func (t *AudioTrack) Timescale() uint32 { return t.TrackTimescale }
func (t *AudioTrack) Source() Element   { return t.Trak }

// ChannelLayout guesses the layout from the channel count.
func (t *AudioTrack) ChannelLayout() ChannelLayout {
	return LayoutForChannels(int(t.NumberOfChannels))
}

// SampleFormat is the sample layout of PCM tracks, 0 for compressed audio.
func (t *AudioTrack) SampleFormat() SampleFormat {
	return t.CodecType.SampleFormat()
}

// OtherTrack is a track that carries neither video nor audio, e.g. timecode or metadata.
type OtherTrack struct {
	TrackID        uint32  `json:"trackId"`
	TrackTimescale uint32  `json:"timescale"`
	Handler        string  `json:"handler,omitempty"`
	Trak           Element `json:"-"`
}

func (t *OtherTrack) Kind() TrackKind   { return KindOther }
func (t *OtherTrack) ID() uint32        { return t.TrackID }
func (t *OtherTrack) Timescale() uint32 { return t.TrackTimescale }
func (t *OtherTrack) Source() Element   { return t.Trak }

// Sample is one coded frame or audio packet found in a media payload box.
type Sample struct {
	TrackID   uint32
	Kind      TrackKind
	Offset    int64
	Size      int
	DTS       int64
	CTS       int64
	Timescale uint32
	KeyFrame  bool
	Data      []byte
}
