package mp4

import (
	"fmt"
	"math"

	"github.com/deepch/vdk/codec/aacparser"
	"github.com/ugparu/mediaprobe"
	"github.com/ugparu/mediaprobe/codec/av1"
	"github.com/ugparu/mediaprobe/codec/h264"
	"github.com/ugparu/mediaprobe/codec/h265"
	"github.com/ugparu/mediaprobe/codec/opus"
	"github.com/ugparu/mediaprobe/format/mp4/mp4io"
	"github.com/ugparu/mediaprobe/utils"
)

var videoCodecs = map[mp4io.Tag]mediaprobe.CodecType{
	mp4io.AVC1: mediaprobe.H264,
	mp4io.AVC3: mediaprobe.H264,
	mp4io.HVC1: mediaprobe.H265,
	mp4io.HEV1: mediaprobe.H265,
	mp4io.AV01: mediaprobe.AV1,
	mp4io.VP08: mediaprobe.VP8,
	mp4io.VP09: mediaprobe.VP9,
	mp4io.JPEG: mediaprobe.MJPEG,
	mp4io.MJPA: mediaprobe.MJPEG,
	mp4io.AP4H: mediaprobe.ProRes,
	mp4io.AP4X: mediaprobe.ProRes,
	mp4io.APCH: mediaprobe.ProRes,
	mp4io.APCN: mediaprobe.ProRes,
	mp4io.APCS: mediaprobe.ProRes,
	mp4io.APCO: mediaprobe.ProRes,
	mp4io.APRH: mediaprobe.ProRes,
	mp4io.APRN: mediaprobe.ProRes,
}

var pcmCodecs = map[mp4io.Tag]mediaprobe.CodecType{
	mp4io.TWOS: mediaprobe.PCMS16,
	mp4io.SOWT: mediaprobe.PCMS16,
	mp4io.IN24: mediaprobe.PCMS24,
	mp4io.IN32: mediaprobe.PCMS32,
	mp4io.FL32: mediaprobe.PCMF32,
	mp4io.RAW:  mediaprobe.PCMU8,
	mp4io.ULAW: mediaprobe.PCMMulaw,
	mp4io.ALAW: mediaprobe.PCMAlaw,
}

// GetTracks derives the tracks of every trak in the movie box, in file order.
// A structure without a movie box has no tracks.
func GetTracks(s *Structure) ([]mediaprobe.Track, error) {
	moov := s.Movie()
	if moov == nil {
		return nil, nil
	}
	var tracks []mediaprobe.Track
	for _, trak := range moov.Tracks() {
		track, err := MakeTrack(trak)
		if err != nil {
			return nil, err
		}
		if track != nil {
			tracks = append(tracks, track)
		}
	}
	return tracks, nil
}

// MakeTrack derives a track from a trak box. It returns nil without error when
// the box lacks the headers or sample description a track needs.
func MakeTrack(trak *mp4io.Track) (mediaprobe.Track, error) {
	tkhd, mdhd := trak.Header(), trak.MediaHeader()
	if tkhd == nil || mdhd == nil {
		return nil, nil
	}

	switch kindOf(trak.Handler()) {
	case mediaprobe.KindVideo:
		stsd := trak.SampleDesc()
		if stsd == nil {
			return nil, nil
		}
		entry, ok := stsd.First().(*mp4io.VideoSample)
		if !ok {
			return nil, nil
		}
		video, err := makeVideoTrack(trak, tkhd, mdhd, entry)
		if err != nil {
			return nil, err
		}
		return video, nil
	case mediaprobe.KindAudio:
		stsd := trak.SampleDesc()
		if stsd == nil {
			return nil, nil
		}
		entry, ok := stsd.First().(*mp4io.AudioSample)
		if !ok {
			return nil, nil
		}
		audio, err := makeAudioTrack(trak, tkhd, mdhd, entry)
		if err != nil {
			return nil, err
		}
		return audio, nil
	}

	other := &mediaprobe.OtherTrack{
		TrackID:        tkhd.TrackID,
		TrackTimescale: mdhd.TimeScale,
		Handler:        "",
		Trak:           trak,
	}
	if hdlr := trak.Handler(); hdlr != nil {
		other.Handler = hdlr.SubType.String()
	}
	return other, nil
}

func configErr(cfg *mp4io.CodecConfig, err error) error {
	return &utils.MalformedInputError{Reason: "decoding " + cfg.Type.String(), Offset: cfg.Offset, Err: err}
}

func makeVideoTrack(
	trak *mp4io.Track, tkhd *mp4io.TrackHeader, mdhd *mp4io.MediaHeader, entry *mp4io.VideoSample,
) (*mediaprobe.VideoTrack, error) {
	codecType, ok := videoCodecs[entry.Format]
	if !ok {
		return nil, &utils.UnsupportedFormatError{Kind: "video codec", Tag: entry.Format.String()}
	}

	track := &mediaprobe.VideoTrack{
		TrackID:           tkhd.TrackID,
		TrackTimescale:    mdhd.TimeScale,
		Codec:             entry.Format.String(),
		CodecType:         codecType,
		SampleAspectRatio: mediaprobe.Rational{Num: 1, Den: 1},
		CodedWidth:        uint32(entry.Width),
		CodedHeight:       uint32(entry.Height),
		Rotation:          tkhd.Rotation(),
		Trak:              trak,
	}

	colr, _ := mp4io.Find[*mp4io.ColourInfo](entry)
	if colr != nil && colr.HasCoefficients() {
		track.Color = colorParams(colr)
	}

	switch {
	case entry.Config(mp4io.AVCC) != nil:
		cfg := entry.Config(mp4io.AVCC)
		var record h264.AVCDecoderConfRecord
		if _, err := record.Unmarshal(cfg.Data); err != nil {
			return nil, configErr(cfg, err)
		}
		track.Codec = record.CodecString(entry.Format.String())
		track.CodecPrivate = cfg.Data
	case entry.Config(mp4io.HVCC) != nil:
		cfg := entry.Config(mp4io.HVCC)
		var record h265.HEVCDecoderConfRecord
		if _, err := record.Unmarshal(cfg.Data); err != nil {
			return nil, configErr(cfg, err)
		}
		track.Codec = record.CodecString(entry.Format.String())
		track.CodecPrivate = cfg.Data
	case entry.Config(mp4io.AV1C) != nil:
		cfg := entry.Config(mp4io.AV1C)
		var record av1.CodecConfigurationRecord
		if _, err := record.Unmarshal(cfg.Data); err != nil {
			return nil, configErr(cfg, err)
		}
		var color *av1.Color
		if colr != nil && colr.HasCoefficients() {
			color = &av1.Color{
				Primaries: colr.ColourPrimaries,
				Transfer:  colr.TransferCharacteristics,
				Matrix:    colr.MatrixCoefficients,
				FullRange: colr.FullRange,
			}
		}
		track.Codec = record.CodecString(color)
		track.CodecPrivate = cfg.Data
	}

	if pasp, _ := mp4io.Find[*mp4io.PixelAspect](entry); pasp != nil && pasp.HSpacing > 0 && pasp.VSpacing > 0 {
		track.SampleAspectRatio = mediaprobe.Rational{Num: pasp.HSpacing, Den: pasp.VSpacing}
	}
	sar := track.SampleAspectRatio
	track.DisplayAspectWidth = uint32(math.Round(float64(track.CodedWidth) * float64(sar.Num) / float64(sar.Den)))
	track.DisplayAspectHeight = track.CodedHeight
	track.Width, track.Height = track.DisplayAspectWidth, track.DisplayAspectHeight
	if track.Rotation == 90 || track.Rotation == 270 {
		track.Width, track.Height = track.Height, track.Width
	}

	if stts, _ := mp4io.Find[*mp4io.TimeToSample](trak); stts != nil && mdhd.Duration > 0 && mdhd.TimeScale > 0 {
		seconds := float64(mdhd.Duration) / float64(mdhd.TimeScale)
		fps := float64(stts.SampleCount()) / seconds
		track.FPS = &fps
	}
	return track, nil
}

func colorParams(colr *mp4io.ColourInfo) *mediaprobe.ColorParams {
	params := &mediaprobe.ColorParams{}
	switch colr.MatrixCoefficients {
	case 1:
		params.MatrixCoefficients = "bt709"
	case 5:
		params.MatrixCoefficients = "bt470bg"
	case 6:
		params.MatrixCoefficients = "smpte170m"
	}
	switch colr.ColourPrimaries {
	case 1:
		params.Primaries = "bt709"
	case 5:
		params.Primaries = "bt470bg"
	case 6:
		params.Primaries = "smpte170m"
	}
	switch colr.TransferCharacteristics {
	case 1:
		params.TransferCharacteristics = "bt709"
	case 6:
		params.TransferCharacteristics = "smpte170m"
	case 13:
		params.TransferCharacteristics = "iec61966-2-1"
	}
	if colr.ColourType == mp4io.ColourNCLX {
		fullRange := colr.FullRange
		params.FullRange = &fullRange
	}
	return params
}

func makeAudioTrack(
	trak *mp4io.Track, tkhd *mp4io.TrackHeader, mdhd *mp4io.MediaHeader, entry *mp4io.AudioSample,
) (*mediaprobe.AudioTrack, error) {
	track := &mediaprobe.AudioTrack{
		TrackID:          tkhd.TrackID,
		TrackTimescale:   mdhd.TimeScale,
		NumberOfChannels: entry.NumberOfChannels,
		SampleRate:       uint32(entry.SampleRate),
		Trak:             trak,
	}

	switch entry.Format {
	case mp4io.MP4A:
		if err := describeMP4A(track, entry); err != nil {
			return nil, err
		}
	case mp4io.MP3:
		track.CodecType = mediaprobe.MP3
		track.Codec = mediaprobe.MP3.String()
	case mp4io.OPUS:
		track.CodecType = mediaprobe.Opus
		track.Codec = mediaprobe.Opus.String()
		if cfg := entry.Config(mp4io.DOPS); cfg != nil {
			var box opus.SpecificBox
			if _, err := box.Unmarshal(cfg.Data); err != nil {
				return nil, configErr(cfg, err)
			}
			track.NumberOfChannels = uint32(box.OutputChannelCount)
			track.SampleRate = opus.OutputSampleRate
			track.CodecPrivate = cfg.Data
		}
	case mp4io.LPCM:
		codecType, ok := lpcmCodec(entry)
		if !ok {
			return nil, &utils.UnsupportedFormatError{
				Kind: "audio codec",
				Tag:  fmt.Sprintf("lpcm flags=0x%x bits=%d", entry.FormatFlags, entry.SampleSize),
			}
		}
		track.CodecType = codecType
		track.Codec = codecType.String()
	default:
		codecType, ok := pcmCodecs[entry.Format]
		if !ok {
			return nil, &utils.UnsupportedFormatError{Kind: "audio codec", Tag: entry.Format.String()}
		}
		track.CodecType = codecType
		track.Codec = codecType.String()
	}
	return track, nil
}

// describeMP4A resolves the codec of an mp4a entry from its esds object type.
func describeMP4A(track *mediaprobe.AudioTrack, entry *mp4io.AudioSample) error {
	esds := entry.ElemStreamDesc()
	if esds == nil || !esds.HasDecoderConfig() {
		track.CodecType = mediaprobe.AAC
		track.Codec = "mp4a.40.2"
		return nil
	}

	switch esds.ObjectType {
	case mp4io.ObjectTypeAAC, mp4io.ObjectTypeAACMain, mp4io.ObjectTypeAACLC, mp4io.ObjectTypeAACSSR:
		track.CodecType = mediaprobe.AAC
		track.Codec = fmt.Sprintf("mp4a.%x", esds.ObjectType)
		if len(esds.DecConfig) == 0 {
			return nil
		}
		config, err := aacparser.ParseMPEG4AudioConfigBytes(esds.DecConfig)
		if err != nil {
			return &utils.MalformedInputError{Reason: "decoding AudioSpecificConfig", Offset: esds.Offset, Err: err}
		}
		if esds.ObjectType == mp4io.ObjectTypeAAC {
			track.Codec = fmt.Sprintf("mp4a.40.%d", config.ObjectType)
		}
		if config.ChannelConfig > 0 {
			track.NumberOfChannels = uint32(config.ChannelConfig) //nolint:gosec
		}
		if config.SampleRate > 0 {
			track.SampleRate = uint32(config.SampleRate) //nolint:gosec
		}
		track.CodecPrivate = esds.DecConfig
	case mp4io.ObjectTypeMP3, mp4io.ObjectTypeMP1Audio:
		track.CodecType = mediaprobe.MP3
		track.Codec = mediaprobe.MP3.String()
	case mp4io.ObjectTypeVorbis:
		track.CodecType = mediaprobe.Vorbis
		track.Codec = mediaprobe.Vorbis.String()
		track.CodecPrivate = esds.DecConfig
	default:
		return &utils.UnsupportedFormatError{Kind: "audio object type", Tag: fmt.Sprintf("0x%02x", esds.ObjectType)}
	}
	return nil
}

func lpcmCodec(entry *mp4io.AudioSample) (mediaprobe.CodecType, bool) {
	isFloat := entry.FormatFlags&mp4io.LPCMFlagFloat != 0
	signed := entry.FormatFlags&mp4io.LPCMFlagSigned != 0
	switch {
	case isFloat && entry.SampleSize == 32:
		return mediaprobe.PCMF32, true
	case isFloat:
		return 0, false
	case entry.SampleSize == 8 && !signed:
		return mediaprobe.PCMU8, true
	case signed && entry.SampleSize == 16:
		return mediaprobe.PCMS16, true
	case signed && entry.SampleSize == 24:
		return mediaprobe.PCMS24, true
	case signed && entry.SampleSize == 32:
		return mediaprobe.PCMS32, true
	}
	return 0, false
}
