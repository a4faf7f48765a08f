package mp4io_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ugparu/mediaprobe/format/mp4/mp4io"
	"github.com/ugparu/mediaprobe/format/mp4/mp4test"
)

const bodyOffset = 1000

// decode runs a decoder over the body of a rendered box.
func decode(t *testing.T, dec mp4io.Decoder, box []byte) (int, error) {
	t.Helper()
	require.NotNil(t, dec)
	return dec.Unmarshal(box[mp4io.HeaderSize:], bodyOffset)
}

func requireParseError(t *testing.T, err error) *mp4io.ParseError {
	t.Helper()
	var pe *mp4io.ParseError
	require.ErrorAs(t, err, &pe)
	require.Contains(t, pe.Error(), "mp4io: parse error:")
	require.GreaterOrEqual(t, pe.Innermost(), int64(bodyOffset))
	return pe
}

func TestTag(t *testing.T) {
	t.Parallel()

	require.Equal(t, mp4io.MOOV, mp4io.StringToTag("moov"))
	require.Equal(t, "moov", mp4io.MOOV.String())
	require.Equal(t, "    ", mp4io.Tag(0).String())
	require.Equal(t, "ab  ", mp4io.StringToTag("ab\x00\x00").String())
}

func TestFileType(t *testing.T) {
	t.Parallel()

	var ftyp mp4io.FileType
	n, err := decode(t, &ftyp, mp4test.Ftyp("isom", "isom", "mp41", "x"))
	require.NoError(t, err)
	require.Equal(t, 16, n)
	require.Equal(t, mp4io.FTYP, ftyp.Tag())
	require.Equal(t, mp4io.StringToTag("isom"), ftyp.MajorBrand)
	require.Equal(t, uint32(0x200), ftyp.MinorVersion)
	require.Equal(t, []mp4io.Tag{mp4io.StringToTag("isom"), mp4io.StringToTag("mp41")}, ftyp.CompatibleBrands)

	_, err = decode(t, &ftyp, mp4test.Box("ftyp", []byte("iso")))
	requireParseError(t, err)
}

func TestElemStreamDesc(t *testing.T) {
	t.Parallel()

	dsi := []byte{0x12, 0x10}
	var esds mp4io.ElemStreamDesc
	n, err := decode(t, &esds, mp4test.Esds(mp4io.ObjectTypeAAC, dsi))
	require.NoError(t, err)
	require.Equal(t, len(mp4test.Esds(mp4io.ObjectTypeAAC, dsi))-mp4io.HeaderSize, n)
	require.True(t, esds.HasDecoderConfig())
	require.Equal(t, uint16(1), esds.ESID)
	require.Equal(t, uint8(mp4io.ObjectTypeAAC), esds.ObjectType)
	require.Equal(t, uint8(5), esds.StreamType)
	require.Equal(t, uint32(128000), esds.AvgBitrate)
	require.Equal(t, dsi, esds.DecConfig)

	var bare mp4io.ElemStreamDesc
	_, err = decode(t, &bare, mp4test.FullBox("esds", 0, 0))
	require.NoError(t, err)
	require.False(t, bare.HasDecoderConfig())
}

func TestElemStreamDescTruncated(t *testing.T) {
	t.Parallel()

	full := mp4test.Esds(mp4io.ObjectTypeAAC, []byte{0x12, 0x10})
	tests := []struct {
		name string
		box  []byte
	}{
		{"no full box header", mp4test.Box("esds", mp4test.U16(0))},
		{"descriptor cut", mp4test.Box("esds", full[mp4io.HeaderSize:len(full)-4])},
		{"length cut", mp4test.FullBox("esds", 0, 0, mp4test.U8(3), mp4test.U8(0x80))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var esds mp4io.ElemStreamDesc
			_, err := decode(t, &esds, tt.box)
			requireParseError(t, err)
		})
	}
}

func TestTrackFragRun(t *testing.T) {
	t.Parallel()

	flags := uint32(mp4io.TRUNDataOffset | mp4io.TRUNFirstSampleFlags |
		mp4io.TRUNSampleDuration | mp4io.TRUNSampleSize | mp4io.TRUNSampleCTS)
	box := mp4test.FullBox("trun", 1, flags,
		mp4test.U32(2), mp4test.I32(-16), mp4test.U32(0x02000000),
		mp4test.U32(1000), mp4test.U32(200), mp4test.I32(2000),
		mp4test.U32(1000), mp4test.U32(50), mp4test.I32(-1000),
	)
	var trun mp4io.TrackFragRun
	n, err := decode(t, &trun, box)
	require.NoError(t, err)
	require.Equal(t, len(box)-mp4io.HeaderSize, n)
	require.Equal(t, int32(-16), trun.DataOffset)
	require.Equal(t, uint32(0x02000000), trun.FirstSampleFlags)
	require.Equal(t, []mp4io.TrackFragRunEntry{
		{Duration: 1000, Size: 200, Cts: 2000},
		{Duration: 1000, Size: 50, Cts: -1000},
	}, trun.Entries)

	short := mp4test.FullBox("trun", 0, mp4io.TRUNSampleSize, mp4test.U32(3), mp4test.U32(1), mp4test.U32(2))
	_, err = decode(t, &mp4io.TrackFragRun{}, short)
	pe := requireParseError(t, err)
	require.Equal(t, int64(bodyOffset+8), pe.Innermost())
}

func TestTrackFragHeader(t *testing.T) {
	t.Parallel()

	flags := mp4io.TFHDBaseDataOffset | mp4io.TFHDStsdID | mp4io.TFHDDefaultDuration |
		mp4io.TFHDDefaultSize | mp4io.TFHDDefaultFlags
	box := mp4test.FullBox("tfhd", 0, flags,
		mp4test.U32(7), mp4test.U64(1<<33), mp4test.U32(1), mp4test.U32(512), mp4test.U32(4096), mp4test.U32(0x01010000))
	var tfhd mp4io.TrackFragHeader
	_, err := decode(t, &tfhd, box)
	require.NoError(t, err)
	require.Equal(t, uint32(7), tfhd.TrackID)
	require.Equal(t, uint64(1<<33), tfhd.BaseDataOffset)
	require.Equal(t, uint32(1), tfhd.StsdID)
	require.Equal(t, uint32(512), tfhd.DefaultDuration)
	require.Equal(t, uint32(4096), tfhd.DefaultSize)
	require.Equal(t, uint32(0x01010000), tfhd.DefaultFlags)

	_, err = decode(t, &mp4io.TrackFragHeader{}, mp4test.FullBox("tfhd", 0, mp4io.TFHDDefaultSize, mp4test.U32(7)))
	requireParseError(t, err)
}

func TestTrackFragDecodeTime(t *testing.T) {
	t.Parallel()

	var v0, v1 mp4io.TrackFragDecodeTime
	_, err := decode(t, &v0, mp4test.FullBox("tfdt", 0, 0, mp4test.U32(90000)))
	require.NoError(t, err)
	require.Equal(t, uint64(90000), v0.Time)

	_, err = decode(t, &v1, mp4test.FullBox("tfdt", 1, 0, mp4test.U64(1<<40)))
	require.NoError(t, err)
	require.Equal(t, uint64(1<<40), v1.Time)
}

func TestSampleTables(t *testing.T) {
	t.Parallel()

	var stsz mp4io.SampleSize
	_, err := decode(t, &stsz, mp4test.FullBox("stsz", 0, 0, mp4test.U32(188), mp4test.U32(4)))
	require.NoError(t, err)
	require.Equal(t, uint32(4), stsz.SampleCount)
	require.Equal(t, uint32(188), stsz.Size(3))

	var sized mp4io.SampleSize
	_, err = decode(t, &sized, mp4test.Stsz(10, 20))
	require.NoError(t, err)
	require.Equal(t, uint32(20), sized.Size(1))
	require.Equal(t, uint32(0), sized.Size(2))

	var stts mp4io.TimeToSample
	_, err = decode(t, &stts, mp4test.FullBox("stts", 0, 0,
		mp4test.U32(2), mp4test.U32(3), mp4test.U32(1000), mp4test.U32(2), mp4test.U32(500)))
	require.NoError(t, err)
	require.Equal(t, uint64(5), stts.SampleCount())

	co64 := mp4io.NewDecoder(mp4io.CO64)
	_, err = decode(t, co64, mp4test.FullBox("co64", 0, 0, mp4test.U32(1), mp4test.U64(1<<35)))
	require.NoError(t, err)
	require.Equal(t, []uint64{1 << 35}, co64.(*mp4io.ChunkOffset).Entries)

	_, err = decode(t, &mp4io.SyncSample{}, mp4test.FullBox("stss", 0, 0, mp4test.U32(1000), mp4test.U32(1)))
	requireParseError(t, err)
}

func TestAudioSampleVersions(t *testing.T) {
	t.Parallel()

	v0 := mp4io.NewSampleEntry(mp4io.MP4A, mp4io.HandlerAudio)
	_, err := decode(t, v0, mp4test.AudioEntry("mp4a", 2, 16, 44100))
	require.NoError(t, err)
	entry := v0.(*mp4io.AudioSample)
	require.Equal(t, uint32(2), entry.NumberOfChannels)
	require.Equal(t, uint32(16), entry.SampleSize)
	require.InDelta(t, 44100.0, entry.SampleRate, 0)

	v2 := mp4io.NewSampleEntry(mp4io.LPCM, mp4io.HandlerAudio)
	_, err = decode(t, v2, mp4test.AudioEntryV2("lpcm", 8, 24, mp4io.LPCMFlagSigned, 192000))
	require.NoError(t, err)
	entry = v2.(*mp4io.AudioSample)
	require.Equal(t, uint16(2), entry.Version)
	require.Equal(t, uint32(8), entry.NumberOfChannels)
	require.Equal(t, uint32(24), entry.SampleSize)
	require.Equal(t, uint32(mp4io.LPCMFlagSigned), entry.FormatFlags)
	require.InDelta(t, 192000.0, entry.SampleRate, 0)
}

func TestColourInfo(t *testing.T) {
	t.Parallel()

	var nclx mp4io.ColourInfo
	_, err := decode(t, &nclx, mp4test.Colr(9, 16, 9, true))
	require.NoError(t, err)
	require.True(t, nclx.HasCoefficients())
	require.Equal(t, uint16(9), nclx.ColourPrimaries)
	require.Equal(t, uint16(16), nclx.TransferCharacteristics)
	require.True(t, nclx.FullRange)

	var icc mp4io.ColourInfo
	_, err = decode(t, &icc, mp4test.Box("colr", []byte("prof"), []byte{1, 2, 3}))
	require.NoError(t, err)
	require.False(t, icc.HasCoefficients())
	require.Equal(t, []byte{1, 2, 3}, icc.Profile)

	_, err = decode(t, &mp4io.ColourInfo{}, mp4test.Box("colr", []byte("nclx"), mp4test.U16(1)))
	requireParseError(t, err)
}

func TestNewSampleEntry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format, handler string
		want            any
	}{
		{"avc1", "soun", &mp4io.VideoSample{}},
		{"mp4a", "vide", &mp4io.AudioSample{}},
		{"xvid", "vide", &mp4io.VideoSample{}},
		{"samr", "soun", &mp4io.AudioSample{}},
		{"mebx", "meta", &mp4io.MetadataSample{}},
		{"tmcd", "tmcd", &mp4io.UnknownSample{}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()
			dec := mp4io.NewSampleEntry(mp4io.StringToTag(tt.format), mp4io.StringToTag(tt.handler))
			require.IsType(t, tt.want, dec)
			require.Equal(t, tt.format, dec.Tag().String())
		})
	}
}
