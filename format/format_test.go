package format_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ugparu/mediaprobe/format"
	"github.com/ugparu/mediaprobe/format/mp4/mp4test"
	"github.com/ugparu/mediaprobe/reader"
	"github.com/ugparu/mediaprobe/utils"
)

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix []byte
		want   format.Kind
	}{
		{"ftyp", mp4test.Ftyp("isom", "isom"), format.ISOBaseMedia},
		{"moov first", mp4test.Box("moov"), format.ISOBaseMedia},
		{"segment", mp4test.Box("styp", []byte("msdh")), format.ISOBaseMedia},
		{"wide atom", mp4test.Box("wide"), format.ISOBaseMedia},
		{"void placeholder", mp4test.Concat(mp4test.Void(), mp4test.Ftyp("qt  ")), format.ISOBaseMedia},
		{"void alone", mp4test.Concat(mp4test.Void(), mp4test.U32(8), []byte("abcd")), format.Unknown},
		{"matroska", []byte{0x1a, 0x45, 0xdf, 0xa3, 0x9f, 0x42, 0x86, 0x81}, format.Matroska},
		{"wave", []byte("RIFF\x24\x00\x00\x00WAVEfmt "), format.RIFF},
		{"mp3 with id3", []byte("ID3\x04\x00\x00\x00\x00\x00\x00"), format.MP3},
		{"mp3 frame sync", []byte{0xff, 0xfb, 0x90, 0x64}, format.MP3},
		{"text", []byte("hello, world"), format.Unknown},
		{"too short", []byte{0, 0}, format.Unknown},
		{"empty", nil, format.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			prefix := tt.prefix
			if len(prefix) > format.PrefixSize {
				prefix = prefix[:format.PrefixSize]
			}
			require.Equal(t, tt.want, format.Detect(prefix))
		})
	}
}

func TestKindString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "iso-base-media", format.ISOBaseMedia.String())
	require.Equal(t, "matroska", format.Matroska.String())
	require.Equal(t, "unknown", format.Kind(99).String())
}

func TestParse(t *testing.T) {
	t.Parallel()

	file := mp4test.Concat(mp4test.Ftyp("isom", "isom"), mp4test.Box("free", mp4test.Zeros(4)))

	t.Run("iso file", func(t *testing.T) {
		t.Parallel()
		buf := reader.NewBuffer(false)
		buf.Feed(file)
		buf.Close()
		res, err := format.Parse(context.Background(), buf, nil)
		require.NoError(t, err)
		require.True(t, res.Done())
		require.Len(t, res.Structure().Boxes, 2)
	})

	t.Run("short prefix waits", func(t *testing.T) {
		t.Parallel()
		buf := reader.NewBuffer(false)
		buf.Feed(file[:6])
		_, err := format.Parse(context.Background(), buf, nil)
		var again *utils.TryAgainError
		require.ErrorAs(t, err, &again)
		require.Equal(t, int64(0), buf.Offset())

		buf.Feed(file[6:])
		buf.Close()
		res, err := format.Parse(context.Background(), buf, nil)
		require.NoError(t, err)
		require.True(t, res.Done())
	})

	t.Run("nothing buffered", func(t *testing.T) {
		t.Parallel()
		buf := reader.NewBuffer(true)
		_, err := format.Parse(context.Background(), buf, nil)
		var again *utils.TryAgainError
		require.ErrorAs(t, err, &again)
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		buf := reader.NewBuffer(true)
		buf.Close()
		_, err := format.Parse(context.Background(), buf, nil)
		var malformed *utils.MalformedInputError
		require.ErrorAs(t, err, &malformed)
	})
}

func TestParseUnsupported(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		tag  string
	}{
		{"matroska", []byte{0x1a, 0x45, 0xdf, 0xa3, 0x9f, 0x42, 0x86, 0x81, 0x01, 0x42, 0xf7, 0x81}, "matroska"},
		{"wave", []byte("RIFF\x24\x00\x00\x00WAVEfmt "), "riff"},
		{"short garbage at end", []byte("abc"), "616263"},
		{"garbage", []byte("hello, world!"), "68656c6c6f2c20776f726c64"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			buf := reader.NewBuffer(false)
			buf.Feed(tt.data)
			buf.Close()
			_, err := format.Parse(context.Background(), buf, nil)
			var unsupported *utils.UnsupportedFormatError
			require.ErrorAs(t, err, &unsupported)
			require.Equal(t, "container", unsupported.Kind)
			require.Equal(t, tt.tag, unsupported.Tag)
		})
	}
}
