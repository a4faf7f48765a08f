package mediaprobe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ugparu/mediaprobe/utils"
)

func TestRegisterTrackOrderAndDedup(t *testing.T) {
	t.Parallel()

	var seen []uint32
	s := NewParserState(WithOnTrack(func(tr Track) { seen = append(seen, tr.ID()) }))
	ctx := context.Background()

	require.NoError(t, s.RegisterTrack(ctx, &AudioTrack{TrackID: 3}))
	require.NoError(t, s.RegisterTrack(ctx, &VideoTrack{TrackID: 1}))
	require.NoError(t, s.RegisterTrack(ctx, &VideoTrack{TrackID: 3}))

	require.Equal(t, []uint32{3, 1}, seen)
	tracks := s.Tracks()
	require.Len(t, tracks, 2)
	require.Equal(t, KindAudio, tracks[0].Kind())
	require.Equal(t, KindVideo, s.Track(1).Kind())
	require.Nil(t, s.Track(7))
}

func TestRegisterTrackCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewParserState()
	err := s.RegisterTrack(ctx, &OtherTrack{TrackID: 1})

	var cancelled *utils.CancelledError
	require.ErrorAs(t, err, &cancelled)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, s.Tracks())
}

func TestEmitSample(t *testing.T) {
	t.Parallel()

	stop := errors.New("stop")
	s := NewParserState(WithOnSample(func(smp *Sample) error {
		if smp.TrackID == 2 {
			return stop
		}
		return nil
	}))

	require.NoError(t, s.EmitSample(context.Background(), &Sample{TrackID: 1}))
	require.NoError(t, s.EmitSample(context.Background(), &Sample{TrackID: 1}))
	require.ErrorIs(t, s.EmitSample(context.Background(), &Sample{TrackID: 2}), stop)
	require.Equal(t, 2, s.SampleCount(1))
	require.Equal(t, 1, s.SampleCount(2))
}

func TestCodecTypeClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		codec CodecType
		video bool
		text  string
	}{
		{name: "h264", codec: H264, video: true, text: "h264"},
		{name: "prores", codec: ProRes, video: true, text: "prores"},
		{name: "aac", codec: AAC, video: false, text: "aac"},
		{name: "pcm s24", codec: PCMS24, video: false, text: "pcm-s24"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.video, tt.codec.IsVideo())
			require.Equal(t, !tt.video, tt.codec.IsAudio())
			b, err := tt.codec.MarshalText()
			require.NoError(t, err)
			require.Equal(t, tt.text, string(b))
		})
	}
	require.Equal(t, S24, PCMS24.SampleFormat())
	require.Equal(t, 3, PCMS24.SampleFormat().BytesPerSample())
	require.Equal(t, "s24", PCMS24.SampleFormat().String())
	require.Zero(t, AAC.SampleFormat().BytesPerSample())
	require.Equal(t, "none", AAC.SampleFormat().String())
}

func TestChannelLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		channels int
		count    int
		name     string
	}{
		{1, 1, "mono"},
		{2, 2, "stereo"},
		{6, 6, "5.1"},
		{8, 8, "7.1"},
		{7, 0, "unknown"},
	}
	for _, tt := range tests {
		layout := LayoutForChannels(tt.channels)
		require.Equal(t, tt.count, layout.Count())
		require.Equal(t, tt.name, layout.String())
	}
	require.Equal(t, "custom", (ChFrontLeft | ChLowFreq).String())
}
