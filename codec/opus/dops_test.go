package opus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpecificBox(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     []byte
		channels uint8
		rate     uint32
		mapping  int
		wantErr  bool
	}{
		{
			name:     "stereo",
			data:     []byte{0, 2, 0x01, 0x38, 0x00, 0x00, 0xbb, 0x80, 0, 0, 0},
			channels: 2,
			rate:     48000,
		},
		{
			name:     "surround mapping",
			data:     []byte{0, 3, 0x01, 0x38, 0x00, 0x00, 0xac, 0x44, 0, 0, 1, 2, 1, 0, 2, 1},
			channels: 3,
			rate:     44100,
			mapping:  3,
		},
		{
			name:    "missing mapping table",
			data:    []byte{0, 3, 0x01, 0x38, 0x00, 0x00, 0xac, 0x44, 0, 0, 1, 2},
			wantErr: true,
		},
		{
			name:    "short",
			data:    []byte{0, 2, 0x01},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var box SpecificBox
			_, err := box.Unmarshal(tt.data)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrSpecificBoxInvalid)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.channels, box.OutputChannelCount)
			require.Equal(t, tt.rate, box.InputSampleRate)
			require.Equal(t, uint16(312), box.PreSkip)
			require.Len(t, box.ChannelMapping, tt.mapping)
		})
	}
}
