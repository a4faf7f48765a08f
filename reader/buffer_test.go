package reader_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ugparu/mediaprobe/reader"
	"github.com/ugparu/mediaprobe/utils"
)

func TestBufferRead(t *testing.T) {
	t.Parallel()

	b := reader.NewBuffer(false)
	b.Feed([]byte{1, 2, 3})

	_, err := b.Read(4)
	var again *utils.TryAgainError
	require.ErrorAs(t, err, &again)
	require.Equal(t, int64(0), b.Offset())

	p, err := b.Read(2)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, p)
	require.Equal(t, 2, cap(p))
	require.Equal(t, int64(1), b.Remaining())

	b.Feed([]byte{4, 5})
	p, err = b.Read(3)
	require.NoError(t, err)
	require.Equal(t, []byte{3, 4, 5}, p)
	require.Equal(t, int64(5), b.NextOffset())
	require.Nil(t, b.Buffered())
}

func TestBufferDiscardPastEnd(t *testing.T) {
	t.Parallel()

	b := reader.NewBuffer(true)
	b.Feed(make([]byte, 10))
	b.Discard(25)
	require.Equal(t, int64(25), b.Offset())
	require.Equal(t, int64(-15), b.Remaining())

	b.Compact()
	b.Feed(make([]byte, 20))
	require.Equal(t, int64(5), b.Remaining())
}

func TestBufferRewind(t *testing.T) {
	t.Parallel()

	b := reader.NewBuffer(false)
	b.Feed([]byte{1, 2, 3, 4})
	_, err := b.Read(3)
	require.NoError(t, err)
	require.NoError(t, b.Rewind(2))
	require.Equal(t, []byte{2, 3, 4}, b.Buffered())

	var misuse *utils.ProtocolMisuseError
	require.ErrorAs(t, b.Rewind(5), &misuse)
	require.ErrorAs(t, b.SkipTo(5), &misuse)
	require.NoError(t, b.SkipTo(4))
}

func TestBufferCompact(t *testing.T) {
	t.Parallel()

	b := reader.NewBuffer(false)
	b.Feed([]byte{1, 2, 3, 4})
	b.Discard(2)

	b.Retain()
	b.Compact()
	require.True(t, b.Retained())
	require.NoError(t, b.SkipTo(0))

	b.Discard(3)
	b.Release()
	b.Compact()
	require.False(t, b.Retained())
	var misuse *utils.ProtocolMisuseError
	require.ErrorAs(t, b.SkipTo(2), &misuse)
	require.Equal(t, []byte{4}, b.Buffered())
}

func TestBufferSeek(t *testing.T) {
	t.Parallel()

	stream := reader.NewBuffer(false)
	var misuse *utils.ProtocolMisuseError
	require.ErrorAs(t, stream.Seek(10), &misuse)

	b := reader.NewBuffer(true)
	b.Feed([]byte{1, 2, 3})
	b.Retain()
	b.Close()
	require.ErrorAs(t, b.Seek(-1), &misuse)

	require.NoError(t, b.Seek(1000))
	require.Equal(t, int64(1000), b.Offset())
	require.Equal(t, int64(1000), b.NextOffset())
	require.Equal(t, int64(0), b.Remaining())
	require.False(t, b.Ended())
	require.False(t, b.Retained())

	b.Feed([]byte{9})
	p, err := b.Read(1)
	require.NoError(t, err)
	require.Equal(t, []byte{9}, p)
}
