package buffer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	t.Parallel()

	for _, size := range []int{0, 100, smallBufSize, bigBufSize, bigBufSize * 3} {
		b := Get(size)
		require.Equal(t, size, b.Len())
		require.GreaterOrEqual(t, b.Cap(), size)
		b.Release()
	}
}

func TestResize(t *testing.T) {
	t.Parallel()

	b := Get(4)
	copy(b.Data(), []byte{1, 2, 3, 4})
	b.Resize(2)
	require.Equal(t, []byte{1, 2}, b.Data())
	b.Resize(smallBufSize * 2)
	require.Equal(t, smallBufSize*2, b.Len())
	require.Equal(t, []byte{1, 2}, b.Data()[:2])
	b.Release()
}
