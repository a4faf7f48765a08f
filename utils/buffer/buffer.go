// Package buffer pools the byte slices used for source reads.
package buffer

import (
	"sync"
)

const (
	smallBufSize = 4 * 1024
	bigBufSize   = 64 * 1024
	maxBufSize   = 1024 * 1024 // Larger buffers are left to the GC.
)

var smallPool = sync.Pool{
	New: func() any {
		return &memBuffer{buf: make([]byte, 0, smallBufSize)}
	},
}

var bigPool = sync.Pool{
	New: func() any {
		return &memBuffer{buf: make([]byte, 0, bigBufSize)}
	},
}

// Get returns a pooled buffer of length size.
func Get(size int) PooledBuffer {
	var b *memBuffer
	if size >= bigBufSize {
		b = bigPool.Get().(*memBuffer) //nolint:forcetypeassert
	} else {
		b = smallPool.Get().(*memBuffer) //nolint:forcetypeassert
	}
	if cap(b.buf) < size {
		b.buf = make([]byte, size)
	}
	b.buf = b.buf[:size]
	return b
}

type memBuffer struct {
	buf []byte
}

func (b *memBuffer) Data() []byte {
	return b.buf
}

func (b *memBuffer) Len() int {
	return len(b.buf)
}

func (b *memBuffer) Cap() int {
	return cap(b.buf)
}

// Resize changes the length, reallocating when the capacity is exceeded.
func (b *memBuffer) Resize(size int) {
	if size > cap(b.buf) {
		grown := make([]byte, size)
		copy(grown, b.buf)
		b.buf = grown
		return
	}
	b.buf = b.buf[:size]
}

func (b *memBuffer) Release() {
	if cap(b.buf) > maxBufSize {
		return
	}
	b.buf = b.buf[:0]
	if cap(b.buf) >= bigBufSize {
		bigPool.Put(b)
	} else {
		smallPool.Put(b)
	}
}
