package reader

import (
	"github.com/ugparu/mediaprobe/utils"
)

// Buffer is an in-memory window over a byte source implementing mediaprobe.Cursor.
// The window holds the bytes at [start, start+len(data)).
type Buffer struct {
	data     []byte
	start    int64
	pos      int64
	retained bool
	ended    bool
	rangeOK  bool
}

// NewBuffer creates an empty window at offset zero.
func NewBuffer(supportsRange bool) *Buffer {
	return &Buffer{
		data:     nil,
		start:    0,
		pos:      0,
		retained: false,
		ended:    false,
		rangeOK:  supportsRange,
	}
}

func (b *Buffer) String() string {
	return "BUFFER"
}

// Feed appends bytes that follow the window.
func (b *Buffer) Feed(p []byte) {
	b.data = append(b.data, p...)
}

// Close marks the end of the source.
func (b *Buffer) Close() {
	b.ended = true
}

// NextOffset is the source offset the next fed bytes belong to.
func (b *Buffer) NextOffset() int64 {
	return b.start + int64(len(b.data))
}

// Buffered returns the bytes of the window ahead of the offset.
func (b *Buffer) Buffered() []byte {
	if b.pos >= b.NextOffset() {
		return nil
	}
	return b.data[b.pos-b.start:]
}

// Window is the number of bytes held, consumed or not.
func (b *Buffer) Window() int {
	return len(b.data)
}

// Retained reports whether consumed bytes are kept for a revisit.
func (b *Buffer) Retained() bool {
	return b.retained
}

func (b *Buffer) Offset() int64 {
	return b.pos
}

func (b *Buffer) Remaining() int64 {
	return b.NextOffset() - b.pos
}

func (b *Buffer) Read(n int) ([]byte, error) {
	if n < 0 || b.Remaining() < int64(n) {
		return nil, &utils.TryAgainError{}
	}
	i := b.pos - b.start
	b.pos += int64(n)
	return b.data[i : i+int64(n) : i+int64(n)], nil
}

func (b *Buffer) Discard(n int64) {
	b.pos += n
}

func (b *Buffer) Rewind(n int64) error {
	return b.SkipTo(b.pos - n)
}

func (b *Buffer) SkipTo(offset int64) error {
	if offset < b.start || offset > b.NextOffset() {
		return &utils.ProtocolMisuseError{Reason: "offset outside the buffered window"}
	}
	b.pos = offset
	return nil
}

// Seek drops the window and restarts it at offset. The source must then be
// read from offset on.
func (b *Buffer) Seek(offset int64) error {
	if !b.rangeOK {
		return &utils.ProtocolMisuseError{Reason: "seek on a source without range support"}
	}
	if offset < 0 {
		return &utils.ProtocolMisuseError{Reason: "seek to a negative offset"}
	}
	b.data = nil
	b.start, b.pos = offset, offset
	b.retained, b.ended = false, false
	return nil
}

func (b *Buffer) SupportsRange() bool {
	return b.rangeOK
}

func (b *Buffer) Retain() {
	b.retained = true
}

func (b *Buffer) Release() {
	b.retained = false
}

// Compact drops the bytes before the offset unless they are retained.
func (b *Buffer) Compact() {
	if b.retained {
		return
	}
	k := b.pos - b.start
	if k <= 0 {
		return
	}
	if k > int64(len(b.data)) {
		k = int64(len(b.data))
	}
	b.data = b.data[k:]
	b.start += k
}

func (b *Buffer) Ended() bool {
	return b.ended
}
