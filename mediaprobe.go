// Package mediaprobe holds the types shared by the incremental container
// parsers: the byte cursor contract, parsed elements, tracks and the
// session-wide parser state.
package mediaprobe

// Container identifies the family of a parsed structure.
type Container uint8

const (
	ISOBaseMedia Container = iota + 1 // MP4, MOV, fragmented MP4.
	Matroska                          // Matroska and WebM.
	RIFF                              // AVI and WAV.
)

func (c Container) String() string {
	switch c {
	case ISOBaseMedia:
		return "iso-base-media"
	case Matroska:
		return "matroska"
	case RIFF:
		return "riff"
	}
	return "unknown"
}

// Cursor is a sequential reader over a window of buffered bytes of a byte source.
//
// Offsets are absolute positions in the source. Remaining may become negative
// after a Discard past the buffered window; the caller then has to feed bytes
// until the deficit is covered.
type Cursor interface {
	Offset() int64                // Absolute offset of the next byte to read.
	Remaining() int64             // Buffered bytes ahead of Offset, may be negative.
	Read(n int) ([]byte, error)   // Reads n bytes or fails with utils.TryAgainError.
	Discard(n int64)              // Advances the offset without reading.
	Rewind(n int64) error         // Moves the offset back inside the buffered window.
	SkipTo(offset int64) error    // Moves to an absolute offset inside the buffered window.
	Seek(offset int64) error      // Repositions the source, needs SupportsRange.
	SupportsRange() bool          // Whether the source accepts arbitrary-offset reads.
	Retain()                      // Disallows dropping consumed bytes.
	Release()                     // Allows dropping consumed bytes again.
	Compact()                     // Drops consumed bytes unless retained.
	Ended() bool                  // No bytes will follow the buffered window.
}

// Element is a parsed, sized unit of a container.
type Element interface {
	Pos() (offset, size int64) // Absolute offset and total size including the header.
}

// TrackKind discriminates the Track variants.
type TrackKind uint8

const (
	KindVideo TrackKind = iota + 1
	KindAudio
	KindOther
)

func (k TrackKind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	case KindOther:
		return "other"
	}
	return "unknown"
}

// Track is one of *VideoTrack, *AudioTrack or *OtherTrack.
type Track interface {
	Kind() TrackKind
	ID() uint32
	Timescale() uint32
	Source() Element // Originating box subtree. Borrowed from the parsed structure.
}
