// Package format recognizes container signatures and starts the matching parser.
package format

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ugparu/mediaprobe"
	"github.com/ugparu/mediaprobe/format/mp4"
	"github.com/ugparu/mediaprobe/utils"
)

// Kind is a recognized file signature.
type Kind uint8

const (
	Unknown Kind = iota
	ISOBaseMedia
	Matroska
	RIFF
	MP3
)

func (k Kind) String() string {
	switch k {
	case ISOBaseMedia:
		return "iso-base-media"
	case Matroska:
		return "matroska"
	case RIFF:
		return "riff"
	case MP3:
		return "mp3"
	}
	return "unknown"
}

// PrefixSize is the number of leading bytes Detect looks at.
const PrefixSize = 12

var isoTopLevel = [][]byte{
	[]byte("ftyp"), []byte("styp"), []byte("moov"), []byte("mdat"),
	[]byte("free"), []byte("wide"), []byte("skip"),
}

// Detect classifies a file by its first bytes.
func Detect(prefix []byte) Kind {
	switch {
	case len(prefix) >= 4 && bytes.Equal(prefix[:4], []byte{0x1a, 0x45, 0xdf, 0xa3}):
		return Matroska
	case len(prefix) >= 4 && bytes.Equal(prefix[:4], []byte("RIFF")):
		return RIFF
	case len(prefix) >= 3 && bytes.Equal(prefix[:3], []byte("ID3")):
		return MP3
	case len(prefix) >= 2 && prefix[0] == 0xff && prefix[1]&0xe0 == 0xe0:
		return MP3
	}
	if len(prefix) >= 8 {
		for _, tag := range isoTopLevel {
			if bytes.Equal(prefix[4:8], tag) {
				return ISOBaseMedia
			}
		}
	}
	// A void box placeholder followed by a regular box.
	if len(prefix) >= 12 && bytes.Equal(prefix[:4], []byte{0, 0, 0, 0}) {
		for _, tag := range isoTopLevel {
			if bytes.Equal(prefix[8:12], tag) {
				return ISOBaseMedia
			}
		}
	}
	return Unknown
}

// Parse detects the container from the bytes buffered in cur and starts its
// parser. The cursor must be positioned at the start of the file.
func Parse(ctx context.Context, cur mediaprobe.Cursor, state *mediaprobe.ParserState) (*mp4.Result, error) {
	n := cur.Remaining()
	if n <= 0 {
		if cur.Ended() {
			return nil, utils.Malformed(cur.Offset(), "empty input")
		}
		return nil, &utils.TryAgainError{}
	}
	if n > PrefixSize {
		n = PrefixSize
	}
	prefix, err := cur.Read(int(n))
	if err != nil {
		return nil, err
	}
	kind := Detect(prefix)
	if err = cur.Rewind(n); err != nil {
		return nil, err
	}

	switch kind {
	case ISOBaseMedia:
		return mp4.NewParser(cur, state).Parse(ctx)
	case Unknown:
		if n < PrefixSize && !cur.Ended() {
			return nil, &utils.TryAgainError{}
		}
		return nil, &utils.UnsupportedFormatError{Kind: "container", Tag: fmt.Sprintf("%x", prefix)}
	}
	return nil, &utils.UnsupportedFormatError{Kind: "container", Tag: kind.String()}
}
