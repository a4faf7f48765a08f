// Package mp4io holds the ISO base media box model and the field decoders of
// the boxes the parser understands.
package mp4io

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/deepch/vdk/utils/bits/pio"
)

// Constants representing flags for sample properties.
const (
	SampleIsNonSync       uint32 = 0x00010000
	SampleHasDependencies uint32 = 0x01000000
	SampleNoDependencies  uint32 = 0x02000000

	HeaderSize         = 8
	ExtendedHeaderSize = 16
)

var epoch1904 = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)

func GetTime32(b []byte) time.Time {
	return epoch1904.Add(time.Second * time.Duration(pio.U32BE(b)))
}

func GetTime64(b []byte) time.Time {
	return epoch1904.Add(time.Second * time.Duration(pio.U64BE(b)))
}

func GetFixed16(b []byte) float64 {
	return float64(int8(b[0])) + float64(b[1])/256.0
}

func GetFixed32(b []byte) float64 {
	return float64(pio.I16BE(b[0:2])) + float64(pio.U16BE(b[2:4]))/65536.0
}

// GetFixed2_30 decodes the 2.30 fixed point values of the transformation matrix.
func GetFixed2_30(b []byte) float64 {
	return float64(pio.I32BE(b)) / float64(1<<30)
}

// Tag is a four character box type.
type Tag uint32

func (self Tag) String() string {
	var b [4]byte
	pio.PutU32BE(b[:], uint32(self))
	for i := range 4 {
		if b[i] == 0 {
			b[i] = ' '
		}
	}
	return string(b[:])
}

func StringToTag(tag string) Tag {
	var b [4]byte
	copy(b[:], []byte(tag))
	return Tag(pio.U32BE(b[:]))
}

// Box is a parsed box. The set of implementations is closed: new box types
// are added here together with a decoder entry in the parser.
type Box interface {
	Tag() Tag
	Pos() (offset, size int64)
	Children() []Box
}

// Decoder is a box whose fields are decoded from its complete body.
type Decoder interface {
	Box
	SetPos(offset, size int64)
	Unmarshal(b []byte, offset int64) (n int, err error)
}

// BoxPos is the absolute extent of a box, header included.
type BoxPos struct {
	Offset int64
	Size   int64
}

func (self BoxPos) Pos() (int64, int64) {
	return self.Offset, self.Size
}

func (self *BoxPos) SetPos(offset, size int64) {
	self.Offset, self.Size = offset, size
}

// End is the offset right after the box.
func (self BoxPos) End() int64 {
	return self.Offset + self.Size
}

// FullBox carries the version and flags preceding the body of most boxes.
type FullBox struct {
	Version uint8
	Flags   uint32
}

func (self *FullBox) unmarshalFull(b []byte, offset int64) (n int, err error) {
	if len(b) < 4 {
		err = parseErr("FullBox", offset, err)
		return
	}
	self.Version = pio.U8(b)
	self.Flags = pio.U24BE(b[1:])
	n = 4
	return
}

func FindChildrenByName(root Box, tag string) Box {
	return FindChildren(root, StringToTag(tag))
}

// FindChildren returns the first box with the tag in a depth-first walk, root included.
func FindChildren(root Box, tag Tag) Box {
	if root == nil {
		return nil
	}
	if root.Tag() == tag {
		return root
	}
	for _, child := range root.Children() {
		if r := FindChildren(child, tag); r != nil {
			return r
		}
	}
	return nil
}

// Find is the typed form of FindChildren.
func Find[T Box](root Box) (t T, ok bool) {
	if root == nil {
		return
	}
	if t, ok = root.(T); ok {
		return
	}
	for _, child := range root.Children() {
		if t, ok = Find[T](child); ok {
			return
		}
	}
	return
}

// ValidateExtents checks that the children of every composite box lie inside
// the body of their parent and do not overlap it in sum.
func ValidateExtents(root Box) error {
	offset, size := root.Pos()
	children := root.Children()
	if len(children) == 0 {
		return nil
	}
	var sum int64
	for _, child := range children {
		childOffset, childSize := child.Pos()
		if childOffset < offset+HeaderSize || childOffset+childSize > offset+size {
			return fmt.Errorf("mp4io: %s at %d lies outside %s at %d", child.Tag(), childOffset, root.Tag(), offset)
		}
		sum += childSize
		if err := ValidateExtents(child); err != nil {
			return err
		}
	}
	if sum > size-HeaderSize {
		return fmt.Errorf("mp4io: %s at %d holds %d bytes of children in %d", root.Tag(), offset, sum, size-HeaderSize)
	}
	return nil
}

func printbox(out io.Writer, root Box, depth int) {
	offset, size := root.Pos()

	fmt.Fprintf(out, "%s%s offset=%d size=%d",
		strings.Repeat(" ", depth*2), root.Tag(), offset, size,
	)
	if str, ok := root.(fmt.Stringer); ok {
		fmt.Fprint(out, " ", str.String())
	}
	fmt.Fprintln(out)

	for _, child := range root.Children() {
		printbox(out, child, depth+1)
	}
}

// Fprint writes an indented dump of the box tree.
func Fprint(out io.Writer, boxes ...Box) {
	for _, b := range boxes {
		printbox(out, b, 0)
	}
}

func clampInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}
