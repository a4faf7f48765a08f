// Package mp4test assembles small ISO base media files for tests.
package mp4test

import (
	"math"

	"github.com/deepch/vdk/utils/bits/pio"
)

func U8(v uint8) []byte { return []byte{v} }

func U16(v uint16) []byte {
	b := make([]byte, 2)
	pio.PutU16BE(b, v)
	return b
}

func U32(v uint32) []byte {
	b := make([]byte, 4)
	pio.PutU32BE(b, v)
	return b
}

func U64(v uint64) []byte {
	b := make([]byte, 8)
	pio.PutU64BE(b, v)
	return b
}

func I32(v int32) []byte {
	return U32(uint32(v)) //nolint:gosec
}

func Zeros(n int) []byte { return make([]byte, n) }

func Concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Box assembles a box with a 32-bit size header.
func Box(tag string, parts ...[]byte) []byte {
	body := Concat(parts...)
	return Concat(U32(uint32(len(body)+8)), []byte(tag), body) //nolint:gosec
}

// LargeBox assembles a box with a 64-bit size header.
func LargeBox(tag string, parts ...[]byte) []byte {
	body := Concat(parts...)
	return Concat(U32(1), []byte(tag), U64(uint64(len(body)+16)), body) //nolint:gosec
}

func FullBox(tag string, version uint8, flags uint32, parts ...[]byte) []byte {
	vf := U32(flags)
	vf[0] = version
	return Box(tag, append([][]byte{vf}, parts...)...)
}

// Void is the size-0 placeholder some muxers leave at the start of a file.
func Void() []byte { return U32(0) }

func Ftyp(major string, compatible ...string) []byte {
	parts := [][]byte{[]byte(major), U32(0x200)}
	for _, c := range compatible {
		parts = append(parts, []byte(c))
	}
	return Box("ftyp", parts...)
}

var identity = [9]int32{0x10000, 0, 0, 0, 0x10000, 0, 0, 0, 0x40000000}

func matrix(m [9]int32) []byte {
	var out []byte
	for _, v := range m {
		out = append(out, I32(v)...)
	}
	return out
}

// RotationMatrix returns the tkhd matrix for a clockwise rotation of 0, 90, 180 or 270 degrees.
func RotationMatrix(degrees int) [9]int32 {
	m := identity
	switch degrees {
	case 90:
		m[0], m[1], m[3], m[4] = 0, 0x10000, -0x10000, 0
	case 180:
		m[0], m[4] = -0x10000, -0x10000
	case 270:
		m[0], m[1], m[3], m[4] = 0, -0x10000, 0x10000, 0
	}
	return m
}

func Mvhd(timescale, duration, nextTrackID uint32) []byte {
	return FullBox("mvhd", 0, 0,
		Zeros(8), U32(timescale), U32(duration),
		U32(0x10000), U16(0x100), Zeros(10),
		matrix(identity), Zeros(24), U32(nextTrackID))
}

func Tkhd(trackID uint32, duration uint32, width, height uint16, rotation int) []byte {
	return FullBox("tkhd", 0, 3,
		Zeros(8), U32(trackID), Zeros(4), U32(duration),
		Zeros(8), Zeros(4), U16(0), Zeros(2),
		matrix(RotationMatrix(rotation)),
		U32(uint32(width)<<16), U32(uint32(height)<<16))
}

func Mdhd(timescale, duration uint32) []byte {
	return FullBox("mdhd", 0, 0, Zeros(8), U32(timescale), U32(duration), U16(0x55c4), U16(0))
}

func Hdlr(handler string) []byte {
	return FullBox("hdlr", 0, 0, Zeros(4), []byte(handler), Zeros(12), []byte("handler\x00"))
}

// VisualEntry is a visual sample entry such as avc1 with its child boxes.
func VisualEntry(format string, width, height uint16, children ...[]byte) []byte {
	return Box(format, Concat(
		Zeros(6), U16(1),
		Zeros(16), U16(width), U16(height),
		U32(0x480000), U32(0x480000), Zeros(4), U16(1),
		Zeros(32), U16(0x18), U16(0xffff),
	), Concat(children...))
}

// AudioEntry is a version 0 sound sample entry.
func AudioEntry(format string, channels, sampleSize uint16, rate uint16, children ...[]byte) []byte {
	return Box(format, Concat(
		Zeros(6), U16(1),
		U16(0), Zeros(6),
		U16(channels), U16(sampleSize), Zeros(4),
		U16(rate), U16(0),
	), Concat(children...))
}

// AudioEntryV2 is a QuickTime version 2 sound sample entry.
func AudioEntryV2(format string, channels, bits, flags uint32, rate float64, children ...[]byte) []byte {
	return Box(format, Concat(
		Zeros(6), U16(1),
		U16(2), Zeros(6),
		U16(3), U16(16), U16(0xfffe), U16(0),
		U32(0x10000),
		U32(72), U64(math.Float64bits(rate)), U32(channels), U32(0x7f000000),
		U32(bits), U32(flags), U32(bits/8*channels), U32(1),
	), Concat(children...))
}

// Esds builds an esds box with an ES descriptor wrapping a decoder config descriptor.
func Esds(objectType uint8, decSpecific []byte) []byte {
	dsi := descriptor(5, decSpecific)
	dcd := descriptor(4, Concat(U8(objectType), U8(0x15), Zeros(3), U32(128000), U32(128000), dsi))
	es := descriptor(3, Concat(U16(1), U8(0), dcd, descriptor(6, U8(2))))
	return FullBox("esds", 0, 0, es)
}

func descriptor(tag uint8, body []byte) []byte {
	return Concat(U8(tag), U8(0x80), U8(0x80), U8(0x80), U8(uint8(len(body))), body) //nolint:gosec
}

// Colr builds an nclx colr box.
func Colr(primaries, transfer, matrix uint16, fullRange bool) []byte {
	var flag uint8
	if fullRange {
		flag = 0x80
	}
	return Box("colr", []byte("nclx"), U16(primaries), U16(transfer), U16(matrix), U8(flag))
}

func Pasp(h, v uint32) []byte { return Box("pasp", U32(h), U32(v)) }

// AvcC builds a minimal avcC record for the given profile, compatibility and level.
func AvcC(profile, compat, level uint8) []byte {
	sps := []byte{0x67, profile, compat, level, 0xac}
	pps := []byte{0x68, 0xce, 0x3c, 0x80}
	return Box("avcC", U8(1), U8(profile), U8(compat), U8(level), U8(0xff),
		U8(0xe1), U16(uint16(len(sps))), sps, //nolint:gosec
		U8(1), U16(uint16(len(pps))), pps) //nolint:gosec
}

// HvcC builds an hvcC record without parameter set arrays.
func HvcC(profile, level uint8) []byte {
	return Box("hvcC",
		U8(1), U8(profile), U32(0x60000000), Zeros(6), U8(level),
		U16(0xf000), U8(0xfc), U8(0xfd), U8(0xf8), U8(0xf8), U16(0), U8(0x0f), U8(0))
}

// Av1C builds an av1C record for 8-bit 4:2:0 content.
func Av1C(profile, level uint8) []byte {
	return Box("av1C", U8(0x81), U8(profile<<5|level), U8(0x0c), U8(0))
}

func Stsd(entries ...[]byte) []byte {
	return FullBox("stsd", 0, 0, U32(uint32(len(entries))), Concat(entries...)) //nolint:gosec
}

func Stts(count, delta uint32) []byte {
	if count == 0 {
		return FullBox("stts", 0, 0, U32(0))
	}
	return FullBox("stts", 0, 0, U32(1), U32(count), U32(delta))
}

func Stsc(samplesPerChunk uint32) []byte {
	if samplesPerChunk == 0 {
		return FullBox("stsc", 0, 0, U32(0))
	}
	return FullBox("stsc", 0, 0, U32(1), U32(1), U32(samplesPerChunk), U32(1))
}

func Stsz(sizes ...uint32) []byte {
	var entries []byte
	for _, s := range sizes {
		entries = append(entries, U32(s)...)
	}
	return FullBox("stsz", 0, 0, U32(0), U32(uint32(len(sizes))), entries) //nolint:gosec
}

// StszConstant assembles an stsz declaring count samples of one size.
func StszConstant(size, count uint32) []byte {
	return FullBox("stsz", 0, 0, U32(size), U32(count))
}

func Stco(offsets ...uint32) []byte {
	var entries []byte
	for _, o := range offsets {
		entries = append(entries, U32(o)...)
	}
	return FullBox("stco", 0, 0, U32(uint32(len(offsets))), entries) //nolint:gosec
}

func Stss(samples ...uint32) []byte {
	var entries []byte
	for _, s := range samples {
		entries = append(entries, U32(s)...)
	}
	return FullBox("stss", 0, 0, U32(uint32(len(samples))), entries) //nolint:gosec
}

// Track describes a track whose samples are stored as one chunk.
type Track struct {
	ID        uint32
	Handler   string // vide, soun or any other handler type.
	Timescale uint32
	Delta     uint32 // Duration of every sample.
	Entry     []byte // Sample entry placed in stsd.
	Width     uint16
	Height    uint16
	Rotation  int
	Samples   [][]byte
	Sync      []uint32 // One-based sync sample numbers, nil when every sample is a sync sample.

	// Table overrides for broken files. Zero keeps the values derived from Samples.
	ConstantSize    uint32 // Writes a constant-size stsz.
	SampleCount     uint32
	SamplesPerChunk uint32
}

func (t Track) duration() uint32 {
	return t.Delta * uint32(len(t.Samples)) //nolint:gosec
}

func (t Track) trak(chunkOffset uint32) []byte {
	sizes := make([]uint32, len(t.Samples))
	for i, s := range t.Samples {
		sizes[i] = uint32(len(s)) //nolint:gosec
	}
	count, perChunk := uint32(len(t.Samples)), uint32(len(t.Samples)) //nolint:gosec
	if t.SampleCount != 0 {
		count = t.SampleCount
	}
	if t.SamplesPerChunk != 0 {
		perChunk = t.SamplesPerChunk
	}
	stsz := Stsz(sizes...)
	if t.ConstantSize != 0 {
		stsz = StszConstant(t.ConstantSize, count)
	}
	stbl := [][]byte{
		Stsd(t.Entry),
		Stts(count, t.Delta),
		Stsc(perChunk),
		stsz,
	}
	if len(t.Samples) > 0 {
		stbl = append(stbl, Stco(chunkOffset))
	} else {
		stbl = append(stbl, Stco())
	}
	if t.Sync != nil {
		stbl = append(stbl, Stss(t.Sync...))
	}
	return Box("trak",
		Tkhd(t.ID, t.duration(), t.Width, t.Height, t.Rotation),
		Box("mdia",
			Mdhd(t.Timescale, t.duration()),
			Hdlr(t.Handler),
			Box("minf", Box("stbl", stbl...)),
		),
	)
}

// File lays out ftyp, moov and a single mdat.
type File struct {
	Tracks      []Track
	MdatFirst   bool   // Place the mdat before the moov.
	NextTrackID uint32 // Zero means one past the last track.
	Padding     int    // Extra bytes appended to the mdat payload.
	Extra       []byte // Boxes appended after the moov and mdat.
}

func (f File) moov(dataStart uint32) []byte {
	next := f.NextTrackID
	if next == 0 {
		next = uint32(len(f.Tracks)) + 1 //nolint:gosec
	}
	children := [][]byte{Mvhd(1000, 0, next)}
	offset := dataStart
	for _, t := range f.Tracks {
		children = append(children, t.trak(offset))
		for _, s := range t.Samples {
			offset += uint32(len(s)) //nolint:gosec
		}
	}
	return Box("moov", children...)
}

func (f File) mdat() []byte {
	var payload []byte
	for _, t := range f.Tracks {
		for _, s := range t.Samples {
			payload = append(payload, s...)
		}
	}
	return Box("mdat", payload, Zeros(f.Padding))
}

// Bytes renders the file.
func (f File) Bytes() []byte {
	ftyp := Ftyp("isom", "isom", "mp41")
	mdat := f.mdat()
	if f.MdatFirst {
		dataStart := uint32(len(ftyp) + 8) //nolint:gosec
		return Concat(ftyp, mdat, f.moov(dataStart), f.Extra)
	}
	moovLen := len(f.moov(0))
	dataStart := uint32(len(ftyp) + moovLen + 8) //nolint:gosec
	return Concat(ftyp, f.moov(dataStart), mdat, f.Extra)
}

// MdatOffset returns the file offset of the mdat box rendered by Bytes.
func (f File) MdatOffset() int64 {
	ftyp := Ftyp("isom", "isom", "mp41")
	if f.MdatFirst {
		return int64(len(ftyp))
	}
	return int64(len(ftyp) + len(f.moov(0)))
}

// Fragment renders a moof and its mdat for one track. Sample offsets are
// relative to the moof.
func Fragment(sequence, trackID uint32, baseTime uint64, delta uint32, samples [][]byte) []byte {
	const trunFlags = 0x01 | 0x100 | 0x200 | 0x400
	build := func(dataOffset int32) []byte {
		var entries []byte
		for i, s := range samples {
			flags := uint32(0x01010000)
			if i == 0 {
				flags = 0x02000000
			}
			entries = append(entries, Concat(U32(delta), U32(uint32(len(s))), U32(flags))...) //nolint:gosec
		}
		return Box("moof",
			FullBox("mfhd", 0, 0, U32(sequence)),
			Box("traf",
				FullBox("tfhd", 0, 0x20000, U32(trackID)),
				FullBox("tfdt", 1, 0, U64(baseTime)),
				FullBox("trun", 0, trunFlags, U32(uint32(len(samples))), I32(dataOffset), entries), //nolint:gosec
			),
		)
	}
	moofLen := len(build(0))
	moof := build(int32(moofLen + 8)) //nolint:gosec
	var payload []byte
	for _, s := range samples {
		payload = append(payload, s...)
	}
	return Concat(moof, Box("mdat", payload))
}
