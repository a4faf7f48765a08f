package mp4io

import (
	"strings"

	"github.com/deepch/vdk/utils/bits/pio"
)

const bytesPerBrand = 4

// FileType is the ftyp box. The same layout is used by styp.
type FileType struct {
	Type             Tag
	MajorBrand       Tag
	MinorVersion     uint32
	CompatibleBrands []Tag
	BoxPos
}

func (f *FileType) Tag() Tag {
	if f.Type == 0 {
		return FTYP
	}
	return f.Type
}

func (f *FileType) Children() []Box { return nil }

func (f *FileType) String() string {
	brands := make([]string, 0, len(f.CompatibleBrands))
	for _, b := range f.CompatibleBrands {
		brands = append(brands, b.String())
	}
	return "major=" + f.MajorBrand.String() + " compatible=" + strings.Join(brands, ",")
}

func (f *FileType) Unmarshal(b []byte, offset int64) (n int, err error) {
	if len(b) < n+8 {
		err = parseErr("MajorBrand", offset, err)
		return
	}
	f.MajorBrand = Tag(pio.U32BE(b[n:]))
	f.MinorVersion = pio.U32BE(b[n+4:])
	n += 8
	for n+bytesPerBrand <= len(b) {
		f.CompatibleBrands = append(f.CompatibleBrands, Tag(pio.U32BE(b[n:])))
		n += bytesPerBrand
	}
	return
}
