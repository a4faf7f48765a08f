package mp4io

import "fmt"

// RegularBox is a box without a dedicated decoder. Its children are parsed
// only for tags in CompositeTags.
type RegularBox struct {
	Type  Tag
	Boxes []Box
	BoxPos
}

func (self *RegularBox) Tag() Tag                { return self.Type }
func (self *RegularBox) Children() []Box         { return self.Boxes }
func (self *RegularBox) SetChildren(boxes []Box) { self.Boxes = boxes }

func (self *RegularBox) Unmarshal(b []byte, offset int64) (int, error) { return 0, nil }

// VoidBox is the 4-byte zero-size marker.
type VoidBox struct {
	BoxPos
}

func (self *VoidBox) Tag() Tag        { return VOID }
func (self *VoidBox) Children() []Box { return nil }

// MediaDataStatus tells what happened to the payload of a mdat box.
type MediaDataStatus uint8

const (
	SamplesProcessed MediaDataStatus = iota + 1 // Payload walked and samples emitted.
	SamplesBuffered                             // Payload retained in memory for a later pass.
	SamplesSkipped                              // Payload never read, only its extent is known.
)

func (s MediaDataStatus) String() string {
	switch s {
	case SamplesProcessed:
		return "samples-processed"
	case SamplesBuffered:
		return "samples-buffered"
	case SamplesSkipped:
		return "samples-skipped"
	}
	return "unknown"
}

// MediaData is the mdat box.
type MediaData struct {
	Status     MediaDataStatus
	HeaderSize int64
	BoxPos
}

func (self *MediaData) Tag() Tag        { return MDAT }
func (self *MediaData) Children() []Box { return nil }

func (self *MediaData) String() string {
	return self.Status.String()
}

// Movie is the moov box.
type Movie struct {
	Boxes []Box
	BoxPos
}

func (self *Movie) Tag() Tag                { return MOOV }
func (self *Movie) Children() []Box         { return self.Boxes }
func (self *Movie) SetChildren(boxes []Box) { self.Boxes = boxes }

func (self *Movie) Unmarshal(b []byte, offset int64) (int, error) { return 0, nil }

// Header returns the mvhd child.
func (self *Movie) Header() *MovieHeader {
	for _, b := range self.Boxes {
		if h, ok := b.(*MovieHeader); ok {
			return h
		}
	}
	return nil
}

// Tracks returns the trak children in file order.
func (self *Movie) Tracks() (r []*Track) {
	for _, b := range self.Boxes {
		if t, ok := b.(*Track); ok {
			r = append(r, t)
		}
	}
	return
}

// Track is the trak box.
type Track struct {
	Boxes []Box
	BoxPos
}

func (self *Track) Tag() Tag                { return TRAK }
func (self *Track) Children() []Box         { return self.Boxes }
func (self *Track) SetChildren(boxes []Box) { self.Boxes = boxes }

func (self *Track) Unmarshal(b []byte, offset int64) (int, error) { return 0, nil }

func (self *Track) Header() *TrackHeader {
	h, _ := Find[*TrackHeader](self)
	return h
}

func (self *Track) MediaHeader() *MediaHeader {
	h, _ := Find[*MediaHeader](self)
	return h
}

func (self *Track) Handler() *HandlerRefer {
	h, _ := Find[*HandlerRefer](self)
	return h
}

// SampleDesc returns the stsd box of the track.
func (self *Track) SampleDesc() *SampleDesc {
	h, _ := Find[*SampleDesc](self)
	return h
}

// SampleTable returns the stbl box of the track.
func (self *Track) SampleTable() Box {
	return FindChildren(self, STBL)
}

func (self *Track) String() string {
	if h := self.Header(); h != nil {
		return fmt.Sprintf("id=%d", h.TrackID)
	}
	return ""
}

// NewDecoder returns the decoder of a box with a known layout outside a
// sample description, or nil when the box has none.
func NewDecoder(tag Tag) Decoder {
	switch tag {
	case FTYP, STYP:
		return &FileType{Type: tag}
	case MOOV:
		return &Movie{}
	case TRAK:
		return &Track{}
	case MVHD:
		return &MovieHeader{}
	case TKHD:
		return &TrackHeader{}
	case MDHD:
		return &MediaHeader{}
	case HDLR:
		return &HandlerRefer{}
	case STSD:
		return &SampleDesc{}
	case STTS:
		return &TimeToSample{}
	case STSC:
		return &SampleToChunk{}
	case STSZ:
		return &SampleSize{}
	case STCO, CO64:
		return &ChunkOffset{Type: tag}
	case STSS:
		return &SyncSample{}
	case CTTS:
		return &CompositionOffset{}
	case ESDS:
		return &ElemStreamDesc{}
	case AVCC, HVCC, AV1C, DOPS:
		return &CodecConfig{Type: tag}
	case COLR:
		return &ColourInfo{}
	case PASP:
		return &PixelAspect{}
	case MEBX:
		return &MetadataSample{}
	case TFHD:
		return &TrackFragHeader{}
	case TFDT:
		return &TrackFragDecodeTime{}
	case TRUN:
		return &TrackFragRun{}
	}
	if CompositeTags[tag] {
		return &RegularBox{Type: tag}
	}
	return nil
}
