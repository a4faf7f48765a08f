package mp4io

// Box types.
const (
	FTYP = Tag(0x66747970)
	STYP = Tag(0x73747970)
	MOOV = Tag(0x6d6f6f76)
	MVHD = Tag(0x6d766864)
	TRAK = Tag(0x7472616b)
	TKHD = Tag(0x746b6864)
	MDIA = Tag(0x6d646961)
	MDHD = Tag(0x6d646864)
	HDLR = Tag(0x68646c72)
	MINF = Tag(0x6d696e66)
	STBL = Tag(0x7374626c)
	STSD = Tag(0x73747364)
	STTS = Tag(0x73747473)
	STSC = Tag(0x73747363)
	STSZ = Tag(0x7374737a)
	STCO = Tag(0x7374636f)
	CO64 = Tag(0x636f3634)
	STSS = Tag(0x73747373)
	CTTS = Tag(0x63747473)
	AVCC = Tag(0x61766343)
	HVCC = Tag(0x68766343)
	AV1C = Tag(0x61763143)
	COLR = Tag(0x636f6c72)
	PASP = Tag(0x70617370)
	ESDS = Tag(0x65736473)
	MOOF = Tag(0x6d6f6f66)
	TRAF = Tag(0x74726166)
	TFHD = Tag(0x74666864)
	TFDT = Tag(0x74666474)
	TRUN = Tag(0x7472756e)
	MDAT = Tag(0x6d646174)
	MEBX = Tag(0x6d656278)
	DIMS = Tag(0x64696d73)
	WAVE = Tag(0x77617665)
	STSB = Tag(0x73747362)
	DOPS = Tag(0x644f7073)
	FREE = Tag(0x66726565)
	SKIP = Tag(0x736b6970)
	WIDE = Tag(0x77696465)
	UDTA = Tag(0x75647461)
	META = Tag(0x6d657461)
	EDTS = Tag(0x65647473)
	MVEX = Tag(0x6d766578)

	// VOID marks a zero-size box.
	VOID = Tag(0)
)

// Sample entry formats.
var (
	AVC1 = StringToTag("avc1")
	AVC3 = StringToTag("avc3")
	HVC1 = StringToTag("hvc1")
	HEV1 = StringToTag("hev1")
	AV01 = StringToTag("av01")
	VP08 = StringToTag("vp08")
	VP09 = StringToTag("vp09")
	MP4V = StringToTag("mp4v")
	JPEG = StringToTag("jpeg")
	MJPA = StringToTag("mjpa")
	AP4H = StringToTag("ap4h")
	AP4X = StringToTag("ap4x")
	APCH = StringToTag("apch")
	APCN = StringToTag("apcn")
	APCS = StringToTag("apcs")
	APCO = StringToTag("apco")
	APRH = StringToTag("aprh")
	APRN = StringToTag("aprn")

	MP4A = StringToTag("mp4a")
	MP3  = StringToTag(".mp3")
	OPUS = StringToTag("Opus")
	TWOS = StringToTag("twos")
	SOWT = StringToTag("sowt")
	IN24 = StringToTag("in24")
	IN32 = StringToTag("in32")
	FL32 = StringToTag("fl32")
	RAW  = StringToTag("raw ")
	ULAW = StringToTag("ulaw")
	ALAW = StringToTag("alaw")
	LPCM = StringToTag("lpcm")
	AC3  = StringToTag("ac-3")
	EC3  = StringToTag("ec-3")
)

// Handler types.
var (
	HandlerVideo = StringToTag("vide")
	HandlerAudio = StringToTag("soun")
)

// CompositeTags are the container boxes that get no dedicated decoder but
// whose children are parsed.
var CompositeTags = map[Tag]bool{
	MDIA: true,
	MINF: true,
	STBL: true,
	MOOF: true,
	DIMS: true,
	WAVE: true,
	TRAF: true,
	STSB: true,
}

// VideoFormats are the sample entry formats laid out as visual sample entries.
var VideoFormats = map[Tag]bool{
	AVC1: true, AVC3: true, HVC1: true, HEV1: true, AV01: true,
	VP08: true, VP09: true, MP4V: true, JPEG: true, MJPA: true,
	AP4H: true, AP4X: true, APCH: true, APCN: true, APCS: true,
	APCO: true, APRH: true, APRN: true,
}

// AudioFormats are the sample entry formats laid out as audio sample entries.
var AudioFormats = map[Tag]bool{
	MP4A: true, MP3: true, OPUS: true, TWOS: true, SOWT: true,
	IN24: true, IN32: true, FL32: true, RAW: true, ULAW: true,
	ALAW: true, LPCM: true, AC3: true, EC3: true,
}
