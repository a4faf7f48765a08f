package mp4

import (
	"sort"

	"github.com/ugparu/mediaprobe"
	"github.com/ugparu/mediaprobe/format/mp4/mp4io"
	"github.com/ugparu/mediaprobe/utils"
)

// MaxIndexedSamples bounds the samples indexed for one media data box.
const MaxIndexedSamples = 1 << 22

// sampleIndex locates the samples of all known tracks inside one mdat.
type sampleIndex struct {
	mdat     int64               // Offset of the mdat the index was built for.
	samples  []mediaprobe.Sample // Sorted by offset.
	byOffset map[int64]int
}

func buildSampleIndex(s *Structure, start, end int64) (*sampleIndex, error) {
	idx := &sampleIndex{mdat: start, samples: nil, byOffset: nil}
	moov := s.Movie()
	if moov == nil {
		idx.byOffset = map[int64]int{}
		return idx, nil
	}
	for _, trak := range moov.Tracks() {
		samples, err := TrackSamples(trak, start, end)
		if err != nil {
			return nil, err
		}
		idx.samples = append(idx.samples, samples...)
	}
	if moof := s.LastFragment(); moof != nil {
		idx.samples = append(idx.samples, FragmentSamples(moov, moof)...)
	}
	if len(idx.samples) > MaxIndexedSamples {
		return nil, utils.Malformed(start, "%d samples in one media data box", len(idx.samples))
	}
	sort.SliceStable(idx.samples, func(i, j int) bool {
		return idx.samples[i].Offset < idx.samples[j].Offset
	})
	idx.byOffset = make(map[int64]int, len(idx.samples))
	for i := len(idx.samples) - 1; i >= 0; i-- {
		idx.byOffset[idx.samples[i].Offset] = i
	}
	return idx, nil
}

// at returns the sample starting at offset that ends before end.
func (idx *sampleIndex) at(offset, end int64) (mediaprobe.Sample, bool) {
	i, ok := idx.byOffset[offset]
	if !ok {
		return mediaprobe.Sample{}, false
	}
	for ; i < len(idx.samples) && idx.samples[i].Offset == offset; i++ {
		if offset+int64(idx.samples[i].Size) <= end {
			return idx.samples[i], true
		}
	}
	return mediaprobe.Sample{}, false
}

// nextAfter returns the offset of the first sample after offset that fits before end.
func (idx *sampleIndex) nextAfter(offset, end int64) (int64, bool) {
	i := sort.Search(len(idx.samples), func(i int) bool {
		return idx.samples[i].Offset > offset
	})
	for ; i < len(idx.samples) && idx.samples[i].Offset < end; i++ {
		if idx.samples[i].Offset+int64(idx.samples[i].Size) <= end {
			return idx.samples[i].Offset, true
		}
	}
	return 0, false
}

// run steps through run-length coded table entries.
type run struct {
	counts []uint32
	idx    int
	used   uint32
}

func (r *run) next() (int, bool) {
	for r.idx < len(r.counts) && r.used >= r.counts[r.idx] {
		r.idx++
		r.used = 0
	}
	if r.idx >= len(r.counts) {
		return 0, false
	}
	r.used++
	return r.idx, true
}

// skip consumes k entries at once, reporting how many were taken from each run.
func (r *run) skip(k uint64, taken func(idx int, n uint64)) {
	for k > 0 && r.idx < len(r.counts) {
		left := uint64(r.counts[r.idx] - r.used)
		if left == 0 {
			r.idx++
			r.used = 0
			continue
		}
		n := min(k, left)
		if taken != nil {
			taken(r.idx, n)
		}
		r.used += uint32(n) //nolint:gosec
		k -= n
	}
}

func kindOf(handler *mp4io.HandlerRefer) mediaprobe.TrackKind {
	if handler == nil {
		return mediaprobe.KindOther
	}
	switch handler.SubType {
	case mp4io.HandlerVideo:
		return mediaprobe.KindVideo
	case mp4io.HandlerAudio:
		return mediaprobe.KindAudio
	}
	return mediaprobe.KindOther
}

// TrackSamples flattens the sample table of a track into the positions of
// the samples that start inside [start, end). Tracks with an incomplete table
// yield nothing. A chunk of constant-size samples that starts inside the range
// but runs past its end is malformed.
func TrackSamples(trak *mp4io.Track, start, end int64) ([]mediaprobe.Sample, error) {
	tkhd, mdhd := trak.Header(), trak.MediaHeader()
	stbl := trak.SampleTable()
	if tkhd == nil || mdhd == nil || stbl == nil {
		return nil, nil
	}
	stsz, _ := mp4io.Find[*mp4io.SampleSize](stbl)
	stco, _ := mp4io.Find[*mp4io.ChunkOffset](stbl)
	stsc, _ := mp4io.Find[*mp4io.SampleToChunk](stbl)
	stts, _ := mp4io.Find[*mp4io.TimeToSample](stbl)
	if stsz == nil || stco == nil || stsc == nil || stts == nil || len(stsc.Entries) == 0 {
		return nil, nil
	}
	ctts, _ := mp4io.Find[*mp4io.CompositionOffset](stbl)
	stss, _ := mp4io.Find[*mp4io.SyncSample](stbl)

	var sync map[uint32]bool
	if stss != nil {
		sync = make(map[uint32]bool, len(stss.Entries))
		for _, e := range stss.Entries {
			sync[e] = true
		}
	}
	durations := &run{counts: make([]uint32, len(stts.Entries))}
	for i, e := range stts.Entries {
		durations.counts[i] = e.Count
	}
	var offsets *run
	if ctts != nil {
		offsets = &run{counts: make([]uint32, len(ctts.Entries))}
		for i, e := range ctts.Entries {
			offsets.counts[i] = e.Count
		}
	}

	count := uint64(stsz.SampleCount)
	if stsz.SampleSize == 0 {
		count = min(count, uint64(len(stsz.Entries)))
	}
	kind := kindOf(trak.Handler())
	var samples []mediaprobe.Sample
	var n uint64 // Samples walked so far.
	group := 0
	var dts int64
	for chunk := 0; chunk < len(stco.Entries) && n < count; chunk++ {
		for group+1 < len(stsc.Entries) && uint32(chunk+1) >= stsc.Entries[group+1].FirstChunk { //nolint:gosec
			group++
		}
		offset := int64(stco.Entries[chunk]) //nolint:gosec
		inChunk := min(uint64(stsc.Entries[group].SamplesPerChunk), count-n)
		if offset < start || offset >= end {
			durations.skip(inChunk, func(i int, k uint64) {
				dts += int64(k) * int64(stts.Entries[i].Duration) //nolint:gosec
			})
			if offsets != nil {
				offsets.skip(inChunk, nil)
			}
			n += inChunk
			continue
		}
		if stsz.SampleSize != 0 && inChunk > uint64(end-offset)/uint64(stsz.SampleSize) { //nolint:gosec
			return nil, utils.Malformed(offset, "track %d chunk of %d samples of %d bytes overruns its media data",
				tkhd.TrackID, inChunk, stsz.SampleSize)
		}
		for i := uint64(0); i < inChunk; i++ {
			size := stsz.Size(int(n)) //nolint:gosec
			sample := mediaprobe.Sample{
				TrackID:   tkhd.TrackID,
				Kind:      kind,
				Offset:    offset,
				Size:      int(size),
				DTS:       dts,
				CTS:       dts,
				Timescale: mdhd.TimeScale,
				KeyFrame:  sync == nil || sync[uint32(n+1)], //nolint:gosec
				Data:      nil,
			}
			if offsets != nil {
				if j, ok := offsets.next(); ok {
					sample.CTS += int64(ctts.Entries[j].Offset)
				}
			}
			if j, ok := durations.next(); ok {
				dts += int64(stts.Entries[j].Duration)
			}
			if offset < end {
				samples = append(samples, sample)
				if len(samples) > MaxIndexedSamples {
					return nil, utils.Malformed(offset, "track %d has more than %d samples in one media data box",
						tkhd.TrackID, MaxIndexedSamples)
				}
			}
			n++
			offset += int64(size)
		}
	}
	return samples, nil
}

// FragmentSamples lists the samples described by the track runs of a moof.
func FragmentSamples(moov *mp4io.Movie, moof mp4io.Box) []mediaprobe.Sample {
	moofOffset, _ := moof.Pos()
	var samples []mediaprobe.Sample
	for _, traf := range moof.Children() {
		if traf.Tag() != mp4io.TRAF {
			continue
		}
		var tfhd *mp4io.TrackFragHeader
		var dts int64
		for _, b := range traf.Children() {
			switch box := b.(type) {
			case *mp4io.TrackFragHeader:
				tfhd = box
			case *mp4io.TrackFragDecodeTime:
				dts = int64(box.Time) //nolint:gosec
			}
		}
		if tfhd == nil {
			continue
		}
		var trak *mp4io.Track
		for _, t := range moov.Tracks() {
			if h := t.Header(); h != nil && h.TrackID == tfhd.TrackID {
				trak = t
				break
			}
		}
		if trak == nil || trak.MediaHeader() == nil {
			continue
		}
		kind := kindOf(trak.Handler())
		timescale := trak.MediaHeader().TimeScale

		base := moofOffset
		if tfhd.Flags&mp4io.TFHDBaseDataOffset != 0 {
			base = int64(tfhd.BaseDataOffset) //nolint:gosec
		}
		next := base
		for _, b := range traf.Children() {
			trun, ok := b.(*mp4io.TrackFragRun)
			if !ok {
				continue
			}
			offset := next
			if trun.Flags&mp4io.TRUNDataOffset != 0 {
				offset = base + int64(trun.DataOffset)
			}
			for i, e := range trun.Entries {
				duration, size, flags := tfhd.DefaultDuration, tfhd.DefaultSize, tfhd.DefaultFlags
				if trun.Flags&mp4io.TRUNSampleDuration != 0 {
					duration = e.Duration
				}
				if trun.Flags&mp4io.TRUNSampleSize != 0 {
					size = e.Size
				}
				if trun.Flags&mp4io.TRUNSampleFlags != 0 {
					flags = e.Flags
				}
				if i == 0 && trun.Flags&mp4io.TRUNFirstSampleFlags != 0 {
					flags = trun.FirstSampleFlags
				}
				cts := dts
				if trun.Flags&mp4io.TRUNSampleCTS != 0 {
					cts += int64(e.Cts)
				}
				samples = append(samples, mediaprobe.Sample{
					TrackID:   tfhd.TrackID,
					Kind:      kind,
					Offset:    offset,
					Size:      int(size),
					DTS:       dts,
					CTS:       cts,
					Timescale: timescale,
					KeyFrame:  flags&mp4io.SampleIsNonSync == 0,
					Data:      nil,
				})
				offset += int64(size)
				dts += int64(duration)
			}
			next = offset
		}
	}
	return samples
}
