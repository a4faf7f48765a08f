package mediaprobe

import (
	"context"
	"sync"

	"github.com/ugparu/mediaprobe/utils"
	"github.com/ugparu/mediaprobe/utils/logger"
)

// StateOption configures a ParserState.
type StateOption func(*ParserState)

// WithCanSkipVideoData declares that sample bytes are not needed, metadata only.
func WithCanSkipVideoData(v bool) StateOption {
	return func(s *ParserState) {
		s.canSkipVideoData = v
	}
}

// WithOnTrack sets a callback fired for every newly registered track.
func WithOnTrack(fn func(Track)) StateOption {
	return func(s *ParserState) {
		s.onTrack = fn
	}
}

// WithOnSample sets a callback fired for every sample found in a media payload.
// Returning an error stops the parse with that error.
func WithOnSample(fn func(*Sample) error) StateOption {
	return func(s *ParserState) {
		s.onSample = fn
	}
}

// ParserState accumulates what a parse session learned across suspensions.
//
// The parser is the single writer. Tracks are append-only and never retracted.
// Readers may call Tracks and SampleCount from other goroutines.
type ParserState struct {
	mu               sync.RWMutex
	tracks           []Track
	samples          map[uint32]int
	canSkipVideoData bool
	onTrack          func(Track)
	onSample         func(*Sample) error
}

// NewParserState creates an empty state.
func NewParserState(opts ...StateOption) *ParserState {
	s := &ParserState{
		mu:      sync.RWMutex{},
		tracks:  nil,
		samples: make(map[uint32]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ParserState) String() string {
	return "STATE"
}

// CanSkipVideoData reports whether the caller declared sample bytes unnecessary.
func (s *ParserState) CanSkipVideoData() bool {
	return s.canSkipVideoData
}

// RegisterTrack appends a track unless one with the same id is already known.
func (s *ParserState) RegisterTrack(ctx context.Context, t Track) error {
	if err := utils.CheckContext(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	for _, known := range s.tracks {
		if known.ID() == t.ID() {
			s.mu.Unlock()
			return nil
		}
	}
	s.tracks = append(s.tracks, t)
	s.mu.Unlock()

	logger.Debugf(s, "Registered %s track %d", t.Kind(), t.ID())
	if s.onTrack != nil {
		s.onTrack(t)
	}
	return utils.CheckContext(ctx)
}

// Tracks returns the registered tracks in registration order.
func (s *ParserState) Tracks() []Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Track(nil), s.tracks...)
}

// Track returns the registered track with the given id.
func (s *ParserState) Track(id uint32) Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tracks {
		if t.ID() == id {
			return t
		}
	}
	return nil
}

// EmitSample counts the sample and hands it to the sample callback.
func (s *ParserState) EmitSample(ctx context.Context, sample *Sample) error {
	if err := utils.CheckContext(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.samples[sample.TrackID]++
	s.mu.Unlock()

	if s.onSample != nil {
		return s.onSample(sample)
	}
	return nil
}

// SampleCount returns how many samples of a track were emitted so far.
func (s *ParserState) SampleCount(trackID uint32) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.samples[trackID]
}
