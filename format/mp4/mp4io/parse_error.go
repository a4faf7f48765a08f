package mp4io

import (
	"errors"
	"fmt"
	"strings"
)

// ParseError is a chain of field names and offsets leading to a decode failure.
type ParseError struct {
	Debug  string
	Offset int64
	prev   *ParseError
}

func (p *ParseError) Error() string {
	s := []string{}
	for err := p; err != nil; err = err.prev {
		s = append(s, fmt.Sprintf("%s:%d", err.Debug, err.Offset))
	}
	return "mp4io: parse error: " + strings.Join(s, ",")
}

// Offset of the innermost failing field.
func (p *ParseError) Innermost() int64 {
	last := p
	for last.prev != nil {
		last = last.prev
	}
	return last.Offset
}

func parseErr(debug string, offset int64, prev error) error {
	var ppe *ParseError
	if prev != nil && !errors.As(prev, &ppe) {
		return prev
	}
	return &ParseError{Debug: debug, Offset: offset, prev: ppe}
}
