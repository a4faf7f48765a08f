package reader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/ugparu/mediaprobe/utils"
)

// Source supplies the bytes of a media file.
type Source interface {
	// ReadAt reads len(p) bytes at off. It returns io.EOF with the bytes read
	// when the source ends first. Sources without range support only accept
	// the offset right after the previous read.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	SupportsRange() bool
	Size() int64 // Negative when unknown.
	Close() error
}

// FileSource reads a local file.
type FileSource struct {
	f    *os.File
	size int64
}

// OpenFile opens a file for probing.
func OpenFile(name string) (*FileSource, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &FileSource{f: f, size: info.Size()}, nil
}

func (s *FileSource) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := utils.CheckContext(ctx); err != nil {
		return 0, err
	}
	return s.f.ReadAt(p, off)
}

func (s *FileSource) SupportsRange() bool { return true }
func (s *FileSource) Size() int64         { return s.size }
func (s *FileSource) Close() error        { return s.f.Close() }

func (s *FileSource) String() string {
	return "FILE " + s.f.Name()
}

// StreamSource reads a forward-only stream such as a pipe.
type StreamSource struct {
	r   io.Reader
	pos int64
}

func NewStreamSource(r io.Reader) *StreamSource {
	return &StreamSource{r: r, pos: 0}
}

func (s *StreamSource) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := utils.CheckContext(ctx); err != nil {
		return 0, err
	}
	if off != s.pos {
		return 0, &utils.ProtocolMisuseError{Reason: fmt.Sprintf("stream read at %d, positioned at %d", off, s.pos)}
	}
	n, err := io.ReadFull(s.r, p)
	s.pos += int64(n)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}
	return n, err
}

func (s *StreamSource) SupportsRange() bool { return false }
func (s *StreamSource) Size() int64         { return -1 }

func (s *StreamSource) Close() error {
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *StreamSource) String() string {
	return "STREAM"
}

// HTTPSource reads a remote file with range requests when the server
// advertises them, and as a single forward stream otherwise.
type HTTPSource struct {
	client  *http.Client
	url     string
	size    int64
	ranges  bool
	stream  *StreamSource
	headers http.Header
}

// OpenHTTP issues a HEAD request to learn the size and range support of url.
func OpenHTTP(ctx context.Context, client *http.Client, url string, headers http.Header) (*HTTPSource, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return nil, err
	}
	copyHeaders(req, headers)
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPStatusError{URL: url, Status: resp.StatusCode}
	}
	return &HTTPSource{
		client:  client,
		url:     url,
		size:    resp.ContentLength,
		ranges:  strings.EqualFold(resp.Header.Get("Accept-Ranges"), "bytes"),
		stream:  nil,
		headers: headers,
	}, nil
}

// HTTPStatusError is returned for an unexpected response status.
type HTTPStatusError struct {
	URL    string
	Status int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Status)
}

func copyHeaders(req *http.Request, headers http.Header) {
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
}

func (s *HTTPSource) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := utils.CheckContext(ctx); err != nil {
		return 0, err
	}
	if !s.ranges {
		return s.readStream(ctx, p, off)
	}
	if s.size >= 0 && off >= s.size {
		return 0, io.EOF
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return 0, err
	}
	copyHeaders(req, s.headers)
	req.Header.Set("Range", "bytes="+strconv.FormatInt(off, 10)+"-"+strconv.FormatInt(off+int64(len(p))-1, 10))
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusPartialContent:
	case http.StatusRequestedRangeNotSatisfiable:
		return 0, io.EOF
	default:
		return 0, &HTTPStatusError{URL: s.url, Status: resp.StatusCode}
	}
	n, err := io.ReadFull(resp.Body, p)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}
	return n, err
}

func (s *HTTPSource) readStream(ctx context.Context, p []byte, off int64) (int, error) {
	if s.stream == nil {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
		if err != nil {
			return 0, err
		}
		copyHeaders(req, s.headers)
		resp, err := s.client.Do(req)
		if err != nil {
			return 0, err
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return 0, &HTTPStatusError{URL: s.url, Status: resp.StatusCode}
		}
		s.stream = NewStreamSource(resp.Body)
	}
	return s.stream.ReadAt(ctx, p, off)
}

func (s *HTTPSource) SupportsRange() bool { return s.ranges }
func (s *HTTPSource) Size() int64         { return s.size }

func (s *HTTPSource) Close() error {
	if s.stream != nil {
		return s.stream.Close()
	}
	return nil
}

func (s *HTTPSource) String() string {
	return "HTTP " + s.url
}
