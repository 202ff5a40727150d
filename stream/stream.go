// Package stream provides the character source abstraction feeding the
// block and tag parsers: a consume-once cursor over strings, byte
// slices, readers, and live feeds, with lookahead and mid-stream
// insertion.
package stream

import (
	"errors"
	"fmt"
	"io"
)

// ErrEndOfStream is returned when the source is definitively exhausted.
var ErrEndOfStream = errors.New("stream: end of stream")

// ErrNeedData is returned when a lookahead exceeds the buffered content
// of a source that has not ended yet. The caller supplies more bytes via
// Feed and retries.
var ErrNeedData = errors.New("stream: insufficient data buffered")

// ErrClosed is returned by Feed after End has been called.
var ErrClosed = errors.New("stream: source already ended")

const fillChunk = 4096

// Position represents a location in the source.
type Position struct {
	Name   string
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	if p.Name != "" {
		return fmt.Sprintf("%s:%d:%d", p.Name, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Stream is a cursor over a character source. Characters are yielded at
// most once; Insert splices new content at the cursor so that it is
// read before the remainder of the original source.
//
// A Stream is owned by a single parse and is not safe for concurrent
// use.
type Stream struct {
	name string

	// pieces holds pending content in read order; pos indexes into
	// pieces[0].
	pieces [][]byte
	pos    int

	reader io.Reader
	closed bool

	offset int
	line   int
	column int

	scratch []byte
}

// New returns a closed stream over data. The slice is not copied; the
// caller must not mutate it while the stream is in use.
func New(data []byte, name string) *Stream {
	s := &Stream{name: name, closed: true, line: 1, column: 1}
	if len(data) > 0 {
		s.pieces = append(s.pieces, data)
	}
	return s
}

// NewString returns a closed stream over text.
func NewString(text string, name string) *Stream {
	return New([]byte(text), name)
}

// FromReader returns a stream that pulls from r on demand. Lookahead
// past the buffered content blocks on r; io.EOF from r ends the stream.
func FromReader(r io.Reader, name string) *Stream {
	return &Stream{name: name, reader: r, line: 1, column: 1}
}

// NewLive returns an open stream with no initial content. Content
// arrives via Feed; End marks exhaustion. Until then, reads past the
// buffered content report ErrNeedData.
func NewLive(name string) *Stream {
	return &Stream{name: name, line: 1, column: 1}
}

// Position returns the current cursor position.
func (s *Stream) Position() Position {
	return Position{
		Name:   s.name,
		Offset: s.offset,
		Line:   s.line,
		Column: s.column,
	}
}

// Name returns the source name given at construction.
func (s *Stream) Name() string { return s.name }

// Ended reports whether the source can no longer grow.
func (s *Stream) Ended() bool { return s.closed && s.reader == nil }

// Buffered returns the number of bytes available without suspending.
func (s *Stream) Buffered() int {
	n := 0
	for i, p := range s.pieces {
		if i == 0 {
			n += len(p) - s.pos
		} else {
			n += len(p)
		}
	}
	return n
}

// Feed appends a copy of data to the end of the stream.
func (s *Stream) Feed(data []byte) error {
	if s.closed {
		return ErrClosed
	}
	if len(data) == 0 {
		return nil
	}
	s.pieces = append(s.pieces, append([]byte(nil), data...))
	return nil
}

// FeedString appends a copy of text to the end of the stream.
func (s *Stream) FeedString(text string) error {
	if s.closed {
		return ErrClosed
	}
	if len(text) == 0 {
		return nil
	}
	s.pieces = append(s.pieces, []byte(text))
	return nil
}

// End marks the stream as complete. Further Feed calls fail and reads
// past the buffered content report ErrEndOfStream.
func (s *Stream) End() {
	s.closed = true
}

// Insert splices a copy of data at the cursor. The inserted content is
// read before anything already pending, starting with the very next
// Peek or Advance.
func (s *Stream) Insert(data []byte) {
	if len(data) == 0 {
		return
	}
	s.insert(append([]byte(nil), data...))
}

// InsertString splices text at the cursor.
func (s *Stream) InsertString(text string) {
	if len(text) == 0 {
		return
	}
	s.insert([]byte(text))
}

// InsertReader reads r to completion and splices its content at the
// cursor. Used to include sub-documents without losing position in the
// outer source.
func (s *Stream) InsertReader(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("insert stream: %w", err)
	}
	s.insert(data)
	return nil
}

func (s *Stream) insert(piece []byte) {
	if len(s.pieces) > 0 && s.pos > 0 {
		s.pieces[0] = s.pieces[0][s.pos:]
		s.pos = 0
	}
	s.pieces = append([][]byte{piece}, s.pieces...)
}

// Peek returns the byte at the given forward offset from the cursor
// without consuming it. It returns ErrNeedData when the offset is not
// buffered on a still-open source, and ErrEndOfStream when the offset
// lies past a definitively ended source.
func (s *Stream) Peek(offset int) (byte, error) {
	for s.Buffered() <= offset {
		if err := s.fill(); err != nil {
			return 0, err
		}
	}
	n := offset + s.pos
	for _, p := range s.pieces {
		if n < len(p) {
			return p[n], nil
		}
		n -= len(p)
	}
	return 0, ErrEndOfStream
}

// Advance consumes up to n bytes and returns the number consumed. It
// consumes fewer than n only when the buffered content runs out.
func (s *Stream) Advance(n int) int {
	consumed := 0
	for consumed < n && len(s.pieces) > 0 {
		p := s.pieces[0]
		ch := p[s.pos]
		s.pos++
		s.offset++
		consumed++
		if ch == '\n' {
			s.line++
			s.column = 1
		} else {
			s.column++
		}
		if s.pos >= len(p) {
			s.pieces = s.pieces[1:]
			s.pos = 0
		}
	}
	return consumed
}

// fill pulls one chunk from the backing reader, if any. Without a
// reader it reports ErrNeedData on an open stream and ErrEndOfStream
// otherwise.
func (s *Stream) fill() error {
	if s.reader == nil {
		if s.closed {
			return ErrEndOfStream
		}
		return ErrNeedData
	}
	buf := make([]byte, fillChunk)
	n, err := s.reader.Read(buf)
	if n > 0 {
		s.pieces = append(s.pieces, buf[:n])
	}
	if err != nil {
		s.reader = nil
		s.closed = true
		if err != io.EOF {
			return err
		}
		if n == 0 {
			return ErrEndOfStream
		}
	}
	return nil
}

// NextLine consumes and returns the next line, excluding the
// delimiter. On a source that has ended, the final unterminated line is
// returned as-is; once nothing remains, NextLine reports
// ErrEndOfStream. When no complete line is buffered on a still-open
// source, it reports ErrNeedData and consumes nothing.
//
// The returned slice is reused by the next NextLine call.
func (s *Stream) NextLine(delim byte) ([]byte, error) {
	idx, err := s.findByte(delim)
	if err == ErrNeedData {
		return nil, err
	}
	if err == ErrEndOfStream {
		n := s.Buffered()
		if n == 0 {
			return nil, ErrEndOfStream
		}
		line := s.copyOut(n)
		s.Advance(n)
		return line, nil
	}
	if err != nil {
		return nil, err
	}
	line := s.copyOut(idx)
	s.Advance(idx + 1)
	return line, nil
}

// findByte locates the next occurrence of b, pulling from the backing
// reader as needed.
func (s *Stream) findByte(b byte) (int, error) {
	scanned := 0
	for {
		n := 0
		for i, p := range s.pieces {
			if i == 0 {
				p = p[s.pos:]
			}
			for j := 0; j < len(p); j++ {
				if n+j >= scanned && p[j] == b {
					return n + j, nil
				}
			}
			n += len(p)
		}
		scanned = n
		if err := s.fill(); err != nil {
			return -1, err
		}
	}
}

// copyOut copies the next n buffered bytes into the reusable scratch
// buffer without consuming them.
func (s *Stream) copyOut(n int) []byte {
	if cap(s.scratch) < n {
		s.scratch = make([]byte, 0, n+64)
	}
	out := s.scratch[:0]
	for i, p := range s.pieces {
		if i == 0 {
			p = p[s.pos:]
		}
		if len(p) > n-len(out) {
			p = p[:n-len(out)]
		}
		out = append(out, p...)
		if len(out) == n {
			break
		}
	}
	s.scratch = out
	return out
}
