// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segbuf

// BufferedSource wraps a RawSource with an owned Buffer, refilling
// from the source on demand so that typed and indexed reads can be
// expressed against already-buffered bytes. A BufferedSource is
// single-owner: concurrent use by two goroutines is undefined.
type BufferedSource struct {
	source RawSource
	buffer *Buffer
	closed bool
}

// NewBufferedSource returns a BufferedSource that refills from source.
func NewBufferedSource(source RawSource) *BufferedSource {
	return &BufferedSource{source: source, buffer: NewBuffer()}
}

// Buffer exposes the BufferedSource's internal Buffer for callers that
// need direct access to already-buffered bytes.
func (s *BufferedSource) Buffer() *Buffer { return s.buffer }

// refillOnce pulls one read's worth of bytes from the underlying
// source into the buffer. It returns false at end-of-input.
func (s *BufferedSource) refillOnce() (bool, error) {
	n, err := s.source.ReadAtMostTo(s.buffer, SegmentSize)
	if err != nil {
		return false, err
	}
	return n != -1, nil
}

// Request attempts to buffer at least byteCount bytes, refilling from
// the source as needed. It returns false (with a nil error) if the
// source is exhausted before byteCount bytes become available.
func (s *BufferedSource) Request(byteCount int64) (bool, error) {
	if byteCount < 0 {
		return false, ErrIllegalArgument
	}
	for s.buffer.Size() < byteCount {
		ok, err := s.refillOnce()
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Require buffers at least byteCount bytes, failing with
// ErrEndOfInput if the source is exhausted first.
func (s *BufferedSource) Require(byteCount int64) error {
	ok, err := s.Request(byteCount)
	if err != nil {
		return err
	}
	if !ok {
		return ErrEndOfInput
	}
	return nil
}

// Exhausted reports whether the source has no more bytes to offer.
func (s *BufferedSource) Exhausted() (bool, error) {
	ok, err := s.Request(1)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

// ReadAtMostTo reads at least 1 and up to len(dst) bytes into dst,
// refilling from the source if the buffer is currently empty. It
// returns (0, io.EOF)-shaped semantics via ErrEndOfInput only when the
// source is exhausted; see ReadByte and friends for typed reads.
func (s *BufferedSource) ReadAtMostTo(dst []byte) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if s.buffer.Size() == 0 {
		ok, err := s.refillOnce()
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, ErrEndOfInput
		}
	}
	return s.buffer.Read(dst)
}

// ReadByte reads and consumes one byte.
func (s *BufferedSource) ReadByte() (byte, error) {
	if err := s.Require(1); err != nil {
		return 0, err
	}
	return s.buffer.ReadByte()
}

// ReadShort reads a big-endian int16.
func (s *BufferedSource) ReadShort() (int16, error) {
	if err := s.Require(2); err != nil {
		return 0, err
	}
	return s.buffer.ReadShort()
}

// ReadShortLe reads a little-endian int16.
func (s *BufferedSource) ReadShortLe() (int16, error) {
	if err := s.Require(2); err != nil {
		return 0, err
	}
	return s.buffer.ReadShortLe()
}

// ReadInt reads a big-endian int32.
func (s *BufferedSource) ReadInt() (int32, error) {
	if err := s.Require(4); err != nil {
		return 0, err
	}
	return s.buffer.ReadInt()
}

// ReadIntLe reads a little-endian int32.
func (s *BufferedSource) ReadIntLe() (int32, error) {
	if err := s.Require(4); err != nil {
		return 0, err
	}
	return s.buffer.ReadIntLe()
}

// ReadLong reads a big-endian int64.
func (s *BufferedSource) ReadLong() (int64, error) {
	if err := s.Require(8); err != nil {
		return 0, err
	}
	return s.buffer.ReadLong()
}

// ReadLongLe reads a little-endian int64.
func (s *BufferedSource) ReadLongLe() (int64, error) {
	if err := s.Require(8); err != nil {
		return 0, err
	}
	return s.buffer.ReadLongLe()
}

// ReadByteArray consumes and returns exactly n bytes.
func (s *BufferedSource) ReadByteArray(n int64) ([]byte, error) {
	if err := s.Require(n); err != nil {
		return nil, err
	}
	return s.buffer.ReadByteArray(n)
}

// ReadFully consumes exactly len(dst) bytes into dst.
func (s *BufferedSource) ReadFully(dst []byte) error {
	if err := s.Require(int64(len(dst))); err != nil {
		return err
	}
	return s.buffer.ReadFully(dst)
}

// ReadString consumes n bytes as UTF-8.
func (s *BufferedSource) ReadString(n int64) (string, error) {
	if err := s.Require(n); err != nil {
		return "", err
	}
	return s.buffer.ReadString(n)
}

// ReadStringAll reads from the source until exhausted and returns the
// accumulated bytes decoded as UTF-8.
func (s *BufferedSource) ReadStringAll() (string, error) {
	for {
		ok, err := s.refillOnce()
		if err != nil {
			return "", err
		}
		if !ok {
			break
		}
	}
	return s.buffer.ReadStringAll()
}

// ReadCodePoint decodes and consumes one UTF-8 code point.
func (s *BufferedSource) ReadCodePoint() (rune, error) {
	if err := s.Require(1); err != nil {
		return 0, err
	}
	// Ensure up to a full code point's worth of lookahead bytes are
	// buffered, but don't fail Require if the source runs out early:
	// the final code point in a stream may be shorter than UTFMax.
	_, _ = s.Request(4)
	return s.buffer.ReadCodePoint()
}

// ReadDecimalLong parses an optional leading '-' followed by one or
// more ASCII digits, refilling as needed to find the first non-digit
// or end of input.
func (s *BufferedSource) ReadDecimalLong() (int64, error) {
	for i := int64(1); ; i++ {
		ok, err := s.Request(i + 1)
		if err != nil {
			return 0, err
		}
		if !ok {
			break
		}
		c, perr := s.buffer.peekByteAt(i)
		if perr != nil {
			break
		}
		if c < '0' || c > '9' {
			break
		}
	}
	return s.buffer.ReadDecimalLong()
}

// ReadHexadecimalUnsignedLong parses [0-9a-fA-F] digits, refilling as
// needed to find the first non-hex-digit byte or end of input.
func (s *BufferedSource) ReadHexadecimalUnsignedLong() (uint64, error) {
	for i := int64(0); ; i++ {
		ok, err := s.Request(i + 1)
		if err != nil {
			return 0, err
		}
		if !ok {
			break
		}
		c, _ := s.buffer.peekByteAt(i)
		if _, isHex := hexDigitValue(c); !isHex {
			break
		}
	}
	return s.buffer.ReadHexadecimalUnsignedLong()
}

// IndexOfByte returns the index of the first occurrence of target at
// or after fromIndex, refilling from the source as needed, or -1 if
// the source is exhausted without finding it.
func (s *BufferedSource) IndexOfByte(target byte, fromIndex int64) (int64, error) {
	if fromIndex < 0 {
		return -1, ErrIllegalArgument
	}
	for {
		if fromIndex < s.buffer.Size() {
			idx, err := s.buffer.IndexOfByte(target, fromIndex, s.buffer.Size())
			if err != nil {
				return -1, err
			}
			if idx != -1 {
				return idx, nil
			}
			fromIndex = s.buffer.Size()
		}
		ok, err := s.refillOnce()
		if err != nil {
			return -1, err
		}
		if !ok {
			return -1, nil
		}
	}
}

// ReadLine reads a line terminated by "\n" or "\r\n", consuming the
// terminator. ok is false only when the source is exhausted with
// nothing buffered.
func (s *BufferedSource) ReadLine() (line string, ok bool, err error) {
	idx, ferr := s.IndexOfByte('\n', 0)
	if ferr != nil {
		return "", false, ferr
	}
	if idx == -1 {
		if s.buffer.Size() == 0 {
			return "", false, nil
		}
		text, rerr := s.buffer.ReadStringAll()
		return text, true, rerr
	}
	return s.buffer.consumeLineAt(idx)
}

// ReadLineStrict is like ReadLine but fails with ErrEndOfInput instead
// of returning an unterminated remainder, and rejects lines longer
// than maxLength bytes (a negative maxLength means unbounded).
func (s *BufferedSource) ReadLineStrict(maxLength int64) (string, error) {
	fromIndex := int64(0)
	for {
		idx, err := s.buffer.IndexOfByte('\n', fromIndex, s.buffer.Size())
		if err != nil {
			return "", err
		}
		if idx != -1 {
			if maxLength >= 0 && idx > maxLength {
				return "", ErrEndOfInput
			}
			line, _, lerr := s.buffer.consumeLineAt(idx)
			return line, lerr
		}
		if maxLength >= 0 && s.buffer.Size() > maxLength {
			return "", ErrEndOfInput
		}
		fromIndex = s.buffer.Size()
		ok, err := s.refillOnce()
		if err != nil {
			return "", err
		}
		if !ok {
			return "", ErrEndOfInput
		}
	}
}

// Peek returns a RawSource over the bytes still to be read, without
// consuming them from the BufferedSource. Reads through the returned
// source transparently refill this BufferedSource as needed.
func (s *BufferedSource) Peek() RawSource {
	return &peekSource{owner: s}
}

// Close closes the underlying RawSource.
func (s *BufferedSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.source.Close()
}

// peekSource is a non-consuming view over a BufferedSource's buffered
// and yet-to-be-buffered bytes. It tracks its own read position
// relative to the owner's buffer at the time Peek was called; it
// assumes the owner is not drained by another reader while the peek
// is outstanding, matching segbuf's single-owner concurrency model.
type peekSource struct {
	owner *BufferedSource
	pos   int64
}

func (p *peekSource) ReadAtMostTo(sink *Buffer, byteCount int64) (int64, error) {
	if byteCount < 0 {
		return 0, ErrIllegalArgument
	}
	if _, err := p.owner.Request(p.pos + 1); err != nil {
		return 0, err
	}
	available := p.owner.buffer.Size() - p.pos
	if available <= 0 {
		return -1, nil
	}
	n := byteCount
	if n > available {
		n = available
	}
	if err := p.owner.buffer.CopyTo(sink, p.pos, n); err != nil {
		return 0, err
	}
	p.pos += n
	return n, nil
}

func (p *peekSource) Close() error { return nil }

var _ RawSource = (*peekSource)(nil)
