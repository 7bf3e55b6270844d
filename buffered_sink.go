// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segbuf

// BufferedSink wraps a RawSink with an owned Buffer, batching writes
// so that typed writes can be expressed against an in-memory Buffer
// and pushed to the underlying sink in segment-sized chunks. A
// BufferedSink is single-owner: concurrent use by two goroutines is
// undefined.
type BufferedSink struct {
	sink   RawSink
	buffer *Buffer
	closed bool
}

// NewBufferedSink returns a BufferedSink that flushes to sink.
func NewBufferedSink(sink RawSink) *BufferedSink {
	return &BufferedSink{sink: sink, buffer: NewBuffer()}
}

// Buffer exposes the BufferedSink's internal Buffer for callers that
// want to batch several writes before an explicit Emit.
func (s *BufferedSink) Buffer() *Buffer { return s.buffer }

func (s *BufferedSink) checkOpen() error {
	if s.closed {
		return ErrIllegalState
	}
	return nil
}

// Write implements io.Writer by buffering p, opportunistically
// emitting complete segments.
func (s *BufferedSink) Write(p []byte) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	n, _ := s.buffer.Write(p)
	if err := s.Emit(); err != nil {
		return n, err
	}
	return n, nil
}

// WriteByte buffers a single byte.
func (s *BufferedSink) WriteByte(v byte) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.buffer.WriteByte(v); err != nil {
		return err
	}
	return s.Emit()
}

// WriteShort buffers v as a big-endian int16.
func (s *BufferedSink) WriteShort(v int16) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.buffer.WriteShort(v); err != nil {
		return err
	}
	return s.Emit()
}

// WriteShortLe buffers v as a little-endian int16.
func (s *BufferedSink) WriteShortLe(v int16) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.buffer.WriteShortLe(v); err != nil {
		return err
	}
	return s.Emit()
}

// WriteInt buffers v as a big-endian int32.
func (s *BufferedSink) WriteInt(v int32) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.buffer.WriteInt(v); err != nil {
		return err
	}
	return s.Emit()
}

// WriteIntLe buffers v as a little-endian int32.
func (s *BufferedSink) WriteIntLe(v int32) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.buffer.WriteIntLe(v); err != nil {
		return err
	}
	return s.Emit()
}

// WriteLong buffers v as a big-endian int64.
func (s *BufferedSink) WriteLong(v int64) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.buffer.WriteLong(v); err != nil {
		return err
	}
	return s.Emit()
}

// WriteLongLe buffers v as a little-endian int64.
func (s *BufferedSink) WriteLongLe(v int64) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.buffer.WriteLongLe(v); err != nil {
		return err
	}
	return s.Emit()
}

// WriteString buffers the UTF-8 bytes of str.
func (s *BufferedSink) WriteString(str string) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	n, _ := s.buffer.WriteString(str)
	if err := s.Emit(); err != nil {
		return n, err
	}
	return n, nil
}

// WriteCodePointValue buffers cp encoded as UTF-8.
func (s *BufferedSink) WriteCodePointValue(cp rune) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	n, _ := s.buffer.WriteCodePointValue(cp)
	if err := s.Emit(); err != nil {
		return n, err
	}
	return n, nil
}

// WriteDecimalLong buffers v formatted in decimal.
func (s *BufferedSink) WriteDecimalLong(v int64) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	n, _ := s.buffer.WriteDecimalLong(v)
	if err := s.Emit(); err != nil {
		return n, err
	}
	return n, nil
}

// WriteHexadecimalUnsignedLong buffers v formatted in lowercase hex.
func (s *BufferedSink) WriteHexadecimalUnsignedLong(v uint64) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	n, _ := s.buffer.WriteHexadecimalUnsignedLong(v)
	if err := s.Emit(); err != nil {
		return n, err
	}
	return n, nil
}

// WriteFrom implements RawSink by moving byteCount bytes from source
// into the buffer, splicing whole segments by reference, then
// opportunistically emitting complete segments.
func (s *BufferedSink) WriteFrom(source *Buffer, byteCount int64) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.buffer.WriteFrom(source, byteCount); err != nil {
		return err
	}
	return s.Emit()
}

// ReadFrom pulls byteCount bytes from a RawSource (one read-sized
// chunk at a time) into the buffer and returns the number of bytes
// moved, opportunistically emitting complete segments as it goes.
func (s *BufferedSink) ReadFrom(source RawSource, byteCount int64) (int64, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	remaining := byteCount
	for remaining > 0 {
		chunk := remaining
		if chunk > SegmentSize {
			chunk = SegmentSize
		}
		n, err := source.ReadAtMostTo(s.buffer, chunk)
		if err != nil {
			return byteCount - remaining, err
		}
		if n == -1 {
			return byteCount - remaining, ErrEndOfInput
		}
		remaining -= n
		if err := s.Emit(); err != nil {
			return byteCount - remaining, err
		}
	}
	return byteCount, nil
}

// Emit flushes every complete segment currently buffered to the
// underlying sink, leaving at most one possibly-partial tail segment
// behind. This is the "emit complete segments" policy: it amortizes
// the cost of pushing to the raw sink without forcing every write to
// cross that boundary.
func (s *BufferedSink) Emit() error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	completeBytes := s.buffer.Size()
	if tail := s.buffer.tailSegment(); tail != nil {
		completeBytes -= int64(tail.Len())
	}
	if completeBytes <= 0 {
		return nil
	}
	return s.sink.WriteFrom(s.buffer, completeBytes)
}

// Flush pushes every buffered byte, including a partial tail segment,
// to the underlying sink, then flushes the sink itself.
func (s *BufferedSink) Flush() error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if s.buffer.Size() > 0 {
		if err := s.sink.WriteFrom(s.buffer, s.buffer.Size()); err != nil {
			return err
		}
	}
	return s.sink.Flush()
}

// Close flushes any buffered bytes, flushes the underlying sink, and
// closes it. Close is idempotent: calling it again is a no-op.
func (s *BufferedSink) Close() error {
	if s.closed {
		return nil
	}
	var flushErr error
	if s.buffer.Size() > 0 {
		flushErr = s.sink.WriteFrom(s.buffer, s.buffer.Size())
	}
	if flushErr == nil {
		flushErr = s.sink.Flush()
	}
	s.closed = true
	closeErr := s.sink.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

var _ RawSink = (*BufferedSink)(nil)
