// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segbuf

import (
	"io"

	"github.com/pkg/errors"
)

// RawSource is the minimal contract a byte producer must satisfy to be
// wrapped by a BufferedSource: an unbuffered, single read-until-some-
// progress operation plus Close. ReadAtMostTo never blocks waiting for
// more than one read's worth of data; it returns (-1, nil) at
// end-of-input rather than an error.
type RawSource interface {
	// ReadAtMostTo reads at least 1 and at most byteCount bytes from
	// the source into sink, returning the number of bytes read, or
	// -1 if the source is exhausted.
	ReadAtMostTo(sink *Buffer, byteCount int64) (int64, error)

	// Close releases any resources held by the source.
	Close() error
}

// RawSink is the minimal contract a byte consumer must satisfy to be
// wrapped by a BufferedSink.
type RawSink interface {
	// WriteFrom moves exactly byteCount bytes from source into the
	// sink.
	WriteFrom(source *Buffer, byteCount int64) error

	// Flush pushes any buffered bytes to their final destination.
	Flush() error

	// Close flushes and releases any resources held by the sink.
	Close() error
}

// readerSource adapts an io.Reader (optionally an io.Closer) to
// RawSource.
type readerSource struct {
	r   io.Reader
	buf []byte
}

// NewRawSource wraps an io.Reader as a RawSource. If r implements
// io.Closer, Close delegates to it; otherwise Close is a no-op.
func NewRawSource(r io.Reader) RawSource {
	return &readerSource{r: r}
}

func (s *readerSource) ReadAtMostTo(sink *Buffer, byteCount int64) (int64, error) {
	if byteCount < 0 {
		return 0, ErrIllegalArgument
	}
	if byteCount == 0 {
		return 0, nil
	}
	if int64(len(s.buf)) < byteCount && byteCount <= SegmentSize {
		s.buf = make([]byte, byteCount)
	} else if len(s.buf) == 0 {
		s.buf = make([]byte, SegmentSize)
	}
	window := s.buf
	if int64(len(window)) > byteCount {
		window = window[:byteCount]
	}
	n, err := s.r.Read(window)
	if n > 0 {
		if _, werr := sink.Write(window[:n]); werr != nil {
			return 0, errors.Wrap(werr, "segbuf: buffering read into sink")
		}
	}
	if err != nil {
		if err == io.EOF {
			if n > 0 {
				return int64(n), nil
			}
			return -1, nil
		}
		return int64(n), errors.Wrap(err, "segbuf: reading from raw source")
	}
	if n == 0 {
		return -1, nil
	}
	return int64(n), nil
}

func (s *readerSource) Close() error {
	if c, ok := s.r.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return errors.Wrap(err, "segbuf: closing raw source")
		}
	}
	return nil
}

// writerSink adapts an io.Writer (optionally an io.Closer and a
// Flush() error method) to RawSink.
type writerSink struct {
	w io.Writer
}

// NewRawSink wraps an io.Writer as a RawSink. If w implements
// Flush() error, Flush delegates to it; Close first flushes the same
// way and then, if w implements io.Closer, delegates to it. Otherwise
// each is a no-op beyond what the underlying writer already does.
func NewRawSink(w io.Writer) RawSink {
	return &writerSink{w: w}
}

func (s *writerSink) WriteFrom(source *Buffer, byteCount int64) error {
	if byteCount < 0 || byteCount > source.Size() {
		return ErrIllegalArgument
	}
	remaining := byteCount
	for remaining > 0 {
		chunk := remaining
		if chunk > SegmentSize {
			chunk = SegmentSize
		}
		buf, err := source.ReadByteArray(chunk)
		if err != nil {
			return err
		}
		if _, err := s.w.Write(buf); err != nil {
			return errors.Wrap(err, "segbuf: writing to raw sink")
		}
		remaining -= chunk
	}
	return nil
}

func (s *writerSink) Flush() error {
	type flusher interface{ Flush() error }
	if f, ok := s.w.(flusher); ok {
		if err := f.Flush(); err != nil {
			return errors.Wrap(err, "segbuf: flushing raw sink")
		}
	}
	return nil
}

func (s *writerSink) Close() error {
	flushErr := s.Flush()
	if c, ok := s.w.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return errors.Wrap(err, "segbuf: closing raw sink")
		}
	}
	return flushErr
}
