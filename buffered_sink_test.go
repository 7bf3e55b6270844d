// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segbuf_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"code.hybscloud.com/segbuf"
)

func TestBufferedSink_WriteAndFlush(t *testing.T) {
	var out bytes.Buffer
	sink := segbuf.NewBufferedSink(segbuf.NewRawSink(&out))

	if _, err := sink.WriteString("hello, "); err != nil {
		t.Fatal(err)
	}
	if _, err := sink.WriteString("world"); err != nil {
		t.Fatal(err)
	}
	if err := sink.Flush(); err != nil {
		t.Fatal(err)
	}
	if out.String() != "hello, world" {
		t.Errorf("flushed output = %q, want %q", out.String(), "hello, world")
	}
}

func TestBufferedSink_EmitKeepsPartialTailSegment(t *testing.T) {
	var out bytes.Buffer
	sink := segbuf.NewBufferedSink(segbuf.NewRawSink(&out))

	payload := bytes.Repeat([]byte{'a'}, segbuf.SegmentSize+10)
	if _, err := sink.Write(payload); err != nil {
		t.Fatal(err)
	}
	// Write opportunistically emits complete segments, so the first
	// full SegmentSize chunk should already be on the wire...
	if out.Len() < segbuf.SegmentSize {
		t.Errorf("out.Len() = %d after Write, want at least %d complete segment bytes emitted", out.Len(), segbuf.SegmentSize)
	}
	// ...but the raw sink shouldn't have the whole payload yet, since
	// the last 10 bytes sit in a still-partial tail segment.
	if out.Len() == len(payload) {
		t.Error("Write emitted the partial tail segment before Flush; Emit should hold it back")
	}
	if err := sink.Flush(); err != nil {
		t.Fatal(err)
	}
	if out.Len() != len(payload) {
		t.Errorf("out.Len() after Flush = %d, want %d", out.Len(), len(payload))
	}
	if !bytes.Equal(out.Bytes(), payload) {
		t.Error("flushed bytes did not match the written payload")
	}
}

func TestBufferedSink_TypedWrites(t *testing.T) {
	var out bytes.Buffer
	sink := segbuf.NewBufferedSink(segbuf.NewRawSink(&out))

	if err := sink.WriteInt(0x01020304); err != nil {
		t.Fatal(err)
	}
	if err := sink.WriteIntLe(0x01020304); err != nil {
		t.Fatal(err)
	}
	if _, err := sink.WriteDecimalLong(-42); err != nil {
		t.Fatal(err)
	}
	if err := sink.Flush(); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x01, 0x02, 0x03, 0x04, 0x04, 0x03, 0x02, 0x01}
	want = append(want, []byte("-42")...)
	if !bytes.Equal(out.Bytes(), want) {
		t.Errorf("out = %x, want %x", out.Bytes(), want)
	}
}

func TestBufferedSink_CloseIsIdempotentAndFlushes(t *testing.T) {
	var out bytes.Buffer
	closer := &closeTrackingWriter{Writer: io.Writer(&out)}
	sink := segbuf.NewBufferedSink(segbuf.NewRawSink(closer))

	if _, err := sink.WriteString("flush me"); err != nil {
		t.Fatal(err)
	}
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}
	if out.String() != "flush me" {
		t.Errorf("out = %q, want %q", out.String(), "flush me")
	}
	if !closer.closed {
		t.Error("Close() did not reach the underlying writer")
	}
	if err := sink.Close(); err != nil {
		t.Errorf("second Close() = %v, want nil (idempotent)", err)
	}
}

func TestBufferedSink_OperationsAfterCloseFail(t *testing.T) {
	var out bytes.Buffer
	sink := segbuf.NewBufferedSink(segbuf.NewRawSink(&out))
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := sink.WriteString("too late"); !errors.Is(err, segbuf.ErrIllegalState) {
		t.Errorf("WriteString after Close = %v, want ErrIllegalState", err)
	}
}

func TestBufferedSink_ReadFrom(t *testing.T) {
	var out bytes.Buffer
	sink := segbuf.NewBufferedSink(segbuf.NewRawSink(&out))
	source := segbuf.NewBuffer()
	_, _ = source.WriteString("pulled through ReadFrom")

	n, err := sink.ReadFrom(source, source.Size())
	if err != nil {
		t.Fatal(err)
	}
	if n != 23 {
		t.Errorf("ReadFrom moved %d bytes, want 23", n)
	}
	if err := sink.Flush(); err != nil {
		t.Fatal(err)
	}
	if out.String() != "pulled through ReadFrom" {
		t.Errorf("out = %q", out.String())
	}
}

type closeTrackingWriter struct {
	Writer io.Writer
	closed bool
}

func (c *closeTrackingWriter) Write(p []byte) (int, error) {
	return c.Writer.Write(p)
}

func (c *closeTrackingWriter) Close() error {
	c.closed = true
	return nil
}
