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

func TestBuffer_WriteReadByte(t *testing.T) {
	b := segbuf.NewBuffer()
	if !b.IsEmpty() {
		t.Fatal("new buffer should be empty")
	}
	if err := b.WriteByte('A'); err != nil {
		t.Fatalf("WriteByte: %v", err)
	}
	if b.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", b.Size())
	}
	v, err := b.ReadByte()
	if err != nil {
		t.Fatalf("ReadByte: %v", err)
	}
	if v != 'A' {
		t.Errorf("ReadByte() = %q, want %q", v, 'A')
	}
	if !b.IsEmpty() {
		t.Error("buffer should be empty after consuming its only byte")
	}
	if _, err := b.ReadByte(); !errors.Is(err, segbuf.ErrEndOfInput) {
		t.Errorf("ReadByte on empty buffer = %v, want ErrEndOfInput", err)
	}
}

func TestBuffer_PrimitivesBigEndian(t *testing.T) {
	b := segbuf.NewBuffer()
	if err := b.WriteShort(0x0102); err != nil {
		t.Fatal(err)
	}
	if err := b.WriteInt(0x01020304); err != nil {
		t.Fatal(err)
	}
	if err := b.WriteLong(0x0102030405060708); err != nil {
		t.Fatal(err)
	}

	raw, err := b.ReadByteArray(14)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x01, 0x02, 0x01, 0x02, 0x03, 0x04, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	if !bytes.Equal(raw, want) {
		t.Errorf("bytes = %x, want %x", raw, want)
	}
}

func TestBuffer_PrimitivesLittleEndian(t *testing.T) {
	b := segbuf.NewBuffer()
	if err := b.WriteIntLe(0x01020304); err != nil {
		t.Fatal(err)
	}
	raw, err := b.ReadByteArray(4)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x04, 0x03, 0x02, 0x01}
	if !bytes.Equal(raw, want) {
		t.Errorf("bytes = %x, want %x", raw, want)
	}

	if err := b.WriteIntLe(0x01020304); err != nil {
		t.Fatal(err)
	}
	v, err := b.ReadIntLe()
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x01020304 {
		t.Errorf("ReadIntLe() = %x, want %x", v, 0x01020304)
	}
}

func TestBuffer_MultiSegmentRead(t *testing.T) {
	b := segbuf.NewBuffer()
	const n = segbuf.SegmentSize*3 + 17
	payload := make([]byte, n)
	for i := range payload {
		payload[i] = byte(i)
	}
	if _, err := b.Write(payload); err != nil {
		t.Fatal(err)
	}
	if b.Size() != int64(n) {
		t.Fatalf("Size() = %d, want %d", b.Size(), n)
	}
	got, err := b.ReadByteArray(int64(n))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("round-tripped bytes across multiple segments did not match")
	}
	if !b.IsEmpty() {
		t.Error("buffer should be drained")
	}
}

func TestBuffer_IndexOfByte(t *testing.T) {
	b := segbuf.NewBuffer()
	_, _ = b.WriteString("the quick brown fox")
	idx, err := b.IndexOfByte('q', 0, b.Size())
	if err != nil {
		t.Fatal(err)
	}
	if idx != 4 {
		t.Errorf("IndexOfByte('q') = %d, want 4", idx)
	}
	idx, err = b.IndexOfByte('z', 0, b.Size())
	if err != nil {
		t.Fatal(err)
	}
	if idx != -1 {
		t.Errorf("IndexOfByte('z') = %d, want -1", idx)
	}
}

func TestBuffer_IndexOfByteAcrossSegments(t *testing.T) {
	b := segbuf.NewBuffer()
	filler := bytes.Repeat([]byte{'x'}, segbuf.SegmentSize+10)
	if _, err := b.Write(filler); err != nil {
		t.Fatal(err)
	}
	if err := b.WriteByte('!'); err != nil {
		t.Fatal(err)
	}
	idx, err := b.IndexOfByte('!', 0, b.Size())
	if err != nil {
		t.Fatal(err)
	}
	if idx != int64(len(filler)) {
		t.Errorf("IndexOfByte('!') = %d, want %d", idx, len(filler))
	}
}

func TestBuffer_IndexOfByteString(t *testing.T) {
	b := segbuf.NewBuffer()
	_, _ = b.WriteString("abcXYZdef")
	idx, err := b.IndexOfByteString(segbuf.ByteStringFromString("XYZ"), 0, b.Size())
	if err != nil {
		t.Fatal(err)
	}
	if idx != 3 {
		t.Errorf("IndexOfByteString = %d, want 3", idx)
	}
	if idx, _ := b.IndexOfByteString(segbuf.ByteStringFromString("nope"), 0, b.Size()); idx != -1 {
		t.Errorf("IndexOfByteString(missing) = %d, want -1", idx)
	}
}

func TestBuffer_StartsWith(t *testing.T) {
	b := segbuf.NewBuffer()
	_, _ = b.WriteString("hello world")
	if !b.StartsWith(segbuf.ByteStringFromString("hello")) {
		t.Error("StartsWith(\"hello\") = false, want true")
	}
	if b.StartsWith(segbuf.ByteStringFromString("world")) {
		t.Error("StartsWith(\"world\") = true, want false")
	}
	if b.StartsWith(segbuf.ByteStringFromString("hello world and then some")) {
		t.Error("StartsWith(longer than buffer) = true, want false")
	}
}

func TestBuffer_UTF8Sanitization(t *testing.T) {
	b := segbuf.NewBuffer()
	malformed := []byte{0xC3, 0x28} // invalid 2-byte lead followed by a non-continuation byte
	if _, err := b.Write(malformed); err != nil {
		t.Fatal(err)
	}
	s, err := b.ReadString(int64(len(malformed)))
	if err != nil {
		t.Fatal(err)
	}
	want := "�("
	if s != want {
		t.Errorf("ReadString() = %q, want %q", s, want)
	}
}

func TestBuffer_CodePointRoundTrip(t *testing.T) {
	b := segbuf.NewBuffer()
	points := []rune{'A', 'é', '中', '🙂'}
	for _, r := range points {
		if _, err := b.WriteCodePointValue(r); err != nil {
			t.Fatal(err)
		}
	}
	for _, want := range points {
		got, err := b.ReadCodePoint()
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("ReadCodePoint() = %q, want %q", got, want)
		}
	}
	if !b.IsEmpty() {
		t.Error("buffer should be empty after reading all code points")
	}
}

func TestBuffer_UnpairedSurrogateBecomesReplacementCharacter(t *testing.T) {
	b := segbuf.NewBuffer()
	if _, err := b.WriteCodePointValue(0xD800); err != nil {
		t.Fatal(err)
	}
	r, err := b.ReadCodePoint()
	if err != nil {
		t.Fatal(err)
	}
	if r != 0xFFFD {
		t.Errorf("ReadCodePoint() = %U, want U+FFFD", r)
	}
}

func TestBuffer_DecimalLong(t *testing.T) {
	cases := []struct {
		text string
		want int64
	}{
		{"0", 0},
		{"42", 42},
		{"-42", -42},
		{"9223372036854775807", 9223372036854775807},
		{"-9223372036854775808", -9223372036854775808},
	}
	for _, c := range cases {
		b := segbuf.NewBuffer()
		_, _ = b.WriteString(c.text)
		got, err := b.ReadDecimalLong()
		if err != nil {
			t.Fatalf("ReadDecimalLong(%q): %v", c.text, err)
		}
		if got != c.want {
			t.Errorf("ReadDecimalLong(%q) = %d, want %d", c.text, got, c.want)
		}
	}
}

func TestBuffer_DecimalLongStopsAtNonDigit(t *testing.T) {
	b := segbuf.NewBuffer()
	_, _ = b.WriteString("123abc")
	got, err := b.ReadDecimalLong()
	if err != nil {
		t.Fatal(err)
	}
	if got != 123 {
		t.Errorf("ReadDecimalLong() = %d, want 123", got)
	}
	rest, err := b.ReadStringAll()
	if err != nil {
		t.Fatal(err)
	}
	if rest != "abc" {
		t.Errorf("remainder = %q, want %q", rest, "abc")
	}
}

func TestBuffer_DecimalLongOverflow(t *testing.T) {
	b := segbuf.NewBuffer()
	_, _ = b.WriteString("99999999999999999999")
	if _, err := b.ReadDecimalLong(); !errors.Is(err, segbuf.ErrNumberFormat) {
		t.Errorf("ReadDecimalLong overflow = %v, want ErrNumberFormat", err)
	}
}

func TestBuffer_DecimalLongNoDigits(t *testing.T) {
	b := segbuf.NewBuffer()
	_, _ = b.WriteString("abc")
	if _, err := b.ReadDecimalLong(); !errors.Is(err, segbuf.ErrNumberFormat) {
		t.Errorf("ReadDecimalLong() = %v, want ErrNumberFormat", err)
	}
}

func TestBuffer_HexadecimalUnsignedLong(t *testing.T) {
	b := segbuf.NewBuffer()
	_, _ = b.WriteHexadecimalUnsignedLong(0xCAFEBABE)
	_, _ = b.WriteString(" trailing")
	got, err := b.ReadHexadecimalUnsignedLong()
	if err != nil {
		t.Fatal(err)
	}
	if got != 0xCAFEBABE {
		t.Errorf("ReadHexadecimalUnsignedLong() = %x, want %x", got, 0xCAFEBABE)
	}
}

func TestBuffer_ReadLine(t *testing.T) {
	b := segbuf.NewBuffer()
	_, _ = b.WriteString("first\r\nsecond\nthird")

	line, ok, err := b.ReadLine()
	if err != nil || !ok || line != "first" {
		t.Fatalf("ReadLine() = (%q, %v, %v), want (\"first\", true, nil)", line, ok, err)
	}
	line, ok, err = b.ReadLine()
	if err != nil || !ok || line != "second" {
		t.Fatalf("ReadLine() = (%q, %v, %v), want (\"second\", true, nil)", line, ok, err)
	}
	line, ok, err = b.ReadLine()
	if err != nil || !ok || line != "third" {
		t.Fatalf("ReadLine() = (%q, %v, %v), want (\"third\", true, nil) for unterminated remainder", line, ok, err)
	}
	_, ok, err = b.ReadLine()
	if err != nil || ok {
		t.Fatalf("ReadLine() on empty buffer = (_, %v, %v), want (_, false, nil)", ok, err)
	}
}

func TestBuffer_ReadLineStrictFailsWithoutTerminator(t *testing.T) {
	b := segbuf.NewBuffer()
	_, _ = b.WriteString("no newline here")
	if _, err := b.ReadLineStrict(-1); !errors.Is(err, segbuf.ErrEndOfInput) {
		t.Errorf("ReadLineStrict() = %v, want ErrEndOfInput", err)
	}
}

func TestBuffer_SpliceWriteFrom(t *testing.T) {
	src := segbuf.NewBuffer()
	payload := bytes.Repeat([]byte{'q'}, segbuf.SegmentSize*2+123)
	if _, err := src.Write(payload); err != nil {
		t.Fatal(err)
	}

	dst := segbuf.NewBuffer()
	if err := dst.WriteFrom(src, int64(len(payload))); err != nil {
		t.Fatal(err)
	}
	if !src.IsEmpty() {
		t.Error("source should be drained after a full splice")
	}
	if dst.Size() != int64(len(payload)) {
		t.Fatalf("dst.Size() = %d, want %d", dst.Size(), len(payload))
	}
	got, err := dst.ReadByteArray(int64(len(payload)))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("spliced bytes did not round-trip")
	}
}

func TestBuffer_SpliceWriteFromPartial(t *testing.T) {
	src := segbuf.NewBuffer()
	_, _ = src.WriteString("hello world")
	dst := segbuf.NewBuffer()
	if err := dst.WriteFrom(src, 5); err != nil {
		t.Fatal(err)
	}
	got, err := dst.ReadStringAll()
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello" {
		t.Errorf("dst = %q, want %q", got, "hello")
	}
	rest, err := src.ReadStringAll()
	if err != nil {
		t.Fatal(err)
	}
	if rest != " world" {
		t.Errorf("src remainder = %q, want %q", rest, " world")
	}
}

func TestBuffer_CopyToIsNonConsuming(t *testing.T) {
	src := segbuf.NewBuffer()
	_, _ = src.WriteString("hello world")
	dst := segbuf.NewBuffer()
	if err := src.CopyTo(dst, 6, 5); err != nil {
		t.Fatal(err)
	}
	if src.Size() != 11 {
		t.Errorf("src.Size() = %d, want 11 (CopyTo must not consume)", src.Size())
	}
	got, err := dst.ReadStringAll()
	if err != nil {
		t.Fatal(err)
	}
	if got != "world" {
		t.Errorf("dst = %q, want %q", got, "world")
	}
}

func TestBuffer_TransferToAndFrom(t *testing.T) {
	src := segbuf.NewBuffer()
	_, _ = src.WriteString("payload")
	dst := segbuf.NewBuffer()

	n, err := src.TransferTo(dst)
	if err != nil {
		t.Fatal(err)
	}
	if n != 7 {
		t.Errorf("TransferTo moved %d bytes, want 7", n)
	}
	if !src.IsEmpty() {
		t.Error("src should be empty after TransferTo")
	}

	another := segbuf.NewBuffer()
	n, err = another.TransferFrom(dst)
	if err != nil {
		t.Fatal(err)
	}
	if n != 7 {
		t.Errorf("TransferFrom moved %d bytes, want 7", n)
	}
}

func TestBuffer_PeekDoesNotConsume(t *testing.T) {
	b := segbuf.NewBuffer()
	_, _ = b.WriteString("peekable")
	peek := b.Peek()

	sink := segbuf.NewBuffer()
	n, err := peek.ReadAtMostTo(sink, 4)
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Fatalf("peek read %d bytes, want 4", n)
	}
	if b.Size() != 8 {
		t.Errorf("b.Size() = %d, want 8 (Peek must not consume from the original)", b.Size())
	}
	got, _ := b.ReadStringAll()
	if got != "peekable" {
		t.Errorf("b remainder = %q, want %q", got, "peekable")
	}
}

func TestBuffer_Snapshot(t *testing.T) {
	b := segbuf.NewBuffer()
	_, _ = b.WriteString("snapshot me")
	snap := b.Snapshot()
	if snap.String() != "snapshot me" {
		t.Errorf("Snapshot().String() = %q, want %q", snap.String(), "snapshot me")
	}
	if b.Size() != int64(len("snapshot me")) {
		t.Error("Snapshot must not consume from the buffer")
	}
}

func TestBuffer_ReadAtMostToSentinels(t *testing.T) {
	b := segbuf.NewBuffer()
	sink := segbuf.NewBuffer()
	n, err := b.ReadAtMostTo(sink, 10)
	if err != nil {
		t.Fatal(err)
	}
	if n != -1 {
		t.Errorf("ReadAtMostTo on empty buffer = %d, want -1", n)
	}
}

func TestBuffer_ImplementsIOReaderAndWriter(t *testing.T) {
	var b segbuf.Buffer
	var _ io.Reader = &b
	var _ io.Writer = &b
	var _ io.ByteReader = &b
	var _ io.ByteWriter = &b
	var _ io.StringWriter = &b
}

func TestBuffer_ReadFullyShortInputFails(t *testing.T) {
	b := segbuf.NewBuffer()
	_, _ = b.WriteString("ab")
	dst := make([]byte, 4)
	if err := b.ReadFully(dst); !errors.Is(err, segbuf.ErrEndOfInput) {
		t.Errorf("ReadFully() = %v, want ErrEndOfInput", err)
	}
}
