// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segbuf

import (
	"encoding/binary"
	"io"
	"math"
	"math/bits"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Buffer is an in-memory byte queue backed by a ring of Segments. It is
// both a RawSource and a RawSink, so it can be passed anywhere either
// is expected. A Buffer is single-owner: concurrent use of one Buffer
// by two goroutines is undefined.
type Buffer struct {
	head *Segment
	size int64
}

// NewBuffer returns an empty Buffer.
func NewBuffer() *Buffer { return &Buffer{} }

// Size returns the number of readable bytes currently queued.
func (b *Buffer) Size() int64 { return b.size }

// IsEmpty reports whether the Buffer holds no readable bytes.
func (b *Buffer) IsEmpty() bool { return b.size == 0 }

// --- ring management ---

// appendSegment links a detached segment (next == prev == nil) onto
// the tail of the ring.
func (b *Buffer) appendSegment(seg *Segment) {
	if b.head == nil {
		seg.next, seg.prev = seg, seg
		b.head = seg
		return
	}
	tail := b.head.prev
	seg.prev = tail
	seg.next = b.head
	tail.next = seg
	b.head.prev = seg
}

// tailSegment returns the current tail segment, or nil if the Buffer
// is empty.
func (b *Buffer) tailSegment() *Segment {
	if b.head == nil {
		return nil
	}
	return b.head.prev
}

// writableTail returns a segment with owner == true and at least
// minCapacity bytes of remaining capacity, appending a fresh pool
// segment if the current tail cannot provide it.
func (b *Buffer) writableTail(minCapacity int) *Segment {
	tail := b.tailSegment()
	if tail == nil || !tail.owner || tail.RemainingCapacity() < minCapacity {
		fresh := segmentPoolTake()
		b.appendSegment(fresh)
		return fresh
	}
	return tail
}

// popHeadIfEmpty unlinks and recycles the head segment if it has been
// fully consumed (pos == limit), advancing the head pointer.
func (b *Buffer) popHeadIfEmpty() {
	head := b.head
	if head == nil || head.pos != head.limit {
		return
	}
	if head.next == head {
		b.head = nil
	} else {
		head.next.prev = head.prev
		head.prev.next = head.next
		b.head = head.next
	}
	head.next, head.prev = nil, nil
	segmentPoolRecycle(head)
}

// segmentAt locates the segment containing the byte at the given
// 0-based offset from the head of the readable region, along with the
// offset within that segment's readable range.
func (b *Buffer) segmentAt(index int64) (*Segment, int64) {
	s := b.head
	remaining := index
	for {
		segLen := int64(s.Len())
		if remaining < segLen {
			return s, remaining
		}
		remaining -= segLen
		s = s.next
	}
}

// peekByteAt returns the i-th unread byte without consuming it.
func (b *Buffer) peekByteAt(i int64) (byte, error) {
	if i < 0 || i >= b.size {
		return 0, ErrIllegalArgument
	}
	s, offset := b.segmentAt(i)
	return s.getChecked(int(offset)), nil
}

// Skip discards the next n bytes without copying them out.
func (b *Buffer) Skip(n int64) error {
	if n < 0 {
		return ErrIllegalArgument
	}
	if n > b.size {
		return ErrEndOfInput
	}
	remaining := n
	for remaining > 0 {
		s := b.head
		avail := int64(s.Len())
		take := avail
		if remaining < take {
			take = remaining
		}
		s.pos += int(take)
		b.size -= take
		remaining -= take
		b.popHeadIfEmpty()
	}
	return nil
}

// --- bulk byte transfer ---

// readAtMostToSlice copies up to len(p) bytes from the head of the
// queue into p, across as many segments as necessary, and returns the
// number of bytes copied.
func (b *Buffer) readAtMostToSlice(p []byte) int {
	total := 0
	for len(p) > 0 && b.head != nil {
		s := b.head
		n := min(len(p), s.Len())
		copy(p[:n], s.data[s.pos:s.pos+n])
		s.pos += n
		b.size -= int64(n)
		p = p[n:]
		total += n
		b.popHeadIfEmpty()
	}
	return total
}

// Read implements io.Reader, moving up to len(p) bytes into p. It
// returns io.EOF once the Buffer is empty, matching spec.md's
// readAtMostTo(dst, offset, len) contract (never blocks; -1/EOF on an
// empty buffer).
func (b *Buffer) Read(p []byte) (int, error) {
	if b.size == 0 {
		return 0, io.EOF
	}
	return b.readAtMostToSlice(p), nil
}

// ReadByteArray consumes and returns exactly n bytes.
func (b *Buffer) ReadByteArray(n int64) ([]byte, error) {
	if n < 0 {
		return nil, ErrIllegalArgument
	}
	if n > b.size {
		return nil, ErrEndOfInput
	}
	out := make([]byte, n)
	b.readAtMostToSlice(out)
	return out, nil
}

// ReadFully consumes exactly len(dst) bytes into dst.
func (b *Buffer) ReadFully(dst []byte) error {
	if int64(len(dst)) > b.size {
		return ErrEndOfInput
	}
	b.readAtMostToSlice(dst)
	return nil
}

// Write implements io.Writer. Writes never fail for lack of capacity:
// the Buffer grows by acquiring segments from the pool, writing at
// most SegmentSize bytes into any single segment per spec.md §4.3.
func (b *Buffer) Write(p []byte) (int, error) {
	total := len(p)
	for len(p) > 0 {
		s := b.writableTail(1)
		n := min(len(p), s.RemainingCapacity())
		copy(s.data[s.limit:s.limit+n], p[:n])
		s.limit += n
		p = p[n:]
		b.size += int64(n)
	}
	return total, nil
}

// --- primitive reads/writes ---

func (b *Buffer) readExact(dst []byte) error {
	if int64(len(dst)) > b.size {
		return ErrEndOfInput
	}
	b.readAtMostToSlice(dst)
	return nil
}

// ReadByte implements io.ByteReader.
func (b *Buffer) ReadByte() (byte, error) {
	if b.size == 0 {
		return 0, ErrEndOfInput
	}
	v := b.head.readByte()
	b.size--
	b.popHeadIfEmpty()
	return v, nil
}

// ReadShort reads a big-endian int16.
func (b *Buffer) ReadShort() (int16, error) {
	var buf [2]byte
	if err := b.readExact(buf[:]); err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(buf[:])), nil
}

// ReadShortLe reads a little-endian int16 by reversing the big-endian read.
func (b *Buffer) ReadShortLe() (int16, error) {
	v, err := b.ReadShort()
	if err != nil {
		return 0, err
	}
	return int16(bits.ReverseBytes16(uint16(v))), nil
}

// ReadInt reads a big-endian int32.
func (b *Buffer) ReadInt() (int32, error) {
	var buf [4]byte
	if err := b.readExact(buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(buf[:])), nil
}

// ReadIntLe reads a little-endian int32 by reversing the big-endian read.
func (b *Buffer) ReadIntLe() (int32, error) {
	v, err := b.ReadInt()
	if err != nil {
		return 0, err
	}
	return int32(bits.ReverseBytes32(uint32(v))), nil
}

// ReadLong reads a big-endian int64.
func (b *Buffer) ReadLong() (int64, error) {
	var buf [8]byte
	if err := b.readExact(buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(buf[:])), nil
}

// ReadLongLe reads a little-endian int64 by reversing the big-endian read.
func (b *Buffer) ReadLongLe() (int64, error) {
	v, err := b.ReadLong()
	if err != nil {
		return 0, err
	}
	return int64(bits.ReverseBytes64(uint64(v))), nil
}

// WriteByte implements io.ByteWriter.
func (b *Buffer) WriteByte(v byte) error {
	s := b.writableTail(1)
	s.writeByte(v)
	b.size++
	return nil
}

// WriteShort writes v as a big-endian int16.
func (b *Buffer) WriteShort(v int16) error {
	s := b.writableTail(2)
	s.writeShort(v)
	b.size += 2
	return nil
}

// WriteShortLe writes v as a little-endian int16 by reversing bytes
// before the big-endian write.
func (b *Buffer) WriteShortLe(v int16) error {
	return b.WriteShort(int16(bits.ReverseBytes16(uint16(v))))
}

// WriteInt writes v as a big-endian int32.
func (b *Buffer) WriteInt(v int32) error {
	s := b.writableTail(4)
	s.writeInt(v)
	b.size += 4
	return nil
}

// WriteIntLe writes v as a little-endian int32 by reversing bytes
// before the big-endian write.
func (b *Buffer) WriteIntLe(v int32) error {
	return b.WriteInt(int32(bits.ReverseBytes32(uint32(v))))
}

// WriteLong writes v as a big-endian int64.
func (b *Buffer) WriteLong(v int64) error {
	s := b.writableTail(8)
	s.writeLong(v)
	b.size += 8
	return nil
}

// WriteLongLe writes v as a little-endian int64 by reversing bytes
// before the big-endian write.
func (b *Buffer) WriteLongLe(v int64) error {
	return b.WriteLong(int64(bits.ReverseBytes64(uint64(v))))
}

// --- UTF-8 strings and code points ---

// sanitizeUTF8 decodes raw as UTF-8, replacing each malformed maximal
// subpart with a single U+FFFD, per the W3C substitution rule.
func sanitizeUTF8(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	var sb strings.Builder
	sb.Grow(len(raw))
	for len(raw) > 0 {
		r, size := utf8.DecodeRune(raw)
		if r == utf8.RuneError && size == 1 {
			// Extend over the rest of an incomplete but well-formed
			// prefix, so the whole maximal subpart yields one U+FFFD.
			for k := min(len(raw), utf8.UTFMax-1); k > 1; k-- {
				if !utf8.FullRune(raw[:k]) {
					size = k
					break
				}
			}
		}
		sb.WriteRune(r)
		raw = raw[size:]
	}
	return sb.String()
}

// ReadString consumes n bytes as UTF-8. Malformed sequences are
// replaced by U+FFFD per the W3C substitution rule; exactly n bytes
// are always consumed.
func (b *Buffer) ReadString(n int64) (string, error) {
	raw, err := b.ReadByteArray(n)
	if err != nil {
		return "", err
	}
	return sanitizeUTF8(raw), nil
}

// ReadStringAll consumes the remainder of the Buffer as UTF-8.
func (b *Buffer) ReadStringAll() (string, error) {
	return b.ReadString(b.size)
}

// WriteString implements io.StringWriter. Go strings are already
// UTF-8 encoded, so writing one is a direct byte copy.
func (b *Buffer) WriteString(s string) (int, error) {
	return b.Write([]byte(s))
}

// WriteStringRange writes the UTF-8 bytes of s[start:end].
func (b *Buffer) WriteStringRange(s string, start, end int) (int, error) {
	if start < 0 || end > len(s) || start > end {
		return 0, ErrIllegalArgument
	}
	return b.Write([]byte(s[start:end]))
}

// ReadCodePoint decodes and consumes one UTF-8 code point, returning
// the replacement rune on malformed input.
func (b *Buffer) ReadCodePoint() (rune, error) {
	if b.size == 0 {
		return 0, ErrEndOfInput
	}
	n := b.size
	if n > utf8.UTFMax {
		n = utf8.UTFMax
	}
	var tmp [utf8.UTFMax]byte
	for i := int64(0); i < n; i++ {
		c, _ := b.peekByteAt(i)
		tmp[i] = c
	}
	r, size := utf8.DecodeRune(tmp[:n])
	if err := b.Skip(int64(size)); err != nil {
		return 0, err
	}
	return r, nil
}

// WriteCodePointValue encodes cp as UTF-8 and writes it. An invalid
// code point (including an unpaired surrogate) is written as the
// replacement sequence.
func (b *Buffer) WriteCodePointValue(cp rune) (int, error) {
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], cp)
	return b.Write(buf[:n])
}

// --- decimal and hexadecimal integers ---

// ReadDecimalLong parses an optional leading '-' followed by one or
// more ASCII digits, stopping at the first non-digit. Fails with
// ErrNumberFormat if no digits are present or the value overflows a
// signed 64-bit integer.
func (b *Buffer) ReadDecimalLong() (int64, error) {
	if b.size == 0 {
		return 0, ErrNumberFormat
	}
	var idx int64
	negative := false
	first, _ := b.peekByteAt(0)
	if first == '-' {
		negative = true
		idx = 1
	}
	var value uint64
	var digits int64
	for idx < b.size {
		c, _ := b.peekByteAt(idx)
		if c < '0' || c > '9' {
			break
		}
		d := uint64(c - '0')
		if value > (math.MaxUint64-d)/10 {
			return 0, ErrNumberFormat
		}
		value = value*10 + d
		idx++
		digits++
	}
	if digits == 0 {
		return 0, ErrNumberFormat
	}
	if err := b.Skip(idx); err != nil {
		return 0, err
	}
	if negative {
		if value > uint64(math.MaxInt64)+1 {
			return 0, ErrNumberFormat
		}
		return -int64(value), nil
	}
	if value > uint64(math.MaxInt64) {
		return 0, ErrNumberFormat
	}
	return int64(value), nil
}

// ReadHexadecimalUnsignedLong parses [0-9a-fA-F] digits as an unsigned
// 64-bit integer, stopping at the first non-hex-digit byte. Fails with
// ErrNumberFormat if no digits are present or the value overflows 64
// bits.
func (b *Buffer) ReadHexadecimalUnsignedLong() (uint64, error) {
	if b.size == 0 {
		return 0, ErrNumberFormat
	}
	var value uint64
	var idx int64
	var digits int
	for idx < b.size {
		c, _ := b.peekByteAt(idx)
		d, ok := hexDigitValue(c)
		if !ok {
			break
		}
		if value>>60 != 0 {
			return 0, ErrNumberFormat
		}
		value = value<<4 | uint64(d)
		idx++
		digits++
	}
	if digits == 0 {
		return 0, ErrNumberFormat
	}
	if err := b.Skip(idx); err != nil {
		return 0, err
	}
	return value, nil
}

func hexDigitValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// WriteDecimalLong writes v in decimal.
func (b *Buffer) WriteDecimalLong(v int64) (int, error) {
	return b.Write([]byte(strconv.FormatInt(v, 10)))
}

// WriteHexadecimalUnsignedLong writes v in lowercase hexadecimal.
func (b *Buffer) WriteHexadecimalUnsignedLong(v uint64) (int, error) {
	return b.Write([]byte(strconv.FormatUint(v, 16)))
}

// --- line reading ---

// ReadLine returns the next line, consuming its terminator ("\n" or
// "\r\n"). ok is false only when the Buffer is empty; an unterminated
// remainder at end of input is still returned as the final line.
func (b *Buffer) ReadLine() (line string, ok bool, err error) {
	idx, ferr := b.IndexOfByte('\n', 0, b.size)
	if ferr != nil {
		return "", false, ferr
	}
	if idx == -1 {
		if b.size == 0 {
			return "", false, nil
		}
		s, err := b.ReadStringAll()
		return s, true, err
	}
	return b.consumeLineAt(idx)
}

// ReadLineStrict is like ReadLine but fails with ErrEndOfInput instead
// of returning an unterminated remainder, and rejects lines longer
// than maxLength bytes (a negative maxLength means unbounded, bounded
// only by the buffered content).
func (b *Buffer) ReadLineStrict(maxLength int64) (string, error) {
	searchLimit := b.size
	if maxLength >= 0 && maxLength+1 < searchLimit {
		searchLimit = maxLength + 1
	}
	idx, err := b.IndexOfByte('\n', 0, searchLimit)
	if err != nil {
		return "", err
	}
	if idx == -1 {
		return "", ErrEndOfInput
	}
	line, _, err := b.consumeLineAt(idx)
	return line, err
}

func (b *Buffer) consumeLineAt(newlineIndex int64) (string, bool, error) {
	lineLen := newlineIndex
	if newlineIndex > 0 {
		prev, _ := b.peekByteAt(newlineIndex - 1)
		if prev == '\r' {
			lineLen = newlineIndex - 1
		}
	}
	line, err := b.ReadString(lineLen)
	if err != nil {
		return "", false, err
	}
	if err := b.Skip(newlineIndex + 1 - lineLen); err != nil {
		return "", false, err
	}
	return line, true, nil
}

// --- indexed search ---

// IndexOfByte returns the first index in [startIndex, endIndex) at
// which target occurs, or -1 if it does not occur.
func (b *Buffer) IndexOfByte(target byte, startIndex, endIndex int64) (int64, error) {
	if startIndex < 0 || endIndex < startIndex || endIndex > b.size {
		return -1, ErrIllegalArgument
	}
	if startIndex == endIndex {
		return -1, nil
	}
	s, offset := b.segmentAt(startIndex)
	pos := startIndex
	for pos < endIndex {
		segStart := s.pos + int(offset)
		segEnd := s.limit
		if int64(segEnd-segStart) > endIndex-pos {
			segEnd = segStart + int(endIndex-pos)
		}
		for i := segStart; i < segEnd; i++ {
			if s.data[i] == target {
				return pos + int64(i-segStart), nil
			}
		}
		pos += int64(segEnd - segStart)
		offset = 0
		s = s.next
	}
	return -1, nil
}

// IndexOfByteString returns the first index in [startIndex, endIndex)
// at which bs begins, or -1 if it does not occur.
func (b *Buffer) IndexOfByteString(bs ByteString, startIndex, endIndex int64) (int64, error) {
	if startIndex < 0 || endIndex < startIndex || endIndex > b.size {
		return -1, ErrIllegalArgument
	}
	n := int64(bs.Len())
	if n == 0 {
		return startIndex, nil
	}
	for i := startIndex; i+n <= endIndex; i++ {
		matched := true
		for j := int64(0); j < n; j++ {
			c, _ := b.peekByteAt(i + j)
			if c != bs.At(int(j)) {
				matched = false
				break
			}
		}
		if matched {
			return i, nil
		}
	}
	return -1, nil
}

// StartsWith reports whether the Buffer's unread bytes begin with bs.
func (b *Buffer) StartsWith(bs ByteString) bool {
	if int64(bs.Len()) > b.size {
		return false
	}
	for i := 0; i < bs.Len(); i++ {
		c, _ := b.peekByteAt(int64(i))
		if c != bs.At(i) {
			return false
		}
	}
	return true
}

// --- transfer, copy, splice, peek, snapshot ---

// TransferTo moves all of b's bytes into sink, leaving b empty, and
// returns the number of bytes moved.
func (b *Buffer) TransferTo(sink RawSink) (int64, error) {
	n := b.size
	if n == 0 {
		return 0, nil
	}
	if err := sink.WriteFrom(b, n); err != nil {
		return 0, err
	}
	return n, nil
}

// TransferFrom reads all remaining bytes from source into b and
// returns the number of bytes read.
func (b *Buffer) TransferFrom(source RawSource) (int64, error) {
	var total int64
	for {
		n, err := source.ReadAtMostTo(b, SegmentSize)
		if err != nil {
			return total, err
		}
		if n == -1 {
			return total, nil
		}
		total += n
	}
}

// CopyTo copies byteCount bytes starting at offset into out, without
// consuming them from b.
func (b *Buffer) CopyTo(out *Buffer, offset, byteCount int64) error {
	if offset < 0 || byteCount < 0 || offset+byteCount > b.size {
		return ErrIllegalArgument
	}
	if byteCount == 0 {
		return nil
	}
	s, segOffset := b.segmentAt(offset)
	remaining := byteCount
	for remaining > 0 {
		segStart := s.pos + int(segOffset)
		avail := int64(s.limit - segStart)
		take := avail
		if remaining < take {
			take = remaining
		}
		out.Write(s.data[segStart : segStart+int(take)])
		remaining -= take
		segOffset = 0
		s = s.next
	}
	return nil
}

// WriteFrom moves byteCount bytes from src into b, splicing whole
// segments by reference where possible instead of copying (spec.md
// §4.3's segment-splice algorithm). src is left with its remaining
// bytes, if any.
func (b *Buffer) WriteFrom(src *Buffer, byteCount int64) error {
	if src == nil || src == b {
		return ErrIllegalArgument
	}
	if byteCount < 0 || byteCount > src.size {
		return ErrIllegalArgument
	}
	for byteCount > 0 {
		head := src.head
		headLen := int64(head.Len())

		if byteCount < headLen {
			if tail := b.tailSegment(); tail != nil && tail.owner {
				capacity := SegmentSize - tail.limit
				if !tail.shared {
					capacity += tail.pos
				}
				if byteCount <= int64(capacity) {
					head.writeTo(tail, int(byteCount))
					src.size -= byteCount
					b.size += byteCount
					return nil
				}
			}
			prefix := head.split(int(byteCount))
			src.head = prefix
			head = prefix
			headLen = byteCount
		}

		moved := head
		if moved.next == moved {
			src.head = nil
		} else {
			src.head = moved.next
			moved.prev.next = moved.next
			moved.next.prev = moved.prev
		}
		moved.next, moved.prev = nil, nil

		src.size -= headLen
		b.appendSegment(moved)
		b.size += headLen
		if moved.prev != moved {
			moved.compact()
		}

		byteCount -= headLen
	}
	return nil
}

// ReadAtMostTo implements RawSource: it moves up to byteCount bytes
// from b into sink, returning -1 when b is empty.
func (b *Buffer) ReadAtMostTo(sink *Buffer, byteCount int64) (int64, error) {
	if byteCount < 0 {
		return 0, ErrIllegalArgument
	}
	if b.size == 0 {
		return -1, nil
	}
	n := byteCount
	if n > b.size {
		n = b.size
	}
	if err := sink.WriteFrom(b, n); err != nil {
		return 0, err
	}
	return n, nil
}

// Close is a no-op: Buffer holds no external resource.
func (b *Buffer) Close() error { return nil }

// Flush is a no-op: Buffer has no downstream to push bytes to.
func (b *Buffer) Flush() error { return nil }

// Peek returns a RawSource that reads a snapshot of b's current
// unread bytes without consuming them from b. Segments are shared
// (copy-on-write), not copied, so peeking a large Buffer is cheap;
// bytes written to b after Peek is called are not visible through the
// returned source.
func (b *Buffer) Peek() RawSource {
	clone := &Buffer{}
	s := b.head
	for s != nil {
		cp := s.sharedCopy()
		clone.appendSegment(cp)
		clone.size += int64(cp.Len())
		s = s.next
		if s == b.head {
			break
		}
	}
	return clone
}

// Snapshot returns an immutable copy of b's unread bytes. Unlike
// Peek, Snapshot copies rather than shares, so it has no lifetime
// entanglement with b.
func (b *Buffer) Snapshot() ByteString {
	out := make([]byte, b.size)
	s := b.head
	pos := 0
	for s != nil {
		n := s.Len()
		copy(out[pos:pos+n], s.data[s.pos:s.limit])
		pos += n
		s = s.next
		if s == b.head {
			break
		}
	}
	return ByteString{b: out}
}

var (
	_ RawSource = (*Buffer)(nil)
	_ RawSink   = (*Buffer)(nil)
)
