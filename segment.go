// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segbuf

import "encoding/binary"

// SegmentSize is the fixed capacity, in bytes, of every Segment's backing
// array. It is exactly BufferSizeMedium, so a Segment's backing array is
// a MediumBuffer drawn from the segment pool.
const SegmentSize = BufferSizeMedium

// ShareMinimum is the smallest payload size, in bytes, for which split
// shares a Segment's backing array instead of copying it. Below this
// threshold a copy amortizes better than the bookkeeping a shared
// reference costs.
const ShareMinimum = 1024

// Segment is a node of a doubly-linked ring, holding a readable region
// [pos, limit) of a fixed SegmentSize backing array. Segments are never
// constructed directly by callers; they are obtained from the segment
// pool (see segment_pool.go) and linked into a Buffer's ring.
type Segment struct {
	data *MediumBuffer

	// pos is the next readable index (inclusive); limit is one past the
	// last readable / next writable index. 0 <= pos <= limit <= SegmentSize.
	pos, limit int

	// shared is true if another Segment also references data; such a
	// Segment may not extend writes into data (shared implies !owner).
	shared bool

	// owner is true if this Segment may extend writes into data by
	// advancing limit.
	owner bool

	// next and prev close the ring when a Segment is held by a Buffer.
	next, prev *Segment

	// poolSlot identifies the BoundedPool index this Segment's backing
	// array was drawn from, or -1 if it was allocated outside the pool
	// (an overflow allocation, or a shared copy that owns no slot).
	poolSlot int
}

// Len returns the number of readable bytes currently held by the segment.
func (s *Segment) Len() int { return s.limit - s.pos }

// RemainingCapacity returns the number of bytes that may still be
// written into the segment by advancing limit. Only meaningful when
// owner is true.
func (s *Segment) RemainingCapacity() int { return SegmentSize - s.limit }

// sharedCopy returns a new Segment referencing the same backing array,
// with identical pos/limit, shared = true, owner = false. The source
// segment is also marked shared (and no longer an owner), since its
// backing array is now referenced by more than one Segment.
func (s *Segment) sharedCopy() *Segment {
	s.shared = true
	s.owner = false
	return &Segment{
		data:     s.data,
		pos:      s.pos,
		limit:    s.limit,
		shared:   true,
		owner:    false,
		poolSlot: -1,
	}
}

// split splits the head region [pos, pos+byteCount) into a new
// predecessor Segment, advancing this Segment's pos by byteCount. The
// new predecessor is inserted before this Segment in the ring and
// returned; it is the caller's responsibility to update the Buffer's
// head pointer if this Segment was previously the head.
//
// If byteCount >= ShareMinimum the prefix is a zero-copy sharedCopy;
// otherwise it is a fresh pool-allocated Segment with the bytes copied.
func (s *Segment) split(byteCount int) *Segment {
	if byteCount <= 0 || byteCount > s.Len() {
		panic("segbuf: split byteCount out of range")
	}

	var prefix *Segment
	if byteCount >= ShareMinimum {
		prefix = s.sharedCopy()
		prefix.limit = prefix.pos + byteCount
	} else {
		prefix = segmentPoolTake()
		copy(prefix.data[:byteCount], s.data[s.pos:s.pos+byteCount])
		prefix.limit = byteCount
	}

	s.pos += byteCount

	prefix.prev = s.prev
	prefix.next = s
	s.prev.next = prefix
	s.prev = prefix
	return prefix
}

// writeTo moves n bytes from this segment into sink, advancing this
// segment's pos and sink's limit. sink must be owner; if the bytes do
// not fit ahead of sink.limit, sink's readable region is first shifted
// to position 0. Panics if sink is shared or the move cannot be made
// to fit.
func (s *Segment) writeTo(sink *Segment, n int) {
	if !sink.owner {
		panic("segbuf: writeTo requires an owner sink")
	}
	if sink.limit+n > SegmentSize {
		if sink.shared {
			panic("segbuf: cannot shift a shared segment")
		}
		if sink.limit+n-sink.pos > SegmentSize {
			panic("segbuf: n too large to fit even after compaction")
		}
		copy(sink.data[:sink.limit-sink.pos], sink.data[sink.pos:sink.limit])
		sink.limit -= sink.pos
		sink.pos = 0
	}

	copy(sink.data[sink.limit:sink.limit+n], s.data[s.pos:s.pos+n])
	sink.limit += n
	s.pos += n
}

// compact moves this segment's bytes backward into its predecessor and
// recycles this segment, provided the predecessor is owner, unshared,
// and has room (counting its own reclaimable prefix when unshared). It
// is a no-op when compaction is not possible.
func (s *Segment) compact() {
	if s.prev == s {
		panic("segbuf: cannot compact the only segment in a ring")
	}
	if !s.prev.owner {
		return
	}
	byteCount := s.Len()
	available := SegmentSize - s.prev.limit
	if !s.prev.shared {
		available += s.prev.pos
	}
	if byteCount > available {
		return
	}
	s.writeTo(s.prev, byteCount)
	prev, next := s.prev, s.next
	prev.next = next
	next.prev = prev
	s.prev, s.next = nil, nil
	segmentPoolRecycle(s)
}

// getChecked reads the byte at pos+i without advancing pos, bounds
// checking i against the readable region.
func (s *Segment) getChecked(i int) byte {
	if i < 0 || i >= s.Len() {
		panic("segbuf: segment index out of range")
	}
	return s.data[s.pos+i]
}

// getUnchecked reads the byte at pos+i without advancing pos or
// checking bounds; the caller must have already validated i.
func (s *Segment) getUnchecked(i int) byte {
	return s.data[s.pos+i]
}

// readByte consumes and returns the next byte.
func (s *Segment) readByte() byte {
	b := s.data[s.pos]
	s.pos++
	return b
}

// readShort consumes and returns the next 2 bytes as a big-endian int16.
func (s *Segment) readShort() int16 {
	v := int16(binary.BigEndian.Uint16(s.data[s.pos : s.pos+2]))
	s.pos += 2
	return v
}

// readInt consumes and returns the next 4 bytes as a big-endian int32.
func (s *Segment) readInt() int32 {
	v := int32(binary.BigEndian.Uint32(s.data[s.pos : s.pos+4]))
	s.pos += 4
	return v
}

// readLong consumes and returns the next 8 bytes as a big-endian int64.
func (s *Segment) readLong() int64 {
	v := int64(binary.BigEndian.Uint64(s.data[s.pos : s.pos+8]))
	s.pos += 8
	return v
}

// writeByte appends a byte, advancing limit. s must be owner.
func (s *Segment) writeByte(v byte) {
	s.data[s.limit] = v
	s.limit++
}

// writeShort appends v as 2 big-endian bytes, advancing limit.
func (s *Segment) writeShort(v int16) {
	binary.BigEndian.PutUint16(s.data[s.limit:s.limit+2], uint16(v))
	s.limit += 2
}

// writeInt appends v as 4 big-endian bytes, advancing limit.
func (s *Segment) writeInt(v int32) {
	binary.BigEndian.PutUint32(s.data[s.limit:s.limit+4], uint32(v))
	s.limit += 4
}

// writeLong appends v as 8 big-endian bytes, advancing limit.
func (s *Segment) writeLong(v int64) {
	binary.BigEndian.PutUint64(s.data[s.limit:s.limit+8], uint64(v))
	s.limit += 8
}
