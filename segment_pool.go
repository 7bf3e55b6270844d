// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segbuf

// segmentPoolCapacity bounds the number of MediumBuffer backing arrays
// the segment pool keeps ready for reuse. 512 * SegmentSize is a 4 MiB
// soft cap on pooled memory, matching the "multi-MiB ceiling" spec.md
// §4.2 calls for.
const segmentPoolCapacity = 512

// globalSegmentFreeList is the process-wide free list Segments draw
// their backing arrays from. Go has no portable goroutine-local
// storage, so per spec.md §4.2's own documented fallback, segbuf
// collapses straight to this single process-wide pool rather than
// simulating per-thread shards.
//
// It is a BoundedPool[*MediumBuffer]: each slot holds a pointer to an
// already-allocated MediumBuffer, so Get/Put only ever move an index
// and a pointer, never the 8 KiB array itself.
var globalSegmentFreeList = newSegmentFreeList()

func newSegmentFreeList() *BoundedPool[*MediumBuffer] {
	p := NewBoundedPool[*MediumBuffer](segmentPoolCapacity)
	p.SetNonblock(true)
	p.Fill(func() *MediumBuffer { return new(MediumBuffer) })
	return p
}

// segmentPoolTake returns a Segment ready for writing: pos = 0,
// limit = 0, shared = false, owner = true, next = prev = nil. It never
// fails: when the free list is exhausted it allocates a fresh backing
// array directly instead of blocking or erroring.
func segmentPoolTake() *Segment {
	seg := &Segment{owner: true, poolSlot: -1}
	if idx, err := globalSegmentFreeList.Get(); err == nil {
		seg.data = globalSegmentFreeList.Value(idx)
		seg.poolSlot = idx
	} else {
		seg.data = new(MediumBuffer)
	}
	return seg
}

// segmentPoolRecycle accepts a Segment with no neighbors. If shared,
// the Segment struct is discarded (the backing array may still be
// referenced by other Segments and is reclaimed by the garbage
// collector once all references drop). Otherwise the backing array is
// returned to the free list, provided it came from there and capacity
// is not exceeded; over-capacity or non-pool-sourced recycles are
// silently dropped, per spec.md's pool failure semantics.
func segmentPoolRecycle(s *Segment) {
	s.next, s.prev = nil, nil
	if s.shared {
		return
	}
	s.pos, s.limit = 0, 0
	if s.poolSlot >= 0 {
		_ = globalSegmentFreeList.Put(s.poolSlot)
	}
}
