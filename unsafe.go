// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segbuf

import "unsafe"

// This file collects the escape hatches spec.md §4.5 calls for: direct,
// unchecked access to a Segment's backing array so a caller can hand
// its memory straight to a syscall (readv/writev, io_uring) instead of
// going through the typed Buffer API. Every function here trades a
// safety check for zero-copy access; misuse (writing past the
// reported capacity, holding the slice across a mutating Buffer call)
// corrupts the Buffer. Prefer the typed API unless profiling shows
// the copy matters.

// UnsafeReadFromHead exposes the head segment's unread bytes directly,
// without copying. The returned release func must be called exactly
// once, with the number of bytes the caller actually consumed from
// the front of data (0 <= n <= len(data)); it advances the Buffer's
// read position and recycles the segment if it becomes empty. Calling
// release more than once, or mutating b between the call and release,
// is undefined.
//
// Returns a nil slice and a no-op release if b is empty.
func UnsafeReadFromHead(b *Buffer) (data []byte, release func(n int)) {
	if b.head == nil {
		return nil, func(int) {}
	}
	s := b.head
	window := s.data[s.pos:s.limit]
	return window, func(n int) {
		if n < 0 || n > len(window) {
			panic("segbuf: release count out of range")
		}
		s.pos += n
		b.size -= int64(n)
		b.popHeadIfEmpty()
	}
}

// UnsafeWriteToTail exposes at least minCapacity bytes of writable
// space at the tail of b, appending a fresh segment if necessary,
// without zeroing or copying. The returned commit func must be called
// exactly once, with the number of bytes the caller actually wrote
// into the front of data (0 <= n <= len(data)); it advances the
// Buffer's size. Calling commit more than once, or mutating b between
// the call and commit, is undefined.
func UnsafeWriteToTail(b *Buffer, minCapacity int) (data []byte, commit func(n int)) {
	s := b.writableTail(minCapacity)
	window := s.data[s.limit:SegmentSize]
	return window, func(n int) {
		if n < 0 || n > len(window) {
			panic("segbuf: commit count out of range")
		}
		s.limit += n
		b.size += int64(n)
	}
}

// UnsafeReadBulk builds an IoVec slice pointing directly at up to
// maxVecs of b's segments, in read order, for a single vectored read
// (readv/preadv) or write (writev/pwritev) syscall. It performs no
// copy: the IoVec entries alias the Buffer's own backing arrays.
//
// The caller is responsible for translating the syscall's return
// value back into per-segment consumed/written counts and releasing
// or committing accordingly (see UnsafeReadFromHead/UnsafeWriteToTail
// for the single-segment case); UnsafeReadBulk only builds the
// descriptor table.
func UnsafeReadBulk(b *Buffer, maxVecs int) []IoVec {
	if b.head == nil || maxVecs <= 0 {
		return nil
	}
	vecs := make([]IoVec, 0, maxVecs)
	s := b.head
	for len(vecs) < maxVecs {
		if n := s.Len(); n > 0 {
			vecs = append(vecs, IoVec{
				Base: (*byte)(unsafe.Pointer(&s.data[s.pos])),
				Len:  uint64(n),
			})
		}
		s = s.next
		if s == b.head {
			break
		}
	}
	return vecs
}
