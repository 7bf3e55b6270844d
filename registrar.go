// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segbuf

import (
	"unsafe"

	"github.com/pkg/errors"
)

// BufferRegistrar hands out RegisterBuffers for callers that want to
// register fixed memory with a vectored-I/O backend (readv/writev, or
// an io_uring-style ring that keeps its own copy of the buffer table)
// ahead of time. Acquire's returned pointer has a stable address for
// the life of the loan, so the same memory can be handed to the kernel
// on every call instead of a fresh slice each time; Release returns
// the slot to the underlying pool for reuse by the next Acquire.
type BufferRegistrar struct {
	pool   *RegisterBufferPool
	onLoan map[int]*RegisterBuffer
}

// NewBufferRegistrar creates a registrar backed by capacity RegisterBuffers
// (rounded up to the next power of two by the underlying pool), each
// BufferSizeLarge bytes.
func NewBufferRegistrar(capacity int) *BufferRegistrar {
	p := NewRegisterBufferPool(capacity)
	p.Fill(func() RegisterBuffer { return RegisterBuffer{} })
	return &BufferRegistrar{pool: p, onLoan: make(map[int]*RegisterBuffer)}
}

// Acquire takes a RegisterBuffer off the pool, returning its slot (to
// pass back to Release) and a pointer to the buffer itself. When every
// buffer is on loan, Acquire blocks until one is released; any error
// from the underlying pool is returned wrapped.
func (r *BufferRegistrar) Acquire() (slot int, buf *RegisterBuffer, err error) {
	idx, err := r.pool.Get()
	if err != nil {
		return 0, nil, errors.Wrap(err, "segbuf: acquire registered buffer")
	}
	ptr := r.pool.Pointer(idx)
	r.onLoan[idx] = ptr
	return idx, ptr, nil
}

// Release returns the buffer at slot to the pool. slot must have come
// from a prior Acquire call on this registrar; releasing a slot not
// currently on loan is a no-op.
func (r *BufferRegistrar) Release(slot int) error {
	if _, ok := r.onLoan[slot]; !ok {
		return nil
	}
	delete(r.onLoan, slot)
	return r.pool.Put(slot)
}

// Vectors builds an IoVec table over the buffers currently on loan, in
// unspecified order, pointing directly at each buffer's own memory
// (no copying), suitable for a single vectored read/write syscall
// against every registered buffer at once.
func (r *BufferRegistrar) Vectors() []IoVec {
	if len(r.onLoan) == 0 {
		return nil
	}
	vecs := make([]IoVec, 0, len(r.onLoan))
	for _, buf := range r.onLoan {
		vecs = append(vecs, IoVec{Base: (*byte)(unsafe.Pointer(&buf[0])), Len: uint64(len(buf))})
	}
	return vecs
}

// Cap reports the registrar's buffer capacity.
func (r *BufferRegistrar) Cap() int { return r.pool.Cap() }
