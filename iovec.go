// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segbuf

import (
	"unsafe"
)

// IoVec represents a scatter/gather I/O descriptor compatible with the
// standard Linux struct iovec. It is used to pass multiple non-contiguous
// user-space buffers to the kernel in a single vectored I/O system call
// (readv, writev, preadv, pwritev, io_uring operations).
//
// Memory layout matches the C struct iovec exactly:
//
//	struct iovec {
//	    void  *iov_base;  // Starting address
//	    size_t iov_len;   // Number of bytes
//	};
//
// The caller must ensure Base points to valid memory for the lifetime of
// any I/O operation using this IoVec. UnsafeReadBulk builds IoVec values
// directly over Segment backing arrays; IoVecFromRegisteredBuffers builds
// them over a caller-supplied slice of RegisterBuffers, and
// BufferRegistrar.Vectors over the buffers a registrar has on loan.
type IoVec struct {
	Base *byte  // Starting address of the memory block
	Len  uint64 // Number of bytes to transfer
}

// IoVecFromRegisteredBuffers converts a slice of RegisterBuffer to an IoVec slice.
// The returned IoVec elements point directly to the buffer memory without copying.
func IoVecFromRegisteredBuffers(buffers []RegisterBuffer) []IoVec {
	if len(buffers) == 0 {
		return nil
	}
	vec := make([]IoVec, len(buffers))
	for i := range len(buffers) {
		vec[i] = IoVec{Base: (*byte)(unsafe.Pointer(&buffers[i])), Len: registerBufferSize}
	}
	return vec
}
