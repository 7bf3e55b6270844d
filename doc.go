// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package segbuf provides a segmented byte buffer and the buffered
// source/sink facades built on top of it.
//
// # Segments and the ring
//
// A Buffer is a queue of bytes backed by a ring of fixed-size (8192
// byte) Segments. Segments are obtained from a process-wide pool
// backed by BoundedPool, a lock-free MPMC free list; a Segment's
// backing array is a MediumBuffer, which happens to be exactly
// SegmentSize bytes.
//
// Segments support copy-on-write sharing (sharedCopy), splitting
// (split), compaction after small reads (compact), and zero-copy
// splicing between two Buffers. None of this is visible through the
// Buffer API; it only affects allocation behavior.
//
// # Buffered source and sink
//
// BufferedSource wraps a RawSource with a read-ahead Buffer; BufferedSink
// wraps a RawSink with a write-behind Buffer. Both expose typed
// primitive reads/writes, UTF-8 strings, line reading, indexed search,
// and a non-consuming Peek. Buffer itself implements both RawSource and
// RawSink directly, so it can stand in for either without adapters.
//
// # Unsafe escape hatches
//
// UnsafeReadFromHead, UnsafeWriteToTail, and UnsafeReadBulk give
// callers direct access to a Segment's backing array for zero-copy
// integration with vectored I/O (see IoVec); they carry strong
// preconditions and are not part of the general read/write contract.
//
// # Buffer sizes
//
// Two fixed buffer sizes back the package's allocations. BufferSizeMedium
// (8 KiB) is SegmentSize and backs every Segment; BufferSizeLarge
// (128 KiB) backs every RegisterBuffer a BufferRegistrar hands out for
// pre-registering memory with a vectored-I/O backend.
//
// # Concurrency
//
// A Buffer, BufferedSource, or BufferedSink is single-owner: concurrent
// use of one instance from two goroutines is undefined. The segment
// pool itself is safe for concurrent use by many Buffers at once.
//
// # Errors
//
// Reads that run out of input, writes given out-of-range arguments,
// operations on a closed sink, and malformed decimal/hex parses each
// report through a small sentinel-error taxonomy (ErrEndOfInput,
// ErrIllegalArgument, ErrIllegalState, ErrNumberFormat); raw-endpoint
// I/O failures are wrapped with github.com/pkg/errors so the failing
// adapter and operation stay attached to the error chain.
package segbuf
