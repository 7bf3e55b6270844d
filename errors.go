// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segbuf

import "errors"

// Sentinel errors for the core's error taxonomy. Callers should compare
// against these with errors.Is rather than matching error strings.
var (
	// ErrEndOfInput is returned when a typed or bulk read demands more
	// bytes than remain, including after a refill attempt by a
	// BufferedSource.
	ErrEndOfInput = errors.New("segbuf: end of input")

	// ErrIllegalArgument is returned for negative counts, out-of-range
	// indices, or other caller-supplied values that violate a method's
	// precondition.
	ErrIllegalArgument = errors.New("segbuf: illegal argument")

	// ErrIllegalState is returned for operations attempted on a closed
	// BufferedSink, or other calls that indicate a programming error
	// rather than a runtime condition a caller should expect to hit.
	ErrIllegalState = errors.New("segbuf: illegal state")

	// ErrNumberFormat is returned by readDecimalLong and
	// readHexadecimalUnsignedLong when no digits are present or the
	// parsed value overflows a signed/unsigned 64-bit integer.
	ErrNumberFormat = errors.New("segbuf: number format")
)
