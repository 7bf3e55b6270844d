// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segbuf

// ByteString is an immutable byte sequence used as a search pattern for
// Buffer.IndexOfByteString and Buffer.StartsWith. spec.md §1 assumes a
// byte-string type is available externally without specifying its
// implementation; this is the minimal shape the core needs.
//
// A ByteString never aliases caller-owned memory it did not copy: both
// constructors below copy their input.
type ByteString struct {
	b []byte
}

// NewByteString copies b into a new, independent ByteString.
func NewByteString(b []byte) ByteString {
	cp := make([]byte, len(b))
	copy(cp, b)
	return ByteString{b: cp}
}

// ByteStringFromString copies s's bytes into a new ByteString.
func ByteStringFromString(s string) ByteString {
	return ByteString{b: []byte(s)}
}

// Len returns the number of bytes in the ByteString.
func (bs ByteString) Len() int { return len(bs.b) }

// At returns the byte at index i.
func (bs ByteString) At(i int) byte { return bs.b[i] }

// Bytes returns a copy of the ByteString's bytes.
func (bs ByteString) Bytes() []byte {
	cp := make([]byte, len(bs.b))
	copy(cp, bs.b)
	return cp
}

// String returns the ByteString's bytes as a string.
func (bs ByteString) String() string { return string(bs.b) }

// IndexOf returns the first index in s, starting at fromIndex, at
// which bs begins, or -1 if bs does not occur in s.
func (bs ByteString) IndexOf(s []byte, fromIndex int) int {
	if fromIndex < 0 {
		fromIndex = 0
	}
	n, m := len(s), len(bs.b)
	if m == 0 {
		if fromIndex > n {
			return -1
		}
		return fromIndex
	}
	for i := fromIndex; i+m <= n; i++ {
		if bytesEqual(s[i:i+m], bs.b) {
			return i
		}
	}
	return -1
}

// StartsWith reports whether s begins with bs's bytes.
func (bs ByteString) StartsWith(s []byte) bool {
	if len(s) < len(bs.b) {
		return false
	}
	return bytesEqual(s[:len(bs.b)], bs.b)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
