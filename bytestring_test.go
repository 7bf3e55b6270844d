// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segbuf_test

import (
	"testing"

	"code.hybscloud.com/segbuf"
)

func TestByteString_IndexOf(t *testing.T) {
	bs := segbuf.ByteStringFromString("needle")
	cases := []struct {
		haystack string
		from     int
		want     int
	}{
		{"a needle in a haystack", 0, 2},
		{"a needle in a haystack", 3, -1},
		{"no match here", 0, -1},
		{"needle at the start", 0, 0},
	}
	for _, c := range cases {
		got := bs.IndexOf([]byte(c.haystack), c.from)
		if got != c.want {
			t.Errorf("IndexOf(%q, %d) = %d, want %d", c.haystack, c.from, got, c.want)
		}
	}
}

func TestByteString_EmptyIndexOf(t *testing.T) {
	bs := segbuf.ByteStringFromString("")
	if got := bs.IndexOf([]byte("abc"), 0); got != 0 {
		t.Errorf("IndexOf with empty pattern = %d, want 0", got)
	}
}

func TestByteString_StartsWith(t *testing.T) {
	bs := segbuf.ByteStringFromString("pre")
	if !bs.StartsWith([]byte("prefix")) {
		t.Error("StartsWith(\"prefix\") = false, want true")
	}
	if bs.StartsWith([]byte("pr")) {
		t.Error("StartsWith(shorter string) = true, want false")
	}
}

func TestByteString_BytesIsACopy(t *testing.T) {
	original := []byte("mutate me")
	bs := segbuf.NewByteString(original)
	cp := bs.Bytes()
	cp[0] = 'X'
	if bs.At(0) != 'm' {
		t.Error("mutating Bytes() result affected the ByteString")
	}
	original[0] = 'Y'
	if bs.At(0) != 'm' {
		t.Error("mutating the source slice affected the ByteString")
	}
}

func TestByteString_LenAndString(t *testing.T) {
	bs := segbuf.ByteStringFromString("hello")
	if bs.Len() != 5 {
		t.Errorf("Len() = %d, want 5", bs.Len())
	}
	if bs.String() != "hello" {
		t.Errorf("String() = %q, want %q", bs.String(), "hello")
	}
}
