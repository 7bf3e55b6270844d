// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segbuf_test

import (
	"testing"
	"unsafe"

	"code.hybscloud.com/segbuf"
)

const registerBufferSize = segbuf.BufferSizeLarge

func TestIoVecFromRegisteredBuffers(t *testing.T) {
	t.Run("empty slice", func(t *testing.T) {
		vec := segbuf.IoVecFromRegisteredBuffers(nil)
		if vec != nil {
			t.Error("expected nil for empty input")
		}
	})

	t.Run("pointer and length correctness", func(t *testing.T) {
		buffers := make([]segbuf.RegisterBuffer, 2)
		vec := segbuf.IoVecFromRegisteredBuffers(buffers)
		if len(vec) != 2 {
			t.Errorf("expected len=2, got %d", len(vec))
		}
		for i, v := range vec {
			if v.Len != registerBufferSize {
				t.Errorf("vec[%d].Len = %d, expected %d", i, v.Len, registerBufferSize)
			}
			expectedBase := (*byte)(unsafe.Pointer(&buffers[i]))
			if v.Base != expectedBase {
				t.Errorf("vec[%d].Base mismatch", i)
			}
		}
	})
}

func TestIoVecPointerStability(t *testing.T) {
	buffers := make([]segbuf.RegisterBuffer, 4)
	buffers[0][0] = 0x11
	buffers[1][0] = 0x22
	buffers[2][0] = 0x33
	buffers[3][0] = 0x44

	vec := segbuf.IoVecFromRegisteredBuffers(buffers)

	for i := range vec {
		ptr := unsafe.Pointer(vec[i].Base)
		val := *(*byte)(ptr)
		expected := byte((i + 1) * 0x11)
		if val != expected {
			t.Errorf("vec[%d] points to value 0x%02X, expected 0x%02X", i, val, expected)
		}
	}
}
