/*
 * Copyright 2024 Anderstorpsfestivalen contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package audiobridge

import "testing"

func TestBytesPerFrame(t *testing.T) {
	cases := []struct {
		channels, format uint32
		want              int
	}{
		{1, FormatS16LE, 2},
		{2, FormatS16LE, 4},
		{1, FormatF32LE, 4},
		{2, FormatF32LE, 8},
	}
	for _, c := range cases {
		if got := bytesPerFrame(c.channels, c.format); got != c.want {
			t.Errorf("bytesPerFrame(%d, %d) = %d, want %d", c.channels, c.format, got, c.want)
		}
	}
}

func TestFreeFramesLeavesOneSlotUnused(t *testing.T) {
	const ring = 8192
	if got := freeFrames(0, 0, ring); got != ring-1 {
		t.Fatalf("freeFrames(empty) = %d, want %d", got, ring-1)
	}
	// writeIdx - readIdx == ring-1 ("full minus one slot"): no room left.
	if got := freeFrames(ring-1, 0, ring); got != 0 {
		t.Fatalf("freeFrames(full-minus-one) = %d, want 0", got)
	}
}

func TestFreeFramesWrapsWithUnsignedSubtraction(t *testing.T) {
	const ring = 8192
	// writeIdx has wrapped past 2^32 relative to readIdx; unsigned
	// subtraction inside freeFrames must still yield the correct used count.
	var writeIdx uint32 = 10
	var readIdx uint32 = 0xFFFFFFF8 // -8
	used := ring - 1 - freeFrames(writeIdx, readIdx, ring)
	if used != 18 {
		t.Fatalf("used = %d, want 18", used)
	}
}

func TestWriteFramesSplitsAcrossWrapBoundary(t *testing.T) {
	const ring = 8
	const bpf = 2
	samples := make([]byte, ring*bpf)

	src := []byte{1, 1, 2, 2, 3, 3, 4, 4}
	// writeIdx=6 means the first two frames (bytes 0:4 of src) land at
	// slots 6,7 and the rest (bytes 4:8 of src) wrap to slot 0.
	writeFrames(samples, 6, ring, bpf, src, 4)

	want := []byte{3, 3, 4, 4, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 2, 2}
	for i := range want {
		if samples[i] != want[i] {
			t.Fatalf("samples = %v, want %v", samples, want)
		}
	}
}

func TestWriteFramesNoWrap(t *testing.T) {
	const ring = 8
	const bpf = 2
	samples := make([]byte, ring*bpf)
	src := []byte{9, 9, 8, 8}
	writeFrames(samples, 1, ring, bpf, src, 2)

	if samples[2] != 9 || samples[3] != 9 || samples[4] != 8 || samples[5] != 8 {
		t.Fatalf("samples = %v", samples)
	}
}
