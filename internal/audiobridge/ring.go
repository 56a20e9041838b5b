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

// bytesPerFrame returns channels * (4 if F32LE else 2), per spec §4.5.
func bytesPerFrame(channels, format uint32) int {
	sampleBytes := 2
	if format == FormatF32LE {
		sampleBytes = 4
	}
	return int(channels) * sampleBytes
}

// freeFrames computes the classic "leave one slot unused" capacity
// (spec §3.3, §4.5 step 4): used = (write-read) & (ringFrames-1);
// free = ringFrames - used - 1.
func freeFrames(writeIdx, readIdx, ringFrames uint32) uint32 {
	used := (writeIdx - readIdx) & (ringFrames - 1)
	return ringFrames - used - 1
}

// samplesRegion slices the ring's PCM byte area out of the mapped region.
func samplesRegion(mem []byte) []byte {
	return mem[SamplesOffset:]
}

// writeFrames copies frameCount frames (frameCount*bytesPerFrame bytes)
// from src into the ring starting at writeIdx, splitting the copy across
// the wrap boundary if the run crosses ringFrames (spec §4.5 step 6).
func writeFrames(samples []byte, writeIdx, ringFrames uint32, bytesPerFrame int, src []byte, frameCount int) {
	start := int(writeIdx%ringFrames) * bytesPerFrame
	ringBytes := int(ringFrames) * bytesPerFrame
	n := frameCount * bytesPerFrame

	firstRun := ringBytes - start
	if firstRun >= n {
		copy(samples[start:start+n], src[:n])
		return
	}
	copy(samples[start:ringBytes], src[:firstRun])
	copy(samples[0:n-firstRun], src[firstRun:n])
}
