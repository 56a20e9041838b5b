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

import (
	"sync/atomic"
	"unsafe"
)

const (
	Magic   uint32 = 0x4455414A // "JAUD" little-endian
	Version uint32 = 2

	RingFrames = 8192 // fixed power of two, never grown

	FormatS16LE uint32 = 1
	FormatF32LE uint32 = 2

	// HeaderSize is sizeof(AudioHeader): twelve u32 fields plus a
	// four-u32 padding block to round out to 64 bytes.
	HeaderSize = 64

	SamplesOffset = HeaderSize
)

// Header is the AudioHeader laid out exactly per spec §3.2.
type Header struct {
	magic      uint32
	version    uint32
	sampleRate uint32
	channels   uint32
	format     uint32
	ringFrames uint32

	writeIdx uint32
	readIdx  uint32

	enabled uint32
	muted   uint32

	volumeLeft  uint32
	volumeRight uint32

	_ [4]uint32 // padding to 64 bytes
}

func headerAt(mem []byte) *Header {
	return (*Header)(unsafe.Pointer(&mem[0]))
}

func (h *Header) setConstants(sampleRate, channels, format uint32) {
	atomic.StoreUint32(&h.magic, Magic)
	atomic.StoreUint32(&h.version, Version)
	atomic.StoreUint32(&h.sampleRate, sampleRate)
	atomic.StoreUint32(&h.channels, channels)
	atomic.StoreUint32(&h.format, format)
	atomic.StoreUint32(&h.ringFrames, RingFrames)
}

func (h *Header) Magic() uint32      { return atomic.LoadUint32(&h.magic) }
func (h *Header) Version() uint32    { return atomic.LoadUint32(&h.version) }
func (h *Header) SampleRate() uint32 { return atomic.LoadUint32(&h.sampleRate) }
func (h *Header) Channels() uint32   { return atomic.LoadUint32(&h.channels) }
func (h *Header) Format() uint32     { return atomic.LoadUint32(&h.format) }
func (h *Header) RingFrames() uint32 { return atomic.LoadUint32(&h.ringFrames) }

func (h *Header) WriteIndex() uint32 { return atomic.LoadUint32(&h.writeIdx) }
func (h *Header) ReadIndex() uint32  { return atomic.LoadUint32(&h.readIdx) }

// storeWriteIndex publishes frames_written new samples with release
// ordering, per spec §4.5 step 7.
func (h *Header) storeWriteIndex(idx uint32) { atomic.StoreUint32(&h.writeIdx, idx) }

// Enabled is controlled by the renderer, never by the emulator (spec
// §4.5); the emulator side only reads it.
func (h *Header) Enabled() bool { return atomic.LoadUint32(&h.enabled) != 0 }

func (h *Header) setEnabled(on bool) {
	v := uint32(0)
	if on {
		v = 1
	}
	atomic.StoreUint32(&h.enabled, v)
}

func (h *Header) Muted() bool { return atomic.LoadUint32(&h.muted) != 0 }

func (h *Header) Volume() (left, right uint32) {
	return atomic.LoadUint32(&h.volumeLeft), atomic.LoadUint32(&h.volumeRight)
}

// setVolume stores mute/volume as independent single-word atomics (spec
// §4.5, §9: each field is its own atomic, no multi-word consistency).
func (h *Header) setVolume(mute bool, left, right uint32) {
	m := uint32(0)
	if mute {
		m = 1
	}
	atomic.StoreUint32(&h.muted, m)
	atomic.StoreUint32(&h.volumeLeft, left)
	atomic.StoreUint32(&h.volumeRight, right)
}
