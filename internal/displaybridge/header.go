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

package displaybridge

import (
	"sync/atomic"
	"unsafe"
)

// Wire-layout constants. Field order and widths are part of the ABI shared
// with the renderer and must never change without a protocol version bump.
const (
	Magic   uint32 = 0x454B554A // "JUKE" little-endian
	Version uint32 = 3          // adds cursor + input ring over v1

	cursorDim        = 64
	cursorBytesPerPx = 4
	CursorPixelsSize = cursorDim * cursorDim * cursorBytesPerPx // 16384

	inputRingCapacity = 256
	inputEventSize    = 12
	inputRingPadding  = 8
	InputRingSize     = 4 /*write_idx*/ + 4 /*read_idx*/ + inputRingPadding + inputRingCapacity*inputEventSize

	// HeaderSize is sizeof(DisplayHeader) on the wire: six leading u32
	// fields, one u64, then twelve trailing u32/i32 fields. Go's struct
	// layout already matches this byte-for-byte because frame_counter
	// (the only 8-byte field) starts at offset 24, which is 8-aligned, so
	// no implicit padding is introduced anywhere in the struct.
	HeaderSize = 80

	CursorPixelsOffset = HeaderSize
	InputRingOffset    = CursorPixelsOffset + CursorPixelsSize
	PixelsOffset       = InputRingOffset + InputRingSize
)

// Header is the DisplayHeader laid out exactly per spec §3.1, field order
// and widths fixed. It is always the first HeaderSize bytes of the region.
type Header struct {
	magic   uint32
	version uint32
	width   uint32
	height  uint32
	stride  uint32
	format  uint32

	frameCounter uint64

	dirtyX, dirtyY, dirtyW, dirtyH uint32

	cursorVersion              uint32
	cursorX, cursorY           int32
	cursorVisible              uint32
	cursorWidth, cursorHeight  uint32
	cursorHotX, cursorHotY     int32
}

// headerAt views the first HeaderSize bytes of mem as a *Header.
func headerAt(mem []byte) *Header {
	return (*Header)(unsafe.Pointer(&mem[0]))
}

func (h *Header) Magic() uint32    { return atomic.LoadUint32(&h.magic) }
func (h *Header) Version() uint32  { return atomic.LoadUint32(&h.version) }
func (h *Header) setMagicVersion() {
	atomic.StoreUint32(&h.magic, Magic)
	atomic.StoreUint32(&h.version, Version)
}

func (h *Header) Width() uint32         { return atomic.LoadUint32(&h.width) }
func (h *Header) Height() uint32        { return atomic.LoadUint32(&h.height) }
func (h *Header) Stride() uint32        { return atomic.LoadUint32(&h.stride) }
func (h *Header) Format() uint32        { return atomic.LoadUint32(&h.format) }
func (h *Header) setSurface(width, height, stride, format uint32) {
	atomic.StoreUint32(&h.width, width)
	atomic.StoreUint32(&h.height, height)
	atomic.StoreUint32(&h.stride, stride)
	atomic.StoreUint32(&h.format, format)
}

// FrameCounter loads the commit anchor with acquire ordering; callers
// should read it before trusting any of dirtyX/dirtyY/dirtyW/dirtyH.
func (h *Header) FrameCounter() uint64 { return atomic.LoadUint64(&h.frameCounter) }

// publishFrame writes the dirty rectangle then bumps frameCounter with
// release ordering, making it the single commit point per spec §4.2/§5.
func (h *Header) publishFrame(dirtyX, dirtyY, dirtyW, dirtyH uint32) {
	atomic.StoreUint32(&h.dirtyX, dirtyX)
	atomic.StoreUint32(&h.dirtyY, dirtyY)
	atomic.StoreUint32(&h.dirtyW, dirtyW)
	atomic.StoreUint32(&h.dirtyH, dirtyH)
	atomic.AddUint64(&h.frameCounter, 1)
}

func (h *Header) DirtyRect() (x, y, w, height uint32) {
	return atomic.LoadUint32(&h.dirtyX), atomic.LoadUint32(&h.dirtyY),
		atomic.LoadUint32(&h.dirtyW), atomic.LoadUint32(&h.dirtyH)
}

// CursorVersion loads the cursor-shape commit anchor with acquire ordering.
func (h *Header) CursorVersion() uint32 { return atomic.LoadUint32(&h.cursorVersion) }

func (h *Header) bumpCursorVersion() { atomic.AddUint32(&h.cursorVersion, 1) }

func (h *Header) setCursorShape(width, height uint32, hotX, hotY int32) {
	atomic.StoreUint32(&h.cursorWidth, width)
	atomic.StoreUint32(&h.cursorHeight, height)
	atomic.StoreInt32(&h.cursorHotX, hotX)
	atomic.StoreInt32(&h.cursorHotY, hotY)
}

func (h *Header) CursorShape() (width, height uint32, hotX, hotY int32) {
	return atomic.LoadUint32(&h.cursorWidth), atomic.LoadUint32(&h.cursorHeight),
		atomic.LoadInt32(&h.cursorHotX), atomic.LoadInt32(&h.cursorHotY)
}

func (h *Header) setCursorPosition(x, y int32, visible bool) {
	atomic.StoreInt32(&h.cursorX, x)
	atomic.StoreInt32(&h.cursorY, y)
	v := uint32(0)
	if visible {
		v = 1
	}
	atomic.StoreUint32(&h.cursorVisible, v)
}

func (h *Header) CursorPosition() (x, y int32, visible bool) {
	return atomic.LoadInt32(&h.cursorX), atomic.LoadInt32(&h.cursorY), atomic.LoadUint32(&h.cursorVisible) != 0
}
