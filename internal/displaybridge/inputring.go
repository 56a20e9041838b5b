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

// EventType enumerates the four input event kinds defined by spec §3.1.
type EventType uint8

const (
	EventMouseRelative EventType = 1
	EventMouseAbsolute EventType = 2
	EventMouseButton   EventType = 3
	EventKey           EventType = 4
)

// InputEvent is the renderer-produced wire event, 12 bytes, no padding:
// type/button/pressed/reserved (1 byte each) then x/y (int32 each).
type InputEvent struct {
	Type     EventType
	Button   uint8
	Pressed  uint8
	reserved uint8
	X        int32
	Y        int32
}

// ringHeader is the InputRing header viewed in place at InputRingOffset.
type ringHeader struct {
	writeIdx uint32
	readIdx  uint32
	_        [inputRingPadding]byte
	events   [inputRingCapacity]InputEvent
}

func ringHeaderAt(regionMem []byte) *ringHeader {
	return (*ringHeader)(unsafe.Pointer(&regionMem[InputRingOffset]))
}

func (r *ringHeader) reset() {
	atomic.StoreUint32(&r.writeIdx, 0)
	atomic.StoreUint32(&r.readIdx, 0)
}

// WriteIndex/ReadIndex are unbounded u32 counters (spec §3.3, §4.3): never
// wrapped to ring capacity themselves, only the *index into events* is
// wrapped via modular arithmetic at access time.
func (r *ringHeader) WriteIndex() uint32 { return atomic.LoadUint32(&r.writeIdx) }
func (r *ringHeader) ReadIndex() uint32  { return atomic.LoadUint32(&r.readIdx) }

func (r *ringHeader) setReadIndex(idx uint32) { atomic.StoreUint32(&r.readIdx, idx) }

func (r *ringHeader) eventAt(idx uint32) InputEvent {
	return r.events[idx%inputRingCapacity]
}

// InputSink receives decoded events dispatched from the input ring,
// mirroring the host-framework up-calls of spec §6:
// qemu_input_queue_{rel,abs,btn}, qemu_input_event_send_key_number, and a
// final qemu_input_event_sync once per drain batch.
type InputSink interface {
	MouseRelative(dx, dy int32)
	MouseAbsolute(x, y int32)
	MouseButton(button uint8, pressed bool)
	Key(scancode int32, pressed bool)
	Sync()
}

// DrainInput consumes every pending renderer-produced event (spec §4.3).
// It loads writeIdx once with acquire ordering, dispatches every event up
// to it in order, and — only if at least one event was drained — calls
// Sync once and stores readIdx with release ordering. An empty ring is a
// clean, silent no-op (spec §7 "Input underrun").
func DrainInput(regionMem []byte, sink InputSink) {
	r := ringHeaderAt(regionMem)

	w := r.WriteIndex()
	read := r.ReadIndex()
	if read == w {
		return
	}

	for read != w {
		ev := r.eventAt(read)
		dispatchEvent(ev, sink)
		read++ // unsigned wraparound at 2^32 is intentional; see spec §4.3.
	}

	sink.Sync()
	r.setReadIndex(read)
}

func dispatchEvent(ev InputEvent, sink InputSink) {
	switch ev.Type {
	case EventMouseRelative:
		sink.MouseRelative(ev.X, ev.Y)
	case EventMouseAbsolute:
		sink.MouseAbsolute(ev.X, ev.Y)
	case EventMouseButton:
		sink.MouseButton(ev.Button, ev.Pressed != 0)
	case EventKey:
		sink.Key(ev.X, ev.Pressed != 0)
	}
}

// PushInputEvent is the renderer-side counterpart used by the mock
// renderer (cmd/juke-mock-renderer) and by tests to enqueue an event and
// advance writeIdx with release ordering. The real renderer does the
// equivalent in its own language; this implementation exists on the Go
// side purely to exercise DrainInput without a second process.
func PushInputEvent(regionMem []byte, ev InputEvent) {
	r := ringHeaderAt(regionMem)
	w := r.WriteIndex()
	r.events[w%inputRingCapacity] = ev
	atomic.StoreUint32(&r.writeIdx, w+1)
}
