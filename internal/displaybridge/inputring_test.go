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
	"testing"
	"unsafe"
)

func TestInputEventSizeMatchesWireConstant(t *testing.T) {
	var ev InputEvent
	if got := unsafe.Sizeof(ev); got != uintptr(inputEventSize) {
		t.Fatalf("sizeof(InputEvent) = %d, want %d", got, inputEventSize)
	}
}

func TestRingHeaderSizeMatchesInputRingSize(t *testing.T) {
	var r ringHeader
	if got := unsafe.Sizeof(r); got != uintptr(InputRingSize) {
		t.Fatalf("sizeof(ringHeader) = %d, want %d", got, InputRingSize)
	}
}

type recordingSink struct {
	relative []InputEvent
	absolute []InputEvent
	buttons  []InputEvent
	keys     []InputEvent
	syncs    int
}

func (s *recordingSink) MouseRelative(dx, dy int32) {
	s.relative = append(s.relative, InputEvent{X: dx, Y: dy})
}
func (s *recordingSink) MouseAbsolute(x, y int32) {
	s.absolute = append(s.absolute, InputEvent{X: x, Y: y})
}
func (s *recordingSink) MouseButton(button uint8, pressed bool) {
	p := uint8(0)
	if pressed {
		p = 1
	}
	s.buttons = append(s.buttons, InputEvent{Button: button, Pressed: p})
}
func (s *recordingSink) Key(scancode int32, pressed bool) {
	p := uint8(0)
	if pressed {
		p = 1
	}
	s.keys = append(s.keys, InputEvent{X: scancode, Pressed: p})
}
func (s *recordingSink) Sync() { s.syncs++ }

func newTestRegion() []byte {
	return make([]byte, HeaderSize+CursorPixelsSize+InputRingSize)
}

func TestDrainInputEmptyRingIsSilentNoop(t *testing.T) {
	mem := newTestRegion()
	sink := &recordingSink{}
	DrainInput(mem, sink)
	if sink.syncs != 0 {
		t.Fatalf("Sync called %d times on empty ring, want 0", sink.syncs)
	}
}

func TestDrainInputDispatchesInOrderAndSyncsOnce(t *testing.T) {
	mem := newTestRegion()

	PushInputEvent(mem, InputEvent{Type: EventMouseRelative, X: 1, Y: 2})
	PushInputEvent(mem, InputEvent{Type: EventMouseAbsolute, X: 10, Y: 20})
	PushInputEvent(mem, InputEvent{Type: EventMouseButton, Button: 3, Pressed: 1})
	PushInputEvent(mem, InputEvent{Type: EventKey, X: 65, Pressed: 1})

	sink := &recordingSink{}
	DrainInput(mem, sink)

	if sink.syncs != 1 {
		t.Fatalf("Sync called %d times, want 1", sink.syncs)
	}
	if len(sink.relative) != 1 || sink.relative[0].X != 1 || sink.relative[0].Y != 2 {
		t.Fatalf("relative events = %+v", sink.relative)
	}
	if len(sink.absolute) != 1 || sink.absolute[0].X != 10 || sink.absolute[0].Y != 20 {
		t.Fatalf("absolute events = %+v", sink.absolute)
	}
	if len(sink.buttons) != 1 || sink.buttons[0].Button != 3 || sink.buttons[0].Pressed != 1 {
		t.Fatalf("button events = %+v", sink.buttons)
	}
	if len(sink.keys) != 1 || sink.keys[0].X != 65 {
		t.Fatalf("key events = %+v", sink.keys)
	}

	r := ringHeaderAt(mem)
	if r.ReadIndex() != r.WriteIndex() {
		t.Fatalf("read_idx %d != write_idx %d after full drain", r.ReadIndex(), r.WriteIndex())
	}

	sink2 := &recordingSink{}
	DrainInput(mem, sink2)
	if sink2.syncs != 0 {
		t.Fatalf("second drain with nothing new called Sync %d times, want 0", sink2.syncs)
	}
}

func TestDrainInputWrapsAtRingCapacity(t *testing.T) {
	mem := newTestRegion()
	r := ringHeaderAt(mem)

	// Push inputRingCapacity+5 events one at a time, draining after every
	// push, so write_idx/read_idx both cross the 256-event wraparound
	// boundary while the events array index wraps via modulo.
	total := inputRingCapacity + 5
	sink := &recordingSink{}
	for i := 0; i < total; i++ {
		PushInputEvent(mem, InputEvent{Type: EventKey, X: int32(i), Pressed: 1})
		DrainInput(mem, sink)
	}

	if len(sink.keys) != total {
		t.Fatalf("drained %d key events, want %d", len(sink.keys), total)
	}
	for i, ev := range sink.keys {
		if ev.X != int32(i) {
			t.Fatalf("event %d has X=%d, want %d (order not preserved across wrap)", i, ev.X, i)
		}
	}
	if r.WriteIndex() != uint32(total) {
		t.Fatalf("write_idx = %d, want %d", r.WriteIndex(), total)
	}
}

func TestEventAtWrapsModuloCapacityNotCounterValue(t *testing.T) {
	mem := newTestRegion()
	r := ringHeaderAt(mem)

	// Simulate a producer whose counters have already run past
	// inputRingCapacity three times, to ensure eventAt indexes by idx%capacity
	// and not by the raw (unbounded) counter value.
	const base = inputRingCapacity * 3
	r.events[base%inputRingCapacity] = InputEvent{Type: EventKey, X: 42, Pressed: 1}

	got := r.eventAt(uint32(base))
	if got.X != 42 {
		t.Fatalf("eventAt(%d) = %+v, want X=42", base, got)
	}
}
