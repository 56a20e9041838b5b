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
	"fmt"

	"github.com/anderstorpsfestivalen/qemu/internal/rendezvous"
	"github.com/anderstorpsfestivalen/qemu/internal/shmregion"
)

const minCursorDim = 0 // clamp floor; cursors can legally be 0x0 ("no cursor")

// Manager owns the display shared-memory region across its lifetime: it
// (re)allocates on guest surface switches, publishes dirty-rectangle
// updates, maintains the cursor slot, and drains the renderer's input
// ring on every refresh. A Manager is bound to a single guest display
// channel and, per spec §5, is only ever driven from one host-framework
// thread at a time.
type Manager struct {
	name      string
	transport *rendezvous.Transport
	log       rendezvous.Logger

	region *shmregion.Region
}

// New creates a Manager that will rendezvous at socketPath. The region
// itself is not allocated until the first OnGfxSwitch. One best-effort,
// failure-swallowed connect attempt is made immediately, in addition to
// the lazy per-refresh retry OnGfxSwitch/Refresh already perform.
func New(name, socketPath string, log rendezvous.Logger) *Manager {
	if log == nil {
		log = rendezvous.NopLogger()
	}
	m := &Manager{
		name:      name,
		transport: rendezvous.New(socketPath, log),
		log:       log,
	}
	m.transport.Connect()
	return m
}

func neededSize(stride, height int) int {
	return PixelsOffset + stride*height
}

// OnGfxSwitch implements the on_gfx_switch up-call (spec §4.2): resize the
// region if the new surface needs more bytes than the current capacity
// (grow-only), rewrite every header field, zero cursor/input-ring
// metadata, copy the initial surface bytes, and hand the (possibly new)
// fd to the renderer, first attempting a connect if no peer is connected.
func (m *Manager) OnGfxSwitch(s Surface) error {
	needed := neededSize(s.Stride(), s.Height())

	if m.region == nil || needed > len(m.region.Mem) {
		if m.region != nil {
			m.region.Close()
		}
		region, err := shmregion.Create(nil, m.name, needed)
		if err != nil {
			return fmt.Errorf("displaybridge: switch: %w", err)
		}
		m.region = region
		m.transport.ResetFDSent()
		m.log.Printf("displaybridge: %s: initialized %dx%d stride=%d format=%d",
			m.name, s.Width(), s.Height(), s.Stride(), s.Format())
	}

	mem := m.region.Mem
	h := headerAt(mem)
	h.setMagicVersion()
	h.setSurface(uint32(s.Width()), uint32(s.Height()), uint32(s.Stride()), s.Format())

	ring := ringHeaderAt(mem)
	ring.reset()

	h.setCursorShape(0, 0, 0, 0)
	h.setCursorPosition(0, 0, false)
	h.bumpCursorVersion()

	copySurfaceRows(mem, s, 0, s.Height())
	// Dirty rect covers the whole new surface, not an empty rectangle: the
	// renderer's only signal to redraw what copySurfaceRows above just wrote
	// in full is frame_counter bumping alongside a full-area dirty_*.
	h.publishFrame(0, 0, uint32(s.Width()), uint32(s.Height()))

	m.transport.Connect()
	if m.transport.Connected() {
		if err := m.transport.SendFD(m.region.Fd()); err != nil {
			return fmt.Errorf("displaybridge: switch: %w", err)
		}
	}
	return nil
}

// OnGfxUpdate implements on_gfx_update (spec §4.2): copy rows [y, y+h) of
// the surface into the shared pixel buffer, write the dirty rectangle,
// then publish by bumping frame_counter with release ordering. Only the
// most recent dirty rectangle survives; callers that need coalescing of
// several updates before a refresh must do it themselves.
func (m *Manager) OnGfxUpdate(s Surface, x, y, w, height int) error {
	if m.region == nil {
		return nil
	}
	copySurfaceRows(m.region.Mem, s, y, y+height)

	h := headerAt(m.region.Mem)
	h.publishFrame(uint32(x), uint32(y), uint32(w), uint32(height))
	return nil
}

func copySurfaceRows(mem []byte, s Surface, fromY, toY int) {
	stride := s.Stride()
	for row := fromY; row < toY; row++ {
		dstOff := PixelsOffset + row*stride
		copy(mem[dstOff:dstOff+stride], s.Row(row))
	}
}

// OnCursorDefine implements on_cursor_define (spec §4.2): it reads the
// console's canonical cursor rather than trusting any value the caller
// might pass, since that value can lag the console's own state.
func (m *Manager) OnCursorDefine(console Console) error {
	if m.region == nil {
		return nil
	}
	h := headerAt(m.region.Mem)
	cur := console.Cursor()

	if cur == nil {
		h.setCursorShape(0, 0, 0, 0)
		h.bumpCursorVersion()
		return nil
	}

	width := clampCursorDim(cur.Width())
	height := clampCursorDim(cur.Height())

	slot := newCursorSlot(m.region.Mem)
	for row := 0; row < height; row++ {
		srcRow := cur.Row(row)
		dstOff := row * cursorDim * cursorBytesPerPx
		n := width * cursorBytesPerPx
		copy(slot.mem[dstOff:dstOff+n], srcRow[:n])
	}

	h.setCursorShape(uint32(width), uint32(height), int32(cur.HotX()), int32(cur.HotY()))
	h.bumpCursorVersion()
	return nil
}

func clampCursorDim(d int) int {
	if d > cursorDim {
		return cursorDim
	}
	if d < minCursorDim {
		return minCursorDim
	}
	return d
}

// OnMouseSet implements on_mouse_set (spec §4.2): updates position and
// visibility only. No cursor_version bump — shape version remains the
// renderer's sole ordering anchor for the sprite; position is read best
// effort.
func (m *Manager) OnMouseSet(x, y int32, visible bool) {
	if m.region == nil {
		return
	}
	headerAt(m.region.Mem).setCursorPosition(x, y, visible)
}

// Refresh drains the renderer's input ring (spec §4.3) and, if no peer is
// connected yet, retries the rendezvous handshake — mirroring the
// lazy-connect discipline of spec §4.1 on every refresh tick.
func (m *Manager) Refresh(sink InputSink) {
	if m.region == nil {
		return
	}
	DrainInput(m.region.Mem, sink)

	m.transport.Connect()
	if m.transport.Connected() && !m.transport.FDSent() {
		m.transport.SendFD(m.region.Fd())
	}
}

// RegionMem exposes the raw mapped region bytes, nil if no surface switch
// has happened yet. Intended for callers that need to drive the input
// ring directly (the mock renderer, tests) rather than through a Surface.
func (m *Manager) RegionMem() []byte {
	if m.region == nil {
		return nil
	}
	return m.region.Mem
}

// Close releases the region and the rendezvous transport. Safe to call
// once; the Manager must not be used afterward.
func (m *Manager) Close() error {
	var firstErr error
	if err := m.transport.Close(); err != nil {
		firstErr = err
	}
	if m.region != nil {
		if err := m.region.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		m.region = nil
	}
	return firstErr
}
