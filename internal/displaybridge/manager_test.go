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
	"runtime"
	"testing"
)

func skipUnsupported(t *testing.T) {
	switch runtime.GOOS {
	case "linux", "darwin", "freebsd", "openbsd", "netbsd", "dragonfly", "solaris":
		return
	default:
		t.Skipf("anonymous shared memory unsupported on %s", runtime.GOOS)
	}
}

type fakeSurface struct {
	width, height, stride int
	format                uint32
	rows                   [][]byte
}

func newFakeSurface(width, height int, fill byte) *fakeSurface {
	stride := width * 4
	rows := make([][]byte, height)
	for y := 0; y < height; y++ {
		row := make([]byte, stride)
		for i := range row {
			row[i] = fill
		}
		rows[y] = row
	}
	return &fakeSurface{width: width, height: height, stride: stride, format: 1, rows: rows}
}

func (s *fakeSurface) Width() int      { return s.width }
func (s *fakeSurface) Height() int     { return s.height }
func (s *fakeSurface) Stride() int     { return s.stride }
func (s *fakeSurface) Format() uint32  { return s.format }
func (s *fakeSurface) Row(y int) []byte { return s.rows[y] }

type fakeCursorImage struct {
	width, height, hotX, hotY int
	rows                      [][]byte
}

func (c *fakeCursorImage) Width() int   { return c.width }
func (c *fakeCursorImage) Height() int  { return c.height }
func (c *fakeCursorImage) HotX() int    { return c.hotX }
func (c *fakeCursorImage) HotY() int    { return c.hotY }
func (c *fakeCursorImage) Row(y int) []byte { return c.rows[y] }

type fakeConsole struct {
	cursor CursorImage
}

func (c *fakeConsole) Cursor() CursorImage { return c.cursor }

func TestOnGfxSwitchAllocatesAndWritesHeader(t *testing.T) {
	skipUnsupported(t)

	m := New("test-display", "", nil)
	defer m.Close()

	surf := newFakeSurface(4, 3, 0x7F)
	if err := m.OnGfxSwitch(surf); err != nil {
		t.Fatalf("OnGfxSwitch: %v", err)
	}

	h := headerAt(m.region.Mem)
	if h.Width() != 4 || h.Height() != 3 || h.Stride() != 16 {
		t.Fatalf("header surface = (%d,%d,%d), want (4,3,16)", h.Width(), h.Height(), h.Stride())
	}
	if h.Magic() != Magic || h.Version() != Version {
		t.Fatalf("header magic/version = (%#x,%d), want (%#x,%d)", h.Magic(), h.Version(), Magic, Version)
	}

	for y := 0; y < surf.Height(); y++ {
		off := PixelsOffset + y*surf.Stride()
		got := m.region.Mem[off : off+surf.Stride()]
		for i, b := range got {
			if b != 0x7F {
				t.Fatalf("row %d byte %d = %#x, want 0x7F", y, i, b)
			}
		}
	}
}

func TestOnGfxSwitchGrowOnlyKeepsCapacityAcrossShrink(t *testing.T) {
	skipUnsupported(t)

	m := New("test-display", "", nil)
	defer m.Close()

	big := newFakeSurface(64, 64, 0x11)
	if err := m.OnGfxSwitch(big); err != nil {
		t.Fatalf("OnGfxSwitch(big): %v", err)
	}
	bigLen := len(m.region.Mem)

	small := newFakeSurface(2, 2, 0x22)
	if err := m.OnGfxSwitch(small); err != nil {
		t.Fatalf("OnGfxSwitch(small): %v", err)
	}
	if len(m.region.Mem) != bigLen {
		t.Fatalf("region shrank from %d to %d bytes; resize policy is grow-only", bigLen, len(m.region.Mem))
	}

	h := headerAt(m.region.Mem)
	if h.Width() != 2 || h.Height() != 2 {
		t.Fatalf("header surface after shrink = (%d,%d), want (2,2)", h.Width(), h.Height())
	}
}

func TestOnGfxSwitchPublishesFullSurfaceDirtyRect(t *testing.T) {
	skipUnsupported(t)

	m := New("test-display", "", nil)
	defer m.Close()

	surf := newFakeSurface(4, 3, 0x55)
	if err := m.OnGfxSwitch(surf); err != nil {
		t.Fatalf("OnGfxSwitch: %v", err)
	}

	h := headerAt(m.region.Mem)
	if h.FrameCounter() != 1 {
		t.Fatalf("frame_counter = %d, want 1", h.FrameCounter())
	}
	x, y, w, height := h.DirtyRect()
	if x != 0 || y != 0 || w != uint32(surf.Width()) || height != uint32(surf.Height()) {
		t.Fatalf("dirty rect after switch = (%d,%d,%d,%d), want (0,0,%d,%d): the renderer's only signal to redraw the freshly (re)written surface is frame_counter bumping alongside a full-area dirty rect, not an empty one",
			x, y, w, height, surf.Width(), surf.Height())
	}
}

func TestOnGfxUpdatePublishesDirtyRectAndBumpsFrameCounter(t *testing.T) {
	skipUnsupported(t)

	m := New("test-display", "", nil)
	defer m.Close()

	surf := newFakeSurface(8, 8, 0x00)
	if err := m.OnGfxSwitch(surf); err != nil {
		t.Fatalf("OnGfxSwitch: %v", err)
	}

	for i := range surf.rows[2] {
		surf.rows[2][i] = 0xCD
	}
	if err := m.OnGfxUpdate(surf, 0, 2, surf.Width(), 1); err != nil {
		t.Fatalf("OnGfxUpdate: %v", err)
	}

	h := headerAt(m.region.Mem)
	if h.FrameCounter() != 2 { // one from the switch's full-surface publishFrame, one from this update
		t.Fatalf("frame_counter = %d, want 2", h.FrameCounter())
	}
	x, y, w, height := h.DirtyRect()
	if x != 0 || y != 2 || w != uint32(surf.Width()) || height != 1 {
		t.Fatalf("dirty rect = (%d,%d,%d,%d), want (0,2,%d,1)", x, y, w, height, surf.Width())
	}

	off := PixelsOffset + 2*surf.Stride()
	got := m.region.Mem[off : off+surf.Stride()]
	for i, b := range got {
		if b != 0xCD {
			t.Fatalf("updated row byte %d = %#x, want 0xCD", i, b)
		}
	}
}

func TestOnCursorDefineReadsConsoleNotCallerValue(t *testing.T) {
	skipUnsupported(t)

	m := New("test-display", "", nil)
	defer m.Close()

	surf := newFakeSurface(8, 8, 0)
	if err := m.OnGfxSwitch(surf); err != nil {
		t.Fatalf("OnGfxSwitch: %v", err)
	}

	cursorRows := make([][]byte, 2)
	for y := range cursorRows {
		row := make([]byte, 2*4)
		for i := range row {
			row[i] = byte(0x90 + y)
		}
		cursorRows[y] = row
	}
	console := &fakeConsole{cursor: &fakeCursorImage{width: 2, height: 2, hotX: 1, hotY: 1, rows: cursorRows}}

	versionBefore := headerAt(m.region.Mem).CursorVersion()
	if err := m.OnCursorDefine(console); err != nil {
		t.Fatalf("OnCursorDefine: %v", err)
	}

	h := headerAt(m.region.Mem)
	if h.CursorVersion() != versionBefore+1 {
		t.Fatalf("cursor_version = %d, want %d", h.CursorVersion(), versionBefore+1)
	}
	w, height, hotX, hotY := h.CursorShape()
	if w != 2 || height != 2 || hotX != 1 || hotY != 1 {
		t.Fatalf("cursor shape = (%d,%d,%d,%d), want (2,2,1,1)", w, height, hotX, hotY)
	}
}

func TestOnCursorDefineWithNoCursorClearsShapeAndBumpsVersion(t *testing.T) {
	skipUnsupported(t)

	m := New("test-display", "", nil)
	defer m.Close()

	surf := newFakeSurface(4, 4, 0)
	if err := m.OnGfxSwitch(surf); err != nil {
		t.Fatalf("OnGfxSwitch: %v", err)
	}

	versionBefore := headerAt(m.region.Mem).CursorVersion()
	if err := m.OnCursorDefine(&fakeConsole{cursor: nil}); err != nil {
		t.Fatalf("OnCursorDefine: %v", err)
	}

	h := headerAt(m.region.Mem)
	if h.CursorVersion() != versionBefore+1 {
		t.Fatalf("cursor_version = %d, want %d", h.CursorVersion(), versionBefore+1)
	}
	w, height, _, _ := h.CursorShape()
	if w != 0 || height != 0 {
		t.Fatalf("cursor shape = (%d,%d), want (0,0)", w, height)
	}
}

func TestOnMouseSetDoesNotBumpCursorVersion(t *testing.T) {
	skipUnsupported(t)

	m := New("test-display", "", nil)
	defer m.Close()

	surf := newFakeSurface(4, 4, 0)
	if err := m.OnGfxSwitch(surf); err != nil {
		t.Fatalf("OnGfxSwitch: %v", err)
	}

	versionBefore := headerAt(m.region.Mem).CursorVersion()
	m.OnMouseSet(5, 6, true)

	h := headerAt(m.region.Mem)
	if h.CursorVersion() != versionBefore {
		t.Fatalf("cursor_version changed from %d to %d on OnMouseSet", versionBefore, h.CursorVersion())
	}
	x, y, visible := h.CursorPosition()
	if x != 5 || y != 6 || !visible {
		t.Fatalf("cursor position = (%d,%d,%v), want (5,6,true)", x, y, visible)
	}
}

func TestRefreshDrainsInputRing(t *testing.T) {
	skipUnsupported(t)

	m := New("test-display", "", nil)
	defer m.Close()

	surf := newFakeSurface(4, 4, 0)
	if err := m.OnGfxSwitch(surf); err != nil {
		t.Fatalf("OnGfxSwitch: %v", err)
	}

	PushInputEvent(m.region.Mem, InputEvent{Type: EventKey, X: 9, Pressed: 1})

	sink := &recordingSink{}
	m.Refresh(sink)

	if len(sink.keys) != 1 || sink.keys[0].X != 9 {
		t.Fatalf("drained keys = %+v, want one event with X=9", sink.keys)
	}
}

func TestCloseIsSafeWithoutAnySwitch(t *testing.T) {
	m := New("test-display", "", nil)
	if err := m.Close(); err != nil {
		t.Fatalf("Close on never-switched manager: %v", err)
	}
}
