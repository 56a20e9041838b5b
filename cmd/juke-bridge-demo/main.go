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

// Command juke-bridge-demo drives both bridge channels against fake
// host-framework adapters, the way the teacher's debug tool drove a
// shared-memory ring directly: no real guest, no real renderer, just
// enough of the surrounding machinery to exercise every operation and
// print what the shared region ends up looking like.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/anderstorpsfestivalen/qemu/internal/audiobridge"
	"github.com/anderstorpsfestivalen/qemu/internal/displaybridge"
)

type fakeSurface struct {
	width, height, stride int
	format                uint32
	rows                  [][]byte
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

func (s *fakeSurface) Width() int       { return s.width }
func (s *fakeSurface) Height() int      { return s.height }
func (s *fakeSurface) Stride() int      { return s.stride }
func (s *fakeSurface) Format() uint32   { return s.format }
func (s *fakeSurface) Row(y int) []byte { return s.rows[y] }

type fakeCursor struct {
	width, height, hotX, hotY int
	rows                      [][]byte
}

func (c *fakeCursor) Width() int       { return c.width }
func (c *fakeCursor) Height() int      { return c.height }
func (c *fakeCursor) HotX() int        { return c.hotX }
func (c *fakeCursor) HotY() int        { return c.hotY }
func (c *fakeCursor) Row(y int) []byte { return c.rows[y] }

type fakeConsole struct{ cursor displaybridge.CursorImage }

func (c *fakeConsole) Cursor() displaybridge.CursorImage { return c.cursor }

type loggingInputSink struct{ logger *log.Logger }

func (s *loggingInputSink) MouseRelative(dx, dy int32) { s.logger.Printf("mouse-relative dx=%d dy=%d", dx, dy) }
func (s *loggingInputSink) MouseAbsolute(x, y int32)   { s.logger.Printf("mouse-absolute x=%d y=%d", x, y) }
func (s *loggingInputSink) MouseButton(button uint8, pressed bool) {
	s.logger.Printf("mouse-button button=%d pressed=%v", button, pressed)
}
func (s *loggingInputSink) Key(scancode int32, pressed bool) {
	s.logger.Printf("key scancode=%d pressed=%v", scancode, pressed)
}
func (s *loggingInputSink) Sync() { s.logger.Printf("input sync") }

type fakeRateController struct{ estimate int }

func (f *fakeRateController) Start() {}
func (f *fakeRateController) BytesAvailable(max int) int {
	if f.estimate > max {
		return max
	}
	return f.estimate
}

func main() {
	displaySocket := flag.String("display-socket", "", "rendezvous socket for the display channel (empty: no renderer)")
	audioSocket := flag.String("audio-socket", "", "rendezvous socket for the audio channel (empty: no renderer)")
	flag.Parse()

	logger := log.New(os.Stderr, "juke-bridge-demo: ", 0)

	dm := displaybridge.New("juke-fb", *displaySocket, logger)
	defer dm.Close()

	surf := newFakeSurface(800, 600, 0x20)
	if err := dm.OnGfxSwitch(surf); err != nil {
		log.Fatalf("OnGfxSwitch: %v", err)
	}
	fmt.Println("=== Display channel ===")
	fmt.Printf("surface switched to %dx%d stride=%d\n", surf.Width(), surf.Height(), surf.Stride())

	for i := range surf.rows[20] {
		surf.rows[20][i] = 0xAB
	}
	if err := dm.OnGfxUpdate(surf, 10, 20, 30, 1); err != nil {
		log.Fatalf("OnGfxUpdate: %v", err)
	}
	fmt.Println("published dirty rect (10,20,30,1)")

	cursorRows := make([][]byte, 24)
	for y := range cursorRows {
		cursorRows[y] = make([]byte, 24*4)
	}
	console := &fakeConsole{cursor: &fakeCursor{width: 24, height: 24, hotX: 3, hotY: 3, rows: cursorRows}}
	if err := dm.OnCursorDefine(console); err != nil {
		log.Fatalf("OnCursorDefine: %v", err)
	}
	fmt.Println("defined 24x24 cursor with hotspot (3,3)")

	dm.OnMouseSet(400, 300, true)
	fmt.Println("moved cursor to (400,300), visible")

	displaybridge.PushInputEvent(dm.RegionMem(), displaybridge.InputEvent{Type: displaybridge.EventKey, X: 'q', Pressed: 1})
	dm.Refresh(&loggingInputSink{logger: logger})

	fmt.Println()
	fmt.Println("=== Audio channel ===")
	am := audiobridge.New("juke-audio", *audioSocket, logger, &fakeRateController{estimate: 2048})
	defer am.Close()

	if err := am.InitOut(audiobridge.Settings{SampleRate: 48000, Channels: 2, Format: audiobridge.FormatS16LE}); err != nil {
		log.Fatalf("InitOut: %v", err)
	}
	fmt.Println("audio region initialized at 48000Hz stereo S16LE")

	am.VolumeOut(false, 200, 200)
	fmt.Println("volume set to 200/200, unmuted")

	buf := make([]byte, 4096*4)
	n, err := am.Write(buf)
	if err != nil {
		log.Fatalf("Write: %v", err)
	}
	fmt.Printf("wrote 4096 frames while disabled (renderer hasn't enabled the ring yet), got %d bytes from the rate controller\n", n)
}
