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

// Surface is the minimal slice of the host display framework's surface
// object this package needs: its current pixel contents and geometry. The
// format negotiation producing it is out of scope (spec §1) and left to
// the caller.
type Surface interface {
	Width() int
	Height() int
	Stride() int
	Format() uint32
	// Row returns the surface's raw row bytes for row y, length Stride().
	Row(y int) []byte
}

// CursorImage is the console's canonical cursor sprite, handed back by
// Console.Cursor(). A nil CursorImage means "no cursor defined".
type CursorImage interface {
	Width() int
	Height() int
	HotX() int
	HotY() int
	// Row returns row y of the sprite as tightly packed RGBA8888, length
	// Width()*4.
	Row(y int) []byte
}

// Console stands in for qemu_console_get_cursor: the display manager
// never trusts the cursor pointer an on_cursor_define callback is handed,
// only the console's own canonical copy (spec §4.2).
type Console interface {
	Cursor() CursorImage
}
