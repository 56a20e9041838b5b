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

// Package displaybridge manages the display shared-memory region: a
// DisplayHeader, a fixed 64x64 RGBA8888 cursor sprite slot, a renderer-owned
// input ring, and the emulator-owned pixel buffer. It allocates and resizes
// the region on guest surface switches, publishes dirty-rectangle updates
// under a release-ordered frame counter, maintains the cursor slot, and
// drains renderer-produced input events on every refresh tick.
package displaybridge
