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

// Package audiobridge manages the audio shared-memory region: a fixed
// header plus a single-producer/single-consumer PCM ring. The region is
// allocated once on the first InitOut and never grown. Write is the hot
// path: it never blocks, applies rate-controller backpressure when the
// renderer is paused or the ring is full, and publishes write_idx with
// release ordering.
package audiobridge
