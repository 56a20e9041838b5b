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

// Settings describes the voice being initialized, handed to InitOut. It
// stands in for audio_pcm_init_info (spec §6).
type Settings struct {
	SampleRate uint32
	Channels   uint32 // 1 or 2
	Format     uint32 // FormatS16LE or FormatF32LE
}

// RateController models the host audio framework's real-time drain
// helper (audio_rate_start / audio_rate_get_bytes, spec §4.5, §6). It is
// the two-tier adapter the write hot path falls back to whenever the
// renderer has paused the ring or not even one frame fits: Start restarts
// the controller's clock (EnableOut(true)), and BytesAvailable is asked,
// on each such Write call, how many bytes real time would have drained
// since the controller last answered, bounded by maxBytes. A Write that
// stores at least one frame does not consult the controller.
type RateController interface {
	Start()
	BytesAvailable(maxBytes int) int
}

// noopRateController is used when a caller doesn't wire a real one; it
// reports zero bytes consumed, which is conservative (no silent progress
// is invented) rather than wrong in either direction.
type noopRateController struct{}

func (noopRateController) Start()                 {}
func (noopRateController) BytesAvailable(int) int { return 0 }
