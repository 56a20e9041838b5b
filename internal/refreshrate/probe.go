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

package refreshrate

import "time"

// FallbackInterval is used whenever the platform probe fails or yields
// an interval outside the accepted (0, 100) ms range: ~120 Hz.
const FallbackInterval = 8 * time.Millisecond

const maxAcceptedInterval = 100 * time.Millisecond

// Scheduler is the named adapter standing in for the display framework's
// refresh scheduler (register_displaychangelistener / the interval the
// framework drives graphic_hw_update at).
type Scheduler interface {
	SetRefreshInterval(time.Duration)
}

// probeHostInterval is set by exactly one of probe_linux.go /
// probe_darwin.go / probe_stub.go.
var probeHostInterval func() (time.Duration, bool)

// Detect probes the host's active display mode and returns an accepted
// interval in (0, 100) ms, or FallbackInterval if the probe failed or
// returned something outside that range (spec §4.4).
func Detect() time.Duration {
	interval, ok := probeHostInterval()
	if !ok {
		return FallbackInterval
	}
	return clamp(interval)
}

func clamp(interval time.Duration) time.Duration {
	if interval <= 0 || interval >= maxAcceptedInterval {
		return FallbackInterval
	}
	return interval
}

// Register probes the host and registers the chosen interval with the
// display framework's refresh scheduler.
func Register(s Scheduler) time.Duration {
	interval := Detect()
	s.SetRefreshInterval(interval)
	return interval
}
