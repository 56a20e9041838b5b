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

//go:build darwin

package refreshrate

/*
#cgo LDFLAGS: -framework CoreGraphics
#include <CoreGraphics/CGDirectDisplay.h>

static double main_display_nominal_refresh_period_ms(void) {
	CGDirectDisplayID display = CGMainDisplayID();
	CGDisplayModeRef mode = CGDisplayCopyDisplayMode(display);
	if (mode == NULL) {
		return 0;
	}
	double period = CGDisplayModeGetRefreshRate(mode);
	CGDisplayModeRelease(mode);
	if (period <= 0) {
		return 0;
	}
	return 1000.0 / period;
}
*/
import "C"

import "time"

func init() {
	probeHostInterval = probeCoreGraphics
}

// probeCoreGraphics queries the main display's nominal refresh period and
// converts it to an integer millisecond interval (spec §4.4).
func probeCoreGraphics() (time.Duration, bool) {
	ms := float64(C.main_display_nominal_refresh_period_ms())
	if ms <= 0 {
		return 0, false
	}
	return time.Duration(ms+0.5) * time.Millisecond, true
}
