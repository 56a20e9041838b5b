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

//go:build linux

package refreshrate

import (
	"os"
	"path/filepath"
	"sort"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

func init() {
	probeHostInterval = probeDRM
}

const (
	drmIoctlType = 0x64 // 'd'

	drmModeGetResourcesNr = 0xA0
	drmModeGetCRTCNr      = 0xA1

	drmDisplayModeLen = 32
)

// drmModeModeInfo mirrors struct drm_mode_modeinfo. Field order and
// widths are fixed by the kernel ABI; Go introduces no implicit padding
// here because every field already falls on its natural alignment
// boundary.
type drmModeModeInfo struct {
	clock uint32

	hdisplay    uint16
	hsyncStart  uint16
	hsyncEnd    uint16
	htotal      uint16
	hskew       uint16
	vdisplay    uint16
	vsyncStart  uint16
	vsyncEnd    uint16
	vtotal      uint16
	vscan       uint16

	vrefresh uint32

	flags uint32
	typ   uint32

	name [drmDisplayModeLen]byte
}

// drmModeCardRes mirrors struct drm_mode_card_res.
type drmModeCardRes struct {
	fbIDPtr        uint64
	crtcIDPtr      uint64
	connectorIDPtr uint64
	encoderIDPtr   uint64

	countFBs        uint32
	countCRTCs      uint32
	countConnectors uint32
	countEncoders   uint32

	minWidth, maxWidth   uint32
	minHeight, maxHeight uint32
}

// drmModeGetCRTC mirrors struct drm_mode_get_crtc / drm_mode_crtc.
type drmModeGetCRTC struct {
	setConnectorsPtr uint64
	countConnectors  uint32
	crtcID           uint32
	fbID             uint32
	x, y             uint32
	gammaSize        uint32
	modeValid        uint32
	mode             drmModeModeInfo
}

// iocNR computes a Linux ioctl request number for a bidirectional
// ("read-write") command, following the standard _IOC/_IOWR macro
// definition: dir(2 bits, 0b11 for read+write) | size(14 bits) |
// type(8 bits) | nr(8 bits), packed from the high bit down.
func iocNR(typ byte, nr byte, size uintptr) uintptr {
	const iocRead = 2
	const iocWrite = 1
	dir := uintptr(iocRead | iocWrite)
	return (dir << 30) | (uintptr(size&0x3FFF) << 16) | (uintptr(typ) << 8) | uintptr(nr)
}

var (
	modeGetResourcesIoctl = iocNR(drmIoctlType, drmModeGetResourcesNr, unsafe.Sizeof(drmModeCardRes{}))
	modeGetCRTCIoctl      = iocNR(drmIoctlType, drmModeGetCRTCNr, unsafe.Sizeof(drmModeGetCRTC{}))
)

func drmIoctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// probeDRM enumerates /dev/dri/card*, and for the first card that yields
// at least one CRTC with a valid mode, returns the smallest positive
// refresh interval across its CRTCs (spec §4.4).
func probeDRM() (time.Duration, bool) {
	cards, err := filepath.Glob("/dev/dri/card*")
	if err != nil {
		return 0, false
	}
	sort.Strings(cards)

	for _, path := range cards {
		if interval, ok := probeCard(path); ok {
			return interval, true
		}
	}
	return 0, false
}

func probeCard(path string) (time.Duration, bool) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return 0, false
	}
	defer f.Close()
	fd := int(f.Fd())

	crtcIDs, ok := drmCRTCIDs(fd)
	if !ok || len(crtcIDs) == 0 {
		return 0, false
	}

	best := time.Duration(0)
	found := false
	for _, id := range crtcIDs {
		interval, ok := drmCRTCInterval(fd, id)
		if !ok || interval <= 0 {
			continue
		}
		if !found || interval < best {
			best = interval
			found = true
		}
	}
	return best, found
}

func drmCRTCIDs(fd int) ([]uint32, bool) {
	var res drmModeCardRes
	if err := drmIoctl(fd, modeGetResourcesIoctl, unsafe.Pointer(&res)); err != nil {
		return nil, false
	}
	if res.countCRTCs == 0 {
		return nil, false
	}

	ids := make([]uint32, res.countCRTCs)
	res.crtcIDPtr = uint64(uintptr(unsafe.Pointer(&ids[0])))
	if err := drmIoctl(fd, modeGetResourcesIoctl, unsafe.Pointer(&res)); err != nil {
		return nil, false
	}
	return ids, true
}

func drmCRTCInterval(fd int, crtcID uint32) (time.Duration, bool) {
	var crtc drmModeGetCRTC
	crtc.crtcID = crtcID
	if err := drmIoctl(fd, modeGetCRTCIoctl, unsafe.Pointer(&crtc)); err != nil {
		return 0, false
	}
	if crtc.modeValid == 0 {
		return 0, false
	}

	m := crtc.mode
	htotal := uint32(m.htotal)
	vtotal := uint32(m.vtotal)
	if htotal == 0 || vtotal == 0 || m.clock == 0 {
		return 0, false
	}

	hz := float64(m.clock) * 1000.0 / (float64(htotal) * float64(vtotal))
	if hz <= 0 {
		return 0, false
	}
	return time.Duration(1000.0/hz*float64(time.Millisecond) + 0.5), true
}
