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

import (
	"fmt"

	"github.com/anderstorpsfestivalen/qemu/internal/rendezvous"
	"github.com/anderstorpsfestivalen/qemu/internal/shmregion"
)

const initialVolume = 255

// Manager owns the audio shared-memory region for one voice's lifetime:
// allocated once on InitOut, never grown, released on Close together
// with the rendezvous transport.
type Manager struct {
	name      string
	transport *rendezvous.Transport
	log       rendezvous.Logger
	rate      RateController

	region         *shmregion.Region
	bytesPerFrame  int
	ringFrames     uint32
	writeIdxShadow uint32 // local copy; only this side writes write_idx
	channels       uint32 // from Settings, needed by VolumeOut's mono/stereo rule
}

// New creates a Manager bound to socketPath; the region is not allocated
// until InitOut. One best-effort, failure-swallowed connect attempt is
// made immediately, in addition to the lazy per-write retry InitOut/Write
// already perform.
func New(name, socketPath string, log rendezvous.Logger, rate RateController) *Manager {
	if rate == nil {
		rate = noopRateController{}
	}
	if log == nil {
		log = rendezvous.NopLogger()
	}
	m := &Manager{
		name:      name,
		transport: rendezvous.New(socketPath, log),
		log:       log,
		rate:      rate,
	}
	m.transport.Connect()
	return m
}

// InitOut implements init_out (spec §4.5): allocates the fixed-size
// region, writes header constants and the initial max-volume/unmuted
// state, and kicks the transport to connect and send the fd. Only the
// first call does this; later calls keep the existing region and header
// and return nil.
func (m *Manager) InitOut(s Settings) error {
	if m.region != nil {
		return nil
	}
	bpf := bytesPerFrame(s.Channels, s.Format)
	size := HeaderSize + RingFrames*bpf

	region, err := shmregion.Create(nil, m.name, size)
	if err != nil {
		return fmt.Errorf("audiobridge: init_out: %w", err)
	}
	m.region = region
	m.bytesPerFrame = bpf
	m.ringFrames = RingFrames
	m.writeIdxShadow = 0
	m.channels = s.Channels

	h := headerAt(m.region.Mem)
	h.setConstants(s.SampleRate, s.Channels, s.Format)
	h.setVolume(false, initialVolume, initialVolume)

	m.log.Printf("audiobridge: %s: initialized %dHz %dch format=%d ring=%d frames",
		m.name, s.SampleRate, s.Channels, s.Format, RingFrames)

	m.transport.ResetFDSent()
	m.transport.Connect()
	if m.transport.Connected() {
		if err := m.transport.SendFD(m.region.Fd()); err != nil {
			return fmt.Errorf("audiobridge: init_out: %w", err)
		}
	}
	return nil
}

// Write implements the hot path of spec §4.5. It never blocks: when the
// renderer has paused the ring (enabled=0) or the ring has no room, it
// returns the rate controller's real-time drain estimate instead of
// touching shared memory.
func (m *Manager) Write(buf []byte) (int, error) {
	if m.region == nil {
		return 0, nil
	}

	if !m.transport.FDSent() {
		m.transport.Connect()
		if m.transport.Connected() {
			m.transport.SendFD(m.region.Fd())
		}
	}

	h := headerAt(m.region.Mem)

	if !h.Enabled() {
		return m.rate.BytesAvailable(len(buf)), nil
	}

	readIdx := h.ReadIndex()
	free := freeFrames(m.writeIdxShadow, readIdx, m.ringFrames)

	wantFrames := len(buf) / m.bytesPerFrame
	frames := wantFrames
	if uint32(frames) > free {
		frames = int(free)
	}

	if frames == 0 {
		return m.rate.BytesAvailable(len(buf)), nil
	}

	writeFrames(samplesRegion(m.region.Mem), m.writeIdxShadow, m.ringFrames, m.bytesPerFrame, buf, frames)

	m.writeIdxShadow += uint32(frames)
	h.storeWriteIndex(m.writeIdxShadow)

	return frames * m.bytesPerFrame, nil
}

// EnableOut restarts the rate controller; it does not touch the header's
// enabled field, which is renderer-owned (spec §4.5).
func (m *Manager) EnableOut(on bool) {
	if on {
		m.rate.Start()
	}
}

// VolumeOut implements volume_out (spec §4.5): independent release
// stores into muted/volume_left/volume_right, applying the
// channels>1 ? vol[1] : vol[0] rule for the right channel — a mono voice
// has no second channel to take volRight from, so volume_right mirrors
// volLeft instead.
func (m *Manager) VolumeOut(mute bool, volLeft, volRight uint32) {
	if m.region == nil {
		return
	}
	if m.channels <= 1 {
		volRight = volLeft
	}
	headerAt(m.region.Mem).setVolume(mute, volLeft, volRight)
}

// Close implements fini_out: closes the transport before unmapping and
// freeing the region, matching the original implementation's fini
// ordering.
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
