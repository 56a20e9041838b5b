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

// Package rendezvous implements the one-time UNIX-socket handshake used to
// ship a shared-memory file descriptor from the emulator (client) to the
// renderer (server). No protocol flows across the socket other than one
// payload byte carrying a single SCM_RIGHTS ancillary message; once the fd
// has been sent, the socket is never touched again.
package rendezvous

import (
	"errors"
	"fmt"
	"net"
)

// Logger is satisfied by *log.Logger; it is the seam for the "log once per
// transient-error class" discipline of spec §7.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// NopLogger returns a Logger that discards everything, the zero-value
// fallback Transport itself falls back to when New is given a nil Logger.
func NopLogger() Logger { return nopLogger{} }

// Transport is a lazily-(re)connecting UNIX stream client that exists
// solely to pass one fd per channel lifetime to a peer process. It is not
// safe for concurrent use by design: spec §5 requires all callbacks on a
// channel to run on a single host-framework thread, and Transport mirrors
// that by not taking its own lock around Connect/SendFD.
type Transport struct {
	path string
	log  Logger

	conn              *net.UnixConn
	fdSent            bool
	loggedConnectFail bool
	loggedSendFail    bool
}

// New creates a Transport bound to the given UNIX socket path. It does not
// connect yet; call Connect before SendFD, which never dials on its own.
func New(path string, log Logger) *Transport {
	if log == nil {
		log = nopLogger{}
	}
	return &Transport{path: path, log: log}
}

// Connected reports whether a peer connection is currently established.
func (t *Transport) Connected() bool {
	return t.conn != nil
}

// FDSent reports whether the current fd generation has already been
// handed to the peer.
func (t *Transport) FDSent() bool {
	return t.fdSent
}

// ResetFDSent clears the sent flag, e.g. because the region was
// reallocated and a fresh fd now needs delivering (spec §4.2, §9:
// "a fresh fd is sent once per region lifetime... fd_sent must be
// cleared so the new fd is sent at the next handshake opportunity").
func (t *Transport) ResetFDSent() {
	t.fdSent = false
}

// Connect attempts to dial the socket if not already connected. Failure is
// silent and meant to be retried on the next refresh/write tick (spec §4.1,
// §7 "Transport not ready"); only the first failure after a fresh Transport
// or after a successful connect is logged, to avoid per-tick spam.
func (t *Transport) Connect() {
	if t.conn != nil || t.path == "" {
		return
	}

	addr, err := net.ResolveUnixAddr("unix", truncateSunPath(t.path))
	if err != nil {
		t.logConnectFailOnce(err)
		return
	}

	conn, err := net.DialUnix("unix", nil, addr)
	if err != nil {
		t.logConnectFailOnce(err)
		return
	}

	t.conn = conn
	t.fdSent = false
	t.loggedConnectFail = false
	t.loggedSendFail = false
	t.log.Printf("rendezvous: connected to %s", t.path)
}

func (t *Transport) logConnectFailOnce(err error) {
	if t.loggedConnectFail {
		return
	}
	t.loggedConnectFail = true
	t.log.Printf("rendezvous: connect to %s failed (will retry): %v", t.path, err)
}

// SendFD ships fd to the connected peer via SCM_RIGHTS, accompanied by one
// dummy payload byte (spec §4.1: "kernels which refuse zero-length control
// messages" would otherwise reject the ancillary data). It is idempotent:
// a no-op if there is no peer, no fd, or the fd was already sent for this
// connection generation.
func (t *Transport) SendFD(fd int) error {
	if t.conn == nil || fd < 0 || t.fdSent {
		return nil
	}

	if err := sendFD(t.conn, fd); err != nil {
		if !t.loggedSendFail {
			t.loggedSendFail = true
			t.log.Printf("rendezvous: send fd to %s failed: %v", t.path, err)
		}
		// The peer may have gone away; drop the connection so the next
		// Connect() redials and fd_sent is retried fresh against a new
		// peer rather than being stuck true against a dead one.
		t.disconnectLocked()
		return fmt.Errorf("rendezvous: sendmsg: %w", err)
	}

	t.fdSent = true
	return nil
}

// disconnectLocked tears down the current connection so the next Connect
// call redials. Named "Locked" to match the convention that callers touch
// conn only from the single host-framework thread the spec guarantees.
func (t *Transport) disconnectLocked() {
	if t.conn != nil {
		t.conn.Close()
		t.conn = nil
	}
	t.fdSent = false
	t.loggedConnectFail = false
	t.loggedSendFail = false
}

// Close shuts down the transport. Safe to call once; subsequent calls are
// no-ops.
func (t *Transport) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	t.fdSent = false
	return err
}

// ErrNoPeer is returned by callers that need to distinguish "not connected
// yet" from a hard failure; Transport itself never returns it since Connect
// and SendFD treat "no peer" as a quiet retry condition, not an error.
var ErrNoPeer = errors.New("rendezvous: no connected peer")

const maxSunPathLen = 108 // matches struct sockaddr_un.sun_path on Linux; spec §4.1.

// truncateSunPath truncates (never errors on) paths too long for the
// platform's sun_path, matching the original's strncpy-into-fixed-buffer
// behavior instead of failing the connect attempt outright.
func truncateSunPath(path string) string {
	if len(path) <= maxSunPathLen-1 {
		return path
	}
	return path[:maxSunPathLen-1]
}
