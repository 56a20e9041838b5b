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

// Command juke-mock-renderer stands in for the real external renderer
// process that this bridge is designed to hand off to: it listens on a
// UNIX socket, accepts the display region's fd over SCM_RIGHTS, maps it,
// and turns raw terminal keystrokes into input-ring events so the
// displaybridge drain path has a live producer to exercise end to end.
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/anderstorpsfestivalen/qemu/internal/displaybridge"
)

func main() {
	socketPath := flag.String("socket", "/tmp/juke-fb.sock", "rendezvous socket path to listen on")
	flag.Parse()

	os.Remove(*socketPath)
	ln, err := net.ListenUnix("unix", &net.UnixAddr{Name: *socketPath, Net: "unix"})
	if err != nil {
		log.Fatalf("listen %s: %v", *socketPath, err)
	}
	defer ln.Close()
	defer os.Remove(*socketPath)

	fmt.Fprintf(os.Stderr, "juke-mock-renderer: listening on %s\n", *socketPath)

	conn, err := ln.AcceptUnix()
	if err != nil {
		log.Fatalf("accept: %v", err)
	}
	defer conn.Close()

	fd, err := receiveFD(conn)
	if err != nil {
		log.Fatalf("receive fd: %v", err)
	}
	fmt.Fprintf(os.Stderr, "juke-mock-renderer: received fd %d\n", fd)

	size, err := regionSize(fd)
	if err != nil {
		log.Fatalf("fstat fd %d: %v", fd, err)
	}

	mem, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		log.Fatalf("mmap fd %d: %v", fd, err)
	}
	defer unix.Munmap(mem)

	fmt.Fprintf(os.Stderr, "juke-mock-renderer: mapped %d bytes; press q to quit, arrow keys to inject mouse-relative events\n", size)

	runKeyLoop(mem)
}

// receiveFD reads the one-byte payload + SCM_RIGHTS ancillary message the
// rendezvous transport sends (spec §4.1) and returns the delivered fd.
func receiveFD(conn *net.UnixConn) (int, error) {
	buf := make([]byte, 1)
	oob := make([]byte, 64)
	_, oobn, _, _, err := conn.ReadMsgUnix(buf, oob)
	if err != nil {
		return -1, err
	}
	scms, err := syscall.ParseSocketControlMessage(oob[:oobn])
	if err != nil || len(scms) == 0 {
		return -1, fmt.Errorf("no control message received")
	}
	fds, err := syscall.ParseUnixRights(&scms[0])
	if err != nil || len(fds) == 0 {
		return -1, fmt.Errorf("no fd in control message")
	}
	return fds[0], nil
}

func regionSize(fd int) (int, error) {
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return 0, err
	}
	return int(st.Size), nil
}

// runKeyLoop puts the terminal in raw mode (golang.org/x/term) and turns
// arrow-key presses into mouse-relative InputEvents pushed straight into
// the display region's input ring, the same way the real renderer would
// after translating its own UI toolkit's key events.
func runKeyLoop(mem []byte) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		fmt.Fprintln(os.Stderr, "juke-mock-renderer: stdin is not a terminal, idling until interrupted")
		waitForInterrupt()
		return
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		log.Fatalf("term.MakeRaw: %v", err)
	}
	defer term.Restore(fd, oldState)

	buf := make([]byte, 3)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			return
		}
		switch {
		case buf[0] == 'q':
			return
		case n == 3 && buf[0] == 0x1b && buf[1] == '[':
			dx, dy := arrowDelta(buf[2])
			displaybridge.PushInputEvent(mem, displaybridge.InputEvent{
				Type: displaybridge.EventMouseRelative,
				X:    dx,
				Y:    dy,
			})
		default:
			displaybridge.PushInputEvent(mem, displaybridge.InputEvent{
				Type:    displaybridge.EventKey,
				X:       int32(buf[0]),
				Pressed: 1,
			})
		}
	}
}

func arrowDelta(code byte) (dx, dy int32) {
	switch code {
	case 'A': // up
		return 0, -1
	case 'B': // down
		return 0, 1
	case 'C': // right
		return 1, 0
	case 'D': // left
		return -1, 0
	default:
		return 0, 0
	}
}

func waitForInterrupt() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig
}
