//go:build unix

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

package rendezvous

import (
	"net"
	"syscall"
)

// sendFD ships fd to conn's peer as a single SCM_RIGHTS ancillary message
// alongside one dummy payload byte (spec §4.1).
func sendFD(conn *net.UnixConn, fd int) error {
	rights := syscall.UnixRights(fd)
	_, _, err := conn.WriteMsgUnix([]byte{0}, rights, nil)
	return err
}
