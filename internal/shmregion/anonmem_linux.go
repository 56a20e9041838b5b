//go:build linux

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

package shmregion

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

func init() {
	defaultAllocator = memfdAllocator{}
}

// memfdAllocator creates fully anonymous, unlinked-from-birth regions via
// memfd_create(2). Nothing is ever visible under /dev/shm or any path; the
// only way to reach the region is to receive the fd over SCM_RIGHTS, which
// matches spec §1's "solely as a rendezvous to transfer the shared-memory
// file descriptor" design.
type memfdAllocator struct{}

func (memfdAllocator) Alloc(name string, size int) (*os.File, error) {
	fd, err := unix.MemfdCreate(name, 0)
	if err != nil {
		return nil, fmt.Errorf("memfd_create %q: %w", name, err)
	}
	file := os.NewFile(uintptr(fd), name)
	if err := file.Truncate(int64(size)); err != nil {
		file.Close()
		return nil, fmt.Errorf("ftruncate %q: %w", name, err)
	}
	return file, nil
}
