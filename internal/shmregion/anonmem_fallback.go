//go:build unix && !linux

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
)

func init() {
	defaultAllocator = unlinkAllocator{}
}

// unlinkAllocator emulates memfd_create on platforms (Darwin, BSD) that
// lack it: create a regular temp file, unlink it immediately, and keep the
// open fd. The inode has no remaining directory entry, so the only way to
// reach it is through the already-open fd — the same anonymity property
// memfd_create gives on Linux, just achieved through unlink-after-open
// instead of a dedicated syscall.
type unlinkAllocator struct{}

func (unlinkAllocator) Alloc(name string, size int) (*os.File, error) {
	file, err := os.CreateTemp("", "juke-"+name+"-*")
	if err != nil {
		return nil, fmt.Errorf("create temp backing file: %w", err)
	}
	path := file.Name()
	if err := os.Remove(path); err != nil {
		file.Close()
		return nil, fmt.Errorf("unlink backing file: %w", err)
	}
	if err := file.Truncate(int64(size)); err != nil {
		file.Close()
		return nil, fmt.Errorf("truncate backing file: %w", err)
	}
	return file, nil
}
