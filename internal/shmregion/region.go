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

// Package shmregion provides the anonymous-memory-backed shared region
// primitive used by both the display and audio bridge channels: allocate
// an anonymous fd, size it, mmap it, and hand the fd to a peer process via
// the rendezvous transport. The region itself has no notion of header
// layout; that is owned by the display/audio packages.
package shmregion

import (
	"fmt"
	"os"
)

// Region is a memory-mapped anonymous shared-memory object.
type Region struct {
	File *os.File // owns the fd; Fd() is what gets passed via SCM_RIGHTS
	Mem  []byte   // mmapped bytes, read-write, shared with the peer
}

// Allocator produces an anonymous, memory-backed file descriptor of the
// requested size, advisorily named for debugging. It is the adapter named
// in spec §1 as "the allocator primitive that produces anonymous
// memory-backed file descriptors" — the host platform's responsibility,
// not the bridge's.
type Allocator interface {
	Alloc(name string, size int) (*os.File, error)
}

// platform-specific, set by exactly one of anonmem_linux.go / anonmem_fallback.go / anonmem_stub.go.
var defaultAllocator Allocator

// DefaultAllocator returns the platform's anonymous-memory allocator.
func DefaultAllocator() Allocator {
	return defaultAllocator
}

// platform-specific, set by exactly one of mmap_unix.go / mmap_stub.go.
var (
	mmapFile   func(f *os.File, size int) ([]byte, error)
	munmapMem  func([]byte) error
)

// Create allocates a new anonymous region of the given size, advisorily
// named, and maps it read-write.
func Create(alloc Allocator, name string, size int) (*Region, error) {
	if alloc == nil {
		alloc = defaultAllocator
	}
	file, err := alloc.Alloc(name, size)
	if err != nil {
		return nil, fmt.Errorf("shmregion: alloc %q: %w", name, err)
	}

	mem, err := mmapFile(file, size)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("shmregion: mmap %q: %w", name, err)
	}

	return &Region{File: file, Mem: mem}, nil
}

// Close unmaps the region and closes the backing fd. A second Close is a
// no-op returning nil; after Close, Mem is nil and Fd returns -1.
func (r *Region) Close() error {
	var firstErr error
	if r.Mem != nil {
		if err := munmapMem(r.Mem); err != nil && firstErr == nil {
			firstErr = err
		}
		r.Mem = nil
	}
	if r.File != nil {
		if err := r.File.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		r.File = nil
	}
	return firstErr
}

// Fd returns the underlying file descriptor, suitable for SCM_RIGHTS.
// Returns -1 if the region has been closed.
func (r *Region) Fd() int {
	if r.File == nil {
		return -1
	}
	return int(r.File.Fd())
}
