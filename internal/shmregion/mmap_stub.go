//go:build !unix

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
	"errors"
	"os"
)

// ErrUnsupported is returned on platforms without a shared-memory mmap
// implementation (the bridge is POSIX/unix-only, matching the spec's
// UNIX-domain-socket rendezvous transport).
var ErrUnsupported = errors.New("shmregion: unsupported platform")

func init() {
	mmapFile = func(*os.File, int) ([]byte, error) { return nil, ErrUnsupported }
	munmapMem = func([]byte) error { return ErrUnsupported }
}
