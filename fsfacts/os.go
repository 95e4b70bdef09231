//
// Copyright 2019-2020 Nestybox, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

// Package fsfacts supplies the Symlink Resolver and Access Check with the
// observed-facts primitive (reparse-point classification, link targets,
// existence) the core needs but does not own: a thin split between a real
// OS-backed implementation and an in-memory one for tests.
package fsfacts

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/nestybox/sandbox-core/canonpath"
	"github.com/nestybox/sandbox-core/domain"
)

// osFacts backs FileFactsIface with real filesystem calls.
type osFacts struct{}

// NewOS returns the production FileFactsIface, backed by the host kernel.
func NewOS() domain.FileFactsIface {
	return osFacts{}
}

func (osFacts) Classify(path canonpath.Path) (domain.ReparseKind, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path.String(), &st); err != nil {
		if err == unix.ENOENT {
			return domain.NotReparsePoint, nil
		}
		return domain.NotReparsePoint, err
	}

	if st.Mode&unix.S_IFMT != unix.S_IFLNK {
		return domain.NotReparsePoint, nil
	}

	// Whether the symlink's *target* is itself a directory requires
	// following it; the mount-point/junction distinction in §4.4 is a
	// Windows reparse-tag concept with no POSIX equivalent, so on this
	// platform every symlink is treated as a directory symlink (its
	// prefix is substituted before a relative target is spliced in).
	return domain.DirectorySymlink, nil
}

// maxPathLen mirrors Linux's PATH_MAX; large enough for any realistic
// reparse-point target.
const maxPathLen = 4096

func (osFacts) ReadTarget(path canonpath.Path) (string, bool, error) {
	buf := make([]byte, maxPathLen)
	n, err := unix.Readlink(path.String(), buf)
	if err != nil {
		return "", false, err
	}
	target := string(buf[:n])
	return target, len(target) > 0 && target[0] == '/', nil
}

func (osFacts) Stat(path canonpath.Path) domain.FileReadContext {
	var st unix.Stat_t
	if err := unix.Stat(path.String(), &st); err != nil {
		if err == unix.ENOENT {
			return domain.FileReadContext{Existence: domain.Nonexistent}
		}
		return domain.FileReadContext{Existence: domain.InvalidPath}
	}
	return domain.FileReadContext{
		Existence:       domain.Existent,
		OpenedDirectory: st.Mode&unix.S_IFMT == unix.S_IFDIR,
		ModTime:         time.Unix(st.Mtim.Sec, st.Mtim.Nsec),
	}
}
