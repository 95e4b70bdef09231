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

package fsfacts

import (
	"errors"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/nestybox/sandbox-core/canonpath"
	"github.com/nestybox/sandbox-core/domain"
)

// errNotRegistered is returned when ReadTarget is called on a path the
// fixture never registered as a link.
var errNotRegistered = errors.New("fsfacts: path not registered as a reparse point")

// link is a registered reparse point in a Mem fixture.
type link struct {
	kind       domain.ReparseKind
	target     string
	isAbsolute bool
}

// Mem is an in-memory FileFactsIface for tests. Plain files and
// directories are backed by an afero.MemMapFs (so Stat's
// existence/directory facts come from real afero semantics); symlinks
// and junctions — which afero has no native concept of — are tracked in
// a small side table.
type Mem struct {
	mu       sync.RWMutex
	fs       afero.Fs
	links    map[string]link
	modTimes map[string]time.Time
}

// NewMem returns an empty in-memory fixture.
func NewMem() *Mem {
	return &Mem{
		fs:       afero.NewMemMapFs(),
		links:    make(map[string]link),
		modTimes: make(map[string]time.Time),
	}
}

// SetModTime records a deterministic modification time for path, surfaced
// through Stat's FileReadContext.ModTime. Fixtures that don't call this
// leave ModTime at the zero value, which suppresses §6 timestamp
// normalization entirely rather than feeding it afero's real wall clock.
func (m *Mem) SetModTime(path string, t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modTimes[path] = t
}

// AddFile registers a plain file at path.
func (m *Mem) AddFile(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	afero.WriteFile(m.fs, path, []byte{}, 0644)
}

// AddDir registers a plain directory at path.
func (m *Mem) AddDir(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fs.MkdirAll(path, 0755)
}

// AddDirectorySymlink registers path as a symlink whose target is a
// directory (possibly itself a further symlink or junction).
func (m *Mem) AddDirectorySymlink(path, target string, isAbsolute bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[path] = link{kind: domain.DirectorySymlink, target: target, isAbsolute: isAbsolute}
}

// AddFileSymlink registers path as a symlink to a (non-directory) file.
func (m *Mem) AddFileSymlink(path, target string, isAbsolute bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[path] = link{kind: NotASymlinkButFile, target: target, isAbsolute: isAbsolute}
}

// AddJunction registers path as a mount point / junction: its relative
// targets are resolved relative to the junction's own mount-point path,
// not substituted away, per §4.4.
func (m *Mem) AddJunction(path, target string, isAbsolute bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[path] = link{kind: domain.MountPoint, target: target, isAbsolute: isAbsolute}
}

// NotASymlinkButFile tags a registered file-symlink (as opposed to a
// directory symlink) internally; Classify reports both as reparse points,
// but the resolver only needs the MountPoint/DirectorySymlink distinction
// for *prefix* components, so a plain file symlink is reported identically
// to a directory symlink to outside callers (it is the terminal link in a
// chain, never a prefix to substitute).
const NotASymlinkButFile = domain.ReparseKind(100)

// maxPrefixHops bounds the transparent prefix-walk below; a real kernel
// would loop forever on a self-referential mount table, so this fixture
// bounds it the same way the Symlink Resolver bounds its own chains.
const maxPrefixHops = 32

// realPath mimics what kernel pathname resolution does for free on a real
// filesystem: every component except the last is dereferenced
// transparently, including through directory-symlink and mount-point
// prefixes, before the final component is looked up literally. Only the
// final component's own reparse-point-ness is left for the caller to
// classify — resolving it is the Symlink Resolver's job, not this
// fixture's. Without this, a Mem fixture could only see reparse points
// registered under their exact full path, which does not hold once a
// path crosses a symlinked directory (§8 scenario 3).
func (m *Mem) realPath(path canonpath.Path) canonpath.Path {
	components := path.Components()
	if len(components) == 0 {
		return path
	}

	resolved := canonpath.WithComponents(path.Type(), nil)
	for _, comp := range components[:len(components)-1] {
		resolved = resolved.Extend(comp)

		for hop := 0; hop < maxPrefixHops; hop++ {
			l, ok := m.links[resolved.String()]
			if !ok || l.kind == NotASymlinkButFile {
				break
			}
			target, isAbsolute, err := m.readTargetLocked(resolved)
			if err != nil {
				break
			}
			if isAbsolute {
				t, err := canonpath.Canonicalize(target)
				if err != nil {
					break
				}
				resolved = t
				continue
			}
			t, err := canonpath.Canonicalize(target)
			if err != nil {
				break
			}
			spliced := resolved.Parent()
			for _, c := range t.Components() {
				spliced = spliced.Extend(c)
			}
			resolved = spliced
		}
	}

	return resolved.Extend(components[len(components)-1])
}

func (m *Mem) readTargetLocked(path canonpath.Path) (string, bool, error) {
	l, ok := m.links[path.String()]
	if !ok {
		return "", false, errNotRegistered
	}
	return l.target, l.isAbsolute, nil
}

func (m *Mem) Classify(path canonpath.Path) (domain.ReparseKind, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.links[m.realPath(path).String()]
	if !ok {
		return domain.NotReparsePoint, nil
	}
	if l.kind == NotASymlinkButFile {
		return domain.DirectorySymlink, nil
	}
	return l.kind, nil
}

func (m *Mem) ReadTarget(path canonpath.Path) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.readTargetLocked(m.realPath(path))
}

func (m *Mem) Stat(path canonpath.Path) domain.FileReadContext {
	m.mu.RLock()
	defer m.mu.RUnlock()

	real := m.realPath(path)

	if _, ok := m.links[real.String()]; ok {
		return domain.FileReadContext{Existence: domain.Existent}
	}

	fi, err := m.fs.Stat(real.String())
	if err != nil {
		return domain.FileReadContext{Existence: domain.Nonexistent}
	}
	return domain.FileReadContext{
		Existence:       domain.Existent,
		OpenedDirectory: fi.IsDir(),
		ModTime:         m.modTimes[real.String()],
	}
}
