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

// Package canonpath normalizes raw OS paths reported by the hook layer into
// a single comparable form, without touching the filesystem. Two canonical
// paths are equal iff they denote the same location under the sandbox's
// equality rules (case-folded for Windows-style paths, exact match for
// POSIX-style ones).
package canonpath

import (
	"errors"
	"strings"
)

// PathType tags which device-prefix syntax (if any) a raw path carried.
type PathType int

const (
	// PlainPath is an ordinary POSIX-style absolute or relative path.
	PlainPath PathType = iota
	// DeviceNt is a Windows NT-namespace path ("\??\", "\Device\...").
	DeviceNt
	// DeviceLocal is a Windows DOS-device path ("\\.\C:\...", "\\?\C:\...").
	DeviceLocal
)

// ErrInvalidSyntax is returned by Canonicalize for malformed input: empty
// paths, unrecognized device syntax, malformed UNC prefixes, or a ".."
// that would escape the root of its path type.
var ErrInvalidSyntax = errors.New("canonpath: invalid path syntax")

// Path is an immutable, already-normalized path. It never touches the
// filesystem and never follows symlinks — that is the Symlink Resolver's
// job, layered on top of Path values.
type Path struct {
	pathType   PathType
	components []string
	// absolute records whether the original raw path was rooted; canonical
	// paths that escape below their root are rejected at construction time,
	// so this is purely informational for String().
	absolute bool
}

// windowsStyle reports whether path comparisons for this path should
// case-fold (Windows-style) or be exact (POSIX-style). Device-prefixed
// paths are always Windows-style; plain paths are POSIX-style, matching
// the host conventions this core is embedded in (the hook layer tags
// Windows paths with a device prefix before they reach here).
func (p Path) windowsStyle() bool {
	return p.pathType != PlainPath
}

// Type returns the path's origin-prefix classification.
func (p Path) Type() PathType {
	return p.pathType
}

// Components returns the path's normalized segments, root-to-leaf. Callers
// must not mutate the returned slice.
func (p Path) Components() []string {
	return p.components
}

// IsRoot reports whether the path denotes the root of its type.
func (p Path) IsRoot() bool {
	return len(p.components) == 0
}

// Last returns the final path component without re-parsing the path.
func (p Path) Last() string {
	if len(p.components) == 0 {
		return ""
	}
	return p.components[len(p.components)-1]
}

// Parent returns the canonical path one component up. Calling Parent on
// the root returns the root itself.
func (p Path) Parent() Path {
	if len(p.components) == 0 {
		return p
	}
	parent := make([]string, len(p.components)-1)
	copy(parent, p.components[:len(p.components)-1])
	return Path{pathType: p.pathType, components: parent, absolute: p.absolute}
}

// Extend appends a child component to path without reallocating the
// existing component slice's backing array beyond what append needs.
func (p Path) Extend(child string) Path {
	components := make([]string, len(p.components), len(p.components)+1)
	copy(components, p.components)
	components = append(components, child)
	return Path{pathType: p.pathType, components: components, absolute: p.absolute}
}

// WithComponents rebuilds a path of the same type from a literal component
// slice, used by the symlink resolver when splicing a reparse-point target
// into a path prefix.
func WithComponents(pathType PathType, components []string) Path {
	out := make([]string, len(components))
	copy(out, components)
	return Path{pathType: pathType, components: out, absolute: true}
}

// String renders the canonical path back into a slash-separated form.
func (p Path) String() string {
	prefix := ""
	switch p.pathType {
	case PlainPath:
		if p.absolute {
			prefix = "/"
		}
	case DeviceNt:
		prefix = `\??\`
	case DeviceLocal:
		prefix = `\\.\`
	}
	if len(p.components) == 0 {
		if prefix != "" {
			return prefix
		}
		return "/"
	}
	sep := "/"
	if p.windowsStyle() {
		sep = `\`
	}
	return prefix + strings.Join(p.components, sep)
}

// Equal implements the sandbox's path-equality rule: case-insensitive
// component comparison for Windows-style paths, exact for POSIX-style.
func (p Path) Equal(other Path) bool {
	if p.pathType != other.pathType || len(p.components) != len(other.components) {
		return false
	}
	fold := p.windowsStyle()
	for i := range p.components {
		if fold {
			if !strings.EqualFold(p.components[i], other.components[i]) {
				return false
			}
		} else if p.components[i] != other.components[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix's components are a leading run of p's
// components, honoring the same case-folding rule as Equal.
func (p Path) HasPrefix(prefix Path) bool {
	if p.pathType != prefix.pathType || len(prefix.components) > len(p.components) {
		return false
	}
	fold := p.windowsStyle()
	for i := range prefix.components {
		if fold {
			if !strings.EqualFold(p.components[i], prefix.components[i]) {
				return false
			}
		} else if p.components[i] != prefix.components[i] {
			return false
		}
	}
	return true
}

var ntDevicePrefixes = []string{`\??\`, `\Device\`}
var localDevicePrefixes = []string{`\\.\`, `\\?\`}

// Canonicalize strips recognized device prefixes, resolves "." and ".."
// segments against the prior segments (without consulting the filesystem),
// normalizes separators, and rejects ".." that would escape the path's
// root. It never follows symlinks.
func Canonicalize(raw string) (Path, error) {
	if raw == "" {
		return Path{}, ErrInvalidSyntax
	}

	pathType := PlainPath
	body := raw

	switch {
	case hasAnyPrefix(raw, ntDevicePrefixes):
		pathType = DeviceNt
		body = trimAnyPrefix(raw, ntDevicePrefixes)
	case hasAnyPrefix(raw, localDevicePrefixes):
		pathType = DeviceLocal
		body = trimAnyPrefix(raw, localDevicePrefixes)
	case strings.HasPrefix(raw, `\\`) && !strings.HasPrefix(raw, `\\.\`) && !strings.HasPrefix(raw, `\\?\`):
		// Unrecognized UNC-ish syntax we don't special-case: reject rather
		// than silently mis-resolve it.
		return Path{}, ErrInvalidSyntax
	}

	body = strings.ReplaceAll(body, `\`, "/")
	absolute := strings.HasPrefix(body, "/") || pathType != PlainPath

	var components []string
	for _, seg := range strings.Split(body, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(components) == 0 {
				// ".." at the root of its type escapes — reject rather than
				// clamp, so callers never mistake an escape attempt for a
				// no-op.
				if absolute {
					return Path{}, ErrInvalidSyntax
				}
				// Relative paths may legitimately walk above their starting
				// component; keep the ".." marker itself since there is no
				// root to resolve it against.
				components = append(components, "..")
				continue
			}
			if components[len(components)-1] == ".." {
				components = append(components, "..")
				continue
			}
			components = components[:len(components)-1]
		default:
			components = append(components, seg)
		}
	}

	return Path{pathType: pathType, components: components, absolute: absolute}, nil
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func trimAnyPrefix(s string, prefixes []string) string {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return strings.TrimPrefix(s, p)
		}
	}
	return s
}
