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

package domain

import "github.com/nestybox/sandbox-core/canonpath"

// ReparseKind distinguishes the two reparse-point shapes the resolver must
// treat differently when splicing a relative target into a path prefix
// (§4.4): a directory symlink's prefix is substituted with its target
// before the splice; a mount point / junction's prefix is left intact.
type ReparseKind int

const (
	NotReparsePoint ReparseKind = iota
	DirectorySymlink
	MountPoint
)

// FileFactsIface is the OS primitive the Hook Dispatch layer provides to
// the Symlink Resolver for reading reparse-point targets and existence
// facts, kept behind an interface so tests can supply an in-memory
// filesystem (see fsfacts.Mem) instead of touching the real OS.
type FileFactsIface interface {
	// Classify reports whether path is a reparse point and, if so, which
	// kind. A non-existent path is reported as NotReparsePoint with
	// Existence set accordingly in a follow-up Stat call.
	Classify(path canonpath.Path) (ReparseKind, error)

	// ReadTarget reads a reparse point's target. For a relative target,
	// the returned string is relative and isAbsolute is false.
	ReadTarget(path canonpath.Path) (target string, isAbsolute bool, err error)

	// Stat reports the read-context facts Access Check needs.
	Stat(path canonpath.Path) FileReadContext
}

// SymlinkResolverIface is the Symlink Resolver's external contract (§4.4).
type SymlinkResolverIface interface {
	// ResolveChain expands a path into the ordered list of paths that
	// must each be policy-checked: it begins with start and ends with
	// the final non-reparse-point path. Exceeding the depth limit (§4.4)
	// or failing to classify a path or read a target returns
	// ErrReparseResolutionFailed and no chain.
	ResolveChain(start canonpath.Path) ([]canonpath.Path, error)
}
