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

// AccessPolicy is a set of access grants and reporting obligations that
// apply to one path-tree node.
type AccessPolicy uint32

const (
	AllowRead AccessPolicy = 1 << iota
	AllowWrite
	AllowReadIfNonexistent
	AllowCreateDirectory
	AllowSymlinkCreation
	ReportAccess
	ReportAccessIfExistent
	ReportAccessIfNonexistent
	Untracked
)

// Has reports whether p grants every bit of want.
func (p AccessPolicy) Has(want AccessPolicy) bool {
	return p&want == want
}

// Union combines two policies into the set of grants and obligations of
// both.
func (p AccessPolicy) Union(other AccessPolicy) AccessPolicy {
	return p | other
}

// ScopeFlags are per-node-subtree toggles (inherited by descendants) plus
// the handful of global configuration knobs in §6's table. They live on
// Policy Tree nodes and on the Manifest as a whole.
type ScopeFlags uint32

const (
	ReportDirectoryEnumeration ScopeFlags = 1 << iota
	AllowRealInputTimestamps
	ForceReadOnlyForReadWrite
	UseExtraThreadToDrain

	FailUnexpectedAccesses
	IgnoreReparsePoints
	IgnoreNonCreateFileReparsePoints
	MonitorNtCreateFile
	MonitorZwCreateOpenQueryFile
	IgnoreZwRenameFileInformation
	IgnoreZwOtherFileInformation
	NormalizeReadTimestamps
	DirectoryCreationAccessEnforcement
	ReportAnyAccess
	UseExtraThreadToDrainNtClose
)

// Has reports whether f includes every bit of want.
func (f ScopeFlags) Has(want ScopeFlags) bool {
	return f&want == want
}

// Union combines two scope-flag sets (node-local flags inherited from an
// ancestor, or node flags unioned with the Manifest's global flags).
func (f ScopeFlags) Union(other ScopeFlags) ScopeFlags {
	return f | other
}

// PolicySearchCursor is the result of walking the Policy Tree for one
// canonical path: the deepest node reached, whether the full path matched
// it, and the effective policy/scope-flags to apply to the searched path
// (local policy unioned with every ancestor's scope flags, per §3).
type PolicySearchCursor struct {
	Matched        bool
	EffectivePolicy AccessPolicy
	ScopeFlags     ScopeFlags
	// MatchedDepth is the component depth actually present in the tree;
	// MatchedDepth <= the depth of the path that was looked up.
	MatchedDepth int
}

// ManifestIface is the immutable, shared policy carried by a Manifest: the
// Policy Tree plus the handful of global scope flags in §6 that are not
// per-subtree (e.g. FailUnexpectedAccesses).
type ManifestIface interface {
	Lookup(path canonpath.Path) PolicySearchCursor
	GlobalFlags() ScopeFlags
}
