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

// PolicyTreeIface is the Policy Tree's external contract (§4.2): map path
// prefixes to access rules, and answer "policy for path P" without ever
// failing at lookup time.
type PolicyTreeIface interface {
	// Lookup walks the tree component-by-component and returns a cursor
	// pointing at the deepest node reached. An unreachable path returns
	// the root cursor with Matched=false, which carries a minimally
	// permissive default policy — lookup never errors.
	Lookup(path canonpath.Path) PolicySearchCursor
}

// ManifestEntry is one path-prefix rule from the external manifest
// structure (§4.2's "manifest bytes"), already decoded by the out-of-scope
// manifest parser into the abstract shape this core consumes.
type ManifestEntry struct {
	Path       string
	Policy     AccessPolicy
	ScopeFlags ScopeFlags
}

// ManifestDescriptor is the abstract manifest structure §4.2's build()
// consumes: the per-prefix rule set plus the global scope flags that are
// not inherited per-subtree (FailUnexpectedAccesses, ReportAnyAccess, …).
type ManifestDescriptor struct {
	Entries     []ManifestEntry
	GlobalFlags ScopeFlags
}
