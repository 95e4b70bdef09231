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

package policy

import (
	"strings"

	"github.com/nestybox/sandbox-core/canonpath"
	"github.com/nestybox/sandbox-core/domain"
)

// Tree is an immutable Policy Tree (§4.2). The zero value is not usable;
// construct one with Build.
type Tree struct {
	root *node
}

var _ domain.PolicyTreeIface = (*Tree)(nil)

// Build constructs a Policy Tree from the manifest's decoded entry list.
// Manifest parsing itself (the wire format) is out of scope (§1); callers
// hand in the already-decoded domain.ManifestDescriptor.
func Build(entries []domain.ManifestEntry) (*Tree, error) {
	t := &Tree{root: newNode()}

	for _, e := range entries {
		p, err := canonpath.Canonicalize(e.Path)
		if err != nil {
			return nil, err
		}

		cur := t.root
		for _, comp := range p.Components() {
			cur = cur.childFor(componentKey(p.Type(), comp))
		}
		cur.policy = e.Policy
		cur.scope = e.ScopeFlags
	}

	return t, nil
}

// componentKey returns the byte key used to index a child: case-folded
// for Windows-style paths, exact for POSIX-style ones.
func componentKey(t canonpath.PathType, comp string) []byte {
	if t != canonpath.PlainPath {
		return []byte(strings.ToLower(comp))
	}
	return []byte(comp)
}

// Lookup walks the tree component-by-component. Lookup never fails: an
// unreachable path simply returns the root cursor with Matched=false and
// whatever policy/scope the deepest reached ancestor carries (§4.2).
func (t *Tree) Lookup(path canonpath.Path) domain.PolicySearchCursor {
	cur := t.root
	scope := cur.scope
	depth := 0

	components := path.Components()
	for _, comp := range components {
		child, ok := cur.get(componentKey(path.Type(), comp))
		if !ok {
			break
		}
		cur = child
		scope = scope.Union(cur.scope)
		depth++
	}

	return domain.PolicySearchCursor{
		Matched:         depth == len(components),
		EffectivePolicy: cur.policy,
		ScopeFlags:      scope,
		MatchedDepth:    depth,
	}
}
