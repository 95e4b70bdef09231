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
	"github.com/nestybox/sandbox-core/canonpath"
	"github.com/nestybox/sandbox-core/domain"
)

// Manifest is the immutable, shared policy a decoded manifest produces: a
// built Policy Tree plus the global scope flags that apply regardless of
// path (§6's FailUnexpectedAccesses and friends).
type Manifest struct {
	tree        *Tree
	globalFlags domain.ScopeFlags
}

var _ domain.ManifestIface = (*Manifest)(nil)

// BuildManifest decodes a domain.ManifestDescriptor into a queryable
// Manifest. The wire format / parser that produces the descriptor is out
// of scope (§1); this is the boundary the rest of the core sits behind.
func BuildManifest(desc domain.ManifestDescriptor) (*Manifest, error) {
	tree, err := Build(desc.Entries)
	if err != nil {
		return nil, err
	}
	return &Manifest{tree: tree, globalFlags: desc.GlobalFlags}, nil
}

func (m *Manifest) Lookup(path canonpath.Path) domain.PolicySearchCursor {
	cursor := m.tree.Lookup(path)
	cursor.ScopeFlags = cursor.ScopeFlags.Union(m.globalFlags)
	return cursor
}

func (m *Manifest) GlobalFlags() domain.ScopeFlags {
	return m.globalFlags
}
