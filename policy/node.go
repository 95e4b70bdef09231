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

// Package policy implements the Policy Tree (§4.2): a hierarchical
// mapping from path prefixes to access rules, built once from a decoded
// manifest and immutable thereafter. Each node indexes its children with
// an immutable radix tree for longest-prefix lookup by path.
package policy

import (
	iradix "github.com/hashicorp/go-immutable-radix"

	"github.com/nestybox/sandbox-core/domain"
)

// node is one Policy Tree node: a local policy value, scope flags that
// are inherited by every descendant, and a radix-indexed set of children
// keyed by (possibly case-folded) path component.
type node struct {
	policy   domain.AccessPolicy
	scope    domain.ScopeFlags
	children *iradix.Tree
}

func newNode() *node {
	return &node{children: iradix.New()}
}

// childFor returns the node's existing child for component key, creating
// and linking in a fresh one if absent. Only called during Build(), before
// the tree is published and shared, so mutating n.children in place (by
// swapping in the radix tree's copy-on-write successor) is safe.
func (n *node) childFor(key []byte) *node {
	if v, ok := n.children.Get(key); ok {
		return v.(*node)
	}
	fresh := newNode()
	n.children, _, _ = n.children.Insert(key, fresh)
	return fresh
}

// get looks up an existing child without creating one.
func (n *node) get(key []byte) (*node, bool) {
	v, ok := n.children.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*node), true
}
