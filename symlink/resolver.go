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

// Package symlink implements the Symlink Resolver (§4.4): expanding a
// reparse-point path into the ordered chain of paths a build tool
// transitively reads when it opens a symbolic link, walking a path
// prefix component-by-component and applying a different substitution
// rule depending on what kind of reparse point it hits.
package symlink

import (
	"errors"

	"github.com/nestybox/sandbox-core/canonpath"
	"github.com/nestybox/sandbox-core/domain"
)

// maxChainDepth bounds chain-resolution length (§4.4 requires >= 32);
// cycles are caught as depth overflow rather than with a separate
// visited-set.
const maxChainDepth = 32

// errDepthExceeded is the sentinel cause wrapped into
// ErrReparseResolutionFailed when a chain exceeds maxChainDepth; cycles
// manifest identically, by design (§4.4).
var errDepthExceeded = errors.New("symlink chain exceeded maximum depth")

// Resolver is the production SymlinkResolverIface, backed by an OS facts
// primitive (real or in-memory, see fsfacts).
type Resolver struct {
	facts domain.FileFactsIface
}

var _ domain.SymlinkResolverIface = (*Resolver)(nil)

// New returns a Resolver that reads reparse-point facts through facts.
func New(facts domain.FileFactsIface) *Resolver {
	return &Resolver{facts: facts}
}

// ResolveChain implements §4.4's contract. Each iteration has two
// distinct steps, mirroring what a real kernel's pathname resolution does
// for free and what this resolver must do explicitly: first, materialize
// current's *own* canonical form by substituting any directory-symlink
// prefix component (a junction prefix is left exactly as named — §4.4's
// mandatory distinction, scenarios 3 vs 4 in §8); if that substitution
// actually changed the path, the materialized form is itself a chain
// entry. Second, classify the (now prefix-resolved) path's own final
// component and, if it is itself a reparse point, splice in its target.
func (r *Resolver) ResolveChain(start canonpath.Path) ([]canonpath.Path, error) {
	chain := []canonpath.Path{start}
	current := start

	for depth := 0; depth < maxChainDepth; depth++ {
		prefix, err := r.resolvedPrefix(current.Parent())
		if err != nil {
			return nil, err
		}

		materialized := prefix.Extend(current.Last())
		if !materialized.Equal(current) {
			chain = append(chain, materialized)
			current = materialized
		}

		kind, err := r.facts.Classify(current)
		if err != nil {
			return nil, domain.ErrReparseResolutionFailed(current.String(), err)
		}
		if kind == domain.NotReparsePoint {
			return chain, nil
		}

		target, isAbsolute, err := r.facts.ReadTarget(current)
		if err != nil {
			return nil, domain.ErrReparseResolutionFailed(current.String(), err)
		}

		var next canonpath.Path
		if isAbsolute {
			next, err = canonpath.Canonicalize(target)
		} else {
			next, err = recanonicalize(prefix, target)
		}
		if err != nil {
			return nil, err
		}

		chain = append(chain, next)
		current = next
	}

	return nil, domain.ErrReparseResolutionFailed(current.String(), errDepthExceeded)
}

// resolvedPrefix walks parent component-by-component, substituting any
// directory-symlink component with its own (recursively resolved) final
// target. Mount-point components are passed through unchanged.
func (r *Resolver) resolvedPrefix(parent canonpath.Path) (canonpath.Path, error) {
	resolved := canonpath.WithComponents(parent.Type(), nil)
	walked := canonpath.WithComponents(parent.Type(), nil)

	for _, comp := range parent.Components() {
		walked = walked.Extend(comp)

		kind, err := r.facts.Classify(walked)
		if err != nil {
			return canonpath.Path{}, domain.ErrReparseResolutionFailed(walked.String(), err)
		}

		if kind != domain.DirectorySymlink {
			resolved = resolved.Extend(comp)
			walked = resolved
			continue
		}

		target, isAbsolute, err := r.facts.ReadTarget(walked)
		if err != nil {
			return canonpath.Path{}, domain.ErrReparseResolutionFailed(walked.String(), err)
		}

		var substituted canonpath.Path
		if isAbsolute {
			substituted, err = canonpath.Canonicalize(target)
		} else {
			substituted, err = recanonicalize(resolved, target)
		}
		if err != nil {
			return canonpath.Path{}, err
		}

		resolved = substituted
		walked = substituted
	}

	return resolved, nil
}

// recanonicalize joins prefix and a relative tail by string concatenation
// and re-parses the result, so ".." segments in tail are resolved against
// prefix's own components rather than appended literally.
func recanonicalize(prefix canonpath.Path, tail string) (canonpath.Path, error) {
	sep := "/"
	if prefix.Type() != canonpath.PlainPath {
		sep = `\`
	}
	return canonpath.Canonicalize(prefix.String() + sep + tail)
}
