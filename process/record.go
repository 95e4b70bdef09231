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

// Package process implements the Process Registry (§4.5): a concurrent
// pid table, per-root process-tree reference counting, per-record report
// dedup, and the per-thread last-looked-up-path fallback.
package process

import (
	"sync"
	"sync/atomic"

	"github.com/nestybox/sandbox-core/canonpath"
	"github.com/nestybox/sandbox-core/domain"
)

type dedupKey struct {
	op   domain.Operation
	path string
}

// record is the concrete ProcessRecordIface. Every record — root or
// child — owns its own dedup set and last-looked-up-path slots; only the
// process-tree-size counter lives solely on the root and is reached
// through a direct pointer from every descendant, per §9's
// "reference-counted graph with forks" redesign note — shared ownership
// from leaf to root, one direction, no cycles.
type record struct {
	pid      uint32
	clientID uint64
	pipID    uint64
	manifest domain.ManifestIface

	// root is this record's own root record. For a root record, root == self.
	root *record

	// treeCount is only ever touched through the root record, via atomic
	// ops — Registry mutates it outside of r.mu on fork/exit.
	treeCount int32

	mu         sync.Mutex
	dedup      map[dedupKey]struct{}
	lastLookup map[uint64]canonpath.Path // per-thread-id slot
}

var _ domain.ProcessRecordIface = (*record)(nil)

func newRoot(clientID uint64, pid uint32, pipID uint64, manifest domain.ManifestIface) *record {
	r := &record{
		pid:        pid,
		clientID:   clientID,
		pipID:      pipID,
		manifest:   manifest,
		treeCount:  1,
		dedup:      make(map[dedupKey]struct{}),
		lastLookup: make(map[uint64]canonpath.Path),
	}
	r.root = r
	return r
}

func newChild(pid uint32, root *record) *record {
	return &record{
		pid:        pid,
		clientID:   root.clientID,
		pipID:      root.pipID,
		manifest:   root.manifest,
		root:       root,
		dedup:      make(map[dedupKey]struct{}),
		lastLookup: make(map[uint64]canonpath.Path),
	}
}

func (r *record) ProcessID() uint32              { return r.pid }
func (r *record) RootProcessID() uint32          { return r.root.pid }
func (r *record) ClientID() uint64               { return r.clientID }
func (r *record) PipID() uint64                  { return r.pipID }
func (r *record) Manifest() domain.ManifestIface { return r.manifest }

func (r *record) TreeCount() int32 {
	return atomic.LoadInt32(&r.root.treeCount)
}

// DedupCheckAndInsert is scoped to this individual record, not its tree:
// §4.5 states "each record owns a set of (operation, path) keys."
func (r *record) DedupCheckAndInsert(op domain.Operation, path string) bool {
	key := dedupKey{op: op, path: path}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, already := r.dedup[key]; already {
		return true
	}
	r.dedup[key] = struct{}{}
	return false
}

func (r *record) LastLookupPath(threadID uint64) (canonpath.Path, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.lastLookup[threadID]
	return p, ok
}

func (r *record) SetLastLookupPath(threadID uint64, p canonpath.Path) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLookup[threadID] = p
}
