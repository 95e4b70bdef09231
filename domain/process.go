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

// ProcessRecordIface is the per-pid state the Process Registry owns (§3,
// §4.5): identity, the shared Manifest, the process-tree-size counter, the
// per-process report dedup set, and the last-looked-up-path fallback slot.
type ProcessRecordIface interface {
	ProcessID() uint32
	RootProcessID() uint32
	ClientID() uint64
	PipID() uint64
	Manifest() ManifestIface

	// TreeCount is the live count of records referencing this record's
	// root, including the root itself.
	TreeCount() int32

	// DedupCheckAndInsert performs the check-then-insert atomically: it
	// returns true ("already reported") if (op, path) was already in the
	// set, and inserts it otherwise. The set is append-only for the life
	// of the record.
	DedupCheckAndInsert(op Operation, path string) (alreadyReported bool)

	// LastLookupPath and SetLastLookupPath implement the per-thread,
	// per-record last-looked-up-path fallback from §4.5. threadID keys
	// the slot; no cross-thread locking is required because each thread
	// only ever touches its own slot.
	LastLookupPath(threadID uint64) (canonpath.Path, bool)
	SetLastLookupPath(threadID uint64, p canonpath.Path)
}

// ProcessRegistryIface is the Process Registry's external contract (§4.5).
type ProcessRegistryIface interface {
	// TrackRootProcess announces a root build step. If pid is already
	// tracked (nested clients can reuse a pid), the existing entry is
	// untracked first.
	TrackRootProcess(clientID uint64, pid uint32, pipID uint64, manifest ManifestIface) (ProcessRecordIface, error)

	// TrackChildProcess records a fork/spawn: if parentPid is tracked,
	// childPid is inserted pointing at the parent's root record and the
	// root's tree count is incremented. A ChildSpawned report is emitted.
	TrackChildProcess(childPid, parentPid uint32) error

	// HandleExec emits a ProcessExec report for a tracked pid; it does not
	// change tracking (exec does not create a new process).
	HandleExec(pid uint32, imagePath string) error

	// HandleFork is equivalent to TrackChildProcess.
	HandleFork(parentPid, childPid uint32) error

	// HandleExit emits a ProcessExit report, removes the mapping, and
	// decrements the root's tree count. When the count reaches zero, a
	// single ProcessTreeCompleted report is broadcast and the record is
	// retired.
	HandleExit(pid uint32) error

	// Lookup returns the record tracking pid, if any.
	Lookup(pid uint32) (ProcessRecordIface, bool)

	// Snapshot walks the live pid table without mutating it, for tests
	// and diagnostics.
	Snapshot() []ProcessRecordIface
}
