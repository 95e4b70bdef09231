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

import "time"

// VnodeKind distinguishes what on_vnode_create is creating.
type VnodeKind int

const (
	VnodeFile VnodeKind = iota
	VnodeDirectory
	VnodeSymlink
)

// FileOp is the closed set of rename/link/delete-family operations
// dispatched through on_file_op.
type FileOp int

const (
	OpRename FileOp = iota
	OpLink
	OpExchange
	OpDelete
	OpOpen
	OpClose
)

// Decision is what a hook callback returns to the OS-specific glue.
type Decision int

const (
	DecisionAllow Decision = iota
	DecisionDeny
)

// VnodeAccessResult is on_vnode_access's return value: the allow/deny
// decision plus the timestamp normalization outcome from §6. OS-specific
// glue applies NormalizedModTime to the attribute struct it returns to
// the caller when it is non-zero; the zero value means the real,
// observed modification time should pass through unchanged.
type VnodeAccessResult struct {
	Decision          Decision
	NormalizedModTime time.Time
}

// HookEvent is a tagged union of every inbound event the OS-specific glue
// can raise (§6, §9). Re-architected from the source's class hierarchy of
// AccessHandler/FileOpHandler/VNodeHandler into free-standing variants
// consumed by a single dispatcher function, and passed as an explicit
// context value rather than via a module-level dispatcher pointer.
type HookEvent struct {
	Kind HookKind

	Pid       uint32
	ParentPid uint32 // Fork/Exec
	Path      string
	DstPath   string // rename/link/copy destination
	Requested RequestedAccess
	VnodeKind VnodeKind
	FileOp    FileOp
	Modified  bool // file-op "modified" flag (e.g. rename vs no-op)
}

// HookKind tags which inbound event a HookEvent carries.
type HookKind int

const (
	HookLookup HookKind = iota
	HookReadlink
	HookExec
	HookFork
	HookExit
	HookVnodeCreate
	HookVnodeAccess
	HookFileOp
)

// HookDispatchIface is the single entry point OS-specific glue calls into,
// one function per inbound event rather than a class hierarchy of
// per-kind handler objects.
type HookDispatchIface interface {
	OnLookup(pid uint32, absolutePath string)
	OnReadlink(pid uint32, path string) Decision
	OnExec(pid uint32, imagePath string)
	OnFork(parentPid, childPid uint32)
	OnExit(pid uint32)
	OnVnodeCreate(pid uint32, path string, kind VnodeKind) Decision
	OnVnodeAccess(pid uint32, path string, requested RequestedAccess) VnodeAccessResult
	OnFileOp(pid uint32, op FileOp, src, dst string, modified bool) Decision
}
