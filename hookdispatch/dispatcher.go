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

// Package hookdispatch wires the Process Registry, Symlink Resolver,
// Policy Tree and Access Check together behind the single inbound
// surface OS-specific glue calls into (§6, §9): one dispatcher function
// per hook kind, operating on an explicit *Dispatcher value rather than
// a module-level pointer, replacing the source's
// AccessHandler/FileOpHandler/VNodeHandler class hierarchy and its
// global dispatcher pointer.
package hookdispatch

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/nestybox/sandbox-core/access"
	"github.com/nestybox/sandbox-core/canonpath"
	"github.com/nestybox/sandbox-core/domain"
	"github.com/nestybox/sandbox-core/logfmt"
)

// Dispatcher is the production HookDispatchIface.
type Dispatcher struct {
	registry domain.ProcessRegistryIface
	resolver domain.SymlinkResolverIface
	facts    domain.FileFactsIface
	reports  domain.ReportPipelineIface
}

var _ domain.HookDispatchIface = (*Dispatcher)(nil)

// New returns a Dispatcher wired to the given collaborators.
func New(registry domain.ProcessRegistryIface, resolver domain.SymlinkResolverIface, facts domain.FileFactsIface, reports domain.ReportPipelineIface) *Dispatcher {
	return &Dispatcher{registry: registry, resolver: resolver, facts: facts, reports: reports}
}

// threadID identifies the calling OS thread for the last-looked-up-path
// slot (§4.5). Hook callbacks arrive from OS-specific glue synchronously
// on the OS thread that triggered the filesystem operation, so the
// kernel thread id genuinely distinguishes callers the way the source's
// thread-local dictionary did.
func threadID() uint64 {
	return uint64(unix.Gettid())
}

func (d *Dispatcher) OnLookup(pid uint32, absolutePath string) {
	rec, ok := d.registry.Lookup(pid)
	if !ok {
		return
	}
	p, err := canonpath.Canonicalize(absolutePath)
	if err != nil {
		return
	}
	rec.SetLastLookupPath(threadID(), p)
}

func (d *Dispatcher) OnExec(pid uint32, imagePath string) {
	if err := d.registry.HandleExec(pid, imagePath); err != nil {
		logrus.Warnf("hookdispatch: HandleExec(%s) failed: %v", logfmt.Pid(pid), err)
	}
}

func (d *Dispatcher) OnFork(parentPid, childPid uint32) {
	if err := d.registry.HandleFork(parentPid, childPid); err != nil {
		logrus.Warnf("hookdispatch: HandleFork(%s -> %s) failed: %v",
			logfmt.Pid(parentPid), logfmt.Pid(childPid), err)
	}
}

func (d *Dispatcher) OnExit(pid uint32) {
	if err := d.registry.HandleExit(pid); err != nil {
		logrus.Warnf("hookdispatch: HandleExit(%s) failed: %v", logfmt.Pid(pid), err)
	}
}

// evalChain resolves path's reparse-point chain (unless the manifest
// disables it) and runs evaluate against every entry, combining the
// results per §4.4's "a single Deny anywhere in the chain denies the
// operation; reports from every step are emitted."
func (d *Dispatcher) evalChain(rec domain.ProcessRecordIface, rawPath string, evaluate func(cursor domain.PolicySearchCursor, path canonpath.Path) domain.AccessCheckResult) (domain.AccessCheckResult, []canonpath.Path) {
	p, err := canonpath.Canonicalize(rawPath)
	if err != nil {
		return domain.AccessCheckResult{Validity: domain.PathSyntaxInvalid, Action: domain.Deny}, nil
	}

	manifest := rec.Manifest()
	globalFlags := manifest.GlobalFlags()

	chain := []canonpath.Path{p}
	if !globalFlags.Has(domain.IgnoreReparsePoints) {
		resolved, err := d.resolver.ResolveChain(p)
		if err == nil {
			chain = resolved
		}
		// A resolution failure leaves the single-entry chain in place:
		// only the start path is checked, with an ordinary Access Check
		// result. The failure itself is not reported, and the result is
		// not marked CannotDeterminePolicy.
	}

	result := domain.IdentityResult
	for _, step := range chain {
		cursor := manifest.Lookup(step)
		result = result.Combine(evaluate(cursor, step))
	}
	return result, chain
}

func (d *Dispatcher) emitAccessReport(rec domain.ProcessRecordIface, op domain.Operation, pid uint32, path string, requested domain.RequestedAccess, result domain.AccessCheckResult) {
	if result.ReportLevel == domain.Ignore {
		return
	}
	if rec.DedupCheckAndInsert(op, path) {
		return
	}

	status := domain.StatusAllowed
	switch {
	case result.Validity != domain.Valid:
		status = domain.StatusCannotDeterminePolicy
	case result.Action == domain.Deny:
		status = domain.StatusDenied
	}

	_, err := d.reports.Emit(rec.ClientID(), domain.Report{
		Operation:      op,
		Pid:            pid,
		RootPid:        rec.RootProcessID(),
		PipID:          rec.PipID(),
		Requested:      requested,
		Status:         status,
		ReportExplicit: result.ReportLevel == domain.ReportExplicit,
		Path:           path,
	}, domain.RoundRobin)
	if err != nil {
		logrus.Warnf("hookdispatch: report emit failed for pid %s: %v", logfmt.Pid(pid), err)
	}
}

// decide turns an AccessCheckResult into the hook's return value: Warn
// still allows the call through (it reports but does not block), only
// Deny blocks it. An untracked process or a lookup failure fails open,
// per §5's cancellation/no-lock policy and §8's boundary behaviors.
func decide(result domain.AccessCheckResult) domain.Decision {
	if result.Action == domain.Deny {
		return domain.DecisionDeny
	}
	return domain.DecisionAllow
}

func (d *Dispatcher) OnReadlink(pid uint32, path string) domain.Decision {
	rec, ok := d.registry.Lookup(pid)
	if !ok {
		return domain.DecisionAllow
	}

	result, chain := d.evalChain(rec, path, func(cursor domain.PolicySearchCursor, step canonpath.Path) domain.AccessCheckResult {
		return access.CheckRead(cursor, domain.AccessRead, d.facts.Stat(step))
	})
	for _, step := range chain {
		d.emitAccessReport(rec, domain.OpReparsePointTarget, pid, step.String(), domain.AccessRead, result)
	}
	return decide(result)
}

func (d *Dispatcher) vnodeCreateOperation(kind domain.VnodeKind) domain.Operation {
	switch kind {
	case domain.VnodeDirectory:
		return domain.OpDirCreate
	case domain.VnodeSymlink:
		return domain.OpSymlinkCreate
	default:
		return domain.OpFileWrite
	}
}

func (d *Dispatcher) OnVnodeCreate(pid uint32, path string, kind domain.VnodeKind) domain.Decision {
	rec, ok := d.registry.Lookup(pid)
	if !ok {
		return domain.DecisionAllow
	}

	result, chain := d.evalChain(rec, path, func(cursor domain.PolicySearchCursor, step canonpath.Path) domain.AccessCheckResult {
		switch kind {
		case domain.VnodeDirectory:
			return access.CheckCreateDirectory(cursor, d.facts.Stat(step))
		case domain.VnodeSymlink:
			return access.CheckSymlinkCreation(cursor)
		default:
			return access.CheckWrite(cursor)
		}
	})

	op := d.vnodeCreateOperation(kind)
	last := path
	if len(chain) > 0 {
		last = chain[len(chain)-1].String()
	}
	d.emitAccessReport(rec, op, pid, last, domain.AccessWrite, result)
	return decide(result)
}

// readRequestMask isolates the mutually exclusive read-access subtype a
// caller requested (§4.3's check_read discriminant).
const readRequestMask = domain.AccessProbe | domain.AccessRead | domain.AccessEnumerate | domain.AccessEnumerationProbe

func checkVnodeAccess(cursor domain.PolicySearchCursor, requested domain.RequestedAccess, ctx domain.FileReadContext) domain.AccessCheckResult {
	if rewritten, ok := access.ApplyForceReadOnlyRewrite(cursor, requested); ok {
		return rewritten
	}

	result := domain.IdentityResult
	if requested.Has(domain.AccessWrite) {
		result = result.Combine(access.CheckWrite(cursor))
	}
	if readKind := requested & readRequestMask; readKind != domain.AccessNone {
		result = result.Combine(access.CheckRead(cursor, readKind, ctx))
	}
	return result
}

func (d *Dispatcher) OnVnodeAccess(pid uint32, path string, requested domain.RequestedAccess) domain.VnodeAccessResult {
	rec, ok := d.registry.Lookup(pid)
	if !ok {
		return domain.VnodeAccessResult{Decision: domain.DecisionAllow}
	}

	result, chain := d.evalChain(rec, path, func(cursor domain.PolicySearchCursor, step canonpath.Path) domain.AccessCheckResult {
		return checkVnodeAccess(cursor, requested, d.facts.Stat(step))
	})

	// A Deny on the vnode-derived path gets one retry against the
	// record's last-looked-up path (§4.5's hard-link compensation); only
	// a second denial is final.
	if result.Action == domain.Deny {
		if fallback, ok := rec.LastLookupPath(threadID()); ok {
			fallbackCursor := rec.Manifest().Lookup(fallback)
			fallbackResult := checkVnodeAccess(fallbackCursor, requested, d.facts.Stat(fallback))
			if fallbackResult.Action != domain.Deny {
				result = fallbackResult
			}
		}
	}

	op := domain.OpFileRead
	if requested.Has(domain.AccessWrite) {
		op = domain.OpFileWrite
	} else if requested.Has(domain.AccessProbe) || requested.Has(domain.AccessEnumerationProbe) {
		op = domain.OpFileProbe
	} else if requested.Has(domain.AccessEnumerate) {
		op = domain.OpFileEnumerate
	}
	if result.Rewritten {
		op = domain.OpChangedReadWriteToReadAccess
	}

	last := path
	if len(chain) > 0 {
		last = chain[len(chain)-1].String()
	}
	d.emitAccessReport(rec, op, pid, last, requested, result)
	return domain.VnodeAccessResult{Decision: decide(result), NormalizedModTime: result.NormalizedModTime}
}

func (d *Dispatcher) fileOpOperations(op domain.FileOp) (src, dst domain.Operation) {
	switch op {
	case domain.OpRename:
		return domain.OpMoveSource, domain.OpMoveDest
	case domain.OpLink:
		return domain.OpLinkSource, domain.OpLinkDest
	case domain.OpExchange:
		return domain.OpMoveSource, domain.OpMoveDest
	case domain.OpDelete:
		return domain.OpFileDelete, domain.OpFileDelete
	case domain.OpOpen:
		return domain.OpFileOpen, domain.OpFileOpen
	default:
		return domain.OpFileOpen, domain.OpFileOpen
	}
}

func (d *Dispatcher) OnFileOp(pid uint32, op domain.FileOp, src, dst string, modified bool) domain.Decision {
	rec, ok := d.registry.Lookup(pid)
	if !ok {
		return domain.DecisionAllow
	}

	if op == domain.OpClose {
		// Informational; NtClose batching (UseExtraThreadToDrainNtClose)
		// is an OS-glue scheduling concern, not a policy decision.
		return domain.DecisionAllow
	}

	srcOp, dstOp := d.fileOpOperations(op)

	srcResult, srcChain := d.evalChain(rec, src, func(cursor domain.PolicySearchCursor, step canonpath.Path) domain.AccessCheckResult {
		switch op {
		case domain.OpOpen:
			return access.CheckRead(cursor, domain.AccessRead, d.facts.Stat(step))
		default:
			// Rename/exchange/delete all require write permission on the
			// source: delete(src) (§6).
			return access.CheckWrite(cursor)
		}
	})
	lastSrc := src
	if len(srcChain) > 0 {
		lastSrc = srcChain[len(srcChain)-1].String()
	}
	d.emitAccessReport(rec, srcOp, pid, lastSrc, domain.AccessWrite, srcResult)

	combined := srcResult
	if dst != "" {
		dstResult, dstChain := d.evalChain(rec, dst, func(cursor domain.PolicySearchCursor, step canonpath.Path) domain.AccessCheckResult {
			return access.CheckWrite(cursor)
		})
		lastDst := dst
		if len(dstChain) > 0 {
			lastDst = dstChain[len(dstChain)-1].String()
		}
		d.emitAccessReport(rec, dstOp, pid, lastDst, domain.AccessWrite, dstResult)
		combined = combined.Combine(dstResult)
	}

	return decide(combined)
}
