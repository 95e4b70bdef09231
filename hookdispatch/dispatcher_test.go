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

package hookdispatch

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nestybox/sandbox-core/domain"
	"github.com/nestybox/sandbox-core/fsfacts"
	"github.com/nestybox/sandbox-core/policy"
	"github.com/nestybox/sandbox-core/process"
	"github.com/nestybox/sandbox-core/report"
	"github.com/nestybox/sandbox-core/symlink"
)

// harness bundles a freshly wired Dispatcher with its collaborators so
// tests can register facts, track processes and drain reports.
type harness struct {
	t        *testing.T
	facts    *fsfacts.Mem
	registry *process.Registry
	pipeline *report.Pipeline
	dispatch *Dispatcher
}

func newHarness(t *testing.T, desc domain.ManifestDescriptor, clientID uint64, rootPid uint32) *harness {
	t.Helper()

	manifest, err := policy.BuildManifest(desc)
	require.NoError(t, err)

	pipeline := report.New()
	require.NoError(t, pipeline.RegisterClient(clientID, 1, 8192, nil))

	registry := process.New(pipeline)
	_, err = registry.TrackRootProcess(clientID, rootPid, 7, manifest)
	require.NoError(t, err)

	facts := fsfacts.NewMem()
	resolver := symlink.New(facts)
	dispatch := New(registry, resolver, facts, pipeline)

	return &harness{t: t, facts: facts, registry: registry, pipeline: pipeline, dispatch: dispatch}
}

func (h *harness) drain(clientID uint64) []domain.Report {
	h.t.Helper()
	var out []domain.Report
	for {
		r, ok := h.pipeline.Drain(clientID, 0)
		if !ok {
			break
		}
		out = append(out, r)
	}
	return out
}

func TestOnVnodeAccessAllowsReadUnderGrantedPrefix(t *testing.T) {
	h := newHarness(t, domain.ManifestDescriptor{
		Entries: []domain.ManifestEntry{
			{Path: "/repo", Policy: domain.AllowRead},
		},
		// Allowed accesses carry Ignore unless ReportAnyAccess upgrades them.
		GlobalFlags: domain.ReportAnyAccess,
	}, 1, 100)
	h.facts.AddFile("/repo/out/f.txt")

	result := h.dispatch.OnVnodeAccess(100, "/repo/out/f.txt", domain.AccessRead)
	require.Equal(t, domain.DecisionAllow, result.Decision)

	reports := h.drain(1)
	require.Len(t, reports, 1)
	require.Equal(t, domain.StatusAllowed, reports[0].Status)
}

func TestOnVnodeAccessDeniesOutsideGrantedPrefix(t *testing.T) {
	h := newHarness(t, domain.ManifestDescriptor{
		Entries:     []domain.ManifestEntry{{Path: "/repo", Policy: domain.AllowRead}},
		GlobalFlags: domain.FailUnexpectedAccesses,
	}, 1, 100)
	h.facts.AddFile("/etc/shadow")

	result := h.dispatch.OnVnodeAccess(100, "/etc/shadow", domain.AccessRead)
	require.Equal(t, domain.DecisionDeny, result.Decision)

	reports := h.drain(1)
	require.Len(t, reports, 1)
	require.Equal(t, domain.StatusDenied, reports[0].Status)
}

func TestOnVnodeAccessUntrackedPidFailsOpen(t *testing.T) {
	h := newHarness(t, domain.ManifestDescriptor{}, 1, 100)
	result := h.dispatch.OnVnodeAccess(999, "/anything", domain.AccessRead)
	require.Equal(t, domain.DecisionAllow, result.Decision)
	require.Empty(t, h.drain(1))
}

// TestOnVnodeAccessForceReadOnlyRewriteSurfaces mirrors §8 scenario 6: a
// read+write request under a read-only-enforced, read-granted prefix is
// rewritten to read-only rather than denied, and reported explicitly.
func TestOnVnodeAccessForceReadOnlyRewriteSurfaces(t *testing.T) {
	h := newHarness(t, domain.ManifestDescriptor{
		Entries: []domain.ManifestEntry{
			{Path: "/repo", Policy: domain.AllowRead, ScopeFlags: domain.ForceReadOnlyForReadWrite},
		},
	}, 1, 100)
	h.facts.AddFile("/repo/out/f.txt")

	result := h.dispatch.OnVnodeAccess(100, "/repo/out/f.txt", domain.AccessRead.Union(domain.AccessWrite))
	require.Equal(t, domain.DecisionAllow, result.Decision)

	reports := h.drain(1)
	require.Len(t, reports, 1)
	require.True(t, reports[0].ReportExplicit)
	require.Equal(t, domain.OpChangedReadWriteToReadAccess, reports[0].Operation)
}

func TestOnVnodeAccessFallsBackToLastLookupPathOnDeny(t *testing.T) {
	// The last-looked-up-path slot is keyed by OS thread id; pin this test
	// to one thread so both hook calls land on the same slot.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	h := newHarness(t, domain.ManifestDescriptor{
		Entries:     []domain.ManifestEntry{{Path: "/repo", Policy: domain.AllowRead}},
		GlobalFlags: domain.FailUnexpectedAccesses,
	}, 1, 100)
	h.facts.AddFile("/repo/real.txt")
	h.facts.AddFile("/elsewhere/hardlink.txt")

	h.dispatch.OnLookup(100, "/repo/real.txt")

	result := h.dispatch.OnVnodeAccess(100, "/elsewhere/hardlink.txt", domain.AccessRead)
	require.Equal(t, domain.DecisionAllow, result.Decision)
}

// TestOnVnodeAccessNormalizesOldInputTimestamp covers §6: a Probe read
// under the default scope (neither flag set) against a file older than
// the canonical "new input" instant gets its timestamp pulled forward.
func TestOnVnodeAccessNormalizesOldInputTimestamp(t *testing.T) {
	h := newHarness(t, domain.ManifestDescriptor{
		Entries: []domain.ManifestEntry{{Path: "/repo", Policy: domain.AllowRead}},
	}, 1, 100)
	h.facts.AddFile("/repo/old.txt")
	h.facts.SetModTime("/repo/old.txt", domain.NewInputTimestamp.Add(-24*time.Hour))

	result := h.dispatch.OnVnodeAccess(100, "/repo/old.txt", domain.AccessProbe)
	require.Equal(t, domain.DecisionAllow, result.Decision)
	require.Equal(t, domain.NewInputTimestamp, result.NormalizedModTime)
}

// TestOnVnodeAccessLeavesNewerRealTimestampAlone covers the max(real,
// canonical) half of §6: a real timestamp already after the canonical
// instant passes through unmodified under the default scope.
func TestOnVnodeAccessLeavesNewerRealTimestampAlone(t *testing.T) {
	h := newHarness(t, domain.ManifestDescriptor{
		Entries: []domain.ManifestEntry{{Path: "/repo", Policy: domain.AllowRead}},
	}, 1, 100)
	h.facts.AddFile("/repo/new.txt")
	h.facts.SetModTime("/repo/new.txt", domain.NewInputTimestamp.Add(24*time.Hour))

	result := h.dispatch.OnVnodeAccess(100, "/repo/new.txt", domain.AccessProbe)
	require.Equal(t, domain.DecisionAllow, result.Decision)
	require.True(t, result.NormalizedModTime.IsZero())
}

// TestOnVnodeAccessNormalizeReadTimestampsForcesOverride covers the
// unconditional-override half of §6: NormalizeReadTimestamps on the
// manifest entry overrides even a real timestamp newer than
// NewInputTimestamp, which the default max(real, canonical) rule leaves
// alone.
func TestOnVnodeAccessNormalizeReadTimestampsForcesOverride(t *testing.T) {
	h := newHarness(t, domain.ManifestDescriptor{
		Entries: []domain.ManifestEntry{
			{Path: "/repo", Policy: domain.AllowRead, ScopeFlags: domain.NormalizeReadTimestamps},
		},
	}, 1, 100)
	h.facts.AddFile("/repo/new.txt")
	h.facts.SetModTime("/repo/new.txt", domain.NewInputTimestamp.Add(24*time.Hour))

	result := h.dispatch.OnVnodeAccess(100, "/repo/new.txt", domain.AccessProbe)
	require.Equal(t, domain.DecisionAllow, result.Decision)
	require.Equal(t, domain.NewInputTimestamp, result.NormalizedModTime)
}

// TestOnVnodeAccessAllowRealInputTimestampsSuppressesOverride covers §6's
// per-path gate: AllowRealInputTimestamps suppresses normalization even
// when the real timestamp is older than NewInputTimestamp.
func TestOnVnodeAccessAllowRealInputTimestampsSuppressesOverride(t *testing.T) {
	h := newHarness(t, domain.ManifestDescriptor{
		Entries: []domain.ManifestEntry{
			{Path: "/repo", Policy: domain.AllowRead, ScopeFlags: domain.AllowRealInputTimestamps},
		},
	}, 1, 100)
	h.facts.AddFile("/repo/old.txt")
	h.facts.SetModTime("/repo/old.txt", domain.NewInputTimestamp.Add(-24*time.Hour))

	result := h.dispatch.OnVnodeAccess(100, "/repo/old.txt", domain.AccessProbe)
	require.Equal(t, domain.DecisionAllow, result.Decision)
	require.True(t, result.NormalizedModTime.IsZero())
}

func TestOnVnodeCreateDirectoryGatedByPolicy(t *testing.T) {
	h := newHarness(t, domain.ManifestDescriptor{
		Entries: []domain.ManifestEntry{{Path: "/repo", Policy: domain.AllowCreateDirectory}},
	}, 1, 100)

	decision := h.dispatch.OnVnodeCreate(100, "/repo/newdir", domain.VnodeDirectory)
	require.Equal(t, domain.DecisionAllow, decision)

	// An allowed create carries Ignore report level (§4.3); only denials
	// and warnings get reported.
	require.Empty(t, h.drain(1))
}

func TestOnVnodeCreateDirectoryDeniedAlreadyExistsUnderEnforcement(t *testing.T) {
	h := newHarness(t, domain.ManifestDescriptor{
		Entries: []domain.ManifestEntry{
			{Path: "/repo", Policy: domain.AllowCreateDirectory, ScopeFlags: domain.DirectoryCreationAccessEnforcement},
		},
		GlobalFlags: domain.FailUnexpectedAccesses,
	}, 1, 100)
	h.facts.AddDir("/repo/existing")

	decision := h.dispatch.OnVnodeCreate(100, "/repo/existing", domain.VnodeDirectory)
	require.Equal(t, domain.DecisionDeny, decision)

	reports := h.drain(1)
	require.Len(t, reports, 1)
	require.Equal(t, domain.StatusDenied, reports[0].Status)
}

func TestOnVnodeCreateSymlinkDeniedWithoutGrant(t *testing.T) {
	h := newHarness(t, domain.ManifestDescriptor{
		Entries:     []domain.ManifestEntry{{Path: "/repo", Policy: domain.AllowWrite}},
		GlobalFlags: domain.FailUnexpectedAccesses,
	}, 1, 100)

	decision := h.dispatch.OnVnodeCreate(100, "/repo/link", domain.VnodeSymlink)
	require.Equal(t, domain.DecisionDeny, decision)
}

func TestOnFileOpRenameChecksBothSides(t *testing.T) {
	h := newHarness(t, domain.ManifestDescriptor{
		Entries:     []domain.ManifestEntry{{Path: "/repo", Policy: domain.AllowWrite}},
		GlobalFlags: domain.ReportAnyAccess,
	}, 1, 100)
	h.facts.AddFile("/repo/a.txt")

	decision := h.dispatch.OnFileOp(100, domain.OpRename, "/repo/a.txt", "/repo/b.txt", true)
	require.Equal(t, domain.DecisionAllow, decision)

	reports := h.drain(1)
	require.Len(t, reports, 2)
	require.Equal(t, domain.OpMoveSource, reports[0].Operation)
	require.Equal(t, domain.OpMoveDest, reports[1].Operation)
}

func TestOnFileOpDeleteDeniedWithoutWriteGrant(t *testing.T) {
	h := newHarness(t, domain.ManifestDescriptor{
		Entries:     []domain.ManifestEntry{{Path: "/repo", Policy: domain.AllowRead}},
		GlobalFlags: domain.FailUnexpectedAccesses,
	}, 1, 100)
	h.facts.AddFile("/repo/a.txt")

	decision := h.dispatch.OnFileOp(100, domain.OpDelete, "/repo/a.txt", "", false)
	require.Equal(t, domain.DecisionDeny, decision)
}

func TestOnFileOpCloseIsAlwaysAllowedAndSilent(t *testing.T) {
	h := newHarness(t, domain.ManifestDescriptor{}, 1, 100)
	decision := h.dispatch.OnFileOp(100, domain.OpClose, "/repo/a.txt", "", false)
	require.Equal(t, domain.DecisionAllow, decision)
	require.Empty(t, h.drain(1))
}

func TestOnReadlinkFollowsDirectorySymlinkPrefix(t *testing.T) {
	h := newHarness(t, domain.ManifestDescriptor{
		Entries: []domain.ManifestEntry{{Path: "/repo", Policy: domain.AllowRead}},
	}, 1, 100)
	h.facts.AddDirectorySymlink("/repo/source", "intermediate/current", false)
	h.facts.AddFileSymlink("/repo/intermediate/current/s.link", "../../target/f.txt", false)
	h.facts.AddFile("/repo/target/f.txt")

	decision := h.dispatch.OnReadlink(100, "/repo/source/s.link")
	require.Equal(t, domain.DecisionAllow, decision)
}

func TestOnExecForkExitLifecycleProducesReports(t *testing.T) {
	h := newHarness(t, domain.ManifestDescriptor{}, 1, 100)

	h.dispatch.OnExec(100, "/bin/build")
	h.dispatch.OnFork(100, 101)
	h.dispatch.OnExit(101)
	h.dispatch.OnExit(100)

	reports := h.drain(1)
	var ops []domain.Operation
	for _, r := range reports {
		ops = append(ops, r.Operation)
	}
	require.Equal(t, []domain.Operation{
		domain.OpProcessExec,
		domain.OpChildSpawned,
		domain.OpProcessExit,
		domain.OpProcessExit,
		domain.OpProcessTreeCompleted,
	}, ops)
}

func TestOnLookupUntrackedPidIsNoOp(t *testing.T) {
	h := newHarness(t, domain.ManifestDescriptor{}, 1, 100)
	h.dispatch.OnLookup(999, "/anything")
	require.Empty(t, h.drain(1))
}
