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

import (
	"strings"
	"time"
)

// RequestedAccess is a tagged value combinable under union, forming a
// lattice: a hook can ask for several of these at once (e.g. a rename
// reads the source and writes the destination).
type RequestedAccess uint32

const (
	AccessNone RequestedAccess = 0
)

const (
	AccessRead RequestedAccess = 1 << iota
	AccessWrite
	AccessProbe
	AccessEnumerate
	AccessEnumerationProbe
	AccessLookup
)

// Union combines two requested-access values, per the lattice-under-union
// rule in §3.
func (r RequestedAccess) Union(other RequestedAccess) RequestedAccess {
	return r | other
}

// Has reports whether r includes every bit of want.
func (r RequestedAccess) Has(want RequestedAccess) bool {
	return r&want == want
}

func (r RequestedAccess) String() string {
	if r == AccessNone {
		return "None"
	}
	names := []struct {
		bit  RequestedAccess
		name string
	}{
		{AccessRead, "Read"},
		{AccessWrite, "Write"},
		{AccessProbe, "Probe"},
		{AccessEnumerate, "Enumerate"},
		{AccessEnumerationProbe, "EnumerationProbe"},
		{AccessLookup, "Lookup"},
	}
	var parts []string
	for _, n := range names {
		if r.Has(n.bit) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, "|")
}

// Existence is the observed on-disk state of a path at check time.
type Existence int

const (
	Existent Existence = iota
	Nonexistent
	InvalidPath
)

// FileReadContext carries the facts Access Check needs to finalize a
// read-level decision: whether the path exists, whether what exists is a
// directory, and its real modification time (for §6's timestamp
// normalization). ModTime is the zero Time when it could not be
// determined (e.g. the path does not exist).
type FileReadContext struct {
	Existence       Existence
	OpenedDirectory bool
	ModTime         time.Time
}

// Action is the enforcement outcome of a check.
type Action int

const (
	Allow Action = iota
	Warn
	Deny
)

func (a Action) String() string {
	switch a {
	case Allow:
		return "Allow"
	case Warn:
		return "Warn"
	case Deny:
		return "Deny"
	default:
		return "Unknown"
	}
}

// ReportLevel says whether — and how emphatically — an access should be
// reported to the build engine.
type ReportLevel int

const (
	Ignore ReportLevel = iota
	Report
	ReportExplicit
)

func (l ReportLevel) String() string {
	switch l {
	case Ignore:
		return "Ignore"
	case Report:
		return "Report"
	case ReportExplicit:
		return "ReportExplicit"
	default:
		return "Unknown"
	}
}

// Validity reports whether the path itself was usable.
type Validity int

const (
	Valid Validity = iota
	PathComponentMissing
	PathSyntaxInvalid
)

func (v Validity) String() string {
	switch v {
	case Valid:
		return "Valid"
	case PathComponentMissing:
		return "PathComponentMissing"
	case PathSyntaxInvalid:
		return "PathSyntaxInvalid"
	default:
		return "Unknown"
	}
}

// AccessCheckResult is the outcome of one Access Check call, or of
// combining several (e.g. across a symlink chain).
type AccessCheckResult struct {
	Requested   RequestedAccess
	Action      Action
	ReportLevel ReportLevel
	Validity    Validity

	// Rewritten is set when the check narrowed the requested access (the
	// ForceReadOnlyForReadWrite rewrite in §4.3). Hook Dispatch turns it
	// into a ChangedReadWriteToReadAccess report; the VnodeAccessResult it
	// returns to OS-specific glue does not carry the narrowed access.
	Rewritten bool

	// NormalizedModTime is the §6 timestamp-normalization outcome for a
	// file-attribute read: the zero Time means no override is needed (the
	// real timestamp stands), a non-zero value is what the caller should
	// substitute for it.
	NormalizedModTime time.Time
}

// IdentityResult is combine's identity element: (None, Allow, Ignore, Valid).
var IdentityResult = AccessCheckResult{
	Requested:   AccessNone,
	Action:      Allow,
	ReportLevel: Ignore,
	Validity:    Valid,
}

// Combine takes the most restrictive action and the highest report level
// of its operands. It is commutative, associative, and has IdentityResult
// as its identity — combining results from a symlink chain (§4.4) or from
// repeated checks must not depend on evaluation order.
func (a AccessCheckResult) Combine(b AccessCheckResult) AccessCheckResult {
	return AccessCheckResult{
		Requested:         a.Requested.Union(b.Requested),
		Action:            maxAction(a.Action, b.Action),
		ReportLevel:       maxReportLevel(a.ReportLevel, b.ReportLevel),
		Validity:          maxValidity(a.Validity, b.Validity),
		Rewritten:         a.Rewritten || b.Rewritten,
		NormalizedModTime: maxModTime(a.NormalizedModTime, b.NormalizedModTime),
	}
}

// actionSeverity orders actions from least to most restrictive: Allow is
// the identity, Deny dominates Warn dominates Allow.
func actionSeverity(a Action) int {
	switch a {
	case Allow:
		return 0
	case Warn:
		return 1
	case Deny:
		return 2
	default:
		return 0
	}
}

func maxAction(a, b Action) Action {
	if actionSeverity(a) >= actionSeverity(b) {
		return a
	}
	return b
}

func maxReportLevel(a, b ReportLevel) ReportLevel {
	if a >= b {
		return a
	}
	return b
}

func validitySeverity(v Validity) int {
	switch v {
	case Valid:
		return 0
	case PathComponentMissing:
		return 1
	case PathSyntaxInvalid:
		return 2
	default:
		return 0
	}
}

func maxValidity(a, b Validity) Validity {
	if validitySeverity(a) >= validitySeverity(b) {
		return a
	}
	return b
}

// maxModTime combines two timestamp-normalization outcomes, treating the
// zero Time as "no override" rather than as the earliest instant — at
// most one chain entry ever produces a non-zero override in practice, so
// this only needs to prefer whichever operand is set.
func maxModTime(a, b time.Time) time.Time {
	if a.IsZero() {
		return b
	}
	if b.IsZero() {
		return a
	}
	if a.After(b) {
		return a
	}
	return b
}
