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

// Package access implements the Access Check decision tables (§4.3): given
// a Policy Tree cursor and the facts of one request, it decides Allow,
// Warn or Deny and the report level to attach. Every entry point is a
// pure function of its arguments — for identical inputs it returns a
// bit-identical result (§8) — so nothing here owns state; Hook Dispatch
// calls straight through from whichever goroutine the OS glue runs on.
package access

import (
	"time"

	"github.com/nestybox/sandbox-core/domain"
)

// denyOrWarn resolves §4.3's "Deny-or-Warn": Deny when the manifest's
// global FailUnexpectedAccesses flag is set, Warn (report but allow)
// otherwise.
func denyOrWarn(scope domain.ScopeFlags) domain.Action {
	if scope.Has(domain.FailUnexpectedAccesses) {
		return domain.Deny
	}
	return domain.Warn
}

// reportIf returns Report when cond holds or the global ReportAnyAccess
// flag upgrades every Ignore, Ignore otherwise.
func reportIf(scope domain.ScopeFlags, cond bool) domain.ReportLevel {
	if cond || scope.Has(domain.ReportAnyAccess) {
		return domain.Report
	}
	return domain.Ignore
}

// CheckWrite implements §4.3's write decision table.
func CheckWrite(cursor domain.PolicySearchCursor) domain.AccessCheckResult {
	result := domain.AccessCheckResult{Requested: domain.AccessWrite, Validity: domain.Valid}

	if cursor.EffectivePolicy.Has(domain.AllowWrite) {
		result.Action = domain.Allow
		result.ReportLevel = reportIf(cursor.ScopeFlags, false)
		return result
	}

	result.Action = denyOrWarn(cursor.ScopeFlags)
	result.ReportLevel = domain.Report
	return result
}

// normalizedModTime implements §6's timestamp normalization for an
// attribute read that observed ctx: AllowRealInputTimestamps suppresses
// the override outright; otherwise NormalizeReadTimestamps forces
// domain.NewInputTimestamp unconditionally, and lacking that, the real
// time is only pulled forward to NewInputTimestamp when it would
// otherwise read as older than it (max(real, canonical)). The zero Time
// means "no override" in every non-applicable case.
func normalizedModTime(scope domain.ScopeFlags, ctx domain.FileReadContext) time.Time {
	if scope.Has(domain.AllowRealInputTimestamps) || ctx.ModTime.IsZero() {
		return time.Time{}
	}
	if scope.Has(domain.NormalizeReadTimestamps) {
		return domain.NewInputTimestamp
	}
	if ctx.ModTime.Before(domain.NewInputTimestamp) {
		return domain.NewInputTimestamp
	}
	return time.Time{}
}

// CheckRead implements §4.3's seven-rule read decision table. requested
// must be exactly one of AccessProbe, AccessRead, AccessEnumerate or
// AccessEnumerationProbe.
func CheckRead(cursor domain.PolicySearchCursor, requested domain.RequestedAccess, ctx domain.FileReadContext) domain.AccessCheckResult {
	result := domain.AccessCheckResult{Requested: requested, Validity: domain.Valid}
	policy := cursor.EffectivePolicy

	switch {
	case requested == domain.AccessProbe && ctx.Existence == domain.Nonexistent &&
		(policy.Has(domain.AllowRead) || policy.Has(domain.AllowReadIfNonexistent)):
		// Rule 1.
		result.Action = domain.Allow
		result.ReportLevel = reportIf(cursor.ScopeFlags, false)

	case requested == domain.AccessProbe && ctx.Existence == domain.Existent:
		// Rule 2: write/read split.
		if policy.Has(domain.AllowRead) {
			result.Action = domain.Allow
			result.ReportLevel = reportIf(cursor.ScopeFlags, false)
			result.NormalizedModTime = normalizedModTime(cursor.ScopeFlags, ctx)
		} else {
			result.Action = denyOrWarn(cursor.ScopeFlags)
			result.ReportLevel = domain.Report
		}

	case requested == domain.AccessRead && policy.Has(domain.AllowRead):
		// Rule 3.
		result.Action = domain.Allow
		result.ReportLevel = reportIf(cursor.ScopeFlags, false)

	case requested == domain.AccessRead && ctx.Existence == domain.Nonexistent && policy.Has(domain.AllowReadIfNonexistent):
		// Rule 4.
		result.Action = domain.Allow
		result.ReportLevel = reportIf(cursor.ScopeFlags, false)

	case requested == domain.AccessEnumerate:
		// Rule 5: always Allow; report level follows the scope flag alone.
		result.Action = domain.Allow
		result.ReportLevel = reportIf(cursor.ScopeFlags, cursor.ScopeFlags.Has(domain.ReportDirectoryEnumeration))

	case requested == domain.AccessEnumerationProbe:
		// Rule 6: never Deny, even on policy mismatch — historical contract.
		result.Action = domain.Allow
		wouldHaveDenied := !policy.Has(domain.AllowRead)
		result.ReportLevel = reportIf(cursor.ScopeFlags, wouldHaveDenied)
		result.NormalizedModTime = normalizedModTime(cursor.ScopeFlags, ctx)

	default:
		// Rule 7.
		result.Action = denyOrWarn(cursor.ScopeFlags)
		result.ReportLevel = domain.Report
	}

	return result
}

// CheckCreateDirectory implements §4.3's create_directory entry point.
// When the global DirectoryCreationAccessEnforcement flag is set, the
// caller must probe existence first (§6); this function assumes that has
// already happened and ctx reflects the result.
func CheckCreateDirectory(cursor domain.PolicySearchCursor, ctx domain.FileReadContext) domain.AccessCheckResult {
	result := domain.AccessCheckResult{Requested: domain.AccessWrite, Validity: domain.Valid}

	if !cursor.ScopeFlags.Has(domain.DirectoryCreationAccessEnforcement) {
		if cursor.EffectivePolicy.Has(domain.AllowCreateDirectory) {
			result.Action = domain.Allow
		} else {
			result.Action = denyOrWarn(cursor.ScopeFlags)
			result.ReportLevel = domain.Report
		}
		return result
	}

	if ctx.Existence == domain.Existent {
		result.Action = denyOrWarn(cursor.ScopeFlags)
		result.ReportLevel = domain.Report
		return result
	}

	if cursor.EffectivePolicy.Has(domain.AllowCreateDirectory) {
		result.Action = domain.Allow
		return result
	}

	result.Action = denyOrWarn(cursor.ScopeFlags)
	result.ReportLevel = domain.Report
	return result
}

// CheckSymlinkCreation implements §4.3's symlink-creation entry point:
// gated purely by the policy's AllowSymlinkCreation bit.
func CheckSymlinkCreation(cursor domain.PolicySearchCursor) domain.AccessCheckResult {
	result := domain.AccessCheckResult{Requested: domain.AccessWrite, Validity: domain.Valid}

	if cursor.EffectivePolicy.Has(domain.AllowSymlinkCreation) {
		result.Action = domain.Allow
		return result
	}

	result.Action = denyOrWarn(cursor.ScopeFlags)
	result.ReportLevel = domain.Report
	return result
}

// ApplyForceReadOnlyRewrite implements §4.3's special rewrite: when the
// requested access asks for both read and write but policy grants only
// read, narrow the request to read-only and report the change rather
// than deny. Returns the (possibly rewritten) result and whether a
// rewrite occurred. Hook Dispatch reports a rewrite as
// ChangedReadWriteToReadAccess; it does not reissue the OS call and does
// not return the narrowed access to its caller.
func ApplyForceReadOnlyRewrite(cursor domain.PolicySearchCursor, requested domain.RequestedAccess) (domain.AccessCheckResult, bool) {
	wantsReadWrite := requested.Has(domain.AccessRead) && requested.Has(domain.AccessWrite)
	if !wantsReadWrite || !cursor.ScopeFlags.Has(domain.ForceReadOnlyForReadWrite) {
		return domain.AccessCheckResult{}, false
	}
	if !cursor.EffectivePolicy.Has(domain.AllowRead) || cursor.EffectivePolicy.Has(domain.AllowWrite) {
		return domain.AccessCheckResult{}, false
	}

	return domain.AccessCheckResult{
		Requested:   domain.AccessRead,
		Action:      domain.Allow,
		ReportLevel: domain.ReportExplicit,
		Validity:    domain.Valid,
		Rewritten:   true,
	}, true
}
