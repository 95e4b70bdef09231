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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nestybox/sandbox-core/canonpath"
	"github.com/nestybox/sandbox-core/domain"
)

func mustPath(t *testing.T, raw string) canonpath.Path {
	t.Helper()
	p, err := canonpath.Canonicalize(raw)
	require.NoError(t, err)
	return p
}

func TestLookupExactMatch(t *testing.T) {
	tree, err := Build([]domain.ManifestEntry{
		{Path: "/repo/out", Policy: domain.AllowRead | domain.AllowWrite},
	})
	require.NoError(t, err)

	cursor := tree.Lookup(mustPath(t, "/repo/out"))
	require.True(t, cursor.Matched)
	require.True(t, cursor.EffectivePolicy.Has(domain.AllowRead))
	require.True(t, cursor.EffectivePolicy.Has(domain.AllowWrite))
}

func TestLookupDoesNotBroadenOnByteOverlap(t *testing.T) {
	// /repo/out and /repo/output share a byte prefix but are distinct
	// components; a rule on one must never leak onto the other.
	tree, err := Build([]domain.ManifestEntry{
		{Path: "/repo/out", Policy: domain.AllowWrite},
	})
	require.NoError(t, err)

	cursor := tree.Lookup(mustPath(t, "/repo/output"))
	require.False(t, cursor.Matched)
	require.False(t, cursor.EffectivePolicy.Has(domain.AllowWrite))
}

func TestLookupUnmatchedSuffixInheritsDeepestScope(t *testing.T) {
	tree, err := Build([]domain.ManifestEntry{
		{Path: "/repo", Policy: domain.AllowRead, ScopeFlags: domain.ReportDirectoryEnumeration},
	})
	require.NoError(t, err)

	cursor := tree.Lookup(mustPath(t, "/repo/src/main.go"))
	require.False(t, cursor.Matched)
	require.Equal(t, 1, cursor.MatchedDepth)
	require.True(t, cursor.ScopeFlags.Has(domain.ReportDirectoryEnumeration))
}

func TestLookupUnreachablePathNeverErrors(t *testing.T) {
	tree, err := Build(nil)
	require.NoError(t, err)

	cursor := tree.Lookup(mustPath(t, "/nowhere/at/all"))
	require.False(t, cursor.Matched)
	require.Equal(t, 0, cursor.MatchedDepth)
}

func TestLookupScopeFlagsAccumulateAcrossAncestors(t *testing.T) {
	tree, err := Build([]domain.ManifestEntry{
		{Path: "/repo", ScopeFlags: domain.ReportDirectoryEnumeration},
		{Path: "/repo/out", Policy: domain.AllowWrite, ScopeFlags: domain.ForceReadOnlyForReadWrite},
	})
	require.NoError(t, err)

	cursor := tree.Lookup(mustPath(t, "/repo/out"))
	require.True(t, cursor.Matched)
	require.True(t, cursor.ScopeFlags.Has(domain.ReportDirectoryEnumeration))
	require.True(t, cursor.ScopeFlags.Has(domain.ForceReadOnlyForReadWrite))
}

func TestLookupCaseFoldedForWindowsStylePaths(t *testing.T) {
	tree, err := Build([]domain.ManifestEntry{
		{Path: `\??\C:\Repo\Out`, Policy: domain.AllowRead},
	})
	require.NoError(t, err)

	cursor := tree.Lookup(mustPath(t, `\??\C:\repo\OUT`))
	require.True(t, cursor.Matched)
	require.True(t, cursor.EffectivePolicy.Has(domain.AllowRead))
}
