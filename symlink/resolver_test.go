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

package symlink

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nestybox/sandbox-core/canonpath"
	"github.com/nestybox/sandbox-core/fsfacts"
)

func mustPath(t *testing.T, raw string) canonpath.Path {
	t.Helper()
	p, err := canonpath.Canonicalize(raw)
	require.NoError(t, err)
	return p
}

func pathStrings(t *testing.T, chain []canonpath.Path) []string {
	t.Helper()
	out := make([]string, len(chain))
	for i, p := range chain {
		out[i] = p.String()
	}
	return out
}

// TestResolveChainDirectorySymlink mirrors §8 scenario 3: the prefix
// directory symlink is substituted before the file symlink's relative
// target is spliced in.
func TestResolveChainDirectorySymlink(t *testing.T) {
	mem := fsfacts.NewMem()
	mem.AddDirectorySymlink("/repo/source", "intermediate/current", false)
	mem.AddFileSymlink("/repo/intermediate/current/s.link", "../../target/f.txt", false)
	mem.AddFile("/repo/target/f.txt")

	r := New(mem)
	chain, err := r.ResolveChain(mustPath(t, "/repo/source/s.link"))
	require.NoError(t, err)
	require.Equal(t, []string{
		"/repo/source/s.link",
		"/repo/intermediate/current/s.link",
		"/repo/target/f.txt",
	}, pathStrings(t, chain))
}

// TestResolveChainJunctionLeavesPrefixIntact mirrors §8 scenario 4: a
// mount-point/junction prefix is never substituted, so the chain has no
// intermediate entry for it — the relative target is spliced against the
// junction's own mount-point path, not its target.
func TestResolveChainJunctionLeavesPrefixIntact(t *testing.T) {
	mem := fsfacts.NewMem()
	mem.AddJunction("/repo/source", "intermediate/current", false)
	mem.AddFileSymlink("/repo/intermediate/current/s.link", "../../target/f.txt", false)
	mem.AddFile("/repo/target/f.txt")

	r := New(mem)
	chain, err := r.ResolveChain(mustPath(t, "/repo/source/s.link"))
	require.NoError(t, err)
	require.Equal(t, []string{
		"/repo/source/s.link",
		"/target/f.txt",
	}, pathStrings(t, chain))
}

func TestResolveChainNoReparsePointIsSingleEntry(t *testing.T) {
	mem := fsfacts.NewMem()
	mem.AddFile("/repo/plain.txt")

	r := New(mem)
	chain, err := r.ResolveChain(mustPath(t, "/repo/plain.txt"))
	require.NoError(t, err)
	require.Equal(t, []string{"/repo/plain.txt"}, pathStrings(t, chain))
}

func TestResolveChainCycleFailsAtDepthLimit(t *testing.T) {
	mem := fsfacts.NewMem()
	mem.AddFileSymlink("/a", "/b", true)
	mem.AddFileSymlink("/b", "/a", true)

	r := New(mem)
	_, err := r.ResolveChain(mustPath(t, "/a"))
	require.Error(t, err)
}

func TestResolveChainEachStepCanonical(t *testing.T) {
	mem := fsfacts.NewMem()
	mem.AddDirectorySymlink("/repo/source", "intermediate/current", false)
	mem.AddFileSymlink("/repo/intermediate/current/s.link", "../../target/f.txt", false)
	mem.AddFile("/repo/target/f.txt")

	r := New(mem)
	chain, err := r.ResolveChain(mustPath(t, "/repo/source/s.link"))
	require.NoError(t, err)
	for _, p := range chain {
		reCanon, err := canonpath.Canonicalize(p.String())
		require.NoError(t, err)
		require.True(t, p.Equal(reCanon), "chain entry %q is not already canonical", p.String())
	}
}
