package canonpath

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalizeBasic(t *testing.T) {
	p, err := Canonicalize("/repo/./a/../b/c")
	require.NoError(t, err)
	require.Equal(t, "/repo/b/c", p.String())
	require.Equal(t, "c", p.Last())
	require.Equal(t, "/repo/b", p.Parent().String())
}

func TestCanonicalizeEmptyIsInvalid(t *testing.T) {
	_, err := Canonicalize("")
	require.ErrorIs(t, err, ErrInvalidSyntax)
}

func TestCanonicalizeEscapeRejected(t *testing.T) {
	_, err := Canonicalize("/repo/../../etc/passwd")
	require.ErrorIs(t, err, ErrInvalidSyntax)
}

func TestCanonicalizeIdempotent(t *testing.T) {
	raw := "/a/b/../c/./d"
	p1, err := Canonicalize(raw)
	require.NoError(t, err)
	p2, err := Canonicalize(p1.String())
	require.NoError(t, err)
	require.True(t, p1.Equal(p2))
}

func TestCanonicalizeDevicePrefixes(t *testing.T) {
	p, err := Canonicalize(`\??\C:\Windows\System32`)
	require.NoError(t, err)
	require.Equal(t, DeviceNt, p.Type())

	p2, err := Canonicalize(`\\.\C:\Windows\system32`)
	require.NoError(t, err)
	require.Equal(t, DeviceLocal, p2.Type())
}

func TestEqualityCaseFoldingByType(t *testing.T) {
	a, _ := Canonicalize(`\??\C:\Foo\Bar`)
	b, _ := Canonicalize(`\??\C:\foo\bar`)
	require.True(t, a.Equal(b), "windows-style paths fold case")

	c, _ := Canonicalize("/Foo/Bar")
	d, _ := Canonicalize("/foo/bar")
	require.False(t, c.Equal(d), "posix-style paths are exact-match")
}

func TestHasPrefix(t *testing.T) {
	base, _ := Canonicalize("/repo/out")
	child, _ := Canonicalize("/repo/out/a/b.txt")
	require.True(t, child.HasPrefix(base))
	require.False(t, base.HasPrefix(child))
}

func TestExtendAndWithComponents(t *testing.T) {
	base, _ := Canonicalize("/repo/out")
	extended := base.Extend("a")
	require.Equal(t, "/repo/out/a", extended.String())

	rebuilt := WithComponents(PlainPath, []string{"repo", "target", "f.txt"})
	require.Equal(t, "/repo/target/f.txt", rebuilt.String())
}

func TestInvalidUNCSyntaxRejected(t *testing.T) {
	_, err := Canonicalize(`\\server\share\file`)
	require.ErrorIs(t, err, ErrInvalidSyntax)
}
