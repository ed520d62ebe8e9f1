package resolve_test

import (
	"testing"

	"github.com/midbel/xslt3c/resolve"
	"github.com/stretchr/testify/require"
)

func TestNormalizeForComparisonStripsFragment(t *testing.T) {
	require.Equal(t, "file:///a.xsl", resolve.NormalizeForComparison("file:///a.xsl#frag"))
	require.Equal(t, "file:///a.xsl", resolve.NormalizeForComparison("file:///a.xsl"))
}

func TestLoadSetDetectsCircularReference(t *testing.T) {
	set := resolve.NewLoadSet()
	leave, err := set.Enter("file:///a.xsl")
	require.NoError(t, err)
	defer leave()

	_, err = set.Enter("file:///a.xsl")
	require.Error(t, err)
}

func TestLoadSetAllowsReimportAfterLeaving(t *testing.T) {
	set := resolve.NewLoadSet()
	leave, err := set.Enter("file:///a.xsl")
	require.NoError(t, err)
	leave()

	_, err = set.Enter("file:///a.xsl")
	require.NoError(t, err)
}

func TestLoadSetAllowsReimportFromTwoDifferentParents(t *testing.T) {
	set := resolve.NewLoadSet()
	leaveA, err := set.Enter("file:///common.xsl")
	require.NoError(t, err)
	leaveA()

	leaveB, err := set.Enter("file:///common.xsl")
	require.NoError(t, err)
	leaveB()
}

func TestPrecedenceAndDeclIndexAreStrictlyIncreasing(t *testing.T) {
	set := resolve.NewLoadSet()
	require.Equal(t, 1, set.NextPrecedence())
	require.Equal(t, 2, set.NextPrecedence())
	require.Equal(t, 1, set.NextDeclIndex())
	require.Equal(t, 2, set.NextDeclIndex())
	require.Equal(t, 3, set.NextDeclIndex())
}

func TestResolveURIRelative(t *testing.T) {
	resolved, err := resolve.ResolveURI("b.xsl", "file:///dir/a.xsl")
	require.NoError(t, err)
	require.Equal(t, "file:///dir/b.xsl", resolved)
}
