package pathexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SimpleKeys(t *testing.T) {
	path, err := Parse("props.pageProps.title")

	require.NoError(t, err)
	assert.Equal(t, Path{Key("props"), Key("pageProps"), Key("title")}, path)
}

func TestParse_IndexSegments(t *testing.T) {
	path, err := Parse("props.items[2].name")

	require.NoError(t, err)
	assert.Equal(t, Path{Key("props"), Key("items"), Index(2), Key("name")}, path)
}

func TestParse_LeadingIndex(t *testing.T) {
	path, err := Parse("[0].title")

	require.NoError(t, err)
	assert.Equal(t, Path{Index(0), Key("title")}, path)
}

func TestParse_ConsecutiveIndexes(t *testing.T) {
	path, err := Parse("matrix[1][3]")

	require.NoError(t, err)
	assert.Equal(t, Path{Key("matrix"), Index(1), Index(3)}, path)
}

func TestParse_Wildcard(t *testing.T) {
	path, err := Parse("items[*].updatedAt")

	require.NoError(t, err)
	assert.Equal(t, Path{Key("items"), Wildcard(), Key("updatedAt")}, path)
	assert.True(t, path.HasWildcard())
}

func TestParse_Errors(t *testing.T) {
	invalid := []string{
		"",
		".",
		".props",
		"props.",
		"props..title",
		"props.[0]",
		"items[",
		"items[]",
		"items[-1]",
		"items[x]",
		"items[0]name",
		"ite]ms",
	}
	for _, expr := range invalid {
		_, err := Parse(expr)
		assert.Error(t, err, "expression %q should not parse", expr)
	}
}

func TestString_RoundTrip(t *testing.T) {
	exprs := []string{
		"title",
		"props.pageProps.items[2].name",
		"items[*].updatedAt",
		"[0].title",
		"matrix[1][3]",
	}
	for _, expr := range exprs {
		path, err := Parse(expr)
		require.NoError(t, err)
		assert.Equal(t, expr, path.String())
	}
}

func TestChild_DoesNotAliasParent(t *testing.T) {
	parent := Path{Key("a")}
	first := parent.Child(Key("b"))
	second := parent.Child(Key("c"))

	assert.Equal(t, "a.b", first.String())
	assert.Equal(t, "a.c", second.String())
	assert.Equal(t, "a", parent.String())
}

func TestMatches_Exact(t *testing.T) {
	pattern := MustParse("props.items[2].name")

	assert.True(t, pattern.Matches(MustParse("props.items[2].name")))
	assert.False(t, pattern.Matches(MustParse("props.items[3].name")))
	assert.False(t, pattern.Matches(MustParse("props.items[2]")))
	assert.False(t, pattern.Matches(MustParse("props.items[2].name.extra")))
}

func TestMatches_Wildcard(t *testing.T) {
	pattern := MustParse("items[*].updatedAt")

	assert.True(t, pattern.Matches(MustParse("items[0].updatedAt")))
	assert.True(t, pattern.Matches(MustParse("items[99].updatedAt")))
	assert.False(t, pattern.Matches(MustParse("items[0].title")))
	// A wildcard stands for an index, never for a key.
	assert.False(t, pattern.Matches(Path{Key("items"), Key("0"), Key("updatedAt")}))
}

func TestParseAll_FailsOnFirstInvalid(t *testing.T) {
	paths, err := ParseAll([]string{"a.b", "c[0]"})
	require.NoError(t, err)
	assert.Len(t, paths, 2)

	_, err = ParseAll([]string{"a.b", "broken["})
	assert.Error(t, err)
}
