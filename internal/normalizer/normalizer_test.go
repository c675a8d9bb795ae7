package normalizer

import (
	"testing"

	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/aleister1102/pagewatch/internal/pathexpr"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustValue(t *testing.T, data string) models.Value {
	t.Helper()
	value, err := models.FromJSON([]byte(data))
	require.NoError(t, err)
	return value
}

func TestNormalize_SortsKeysAtEveryDepth(t *testing.T) {
	n := New(zerolog.Nop())
	value := models.Mapping{
		{Key: "zebra", Value: models.Number(1)},
		{Key: "alpha", Value: models.Mapping{
			{Key: "y", Value: models.Number(2)},
			{Key: "x", Value: models.Number(3)},
		}},
	}

	normalized := n.Normalize(value, Options{})

	assert.Equal(t, `{"alpha":{"x":3,"y":2},"zebra":1}`, string(models.EncodeJSON(normalized)))
}

func TestNormalize_Idempotent(t *testing.T) {
	n := New(zerolog.Nop())
	value := mustValue(t, `{
		"z": {"updatedAt": "2024-05-01T10:11:12Z", "items": [{"locale": "en", "v": 1}, {"v": 2}]},
		"a": [3, 2, 1],
		"locale": "en"
	}`)
	opts := Options{
		IgnorePaths:   []pathexpr.Path{pathexpr.MustParse("a[1]"), pathexpr.MustParse("z.items[*].v")},
		IgnoreKeys:    []string{"locale"},
		TimestampKeys: []string{"updatedAt"},
	}

	once := n.Normalize(value, opts)
	twice := n.Normalize(once, opts)

	assert.True(t, models.ValuesEqual(once, twice))
	assert.Equal(t, string(models.EncodeJSON(once)), string(models.EncodeJSON(twice)))
}

func TestNormalize_IgnorePathPrunesSubtree(t *testing.T) {
	n := New(zerolog.Nop())
	value := mustValue(t, `{"props":{"debug":{"big":"tree"},"title":"Hello"}}`)
	opts := Options{IgnorePaths: []pathexpr.Path{pathexpr.MustParse("props.debug")}}

	normalized := n.Normalize(value, opts)

	assert.Equal(t, `{"props":{"title":"Hello"}}`, string(models.EncodeJSON(normalized)))
}

func TestNormalize_WildcardIgnoresFieldInEveryElement(t *testing.T) {
	n := New(zerolog.Nop())
	value := mustValue(t, `{"items":[{"name":"a","ts":1},{"name":"b","ts":2},{"name":"c"}]}`)
	opts := Options{IgnorePaths: []pathexpr.Path{pathexpr.MustParse("items[*].ts")}}

	normalized := n.Normalize(value, opts)

	assert.Equal(t, `{"items":[{"name":"a"},{"name":"b"},{"name":"c"}]}`, string(models.EncodeJSON(normalized)))
}

func TestNormalize_IgnoredSequenceElementIsNulled(t *testing.T) {
	n := New(zerolog.Nop())
	value := mustValue(t, `{"items":[10,20,30]}`)
	opts := Options{IgnorePaths: []pathexpr.Path{pathexpr.MustParse("items[1]")}}

	normalized := n.Normalize(value, opts)

	// The slot is kept so later indices do not shift.
	assert.Equal(t, `{"items":[10,null,30]}`, string(models.EncodeJSON(normalized)))
}

func TestNormalize_IgnoreKeysApplyAtAnyDepth(t *testing.T) {
	n := New(zerolog.Nop())
	value := mustValue(t, `{"locale":"en","props":{"locale":"en","nested":{"locale":"en","keep":1}}}`)
	opts := Options{IgnoreKeys: []string{"locale"}}

	normalized := n.Normalize(value, opts)

	assert.Equal(t, `{"props":{"nested":{"keep":1}}}`, string(models.EncodeJSON(normalized)))
}

func TestNormalize_TimestampKeysTruncatedToDate(t *testing.T) {
	n := New(zerolog.Nop())
	value := mustValue(t, `{"updatedAt":"2024-05-01T10:11:12.345Z","createdAt":"2024-05-01","count":5}`)
	opts := Options{TimestampKeys: []string{"updatedAt", "createdAt"}}

	normalized := n.Normalize(value, opts)

	mapping := normalized.(models.Mapping)
	updated, _ := mapping.Get("updatedAt")
	assert.Equal(t, models.String("2024-05-01"), updated)
	created, _ := mapping.Get("createdAt")
	assert.Equal(t, models.String("2024-05-01"), created)
	count, _ := mapping.Get("count")
	assert.Equal(t, models.Number(5), count, "non-string values under timestamp keys are untouched")
}

func TestNormalize_DefaultIgnoreKeysDropFrameworkNoise(t *testing.T) {
	n := New(zerolog.Nop())
	value := mustValue(t, `{"__N_SSP":true,"isFallback":false,"props":{"title":"Hello"},"locale":"en"}`)
	page := models.TrackedPage{ID: "p"}
	opts := OptionsForPage(config.NewDefaultNormalizeConfig(), page)

	normalized := n.Normalize(value, opts)

	assert.Equal(t, `{"props":{"title":"Hello"}}`, string(models.EncodeJSON(normalized)))
}

func TestOptionsForPage_MergesPageIgnoreKeys(t *testing.T) {
	cfg := config.NormalizeConfig{IgnoreKeys: []string{"global"}}
	page := models.TrackedPage{
		IgnoreKeys:  []string{"perPage"},
		IgnorePaths: []pathexpr.Path{pathexpr.MustParse("a.b")},
	}

	opts := OptionsForPage(cfg, page)

	assert.ElementsMatch(t, []string{"global", "perPage"}, opts.IgnoreKeys)
	assert.Len(t, opts.IgnorePaths, 1)
}

func TestNormalize_ScalarsPassThrough(t *testing.T) {
	n := New(zerolog.Nop())

	assert.Equal(t, models.Number(1.5), n.Normalize(models.Number(1.5), Options{}))
	assert.Equal(t, models.String("x"), n.Normalize(models.String("x"), Options{}))
	assert.Equal(t, models.Null{}, n.Normalize(models.Null{}, Options{}))
}
