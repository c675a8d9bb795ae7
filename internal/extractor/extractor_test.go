package extractor

import (
	"fmt"
	"testing"

	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/aleister1102/pagewatch/internal/pathexpr"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor() *PayloadExtractor {
	return NewPayloadExtractor(config.NewDefaultExtractConfig(), zerolog.Nop())
}

func pageWithDataScript(payload string) []byte {
	return []byte(fmt.Sprintf(
		`<html><head><title>t</title></head><body><div>content</div><script id="__NEXT_DATA__" type="application/json">%s</script></body></html>`,
		payload))
}

func TestExtractPayload_WholeDocument(t *testing.T) {
	pe := newTestExtractor()
	markup := pageWithDataScript(`{"props":{"pageProps":{"title":"Hello"}}}`)

	value, err := pe.ExtractPayload(ExtractPayloadInput{Markup: markup})

	require.NoError(t, err)
	assert.Equal(t, `{"props":{"pageProps":{"title":"Hello"}}}`, string(models.EncodeJSON(value)))
}

func TestExtractPayload_SinglePath(t *testing.T) {
	pe := newTestExtractor()
	markup := pageWithDataScript(`{"props":{"pageProps":{"title":"Hello","items":[1,2,3]}}}`)

	value, err := pe.ExtractPayload(ExtractPayloadInput{
		Markup: markup,
		Paths:  []pathexpr.Path{pathexpr.MustParse("props.pageProps.items[1]")},
	})

	require.NoError(t, err)
	assert.Equal(t, models.Number(2), value)
}

func TestExtractPayload_MultiplePathsKeyedByExpression(t *testing.T) {
	pe := newTestExtractor()
	markup := pageWithDataScript(`{"props":{"pageProps":{"title":"Hello","version":7}}}`)

	value, err := pe.ExtractPayload(ExtractPayloadInput{
		Markup: markup,
		Paths: []pathexpr.Path{
			pathexpr.MustParse("props.pageProps.version"),
			pathexpr.MustParse("props.pageProps.title"),
		},
	})

	require.NoError(t, err)
	mapping, ok := value.(models.Mapping)
	require.True(t, ok)
	require.Len(t, mapping, 2)
	// Keyed by path expression, sorted.
	assert.Equal(t, "props.pageProps.title", mapping[0].Key)
	assert.Equal(t, models.String("Hello"), mapping[0].Value)
	assert.Equal(t, "props.pageProps.version", mapping[1].Key)
	assert.Equal(t, models.Number(7), mapping[1].Value)
}

func TestExtractDocument_MissingScript(t *testing.T) {
	pe := NewPayloadExtractor(config.ExtractConfig{DataScriptID: "__NEXT_DATA__"}, zerolog.Nop())

	_, err := pe.ExtractDocument([]byte(`<html><body><p>no data here</p></body></html>`))

	require.Error(t, err)
	assert.True(t, HasReason(err, ReasonAmbiguousOrMissingSource))
}

func TestExtractDocument_DuplicateScripts(t *testing.T) {
	pe := newTestExtractor()
	markup := []byte(`<html><body>` +
		`<script id="__NEXT_DATA__" type="application/json">{"a":1}</script>` +
		`<script id="__NEXT_DATA__" type="application/json">{"a":2}</script>` +
		`</body></html>`)

	_, err := pe.ExtractDocument(markup)

	require.Error(t, err)
	assert.True(t, HasReason(err, ReasonAmbiguousOrMissingSource))
}

func TestExtractDocument_WrongScriptTypeIgnored(t *testing.T) {
	pe := NewPayloadExtractor(config.ExtractConfig{DataScriptID: "__NEXT_DATA__"}, zerolog.Nop())
	markup := []byte(`<html><body><script id="__NEXT_DATA__">{"a":1}</script></body></html>`)

	_, err := pe.ExtractDocument(markup)

	require.Error(t, err)
	assert.True(t, HasReason(err, ReasonAmbiguousOrMissingSource))
}

func TestExtractDocument_MalformedJSON(t *testing.T) {
	pe := newTestExtractor()
	markup := pageWithDataScript(`{"props": `)

	_, err := pe.ExtractDocument(markup)

	require.Error(t, err)
	assert.True(t, HasReason(err, ReasonMalformedPayload))
}

func TestExtractPayload_PathNotFound(t *testing.T) {
	pe := newTestExtractor()
	markup := pageWithDataScript(`{"props":{"pageProps":{"items":[1,2]}}}`)

	cases := []string{
		"props.missing",           // absent key
		"props.pageProps.items[5]", // index out of range
		"props.pageProps.items.x", // key into a sequence
		"props.pageProps.items[*]", // wildcard is not addressable
	}
	for _, expr := range cases {
		_, err := pe.ExtractPayload(ExtractPayloadInput{
			Markup: markup,
			Paths:  []pathexpr.Path{pathexpr.MustParse(expr)},
		})
		require.Error(t, err, "path %q", expr)
		assert.True(t, HasReason(err, ReasonPathNotFound), "path %q", expr)

		var extractionErr *ExtractionError
		require.ErrorAs(t, err, &extractionErr)
		assert.Equal(t, expr, extractionErr.Path)
	}
}

func TestExtractDocument_BootstrapFallback(t *testing.T) {
	pe := newTestExtractor()
	markup := []byte(`<html><body>` +
		`<script>var x = 1;</script>` +
		`<script>window.__INITIAL_STATE__ = {"cart":{"count":2},"note":"a } in a string"};doHydrate();</script>` +
		`</body></html>`)

	value, err := pe.ExtractDocument(markup)

	require.NoError(t, err)
	mapping, ok := value.(models.Mapping)
	require.True(t, ok)
	cart, found := mapping.Get("cart")
	require.True(t, found)
	count, found := cart.(models.Mapping).Get("count")
	require.True(t, found)
	assert.Equal(t, models.Number(2), count)
}

func TestExtractDocument_BootstrapNotJSON(t *testing.T) {
	pe := newTestExtractor()
	markup := []byte(`<html><body><script>window.__INITIAL_STATE__ = {unquoted: 'js'};</script></body></html>`)

	_, err := pe.ExtractDocument(markup)

	require.Error(t, err)
	assert.True(t, HasReason(err, ReasonMalformedPayload))
}

func TestScanAssignedLiteral(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "simple object", input: ` = {"a":1};`, expected: `{"a":1}`},
		{name: "array literal", input: `= [1,2,3];`, expected: `[1,2,3]`},
		{name: "nested braces", input: `={"a":{"b":[{"c":1}]}} ;`, expected: `{"a":{"b":[{"c":1}]}}`},
		{name: "brace inside string", input: ` = {"s":"closing } brace"};`, expected: `{"s":"closing } brace"}`},
		{name: "escaped quote inside string", input: ` = {"s":"quote \" and }"};`, expected: `{"s":"quote \" and }"}`},
		{name: "no literal", input: ` = doHydrate();`, wantErr: true},
		{name: "unterminated", input: ` = {"a": {`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scanAssignedLiteral(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
