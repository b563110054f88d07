package formatter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/helmcode/text-analyzer/pkg/model"
	"github.com/helmcode/text-analyzer/pkg/parser"
	"github.com/helmcode/text-analyzer/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{"summary":"short text","meta":{"score":0.9,"label":"positive"},"keywords":["go","cli"]}`

func parse(t *testing.T, s string) *model.Value {
	t.Helper()
	v, err := parser.ParseValue([]byte(s))
	require.NoError(t, err)
	return v
}

func TestDisplayResults_JSONKeepsOrder(t *testing.T) {
	var buf bytes.Buffer
	err := DisplayResults(&buf, parse(t, `{"b":1,"a":{"z":true,"y":null}}`), model.AnalysisSummary, Options{Format: "json"})
	require.NoError(t, err)

	want := `{
  "b": 1,
  "a": {
    "z": true,
    "y": null
  }
}
`
	assert.Equal(t, want, buf.String())
}

func TestDisplayResults_YAMLKeepsOrder(t *testing.T) {
	var buf bytes.Buffer
	err := DisplayResults(&buf, parse(t, sample), model.AnalysisSummary, Options{Format: "yaml"})
	require.NoError(t, err)

	want := `summary: short text
meta:
  score: 0.9
  label: positive
keywords:
  - go
  - cli
`
	assert.Equal(t, want, buf.String())
}

func TestDisplayResults_Human(t *testing.T) {
	at := time.Date(2026, 10, 14, 9, 30, 0, 0, time.Local)

	var buf bytes.Buffer
	err := DisplayResults(&buf, parse(t, sample), model.AnalysisSentiment, Options{Format: "human", CompletedAt: at})
	require.NoError(t, err)
	out := buf.String()

	assert.Contains(t, out, "Sentiment Analysis Results")
	assert.Contains(t, out, "Property")
	assert.Contains(t, out, "Value")
	assert.Contains(t, out, "short text")
	assert.Contains(t, out, "positive")
	assert.Contains(t, out, "0.9")
	assert.Contains(t, out, "Analysis completed at 2026-10-14 09:30:00")

	// Rows appear in payload order
	iSummary := strings.Index(out, "summary")
	iMeta := strings.Index(out, "meta")
	iKeywords := strings.Index(out, "keywords")
	assert.True(t, iSummary < iMeta && iMeta < iKeywords, "rows out of order:\n%s", out)
}

func TestDisplayResults_UnknownFormatFallsBackToHuman(t *testing.T) {
	var buf bytes.Buffer
	err := DisplayResults(&buf, parse(t, `"plain answer"`), model.AnalysisSummary, Options{Format: "xml"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Summary Results")
	assert.Contains(t, buf.String(), "plain answer")
}

func TestRenderBlock_Deterministic(t *testing.T) {
	b := render.Render(parse(t, sample), render.DefaultOptions())
	first := RenderBlock(b, 80)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, RenderBlock(b, 80))
	}
}

func TestRenderBlock_NestedTableInsideCell(t *testing.T) {
	b := render.Render(parse(t, `{"meta":{"score":0.9,"label":"positive"}}`), render.DefaultOptions())
	out := RenderBlock(b, 80)

	// One header for the outer table and one for the nested table
	assert.Equal(t, 2, strings.Count(out, "Property"))
	assert.True(t, strings.Index(out, "meta") < strings.Index(out, "score"))
	assert.True(t, strings.Index(out, "score") < strings.Index(out, "label"))
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		width  int
		indent string
		want   string
	}{
		{"short", "hello world", 80, "", "hello world"},
		{"wraps", "one two three four", 9, "", "one two\nthree\nfour"},
		{"indent", "one two three", 10, "  ", "  one two\n  three"},
		{"long word", "supercalifragilistic ok", 5, "", "supercalifragilistic\nok"},
		{"keeps breaks", "a\n\nb", 80, "", "a\n\nb"},
		{"keeps leading indentation", "def f():\n    return 1", 80, "", "def f():\n    return 1"},
		{"keeps space runs", "name:   value", 80, "", "name:   value"},
		{"indented line wraps", "  aa bb cc", 7, "", "  aa bb\ncc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wrapText(tt.text, tt.width, tt.indent))
		})
	}
}
