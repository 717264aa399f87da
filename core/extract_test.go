package core

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/pagepulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDoc(t *testing.T, name string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func parseDoc(t *testing.T, raw string) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return doc
}

func TestExtractMetrics_FullDocument(t *testing.T) {
	m := ExtractMetrics(loadDoc(t, "psi_full.json"))

	require.NotNil(t, m.Performance)
	assert.Equal(t, 87, *m.Performance)
	require.NotNil(t, m.SEO)
	assert.Equal(t, 92, *m.SEO)
	require.NotNil(t, m.Accessibility)
	assert.Equal(t, 100, *m.Accessibility)
	require.NotNil(t, m.BestPractices)
	assert.Equal(t, 79, *m.BestPractices)

	require.NotNil(t, m.LCPMs)
	assert.InDelta(t, 2345.6, *m.LCPMs, 1e-9)
	require.NotNil(t, m.CLS)
	assert.InDelta(t, 0.042, *m.CLS, 1e-9)

	// Lab value wins over the field percentile
	require.NotNil(t, m.INPMs)
	assert.InDelta(t, 120.0, *m.INPMs, 1e-9)
	assert.Equal(t, schema.InpSourceLab, m.INPSource)

	require.NotNil(t, m.FinalURL)
	assert.Equal(t, "https://www.example.com/", *m.FinalURL)
	require.NotNil(t, m.PageTitle)
	assert.Equal(t, "https://www.example.com/", *m.PageTitle)
	require.NotNil(t, m.LighthouseVersion)
	assert.Equal(t, "12.2.1", *m.LighthouseVersion)
}

func TestExtractMetrics_Empty(t *testing.T) {
	for _, doc := range []map[string]any{nil, {}} {
		m := ExtractMetrics(doc)
		assert.Equal(t, schema.MetricSet{}, m)
	}
}

func TestExtractMetrics_MissingAndMistyped(t *testing.T) {
	doc := parseDoc(t, `{
		"lighthouseResult": {
			"categories": {
				"performance": {"score": null},
				"seo": {"score": "0.9"},
				"accessibility": "broken",
				"best-practices": {}
			},
			"audits": {
				"largest-contentful-paint": {"numericValue": "fast"},
				"cumulative-layout-shift": null
			},
			"finalUrl": ""
		}
	}`)
	m := ExtractMetrics(doc)
	assert.Nil(t, m.Performance)
	assert.Nil(t, m.SEO)
	assert.Nil(t, m.Accessibility)
	assert.Nil(t, m.BestPractices)
	assert.Nil(t, m.LCPMs)
	assert.Nil(t, m.CLS)
	assert.Nil(t, m.INPMs)
	assert.Equal(t, schema.InpSourceNone, m.INPSource)
	assert.Nil(t, m.FinalURL)
	assert.Nil(t, m.PageTitle)
}

func TestExtractMetrics_IntermediateNotObject(t *testing.T) {
	m := ExtractMetrics(parseDoc(t, `{"lighthouseResult": [1, 2, 3], "loadingExperience": 5}`))
	assert.Equal(t, schema.MetricSet{}, m)
}

func TestExtractMetrics_INPFallbacks(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   float64
		source schema.InpSource
	}{
		{
			name:   "page field percentile",
			raw:    `{"loadingExperience":{"metrics":{"INTERACTION_TO_NEXT_PAINT":{"percentile":210}}},"originLoadingExperience":{"metrics":{"INTERACTION_TO_NEXT_PAINT":{"percentile":300}}}}`,
			want:   210,
			source: schema.InpSourceField,
		},
		{
			name:   "origin field percentile",
			raw:    `{"originLoadingExperience":{"metrics":{"INTERACTION_TO_NEXT_PAINT":{"percentile":300}}},"inp":90}`,
			want:   300,
			source: schema.InpSourceField,
		},
		{
			name:   "legacy flat field",
			raw:    `{"inp":90}`,
			want:   90,
			source: schema.InpSourceLegacy,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ExtractMetrics(parseDoc(t, tt.raw))
			require.NotNil(t, m.INPMs)
			assert.InDelta(t, tt.want, *m.INPMs, 1e-9)
			assert.Equal(t, tt.source, m.INPSource)
		})
	}
}

func TestExtractMetrics_URLFallsBackToID(t *testing.T) {
	m := ExtractMetrics(parseDoc(t, `{"id":"https://example.com/landing"}`))
	require.NotNil(t, m.FinalURL)
	assert.Equal(t, "https://example.com/landing", *m.FinalURL)
	require.NotNil(t, m.PageTitle)
	assert.Equal(t, "https://example.com/landing", *m.PageTitle)
}

func TestResolveINP(t *testing.T) {
	lab, field, legacy := 1.0, 2.0, 3.0

	v, src := ResolveINP(nil, nil, nil)
	assert.Nil(t, v)
	assert.Equal(t, schema.InpSourceNone, src)

	v, src = ResolveINP(nil, &field, &legacy)
	assert.Equal(t, &field, v)
	assert.Equal(t, schema.InpSourceField, src)

	v, src = ResolveINP(&lab, &field, &legacy)
	assert.Equal(t, &lab, v)
	assert.Equal(t, schema.InpSourceLab, src)
}

func TestAsNumber(t *testing.T) {
	f, ok := asNumber(json.Number("12.5"))
	assert.True(t, ok)
	assert.InDelta(t, 12.5, f, 1e-9)

	_, ok = asNumber(json.Number("nope"))
	assert.False(t, ok)

	f, ok = asNumber(int64(7))
	assert.True(t, ok)
	assert.InDelta(t, 7.0, f, 1e-9)

	_, ok = asNumber(true)
	assert.False(t, ok)
}
