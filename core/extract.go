package core

import (
	"encoding/json"
	"math"

	"github.com/huangsam/pagepulse/schema"
)

// Signal names a value pulled out of a provider document.
type Signal string

// All extracted signals.
const (
	SignalPerformance       Signal = "performance"
	SignalSEO               Signal = "seo"
	SignalAccessibility     Signal = "accessibility"
	SignalBestPractices     Signal = "best-practices"
	SignalLCP               Signal = "lcp"
	SignalCLS               Signal = "cls"
	SignalINPLab            Signal = "inp-lab"
	SignalINPField          Signal = "inp-field"
	SignalINPLegacy         Signal = "inp-legacy"
	SignalFinalURL          Signal = "final-url"
	SignalPageTitle         Signal = "page-title"
	SignalLighthouseVersion Signal = "lighthouse-version"
)

// docPath is a sequence of object keys from the document root.
type docPath []string

// SignalPaths maps every signal to its candidate paths in fallback order.
// Provider schema drift is handled here and nowhere else.
var SignalPaths = map[Signal][]docPath{
	SignalPerformance:   {{"lighthouseResult", "categories", "performance", "score"}},
	SignalSEO:           {{"lighthouseResult", "categories", "seo", "score"}},
	SignalAccessibility: {{"lighthouseResult", "categories", "accessibility", "score"}},
	SignalBestPractices: {{"lighthouseResult", "categories", "best-practices", "score"}},
	SignalLCP:           {{"lighthouseResult", "audits", "largest-contentful-paint", "numericValue"}},
	SignalCLS:           {{"lighthouseResult", "audits", "cumulative-layout-shift", "numericValue"}},
	SignalINPLab:        {{"lighthouseResult", "audits", "interaction-to-next-paint", "numericValue"}},
	SignalINPField: {
		{"loadingExperience", "metrics", "INTERACTION_TO_NEXT_PAINT", "percentile"},
		{"originLoadingExperience", "metrics", "INTERACTION_TO_NEXT_PAINT", "percentile"},
	},
	SignalINPLegacy:         {{"inp"}},
	SignalFinalURL:          {{"lighthouseResult", "finalUrl"}, {"id"}},
	SignalPageTitle:         {{"lighthouseResult", "finalUrl"}, {"id"}},
	SignalLighthouseVersion: {{"lighthouseResult", "lighthouseVersion"}},
}

// ExtractMetrics normalizes a provider document into a MetricSet.
// Missing, null or mistyped fields leave the matching metric absent.
func ExtractMetrics(doc map[string]any) schema.MetricSet {
	var m schema.MetricSet
	m.Performance = categoryScore(doc, SignalPerformance)
	m.SEO = categoryScore(doc, SignalSEO)
	m.Accessibility = categoryScore(doc, SignalAccessibility)
	m.BestPractices = categoryScore(doc, SignalBestPractices)
	m.LCPMs = numberSignal(doc, SignalLCP)
	m.CLS = numberSignal(doc, SignalCLS)
	m.INPMs, m.INPSource = ResolveINP(
		numberSignal(doc, SignalINPLab),
		numberSignal(doc, SignalINPField),
		numberSignal(doc, SignalINPLegacy),
	)
	m.FinalURL = stringSignal(doc, SignalFinalURL)
	m.PageTitle = stringSignal(doc, SignalPageTitle)
	m.LighthouseVersion = stringSignal(doc, SignalLighthouseVersion)
	return m
}

// ResolveINP picks the authoritative INP value: lab, then field p75, then legacy.
func ResolveINP(lab, field, legacy *float64) (*float64, schema.InpSource) {
	switch {
	case lab != nil:
		return lab, schema.InpSourceLab
	case field != nil:
		return field, schema.InpSourceField
	case legacy != nil:
		return legacy, schema.InpSourceLegacy
	default:
		return nil, schema.InpSourceNone
	}
}

// categoryScore converts a 0-1 fraction into a rounded 0-100 integer.
func categoryScore(doc map[string]any, sig Signal) *int {
	v := numberSignal(doc, sig)
	if v == nil {
		return nil
	}
	score := int(math.Round(*v * 100))
	return &score
}

// numberSignal returns the first numeric value found along the signal paths.
func numberSignal(doc map[string]any, sig Signal) *float64 {
	for _, p := range SignalPaths[sig] {
		if f, ok := asNumber(lookup(doc, p)); ok {
			return &f
		}
	}
	return nil
}

// stringSignal returns the first non-empty string found along the signal paths.
func stringSignal(doc map[string]any, sig Signal) *string {
	for _, p := range SignalPaths[sig] {
		if s, ok := lookup(doc, p).(string); ok && s != "" {
			return &s
		}
	}
	return nil
}

// lookup walks p through nested objects. Any missing or non-object step yields nil.
func lookup(doc map[string]any, p docPath) any {
	var cur any = doc
	for _, key := range p {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[key]
	}
	return cur
}

// asNumber accepts the numeric shapes produced by encoding/json.
func asNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
