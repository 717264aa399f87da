package schema

import "time"

// HistoryRow is a run flattened for presentation and export.
type HistoryRow struct {
	Rank              int       `json:"rank"`
	SiteName          string    `json:"site_name"`
	SiteURL           string    `json:"site_url"`
	CreatedAt         time.Time `json:"created_at"`
	Strategy          Strategy  `json:"strategy"`
	Performance       *int      `json:"perf"`
	SEO               *int      `json:"seo"`
	Accessibility     *int      `json:"a11y"`
	BestPractices     *int      `json:"bp"`
	LCPMs             *float64  `json:"lcp"`
	INPMs             *float64  `json:"inp"`
	INPSource         InpSource `json:"inp_source,omitempty"`
	CLS               *float64  `json:"cls"`
	FinalURL          *string   `json:"final_url"`
	PageTitle         *string   `json:"page_title"`
	LighthouseVersion *string   `json:"lighthouse_version"`
	Label             string    `json:"label"`
}

// GetPlainLabel returns a plain text label for a performance score.
func GetPlainLabel(perf *int) string {
	if perf == nil {
		return "NA"
	}
	switch {
	case *perf >= 90:
		return "Good"
	case *perf >= 50:
		return "Fair"
	default:
		return "Poor"
	}
}

// EnrichRuns flattens runs into history rows, resolving site URL and name by ID.
// Unknown sites fall back to the run's final URL, then to the site ID.
func EnrichRuns(runs []Run, sites []Site) []HistoryRow {
	byID := make(map[string]Site, len(sites))
	for _, s := range sites {
		byID[s.ID] = s
	}

	output := make([]HistoryRow, len(runs))
	for i, r := range runs {
		var name string
		site, ok := byID[r.SiteID]
		url := site.URL
		if ok {
			if site.Name != nil {
				name = *site.Name
			}
		} else if r.Metrics.FinalURL != nil {
			url = *r.Metrics.FinalURL
		} else {
			url = r.SiteID
		}
		m := r.Metrics
		output[i] = HistoryRow{
			Rank:              i + 1,
			SiteName:          name,
			SiteURL:           url,
			CreatedAt:         r.CreatedAt,
			Strategy:          r.Strategy,
			Performance:       m.Performance,
			SEO:               m.SEO,
			Accessibility:     m.Accessibility,
			BestPractices:     m.BestPractices,
			LCPMs:             m.LCPMs,
			INPMs:             m.INPMs,
			INPSource:         m.INPSource,
			CLS:               m.CLS,
			FinalURL:          m.FinalURL,
			PageTitle:         m.PageTitle,
			LighthouseVersion: m.LighthouseVersion,
			Label:             GetPlainLabel(m.Performance),
		}
	}
	return output
}
