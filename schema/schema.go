// Package schema holds the data types shared by every layer of pagepulse.
package schema

import (
	"encoding/json"
	"time"
)

// User is the authenticated caller of an operation.
type User struct {
	ID string `json:"id"`
}

// Site is a user-tracked URL under monitoring.
type Site struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	URL       string    `json:"url"`
	Name      *string   `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName returns the site name, or its URL when unnamed.
func (s Site) DisplayName() string {
	if s.Name != nil && *s.Name != "" {
		return *s.Name
	}
	return s.URL
}

// MetricSet is the normalized output of one provider response.
// Nil pointers mean the signal was absent.
type MetricSet struct {
	Performance       *int      `json:"performance"`
	SEO               *int      `json:"seo"`
	Accessibility     *int      `json:"accessibility"`
	BestPractices     *int      `json:"best_practices"`
	LCPMs             *float64  `json:"lcp_ms"`
	CLS               *float64  `json:"cls"`
	INPMs             *float64  `json:"inp_ms"`
	INPSource         InpSource `json:"inp_source,omitempty"`
	FinalURL          *string   `json:"final_url"`
	PageTitle         *string   `json:"page_title"`
	LighthouseVersion *string   `json:"lighthouse_version"`
}

// Run is one persisted audit attempt. Runs are never updated.
type Run struct {
	ID        string          `json:"id"`
	SiteID    string          `json:"site_id"`
	UserID    string          `json:"user_id"`
	Strategy  Strategy        `json:"strategy"`
	CreatedAt time.Time       `json:"created_at"`
	Metrics   MetricSet       `json:"metrics"`
	Raw       json.RawMessage `json:"raw,omitempty"`
}

// RawResponse is a parsed provider response.
// Raw keeps the verbatim body, Doc the decoded JSON object.
type RawResponse struct {
	Raw json.RawMessage
	Doc map[string]any
}

// AuditRequest is the caller input of a single audit.
type AuditRequest struct {
	SiteID   string `json:"siteId"`
	URL      string `json:"url"`
	Strategy string `json:"strategy"`
}

// RunQuery filters a history listing.
type RunQuery struct {
	SiteIDs   []string
	Strategy  Strategy   // empty means any
	From      *time.Time // inclusive
	To        *time.Time // inclusive
	Limit     int
	Offset    int
	Ascending bool
}
