package core

import (
	"time"

	"github.com/huangsam/pagepulse/schema"
)

// DashboardWindow is the trailing window of dashboard rollups.
const DashboardWindow = schema.DashboardWindowDays * 24 * time.Hour

// perfAccumulator sums performance scores for one site.
type perfAccumulator struct {
	sum   float64
	count int
}

func (a perfAccumulator) avg() float64 {
	if a.count == 0 {
		return 0
	}
	return a.sum / float64(a.count)
}

// Summarize computes the dashboard rollups for a user's runs and sites.
// Runs inside the trailing window count towards the recent run total, the average
// performance and the worst site. The worst site is the lowest per-site average;
// ties keep the site encountered first in runs.
func Summarize(runs []schema.Run, sites []schema.Site, now time.Time) schema.DashboardSummary {
	cutoff := now.Add(-DashboardWindow)
	summary := schema.DashboardSummary{
		GeneratedAt: now,
		TotalSites:  len(sites),
		Sites:       make([]schema.SiteSummary, 0, len(sites)),
	}

	var total perfAccumulator
	perSite := make(map[string]*perfAccumulator)
	recentPerSite := make(map[string]int)
	var order []string
	latest := make(map[string]*schema.Run)

	for i := range runs {
		r := &runs[i]
		if summary.LastRunTime == nil || r.CreatedAt.After(*summary.LastRunTime) {
			t := r.CreatedAt
			summary.LastRunTime = &t
		}
		if cur, ok := latest[r.SiteID]; !ok || r.CreatedAt.After(cur.CreatedAt) {
			latest[r.SiteID] = r
		}

		if r.CreatedAt.Before(cutoff) {
			continue
		}
		summary.RecentRuns++
		recentPerSite[r.SiteID]++

		if r.Metrics.Performance == nil {
			continue
		}
		perf := float64(*r.Metrics.Performance)
		total.sum += perf
		total.count++

		acc, ok := perSite[r.SiteID]
		if !ok {
			acc = &perfAccumulator{}
			perSite[r.SiteID] = acc
			order = append(order, r.SiteID)
		}
		acc.sum += perf
		acc.count++
	}

	if total.count > 0 {
		avg := total.avg()
		summary.AvgPerformance = &avg
	}

	siteByID := make(map[string]schema.Site, len(sites))
	for _, s := range sites {
		siteByID[s.ID] = s
	}

	worstID := ""
	for _, id := range order {
		if worstID == "" || perSite[id].avg() < perSite[worstID].avg() {
			worstID = id
		}
	}
	if worstID != "" {
		site, ok := siteByID[worstID]
		if !ok {
			site = schema.Site{ID: worstID}
		}
		avg := perSite[worstID].avg()
		summary.WorstSite = &schema.SiteSummary{
			Site:      site,
			LatestRun: latest[worstID],
			AvgPerf:   &avg,
			RunCount:  recentPerSite[worstID],
		}
	}

	for _, s := range sites {
		ss := schema.SiteSummary{
			Site:      s,
			LatestRun: latest[s.ID],
			RunCount:  recentPerSite[s.ID],
		}
		if acc, ok := perSite[s.ID]; ok {
			avg := acc.avg()
			ss.AvgPerf = &avg
		}
		summary.Sites = append(summary.Sites, ss)
	}
	return summary
}
