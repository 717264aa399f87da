package core

import (
	"context"

	"github.com/huangsam/pagepulse/schema"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// RunBatch audits up to BatchSiteLimit sites with the mobile strategy.
// Per-site failures are recorded in the report and never abort the batch.
// Results keep the order in which sites were listed.
func (a *Auditor) RunBatch(ctx context.Context) (schema.BatchReport, error) {
	sites, err := a.store.ListAllSites(ctx, schema.BatchSiteLimit)
	if err != nil {
		return schema.BatchReport{}, asStorageError("list sites", err)
	}

	var limiter *rate.Limiter
	if a.batchQPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(a.batchQPS), 1)
	}

	results := make([]schema.BatchResult, len(sites))
	g := new(errgroup.Group)
	g.SetLimit(a.batchWorkers)
	for i, site := range sites {
		g.Go(func() error {
			results[i] = a.auditSite(ctx, limiter, site)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	a.log.WithField("sites", len(sites)).Info("batch finished")
	return schema.BatchReport{Success: true, Ran: len(results), Details: results}, nil
}

// auditSite runs one batch entry and classifies its outcome.
func (a *Auditor) auditSite(ctx context.Context, limiter *rate.Limiter, site schema.Site) schema.BatchResult {
	res := schema.BatchResult{SiteID: site.ID, Site: site.URL}
	strategy := schema.MobileStrategy

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			res.Status = schema.BatchError
			res.Message = err.Error()
			a.metrics.ObserveBatchSite(string(res.Status))
			return res
		}
	}

	run, err := a.audit(ctx, site.UserID, site.ID, site.URL, strategy)
	a.metrics.ObserveAudit(string(strategy), outcome(err))
	switch {
	case err == nil:
		res.Status = schema.BatchOK
		res.Performance = run.Metrics.Performance
	case schema.IsProviderFailure(err):
		res.Status = schema.BatchFailed
		res.Message = err.Error()
	default:
		res.Status = schema.BatchError
		res.Message = err.Error()
	}
	if err != nil {
		a.log.WithError(err).WithField("site_id", site.ID).Warn("batch site failed")
	}
	a.metrics.ObserveBatchSite(string(res.Status))
	return res
}
