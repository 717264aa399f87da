package core

import (
	"context"
	"strings"

	"github.com/huangsam/pagepulse/internal/contract"
	"github.com/huangsam/pagepulse/schema"
)

// SiteUpdate holds optional changes to a site.
type SiteUpdate struct {
	Name *string
	URL  *string
}

// AddSite registers a new site for user. URLs are unique per user.
func (a *Auditor) AddSite(ctx context.Context, user schema.User, rawURL string, name string) (*schema.Site, error) {
	if user.ID == "" {
		return nil, schema.NewError(schema.KindUnauthorized, "missing caller identity")
	}
	canonical, err := contract.NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}
	site := &schema.Site{
		ID:        a.newID(),
		UserID:    user.ID,
		URL:       canonical,
		Name:      optionalName(name),
		CreatedAt: a.now().UTC(),
	}
	if err := a.store.CreateSite(ctx, site); err != nil {
		return nil, asStorageError("create site", err)
	}
	a.log.WithField("site_id", site.ID).Info("site added")
	return site, nil
}

// Sites lists the user's sites.
func (a *Auditor) Sites(ctx context.Context, user schema.User) ([]schema.Site, error) {
	if user.ID == "" {
		return nil, schema.NewError(schema.KindUnauthorized, "missing caller identity")
	}
	sites, err := a.store.ListSites(ctx, user.ID)
	if err != nil {
		return nil, asStorageError("list sites", err)
	}
	return sites, nil
}

// UpdateSite renames a site or changes its URL.
func (a *Auditor) UpdateSite(ctx context.Context, user schema.User, siteID string, update SiteUpdate) (*schema.Site, error) {
	if user.ID == "" {
		return nil, schema.NewError(schema.KindUnauthorized, "missing caller identity")
	}
	site, err := a.store.GetSite(ctx, user.ID, siteID)
	if err != nil {
		return nil, err
	}
	if update.Name != nil {
		site.Name = optionalName(*update.Name)
	}
	if update.URL != nil {
		canonical, err := contract.NormalizeURL(*update.URL)
		if err != nil {
			return nil, err
		}
		site.URL = canonical
	}
	if err := a.store.UpdateSite(ctx, site); err != nil {
		return nil, asStorageError("update site", err)
	}
	return site, nil
}

// RemoveSite deletes a site and its runs.
func (a *Auditor) RemoveSite(ctx context.Context, user schema.User, siteID string) error {
	if user.ID == "" {
		return schema.NewError(schema.KindUnauthorized, "missing caller identity")
	}
	if err := a.store.DeleteSite(ctx, user.ID, siteID); err != nil {
		return asStorageError("delete site", err)
	}
	a.log.WithField("site_id", siteID).Info("site removed")
	return nil
}

func optionalName(name string) *string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return &name
}
