package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/pagepulse/core"
	"github.com/huangsam/pagepulse/internal/auth"
	"github.com/huangsam/pagepulse/internal/contract"
	"github.com/huangsam/pagepulse/schema"
	"github.com/sirupsen/logrus"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.Status != nil {
		if err := s.Status(r.Context()); err != nil {
			s.log().WithError(err).Warn("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	var req schema.AuditRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, 0)
		return
	}

	run, err := s.Auditor.Trigger(r.Context(), user, req)
	if err != nil {
		s.log().WithFields(logrus.Fields{
			"user_id":  user.ID,
			"site_id":  req.SiteID,
			"strategy": req.Strategy,
			"err":      err,
		}).Info("audit rejected")
		writeError(w, err, s.retryAfter())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"run": run})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	query, err := parseRunQuery(r)
	if err != nil {
		writeError(w, err, 0)
		return
	}
	runs, err := s.Auditor.History(r.Context(), user, query)
	if err != nil {
		writeError(w, err, 0)
		return
	}
	if runs == nil {
		runs = []schema.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"runs":   runs,
		"limit":  core.ClampLimit(query.Limit),
		"offset": query.Offset,
	})
}

func (s *Server) handleImpact(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	run, impact, err := s.Auditor.Impact(r.Context(), user, r.PathValue("id"))
	if err != nil {
		writeError(w, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"run": run, "impact": impact})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	summary, err := s.Auditor.Dashboard(r.Context(), user)
	if err != nil {
		writeError(w, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCron(w http.ResponseWriter, r *http.Request) {
	if err := auth.CheckCronSecret(r.Header.Get("Authorization"), s.CronSecret); err != nil {
		writeError(w, err, 0)
		return
	}

	report, err := s.Auditor.RunBatch(r.Context())
	if err != nil {
		s.log().WithError(err).Error("batch run failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "failed to fetch sites", Kind: schema.KindOf(err)})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type siteRequest struct {
	URL  *string `json:"url"`
	Name *string `json:"name"`
}

func (s *Server) handleListSites(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	sites, err := s.Auditor.Sites(r.Context(), user)
	if err != nil {
		writeError(w, err, 0)
		return
	}
	if sites == nil {
		sites = []schema.Site{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sites": sites})
}

func (s *Server) handleCreateSite(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	var req siteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, 0)
		return
	}
	if req.URL == nil {
		writeError(w, invalidInput("url is required"), 0)
		return
	}
	name := ""
	if req.Name != nil {
		name = *req.Name
	}

	site, err := s.Auditor.AddSite(r.Context(), user, *req.URL, name)
	if err != nil {
		writeError(w, err, 0)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"site": site})
}

func (s *Server) handleUpdateSite(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	var req siteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, 0)
		return
	}

	site, err := s.Auditor.UpdateSite(r.Context(), user, r.PathValue("id"), core.SiteUpdate{Name: req.Name, URL: req.URL})
	if err != nil {
		writeError(w, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"site": site})
}

func (s *Server) handleDeleteSite(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	if err := s.Auditor.RemoveSite(r.Context(), user, r.PathValue("id")); err != nil {
		writeError(w, err, 0)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	strategy := schema.Strategy(r.URL.Query().Get("strategy"))
	run, err := s.Auditor.LatestRun(r.Context(), user, r.PathValue("id"), strategy)
	if err != nil {
		writeError(w, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"run": run})
}

// retryAfter is the Retry-After hint for rate limited audits.
func (s *Server) retryAfter() int {
	if s.Auditor == nil || s.Auditor.Limiter() == nil {
		return 0
	}
	return int(s.Auditor.Limiter().Window().Seconds())
}

// decodeBody decodes a bounded JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return invalidInput("request body is required")
		}
		return invalidInput("invalid JSON")
	}
	return nil
}

// parseRunQuery reads history filters from the query string.
// siteId may repeat; from and to are RFC 3339; order is asc or desc.
func parseRunQuery(r *http.Request) (schema.RunQuery, error) {
	q := r.URL.Query()
	query := schema.RunQuery{
		SiteIDs:  q["siteId"],
		Strategy: schema.Strategy(q.Get("strategy")),
	}

	var err error
	if query.Limit, err = parseInt(q.Get("limit")); err != nil {
		return query, invalidInput("limit must be an integer")
	}
	if query.Offset, err = parseInt(q.Get("offset")); err != nil {
		return query, invalidInput("offset must be an integer")
	}
	if query.From, err = parseTime(q.Get("from")); err != nil {
		return query, invalidInput("from must be an RFC 3339 time")
	}
	if query.To, err = parseTime(q.Get("to")); err != nil {
		return query, invalidInput("to must be an RFC 3339 time")
	}

	switch strings.ToLower(q.Get("order")) {
	case "", "desc":
	case "asc":
		query.Ascending = true
	default:
		return query, invalidInput("order must be asc or desc")
	}
	return query, nil
}

func parseInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func parseTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(contract.DateTimeFormat, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
