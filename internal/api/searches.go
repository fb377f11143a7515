package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sells-group/property-intel/internal/activity"
	"github.com/sells-group/property-intel/internal/filter"
	"github.com/sells-group/property-intel/internal/model"
	"github.com/sells-group/property-intel/internal/savedsearch"
)

type createSearchRequest struct {
	Name    string           `json:"name"`
	Filters filter.Predicate `json:"filters"`
}

func (s *Server) handleListSearches(w http.ResponseWriter, r *http.Request) {
	list, err := s.searches.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateSearch(w http.ResponseWriter, r *http.Request) {
	var req createSearchRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Filters.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	saved, err := s.searches.Save(r.Context(), req.Name, req.Filters, s.userOf(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/searches/"+saved.ID)
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleGetSearch(w http.ResponseWriter, r *http.Request) {
	saved, err := s.searches.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteSearch(w http.ResponseWriter, r *http.Request) {
	if err := s.searches.Delete(r.Context(), chi.URLParam(r, "id"), s.userOf(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type savedResultsResponse struct {
	Search *savedsearch.SavedSearch `json:"search"`
	searchResponse
}

// handleSearchResults replays a saved predicate against the current records.
func (s *Server) handleSearchResults(w http.ResponseWriter, r *http.Request) {
	saved, err := s.searches.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	key := s.opts.DefaultSort
	if raw := r.URL.Query().Get("sort"); raw != "" {
		if key, err = filter.ParseSortKey(raw); err != nil {
			writeError(w, r, err)
			return
		}
	}
	offset, limit, err := s.page(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	all := s.source.GetAll()
	results := filter.Search(all, saved.Filters, key)
	writeJSON(w, http.StatusOK, savedResultsResponse{
		Search: saved,
		searchResponse: searchResponse{
			Total:   len(results),
			Offset:  offset,
			Limit:   limit,
			Sort:    key,
			Results: filter.Paginate(results, offset, limit),
			Facets:  filter.Facets(all, saved.Filters),
		},
	})
}

type activityResponse struct {
	Entries []model.ActivityEntry `json:"entries"`
	Groups  []activity.DayGroup   `json:"groups,omitempty"`
	Actions []string              `json:"actions"`
}

// handleActivity serves the audit trail. days limits the window; group=day
// adds calendar-day buckets in UTC.
func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days, err := queryInt(r, "days", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	since, err := activity.Days(days)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var all []model.ActivityEntry
	if s.log != nil {
		if all, err = s.log.ListActivity(r.Context()); err != nil {
			writeError(w, r, err)
			return
		}
	}

	f := activity.Filter{
		Query:  strings.TrimSpace(q.Get("query")),
		Action: q.Get("action"),
		UserID: q.Get("user"),
		Since:  since,
	}
	resp := activityResponse{
		Entries: activity.Apply(all, f, s.opts.Now()),
		Actions: activity.Actions(all),
	}
	if resp.Actions == nil {
		resp.Actions = []string{}
	}
	if q.Get("group") == "day" {
		resp.Groups = activity.GroupByDay(resp.Entries, time.UTC)
	}
	writeJSON(w, http.StatusOK, resp)
}
