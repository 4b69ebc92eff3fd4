package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"

	"github.com/nerrad567/rwanda"
	"github.com/nerrad567/rwanda/internal/location"
)

// Page size limits for search and level listings.
const (
	defaultSearchLimit = 50
	maxSearchLimit     = 500

	defaultListLimit = 100
	maxListLimit     = 1000
)

// LocationPage is one page of a level listing. Total counts every
// location at the level; Complete is false when the dataset lists some
// parent without its subdivisions at this level.
type LocationPage struct {
	Level    rwanda.Level        `json:"level"`
	Results  []location.Location `json:"results"`
	Count    int                 `json:"count"`
	Total    int                 `json:"total"`
	Offset   int                 `json:"offset"`
	Limit    int                 `json:"limit"`
	Complete bool                `json:"complete"`
}

// handleListLocations pages every location at one level.
// Parameters: level (required), sort (position|name), order (asc|desc),
// offset and limit.
func (s *Server) handleListLocations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	levelName := query.Get("level")
	if levelName == "" {
		writeBadRequest(w, "level is required")
		return
	}
	level, err := rwanda.ParseLevel(levelName)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	opts := location.ListOptions{Sort: query.Get("sort"), Limit: defaultListLimit}
	switch strings.ToLower(query.Get("order")) {
	case "", "asc":
	case "desc":
		opts.Desc = true
	default:
		writeBadRequest(w, "order must be asc or desc")
		return
	}
	if v := query.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeBadRequest(w, "offset must be a non-negative integer")
			return
		}
		opts.Offset = n
	}
	if v := query.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxListLimit {
			writeBadRequest(w, fmt.Sprintf("limit must be between 1 and %d", maxListLimit))
			return
		}
		opts.Limit = n
	}
	if err := opts.Validate(); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	page := LocationPage{
		Level:    level,
		Total:    s.table.Count(level),
		Offset:   opts.Offset,
		Limit:    opts.Limit,
		Complete: s.table.Complete(level),
	}
	if s.locationRepo != nil {
		page.Results, err = s.locationRepo.ListByLevel(r.Context(), level, opts)
		if err == nil {
			var counts map[rwanda.Level]int
			counts, err = s.locationRepo.CountByLevel(r.Context())
			page.Total = counts[level]
		}
		if err != nil {
			s.logger.Error("location listing failed", "level", level, "error", err)
			writeInternalError(w, "failed to list locations")
			return
		}
	} else {
		page.Results, err = location.ListTable(s.table, level, opts)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
	}
	page.Count = len(page.Results)

	writeJSON(w, http.StatusOK, page)
}

// handleSearch returns locations whose name contains q.
// Optional parameters: level (province..village) and limit.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeBadRequest(w, "q is required")
		return
	}

	var level rwanda.Level
	if v := r.URL.Query().Get("level"); v != "" {
		l, err := rwanda.ParseLevel(v)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		level = l
	}

	limit := defaultSearchLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxSearchLimit {
			writeBadRequest(w, fmt.Sprintf("limit must be between 1 and %d", maxSearchLimit))
			return
		}
		limit = n
	}

	results, err := s.search(r.Context(), q, level, limit)
	if err != nil {
		s.logger.Error("location search failed", "q", q, "error", err)
		writeInternalError(w, "failed to search locations")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results, "count": len(results)})
}

// search looks q up in the location repository, or in the table when no
// repository is configured, through the result cache.
func (s *Server) search(ctx context.Context, q string, level rwanda.Level, limit int) ([]location.Location, error) {
	key := fmt.Sprintf("%s|%d|%d", strings.ToLower(q), level, limit)
	if s.searchCache != nil {
		if v, found := s.searchCache.Get(key); found {
			s.metrics.CacheHit()
			return v.([]location.Location), nil
		}
		s.metrics.CacheMiss()
	}

	var results []location.Location
	if s.locationRepo != nil {
		found, err := s.locationRepo.SearchByName(ctx, q, level, limit)
		if err != nil {
			return nil, err
		}
		results = found
	} else {
		found := s.table.Search(q, level, limit)
		results = make([]location.Location, 0, len(found))
		for _, l := range found {
			results = append(results, location.FromTable(l, 0))
		}
	}

	if s.searchCache != nil {
		s.searchCache.Set(key, results, cache.DefaultExpiration)
	}
	return results, nil
}

// handleGetLocation returns a single location by code.
func (s *Server) handleGetLocation(w http.ResponseWriter, r *http.Request) {
	code, err := location.NormaliseCode(chi.URLParam(r, "code"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if s.locationRepo != nil {
		loc, err := s.locationRepo.GetByCode(r.Context(), code)
		if err != nil {
			s.writeRepoError(w, code, err)
			return
		}
		writeJSON(w, http.StatusOK, loc)
		return
	}

	l, ok := s.table.LocateCode(code)
	if !ok {
		writeNotFound(w, "location not found")
		return
	}
	writeJSON(w, http.StatusOK, location.FromTable(l, 0))
}

// handleListChildren returns the direct subdivisions of a location.
func (s *Server) handleListChildren(w http.ResponseWriter, r *http.Request) {
	code, err := location.NormaliseCode(chi.URLParam(r, "code"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if s.locationRepo != nil {
		children, err := s.locationRepo.ListChildren(r.Context(), code)
		if err != nil {
			s.writeRepoError(w, code, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"children": children, "count": len(children)})
		return
	}

	l, ok := s.table.LocateCode(code)
	if !ok {
		writeNotFound(w, "location not found")
		return
	}
	found := s.table.Children(l)
	children := make([]location.Location, 0, len(found))
	for _, c := range found {
		children = append(children, location.FromTable(c, 0))
	}
	writeJSON(w, http.StatusOK, map[string]any{"children": children, "count": len(children)})
}

// writeRepoError maps repository errors to responses.
func (s *Server) writeRepoError(w http.ResponseWriter, code string, err error) {
	switch {
	case errors.Is(err, location.ErrLocationNotFound):
		writeNotFound(w, "location not found")
	case errors.Is(err, location.ErrInvalidCode):
		writeBadRequest(w, err.Error())
	default:
		s.logger.Error("location lookup failed", "code", code, "error", err)
		writeInternalError(w, "failed to look up location")
	}
}
