package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/rwanda"
	"github.com/nerrad567/rwanda/internal/metrics"
)

// NamesResponse is the body of a level listing.
type NamesResponse struct {
	Level rwanda.Level `json:"level"`
	Names []string     `json:"names"`
	Count int          `json:"count"`

	// Complete is false when the dataset lists a matched parent without
	// its subdivisions, so Names may be missing entries.
	Complete bool `json:"complete"`
}

// filterFromQuery reads the ancestor filter from the query string.
func filterFromQuery(r *http.Request) *rwanda.Filter {
	q := r.URL.Query()
	return &rwanda.Filter{
		Province: q.Get("province"),
		District: q.Get("district"),
		Sector:   q.Get("sector"),
		Cell:     q.Get("cell"),
	}
}

// handleNames returns the handler listing the names at level.
func (s *Server) handleNames(level rwanda.Level) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		res := s.table.Lookup(level, filterFromQuery(r))
		s.metrics.Record(metrics.Lookup{
			Level:    level,
			Source:   metrics.SourceHTTP,
			Resolved: res.Resolved,
			Count:    len(res.Names),
			Duration: time.Since(start),
		})

		if !res.Resolved {
			writeUnresolved(w, fmt.Sprintf("filter does not resolve to any %s", level))
			return
		}
		writeJSON(w, http.StatusOK, NamesResponse{
			Level:    level,
			Names:    res.Names,
			Count:    len(res.Names),
			Complete: res.Complete,
		})
	}
}
