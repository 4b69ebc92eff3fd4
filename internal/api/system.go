package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/nerrad567/rwanda"
)

// StatsResponse describes the loaded dataset and the running process.
type StatsResponse struct {
	Timestamp     string         `json:"timestamp"`
	Version       string         `json:"version"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Dataset       DatasetStats   `json:"dataset"`
	Database      *DatabaseStats `json:"database,omitempty"`
	Runtime       RuntimeMetrics `json:"runtime"`
}

// DatasetStats contains entry counts per level of the in-memory table.
// Complete is false for a level when some parent is listed without it.
type DatasetStats struct {
	Source   string          `json:"source,omitempty"`
	Counts   map[string]int  `json:"counts"`
	Complete map[string]bool `json:"complete"`
}

// DatabaseStats contains row counts per level of the location repository.
type DatabaseStats struct {
	Counts map[string]int `json:"counts"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// handleStats returns dataset counts and process statistics.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	resp := StatsResponse{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Dataset: DatasetStats{
			Source:   s.datasetSource,
			Counts:   levelCounts(s.table.Counts()),
			Complete: levelCoverage(s.table),
		},
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
	}

	if s.locationRepo != nil {
		counts, err := s.locationRepo.CountByLevel(r.Context())
		if err != nil {
			s.logger.Warn("counting stored locations failed", "error", err)
		} else {
			resp.Database = &DatabaseStats{Counts: levelCounts(counts)}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// levelCounts keys counts by level name, including levels with no entries.
func levelCounts(counts map[rwanda.Level]int) map[string]int {
	out := make(map[string]int, len(rwanda.Levels))
	for _, l := range rwanda.Levels {
		out[l.String()] = counts[l]
	}
	return out
}

func levelCoverage(t *rwanda.Table) map[string]bool {
	out := make(map[string]bool, len(rwanda.Levels))
	for _, l := range rwanda.Levels {
		out[l.String()] = t.Complete(l)
	}
	return out
}
