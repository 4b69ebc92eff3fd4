package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/rwanda"
)

// Lookup sources.
const (
	SourceHTTP = "http"
	SourceMQTT = "mqtt"
)

// Lookup describes one served query.
type Lookup struct {
	Level    rwanda.Level
	Source   string
	Resolved bool
	Count    int // names returned
	Duration time.Duration
}

// Sink receives every recorded lookup. Implementations must not block.
type Sink interface {
	WriteLookup(l Lookup)
}

// Recorder holds the lookup collectors registered with one registry.
type Recorder struct {
	lookups     *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	unresolved  *prometheus.CounterVec
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	sinks       []Sink
}

// New creates a Recorder and registers its collectors with reg.
// Nil sinks are skipped.
func New(reg prometheus.Registerer, sinks ...Sink) (*Recorder, error) {
	r := &Recorder{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rwanda_lookups_total",
			Help: "Total number of hierarchy lookups",
		}, []string{"level", "source", "resolved"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rwanda_lookup_duration_seconds",
			Help:    "Lookup duration in seconds",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		}, []string{"level", "source"}),
		unresolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rwanda_unresolved_total",
			Help: "Total number of lookups whose filter did not resolve",
		}, []string{"level"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rwanda_search_cache_hits_total",
			Help: "Total search cache hits",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rwanda_search_cache_misses_total",
			Help: "Total search cache misses",
		}),
	}

	for _, c := range []prometheus.Collector{r.lookups, r.duration, r.unresolved, r.cacheHits, r.cacheMisses} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering collector: %w", err)
		}
	}

	for _, s := range sinks {
		if s != nil {
			r.sinks = append(r.sinks, s)
		}
	}
	return r, nil
}

// Record counts l and forwards it to every sink.
func (r *Recorder) Record(l Lookup) {
	if r == nil {
		return
	}
	level := l.Level.String()
	r.lookups.WithLabelValues(level, l.Source, strconv.FormatBool(l.Resolved)).Inc()
	r.duration.WithLabelValues(level, l.Source).Observe(l.Duration.Seconds())
	if !l.Resolved {
		r.unresolved.WithLabelValues(level).Inc()
	}
	for _, s := range r.sinks {
		s.WriteLookup(l)
	}
}

// CacheHit counts a search served from the cache.
func (r *Recorder) CacheHit() {
	if r != nil {
		r.cacheHits.Inc()
	}
}

// CacheMiss counts a search that had to walk the table.
func (r *Recorder) CacheMiss() {
	if r != nil {
		r.cacheMisses.Inc()
	}
}

// Handler exposes the collectors gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
