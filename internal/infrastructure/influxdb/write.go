package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/rwanda/internal/metrics"
)

// lookupMeasurement is the measurement written for every served lookup.
const lookupMeasurement = "lookups"

// WriteLookup records one lookup as a point in the lookups measurement.
// It implements metrics.Sink. The write is non-blocking.
func (c *Client) WriteLookup(l metrics.Lookup) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(lookupPoint(l, time.Now()))
}

// lookupPoint tags a lookup by level, source and resolution and stores the
// result size and latency as fields.
func lookupPoint(l metrics.Lookup, ts time.Time) *write.Point {
	return write.NewPoint(
		lookupMeasurement,
		map[string]string{
			"level":    l.Level.String(),
			"source":   l.Source,
			"resolved": strconv.FormatBool(l.Resolved),
		},
		map[string]interface{}{
			"count":       l.Count,
			"duration_ms": float64(l.Duration) / float64(time.Millisecond),
		},
		ts,
	)
}

// WritePoint writes a custom point with full control over tags and fields.
//
//	client.WritePoint("dataset",
//	    map[string]string{"source": "embedded"},
//	    map[string]interface{}{"provinces": 5, "villages": 12})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
