// Package metrics records lookup telemetry.
//
// A Recorder keeps Prometheus counters and a latency histogram for every
// lookup served by the HTTP API and the MQTT responder, and forwards each
// lookup to optional sinks such as the InfluxDB client.
//
//	rec, err := metrics.New(prometheus.NewRegistry(), influxClient)
//	rec.Record(metrics.Lookup{Level: rwanda.LevelCell, Source: metrics.SourceHTTP, Resolved: true})
//
// A nil *Recorder is valid and records nothing.
package metrics
