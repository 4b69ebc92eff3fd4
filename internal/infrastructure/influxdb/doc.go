// Package influxdb writes lookup telemetry to InfluxDB 2.x.
//
// It wraps the official influxdb-client-go v2 library. Each lookup served
// by the API or the MQTT responder becomes one point in the "lookups"
// measurement:
//
//	lookups,level=cell,resolved=true,source=http count=3i,duration_ms=0.012
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	rec, err := metrics.New(reg, client)
//
// Writes are non-blocking and batched according to batch_size and
// flush_interval. Batch errors are delivered to the SetOnError callback.
package influxdb
