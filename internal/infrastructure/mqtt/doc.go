// Package mqtt provides MQTT client connectivity for the lookup responder.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - A retained status topic: online on connect, offline on Close, and a
//     crash will published by the broker otherwise
//   - Topic builders for the request/response lookup scheme
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT, mqtt.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllRequests(), client.QoS(), handler)
//
// # Security Considerations
//
//   - TLS should be enabled when the broker is not local (cfg.Broker.TLS=true)
//   - Anonymous access is only for local development
package mqtt
