// Package mqtt provides MQTT client connectivity for Gray Bridge.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// Gray Bridge publishes variable state announcements after each successful
// write, and optionally accepts write requests over MQTT. The broker
// decouples the bridge from dashboards and other consumers.
//
//	Automation Host ↔ Gray Bridge ↔ MQTT Broker ↔ Consumers
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to variable write requests
//	err = client.Subscribe(mqtt.Topics{}.AllVariableSets(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Announce a variable's new state
//	topic := mqtt.Topics{}.VariableState(12345)
//	client.Publish(topic, []byte(`{"value":true}`), 1, true)
package mqtt
