package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/gray-bridge/internal/infrastructure/mqtt"
)

// mqttWriteTimeout bounds a write requested over the broker; there is
// no HTTP request context to inherit one from.
const mqttWriteTimeout = 15 * time.Second

// mqttWriteQoS is the subscription QoS for the write-request channel.
const mqttWriteQoS = 1

// startMQTTWriteChannel subscribes to the variable set topics so
// broker clients can request writes without going through the hook:
//
//	graybridge/variable/<id>/set  <- JSON value, or {"value": ...}
//
// Each accepted write is announced back on the state topic like a
// hook-initiated set_var.
func (s *Server) startMQTTWriteChannel() error {
	return s.mqtt.Subscribe(mqtt.Topics{}.AllVariableSets(), mqttWriteQoS, s.handleVariableSet)
}

// handleVariableSet executes one write requested over MQTT.
func (s *Server) handleVariableSet(topic string, payload []byte) error {
	varID, err := varIDFromSetTopic(topic)
	if err != nil {
		return err
	}

	value, err := decodeSetPayload(payload)
	if err != nil {
		s.auditLog("mqtt_set", varID, "", err.Error(), false)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), mqttWriteTimeout)
	defer cancel()

	result, err := s.writer.Write(ctx, varID, value)
	if err != nil {
		s.auditLog("mqtt_set", varID, "", err.Error(), false)
		return fmt.Errorf("writing variable %d: %w", varID, err)
	}

	s.announceWrite("mqtt_set", result)
	return nil
}

// varIDFromSetTopic extracts the variable ID from a set topic,
// e.g. "graybridge/variable/12345/set" -> 12345.
func varIDFromSetTopic(topic string) (int, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != mqtt.TopicPrefix || parts[1] != "variable" || parts[3] != "set" {
		return 0, fmt.Errorf("unexpected set topic %q", topic)
	}

	varID, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, fmt.Errorf("set topic %q: variable id is not numeric", topic)
	}
	return varID, nil
}

// decodeSetPayload extracts the requested value from a set message.
// Both a bare JSON value and a {"value": ...} wrapper are accepted.
func decodeSetPayload(payload []byte) (any, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty set payload")
	}

	if trimmed[0] == '{' {
		var wrapper struct {
			Value any `json:"value"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("decoding set payload: %w", err)
		}
		return wrapper.Value, nil
	}

	var value any
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return nil, fmt.Errorf("decoding set payload: %w", err)
	}
	return value, nil
}
