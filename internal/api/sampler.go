package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/gray-bridge/internal/infrastructure/mqtt"
)

// runSampler periodically samples every enabled device and pushes the
// readings to the side channels: retained device state on MQTT and
// variable_value points in the history bucket. Runs until the server
// context is cancelled.
func (s *Server) runSampler(ctx context.Context) {
	interval := time.Duration(s.cfg.Bridge.SampleInterval) * time.Second

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("device sampler started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("device sampler stopped")
			return
		case <-ticker.C:
			count, err := s.sampleDevices(ctx)
			if err != nil {
				s.logger.Warn("device sampling failed", "error", err)
				continue
			}
			s.logger.Debug("devices sampled", "count", count)
		}
	}
}

// sampleDevices takes one reading of every enabled device. Returns the
// number of devices sampled. Per-device failures are logged and
// skipped; only a registry listing failure aborts the pass.
func (s *Server) sampleDevices(ctx context.Context) (int, error) {
	devices, err := s.registry.Devices(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing devices: %w", err)
	}

	sampled := 0
	for _, dev := range devices {
		value, err := s.store.GetValue(ctx, dev.VarID)
		if err != nil {
			s.logger.Warn("sampling variable failed", "var_id", dev.VarID, "error", err)
			continue
		}
		sampled++

		if s.influx != nil {
			s.influx.RecordValue(dev.VarID, value)
		}

		if s.mqtt != nil {
			payload, err := json.Marshal(map[string]any{
				"id":     dev.ID,
				"var_id": dev.VarID,
				"state":  dev.State,
				"value":  value,
				"ts":     time.Now().Unix(),
			})
			if err != nil {
				continue
			}
			topic := mqtt.Topics{}.DeviceState(dev.ID)
			if perr := s.mqtt.PublishRetained(topic, payload); perr != nil {
				s.logger.Warn("device state publish failed", "device", dev.ID, "error", perr)
			}
		}
	}

	return sampled, nil
}
