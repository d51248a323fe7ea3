// config/normalize.go
package config

import (
	"camdevice-go/x/mathx"
)

// Normalize clamps tunables into their working ranges. It is allowed to
// mutate configuration and MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.Camera.StreamFPS = mathx.Clamp(cfg.Camera.StreamFPS, 1, 60)
	cfg.Button.DebounceMs = mathx.Clamp(cfg.Button.DebounceMs, 1, 1000)
	cfg.Button.LongPressMs = mathx.Clamp(cfg.Button.LongPressMs, cfg.Button.DebounceMs, 10000)

	cfg.WiFi.RetrySpacingS = mathx.Clamp(cfg.WiFi.RetrySpacingS, 1, 600)
	cfg.WiFi.HealthCheckS = mathx.Clamp(cfg.WiFi.HealthCheckS, 1, 3600)

	cfg.Log.Capacity = mathx.Clamp(cfg.Log.Capacity, 16, 4096)
	cfg.Log.LineWidth = mathx.Clamp(cfg.Log.LineWidth, 40, 1024)
}
