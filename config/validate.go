// config/validate.go
package config

import (
	"fmt"
)

var knownSizes = map[string]bool{
	"qqvga": true,
	"qvga":  true,
	"vga":   true,
	"svga":  true,
	"xga":   true,
	"uxga":  true,
}

// Validate checks configuration correctness. It performs declarative
// validation only and never mutates the configuration.
func Validate(cfg *Config) error {
	for _, s := range []struct{ field, val string }{
		{"camera.default_size", cfg.Camera.DefaultSize},
		{"camera.still_size", cfg.Camera.StillSize},
		{"camera.stream_size", cfg.Camera.StreamSize},
	} {
		if !knownSizes[s.val] {
			return fmt.Errorf("%s: unknown frame size %q", s.field, s.val)
		}
	}

	if cfg.Camera.Quality < 0 || cfg.Camera.Quality > 63 {
		return fmt.Errorf("camera.quality: %d out of range 0..63", cfg.Camera.Quality)
	}
	if cfg.Camera.StreamQuality < 0 || cfg.Camera.StreamQuality > 63 {
		return fmt.Errorf("camera.stream_quality: %d out of range 0..63", cfg.Camera.StreamQuality)
	}

	if cfg.Button.Pin < 0 {
		return fmt.Errorf("button.pin: %d is not a pin number", cfg.Button.Pin)
	}

	// Enterprise networks need both halves of the credential.
	p := cfg.WiFi.Primary
	if p.Username != "" && p.Passphrase == "" {
		return fmt.Errorf("wifi.primary: username set without passphrase")
	}

	if cfg.HTTP.Addr == "" {
		return fmt.Errorf("http.addr: empty")
	}
	return nil
}
