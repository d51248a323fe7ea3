// config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"camdevice-go/types"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "device.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
wifi:
  primary:
    ssid: corp
    username: device01
    passphrase: secret
  fallback:
    ssid: guest
    passphrase: hunter2
camera:
  stream_fps: 15
http:
  addr: ":8080"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	Normalize(cfg)

	if cfg.WiFi.Primary.SSID != "corp" {
		t.Errorf("primary ssid = %q", cfg.WiFi.Primary.SSID)
	}
	if cfg.Camera.StreamFPS != 15 {
		t.Errorf("stream fps = %d", cfg.Camera.StreamFPS)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("http addr = %q", cfg.HTTP.Addr)
	}
	// Untouched fields keep their defaults.
	if cfg.Button.LongPressMs != 800 {
		t.Errorf("long press = %d, want default 800", cfg.Button.LongPressMs)
	}
	if cfg.Camera.DefaultSize != "vga" {
		t.Errorf("default size = %q, want vga", cfg.Camera.DefaultSize)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown size", func(c *Config) { c.Camera.StillSize = "8k" }},
		{"quality range", func(c *Config) { c.Camera.Quality = 99 }},
		{"negative pin", func(c *Config) { c.Button.Pin = -1 }},
		{"enterprise without passphrase", func(c *Config) {
			c.WiFi.Primary = CredentialConfig{SSID: "corp", Username: "dev"}
		}},
		{"empty addr", func(c *Config) { c.HTTP.Addr = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestNormalizeClampsRanges(t *testing.T) {
	cfg := Default()
	cfg.Camera.StreamFPS = 500
	cfg.Button.DebounceMs = 0
	cfg.Log.Capacity = 1

	Normalize(cfg)

	if cfg.Camera.StreamFPS != 60 {
		t.Errorf("stream fps = %d, want 60", cfg.Camera.StreamFPS)
	}
	if cfg.Button.DebounceMs != 1 {
		t.Errorf("debounce = %d, want 1", cfg.Button.DebounceMs)
	}
	if cfg.Log.Capacity != 16 {
		t.Errorf("log capacity = %d, want 16", cfg.Log.Capacity)
	}
}

func TestCredentialsAuthSelection(t *testing.T) {
	cases := []struct {
		name string
		in   CredentialConfig
		want types.AuthType
	}{
		{"enterprise", CredentialConfig{SSID: "a", Username: "u", Passphrase: "p"}, types.AuthEnterprise},
		{"psk", CredentialConfig{SSID: "a", Passphrase: "p"}, types.AuthPSK},
		{"open", CredentialConfig{SSID: "a"}, types.AuthOpen},
	}
	for _, tc := range cases {
		if got := tc.in.Credentials().Auth; got != tc.want {
			t.Errorf("%s: auth = %d, want %d", tc.name, got, tc.want)
		}
	}
}
