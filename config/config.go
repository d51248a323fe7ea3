// config/config.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	WiFi    WiFiConfig    `yaml:"wifi"`
	Button  ButtonConfig  `yaml:"button"`
	Camera  CameraConfig  `yaml:"camera"`
	Storage StorageConfig `yaml:"storage"`
	HTTP    HTTPConfig    `yaml:"http"`
	Log     LogConfig     `yaml:"log"`
}

// ---- WIFI ----

type WiFiConfig struct {
	Primary  CredentialConfig `yaml:"primary"`
	Fallback CredentialConfig `yaml:"fallback"`

	RetrySpacingS int `yaml:"retry_spacing_s"`
	HealthCheckS  int `yaml:"health_check_s"`
}

type CredentialConfig struct {
	SSID       string `yaml:"ssid"`
	Passphrase string `yaml:"passphrase"`
	Username   string `yaml:"username"` // set => WPA2-Enterprise
	Identity   string `yaml:"identity"`
}

// ---- BUTTON ----

type ButtonConfig struct {
	Pin         int `yaml:"pin"`
	DebounceMs  int `yaml:"debounce_ms"`
	LongPressMs int `yaml:"long_press_ms"`
}

// ---- CAMERA ----

type CameraConfig struct {
	DefaultSize   string `yaml:"default_size"`
	StillSize     string `yaml:"still_size"`
	StreamSize    string `yaml:"stream_size"`
	Quality       int    `yaml:"quality"`
	StreamQuality int    `yaml:"stream_quality"`
	StreamFPS     int    `yaml:"stream_fps"`
	FlashPin      int    `yaml:"flash_pin"` // -1 = none
}

// ---- STORAGE ----

type StorageConfig struct {
	Root string `yaml:"root"`
}

// ---- HTTP ----

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// ---- LOG ----

type LogConfig struct {
	Capacity  int `yaml:"capacity"`
	LineWidth int `yaml:"line_width"`
}

// Load reads and parses one YAML file. The result is raw: call Validate and
// then Normalize before use.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration, used as the base for Load and
// directly when no config file is present.
func Default() *Config {
	return &Config{
		WiFi: WiFiConfig{
			RetrySpacingS: 10,
			HealthCheckS:  5,
		},
		Button: ButtonConfig{
			Pin:         2,
			DebounceMs:  50,
			LongPressMs: 800,
		},
		Camera: CameraConfig{
			DefaultSize:   "vga",
			StillSize:     "uxga",
			StreamSize:    "qvga",
			Quality:       10,
			StreamQuality: 14,
			StreamFPS:     25,
			FlashPin:      -1,
		},
		Storage: StorageConfig{Root: "/sd"},
		HTTP:    HTTPConfig{Addr: ":80"},
		Log: LogConfig{
			Capacity:  320,
			LineWidth: 220,
		},
	}
}
