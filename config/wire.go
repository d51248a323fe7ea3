// config/wire.go
package config

import (
	"camdevice-go/types"
)

// Credentials converts one credential block to the runtime type. A username
// selects WPA2-Enterprise; a bare passphrase selects PSK; neither, an open
// network.
func (c CredentialConfig) Credentials() types.Credentials {
	auth := types.AuthOpen
	switch {
	case c.Username != "":
		auth = types.AuthEnterprise
	case c.Passphrase != "":
		auth = types.AuthPSK
	}
	return types.Credentials{
		SSID:       c.SSID,
		Passphrase: c.Passphrase,
		Username:   c.Username,
		Identity:   c.Identity,
		Auth:       auth,
	}
}

var sizeByName = map[string]types.FrameSize{
	"qqvga": types.SizeQQVGA,
	"qvga":  types.SizeQVGA,
	"vga":   types.SizeVGA,
	"svga":  types.SizeSVGA,
	"xga":   types.SizeXGA,
	"uxga":  types.SizeUXGA,
}

// ParseSize maps a config size name to the sensor enum. Unknown names fall
// back to VGA; Validate rejects them before this is reached.
func ParseSize(name string) types.FrameSize {
	if s, ok := sizeByName[name]; ok {
		return s
	}
	return types.SizeVGA
}

// DefaultSensor returns the boot sensor configuration.
func (c CameraConfig) DefaultSensor() types.CameraConfig {
	return types.CameraConfig{Size: ParseSize(c.DefaultSize), Quality: c.Quality}
}

// StillSensor returns the high-resolution capture configuration.
func (c CameraConfig) StillSensor() types.CameraConfig {
	return types.CameraConfig{Size: ParseSize(c.StillSize), Quality: c.Quality}
}

// StreamSensor returns the low-latency stream configuration.
func (c CameraConfig) StreamSensor() types.CameraConfig {
	return types.CameraConfig{Size: ParseSize(c.StreamSize), Quality: c.StreamQuality}
}
