package types

// ---- Retained status payloads ----

// LinkStatus is published retained on "status/wifi".
type LinkStatus struct {
	Up       bool   `json:"up"`
	SSID     string `json:"ssid,omitempty"`
	Addr     string `json:"addr,omitempty"`
	Attempts int    `json:"attempts"`
	TS       int64  `json:"ts_ms"`
}

// CameraStatus is published retained on "status/camera".
type CameraStatus struct {
	Mode       string `json:"mode"` // "idle", "streaming", "capturing", "recording"
	Recording  bool   `json:"recording"`
	RecordPath string `json:"record_path,omitempty"`
	Frames     uint32 `json:"frames"`
	TS         int64  `json:"ts_ms"`
}

// StorageStatus is published retained on "status/storage" and served by the
// /sd/status endpoint.
type StorageStatus struct {
	Available bool   `json:"available"`
	Photos    int    `json:"photo_count"`
	Videos    int    `json:"video_count"`
	UsedBytes int64  `json:"used_bytes"`
	NextPhoto uint32 `json:"next_photo"`
	NextVideo uint32 `json:"next_video"`
	Error     string `json:"error,omitempty"`
}

// FileInfo describes one stored media file in /sd/list responses.
type FileInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
	Type string `json:"type"` // "photo" | "video"
}

// ---- Button ----

type ButtonInfo struct {
	Pin int `json:"pin"`
}
