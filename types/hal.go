package types

// ------------------------
// Camera resource
// ------------------------

// FrameSize selects the sensor output resolution.
type FrameSize uint8

const (
	SizeQQVGA FrameSize = iota // 160x120
	SizeQVGA                   // 320x240
	SizeVGA                    // 640x480
	SizeSVGA                   // 800x600
	SizeXGA                    // 1024x768
	SizeUXGA                   // 1600x1200
)

func (s FrameSize) String() string {
	switch s {
	case SizeQQVGA:
		return "qqvga"
	case SizeQVGA:
		return "qvga"
	case SizeVGA:
		return "vga"
	case SizeSVGA:
		return "svga"
	case SizeXGA:
		return "xga"
	case SizeUXGA:
		return "uxga"
	}
	return "unknown"
}

// Dimensions returns the pixel width and height of the frame size.
func (s FrameSize) Dimensions() (w, h int) {
	switch s {
	case SizeQQVGA:
		return 160, 120
	case SizeQVGA:
		return 320, 240
	case SizeVGA:
		return 640, 480
	case SizeSVGA:
		return 800, 600
	case SizeXGA:
		return 1024, 768
	case SizeUXGA:
		return 1600, 1200
	}
	return 0, 0
}

// CameraConfig is one sensor configuration. Quality follows the sensor's JPEG
// encoder convention: 0..63, lower means better quality.
type CameraConfig struct {
	Size    FrameSize `json:"size"`
	Quality int       `json:"quality"`
}

// Frame is one encoded JPEG frame as handed out by the camera driver. The
// buffer belongs to the driver; it must be returned via ReleaseFrame before
// the same consumer acquires again.
type Frame struct {
	Data []byte
}

// Camera is the single hardware image sensor. It has no notion of concurrent
// readers; callers must serialise access (the capture controller does).
// AcquireFrame returns promptly: if no frame is buffered it returns an error
// rather than blocking.
type Camera interface {
	Configure(cfg CameraConfig) error
	AcquireFrame() (*Frame, error)
	ReleaseFrame(f *Frame)
}

// ------------------------
// GPIO
// ------------------------

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

type Edge uint8

const (
	EdgeNone Edge = iota
	EdgeRising
	EdgeFalling
	EdgeBoth
)

type GPIOPin interface {
	ConfigureInput(pull Pull) error
	ConfigureOutput(initial bool) error
	Set(level bool)
	Get() bool
	Toggle()
	Number() int
}

// IRQPin is a GPIOPin that can deliver edge interrupts. The handler runs in
// interrupt context: it must only write primitive fields and return.
type IRQPin interface {
	GPIOPin
	SetIRQ(edge Edge, handler func()) error
	ClearIRQ() error
}

// ------------------------
// Wireless uplink
// ------------------------

type AuthType uint8

const (
	AuthOpen AuthType = iota
	AuthPSK
	AuthEnterprise
)

// Credentials is one credential set for the uplink. Enterprise networks carry
// a username (and optional outer identity) in addition to the passphrase.
type Credentials struct {
	SSID       string
	Passphrase string
	Username   string
	Identity   string
	Auth       AuthType
}

// Usable reports whether the set is populated enough to attempt a connect.
func (c Credentials) Usable() bool {
	if c.SSID == "" {
		return false
	}
	if c.Auth == AuthEnterprise && (c.Username == "" || c.Passphrase == "") {
		return false
	}
	return true
}

// Link is the wireless uplink device. Connect blocks for at most the driver's
// own attempt timeout and returns the outcome.
type Link interface {
	Connect(creds Credentials) error
	Disconnect()
	Up() bool
	Addr() (string, error)
}

// ------------------------
// Console
// ------------------------

// ConsoleSink receives a copy of every diagnostic line for offline debugging:
// serial console on device builds, stdout on host builds.
type ConsoleSink interface {
	WriteLine(line string)
}
