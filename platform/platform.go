// platform/platform.go
package platform

import (
	"sync"

	"camdevice-go/errcode"
	"camdevice-go/types"
)

// CameraBuilder constructs the board's camera driver.
type CameraBuilder func() (types.Camera, error)

var (
	muCamera  sync.Mutex
	camera    CameraBuilder
	cameraSet bool
)

// RegisterCamera installs the camera builder for this board. It panics on
// duplicate registration to catch mistakes at start-up.
func RegisterCamera(b CameraBuilder) {
	muCamera.Lock()
	defer muCamera.Unlock()
	if cameraSet {
		panic("platform: camera builder already registered")
	}
	camera = b
	cameraSet = true
}

// NewCamera builds the registered camera. The device cannot function without
// its sensor, so callers treat an error here as fatal.
func NewCamera() (types.Camera, error) {
	muCamera.Lock()
	b := camera
	muCamera.Unlock()
	if b == nil {
		return nil, &errcode.E{C: errcode.CameraFault, Op: "platform.NewCamera",
			Msg: "no camera driver registered"}
	}
	return b()
}
