// services/web/status.go
package web

import (
	"sync"

	"camdevice-go/bus"
	"camdevice-go/types"
	"camdevice-go/x/timex"
)

// DeviceStatus is the /status response: the latest retained report from each
// subsystem plus the device clock.
type DeviceStatus struct {
	WiFi    types.LinkStatus    `json:"wifi"`
	Camera  types.CameraStatus  `json:"camera"`
	Storage types.StorageStatus `json:"storage"`
	NowMs   int64               `json:"now_ms"`
}

// statusCache mirrors the retained status topics so /status answers from
// memory instead of querying each subsystem. Retained delivery fills the
// cache immediately on subscribe.
type statusCache struct {
	mu   sync.Mutex
	cur  DeviceStatus
	done chan struct{}
}

func newStatusCache(conn *bus.Connection) *statusCache {
	c := &statusCache{done: make(chan struct{})}
	if conn == nil {
		return c
	}
	sub := conn.Subscribe(bus.T("status", "#"))
	go c.run(sub)
	return c
}

func (c *statusCache) run(sub *bus.Subscription) {
	for {
		select {
		case <-c.done:
			sub.Unsubscribe()
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			c.apply(msg)
		}
	}
}

func (c *statusCache) apply(msg *bus.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := msg.Payload.(type) {
	case types.LinkStatus:
		c.cur.WiFi = v
	case types.CameraStatus:
		c.cur.Camera = v
	case types.StorageStatus:
		c.cur.Storage = v
	}
}

func (c *statusCache) snapshot() DeviceStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.cur
	out.NowMs = timex.NowMs()
	return out
}

func (c *statusCache) close() { close(c.done) }
