// services/heartbeat/service.go
package heartbeat

import (
	"context"
	"time"

	"camdevice-go/bus"
	"camdevice-go/services/camctl"
	"camdevice-go/services/diag"
	"camdevice-go/services/netmon"
	"camdevice-go/services/storage"
)

var (
	topicConfigHeartbeat = bus.T("config", "heartbeat")
	topicStatusStorage   = bus.T("status", "storage")
)

// Service writes a periodic health line into the diagnostic log and refreshes
// the retained storage status. The interval can be changed at runtime over
// the config topic.
type Service struct {
	Ctl   *camctl.Controller
	Net   *netmon.Supervisor
	Store *storage.Store
	Ring  *diag.Ring

	Interval time.Duration
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	defer cfgSub.Unsubscribe()

	interval := s.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	start := time.Now()

	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Ring.Logf("[sys] heartbeat stopping")
			return
		case <-tick.C:
			s.report(conn, start)
		case msg := <-cfgSub.Channel():
			if m, ok := msg.Payload.(map[string]any); ok {
				if iv, ok := m["interval"].(float64); ok && iv > 0 {
					tick.Reset(time.Duration(iv) * time.Second)
					s.Ring.Logf("[sys] heartbeat interval set to %.0fs", iv)
				}
			}
		}
	}
}

func (s *Service) report(conn *bus.Connection, start time.Time) {
	up := time.Since(start)

	wifi := "down"
	if s.Net != nil && s.Net.Up() {
		wifi = "up"
	}

	mode := "idle"
	if s.Ctl != nil {
		mode = s.Ctl.Mode().String()
	}

	if s.Store != nil {
		st := s.Store.Status()
		s.Ring.Logf("[sys] up %ds, mode %s, wifi %s, sd %d photos / %d videos",
			int(up.Seconds()), mode, wifi, st.Photos, st.Videos)
		conn.Publish(conn.NewMessage(topicStatusStorage, st, true))
		return
	}
	s.Ring.Logf("[sys] up %ds, mode %s, wifi %s, sd absent",
		int(up.Seconds()), mode, wifi)
}

// Start launches the heartbeat loop.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
