// services/netmon/supervisor.go
package netmon

import (
	"time"

	"camdevice-go/bus"
	"camdevice-go/errcode"
	"camdevice-go/services/diag"
	"camdevice-go/types"
	"camdevice-go/x/timex"
)

// DefaultRetrySpacing is the minimum gap between reconnect attempts. Poll may
// be called far more often than this; the spacing gate keeps the radio from
// thrashing.
const DefaultRetrySpacing = 10 * time.Second

var topicStatusWiFi = bus.T("status", "wifi")

// Supervisor keeps the uplink associated. Two credential sets are carried:
// the primary is tried first on every cycle, the fallback after it, so a
// network that comes back later is picked up without a restart.
type Supervisor struct {
	link     types.Link
	primary  types.Credentials
	fallback types.Credentials

	spacing     time.Duration
	attempts    int
	lastAttempt time.Time
	wasUp       bool
	ssid        string

	log  *diag.Ring
	conn *bus.Connection
	now  func() time.Time
}

// New creates a supervisor. A zero spacing selects the default.
func New(link types.Link, primary, fallback types.Credentials, spacing time.Duration, ring *diag.Ring, conn *bus.Connection) *Supervisor {
	if spacing <= 0 {
		spacing = DefaultRetrySpacing
	}
	return &Supervisor{
		link:     link,
		primary:  primary,
		fallback: fallback,
		spacing:  spacing,
		log:      ring,
		conn:     conn,
		now:      time.Now,
	}
}

// Up reports the current link state.
func (s *Supervisor) Up() bool { return s.link.Up() }

// Attempts returns the reconnect attempts since the link was last up.
func (s *Supervisor) Attempts() int { return s.attempts }

// Poll runs one supervision cycle. Call it from the cooperative loop at the
// health-check cadence; attempt spacing is enforced here, so a faster caller
// never produces a faster reconnect rate.
func (s *Supervisor) Poll() {
	if s.link.Up() {
		if !s.wasUp {
			addr := ""
			if a, err := s.link.Addr(); err == nil {
				addr = a
			}
			s.log.Logf("[wifi] connected to %s, addr %s", s.ssid, addr)
			s.publish(true, addr)
		}
		s.wasUp = true
		s.attempts = 0
		return
	}

	if s.wasUp {
		s.log.Logf("[wifi] link lost")
		s.publish(false, "")
	}
	s.wasUp = false

	now := s.now()
	if !s.lastAttempt.IsZero() && now.Sub(s.lastAttempt) < s.spacing {
		return
	}
	s.lastAttempt = now
	s.attempts++

	if s.try(s.primary) || s.try(s.fallback) {
		return
	}
	s.log.Logf("[wifi] attempt %d failed, retrying in %ds",
		s.attempts, int(s.spacing.Seconds()))
	s.publish(false, "")
}

// try attempts one credential set. Returns true on association.
func (s *Supervisor) try(creds types.Credentials) bool {
	if !creds.Usable() {
		return false
	}
	s.log.Logf("[wifi] connecting to %s...", creds.SSID)
	if err := s.link.Connect(creds); err != nil {
		s.log.Logf("[wifi] %s: %s", creds.SSID, errcode.Of(err))
		return false
	}
	s.ssid = creds.SSID
	s.wasUp = true
	s.attempts = 0

	addr := ""
	if a, err := s.link.Addr(); err == nil {
		addr = a
	}
	s.log.Logf("[wifi] connected to %s, addr %s", creds.SSID, addr)
	s.publish(true, addr)
	return true
}

func (s *Supervisor) publish(up bool, addr string) {
	if s.conn == nil {
		return
	}
	s.conn.Publish(s.conn.NewMessage(topicStatusWiFi, types.LinkStatus{
		Up:       up,
		SSID:     s.ssid,
		Addr:     addr,
		Attempts: s.attempts,
		TS:       timex.NowMs(),
	}, true))
}
