// platform/factories_rp2xxx.go
//go:build rp2040 || rp2350

package platform

import (
	"machine"
	"time"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers/netdev"
	"tinygo.org/x/drivers/netlink"
	"tinygo.org/x/drivers/netlink/probe"

	"camdevice-go/errcode"
	"camdevice-go/types"
)

// ----------------------------- GPIO (rp2) ------------------------------------

type rp2Pin struct {
	p machine.Pin
	n int
}

// Pin maps a logical number directly to machine.Pin(n), matching Pico GP
// numbering.
func Pin(n int) types.IRQPin {
	return &rp2Pin{p: machine.Pin(n), n: n}
}

func (r *rp2Pin) ConfigureInput(pull types.Pull) error {
	var mode machine.PinMode
	switch pull {
	case types.PullUp:
		mode = machine.PinInputPullup
	case types.PullDown:
		mode = machine.PinInputPulldown
	default:
		mode = machine.PinInput
	}
	r.p.Configure(machine.PinConfig{Mode: mode})
	return nil
}

func (r *rp2Pin) ConfigureOutput(initial bool) error {
	r.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	r.p.Set(initial)
	return nil
}

func (r *rp2Pin) Set(level bool) { r.p.Set(level) }
func (r *rp2Pin) Get() bool      { return r.p.Get() }

func (r *rp2Pin) Toggle() {
	if r.p.Get() {
		r.p.Low()
	} else {
		r.p.High()
	}
}

func (r *rp2Pin) Number() int { return r.n }

func (r *rp2Pin) SetIRQ(edge types.Edge, handler func()) error {
	return r.p.SetInterrupt(toPinChange(edge), func(machine.Pin) { handler() })
}

func (r *rp2Pin) ClearIRQ() error {
	var zero machine.PinChange
	return r.p.SetInterrupt(zero, nil)
}

func toPinChange(e types.Edge) machine.PinChange {
	switch e {
	case types.EdgeRising:
		return machine.PinRising
	case types.EdgeFalling:
		return machine.PinFalling
	case types.EdgeBoth:
		return machine.PinToggle
	default:
		var zero machine.PinChange
		return zero
	}
}

// ----------------------------- Uplink (rp2) -----------------------------------

// netLink adapts the probed netlink device. Probe picks the on-board radio
// for the build target.
type netLink struct {
	link netlink.Netlinker
	dev  netdev.Netdever
	up   bool
}

func NewLink() types.Link {
	link, dev := probe.Probe()
	return &netLink{link: link, dev: dev}
}

func (l *netLink) Connect(creds types.Credentials) error {
	err := l.link.NetConnect(&netlink.ConnectParams{
		Ssid:           creds.SSID,
		Passphrase:     creds.Passphrase,
		ConnectTimeout: 10 * time.Second,
	})
	if err != nil {
		l.up = false
		return &errcode.E{C: errcode.LinkDown, Op: "platform.Connect", Err: err}
	}
	l.up = true
	return nil
}

func (l *netLink) Disconnect() {
	l.link.NetDisconnect()
	l.up = false
}

func (l *netLink) Up() bool { return l.up }

func (l *netLink) Addr() (string, error) {
	ip, err := l.dev.Addr()
	if err != nil {
		return "", err
	}
	return ip.String(), nil
}

// ----------------------------- Console (rp2) ----------------------------------

type uartSink struct {
	u *uartx.UART
}

func (s uartSink) WriteLine(line string) {
	s.u.Write([]byte(line))
	s.u.Write([]byte("\r\n"))
}

// Console returns the serial console sink on UART0 default pins.
func Console() types.ConsoleSink {
	hw := uartx.UART0
	_ = hw.Configure(uartx.UARTConfig{BaudRate: 115200})
	return uartSink{u: hw}
}
