// platform/factories_host.go
//go:build !rp2040 && !rp2350

package platform

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"sync"

	"camdevice-go/errcode"
	"camdevice-go/types"
)

// ----------------------------- GPIO (host) -----------------------------------

// FakePin implements GPIOPin and IRQPin for host-side runs and tests. Set
// fires the registered IRQ handler ISR-style when the level change matches
// the configured edge.
type FakePin struct {
	mu      sync.RWMutex
	number  int
	level   bool
	modeOut bool
	irqEdge types.Edge
	irqFunc func()
}

func (p *FakePin) ConfigureInput(_ types.Pull) error {
	p.mu.Lock()
	p.modeOut = false
	p.mu.Unlock()
	return nil
}

func (p *FakePin) ConfigureOutput(initial bool) error {
	p.mu.Lock()
	p.modeOut = true
	p.level = initial
	p.mu.Unlock()
	return nil
}

func (p *FakePin) Set(level bool) {
	p.mu.Lock()
	old := p.level
	p.level = level
	irq := p.irqFunc
	want := irqWanted(p.irqEdge, edgeFrom(old, level))
	p.mu.Unlock()
	if want && irq != nil {
		irq()
	}
}

func (p *FakePin) Get() bool {
	p.mu.RLock()
	v := p.level
	p.mu.RUnlock()
	return v
}

func (p *FakePin) Toggle() { p.Set(!p.Get()) }

func (p *FakePin) Number() int { return p.number }

func (p *FakePin) SetIRQ(edge types.Edge, handler func()) error {
	p.mu.Lock()
	p.irqEdge = edge
	p.irqFunc = handler
	p.mu.Unlock()
	return nil
}

func (p *FakePin) ClearIRQ() error {
	p.mu.Lock()
	p.irqEdge = types.EdgeNone
	p.irqFunc = nil
	p.mu.Unlock()
	return nil
}

func edgeFrom(old, new bool) types.Edge {
	switch {
	case !old && new:
		return types.EdgeRising
	case old && !new:
		return types.EdgeFalling
	default:
		return types.EdgeNone
	}
}

func irqWanted(cfg, seen types.Edge) bool {
	if cfg == types.EdgeBoth {
		return seen == types.EdgeRising || seen == types.EdgeFalling
	}
	return cfg == seen
}

var (
	muPins sync.Mutex
	pins   = map[int]*FakePin{}
)

// Pin returns a stable *FakePin per number so tests and the wiring code see
// the same instance.
func Pin(n int) types.IRQPin {
	muPins.Lock()
	defer muPins.Unlock()
	p, ok := pins[n]
	if !ok {
		p = &FakePin{number: n}
		pins[n] = p
	}
	return p
}

// ----------------------------- Camera (host) ---------------------------------

// SimCamera renders synthetic JPEG frames: a moving gradient with a frame
// counter, enough to exercise the full capture and stream paths off-device.
type SimCamera struct {
	mu  sync.Mutex
	cfg types.CameraConfig
	n   int
}

func NewSimCamera() *SimCamera { return &SimCamera{} }

func (c *SimCamera) Configure(cfg types.CameraConfig) error {
	c.mu.Lock()
	c.cfg = cfg
	c.mu.Unlock()
	return nil
}

func (c *SimCamera) AcquireFrame() (*types.Frame, error) {
	c.mu.Lock()
	cfg := c.cfg
	c.n++
	n := c.n
	c.mu.Unlock()

	w, h := cfg.Size.Dimensions()
	if w == 0 {
		return nil, &errcode.E{C: errcode.CameraFault, Op: "SimCamera.AcquireFrame",
			Msg: "not configured"}
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x + n*4) % 256),
				G: uint8((y + n*2) % 256),
				B: uint8(n % 256),
				A: 255,
			})
		}
	}

	// Sensor convention is 0 best .. 63 worst; jpeg wants 1..100.
	q := 95 - cfg.Quality
	if q < 1 {
		q = 1
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
		return nil, &errcode.E{C: errcode.CameraFault, Op: "SimCamera.AcquireFrame", Err: err}
	}
	return &types.Frame{Data: buf.Bytes()}, nil
}

func (c *SimCamera) ReleaseFrame(f *types.Frame) {}

func init() {
	RegisterCamera(func() (types.Camera, error) {
		return NewSimCamera(), nil
	})
}

// ----------------------------- Uplink (host) ----------------------------------

// FakeLink associates instantly against a scriptable SSID set.
type FakeLink struct {
	mu     sync.Mutex
	up     bool
	Accept map[string]bool // nil accepts everything
}

func (l *FakeLink) Connect(creds types.Credentials) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Accept != nil && !l.Accept[creds.SSID] {
		return errcode.LinkDown
	}
	l.up = true
	return nil
}

func (l *FakeLink) Disconnect() {
	l.mu.Lock()
	l.up = false
	l.mu.Unlock()
}

func (l *FakeLink) Up() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.up
}

func (l *FakeLink) Addr() (string, error) {
	if !l.Up() {
		return "", errcode.LinkDown
	}
	return "127.0.0.1", nil
}

// NewLink returns the host uplink stand-in.
func NewLink() types.Link { return &FakeLink{} }

// ----------------------------- Console (host) ---------------------------------

type stdoutSink struct{}

func (stdoutSink) WriteLine(line string) { fmt.Println(line) }

// Console returns the host console sink.
func Console() types.ConsoleSink { return stdoutSink{} }
