// services/camctl/controller.go
package camctl

import (
	"io"
	"sync"
	"time"

	"camdevice-go/bus"
	"camdevice-go/errcode"
	"camdevice-go/services/button"
	"camdevice-go/services/diag"
	"camdevice-go/types"
	"camdevice-go/x/timex"
)

// Mode is the controller's exclusive camera mode. At most one of the
// non-idle modes is active at any instant: the sensor has no concept of
// concurrent readers, so the controller is the only code path allowed to
// acquire frames.
type Mode uint8

const (
	ModeIdle Mode = iota
	ModeStreaming
	ModeCapturing
	ModeRecording
)

func (m Mode) String() string {
	switch m {
	case ModeStreaming:
		return "streaming"
	case ModeCapturing:
		return "capturing"
	case ModeRecording:
		return "recording"
	}
	return "idle"
}

// MediaStore is the slice of the storage layer the controller needs.
type MediaStore interface {
	SavePhoto(data []byte) (string, error)
	CreateVideo() (io.WriteCloser, string, error)
}

// Options carries the sensor configurations and pacing knobs.
type Options struct {
	DefaultConfig types.CameraConfig // boot / post-session configuration
	StillConfig   types.CameraConfig // high-resolution capture configuration
	StreamConfig  types.CameraConfig // low-resolution fast configuration

	TargetFPS    int // live stream rate cap
	StaleDiscard int // stale frames to drop when entering a stream session

	Flash types.GPIOPin // optional feedback LED
}

const (
	stillSettle    = 15 * time.Millisecond
	recProgressLog = 2 * time.Second
	streamRateLog  = 3 * time.Second
)

var topicStatusCamera = bus.T("status", "camera")

// Controller owns the sole camera resource handle and the open recording
// destination. Mode transitions and recording state are guarded by mu;
// camMu serialises every hardware access so a still capture entering
// mid-stream waits for the in-flight frame instead of interleaving.
type Controller struct {
	mu    sync.Mutex
	camMu sync.Mutex

	mode         Mode
	streamActive bool // a stream session is between entry and exit
	cam          types.Camera
	cur          types.CameraConfig // last configuration applied to the sensor

	store MediaStore
	btn   *button.Classifier
	log   *diag.Ring
	conn  *bus.Connection
	opts  Options

	// Recording session. Mutated only under mu; the poll loop is the only
	// writer while recording is open.
	dst        io.WriteCloser
	dstPath    string
	recStart   time.Time
	frames     uint32
	lastRecLog time.Time

	holdHandled bool // one recording attempt per physical hold

	now   func() time.Time
	sleep func(time.Duration)
}

// New creates the controller and applies the default sensor configuration.
// A nil store means the block device is unavailable: recording and button
// captures are rejected, the rest keeps working.
func New(cam types.Camera, store MediaStore, btn *button.Classifier, ring *diag.Ring, conn *bus.Connection, opts Options) (*Controller, error) {
	if opts.TargetFPS <= 0 {
		opts.TargetFPS = 25
	}
	if opts.StaleDiscard <= 0 {
		opts.StaleDiscard = 2
	}

	c := &Controller{
		cam:   cam,
		store: store,
		btn:   btn,
		log:   ring,
		conn:  conn,
		opts:  opts,
		now:   time.Now,
		sleep: time.Sleep,
	}
	if err := cam.Configure(opts.DefaultConfig); err != nil {
		return nil, &errcode.E{C: errcode.CameraFault, Op: "camctl.New", Err: err}
	}
	c.cur = opts.DefaultConfig
	c.publishStatus()
	return c, nil
}

// Mode returns the current camera mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Recording reports whether a recording destination is currently open.
func (c *Controller) Recording() bool { return c.Mode() == ModeRecording }

// RequestStillCapture grabs one high-quality frame and writes it to storage
// under an auto-incremented name, returning the stored path. Valid while
// idle or streaming; rejected immediately while a recording is open.
func (c *Controller) RequestStillCapture() (string, error) {
	data, err := c.takeStill()
	if err != nil {
		return "", err
	}
	if c.store == nil {
		return "", errcode.StorageUnavailable
	}
	path, err := c.store.SavePhoto(data)
	if err != nil {
		c.log.Logf("[sd] photo write failed: %s", errcode.Of(err))
		return "", err
	}
	c.log.Logf("[sd] saved %s (%d bytes)", path, len(data))
	c.blink(1, 50*time.Millisecond)
	return path, nil
}

// StillFrame grabs one high-quality frame and returns it without persisting
// it, for the inline capture endpoint. Same exclusivity rules as
// RequestStillCapture.
func (c *Controller) StillFrame() ([]byte, error) {
	return c.takeStill()
}

// takeStill performs the shared capture sequence: reserve the mode, swap the
// sensor to the still configuration, flush one stale frame, grab the next,
// and restore the prior configuration even on failure.
func (c *Controller) takeStill() ([]byte, error) {
	c.mu.Lock()
	if c.mode == ModeRecording || c.mode == ModeCapturing {
		c.mu.Unlock()
		return nil, errcode.Busy
	}
	prev := c.mode
	c.mode = ModeCapturing
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		// The stream session may have ended while this capture held the
		// mode; never hand ModeStreaming back with no session attached.
		if prev == ModeStreaming && !c.streamActive {
			c.mode = ModeIdle
		} else {
			c.mode = prev
		}
		c.publishStatusLocked()
		c.mu.Unlock()
	}()

	c.camMu.Lock()
	defer c.camMu.Unlock()

	restore := c.cur
	if err := c.cam.Configure(c.opts.StillConfig); err != nil {
		return nil, &errcode.E{C: errcode.CameraFault, Op: "camctl.takeStill", Err: err}
	}
	c.cur = c.opts.StillConfig
	defer func() {
		// Never leak the still configuration across a failed capture.
		if err := c.cam.Configure(restore); err == nil {
			c.cur = restore
		}
	}()

	// The device buffers ahead of the caller; drop one stale frame and give
	// the sensor a moment to settle on the new configuration.
	if f, err := c.cam.AcquireFrame(); err == nil {
		c.cam.ReleaseFrame(f)
	}
	c.sleep(stillSettle)

	f, err := c.cam.AcquireFrame()
	if err != nil {
		c.log.Logf("[cam] capture failed: no frame")
		return nil, &errcode.E{C: errcode.NoFrame, Op: "camctl.takeStill", Err: err}
	}
	data := make([]byte, len(f.Data))
	copy(data, f.Data)
	c.cam.ReleaseFrame(f)
	return data, nil
}

// StartRecording opens a new recording destination and transitions to
// Recording. Calling it while already recording is an idempotent no-op; any
// other active mode is a rejection.
func (c *Controller) StartRecording() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.mode {
	case ModeRecording:
		return nil
	case ModeIdle:
	default:
		return errcode.Busy
	}
	if c.store == nil {
		return errcode.StorageUnavailable
	}

	dst, path, err := c.store.CreateVideo()
	if err != nil {
		c.log.Logf("[sd] failed to create video file: %s", errcode.Of(err))
		return err
	}

	c.dst = dst
	c.dstPath = path
	c.recStart = c.now()
	c.frames = 0
	c.lastRecLog = c.recStart
	c.mode = ModeRecording

	c.log.Logf("[rec] started: %s", path)
	c.publishStatusLocked()
	c.blink(1, 100*time.Millisecond)
	return nil
}

// AppendRecordingFrame acquires one frame and appends it to the open
// destination as a self-delimited part record. Called once per polling-loop
// iteration while recording; if no frame is available the iteration is a
// no-op.
func (c *Controller) AppendRecordingFrame() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != ModeRecording {
		return nil
	}

	c.camMu.Lock()
	f, err := c.cam.AcquireFrame()
	if err != nil {
		c.camMu.Unlock()
		return nil // nothing buffered this iteration
	}
	werr := WriteFramePart(c.dst, f.Data)
	c.cam.ReleaseFrame(f)
	c.camMu.Unlock()

	if werr != nil {
		c.log.Logf("[rec] frame write failed: %s", errcode.Of(werr))
		return &errcode.E{C: errcode.StorageWrite, Op: "camctl.AppendRecordingFrame", Err: werr}
	}
	c.frames++

	if now := c.now(); now.Sub(c.lastRecLog) >= recProgressLog {
		c.lastRecLog = now
		c.log.Logf("[rec] recording... %ds, %d frames",
			int(now.Sub(c.recStart).Seconds()), c.frames)
	}
	return nil
}

// StopRecording flushes and closes the destination, logs the achieved frame
// rate and returns to Idle. A no-op when no recording is open.
func (c *Controller) StopRecording() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != ModeRecording {
		return
	}

	if err := c.dst.Close(); err != nil {
		c.log.Logf("[rec] close failed: %s", errcode.Of(err))
	}

	elapsed := c.now().Sub(c.recStart)
	fps := 0.0
	if elapsed > 0 {
		fps = float64(c.frames) / elapsed.Seconds()
	}
	c.log.Logf("[rec] stopped: %d frames, %.1fs, %.1f fps",
		c.frames, elapsed.Seconds(), fps)

	c.dst = nil
	c.dstPath = ""
	c.mode = ModeIdle
	c.publishStatusLocked()
	c.blink(2, 100*time.Millisecond)
}

// publishStatus publishes the retained camera status.
func (c *Controller) publishStatus() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.publishStatusLocked()
}

func (c *Controller) publishStatusLocked() {
	if c.conn == nil {
		return
	}
	c.conn.Publish(c.conn.NewMessage(topicStatusCamera, types.CameraStatus{
		Mode:       c.mode.String(),
		Recording:  c.mode == ModeRecording,
		RecordPath: c.dstPath,
		Frames:     c.frames,
		TS:         timex.NowMs(),
	}, true))
}

// blink flashes the feedback LED without blocking the caller.
func (c *Controller) blink(times int, on time.Duration) {
	pin := c.opts.Flash
	if pin == nil {
		return
	}
	go func() {
		for i := 0; i < times; i++ {
			pin.Set(true)
			time.Sleep(on)
			pin.Set(false)
			time.Sleep(on)
		}
	}()
}

// SetFlash drives the feedback LED directly (the /flash endpoint).
func (c *Controller) SetFlash(on bool) {
	if c.opts.Flash != nil {
		c.opts.Flash.Set(on)
	}
}
