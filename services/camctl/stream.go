// services/camctl/stream.go
package camctl

import (
	"io"

	"camdevice-go/errcode"
	"camdevice-go/x/pace"
)

// RunStreamSession delivers a continuous multipart JPEG stream to one remote
// viewer, occupying the calling goroutine for the connection's lifetime. The
// only cancellation signal is a failed write to the peer: on disconnect the
// sensor is restored to its default configuration and a session summary is
// logged. Entry is rejected while any other mode holds the camera.
func (c *Controller) RunStreamSession(w io.Writer) error {
	c.mu.Lock()
	if c.mode != ModeIdle {
		c.mu.Unlock()
		return errcode.Busy
	}
	c.mode = ModeStreaming
	c.streamActive = true
	c.mu.Unlock()
	c.publishStatus()

	c.camMu.Lock()
	if err := c.cam.Configure(c.opts.StreamConfig); err != nil {
		c.camMu.Unlock()
		c.exitStreaming()
		return &errcode.E{C: errcode.CameraFault, Op: "camctl.RunStreamSession", Err: err}
	}
	c.cur = c.opts.StreamConfig

	// Drop the frames buffered under the previous configuration.
	for i := 0; i < c.opts.StaleDiscard; i++ {
		f, err := c.cam.AcquireFrame()
		if err != nil {
			break
		}
		c.cam.ReleaseFrame(f)
	}
	c.camMu.Unlock()

	lim := pace.ForRate(c.opts.TargetFPS)
	start := c.now()
	frames := 0
	windowStart := start
	windowFrames := 0

	for {
		c.camMu.Lock()
		f, err := c.cam.AcquireFrame()
		if err != nil {
			c.camMu.Unlock()
			// No frame buffered this iteration; keep the pace and retry.
			lim.Wait()
			continue
		}
		werr := WriteFramePart(w, f.Data)
		c.cam.ReleaseFrame(f)
		c.camMu.Unlock()

		if werr != nil {
			// Remote disconnect.
			break
		}
		frames++
		windowFrames++

		if now := c.now(); now.Sub(windowStart) >= streamRateLog {
			fps := float64(windowFrames) / now.Sub(windowStart).Seconds()
			c.log.Logf("HTTP /stream fps=%.1f", fps)
			windowStart = now
			windowFrames = 0
		}

		lim.Wait()
	}

	elapsed := c.now().Sub(start)
	fps := 0.0
	if elapsed > 0 {
		fps = float64(frames) / elapsed.Seconds()
	}
	c.log.Logf("HTTP /stream end: %d frames, %.1fs, %.1f fps",
		frames, elapsed.Seconds(), fps)

	c.camMu.Lock()
	if err := c.cam.Configure(c.opts.DefaultConfig); err == nil {
		c.cur = c.opts.DefaultConfig
	}
	c.camMu.Unlock()

	c.exitStreaming()
	return nil
}

func (c *Controller) exitStreaming() {
	c.mu.Lock()
	// A still capture entering mid-stream may hold ModeCapturing right now;
	// its restore path checks streamActive and hands back Idle instead of
	// resurrecting the finished session.
	c.streamActive = false
	if c.mode == ModeStreaming {
		c.mode = ModeIdle
	}
	c.mu.Unlock()
	c.publishStatus()
}
