// services/camctl/poll.go
package camctl

import (
	"camdevice-go/errcode"
	"camdevice-go/services/button"
)

// PollButtonAndRecording is the cooperative-loop tick that turns classified
// button activity into controller transitions. Ordering matters: an open
// recording is always closed on release before the pending event is
// interpreted, so a hold-release is never mistaken for a photo trigger.
func (c *Controller) PollButtonAndRecording() {
	if c.btn == nil {
		return
	}

	pressed := c.btn.Pressed()

	// Long press still in progress: start recording while the button is
	// down. One attempt per physical hold, so a rejected start (storage
	// missing, stream active) does not spam the log every tick.
	if held, ok := c.btn.HeldFor(); ok && held >= c.btn.LongPress() {
		if !c.holdHandled {
			c.holdHandled = true
			c.log.Logf("[btn] long press detected - starting recording")
			if err := c.StartRecording(); err != nil {
				c.log.Logf("[btn] recording rejected: %s", errcode.Of(err))
			}
		}
	}
	if !pressed {
		c.holdHandled = false
	}

	// Recording stops the moment the button is released, before the release
	// event is classified below.
	if !pressed && c.Recording() {
		c.StopRecording()
	}

	// Consume the pending classification exactly once.
	if ev, ok := c.btn.Take(); ok {
		c.log.Logf("[btn] released after %dms (%s)", ev.Held.Milliseconds(), ev.Kind)
		if ev.Kind == button.Click && !c.Recording() {
			c.log.Logf("[btn] short press - capturing photo")
			if _, err := c.RequestStillCapture(); err != nil {
				c.log.Logf("[btn] capture failed: %s", errcode.Of(err))
			}
		}
	}

	// While recording, each tick appends at most one frame.
	if c.Recording() {
		_ = c.AppendRecordingFrame()
	}
}
