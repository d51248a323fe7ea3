// cmd/camfw/main.go
package main

import (
	"context"
	"os"
	"time"

	"camdevice-go/bus"
	"camdevice-go/config"
	"camdevice-go/platform"
	"camdevice-go/services/button"
	"camdevice-go/services/camctl"
	"camdevice-go/services/diag"
	"camdevice-go/services/heartbeat"
	"camdevice-go/services/netmon"
	"camdevice-go/services/storage"
	"camdevice-go/services/web"
	"camdevice-go/types"
)

const pollEvery = 10 * time.Millisecond

func loadConfig() *config.Config {
	path := "device.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	cfg, err := config.Load(path)
	if err != nil {
		println("[main] no config file, using defaults:", err.Error())
		cfg = config.Default()
	}
	if err := config.Validate(cfg); err != nil {
		println("[main] config invalid:", err.Error())
		os.Exit(1)
	}
	config.Normalize(cfg)
	return cfg
}

func main() {
	// Let the serial console settle on device boots.
	time.Sleep(2 * time.Second)
	ctx := context.Background()

	println("[main] loading configuration ...")
	cfg := loadConfig()

	ring := diag.New(cfg.Log.Capacity, cfg.Log.LineWidth, platform.Console())
	ring.Logf("[main] camdevice booting")

	println("[main] bootstrapping bus ...")
	b := bus.NewBus(8)

	println("[main] probing camera ...")
	cam, err := platform.NewCamera()
	if err != nil {
		// The device is useless without its sensor.
		ring.Logf("[main] fatal: %v", err)
		os.Exit(1)
	}

	var store *storage.Store
	if st, err := storage.Open(cfg.Storage.Root); err != nil {
		ring.Logf("[sd] unavailable: %v", err)
	} else {
		store = st
		ring.Logf("[sd] mounted %s", cfg.Storage.Root)
	}

	println("[main] wiring button ...")
	btn := button.New(button.Config{
		Debounce:  time.Duration(cfg.Button.DebounceMs) * time.Millisecond,
		LongPress: time.Duration(cfg.Button.LongPressMs) * time.Millisecond,
	})
	pin := platform.Pin(cfg.Button.Pin)
	if err := pin.ConfigureInput(types.PullUp); err != nil {
		ring.Logf("[btn] pin %d: %v", cfg.Button.Pin, err)
	}
	// Active-low wiring: pressed pulls the pin to ground.
	if err := pin.SetIRQ(types.EdgeBoth, func() { btn.OnEdge(!pin.Get()) }); err != nil {
		ring.Logf("[btn] irq: %v", err)
	}

	opts := camctl.Options{
		DefaultConfig: cfg.Camera.DefaultSensor(),
		StillConfig:   cfg.Camera.StillSensor(),
		StreamConfig:  cfg.Camera.StreamSensor(),
		TargetFPS:     cfg.Camera.StreamFPS,
	}
	if cfg.Camera.FlashPin >= 0 {
		fp := platform.Pin(cfg.Camera.FlashPin)
		_ = fp.ConfigureOutput(false)
		opts.Flash = fp
	}

	ctl, err := camctl.New(cam, mediaStore(store), btn, ring, b.NewConnection("camctl"), opts)
	if err != nil {
		ring.Logf("[main] fatal: camera init: %v", err)
		os.Exit(1)
	}

	println("[main] starting wifi supervisor ...")
	net := netmon.New(
		platform.NewLink(),
		cfg.WiFi.Primary.Credentials(),
		cfg.WiFi.Fallback.Credentials(),
		time.Duration(cfg.WiFi.RetrySpacingS)*time.Second,
		ring,
		b.NewConnection("netmon"),
	)

	println("[main] starting http server ...")
	srv := web.New(cfg.HTTP.Addr, ctl, store, ring, b.NewConnection("web"))
	if err := srv.Start(); err != nil {
		ring.Logf("[web] start failed: %v", err)
	}

	hb := &heartbeat.Service{
		Ctl:      ctl,
		Net:      net,
		Store:    store,
		Ring:     ring,
		Interval: 30 * time.Second,
	}
	_ = hb.Start(ctx, b.NewConnection("heartbeat"))

	ring.Logf("[main] running")

	// Cooperative main loop: button and recording at poll cadence, link
	// health at its own.
	healthEvery := time.Duration(cfg.WiFi.HealthCheckS) * time.Second
	lastHealth := time.Time{}

	tick := time.NewTicker(pollEvery)
	defer tick.Stop()
	for range tick.C {
		ctl.PollButtonAndRecording()

		if now := time.Now(); now.Sub(lastHealth) >= healthEvery {
			lastHealth = now
			net.Poll()
		}
	}
}

// mediaStore keeps the controller's store strictly nil when the block device
// is absent; a typed nil *storage.Store inside the interface would defeat
// its nil checks.
func mediaStore(st *storage.Store) camctl.MediaStore {
	if st == nil {
		return nil
	}
	return st
}
