// services/heartbeat/service_test.go
package heartbeat

import (
	"context"
	"strings"
	"testing"
	"time"

	"camdevice-go/bus"
	"camdevice-go/services/diag"
	"camdevice-go/services/storage"
	"camdevice-go/types"
)

func TestHeartbeatReportsAndPublishesStorage(t *testing.T) {
	st, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	if _, err := st.SavePhoto([]byte("x")); err != nil {
		t.Fatalf("SavePhoto: %v", err)
	}

	b := bus.NewBus(8)
	ring := diag.New(32, 220, nil)
	svc := &Service{Store: st, Ring: ring, Interval: 10 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := svc.Start(ctx, b.NewConnection("heartbeat")); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for {
		found := false
		for _, rec := range ring.Snapshot(32) {
			if strings.Contains(rec.Line, "[sys] up") &&
				strings.Contains(rec.Line, "1 photos") {
				found = true
			}
		}
		if found {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("no health line within deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// The storage status is kept retained for late subscribers.
	sub := b.NewConnection("probe").Subscribe(bus.T("status", "storage"))
	select {
	case msg := <-sub.Channel():
		stStatus, ok := msg.Payload.(types.StorageStatus)
		if !ok {
			t.Fatalf("payload type %T", msg.Payload)
		}
		if stStatus.Photos != 1 {
			t.Errorf("photos = %d, want 1", stStatus.Photos)
		}
	case <-time.After(time.Second):
		t.Fatal("no retained storage status")
	}
}

func TestHeartbeatIntervalOverride(t *testing.T) {
	b := bus.NewBus(8)
	ring := diag.New(32, 220, nil)
	svc := &Service{Ring: ring, Interval: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := svc.Start(ctx, b.NewConnection("heartbeat")); err != nil {
		t.Fatalf("Start: %v", err)
	}

	pub := b.NewConnection("cfg")
	pub.Publish(pub.NewMessage(bus.T("config", "heartbeat"),
		map[string]any{"interval": float64(1)}, false))

	deadline := time.Now().Add(time.Second)
	for {
		for _, rec := range ring.Snapshot(32) {
			if strings.Contains(rec.Line, "heartbeat interval set to 1s") {
				return
			}
		}
		if time.Now().After(deadline) {
			t.Fatal("interval override not applied")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
