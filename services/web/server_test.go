// services/web/server_test.go
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"camdevice-go/bus"
	"camdevice-go/errcode"
	"camdevice-go/services/camctl"
	"camdevice-go/services/diag"
	"camdevice-go/services/storage"
	"camdevice-go/types"
)

type fakeCam struct {
	still     []byte
	stillErr  error
	savedPath string
	saveErr   error
	parts     [][]byte
	streamErr error
	flash     bool
}

func (c *fakeCam) RequestStillCapture() (string, error) {
	return c.savedPath, c.saveErr
}

func (c *fakeCam) StillFrame() ([]byte, error) {
	return c.still, c.stillErr
}

func (c *fakeCam) RunStreamSession(w io.Writer) error {
	if c.streamErr != nil {
		return c.streamErr
	}
	for _, p := range c.parts {
		if err := camctl.WriteFramePart(w, p); err != nil {
			return nil
		}
	}
	return nil
}

func (c *fakeCam) SetFlash(on bool) { c.flash = on }

func newTestServer(t *testing.T, cam *fakeCam, store *storage.Store, conn *bus.Connection) (*Server, *diag.Ring) {
	t.Helper()
	ring := diag.New(64, 220, nil)
	return New(":0", cam, store, ring, conn), ring
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestStartStopConcurrentCallsAreIdempotent(t *testing.T) {
	s, _ := newTestServer(t, &fakeCam{}, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Start(); err != nil {
				t.Errorf("Start: %v", err)
			}
		}()
	}
	wg.Wait()

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Stop(); err != nil {
				t.Errorf("Stop: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestCaptureInline(t *testing.T) {
	cam := &fakeCam{still: []byte("jpegbytes")}
	s, _ := newTestServer(t, cam, nil, nil)

	rec := get(t, s, "/capture")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("content type = %q", ct)
	}
	if rec.Body.String() != "jpegbytes" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestCaptureSave(t *testing.T) {
	cam := &fakeCam{savedPath: "photos/IMG_0042.jpg"}
	s, _ := newTestServer(t, cam, nil, nil)

	rec := get(t, s, "/capture?save=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if resp["saved"] != "photos/IMG_0042.jpg" {
		t.Errorf("saved = %q", resp["saved"])
	}
}

func TestCaptureBusyMapsToConflict(t *testing.T) {
	cam := &fakeCam{stillErr: errcode.Busy}
	s, _ := newTestServer(t, cam, nil, nil)

	if rec := get(t, s, "/capture"); rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestStreamDeliversParts(t *testing.T) {
	cam := &fakeCam{parts: [][]byte{[]byte("one"), []byte("two")}}
	s, _ := newTestServer(t, cam, nil, nil)

	rec := get(t, s, "/stream")
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "multipart/x-mixed-replace") {
		t.Errorf("content type = %q", ct)
	}

	pr := camctl.NewPartReader(bytes.NewReader(rec.Body.Bytes()))
	var got []string
	for {
		p, err := pr.Next()
		if err != nil {
			break
		}
		got = append(got, string(p))
	}
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Errorf("parts = %v", got)
	}
}

func TestFlashToggle(t *testing.T) {
	cam := &fakeCam{}
	s, _ := newTestServer(t, cam, nil, nil)

	get(t, s, "/flash?on=1")
	if !cam.flash {
		t.Error("flash not switched on")
	}
	get(t, s, "/flash?on=0")
	if cam.flash {
		t.Error("flash not switched off")
	}
}

func TestMediaEndpointsWithoutStorage(t *testing.T) {
	s, _ := newTestServer(t, &fakeCam{}, nil, nil)

	for _, path := range []string{"/sd/list", "/sd/download?file=x", "/sd/delete?file=x"} {
		if rec := get(t, s, path); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: status = %d, want 503", path, rec.Code)
		}
	}
	// Status stays reachable and reports the gap.
	rec := get(t, s, "/sd/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("/sd/status: status = %d", rec.Code)
	}
	var st types.StorageStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if st.Available {
		t.Error("storage reported available")
	}
}

func TestMediaBrowseDownloadDelete(t *testing.T) {
	st, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	path, err := st.SavePhoto([]byte("photo-bytes"))
	if err != nil {
		t.Fatalf("SavePhoto: %v", err)
	}
	s, _ := newTestServer(t, &fakeCam{}, st, nil)

	rec := get(t, s, "/sd/list?type=photo")
	var files []types.FileInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &files); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(files) != 1 || files[0].Path != path {
		t.Fatalf("list = %+v", files)
	}

	rec = get(t, s, "/sd/download?file="+path)
	if rec.Code != http.StatusOK || rec.Body.String() != "photo-bytes" {
		t.Fatalf("download: status %d body %q", rec.Code, rec.Body.String())
	}

	rec = get(t, s, "/sd/delete?file="+path)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status %d", rec.Code)
	}
	if rec = get(t, s, "/sd/download?file="+path); rec.Code != http.StatusNotFound {
		t.Errorf("download after delete: status %d, want 404", rec.Code)
	}
}

func TestTraversalRejected(t *testing.T) {
	st, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	s, _ := newTestServer(t, &fakeCam{}, st, nil)

	rec := get(t, s, "/sd/download?file=photos/../../etc/passwd")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("traversal: status = %d, want 400", rec.Code)
	}
}

func TestEventsReplaysRecentLines(t *testing.T) {
	s, ring := newTestServer(t, &fakeCam{}, nil, nil)
	ring.Logf("line one")
	ring.Logf("line two")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "data: line one\n\n") ||
		!strings.Contains(body, "data: line two\n\n") {
		t.Errorf("replay missing, body = %q", body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
}

func TestStatusFedByBus(t *testing.T) {
	b := bus.NewBus(8)
	pub := b.NewConnection("test-pub")
	pub.Publish(pub.NewMessage(bus.T("status", "camera"),
		types.CameraStatus{Mode: "recording", Recording: true}, true))

	s, _ := newTestServer(t, &fakeCam{}, nil, b.NewConnection("web"))

	// The cache fills from retained delivery on subscribe.
	deadline := time.Now().Add(time.Second)
	for {
		rec := get(t, s, "/status")
		var st DeviceStatus
		if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
			t.Fatalf("bad JSON: %v", err)
		}
		if st.Camera.Mode == "recording" {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("status never reflected retained message: %+v", st)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
