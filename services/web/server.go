// services/web/server.go
package web

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"camdevice-go/bus"
	"camdevice-go/services/diag"
	"camdevice-go/services/storage"
	"camdevice-go/types"
)

// CameraControl is the slice of the capture controller the HTTP surface
// drives. The stream handler hands its connection to RunStreamSession, which
// occupies the handler goroutine until the viewer disconnects.
type CameraControl interface {
	RequestStillCapture() (string, error)
	StillFrame() ([]byte, error)
	RunStreamSession(w io.Writer) error
	SetFlash(on bool)
}

// Server is the device's HTTP surface: viewfinder stream, capture trigger,
// media browser and the diagnostic terminal.
type Server struct {
	mu        sync.Mutex // guards server and isRunning across Start/Stop
	server    *http.Server
	addr      string
	isRunning bool

	cam   CameraControl
	store *storage.Store
	ring  *diag.Ring
	cache *statusCache
}

// New creates the server. store may be nil when the block device is absent;
// the media endpoints then answer 503.
func New(addr string, cam CameraControl, store *storage.Store, ring *diag.Ring, conn *bus.Connection) *Server {
	return &Server{
		addr:  addr,
		cam:   cam,
		store: store,
		ring:  ring,
		cache: newStatusCache(conn),
	}
}

// Handler builds the route table. Exposed separately so tests can drive the
// mux through httptest without opening a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/capture", s.handleCapture)
	mux.HandleFunc("/stream", s.handleStream)
	mux.HandleFunc("/events", s.handleEvents)
	mux.HandleFunc("/log/clear", s.handleLogClear)
	mux.HandleFunc("/flash", s.handleFlash)
	mux.HandleFunc("/status", s.handleStatus)

	mux.HandleFunc("/sd/list", s.handleSDList)
	mux.HandleFunc("/sd/download", s.handleSDDownload)
	mux.HandleFunc("/sd/delete", s.handleSDDelete)
	mux.HandleFunc("/sd/status", s.handleSDStatus)

	return mux
}

// Start begins serving in a background goroutine.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	go func() {
		s.ring.Logf("[web] serving on %s", s.addr)
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			s.ring.Logf("[web] server error: %v", err)
		}
	}()

	s.isRunning = true
	return nil
}

// Stop shuts the listener down, waiting briefly for in-flight requests.
// Open stream and event connections are cut.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.server.Shutdown(ctx)
	s.cache.close()
	s.isRunning = false
	return err
}

// storeStatus returns the live storage status, falling back to an
// unavailable marker when there is no store.
func (s *Server) storeStatus() types.StorageStatus {
	if s.store == nil {
		return types.StorageStatus{Available: false, Error: "no storage device"}
	}
	return s.store.Status()
}
