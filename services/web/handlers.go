// services/web/handlers.go
package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"camdevice-go/errcode"
	"camdevice-go/services/camctl"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, indexHTML)
}

// handleCapture grabs one high-quality frame. With ?save=1 the frame is
// persisted and the stored name returned; otherwise the JPEG bytes are
// served inline.
func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("save") == "1" {
		path, err := s.cam.RequestStillCapture()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]string{"saved": path})
		return
	}

	data, err := s.cam.StillFrame()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// flushWriter pushes every frame to the socket straight away; a buffered
// stream would hold the viewfinder several frames behind the sensor.
type flushWriter struct {
	w http.ResponseWriter
	f http.Flusher
}

func (fw flushWriter) Write(p []byte) (int, error) {
	n, err := fw.w.Write(p)
	if err == nil && fw.f != nil {
		fw.f.Flush()
	}
	return n, err
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type",
		"multipart/x-mixed-replace;boundary="+camctl.Boundary)
	w.Header().Set("Cache-Control", "no-store")

	f, _ := w.(http.Flusher)
	s.ring.Logf("[web] stream viewer from %s", r.RemoteAddr)
	if err := s.cam.RunStreamSession(flushWriter{w: w, f: f}); err != nil {
		// Headers are already gone; the status line is all we can do.
		if errcode.Of(err) == errcode.Busy {
			http.Error(w, "camera busy", http.StatusConflict)
		}
	}
}

func (s *Server) handleLogClear(w http.ResponseWriter, r *http.Request) {
	s.ring.Clear()
	writeJSON(w, map[string]string{"log": "cleared"})
}

func (s *Server) handleFlash(w http.ResponseWriter, r *http.Request) {
	on := r.URL.Query().Get("on") == "1"
	s.cam.SetFlash(on)
	writeJSON(w, map[string]bool{"flash": on})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.cache.snapshot())
}

func (s *Server) handleSDList(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, errcode.StorageUnavailable)
		return
	}
	files, err := s.store.List(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, files)
}

func (s *Server) handleSDDownload(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, errcode.StorageUnavailable)
		return
	}
	name := r.URL.Query().Get("file")
	rc, size, err := s.store.OpenFile(name)
	if err != nil {
		writeError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", name))
	io.Copy(w, rc)
}

func (s *Server) handleSDDelete(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, errcode.StorageUnavailable)
		return
	}
	name := r.URL.Query().Get("file")
	if err := s.store.Delete(name); err != nil {
		writeError(w, err)
		return
	}
	s.ring.Logf("[sd] deleted %s", name)
	writeJSON(w, map[string]string{"deleted": name})
}

func (s *Server) handleSDStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.storeStatus())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeError maps error codes onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	code := errcode.Of(err)
	status := http.StatusInternalServerError
	switch code {
	case errcode.Busy:
		status = http.StatusConflict
	case errcode.NotFound:
		status = http.StatusNotFound
	case errcode.InvalidParams:
		status = http.StatusBadRequest
	case errcode.StorageUnavailable:
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": string(code)})
}
