// services/web/sse.go
package web

import (
	"fmt"
	"net/http"
	"time"
)

const (
	sseReplayLines = 120
	ssePollEvery   = 120 * time.Millisecond
	sseKeepalive   = 5 * time.Second
)

// handleEvents serves the diagnostic log as a server-sent-event stream: one
// replay burst of recent history, then incremental tail delivery keyed by
// the ring's sequence counter. Keepalive comments hold the connection open
// through quiet stretches.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	f, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Connection", "keep-alive")

	var seq uint32
	for _, rec := range s.ring.Snapshot(sseReplayLines) {
		if err := writeEvent(w, rec.Line); err != nil {
			return
		}
		seq = rec.Seq
	}
	f.Flush()

	ticker := time.NewTicker(ssePollEvery)
	defer ticker.Stop()
	lastSent := time.Now()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		recs, lost := s.ring.TailSince(seq)
		if lost > 0 {
			if err := writeEvent(w, fmt.Sprintf("... %d lines dropped ...", lost)); err != nil {
				return
			}
		}
		for _, rec := range recs {
			if err := writeEvent(w, rec.Line); err != nil {
				return
			}
			seq = rec.Seq
		}
		if len(recs) > 0 || lost > 0 {
			f.Flush()
			lastSent = time.Now()
			continue
		}

		if time.Since(lastSent) >= sseKeepalive {
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			f.Flush()
			lastSent = time.Now()
		}
	}
}

func writeEvent(w http.ResponseWriter, line string) error {
	_, err := fmt.Fprintf(w, "data: %s\n\n", line)
	return err
}
