// services/diag/ring.go
package diag

import (
	"fmt"
	"sync"

	"camdevice-go/types"
)

// Record is one diagnostic line plus its monotonic sequence number.
type Record struct {
	Seq  uint32 `json:"seq"`
	Line string `json:"line"`
}

// Ring is a fixed-capacity circular log store. New entries evict the oldest
// once full; the sequence counter never resets except on Clear. Append is
// safe from any context, including interrupt-style callbacks: the critical
// section covers only the slot copy and index updates.
type Ring struct {
	mu    sync.Mutex
	slots []string
	head  int
	seq   uint32
	width int
	sink  types.ConsoleSink
}

const (
	DefaultCapacity  = 320
	DefaultLineWidth = 220
)

// New creates a ring with the given slot count and line width. A nil sink
// disables the console mirror.
func New(capacity, width int, sink types.ConsoleSink) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if width <= 0 {
		width = DefaultLineWidth
	}
	return &Ring{
		slots: make([]string, capacity),
		width: width,
		sink:  sink,
	}
}

// Append stores one line, truncating it silently to the slot width, and
// mirrors it to the console sink.
func (r *Ring) Append(line string) {
	if len(line) > r.width {
		line = line[:r.width]
	}

	if r.sink != nil {
		r.sink.WriteLine(line)
	}

	r.mu.Lock()
	r.slots[r.head] = line
	r.head = (r.head + 1) % len(r.slots)
	r.seq++
	r.mu.Unlock()
}

// Logf formats and appends one line. Fire-and-forget.
func (r *Ring) Logf(format string, args ...any) {
	r.Append(fmt.Sprintf(format, args...))
}

// Seq returns the current sequence counter.
func (r *Ring) Seq() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq
}

// Snapshot returns the most recent up-to-maxN records in chronological order.
func (r *Ring) Snapshot(maxN int) []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	if maxN < 0 {
		maxN = 0
	}
	return r.copyLocked(uint32(maxN))
}

// TailSince returns every record appended after seq, in chronological order,
// capped to the ring capacity. Records already evicted are reported in lost,
// not reconstructed.
func (r *Ring) TailSince(seq uint32) (recs []Record, lost int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if seq >= r.seq {
		return nil, 0
	}
	missed := r.seq - seq
	capN := uint32(len(r.slots))
	if missed > capN {
		lost = int(missed - capN)
		missed = capN
	}
	return r.copyLocked(missed), lost
}

// copyLocked copies the newest n records. Caller holds r.mu.
func (r *Ring) copyLocked(n uint32) []Record {
	if n > r.seq {
		n = r.seq
	}
	capN := uint32(len(r.slots))
	if n > capN {
		n = capN
	}
	if n == 0 {
		return nil
	}

	out := make([]Record, 0, n)
	idx := r.head - int(n)
	for idx < 0 {
		idx += len(r.slots)
	}
	seq := r.seq - n
	for i := uint32(0); i < n; i++ {
		out = append(out, Record{Seq: seq + i + 1, Line: r.slots[idx]})
		idx = (idx + 1) % len(r.slots)
	}
	return out
}

// Clear resets head and sequence to zero and blanks all slots.
func (r *Ring) Clear() {
	r.mu.Lock()
	r.head = 0
	r.seq = 0
	for i := range r.slots {
		r.slots[i] = ""
	}
	r.mu.Unlock()
}
