// Package recorder persists the snapshot stream as JSON lines so a session
// can be inspected or replayed later. Paths ending in ".zst" are compressed.
package recorder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/framesim/framesim/sim"
	"github.com/framesim/framesim/sim/internal/fileio"
	"github.com/framesim/framesim/sim/wire"
)

// Recorder writes one wire.Snapshot per line (goroutine-safe).
// A write failure is logged once and disables the recorder; it never
// propagates into the engines.
type Recorder struct {
	mu      sync.Mutex
	w       io.WriteCloser
	enc     *json.Encoder
	err     error
	written int64
	closed  bool
}

// New wraps an open writer. The recorder owns w and closes it on Close.
func New(w io.WriteCloser) *Recorder {
	return &Recorder{w: w, enc: json.NewEncoder(w)}
}

// Create opens path for writing and returns a recorder on it.
func Create(path string) (*Recorder, error) {
	w, err := fileio.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create recording %s: %w", path, err)
	}
	return New(w), nil
}

// Deliver implements sim.Sink.
func (r *Recorder) Deliver(snapshot sim.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil || r.closed {
		return
	}
	if err := r.enc.Encode(wire.FromSnapshot(snapshot)); err != nil {
		r.err = err
		logrus.WithError(err).Warn("recorder: write failed, recording stopped")
		return
	}
	r.written++
}

// Written returns the number of records written so far.
func (r *Recorder) Written() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.written
}

// Err returns the first write error, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Close flushes and closes the underlying writer. It returns the first
// write error if one occurred.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return r.err
	}
	r.closed = true
	return errors.Join(r.err, r.w.Close())
}

// ReadAll loads every record from a recording written by Recorder.
func ReadAll(path string) ([]wire.Snapshot, error) {
	rc, err := fileio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording %s: %w", path, err)
	}
	defer rc.Close()
	return Decode(rc)
}

// Decode reads JSON-lines records from r until EOF.
func Decode(r io.Reader) ([]wire.Snapshot, error) {
	dec := json.NewDecoder(r)
	var records []wire.Snapshot
	for {
		var rec wire.Snapshot
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				return records, nil
			}
			return nil, fmt.Errorf("record %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
}

// Keys returns the access sequence that produced the records, in order.
func Keys(records []wire.Snapshot) []string {
	keys := make([]string, len(records))
	for i, rec := range records {
		keys[i] = rec.Page
	}
	return keys
}
