// Package authlog appends authentication events to one JSON-lines file per
// UTC day.
package authlog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aussiebroadwan/assettrack/internal/auth/domain"
	"github.com/aussiebroadwan/assettrack/pkg/slogx"
)

// DefaultDir is where logs go when AUTH_LOG_DIR is unset.
const DefaultDir = "LOGS/auth"

// Recorder is what handlers use to record auth events.
type Recorder interface {
	Record(ctx context.Context, ev domain.AuthEvent)
}

// Writer appends events to <Dir>/auth_<YYYY-MM-DD>.log.
type Writer struct {
	Dir string
	Now func() time.Time

	mu sync.Mutex
}

func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = DefaultDir
	}
	return &Writer{Dir: dir, Now: time.Now}
}

// FileName returns the log file for the UTC day containing t.
func FileName(t time.Time) string {
	return "auth_" + t.UTC().Format(time.DateOnly) + ".log"
}

// Write appends ev as a single line. A zero timestamp is filled in.
func (w *Writer) Write(ev domain.AuthEvent) error {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = now().UTC()
	}

	line, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(w.Dir, 0750); err != nil {
		return fmt.Errorf("create auth log dir: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(w.Dir, FileName(ev.Timestamp)), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		return fmt.Errorf("open auth log: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("write auth log: %w", err)
	}
	return f.Close()
}

// Record writes ev and logs, rather than returns, any failure. Losing an
// audit line must never fail a login or logout.
func (w *Writer) Record(ctx context.Context, ev domain.AuthEvent) {
	if err := w.Write(ev); err != nil {
		slogx.FromContext(ctx).Error("failed to write auth event",
			"action", ev.Action,
			"username", ev.Username,
			"err", err,
		)
	}
}

// Discard drops every event.
type Discard struct{}

func (Discard) Record(context.Context, domain.AuthEvent) {}
