package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/irenemg8/chatbot-sub001/internal/models"
)

const (
	dayLayout     = "2006-01-02"
	emergencyFile = "emergency.log"
)

// SkippedLine reports one corrupt log line encountered during a range
// read. Corruption is surfaced as data, never as an aborted read.
type SkippedLine struct {
	File   string
	Line   int
	Reason string
}

// Writer owns the on-disk audit trail: one append-only JSONL file per
// calendar day under the audit root. Appends are serialized so that
// lines are never interleaved mid-write; each line is written complete
// and flushed before Record returns.
type Writer struct {
	root string

	mu      sync.Mutex
	handles map[string]*os.File // day -> lazily opened append handle
}

// NewWriter creates the audit root directory if needed and returns a
// writer over it.
func NewWriter(root string) (*Writer, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create audit root: %w", err)
	}
	return &Writer{root: root, handles: make(map[string]*os.File)}, nil
}

// Root returns the audit root directory.
func (w *Writer) Root() string {
	return w.root
}

// DayFile returns the audit file path for a given instant's day.
func (w *Writer) DayFile(t time.Time) string {
	return filepath.Join(w.root, "audit-"+t.Format(dayLayout)+".jsonl")
}

// Record appends one event to its day-partition file and flushes it to
// disk before returning; a crash after Record returns must not lose the
// event. On primary failure a minimal emergency line is attempted; only
// when that also fails is the event lost, and an error is returned so
// the caller can escalate.
func (w *Writer) Record(event models.AuditEvent) error {
	line, err := json.Marshal(event)
	if err != nil {
		// Marshal failure still goes through the emergency path so the
		// decision leaves a trace.
		return w.emergency(event, fmt.Errorf("marshal audit event: %w", err))
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.handle(event.Timestamp)
	if err != nil {
		return w.emergency(event, err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return w.emergency(event, fmt.Errorf("append audit line: %w", err))
	}
	if err := f.Sync(); err != nil {
		return w.emergency(event, fmt.Errorf("sync audit file: %w", err))
	}
	return nil
}

// handle returns the lazily opened append handle for the event's day.
// Callers must hold w.mu.
func (w *Writer) handle(t time.Time) (*os.File, error) {
	day := t.Format(dayLayout)
	if f, ok := w.handles[day]; ok {
		return f, nil
	}
	f, err := os.OpenFile(w.DayFile(t), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit day file: %w", err)
	}
	w.handles[day] = f
	return f, nil
}

// emergency performs the best-effort fallback write after a primary
// failure. Losing an audit event is the single worst-case failure mode
// of this subsystem and must never be silent.
func (w *Writer) emergency(event models.AuditEvent, cause error) error {
	log.Printf("Audit append failed, falling back to emergency log: %v", cause)

	f, err := os.OpenFile(filepath.Join(w.root, emergencyFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("audit event lost (emergency log unavailable: %v): %w", err, cause)
	}
	defer f.Close()

	line := fmt.Sprintf("%s session=%s level=%s strategy=%s error=%v\n",
		event.Timestamp.Format(time.RFC3339), event.SessionID, event.Level, event.Strategy, cause)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("audit event lost (emergency write failed: %v): %w", err, cause)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("audit event lost (emergency sync failed: %v): %w", err, cause)
	}
	return nil
}

// ReadRange scans the day files overlapping [from, to] and returns every
// event whose timestamp falls inside the bounds, in file order.
// Individually corrupt lines are skipped and reported; corruption in one
// day never prevents reading any other day.
func (w *Writer) ReadRange(from, to time.Time) ([]models.AuditEvent, []SkippedLine, error) {
	if to.Before(from) {
		return nil, nil, fmt.Errorf("invalid range: %s is after %s", from.Format(dayLayout), to.Format(dayLayout))
	}

	var events []models.AuditEvent
	var skipped []SkippedLine

	for day := truncateDay(from); !day.After(to); day = day.AddDate(0, 0, 1) {
		path := w.DayFile(day)
		dayEvents, daySkipped, err := readDayFile(path, from, to)
		if err != nil {
			if os.IsNotExist(err) {
				continue // no traffic that day
			}
			// An unreadable day is degraded to skip information so the
			// remaining days still get read.
			skipped = append(skipped, SkippedLine{File: filepath.Base(path), Reason: err.Error()})
			log.Printf("Skipping unreadable audit day file %s: %v", path, err)
			continue
		}
		events = append(events, dayEvents...)
		skipped = append(skipped, daySkipped...)
	}
	return events, skipped, nil
}

func readDayFile(path string, from, to time.Time) ([]models.AuditEvent, []SkippedLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var events []models.AuditEvent
	var skipped []SkippedLine

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var event models.AuditEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			skipped = append(skipped, SkippedLine{File: filepath.Base(path), Line: lineNo, Reason: err.Error()})
			log.Printf("Corrupt audit line %s:%d skipped: %v", filepath.Base(path), lineNo, err)
			continue
		}
		if event.Timestamp.Before(from) || event.Timestamp.After(to) {
			continue
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return events, skipped, err
	}
	return events, skipped, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Close releases every lazily opened day handle.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var firstErr error
	for day, f := range w.handles {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(w.handles, day)
	}
	return firstErr
}
