package alert

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/irenemg8/chatbot-sub001/internal/models"
)

const dayLayout = "2006-01-02"

// Engine evaluates audit events against the alert rules and appends
// combined alert lines to a day-partitioned side-channel file,
// independent of the main audit log.
type Engine struct {
	root          string
	enabled       bool
	minLevel      models.SensitivityLevel
	criticalTypes map[string]bool

	mu sync.Mutex
}

// NewEngine builds an alert engine over the audit root. criticalTypes
// lists the data-type identifiers that trigger mandatory alerting
// regardless of level.
func NewEngine(root string, enabled bool, criticalTypes []string) *Engine {
	critical := make(map[string]bool, len(criticalTypes))
	for _, t := range criticalTypes {
		critical[t] = true
	}
	return &Engine{
		root:          root,
		enabled:       enabled,
		minLevel:      models.LevelConfidential,
		criticalTypes: critical,
	}
}

// Evaluate runs every rule independently over the event. If any rule
// fires, the triggered messages are joined into one combined alert and
// appended to the alert file. A no-op when alerting is disabled.
func (e *Engine) Evaluate(event models.AuditEvent) ([]models.AlertRecord, error) {
	if !e.enabled {
		return nil, nil
	}

	var messages []string

	if event.Level >= e.minLevel {
		messages = append(messages, fmt.Sprintf("sensitivity %s with %d redactions", event.Level, event.AnonymizedCount))
	}
	if event.Strategy == models.StrategyRejected {
		messages = append(messages, "content rejected by policy")
	}
	if critical := e.intersectCritical(event.DataTypes); len(critical) > 0 {
		messages = append(messages, "critical data types detected: "+strings.Join(critical, ", "))
	}

	if len(messages) == 0 {
		return nil, nil
	}

	record := models.AlertRecord{
		Timestamp: event.Timestamp,
		SessionID: event.SessionID,
		Summary:   strings.Join(messages, "; "),
	}
	if err := e.append(record); err != nil {
		return []models.AlertRecord{record}, fmt.Errorf("append alert line: %w", err)
	}
	return []models.AlertRecord{record}, nil
}

func (e *Engine) intersectCritical(types []string) []string {
	var hit []string
	for _, t := range types {
		if e.criticalTypes[t] {
			hit = append(hit, t)
		}
	}
	return hit
}

// DayFile returns the alert file path for a given instant's day.
func (e *Engine) DayFile(t time.Time) string {
	return filepath.Join(e.root, "alerts-"+t.Format(dayLayout)+".log")
}

func (e *Engine) append(record models.AlertRecord) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	f, err := os.OpenFile(e.DayFile(record.Timestamp), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] session=%s %s\n",
		record.Timestamp.Format(time.RFC3339), record.SessionID, record.Summary)
	if _, err := f.WriteString(line); err != nil {
		return err
	}
	return f.Sync()
}
