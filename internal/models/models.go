package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// SensitivityLevel orders how damaging disclosure of a content fragment
// would be. Levels are totally ordered so they can be compared against
// alerting thresholds.
type SensitivityLevel int

const (
	LevelPublic SensitivityLevel = iota
	LevelInternal
	LevelConfidential
	LevelUltraSensitive
)

var levelNames = map[SensitivityLevel]string{
	LevelPublic:         "PUBLIC",
	LevelInternal:       "INTERNAL",
	LevelConfidential:   "CONFIDENTIAL",
	LevelUltraSensitive: "ULTRA_SENSITIVE",
}

func (l SensitivityLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel maps a level name back to its enum value.
func ParseLevel(s string) (SensitivityLevel, error) {
	for level, name := range levelNames {
		if name == s {
			return level, nil
		}
	}
	return LevelPublic, fmt.Errorf("unknown sensitivity level %q", s)
}

func (l SensitivityLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *SensitivityLevel) UnmarshalText(data []byte) error {
	level, err := ParseLevel(string(data))
	if err != nil {
		return err
	}
	*l = level
	return nil
}

// ProcessingStrategy describes what happened to a unit of content before
// it was (or was not) allowed to leave the machine.
type ProcessingStrategy string

const (
	StrategyPassThrough ProcessingStrategy = "PASS_THROUGH"
	StrategyMasked      ProcessingStrategy = "MASKED"
	StrategyStripped    ProcessingStrategy = "STRIPPED"
	StrategyRejected    ProcessingStrategy = "REJECTED"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (ProcessingStrategy, error) {
	switch ProcessingStrategy(s) {
	case StrategyPassThrough, StrategyMasked, StrategyStripped, StrategyRejected:
		return ProcessingStrategy(s), nil
	}
	return "", fmt.Errorf("unknown processing strategy %q", s)
}

// Detection is one matched sensitive span inside the scanned text.
type Detection struct {
	Type  string
	Level SensitivityLevel
	Start int
	End   int
}

// AuditEvent is the immutable record of one classify/anonymize decision.
// One event is appended per processed unit of content; events are never
// updated or deleted, the append-only log itself is the permanent record.
type AuditEvent struct {
	Timestamp       time.Time          `json:"timestamp"`
	SessionID       string             `json:"session_id"`
	Level           SensitivityLevel   `json:"sensitivity_level"`
	DataTypes       []string           `json:"detected_data_types,omitempty"`
	AnonymizedCount int                `json:"anonymized_count"`
	Strategy        ProcessingStrategy `json:"strategy"`
	Note            string             `json:"note,omitempty"`
}

// AlertRecord is a derived, ephemeral alert written to a side channel.
// It is not part of the primary audit trail.
type AlertRecord struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Summary   string    `json:"summary"`
}

// TypeCount is one entry of the per-data-type histogram, sorted
// descending by count in reports.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// ComplianceMetrics is a purely derived aggregate over a closed date
// range, recomputed fresh on every report request.
type ComplianceMetrics struct {
	From           time.Time                  `json:"from"`
	To             time.Time                  `json:"to"`
	Total          int                        `json:"total"`
	SensitiveCount int                        `json:"sensitive_count"`
	SensitiveRate  float64                    `json:"sensitive_rate"`
	RejectedCount  int                        `json:"rejected_count"`
	ByLevel        map[SensitivityLevel]int   `json:"by_level"`
	ByStrategy     map[ProcessingStrategy]int `json:"by_strategy"`
	ByDataType     []TypeCount                `json:"by_data_type"`
	SkippedLines   int                        `json:"skipped_lines,omitempty"`
}

// ProcessRequest is the inbound payload from the chat flow.
type ProcessRequest struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id,omitempty"`
}

// ProcessResponse carries the sanitized text (absent when rejected) back
// to the chat flow together with the audit decision.
type ProcessResponse struct {
	SanitizedText   string             `json:"sanitized_text,omitempty"`
	Rejected        bool               `json:"rejected"`
	Level           SensitivityLevel   `json:"sensitivity_level"`
	DataTypes       []string           `json:"detected_data_types,omitempty"`
	AnonymizedCount int                `json:"anonymized_count"`
	Strategy        ProcessingStrategy `json:"strategy"`
	Message         string             `json:"message,omitempty"`
}

// Pattern is a deployment-defined detection pattern stored in the
// database. Custom patterns are merged with the built-in set at
// classifier construction time.
type Pattern struct {
	gorm.Model
	Name        string `gorm:"uniqueIndex:idx_patterns_name;not null" json:"name"`
	Regex       string `gorm:"not null" json:"regex"`
	Description string `json:"description"`
	Level       string `gorm:"default:'CONFIDENTIAL'" json:"level"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`
}
