package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/irenemg8/chatbot-sub001/internal/audit"
	"github.com/irenemg8/chatbot-sub001/internal/models"
)

const reportTimeLayout = "2006-01-02-15-04"

// Reporter aggregates audit events over a date range into compliance
// metrics and renders them as a human-readable report. It only ever
// reads the audit trail.
type Reporter struct {
	log  *audit.Writer
	root string
	topN int
}

// NewReporter builds a reporter over the audit writer's log. topN
// truncates the per-data-type histogram for report brevity.
func NewReporter(log *audit.Writer, topN int) *Reporter {
	return &Reporter{log: log, root: log.Root(), topN: topN}
}

// ComputeMetrics reads every event in [from, to] and derives the
// compliance aggregates. For a fixed range over an unchanged log the
// result is identical on every call. An empty range yields zero totals
// and a sensitive rate of exactly 0.
func (r *Reporter) ComputeMetrics(from, to time.Time) (models.ComplianceMetrics, error) {
	events, skipped, err := r.log.ReadRange(from, to)
	if err != nil {
		return models.ComplianceMetrics{}, fmt.Errorf("compute compliance metrics: %w", err)
	}

	metrics := models.ComplianceMetrics{
		From:         from,
		To:           to,
		ByLevel:      make(map[models.SensitivityLevel]int),
		ByStrategy:   make(map[models.ProcessingStrategy]int),
		SkippedLines: len(skipped),
	}

	byType := make(map[string]int)
	for _, event := range events {
		metrics.Total++
		metrics.ByLevel[event.Level]++
		metrics.ByStrategy[event.Strategy]++
		if event.Level > models.LevelPublic {
			metrics.SensitiveCount++
		}
		if event.Strategy == models.StrategyRejected {
			metrics.RejectedCount++
		}
		for _, t := range event.DataTypes {
			byType[t]++
		}
	}

	if metrics.Total > 0 {
		metrics.SensitiveRate = float64(metrics.SensitiveCount) / float64(metrics.Total)
	}

	for t, count := range byType {
		metrics.ByDataType = append(metrics.ByDataType, models.TypeCount{Type: t, Count: count})
	}
	sort.Slice(metrics.ByDataType, func(i, j int) bool {
		if metrics.ByDataType[i].Count != metrics.ByDataType[j].Count {
			return metrics.ByDataType[i].Count > metrics.ByDataType[j].Count
		}
		return metrics.ByDataType[i].Type < metrics.ByDataType[j].Type
	})
	if r.topN > 0 && len(metrics.ByDataType) > r.topN {
		metrics.ByDataType = metrics.ByDataType[:r.topN]
	}

	return metrics, nil
}

// BuildReport renders the compliance report for [from, to], writes it to
// a dated file under the audit root and returns the rendered text. The
// file is written whole then renamed so no partial report is ever left
// behind.
func (r *Reporter) BuildReport(from, to time.Time) (string, error) {
	metrics, err := r.ComputeMetrics(from, to)
	if err != nil {
		return "", fmt.Errorf("build compliance report: %w", err)
	}

	now := time.Now()
	text := render(metrics, now)

	path := filepath.Join(r.root, "reporte-compliance-"+now.Format(reportTimeLayout)+".txt")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("build compliance report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("build compliance report: %w", err)
	}
	return text, nil
}

func render(m models.ComplianceMetrics, generatedAt time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "==================================================\n")
	fmt.Fprintf(&b, "          INFORME DE COMPLIANCE - GDPR/LOPD\n")
	fmt.Fprintf(&b, "==================================================\n\n")
	fmt.Fprintf(&b, "Generado:  %s\n", generatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Periodo:   %s - %s\n\n", m.From.Format("2006-01-02"), m.To.Format("2006-01-02"))

	fmt.Fprintf(&b, "RESUMEN\n")
	fmt.Fprintf(&b, "-------\n")
	fmt.Fprintf(&b, "Mensajes procesados:    %d\n", m.Total)
	fmt.Fprintf(&b, "Contenido sensible:     %d (%.1f%%)\n", m.SensitiveCount, m.SensitiveRate*100)
	fmt.Fprintf(&b, "Contenido rechazado:    %d\n", m.RejectedCount)
	if m.SkippedLines > 0 {
		fmt.Fprintf(&b, "Lineas ilegibles:       %d\n", m.SkippedLines)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "POR NIVEL DE SENSIBILIDAD\n")
	fmt.Fprintf(&b, "-------------------------\n")
	for _, level := range []models.SensitivityLevel{
		models.LevelPublic, models.LevelInternal, models.LevelConfidential, models.LevelUltraSensitive,
	} {
		if count, ok := m.ByLevel[level]; ok {
			fmt.Fprintf(&b, "  %-16s %d\n", level, count)
		}
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "POR ESTRATEGIA\n")
	fmt.Fprintf(&b, "--------------\n")
	for _, strategy := range []models.ProcessingStrategy{
		models.StrategyPassThrough, models.StrategyMasked, models.StrategyStripped, models.StrategyRejected,
	} {
		if count, ok := m.ByStrategy[strategy]; ok {
			fmt.Fprintf(&b, "  %-14s %d\n", strategy, count)
		}
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "TIPOS DE DATOS DETECTADOS\n")
	fmt.Fprintf(&b, "-------------------------\n")
	if len(m.ByDataType) == 0 {
		fmt.Fprintf(&b, "  (ninguno)\n")
	}
	for _, tc := range m.ByDataType {
		fmt.Fprintf(&b, "  %-24s %d\n", tc.Type, tc.Count)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "POSTURA DE CUMPLIMIENTO\n")
	fmt.Fprintf(&b, "-----------------------\n")
	fmt.Fprintf(&b, "- Todo contenido saliente se clasifica antes del envio.\n")
	fmt.Fprintf(&b, "- Los datos personales detectados se anonimizan o rechazan segun politica.\n")
	fmt.Fprintf(&b, "- Cada decision queda registrada en un log de auditoria inmutable.\n")
	fmt.Fprintf(&b, "- Los eventos de nivel CONFIDENTIAL o superior generan alertas.\n")

	return b.String()
}
