package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irenemg8/chatbot-sub001/internal/audit"
	"github.com/irenemg8/chatbot-sub001/internal/models"
)

func seedEvents(t *testing.T, w *audit.Writer) (from, to time.Time) {
	t.Helper()

	// 100 events across 3 days, 10 of them rejected.
	base := time.Date(2026, 8, 27, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 100; i++ {
		day := i % 3
		event := models.AuditEvent{
			Timestamp: base.AddDate(0, 0, day).Add(time.Duration(i) * time.Minute),
			SessionID: "sess",
			Level:     models.LevelInternal,
			DataTypes: []string{"email"},
			Strategy:  models.StrategyMasked,
		}
		if i < 10 {
			event.Level = models.LevelUltraSensitive
			event.DataTypes = []string{"credit-card"}
			event.Strategy = models.StrategyRejected
		}
		require.NoError(t, w.Record(event))
	}
	return base.Add(-time.Hour), base.AddDate(0, 0, 3)
}

func TestComputeMetrics_ScenarioCounts(t *testing.T) {
	w, err := audit.NewWriter(t.TempDir())
	require.NoError(t, err)
	defer w.Close()

	from, to := seedEvents(t, w)
	metrics, err := NewReporter(w, 10).ComputeMetrics(from, to)
	require.NoError(t, err)

	assert.Equal(t, 100, metrics.Total)
	assert.Equal(t, 10, metrics.RejectedCount)
	assert.Equal(t, 100, metrics.SensitiveCount)
	assert.InDelta(t, 1.0, metrics.SensitiveRate, 1e-9)
	assert.Equal(t, 10, metrics.ByStrategy[models.StrategyRejected])
	assert.Equal(t, 90, metrics.ByStrategy[models.StrategyMasked])
	assert.Equal(t, 90, metrics.ByLevel[models.LevelInternal])
	assert.Equal(t, 10, metrics.ByLevel[models.LevelUltraSensitive])
}

func TestComputeMetrics_Idempotent(t *testing.T) {
	w, err := audit.NewWriter(t.TempDir())
	require.NoError(t, err)
	defer w.Close()

	from, to := seedEvents(t, w)
	r := NewReporter(w, 10)

	first, err := r.ComputeMetrics(from, to)
	require.NoError(t, err)
	second, err := r.ComputeMetrics(from, to)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestComputeMetrics_EmptyRangeIsZeroNotError(t *testing.T) {
	w, err := audit.NewWriter(t.TempDir())
	require.NoError(t, err)
	defer w.Close()

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	metrics, err := NewReporter(w, 10).ComputeMetrics(from, from.AddDate(0, 0, 7))
	require.NoError(t, err)

	assert.Zero(t, metrics.Total)
	assert.Zero(t, metrics.SensitiveCount)
	assert.Zero(t, metrics.RejectedCount)
	assert.Equal(t, 0.0, metrics.SensitiveRate)
}

func TestComputeMetrics_DataTypeHistogramSortedAndTruncated(t *testing.T) {
	w, err := audit.NewWriter(t.TempDir())
	require.NoError(t, err)
	defer w.Close()

	ts := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	counts := map[string]int{"email": 5, "phone": 3, "national-id": 8}
	for dataType, n := range counts {
		for i := 0; i < n; i++ {
			require.NoError(t, w.Record(models.AuditEvent{
				Timestamp: ts.Add(time.Duration(i) * time.Second),
				SessionID: "sess",
				Level:     models.LevelInternal,
				DataTypes: []string{dataType},
				Strategy:  models.StrategyMasked,
			}))
		}
	}

	metrics, err := NewReporter(w, 2).ComputeMetrics(ts.Add(-time.Hour), ts.Add(time.Hour))
	require.NoError(t, err)

	require.Len(t, metrics.ByDataType, 2)
	assert.Equal(t, models.TypeCount{Type: "national-id", Count: 8}, metrics.ByDataType[0])
	assert.Equal(t, models.TypeCount{Type: "email", Count: 5}, metrics.ByDataType[1])
}

func TestBuildReport_WritesDatedFile(t *testing.T) {
	root := t.TempDir()
	w, err := audit.NewWriter(root)
	require.NoError(t, err)
	defer w.Close()

	from, to := seedEvents(t, w)
	text, err := NewReporter(w, 10).BuildReport(from, to)
	require.NoError(t, err)

	assert.Contains(t, text, "INFORME DE COMPLIANCE")
	assert.Contains(t, text, "Mensajes procesados:    100")
	assert.Contains(t, text, "Contenido rechazado:    10")

	matches, err := filepath.Glob(filepath.Join(root, "reporte-compliance-*.txt"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	raw, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Equal(t, text, string(raw))
	assert.False(t, strings.HasSuffix(matches[0], ".tmp"))
}

func TestBuildReport_NeverMutatesAuditData(t *testing.T) {
	w, err := audit.NewWriter(t.TempDir())
	require.NoError(t, err)
	defer w.Close()

	from, to := seedEvents(t, w)
	r := NewReporter(w, 10)

	before, err := r.ComputeMetrics(from, to)
	require.NoError(t, err)
	_, err = r.BuildReport(from, to)
	require.NoError(t, err)
	after, err := r.ComputeMetrics(from, to)
	require.NoError(t, err)

	assert.Equal(t, before, after)
}
