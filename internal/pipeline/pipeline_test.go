package pipeline

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irenemg8/chatbot-sub001/internal/alert"
	"github.com/irenemg8/chatbot-sub001/internal/anonymizer"
	"github.com/irenemg8/chatbot-sub001/internal/audit"
	"github.com/irenemg8/chatbot-sub001/internal/classifier"
	"github.com/irenemg8/chatbot-sub001/internal/models"
)

var criticalTypes = []string{"national-id", "credit-card", "bank-account", "social-security-number"}

func newTestGuard(t *testing.T, alertsEnabled bool) (*Guard, *audit.Writer, *alert.Engine) {
	t.Helper()
	root := t.TempDir()
	w, err := audit.NewWriter(root)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })

	alerts := alert.NewEngine(root, alertsEnabled, criticalTypes)
	guard := NewGuard(classifier.New(), anonymizer.DefaultPolicy(), w, alerts)
	return guard, w, alerts
}

func readAll(t *testing.T, w *audit.Writer) []models.AuditEvent {
	t.Helper()
	now := time.Now()
	events, skipped, err := w.ReadRange(now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.Empty(t, skipped)
	return events
}

func TestProcess_MasksDNIAndRecordsOneEvent(t *testing.T) {
	guard, w, _ := newTestGuard(t, true)

	resp, err := guard.Process("sess-a", "Mi DNI es 12345678Z")
	require.NoError(t, err)

	assert.False(t, resp.Rejected)
	assert.Equal(t, models.StrategyMasked, resp.Strategy)
	assert.Equal(t, models.LevelConfidential, resp.Level)
	assert.Equal(t, 1, resp.AnonymizedCount)
	assert.Contains(t, resp.SanitizedText, "[REDACTED:national-id]")
	assert.NotContains(t, resp.SanitizedText, "12345678Z")

	events := readAll(t, w)
	require.Len(t, events, 1)
	assert.Equal(t, "sess-a", events[0].SessionID)
	assert.Equal(t, models.StrategyMasked, events[0].Strategy)
	assert.Equal(t, 1, events[0].AnonymizedCount)
	assert.Equal(t, []string{"national-id"}, events[0].DataTypes)
}

func TestProcess_RejectsCreditCardAndAlerts(t *testing.T) {
	guard, w, alerts := newTestGuard(t, true)

	resp, err := guard.Process("sess-b", "Tarjeta 4111 1111 1111 1111")
	require.NoError(t, err)

	assert.True(t, resp.Rejected)
	assert.Empty(t, resp.SanitizedText)
	assert.Equal(t, models.StrategyRejected, resp.Strategy)
	assert.Equal(t, models.LevelUltraSensitive, resp.Level)

	events := readAll(t, w)
	require.Len(t, events, 1)
	assert.Equal(t, models.StrategyRejected, events[0].Strategy)
	assert.Equal(t, models.LevelUltraSensitive, events[0].Level)

	raw, err := os.ReadFile(alerts.DayFile(time.Now()))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "credit-card")
}

func TestProcess_PlainGreetingPassesThroughWithoutAlert(t *testing.T) {
	guard, w, alerts := newTestGuard(t, true)

	text := "Hola, ¿cómo estás?"
	resp, err := guard.Process("sess-c", text)
	require.NoError(t, err)

	assert.False(t, resp.Rejected)
	assert.Equal(t, text, resp.SanitizedText)
	assert.Equal(t, models.StrategyPassThrough, resp.Strategy)
	assert.Equal(t, models.LevelPublic, resp.Level)

	events := readAll(t, w)
	require.Len(t, events, 1)
	assert.Empty(t, events[0].DataTypes)
	assert.NoFileExists(t, alerts.DayFile(time.Now()))
}

func TestProcess_DisabledAlertsStaySilent(t *testing.T) {
	guard, _, alerts := newTestGuard(t, false)

	_, err := guard.Process("sess-d", "Tarjeta 4111 1111 1111 1111")
	require.NoError(t, err)
	assert.NoFileExists(t, alerts.DayFile(time.Now()))
}

func TestProcess_EveryDecisionIsAudited(t *testing.T) {
	guard, w, _ := newTestGuard(t, true)

	inputs := []string{
		"Hola",
		"Mi DNI es 12345678Z",
		"Tarjeta 4111 1111 1111 1111",
	}
	for _, text := range inputs {
		_, err := guard.Process("sess-e", text)
		require.NoError(t, err)
	}

	events := readAll(t, w)
	assert.Len(t, events, len(inputs), "one audit event per processed unit, no exceptions")
}
