package health

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irenemg8/chatbot-sub001/internal/audit"
	"github.com/irenemg8/chatbot-sub001/internal/config"
	"github.com/irenemg8/chatbot-sub001/internal/models"
)

func testConfig(root string) *config.Config {
	return &config.Config{
		AuditRoot:        root,
		AlertsEnabled:    true,
		MinFreeDiskBytes: 1024, // tiny floor so the disk check passes
		ReportTopN:       10,
	}
}

func TestCheckHealth_HealthyAfterTraffic(t *testing.T) {
	root := t.TempDir()
	w, err := audit.NewWriter(root)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Record(models.AuditEvent{
		Timestamp: time.Now(),
		SessionID: "sess",
		Level:     models.LevelPublic,
		Strategy:  models.StrategyPassThrough,
	}))

	problems := NewChecker(testConfig(root), w).CheckHealth()
	assert.Empty(t, problems)
}

func TestCheckHealth_FlagsMissingTodayFile(t *testing.T) {
	root := t.TempDir()
	w, err := audit.NewWriter(root)
	require.NoError(t, err)
	defer w.Close()

	problems := NewChecker(testConfig(root), w).CheckHealth()
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "possible write failure")
}

func TestCheckHealth_CollectsEveryProblemWithoutShortCircuiting(t *testing.T) {
	cfg := testConfig("") // invalid config and missing root at once
	w, err := audit.NewWriter(t.TempDir())
	require.NoError(t, err)
	defer w.Close()
	cfg.ReportTopN = 0

	problems := NewChecker(cfg, w).CheckHealth()
	assert.GreaterOrEqual(t, len(problems), 2)

	joined := strings.Join(problems, "\n")
	assert.Contains(t, joined, "audit root")
	assert.Contains(t, joined, "top-N")
}

func TestCheckHealth_FlagsLowDiskSpace(t *testing.T) {
	root := t.TempDir()
	w, err := audit.NewWriter(root)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Record(models.AuditEvent{
		Timestamp: time.Now(),
		SessionID: "sess",
		Level:     models.LevelPublic,
		Strategy:  models.StrategyPassThrough,
	}))

	cfg := testConfig(root)
	cfg.MinFreeDiskBytes = 1 << 60 // impossibly high floor

	problems := NewChecker(cfg, w).CheckHealth()
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "free disk space")
}
