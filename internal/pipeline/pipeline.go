package pipeline

import (
	"fmt"
	"log"
	"time"

	"github.com/irenemg8/chatbot-sub001/internal/alert"
	"github.com/irenemg8/chatbot-sub001/internal/anonymizer"
	"github.com/irenemg8/chatbot-sub001/internal/audit"
	"github.com/irenemg8/chatbot-sub001/internal/classifier"
	"github.com/irenemg8/chatbot-sub001/internal/metrics"
	"github.com/irenemg8/chatbot-sub001/internal/models"
)

// Guard is the single entry point the chat flow calls before any
// network transmission. It runs classify -> anonymize -> record ->
// evaluate, guaranteeing exactly one audit event per processed unit of
// content by construction.
type Guard struct {
	classifier *classifier.Classifier
	policy     anonymizer.Policy
	audit      *audit.Writer
	alerts     *alert.Engine
	now        func() time.Time
}

// NewGuard wires the pipeline. Every collaborator is injected; the
// guard holds no global state.
func NewGuard(cls *classifier.Classifier, policy anonymizer.Policy, log *audit.Writer, alerts *alert.Engine) *Guard {
	return &Guard{classifier: cls, policy: policy, audit: log, alerts: alerts, now: time.Now}
}

// Process classifies and anonymizes the text and records the decision.
// The audit append happens before Process returns, so a caller that
// transmits afterwards can never outrun the audit trail. A rejected
// response carries no usable text. The returned error is non-nil only
// when the audit event could not be recorded at all, the one failure
// the caller must not proceed past.
func (g *Guard) Process(sessionID, text string) (models.ProcessResponse, error) {
	started := g.now()

	cls := g.classifier.Classify(text)
	res := anonymizer.Process(text, cls, g.policy)

	event := models.AuditEvent{
		Timestamp:       started,
		SessionID:       sessionID,
		Level:           cls.Level,
		DataTypes:       cls.Types,
		AnonymizedCount: res.AnonymizedCount,
		Strategy:        res.Strategy,
	}
	if res.Strategy == models.StrategyRejected {
		event.Note = "content rejected by policy"
	}

	if err := g.audit.Record(event); err != nil {
		metrics.AuditWriteFailures.Inc()
		log.Printf("[CRITICAL] audit event lost for session %s: %v", sessionID, err)
		return models.ProcessResponse{}, fmt.Errorf("record audit event: %w", err)
	}

	if records, err := g.alerts.Evaluate(event); err != nil {
		// Alerting is a side channel; its failure never blocks the flow.
		log.Printf("Alert evaluation failed for session %s: %v", sessionID, err)
	} else if len(records) > 0 {
		metrics.AlertsTotal.Add(float64(len(records)))
	}

	rejected := res.Strategy == models.StrategyRejected
	metrics.ObserveProcess(cls.Level.String(), string(res.Strategy), rejected, started)

	response := models.ProcessResponse{
		SanitizedText:   res.SanitizedText,
		Rejected:        rejected,
		Level:           cls.Level,
		DataTypes:       cls.Types,
		AnonymizedCount: res.AnonymizedCount,
		Strategy:        res.Strategy,
	}
	if rejected {
		response.Message = "content rejected by policy"
	}
	return response, nil
}
