package anonymizer

import (
	"fmt"

	"github.com/irenemg8/chatbot-sub001/internal/classifier"
	"github.com/irenemg8/chatbot-sub001/internal/models"
)

// Policy maps each sensitivity level to the strategy applied to content
// classified at that level. It is the single policy decision point:
// audit strategy, alerting and reporting all derive from it.
type Policy struct {
	Strategies map[models.SensitivityLevel]models.ProcessingStrategy
}

// DefaultPolicy masks everything sensitive and rejects ultra-sensitive
// content outright.
func DefaultPolicy() Policy {
	return Policy{Strategies: map[models.SensitivityLevel]models.ProcessingStrategy{
		models.LevelPublic:         models.StrategyPassThrough,
		models.LevelInternal:       models.StrategyMasked,
		models.LevelConfidential:   models.StrategyMasked,
		models.LevelUltraSensitive: models.StrategyRejected,
	}}
}

// StrategyFor resolves the strategy for a level. An unmapped level
// falls back to Masked, the safe middle ground.
func (p Policy) StrategyFor(level models.SensitivityLevel) models.ProcessingStrategy {
	if s, ok := p.Strategies[level]; ok {
		return s
	}
	return models.StrategyMasked
}

// Result is the outcome of one anonymization pass. When Strategy is
// Rejected, SanitizedText is empty and the caller must not transmit
// anything.
type Result struct {
	SanitizedText   string
	Strategy        models.ProcessingStrategy
	AnonymizedCount int
}

// Process applies the level-appropriate transformation to the text. It
// performs no I/O and no logging; recording the decision is the
// caller's explicit next step.
func Process(text string, cls classifier.Result, policy Policy) Result {
	strategy := policy.StrategyFor(cls.Level)

	switch strategy {
	case models.StrategyPassThrough:
		return Result{SanitizedText: text, Strategy: models.StrategyPassThrough}
	case models.StrategyRejected:
		return Result{Strategy: models.StrategyRejected}
	}

	// Masked and Stripped both rewrite every detected span; detections
	// arrive sorted and non-overlapping from the classifier.
	var out []byte
	currentIndex := 0
	for _, d := range cls.Detections {
		out = append(out, text[currentIndex:d.Start]...)
		if strategy == models.StrategyMasked {
			out = append(out, placeholder(d.Type)...)
		}
		currentIndex = d.End
	}
	if currentIndex < len(text) {
		out = append(out, text[currentIndex:]...)
	}

	return Result{
		SanitizedText:   string(out),
		Strategy:        strategy,
		AnonymizedCount: len(cls.Detections),
	}
}

// placeholder builds the fixed redaction marker for a data type.
func placeholder(dataType string) string {
	return fmt.Sprintf("[REDACTED:%s]", dataType)
}
