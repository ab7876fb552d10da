package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/irenemg8/chatbot-sub001/internal/anonymizer"
	"github.com/irenemg8/chatbot-sub001/internal/models"
)

// policySchema validates the JSON policy document before any of it is
// trusted.
const policySchema = `{
	"type": "object",
	"properties": {
		"strategies": {
			"type": "object",
			"additionalProperties": {
				"type": "string",
				"enum": ["PASS_THROUGH", "MASKED", "STRIPPED", "REJECTED"]
			}
		},
		"critical_types": {
			"type": "array",
			"items": {"type": "string", "minLength": 1}
		}
	},
	"additionalProperties": false
}`

type policyDocument struct {
	Strategies    map[string]string `json:"strategies"`
	CriticalTypes []string          `json:"critical_types"`
}

// DefaultCriticalTypes is the fixed set singled out for mandatory
// alerting when no policy file overrides it.
func DefaultCriticalTypes() []string {
	return []string{"national-id", "credit-card", "bank-account", "social-security-number"}
}

// LoadPolicy resolves the level->strategy policy and the critical-type
// set. Without a policy file the defaults apply; with one, the document
// is schema-validated and overrides are applied on top of the defaults.
func (c *Config) LoadPolicy() (anonymizer.Policy, []string, error) {
	policy := anonymizer.DefaultPolicy()
	critical := DefaultCriticalTypes()

	if c.PolicyFile == "" {
		return policy, critical, nil
	}

	raw, err := os.ReadFile(c.PolicyFile)
	if err != nil {
		return policy, critical, fmt.Errorf("read policy file: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(policySchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return policy, critical, fmt.Errorf("validate policy file: %w", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return policy, critical, fmt.Errorf("policy file does not match schema: %s", strings.Join(msgs, "; "))
	}

	var doc policyDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return policy, critical, fmt.Errorf("parse policy file: %w", err)
	}

	for levelName, strategyName := range doc.Strategies {
		level, err := models.ParseLevel(levelName)
		if err != nil {
			return policy, critical, fmt.Errorf("policy file: %w", err)
		}
		strategy, err := models.ParseStrategy(strategyName)
		if err != nil {
			return policy, critical, fmt.Errorf("policy file: %w", err)
		}
		policy.Strategies[level] = strategy
	}
	if doc.CriticalTypes != nil {
		critical = doc.CriticalTypes
	}
	return policy, critical, nil
}
