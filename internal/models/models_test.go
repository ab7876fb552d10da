package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSensitivityLevel_TotalOrder(t *testing.T) {
	assert.True(t, LevelPublic < LevelInternal)
	assert.True(t, LevelInternal < LevelConfidential)
	assert.True(t, LevelConfidential < LevelUltraSensitive)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("ULTRA_SENSITIVE")
	require.NoError(t, err)
	assert.Equal(t, LevelUltraSensitive, level)

	_, err = ParseLevel("SECRET")
	assert.Error(t, err)
}

func TestParseStrategy(t *testing.T) {
	strategy, err := ParseStrategy("REJECTED")
	require.NoError(t, err)
	assert.Equal(t, StrategyRejected, strategy)

	_, err = ParseStrategy("SHREDDED")
	assert.Error(t, err)
}

func TestSensitivityLevel_JSONUsesNames(t *testing.T) {
	raw, err := json.Marshal(LevelConfidential)
	require.NoError(t, err)
	assert.Equal(t, `"CONFIDENTIAL"`, string(raw))

	var level SensitivityLevel
	require.NoError(t, json.Unmarshal([]byte(`"INTERNAL"`), &level))
	assert.Equal(t, LevelInternal, level)

	assert.Error(t, json.Unmarshal([]byte(`"LOUD"`), &level))
}
