package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHybridModeStateExpired(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	state := HybridModeState{ExpiresAt: now.Add(time.Hour).Format(time.RFC3339)}
	assert.False(t, state.Expired(now))

	state.ExpiresAt = now.Add(-time.Minute).Format(time.RFC3339)
	assert.True(t, state.Expired(now))

	// Corrupt expiry counts as expired so the shopper keeps getting replies
	state.ExpiresAt = "garbage"
	assert.True(t, state.Expired(now))

	state.ExpiresAt = ""
	assert.True(t, state.Expired(now))
}

func TestClarificationStateRecordQuestion(t *testing.T) {
	var state ClarificationState

	state.RecordQuestion("budget")
	assert.True(t, state.Active)
	assert.Equal(t, 1, state.AttemptCount)
	assert.True(t, state.Asked("budget"))
	assert.False(t, state.Asked("category"))

	// Re-asking the same constraint bumps attempts but not the asked set
	state.RecordQuestion("budget")
	assert.Equal(t, 2, state.AttemptCount)
	assert.Equal(t, []string{"budget"}, state.QuestionsAsked)
}

func TestClarificationStateRoundTrip(t *testing.T) {
	state := ClarificationState{Active: true, AttemptCount: 2, QuestionsAsked: []string{"budget", "size"}}

	value, err := state.Value()
	assert.NoError(t, err)

	var decoded ClarificationState
	assert.NoError(t, decoded.Scan(value))
	assert.Equal(t, state, decoded)
}
