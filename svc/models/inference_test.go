package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeRule(id string, priority int) AdjustedRule {
	return AdjustedRule{
		Cause: Cause{
			ID:       id,
			Question: "question for " + id,
			Solution: "solution for " + id,
		},
		EffectivePriority: priority,
		Active:            true,
	}
}

func TestInferenceLoop_NoRulesExhaustsImmediately(t *testing.T) {
	loop := NewInferenceLoop(nil, 2)

	assert.Equal(t, LoopExhausted, loop.State)
	assert.Empty(t, loop.Evidence)

	_, ok := loop.Next()
	assert.False(t, ok)
}

func TestInferenceLoop_AllInactiveExhaustsImmediately(t *testing.T) {
	rules := []AdjustedRule{activeRule("a", 1), activeRule("b", 2)}
	rules[0].Active = false
	rules[1].Active = false

	loop := NewInferenceLoop(rules, 2)

	assert.Equal(t, LoopExhausted, loop.State)
	assert.Empty(t, loop.Evidence)
}

func TestInferenceLoop_FirstAffirmativeHalts(t *testing.T) {
	rules := []AdjustedRule{activeRule("x", 1), activeRule("y", 2), activeRule("z", 3)}
	loop := NewInferenceLoop(rules, 2)

	rule, ok := loop.Next()
	require.True(t, ok)
	assert.Equal(t, "x", rule.Cause.ID)
	loop.Observe(InterpretationNegative, "no, that's not it")

	rule, ok = loop.Next()
	require.True(t, ok)
	assert.Equal(t, "y", rule.Cause.ID)
	loop.Observe(InterpretationAffirmative, "yes exactly")

	assert.Equal(t, LoopConfirmed, loop.State)
	assert.Equal(t, "y", loop.ConfirmedID)
	require.Len(t, loop.Evidence, 2)
	assert.Equal(t, "x", loop.Evidence[0].CauseID)
	assert.Equal(t, InterpretationNegative, loop.Evidence[0].Outcome)
	assert.Equal(t, "y", loop.Evidence[1].CauseID)
	assert.Equal(t, InterpretationAffirmative, loop.Evidence[1].Outcome)

	// z is never asked
	_, ok = loop.Next()
	assert.False(t, ok)
}

func TestInferenceLoop_SkipsInactiveRules(t *testing.T) {
	rules := []AdjustedRule{activeRule("a", 1), activeRule("b", 2), activeRule("c", 3)}
	rules[1].Active = false
	loop := NewInferenceLoop(rules, 2)

	rule, ok := loop.Next()
	require.True(t, ok)
	assert.Equal(t, "a", rule.Cause.ID)
	loop.Observe(InterpretationNegative, "no")

	rule, ok = loop.Next()
	require.True(t, ok)
	assert.Equal(t, "c", rule.Cause.ID, "inactive rule b must never be posed")
	loop.Observe(InterpretationNegative, "no")

	assert.Equal(t, LoopExhausted, loop.State)
	for _, ev := range loop.Evidence {
		assert.NotEqual(t, "b", ev.CauseID)
	}
}

func TestInferenceLoop_UnsureRetriesThenAdvances(t *testing.T) {
	rules := []AdjustedRule{activeRule("a", 1), activeRule("b", 2)}
	loop := NewInferenceLoop(rules, 2)

	rule, ok := loop.Next()
	require.True(t, ok)
	assert.Equal(t, "a", rule.Cause.ID)

	// Two unsure answers re-pose the same question.
	loop.Observe(InterpretationUnsure, "hmm")
	rule, ok = loop.Next()
	require.True(t, ok)
	assert.Equal(t, "a", rule.Cause.ID)
	assert.Empty(t, loop.Evidence)

	loop.Observe(InterpretationUnsure, "not sure")
	rule, ok = loop.Next()
	require.True(t, ok)
	assert.Equal(t, "a", rule.Cause.ID)
	assert.Empty(t, loop.Evidence)

	// Third unsure exceeds the budget: record and advance.
	loop.Observe(InterpretationUnsure, "really can't tell")

	require.Len(t, loop.Evidence, 1)
	assert.Equal(t, "a", loop.Evidence[0].CauseID)
	assert.Equal(t, InterpretationUnsure, loop.Evidence[0].Outcome)
	assert.Equal(t, "really can't tell", loop.Evidence[0].RawAnswer)

	rule, ok = loop.Next()
	require.True(t, ok)
	assert.Equal(t, "b", rule.Cause.ID)
}

func TestInferenceLoop_RetryCounterResetsPerRule(t *testing.T) {
	rules := []AdjustedRule{activeRule("a", 1), activeRule("b", 2)}
	loop := NewInferenceLoop(rules, 1)

	loop.Next()
	loop.Observe(InterpretationUnsure, "hmm")
	loop.Observe(InterpretationUnsure, "still unsure") // budget spent, advances

	rule, ok := loop.Next()
	require.True(t, ok)
	assert.Equal(t, "b", rule.Cause.ID)
	assert.Equal(t, 0, loop.Retries)

	loop.Observe(InterpretationUnsure, "hmm")
	assert.Equal(t, LoopAwaitingAnswer, loop.State, "fresh budget for the next rule")
}

func TestInferenceLoop_ObserveIgnoredWhenTerminal(t *testing.T) {
	rules := []AdjustedRule{activeRule("a", 1)}
	loop := NewInferenceLoop(rules, 2)

	loop.Next()
	loop.Observe(InterpretationAffirmative, "yes")
	require.Equal(t, LoopConfirmed, loop.State)

	loop.Observe(InterpretationNegative, "late answer")
	assert.Equal(t, LoopConfirmed, loop.State)
	assert.Len(t, loop.Evidence, 1)
}

func TestInferenceLoop_ConfirmedCause(t *testing.T) {
	rules := []AdjustedRule{activeRule("a", 1)}
	loop := NewInferenceLoop(rules, 2)

	_, ok := loop.ConfirmedCause()
	assert.False(t, ok)

	loop.Next()
	loop.Observe(InterpretationAffirmative, "yes")

	cause, ok := loop.ConfirmedCause()
	require.True(t, ok)
	assert.Equal(t, "a", cause.ID)
}
