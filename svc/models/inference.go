package models

import "time"

// LoopState is the state of the forward-chaining inference loop.
type LoopState string

const (
	LoopReady          LoopState = "ready"
	LoopAwaitingAnswer LoopState = "awaiting_answer"
	LoopConfirmed      LoopState = "confirmed"
	LoopExhausted      LoopState = "exhausted"
)

// InferenceLoop walks an adjusted rule list in order, testing one rule at a
// time against user evidence and halting on the first affirmative answer.
// It performs no I/O itself; the doctor service poses the questions and
// feeds interpretations back through Observe. All fields are exported so a
// session can round-trip through the key-value store between turns.
type InferenceLoop struct {
	Rules       []AdjustedRule   `json:"rules"`
	Index       int              `json:"index"`
	Retries     int              `json:"retries"`
	RetryBudget int              `json:"retry_budget"`
	Evidence    []EvidenceRecord `json:"evidence"`
	State       LoopState        `json:"state"`
	ConfirmedID string           `json:"confirmed_id,omitempty"`
}

// NewInferenceLoop creates a loop over rules with the given unsure-retry
// budget. The loop starts in Ready, or directly in Exhausted when no rule
// is active.
func NewInferenceLoop(rules []AdjustedRule, retryBudget int) *InferenceLoop {
	l := &InferenceLoop{
		Rules:       rules,
		RetryBudget: retryBudget,
		Evidence:    []EvidenceRecord{},
		State:       LoopReady,
	}
	if _, ok := l.seekActive(); !ok {
		l.State = LoopExhausted
	}
	return l
}

// seekActive moves Index forward to the next active rule, skipping inactive
// entries. It reports false when no active rule remains.
func (l *InferenceLoop) seekActive() (*AdjustedRule, bool) {
	for l.Index < len(l.Rules) {
		if l.Rules[l.Index].Active {
			return &l.Rules[l.Index], true
		}
		l.Index++
	}
	return nil, false
}

// Next returns the rule whose question should be posed. From Ready it
// advances to the next active rule and enters AwaitingAnswer; from
// AwaitingAnswer (an unsure retry) it returns the same rule again. It
// reports false once the loop is terminal.
func (l *InferenceLoop) Next() (*AdjustedRule, bool) {
	switch l.State {
	case LoopReady:
		rule, ok := l.seekActive()
		if !ok {
			l.State = LoopExhausted
			return nil, false
		}
		l.State = LoopAwaitingAnswer
		return rule, true
	case LoopAwaitingAnswer:
		return &l.Rules[l.Index], true
	default:
		return nil, false
	}
}

// Observe feeds the interpreted answer for the current rule into the loop.
// Affirmative confirms and terminates. Negative records evidence and
// advances. Unsure re-poses the same question until the retry budget is
// spent, then records the unsure outcome and advances as if negative.
// Calls outside AwaitingAnswer are ignored.
func (l *InferenceLoop) Observe(outcome Interpretation, rawAnswer string) {
	if l.State != LoopAwaitingAnswer {
		return
	}
	rule := l.Rules[l.Index]
	switch outcome {
	case InterpretationAffirmative:
		l.record(rule.Cause.ID, outcome, rawAnswer)
		l.ConfirmedID = rule.Cause.ID
		l.State = LoopConfirmed
	case InterpretationUnsure:
		if l.Retries < l.RetryBudget {
			l.Retries++
			return
		}
		l.record(rule.Cause.ID, InterpretationUnsure, rawAnswer)
		l.advance()
	default:
		l.record(rule.Cause.ID, InterpretationNegative, rawAnswer)
		l.advance()
	}
}

func (l *InferenceLoop) advance() {
	l.Index++
	l.Retries = 0
	l.State = LoopReady
	if _, ok := l.seekActive(); !ok {
		l.State = LoopExhausted
	}
}

func (l *InferenceLoop) record(causeID string, outcome Interpretation, rawAnswer string) {
	l.Evidence = append(l.Evidence, EvidenceRecord{
		CauseID:            causeID,
		Outcome:            outcome,
		RawAnswer:          rawAnswer,
		CreatedAtMillisUTC: time.Now().UnixMilli(),
	})
}

// Done reports whether the loop reached a terminal state.
func (l *InferenceLoop) Done() bool {
	return l.State == LoopConfirmed || l.State == LoopExhausted
}

// ConfirmedCause returns the confirmed cause once the loop is in Confirmed.
func (l *InferenceLoop) ConfirmedCause() (Cause, bool) {
	if l.State != LoopConfirmed {
		return Cause{}, false
	}
	for _, r := range l.Rules {
		if r.Cause.ID == l.ConfirmedID {
			return r.Cause, true
		}
	}
	return Cause{}, false
}
