package models

// Interpretation is the fixed vocabulary the answer interpreter maps raw
// user responses into.
type Interpretation string

const (
	InterpretationAffirmative Interpretation = "affirmative"
	InterpretationNegative    Interpretation = "negative"
	InterpretationUnsure      Interpretation = "unsure"
)

// Cause is a candidate root-cause hypothesis for a brewing problem, sourced
// verbatim from the knowledge base.
type Cause struct {
	ID           string   `json:"id"`
	Question     string   `json:"question"`
	Solution     string   `json:"solution"`
	BasePriority int      `json:"base_priority"`
	Tags         []string `json:"tags,omitempty"`
	Dimension    string   `json:"dimension,omitempty"`
}

// Brew dimensions a cause can blame. A recipe target keyed by the same
// dimension makes the cause eligible for contextual suppression.
const (
	DimensionGrind       = "grind"
	DimensionTime        = "time"
	DimensionTemperature = "temperature"
	DimensionRatio       = "ratio"
)

// AdjustedRule wraps a Cause with the session-specific adjustments produced
// by the meta-rule passes. Created fresh each session, never persisted
// beyond it.
type AdjustedRule struct {
	Cause             Cause    `json:"cause"`
	EffectivePriority int      `json:"effective_priority"`
	Active            bool     `json:"active"`
	Annotations       []string `json:"annotations,omitempty"`
}

// EvidenceRecord captures the outcome of testing one rule against the user.
type EvidenceRecord struct {
	CauseID            string         `json:"cause_id"`
	Outcome            Interpretation `json:"outcome"`
	RawAnswer          string         `json:"raw_answer"`
	CreatedAtMillisUTC int64          `json:"created_at_millis_utc"`
}

// TerminationReason explains how a diagnostic session ended.
type TerminationReason string

const (
	TerminationConfirmed TerminationReason = "confirmed"
	TerminationExhausted TerminationReason = "exhausted"
)

// DiagnosisResult is the terminal payload of a session, ready to be handed
// to the phraser. Confirmed is empty when the loop exhausted its rules.
type DiagnosisResult struct {
	Confirmed   []Cause           `json:"confirmed"`
	Termination TerminationReason `json:"termination"`
	Evidence    []EvidenceRecord  `json:"evidence"`
}
