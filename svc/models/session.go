package models

// SessionStage tracks where a diagnostic session is in the conversation.
// Context gathering is inherently sequential: the bean question is posed
// first, then the method question, then the rule-based diagnosis runs.
type SessionStage string

const (
	StageGatheringBean   SessionStage = "gathering_bean"
	StageGatheringMethod SessionStage = "gathering_method"
	StageDiagnosing      SessionStage = "diagnosing"
	StageComplete        SessionStage = "complete"
)

// DiagnosisSession is the unit of state for one guided diagnosis. It is
// stored in the key-value store after every completed turn, versioned by
// Turns, so the conversation can resume across requests.
type DiagnosisSession struct {
	ID                 string           `json:"id"`
	UserID             string           `json:"user_id"`
	OriginalQuery      string           `json:"original_query,omitempty"`
	Stage              SessionStage     `json:"stage"`
	Context            SessionContext   `json:"context"`
	Loop               *InferenceLoop   `json:"loop,omitempty"`
	Result             *DiagnosisResult `json:"result,omitempty"`
	Turns              int              `json:"turns"`
	CreatedAtMillisUTC int64            `json:"created_at_millis_utc"`
	UpdatedAtMillisUTC int64            `json:"updated_at_millis_utc"`
}
