package models

// StartDiagnosisOutput is returned after a session is created. Reply is the
// phrased opening question (bean gathering).
type StartDiagnosisOutput struct {
	SessionID string           `json:"session_id"`
	Reply     string           `json:"reply"`
	Session   DiagnosisSession `json:"session"`
}

// SubmitAnswerOutput is returned after each turn. Reply is the next phrased
// question, or the phrased solution / fallback once the session completes.
type SubmitAnswerOutput struct {
	Reply    string           `json:"reply"`
	Complete bool             `json:"complete"`
	Result   *DiagnosisResult `json:"result,omitempty"`
	Session  DiagnosisSession `json:"session"`
}

// GetSessionOutput wraps a stored session.
type GetSessionOutput struct {
	Session DiagnosisSession `json:"session"`
}

// ListSessionsOutput lists a user's sessions.
type ListSessionsOutput struct {
	Sessions []DiagnosisSession `json:"sessions"`
}
