package models

// StartDiagnosisInput starts a new diagnostic session. Either Problem (a
// known problem label) or Query (free text routed through the classifier)
// must be set. Measurements optionally carries brew parameters the user
// volunteered, keyed by dimension.
type StartDiagnosisInput struct {
	UserID       string             `json:"user_id"`
	Problem      string             `json:"problem,omitempty"`
	Query        string             `json:"query,omitempty"`
	Measurements map[string]float64 `json:"measurements,omitempty"`
}

// SubmitAnswerInput advances an existing session by one turn.
type SubmitAnswerInput struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

// GetSessionInput fetches the current state of a session.
type GetSessionInput struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// ListSessionsInput lists all sessions stored for a user.
type ListSessionsInput struct {
	UserID string `json:"user_id"`
}
