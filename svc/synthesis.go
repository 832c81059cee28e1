package svc

import "coffee-doctor-core/svc/models"

// Synthesize converts a terminal inference loop into the diagnosis payload
// handed to the phraser. Confirmed sessions carry the single confirmed
// cause; exhausted sessions carry no cause but the full evidence history so
// the caller can compose a fallback. Pure transformation, no side effects.
func Synthesize(loop *models.InferenceLoop) models.DiagnosisResult {
	evidence := make([]models.EvidenceRecord, len(loop.Evidence))
	copy(evidence, loop.Evidence)

	result := models.DiagnosisResult{
		Confirmed:   []models.Cause{},
		Termination: models.TerminationExhausted,
		Evidence:    evidence,
	}
	if cause, ok := loop.ConfirmedCause(); ok {
		result.Confirmed = append(result.Confirmed, cause)
		result.Termination = models.TerminationConfirmed
	}
	return result
}
