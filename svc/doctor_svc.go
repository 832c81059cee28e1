package svc

import (
	"fmt"
	"log"
	"reflect"
	"time"

	"github.com/google/uuid"

	"coffee-doctor-core/db"
	"coffee-doctor-core/svc/models"
)

// unsureRetryBudget bounds how often an unsure answer re-poses the same
// question before the rule is given up on.
const unsureRetryBudget = 2

const exhaustedFallbackText = "Hmm, I've gone through the usual causes and couldn't find a match. It might be a more complex issue — consider a local roaster or barista for a hands-on look."

// DoctorService drives guided diagnostic sessions: context gathering, rule
// adjustment, the inference loop, and synthesis of the final diagnosis.
// Session state lives in the key-value store between turns.
type DoctorService struct {
	kvStore   *db.KeyValueStore
	aih       AIHelperInterface
	kb        KnowledgeStore
	assembler *ContextAssembler
	adjuster  *RuleAdjuster
}

// NewDoctorService initializes and returns a new DoctorService.
func NewDoctorService(kvStore *db.KeyValueStore, aih AIHelperInterface, kb KnowledgeStore) *DoctorService {
	return &DoctorService{
		kvStore:   kvStore,
		aih:       aih,
		kb:        kb,
		assembler: NewContextAssembler(kb),
		adjuster:  NewRuleAdjuster(kb.IsMethod),
	}
}

func (dsvc *DoctorService) storeSessionValue(session *models.DiagnosisSession) error {
	session.UpdatedAtMillisUTC = time.Now().UnixMilli()
	return dsvc.kvStore.Store(session.UserID, session.ID, *session, session.Turns)
}

func (dsvc *DoctorService) retrieveSessionValue(userID, sessionID string) (*models.DiagnosisSession, error) {
	value, err := dsvc.kvStore.Retrieve(userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	switch s := value.(type) {
	case models.DiagnosisSession:
		return &s, nil
	case *models.DiagnosisSession:
		return s, nil
	default:
		return nil, fmt.Errorf("retrieved value is not a DiagnosisSession: %T", value)
	}
}

// StartDiagnosis creates a new session for a problem label or a free-text
// complaint and returns the phrased opening (bean) question.
func (dsvc *DoctorService) StartDiagnosis(input *models.StartDiagnosisInput) (*models.StartDiagnosisOutput, error) {
	if input == nil || input.UserID == "" {
		return nil, fmt.Errorf("invalid request: user id is required")
	}
	if input.Problem == "" && input.Query == "" {
		return nil, fmt.Errorf("invalid request: either problem or query is required")
	}

	problem := input.Problem
	if problem == "" {
		label, err := dsvc.aih.ClassifyProblem(input.Query, dsvc.kb.Problems())
		if err != nil {
			return nil, fmt.Errorf("%w: classifying problem: %v", ErrCollaborator, err)
		}
		problem = label
	}

	session := &models.DiagnosisSession{
		ID:            "ds_" + uuid.New().String(),
		UserID:        input.UserID,
		OriginalQuery: input.Query,
		Stage:         models.StageGatheringBean,
		Context: models.SessionContext{
			Problem:      problem,
			Measurements: input.Measurements,
		},
		CreatedAtMillisUTC: time.Now().UnixMilli(),
	}
	log.Printf("[DoctorService] Starting diagnosis %s for problem %q", session.ID, problem)

	reply, err := dsvc.aih.PhraseQuestion(beanQuestionText)
	if err != nil {
		return nil, fmt.Errorf("%w: phrasing bean question: %v", ErrCollaborator, err)
	}

	if err := dsvc.storeSessionValue(session); err != nil {
		return nil, fmt.Errorf("failed to store new session: %w", err)
	}

	return &models.StartDiagnosisOutput{
		SessionID: session.ID,
		Reply:     reply,
		Session:   *session,
	}, nil
}

// SubmitAnswer advances a session by one turn. The stored session is only
// updated once the whole turn, collaborator calls included, has succeeded.
func (dsvc *DoctorService) SubmitAnswer(input *models.SubmitAnswerInput) (*models.SubmitAnswerOutput, error) {
	if input == nil || input.UserID == "" || input.SessionID == "" {
		return nil, fmt.Errorf("invalid request: user id and session id are required")
	}

	session, err := dsvc.retrieveSessionValue(input.UserID, input.SessionID)
	if err != nil {
		return nil, err
	}

	var out *models.SubmitAnswerOutput
	switch session.Stage {
	case models.StageGatheringBean:
		out, err = dsvc.recordBean(session, input.Answer)
	case models.StageGatheringMethod:
		out, err = dsvc.recordMethodAndDiagnose(session, input.Answer)
	case models.StageDiagnosing:
		out, err = dsvc.processDiagnosticAnswer(session, input.Answer)
	default:
		return nil, fmt.Errorf("%w: %s", ErrSessionComplete, session.ID)
	}
	if err != nil {
		return nil, err
	}

	session.Turns++
	if err := dsvc.storeSessionValue(session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	out.Session = *session
	return out, nil
}

func (dsvc *DoctorService) recordBean(session *models.DiagnosisSession, answer string) (*models.SubmitAnswerOutput, error) {
	session.Context.BeanName = answer
	session.Stage = models.StageGatheringMethod
	log.Printf("[DoctorService] %s: bean name %q gathered", session.ID, answer)

	reply, err := dsvc.aih.PhraseQuestion(methodQuestionText)
	if err != nil {
		return nil, fmt.Errorf("%w: phrasing method question: %v", ErrCollaborator, err)
	}
	return &models.SubmitAnswerOutput{Reply: reply}, nil
}

func (dsvc *DoctorService) recordMethodAndDiagnose(session *models.DiagnosisSession, answer string) (*models.SubmitAnswerOutput, error) {
	session.Context.MethodName = answer
	log.Printf("[DoctorService] %s: brew method %q gathered, context complete", session.ID, answer)

	dsvc.assembler.Resolve(&session.Context)
	causes := dsvc.kb.GetCauses(session.Context.Problem)
	rules := dsvc.adjuster.Adjust(causes, &session.Context)
	session.Loop = models.NewInferenceLoop(rules, unsureRetryBudget)
	session.Stage = models.StageDiagnosing

	return dsvc.continueLoop(session)
}

func (dsvc *DoctorService) processDiagnosticAnswer(session *models.DiagnosisSession, answer string) (*models.SubmitAnswerOutput, error) {
	rule, ok := session.Loop.Next()
	if !ok {
		// Loop already terminal; should have completed last turn.
		return dsvc.continueLoop(session)
	}

	question := comparativeQuestion(rule.Cause, session.Context.Recipe)
	outcome, err := dsvc.aih.InterpretAnswer(question, answer)
	if err != nil {
		return nil, fmt.Errorf("%w: interpreting answer: %v", ErrCollaborator, err)
	}
	session.Loop.Observe(outcome, answer)

	return dsvc.continueLoop(session)
}

// continueLoop poses the next question, or completes the session when the
// loop reached a terminal state.
func (dsvc *DoctorService) continueLoop(session *models.DiagnosisSession) (*models.SubmitAnswerOutput, error) {
	rule, ok := session.Loop.Next()
	if ok {
		question := comparativeQuestion(rule.Cause, session.Context.Recipe)
		log.Printf("[DoctorService] %s: testing cause %q", session.ID, rule.Cause.ID)
		reply, err := dsvc.aih.PhraseQuestion(question)
		if err != nil {
			return nil, fmt.Errorf("%w: phrasing question: %v", ErrCollaborator, err)
		}
		return &models.SubmitAnswerOutput{Reply: reply}, nil
	}

	result := Synthesize(session.Loop)
	session.Result = &result
	session.Stage = models.StageComplete

	if cause, confirmed := session.Loop.ConfirmedCause(); confirmed {
		log.Printf("[DoctorService] %s: confirmed cause %q", session.ID, cause.ID)
		reply, err := dsvc.aih.PhraseSolution(cause.Solution, session.Context)
		if err != nil {
			return nil, fmt.Errorf("%w: phrasing solution: %v", ErrCollaborator, err)
		}
		return &models.SubmitAnswerOutput{Reply: reply, Complete: true, Result: &result}, nil
	}

	log.Printf("[DoctorService] %s: causes exhausted without a match", session.ID)
	return &models.SubmitAnswerOutput{Reply: exhaustedFallbackText, Complete: true, Result: &result}, nil
}

// GetSession returns the current state of a session.
func (dsvc *DoctorService) GetSession(input *models.GetSessionInput) (*models.GetSessionOutput, error) {
	session, err := dsvc.retrieveSessionValue(input.UserID, input.SessionID)
	if err != nil {
		return nil, err
	}
	return &models.GetSessionOutput{Session: *session}, nil
}

// ListSessions lists every session stored for a user.
func (dsvc *DoctorService) ListSessions(input *models.ListSessionsInput) (*models.ListSessionsOutput, error) {
	values, err := dsvc.kvStore.ListByType(input.UserID, reflect.TypeOf(models.DiagnosisSession{}))
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	var sessions []models.DiagnosisSession
	for _, v := range values {
		if s, ok := v.(*models.DiagnosisSession); ok {
			sessions = append(sessions, *s)
		}
	}
	return &models.ListSessionsOutput{Sessions: sessions}, nil
}
