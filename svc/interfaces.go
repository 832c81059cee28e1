package svc

import (
	"strings"

	"coffee-doctor-core/svc/models"
)

// KnowledgeStore is the read-only knowledge base the diagnostic flow
// consults. Implemented by kb.Store.
type KnowledgeStore interface {
	GetCauses(problem string) []models.Cause
	FindBeanProfile(name string) (*models.BeanProfile, bool)
	FindIdealRecipe(beanName, method string) (*models.IdealRecipe, bool)
	IsMethod(tag string) bool
	Problems() []string
}

// AIHelperInterface abstracts the external language collaborators so tests
// can substitute deterministic stand-ins. Implemented by ai.AIHelper.
type AIHelperInterface interface {
	ClassifyProblem(text string, labels []string) (string, error)
	InterpretAnswer(question, rawAnswer string) (models.Interpretation, error)
	PhraseQuestion(questionText string) (string, error)
	PhraseSolution(solutionText string, sc models.SessionContext) (string, error)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
