package svc

import (
	"log"

	"coffee-doctor-core/svc/models"
)

// The two context-gathering questions. They are static knowledge, phrased
// by the language collaborator before reaching the user; the diagnosis
// itself only needs the answers.
const (
	beanQuestionText = "What coffee bean are you brewing? Knowing the bean helps me give a more precise diagnosis."

	methodQuestionText = "What brew method are you using, for example V60, espresso or french press?"
)

// ContextAssembler resolves the optional contextual data (bean profile,
// ideal recipe) once the bean and method answers have been collected. It
// never mutates the knowledge base.
type ContextAssembler struct {
	kb KnowledgeStore
}

func NewContextAssembler(kb KnowledgeStore) *ContextAssembler {
	return &ContextAssembler{kb: kb}
}

// Resolve fills in Profile and Recipe from the raw bean and method names.
// A bean or method the knowledge base does not know simply leaves the
// corresponding field nil; the meta-rule passes then degrade to no-ops.
func (ca *ContextAssembler) Resolve(sc *models.SessionContext) {
	if profile, ok := ca.kb.FindBeanProfile(sc.BeanName); ok {
		sc.Profile = profile
		log.Printf("[ContextAssembler] Matched bean profile %q", profile.Name)
	} else {
		log.Printf("[ContextAssembler] No bean profile for %q", sc.BeanName)
	}

	if recipe, ok := ca.kb.FindIdealRecipe(sc.BeanName, sc.MethodName); ok {
		sc.Recipe = recipe
		log.Printf("[ContextAssembler] Found ideal recipe %q", recipe.ID)
	} else {
		log.Printf("[ContextAssembler] No ideal recipe for %q / %q", sc.BeanName, sc.MethodName)
	}
}
