package models

// BeanProfile describes a coffee bean the knowledge base knows about.
type BeanProfile struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	RoastLevel       string   `json:"roast_level"`
	Origin           string   `json:"origin"`
	FlavorTendencies []string `json:"flavor_tendencies,omitempty"`
}

// RecipeTarget is one dimension's target in an ideal recipe. Display holds
// the human-readable form used when building comparative questions.
type RecipeTarget struct {
	Value     float64 `json:"value"`
	Tolerance float64 `json:"tolerance"`
	Display   string  `json:"display,omitempty"`
}

// IdealRecipe is the recommended recipe for a bean and brew method.
// Targets is keyed by brew dimension (grind, time, temperature, ratio).
type IdealRecipe struct {
	ID      string                  `json:"id"`
	BeanID  string                  `json:"bean_id"`
	Method  string                  `json:"method"`
	Targets map[string]RecipeTarget `json:"targets,omitempty"`
}

// SessionContext carries everything the meta-rule passes can react to. It
// is populated once by the context assembler and read-only afterwards.
// Measurements holds brew parameters the user volunteered up front, keyed
// by dimension; it is usually empty.
type SessionContext struct {
	Problem      string             `json:"problem"`
	BeanName     string             `json:"bean_name"`
	MethodName   string             `json:"method_name"`
	Profile      *BeanProfile       `json:"profile,omitempty"`
	Recipe       *IdealRecipe       `json:"recipe,omitempty"`
	Measurements map[string]float64 `json:"measurements,omitempty"`
}
