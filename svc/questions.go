package svc

import (
	"fmt"

	"coffee-doctor-core/svc/models"
)

// comparativeQuestion prefixes a cause's question with the ideal recipe's
// target for the dimension the cause blames, when one is known. The
// original question is kept intact so the interpretation of the answer is
// unaffected; the prefix only gives the user a concrete reference point.
func comparativeQuestion(c models.Cause, recipe *models.IdealRecipe) string {
	if recipe == nil || c.Dimension == "" {
		return c.Question
	}
	target, ok := recipe.Targets[c.Dimension]
	if !ok || target.Display == "" {
		return c.Question
	}

	switch c.Dimension {
	case models.DimensionGrind:
		return fmt.Sprintf("The ideal recipe for this coffee uses a '%s' grind. %s", target.Display, c.Question)
	case models.DimensionTime:
		return fmt.Sprintf("The target brew time for this recipe is around %s. %s", target.Display, c.Question)
	case models.DimensionTemperature:
		return fmt.Sprintf("This recipe calls for water at %s. %s", target.Display, c.Question)
	case models.DimensionRatio:
		return fmt.Sprintf("This recipe aims for a %s coffee-to-water ratio. %s", target.Display, c.Question)
	default:
		return c.Question
	}
}
