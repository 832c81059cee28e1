package svc

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"coffee-doctor-core/svc/models"
)

// reinforceStep is how much contextual reinforcement lowers a rule's
// effective priority (lower value means tested earlier).
const reinforceStep = 1

// metaRule transforms one adjusted rule in the light of the session
// context. Passes may lower priority or deactivate a rule; nothing ever
// reactivates a rule within a pass sequence.
type metaRule func(models.AdjustedRule, *models.SessionContext) models.AdjustedRule

// RuleAdjuster turns the raw cause list for a problem into the ordered,
// annotated rule list for one session. It is pure: same causes and context
// always produce the same list.
type RuleAdjuster struct {
	isMethod func(tag string) bool
	passes   []metaRule
}

// NewRuleAdjuster builds an adjuster. isMethod decides which applicability
// tags name brew methods; it normally comes from the knowledge base's
// method vocabulary.
func NewRuleAdjuster(isMethod func(tag string) bool) *RuleAdjuster {
	ra := &RuleAdjuster{isMethod: isMethod}
	// Order matters: passes compose additively on priority and can only
	// turn a rule off, never back on.
	ra.passes = []metaRule{
		ra.reinforceFromProfile,
		ra.suppressWithinTolerance,
		ra.excludeByMethod,
	}
	return ra
}

// Adjust applies the meta-rule passes in their fixed order, then
// stable-sorts by effective priority ascending so ties keep the original
// knowledge-base order. Inactive rules stay in the list, annotated, so the
// whole adjustment remains inspectable.
func (ra *RuleAdjuster) Adjust(causes []models.Cause, sc *models.SessionContext) []models.AdjustedRule {
	rules := make([]models.AdjustedRule, 0, len(causes))
	for _, c := range causes {
		rules = append(rules, models.AdjustedRule{
			Cause:             c,
			EffectivePriority: c.BasePriority,
			Active:            true,
		})
	}

	for i := range rules {
		for _, pass := range ra.passes {
			rules[i] = pass(rules[i], sc)
		}
	}

	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].EffectivePriority < rules[j].EffectivePriority
	})
	return rules
}

// reinforceFromProfile raises the precedence of causes whose applicability
// tags intersect the bean's known flavor tendencies.
func (ra *RuleAdjuster) reinforceFromProfile(r models.AdjustedRule, sc *models.SessionContext) models.AdjustedRule {
	if sc.Profile == nil {
		return r
	}
	matched := intersect(r.Cause.Tags, sc.Profile.FlavorTendencies)
	if len(matched) == 0 {
		return r
	}
	r.EffectivePriority -= reinforceStep
	r.Annotations = append(r.Annotations, fmt.Sprintf(
		"priority raised: bean %q tends toward %s", sc.Profile.Name, strings.Join(matched, ", ")))
	return r
}

// suppressWithinTolerance deactivates a cause when a volunteered
// measurement shows the dimension it blames is already within tolerance of
// the ideal recipe's target.
func (ra *RuleAdjuster) suppressWithinTolerance(r models.AdjustedRule, sc *models.SessionContext) models.AdjustedRule {
	if sc.Recipe == nil || r.Cause.Dimension == "" {
		return r
	}
	target, ok := sc.Recipe.Targets[r.Cause.Dimension]
	if !ok {
		return r
	}
	measured, ok := sc.Measurements[r.Cause.Dimension]
	if !ok {
		return r
	}
	if math.Abs(measured-target.Value) > target.Tolerance {
		return r
	}
	r.Active = false
	r.Annotations = append(r.Annotations, fmt.Sprintf(
		"suppressed: measured %s %.4g is within tolerance of recipe target %.4g",
		r.Cause.Dimension, measured, target.Value))
	return r
}

// excludeByMethod deactivates a cause whose tags name brew methods when the
// session's method is not among them. Causes with no method tags apply to
// every method.
func (ra *RuleAdjuster) excludeByMethod(r models.AdjustedRule, sc *models.SessionContext) models.AdjustedRule {
	var methodTags []string
	for _, tag := range r.Cause.Tags {
		if ra.isMethod(tag) {
			methodTags = append(methodTags, normalize(tag))
		}
	}
	if len(methodTags) == 0 {
		return r
	}
	method := normalize(sc.MethodName)
	for _, m := range methodTags {
		if m == method {
			return r
		}
	}
	r.Active = false
	r.Annotations = append(r.Annotations, fmt.Sprintf(
		"excluded: cause applies to %s, not %q", strings.Join(methodTags, "/"), sc.MethodName))
	return r
}

// intersect returns the tags present in both sets, compared normalized,
// preserving the order of the first set.
func intersect(tags, others []string) []string {
	set := make(map[string]struct{}, len(others))
	for _, o := range others {
		set[normalize(o)] = struct{}{}
	}
	var out []string
	for _, t := range tags {
		if _, ok := set[normalize(t)]; ok {
			out = append(out, normalize(t))
		}
	}
	return out
}
