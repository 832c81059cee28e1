package kb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coffee-doctor-core/svc/models"
)

func testStore() *Store {
	causes := map[string][]models.Cause{
		"Sour": {
			{ID: "water_too_hot", Question: "q1", Solution: "s1", BasePriority: 1},
			{ID: "grind_coarse", Question: "q2", Solution: "s2", BasePriority: 2},
			{ID: "broken", Question: "", Solution: "s3"}, // malformed, dropped
		},
	}
	beans := []models.BeanProfile{
		{ID: "bean_yirgacheffe", Name: "Ethiopia Yirgacheffe", FlavorTendencies: []string{"bright"}},
	}
	recipes := []models.IdealRecipe{
		{ID: "r1", BeanID: "bean_yirgacheffe", Method: "V60"},
	}
	return NewStore(causes, beans, recipes, []string{"v60", "espresso"})
}

func TestGetCauses_CaseInsensitiveAndOrdered(t *testing.T) {
	s := testStore()

	causes := s.GetCauses("  SOUR ")
	require.Len(t, causes, 2, "malformed cause must be dropped")
	assert.Equal(t, "water_too_hot", causes[0].ID)
	assert.Equal(t, "grind_coarse", causes[1].ID)
}

func TestGetCauses_UnknownProblemYieldsEmpty(t *testing.T) {
	s := testStore()
	assert.Empty(t, s.GetCauses("burnt"))
}

func TestGetCauses_ReturnsCopy(t *testing.T) {
	s := testStore()
	first := s.GetCauses("sour")
	first[0].ID = "mutated"
	assert.Equal(t, "water_too_hot", s.GetCauses("sour")[0].ID)
}

func TestFindBeanProfile_NormalizedExactMatch(t *testing.T) {
	s := testStore()

	profile, ok := s.FindBeanProfile("  ethiopia yirgacheffe ")
	require.True(t, ok)
	assert.Equal(t, "bean_yirgacheffe", profile.ID)

	// Near miss yields absent, not an error and not a fuzzy match.
	_, ok = s.FindBeanProfile("ethiopia yirgacheff")
	assert.False(t, ok)
}

func TestFindIdealRecipe(t *testing.T) {
	s := testStore()

	recipe, ok := s.FindIdealRecipe("Ethiopia Yirgacheffe", "v60")
	require.True(t, ok)
	assert.Equal(t, "r1", recipe.ID)

	_, ok = s.FindIdealRecipe("Ethiopia Yirgacheffe", "espresso")
	assert.False(t, ok, "no espresso recipe for this bean")

	_, ok = s.FindIdealRecipe("unknown bean", "v60")
	assert.False(t, ok)
}

func TestIsMethod(t *testing.T) {
	s := testStore()
	assert.True(t, s.IsMethod("V60"))
	assert.True(t, s.IsMethod("espresso"))
	assert.False(t, s.IsMethod("bright"))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, "causes.yaml", `
problems:
  sour:
    causes:
      - id: water_too_hot
        question: "Is the water too hot?"
        solution: "Cool it down."
        priority: 1
        dimension: Temperature
        tags: [v60]
      - id: malformed_no_solution
        question: "Where is my solution?"
        priority: 2
`)
	writeFile(t, dir, "beans.yaml", `
beans:
  - id: bean_test
    name: Test Bean
    roast_level: light
    origin: Testland
    flavor_tendencies: [bright]
`)
	writeFile(t, dir, "recipes.yaml", `
methods: [v60, espresso]
recipes:
  - id: recipe_test
    bean_id: bean_test
    method: v60
    targets:
      temperature:
        value: 93
        tolerance: 2
        display: "93°C"
`)

	s, err := LoadDir(dir)
	require.NoError(t, err)

	causes := s.GetCauses("sour")
	require.Len(t, causes, 1)
	assert.Equal(t, "water_too_hot", causes[0].ID)
	assert.Equal(t, models.DimensionTemperature, causes[0].Dimension, "dimension is normalized")

	recipe, ok := s.FindIdealRecipe("test bean", "V60")
	require.True(t, ok)
	target, ok := recipe.Targets[models.DimensionTemperature]
	require.True(t, ok)
	assert.Equal(t, 93.0, target.Value)
	assert.Equal(t, "93°C", target.Display)

	assert.True(t, s.IsMethod("espresso"))
}

func TestLoadDir_ShippedKnowledgeBase(t *testing.T) {
	s, err := LoadDir("data")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"sour", "bitter", "weak"}, s.Problems())
	for _, problem := range s.Problems() {
		assert.NotEmpty(t, s.GetCauses(problem))
	}

	_, ok := s.FindBeanProfile("Ethiopia Yirgacheffe")
	assert.True(t, ok)
	_, ok = s.FindIdealRecipe("Ethiopia Yirgacheffe", "v60")
	assert.True(t, ok)
}

func TestLoadDir_MissingFile(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	require.Error(t, err)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}
