package kb

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"coffee-doctor-core/svc/models"
)

// Store is the read-only knowledge base: per-problem cause lists, bean
// profiles and ideal recipes. All lookups are case-insensitive exact
// matches on trimmed names; a near-miss yields "absent", never an error.
type Store struct {
	causes   map[string][]models.Cause      // normalized problem -> ordered causes
	beans    map[string]models.BeanProfile  // normalized bean name -> profile
	beanByID map[string]models.BeanProfile  // bean id -> profile
	recipes  map[string]models.IdealRecipe  // beanID + "|" + normalized method
	methods  map[string]struct{}            // brew method vocabulary
	problems []string
}

// Normalize trims and lower-cases a name for lookup.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NewStore builds a Store from in-memory data. Cause order within each
// problem is preserved as given.
func NewStore(causes map[string][]models.Cause, beans []models.BeanProfile, recipes []models.IdealRecipe, methods []string) *Store {
	s := &Store{
		causes:   make(map[string][]models.Cause),
		beans:    make(map[string]models.BeanProfile),
		beanByID: make(map[string]models.BeanProfile),
		recipes:  make(map[string]models.IdealRecipe),
		methods:  make(map[string]struct{}),
	}
	for problem, cs := range causes {
		key := Normalize(problem)
		s.causes[key] = validCauses(problem, cs)
		s.problems = append(s.problems, key)
	}
	for _, b := range beans {
		s.beans[Normalize(b.Name)] = b
		s.beanByID[b.ID] = b
	}
	for _, r := range recipes {
		s.recipes[r.BeanID+"|"+Normalize(r.Method)] = r
		s.methods[Normalize(r.Method)] = struct{}{}
	}
	for _, m := range methods {
		s.methods[Normalize(m)] = struct{}{}
	}
	return s
}

// validCauses drops malformed entries (missing id, question or solution)
// and keeps the rest in file order. A malformed entry is never fatal.
func validCauses(problem string, cs []models.Cause) []models.Cause {
	out := make([]models.Cause, 0, len(cs))
	for _, c := range cs {
		if c.ID == "" || c.Question == "" || c.Solution == "" {
			log.Printf("[KnowledgeBase] Skipping malformed cause %q for problem %q", c.ID, problem)
			continue
		}
		out = append(out, c)
	}
	return out
}

// GetCauses returns the ordered cause list for a problem label. Unknown
// labels return an empty slice so the caller degrades to "no hypotheses".
func (s *Store) GetCauses(problem string) []models.Cause {
	cs := s.causes[Normalize(problem)]
	out := make([]models.Cause, len(cs))
	copy(out, cs)
	return out
}

// FindBeanProfile looks up a bean by name.
func (s *Store) FindBeanProfile(name string) (*models.BeanProfile, bool) {
	b, ok := s.beans[Normalize(name)]
	if !ok {
		return nil, false
	}
	return &b, true
}

// FindIdealRecipe looks up the recipe for a bean name and brew method.
func (s *Store) FindIdealRecipe(beanName, method string) (*models.IdealRecipe, bool) {
	b, ok := s.beans[Normalize(beanName)]
	if !ok {
		return nil, false
	}
	r, ok := s.recipes[b.ID+"|"+Normalize(method)]
	if !ok {
		return nil, false
	}
	return &r, true
}

// Methods returns the known brew method vocabulary, used to decide which
// cause tags name brew methods.
func (s *Store) Methods() []string {
	out := make([]string, 0, len(s.methods))
	for m := range s.methods {
		out = append(out, m)
	}
	return out
}

// IsMethod reports whether tag names a known brew method.
func (s *Store) IsMethod(tag string) bool {
	_, ok := s.methods[Normalize(tag)]
	return ok
}

// Problems returns the problem labels the knowledge base can diagnose.
func (s *Store) Problems() []string {
	out := make([]string, len(s.problems))
	copy(out, s.problems)
	return out
}

// File schemas for LoadDir.

type causesFile struct {
	Problems map[string]struct {
		Causes []causeEntry `yaml:"causes"`
	} `yaml:"problems"`
}

type causeEntry struct {
	ID        string   `yaml:"id"`
	Question  string   `yaml:"question"`
	Solution  string   `yaml:"solution"`
	Priority  int      `yaml:"priority"`
	Tags      []string `yaml:"tags"`
	Dimension string   `yaml:"dimension"`
}

type beansFile struct {
	Beans []beanEntry `yaml:"beans"`
}

type beanEntry struct {
	ID               string   `yaml:"id"`
	Name             string   `yaml:"name"`
	RoastLevel       string   `yaml:"roast_level"`
	Origin           string   `yaml:"origin"`
	FlavorTendencies []string `yaml:"flavor_tendencies"`
}

type recipesFile struct {
	Methods []string      `yaml:"methods"`
	Recipes []recipeEntry `yaml:"recipes"`
}

type recipeEntry struct {
	ID      string                 `yaml:"id"`
	BeanID  string                 `yaml:"bean_id"`
	Method  string                 `yaml:"method"`
	Targets map[string]targetEntry `yaml:"targets"`
}

type targetEntry struct {
	Value     float64 `yaml:"value"`
	Tolerance float64 `yaml:"tolerance"`
	Display   string  `yaml:"display"`
}

// LoadDir reads causes.yaml, beans.yaml and recipes.yaml from dir and
// builds a Store.
func LoadDir(dir string) (*Store, error) {
	var cf causesFile
	if err := readYAML(filepath.Join(dir, "causes.yaml"), &cf); err != nil {
		return nil, fmt.Errorf("failed to load causes: %w", err)
	}
	var bf beansFile
	if err := readYAML(filepath.Join(dir, "beans.yaml"), &bf); err != nil {
		return nil, fmt.Errorf("failed to load beans: %w", err)
	}
	var rf recipesFile
	if err := readYAML(filepath.Join(dir, "recipes.yaml"), &rf); err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}

	causes := make(map[string][]models.Cause, len(cf.Problems))
	for problem, entry := range cf.Problems {
		cs := make([]models.Cause, 0, len(entry.Causes))
		for _, c := range entry.Causes {
			cs = append(cs, models.Cause{
				ID:           c.ID,
				Question:     c.Question,
				Solution:     c.Solution,
				BasePriority: c.Priority,
				Tags:         c.Tags,
				Dimension:    Normalize(c.Dimension),
			})
		}
		causes[problem] = cs
	}
	beans := make([]models.BeanProfile, 0, len(bf.Beans))
	for _, b := range bf.Beans {
		beans = append(beans, models.BeanProfile{
			ID:               b.ID,
			Name:             b.Name,
			RoastLevel:       b.RoastLevel,
			Origin:           b.Origin,
			FlavorTendencies: b.FlavorTendencies,
		})
	}
	recipes := make([]models.IdealRecipe, 0, len(rf.Recipes))
	for _, r := range rf.Recipes {
		targets := make(map[string]models.RecipeTarget, len(r.Targets))
		for dim, t := range r.Targets {
			targets[Normalize(dim)] = models.RecipeTarget{
				Value:     t.Value,
				Tolerance: t.Tolerance,
				Display:   t.Display,
			}
		}
		recipes = append(recipes, models.IdealRecipe{
			ID:      r.ID,
			BeanID:  r.BeanID,
			Method:  r.Method,
			Targets: targets,
		})
	}

	log.Printf("[KnowledgeBase] Loaded %d problems, %d beans, %d recipes from %s",
		len(causes), len(beans), len(recipes), dir)
	return NewStore(causes, beans, recipes, rf.Methods), nil
}

func readYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading YAML file: %v", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("error parsing YAML: %v", err)
	}
	return nil
}
