// Package catalog holds the static competition configuration: contestants
// and round/criteria definitions. The catalog is loaded once at startup and
// never mutated at runtime.
package catalog

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// ScoreStep is the granularity of a criterion rating.
const ScoreStep = 0.1

// Criterion is one rated dimension of a round.
type Criterion struct {
	ID       string  `yaml:"id" json:"id"`
	Name     string  `yaml:"name" json:"name"`
	MaxScore float64 `yaml:"max_score" json:"max_score"`
}

// Round is a scored stage of the competition. TotalMax must equal the sum of
// its criteria max scores.
type Round struct {
	ID          int         `yaml:"id" json:"id"`
	Title       string      `yaml:"title" json:"title"`
	Description string      `yaml:"description" json:"description"`
	TotalMax    float64     `yaml:"total_max" json:"total_max"`
	Criteria    []Criterion `yaml:"criteria" json:"criteria"`
}

// Criterion returns the criterion with the given id, if present.
func (r Round) Criterion(id string) (Criterion, bool) {
	for _, c := range r.Criteria {
		if c.ID == id {
			return c, true
		}
	}
	return Criterion{}, false
}

// Contestant is a competition participant.
type Contestant struct {
	ID    string `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	Title string `yaml:"title" json:"title"`
	Image string `yaml:"image" json:"image"`
}

// Catalog bundles the full static configuration.
type Catalog struct {
	Contestants []Contestant `yaml:"contestants" json:"contestants"`
	Rounds      []Round      `yaml:"rounds" json:"rounds"`
}

// Contestant returns the contestant with the given id, if present.
func (c *Catalog) Contestant(id string) (Contestant, bool) {
	for _, p := range c.Contestants {
		if p.ID == id {
			return p, true
		}
	}
	return Contestant{}, false
}

// Round returns the round with the given id, if present.
func (c *Catalog) Round(id int) (Round, bool) {
	for _, r := range c.Rounds {
		if r.ID == id {
			return r, true
		}
	}
	return Round{}, false
}

// Clamp snaps v onto the scoring step and limits it to [0, maxScore] of the
// addressed criterion. Unknown round/criterion pairs report ok=false.
func (c *Catalog) Clamp(roundID int, criterionID string, v float64) (float64, bool) {
	round, ok := c.Round(roundID)
	if !ok {
		return 0, false
	}
	crit, ok := round.Criterion(criterionID)
	if !ok {
		return 0, false
	}
	v = math.Round(v/ScoreStep) * ScoreStep
	if v < 0 {
		v = 0
	}
	if v > crit.MaxScore {
		v = crit.MaxScore
	}
	return v, true
}

// Validate checks structural invariants: non-empty lists, unique ids,
// positive max scores, and per-round total_max equal to the criteria sum.
func (c *Catalog) Validate() error {
	if len(c.Contestants) == 0 {
		return fmt.Errorf("%w: no contestants", ErrInvalidCatalog)
	}
	if len(c.Rounds) == 0 {
		return fmt.Errorf("%w: no rounds", ErrInvalidCatalog)
	}

	seenContestant := make(map[string]bool, len(c.Contestants))
	for _, p := range c.Contestants {
		if p.ID == "" {
			return fmt.Errorf("%w: contestant with empty id", ErrInvalidCatalog)
		}
		if seenContestant[p.ID] {
			return fmt.Errorf("%w: duplicate contestant id %q", ErrInvalidCatalog, p.ID)
		}
		seenContestant[p.ID] = true
	}

	seenRound := make(map[int]bool, len(c.Rounds))
	for _, r := range c.Rounds {
		if seenRound[r.ID] {
			return fmt.Errorf("%w: duplicate round id %d", ErrInvalidCatalog, r.ID)
		}
		seenRound[r.ID] = true

		if len(r.Criteria) == 0 {
			return fmt.Errorf("%w: round %d has no criteria", ErrInvalidCatalog, r.ID)
		}

		var sum float64
		seenCrit := make(map[string]bool, len(r.Criteria))
		for _, crit := range r.Criteria {
			if crit.ID == "" {
				return fmt.Errorf("%w: round %d has a criterion with empty id", ErrInvalidCatalog, r.ID)
			}
			if seenCrit[crit.ID] {
				return fmt.Errorf("%w: round %d has duplicate criterion id %q", ErrInvalidCatalog, r.ID, crit.ID)
			}
			seenCrit[crit.ID] = true
			if crit.MaxScore <= 0 {
				return fmt.Errorf("%w: criterion %q in round %d has non-positive max score", ErrInvalidCatalog, crit.ID, r.ID)
			}
			sum += crit.MaxScore
		}
		if math.Abs(sum-r.TotalMax) > 1e-9 {
			return fmt.Errorf("%w: round %d total_max %.1f does not match criteria sum %.1f",
				ErrInvalidCatalog, r.ID, r.TotalMax, sum)
		}
	}
	return nil
}

// Load reads a YAML catalog file and validates it.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadCatalog, err)
	}
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadCatalog, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
