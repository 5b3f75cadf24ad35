package game

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

type RoundKind string

const (
	// KindChoice rounds take exactly one Choice.
	KindChoice RoundKind = "choice"
	// KindReflection rounds take free text (journal prompts).
	KindReflection RoundKind = "reflection"
	// KindItem rounds are sortable items in a classification game.
	KindItem RoundKind = "item"
)

// Choice is one selectable response of a round. Only the attribute matching
// the game's scoring kind is meaningful.
type Choice struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Correct  bool   `json:"correct,omitempty"`
	Points   int    `json:"points,omitempty"`
	Delta    int    `json:"delta,omitempty"`
	Feedback string `json:"feedback,omitempty"`
}

type Round struct {
	ID          string    `json:"id"`
	Kind        RoundKind `json:"kind,omitempty"`
	Prompt      string    `json:"prompt"`
	Options     []Choice  `json:"options,omitempty"`
	Bin         string    `json:"bin,omitempty"`
	Explanation string    `json:"explanation,omitempty"`
}

func (r Round) kind() RoundKind {
	if r.Kind == "" {
		return KindChoice
	}
	return r.Kind
}

func (r Round) choice(id string) (Choice, bool) {
	for _, c := range r.Options {
		if c.ID == id {
			return c, true
		}
	}
	return Choice{}, false
}

// Game is a statically defined mini-game.
type Game struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Scoring        ScoringConfig `json:"scoring"`
	Rounds         []Round       `json:"rounds"`
	TotalLevels    int           `json:"total_levels,omitempty"`
	RequiresStart  bool          `json:"requires_start,omitempty"`
	ShuffleOptions bool          `json:"shuffle_options,omitempty"`
	Badge          string        `json:"badge,omitempty"`
}

// Validate checks the round definitions against the scoring kind.
func (g Game) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return fmt.Errorf("game id is required")
	}
	if len(g.Rounds) == 0 {
		return fmt.Errorf("game %s has no rounds", g.ID)
	}
	if _, err := NewStrategy(g.Scoring); err != nil {
		return fmt.Errorf("game %s: %w", g.ID, err)
	}

	seen := make(map[string]bool, len(g.Rounds))
	for _, r := range g.Rounds {
		if r.ID == "" {
			return fmt.Errorf("game %s has a round without id", g.ID)
		}
		if seen[r.ID] {
			return fmt.Errorf("game %s has duplicate round %s", g.ID, r.ID)
		}
		seen[r.ID] = true

		if g.Scoring.Kind == ScoringClassification {
			if r.kind() != KindItem && r.Kind != "" {
				return fmt.Errorf("game %s round %s: classification games only take items", g.ID, r.ID)
			}
			if !g.Scoring.hasBin(r.Bin) {
				return fmt.Errorf("game %s round %s: unknown bin %q", g.ID, r.ID, r.Bin)
			}
			continue
		}

		switch r.kind() {
		case KindChoice:
			if len(r.Options) == 0 {
				return fmt.Errorf("game %s round %s has no options", g.ID, r.ID)
			}
		case KindReflection:
		default:
			return fmt.Errorf("game %s round %s: unsupported kind %q", g.ID, r.ID, r.Kind)
		}
	}
	return nil
}

// LoadGameFromFile loads a mini-game definition from a JSON file
func LoadGameFromFile(filename string) (Game, error) {
	file, err := os.Open(filename)
	if err != nil {
		return Game{}, fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()

	var g Game
	if err := decoder.Decode(&g); err != nil {
		return Game{}, fmt.Errorf("failed to decode game JSON: %w", err)
	}
	if err := g.Validate(); err != nil {
		return Game{}, err
	}

	return g, nil
}
