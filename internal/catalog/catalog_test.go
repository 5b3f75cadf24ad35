package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tahcohcat/healplay/config"
	"github.com/tahcohcat/healplay/internal/game"
)

func defaultConfig() config.GamesConfig {
	return config.GamesConfig{DefaultTotalLevels: 5}
}

func TestBuiltinGamesValid(t *testing.T) {
	kinds := map[game.ScoringKind]bool{}
	for _, g := range Builtin() {
		if err := g.Validate(); err != nil {
			t.Fatalf("%s: %v", g.ID, err)
		}
		if g.Badge == "" {
			t.Fatalf("%s has no badge", g.ID)
		}
		kinds[g.Scoring.Kind] = true
	}
	for _, k := range []game.ScoringKind{game.ScoringTally, game.ScoringLikert, game.ScoringMeter, game.ScoringClassification} {
		if !kinds[k] {
			t.Fatalf("no builtin game uses %s scoring", k)
		}
	}
}

func TestGetSuggestsClosestMatch(t *testing.T) {
	c, err := New(defaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get("Calm-Parent"); err != nil {
		t.Fatalf("case-insensitive lookup failed: %v", err)
	}

	_, err = c.Get("calm-parnet")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
	if nf.Suggestion != "calm-parent" {
		t.Fatalf("suggestion = %q", nf.Suggestion)
	}
}

func TestLevelsResolution(t *testing.T) {
	cfg := defaultConfig()
	cfg.TotalLevels = map[string]int{"reframe-quiz": 3}
	c, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	s, err := c.NewSession("reframe-quiz")
	if err != nil {
		t.Fatal(err)
	}
	if n := s.View().TotalRounds; n != 3 {
		t.Fatalf("configured levels: rounds = %d, want 3", n)
	}

	s, err = c.NewSession("healthy-sort")
	if err != nil {
		t.Fatal(err)
	}
	if n := s.View().TotalRounds; n != 10 {
		t.Fatalf("game default levels: rounds = %d, want 10", n)
	}

	s, err = c.NewSession("calm-parent")
	if err != nil {
		t.Fatal(err)
	}
	if n := s.View().TotalRounds; n != 5 {
		t.Fatalf("fallback levels: rounds = %d, want 5", n)
	}
}

func TestUnlockChain(t *testing.T) {
	c, err := New(defaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Previous("reframe-quiz"); ok {
		t.Fatalf("first game should have no prerequisite")
	}
	prev, ok := c.Previous("resilience-check")
	if !ok || prev != "reframe-quiz" {
		t.Fatalf("previous = %q, %v", prev, ok)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	def := `{
  "id": "screen-time",
  "title": "Screen Time Quiz",
  "scoring": {"kind": "tally", "pass_threshold": 1},
  "badge": "screen-smart",
  "rounds": [
    {"id": "q1", "prompt": "Screens at dinner?", "options": [
      {"id": "yes", "label": "Sure"},
      {"id": "no", "label": "Keep dinner screen-free", "correct": true}
    ]}
  ]
}`
	if err := os.WriteFile(filepath.Join(dir, "screen.json"), []byte(def), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := defaultConfig()
	cfg.Dir = dir
	c, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	g, err := c.Get("screen-time")
	if err != nil {
		t.Fatal(err)
	}
	if g.Scoring.PassThreshold != 1 || len(g.Rounds) != 1 {
		t.Fatalf("loaded game = %+v", g)
	}
	list := c.List()
	if list[len(list)-1].ID != "screen-time" {
		t.Fatalf("file games should unlock after built-ins")
	}
}

func TestSeededShuffleIsReproducible(t *testing.T) {
	cfg := defaultConfig()
	cfg.ShuffleSeed = 99
	order := func() []string {
		c, err := New(cfg)
		if err != nil {
			t.Fatal(err)
		}
		s, err := c.NewSession("reframe-quiz")
		if err != nil {
			t.Fatal(err)
		}
		var ids []string
		for _, o := range s.View().Round.Options {
			ids = append(ids, o.ID)
		}
		return ids
	}
	a, b := order(), order()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("seeded orders differ: %v vs %v", a, b)
		}
	}
}

func TestShortenedGamesStayPassable(t *testing.T) {
	cfg := defaultConfig()
	cfg.TotalLevels = map[string]int{"reframe-quiz": 2, "healthy-sort": 2}
	c, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	g, err := c.Get("reframe-quiz")
	if err != nil {
		t.Fatal(err)
	}
	correct := map[string]string{}
	for _, r := range g.Rounds {
		for _, o := range r.Options {
			if o.Correct {
				correct[r.ID] = o.ID
			}
		}
	}

	s, err := c.NewSession("reframe-quiz")
	if err != nil {
		t.Fatal(err)
	}
	for {
		v := s.View()
		if err := s.Select(v.Round.ID, correct[v.Round.ID]); err != nil {
			t.Fatal(err)
		}
		done, err := s.Next()
		if err != nil {
			t.Fatal(err)
		}
		if done {
			break
		}
	}
	if res := s.Result(); res.MaxScore != 2 || res.Score != 2 || !res.Passed {
		t.Fatalf("perfect shortened quiz result = %+v", res)
	}

	g, err = c.Get("healthy-sort")
	if err != nil {
		t.Fatal(err)
	}
	bins := map[string]string{}
	for _, r := range g.Rounds {
		bins[r.ID] = r.Bin
	}
	s, err = c.NewSession("healthy-sort")
	if err != nil {
		t.Fatal(err)
	}
	for _, item := range s.View().Pool {
		if err := s.Place(item.ID, bins[item.ID]); err != nil {
			t.Fatal(err)
		}
	}
	if done, err := s.Next(); err != nil || !done {
		t.Fatalf("next = %v, %v", done, err)
	}
	if res := s.Result(); !res.Passed {
		t.Fatalf("perfect shortened sort result = %+v", res)
	}
}
