package catalog

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/schollz/closestmatch"

	"github.com/tahcohcat/healplay/config"
	"github.com/tahcohcat/healplay/internal/game"
	"github.com/tahcohcat/healplay/internal/logger"
)

// NotFoundError carries a closest-match suggestion for mistyped game ids.
type NotFoundError struct {
	ID         string
	Suggestion string
}

func (e *NotFoundError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("game %q not found, did you mean %q?", e.ID, e.Suggestion)
	}
	return fmt.Sprintf("game %q not found", e.ID)
}

type Catalog struct {
	games   map[string]game.Game
	order   []string
	cfg     config.GamesConfig
	matcher *closestmatch.ClosestMatch
	seeds   atomic.Int64
}

// New builds the catalog from the built-in games plus any JSON definitions
// in cfg.Dir. File definitions replace built-ins with the same id.
func New(cfg config.GamesConfig) (*Catalog, error) {
	c := &Catalog{
		games: make(map[string]game.Game),
		cfg:   cfg,
	}
	for _, g := range Builtin() {
		if err := c.add(g); err != nil {
			return nil, err
		}
	}
	if cfg.Dir != "" {
		if err := c.loadDir(cfg.Dir); err != nil {
			return nil, err
		}
	}
	c.matcher = closestmatch.New(c.order, []int{2, 3})
	c.seeds.Store(cfg.ShuffleSeed)
	return c, nil
}

func (c *Catalog) add(g game.Game) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if _, exists := c.games[g.ID]; !exists {
		c.order = append(c.order, g.ID)
	}
	c.games[g.ID] = g
	return nil
}

func (c *Catalog) loadDir(dir string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read games directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		if !f.IsDir() && strings.HasSuffix(f.Name(), ".json") {
			names = append(names, f.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		g, err := game.LoadGameFromFile(filepath.Join(dir, name))
		if err != nil {
			logger.New().WithError(err).Warn(fmt.Sprintf("skipping game file %s", name))
			continue
		}
		if err := c.add(g); err != nil {
			return err
		}
		logger.New().Game(g.ID, fmt.Sprintf("loaded from %s", name))
	}
	return nil
}

// List returns games in unlock order.
func (c *Catalog) List() []game.Game {
	out := make([]game.Game, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.games[id])
	}
	return out
}

func (c *Catalog) Get(id string) (game.Game, error) {
	g, ok := c.games[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return game.Game{}, &NotFoundError{ID: id, Suggestion: c.suggest(id)}
	}
	return g, nil
}

func (c *Catalog) suggest(id string) string {
	if c.matcher == nil || id == "" {
		return ""
	}
	return c.matcher.Closest(strings.ToLower(id))
}

// Previous returns the game that must be completed before id unlocks.
func (c *Catalog) Previous(id string) (string, bool) {
	for i, gid := range c.order {
		if gid == id {
			if i == 0 {
				return "", false
			}
			return c.order[i-1], true
		}
	}
	return "", false
}

// Levels is the number of rounds a session of g plays.
func (c *Catalog) Levels(g game.Game) int {
	return c.cfg.Levels(g.ID, g.TotalLevels)
}

// NewSession starts a session of game id with the configured round count
// and shuffle source.
func (c *Catalog) NewSession(id string, opts ...game.Option) (*game.Session, error) {
	g, err := c.Get(id)
	if err != nil {
		return nil, err
	}

	seed := time.Now().UnixNano()
	if c.cfg.ShuffleSeed != 0 {
		seed = c.seeds.Add(1)
	}
	base := []game.Option{
		game.WithLevels(c.Levels(g)),
		game.WithRand(rand.New(rand.NewSource(seed))),
	}
	return game.NewSession(g, append(base, opts...)...)
}
