package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/tahcohcat/healplay/internal/database"
	"github.com/tahcohcat/healplay/internal/game"
	"github.com/tahcohcat/healplay/internal/models"
)

var badgeIcons = map[string]string{
	"reframe-ranger":  "🧠",
	"bounce-back":     "🏀",
	"heart-connector": "💞",
	"steady-hands":    "🧘",
	"habit-hero":      "🥦",
	"deep-breather":   "🌬️",
	"grateful-heart":  "📔",
}

type BadgeService struct {
	db  *database.DB
	now func() time.Time
}

func NewBadgeService(db *database.DB) *BadgeService {
	return &BadgeService{db: db, now: time.Now}
}

func badgeTitle(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "-", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// SeedFromGames registers one badge per game that awards one.
func (s *BadgeService) SeedFromGames(ctx context.Context, games []game.Game) error {
	query := `
		INSERT OR IGNORE INTO badges (name, icon, title, description, game_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	for _, g := range games {
		if g.Badge == "" {
			continue
		}
		icon, ok := badgeIcons[g.Badge]
		if !ok {
			icon = "🏅"
		}
		_, err := s.db.ExecContext(ctx, query, g.Badge, icon, badgeTitle(g.Badge),
			fmt.Sprintf("Complete %s", g.Title), g.ID, s.now().UTC())
		if err != nil {
			return fmt.Errorf("failed to seed badge %s: %w", g.Badge, err)
		}
	}
	return nil
}

func (s *BadgeService) Get(ctx context.Context, name string) (*models.Badge, error) {
	var b models.Badge
	err := s.db.GetContext(ctx, &b, `SELECT name, icon, title, description, game_id, created_at FROM badges WHERE name = ?`, name)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get badge: %w", err)
	}
	return &b, nil
}

// Earned lists the badges a parent has collected.
func (s *BadgeService) Earned(ctx context.Context, parentID string) ([]models.ParentBadge, error) {
	earned := []models.ParentBadge{}
	query := `SELECT parent_id, badge_name, earned_at FROM parent_badges WHERE parent_id = ? ORDER BY earned_at`
	if err := s.db.SelectContext(ctx, &earned, query, parentID); err != nil {
		return nil, fmt.Errorf("failed to get earned badges: %w", err)
	}
	return earned, nil
}

func (s *BadgeService) eligible(ctx context.Context, parentID string, b *models.Badge) (bool, error) {
	if b.GameID == "" {
		return true, nil
	}
	var count int
	query := `SELECT COUNT(*) FROM game_results WHERE parent_id = ? AND game_id = ? AND (graded = 0 OR passed = 1)`
	if err := s.db.GetContext(ctx, &count, query, parentID, b.GameID); err != nil {
		return false, fmt.Errorf("failed to check badge eligibility: %w", err)
	}
	return count > 0, nil
}

func (s *BadgeService) earnedAt(ctx context.Context, parentID, name string) (*time.Time, error) {
	var at time.Time
	err := s.db.GetContext(ctx, &at, `SELECT earned_at FROM parent_badges WHERE parent_id = ? AND badge_name = ?`, parentID, name)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to check badge: %w", err)
	}
	return &at, nil
}

// Status reports whether the badge is earned or ready to collect.
func (s *BadgeService) Status(ctx context.Context, parentID, name string) (*models.BadgeStatus, error) {
	b, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	at, err := s.earnedAt(ctx, parentID, name)
	if err != nil {
		return nil, err
	}
	ok, err := s.eligible(ctx, parentID, b)
	if err != nil {
		return nil, err
	}
	return &models.BadgeStatus{Badge: b, BadgeEarned: at != nil, Eligible: ok, EarnedAt: at}, nil
}

// Collect awards the badge once the linked game has been cleared. Collecting
// an earned badge again reports alreadyEarned.
func (s *BadgeService) Collect(ctx context.Context, parentID, name string) (*models.CollectResult, error) {
	b, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	at, err := s.earnedAt(ctx, parentID, name)
	if err != nil {
		return nil, err
	}
	if at != nil {
		return &models.CollectResult{Success: true, BadgeEarned: true, AlreadyEarned: true, Badge: b}, nil
	}

	ok, err := s.eligible(ctx, parentID, b)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &models.CollectResult{Success: false, Badge: b, Error: "Finish the game to earn this badge"}, nil
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO parent_badges (parent_id, badge_name, earned_at) VALUES (?, ?, ?)`,
		parentID, name, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to collect badge: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// lost a race with a concurrent collect
		return &models.CollectResult{Success: true, BadgeEarned: true, AlreadyEarned: true, Badge: b}, nil
	}
	return &models.CollectResult{Success: true, BadgeEarned: true, NewlyEarned: true, Badge: b}, nil
}
