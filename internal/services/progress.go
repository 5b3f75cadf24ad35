package services

import (
	"context"
	"fmt"
	"time"

	"github.com/tahcohcat/healplay/internal/database"
	"github.com/tahcohcat/healplay/internal/game"
	"github.com/tahcohcat/healplay/internal/models"
)

type ProgressService struct {
	db  *database.DB
	now func() time.Time
}

func NewProgressService(db *database.DB) *ProgressService {
	return &ProgressService{db: db, now: time.Now}
}

// RecordResult stores the outcome of a completed session. Recording the same
// session twice is a no-op.
func (s *ProgressService) RecordResult(ctx context.Context, parentID, gameID, sessionID string, r game.Result) (*models.GameResult, error) {
	res := &models.GameResult{
		ParentID:    parentID,
		GameID:      gameID,
		SessionID:   sessionID,
		Score:       r.Score,
		MaxScore:    r.MaxScore,
		Percentage:  r.Percentage,
		Level:       r.Level,
		Graded:      r.Graded,
		Passed:      r.Passed,
		CompletedAt: s.now().UTC(),
	}

	query := `
		INSERT OR IGNORE INTO game_results
			(parent_id, game_id, session_id, score, max_score, percentage, level, graded, passed, completed_at)
		VALUES
			(:parent_id, :game_id, :session_id, :score, :max_score, :percentage, :level, :graded, :passed, :completed_at)
	`
	result, err := s.db.NamedExecContext(ctx, query, res)
	if err != nil {
		return nil, fmt.Errorf("failed to record game result: %w", err)
	}
	if id, err := result.LastInsertId(); err == nil {
		res.ID = int(id)
	}
	return res, nil
}

// Results returns a parent's completed sessions, newest first.
func (s *ProgressService) Results(ctx context.Context, parentID string) ([]models.GameResult, error) {
	results := []models.GameResult{}
	query := `SELECT id, parent_id, game_id, session_id, score, max_score, percentage, level, graded, passed, completed_at
			  FROM game_results WHERE parent_id = ? ORDER BY completed_at DESC, id DESC`
	if err := s.db.SelectContext(ctx, &results, query, parentID); err != nil {
		return nil, fmt.Errorf("failed to get game results: %w", err)
	}
	return results, nil
}

// Cleared reports which games the parent has completed in a way that unlocks
// what follows them.
func (s *ProgressService) Cleared(ctx context.Context, parentID string) (map[string]bool, error) {
	var ids []string
	query := `SELECT DISTINCT game_id FROM game_results WHERE parent_id = ? AND (graded = 0 OR passed = 1)`
	if err := s.db.SelectContext(ctx, &ids, query, parentID); err != nil {
		return nil, fmt.Errorf("failed to get cleared games: %w", err)
	}
	cleared := make(map[string]bool, len(ids))
	for _, id := range ids {
		cleared[id] = true
	}
	return cleared, nil
}

// BestScores maps game id to the parent's highest score.
func (s *ProgressService) BestScores(ctx context.Context, parentID string) (map[string]int, error) {
	var rows []struct {
		GameID string `db:"game_id"`
		Best   int    `db:"best"`
	}
	query := `SELECT game_id, MAX(score) AS best FROM game_results WHERE parent_id = ? GROUP BY game_id`
	if err := s.db.SelectContext(ctx, &rows, query, parentID); err != nil {
		return nil, fmt.Errorf("failed to get best scores: %w", err)
	}
	best := make(map[string]int, len(rows))
	for _, r := range rows {
		best[r.GameID] = r.Best
	}
	return best, nil
}
