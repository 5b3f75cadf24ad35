package models

import (
	"time"
)

// GameResult records one completed mini-game session.
type GameResult struct {
	ID          int       `json:"id" db:"id"`
	ParentID    string    `json:"parent_id" db:"parent_id"`
	GameID      string    `json:"game_id" db:"game_id"`
	SessionID   string    `json:"session_id" db:"session_id"`
	Score       int       `json:"score" db:"score"`
	MaxScore    int       `json:"max_score" db:"max_score"`
	Percentage  int       `json:"percentage" db:"percentage"`
	Level       string    `json:"level" db:"level"`
	Graded      bool      `json:"graded" db:"graded"`
	Passed      bool      `json:"passed" db:"passed"`
	CompletedAt time.Time `json:"completed_at" db:"completed_at"`
}

// Cleared reports whether the result unlocks what depends on the game.
// Ungraded games clear on completion.
func (r GameResult) Cleared() bool {
	return !r.Graded || r.Passed
}

// GameSummary is one catalog entry as seen by a parent.
type GameSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Scoring     string `json:"scoring"`
	TotalLevels int    `json:"total_levels"`
	Badge       string `json:"badge,omitempty"`
	Unlocked    bool   `json:"unlocked"`
	Completed   bool   `json:"completed"`
	BestScore   *int   `json:"best_score,omitempty"`
}
