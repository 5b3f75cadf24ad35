package models

import (
	"time"
)

type Badge struct {
	Name        string    `json:"name" db:"name"`
	Icon        string    `json:"icon" db:"icon"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	GameID      string    `json:"game_id" db:"game_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type ParentBadge struct {
	ParentID  string    `json:"parent_id" db:"parent_id"`
	BadgeName string    `json:"badge_name" db:"badge_name"`
	EarnedAt  time.Time `json:"earned_at" db:"earned_at"`
}

// BadgeStatus answers the status check before a collect call.
type BadgeStatus struct {
	Badge       *Badge     `json:"badge"`
	BadgeEarned bool       `json:"badgeEarned"`
	Eligible    bool       `json:"eligible"`
	EarnedAt    *time.Time `json:"earnedAt,omitempty"`
}

// CollectResult is the body of POST /api/parent/badge/{badge}/collect.
type CollectResult struct {
	Success       bool   `json:"success"`
	BadgeEarned   bool   `json:"badgeEarned"`
	AlreadyEarned bool   `json:"alreadyEarned"`
	NewlyEarned   bool   `json:"newlyEarned"`
	Badge         *Badge `json:"badge,omitempty"`
	Error         string `json:"error,omitempty"`
}
