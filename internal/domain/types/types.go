// Package types contains common types used across the application
package types

// Entry represents a leaderboard entry
type Entry struct {
	Rank     int     `json:"rank"`
	PlayerID int     `json:"player_id"`
	Category string  `json:"category,omitempty"`
	Score    float64 `json:"score"`
}
