// Package types contains common types used across the application.
package types

// Entry is a leaderboard row: a player's best session score.
type Entry struct {
	Rank      int     `json:"rank" yaml:"rank" csv:"rank"`
	Player    string  `json:"player" yaml:"player" csv:"player"`
	Score     float64 `json:"score" yaml:"score" csv:"score"`
	SessionID string  `json:"session_id" yaml:"session_id" csv:"session_id"`
	Sessions  int     `json:"sessions" yaml:"sessions" csv:"sessions"`
}
