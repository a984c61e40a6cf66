package models

// LeaderboardRow is one ranked line. Rank starts at 1.
type LeaderboardRow struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	Count int64  `json:"count"`
}
