package models

import "time"

// Tree is a planted-tree record persisted server-side.
// Verified trees always carry a confidence above the deciding strategy's
// threshold; unverified trees stored via photo_url keep confidence 0.
type Tree struct {
	ID         int       `json:"id" db:"id"`
	UserID     int       `json:"user_id" db:"user_id"`
	Species    string    `json:"species" db:"species"`
	PhotoURL   *string   `json:"photo_url,omitempty" db:"photo_url"`
	Latitude   float64   `json:"latitude" db:"latitude"`
	Longitude  float64   `json:"longitude" db:"longitude"`
	Verified   bool      `json:"verified" db:"verified"`
	Confidence float64   `json:"confidence" db:"confidence"`
	PlantedAt  time.Time `json:"planted_at" db:"planted_at"`
}

// CreateTreeRequest is the POST /trees body. Photo carries an inline base64
// image payload; when present the verification engine runs before the row is
// written. PhotoURL alone stores the record unverified.
type CreateTreeRequest struct {
	Species   string  `json:"species"`
	PhotoURL  string  `json:"photo_url,omitempty"`
	Photo     string  `json:"photo,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LeaderboardRow is one entry of the remote leaderboard. Users with no trees
// appear with TreesPlanted 0.
type LeaderboardRow struct {
	ID           int    `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	TreesPlanted int    `json:"trees_planted" db:"trees_planted"`
}

// LeaderboardResponse is the GET /leaderboard body.
type LeaderboardResponse struct {
	Leaderboard []LeaderboardRow `json:"leaderboard"`
}

// TreesResponse is the GET /trees/mine body.
type TreesResponse struct {
	Trees []Tree `json:"trees"`
}

// OKResponse acknowledges a write.
type OKResponse struct {
	OK bool `json:"ok"`
}
