// Package model contains domain models passed between layers.
package model

import "time"

// ScoreSet is one judge's per-criterion ratings for one contestant in one
// round. Fields mirror the JSON stored in the room namespace.
type ScoreSet struct {
	ContestantID   string             `json:"contestant_id"`
	RoundID        int                `json:"round_id"`
	Judge          string             `json:"judge"`
	CriteriaScores map[string]float64 `json:"criteria_scores"`
	UpdatedAt      int64              `json:"updated_at"` // unix milliseconds
}

// Key is the identity triple that determines which score set a submission
// replaces. At most one live ScoreSet exists per Key.
type Key struct {
	ContestantID string
	RoundID      int
	Judge        string
}

// Key returns the identity key of the score set.
func (s ScoreSet) Key() Key {
	return Key{ContestantID: s.ContestantID, RoundID: s.RoundID, Judge: s.Judge}
}

// Total sums the criteria values of the score set.
func (s ScoreSet) Total() float64 {
	var total float64
	for _, v := range s.CriteriaScores {
		total += v
	}
	return total
}

// Room is a shared scoring scope identified by a short numeric code.
// Judges keep insertion order for display; scores hold every live ScoreSet.
type Room struct {
	ID        string     `json:"id"`
	Judges    []string   `json:"judges"`
	Scores    []ScoreSet `json:"scores"`
	CreatedAt int64      `json:"created_at"` // unix milliseconds
	UpdatedAt int64      `json:"updated_at"` // unix milliseconds
}

// HasJudge reports whether name is registered in the room.
func (r Room) HasJudge(name string) bool {
	for _, j := range r.Judges {
		if j == name {
			return true
		}
	}
	return false
}

// Now returns the current time in unix milliseconds, the timestamp unit used
// throughout stored rooms.
func Now() int64 {
	return time.Now().UnixMilli()
}
