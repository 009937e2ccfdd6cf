package models

import "time"

// LaneConfig is the scoring configuration of one bracket lane (winner or
// loser side). ScoreLimits and PointsToVictory are indexed by set number;
// when a set index runs past the configured values the last entry applies.
type LaneConfig struct {
	SetCount        int   `json:"set_count"`
	ScoreLimits     []int `json:"score_limits"`
	PointsToVictory []int `json:"points_to_victory"`
}

// SetsNeeded is the majority threshold: best-of semantics, so 3 sets need 2
// wins and 5 sets need 3.
func (c LaneConfig) SetsNeeded() int {
	return (c.SetCount + 1) / 2
}

// ScoreLimitAt returns the hard cap for the given set index, falling back to
// the last configured value. Zero means no cap.
func (c LaneConfig) ScoreLimitAt(set int) int {
	return valueAt(c.ScoreLimits, set)
}

// PointsToVictoryAt returns the minimum leading score that, combined with a
// two-point margin, ends the given set.
func (c LaneConfig) PointsToVictoryAt(set int) int {
	return valueAt(c.PointsToVictory, set)
}

func valueAt(vs []int, i int) int {
	if len(vs) == 0 {
		return 0
	}
	if i >= len(vs) {
		return vs[len(vs)-1]
	}
	return vs[i]
}

// Event is the tournament an event's matches belong to. The lane configs are
// read-only to the scoring engine.
type Event struct {
	ID        string     `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Location  *string    `json:"location,omitempty" db:"location"`
	StartDate *time.Time `json:"start_date,omitempty" db:"start_date"`

	WinnerLane LaneConfig `json:"winner_lane" db:"-"`
	LoserLane  LaneConfig `json:"loser_lane" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Lane selects the config for the requested bracket side.
func (e *Event) Lane(losersBracket bool) LaneConfig {
	if losersBracket {
		return e.LoserLane
	}
	return e.WinnerLane
}
