package models

import "time"

// Per-set winner codes stored in Match.SetResults.
const (
	SetUndecided = 0
	SetTeam1     = 1
	SetTeam2     = 2
)

// Match is one bracket slot of an event. Team slots are pointers because a
// bye or an unresolved feeder leaves them empty. The four bracket reference
// fields carry ids only; resolved object pointers are filled in by
// brackets.ResolveLinks and never persisted.
type Match struct {
	ID          string  `json:"id" db:"id"`
	EventID     string  `json:"event_id" db:"event_id"`
	MatchNumber *int    `json:"match_number,omitempty" db:"match_number"`
	Team1ID     *string `json:"team1_id,omitempty" db:"team1_id"`
	Team2ID     *string `json:"team2_id,omitempty" db:"team2_id"`

	TeamRefereeID    *string `json:"team_referee_id,omitempty" db:"team_referee_id"`
	RefereeCheckedIn bool    `json:"referee_checked_in" db:"referee_checked_in"`

	// Index i of each slice belongs to set i. The three slices always have
	// the same length: the lane's configured set count.
	Team1Points []int `json:"team1_points" db:"team1_points"`
	Team2Points []int `json:"team2_points" db:"team2_points"`
	SetResults  []int `json:"set_results" db:"set_results"`

	LosersBracket bool `json:"losers_bracket" db:"losers_bracket"`

	WinnerNextID    *string `json:"winner_next_id,omitempty" db:"winner_next_id"`
	LoserNextID     *string `json:"loser_next_id,omitempty" db:"loser_next_id"`
	PreviousLeftID  *string `json:"previous_left_id,omitempty" db:"previous_left_id"`
	PreviousRightID *string `json:"previous_right_id,omitempty" db:"previous_right_id"`

	StartedAt *time.Time `json:"started_at,omitempty" db:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty" db:"ended_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`

	WinnerNextMatch   *Match `json:"-" db:"-"`
	LoserNextMatch    *Match `json:"-" db:"-"`
	PreviousLeftMatch *Match `json:"-" db:"-"`
	PreviousRightMatch *Match `json:"-" db:"-"`
}

// Clone returns a deep copy of the match value. Resolved object pointers are
// not carried over; a clone is a standalone document, not part of a graph.
func (m *Match) Clone() *Match {
	c := *m
	c.Team1Points = append([]int(nil), m.Team1Points...)
	c.Team2Points = append([]int(nil), m.Team2Points...)
	c.SetResults = append([]int(nil), m.SetResults...)
	c.WinnerNextMatch = nil
	c.LoserNextMatch = nil
	c.PreviousLeftMatch = nil
	c.PreviousRightMatch = nil
	return &c
}

// SetWins counts the sets recorded for the given side (SetTeam1 or SetTeam2).
func (m *Match) SetWins(side int) int {
	n := 0
	for _, r := range m.SetResults {
		if r == side {
			n++
		}
	}
	return n
}
