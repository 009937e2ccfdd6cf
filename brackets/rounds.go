package brackets

import "github.com/matchpoint-app/matchpoint/models"

// ResolveLinks fills the object pointers of each match from its scalar id
// references. References to ids outside the collection stay nil.
func ResolveLinks(matches []*models.Match) {
	byID := make(map[string]*models.Match, len(matches))
	for _, m := range matches {
		byID[m.ID] = m
	}
	lookup := func(id *string) *models.Match {
		if id == nil {
			return nil
		}
		return byID[*id]
	}
	for _, m := range matches {
		m.WinnerNextMatch = lookup(m.WinnerNextID)
		m.LoserNextMatch = lookup(m.LoserNextID)
		m.PreviousLeftMatch = lookup(m.PreviousLeftID)
		m.PreviousRightMatch = lookup(m.PreviousRightID)
	}
}

// BuildRounds derives the renderable round sequence for one lane of a
// resolved match collection, ordered earliest round first. Nil entries are
// bye or unfilled slots and keep sibling matches aligned.
//
// The walk starts from the terminal matches (nothing feeds out of them) and
// expands previous pointers backward, guarded by validForLane so it does not
// wander into the other lane except at merge points. A visited-set guard
// keeps the walk terminating even on a cyclic graph; callers that need strict
// correctness must run Validate first, a cyclic input here degrades to a
// truncated bracket without an error signal.
func BuildRounds(matches []*models.Match, losersLane bool) [][]*models.Match {
	if len(matches) == 0 {
		return [][]*models.Match{}
	}

	visited := make(map[string]bool, len(matches))
	var finalRound []*models.Match
	for _, m := range matches {
		if m.WinnerNextMatch == nil && m.LoserNextMatch == nil {
			finalRound = append(finalRound, m)
			visited[m.ID] = true
		}
	}
	if len(finalRound) == 0 {
		return [][]*models.Match{}
	}

	rounds := [][]*models.Match{finalRound}
	current := finalRound
	for {
		next := make([]*models.Match, 0, len(current)*2)
		hasMatch := false
		for _, m := range current {
			if m == nil || !validForLane(m, losersLane) {
				// Keep the two feeder slots so later rounds stay aligned.
				next = append(next, nil, nil)
				continue
			}
			for _, prev := range [2]*models.Match{m.PreviousLeftMatch, m.PreviousRightMatch} {
				if prev == nil || visited[prev.ID] {
					next = append(next, nil)
					continue
				}
				visited[prev.ID] = true
				next = append(next, prev)
				hasMatch = true
			}
		}
		if !hasMatch {
			break
		}
		rounds = append(rounds, next)
		current = next
	}

	for i, j := 0, len(rounds)-1; i < j; i, j = i+1, j-1 {
		rounds[i], rounds[j] = rounds[j], rounds[i]
	}
	return rounds
}

// validForLane reports whether a match may be expanded while walking the
// given lane. Winner and loser matches interleave in a double-elimination
// bracket; expansion crosses lanes only at defined merge points.
func validForLane(m *models.Match, losersLane bool) bool {
	left, right := m.PreviousLeftMatch, m.PreviousRightMatch
	switch {
	case left != nil && left == right:
		// Both slots fed by the same single match, a bye into a final.
		return true
	case left != nil && right != nil && left.LosersBracket != right.LosersBracket:
		// The loser bracket rejoining the winner bracket.
		return true
	case m.LosersBracket == losersLane:
		return true
	case left == nil && right == nil:
		// First-round match.
		return true
	}
	return false
}
