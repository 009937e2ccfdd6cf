package brackets

// Lane selects which outgoing pointer of a match an edit applies to.
type Lane string

const (
	LaneWinner Lane = "winner"
	LaneLoser  Lane = "loser"
)

// FilterValidNextMatchCandidates returns the node ids that may legally be
// assigned as sourceID's next-match pointer for the given lane. Each
// candidate is tried by mutating a copy of the node set and re-validating the
// whole graph; the node sets in this domain are bracket-sized, so full
// re-validation per candidate is cheaper than getting an incremental check
// wrong. An unknown sourceID yields no candidates.
func FilterValidNextMatchCandidates(sourceID string, nodes []Node, lane Lane) []string {
	sourceIdx := -1
	for i, n := range nodes {
		if n.ID == sourceID {
			sourceIdx = i
			break
		}
	}
	if sourceIdx == -1 {
		return nil
	}

	// A match cannot be both the winner-next and loser-next of one source.
	var otherLaneTarget *string
	if lane == LaneWinner {
		otherLaneTarget = normalizeRef(nodes[sourceIdx].LoserNextID)
	} else {
		otherLaneTarget = normalizeRef(nodes[sourceIdx].WinnerNextID)
	}

	var candidates []string
	for _, cand := range nodes {
		if cand.ID == sourceID {
			continue
		}
		if otherLaneTarget != nil && *otherLaneTarget == cand.ID {
			continue
		}

		modified := make([]Node, len(nodes))
		copy(modified, nodes)
		mutated := modified[sourceIdx]
		candID := cand.ID
		if lane == LaneWinner {
			mutated.WinnerNextID = &candID
		} else {
			mutated.LoserNextID = &candID
		}
		modified[sourceIdx] = mutated

		result := Validate(modified)
		if result.IncomingCountByID[cand.ID] <= 2 {
			candidates = append(candidates, cand.ID)
		}
	}
	return candidates
}
