package brackets

import (
	"strings"

	"github.com/matchpoint-app/matchpoint/models"
)

// Node is the plain-value graph representation of one bracket match. It
// carries scalar id references only; graph algorithms work over an id-keyed
// map plus a derived edge list, never over live object pointers.
type Node struct {
	ID          string
	MatchNumber *int

	WinnerNextID    *string
	LoserNextID     *string
	PreviousLeftID  *string
	PreviousRightID *string
}

// NodeFromMatch projects the bracket-relevant fields of a stored match.
func NodeFromMatch(m *models.Match) Node {
	return Node{
		ID:              m.ID,
		MatchNumber:     m.MatchNumber,
		WinnerNextID:    m.WinnerNextID,
		LoserNextID:     m.LoserNextID,
		PreviousLeftID:  m.PreviousLeftID,
		PreviousRightID: m.PreviousRightID,
	}
}

// NodesFromMatches projects a whole match collection.
func NodesFromMatches(matches []*models.Match) []Node {
	nodes := make([]Node, 0, len(matches))
	for _, m := range matches {
		nodes = append(nodes, NodeFromMatch(m))
	}
	return nodes
}

// normalizeRef trims the reference and treats blank as absent.
func normalizeRef(ref *string) *string {
	if ref == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*ref)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// normalized returns a copy of the node with all four references trimmed and
// blank values dropped. The input node is never mutated.
func (n Node) normalized() Node {
	n.WinnerNextID = normalizeRef(n.WinnerNextID)
	n.LoserNextID = normalizeRef(n.LoserNextID)
	n.PreviousLeftID = normalizeRef(n.PreviousLeftID)
	n.PreviousRightID = normalizeRef(n.PreviousRightID)
	return n
}
