package brackets

import (
	"fmt"
	"math"
	"sort"
)

type ErrorKind string

const (
	ErrUnknownReference      ErrorKind = "unknown_reference"
	ErrSelfReference         ErrorKind = "self_reference"
	ErrDuplicateSourceTarget ErrorKind = "duplicate_source_target"
	ErrTargetOverCapacity    ErrorKind = "target_over_capacity"
	ErrCycleDetected         ErrorKind = "cycle_detected"
)

// ValidationError is a structural finding, not a failure: validation is total
// and reports everything it sees as data.
type ValidationError struct {
	Kind    ErrorKind `json:"kind"`
	NodeID  string    `json:"node_id,omitempty"`
	RefID   string    `json:"ref_id,omitempty"`
	Message string    `json:"message"`
}

// NormalizedLinks is the canonical (left, right) assignment of a node's
// incoming edges, independent of input order.
type NormalizedLinks struct {
	PreviousLeftID  *string `json:"previous_left_id,omitempty"`
	PreviousRightID *string `json:"previous_right_id,omitempty"`
	IncomingCount   int     `json:"incoming_count"`
}

type Result struct {
	OK                bool                       `json:"ok"`
	Errors            []ValidationError          `json:"errors"`
	NormalizedByID    map[string]NormalizedLinks `json:"normalized_by_id"`
	IncomingCountByID map[string]int             `json:"incoming_count_by_id"`
}

type edge struct {
	from string
	to   string
}

// Validate checks a bracket node set for structural integrity: reference
// resolution, self-references, duplicate winner/loser targets, incoming
// capacity (at most two feeders per match) and cycle freedom. It is pure and
// never fails; every finding is accumulated into Result.Errors.
// NormalizedByID is fully populated for every input id even when validation
// fails, so callers can inspect partial structure.
func Validate(nodes []Node) Result {
	res := Result{
		Errors:            []ValidationError{},
		NormalizedByID:    make(map[string]NormalizedLinks, len(nodes)),
		IncomingCountByID: make(map[string]int, len(nodes)),
	}

	norm := make([]Node, 0, len(nodes))
	byID := make(map[string]Node, len(nodes))
	order := make([]string, 0, len(nodes))
	for _, n := range nodes {
		nn := n.normalized()
		norm = append(norm, nn)
		if _, seen := byID[nn.ID]; !seen {
			byID[nn.ID] = nn
			order = append(order, nn.ID)
		}
	}

	// Edges are deduplicated by (source, target): repeating the same
	// reference twice is not a separate finding. Self-referencing and
	// unresolved edges never enter the set, so they cannot leak into
	// capacity counts or cycle detection.
	edges := make(map[edge]struct{})

	type refField struct {
		name     string
		ref      *string
		outgoing bool
	}

	for _, n := range norm {
		fields := []refField{
			{"winner_next", n.WinnerNextID, true},
			{"loser_next", n.LoserNextID, true},
			{"previous_left", n.PreviousLeftID, false},
			{"previous_right", n.PreviousRightID, false},
		}
		for _, f := range fields {
			if f.ref == nil {
				continue
			}
			target := *f.ref
			if target == n.ID {
				res.Errors = append(res.Errors, ValidationError{
					Kind:    ErrSelfReference,
					NodeID:  n.ID,
					RefID:   target,
					Message: fmt.Sprintf("match %s references itself via %s", n.ID, f.name),
				})
				continue
			}
			if _, ok := byID[target]; !ok {
				res.Errors = append(res.Errors, ValidationError{
					Kind:    ErrUnknownReference,
					NodeID:  n.ID,
					RefID:   target,
					Message: fmt.Sprintf("match %s references unknown match %s via %s", n.ID, target, f.name),
				})
				continue
			}
			if f.outgoing {
				edges[edge{from: n.ID, to: target}] = struct{}{}
			} else {
				// previous_* of node N means "ref feeds into N".
				edges[edge{from: target, to: n.ID}] = struct{}{}
			}
		}
		if n.WinnerNextID != nil && n.LoserNextID != nil && *n.WinnerNextID == *n.LoserNextID {
			res.Errors = append(res.Errors, ValidationError{
				Kind:    ErrDuplicateSourceTarget,
				NodeID:  n.ID,
				RefID:   *n.WinnerNextID,
				Message: fmt.Sprintf("match %s sends both winner and loser to match %s", n.ID, *n.WinnerNextID),
			})
		}
	}

	incomingSources := make(map[string][]string, len(byID))
	for e := range edges {
		incomingSources[e.to] = append(incomingSources[e.to], e.from)
	}

	for _, id := range order {
		res.IncomingCountByID[id] = len(incomingSources[id])
	}
	for _, id := range order {
		if res.IncomingCountByID[id] > 2 {
			res.Errors = append(res.Errors, ValidationError{
				Kind:    ErrTargetOverCapacity,
				NodeID:  id,
				Message: fmt.Sprintf("match %s has %d incoming matches, at most 2 allowed", id, res.IncomingCountByID[id]),
			})
		}
	}

	// Cycle detection runs only on an otherwise clean graph; a single
	// graph-wide finding is enough, no node attached.
	if len(res.Errors) == 0 && hasCycle(order, edges) {
		res.Errors = append(res.Errors, ValidationError{
			Kind:    ErrCycleDetected,
			Message: "bracket contains a cycle",
		})
	}

	// Canonical left/right assignment: the same unordered pair of feeders
	// must always land on the same side, whatever the input order.
	for _, id := range order {
		sources := append([]string(nil), incomingSources[id]...)
		sort.Slice(sources, func(i, j int) bool {
			ni, nj := sortKey(byID[sources[i]]), sortKey(byID[sources[j]])
			if ni != nj {
				return ni < nj
			}
			return sources[i] < sources[j]
		})
		links := NormalizedLinks{IncomingCount: len(sources)}
		if len(sources) > 0 {
			links.PreviousLeftID = &sources[0]
		}
		if len(sources) > 1 {
			links.PreviousRightID = &sources[1]
		}
		res.NormalizedByID[id] = links
	}

	res.OK = len(res.Errors) == 0
	return res
}

// sortKey orders nodes by match number, pushing unnumbered matches last.
func sortKey(n Node) int {
	if n.MatchNumber == nil {
		return math.MaxInt
	}
	return *n.MatchNumber
}

// hasCycle runs Kahn's algorithm: strip zero-in-degree nodes until none are
// left. Anything unvisited afterwards sits on a cycle.
func hasCycle(ids []string, edges map[edge]struct{}) bool {
	inDegree := make(map[string]int, len(ids))
	adjacent := make(map[string][]string, len(ids))
	for _, id := range ids {
		inDegree[id] = 0
	}
	for e := range edges {
		inDegree[e.to]++
		adjacent[e.from] = append(adjacent[e.from], e.to)
	}

	queue := make([]string, 0, len(ids))
	for _, id := range ids {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, next := range adjacent[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	return visited < len(ids)
}
