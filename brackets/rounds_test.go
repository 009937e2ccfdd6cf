package brackets

import (
	"testing"

	"github.com/matchpoint-app/matchpoint/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundIDs(rounds [][]*models.Match) [][]string {
	out := make([][]string, 0, len(rounds))
	for _, round := range rounds {
		ids := make([]string, 0, len(round))
		for _, m := range round {
			if m == nil {
				ids = append(ids, "-")
				continue
			}
			ids = append(ids, m.ID)
		}
		out = append(out, ids)
	}
	return out
}

func TestResolveLinks(t *testing.T) {
	matches := []*models.Match{
		{ID: "m1", WinnerNextID: strPtr("f")},
		{ID: "m2", WinnerNextID: strPtr("f"), LoserNextID: strPtr("ghost")},
		{ID: "f", PreviousLeftID: strPtr("m1"), PreviousRightID: strPtr("m2")},
	}

	ResolveLinks(matches)

	assert.Same(t, matches[2], matches[0].WinnerNextMatch)
	assert.Same(t, matches[2], matches[1].WinnerNextMatch)
	assert.Nil(t, matches[1].LoserNextMatch)
	assert.Same(t, matches[0], matches[2].PreviousLeftMatch)
	assert.Same(t, matches[1], matches[2].PreviousRightMatch)
}

func TestBuildRoundsEmptyInput(t *testing.T) {
	assert.Empty(t, BuildRounds(nil, false))
	assert.Empty(t, BuildRounds([]*models.Match{}, true))
}

func TestBuildRoundsFourTeamWinnerBracket(t *testing.T) {
	matches := []*models.Match{
		{ID: "m1", WinnerNextID: strPtr("f")},
		{ID: "m2", WinnerNextID: strPtr("f")},
		{ID: "f", PreviousLeftID: strPtr("m1"), PreviousRightID: strPtr("m2")},
	}
	ResolveLinks(matches)

	rounds := BuildRounds(matches, false)

	require.Len(t, rounds, 2)
	assert.Equal(t, [][]string{
		{"m1", "m2"},
		{"f"},
	}, roundIDs(rounds))
}

func TestBuildRoundsByeKeepsAlignment(t *testing.T) {
	// The second semifinal slot is a bye; the hole must stay in the round.
	matches := []*models.Match{
		{ID: "m1", WinnerNextID: strPtr("f")},
		{ID: "f", PreviousLeftID: strPtr("m1")},
	}
	ResolveLinks(matches)

	rounds := BuildRounds(matches, false)

	require.Len(t, rounds, 2)
	assert.Equal(t, [][]string{
		{"m1", "-"},
		{"f"},
	}, roundIDs(rounds))
}

func TestBuildRoundsLoserLaneWithMerge(t *testing.T) {
	matches := []*models.Match{
		{ID: "wf", WinnerNextID: strPtr("gf")},
		{ID: "lf", LosersBracket: true, WinnerNextID: strPtr("gf")},
		{ID: "gf", PreviousLeftID: strPtr("wf"), PreviousRightID: strPtr("lf")},
	}
	ResolveLinks(matches)

	rounds := BuildRounds(matches, true)

	// The grand final merges both lanes, so the loser lane still reaches it.
	require.Len(t, rounds, 2)
	assert.Equal(t, [][]string{
		{"wf", "lf"},
		{"gf"},
	}, roundIDs(rounds))
}

func TestBuildRoundsWinnerLaneSkipsLoserMatches(t *testing.T) {
	matches := []*models.Match{
		{ID: "w1", WinnerNextID: strPtr("wf"), LoserNextID: strPtr("lf")},
		{ID: "w2", WinnerNextID: strPtr("wf"), LoserNextID: strPtr("lf")},
		{ID: "wf", PreviousLeftID: strPtr("w1"), PreviousRightID: strPtr("w2"), WinnerNextID: strPtr("gf")},
		{ID: "lf", LosersBracket: true, PreviousLeftID: strPtr("w1"), PreviousRightID: strPtr("w2"), WinnerNextID: strPtr("gf")},
		{ID: "gf", PreviousLeftID: strPtr("wf"), PreviousRightID: strPtr("lf")},
	}
	ResolveLinks(matches)

	rounds := BuildRounds(matches, false)

	require.Len(t, rounds, 3)
	assert.Equal(t, []string{"gf"}, roundIDs(rounds)[2])
	assert.Equal(t, []string{"wf", "lf"}, roundIDs(rounds)[1])
	// The loser final's feeders were already visited through the winner side,
	// so its slots come out as holes instead of repeating w1/w2.
	assert.Equal(t, []string{"w1", "w2", "-", "-"}, roundIDs(rounds)[0])
}

func TestBuildRoundsTerminatesOnPreviousCycle(t *testing.T) {
	// A malformed graph where two terminal matches feed each other backward
	// must not loop forever.
	matches := []*models.Match{
		{ID: "a", PreviousLeftID: strPtr("b")},
		{ID: "b", PreviousLeftID: strPtr("a")},
	}
	ResolveLinks(matches)

	rounds := BuildRounds(matches, false)

	require.Len(t, rounds, 1)
	assert.Equal(t, [][]string{{"a", "b"}}, roundIDs(rounds))
}

func TestBuildRoundsNoTerminalMatch(t *testing.T) {
	matches := []*models.Match{
		{ID: "a", WinnerNextID: strPtr("b")},
		{ID: "b", WinnerNextID: strPtr("a")},
	}
	ResolveLinks(matches)

	assert.Empty(t, BuildRounds(matches, false))
}
