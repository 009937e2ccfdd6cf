package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }

func kinds(result Result) []ErrorKind {
	out := make([]ErrorKind, 0, len(result.Errors))
	for _, e := range result.Errors {
		out = append(out, e.Kind)
	}
	return out
}

func TestValidateEmptyNodeSet(t *testing.T) {
	result := Validate(nil)

	assert.True(t, result.OK)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.NormalizedByID)
	assert.Empty(t, result.IncomingCountByID)
}

func TestValidateSelfReference(t *testing.T) {
	nodes := []Node{
		{ID: "a", WinnerNextID: strPtr("a")},
	}

	result := Validate(nodes)

	require.False(t, result.OK)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, ErrSelfReference, result.Errors[0].Kind)
	assert.Equal(t, "a", result.Errors[0].NodeID)
}

func TestValidateDoubleSelfPreviousReference(t *testing.T) {
	nodes := []Node{
		{ID: "a", PreviousLeftID: strPtr("a"), PreviousRightID: strPtr("a")},
	}

	result := Validate(nodes)

	require.False(t, result.OK)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, ErrSelfReference, result.Errors[0].Kind)
	assert.Equal(t, ErrSelfReference, result.Errors[1].Kind)
}

func TestValidateUnknownReference(t *testing.T) {
	nodes := []Node{
		{ID: "a", WinnerNextID: strPtr("ghost")},
		{ID: "b"},
	}

	result := Validate(nodes)

	require.False(t, result.OK)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, ErrUnknownReference, result.Errors[0].Kind)
	assert.Equal(t, "a", result.Errors[0].NodeID)
	assert.Equal(t, "ghost", result.Errors[0].RefID)
}

func TestValidateDuplicateSourceTarget(t *testing.T) {
	nodes := []Node{
		{ID: "a", WinnerNextID: strPtr("b"), LoserNextID: strPtr("b")},
		{ID: "b"},
	}

	result := Validate(nodes)

	require.False(t, result.OK)
	assert.Contains(t, kinds(result), ErrDuplicateSourceTarget)
	// The repeated reference is deduplicated, not double-counted.
	assert.Equal(t, 1, result.IncomingCountByID["b"])
}

func TestValidateTargetOverCapacity(t *testing.T) {
	nodes := []Node{
		{ID: "x", WinnerNextID: strPtr("t")},
		{ID: "y", WinnerNextID: strPtr("t")},
		{ID: "z", WinnerNextID: strPtr("t")},
		{ID: "t"},
	}

	result := Validate(nodes)

	require.False(t, result.OK)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, ErrTargetOverCapacity, result.Errors[0].Kind)
	assert.Equal(t, "t", result.Errors[0].NodeID)
	assert.Equal(t, 3, result.IncomingCountByID["t"])
}

func TestValidateCycleDetected(t *testing.T) {
	nodes := []Node{
		{ID: "a", WinnerNextID: strPtr("b")},
		{ID: "b", WinnerNextID: strPtr("a")},
	}

	result := Validate(nodes)

	require.False(t, result.OK)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, ErrCycleDetected, result.Errors[0].Kind)
	assert.Empty(t, result.Errors[0].NodeID)
}

func TestValidateLongerCycle(t *testing.T) {
	nodes := []Node{
		{ID: "a", WinnerNextID: strPtr("b")},
		{ID: "b", WinnerNextID: strPtr("c")},
		{ID: "c", WinnerNextID: strPtr("a")},
	}

	result := Validate(nodes)

	require.False(t, result.OK)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, ErrCycleDetected, result.Errors[0].Kind)
}

func TestValidateCycleSkippedWhenOtherErrorsPresent(t *testing.T) {
	// Cycle detection only runs on an otherwise clean graph.
	nodes := []Node{
		{ID: "a", WinnerNextID: strPtr("b"), LoserNextID: strPtr("ghost")},
		{ID: "b", WinnerNextID: strPtr("a")},
	}

	result := Validate(nodes)

	require.False(t, result.OK)
	assert.Contains(t, kinds(result), ErrUnknownReference)
	assert.NotContains(t, kinds(result), ErrCycleDetected)
}

func TestValidateNormalizationIsOrderIndependent(t *testing.T) {
	forward := []Node{
		{ID: "a", PreviousLeftID: strPtr("x"), PreviousRightID: strPtr("y")},
		{ID: "b", PreviousLeftID: strPtr("y"), PreviousRightID: strPtr("x")},
		{ID: "x"},
		{ID: "y"},
	}
	backward := []Node{
		{ID: "y"},
		{ID: "x"},
		{ID: "b", PreviousLeftID: strPtr("y"), PreviousRightID: strPtr("x")},
		{ID: "a", PreviousLeftID: strPtr("x"), PreviousRightID: strPtr("y")},
	}

	first := Validate(forward)
	second := Validate(backward)

	require.True(t, first.OK)
	require.True(t, second.OK)
	for _, id := range []string{"a", "b"} {
		require.NotNil(t, first.NormalizedByID[id].PreviousLeftID)
		require.NotNil(t, first.NormalizedByID[id].PreviousRightID)
		assert.Equal(t, *first.NormalizedByID[id].PreviousLeftID, *second.NormalizedByID[id].PreviousLeftID)
		assert.Equal(t, *first.NormalizedByID[id].PreviousRightID, *second.NormalizedByID[id].PreviousRightID)
		assert.Equal(t, 2, first.NormalizedByID[id].IncomingCount)
	}
	// Ids tie-break ascending when no match numbers are present.
	assert.Equal(t, "x", *first.NormalizedByID["a"].PreviousLeftID)
	assert.Equal(t, "y", *first.NormalizedByID["a"].PreviousRightID)
}

func TestValidateNormalizationUsesMatchNumber(t *testing.T) {
	nodes := []Node{
		{ID: "final"},
		{ID: "z-semi", MatchNumber: intPtr(1), WinnerNextID: strPtr("final")},
		{ID: "a-semi", MatchNumber: intPtr(2), WinnerNextID: strPtr("final")},
	}

	result := Validate(nodes)

	require.True(t, result.OK)
	links := result.NormalizedByID["final"]
	require.NotNil(t, links.PreviousLeftID)
	require.NotNil(t, links.PreviousRightID)
	// Match number beats id ordering.
	assert.Equal(t, "z-semi", *links.PreviousLeftID)
	assert.Equal(t, "a-semi", *links.PreviousRightID)
}

func TestValidateNormalizedPopulatedOnFailure(t *testing.T) {
	nodes := []Node{
		{ID: "a", WinnerNextID: strPtr("ghost")},
		{ID: "b", WinnerNextID: strPtr("a")},
	}

	result := Validate(nodes)

	require.False(t, result.OK)
	assert.Len(t, result.NormalizedByID, 2)
	require.NotNil(t, result.NormalizedByID["a"].PreviousLeftID)
	assert.Equal(t, "b", *result.NormalizedByID["a"].PreviousLeftID)
}

func TestValidateBlankReferencesTreatedAsAbsent(t *testing.T) {
	nodes := []Node{
		{ID: "a", WinnerNextID: strPtr("  "), LoserNextID: strPtr("")},
	}

	result := Validate(nodes)

	assert.True(t, result.OK)
	assert.Empty(t, result.Errors)
}

func TestValidateDoesNotMutateInput(t *testing.T) {
	ref := "  b  "
	nodes := []Node{
		{ID: "a", WinnerNextID: &ref},
		{ID: "b"},
	}

	result := Validate(nodes)

	require.True(t, result.OK)
	assert.Equal(t, "  b  ", *nodes[0].WinnerNextID)
}

func TestValidateWellFormedDoubleElimination(t *testing.T) {
	nodes := []Node{
		{ID: "w1", MatchNumber: intPtr(1), WinnerNextID: strPtr("wf"), LoserNextID: strPtr("lf")},
		{ID: "w2", MatchNumber: intPtr(2), WinnerNextID: strPtr("wf"), LoserNextID: strPtr("lf")},
		{ID: "wf", MatchNumber: intPtr(3), WinnerNextID: strPtr("gf"), LoserNextID: strPtr("lf2")},
		{ID: "lf", MatchNumber: intPtr(4), WinnerNextID: strPtr("lf2")},
		{ID: "lf2", MatchNumber: intPtr(5), WinnerNextID: strPtr("gf")},
		{ID: "gf", MatchNumber: intPtr(6)},
	}

	result := Validate(nodes)

	require.True(t, result.OK, "expected valid graph, got %v", result.Errors)
	assert.Equal(t, 2, result.IncomingCountByID["wf"])
	assert.Equal(t, 2, result.IncomingCountByID["lf"])
	assert.Equal(t, 2, result.IncomingCountByID["lf2"])
	assert.Equal(t, 2, result.IncomingCountByID["gf"])
	assert.Equal(t, 0, result.IncomingCountByID["w1"])
}
