package hunmorph

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func observe(removal, addition string, words ...string) []LineEntry {
	out := make([]LineEntry, len(words))
	for i, w := range words {
		out[i] = LineEntry{Removal: removal, Addition: addition, Condition: w, From: []string{w}}
	}
	return out
}

func conditions(entries []LineEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = emptyToZero(e.Removal) + ">" + emptyToZero(e.Addition) + " " + e.Condition
	}
	return out
}

func TestReduceProductionsSingleGroup(t *testing.T) {
	got, err := ReduceProductions(Suffix, observe("", "s", "cat", "dog", "bird"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ".", got[0].Condition)
	assert.Equal(t, []string{"cat", "dog", "bird"}, got[0].From)
}

func TestReduceProductionsSeparatesGroups(t *testing.T) {
	obs := append(observe("y", "ies", "fly", "try", "cry"), observe("", "s", "boy", "day", "cat")...)

	got, err := ReduceProductions(Suffix, obs)
	require.NoError(t, err)
	assert.Equal(t, []string{"y>ies [lr]y", "0>s [ao]y", "0>s t"}, conditions(got))
}

func TestReduceProductionsNegativeClass(t *testing.T) {
	obs := append(observe("", "s", "ba", "ca", "da", "fa"), observe("", "x", "ea")...)

	got, err := ReduceProductions(Suffix, obs)
	require.NoError(t, err)
	assert.Equal(t, []string{"0>s [^e]a", "0>x ea"}, conditions(got))
}

func TestReduceProductionsWholeWordStaysLiteral(t *testing.T) {
	obs := append(observe("", "x", "a"), observe("", "y", "ba")...)

	got, err := ReduceProductions(Suffix, obs)
	require.NoError(t, err)
	assert.Equal(t, []string{"0>y ba", "0>x a"}, conditions(got))
}

func TestReduceProductionsWholeWordCoversGroup(t *testing.T) {
	obs := append(observe("", "s", "ab", "b"), observe("", "x", "cb")...)

	got, err := ReduceProductions(Suffix, obs)
	require.NoError(t, err)
	assert.Equal(t, []string{"0>x cb", "0>s b"}, conditions(got))
	assert.Equal(t, []string{"ab", "b"}, got[1].From)
}

func TestReduceProductionsLiteralDot(t *testing.T) {
	obs := append(observe("", "s", "x.a"), observe("", "x", "xba")...)

	got, err := ReduceProductions(Suffix, obs)
	require.NoError(t, err)
	assert.Equal(t, []string{"0>s [.]a", "0>x ba"}, conditions(got))

	e, err := NewAffixEntry(Suffix, "S", "", "s", got[0].Condition, nil, nil)
	require.NoError(t, err)
	assert.True(t, e.CanApplyTo("x.a"))
	assert.False(t, e.CanApplyTo("xba"))
}

func TestReduceProductionsBracketWord(t *testing.T) {
	_, err := ReduceProductions(Suffix, observe("", "s", "a]", "b"))
	assert.ErrorIs(t, err, ErrReduction)
}

func TestReduceProductionsPrefix(t *testing.T) {
	obs := append(observe("", "un", "do", "tie"), observe("", "in", "active")...)

	got, err := ReduceProductions(Prefix, obs)
	require.NoError(t, err)
	assert.Equal(t, []string{"0>un [dt]", "0>in a"}, conditions(got))
}

func TestReduceProductionsErrors(t *testing.T) {
	_, err := ReduceProductions(Suffix, []LineEntry{{Addition: "s"}})
	var reduction *ReductionError
	require.True(t, errors.As(err, &reduction), "got %v", err)

	_, err = ReduceProductions(Suffix, observe("y", "ies", "cat"))
	assert.ErrorIs(t, err, ErrReduction)

	got, err := ReduceProductions(Suffix, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

const reduceAffix = `SFX A Y 3
SFX A y ies [^aeiou]y
SFX A 0 s [aeiou]y
SFX A 0 s [^y]
`

func TestReducerRoundTrip(t *testing.T) {
	data := testData(t, reduceAffix)
	g := NewGenerator(data)
	r := NewReducer(data)
	entries := testEntries(t, data, "fly/A", "cry/A", "boy/A", "cat/A", "dog")

	reduced, err := r.Reduce(g, entries, "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"y>ies [lr]y", "0>s oy", "0>s t"}, conditions(reduced))

	lines := r.ConvertFormat("A", true, reduced)
	require.Len(t, lines, len(reduced)+1)
	assert.Equal(t, "SFX A Y 3", lines[0])
	assert.Equal(t, "SFX A y ies [lr]y", lines[1])

	// The reduced rule regenerates every observed form.
	again := NewGenerator(testData(t, strings.Join(lines, "\n")+"\n"))
	for _, e := range entries {
		want, err := g.ApplyAffixRules(e)
		require.NoError(t, err)
		got, err := again.Inflect(e.Line(data.FlagStrategy()))
		require.NoError(t, err)
		assert.Equal(t, words(want), words(got), e.Stem)
	}
}

func TestReducerKeepsMorphFields(t *testing.T) {
	data := testData(t, "SFX A Y 2\nSFX A 0 s [^y] is:plural\nSFX A 0 s y is:genitive\n")
	r := NewReducer(data)
	entries := testEntries(t, data, "cat/A", "boy/A")

	reduced, err := r.Reduce(NewGenerator(data), entries, "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"0>s t", "0>s y"}, conditions(reduced))
	assert.Equal(t, []string{
		"SFX A Y 2",
		"SFX A 0 s t is:plural",
		"SFX A 0 s y is:genitive",
	}, r.ConvertFormat("A", true, reduced))
}

func TestReducerErrors(t *testing.T) {
	data := testData(t, reduceAffix)
	r := NewReducer(data)

	_, err := r.Reduce(NewGenerator(data), nil, "Z")
	assert.ErrorIs(t, err, ErrReduction)

	_, err = CollectLineEntries(NewGenerator(data), nil, "Z")
	assert.ErrorIs(t, err, ErrReduction)
}

func TestCollectLineEntries(t *testing.T) {
	data := testData(t, reduceAffix+"PFX U Y 1\nPFX U 0 un .\n")
	entries := testEntries(t, data, "fly/AU", "boy/A", "fly/A", "cat")

	got, err := CollectLineEntries(NewGenerator(data), entries, "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"y>ies fly", "0>s boy"}, conditions(got))
	assert.Equal(t, []string{"fly"}, got[0].From)
}

func TestConvertFormat(t *testing.T) {
	data := testData(t, "PFX P N 1\nPFX P 0 re .\n")
	r := NewReducer(data)
	entries := []LineEntry{
		{Removal: "", Addition: "re", Condition: "[bc]", ContinuationFlags: []string{"S"}},
		{Removal: "a", Addition: "e", Condition: "a"},
	}

	assert.Equal(t, []string{
		"PFX P N 2",
		"PFX P 0 re/S [bc]",
		"PFX P a e a",
	}, r.ConvertFormat("P", false, entries))

	assert.Equal(t, []string{"SFX Q Y 0"}, r.ConvertFormat("Q", true, nil))
}

func TestMergeLineEntries(t *testing.T) {
	in := []LineEntry{
		{Addition: "s", Condition: ".", From: []string{"a"}, ContinuationFlags: []string{"B", "A"}},
		{Addition: "s", Condition: ".", From: []string{"b", "a"}, ContinuationFlags: []string{"A", "B"}},
		{Addition: "s", Condition: "x", From: []string{"c"}},
	}
	got := mergeLineEntries(in)
	require.Len(t, got, 2)

	tagged := append(slices.Clone(in[:1]), LineEntry{Addition: "s", Condition: ".", From: []string{"d"}, ContinuationFlags: []string{"A", "B"}, MorphFields: []string{"is:plural"}})
	assert.Len(t, mergeLineEntries(tagged), 2, "different morphology never merges")
	assert.Equal(t, []string{"a", "b"}, got[0].From)
	assert.True(t, slices.Equal([]string{"c"}, got[1].From))
}
