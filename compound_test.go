package hunmorph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compoundFlag(t *testing.T, aff string, limit, maxComponents int, lines ...string) []string {
	t.Helper()
	g := testGenerator(t, aff)
	got, err := g.ApplyCompoundFlag(context.Background(), testEntries(t, g.Data(), lines...), limit, maxComponents)
	require.NoError(t, err)
	return words(got)
}

func TestApplyCompoundFlagOrder(t *testing.T) {
	const aff = "COMPOUNDFLAG A\nCOMPOUNDMIN 1\n"

	got := compoundFlag(t, aff, 10, 3, "foo/A", "bar/A")
	require.Len(t, got, 10)
	assert.Equal(t, []string{"foofoo", "foobar", "barfoo", "barbar", "foofoofoo", "foofoobar"}, got[:6])

	assert.Equal(t, []string{"foofoo", "foobar", "barfoo", "barbar"}, compoundFlag(t, aff, 4, 3, "foo/A", "bar/A"))
	assert.Equal(t, []string{"foofoo", "foobar", "barfoo", "barbar"}, compoundFlag(t, aff, 100, 2, "foo/A", "bar/A"))
	assert.Empty(t, compoundFlag(t, aff, 0, 3, "foo/A", "bar/A"))
	assert.Empty(t, compoundFlag(t, aff, 10, 3, "foo", "bar"))
}

func TestApplyCompoundFlagResult(t *testing.T) {
	g := testGenerator(t, "COMPOUNDFLAG A\nCOMPOUNDMIN 1\n")
	entries := testEntries(t, g.Data(), "foo/A\tpo:noun", "bar/AB")

	got, err := g.ApplyCompoundFlag(context.Background(), entries, 2, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)

	foobar := got[1]
	assert.Equal(t, "foobar", foobar.Word)
	assert.Equal(t, FoldCompound, foobar.Fold)
	assert.True(t, foobar.IsCompound())
	assert.Equal(t, []*DictionaryEntry{entries[0], entries[1]}, foobar.Parents)
	assert.Equal(t, []string{"pa:foo", "po:noun", "pa:bar"}, foobar.MorphFields)
	assert.Equal(t, []string{"B"}, foobar.RemainingFlags)
}

func TestApplyCompoundFlagMinAndWordMax(t *testing.T) {
	assert.Equal(t, []string{"foofoo"}, compoundFlag(t, "COMPOUNDFLAG A\n", 10, 2, "a/A", "foo/A"))

	got := compoundFlag(t, "COMPOUNDFLAG A\nCOMPOUNDMIN 1\nCOMPOUNDWORDMAX 2\n", 100, 5, "foo/A", "bar/A")
	assert.Len(t, got, 4)
}

func TestApplyCompoundFlagChecks(t *testing.T) {
	tests := []struct {
		name  string
		aff   string
		lines []string
		want  []string
	}{
		{
			name:  "dup",
			aff:   "COMPOUNDFLAG A\nCOMPOUNDMIN 1\nCHECKCOMPOUNDDUP\n",
			lines: []string{"foo/A", "bar/A"},
			want:  []string{"foobar", "barfoo"},
		},
		{
			name:  "rep",
			aff:   "COMPOUNDFLAG A\nCOMPOUNDMIN 1\nCHECKCOMPOUNDREP\nREP 1\nREP í i\n",
			lines: []string{"szer/A", "víz/A", "szerviz"},
			want:  []string{"szerszer", "vízszer", "vízvíz"},
		},
		{
			name:  "case",
			aff:   "COMPOUNDFLAG A\nCOMPOUNDMIN 1\nCHECKCOMPOUNDCASE\n",
			lines: []string{"foo/A", "Bar/A"},
			want:  []string{"foofoo", "Barfoo"},
		},
		{
			name:  "triple",
			aff:   "COMPOUNDFLAG A\nCOMPOUNDMIN 1\nCHECKCOMPOUNDTRIPLE\n",
			lines: []string{"schiff/A", "fahrt/A"},
			want:  []string{"schiffschiff", "fahrtschiff", "fahrtfahrt"},
		},
		{
			name:  "simplified triple",
			aff:   "COMPOUNDFLAG A\nCOMPOUNDMIN 1\nCHECKCOMPOUNDTRIPLE\nSIMPLIFIEDTRIPLE\n",
			lines: []string{"schiff/A", "fahrt/A"},
			want:  []string{"schiffschiff", "schiffahrt", "fahrtschiff", "fahrtfahrt"},
		},
		{
			name:  "forbidden",
			aff:   "COMPOUNDFLAG A\nCOMPOUNDMIN 1\nFORBIDDENWORD F\n",
			lines: []string{"foo/A", "bar/A", "foobar/F"},
			want:  []string{"foofoo", "barfoo", "barbar"},
		},
		{
			name:  "force upper case",
			aff:   "COMPOUNDFLAG A\nCOMPOUNDMIN 1\nFORCEUCASE U\n",
			lines: []string{"foo/A", "bar/AU"},
			want:  []string{"foofoo", "Foobar", "Barfoo", "Barbar"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compoundFlag(t, tt.aff, 10, 2, tt.lines...))
		})
	}
}

func TestApplyCompoundFlagAffixedComponents(t *testing.T) {
	const aff = `COMPOUNDFLAG A
COMPOUNDMIN 1
COMPOUNDFORBIDFLAG Z

SFX S Y 1
SFX S 0 s .

SFX X Y 1
SFX X 0 x/Z .
`
	got := compoundFlag(t, aff, 20, 2, "foo/ASX", "bar/A")
	assert.Equal(t, []string{"foofoo", "foofoos", "foobar", "barfoo", "barfoos", "barbar"}, got)
}

func TestApplyCompoundFlagPermitFlag(t *testing.T) {
	const aff = `COMPOUNDFLAG A
COMPOUNDMIN 1
COMPOUNDPERMITFLAG P

SFX S Y 1
SFX S 0 s/P .
`
	got := compoundFlag(t, aff, 20, 2, "foo/AS", "bar/A")
	assert.Equal(t, []string{
		"foofoo", "foofoos", "foobar",
		"foosfoo", "foosfoos", "foosbar",
		"barfoo", "barfoos", "barbar",
	}, got)
}

func TestApplyCompoundFlagFailingEntry(t *testing.T) {
	const aff = `COMPOUNDFLAG A
COMPOUNDMIN 1

SFX X Y 1
SFX X a b a
`
	assert.Equal(t, []string{"foofoo", "foobar", "barfoo", "barbar"},
		compoundFlag(t, aff, 10, 2, "foo/A", "bar/A", "a/X"))
	// The stem of an entry whose affixes fail is still a component.
	assert.Equal(t, []string{"foofoo", "fooa", "afoo", "aa"},
		compoundFlag(t, aff, 10, 2, "foo/A", "a/AX"))
}

func TestApplyCompoundFlagTurkishCasing(t *testing.T) {
	got := compoundFlag(t, "LANG tr_TR\nCOMPOUNDFLAG A\nCOMPOUNDMIN 1\nFORCEUCASE U\n", 1, 2, "ist/AU")
	assert.Equal(t, []string{"İstist"}, got)
}

func TestApplyCompoundFlagCancelled(t *testing.T) {
	g := testGenerator(t, "COMPOUNDFLAG A\nCOMPOUNDMIN 1\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := g.ApplyCompoundFlag(ctx, testEntries(t, g.Data(), "foo/A", "bar/A"), 10, 2)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, got)
}

func TestApplyCompoundRules(t *testing.T) {
	const aff = `COMPOUNDMIN 1
COMPOUNDRULE 2
COMPOUNDRULE XY*Z
COMPOUNDRULE ZX?
`
	g := testGenerator(t, aff)
	entries := testEntries(t, g.Data(), "one/X", "two/Y", "three/Z")

	got, err := g.ApplyCompoundRules(context.Background(), entries, "XY*Z", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"onethree", "onetwothree", "onetwotwothree"}, words(got))

	got, err = g.ApplyCompoundRules(context.Background(), entries, "", 100)
	require.NoError(t, err)
	all := words(got)
	assert.Equal(t, "onethree", all[0])
	assert.Contains(t, all, "threeone")
	assert.NotContains(t, all, "three")

	got, err = g.ApplyCompoundRules(context.Background(), entries, "XY*Z", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestApplyCompoundRulesMissingComponent(t *testing.T) {
	g := testGenerator(t, "COMPOUNDMIN 1\n")
	entries := testEntries(t, g.Data(), "one/X")

	_, err := g.ApplyCompoundRules(context.Background(), entries, "XW", 10)
	var missing *MissingRuleComponentError
	require.True(t, errors.As(err, &missing), "got %v", err)
	assert.Equal(t, "W", missing.Flag)
	assert.ErrorIs(t, err, ErrRuleApplication)

	// An optional token may have no candidate.
	got, err := g.ApplyCompoundRules(context.Background(), entries, "XXW?", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"oneone"}, words(got))
}

func TestParseCompoundRule(t *testing.T) {
	tokens, err := parseCompoundRule("(aa)*(bb)?(cc)", FlagLong)
	require.NoError(t, err)
	assert.Equal(t, []ruleToken{{"aa", '*'}, {"bb", '?'}, {"cc", 0}}, tokens)

	for _, tt := range []struct {
		rule string
		t    FlagType
	}{
		{"*A", FlagASCII},
		{"A**", FlagASCII},
		{"(A", FlagASCII},
		{"()", FlagASCII},
		{"", FlagASCII},
		{"aabb", FlagLong},
		{"12", FlagNumeric},
	} {
		_, err := parseCompoundRule(tt.rule, tt.t)
		assert.ErrorIs(t, err, ErrConfiguration, tt.rule)
	}
}

func TestExpandRuleTokens(t *testing.T) {
	tokens := []ruleToken{{"A", 0}, {"B", '*'}, {"C", '?'}}
	assert.Equal(t, [][]int{
		{0, 2}, {0, 1},
		{0, 1, 2}, {0, 1, 1},
	}, expandRuleTokens(tokens, 3))
}

func TestApplyCompoundBeginMiddleEnd(t *testing.T) {
	const aff = `COMPOUNDMIN 1
COMPOUNDBEGIN B
COMPOUNDMIDDLE M
COMPOUNDEND E
`
	g := testGenerator(t, aff)
	entries := testEntries(t, g.Data(), "in/B", "ter/M", "net/E")

	got, err := g.ApplyCompoundBeginMiddleEnd(context.Background(), entries, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"innet", "internet", "interternet"}, words(got))

	none := testGenerator(t, "COMPOUNDMIN 1\n")
	got, err = none.ApplyCompoundBeginMiddleEnd(context.Background(), entries, 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestApplyCompoundBeginMiddleEndChecks(t *testing.T) {
	const bme = "COMPOUNDMIN 1\nCOMPOUNDBEGIN B\nCOMPOUNDEND E\n"
	tests := []struct {
		name  string
		aff   string
		lines []string
		want  []string
	}{
		{
			name:  "dup",
			aff:   bme + "COMPOUNDFLAG A\nCHECKCOMPOUNDDUP\n",
			lines: []string{"foo/A", "bar/E"},
			want:  []string{"foobar"},
		},
		{
			name:  "case",
			aff:   bme + "CHECKCOMPOUNDCASE\n",
			lines: []string{"foo/B", "Bar/E", "baz/E"},
			want:  []string{"foobaz"},
		},
		{
			name:  "triple",
			aff:   bme + "CHECKCOMPOUNDTRIPLE\n",
			lines: []string{"schiff/B", "fahrt/E", "bahn/E"},
			want:  []string{"schiffbahn"},
		},
		{
			name:  "simplified triple",
			aff:   bme + "CHECKCOMPOUNDTRIPLE\nSIMPLIFIEDTRIPLE\n",
			lines: []string{"schiff/B", "fahrt/E", "bahn/E"},
			want:  []string{"schiffahrt", "schiffbahn"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testGenerator(t, tt.aff)
			got, err := g.ApplyCompoundBeginMiddleEnd(context.Background(), testEntries(t, g.Data(), tt.lines...), 10)
			require.NoError(t, err)
			assert.Equal(t, tt.want, words(got))
		})
	}
}

func TestJoinTriple(t *testing.T) {
	got, ok := joinTriple("schiff", "fahrt", false)
	assert.False(t, ok)
	assert.Empty(t, got)

	got, ok = joinTriple("schiff", "fahrt", true)
	assert.True(t, ok)
	assert.Equal(t, "schiffahrt", got)

	got, ok = joinTriple("bal", "lon", false)
	assert.True(t, ok)
	assert.Equal(t, "ballon", got)

	got, ok = joinTriple("fal", "llen", false)
	assert.False(t, ok)
	assert.Empty(t, got)
}
