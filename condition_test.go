package hunmorph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionMatches(t *testing.T) {
	tests := []struct {
		pattern string
		word    string
		anchor  Anchor
		want    bool
	}{
		{".", "a", AnchorSuffix, true},
		{".", "", AnchorSuffix, false},
		{"", "abc", AnchorPrefix, true},
		{"y", "boy", AnchorSuffix, true},
		{"[^aeiou]y", "boy", AnchorSuffix, false},
		{"[^aeiou]y", "fly", AnchorSuffix, true},
		{"[ae]b", "abc", AnchorPrefix, true},
		{"[ae]b", "abc", AnchorSuffix, false},
		{"ő.", "őz", AnchorPrefix, true},
		{"abc", "bc", AnchorSuffix, false},
	}
	for _, tt := range tests {
		c, err := ParseCondition(tt.pattern)
		require.NoError(t, err, tt.pattern)
		assert.Equal(t, tt.want, c.Matches(tt.word, tt.anchor), "%q on %q", tt.pattern, tt.word)
	}
}

func TestParseConditionInvalid(t *testing.T) {
	for _, pattern := range []string{"[ab", "a]", "[]", "[^]", "[a[b]"} {
		_, err := ParseCondition(pattern)
		var invalid *InvalidConditionError
		require.True(t, errors.As(err, &invalid), "%q: got %v", pattern, err)
		assert.ErrorIs(t, err, ErrConfiguration)
	}
}

func TestConditionShape(t *testing.T) {
	c := MustParseCondition("[^aeiou]y")
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, "[^aeiou]y", c.String())
	assert.False(t, c.IsAny())
	assert.True(t, MustParseCondition("").IsAny())

	again, err := ParseCondition("[^aeiou]y")
	require.NoError(t, err)
	assert.Same(t, c, again)

	assert.Panics(t, func() { MustParseCondition("[") })
	assert.Panics(t, func() { newConditionCache(0) })
}

func TestConditionFromAtomsEscapes(t *testing.T) {
	c := conditionFromAtoms([]atom{
		{kind: atomLiteral, r: '.'},
		{kind: atomClass, set: []rune{'^', 'a'}},
	})
	assert.Equal(t, "[.][a^]", c.String())

	parsed := MustParseCondition(c.String())
	assert.True(t, parsed.Matches(".^", AnchorSuffix))
	assert.True(t, parsed.Matches("x.a", AnchorSuffix))
	assert.False(t, parsed.Matches("xba", AnchorSuffix))
}

func FuzzParseCondition(f *testing.F) {
	for _, seed := range []string{".", "[^aeiou]y", "[ab]c", "ő", "[", "]"} {
		f.Add(seed, "word")
	}
	f.Fuzz(func(t *testing.T, pattern, word string) {
		c, err := ParseCondition(pattern)
		if err != nil {
			return
		}
		again, err := ParseCondition(c.String())
		if err != nil {
			t.Fatalf("%q renders as unparsable %q", pattern, c.String())
		}
		for _, anchor := range []Anchor{AnchorPrefix, AnchorSuffix} {
			if c.Matches(word, anchor) != again.Matches(word, anchor) {
				t.Fatalf("%q and %q disagree on %q", pattern, c.String(), word)
			}
		}
	})
}
