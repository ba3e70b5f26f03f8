package hunmorph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlagType(t *testing.T) {
	tests := []struct {
		in   string
		want FlagType
	}{
		{"", FlagASCII},
		{"ASCII", FlagASCII},
		{"long", FlagLong},
		{"UTF-8", FlagUTF8},
		{"num", FlagNumeric},
	}
	for _, tt := range tests {
		got, err := ParseFlagType(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseFlagType("base64")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestFlagStrategyDecode(t *testing.T) {
	tests := []struct {
		name string
		t    FlagType
		in   string
		want []string
	}{
		{"ascii", FlagASCII, "ABA", []string{"A", "B"}},
		{"ascii empty", FlagASCII, "", []string{}},
		{"ascii latin-1", FlagASCII, "AÜé", []string{"A", "Ü", "é"}},
		{"utf8", FlagUTF8, "AÜü", []string{"A", "Ü", "ü"}},
		{"long", FlagLong, "AaBbAa", []string{"Aa", "Bb"}},
		{"long multibyte", FlagLong, "ÖöZz", []string{"Öö", "Zz"}},
		{"numeric", FlagNumeric, "12,3,012", []string{"12", "3"}},
		{"numeric empty", FlagNumeric, "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewFlagStrategy(tt.t).Decode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlagStrategyDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		t    FlagType
		in   string
	}{
		{"ascii beyond 8 bits", FlagASCII, "AŐ"},
		{"utf8 invalid", FlagUTF8, "A\xff"},
		{"long odd", FlagLong, "AaB"},
		{"numeric not a number", FlagNumeric, "1,x"},
		{"numeric zero", FlagNumeric, "0"},
		{"numeric too large", FlagNumeric, "65001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFlagStrategy(tt.t).Decode(tt.in)
			var malformed *MalformedFlagError
			require.True(t, errors.As(err, &malformed), "got %v", err)
			assert.Equal(t, tt.t, malformed.Encoding)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestFlagStrategyEncode(t *testing.T) {
	assert.Equal(t, "ABC", NewFlagStrategy(FlagASCII).Encode([]string{"C", "A", "B", "A"}))
	assert.Equal(t, "AaBb", NewFlagStrategy(FlagLong).Encode([]string{"Bb", "Aa"}))
	assert.Equal(t, "2,10,300", NewFlagStrategy(FlagNumeric).Encode([]string{"300", "2", "10"}))
}

func TestFlagHelpers(t *testing.T) {
	flags := []string{"A", "B", "C"}
	assert.True(t, hasFlag(flags, "B"))
	assert.False(t, hasFlag(flags, ""))
	assert.Equal(t, []string{"A", "C"}, withoutFlags(flags, func(f string) bool { return f == "B" }))
	assert.Equal(t, []string{"A", "B", "C", "D"}, mergeFlags(flags, []string{"C", "D"}))
	assert.Equal(t, []string{"A", "B", "C"}, flags)
}

func FuzzFlagRoundTrip(f *testing.F) {
	for _, seed := range []string{"", "A", "ABC", "AÜü", "zz"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, text string) {
		for _, ft := range []FlagType{FlagASCII, FlagUTF8, FlagLong, FlagNumeric} {
			s := NewFlagStrategy(ft)
			flags, err := s.Decode(text)
			if err != nil {
				continue
			}
			again, err := s.Decode(s.Encode(flags))
			if err != nil {
				t.Fatalf("%s: re-decoding %q: %v", ft, s.Encode(flags), err)
			}
			if !assert.ElementsMatch(t, flags, again) {
				t.Fatalf("%s: %q does not survive encoding", ft, text)
			}
		}
	})
}
