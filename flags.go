package hunmorph

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// FlagType selects how flags are written in .aff/.dic files (the FLAG option).
type FlagType int

const (
	FlagASCII   FlagType = iota // one ASCII byte per flag (default)
	FlagLong                    // two characters per flag
	FlagUTF8                    // one code point per flag
	FlagNumeric                 // comma-separated decimal numbers
)

// String returns the FLAG option value for t.
func (t FlagType) String() string {
	switch t {
	case FlagLong:
		return "long"
	case FlagUTF8:
		return "UTF-8"
	case FlagNumeric:
		return "num"
	default:
		return "ASCII"
	}
}

// ParseFlagType maps a FLAG option value to its FlagType.
// An empty value selects the ASCII default.
func ParseFlagType(s string) (FlagType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ascii":
		return FlagASCII, nil
	case "long":
		return FlagLong, nil
	case "utf-8", "utf8":
		return FlagUTF8, nil
	case "num":
		return FlagNumeric, nil
	}
	return FlagASCII, &MalformedFlagError{Encoding: FlagASCII, Text: s, Reason: "unknown FLAG type"}
}

// maxNumericFlag is the largest flag value accepted in numeric mode.
const maxNumericFlag = 65000

// FlagStrategy decodes and encodes flag sets for one flag encoding.
// A strategy is a plain value owned by the AffixData that created it.
type FlagStrategy interface {
	// Type reports the encoding handled by the strategy.
	Type() FlagType
	// Decode splits text into distinct flags, in order of first appearance.
	Decode(text string) ([]string, error)
	// Encode joins flags in the encoding's stable order.
	Encode(flags []string) string
}

// NewFlagStrategy returns the strategy for t.
func NewFlagStrategy(t FlagType) FlagStrategy {
	switch t {
	case FlagLong:
		return longStrategy{}
	case FlagUTF8:
		return utf8Strategy{}
	case FlagNumeric:
		return numericStrategy{}
	default:
		return asciiStrategy{}
	}
}

type asciiStrategy struct{}

func (asciiStrategy) Type() FlagType { return FlagASCII }

func (asciiStrategy) Decode(text string) ([]string, error) {
	// Flags are single 8-bit characters; the loader has already decoded
	// them from the file's charset, so 0x80-0xFF arrive as runes.
	flags := make([]string, 0, len(text))
	for _, r := range text {
		if r > 0xFF {
			return nil, &MalformedFlagError{Encoding: FlagASCII, Text: text, Reason: "each flag must be a single 8-bit character"}
		}
		flags = append(flags, string(r))
	}
	return distinctFlags(flags), nil
}

func (asciiStrategy) Encode(flags []string) string {
	return strings.Join(sortedFlags(flags, strings.Compare), "")
}

type utf8Strategy struct{}

func (utf8Strategy) Type() FlagType { return FlagUTF8 }

func (utf8Strategy) Decode(text string) ([]string, error) {
	if !utf8.ValidString(text) {
		return nil, &MalformedFlagError{Encoding: FlagUTF8, Text: text, Reason: "invalid UTF-8"}
	}
	flags := make([]string, 0, len(text))
	for _, r := range text {
		flags = append(flags, string(r))
	}
	return distinctFlags(flags), nil
}

func (utf8Strategy) Encode(flags []string) string {
	return strings.Join(sortedFlags(flags, strings.Compare), "")
}

type longStrategy struct{}

func (longStrategy) Type() FlagType { return FlagLong }

func (longStrategy) Decode(text string) ([]string, error) {
	runes := []rune(text)
	if len(runes)%2 != 0 {
		return nil, &MalformedFlagError{Encoding: FlagLong, Text: text, Reason: "odd number of characters"}
	}
	flags := make([]string, 0, len(runes)/2)
	for i := 0; i < len(runes); i += 2 {
		flags = append(flags, string(runes[i:i+2]))
	}
	return distinctFlags(flags), nil
}

func (longStrategy) Encode(flags []string) string {
	return strings.Join(sortedFlags(flags, strings.Compare), "")
}

type numericStrategy struct{}

func (numericStrategy) Type() FlagType { return FlagNumeric }

func (numericStrategy) Decode(text string) ([]string, error) {
	if text == "" {
		return nil, nil
	}
	parts := strings.Split(text, ",")
	flags := make([]string, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, &MalformedFlagError{Encoding: FlagNumeric, Text: text, Reason: "flag " + strconv.Quote(p) + " is not a number"}
		}
		if n < 1 || n > maxNumericFlag {
			return nil, &MalformedFlagError{Encoding: FlagNumeric, Text: text, Reason: "flag " + p + " out of range 1.." + strconv.Itoa(maxNumericFlag)}
		}
		flags = append(flags, strconv.Itoa(n))
	}
	return distinctFlags(flags), nil
}

func (numericStrategy) Encode(flags []string) string {
	return strings.Join(sortedFlags(flags, func(a, b string) int {
		x, _ := strconv.Atoi(a)
		y, _ := strconv.Atoi(b)
		return cmp.Compare(x, y)
	}), ",")
}

// distinctFlags drops repeated flags, keeping first occurrences in order.
func distinctFlags(flags []string) []string {
	out := flags[:0]
	seen := make(map[string]bool, len(flags))
	for _, f := range flags {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

func sortedFlags(flags []string, compare func(a, b string) int) []string {
	out := slices.Clone(flags)
	slices.SortFunc(out, compare)
	return slices.Compact(out)
}

// hasFlag reports whether flag is present. An empty flag is never present.
func hasFlag(flags []string, flag string) bool {
	return flag != "" && slices.Contains(flags, flag)
}

// withoutFlags returns flags minus every flag for which drop returns true.
func withoutFlags(flags []string, drop func(string) bool) []string {
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		if !drop(f) {
			out = append(out, f)
		}
	}
	return out
}

// mergeFlags appends extra to base, skipping flags already present.
func mergeFlags(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	out = append(out, base...)
	for _, f := range extra {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}
