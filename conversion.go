package hunmorph

import "strings"

// ConversionKind is the anchoring of one conversion pattern.
// The declaration order is the precedence used when applying a table.
type ConversionKind int

const (
	ConvertWhole      ConversionKind = iota // ^pattern$
	ConvertStartsWith                       // ^pattern
	ConvertEndsWith                         // pattern$
	ConvertInside                           // pattern
	conversionKinds
)

// ConversionEntry is one raw table line: a pattern with optional ^/$
// anchors and its replacement ("0" deletes).
type ConversionEntry struct {
	Pattern     string
	Replacement string
}

type conversion struct {
	pattern     string
	replacement string
}

// ConversionTable holds the anchored rewrite rules of a REP, ICONV or OCONV
// option. It is immutable once built.
type ConversionTable struct {
	option string
	rules  [conversionKinds][]conversion
	size   int
}

// NewConversionTable builds the table for option (REP, ICONV or OCONV).
// In REP tables an underscore stands for a space, as in Hunspell.
func NewConversionTable(option string, entries ...ConversionEntry) (*ConversionTable, error) {
	t := &ConversionTable{option: option}
	for _, e := range entries {
		kind, pattern, err := splitAnchors(e.Pattern)
		if err != nil {
			return nil, &ConversionTableError{Table: option, Pattern: e.Pattern, Reason: err.Error()}
		}
		if e.Replacement == "" {
			return nil, &ConversionTableError{Table: option, Pattern: e.Pattern, Reason: "missing replacement"}
		}
		replacement := e.Replacement
		if replacement == "0" {
			replacement = ""
		}
		if option == "REP" {
			pattern = strings.ReplaceAll(pattern, "_", " ")
			replacement = strings.ReplaceAll(replacement, "_", " ")
		}
		t.rules[kind] = append(t.rules[kind], conversion{pattern: pattern, replacement: replacement})
		t.size++
	}
	return t, nil
}

type anchorError string

func (e anchorError) Error() string { return string(e) }

func splitAnchors(raw string) (ConversionKind, string, error) {
	starts := strings.HasPrefix(raw, "^")
	ends := strings.HasSuffix(raw, "$")
	p := raw
	if starts {
		p = p[1:]
	}
	if ends && p != "" {
		p = p[:len(p)-1]
	}
	if p == "" {
		return 0, "", anchorError("empty pattern")
	}
	switch {
	case starts && ends:
		return ConvertWhole, p, nil
	case starts:
		return ConvertStartsWith, p, nil
	case ends:
		return ConvertEndsWith, p, nil
	default:
		return ConvertInside, p, nil
	}
}

// Option is the affix option this table was built for.
func (t *ConversionTable) Option() string { return t.option }

// Len is the number of rules in the table.
func (t *ConversionTable) Len() int {
	if t == nil {
		return 0
	}
	return t.size
}

// Apply returns every single-rule rewrite of word, in precedence order
// (whole, starts-with, ends-with, inside). Rewrites are independent: each
// candidate applies exactly one rule at one position. An inside occurrence
// that touches a word edge is skipped when an anchored rule with the same
// pattern already covers that edge.
func (t *ConversionTable) Apply(word string) []string {
	if t.Len() == 0 {
		return nil
	}
	var out []string
	for _, c := range t.rules[ConvertWhole] {
		if word == c.pattern {
			out = append(out, c.replacement)
		}
	}
	for _, c := range t.rules[ConvertStartsWith] {
		if strings.HasPrefix(word, c.pattern) {
			out = append(out, c.replacement+word[len(c.pattern):])
		}
	}
	for _, c := range t.rules[ConvertEndsWith] {
		if strings.HasSuffix(word, c.pattern) {
			out = append(out, word[:len(word)-len(c.pattern)]+c.replacement)
		}
	}
	for _, c := range t.rules[ConvertInside] {
		for from := 0; from <= len(word)-len(c.pattern); {
			idx := strings.Index(word[from:], c.pattern)
			if idx < 0 {
				break
			}
			idx += from
			end := idx + len(c.pattern)
			if !t.shadowed(c.pattern, idx == 0, end == len(word)) {
				out = append(out, word[:idx]+c.replacement+word[end:])
			}
			from = end
		}
	}
	return unique(out)
}

// shadowed reports whether an anchored rule with the same pattern takes
// precedence over an inside match touching the given edges.
func (t *ConversionTable) shadowed(pattern string, atStart, atEnd bool) bool {
	has := func(kind ConversionKind) bool {
		for _, c := range t.rules[kind] {
			if c.pattern == pattern {
				return true
			}
		}
		return false
	}
	return atStart && atEnd && has(ConvertWhole) ||
		atStart && has(ConvertStartsWith) ||
		atEnd && has(ConvertEndsWith)
}

// ApplySingle rewrites word when exactly one candidate exists, returns word
// unchanged when none does, and fails when the table is ambiguous for it.
func (t *ConversionTable) ApplySingle(word string) (string, error) {
	candidates := t.Apply(word)
	switch len(candidates) {
	case 0:
		return word, nil
	case 1:
		return candidates[0], nil
	}
	return "", &AmbiguousConversionError{Table: t.option, Word: word, Candidates: candidates}
}
