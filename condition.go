package hunmorph

import (
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Anchor tells a condition which edge of the word it is tested against.
type Anchor int

const (
	AnchorSuffix Anchor = iota // match against the word's tail
	AnchorPrefix               // match against the word's head
)

// conditionCacheSize bounds the number of compiled conditions kept around.
// Reductions try many candidate conditions per flag, so the working set is
// a few hundred patterns per rule.
const conditionCacheSize = 8192

// conditionCache holds compiled conditions keyed by pattern (LRU is thread-safe).
var conditionCache = newConditionCache(conditionCacheSize)

func newConditionCache(size int) *lru.Cache[string, *Condition] {
	c, err := lru.New[string, *Condition](size)
	if err != nil {
		panic("hunmorph: condition cache: " + err.Error())
	}
	return c
}

type atomKind int

const (
	atomLiteral atomKind = iota
	atomAny
	atomClass
	atomNegClass
)

// atom is one position of a condition.
type atom struct {
	kind atomKind
	r    rune   // atomLiteral
	set  []rune // atomClass, atomNegClass
}

func (a atom) match(r rune) bool {
	switch a.kind {
	case atomAny:
		return true
	case atomClass:
		return slices.Contains(a.set, r)
	case atomNegClass:
		return !slices.Contains(a.set, r)
	default:
		return a.r == r
	}
}

func (a atom) String() string {
	switch a.kind {
	case atomAny:
		return "."
	case atomClass:
		set := a.set
		// A leading '^' would turn the class into a negation.
		if len(set) > 1 && set[0] == '^' {
			set = append(slices.Clone(set[1:]), '^')
		}
		return "[" + string(set) + "]"
	case atomNegClass:
		return "[^" + string(a.set) + "]"
	default:
		if a.r == '.' {
			return "[.]"
		}
		return string(a.r)
	}
}

// expressible reports whether r can appear in a condition. Brackets
// always delimit a class, so a literal one has no spelling.
func expressible(r rune) bool { return r != '[' && r != ']' }

// Condition is a compiled affix condition: a sequence of literal characters,
// '.', '[set]' and '[^set]', matched position by position against one edge
// of a word. Conditions are immutable and safe for concurrent use.
type Condition struct {
	pattern string
	atoms   []atom
}

// ParseCondition compiles pattern. An empty pattern is the same as ".".
func ParseCondition(pattern string) (*Condition, error) {
	if pattern == "" {
		pattern = "."
	}
	if c, ok := conditionCache.Get(pattern); ok {
		return c, nil
	}
	atoms, err := parseAtoms(pattern)
	if err != nil {
		return nil, err
	}
	c := &Condition{pattern: pattern, atoms: atoms}
	conditionCache.Add(pattern, c)
	return c, nil
}

// MustParseCondition is like ParseCondition but panics on error.
// Intended for tests and package-level tables.
func MustParseCondition(pattern string) *Condition {
	c, err := ParseCondition(pattern)
	if err != nil {
		panic(err)
	}
	return c
}

func parseAtoms(pattern string) ([]atom, error) {
	runes := []rune(pattern)
	atoms := make([]atom, 0, len(runes))
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; r {
		case '.':
			atoms = append(atoms, atom{kind: atomAny})
		case ']':
			return nil, &InvalidConditionError{Condition: pattern, Reason: "unexpected ']'"}
		case '[':
			end := slices.Index(runes[i+1:], ']')
			if end < 0 {
				return nil, &InvalidConditionError{Condition: pattern, Reason: "unclosed '['"}
			}
			body := runes[i+1 : i+1+end]
			kind := atomClass
			if len(body) > 0 && body[0] == '^' {
				kind = atomNegClass
				body = body[1:]
			}
			if len(body) == 0 {
				return nil, &InvalidConditionError{Condition: pattern, Reason: "empty character class"}
			}
			if slices.Contains(body, '[') {
				return nil, &InvalidConditionError{Condition: pattern, Reason: "nested '['"}
			}
			atoms = append(atoms, atom{kind: kind, set: slices.Clone(body)})
			i += end + 1
		default:
			atoms = append(atoms, atom{kind: atomLiteral, r: r})
		}
	}
	return atoms, nil
}

// conditionFromAtoms renders atoms back into a compiled condition.
func conditionFromAtoms(atoms []atom) *Condition {
	if len(atoms) == 0 {
		return MustParseCondition(".")
	}
	var sb strings.Builder
	for _, a := range atoms {
		sb.WriteString(a.String())
	}
	return &Condition{pattern: sb.String(), atoms: atoms}
}

// Matches reports whether the condition matches word at the given edge.
// A word shorter than the condition never matches.
func (c *Condition) Matches(word string, anchor Anchor) bool {
	return c.matchRunes([]rune(word), anchor)
}

func (c *Condition) matchRunes(w []rune, anchor Anchor) bool {
	n := len(c.atoms)
	if len(w) < n {
		return false
	}
	offset := 0
	if anchor == AnchorSuffix {
		offset = len(w) - n
	}
	for i, a := range c.atoms {
		if !a.match(w[offset+i]) {
			return false
		}
	}
	return true
}

// Len is the number of character positions the condition covers.
func (c *Condition) Len() int { return len(c.atoms) }

// IsAny reports whether the condition is the catch-all ".".
func (c *Condition) IsAny() bool {
	return len(c.atoms) == 1 && c.atoms[0].kind == atomAny
}

// String returns the condition in affix-file syntax.
func (c *Condition) String() string { return c.pattern }
