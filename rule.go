package hunmorph

import (
	"slices"
	"strconv"
	"strings"
)

// AffixType tells whether a rule adds at the end or at the start of a word.
type AffixType int

const (
	Suffix AffixType = iota
	Prefix
)

// String returns the affix-file keyword, SFX or PFX.
func (t AffixType) String() string {
	if t == Prefix {
		return "PFX"
	}
	return "SFX"
}

// Opposite returns the other affix type.
func (t AffixType) Opposite() AffixType {
	if t == Prefix {
		return Suffix
	}
	return Prefix
}

func (t AffixType) anchor() Anchor {
	if t == Prefix {
		return AnchorPrefix
	}
	return AnchorSuffix
}

// AffixEntry is one concrete transformation of a rule: strip a string at
// one edge of the word, append another, when the condition holds.
// Entries are immutable once built and compare by value (Equal).
type AffixEntry struct {
	// Type is Suffix or Prefix, inherited from the owning rule.
	Type AffixType
	// Flag names the owning rule.
	Flag string
	// Strip is removed from the word edge before appending ("" for none).
	Strip string
	// Append is added at the word edge ("" for none).
	Append string
	// Condition is tested against the word before stripping.
	Condition *Condition
	// ContinuationFlags are granted to the produced word.
	ContinuationFlags []string
	// MorphFields are the morphological tags of the entry (e.g. "is:plural").
	MorphFields []string
}

// NewAffixEntry builds an entry and checks that the condition agrees with
// the stripped part at the edge they share.
func NewAffixEntry(t AffixType, flag, strip, add, condition string, continuation, morph []string) (*AffixEntry, error) {
	c, err := ParseCondition(condition)
	if err != nil {
		return nil, err
	}
	e := &AffixEntry{
		Type:              t,
		Flag:              flag,
		Strip:             zeroToEmpty(strip),
		Append:            zeroToEmpty(add),
		Condition:         c,
		ContinuationFlags: slices.Clone(continuation),
		MorphFields:       slices.Clone(morph),
	}
	if e.Strip != "" && !e.conditionAgreesWithStrip() {
		return nil, &InvalidConditionError{Condition: c.String(), Reason: "does not match the stripped part " + e.Strip}
	}
	return e, nil
}

// conditionAgreesWithStrip checks the overlap between the condition and the
// stripped characters. Both sit on the same edge of the word.
func (e *AffixEntry) conditionAgreesWithStrip() bool {
	strip := []rune(e.Strip)
	atoms := e.Condition.atoms
	n := min(len(strip), len(atoms))
	for i := 0; i < n; i++ {
		var a atom
		var r rune
		if e.Type == Suffix {
			a = atoms[len(atoms)-n+i]
			r = strip[len(strip)-n+i]
		} else {
			a = atoms[i]
			r = strip[i]
		}
		if !a.match(r) {
			return false
		}
	}
	return true
}

func zeroToEmpty(s string) string {
	if s == "0" {
		return ""
	}
	return s
}

// CanApplyTo reports whether the entry's condition and strip both hold for word.
func (e *AffixEntry) CanApplyTo(word string) bool {
	if e.Type == Suffix {
		if !strings.HasSuffix(word, e.Strip) {
			return false
		}
	} else if !strings.HasPrefix(word, e.Strip) {
		return false
	}
	return e.Condition.Matches(word, e.Type.anchor())
}

// Apply transforms word, which must satisfy CanApplyTo. Stripping the whole
// word is only allowed when fullStrip is set (the FULLSTRIP option).
func (e *AffixEntry) Apply(word string, fullStrip bool) (string, error) {
	if e.Strip != "" && e.Strip == word && !fullStrip {
		return "", &CannotStripFullWordError{Word: word, Flag: e.Flag}
	}
	if e.Type == Suffix {
		return word[:len(word)-len(e.Strip)] + e.Append, nil
	}
	return e.Append + word[len(e.Strip):], nil
}

// HasContinuationFlag reports whether applying the entry grants flag.
func (e *AffixEntry) HasContinuationFlag(flag string) bool {
	return hasFlag(e.ContinuationFlags, flag)
}

// Equal compares two entries by value.
func (e *AffixEntry) Equal(o *AffixEntry) bool {
	if e == nil || o == nil {
		return e == o
	}
	return e.Type == o.Type && e.Flag == o.Flag &&
		e.Strip == o.Strip && e.Append == o.Append &&
		e.Condition.String() == o.Condition.String() &&
		slices.Equal(sortedFlags(e.ContinuationFlags, strings.Compare), sortedFlags(o.ContinuationFlags, strings.Compare)) &&
		slices.Equal(e.MorphFields, o.MorphFields)
}

// Line renders the entry in affix-file syntax.
func (e *AffixEntry) Line(strategy FlagStrategy) string {
	return formatAffixLine(e.Type, e.Flag, e.Strip, e.Append, e.ContinuationFlags, e.Condition.String(), e.MorphFields, strategy)
}

// formatAffixLine writes "TYPE FLAG strip add[/flags] condition [morph...]".
func formatAffixLine(t AffixType, flag, strip, add string, continuation []string, condition string, morph []string, strategy FlagStrategy) string {
	var sb strings.Builder
	sb.WriteString(t.String())
	sb.WriteByte(' ')
	sb.WriteString(flag)
	sb.WriteByte(' ')
	sb.WriteString(emptyToZero(strip))
	sb.WriteByte(' ')
	sb.WriteString(emptyToZero(add))
	if len(continuation) > 0 {
		sb.WriteByte('/')
		sb.WriteString(strategy.Encode(continuation))
	}
	sb.WriteByte(' ')
	if condition == "" {
		condition = "."
	}
	sb.WriteString(condition)
	for _, m := range morph {
		sb.WriteByte(' ')
		sb.WriteString(m)
	}
	return sb.String()
}

func emptyToZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

// RuleEntry groups the entries sharing one flag. It is owned by AffixData
// and never modified after the data is built.
type RuleEntry struct {
	// Type is Suffix or Prefix.
	Type AffixType
	// Flag names the rule.
	Flag string
	// Combinable is the Y/N cross-product marker: whether a word produced by
	// this rule may also receive an affix of the opposite type.
	Combinable bool
	// Entries are kept in declaration order.
	Entries []*AffixEntry
}

// NewRuleEntry groups entries under flag. Entries are re-tagged with the
// rule's type and flag; a repeated entry is kept once.
func NewRuleEntry(t AffixType, flag string, combinable bool, entries ...*AffixEntry) *RuleEntry {
	r := &RuleEntry{Type: t, Flag: flag, Combinable: combinable}
	for _, e := range entries {
		c := *e
		c.Type, c.Flag = t, flag
		if slices.ContainsFunc(r.Entries, c.Equal) {
			continue
		}
		r.Entries = append(r.Entries, &c)
	}
	return r
}

// ApplicableEntries returns the entries whose condition and strip hold for word.
func (r *RuleEntry) ApplicableEntries(word string) []*AffixEntry {
	var out []*AffixEntry
	for _, e := range r.Entries {
		if e.CanApplyTo(word) {
			out = append(out, e)
		}
	}
	return out
}

// Lines renders the rule as an affix-file block (header plus entries).
func (r *RuleEntry) Lines(strategy FlagStrategy) []string {
	lines := make([]string, 0, len(r.Entries)+1)
	lines = append(lines, ruleHeader(r.Type, r.Flag, r.Combinable, len(r.Entries)))
	for _, e := range r.Entries {
		lines = append(lines, e.Line(strategy))
	}
	return lines
}

func ruleHeader(t AffixType, flag string, combinable bool, count int) string {
	yn := "N"
	if combinable {
		yn = "Y"
	}
	return t.String() + " " + flag + " " + yn + " " + strconv.Itoa(count)
}
