package hunmorph

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// LineEntry is one observed (or reduced) affix transformation: remove
// Removal at the word edge, add Addition, when Condition holds. Before
// reduction Condition is the literal word the transformation applied to.
type LineEntry struct {
	Removal           string
	Addition          string
	Condition         string
	ContinuationFlags []string
	// MorphFields are written after the condition; entries with different
	// fields never merge.
	MorphFields []string
	// From lists the words the entry was derived from, in first-seen order.
	From []string
}

func (l LineEntry) key() string {
	return l.Removal + "\x00" + l.Addition +
		"\x00" + strings.Join(sortedFlags(l.ContinuationFlags, strings.Compare), "\x01") +
		"\x00" + strings.Join(l.MorphFields, "\x01")
}

// mergeLineEntries merges entries with identical removal, addition,
// continuation and condition, uniting their words.
func mergeLineEntries(entries []LineEntry) []LineEntry {
	index := make(map[string]int, len(entries))
	var out []LineEntry
	for _, e := range entries {
		k := e.key() + "\x00" + e.Condition
		if i, ok := index[k]; ok {
			out[i].From = unique(append(out[i].From, e.From...))
			continue
		}
		index[k] = len(out)
		e.From = unique(slices.Clone(e.From))
		e.ContinuationFlags = slices.Clone(e.ContinuationFlags)
		e.MorphFields = slices.Clone(e.MorphFields)
		out = append(out, e)
	}
	return out
}

// CollectLineEntries runs the generator over entries and records every
// single application of the rule named by flag as a LineEntry whose
// condition is the stem it applied to.
func CollectLineEntries(g *Generator, entries []*DictionaryEntry, flag string) ([]LineEntry, error) {
	if g.data.RuleEntry(flag) == nil {
		return nil, &ReductionError{Reason: fmt.Sprintf("no rule with flag %q", flag)}
	}
	var out []LineEntry
	for _, entry := range entries {
		if !entry.HasFlag(flag) {
			continue
		}
		infls, err := g.inflect(entry)
		if err != nil {
			return nil, fmt.Errorf("collect %s: %w", entry.Stem, err)
		}
		for _, inf := range infls {
			if len(inf.Applied) != 1 || inf.Applied[0].Flag != flag {
				continue
			}
			e := inf.Applied[0]
			out = append(out, LineEntry{
				Removal:           e.Strip,
				Addition:          e.Append,
				Condition:         inf.Stem(),
				ContinuationFlags: e.ContinuationFlags,
				MorphFields:       e.MorphFields,
				From:              []string{inf.Stem()},
			})
		}
	}
	return mergeLineEntries(out), nil
}

// reductionGroup is the set of words sharing one transformation.
type reductionGroup struct {
	proto LineEntry
	words []string
}

// ReduceProductions compacts observations of one rule into the fewest
// condition-guarded entries that still cover every observed word, and that
// do not match an observed word outside their own group whenever a
// condition can tell them apart. Groups that cannot be told apart stay
// as separate literal entries. The result is ordered by decreasing
// condition length, so the most specific entries come first; ties keep
// first-seen order.
func ReduceProductions(t AffixType, entries []LineEntry) ([]LineEntry, error) {
	groups, corpus, err := groupObservations(entries)
	if err != nil {
		return nil, err
	}

	var out []LineEntry
	for _, g := range groups {
		members := edgeRunes(g.words, t)
		var others [][]rune
		for _, w := range corpus {
			if !slices.Contains(g.words, w) {
				others = append(others, edgeFirst(w, t))
			}
		}
		for _, c := range cover(members, others, nil, utf8.RuneCountInString(g.proto.Removal)) {
			e := g.proto
			e.Condition = renderCondition(c.atoms, t)
			e.From = c.words(t)
			out = append(out, e)
		}
	}
	out = mergeLineEntries(out)
	slices.SortStableFunc(out, func(a, b LineEntry) int {
		return cmp.Compare(conditionLen(b.Condition), conditionLen(a.Condition))
	})
	if err := verifyReduction(t, groups, out); err != nil {
		return nil, err
	}
	return out, nil
}

func groupObservations(entries []LineEntry) ([]*reductionGroup, []string, error) {
	index := make(map[string]*reductionGroup)
	var groups []*reductionGroup
	var corpus []string
	for _, e := range mergeLineEntries(entries) {
		words := e.From
		if len(words) == 0 {
			words = []string{e.Condition}
		}
		for _, w := range words {
			if w == "" {
				return nil, nil, &ReductionError{Reason: "observation without a source word"}
			}
			if !strings.HasSuffix(w, e.Removal) && !strings.HasPrefix(w, e.Removal) {
				return nil, nil, &ReductionError{Reason: fmt.Sprintf("word %q does not contain removed part %q", w, e.Removal)}
			}
			if strings.IndexFunc(w, func(r rune) bool { return !expressible(r) }) >= 0 {
				return nil, nil, &ReductionError{Reason: fmt.Sprintf("word %q has a character no condition can hold", w)}
			}
		}
		k := e.key()
		g, ok := index[k]
		if !ok {
			g = &reductionGroup{proto: LineEntry{
				Removal:           e.Removal,
				Addition:          e.Addition,
				ContinuationFlags: e.ContinuationFlags,
				MorphFields:       e.MorphFields,
			}}
			index[k] = g
			groups = append(groups, g)
		}
		g.words = unique(append(g.words, words...))
		corpus = unique(append(corpus, words...))
	}
	return groups, corpus, nil
}

// edgeFirst returns the runes of w starting from the edge the affix
// works on: reversed for suffixes.
func edgeFirst(w string, t AffixType) []rune {
	r := []rune(w)
	if t == Suffix {
		slices.Reverse(r)
	}
	return r
}

func edgeRunes(ws []string, t AffixType) [][]rune {
	out := make([][]rune, len(ws))
	for i, w := range ws {
		out[i] = edgeFirst(w, t)
	}
	return out
}

// covering is one reduced condition (edge first) with the members it covers.
type covering struct {
	atoms   []atom
	members [][]rune
}

func (c covering) words(t AffixType) []string {
	out := make([]string, len(c.members))
	for i, m := range c.members {
		r := slices.Clone(m)
		if t == Suffix {
			slices.Reverse(r)
		}
		out[i] = string(r)
	}
	return out
}

// cover finds conditions (edge first) that match every member and, where
// possible, no other word. fixed is the prefix all members already share;
// conditions are never shorter than minLen.
func cover(members, others [][]rune, fixed []atom, minLen int) []covering {
	fixed = slices.Clone(fixed)
	for p := len(fixed); ; p++ {
		r, ok := commonAt(members, p)
		if !ok {
			break
		}
		fixed = append(fixed, atom{kind: atomLiteral, r: r})
	}
	// The shortest part of the common context that already excludes every
	// other word is enough.
	for k := minLen; k < len(fixed); k++ {
		if len(matchingOthers(others, fixed[:k])) == 0 {
			fixed = fixed[:k]
			break
		}
	}
	others = matchingOthers(others, fixed)
	if len(others) == 0 {
		return []covering{{atoms: fixed, members: members}}
	}

	// A member that is entirely inside the condition cannot be separated
	// from longer words ending the same way. The literal condition already
	// matches the rest of the group, so it covers all of it.
	p := len(fixed)
	if slices.ContainsFunc(members, func(m []rune) bool { return len(m) == p }) {
		return []covering{{atoms: fixed, members: members}}
	}

	memberSet := runesAt(members, p)
	otherSet := runesAt(others, p)
	shared := intersect(memberSet, otherSet)
	if len(shared) == 0 {
		return []covering{{atoms: append(slices.Clone(fixed), classAtom(memberSet, otherSet)), members: members}}
	}
	var out []covering
	if own := subtract(memberSet, otherSet); len(own) > 0 {
		out = append(out, covering{
			atoms:   append(slices.Clone(fixed), setAtom(own)),
			members: withRuneAt(members, p, own),
		})
	}
	for _, r := range shared {
		next := append(slices.Clone(fixed), atom{kind: atomLiteral, r: r})
		out = append(out, cover(withRuneAt(members, p, []rune{r}), withRuneAt(others, p, []rune{r}), next, len(next))...)
	}
	return out
}

// commonAt returns the rune every member has at position p.
func commonAt(members [][]rune, p int) (rune, bool) {
	var r rune
	for i, m := range members {
		if len(m) <= p {
			return 0, false
		}
		if i == 0 {
			r = m[p]
		} else if m[p] != r {
			return 0, false
		}
	}
	return r, len(members) > 0
}

func matchingOthers(others [][]rune, atoms []atom) [][]rune {
	var out [][]rune
	for _, o := range others {
		if prefixMatches(o, atoms) {
			out = append(out, o)
		}
	}
	return out
}

func prefixMatches(w []rune, atoms []atom) bool {
	if len(w) < len(atoms) {
		return false
	}
	for i, a := range atoms {
		if !a.match(w[i]) {
			return false
		}
	}
	return true
}

// runesAt returns the distinct runes at position p, in first-seen order.
func runesAt(ws [][]rune, p int) []rune {
	var out []rune
	for _, w := range ws {
		if len(w) > p && !slices.Contains(out, w[p]) {
			out = append(out, w[p])
		}
	}
	return out
}

func withRuneAt(ws [][]rune, p int, set []rune) [][]rune {
	var out [][]rune
	for _, w := range ws {
		if len(w) > p && slices.Contains(set, w[p]) {
			out = append(out, w)
		}
	}
	return out
}

func intersect(a, b []rune) []rune {
	var out []rune
	for _, r := range a {
		if slices.Contains(b, r) {
			out = append(out, r)
		}
	}
	return out
}

func subtract(a, b []rune) []rune {
	var out []rune
	for _, r := range a {
		if !slices.Contains(b, r) {
			out = append(out, r)
		}
	}
	return out
}

// classAtom picks the shorter of [members] and [^others]; the positive
// class wins ties. With no other word long enough, any character will do.
func classAtom(memberSet, otherSet []rune) atom {
	if len(otherSet) == 0 {
		return atom{kind: atomAny}
	}
	pos := setAtom(memberSet)
	neg := atom{kind: atomNegClass, set: sortedRunes(otherSet)}
	if len(neg.String()) < len(pos.String()) {
		return neg
	}
	return pos
}

func setAtom(set []rune) atom {
	if len(set) == 1 {
		return atom{kind: atomLiteral, r: set[0]}
	}
	return atom{kind: atomClass, set: sortedRunes(set)}
}

func sortedRunes(set []rune) []rune {
	out := slices.Clone(set)
	slices.Sort(out)
	return out
}

func conditionLen(pattern string) int {
	c, err := ParseCondition(pattern)
	if err != nil {
		return utf8.RuneCountInString(pattern)
	}
	return c.Len()
}

// renderCondition turns edge-first atoms into affix-file condition syntax.
func renderCondition(atoms []atom, t AffixType) string {
	a := slices.Clone(atoms)
	if t == Suffix {
		slices.Reverse(a)
	}
	return conditionFromAtoms(a).String()
}

// verifyReduction checks that every observed word is produced by exactly
// one entry of its own group.
func verifyReduction(t AffixType, groups []*reductionGroup, reduced []LineEntry) error {
	for _, g := range groups {
		for _, w := range g.words {
			covered := 0
			for _, l := range reduced {
				if l.key() != g.proto.key() {
					continue
				}
				e, err := NewAffixEntry(t, "", l.Removal, l.Addition, l.Condition, nil, nil)
				if err == nil && e.CanApplyTo(w) {
					covered++
				}
			}
			switch {
			case covered == 0:
				return &ReductionError{Reason: fmt.Sprintf("word %q lost by reduction of %q > %q", w, emptyToZero(g.proto.Removal), emptyToZero(g.proto.Addition))}
			case covered > 1:
				return &ReductionError{Reason: fmt.Sprintf("word %q covered %d times by reduction of %q > %q", w, covered, emptyToZero(g.proto.Removal), emptyToZero(g.proto.Addition))}
			}
		}
	}
	return nil
}

// Reducer rewrites reduced entries in affix-file syntax for one AffixData.
type Reducer struct {
	data *AffixData
}

// NewReducer returns a Reducer bound to data.
func NewReducer(data *AffixData) *Reducer {
	return &Reducer{data: data}
}

// Reduce collects the applications of the rule named by flag over entries
// and reduces them.
func (r *Reducer) Reduce(g *Generator, entries []*DictionaryEntry, flag string) ([]LineEntry, error) {
	rule := r.data.RuleEntry(flag)
	if rule == nil {
		return nil, &ReductionError{Reason: fmt.Sprintf("no rule with flag %q", flag)}
	}
	observed, err := CollectLineEntries(g, entries, flag)
	if err != nil {
		return nil, err
	}
	return ReduceProductions(rule.Type, observed)
}

// ConvertFormat renders reduced entries as a SFX or PFX block: the header
// "TYPE FLAG Y|N count" and one line per entry. The Y/N marker is taken from
// the existing rule with that flag, Y when there is none.
func (r *Reducer) ConvertFormat(flag string, isSuffix bool, entries []LineEntry) []string {
	t := Prefix
	if isSuffix {
		t = Suffix
	}
	combinable := true
	if rule := r.data.RuleEntry(flag); rule != nil {
		combinable = rule.Combinable
	}
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, ruleHeader(t, flag, combinable, len(entries)))
	for _, e := range entries {
		lines = append(lines, formatAffixLine(t, flag, e.Removal, e.Addition, e.ContinuationFlags, e.Condition, e.MorphFields, r.data.FlagStrategy()))
	}
	return lines
}
