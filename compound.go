package hunmorph

import (
	"context"
	"strings"
	"unicode/utf8"
)

// component is one candidate word for a compound position.
type component struct {
	inf   *Inflection
	entry *DictionaryEntry
}

// compoundRun carries the shared state of one compounding call.
type compoundRun struct {
	limit     int
	joins     bool // dup, case, triple and REP checks at joins
	known     map[string]bool
	forbidden map[string]bool
	out       []*Inflection
}

func (r *compoundRun) full() bool { return len(r.out) >= r.limit }

// ApplyCompoundFlag joins words carrying COMPOUNDFLAG: every permutation
// with repetition of 2 to maxComponents components, shortest first, the
// first component varying slowest. At most limit compounds are returned.
//
// When ctx is cancelled, the compounds produced so far are returned along
// with ctx's error.
func (g *Generator) ApplyCompoundFlag(ctx context.Context, entries []*DictionaryEntry, limit, maxComponents int) ([]*Inflection, error) {
	flag := g.data.Flag(OptCompoundFlag)
	if flag == "" || limit <= 0 {
		return nil, nil
	}
	pool := g.components(entries, true, func(inf *Inflection) bool { return inf.HasFlag(flag) })
	run := g.newCompoundRun(entries, limit, true)
	for n := 2; n <= g.componentCap(maxComponents) && !run.full(); n++ {
		slots := make([][]component, n)
		for pos := 0; pos < n; pos++ {
			slots[pos] = g.eligible(pool, pos, n)
		}
		if err := g.compose(ctx, slots, run); err != nil {
			return run.out, err
		}
	}
	return run.out, nil
}

// ApplyCompoundBeginMiddleEnd joins a COMPOUNDBEGIN word, zero or more
// COMPOUNDMIDDLE words and a COMPOUNDEND word. Words carrying COMPOUNDFLAG
// may fill any position.
func (g *Generator) ApplyCompoundBeginMiddleEnd(ctx context.Context, entries []*DictionaryEntry, limit int) ([]*Inflection, error) {
	if limit <= 0 {
		return nil, nil
	}
	anywhere := g.data.Flag(OptCompoundFlag)
	begin, middle, end := g.data.Flag(OptCompoundBegin), g.data.Flag(OptCompoundMiddle), g.data.Flag(OptCompoundEnd)
	if begin == "" && middle == "" && end == "" && anywhere == "" {
		return nil, nil
	}
	pool := g.components(entries, true, func(inf *Inflection) bool {
		return inf.HasFlag(begin) || inf.HasFlag(middle) || inf.HasFlag(end) || inf.HasFlag(anywhere)
	})
	carrying := func(cs []component, flag string) []component {
		var out []component
		for _, c := range cs {
			if c.inf.HasFlag(flag) || c.inf.HasFlag(anywhere) {
				out = append(out, c)
			}
		}
		return out
	}
	run := g.newCompoundRun(entries, limit, true)
	for n := 2; n <= g.componentCap(0) && !run.full(); n++ {
		slots := make([][]component, n)
		for pos := 0; pos < n; pos++ {
			slot := g.eligible(pool, pos, n)
			switch pos {
			case 0:
				slots[pos] = carrying(slot, begin)
			case n - 1:
				slots[pos] = carrying(slot, end)
			default:
				slots[pos] = carrying(slot, middle)
			}
		}
		if err := g.compose(ctx, slots, run); err != nil {
			return run.out, err
		}
	}
	return run.out, nil
}

// ApplyCompoundRules generates the compounds matching a COMPOUNDRULE
// pattern, shortest first. An empty rule uses every COMPOUNDRULE of the
// affix data in declaration order. Components are dictionary stems.
func (g *Generator) ApplyCompoundRules(ctx context.Context, entries []*DictionaryEntry, rule string, limit int) ([]*Inflection, error) {
	if limit <= 0 {
		return nil, nil
	}
	rules := []string{rule}
	if rule == "" {
		rules = g.data.CompoundRules()
	}
	pool := g.components(entries, false, func(*Inflection) bool { return true })
	run := g.newCompoundRun(entries, limit, false)
	maxN := g.componentCap(0)
	for _, r := range rules {
		tokens, err := parseCompoundRule(r, g.data.FlagStrategy().Type())
		if err != nil {
			return run.out, err
		}
		candidates := make([][]component, len(tokens))
		for i, tok := range tokens {
			for _, c := range pool {
				if c.inf.HasFlag(tok.flag) && g.longEnough(c) {
					candidates[i] = append(candidates[i], c)
				}
			}
			if len(candidates[i]) == 0 && tok.quantifier == 0 {
				return run.out, &MissingRuleComponentError{Rule: r, Flag: tok.flag}
			}
		}
		for _, seq := range expandRuleTokens(tokens, maxN) {
			if run.full() {
				return run.out, nil
			}
			slots := make([][]component, len(seq))
			for pos, tokenIdx := range seq {
				slots[pos] = candidates[tokenIdx]
			}
			if err := g.compose(ctx, slots, run); err != nil {
				return run.out, err
			}
		}
	}
	return run.out, nil
}

// ruleToken is one flag of a COMPOUNDRULE with its quantifier (0, '*' or '?').
type ruleToken struct {
	flag       string
	quantifier byte
}

// parseCompoundRule tokenizes a COMPOUNDRULE. Long and numeric flags are
// written in parentheses, e.g. "(aa)(bb)*".
func parseCompoundRule(rule string, t FlagType) ([]ruleToken, error) {
	var tokens []ruleToken
	runes := []rune(rule)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '*' || r == '?':
			if len(tokens) == 0 || tokens[len(tokens)-1].quantifier != 0 {
				return nil, &MalformedFlagError{Encoding: t, Text: rule, Reason: "misplaced quantifier"}
			}
			tokens[len(tokens)-1].quantifier = byte(r)
		case r == '(':
			end := -1
			for j := i + 1; j < len(runes); j++ {
				if runes[j] == ')' {
					end = j
					break
				}
			}
			if end < 0 || end == i+1 {
				return nil, &MalformedFlagError{Encoding: t, Text: rule, Reason: "unbalanced parentheses"}
			}
			tokens = append(tokens, ruleToken{flag: string(runes[i+1 : end])})
			i = end
		case t == FlagLong || t == FlagNumeric:
			return nil, &MalformedFlagError{Encoding: t, Text: rule, Reason: "flags must be parenthesized"}
		default:
			tokens = append(tokens, ruleToken{flag: string(r)})
		}
	}
	if len(tokens) == 0 {
		return nil, &MalformedFlagError{Encoding: t, Text: rule, Reason: "empty compound rule"}
	}
	return tokens, nil
}

// expandRuleTokens lists the token sequences a rule matches with 2 to maxN
// components, grouped by increasing length.
func expandRuleTokens(tokens []ruleToken, maxN int) [][]int {
	byLen := make([][][]int, maxN+1)
	var walk func(i int, seq []int)
	walk = func(i int, seq []int) {
		if len(seq) > maxN {
			return
		}
		if i == len(tokens) {
			if len(seq) >= 2 {
				byLen[len(seq)] = append(byLen[len(seq)], append([]int(nil), seq...))
			}
			return
		}
		lo, hi := 1, 1
		switch tokens[i].quantifier {
		case '?':
			lo = 0
		case '*':
			lo, hi = 0, maxN
		}
		for n := lo; n <= hi && len(seq)+n <= maxN; n++ {
			next := seq
			for k := 0; k < n; k++ {
				next = append(next, i)
			}
			walk(i+1, next)
		}
	}
	walk(0, nil)
	var out [][]int
	for _, seqs := range byLen {
		out = append(out, seqs...)
	}
	return out
}

// components expands entries into compound candidates. With affixed set,
// valid affixed forms are candidates too; keep selects by flags.
//
// A failure concerns one entry only: an entry whose affixes cannot be
// applied still offers its stem, and one whose stem cannot be converted
// offers nothing.
func (g *Generator) components(entries []*DictionaryEntry, affixed bool, keep func(*Inflection) bool) []component {
	var out []component
	for _, e := range entries {
		var infls []*Inflection
		if affixed {
			infls, _ = g.inflect(e)
		}
		if len(infls) == 0 {
			base, err := g.base(e)
			if base == nil || err != nil {
				continue
			}
			infls = []*Inflection{base}
		}
		for _, inf := range infls {
			if g.valid(inf) && keep(inf) {
				out = append(out, component{inf: inf, entry: e})
			}
		}
	}
	return out
}

// eligible filters candidates for position pos of an n-component compound.
// A prefix is only allowed on the first component and a suffix on the last
// one, unless the affix carries COMPOUNDPERMITFLAG. Affixes carrying
// COMPOUNDFORBIDFLAG never enter a compound.
func (g *Generator) eligible(pool []component, pos, n int) []component {
	permit := g.data.Flag(OptCompoundPermitFlag)
	forbid := g.data.Flag(OptCompoundForbidFlag)
	var out []component
next:
	for _, c := range pool {
		if !g.longEnough(c) {
			continue
		}
		for _, e := range c.inf.Applied {
			switch {
			case e.HasContinuationFlag(forbid):
				continue next
			case e.HasContinuationFlag(permit):
			case e.Type == Prefix && pos != 0, e.Type == Suffix && pos != n-1:
				continue next
			}
		}
		out = append(out, c)
	}
	return out
}

func (g *Generator) longEnough(c component) bool {
	return utf8.RuneCountInString(c.inf.Word) >= g.data.CompoundMin()
}

// componentCap bounds the number of components by the request, by
// COMPOUNDWORDMAX and by hardComponentCap.
func (g *Generator) componentCap(requested int) int {
	n := hardComponentCap
	if requested > 0 && requested < n {
		n = requested
	}
	if w := g.data.CompoundWordMax(); w > 0 && w < n {
		n = w
	}
	return n
}

func (g *Generator) newCompoundRun(entries []*DictionaryEntry, limit int, joins bool) *compoundRun {
	run := &compoundRun{
		limit:     limit,
		joins:     joins,
		known:     make(map[string]bool, len(entries)),
		forbidden: make(map[string]bool),
	}
	forbidden := g.data.Flag(OptForbiddenWord)
	for _, e := range entries {
		run.known[e.Stem] = true
		if e.HasFlag(forbidden) {
			run.forbidden[e.Stem] = true
		}
	}
	return run
}

// compose walks every combination of one candidate per slot, the last slot
// varying fastest, until the run is full.
func (g *Generator) compose(ctx context.Context, slots [][]component, run *compoundRun) error {
	for _, s := range slots {
		if len(s) == 0 {
			return nil
		}
	}
	idx := make([]int, len(slots))
	parts := make([]component, len(slots))
	for !run.full() {
		if err := ctx.Err(); err != nil {
			return err
		}
		for k, i := range idx {
			parts[k] = slots[k][i]
		}
		inf, ok, err := g.join(parts, run)
		if err != nil {
			return err
		}
		if ok {
			run.out = append(run.out, inf)
		}

		k := len(idx) - 1
		for ; k >= 0; k-- {
			idx[k]++
			if idx[k] < len(slots[k]) {
				break
			}
			idx[k] = 0
		}
		if k < 0 {
			return nil
		}
	}
	return nil
}

// join concatenates parts and applies the compound checks. It reports
// false when the compound is rejected.
func (g *Generator) join(parts []component, run *compoundRun) (*Inflection, bool, error) {
	d := g.data
	word := parts[0].inf.Word
	for k := 1; k < len(parts); k++ {
		right := parts[k].inf.Word
		if run.joins {
			if d.Bool(OptCheckCompoundDup) && parts[k-1].inf.Word == right {
				return nil, false, nil
			}
			if d.Bool(OptCheckCompoundCase) && caseClash(word, right) {
				return nil, false, nil
			}
			if d.Bool(OptCheckCompoundTriple) {
				joined, ok := joinTriple(word, right, d.Bool(OptSimplifiedTriple))
				if !ok {
					return nil, false, nil
				}
				word = joined
				continue
			}
		}
		word += right
	}
	if run.forbidden[word] {
		return nil, false, nil
	}
	if run.joins && d.Bool(OptCheckCompoundRep) {
		for _, candidate := range d.RepTable().Apply(word) {
			if run.known[candidate] {
				return nil, false, nil
			}
		}
	}

	forceUCase := d.Flag(OptForceUCase)
	morph := make([]string, 0, 2*len(parts))
	parents := make([]*DictionaryEntry, len(parts))
	for k, p := range parts {
		if p.inf.HasFlag(forceUCase) {
			word = g.casing.capitalize(word)
		}
		morph = append(morph, "pa:"+p.inf.Word)
		morph = append(morph, p.inf.MorphFields...)
		parents[k] = p.entry
	}
	last := parts[len(parts)-1].inf
	inf := &Inflection{
		Word:           word,
		RemainingFlags: withoutFlags(last.RemainingFlags, g.isCompoundingFlag),
		MorphFields:    morph,
		Parents:        parents,
		Fold:           FoldCompound,
		stem:           word,
	}
	inf, err := g.output(inf)
	if err != nil {
		return nil, false, err
	}
	return inf, true, nil
}

// isCompoundingFlag reports flags that only steer compounding.
func (g *Generator) isCompoundingFlag(f string) bool {
	switch f {
	case g.data.Flag(OptCompoundFlag), g.data.Flag(OptCompoundBegin), g.data.Flag(OptCompoundMiddle),
		g.data.Flag(OptCompoundEnd), g.data.Flag(OptOnlyInCompound), g.data.Flag(OptForceUCase):
		return true
	}
	return false
}

// joinTriple joins left and right when no letter would appear three times
// in a row at the join. With simplified set, one of the three is dropped
// instead of rejecting the compound.
func joinTriple(left, right string, simplified bool) (string, bool) {
	l := []rune(left)
	r := []rune(right)
	if len(l) == 0 || len(r) == 0 {
		return left + right, true
	}
	c := l[len(l)-1]
	triple := r[0] == c && (len(l) >= 2 && l[len(l)-2] == c || len(r) >= 2 && r[1] == c)
	if !triple {
		return left + right, true
	}
	if !simplified {
		return "", false
	}
	return left + strings.TrimPrefix(right, string(c)), true
}
