package hunmorph

import "slices"

// ApplyAffixRules returns every valid form of entry, in fold order: the
// base form, one-fold forms, two-fold forms, then last-fold forms (the
// opposite affix type applied to all of the previous ones). Rules are tried
// in the entry's flag order and their entries in declaration order.
//
// A forbidden stem yields no forms. Errors concern this entry only.
func (g *Generator) ApplyAffixRules(entry *DictionaryEntry) ([]*Inflection, error) {
	all, err := g.inflect(entry)
	if err != nil {
		return nil, err
	}
	onlyInCompound := g.data.Flag(OptOnlyInCompound)
	out := make([]*Inflection, 0, len(all))
	for _, inf := range all {
		if !g.valid(inf) || inf.HasFlag(onlyInCompound) {
			continue
		}
		inf, err = g.output(inf)
		if err != nil {
			return nil, err
		}
		out = append(out, inf)
	}
	return out, nil
}

// Inflect parses one dictionary line and applies the affix rules to it.
func (g *Generator) Inflect(line string) ([]*Inflection, error) {
	entry, err := ParseDictionaryLine(line, g.data)
	if err != nil {
		return nil, err
	}
	return g.ApplyAffixRules(entry)
}

// inflect builds every fold, including intermediate forms that are not
// valid on their own (NEEDAFFIX, half a circumfix). Words are not yet
// output-converted.
func (g *Generator) inflect(entry *DictionaryEntry) ([]*Inflection, error) {
	base, err := g.base(entry)
	if base == nil || err != nil {
		return nil, err
	}

	oneFold, err := g.applyFold(base, base.RemainingFlags, g.firstType, FoldOne)
	if err != nil {
		return nil, err
	}

	// The second level only follows continuation flags: stem flags never
	// apply to an already affixed word.
	var twoFold []*Inflection
	for _, parent := range oneFold {
		last := parent.Applied[len(parent.Applied)-1]
		produced, err := g.applyFold(parent, last.ContinuationFlags, g.firstType, FoldTwo)
		if err != nil {
			return nil, err
		}
		for _, inf := range produced {
			if err := g.checkTwofold(inf); err != nil {
				return nil, err
			}
		}
		twoFold = append(twoFold, produced...)
	}

	all := make([]*Inflection, 0, 1+2*(len(oneFold)+len(twoFold)))
	all = append(all, base)
	all = append(all, oneFold...)
	all = append(all, twoFold...)
	var lastFold []*Inflection
	for _, parent := range all {
		produced, err := g.applyFold(parent, parent.RemainingFlags, g.firstType.Opposite(), FoldLast)
		if err != nil {
			return nil, err
		}
		lastFold = append(lastFold, produced...)
	}
	return append(all, lastFold...), nil
}

// base returns the input-converted stem of entry, or nil for a forbidden
// word.
func (g *Generator) base(entry *DictionaryEntry) (*Inflection, error) {
	if entry.HasFlag(g.data.Flag(OptForbiddenWord)) {
		return nil, nil
	}
	stem, err := g.data.InputConversion().ApplySingle(entry.Stem)
	if err != nil {
		return nil, err
	}
	return &Inflection{
		Word:           stem,
		RemainingFlags: slices.Clone(entry.Flags),
		MorphFields:    slices.Clone(entry.MorphFields),
		Fold:           FoldBase,
		stem:           stem,
	}, nil
}

// applyFold applies every rule of type t named in candidates to parent.
func (g *Generator) applyFold(parent *Inflection, candidates []string, t AffixType, fold Fold) ([]*Inflection, error) {
	forbidden := g.data.Flag(OptForbiddenWord)
	var out []*Inflection
	for _, flag := range candidates {
		if g.data.IsTerminalFlag(flag) {
			continue
		}
		rule := g.data.RuleEntry(flag)
		if rule == nil || rule.Type != t {
			continue
		}
		if fold == FoldLast && !g.combinable(parent, rule) {
			continue
		}
		for _, e := range rule.ApplicableEntries(parent.Word) {
			if e.HasContinuationFlag(forbidden) {
				continue
			}
			word, err := e.Apply(parent.Word, g.data.IsFullStrip())
			if err != nil {
				return nil, err
			}
			out = append(out, parent.derive(word, g.remainingFlags(parent, rule, e, fold), e, fold))
		}
	}
	return out, nil
}

// remainingFlags computes the flags of a form produced by e from parent.
// NEEDAFFIX is satisfied by any applied affix, so it is never inherited;
// the entry's continuation may grant it again.
func (g *Generator) remainingFlags(parent *Inflection, rule *RuleEntry, e *AffixEntry, fold Fold) []string {
	needAffix := g.data.Flag(OptNeedAffix)
	var drop func(string) bool
	if fold == FoldOne {
		drop = func(f string) bool { return f == rule.Flag || f == needAffix }
	} else {
		drop = func(f string) bool {
			if f == needAffix {
				return true
			}
			r := g.data.RuleEntry(f)
			return r != nil && r.Type == rule.Type
		}
	}
	return mergeFlags(withoutFlags(parent.RemainingFlags, drop), e.ContinuationFlags)
}

// combinable reports whether rule may cross-combine with the affixes
// already applied to parent: every one of them must be marked Y.
func (g *Generator) combinable(parent *Inflection, rule *RuleEntry) bool {
	if len(parent.Applied) == 0 {
		return true
	}
	if !rule.Combinable {
		return false
	}
	for _, e := range parent.Applied {
		r := g.data.RuleEntry(e.Flag)
		if r == nil || !r.Combinable {
			return false
		}
	}
	return true
}

// checkTwofold fails when a second-level form is granted yet another rule
// of the same type that would apply to it.
func (g *Generator) checkTwofold(inf *Inflection) error {
	last := inf.Applied[len(inf.Applied)-1]
	for _, f := range last.ContinuationFlags {
		if g.data.IsTerminalFlag(f) {
			continue
		}
		rule := g.data.RuleEntry(f)
		if rule == nil || rule.Type != g.firstType {
			continue
		}
		if len(rule.ApplicableEntries(inf.Word)) > 0 {
			return &TwofoldRuleViolationError{
				Word:  inf.Stem(),
				Chain: append(inf.AppliedFlags(), f),
				Flag:  f,
			}
		}
	}
	return nil
}

// valid filters forms that still need an affix and unbalanced circumfixes.
func (g *Generator) valid(inf *Inflection) bool {
	if inf.HasFlag(g.data.Flag(OptNeedAffix)) {
		return false
	}
	circumfix := g.data.Flag(OptCircumfix)
	if circumfix == "" {
		return true
	}
	var prefix, suffix bool
	for _, e := range inf.Applied {
		if e.HasContinuationFlag(circumfix) {
			if e.Type == Prefix {
				prefix = true
			} else {
				suffix = true
			}
		}
	}
	return prefix == suffix
}

// output applies OCONV to the surface form.
func (g *Generator) output(inf *Inflection) (*Inflection, error) {
	word, err := g.data.OutputConversion().ApplySingle(inf.Word)
	if err != nil {
		return nil, err
	}
	if word == inf.Word {
		return inf, nil
	}
	c := *inf
	c.Word = word
	return &c, nil
}

// unique returns a deduplicated slice preserving order.
func unique(ss []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range ss {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
