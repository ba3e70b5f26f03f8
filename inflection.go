package hunmorph

// Fold is the affixation level an inflection was produced at.
type Fold int

const (
	FoldBase     Fold = iota // the stem itself
	FoldOne                  // first affix level
	FoldTwo                  // second affix level, same type as FoldOne
	FoldLast                 // affix of the opposite type
	FoldCompound             // concatenation of dictionary words
)

func (f Fold) String() string {
	switch f {
	case FoldOne:
		return "one-fold"
	case FoldTwo:
		return "two-fold"
	case FoldLast:
		return "last-fold"
	case FoldCompound:
		return "compound"
	default:
		return "base"
	}
}

// Inflection is one surface form produced by the Generator.
type Inflection struct {
	// Word is the surface form (after output conversion).
	Word string
	// RemainingFlags are the flags still attached to the form.
	RemainingFlags []string
	// MorphFields accumulate in fold order, stem tag first.
	MorphFields []string
	// Parents holds one dictionary entry per compound component, left to
	// right. It is empty for affixed forms.
	Parents []*DictionaryEntry
	// Applied lists the affix entries applied so far, in application order.
	Applied []*AffixEntry
	// Fold is the level the form was produced at.
	Fold Fold

	stem string
}

// derive returns a new inflection produced from i by applying e.
// Derived forms always carry a stem tag first.
func (i *Inflection) derive(word string, flags []string, e *AffixEntry, fold Fold) *Inflection {
	morph := make([]string, 0, len(i.MorphFields)+len(e.MorphFields)+1)
	if morphField(i.MorphFields, "st") == "" {
		morph = append(morph, "st:"+i.stem)
	}
	morph = append(morph, i.MorphFields...)
	morph = append(morph, e.MorphFields...)
	applied := make([]*AffixEntry, 0, len(i.Applied)+1)
	applied = append(applied, i.Applied...)
	applied = append(applied, e)
	return &Inflection{
		Word:           word,
		RemainingFlags: flags,
		MorphFields:    morph,
		Parents:        i.Parents,
		Applied:        applied,
		Fold:           fold,
		stem:           i.stem,
	}
}

// Stem returns the (input-converted) stem the form was generated from.
func (i *Inflection) Stem() string { return i.stem }

// HasFlag reports whether flag is among the remaining flags.
func (i *Inflection) HasFlag(flag string) bool { return hasFlag(i.RemainingFlags, flag) }

// IsCompound reports whether the form joins several dictionary words.
func (i *Inflection) IsCompound() bool { return len(i.Parents) > 1 }

// AppliedFlags returns the flags of the applied affix entries, in order.
func (i *Inflection) AppliedFlags() []string {
	out := make([]string, len(i.Applied))
	for k, e := range i.Applied {
		out[k] = e.Flag
	}
	return out
}

// Line renders the form in .dic syntax.
func (i *Inflection) Line(strategy FlagStrategy) string {
	return formatWordLine(i.Word, i.RemainingFlags, i.MorphFields, strategy)
}

func (i *Inflection) String() string { return i.Word }
