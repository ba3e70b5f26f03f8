package hunmorph

import (
	"fmt"
	"slices"
)

// OptionKey is the keyword of an affix-file option.
type OptionKey string

// Boolean options.
const (
	OptComplexPrefixes     OptionKey = "COMPLEXPREFIXES"
	OptFullStrip           OptionKey = "FULLSTRIP"
	OptCheckCompoundDup    OptionKey = "CHECKCOMPOUNDDUP"
	OptCheckCompoundRep    OptionKey = "CHECKCOMPOUNDREP"
	OptCheckCompoundCase   OptionKey = "CHECKCOMPOUNDCASE"
	OptCheckCompoundTriple OptionKey = "CHECKCOMPOUNDTRIPLE"
	OptSimplifiedTriple    OptionKey = "SIMPLIFIEDTRIPLE"
)

// Single-flag options. A flag may fill at most one of these slots.
const (
	OptCompoundFlag       OptionKey = "COMPOUNDFLAG"
	OptCompoundBegin      OptionKey = "COMPOUNDBEGIN"
	OptCompoundMiddle     OptionKey = "COMPOUNDMIDDLE"
	OptCompoundEnd        OptionKey = "COMPOUNDEND"
	OptCompoundRoot       OptionKey = "COMPOUNDROOT"
	OptCompoundPermitFlag OptionKey = "COMPOUNDPERMITFLAG"
	OptCompoundForbidFlag OptionKey = "COMPOUNDFORBIDFLAG"
	OptCircumfix          OptionKey = "CIRCUMFIX"
	OptForbiddenWord      OptionKey = "FORBIDDENWORD"
	OptKeepCase           OptionKey = "KEEPCASE"
	OptNeedAffix          OptionKey = "NEEDAFFIX"
	OptNoSuggest          OptionKey = "NOSUGGEST"
	OptOnlyInCompound     OptionKey = "ONLYINCOMPOUND"
	OptForceUCase         OptionKey = "FORCEUCASE"
	OptSubstandard        OptionKey = "SUBSTANDARD"
	OptWarn               OptionKey = "WARN"
)

// Valued options.
const (
	OptCharset         OptionKey = "SET"
	OptLanguage        OptionKey = "LANG"
	OptFlagType        OptionKey = "FLAG"
	OptCompoundMin     OptionKey = "COMPOUNDMIN"
	OptCompoundWordMax OptionKey = "COMPOUNDWORDMAX"
	OptCompoundRule    OptionKey = "COMPOUNDRULE"
	OptRep             OptionKey = "REP"
	OptInputConv       OptionKey = "ICONV"
	OptOutputConv      OptionKey = "OCONV"
	OptFlagAlias       OptionKey = "AF"
	OptMorphAlias      OptionKey = "AM"
	OptSuffix          OptionKey = "SFX"
	OptPrefix          OptionKey = "PFX"
)

var boolOptions = []OptionKey{
	OptComplexPrefixes, OptFullStrip, OptCheckCompoundDup, OptCheckCompoundRep,
	OptCheckCompoundCase, OptCheckCompoundTriple, OptSimplifiedTriple,
}

var flagOptions = []OptionKey{
	OptCompoundFlag, OptCompoundBegin, OptCompoundMiddle, OptCompoundEnd, OptCompoundRoot,
	OptCompoundPermitFlag, OptCompoundForbidFlag, OptCircumfix, OptForbiddenWord,
	OptKeepCase, OptNeedAffix, OptNoSuggest, OptOnlyInCompound, OptForceUCase,
	OptSubstandard, OptWarn,
}

// defaultCompoundMin is Hunspell's minimum compound component length.
const defaultCompoundMin = 3

// AffixOption is one parsed affix-file option. The set of variants is
// closed: BoolOption, IntOption, StringOption, FlagTypeOption, FlagOption,
// TableOption, CompoundRuleOption, AliasOption and RuleOption.
type AffixOption interface {
	Key() OptionKey
	affixOption()
}

// BoolOption switches on a boolean option such as FULLSTRIP.
type BoolOption struct{ Name OptionKey }

// IntOption sets a numeric option such as COMPOUNDMIN.
type IntOption struct {
	Name  OptionKey
	Value int
}

// StringOption sets SET or LANG.
type StringOption struct {
	Name  OptionKey
	Value string
}

// FlagTypeOption sets the flag encoding (FLAG).
type FlagTypeOption struct{ Type FlagType }

// FlagOption assigns a flag to a single-flag option such as NEEDAFFIX.
type FlagOption struct {
	Name OptionKey
	Flag string
}

// TableOption installs a REP, ICONV or OCONV table.
type TableOption struct{ Table *ConversionTable }

// CompoundRuleOption adds COMPOUNDRULE patterns, in declaration order.
type CompoundRuleOption struct{ Rules []string }

// AliasOption adds AF (flag set) or AM (morphology) aliases; alias n is Values[n-1].
type AliasOption struct {
	Name   OptionKey
	Values []string
}

// RuleOption registers a SFX or PFX rule.
type RuleOption struct{ Rule *RuleEntry }

func (o BoolOption) Key() OptionKey         { return o.Name }
func (o IntOption) Key() OptionKey          { return o.Name }
func (o StringOption) Key() OptionKey       { return o.Name }
func (FlagTypeOption) Key() OptionKey       { return OptFlagType }
func (o FlagOption) Key() OptionKey         { return o.Name }
func (o TableOption) Key() OptionKey        { return OptionKey(o.Table.Option()) }
func (CompoundRuleOption) Key() OptionKey   { return OptCompoundRule }
func (o AliasOption) Key() OptionKey        { return o.Name }
func (o RuleOption) Key() OptionKey         { return OptionKey(o.Rule.Type.String()) }
func (BoolOption) affixOption()             {}
func (IntOption) affixOption()              {}
func (StringOption) affixOption()           {}
func (FlagTypeOption) affixOption()         {}
func (FlagOption) affixOption()             {}
func (TableOption) affixOption()            {}
func (CompoundRuleOption) affixOption()     {}
func (AliasOption) affixOption()            {}
func (RuleOption) affixOption()             {}

// AffixDataBuilder collects options while an affix file is parsed.
// Build freezes the result into an AffixData.
type AffixDataBuilder struct {
	flagType      FlagType
	charset       string
	language      string
	bools         map[OptionKey]bool
	ints          map[OptionKey]int
	flags         map[OptionKey]string
	tables        map[OptionKey]*ConversionTable
	compoundRules []string
	flagAliases   []string
	morphAliases  []string
	rules         map[string]*RuleEntry
	ruleOrder     []string
}

// NewAffixDataBuilder returns an empty builder using ASCII flags.
func NewAffixDataBuilder() *AffixDataBuilder {
	return &AffixDataBuilder{
		bools:  make(map[OptionKey]bool),
		ints:   make(map[OptionKey]int),
		flags:  make(map[OptionKey]string),
		tables: make(map[OptionKey]*ConversionTable),
		rules:  make(map[string]*RuleEntry),
	}
}

// FlagStrategy returns the strategy for the flag encoding set so far.
// The loader decodes flags with it while the file is still being read.
func (b *AffixDataBuilder) FlagStrategy() FlagStrategy {
	return NewFlagStrategy(b.flagType)
}

// Set records one option. Rules and single-flag slots may not be redefined.
func (b *AffixDataBuilder) Set(opt AffixOption) error {
	switch o := opt.(type) {
	case BoolOption:
		if !slices.Contains(boolOptions, o.Name) {
			return fmt.Errorf("%w: %s is not a boolean option", ErrConfiguration, o.Name)
		}
		b.bools[o.Name] = true
	case IntOption:
		if o.Name != OptCompoundMin && o.Name != OptCompoundWordMax {
			return fmt.Errorf("%w: %s is not a numeric option", ErrConfiguration, o.Name)
		}
		if o.Value < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrConfiguration, o.Name)
		}
		b.ints[o.Name] = o.Value
	case StringOption:
		switch o.Name {
		case OptCharset:
			b.charset = o.Value
		case OptLanguage:
			b.language = o.Value
		default:
			return fmt.Errorf("%w: %s is not a text option", ErrConfiguration, o.Name)
		}
	case FlagTypeOption:
		b.flagType = o.Type
	case FlagOption:
		if !slices.Contains(flagOptions, o.Name) {
			return fmt.Errorf("%w: %s is not a flag option", ErrConfiguration, o.Name)
		}
		if o.Flag == "" {
			return fmt.Errorf("%w: %s needs a flag", ErrConfiguration, o.Name)
		}
		if prev, ok := b.flags[o.Name]; ok && prev != o.Flag {
			return fmt.Errorf("%w: %s already set to %q", ErrConfiguration, o.Name, prev)
		}
		b.flags[o.Name] = o.Flag
	case TableOption:
		key := o.Key()
		if key != OptRep && key != OptInputConv && key != OptOutputConv {
			return fmt.Errorf("%w: %s is not a conversion table", ErrConfiguration, key)
		}
		if _, ok := b.tables[key]; ok {
			return fmt.Errorf("%w: %s table defined twice", ErrConfiguration, key)
		}
		b.tables[key] = o.Table
	case CompoundRuleOption:
		b.compoundRules = append(b.compoundRules, o.Rules...)
	case AliasOption:
		switch o.Name {
		case OptFlagAlias:
			b.flagAliases = append(b.flagAliases, o.Values...)
		case OptMorphAlias:
			b.morphAliases = append(b.morphAliases, o.Values...)
		default:
			return fmt.Errorf("%w: %s is not an alias table", ErrConfiguration, o.Name)
		}
	case RuleOption:
		flag := o.Rule.Flag
		if prev, ok := b.rules[flag]; ok {
			return &RepeatedFlagError{Flag: flag, Options: []string{prev.Type.String(), o.Rule.Type.String()}}
		}
		b.rules[flag] = o.Rule
		b.ruleOrder = append(b.ruleOrder, flag)
	default:
		return fmt.Errorf("%w: unsupported option %T", ErrConfiguration, opt)
	}
	return nil
}

// Build verifies the collected options and freezes them.
func (b *AffixDataBuilder) Build() (*AffixData, error) {
	if err := b.verify(); err != nil {
		return nil, err
	}
	d := &AffixData{
		strategy:      NewFlagStrategy(b.flagType),
		charset:       b.charset,
		language:      b.language,
		bools:         make(map[OptionKey]bool, len(b.bools)),
		flags:         make(map[OptionKey]string, len(b.flags)),
		compoundMin:   defaultCompoundMin,
		compoundRules: slices.Clone(b.compoundRules),
		flagAliases:   slices.Clone(b.flagAliases),
		morphAliases:  slices.Clone(b.morphAliases),
		rep:           b.tables[OptRep],
		iconv:         b.tables[OptInputConv],
		oconv:         b.tables[OptOutputConv],
		rules:         make(map[string]*RuleEntry, len(b.rules)),
		ruleOrder:     slices.Clone(b.ruleOrder),
		terminal:      make(map[string]bool, len(b.flags)),
	}
	if d.charset == "" {
		d.charset = "ISO8859-1"
	}
	for k, v := range b.bools {
		d.bools[k] = v
	}
	for k, v := range b.flags {
		d.flags[k] = v
		d.terminal[v] = true
	}
	for k, v := range b.rules {
		d.rules[k] = v
	}
	if v, ok := b.ints[OptCompoundMin]; ok {
		d.compoundMin = max(v, 1)
	}
	d.compoundWordMax = b.ints[OptCompoundWordMax]
	return d, nil
}

// verify rejects a flag that fills two single-flag slots, or a slot and a rule.
func (b *AffixDataBuilder) verify() error {
	owners := make(map[string][]string)
	for _, key := range flagOptions {
		if f, ok := b.flags[key]; ok {
			owners[f] = append(owners[f], string(key))
		}
	}
	for _, flag := range b.ruleOrder {
		if _, ok := owners[flag]; ok {
			owners[flag] = append(owners[flag], b.rules[flag].Type.String())
		}
	}
	for _, key := range flagOptions {
		f := b.flags[key]
		if len(owners[f]) > 1 {
			return &RepeatedFlagError{Flag: f, Options: owners[f]}
		}
	}
	return nil
}

// AffixData is the read-only model of one affix file. It is safe for
// concurrent use by any number of generators.
type AffixData struct {
	strategy        FlagStrategy
	charset         string
	language        string
	bools           map[OptionKey]bool
	flags           map[OptionKey]string
	compoundMin     int
	compoundWordMax int
	compoundRules   []string
	flagAliases     []string
	morphAliases    []string
	rep             *ConversionTable
	iconv           *ConversionTable
	oconv           *ConversionTable
	rules           map[string]*RuleEntry
	ruleOrder       []string
	// terminal holds the flags of single-flag options: they name no rule
	// and never lead to further affixation.
	terminal map[string]bool
}

// FlagStrategy returns the codec for this file's flag encoding.
func (d *AffixData) FlagStrategy() FlagStrategy { return d.strategy }

// Charset returns the SET value (ISO8859-1 when absent, as in Hunspell).
func (d *AffixData) Charset() string { return d.charset }

// Language returns the LANG value, or "".
func (d *AffixData) Language() string { return d.language }

// Bool reports whether a boolean option is on.
func (d *AffixData) Bool(key OptionKey) bool { return d.bools[key] }

// Flag returns the flag assigned to a single-flag option, or "".
func (d *AffixData) Flag(key OptionKey) string { return d.flags[key] }

// IsComplexPrefixes reports COMPLEXPREFIXES (two prefix levels, one suffix level).
func (d *AffixData) IsComplexPrefixes() bool { return d.bools[OptComplexPrefixes] }

// IsFullStrip reports FULLSTRIP.
func (d *AffixData) IsFullStrip() bool { return d.bools[OptFullStrip] }

// CompoundMin is the minimum length of a compound component, in characters.
func (d *AffixData) CompoundMin() int { return d.compoundMin }

// CompoundWordMax is the maximum number of compound components, 0 if unlimited.
func (d *AffixData) CompoundWordMax() int { return d.compoundWordMax }

// CompoundRules returns the COMPOUNDRULE patterns in declaration order.
func (d *AffixData) CompoundRules() []string { return slices.Clone(d.compoundRules) }

// RepTable returns the REP table, or nil.
func (d *AffixData) RepTable() *ConversionTable { return d.rep }

// InputConversion returns the ICONV table, or nil.
func (d *AffixData) InputConversion() *ConversionTable { return d.iconv }

// OutputConversion returns the OCONV table, or nil.
func (d *AffixData) OutputConversion() *ConversionTable { return d.oconv }

// RuleEntry returns the rule named by flag, or nil.
func (d *AffixData) RuleEntry(flag string) *RuleEntry { return d.rules[flag] }

// RuleEntries returns all rules in declaration order.
func (d *AffixData) RuleEntries() []*RuleEntry {
	out := make([]*RuleEntry, 0, len(d.ruleOrder))
	for _, f := range d.ruleOrder {
		out = append(out, d.rules[f])
	}
	return out
}

// IsTerminalFlag reports whether flag belongs to a single-flag option.
func (d *AffixData) IsTerminalFlag(flag string) bool { return d.terminal[flag] }

// IsAffixFlag reports whether flag names a SFX or PFX rule.
func (d *AffixData) IsAffixFlag(flag string) bool {
	_, ok := d.rules[flag]
	return ok
}

// FlagAlias resolves AF alias n (1-based).
func (d *AffixData) FlagAlias(n int) (string, bool) {
	if n < 1 || n > len(d.flagAliases) {
		return "", false
	}
	return d.flagAliases[n-1], true
}

// MorphAlias resolves AM alias n (1-based).
func (d *AffixData) MorphAlias(n int) (string, bool) {
	if n < 1 || n > len(d.morphAliases) {
		return "", false
	}
	return d.morphAliases[n-1], true
}

// HasFlagAliases reports whether dictionary flags are AF references.
func (d *AffixData) HasFlagAliases() bool { return len(d.flagAliases) > 0 }

// HasMorphAliases reports whether morphological fields may be AM references.
func (d *AffixData) HasMorphAliases() bool { return len(d.morphAliases) > 0 }
