package hunmorph

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors, one per failure class.
var (
	// ErrConfiguration marks a fatal problem in the affix data itself.
	ErrConfiguration = errors.New("configuration error")
	// ErrRuleApplication marks a failure while generating forms for one input.
	// Shared state is left untouched; callers may continue with the next entry.
	ErrRuleApplication = errors.New("rule application error")
	// ErrReduction marks a failure while compacting rules.
	ErrReduction = errors.New("reduction error")
)

// MalformedFlagError is returned when a flag string cannot be decoded
// with the active flag encoding.
type MalformedFlagError struct {
	Encoding FlagType
	Text     string
	Reason   string
}

func (e *MalformedFlagError) Error() string {
	return fmt.Sprintf("malformed %s flag %q: %s", e.Encoding, e.Text, e.Reason)
}

func (e *MalformedFlagError) Unwrap() error { return ErrConfiguration }

// RepeatedFlagError is returned by Build when one flag is assigned to two
// options that must use distinct flags.
type RepeatedFlagError struct {
	Flag    string
	Options []string
}

func (e *RepeatedFlagError) Error() string {
	return fmt.Sprintf("flag %q is used by more than one option: %s", e.Flag, strings.Join(e.Options, ", "))
}

func (e *RepeatedFlagError) Unwrap() error { return ErrConfiguration }

// InvalidConditionError is returned for a condition outside the supported
// regex subset.
type InvalidConditionError struct {
	Condition string
	Reason    string
}

func (e *InvalidConditionError) Error() string {
	return fmt.Sprintf("invalid condition %q: %s", e.Condition, e.Reason)
}

func (e *InvalidConditionError) Unwrap() error { return ErrConfiguration }

// ConversionTableError is returned for a malformed REP/ICONV/OCONV line.
type ConversionTableError struct {
	Table   string
	Pattern string
	Reason  string
}

func (e *ConversionTableError) Error() string {
	return fmt.Sprintf("bad %s entry %q: %s", e.Table, e.Pattern, e.Reason)
}

func (e *ConversionTableError) Unwrap() error { return ErrConfiguration }

// LineError locates a configuration error inside a source file.
type LineError struct {
	File string
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d: %v (line %q)", e.File, e.Line, e.Err, e.Text)
	}
	return fmt.Sprintf("line %d: %v (line %q)", e.Line, e.Err, e.Text)
}

// Unwrap exposes both the cause and the configuration class.
func (e *LineError) Unwrap() []error { return []error{e.Err, ErrConfiguration} }

// TwofoldRuleViolationError is returned when a second-level affix still
// grants a flag of its own type, which would need a third level.
type TwofoldRuleViolationError struct {
	Word  string
	Chain []string
	Flag  string
}

func (e *TwofoldRuleViolationError) Error() string {
	return fmt.Sprintf("twofold rule violated for %q: flag chain %s still grants same-type rule %q",
		e.Word, strings.Join(e.Chain, " > "), e.Flag)
}

func (e *TwofoldRuleViolationError) Unwrap() error { return ErrRuleApplication }

// CannotStripFullWordError is returned when an entry would strip the whole
// word and FULLSTRIP is not enabled.
type CannotStripFullWordError struct {
	Word string
	Flag string
}

func (e *CannotStripFullWordError) Error() string {
	return fmt.Sprintf("cannot strip full word %q with rule %q without FULLSTRIP", e.Word, e.Flag)
}

func (e *CannotStripFullWordError) Unwrap() error { return ErrRuleApplication }

// AmbiguousConversionError is returned when a single-result conversion
// finds more than one candidate.
type AmbiguousConversionError struct {
	Table      string
	Word       string
	Candidates []string
}

func (e *AmbiguousConversionError) Error() string {
	return fmt.Sprintf("ambiguous %s conversion of %q: %s", e.Table, e.Word, strings.Join(e.Candidates, ", "))
}

func (e *AmbiguousConversionError) Unwrap() error { return ErrRuleApplication }

// MissingRuleComponentError is returned when a required COMPOUNDRULE flag
// has no candidate word.
type MissingRuleComponentError struct {
	Rule string
	Flag string
}

func (e *MissingRuleComponentError) Error() string {
	return fmt.Sprintf("compound rule %q: no word carries required flag %q", e.Rule, e.Flag)
}

func (e *MissingRuleComponentError) Unwrap() error { return ErrRuleApplication }

// ReductionError describes a reduction input or result that cannot be trusted.
type ReductionError struct {
	Reason string
}

func (e *ReductionError) Error() string { return "reduce: " + e.Reason }

func (e *ReductionError) Unwrap() error { return ErrReduction }
