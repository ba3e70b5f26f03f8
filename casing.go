package hunmorph

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// caseMapper applies the casing rules of the dictionary language (LANG),
// so that e.g. Turkish and Azerbaijani map i to İ.
type caseMapper struct {
	tag language.Tag
}

// newCaseMapper parses a Hunspell LANG value such as "tr_TR".
// Unknown or empty values fall back to language-neutral casing.
func newCaseMapper(lang string) caseMapper {
	tag, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		tag = language.Und
	}
	return caseMapper{tag: tag}
}

// capitalize upper-cases the first letter of word and keeps the rest.
// cases.Caser is stateful, so a fresh one is made per call.
func (m caseMapper) capitalize(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return word
	}
	return cases.Upper(m.tag).String(word[:size]) + word[size:]
}

// caseClash reports an upper-case letter on either side of a compound
// join. Hyphens are allowed at joins.
func caseClash(left, right string) bool {
	l, _ := utf8.DecodeLastRuneInString(left)
	r, _ := utf8.DecodeRuneInString(right)
	if l == '-' || r == '-' {
		return false
	}
	return unicode.IsUpper(l) || unicode.IsUpper(r)
}
