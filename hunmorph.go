// Package hunmorph generates the inflected and compound forms of
// Hunspell dictionary entries and reduces observed affix applications back
// to a minimal set of condition-guarded SFX/PFX rules.
//
// Affix data is loaded with LoadAffix, dictionary entries with
// LoadDictionary or ParseDictionaryLine. A Generator built over the affix
// data is read-only and may be shared between goroutines.
package hunmorph

// hardComponentCap bounds the number of compound components whatever
// COMPOUNDWORDMAX and the caller ask for.
const hardComponentCap = 8

// Generator produces inflections and compounds from one AffixData.
type Generator struct {
	// data is the frozen affix model; never modified.
	data *AffixData

	// casing follows the LANG option.
	casing caseMapper

	// firstType is the affix type of the first fold: Suffix, or Prefix
	// under COMPLEXPREFIXES.
	firstType AffixType
}

// NewGenerator returns a Generator over data.
func NewGenerator(data *AffixData) *Generator {
	g := &Generator{
		data:      data,
		casing:    newCaseMapper(data.Language()),
		firstType: Suffix,
	}
	if data.IsComplexPrefixes() {
		g.firstType = Prefix
	}
	return g
}

// Data returns the affix data the generator works on.
func (g *Generator) Data() *AffixData { return g.data }
