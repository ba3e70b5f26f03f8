package hunmorph

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// DictionaryEntry is one stem of a .dic file with its flags and
// morphological fields. Entries are immutable once parsed.
type DictionaryEntry struct {
	// Stem is the word as written in the dictionary (escapes removed).
	Stem string
	// Flags are the affix and option flags attached to the stem.
	Flags []string
	// MorphFields are the tagged fields (st:, po:, is:, ...) kept verbatim.
	MorphFields []string
}

// NewDictionaryEntry builds an entry from already decoded parts.
func NewDictionaryEntry(stem string, flags, morph []string) *DictionaryEntry {
	return &DictionaryEntry{Stem: stem, Flags: slices.Clone(flags), MorphFields: slices.Clone(morph)}
}

// ParseDictionaryLine parses "stem/FLAGS\tmorph..." using the flag encoding
// and the AF/AM aliases of data. A "\/" inside the stem is a literal slash.
// Morphological fields follow the first tab; without a tab, the first
// whitespace ends the stem.
func ParseDictionaryLine(line string, data *AffixData) (*DictionaryEntry, error) {
	line = strings.TrimRight(line, "\r\n")
	head, rest := line, ""
	if i := strings.IndexByte(line, '\t'); i >= 0 {
		head, rest = line[:i], line[i+1:]
	} else if i := strings.IndexByte(line, ' '); i >= 0 {
		head, rest = line[:i], line[i+1:]
	}
	stem, flagText := splitStem(head)
	if stem == "" {
		return nil, fmt.Errorf("%w: empty stem", ErrConfiguration)
	}

	flags, err := decodeEntryFlags(flagText, data)
	if err != nil {
		return nil, err
	}
	morph, err := expandMorphFields(strings.Fields(rest), data)
	if err != nil {
		return nil, err
	}
	return &DictionaryEntry{Stem: stem, Flags: flags, MorphFields: morph}, nil
}

// splitStem cuts head at the first unescaped slash.
func splitStem(head string) (string, string) {
	for i := 0; i < len(head); i++ {
		switch head[i] {
		case '\\':
			i++
		case '/':
			return unescapeSlash(head[:i]), head[i+1:]
		}
	}
	return unescapeSlash(head), ""
}

func unescapeSlash(s string) string {
	return strings.ReplaceAll(s, `\/`, "/")
}

func decodeEntryFlags(text string, data *AffixData) ([]string, error) {
	if text == "" {
		return nil, nil
	}
	if data.HasFlagAliases() {
		if n, err := strconv.Atoi(text); err == nil {
			alias, ok := data.FlagAlias(n)
			if !ok {
				return nil, fmt.Errorf("%w: unknown AF alias %d", ErrConfiguration, n)
			}
			text = alias
		}
	}
	return data.FlagStrategy().Decode(text)
}

// expandMorphFields replaces numeric AM references by their alias fields.
func expandMorphFields(fields []string, data *AffixData) ([]string, error) {
	if !data.HasMorphAliases() {
		return fields, nil
	}
	var out []string
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			out = append(out, f)
			continue
		}
		alias, ok := data.MorphAlias(n)
		if !ok {
			return nil, fmt.Errorf("%w: unknown AM alias %d", ErrConfiguration, n)
		}
		out = append(out, strings.Fields(alias)...)
	}
	return out, nil
}

// HasFlag reports whether the entry carries flag.
func (e *DictionaryEntry) HasFlag(flag string) bool { return hasFlag(e.Flags, flag) }

// MorphField returns the value of the first field tagged tag (e.g. "po"), or "".
func (e *DictionaryEntry) MorphField(tag string) string {
	return morphField(e.MorphFields, tag)
}

// Line renders the entry in .dic syntax.
func (e *DictionaryEntry) Line(strategy FlagStrategy) string {
	return formatWordLine(strings.ReplaceAll(e.Stem, "/", `\/`), e.Flags, e.MorphFields, strategy)
}

func (e *DictionaryEntry) String() string { return e.Stem }

func morphField(fields []string, tag string) string {
	prefix := tag + ":"
	for _, f := range fields {
		if v, ok := strings.CutPrefix(f, prefix); ok {
			return v
		}
	}
	return ""
}

func formatWordLine(word string, flags, morph []string, strategy FlagStrategy) string {
	var sb strings.Builder
	sb.WriteString(word)
	if len(flags) > 0 {
		sb.WriteByte('/')
		sb.WriteString(strategy.Encode(flags))
	}
	if len(morph) > 0 {
		sb.WriteByte('\t')
		sb.WriteString(strings.Join(morph, " "))
	}
	return sb.String()
}
