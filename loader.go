package hunmorph

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadAffixFile reads a Hunspell .aff file.
func LoadAffixFile(path string) (*AffixData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return loadAffix(f, path)
}

// LoadAffix reads .aff content from r. The text is decoded according to
// its SET option; without one, valid UTF-8 is read as UTF-8 and anything
// else as ISO8859-1.
func LoadAffix(r io.Reader) (*AffixData, error) {
	return loadAffix(r, "")
}

func loadAffix(r io.Reader, file string) (*AffixData, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read affix file: %w", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)
	charset := detectCharset(raw)
	text, err := decodeCharset(raw, charset)
	if err != nil {
		return nil, err
	}

	p := &affixParser{file: file, lines: splitLines(text), b: NewAffixDataBuilder()}
	if err := p.b.Set(StringOption{Name: OptCharset, Value: charset}); err != nil {
		return nil, err
	}
	if err := p.parse(); err != nil {
		return nil, err
	}
	data, err := p.b.Build()
	if err != nil {
		return nil, fmt.Errorf("build affix data: %w", err)
	}
	return data, nil
}

// LoadDictionaryFile reads a Hunspell .dic file using data's charset and
// flag encoding.
func LoadDictionaryFile(path string, data *AffixData) ([]*DictionaryEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return loadDictionary(f, path, data)
}

// LoadDictionary reads .dic content from r. The leading word count line is
// optional; blank lines are skipped.
func LoadDictionary(r io.Reader, data *AffixData) ([]*DictionaryEntry, error) {
	return loadDictionary(r, "", data)
}

func loadDictionary(r io.Reader, file string, data *AffixData) ([]*DictionaryEntry, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	text, err := decodeCharset(bytes.TrimPrefix(raw, utf8BOM), data.Charset())
	if err != nil {
		return nil, err
	}

	var entries []*DictionaryEntry
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if n == 1 {
			if _, err := strconv.Atoi(strings.TrimSpace(line)); err == nil {
				continue
			}
		}
		e, err := ParseDictionaryLine(line, data)
		if err != nil {
			return nil, &LineError{File: file, Line: n, Text: line, Err: err}
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan dictionary: %w", err)
	}
	return entries, nil
}

// detectCharset finds the SET option before the text is decoded.
func detectCharset(raw []byte) string {
	for _, line := range bytes.Split(raw, []byte("\n")) {
		fields := bytes.Fields(line)
		if len(fields) >= 2 && string(fields[0]) == "SET" {
			return string(fields[1])
		}
	}
	if utf8.Valid(raw) {
		return "UTF-8"
	}
	return "ISO8859-1"
}

// decodeCharset converts raw from a Hunspell SET name to UTF-8.
func decodeCharset(raw []byte, charset string) (string, error) {
	name := htmlCharsetName(charset)
	if name == "utf-8" {
		return string(raw), nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return "", fmt.Errorf("%w: unsupported SET %q", ErrConfiguration, charset)
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", charset, err)
	}
	return string(out), nil
}

// htmlCharsetName maps Hunspell charset spellings (ISO8859-2,
// microsoft-cp1251, TIS620-2533) to WHATWG labels.
func htmlCharsetName(charset string) string {
	c := strings.ToLower(strings.TrimSpace(charset))
	switch {
	case c == "utf-8" || c == "utf8":
		return "utf-8"
	case strings.HasPrefix(c, "iso8859-"):
		return "iso-8859-" + strings.TrimPrefix(c, "iso8859-")
	case strings.HasPrefix(c, "microsoft-cp"):
		return "windows-" + strings.TrimPrefix(c, "microsoft-cp")
	case strings.HasPrefix(c, "tis620"):
		return "tis-620"
	}
	return c
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}
	return lines
}

// affixParser walks the lines of one .aff file.
type affixParser struct {
	file  string
	lines []string
	pos   int // index of the next line to read
	b     *AffixDataBuilder

	flagAliases  []string
	morphAliases []string
}

func (p *affixParser) lineError(idx int, err error) error {
	return &LineError{File: p.file, Line: idx + 1, Text: p.lines[idx], Err: err}
}

func (p *affixParser) parse() error {
	for p.pos < len(p.lines) {
		idx := p.pos
		p.pos++
		fields := strings.Fields(p.lines[idx])
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if err := p.option(idx, fields); err != nil {
			var lineErr *LineError
			if errors.As(err, &lineErr) {
				return err
			}
			return p.lineError(idx, err)
		}
	}
	return nil
}

func (p *affixParser) option(idx int, fields []string) error {
	key := OptionKey(fields[0])
	if key == "PSEUDOROOT" {
		key = OptNeedAffix
	}
	switch {
	case key == OptCharset:
		return nil
	case key == OptLanguage:
		return p.b.Set(StringOption{Name: key, Value: argument(fields)})
	case key == OptFlagType:
		t, err := ParseFlagType(argument(fields))
		if err != nil {
			return err
		}
		return p.b.Set(FlagTypeOption{Type: t})
	case slices.Contains(boolOptions, key):
		return p.b.Set(BoolOption{Name: key})
	case slices.Contains(flagOptions, key):
		flag, err := p.singleFlag(argument(fields))
		if err != nil {
			return err
		}
		return p.b.Set(FlagOption{Name: key, Flag: flag})
	case key == OptCompoundMin || key == OptCompoundWordMax:
		n, err := strconv.Atoi(argument(fields))
		if err != nil {
			return fmt.Errorf("%w: %s needs a number", ErrConfiguration, key)
		}
		return p.b.Set(IntOption{Name: key, Value: n})
	case key == OptRep || key == OptInputConv || key == OptOutputConv:
		return p.table(idx, key, fields)
	case key == OptCompoundRule:
		rows, err := p.block(idx, key, fields)
		if err != nil {
			return err
		}
		var rules []string
		for _, row := range rows {
			rules = append(rules, argument(row))
		}
		return p.b.Set(CompoundRuleOption{Rules: rules})
	case key == OptFlagAlias || key == OptMorphAlias:
		rows, err := p.block(idx, key, fields)
		if err != nil {
			return err
		}
		values := make([]string, len(rows))
		for i, row := range rows {
			if key == OptFlagAlias {
				values[i] = row[1]
			} else {
				values[i] = strings.Join(row[1:], " ")
			}
		}
		if key == OptFlagAlias {
			p.flagAliases = append(p.flagAliases, values...)
		} else {
			p.morphAliases = append(p.morphAliases, values...)
		}
		return p.b.Set(AliasOption{Name: key, Values: values})
	case key == OptSuffix || key == OptPrefix:
		return p.rule(idx, key, fields)
	}
	// TRY, KEY, WORDCHARS, MAP, PHONE, BREAK and the like do not affect
	// generation.
	return nil
}

func argument(fields []string) string {
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

func (p *affixParser) singleFlag(text string) (string, error) {
	flags, err := p.b.FlagStrategy().Decode(text)
	if err != nil {
		return "", err
	}
	if len(flags) != 1 {
		return "", &MalformedFlagError{Encoding: p.b.FlagStrategy().Type(), Text: text, Reason: "exactly one flag expected"}
	}
	return flags[0], nil
}

// block reads the rows of a counted table whose header is at idx.
func (p *affixParser) block(idx int, key OptionKey, header []string) ([][]string, error) {
	n, err := strconv.Atoi(argument(header))
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%w: %s header needs a row count", ErrConfiguration, key)
	}
	rows := make([][]string, 0, n)
	for len(rows) < n {
		if p.pos >= len(p.lines) {
			return nil, p.lineError(idx, fmt.Errorf("%w: %s expects %d rows, found %d", ErrConfiguration, key, n, len(rows)))
		}
		rowIdx := p.pos
		p.pos++
		fields := strings.Fields(p.lines[rowIdx])
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if OptionKey(fields[0]) != key || len(fields) < 2 {
			return nil, p.lineError(rowIdx, fmt.Errorf("%w: expected a %s row", ErrConfiguration, key))
		}
		rows = append(rows, fields)
	}
	return rows, nil
}

func (p *affixParser) table(idx int, key OptionKey, header []string) error {
	rows, err := p.block(idx, key, header)
	if err != nil {
		return err
	}
	entries := make([]ConversionEntry, len(rows))
	for i, row := range rows {
		entries[i] = ConversionEntry{Pattern: row[1]}
		if len(row) > 2 {
			entries[i].Replacement = row[2]
		}
	}
	t, err := NewConversionTable(string(key), entries...)
	if err != nil {
		return err
	}
	return p.b.Set(TableOption{Table: t})
}

// rule reads a SFX/PFX header "SFX A Y 3" and its entry rows.
func (p *affixParser) rule(idx int, key OptionKey, header []string) error {
	if len(header) < 4 {
		return fmt.Errorf("%w: %s header needs flag, Y/N and count", ErrConfiguration, key)
	}
	t := Suffix
	if key == OptPrefix {
		t = Prefix
	}
	flag, err := p.singleFlag(header[1])
	if err != nil {
		return err
	}
	var combinable bool
	switch header[2] {
	case "Y":
		combinable = true
	case "N":
	default:
		return fmt.Errorf("%w: cross product marker must be Y or N, not %q", ErrConfiguration, header[2])
	}
	rows, err := p.block(idx, key, []string{string(key), header[3]})
	if err != nil {
		return err
	}

	var entries []*AffixEntry
	for _, row := range rows {
		if len(row) < 4 || row[1] != header[1] {
			return p.lineError(idx, fmt.Errorf("%w: malformed %s %s entry %q", ErrConfiguration, key, header[1], strings.Join(row, " ")))
		}
		add, contText, _ := strings.Cut(row[3], "/")
		continuation, err := p.continuation(contText)
		if err != nil {
			return err
		}
		condition := "."
		if len(row) > 4 {
			condition = row[4]
		}
		var morph []string
		if len(row) > 5 {
			morph = p.expandMorph(row[5:])
		}
		e, err := NewAffixEntry(t, flag, row[2], add, condition, continuation, morph)
		if err != nil {
			return err
		}
		entries = append(entries, e)
	}
	return p.b.Set(RuleOption{Rule: NewRuleEntry(t, flag, combinable, entries...)})
}

func (p *affixParser) continuation(text string) ([]string, error) {
	if text == "" {
		return nil, nil
	}
	if len(p.flagAliases) > 0 {
		if n, err := strconv.Atoi(text); err == nil {
			if n < 1 || n > len(p.flagAliases) {
				return nil, fmt.Errorf("%w: unknown AF alias %d", ErrConfiguration, n)
			}
			text = p.flagAliases[n-1]
		}
	}
	return p.b.FlagStrategy().Decode(text)
}

func (p *affixParser) expandMorph(fields []string) []string {
	if len(p.morphAliases) == 0 {
		return fields
	}
	var out []string
	for _, f := range fields {
		if n, err := strconv.Atoi(f); err == nil && n >= 1 && n <= len(p.morphAliases) {
			out = append(out, strings.Fields(p.morphAliases[n-1])...)
			continue
		}
		out = append(out, f)
	}
	return out
}
