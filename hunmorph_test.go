package hunmorph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testData(t *testing.T, aff string) *AffixData {
	t.Helper()
	data, err := LoadAffix(strings.NewReader(aff))
	require.NoError(t, err)
	return data
}

func testEntries(t *testing.T, data *AffixData, lines ...string) []*DictionaryEntry {
	t.Helper()
	out := make([]*DictionaryEntry, len(lines))
	for i, l := range lines {
		e, err := ParseDictionaryLine(l, data)
		require.NoError(t, err, l)
		out[i] = e
	}
	return out
}

func testGenerator(t *testing.T, aff string) *Generator {
	t.Helper()
	return NewGenerator(testData(t, aff))
}

// words returns the surface forms of inflections, in order.
func words(infls []*Inflection) []string {
	out := make([]string, len(infls))
	for k, i := range infls {
		out[k] = i.Word
	}
	return out
}
