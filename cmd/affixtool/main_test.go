package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cours-de-latin/hunmorph"
	"github.com/cours-de-latin/hunmorph/internal/config"
)

const testAffix = `COMPOUNDFLAG C
COMPOUNDMIN 1

SFX A Y 1
SFX A 0 s .

PFX B Y 1
PFX B 0 un .

SFX F N 1
SFX F a b a
`

var testConfig = config.GeneratorConfig{
	Workers:               2,
	CompoundLimit:         5,
	CompoundMaxLimit:      10,
	CompoundMaxComponents: 2,
}

func load(t *testing.T, dic string) (*hunmorph.AffixData, []*hunmorph.DictionaryEntry) {
	t.Helper()
	data, err := hunmorph.LoadAffix(strings.NewReader(testAffix))
	require.NoError(t, err)
	entries, err := hunmorph.LoadDictionary(strings.NewReader(dic), data)
	require.NoError(t, err)
	return data, entries
}

func lines(buf *bytes.Buffer) []string {
	return strings.Split(strings.TrimSpace(buf.String()), "\n")
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestRunExpandSkipsFailingEntries(t *testing.T) {
	data, entries := load(t, "foo/AB\na/F\nbar\n")

	var buf bytes.Buffer
	err := run(context.Background(), data, entries, testConfig, options{mode: "expand"}, &buf, discard())
	require.NoError(t, err)

	got := lines(&buf)
	require.Len(t, got, 5)
	assert.Equal(t, "foo/AB", got[0])
	assert.True(t, strings.HasPrefix(got[1], "foos/B\t"), got[1])
	assert.True(t, strings.HasPrefix(got[2], "unfoo/A\t"), got[2])
	assert.True(t, strings.HasPrefix(got[3], "unfoos\t"), got[3])
	assert.Equal(t, "bar", got[4])
}

func TestRunCompound(t *testing.T) {
	data, entries := load(t, "foo/C\nbar/C\n")

	var buf bytes.Buffer
	opts := options{mode: "compound", compound: "flag", limit: 3}
	require.NoError(t, run(context.Background(), data, entries, testConfig, opts, &buf, discard()))

	var words []string
	for _, l := range lines(&buf) {
		word, _, _ := strings.Cut(l, "\t")
		words = append(words, word)
	}
	assert.Equal(t, []string{"foofoo", "foobar", "barfoo"}, words)
}

func TestRunReduce(t *testing.T) {
	data, entries := load(t, "cat/A\ndog/A\n")

	var buf bytes.Buffer
	require.NoError(t, run(context.Background(), data, entries, testConfig, options{mode: "reduce", flag: "A"}, &buf, discard()))

	got := lines(&buf)
	assert.Equal(t, "SFX A Y 1", got[0])
	assert.Len(t, got, 2)
}

func TestRunErrors(t *testing.T) {
	data, entries := load(t, "foo/A\n")

	tests := []struct {
		name string
		opts options
	}{
		{"unknown mode", options{mode: "nope"}},
		{"reduce without flag", options{mode: "reduce"}},
		{"reduce unknown flag", options{mode: "reduce", flag: "Z"}},
		{"unknown compound mode", options{mode: "compound", compound: "nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			assert.Error(t, run(context.Background(), data, entries, testConfig, tt.opts, &buf, discard()))
		})
	}
}
