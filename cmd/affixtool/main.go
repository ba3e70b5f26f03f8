// Command affixtool runs the generator over a Hunspell dictionary from the
// command line.
//
// Modes (-mode):
//
//	expand    (default) print every valid form of every dictionary entry
//	compound  print compounds built with -compound flag|rule|bme
//	reduce    print a minimal SFX/PFX block for the rule named by -flag
//
// Paths and limits default to the server configuration (CONFIG_PATH, ENV).
// Exit codes: 0 = success, 1 = error.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/cours-de-latin/hunmorph"
	"github.com/cours-de-latin/hunmorph/internal/app"
	"github.com/cours-de-latin/hunmorph/internal/config"
)

type options struct {
	mode     string
	flag     string
	compound string
	rule     string
	limit    int
	workers  int
}

func main() {
	aff := flag.String("aff", "", "path to the .aff file (overrides config)")
	dic := flag.String("dic", "", "path to the .dic file (overrides config)")
	var opts options
	flag.StringVar(&opts.mode, "mode", "expand", "expand, compound or reduce")
	flag.StringVar(&opts.flag, "flag", "", "rule flag to reduce")
	flag.StringVar(&opts.compound, "compound", "flag", "compound mode: flag, rule or bme")
	flag.StringVar(&opts.rule, "rule", "", "COMPOUNDRULE pattern (empty: all rules of the affix file)")
	flag.IntVar(&opts.limit, "limit", 0, "maximum number of compounds (0: config)")
	flag.IntVar(&opts.workers, "workers", 0, "expansion workers (0: config)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *aff != "" {
		cfg.Dictionary.AffPath = *aff
	}
	if *dic != "" {
		cfg.Dictionary.DicPath = *dic
	}
	logger := app.NewLogger(cfg.Log)

	data, err := hunmorph.LoadAffixFile(cfg.Dictionary.AffPath)
	if err != nil {
		logger.Error("load affix file", slog.String("error", err.Error()))
		os.Exit(1)
	}
	entries, err := hunmorph.LoadDictionaryFile(cfg.Dictionary.DicPath, data)
	if err != nil {
		logger.Error("load dictionary", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	if err := run(ctx, data, entries, cfg.Generator, opts, out, logger); err != nil {
		out.Flush()
		logger.Error(opts.mode+" failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, data *hunmorph.AffixData, entries []*hunmorph.DictionaryEntry,
	cfg config.GeneratorConfig, opts options, w io.Writer, logger *slog.Logger) error {
	gen := hunmorph.NewGenerator(data)
	strategy := data.FlagStrategy()

	switch opts.mode {
	case "expand":
		workers := opts.workers
		if workers <= 0 {
			workers = cfg.Workers
		}
		results, err := gen.Batch(ctx, entries, workers)
		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
				logger.Warn("entry skipped", slog.String("stem", r.Entry.Stem), slog.String("error", r.Err.Error()))
				continue
			}
			for _, inf := range r.Inflections {
				if _, err := fmt.Fprintln(w, inf.Line(strategy)); err != nil {
					return err
				}
			}
		}
		logger.Info("expansion done", slog.Int("entries", len(entries)), slog.Int("failed", failed))
		return err

	case "compound":
		limit := opts.limit
		if limit <= 0 {
			limit = cfg.CompoundLimit
		}
		var (
			compounds []*hunmorph.Inflection
			err       error
		)
		switch opts.compound {
		case "flag":
			compounds, err = gen.ApplyCompoundFlag(ctx, entries, limit, cfg.CompoundMaxComponents)
		case "rule":
			compounds, err = gen.ApplyCompoundRules(ctx, entries, opts.rule, limit)
		case "bme":
			compounds, err = gen.ApplyCompoundBeginMiddleEnd(ctx, entries, limit)
		default:
			return fmt.Errorf("unknown compound mode %q", opts.compound)
		}
		for _, inf := range compounds {
			if _, werr := fmt.Fprintln(w, inf.Line(strategy)); werr != nil {
				return werr
			}
		}
		return err

	case "reduce":
		if opts.flag == "" {
			return fmt.Errorf("reduce needs -flag")
		}
		rule := data.RuleEntry(opts.flag)
		if rule == nil {
			return fmt.Errorf("no rule with flag %q", opts.flag)
		}
		reducer := hunmorph.NewReducer(data)
		reduced, err := reducer.Reduce(gen, entries, opts.flag)
		if err != nil {
			return err
		}
		logger.Info("rule reduced",
			slog.String("flag", opts.flag),
			slog.Int("before", len(rule.Entries)),
			slog.Int("after", len(reduced)))
		for _, line := range reducer.ConvertFormat(opts.flag, rule.Type == hunmorph.Suffix, reduced) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unknown mode %q", opts.mode)
}
