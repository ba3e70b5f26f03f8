// Command server exposes the Hunspell affix generator as a JSON REST API.
//
// Endpoints:
//
//	POST /api/inflect    body: {"line":"foo/AB"}
//	POST /api/compound   body: {"mode":"flag|rule|bme","lines":[...],"rule":"...","limit":N}
//	POST /api/reduce     body: {"flag":"A"}
//	GET  /api/info
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/cors"

	"github.com/cours-de-latin/hunmorph"
	"github.com/cours-de-latin/hunmorph/internal/app"
	"github.com/cours-de-latin/hunmorph/internal/config"
)

// ---- main -----------------------------------------------------------------

func main() {
	aff := flag.String("aff", "", "path to the .aff file (overrides config)")
	dic := flag.String("dic", "", "path to the .dic file (overrides config)")
	addr := flag.String("addr", "", "listen address (overrides config)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *aff != "" {
		cfg.Dictionary.AffPath = *aff
	}
	if *dic != "" {
		cfg.Dictionary.DicPath = *dic
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg.Log)

	data, err := hunmorph.LoadAffixFile(cfg.Dictionary.AffPath)
	if err != nil {
		logger.Error("failed to load affix file", slog.String("path", cfg.Dictionary.AffPath), slog.String("error", err.Error()))
		os.Exit(1)
	}
	var entries []*hunmorph.DictionaryEntry
	if cfg.Dictionary.DicPath != "" {
		entries, err = hunmorph.LoadDictionaryFile(cfg.Dictionary.DicPath, data)
		if err != nil {
			logger.Error("failed to load dictionary", slog.String("path", cfg.Dictionary.DicPath), slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
	logger.Info("dictionary loaded",
		slog.String("charset", data.Charset()),
		slog.Int("rules", len(data.RuleEntries())),
		slog.Int("entries", len(entries)))

	s := newServer(data, entries, cfg, logger)
	handler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.Origins(),
		AllowedMethods: cfg.CORS.Methods(),
		AllowedHeaders: cfg.CORS.Headers(),
		MaxAge:         cfg.CORS.MaxAge,
	}).Handler(s.routes())

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("addr", cfg.Server.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", slog.String("error", err.Error()))
		}
	}
}
