package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cours-de-latin/hunmorph"
	"github.com/cours-de-latin/hunmorph/internal/config"
)

// ---- JSON types -----------------------------------------------------------

type inflectRequest struct {
	Line string `json:"line"`
}

type inflectionJSON struct {
	Word    string   `json:"word"`
	Flags   string   `json:"flags,omitempty"`
	Morph   []string `json:"morph,omitempty"`
	Fold    string   `json:"fold"`
	Applied []string `json:"applied,omitempty"`
	Parents []string `json:"parents,omitempty"`
}

type inflectResponse struct {
	Stem        string           `json:"stem"`
	Inflections []inflectionJSON `json:"inflections"`
}

type compoundRequest struct {
	Mode          string   `json:"mode"`
	Lines         []string `json:"lines"`
	Rule          string   `json:"rule"`
	Limit         int      `json:"limit"`
	MaxComponents int      `json:"max_components"`
}

type compoundResponse struct {
	Mode      string           `json:"mode"`
	Limit     int              `json:"limit"`
	Compounds []inflectionJSON `json:"compounds"`
}

type reduceRequest struct {
	Flag string `json:"flag"`
}

type reduceResponse struct {
	Flag     string   `json:"flag"`
	Observed int      `json:"observed"`
	Lines    []string `json:"lines"`
}

type infoResponse struct {
	Charset       string   `json:"charset"`
	Language      string   `json:"language,omitempty"`
	FlagType      string   `json:"flag_type"`
	Rules         []string `json:"rules"`
	CompoundRules []string `json:"compound_rules,omitempty"`
	Entries       int      `json:"entries"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ---- server ---------------------------------------------------------------

// server holds everything the handlers share. All of it is read-only once
// the server starts.
type server struct {
	gen     *hunmorph.Generator
	reducer *hunmorph.Reducer
	entries []*hunmorph.DictionaryEntry
	cfg     config.GeneratorConfig
	maxBody int64
	logger  *slog.Logger
}

func newServer(data *hunmorph.AffixData, entries []*hunmorph.DictionaryEntry, cfg *config.Config, logger *slog.Logger) *server {
	return &server{
		gen:     hunmorph.NewGenerator(data),
		reducer: hunmorph.NewReducer(data),
		entries: entries,
		cfg:     cfg.Generator,
		maxBody: cfg.Server.MaxBodyBytes,
		logger:  logger,
	}
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/inflect", s.handleInflect)
	mux.HandleFunc("/api/compound", s.handleCompound)
	mux.HandleFunc("/api/reduce", s.handleReduce)
	mux.HandleFunc("/api/info", s.handleInfo)
	return mux
}

// ---- helpers --------------------------------------------------------------

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", slog.String("error", err.Error()))
	}
}

func (s *server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// fail maps an engine error to a status: bad input is the client's
// fault, rule failures are unprocessable, cancellations are unavailable.
func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, hunmorph.ErrConfiguration):
		status = http.StatusBadRequest
	case errors.Is(err, hunmorph.ErrRuleApplication), errors.Is(err, hunmorph.ErrReduction):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	s.logger.Warn("request failed",
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.String("error", err.Error()))
	s.writeError(w, status, err.Error())
}

func (s *server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "POST required")
		return false
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody)).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func (s *server) toJSON(infls []*hunmorph.Inflection) []inflectionJSON {
	strategy := s.gen.Data().FlagStrategy()
	out := make([]inflectionJSON, 0, len(infls))
	for _, inf := range infls {
		j := inflectionJSON{
			Word:    inf.Word,
			Flags:   strategy.Encode(inf.RemainingFlags),
			Morph:   inf.MorphFields,
			Fold:    inf.Fold.String(),
			Applied: inf.AppliedFlags(),
		}
		for _, p := range inf.Parents {
			j.Parents = append(j.Parents, p.Stem)
		}
		out = append(out, j)
	}
	return out
}

// ---- handlers -------------------------------------------------------------

func (s *server) handleInflect(w http.ResponseWriter, r *http.Request) {
	var req inflectRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Line == "" {
		s.writeError(w, http.StatusBadRequest, "body must be JSON with a non-empty 'line' field")
		return
	}
	entry, err := hunmorph.ParseDictionaryLine(req.Line, s.gen.Data())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	infls, err := s.gen.ApplyAffixRules(entry)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, inflectResponse{Stem: entry.Stem, Inflections: s.toJSON(infls)})
}

func (s *server) handleCompound(w http.ResponseWriter, r *http.Request) {
	var req compoundRequest
	if !s.decode(w, r, &req) {
		return
	}
	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.CompoundLimit
	}
	limit = min(limit, s.cfg.CompoundMaxLimit)
	maxComponents := req.MaxComponents
	if maxComponents <= 0 {
		maxComponents = s.cfg.CompoundMaxComponents
	}

	entries := s.entries
	if len(req.Lines) > 0 {
		entries = make([]*hunmorph.DictionaryEntry, 0, len(req.Lines))
		for _, line := range req.Lines {
			e, err := hunmorph.ParseDictionaryLine(line, s.gen.Data())
			if err != nil {
				s.fail(w, r, fmt.Errorf("line %q: %w", line, err))
				return
			}
			entries = append(entries, e)
		}
	}

	var (
		compounds []*hunmorph.Inflection
		err       error
	)
	switch req.Mode {
	case "", "flag":
		compounds, err = s.gen.ApplyCompoundFlag(r.Context(), entries, limit, maxComponents)
	case "rule":
		compounds, err = s.gen.ApplyCompoundRules(r.Context(), entries, req.Rule, limit)
	case "bme":
		compounds, err = s.gen.ApplyCompoundBeginMiddleEnd(r.Context(), entries, limit)
	default:
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown mode %q (want flag, rule or bme)", req.Mode))
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	mode := req.Mode
	if mode == "" {
		mode = "flag"
	}
	s.writeJSON(w, http.StatusOK, compoundResponse{Mode: mode, Limit: limit, Compounds: s.toJSON(compounds)})
}

func (s *server) handleReduce(w http.ResponseWriter, r *http.Request) {
	var req reduceRequest
	if !s.decode(w, r, &req) {
		return
	}
	rule := s.gen.Data().RuleEntry(req.Flag)
	if rule == nil {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("no rule with flag %q", req.Flag))
		return
	}
	observed, err := hunmorph.CollectLineEntries(s.gen, s.entries, req.Flag)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	reduced, err := hunmorph.ReduceProductions(rule.Type, observed)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, reduceResponse{
		Flag:     req.Flag,
		Observed: len(observed),
		Lines:    s.reducer.ConvertFormat(req.Flag, rule.Type == hunmorph.Suffix, reduced),
	})
}

func (s *server) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	data := s.gen.Data()
	resp := infoResponse{
		Charset:       data.Charset(),
		Language:      data.Language(),
		FlagType:      data.FlagStrategy().Type().String(),
		CompoundRules: data.CompoundRules(),
		Entries:       len(s.entries),
	}
	for _, rule := range data.RuleEntries() {
		resp.Rules = append(resp.Rules, rule.Type.String()+" "+rule.Flag)
	}
	s.writeJSON(w, http.StatusOK, resp)
}
