// Package pipeline chains the document-intelligence stages and the
// reflection loop into one plan-generation flow.
package pipeline

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/planloom/planloom/internal/analyze"
	"github.com/planloom/planloom/internal/assemble"
	"github.com/planloom/planloom/internal/classify"
	"github.com/planloom/planloom/internal/config"
	"github.com/planloom/planloom/internal/document"
	"github.com/planloom/planloom/internal/extract"
	"github.com/planloom/planloom/internal/ingest"
	"github.com/planloom/planloom/internal/llm"
	"github.com/planloom/planloom/internal/reflection"
	"github.com/planloom/planloom/internal/store"
)

// Pipeline runs the full document-to-plan flow. One Pipeline may serve
// many requests; each request owns its own reflection state.
type Pipeline struct {
	cfg        config.Config
	gen        llm.Generator
	store      *store.Store
	classifier *classify.Classifier
	extractor  *extract.Extractor
	analyzer   analyze.Analyzer
	converter  ingest.ExecReader
}

// New wires a Pipeline from config, a generator, and a store.
func New(cfg config.Config, gen llm.Generator, st *store.Store) *Pipeline {
	classifier := classify.New(gen)
	classifier.SamplePages = cfg.Pipeline.SamplePages
	classifier.MaxPageChars = cfg.Pipeline.MaxPageChars
	classifier.ConfidenceThreshold = cfg.Pipeline.ConfidenceThreshold

	return &Pipeline{
		cfg:        cfg,
		gen:        gen,
		store:      st,
		classifier: classifier,
		extractor:  extract.New(gen),
		analyzer:   analyze.Analyzer{OverlapThreshold: cfg.Pipeline.OverlapThreshold},
		converter:  ingest.ExecReader{Cmd: cfg.Pipeline.ConverterCmd},
	}
}

// Analysis bundles the pipeline output consumed by the reflection loop.
type Analysis struct {
	Classifications []document.Classification
	Extractions     []document.ExtractedContent
	Report          analyze.Report
}

// Analyze runs ingest, classify, extract, and cross-analysis over the given
// files. Classification and extraction results are cached by content hash;
// the derived report is cached by the sorted file-set hash.
func (p *Pipeline) Analyze(ctx context.Context, paths []string) (Analysis, error) {
	var out Analysis

	setKey := ingest.FileSetHash(paths)
	if p.cacheRead(ctx, store.CacheAnalysis, setKey, &out) {
		log.Debug().Str("key", setKey).Msg("analysis cache hit")
		return out, nil
	}

	for _, path := range paths {
		doc := ingest.ForPath(path, p.converter).Read(ctx, path)
		if doc.Failed() {
			log.Warn().Str("file", doc.Filename).Msg("extraction failed, classifying error text as low-confidence input")
		}
		key := ingest.ContentHash(doc.Text)

		var cls document.Classification
		if !p.cacheRead(ctx, store.CacheClassification, key, &cls) {
			cls = p.classifier.Classify(ctx, doc)
			p.cacheWrite(ctx, store.CacheClassification, key, cls)
		}

		var ext document.ExtractedContent
		if !p.cacheRead(ctx, store.CacheExtraction, key, &ext) {
			ext = p.extractor.Extract(ctx, doc.Text, cls.DocumentType, doc.Filename)
			p.cacheWrite(ctx, store.CacheExtraction, key, ext)
		}

		out.Classifications = append(out.Classifications, cls)
		out.Extractions = append(out.Extractions, ext)
	}

	out.Report = p.analyzer.Analyze(out.Classifications, out.Extractions)
	p.cacheWrite(ctx, store.CacheAnalysis, setKey, out)

	return out, nil
}

// Result is the outcome of one plan-generation request.
type Result struct {
	RunID         string
	Plan          string
	Report        analyze.Report
	Iterations    []reflection.Iteration
	Outcome       reflection.Outcome
	ExecutionTime time.Duration
}

// Plan runs the full flow: document analysis, context assembly, then the
// reflection loop. On loop failure the error still surfaces the iteration
// count reached and the run keeps its committed iterations so callers can
// show partial progress.
func (p *Pipeline) Plan(ctx context.Context, task string, paths []string, feasibilityPath string) (Result, error) {
	startedAt := time.Now()

	analysis, err := p.Analyze(ctx, paths)
	if err != nil {
		return Result{}, err
	}
	docContext := assemble.Context(analysis.Extractions, analysis.Report)

	feasibility, err := readFeasibility(feasibilityPath)
	if err != nil {
		return Result{}, err
	}

	runID, err := newRunID()
	if err != nil {
		return Result{}, err
	}
	if err := p.store.CreateRun(ctx, runID, task, p.cfg.Budgets.MaxIterations); err != nil {
		return Result{}, err
	}

	state := reflection.NewState(task, docContext, feasibility, p.cfg.Budgets.MaxIterations)
	controller := reflection.NewController(p.gen)

	outcome, loopErr := controller.Run(ctx, state)
	p.persistIterations(ctx, runID, state)

	if loopErr != nil {
		_ = p.store.FinishRun(ctx, runID, store.RunStatusFailed, string(analysis.Report.Readiness),
			analysis.Report.CoverageScore, analysis.Report.ConfidenceScore, lastDraft(state))
		return Result{RunID: runID, Report: analysis.Report, Iterations: state.Iterations},
			fmt.Errorf("reflection loop failed after %d iteration(s): %w", len(state.Iterations), loopErr)
	}

	status := store.RunStatusAccepted
	if outcome == reflection.OutcomeForcedAccept {
		status = store.RunStatusForcedAccept
	}
	if err := p.store.FinishRun(ctx, runID, status, string(analysis.Report.Readiness),
		analysis.Report.CoverageScore, analysis.Report.ConfidenceScore, state.FinalPlan); err != nil {
		return Result{}, err
	}

	res := Result{
		RunID:         runID,
		Plan:          state.FinalPlan,
		Report:        analysis.Report,
		Iterations:    state.Iterations,
		Outcome:       outcome,
		ExecutionTime: time.Since(startedAt),
	}
	log.Info().
		Str("run_id", runID).
		Str("outcome", string(outcome)).
		Int("iterations", len(state.Iterations)).
		Dur("duration", res.ExecutionTime).
		Msg("plan generated")
	return res, nil
}

func (p *Pipeline) persistIterations(ctx context.Context, runID string, state *reflection.State) {
	for i, it := range state.Iterations {
		rec := store.IterationRecord{
			RunID:     runID,
			Iteration: i + 1,
			Draft:     it.Draft,
			Critique:  it.Critique,
			Reasoning: it.Reasoning,
			Accepted:  it.Accepted,
			CreatedAt: it.CreatedAt.Format(time.RFC3339),
		}
		if err := p.store.CommitIteration(ctx, rec); err != nil {
			log.Error().Err(err).Str("run_id", runID).Int("iteration", i+1).Msg("persist iteration failed")
		}
	}
}

// cacheRead loads and decodes a cache entry into value. A corrupt entry
// counts as a miss.
func (p *Pipeline) cacheRead(ctx context.Context, kind, key string, value any) bool {
	if p.store == nil {
		return false
	}
	data, ok, err := p.store.CacheRead(ctx, kind, key)
	if err != nil {
		log.Warn().Err(err).Str("kind", kind).Msg("cache read failed")
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(data), value); err != nil {
		log.Warn().Err(err).Str("kind", kind).Msg("cache entry corrupt, recomputing")
		return false
	}
	return true
}

func (p *Pipeline) cacheWrite(ctx context.Context, kind, key string, value any) {
	if p.store == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("kind", kind).Msg("cache encode failed")
		return
	}
	if err := p.store.CacheWrite(ctx, kind, key, string(data)); err != nil {
		log.Warn().Err(err).Str("kind", kind).Msg("cache write failed")
	}
}

func readFeasibility(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read feasibility note: %w", err)
	}
	return string(data), nil
}

func lastDraft(state *reflection.State) string {
	if current, ok := state.Current(); ok {
		return current.Draft
	}
	return ""
}

func newRunID() (string, error) {
	suffix, err := randomHex(3)
	if err != nil {
		return "", err
	}
	ts := time.Now().UTC().Format("20060102-150405")
	return fmt.Sprintf("%s-%s", ts, suffix), nil
}

func randomHex(bytesLen int) (string, error) {
	buf := make([]byte, bytesLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
