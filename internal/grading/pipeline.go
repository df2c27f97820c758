// Package grading turns a completed session's transcript and observer notes
// into a validated, weighted rubric result.
package grading

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dryrunhq/dryrun/internal/llm"
	"github.com/dryrunhq/dryrun/internal/observer"
	"github.com/dryrunhq/dryrun/internal/repository"
	"github.com/dryrunhq/dryrun/internal/stage"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 2 * time.Second
)

var (
	// ErrGradingInProgress means another grading run holds the session.
	ErrGradingInProgress = errors.New("grading already in progress for session")
	// ErrSessionNotCompleted means the session has turns outstanding.
	ErrSessionNotCompleted = errors.New("session is not completed")
)

// NotesCompiler provides the observer digest. Grading tolerates absent or
// partial notes.
type NotesCompiler interface {
	CompileNotes(ctx context.Context, sessionID string) (*observer.Compiled, error)
}

type Pipeline struct {
	repo  repository.Repository
	model llm.Client
	notes NotesCompiler

	maxAttempts int
	baseDelay   time.Duration
	sleep       func(time.Duration)

	mu       sync.Mutex
	inflight map[string]struct{}
}

// Option customizes the pipeline.
type Option func(*Pipeline)

// WithMaxAttempts overrides the retry attempt count.
func WithMaxAttempts(attempts int) Option {
	return func(p *Pipeline) {
		if attempts > 0 {
			p.maxAttempts = attempts
		}
	}
}

// WithBackoffBase overrides the first retry delay (it doubles per attempt).
func WithBackoffBase(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.baseDelay = d
		}
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleep func(time.Duration)) Option {
	return func(p *Pipeline) {
		if sleep != nil {
			p.sleep = sleep
		}
	}
}

func NewPipeline(repo repository.Repository, model llm.Client, notes NotesCompiler, opts ...Option) *Pipeline {
	p := &Pipeline{
		repo:        repo,
		model:       model,
		notes:       notes,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		sleep:       time.Sleep,
		inflight:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Grade runs collect -> prompt -> model -> parse -> validate -> score ->
// persist for one completed session. Attempts are retried with exponential
// backoff; each attempt recomputes from the same immutable materials, so the
// run is idempotent. Two concurrent runs for the same session are refused.
func (p *Pipeline) Grade(ctx context.Context, cfg *stage.Config, opts Options, sessionID string) (*repository.RubricRecord, error) {
	if !p.acquire(sessionID) {
		return nil, fmt.Errorf("%w: %s", ErrGradingInProgress, sessionID)
	}
	defer p.release(sessionID)

	m, s, def, err := p.collect(ctx, cfg, sessionID)
	if err != nil {
		return nil, err
	}
	prompt := buildGradingPrompt(cfg, s, def, opts, m)

	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		record, err := p.attempt(ctx, s, def, prompt, sessionID)
		if err == nil {
			slog.Info("grading completed", "session_id", sessionID, "stage", s, "overall_score", record.OverallScore, "attempt", attempt)
			return record, nil
		}
		lastErr = err
		slog.Warn("grading attempt failed", "error", err, "session_id", sessionID, "attempt", attempt, "max_attempts", p.maxAttempts)
		if attempt < p.maxAttempts {
			p.sleep(p.baseDelay << (attempt - 1))
		}
	}
	return nil, fmt.Errorf("grading failed after %d attempts: %w", p.maxAttempts, lastErr)
}

func (p *Pipeline) collect(ctx context.Context, cfg *stage.Config, sessionID string) (materials, stage.Stage, stage.Definition, error) {
	var m materials

	session, err := p.repo.GetSession(ctx, sessionID)
	if err != nil {
		return m, "", stage.Definition{}, fmt.Errorf("load session: %w", err)
	}
	if session.Status != repository.SessionStatusCompleted {
		return m, "", stage.Definition{}, fmt.Errorf("%w: %s", ErrSessionNotCompleted, sessionID)
	}
	s, err := stage.Parse(session.Stage)
	if err != nil {
		return m, "", stage.Definition{}, err
	}
	def, err := cfg.Definition(s)
	if err != nil {
		return m, "", stage.Definition{}, err
	}

	messages, err := p.repo.ListMessagesBySessionID(ctx, sessionID)
	if err != nil {
		return m, "", stage.Definition{}, fmt.Errorf("load transcript messages: %w", err)
	}
	questions, err := p.repo.ListQuestionsBySessionID(ctx, sessionID)
	if err != nil {
		return m, "", stage.Definition{}, fmt.Errorf("load transcript questions: %w", err)
	}

	// Observer notes are best-effort input; grading proceeds without them.
	notes, err := p.notes.CompileNotes(ctx, sessionID)
	if err != nil {
		slog.Warn("observer notes unavailable for grading", "error", err, "session_id", sessionID)
		notes = nil
	}

	m = materials{session: session, messages: messages, questions: questions, notes: notes}
	return m, s, def, nil
}

func (p *Pipeline) attempt(ctx context.Context, s stage.Stage, def stage.Definition, prompt, sessionID string) (*repository.RubricRecord, error) {
	raw, err := p.model.Complete(ctx, prompt, nil)
	if err != nil {
		return nil, fmt.Errorf("grading model call: %w", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("grading response parse: %w", err)
	}
	if err := Validate(s, def.Criteria, parsed); err != nil {
		return nil, err
	}

	scores := make(map[string]float64)
	for name, value := range parsed["scores"].(map[string]any) {
		if score, ok := value.(float64); ok {
			scores[name] = score
		}
	}
	overall := WeightedScore(def.Criteria, scores)
	parsed["overall_score"] = overall

	payload, err := json.Marshal(parsed)
	if err != nil {
		return nil, fmt.Errorf("grading payload marshal: %w", err)
	}
	record := &repository.RubricRecord{
		ID:           uuid.NewString(),
		SessionID:    sessionID,
		OverallScore: overall,
		Payload:      payload,
	}
	if err := p.repo.InsertRubricResult(ctx, repository.InsertRubricResultInput{
		ID:           record.ID,
		SessionID:    record.SessionID,
		OverallScore: record.OverallScore,
		Payload:      record.Payload,
	}); err != nil {
		return nil, fmt.Errorf("persist rubric result: %w", err)
	}
	return record, nil
}

func (p *Pipeline) acquire(sessionID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, held := p.inflight[sessionID]; held {
		return false
	}
	p.inflight[sessionID] = struct{}{}
	return true
}

func (p *Pipeline) release(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inflight, sessionID)
}

// extractJSONObject trims prose or code fencing around the model's JSON.
func extractJSONObject(raw string) string {
	start := -1
	depth := 0
	for i, r := range raw {
		if r == '{' {
			if start < 0 {
				start = i
			}
			depth++
		}
		if r == '}' && start >= 0 {
			depth--
			if depth == 0 {
				return raw[start : i+1]
			}
		}
	}
	return raw
}
