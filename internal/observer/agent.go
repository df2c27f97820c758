// Package observer runs the fire-and-forget per-turn evaluator. It tags each
// candidate answer with a quality flag and practice-worthiness independently
// of the main conversation, and its failures are never allowed to surface.
package observer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dryrunhq/dryrun/internal/llm"
	"github.com/dryrunhq/dryrun/internal/repository"
	"github.com/dryrunhq/dryrun/internal/stage"
)

const (
	QualityStrong = "strong"
	QualityOkay   = "okay"
	QualityWeak   = "weak"
)

// Turn is everything the observer needs to evaluate one answered question.
type Turn struct {
	SessionID  string
	Stage      stage.Stage
	QuestionID string
	Question   string
	Answer     string
	AskedAt    *time.Time
	AnsweredAt *time.Time
}

// Compiled is the session-end digest of all observer notes.
type Compiled struct {
	TotalQuestions    int
	StrongAnswers     int
	WeakAnswers       int
	RedFlags          []string
	BestQuestionID    string
	WeakestQuestionID string
	OverallImpression string
	Notes             map[string]repository.ObserverNote
}

type Agent struct {
	repo       repository.ObserverRepository
	model      llm.Client
	dispatcher Dispatcher
}

func NewAgent(repo repository.ObserverRepository, model llm.Client, dispatcher Dispatcher) *Agent {
	return &Agent{repo: repo, model: model, dispatcher: dispatcher}
}

// Record dispatches the evaluation of one answered question and returns
// immediately. Any failure inside the task (model call, JSON parse,
// persistence) is logged and swallowed: the annotation layer must never
// interrupt the interview.
func (a *Agent) Record(cfg *stage.Config, turn Turn) {
	key := turn.SessionID + ":" + turn.QuestionID
	a.dispatcher.Dispatch(key, func(ctx context.Context) {
		if err := a.evaluate(ctx, cfg, turn); err != nil {
			slog.Error("observer evaluation failed; note skipped",
				"error", err, "session_id", turn.SessionID, "question_id", turn.QuestionID)
		}
	})
}

type modelEvaluation struct {
	QualityFlag      string         `json:"quality_flag"`
	Observations     map[string]any `json:"observations"`
	NotableQuote     string         `json:"notable_quote"`
	FlagForPractice  bool           `json:"flag_for_practice"`
	PracticePriority string         `json:"practice_priority"`
}

func (a *Agent) evaluate(ctx context.Context, cfg *stage.Config, turn Turn) error {
	def, err := cfg.Definition(turn.Stage)
	if err != nil {
		return err
	}

	var userContent strings.Builder
	fmt.Fprintf(&userContent, "QUESTION (%s):\n%s\n\nANSWER:\n%s\n", turn.QuestionID, turn.Question, turn.Answer)
	userContent.WriteString("\nRespond with only a JSON object with keys: quality_flag (strong|okay|weak), observations (object), notable_quote (string, optional), flag_for_practice (boolean), practice_priority (high|medium|low, only when flagged).")

	raw, err := a.model.Complete(ctx, def.ObserverPrompt, []llm.Message{
		{Role: llm.RoleUser, Content: userContent.String()},
	})
	if err != nil {
		return fmt.Errorf("observer model call: %w", err)
	}

	var eval modelEvaluation
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &eval); err != nil {
		return fmt.Errorf("observer response parse: %w", err)
	}
	switch eval.QualityFlag {
	case QualityStrong, QualityOkay, QualityWeak:
	default:
		return fmt.Errorf("observer response has invalid quality_flag %q", eval.QualityFlag)
	}

	note := repository.ObserverNote{
		SessionID:         turn.SessionID,
		QuestionID:        turn.QuestionID,
		QualityFlag:       eval.QualityFlag,
		Observations:      eval.Observations,
		NotableQuote:      eval.NotableQuote,
		FlagForPractice:   eval.FlagForPractice,
		PracticePriority:  eval.PracticePriority,
		WordCountEstimate: len(strings.Fields(turn.Answer)),
	}
	if turn.AskedAt != nil && turn.AnsweredAt != nil {
		seconds := int(turn.AnsweredAt.Sub(*turn.AskedAt) / time.Second)
		if seconds >= 0 {
			note.DurationSeconds = &seconds
		}
	}

	if err := a.repo.UpsertObserverNote(ctx, note); err != nil {
		return fmt.Errorf("observer note persist: %w", err)
	}
	if err := a.refreshSummary(ctx, cfg, turn); err != nil {
		return fmt.Errorf("observer summary refresh: %w", err)
	}
	slog.Debug("observer note recorded", "session_id", turn.SessionID, "question_id", turn.QuestionID, "quality_flag", eval.QualityFlag)
	return nil
}

// refreshSummary recomputes the running counters from all stored notes and
// appends any red-flag keywords found in this answer to the cumulative list.
func (a *Agent) refreshSummary(ctx context.Context, cfg *stage.Config, turn Turn) error {
	notes, err := a.repo.ListObserverNotesBySessionID(ctx, turn.SessionID)
	if err != nil {
		return err
	}
	summary := repository.ObserverSummary{SessionID: turn.SessionID}
	if existing, err := a.repo.GetObserverSummary(ctx, turn.SessionID); err == nil && existing != nil {
		summary.RedFlags = existing.RedFlags
	}
	for _, note := range notes {
		summary.TotalQuestions++
		switch note.QualityFlag {
		case QualityStrong:
			summary.StrongAnswers++
		case QualityWeak:
			summary.WeakAnswers++
		}
	}
	lowerAnswer := strings.ToLower(turn.Answer)
	for _, flag := range cfg.RedFlags {
		if strings.Contains(lowerAnswer, strings.ToLower(flag)) {
			summary.RedFlags = append(summary.RedFlags, flag)
		}
	}
	return a.repo.SaveObserverSummary(ctx, summary)
}

var qualityRank = map[string]int{
	QualityStrong: 3,
	QualityOkay:   2,
	QualityWeak:   1,
}

// CompileNotes produces the session-end digest: best and weakest question
// (first-max and first-min in question order win ties) and a coarse overall
// impression from the strong-answer ratio.
func (a *Agent) CompileNotes(ctx context.Context, sessionID string) (*Compiled, error) {
	notes, err := a.repo.ListObserverNotesBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list observer notes: %w", err)
	}
	compiled := &Compiled{Notes: notes}
	if summary, err := a.repo.GetObserverSummary(ctx, sessionID); err == nil && summary != nil {
		compiled.RedFlags = summary.RedFlags
	}

	ids := make([]string, 0, len(notes))
	for id := range notes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return questionNumber(ids[i]) < questionNumber(ids[j]) })

	bestRank, weakestRank := 0, 0
	for _, id := range ids {
		note := notes[id]
		compiled.TotalQuestions++
		switch note.QualityFlag {
		case QualityStrong:
			compiled.StrongAnswers++
		case QualityWeak:
			compiled.WeakAnswers++
		}
		rank := qualityRank[note.QualityFlag]
		if compiled.BestQuestionID == "" || rank > bestRank {
			compiled.BestQuestionID = id
			bestRank = rank
		}
		if compiled.WeakestQuestionID == "" || rank < weakestRank {
			compiled.WeakestQuestionID = id
			weakestRank = rank
		}
	}

	if compiled.TotalQuestions > 0 {
		ratio := float64(compiled.StrongAnswers) / float64(compiled.TotalQuestions)
		switch {
		case ratio >= 0.5:
			compiled.OverallImpression = "strong"
		case ratio >= 0.3:
			compiled.OverallImpression = "good"
		default:
			compiled.OverallImpression = "needs improvement"
		}
	}
	return compiled, nil
}

func questionNumber(id string) int {
	n := 0
	for _, r := range strings.TrimPrefix(id, "q") {
		if r < '0' || r > '9' {
			return n
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// extractJSONObject trims any prose or code fencing the model wrapped around
// its JSON payload.
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return raw
	}
	return raw[start : end+1]
}
