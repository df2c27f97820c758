// Package interview owns the per-turn conversation flow: deciding the next
// phase, composing the interviewer prompt, recording the transcript and
// handing completed sessions to the grading queue.
package interview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dryrunhq/dryrun/internal/llm"
	"github.com/dryrunhq/dryrun/internal/observer"
	"github.com/dryrunhq/dryrun/internal/phase"
	"github.com/dryrunhq/dryrun/internal/prompt"
	"github.com/dryrunhq/dryrun/internal/queue"
	"github.com/dryrunhq/dryrun/internal/repository"
	"github.com/dryrunhq/dryrun/internal/speech"
	"github.com/dryrunhq/dryrun/internal/stage"
	"github.com/dryrunhq/dryrun/internal/transcript"
)

var (
	// ErrAccessDenied means the candidate may not start this gated stage.
	ErrAccessDenied = errors.New("access check failed for gated stage")
	// ErrSessionCompleted means the session is terminal and takes no turns.
	ErrSessionCompleted = errors.New("session already completed")
)

type Manager struct {
	stageCfg    *stage.Config
	repo        repository.Repository
	model       llm.Client
	obs         *observer.Agent
	transcriber speech.Transcriber
	publisher   queue.Publisher
	now         func() time.Time
}

func NewManager(stageCfg *stage.Config, repo repository.Repository, model llm.Client, obs *observer.Agent, transcriber speech.Transcriber, publisher queue.Publisher) *Manager {
	return &Manager{
		stageCfg:    stageCfg,
		repo:        repo,
		model:       model,
		obs:         obs,
		transcriber: transcriber,
		publisher:   publisher,
		now:         time.Now,
	}
}

type StartInput struct {
	CandidateID    string
	Stage          string
	Tone           string
	Depth          string
	Resume         string
	JobDescription string
	CompanyContent string
}

// StartResult carries the created session and the interviewer's opening line.
type StartResult struct {
	Session *repository.Session
	Opening string
	Phase   phase.Phase
}

// TurnResult is the outcome of one candidate turn.
type TurnResult struct {
	Reply         string
	Phase         phase.Phase
	Exchanges     int
	StageComplete bool
}

// StartSession checks stage access, creates the session and produces the
// interviewer's opening message. A gated stage never begins without a
// successful access check.
func (m *Manager) StartSession(ctx context.Context, input StartInput) (*StartResult, error) {
	s, err := stage.Parse(input.Stage)
	if err != nil {
		return nil, err
	}
	def, err := m.stageCfg.Definition(s)
	if err != nil {
		return nil, err
	}
	if err := m.checkAccess(ctx, def, input.CandidateID); err != nil {
		return nil, err
	}

	initial, err := phase.Initial(s)
	if err != nil {
		return nil, err
	}

	startedAt := m.now()
	session, err := m.repo.CreateSession(ctx, repository.CreateSessionInput{
		CandidateID:    input.CandidateID,
		Stage:          string(s),
		Phase:          string(initial),
		Tone:           input.Tone,
		Depth:          input.Depth,
		Resume:         input.Resume,
		JobDescription: input.JobDescription,
		CompanyContent: input.CompanyContent,
		StartedAt:      startedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	slog.Info("session started", "session_id", session.ID, "stage", s, "candidate_id", input.CandidateID)

	system := prompt.Compose(m.stageCfg, def, stage.Tone(session.Tone), stage.Depth(session.Depth), initial, promptContext(session))
	opening, err := m.model.Complete(ctx, system, nil)
	if err != nil {
		return nil, fmt.Errorf("opening model call: %w", err)
	}

	log := transcript.NewLog(session.StartedAt, nil)
	created := log.Append(transcript.SpeakerInterviewer, opening, m.now())
	if err := m.persistAppended(ctx, session.ID, log.Snapshot(), 0, created); err != nil {
		return nil, err
	}
	return &StartResult{Session: session, Opening: opening, Phase: initial}, nil
}

// HandleTurn processes one candidate utterance and returns the interviewer's
// reply. On a model failure the session stays in its last good state: the
// candidate turn is not recorded.
func (m *Manager) HandleTurn(ctx context.Context, sessionID, utterance string) (*TurnResult, error) {
	session, err := m.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session.Status == repository.SessionStatusCompleted {
		return nil, fmt.Errorf("%w: %s", ErrSessionCompleted, sessionID)
	}
	s, err := stage.Parse(session.Stage)
	if err != nil {
		return nil, err
	}
	def, err := m.stageCfg.Definition(s)
	if err != nil {
		return nil, err
	}

	log, err := m.restoreLog(ctx, session)
	if err != nil {
		return nil, err
	}
	snapshot := log.Snapshot()
	answered := snapshot.LastQuestion()

	next, err := phase.Next(s, phase.Phase(session.Phase), utterance)
	if err != nil {
		return nil, err
	}

	system := prompt.Compose(m.stageCfg, def, stage.Tone(session.Tone), stage.Depth(session.Depth), next, promptContext(session))
	history := append(historyFromTranscript(snapshot), llm.Message{Role: llm.RoleUser, Content: utterance})
	reply, err := m.model.Complete(ctx, system, history)
	if err != nil {
		// Turn not recorded; the session keeps its last good state.
		return nil, fmt.Errorf("conversation model call: %w", err)
	}

	answeredAt := m.now()
	baseIndex := len(snapshot.Messages)
	log.Append(transcript.SpeakerCandidate, utterance, answeredAt)
	created := log.Append(transcript.SpeakerInterviewer, reply, m.now())
	if err := m.persistAppended(ctx, session.ID, log.Snapshot(), baseIndex, created); err != nil {
		return nil, err
	}

	next = phase.InferFromReply(s, next, reply)
	exchanges := session.Exchanges + 1
	if err := m.repo.UpdateSessionProgress(ctx, repository.UpdateSessionProgressInput{
		SessionID: session.ID,
		Phase:     string(next),
		Exchanges: exchanges,
	}); err != nil {
		return nil, fmt.Errorf("update session progress: %w", err)
	}

	if answered != nil {
		m.obs.Record(m.stageCfg, observer.Turn{
			SessionID:  session.ID,
			Stage:      s,
			QuestionID: answered.ID,
			Question:   answered.Text,
			Answer:     utterance,
			AskedAt:    stampTime(session.StartedAt, answered.Timestamp),
			AnsweredAt: &answeredAt,
		})
	}

	ended, err := phase.ShouldEndStage(s, def, exchanges, reply)
	if err != nil {
		return nil, err
	}
	slog.Debug("turn handled", "session_id", session.ID, "phase", next, "exchanges", exchanges, "stage_complete", ended)
	return &TurnResult{Reply: reply, Phase: next, Exchanges: exchanges, StageComplete: ended}, nil
}

// HandleVoiceTurn transcribes one candidate audio clip and feeds the text
// through the normal turn flow. A transcription failure is user-visible and
// records nothing.
func (m *Manager) HandleVoiceTurn(ctx context.Context, sessionID string, audio []byte, language string) (*TurnResult, error) {
	text, err := m.transcriber.TranscribeClip(ctx, audio, language)
	if err != nil {
		return nil, fmt.Errorf("transcribe candidate turn: %w", err)
	}
	return m.HandleTurn(ctx, sessionID, text)
}

// CompleteSession marks the session terminal, settles the candidate's
// credit or subscription usage and enqueues the grading run.
func (m *Manager) CompleteSession(ctx context.Context, sessionID string) error {
	session, err := m.repo.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if session.Status == repository.SessionStatusCompleted {
		return fmt.Errorf("%w: %s", ErrSessionCompleted, sessionID)
	}
	s, err := stage.Parse(session.Stage)
	if err != nil {
		return err
	}
	def, err := m.stageCfg.Definition(s)
	if err != nil {
		return err
	}

	endedAt := m.now()
	duration := int64(endedAt.Sub(session.StartedAt) / time.Second)
	if duration < 0 {
		duration = 0
	}
	if err := m.repo.UpdateSessionCompleted(ctx, repository.CompleteSessionInput{
		SessionID:       session.ID,
		EndedAt:         endedAt,
		DurationSeconds: duration,
	}); err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	slog.Info("session completed", "session_id", session.ID, "stage", s, "duration_seconds", duration)

	m.settleCredit(ctx, def, session)

	job := queue.GradingJob{JobID: uuid.NewString(), SessionID: session.ID}
	if err := m.publisher.PublishGradingJob(ctx, job); err != nil {
		return fmt.Errorf("enqueue grading job: %w", err)
	}
	return nil
}

func (m *Manager) checkAccess(ctx context.Context, def stage.Definition, candidateID string) error {
	if def.Free {
		return nil
	}
	if candidateID == "" {
		return fmt.Errorf("%w: anonymous candidates may only run free stages", ErrAccessDenied)
	}
	account, err := m.repo.GetCreditAccount(ctx, candidateID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAccessDenied, err)
	}
	if !account.SubscriptionActive && account.Credits <= 0 {
		return fmt.Errorf("%w: no credits remaining", ErrAccessDenied)
	}
	return nil
}

// settleCredit is post-completion bookkeeping; a failure here must not undo
// a finished interview, so it is logged and absorbed.
func (m *Manager) settleCredit(ctx context.Context, def stage.Definition, session *repository.Session) {
	if def.Free || session.CandidateID == "" {
		return
	}
	account, err := m.repo.GetCreditAccount(ctx, session.CandidateID)
	if err != nil {
		slog.Error("credit settle lookup failed", "error", err, "session_id", session.ID, "candidate_id", session.CandidateID)
		return
	}
	if err := m.repo.SettleStageUsage(ctx, session.CandidateID, account.SubscriptionActive); err != nil {
		slog.Error("credit settle failed", "error", err, "session_id", session.ID, "candidate_id", session.CandidateID)
	}
}

func (m *Manager) restoreLog(ctx context.Context, session *repository.Session) (*transcript.Log, error) {
	messages, err := m.repo.ListMessagesBySessionID(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("load transcript messages: %w", err)
	}
	questions, err := m.repo.ListQuestionsBySessionID(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("load transcript questions: %w", err)
	}
	var t transcript.Transcript
	for _, row := range messages {
		t.Messages = append(t.Messages, transcript.Message{
			Speaker:    transcript.Speaker(row.Speaker),
			Text:       row.Content,
			Timestamp:  row.Stamp,
			QuestionID: row.QuestionID,
		})
	}
	for _, row := range questions {
		t.Questions = append(t.Questions, transcript.Question{
			ID:              row.QuestionID,
			Text:            row.Content,
			Timestamp:       row.Stamp,
			AssessmentAreas: row.AssessmentAreas,
		})
	}
	return transcript.Restore(session.StartedAt, nil, t), nil
}

// persistAppended writes the log entries from baseIndex onward, inserting
// the newly derived question (if any) first to keep referential integrity.
func (m *Manager) persistAppended(ctx context.Context, sessionID string, t transcript.Transcript, baseIndex int, created *transcript.Question) error {
	if created != nil {
		if err := m.repo.InsertQuestion(ctx, repository.InsertQuestionInput{
			SessionID:       sessionID,
			QuestionID:      created.ID,
			Content:         created.Text,
			Stamp:           created.Timestamp,
			AssessmentAreas: created.AssessmentAreas,
		}); err != nil {
			return fmt.Errorf("insert question: %w", err)
		}
	}
	for i := baseIndex; i < len(t.Messages); i++ {
		msg := t.Messages[i]
		if err := m.repo.AppendMessage(ctx, repository.AppendMessageInput{
			SessionID:    sessionID,
			MessageIndex: i,
			Speaker:      string(msg.Speaker),
			Content:      msg.Text,
			Stamp:        msg.Timestamp,
			QuestionID:   msg.QuestionID,
		}); err != nil {
			return fmt.Errorf("append message: %w", err)
		}
	}
	return nil
}

func promptContext(session *repository.Session) prompt.Context {
	return prompt.Context{
		Resume:         session.Resume,
		JobDescription: session.JobDescription,
		CompanyContent: session.CompanyContent,
	}
}

func historyFromTranscript(t transcript.Transcript) []llm.Message {
	history := make([]llm.Message, 0, len(t.Messages))
	for _, msg := range t.Messages {
		role := llm.RoleUser
		if msg.Speaker == transcript.SpeakerInterviewer {
			role = llm.RoleAssistant
		}
		history = append(history, llm.Message{Role: role, Content: msg.Text})
	}
	return history
}

// stampTime converts a persisted M:SS transcript stamp back to a wall-clock
// time. A malformed stamp yields nil and the observer simply skips duration.
func stampTime(startedAt time.Time, stamp string) *time.Time {
	parts := strings.SplitN(stamp, ":", 2)
	if len(parts) != 2 {
		return nil
	}
	minutes, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil
	}
	seconds, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil
	}
	at := startedAt.Add(time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second)
	return &at
}
