package repository

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type CreateSessionInput struct {
	CandidateID    string
	Stage          string
	Phase          string
	Tone           string
	Depth          string
	Resume         string
	JobDescription string
	CompanyContent string
	StartedAt      time.Time
}

type UpdateSessionProgressInput struct {
	SessionID string
	Phase     string
	Exchanges int
}

type CompleteSessionInput struct {
	SessionID       string
	EndedAt         time.Time
	DurationSeconds int64
}

type AppendMessageInput struct {
	SessionID    string
	MessageIndex int
	Speaker      string
	Content      string
	Stamp        string
	QuestionID   string
}

type InsertQuestionInput struct {
	SessionID       string
	QuestionID      string
	Content         string
	Stamp           string
	AssessmentAreas []string
}

type InsertRubricResultInput struct {
	ID           string
	SessionID    string
	OverallScore float64
	Payload      []byte
}

type SessionRepository interface {
	CreateSession(ctx context.Context, input CreateSessionInput) (*Session, error)
	GetSession(ctx context.Context, sessionID string) (*Session, error)
	UpdateSessionProgress(ctx context.Context, input UpdateSessionProgressInput) error
	UpdateSessionCompleted(ctx context.Context, input CompleteSessionInput) error
}

type TranscriptRepository interface {
	AppendMessage(ctx context.Context, input AppendMessageInput) error
	InsertQuestion(ctx context.Context, input InsertQuestionInput) error
	ListMessagesBySessionID(ctx context.Context, sessionID string) ([]TranscriptMessage, error)
	ListQuestionsBySessionID(ctx context.Context, sessionID string) ([]TranscriptQuestion, error)
}

type ObserverRepository interface {
	UpsertObserverNote(ctx context.Context, note ObserverNote) error
	ListObserverNotesBySessionID(ctx context.Context, sessionID string) (map[string]ObserverNote, error)
	SaveObserverSummary(ctx context.Context, summary ObserverSummary) error
	GetObserverSummary(ctx context.Context, sessionID string) (*ObserverSummary, error)
}

type RubricRepository interface {
	InsertRubricResult(ctx context.Context, input InsertRubricResultInput) error
	GetLatestRubricResult(ctx context.Context, sessionID string) (*RubricRecord, error)
	AttachFeedbackAudio(ctx context.Context, rubricID string, audio []byte) error
}

type CreditRepository interface {
	GetCreditAccount(ctx context.Context, candidateID string) (*CreditAccount, error)
	SettleStageUsage(ctx context.Context, candidateID string, usedSubscription bool) error
}

type Repository interface {
	SessionRepository
	TranscriptRepository
	ObserverRepository
	RubricRepository
	CreditRepository
}
