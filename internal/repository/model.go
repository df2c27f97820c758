package repository

import "time"

type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
)

// Session is one interview attempt. It is owned by exactly one candidate
// (or nobody, for anonymous practice runs) and becomes terminal once
// completed.
type Session struct {
	ID              string
	CandidateID     string
	Stage           string
	Status          SessionStatus
	Phase           string
	Exchanges       int
	Tone            string
	Depth           string
	Resume          string
	JobDescription  string
	CompanyContent  string
	StartedAt       time.Time
	EndedAt         *time.Time
	DurationSeconds int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TranscriptMessage is one persisted conversation turn, ordered by
// MessageIndex within its session.
type TranscriptMessage struct {
	SessionID    string
	MessageIndex int
	Speaker      string
	Content      string
	Stamp        string
	QuestionID   string
	CreatedAt    time.Time
}

// TranscriptQuestion is one entry of the derived question index.
type TranscriptQuestion struct {
	SessionID       string
	QuestionID      string
	Content         string
	Stamp           string
	AssessmentAreas []string
	CreatedAt       time.Time
}

// ObserverNote is the best-effort per-question annotation written by the
// observer agent. Notes are written at most once per question id; a rerun
// overwrites rather than appends.
type ObserverNote struct {
	SessionID         string
	QuestionID        string
	QualityFlag       string
	Observations      map[string]any
	NotableQuote      string
	FlagForPractice   bool
	PracticePriority  string
	DurationSeconds   *int
	WordCountEstimate int
	CreatedAt         time.Time
}

// ObserverSummary holds the running counters the observer keeps per session.
type ObserverSummary struct {
	SessionID      string
	TotalQuestions int
	StrongAnswers  int
	WeakAnswers    int
	RedFlags       []string
	UpdatedAt      time.Time
}

// RubricRecord is one persisted grading run. Records are immutable; a
// re-grade inserts a new record that supersedes the previous one.
type RubricRecord struct {
	ID            string
	SessionID     string
	OverallScore  float64
	Payload       []byte
	FeedbackAudio []byte
	CreatedAt     time.Time
}

// CreditAccount gates access to non-free stages.
type CreditAccount struct {
	CandidateID        string
	Credits            int
	SubscriptionActive bool
	SubscriptionUses   int
}
