package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dryrunhq/dryrun/internal/repository"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.Repository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) CreateSession(ctx context.Context, input repository.CreateSessionInput) (*repository.Session, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO sessions (candidate_id, stage, status, phase, exchanges, tone, depth, resume, job_description, company_content, started_at)
		 VALUES ($1, $2, 'in_progress', $3, 0, $4, $5, $6, $7, $8, $9)
		 RETURNING id, candidate_id, stage, status, phase, exchanges, tone, depth, resume, job_description, company_content,
		           started_at, ended_at, duration_seconds, created_at, updated_at`,
		input.CandidateID, input.Stage, input.Phase, input.Tone, input.Depth,
		input.Resume, input.JobDescription, input.CompanyContent, input.StartedAt)
	return scanSession(row)
}

func (r *PostgresRepository) GetSession(ctx context.Context, sessionID string) (*repository.Session, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, candidate_id, stage, status, phase, exchanges, tone, depth, resume, job_description, company_content,
		        started_at, ended_at, duration_seconds, created_at, updated_at
		 FROM sessions WHERE id = $1`,
		sessionID)
	return scanSession(row)
}

func (r *PostgresRepository) UpdateSessionProgress(ctx context.Context, input repository.UpdateSessionProgressInput) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE sessions SET phase = $2, exchanges = $3, updated_at = NOW() WHERE id = $1`,
		input.SessionID, input.Phase, input.Exchanges)
	return err
}

func (r *PostgresRepository) UpdateSessionCompleted(ctx context.Context, input repository.CompleteSessionInput) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE sessions SET status = 'completed', ended_at = $2, duration_seconds = $3, updated_at = NOW() WHERE id = $1`,
		input.SessionID, input.EndedAt, input.DurationSeconds)
	return err
}

func (r *PostgresRepository) AppendMessage(ctx context.Context, input repository.AppendMessageInput) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO transcript_messages (session_id, message_index, speaker, content, stamp, question_id)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))`,
		input.SessionID, input.MessageIndex, input.Speaker, input.Content, input.Stamp, input.QuestionID)
	return err
}

func (r *PostgresRepository) InsertQuestion(ctx context.Context, input repository.InsertQuestionInput) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO transcript_questions (session_id, question_id, content, stamp, assessment_areas)
		 VALUES ($1, $2, $3, $4, $5)`,
		input.SessionID, input.QuestionID, input.Content, input.Stamp, input.AssessmentAreas)
	return err
}

func (r *PostgresRepository) ListMessagesBySessionID(ctx context.Context, sessionID string) ([]repository.TranscriptMessage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT session_id, message_index, speaker, content, stamp, COALESCE(question_id, ''), created_at
		 FROM transcript_messages WHERE session_id = $1 ORDER BY message_index ASC`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.TranscriptMessage
	for rows.Next() {
		var m repository.TranscriptMessage
		if err := rows.Scan(&m.SessionID, &m.MessageIndex, &m.Speaker, &m.Content, &m.Stamp, &m.QuestionID, &m.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) ListQuestionsBySessionID(ctx context.Context, sessionID string) ([]repository.TranscriptQuestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT session_id, question_id, content, stamp, assessment_areas, created_at
		 FROM transcript_questions WHERE session_id = $1 ORDER BY created_at ASC, question_id ASC`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.TranscriptQuestion
	for rows.Next() {
		var q repository.TranscriptQuestion
		if err := rows.Scan(&q.SessionID, &q.QuestionID, &q.Content, &q.Stamp, &q.AssessmentAreas, &q.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, q)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) UpsertObserverNote(ctx context.Context, note repository.ObserverNote) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO observer_notes (session_id, question_id, quality_flag, observations, notable_quote,
		                             flag_for_practice, practice_priority, duration_seconds, word_count_estimate)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (session_id, question_id) DO UPDATE SET
		   quality_flag = EXCLUDED.quality_flag,
		   observations = EXCLUDED.observations,
		   notable_quote = EXCLUDED.notable_quote,
		   flag_for_practice = EXCLUDED.flag_for_practice,
		   practice_priority = EXCLUDED.practice_priority,
		   duration_seconds = EXCLUDED.duration_seconds,
		   word_count_estimate = EXCLUDED.word_count_estimate`,
		note.SessionID, note.QuestionID, note.QualityFlag, note.Observations, note.NotableQuote,
		note.FlagForPractice, note.PracticePriority, note.DurationSeconds, note.WordCountEstimate)
	return err
}

func (r *PostgresRepository) ListObserverNotesBySessionID(ctx context.Context, sessionID string) (map[string]repository.ObserverNote, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT session_id, question_id, quality_flag, observations, notable_quote,
		        flag_for_practice, practice_priority, duration_seconds, word_count_estimate, created_at
		 FROM observer_notes WHERE session_id = $1`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	notes := make(map[string]repository.ObserverNote)
	for rows.Next() {
		var n repository.ObserverNote
		if err := rows.Scan(&n.SessionID, &n.QuestionID, &n.QualityFlag, &n.Observations, &n.NotableQuote,
			&n.FlagForPractice, &n.PracticePriority, &n.DurationSeconds, &n.WordCountEstimate, &n.CreatedAt); err != nil {
			return nil, err
		}
		notes[n.QuestionID] = n
	}
	return notes, rows.Err()
}

func (r *PostgresRepository) SaveObserverSummary(ctx context.Context, summary repository.ObserverSummary) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO observer_summaries (session_id, total_questions, strong_answers, weak_answers, red_flags, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 ON CONFLICT (session_id) DO UPDATE SET
		   total_questions = EXCLUDED.total_questions,
		   strong_answers = EXCLUDED.strong_answers,
		   weak_answers = EXCLUDED.weak_answers,
		   red_flags = EXCLUDED.red_flags,
		   updated_at = NOW()`,
		summary.SessionID, summary.TotalQuestions, summary.StrongAnswers, summary.WeakAnswers, summary.RedFlags)
	return err
}

func (r *PostgresRepository) GetObserverSummary(ctx context.Context, sessionID string) (*repository.ObserverSummary, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT session_id, total_questions, strong_answers, weak_answers, red_flags, updated_at
		 FROM observer_summaries WHERE session_id = $1`,
		sessionID)
	var s repository.ObserverSummary
	err := row.Scan(&s.SessionID, &s.TotalQuestions, &s.StrongAnswers, &s.WeakAnswers, &s.RedFlags, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *PostgresRepository) InsertRubricResult(ctx context.Context, input repository.InsertRubricResultInput) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO rubric_results (id, session_id, overall_score, payload)
		 VALUES ($1, $2, $3, $4)`,
		input.ID, input.SessionID, input.OverallScore, input.Payload)
	return err
}

func (r *PostgresRepository) GetLatestRubricResult(ctx context.Context, sessionID string) (*repository.RubricRecord, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, session_id, overall_score, payload, feedback_audio, created_at
		 FROM rubric_results WHERE session_id = $1 ORDER BY created_at DESC LIMIT 1`,
		sessionID)
	var rec repository.RubricRecord
	err := row.Scan(&rec.ID, &rec.SessionID, &rec.OverallScore, &rec.Payload, &rec.FeedbackAudio, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *PostgresRepository) AttachFeedbackAudio(ctx context.Context, rubricID string, audio []byte) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE rubric_results SET feedback_audio = $2 WHERE id = $1`,
		rubricID, audio)
	return err
}

func (r *PostgresRepository) GetCreditAccount(ctx context.Context, candidateID string) (*repository.CreditAccount, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT candidate_id, credits, subscription_active, subscription_uses
		 FROM credit_accounts WHERE candidate_id = $1`,
		candidateID)
	var a repository.CreditAccount
	err := row.Scan(&a.CandidateID, &a.Credits, &a.SubscriptionActive, &a.SubscriptionUses)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *PostgresRepository) SettleStageUsage(ctx context.Context, candidateID string, usedSubscription bool) error {
	if usedSubscription {
		_, err := r.pool.Exec(ctx,
			`UPDATE credit_accounts SET subscription_uses = subscription_uses + 1 WHERE candidate_id = $1`,
			candidateID)
		return err
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE credit_accounts SET credits = GREATEST(credits - 1, 0) WHERE candidate_id = $1`,
		candidateID)
	return err
}

func scanSession(row pgx.Row) (*repository.Session, error) {
	var s repository.Session
	err := row.Scan(&s.ID, &s.CandidateID, &s.Stage, &s.Status, &s.Phase, &s.Exchanges, &s.Tone, &s.Depth,
		&s.Resume, &s.JobDescription, &s.CompanyContent,
		&s.StartedAt, &s.EndedAt, &s.DurationSeconds, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}
