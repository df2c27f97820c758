package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`DO $$ BEGIN CREATE TYPE session_status AS ENUM ('in_progress', 'completed'); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		candidate_id TEXT NOT NULL DEFAULT '',
		stage TEXT NOT NULL,
		status session_status NOT NULL DEFAULT 'in_progress',
		phase TEXT NOT NULL,
		exchanges INTEGER NOT NULL DEFAULT 0,
		tone TEXT NOT NULL DEFAULT '',
		depth TEXT NOT NULL DEFAULT '',
		resume TEXT NOT NULL DEFAULT '',
		job_description TEXT NOT NULL DEFAULT '',
		company_content TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMPTZ NOT NULL,
		ended_at TIMESTAMPTZ,
		duration_seconds BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_candidate ON sessions (candidate_id) WHERE candidate_id <> ''`,
	`CREATE TABLE IF NOT EXISTS transcript_messages (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		session_id UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		message_index INTEGER NOT NULL,
		speaker TEXT NOT NULL,
		content TEXT NOT NULL,
		stamp TEXT NOT NULL,
		question_id TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE(session_id, message_index)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transcript_messages_session ON transcript_messages (session_id, message_index)`,
	`CREATE TABLE IF NOT EXISTS transcript_questions (
		session_id UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		question_id TEXT NOT NULL,
		content TEXT NOT NULL,
		stamp TEXT NOT NULL,
		assessment_areas TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (session_id, question_id)
	)`,
	`CREATE TABLE IF NOT EXISTS observer_notes (
		session_id UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		question_id TEXT NOT NULL,
		quality_flag TEXT NOT NULL,
		observations JSONB NOT NULL DEFAULT '{}',
		notable_quote TEXT NOT NULL DEFAULT '',
		flag_for_practice BOOLEAN NOT NULL DEFAULT FALSE,
		practice_priority TEXT NOT NULL DEFAULT '',
		duration_seconds INTEGER,
		word_count_estimate INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (session_id, question_id)
	)`,
	`CREATE TABLE IF NOT EXISTS observer_summaries (
		session_id UUID PRIMARY KEY REFERENCES sessions(id) ON DELETE CASCADE,
		total_questions INTEGER NOT NULL DEFAULT 0,
		strong_answers INTEGER NOT NULL DEFAULT 0,
		weak_answers INTEGER NOT NULL DEFAULT 0,
		red_flags TEXT[] NOT NULL DEFAULT '{}',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS rubric_results (
		id UUID PRIMARY KEY,
		session_id UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		overall_score DOUBLE PRECISION NOT NULL,
		payload JSONB NOT NULL,
		feedback_audio BYTEA,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_rubric_results_session ON rubric_results (session_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS credit_accounts (
		candidate_id TEXT PRIMARY KEY,
		credits INTEGER NOT NULL DEFAULT 0,
		subscription_active BOOLEAN NOT NULL DEFAULT FALSE,
		subscription_uses INTEGER NOT NULL DEFAULT 0
	)`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
