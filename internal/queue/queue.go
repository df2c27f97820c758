package queue

import "context"

// GradingJob asks the grading worker to grade one completed session.
type GradingJob struct {
	JobID     string `json:"job_id"`
	SessionID string `json:"session_id"`
}

// Publisher enqueues grading jobs for asynchronous processing.
type Publisher interface {
	PublishGradingJob(ctx context.Context, job GradingJob) error
}

// Consumer delivers grading jobs to a handler until the context is
// cancelled. Handler errors are the handler's to log; delivery is
// at-least-once.
type Consumer interface {
	ConsumeGradingJobs(ctx context.Context, handle func(GradingJob)) error
}
