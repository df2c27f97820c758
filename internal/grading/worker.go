package grading

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/dryrunhq/dryrun/internal/queue"
	"github.com/dryrunhq/dryrun/internal/repository"
	"github.com/dryrunhq/dryrun/internal/speech"
	"github.com/dryrunhq/dryrun/internal/stage"
)

// Worker drains the grading job queue and runs the pipeline for each job.
// After a successful run it renders the detailed feedback to audio; audio
// failures never fail the grading result.
type Worker struct {
	consumer queue.Consumer
	pipeline *Pipeline
	rubrics  repository.RubricRepository
	synth    speech.Synthesizer
	cfg      *stage.Config
	opts     Options
}

func NewWorker(consumer queue.Consumer, pipeline *Pipeline, rubrics repository.RubricRepository, synth speech.Synthesizer, cfg *stage.Config, opts Options) *Worker {
	return &Worker{
		consumer: consumer,
		pipeline: pipeline,
		rubrics:  rubrics,
		synth:    synth,
		cfg:      cfg,
		opts:     opts,
	}
}

// Run blocks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	return w.consumer.ConsumeGradingJobs(ctx, func(job queue.GradingJob) {
		w.handle(ctx, job)
	})
}

func (w *Worker) handle(ctx context.Context, job queue.GradingJob) {
	slog.Info("grading job received", "job_id", job.JobID, "session_id", job.SessionID)
	record, err := w.pipeline.Grade(ctx, w.cfg, w.opts, job.SessionID)
	if err != nil {
		slog.Error("grading job failed", "error", err, "job_id", job.JobID, "session_id", job.SessionID)
		return
	}
	w.attachFeedbackAudio(ctx, record)
}

func (w *Worker) attachFeedbackAudio(ctx context.Context, record *repository.RubricRecord) {
	var payload struct {
		DetailedFeedback string `json:"detailed_feedback"`
	}
	if err := json.Unmarshal(record.Payload, &payload); err != nil || payload.DetailedFeedback == "" {
		return
	}
	audio, err := w.synth.Synthesize(ctx, payload.DetailedFeedback)
	if err != nil {
		slog.Warn("feedback audio synthesis failed; result stands without audio", "error", err, "rubric_id", record.ID)
		return
	}
	if err := w.rubrics.AttachFeedbackAudio(ctx, record.ID, audio); err != nil {
		slog.Warn("feedback audio persist failed; result stands without audio", "error", err, "rubric_id", record.ID)
	}
}
