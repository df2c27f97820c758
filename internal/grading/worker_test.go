package grading

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dryrunhq/dryrun/internal/queue"
)

// listConsumer feeds a fixed list of jobs to the handler and returns.
type listConsumer struct {
	jobs []queue.GradingJob
}

func (c listConsumer) ConsumeGradingJobs(_ context.Context, handle func(queue.GradingJob)) error {
	for _, job := range c.jobs {
		handle(job)
	}
	return nil
}

type audioRepo struct {
	mockRepo
	mu       sync.Mutex
	attached map[string][]byte
	err      error
}

func (r *audioRepo) AttachFeedbackAudio(_ context.Context, rubricID string, audio []byte) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.attached == nil {
		r.attached = make(map[string][]byte)
	}
	r.attached[rubricID] = audio
	return nil
}

type fakeSynth struct {
	audio []byte
	err   error
	calls int
}

func (s *fakeSynth) Synthesize(_ context.Context, _ string) ([]byte, error) {
	s.calls++
	return s.audio, s.err
}

func TestWorker_GradesJobAndAttachesAudio(t *testing.T) {
	repo := &audioRepo{mockRepo: mockRepo{session: completedSession()}}
	model := &scriptedModel{responses: []string{hrResponseJSON(t)}}
	pipeline := NewPipeline(repo, model, staticNotes{}, WithSleeper(func(time.Duration) {}))
	synth := &fakeSynth{audio: []byte("mp3-bytes")}
	worker := NewWorker(listConsumer{jobs: []queue.GradingJob{{JobID: "job-1", SessionID: "session-1"}}},
		pipeline, repo, synth, gradingStageConfig(), Options{})

	if err := worker.Run(context.Background()); err != nil {
		t.Fatalf("worker run: %v", err)
	}
	if len(repo.rubrics) != 1 {
		t.Fatalf("expected one rubric result, got %d", len(repo.rubrics))
	}
	if len(repo.attached) != 1 {
		t.Fatalf("expected feedback audio attached, got %v", repo.attached)
	}
}

func TestWorker_SynthesisFailureKeepsResult(t *testing.T) {
	repo := &audioRepo{mockRepo: mockRepo{session: completedSession()}}
	model := &scriptedModel{responses: []string{hrResponseJSON(t)}}
	pipeline := NewPipeline(repo, model, staticNotes{}, WithSleeper(func(time.Duration) {}))
	synth := &fakeSynth{err: errors.New("tts down")}
	worker := NewWorker(listConsumer{jobs: []queue.GradingJob{{JobID: "job-1", SessionID: "session-1"}}},
		pipeline, repo, synth, gradingStageConfig(), Options{})

	if err := worker.Run(context.Background()); err != nil {
		t.Fatalf("worker run: %v", err)
	}
	if len(repo.rubrics) != 1 {
		t.Fatal("grading result must stand when synthesis fails")
	}
	if len(repo.attached) != 0 {
		t.Fatal("no audio may be attached after a synthesis failure")
	}
}

func TestWorker_GradingFailureIsLoggedNotFatal(t *testing.T) {
	repo := &audioRepo{mockRepo: mockRepo{session: completedSession()}}
	model := &scriptedModel{responses: []string{"bad", "bad", "bad"}}
	pipeline := NewPipeline(repo, model, staticNotes{}, WithSleeper(func(time.Duration) {}))
	synth := &fakeSynth{}
	worker := NewWorker(listConsumer{jobs: []queue.GradingJob{{JobID: "job-1", SessionID: "session-1"}}},
		pipeline, repo, synth, gradingStageConfig(), Options{})

	if err := worker.Run(context.Background()); err != nil {
		t.Fatalf("worker run: %v", err)
	}
	if synth.calls != 0 {
		t.Fatal("no synthesis may happen after a failed grading run")
	}
}
