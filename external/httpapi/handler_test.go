package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/dryrunhq/dryrun/internal/interview"
	"github.com/dryrunhq/dryrun/internal/phase"
	"github.com/dryrunhq/dryrun/internal/repository"
)

type stubService struct {
	startResult *interview.StartResult
	startErr    error
	turnResult  *interview.TurnResult
	turnErr     error
	completeErr error
	lastMessage string
}

func (s *stubService) StartSession(_ context.Context, _ interview.StartInput) (*interview.StartResult, error) {
	return s.startResult, s.startErr
}

func (s *stubService) HandleTurn(_ context.Context, _, utterance string) (*interview.TurnResult, error) {
	s.lastMessage = utterance
	return s.turnResult, s.turnErr
}

func (s *stubService) HandleVoiceTurn(_ context.Context, _ string, _ []byte, _ string) (*interview.TurnResult, error) {
	return s.turnResult, s.turnErr
}

func (s *stubService) CompleteSession(_ context.Context, _ string) error {
	return s.completeErr
}

type stubRubrics struct {
	record *repository.RubricRecord
	err    error
}

func (s stubRubrics) InsertRubricResult(_ context.Context, _ repository.InsertRubricResultInput) error {
	return errors.New("not used")
}

func (s stubRubrics) GetLatestRubricResult(_ context.Context, _ string) (*repository.RubricRecord, error) {
	return s.record, s.err
}

func (s stubRubrics) AttachFeedbackAudio(_ context.Context, _ string, _ []byte) error {
	return errors.New("not used")
}

func newTestRouter(service SessionService, rubrics repository.RubricRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	NewHandler(service, rubrics).Register(engine)
	return engine
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestStartSession_Created(t *testing.T) {
	service := &stubService{
		startResult: &interview.StartResult{
			Session: &repository.Session{ID: "session-1", Stage: "hr_screen"},
			Opening: "Hi! Ready to begin?",
			Phase:   phase.Opening,
		},
	}
	router := newTestRouter(service, stubRubrics{})

	w := doJSON(t, router, http.MethodPost, "/sessions", gin.H{"stage": "hr_screen"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["session_id"] != "session-1" || resp["opening"] != "Hi! Ready to begin?" {
		t.Fatalf("unexpected response: %v", resp)
	}
}

func TestStartSession_MissingStageRejected(t *testing.T) {
	router := newTestRouter(&stubService{}, stubRubrics{})
	if w := doJSON(t, router, http.MethodPost, "/sessions", gin.H{}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestStartSession_AccessDeniedIsForbidden(t *testing.T) {
	service := &stubService{startErr: interview.ErrAccessDenied}
	router := newTestRouter(service, stubRubrics{})
	if w := doJSON(t, router, http.MethodPost, "/sessions", gin.H{"stage": "hiring_manager"}); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestHandleTurn_OK(t *testing.T) {
	service := &stubService{
		turnResult: &interview.TurnResult{Reply: "Tell me more.", Phase: phase.Screening, Exchanges: 3},
	}
	router := newTestRouter(service, stubRubrics{})

	w := doJSON(t, router, http.MethodPost, "/sessions/session-1/turns", gin.H{"message": "I led the migration."})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if service.lastMessage != "I led the migration." {
		t.Fatalf("expected message forwarded to service, got %q", service.lastMessage)
	}
}

func TestHandleTurn_CompletedSessionConflicts(t *testing.T) {
	service := &stubService{turnErr: interview.ErrSessionCompleted}
	router := newTestRouter(service, stubRubrics{})
	if w := doJSON(t, router, http.MethodPost, "/sessions/session-1/turns", gin.H{"message": "hello"}); w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestHandleVoiceTurn_RejectsBadBase64(t *testing.T) {
	router := newTestRouter(&stubService{turnResult: &interview.TurnResult{}}, stubRubrics{})
	if w := doJSON(t, router, http.MethodPost, "/sessions/session-1/voice-turns", gin.H{"audio": "%%%not-base64%%%"}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCompleteSession_Accepted(t *testing.T) {
	router := newTestRouter(&stubService{}, stubRubrics{})
	if w := doJSON(t, router, http.MethodPost, "/sessions/session-1/complete", nil); w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}
}

func TestGetResult_ReturnsLatestRubric(t *testing.T) {
	rubrics := stubRubrics{record: &repository.RubricRecord{
		ID:           "rubric-1",
		SessionID:    "session-1",
		OverallScore: 7.4,
		Payload:      []byte(`{"detailed_feedback":"Solid screen."}`),
	}}
	router := newTestRouter(&stubService{}, rubrics)

	w := doJSON(t, router, http.MethodGet, "/sessions/session-1/result", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["overall_score"].(float64) != 7.4 {
		t.Fatalf("unexpected score in response: %v", resp)
	}
}

func TestGetResult_NotFound(t *testing.T) {
	router := newTestRouter(&stubService{}, stubRubrics{err: repository.ErrNotFound})
	if w := doJSON(t, router, http.MethodGet, "/sessions/session-1/result", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
