// Package httpapi exposes the interview flow over HTTP.
package httpapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dryrunhq/dryrun/internal/interview"
	"github.com/dryrunhq/dryrun/internal/repository"
	"github.com/dryrunhq/dryrun/internal/stage"
)

// SessionService is the slice of the interview manager the API needs.
type SessionService interface {
	StartSession(ctx context.Context, input interview.StartInput) (*interview.StartResult, error)
	HandleTurn(ctx context.Context, sessionID, utterance string) (*interview.TurnResult, error)
	HandleVoiceTurn(ctx context.Context, sessionID string, audio []byte, language string) (*interview.TurnResult, error)
	CompleteSession(ctx context.Context, sessionID string) error
}

type Handler struct {
	sessions SessionService
	rubrics  repository.RubricRepository
}

func NewHandler(sessions SessionService, rubrics repository.RubricRepository) *Handler {
	return &Handler{sessions: sessions, rubrics: rubrics}
}

func (h *Handler) Register(r gin.IRouter) {
	r.POST("/sessions", h.startSession)
	r.POST("/sessions/:id/turns", h.handleTurn)
	r.POST("/sessions/:id/voice-turns", h.handleVoiceTurn)
	r.POST("/sessions/:id/complete", h.completeSession)
	r.GET("/sessions/:id/result", h.getResult)
}

type startSessionRequest struct {
	CandidateID    string `json:"candidate_id"`
	Stage          string `json:"stage" binding:"required"`
	Tone           string `json:"tone"`
	Depth          string `json:"depth"`
	Resume         string `json:"resume"`
	JobDescription string `json:"job_description"`
	CompanyContent string `json:"company_content"`
}

func (h *Handler) startSession(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.sessions.StartSession(c.Request.Context(), interview.StartInput{
		CandidateID:    req.CandidateID,
		Stage:          req.Stage,
		Tone:           req.Tone,
		Depth:          req.Depth,
		Resume:         req.Resume,
		JobDescription: req.JobDescription,
		CompanyContent: req.CompanyContent,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"session_id": result.Session.ID,
		"stage":      result.Session.Stage,
		"phase":      result.Phase,
		"opening":    result.Opening,
	})
}

type turnRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *Handler) handleTurn(c *gin.Context) {
	var req turnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.sessions.HandleTurn(c.Request.Context(), c.Param("id"), req.Message)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, turnResponse(result))
}

type voiceTurnRequest struct {
	Audio    string `json:"audio" binding:"required"`
	Language string `json:"language"`
}

func (h *Handler) handleVoiceTurn(c *gin.Context) {
	var req voiceTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	audio, err := base64.StdEncoding.DecodeString(req.Audio)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio must be base64 encoded"})
		return
	}
	result, err := h.sessions.HandleVoiceTurn(c.Request.Context(), c.Param("id"), audio, req.Language)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, turnResponse(result))
}

func (h *Handler) completeSession(c *gin.Context) {
	if err := h.sessions.CompleteSession(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "grading_enqueued"})
}

func (h *Handler) getResult(c *gin.Context) {
	record, err := h.rubrics.GetLatestRubricResult(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	var payload map[string]any
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		slog.Error("stored rubric payload is unreadable", "error", err, "rubric_id", record.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stored result is unreadable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rubric_id":     record.ID,
		"session_id":    record.SessionID,
		"overall_score": record.OverallScore,
		"result":        payload,
		"has_audio":     len(record.FeedbackAudio) > 0,
	})
}

func turnResponse(result *interview.TurnResult) gin.H {
	return gin.H{
		"reply":          result.Reply,
		"phase":          result.Phase,
		"exchanges":      result.Exchanges,
		"stage_complete": result.StageComplete,
	}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, interview.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, interview.ErrSessionCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, stage.ErrUnknownStage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		slog.Error("request failed", "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
