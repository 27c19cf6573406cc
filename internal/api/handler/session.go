// internal/api/handler/session.go
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/newthinker/scribe/internal/api/response"
	"github.com/newthinker/scribe/internal/core"
	"github.com/newthinker/scribe/internal/session"
)

// Engine defines the interface needed from session.Engine.
type Engine interface {
	Start(ctx context.Context, taskType core.TaskType, initialRequest string, sessionContext map[string]any) (*session.Session, error)
	Answer(ctx context.Context, sessionID string, answers []session.AnswerInput) (*session.Session, error)
	Finalize(ctx context.Context, sessionID, additionalRequirements string) (*core.Document, error)
	Abandon(ctx context.Context, sessionID string) (*session.Session, error)
	Get(ctx context.Context, sessionID string) (*session.Session, error)
	List(ctx context.Context) ([]session.Session, error)
}

// SessionHandler handles session lifecycle API requests.
type SessionHandler struct {
	engine Engine
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(engine Engine) *SessionHandler {
	return &SessionHandler{engine: engine}
}

type startRequest struct {
	TaskType       string         `json:"task_type"`
	InitialRequest string         `json:"initial_request"`
	Context        map[string]any `json:"context"`
}

type startResponse struct {
	SessionID string             `json:"session_id"`
	Status    session.Status     `json:"status"`
	Questions []session.Question `json:"questions"`
}

// Start creates a new session and returns its clarifying questions.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, core.WrapError(core.ErrInvalidAnswer, err))
		return
	}

	s, err := h.engine.Start(r.Context(), core.TaskType(req.TaskType), req.InitialRequest, req.Context)
	if err != nil {
		response.Error(w, response.Status(err), err)
		return
	}

	response.JSON(w, http.StatusCreated, startResponse{
		SessionID: s.ID,
		Status:    s.Status,
		Questions: s.Questions,
	})
}

type answerRequest struct {
	Answers []session.AnswerInput `json:"answers"`
}

type answerResponse struct {
	SessionID         string         `json:"session_id"`
	Status            session.Status `json:"status"`
	IsReadyToGenerate bool           `json:"is_ready_to_generate"`
}

// Answer records submitted answers and reports readiness.
func (h *SessionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, core.WrapError(core.ErrInvalidAnswer, err))
		return
	}

	s, err := h.engine.Answer(r.Context(), r.PathValue("id"), req.Answers)
	if err != nil {
		response.Error(w, response.Status(err), err)
		return
	}

	response.JSON(w, http.StatusOK, answerResponse{
		SessionID:         s.ID,
		Status:            s.Status,
		IsReadyToGenerate: s.Status == session.StatusReadyToGenerate,
	})
}

type finalizeRequest struct {
	AdditionalRequirements string `json:"additional_requirements"`
}

type finalizeResponse struct {
	Document *core.Document `json:"document"`
	Warnings []string       `json:"warnings"`
}

// Finalize assembles and returns the document. Partial section failures
// still return success, with warnings populated.
func (h *SessionHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	var req finalizeRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, core.WrapError(core.ErrInvalidAnswer, err))
			return
		}
	}

	doc, err := h.engine.Finalize(r.Context(), r.PathValue("id"), req.AdditionalRequirements)
	if err != nil {
		response.Error(w, response.Status(err), err)
		return
	}

	warnings := doc.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	response.JSON(w, http.StatusOK, finalizeResponse{Document: doc, Warnings: warnings})
}

// Get returns one session.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.engine.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Error(w, response.Status(err), err)
		return
	}
	response.JSON(w, http.StatusOK, s)
}

// Abandon moves a session to the abandoned state.
func (h *SessionHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	s, err := h.engine.Abandon(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Error(w, response.Status(err), err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"session_id": s.ID,
		"status":     s.Status,
	})
}

// List returns all sessions, newest first.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.engine.List(r.Context())
	if err != nil {
		response.Error(w, response.Status(err), err)
		return
	}
	response.JSON(w, http.StatusOK, sessions)
}
