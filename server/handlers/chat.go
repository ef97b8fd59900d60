// Package handlers provides the HTTP handlers for the lead-qualification
// API. It implements the two conversation endpoints on top of the qualify
// orchestrator.
//
// The package follows these design principles:
// 1. Consistent error handling using the errors package
// 2. Structured logging with request IDs
// 3. Clear request validation before any orchestration
// 4. A fixed wire contract: every error body is {"error": "<message>"}
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apierrors "github.com/leadline-ai/leadline/errors"
	"github.com/leadline-ai/leadline/profile"
	"github.com/leadline-ai/leadline/qualify"
	"github.com/leadline-ai/leadline/server/middleware"
	"github.com/leadline-ai/leadline/session"
)

// Client-visible messages. These are part of the wire contract and must not
// drift.
const (
	msgInvalidIndustry = "Invalid industry."
	msgChatNotStarted  = "Chat not initiated."
	msgCompletionFail  = "Failed to get response from AI."
	msgInvalidBody     = "Invalid request body."
)

var validate = validator.New()

// StartChatRequest is the body of POST /api/start-chat.
type StartChatRequest struct {
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Industry string `json:"industry" validate:"required"`
}

// StartChatResponse is the success body of POST /api/start-chat.
type StartChatResponse struct {
	Reply   string         `json:"reply"`
	History []session.Turn `json:"history"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message  string `json:"message" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Industry string `json:"industry" validate:"required"`
}

// StartChatHandler handles POST /api/start-chat: it opens a session for the
// lead and returns the composed greeting.
type StartChatHandler struct {
	orchestrator *qualify.Orchestrator
	logger       *zap.Logger
}

// NewStartChatHandler creates the start-chat handler.
func NewStartChatHandler(o *qualify.Orchestrator, logger *zap.Logger) *StartChatHandler {
	return &StartChatHandler{orchestrator: o, logger: logger}
}

// ServeHTTP implements http.Handler.
func (h *StartChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req StartChatRequest
	if !decodeRequest(w, r, requestID, &req) {
		return
	}

	reply, history, err := h.orchestrator.StartChat(req.Phone, req.Industry, req.Name)
	if err != nil {
		if errors.Is(err, profile.ErrUnknownIndustry) {
			h.logger.Warn("start-chat for unknown industry",
				zap.String("request_id", requestID),
				zap.String("industry", req.Industry),
			)
			apierrors.WriteError(w, apierrors.NewValidationError(requestID, msgInvalidIndustry, nil))
			return
		}
		apierrors.WriteError(w, apierrors.NewInternalError(requestID, err))
		return
	}

	writeJSON(w, h.logger, requestID, StartChatResponse{Reply: reply, History: history})
}

// ChatHandler handles POST /api/chat: one qualification turn through the
// completion provider.
type ChatHandler struct {
	orchestrator *qualify.Orchestrator
	logger       *zap.Logger
}

// NewChatHandler creates the chat handler.
func NewChatHandler(o *qualify.Orchestrator, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{orchestrator: o, logger: logger}
}

// ServeHTTP implements http.Handler.
//
// Every completion-path failure (provider error, malformed model output,
// timeout) collapses to the same 500 body. The distinction lives in logs
// and metrics, not on the wire.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req ChatRequest
	if !decodeRequest(w, r, requestID, &req) {
		return
	}

	result, err := h.orchestrator.ContinueChat(r.Context(), req.Phone, req.Industry, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, profile.ErrUnknownIndustry):
			apierrors.WriteError(w, apierrors.NewValidationError(requestID, msgInvalidIndustry, nil))
		case errors.Is(err, session.ErrSessionNotFound):
			h.logger.Warn("chat before start-chat",
				zap.String("request_id", requestID),
				zap.String("phone", req.Phone),
			)
			apierrors.WriteError(w, apierrors.NewValidationError(requestID, msgChatNotStarted, nil))
		default:
			h.logger.Error("chat turn failed",
				zap.String("request_id", requestID),
				zap.Error(err),
			)
			apierrors.WriteError(w, apierrors.NewProviderError(requestID, msgCompletionFail, err))
		}
		return
	}

	writeJSON(w, h.logger, requestID, result)
}

// decodeRequest parses and validates a JSON request body. On failure it
// writes the 400 response itself and returns false.
func decodeRequest(w http.ResponseWriter, r *http.Request, requestID string, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		apierrors.WriteError(w, apierrors.NewValidationError(requestID, msgInvalidBody, nil))
		return false
	}
	if err := validate.Struct(dst); err != nil {
		apierrors.WriteError(w, apierrors.NewValidationError(requestID, msgInvalidBody, nil))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, requestID string, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encoding response",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
	}
}
