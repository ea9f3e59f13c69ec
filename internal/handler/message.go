package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/msgboard/msgboard/internal/handler/dto"
	"github.com/msgboard/msgboard/internal/middleware"
	"github.com/msgboard/msgboard/internal/service"
)

const entityMessage = "message"

// MessageHandler handles HTTP requests for message operations.
type MessageHandler struct {
	svc    *service.MessageService
	logger *slog.Logger
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(svc *service.MessageService, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /messages.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	messages, err := h.svc.ListMessages(r.Context())
	if err != nil {
		h.fail(w, r, opList, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// Get handles GET /messages/{id}.
func (h *MessageHandler) Get(w http.ResponseWriter, r *http.Request) {
	message, err := h.svc.GetMessage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, opGet, err)
		return
	}
	writeJSON(w, http.StatusOK, message)
}

// Create handles POST /messages.
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := readFields(r)
	if err != nil {
		h.fail(w, r, opCreate, err)
		return
	}
	if body.missing(dto.FieldContent, dto.FieldUserID) {
		h.reject(w, r, opCreate)
		return
	}

	content, err := body.str(dto.FieldContent)
	if err != nil {
		h.fail(w, r, opCreate, err)
		return
	}
	userID, err := body.str(dto.FieldUserID)
	if err != nil {
		h.fail(w, r, opCreate, err)
		return
	}

	message, err := h.svc.CreateMessage(r.Context(), service.CreateMessageInput{
		Content: content,
		UserID:  userID,
	})
	if err != nil {
		h.fail(w, r, opCreate, err)
		return
	}

	h.logger.Info("message_created",
		"message_id", message.ID,
		"user_id", message.UserID,
		"blank_content", strings.TrimSpace(message.Content) == "",
	)

	writeJSON(w, http.StatusCreated, message)
}

// Delete handles DELETE /messages/{id}.
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteMessage(r.Context(), id); err != nil {
		h.fail(w, r, opDelete, err)
		return
	}

	h.logger.Info("message_deleted", "message_id", id)

	w.WriteHeader(http.StatusNoContent)
}

func (h *MessageHandler) fail(w http.ResponseWriter, r *http.Request, op operation, err error) {
	fail(w, r, h.logger, entityMessage, op, messageFailures[op], err)
}

func (h *MessageHandler) reject(w http.ResponseWriter, r *http.Request, op operation) {
	h.logger.Warn("validation_failed",
		"request_id", middleware.GetRequestID(r.Context()),
		"entity", entityMessage,
		"operation", string(op),
	)
	writeError(w, http.StatusBadRequest, messageFailures[op].invalid)
}
