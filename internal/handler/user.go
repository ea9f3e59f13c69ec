package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/msgboard/msgboard/internal/handler/dto"
	"github.com/msgboard/msgboard/internal/middleware"
	"github.com/msgboard/msgboard/internal/model"
	"github.com/msgboard/msgboard/internal/service"
)

const entityUser = "user"

// UserHandler handles HTTP requests for user operations.
type UserHandler struct {
	svc    *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.fail(w, r, opList, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Get handles GET /users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, opGet, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Create handles POST /users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := readFields(r)
	if err != nil {
		h.fail(w, r, opCreate, err)
		return
	}
	if body.missing(dto.FieldName, dto.FieldEmail) {
		h.reject(w, r, opCreate)
		return
	}

	input, err := userInput(body)
	if err != nil {
		h.fail(w, r, opCreate, err)
		return
	}

	user, err := h.svc.CreateUser(r.Context(), input)
	if err != nil {
		h.fail(w, r, opCreate, err)
		return
	}

	h.logger.Info("user_created",
		"user_id", user.ID,
		"blank_fields", blankFields(user),
	)

	writeJSON(w, http.StatusCreated, user)
}

// Delete handles DELETE /users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteUser(r.Context(), id); err != nil {
		h.fail(w, r, opDelete, err)
		return
	}

	h.logger.Info("user_deleted", "user_id", id)

	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) fail(w http.ResponseWriter, r *http.Request, op operation, err error) {
	fail(w, r, h.logger, entityUser, op, userFailures[op], err)
}

func (h *UserHandler) reject(w http.ResponseWriter, r *http.Request, op operation) {
	h.logger.Warn("validation_failed",
		"request_id", middleware.GetRequestID(r.Context()),
		"entity", entityUser,
		"operation", string(op),
	)
	writeError(w, http.StatusBadRequest, userFailures[op].invalid)
}

func userInput(body fields) (service.CreateUserInput, error) {
	name, err := body.str(dto.FieldName)
	if err != nil {
		return service.CreateUserInput{}, err
	}
	email, err := body.str(dto.FieldEmail)
	if err != nil {
		return service.CreateUserInput{}, err
	}
	return service.CreateUserInput{Name: name, Email: email}, nil
}

// blankFields names the stored fields that hold only whitespace.
func blankFields(user *model.User) []string {
	var blank []string
	if strings.TrimSpace(user.Name) == "" {
		blank = append(blank, dto.FieldName)
	}
	if strings.TrimSpace(user.Email) == "" {
		blank = append(blank, dto.FieldEmail)
	}
	return blank
}
