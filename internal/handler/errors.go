package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msgboard/msgboard/internal/handler/dto"
	"github.com/msgboard/msgboard/internal/middleware"
	"github.com/msgboard/msgboard/internal/service"
)

const (
	msgMalformedBody    = "Internal server error"
	msgBodyTooLarge     = "Request body too large"
	msgResourceMissing  = "resource not found"
	msgMethodNotAllowed = "method not allowed"
)

// operation names one CRUD endpoint of an entity.
type operation string

const (
	opList   operation = "list"
	opGet    operation = "get"
	opCreate operation = "create"
	opDelete operation = "delete"
)

// failures lists the client-facing messages for one operation. Empty
// entries never occur for that operation.
type failures struct {
	invalid  string // 400, required fields missing
	conflict string // 400, datastore constraint refused the write
	notFound string // 404
	internal string // 500, anything unclassified
}

var userFailures = map[operation]failures{
	opList:   {internal: "Failed to fetch users"},
	opGet:    {notFound: "User not found", internal: "Failed to fetch user"},
	opCreate: {invalid: "Name and email are required", conflict: "Email already exists", internal: "Failed to create user"},
	opDelete: {notFound: "User not found", internal: "Failed to delete user"},
}

var messageFailures = map[operation]failures{
	opList:   {internal: "Error fetching messages"},
	opGet:    {notFound: "Message not found", internal: "Error fetching message"},
	opCreate: {invalid: "Content and userId are required", conflict: "User not found", internal: "Error creating message"},
	opDelete: {notFound: "Message not found", internal: "Error deleting message"},
}

// classify maps a service or request error onto a status and message
// from the operation's failure set.
func classify(f failures, err error) (int, string) {
	switch {
	case errors.Is(err, errInvalidBody):
		return http.StatusInternalServerError, msgMalformedBody
	case errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge, msgBodyTooLarge
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrMessageNotFound):
		if f.notFound != "" {
			return http.StatusNotFound, f.notFound
		}
	case errors.Is(err, service.ErrEmailExists), errors.Is(err, service.ErrOwnerNotFound):
		if f.conflict != "" {
			return http.StatusBadRequest, f.conflict
		}
	}
	return http.StatusInternalServerError, f.internal
}

// fail logs err and writes the mapped error response.
func fail(w http.ResponseWriter, r *http.Request, logger *slog.Logger, entity string, op operation, f failures, err error) {
	status, message := classify(f, err)

	attrs := []any{
		"request_id", middleware.GetRequestID(r.Context()),
		"entity", entity,
		"operation", string(op),
		"status_code", status,
		"error", err,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request_failed", attrs...)
	} else {
		logger.Warn("request_rejected", attrs...)
	}

	writeError(w, status, message)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message})
}
