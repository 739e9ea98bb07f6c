package handlers

import (
	"encoding/json"
	"net/http"

	"todobackend/application/services"
	"todobackend/domain/todo"
	"todobackend/pkg/auth"
	apperrors "todobackend/pkg/errors"
	"todobackend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TodoHandler handles the todo HTTP surface
type TodoHandler struct {
	service *services.TodoService
	logger  *zap.Logger
}

// NewTodoHandler creates a new todo handler
func NewTodoHandler(service *services.TodoService, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{
		service: service,
		logger:  logger,
	}
}

// CreateTodoRequest represents the request body for creating a todo
type CreateTodoRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	DueDate string `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateTodoRequest represents the request body for updating a todo
type UpdateTodoRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	DueDate string `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	Done    bool   `json:"done"`
}

// ListTodos handles GET /todos
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	items, err := h.service.List(r.Context(), userCtx.UserID)
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to list todos")
		return
	}

	h.respondJSON(w, http.StatusOK, itemsResponse(items))
}

// SearchTodos handles GET /todos/search/{name}
func (h *TodoHandler) SearchTodos(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	name := chi.URLParam(r, "name")

	items, err := h.service.Search(r.Context(), userCtx.UserID, name)
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to search todos")
		return
	}

	h.respondJSON(w, http.StatusOK, itemsResponse(items))
}

// CreateTodo handles POST /todos
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	item, err := h.service.Create(r.Context(), userCtx.UserID, services.CreateTodoRequest{
		Name:    req.Name,
		DueDate: req.DueDate,
	})
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to create todo")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{"item": item})
}

// UpdateTodo handles PATCH /todos/{todoId}
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	todoID := chi.URLParam(r, "todoId")
	if todoID == "" {
		h.respondError(w, http.StatusBadRequest, "Todo ID is required")
		return
	}

	var req UpdateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if err := h.service.Update(r.Context(), userCtx.UserID, todoID, services.UpdateTodoRequest{
		Name:    req.Name,
		DueDate: req.DueDate,
		Done:    req.Done,
	}); err != nil {
		h.handleServiceError(w, r, err, "Failed to update todo")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteTodo handles DELETE /todos/{todoId}
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	todoID := chi.URLParam(r, "todoId")
	if todoID == "" {
		h.respondError(w, http.StatusBadRequest, "Todo ID is required")
		return
	}

	deletedID, err := h.service.Delete(r.Context(), userCtx.UserID, todoID)
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to delete todo")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"todoId": deletedID})
}

// IssueUploadURL handles POST /todos/{todoId}/attachment
func (h *TodoHandler) IssueUploadURL(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	todoID := chi.URLParam(r, "todoId")
	if todoID == "" {
		h.respondError(w, http.StatusBadRequest, "Todo ID is required")
		return
	}

	uploadURL, err := h.service.IssueUploadURL(r.Context(), userCtx.UserID, todoID)
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to issue upload URL")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"uploadUrl": uploadURL})
}

// Helper methods

// itemsResponse wraps items in the list envelope, never null
func itemsResponse(items []todo.Item) map[string]interface{} {
	if items == nil {
		items = []todo.Item{}
	}
	return map[string]interface{}{"items": items}
}

// handleServiceError maps service errors onto HTTP responses
func (h *TodoHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if appErr := apperrors.GetAppError(err); appErr != nil {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		if status >= 500 {
			h.logger.Error(fallback,
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
			// Internal detail stays out of the response body
			h.respondError(w, status, fallback)
			return
		}
		h.respondError(w, status, appErr.Message)
		return
	}

	h.logger.Error(fallback,
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	h.respondError(w, http.StatusInternalServerError, fallback)
}

func (h *TodoHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *TodoHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]interface{}{
		"error":   true,
		"message": message,
		"code":    status,
	})
}
