package services

import (
	"context"
	"strings"
	"time"

	"todobackend/application/ports"
	"todobackend/domain/todo"
	apperrors "todobackend/pkg/errors"
	"todobackend/pkg/observability"
	"todobackend/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TodoService enforces owner scoping and the derived-field invariants the
// storage gateway does not know about. It is the only component with
// business rules; every operation delegates persistence to the repository.
type TodoService struct {
	repo        ports.TodoRepository
	attachments ports.AttachmentStore
	events      ports.EventPublisher
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewTodoService creates a new todo service
func NewTodoService(
	repo ports.TodoRepository,
	attachments ports.AttachmentStore,
	events ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *TodoService {
	return &TodoService{
		repo:        repo,
		attachments: attachments,
		events:      events,
		metrics:     metrics,
		logger:      logger,
	}
}

// CreateTodoRequest is the input for Create
type CreateTodoRequest struct {
	Name    string
	DueDate string
}

// UpdateTodoRequest is the input for Update
type UpdateTodoRequest struct {
	Name    string
	DueDate string
	Done    bool
}

// List returns all of the owner's items
func (s *TodoService) List(ctx context.Context, userID string) ([]todo.Item, error) {
	start := time.Now()

	items, err := s.repo.QueryByOwner(ctx, userID)
	s.record("List", start, err)
	return items, err
}

// Search returns the owner's items whose name matches case-insensitively.
// Empty input is passed through unchanged: it matches nothing, and
// substituting "list all" for an empty search is the client's decision.
func (s *TodoService) Search(ctx context.Context, userID, name string) ([]todo.Item, error) {
	start := time.Now()

	items, err := s.repo.QueryByOwnerAndName(ctx, userID, todo.NormalizeName(name))
	s.record("Search", start, err)
	return items, err
}

// Create builds and persists a new item for the owner. The identifier,
// creation time, lower-cased name and attachment URL are all stamped here
// and never change afterwards.
func (s *TodoService) Create(ctx context.Context, userID string, req CreateTodoRequest) (*todo.Item, error) {
	start := time.Now()

	if strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.NewValidationError("name is required")
	}

	todoID := uuid.New().String()
	item := todo.NewItem(
		userID,
		todoID,
		req.Name,
		req.DueDate,
		s.attachments.PublicURL(todoID),
		utils.NowRFC3339(),
	)

	if err := s.repo.Put(ctx, item); err != nil {
		s.record("Create", start, err)
		return nil, err
	}

	s.logger.Info("Todo created",
		zap.String("userID", userID),
		zap.String("todoId", todoID),
	)

	s.publish(ctx, ports.TodoEvent{
		Type:   ports.EventTodoCreated,
		UserID: userID,
		TodoID: todoID,
		Item:   &item,
	})
	s.record("Create", start, nil)

	return &item, nil
}

// Update mutates name, due date and done on an existing item. The item must
// already exist under the caller's scope; a missing item fails with
// NotFound and nothing is written. The lower-cased name is refreshed with
// the name so search never goes stale after a rename.
func (s *TodoService) Update(ctx context.Context, userID, todoID string, req UpdateTodoRequest) error {
	start := time.Now()

	if strings.TrimSpace(req.Name) == "" {
		return apperrors.NewValidationError("name is required")
	}

	if _, err := s.repo.QueryByOwnerAndID(ctx, userID, todoID); err != nil {
		s.record("Update", start, err)
		return err
	}

	// The conditional write re-checks existence, so a delete racing in
	// between surfaces as the same NotFound.
	err := s.repo.Update(ctx, userID, todoID, todo.NewUpdate(req.Name, req.DueDate, req.Done))
	if err != nil {
		s.record("Update", start, err)
		return err
	}

	s.logger.Info("Todo updated",
		zap.String("userID", userID),
		zap.String("todoId", todoID),
	)

	s.publish(ctx, ports.TodoEvent{
		Type:   ports.EventTodoUpdated,
		UserID: userID,
		TodoID: todoID,
	})
	s.record("Update", start, nil)

	return nil
}

// Delete removes the item and returns its id. Delete is idempotent by
// contract: a missing item still succeeds.
func (s *TodoService) Delete(ctx context.Context, userID, todoID string) (string, error) {
	start := time.Now()

	if err := s.repo.Delete(ctx, userID, todoID); err != nil {
		s.record("Delete", start, err)
		return "", err
	}

	s.logger.Info("Todo deleted",
		zap.String("userID", userID),
		zap.String("todoId", todoID),
	)

	s.publish(ctx, ports.TodoEvent{
		Type:   ports.EventTodoDeleted,
		UserID: userID,
		TodoID: todoID,
	})
	s.record("Delete", start, nil)

	return todoID, nil
}

// IssueUploadURL returns a short-lived upload URL for the todo's attachment.
// The caller must own the todo: foreign and absent ids both fail with
// NotFound before any signing happens.
func (s *TodoService) IssueUploadURL(ctx context.Context, userID, todoID string) (string, error) {
	start := time.Now()

	if _, err := s.repo.QueryByOwnerAndID(ctx, userID, todoID); err != nil {
		s.record("IssueUploadURL", start, err)
		return "", err
	}

	url, err := s.attachments.UploadURL(ctx, todoID)
	s.record("IssueUploadURL", start, err)
	return url, err
}

// publish sends a change event best-effort. The mutation already happened;
// a publish failure is logged, never surfaced.
func (s *TodoService) publish(ctx context.Context, event ports.TodoEvent) {
	if s.events == nil {
		return
	}

	event.At = utils.NowRFC3339()
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish todo event",
			zap.String("eventType", event.Type),
			zap.String("todoId", event.TodoID),
			zap.Error(err),
		)
	}
}

func (s *TodoService) record(operation string, start time.Time, err error) {
	s.metrics.RecordOperation(operation, time.Since(start), err == nil)
}
