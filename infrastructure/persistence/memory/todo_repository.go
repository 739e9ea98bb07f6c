// Package memory provides an in-memory TodoRepository with the same
// contract as the DynamoDB gateway. Used by tests and local development.
package memory

import (
	"context"
	"sync"

	"todobackend/domain/todo"
	apperrors "todobackend/pkg/errors"
)

// TodoRepository is an in-memory implementation of ports.TodoRepository
type TodoRepository struct {
	mu    sync.RWMutex
	items map[string]map[string]todo.Item // userId -> todoId -> item
}

// NewTodoRepository creates an empty in-memory repository
func NewTodoRepository() *TodoRepository {
	return &TodoRepository{
		items: make(map[string]map[string]todo.Item),
	}
}

// QueryByOwner returns all items for the owner
func (r *TodoRepository) QueryByOwner(ctx context.Context, userID string) ([]todo.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]todo.Item, 0, len(r.items[userID]))
	for _, item := range r.items[userID] {
		items = append(items, item)
	}
	return items, nil
}

// QueryByOwnerAndName returns items whose lowerCaseName matches exactly
func (r *TodoRepository) QueryByOwnerAndName(ctx context.Context, userID, lowerCaseName string) ([]todo.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]todo.Item, 0)
	for _, item := range r.items[userID] {
		if item.LowerCaseName == lowerCaseName {
			items = append(items, item)
		}
	}
	return items, nil
}

// QueryByOwnerAndID returns the scoped item or a NotFound error
func (r *TodoRepository) QueryByOwnerAndID(ctx context.Context, userID, todoID string) (*todo.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[userID][todoID]
	if !ok {
		return nil, apperrors.NewNotFoundError("todo")
	}
	return &item, nil
}

// Put inserts or overwrites an item
func (r *TodoRepository) Put(ctx context.Context, item todo.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.items[item.UserID] == nil {
		r.items[item.UserID] = make(map[string]todo.Item)
	}
	r.items[item.UserID][item.TodoID] = item
	return nil
}

// Update mutates an existing item's mutable fields or fails with NotFound
func (r *TodoRepository) Update(ctx context.Context, userID, todoID string, update todo.Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[userID][todoID]
	if !ok {
		return apperrors.NewNotFoundError("todo")
	}

	item.Name = update.Name
	item.LowerCaseName = update.LowerCaseName
	item.DueDate = update.DueDate
	item.Done = update.Done
	r.items[userID][todoID] = item
	return nil
}

// Delete removes the item; missing keys are not an error
func (r *TodoRepository) Delete(ctx context.Context, userID, todoID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items[userID], todoID)
	return nil
}
