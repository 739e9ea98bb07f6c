// Package ports declares the interfaces the application layer depends on.
// Infrastructure provides the implementations; tests substitute fakes.
package ports

import (
	"context"

	"todobackend/domain/todo"
)

// TodoRepository mediates all access to the todo table. No business rules
// live behind this interface: every method maps to exactly one table call.
type TodoRepository interface {
	// QueryByOwner returns all items for the owner. Order is
	// storage-determined.
	QueryByOwner(ctx context.Context, userID string) ([]todo.Item, error)

	// QueryByOwnerAndName queries the name index for an exact match on the
	// already-normalized lower-case name.
	QueryByOwnerAndName(ctx context.Context, userID, lowerCaseName string) ([]todo.Item, error)

	// QueryByOwnerAndID is a point lookup scoped to the owner. Returns a
	// NotFound error when the item does not exist under that scope.
	QueryByOwnerAndID(ctx context.Context, userID, todoID string) (*todo.Item, error)

	// Put unconditionally inserts or overwrites an item.
	Put(ctx context.Context, item todo.Item) error

	// Update mutates name, lowerCaseName, dueDate and done only, and only
	// if the item already exists. Returns a NotFound error otherwise.
	Update(ctx context.Context, userID, todoID string, update todo.Update) error

	// Delete removes the item. Deleting a missing key is not an error.
	Delete(ctx context.Context, userID, todoID string) error
}

// AttachmentStore issues URLs for a todo's attachment object.
type AttachmentStore interface {
	// PublicURL derives the public read URL for an attachment. Pure; does
	// not verify the object exists.
	PublicURL(todoID string) string

	// UploadURL requests a short-lived presigned write URL for the
	// attachment object.
	UploadURL(ctx context.Context, todoID string) (string, error)
}

// EventPublisher broadcasts todo change events after successful mutations.
type EventPublisher interface {
	Publish(ctx context.Context, event TodoEvent) error
}

// TodoEvent describes a completed mutation.
type TodoEvent struct {
	Type   string     `json:"type"`
	UserID string     `json:"userId"`
	TodoID string     `json:"todoId"`
	Item   *todo.Item `json:"item,omitempty"`
	At     string     `json:"at"`
}

// Event types published by the todo service.
const (
	EventTodoCreated = "todo.created"
	EventTodoUpdated = "todo.updated"
	EventTodoDeleted = "todo.deleted"
)
