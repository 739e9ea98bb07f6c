// Package todo defines the todo item entity and the invariants every write
// path must preserve.
package todo

import "strings"

// Item is a single task record owned by exactly one user. The pair
// (UserID, TodoID) identifies it; UserID, TodoID, CreatedAt and
// AttachmentURL never change after creation.
type Item struct {
	UserID        string `json:"userId"`
	TodoID        string `json:"todoId"`
	Name          string `json:"name"`
	LowerCaseName string `json:"lowerCaseName"`
	DueDate       string `json:"dueDate"`
	CreatedAt     string `json:"createdAt"`
	Done          bool   `json:"done"`
	AttachmentURL string `json:"attachmentUrl"`
}

// Update carries the mutable fields of an item. LowerCaseName is derived
// from Name and must be written together with it, otherwise name search
// returns stale results after a rename.
type Update struct {
	Name          string
	LowerCaseName string
	DueDate       string
	Done          bool
}

// NewItem builds a fresh item with derived fields stamped. Done starts
// false; the attachment URL points at the object the client may upload
// later, whether or not it ever exists.
func NewItem(userID, todoID, name, dueDate, attachmentURL, createdAt string) Item {
	return Item{
		UserID:        userID,
		TodoID:        todoID,
		Name:          name,
		LowerCaseName: NormalizeName(name),
		DueDate:       dueDate,
		CreatedAt:     createdAt,
		Done:          false,
		AttachmentURL: attachmentURL,
	}
}

// NewUpdate builds an update with the derived LowerCaseName kept in
// lockstep with Name.
func NewUpdate(name, dueDate string, done bool) Update {
	return Update{
		Name:          name,
		LowerCaseName: NormalizeName(name),
		DueDate:       dueDate,
		Done:          done,
	}
}

// NormalizeName lower-cases a name for the case-insensitive search index.
func NormalizeName(name string) string {
	return strings.ToLower(name)
}
