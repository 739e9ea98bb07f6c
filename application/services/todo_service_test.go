package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"todobackend/application/ports"
	"todobackend/infrastructure/persistence/memory"
	apperrors "todobackend/pkg/errors"
	"todobackend/pkg/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAttachmentStore issues deterministic URLs without touching S3
type fakeAttachmentStore struct {
	uploadErr error
}

func (f *fakeAttachmentStore) PublicURL(todoID string) string {
	return fmt.Sprintf("https://attachments.test/%s", todoID)
}

func (f *fakeAttachmentStore) UploadURL(ctx context.Context, todoID string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return fmt.Sprintf("https://attachments.test/%s?signed=true", todoID), nil
}

// recordingPublisher captures published events
type recordingPublisher struct {
	events []ports.TodoEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event ports.TodoEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func newTestService(t *testing.T) (*TodoService, *memory.TodoRepository, *recordingPublisher) {
	t.Helper()

	repo := memory.NewTodoRepository()
	publisher := &recordingPublisher{}
	svc := NewTodoService(
		repo,
		&fakeAttachmentStore{},
		publisher,
		observability.NewMetrics("test", nil, nil),
		zap.NewNop(),
	)
	return svc, repo, publisher
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("stamps derived fields", func(t *testing.T) {
		svc, _, publisher := newTestService(t)

		item, err := svc.Create(ctx, "u1", CreateTodoRequest{Name: "Buy milk", DueDate: "2024-01-01"})
		require.NoError(t, err)

		assert.Equal(t, "u1", item.UserID)
		assert.NotEmpty(t, item.TodoID)
		assert.Equal(t, "Buy milk", item.Name)
		assert.Equal(t, "buy milk", item.LowerCaseName)
		assert.Equal(t, "2024-01-01", item.DueDate)
		assert.False(t, item.Done)
		assert.NotEmpty(t, item.CreatedAt)
		assert.Contains(t, item.AttachmentURL, item.TodoID)

		require.Len(t, publisher.events, 1)
		assert.Equal(t, ports.EventTodoCreated, publisher.events[0].Type)
	})

	t.Run("round-trip equals created item", func(t *testing.T) {
		svc, repo, _ := newTestService(t)

		item, err := svc.Create(ctx, "u1", CreateTodoRequest{Name: "Buy milk", DueDate: "2024-01-01"})
		require.NoError(t, err)

		stored, err := repo.QueryByOwnerAndID(ctx, "u1", item.TodoID)
		require.NoError(t, err)
		assert.Equal(t, *item, *stored)
	})

	t.Run("generates unique identifiers", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		seen := make(map[string]bool)
		for i := 0; i < 50; i++ {
			item, err := svc.Create(ctx, "u1", CreateTodoRequest{Name: "task"})
			require.NoError(t, err)
			assert.False(t, seen[item.TodoID])
			seen[item.TodoID] = true
		}
	})

	t.Run("rejects empty name", func(t *testing.T) {
		svc, repo, _ := newTestService(t)

		for _, name := range []string{"", "   ", "\t"} {
			_, err := svc.Create(ctx, "u1", CreateTodoRequest{Name: name})
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
		}

		// Nothing was persisted
		items, err := repo.QueryByOwner(ctx, "u1")
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("publish failure does not fail the create", func(t *testing.T) {
		svc, repo, publisher := newTestService(t)
		publisher.err = errors.New("bus down")

		item, err := svc.Create(ctx, "u1", CreateTodoRequest{Name: "Buy milk"})
		require.NoError(t, err)

		_, err = repo.QueryByOwnerAndID(ctx, "u1", item.TodoID)
		assert.NoError(t, err)
	})
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("matches any case variant", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		created, err := svc.Create(ctx, "u1", CreateTodoRequest{Name: "Buy milk", DueDate: "2024-01-01"})
		require.NoError(t, err)

		for _, query := range []string{"buy milk", "BUY MILK", "Buy Milk"} {
			items, err := svc.Search(ctx, "u1", query)
			require.NoError(t, err)
			require.Len(t, items, 1, "query %q", query)
			assert.Equal(t, created.TodoID, items[0].TodoID)
		}
	})

	t.Run("exact match only", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.Create(ctx, "u1", CreateTodoRequest{Name: "Buy milk"})
		require.NoError(t, err)

		items, err := svc.Search(ctx, "u1", "milk")
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("empty input matches nothing", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.Create(ctx, "u1", CreateTodoRequest{Name: "Buy milk"})
		require.NoError(t, err)

		items, err := svc.Search(ctx, "u1", "")
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("mutates only mutable fields", func(t *testing.T) {
		svc, repo, _ := newTestService(t)

		created, err := svc.Create(ctx, "u1", CreateTodoRequest{Name: "Buy milk", DueDate: "2024-01-01"})
		require.NoError(t, err)

		err = svc.Update(ctx, "u1", created.TodoID, UpdateTodoRequest{
			Name:    "Buy oat milk",
			DueDate: "2024-01-02",
			Done:    true,
		})
		require.NoError(t, err)

		updated, err := repo.QueryByOwnerAndID(ctx, "u1", created.TodoID)
		require.NoError(t, err)

		assert.Equal(t, "Buy oat milk", updated.Name)
		assert.Equal(t, "2024-01-02", updated.DueDate)
		assert.True(t, updated.Done)

		// Immutable fields survive
		assert.Equal(t, created.UserID, updated.UserID)
		assert.Equal(t, created.TodoID, updated.TodoID)
		assert.Equal(t, created.CreatedAt, updated.CreatedAt)
		assert.Equal(t, created.AttachmentURL, updated.AttachmentURL)
	})

	t.Run("refreshes search after rename", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		created, err := svc.Create(ctx, "u1", CreateTodoRequest{Name: "Buy milk"})
		require.NoError(t, err)

		err = svc.Update(ctx, "u1", created.TodoID, UpdateTodoRequest{Name: "Buy oat milk"})
		require.NoError(t, err)

		items, err := svc.Search(ctx, "u1", "BUY OAT MILK")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, strings.ToLower(items[0].Name), items[0].LowerCaseName)

		stale, err := svc.Search(ctx, "u1", "buy milk")
		require.NoError(t, err)
		assert.Empty(t, stale)
	})

	t.Run("not found for absent items", func(t *testing.T) {
		svc, _, publisher := newTestService(t)

		err := svc.Update(ctx, "u1", "missing", UpdateTodoRequest{Name: "x"})
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
		assert.Empty(t, publisher.events)
	})

	t.Run("not found for another owner's item", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		created, err := svc.Create(ctx, "u1", CreateTodoRequest{Name: "Buy milk"})
		require.NoError(t, err)

		err = svc.Update(ctx, "u2", created.TodoID, UpdateTodoRequest{Name: "stolen"})
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))

		// Unchanged under the real owner
		items, err := svc.Search(ctx, "u1", "buy milk")
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the item", func(t *testing.T) {
		svc, repo, _ := newTestService(t)

		created, err := svc.Create(ctx, "u1", CreateTodoRequest{Name: "Buy milk"})
		require.NoError(t, err)

		deletedID, err := svc.Delete(ctx, "u1", created.TodoID)
		require.NoError(t, err)
		assert.Equal(t, created.TodoID, deletedID)

		_, err = repo.QueryByOwnerAndID(ctx, "u1", created.TodoID)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("idempotent for missing items", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		deletedID, err := svc.Delete(ctx, "u1", "never-created")
		require.NoError(t, err)
		assert.Equal(t, "never-created", deletedID)
	})
}

func TestOwnershipIsolation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	created, err := svc.Create(ctx, "userA", CreateTodoRequest{Name: "private task"})
	require.NoError(t, err)

	items, err := svc.List(ctx, "userB")
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = svc.Search(ctx, "userB", "private task")
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = svc.IssueUploadURL(ctx, "userB", created.TodoID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestIssueUploadURL(t *testing.T) {
	ctx := context.Background()

	t.Run("returns signed URL for owned todo", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		created, err := svc.Create(ctx, "u1", CreateTodoRequest{Name: "Buy milk"})
		require.NoError(t, err)

		url, err := svc.IssueUploadURL(ctx, "u1", created.TodoID)
		require.NoError(t, err)
		assert.Contains(t, url, created.TodoID)
		assert.Contains(t, url, "signed=true")
	})

	t.Run("not found for absent todo", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.IssueUploadURL(ctx, "u1", "missing")
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("signer failure propagates", func(t *testing.T) {
		repo := memory.NewTodoRepository()
		store := &fakeAttachmentStore{uploadErr: apperrors.NewExternalError("s3", errors.New("no credentials"))}
		svc := NewTodoService(repo, store, nil, observability.NewMetrics("test", nil, nil), zap.NewNop())

		created, err := svc.Create(ctx, "u1", CreateTodoRequest{Name: "Buy milk"})
		require.NoError(t, err)

		_, err = svc.IssueUploadURL(ctx, "u1", created.TodoID)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
	})
}

// TestLifecycleScenario runs the full create / search / update / delete flow
func TestLifecycleScenario(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)

	item, err := svc.Create(ctx, "u1", CreateTodoRequest{Name: "Buy milk", DueDate: "2024-01-01"})
	require.NoError(t, err)
	assert.False(t, item.Done)
	assert.Equal(t, "buy milk", item.LowerCaseName)
	assert.NotEmpty(t, item.TodoID)
	assert.Contains(t, item.AttachmentURL, item.TodoID)

	found, err := svc.Search(ctx, "u1", "BUY MILK")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, item.TodoID, found[0].TodoID)

	err = svc.Update(ctx, "u1", item.TodoID, UpdateTodoRequest{
		Name:    "Buy oat milk",
		DueDate: "2024-01-02",
		Done:    true,
	})
	require.NoError(t, err)

	updated, err := repo.QueryByOwnerAndID(ctx, "u1", item.TodoID)
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", updated.Name)
	assert.Equal(t, "2024-01-02", updated.DueDate)
	assert.True(t, updated.Done)

	_, err = svc.Delete(ctx, "u1", item.TodoID)
	require.NoError(t, err)

	_, err = repo.QueryByOwnerAndID(ctx, "u1", item.TodoID)
	assert.True(t, apperrors.IsNotFound(err))
}
