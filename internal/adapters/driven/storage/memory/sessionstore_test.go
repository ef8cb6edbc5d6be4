package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clarita-labs/clarita-cli/internal/core/domain"
)

func TestNewSessionStore(t *testing.T) {
	store := NewSessionStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.sessions)
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	session := domain.Session{
		ID:         "ses-1",
		Name:       "capítulo 3",
		SourceText: "O gato preto pulou sobre o muro alto.",
		TargetText: "O felino escuro saltou.",
		CreatedAt:  time.Now(),
	}

	err := store.Save(ctx, session)
	require.NoError(t, err)

	saved, err := store.Get(ctx, "ses-1")
	require.NoError(t, err)
	assert.Equal(t, "capítulo 3", saved.Name)
	assert.Equal(t, session.SourceText, saved.SourceText)
	assert.Equal(t, session.TargetText, saved.TargetText)
}

func TestSessionStore_Save_Update(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	_ = store.Save(ctx, domain.Session{ID: "ses-1", Name: "first"})
	err := store.Save(ctx, domain.Session{ID: "ses-1", Name: "second"})
	require.NoError(t, err)

	saved, err := store.Get(ctx, "ses-1")
	require.NoError(t, err)
	assert.Equal(t, "second", saved.Name)
}

func TestSessionStore_Get_NotFound(t *testing.T) {
	store := NewSessionStore()

	session, err := store.Get(context.Background(), "nonexistent")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, session)
}

func TestSessionStore_List_OrderedByCreation(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	base := time.Now()

	_ = store.Save(ctx, domain.Session{ID: "ses-b", CreatedAt: base.Add(2 * time.Second)})
	_ = store.Save(ctx, domain.Session{ID: "ses-a", CreatedAt: base})
	_ = store.Save(ctx, domain.Session{ID: "ses-c", CreatedAt: base.Add(4 * time.Second)})

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "ses-a", list[0].ID)
	assert.Equal(t, "ses-b", list[1].ID)
	assert.Equal(t, "ses-c", list[2].ID)
}

func TestSessionStore_Delete(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	_ = store.Save(ctx, domain.Session{ID: "ses-1"})

	err := store.Delete(ctx, "ses-1")
	require.NoError(t, err)

	_, err = store.Get(ctx, "ses-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting again is a no-op
	assert.NoError(t, store.Delete(ctx, "ses-1"))
}

func TestSessionStore_Concurrency(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_ = store.Save(ctx, domain.Session{ID: fmt.Sprintf("ses-%d", id)})
			_, _ = store.Get(ctx, fmt.Sprintf("ses-%d", id))
			_, _ = store.List(ctx)
		}(i)
	}
	wg.Wait()

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 50)
}
