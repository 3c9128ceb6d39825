package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contact-service/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "messages.json"))
}

func submission(i int) *model.Submission {
	return &model.Submission{
		Name:      fmt.Sprintf("Aysun Rəsulova%d", i),
		Email:     fmt.Sprintf("aysun%d@example.com", i),
		Message:   "Salam, sizinlə əməkdaşlıq etmək istəyirəm.",
		IP:        fmt.Sprintf("203.0.113.%d", i),
		CreatedAt: time.Date(2024, 5, 1, 12, 0, i, 0, time.UTC),
	}
}

func TestStoreListMissingFile(t *testing.T) {
	store := newTestStore(t)

	subs, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestStoreAppendAssignsID(t *testing.T) {
	store := newTestStore(t)

	sub := submission(1)
	require.NoError(t, store.Append(context.Background(), sub))
	assert.NotEmpty(t, sub.ID)

	other := submission(2)
	require.NoError(t, store.Append(context.Background(), other))
	assert.NotEqual(t, sub.ID, other.ID)
}

func TestStoreListMostRecentFirst(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Append(context.Background(), submission(i)))
	}

	subs, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 3)
	assert.Equal(t, "203.0.113.2", subs[0].IP)
	assert.Equal(t, "203.0.113.1", subs[1].IP)
	assert.Equal(t, "203.0.113.0", subs[2].IP)
}

func TestStoreFileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.json")
	store := NewStore(path)

	sub := submission(1)
	require.NoError(t, store.Append(context.Background(), sub))

	// The file is a plain JSON array in insertion order.
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var onDisk []model.Submission
	require.NoError(t, json.Unmarshal(data, &onDisk))
	require.Len(t, onDisk, 1)
	assert.Equal(t, sub.ID, onDisk[0].ID)
	assert.Equal(t, "aysun1@example.com", onDisk[0].Email)
}

func TestStoreReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.json")
	seed := []model.Submission{*submission(1)}
	data, err := json.Marshal(seed)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	store := NewStore(path)
	require.NoError(t, store.Append(context.Background(), submission(2)))

	subs, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "203.0.113.2", subs[0].IP)
}

func TestStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := NewStore(path)
	_, err := store.List(context.Background())
	assert.Error(t, err)
	assert.Error(t, store.Append(context.Background(), submission(1)))
}

func TestStoreConcurrentAppends(t *testing.T) {
	store := newTestStore(t)

	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Append(context.Background(), submission(i)))
		}(i)
	}
	wg.Wait()

	subs, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, subs, n)
}
