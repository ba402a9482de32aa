package badger

import (
	"context"
	"testing"
	"time"

	"github.com/galenhq/galen/internal/common"
	"github.com/galenhq/galen/internal/interfaces"
	"github.com/galenhq/galen/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) interfaces.StorageManager {
	t.Helper()
	manager, err := NewManager(common.GetLogger(), &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })
	return manager
}

func TestVectorStorageUpsertAndSearch(t *testing.T) {
	store := newTestManager(t).VectorStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "medical_knowledge", "kb_1", []float32{1, 0, 0}, map[string]interface{}{"content": "hypertension", "title": "BP"}))
	require.NoError(t, store.Upsert(ctx, "medical_knowledge", "kb_2", []float32{0.9, 0.1, 0}, map[string]interface{}{"content": "prehypertension"}))
	require.NoError(t, store.Upsert(ctx, "medical_knowledge", "kb_3", []float32{0, 1, 0}, map[string]interface{}{"content": "unrelated"}))

	results, err := store.Search(ctx, "medical_knowledge", []float32{1, 0, 0}, interfaces.SearchOptions{Limit: 10, ScoreThreshold: 0.5})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "kb_1", results[0].ID)
	assert.Equal(t, "kb_2", results[1].ID)
	assert.InDelta(t, 1.0, results[0].Score, 0.0001)
	assert.Equal(t, "hypertension", results[0].Payload["content"])
}

func TestVectorStorageUpsertReplaces(t *testing.T) {
	store := newTestManager(t).VectorStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "medical_knowledge", "kb_1", []float32{1, 0}, map[string]interface{}{"content": "old"}))
	require.NoError(t, store.Upsert(ctx, "medical_knowledge", "kb_1", []float32{1, 0}, map[string]interface{}{"content": "new"}))

	results, err := store.Search(ctx, "medical_knowledge", []float32{1, 0}, interfaces.SearchOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new", results[0].Payload["content"])
}

func TestVectorStorageCollectionsAreIsolated(t *testing.T) {
	store := newTestManager(t).VectorStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "medical_knowledge", "kb_1", []float32{1, 0}, nil))
	require.NoError(t, store.Upsert(ctx, "document_chunks", "chunk_1", []float32{1, 0}, nil))

	results, err := store.Search(ctx, "document_chunks", []float32{1, 0}, interfaces.SearchOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "chunk_1", results[0].ID)
}

func TestVectorStorageFilter(t *testing.T) {
	store := newTestManager(t).VectorStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "document_chunks", "chunk_1", []float32{1, 0}, map[string]interface{}{"user_id": "user_1", "content": "mine"}))
	require.NoError(t, store.Upsert(ctx, "document_chunks", "chunk_2", []float32{1, 0}, map[string]interface{}{"user_id": "user_2", "content": "theirs"}))

	results, err := store.Search(ctx, "document_chunks", []float32{1, 0}, interfaces.SearchOptions{
		Limit:  10,
		Filter: map[string]string{"user_id": "user_1"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "chunk_1", results[0].ID)
}

func TestVectorStorageLimitAndThreshold(t *testing.T) {
	store := newTestManager(t).VectorStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "medical_knowledge", "kb_1", []float32{1, 0}, nil))
	require.NoError(t, store.Upsert(ctx, "medical_knowledge", "kb_2", []float32{0.8, 0.2}, nil))
	require.NoError(t, store.Upsert(ctx, "medical_knowledge", "kb_3", []float32{0.6, 0.4}, nil))

	results, err := store.Search(ctx, "medical_knowledge", []float32{1, 0}, interfaces.SearchOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = store.Search(ctx, "medical_knowledge", []float32{1, 0}, interfaces.SearchOptions{Limit: 10, ScoreThreshold: 0.999})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestVectorStorageRejectsInvalidInput(t *testing.T) {
	store := newTestManager(t).VectorStore()
	ctx := context.Background()

	assert.Error(t, store.Upsert(ctx, "", "id", []float32{1}, nil))
	assert.Error(t, store.Upsert(ctx, "collection", "", []float32{1}, nil))
	assert.Error(t, store.Upsert(ctx, "collection", "id", nil, nil))

	_, err := store.Search(ctx, "", []float32{1}, interfaces.SearchOptions{})
	assert.Error(t, err)
}

func TestCostStorageAppendAndFind(t *testing.T) {
	ledger := newTestManager(t).CostStorage()
	ctx := context.Background()
	now := time.Now().UTC()

	entries := []models.CostEntry{
		{ID: "cost_1", Operation: models.OperationChatCompletion, Provider: "claude", AmountUSD: decimal.RequireFromString("0.0033"), UserID: "user_1", Timestamp: now.Add(-2 * time.Hour)},
		{ID: "cost_2", Operation: models.OperationChatCompletion, Provider: "gemini", AmountUSD: decimal.RequireFromString("0.00009"), UserID: "user_1", Timestamp: now.Add(-time.Hour)},
		{ID: "cost_3", Operation: models.OperationIngestion, AmountUSD: decimal.RequireFromString("0.001"), UserID: "user_2", Timestamp: now.Add(-time.Hour)},
		{ID: "cost_4", Operation: models.OperationChatCompletion, Provider: "claude", AmountUSD: decimal.RequireFromString("0.005"), UserID: "user_1", Timestamp: now.Add(-30 * 24 * time.Hour)},
	}
	for i := range entries {
		require.NoError(t, ledger.Append(ctx, &entries[i]))
	}

	found, err := ledger.FindByUser(ctx, "user_1", now.Add(-3*time.Hour), now)
	require.NoError(t, err)
	require.Len(t, found, 2)

	// decimal amounts survive the round trip exactly
	total := decimal.Zero
	for _, e := range found {
		total = total.Add(e.AmountUSD)
	}
	assert.True(t, total.Equal(decimal.RequireFromString("0.00339")), "got %s", total)
}

func TestCostStorageAppendOnly(t *testing.T) {
	ledger := newTestManager(t).CostStorage()
	ctx := context.Background()

	entry := &models.CostEntry{ID: "cost_1", Operation: models.OperationChatCompletion, AmountUSD: decimal.RequireFromString("0.001"), UserID: "user_1", Timestamp: time.Now().UTC()}
	require.NoError(t, ledger.Append(ctx, entry))
	assert.Error(t, ledger.Append(ctx, entry))

	assert.Error(t, ledger.Append(ctx, &models.CostEntry{}))
}

func TestCostStorageEmptyWindow(t *testing.T) {
	ledger := newTestManager(t).CostStorage()

	found, err := ledger.FindByUser(context.Background(), "nobody", time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Empty(t, found)
}
