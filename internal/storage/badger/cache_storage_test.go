package badger

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/advisor/internal/interfaces"
	"github.com/ternarybob/advisor/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

func newTestDB(t *testing.T) *BadgerDB {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "badger-test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	options := badgerhold.DefaultOptions
	options.Dir = tmpDir
	options.ValueDir = tmpDir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return &BadgerDB{store: store}
}

func TestCacheStorage_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	storage := NewCacheStorage(db, arbor.NewLogger())
	ctx := context.Background()

	key := models.NewsKey("international")
	record := models.NewRecord(key, time.Now())
	record.News = []models.NewsItem{
		{Title: "測試標題", URL: "https://example.com/a", Sentiment: models.SentimentPositive},
	}

	require.NoError(t, storage.Upsert(ctx, key, record))

	got, err := storage.GetLatest(ctx, key)
	require.NoError(t, err)
	require.Len(t, got.News, 1)
	assert.Equal(t, "測試標題", got.News[0].Title)
	assert.Equal(t, models.TierNews, got.Tier)
	assert.Equal(t, "international", got.Scope)
}

func TestCacheStorage_Miss(t *testing.T) {
	db := newTestDB(t)
	storage := NewCacheStorage(db, arbor.NewLogger())

	_, err := storage.GetLatest(context.Background(), models.NewsKey("us_finance"))
	assert.ErrorIs(t, err, interfaces.ErrRecordNotFound)
}

func TestCacheStorage_UpsertReplaces(t *testing.T) {
	db := newTestDB(t)
	storage := NewCacheStorage(db, arbor.NewLogger())
	ctx := context.Background()

	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	key := models.DailyReportKey(day)

	first := models.NewRecord(key, time.Now())
	first.Report = &models.DailyReport{Date: "2025-03-01", MarketCommentEN: "first"}
	require.NoError(t, storage.Upsert(ctx, key, first))

	second := models.NewRecord(key, time.Now())
	second.Report = &models.DailyReport{Date: "2025-03-01", MarketCommentEN: "second"}
	require.NoError(t, storage.Upsert(ctx, key, second))

	got, err := storage.GetLatest(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Report.MarketCommentEN)
}

func TestCacheStorage_DeleteScope(t *testing.T) {
	db := newTestDB(t)
	storage := NewCacheStorage(db, arbor.NewLogger())
	ctx := context.Background()

	intlKey := models.NewsKey("international")
	usKey := models.NewsKey("us_finance")

	for _, key := range []models.CacheKey{intlKey, usKey} {
		record := models.NewRecord(key, time.Now())
		record.News = []models.NewsItem{{Title: "t", URL: "u"}}
		require.NoError(t, storage.Upsert(ctx, key, record))
	}

	require.NoError(t, storage.DeleteScope(ctx, models.TierNews, "international"))

	_, err := storage.GetLatest(ctx, intlKey)
	assert.ErrorIs(t, err, interfaces.ErrRecordNotFound, "deleted scope still readable")

	_, err = storage.GetLatest(ctx, usKey)
	assert.NoError(t, err, "unrelated scope was deleted")
}

func TestHoldingStorage_CRUD(t *testing.T) {
	db := newTestDB(t)
	storage := NewHoldingStorage(db, arbor.NewLogger())
	ctx := context.Background()

	holding := &models.Holding{
		UserID:    "user-1",
		Symbol:    "2330",
		Shares:    100,
		CostBasis: 550.0,
	}
	require.NoError(t, storage.SaveHolding(ctx, holding))
	require.NotEmpty(t, holding.ID, "SaveHolding did not assign an ID")
	assert.Equal(t, "2330.TW", holding.Symbol, "symbol not normalized")

	other := &models.Holding{UserID: "user-2", Symbol: "AAPL", Shares: 5}
	require.NoError(t, storage.SaveHolding(ctx, other))

	list, err := storage.GetHoldingsByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, holding.ID, list[0].ID)

	require.NoError(t, storage.DeleteHolding(ctx, holding.ID))

	_, err = storage.GetHolding(ctx, holding.ID)
	assert.ErrorIs(t, err, interfaces.ErrRecordNotFound)

	err = storage.DeleteHolding(ctx, holding.ID)
	assert.ErrorIs(t, err, interfaces.ErrRecordNotFound, "double delete")
}
