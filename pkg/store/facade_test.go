package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/f880guardian/audit-engine/pkg/apperrors"
	"github.com/f880guardian/audit-engine/pkg/models"
)

type fakeRemote struct {
	fetchRecords []*models.AuditRecord
	fetchErr     error
	pushErr      error
	pushed       []*models.AuditRecord
}

func (f *fakeRemote) FetchAll(ctx context.Context) ([]*models.AuditRecord, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.fetchRecords, nil
}

func (f *fakeRemote) Push(ctx context.Context, record *models.AuditRecord) error {
	if f.pushErr != nil {
		return f.pushErr
	}
	f.pushed = append(f.pushed, record)
	return nil
}

func TestSaveSurvivesRemoteOutage(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")
	cache, err := OpenCache(path, zap.NewNop())
	require.NoError(t, err)

	remote := &fakeRemote{fetchErr: errors.New("offline"), pushErr: errors.New("offline")}
	store := NewRecordStore(cache, remote, zap.NewNop())
	store.LoadAll(ctx)

	// Remote down: Save still succeeds, the record is locally durable
	require.NoError(t, store.Save(ctx, testRecord("rec-1")))
	require.NoError(t, cache.Close())

	cache, err = OpenCache(path, zap.NewNop())
	require.NoError(t, err)
	defer cache.Close()

	reloaded := NewRecordStore(cache, remote, zap.NewNop())
	records := reloaded.LoadAll(ctx)
	require.Len(t, records, 1)
	assert.Equal(t, "rec-1", records[0].ID)
}

func TestSaveIsIdempotentByID(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore(openTestCache(t), nil, zap.NewNop())
	store.LoadAll(ctx)

	first := testRecord("rec-1")
	require.NoError(t, store.Save(ctx, first))

	edited := testRecord("rec-1")
	edited.OverallScore = 100
	require.NoError(t, store.Save(ctx, edited))

	records := store.Records("")
	require.Len(t, records, 1)
	assert.Equal(t, 100, records[0].OverallScore)
}

func TestSaveRejectsInvalidRecords(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore(openTestCache(t), nil, zap.NewNop())

	assert.Error(t, store.Save(ctx, nil))
	assert.Error(t, store.Save(ctx, &models.AuditRecord{Status: models.AuditCompleted}))

	inProgress := testRecord("rec-1")
	inProgress.Status = models.AuditInProgress
	assert.Error(t, store.Save(ctx, inProgress))

	assert.Empty(t, store.Records(""))
}

func TestSavePrependsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore(openTestCache(t), nil, zap.NewNop())
	store.LoadAll(ctx)

	require.NoError(t, store.Save(ctx, testRecord("older")))
	require.NoError(t, store.Save(ctx, testRecord("newer")))

	records := store.Records("")
	require.Len(t, records, 2)
	assert.Equal(t, "newer", records[0].ID)
	assert.Equal(t, "older", records[1].ID)
}

func TestSavePushesToRemote(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{}
	store := NewRecordStore(openTestCache(t), remote, zap.NewNop())
	store.LoadAll(ctx)

	record := testRecord("rec-1")
	require.NoError(t, store.Save(ctx, record))

	require.Len(t, remote.pushed, 1)
	assert.Equal(t, "rec-1", remote.pushed[0].ID)

	assert.Equal(t, 1, store.Count())
	assert.True(t, store.RemoteConfigured())
}

func TestLoadAllRemoteWinsAndBacksUpCache(t *testing.T) {
	ctx := context.Background()
	cache := openTestCache(t)
	require.NoError(t, cache.SaveRecords([]*models.AuditRecord{testRecord("stale-local")}))

	remote := &fakeRemote{fetchRecords: []*models.AuditRecord{testRecord("shared-1"), testRecord("shared-2")}}
	store := NewRecordStore(cache, remote, zap.NewNop())

	records := store.LoadAll(ctx)
	require.Len(t, records, 2)
	assert.Equal(t, "shared-1", records[0].ID)

	// The fetched collection overwrites the cache wholesale
	cached := cache.LoadRecords()
	require.Len(t, cached, 2)
	assert.Equal(t, "shared-1", cached[0].ID)
}

func TestLoadAllDropsNonCompletedRecords(t *testing.T) {
	ctx := context.Background()

	draft := testRecord("draft-1")
	draft.Status = models.AuditInProgress

	t.Run("from remote", func(t *testing.T) {
		cache := openTestCache(t)
		remote := &fakeRemote{fetchRecords: []*models.AuditRecord{testRecord("done-1"), draft}}
		store := NewRecordStore(cache, remote, zap.NewNop())

		records := store.LoadAll(ctx)
		require.Len(t, records, 1)
		assert.Equal(t, "done-1", records[0].ID)

		// The draft never reaches any read surface
		_, err := store.Get("draft-1")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)

		cached := cache.LoadRecords()
		require.Len(t, cached, 1)
		assert.Equal(t, "done-1", cached[0].ID)
	})

	t.Run("from cache", func(t *testing.T) {
		cache := openTestCache(t)
		require.NoError(t, cache.SaveRecords([]*models.AuditRecord{draft, testRecord("done-2")}))

		store := NewRecordStore(cache, nil, zap.NewNop())
		records := store.LoadAll(ctx)
		require.Len(t, records, 1)
		assert.Equal(t, "done-2", records[0].ID)
	})
}

func TestLoadAllFallsBackToCache(t *testing.T) {
	ctx := context.Background()
	cache := openTestCache(t)
	require.NoError(t, cache.SaveRecords([]*models.AuditRecord{testRecord("local-1")}))

	remote := &fakeRemote{fetchErr: errors.New("connection refused")}
	store := NewRecordStore(cache, remote, zap.NewNop())

	records := store.LoadAll(ctx)
	require.Len(t, records, 1)
	assert.Equal(t, "local-1", records[0].ID)
}

func TestLoadAllWithoutRemote(t *testing.T) {
	ctx := context.Background()
	cache := openTestCache(t)
	require.NoError(t, cache.SaveRecords([]*models.AuditRecord{testRecord("local-1")}))

	store := NewRecordStore(cache, nil, zap.NewNop())
	assert.Len(t, store.LoadAll(ctx), 1)
}

func TestUpdateAnalysis(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{}
	store := NewRecordStore(openTestCache(t), remote, zap.NewNop())
	store.LoadAll(ctx)
	require.NoError(t, store.Save(ctx, testRecord("rec-1")))

	require.NoError(t, store.UpdateAnalysis(ctx, "rec-1", "Focus on hand hygiene re-education."))

	got, err := store.Get("rec-1")
	require.NoError(t, err)
	assert.Equal(t, "Focus on hand hygiene re-education.", got.AIAnalysis)

	// Save push plus analysis push, both carrying the current state
	require.Len(t, remote.pushed, 2)
	assert.Equal(t, "Focus on hand hygiene re-education.", remote.pushed[1].AIAnalysis)
}

func TestUpdateAnalysisUnknownRecord(t *testing.T) {
	store := NewRecordStore(openTestCache(t), nil, zap.NewNop())

	err := store.UpdateAnalysis(context.Background(), "ghost", "summary")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRecordsFacilityFilter(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore(openTestCache(t), nil, zap.NewNop())
	store.LoadAll(ctx)

	other := testRecord("rec-other")
	other.FacilityName = "Hillcrest Care Center"
	require.NoError(t, store.Save(ctx, testRecord("rec-1")))
	require.NoError(t, store.Save(ctx, other))

	assert.Len(t, store.Records(""), 2)

	filtered := store.Records("Hillcrest Care Center")
	require.Len(t, filtered, 1)
	assert.Equal(t, "rec-other", filtered[0].ID)

	assert.Empty(t, store.Records("Nowhere Facility"))
}

func TestSnapshotsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore(openTestCache(t), nil, zap.NewNop())
	store.LoadAll(ctx)
	require.NoError(t, store.Save(ctx, testRecord("rec-1")))

	records := store.Records("")
	records[0].OverallScore = -1
	records[0].Responses[0].Status = models.StatusPass

	got, err := store.Get("rec-1")
	require.NoError(t, err)
	assert.Equal(t, 50, got.OverallScore)
	assert.Equal(t, models.StatusFail, got.Responses[0].Status)
}

func TestGetUnknownRecord(t *testing.T) {
	store := NewRecordStore(openTestCache(t), nil, zap.NewNop())

	_, err := store.Get("ghost")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
