package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/f880guardian/audit-engine/pkg/models"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func testRecord(id string) *models.AuditRecord {
	return &models.AuditRecord{
		ID:           id,
		FacilityName: "Sunset Senior Living",
		Timestamp:    1700000000000,
		AuditorName:  "Jane Doe",
		Location:     "Unit A",
		Responses: []models.Response{
			{QuestionID: "hh-1", Status: models.StatusFail, Comment: "no sanitizer"},
			{QuestionID: "hh-2", Status: models.StatusPass},
		},
		Status:       models.AuditCompleted,
		OverallScore: 50,
	}
}

func TestCacheRoundTrip(t *testing.T) {
	cache := openTestCache(t)

	assert.Empty(t, cache.LoadRecords())

	records := []*models.AuditRecord{testRecord("a"), testRecord("b")}
	require.NoError(t, cache.SaveRecords(records))

	loaded := cache.LoadRecords()
	require.Len(t, loaded, 2)
	assert.Equal(t, "a", loaded[0].ID)
	assert.Equal(t, models.StatusFail, loaded[0].Responses[0].Status)
	assert.Equal(t, 50, loaded[0].OverallScore)
}

func TestCacheSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	cache, err := OpenCache(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, cache.SaveRecords([]*models.AuditRecord{testRecord("a")}))
	require.NoError(t, cache.Close())

	reopened, err := OpenCache(path, zap.NewNop())
	require.NoError(t, err)
	defer reopened.Close()

	loaded := reopened.LoadRecords()
	require.Len(t, loaded, 1)
	assert.Equal(t, "a", loaded[0].ID)
}

func TestCorruptCollectionDegradesToEmpty(t *testing.T) {
	cache := openTestCache(t)

	require.NoError(t, cache.set(slotRecords, "{definitely not json"))

	// Never errors, never panics: corrupt content reads as empty
	assert.Empty(t, cache.LoadRecords())
}

func TestEndpointSlot(t *testing.T) {
	cache := openTestCache(t)

	assert.Equal(t, "", cache.Endpoint())

	require.NoError(t, cache.SetEndpoint("https://sheet.example.com/exec"))
	assert.Equal(t, "https://sheet.example.com/exec", cache.Endpoint())

	// Overwrites, never duplicates
	require.NoError(t, cache.SetEndpoint("https://other.example.com/exec"))
	assert.Equal(t, "https://other.example.com/exec", cache.Endpoint())
}

func TestSaveNilRecordsStoresEmptyCollection(t *testing.T) {
	cache := openTestCache(t)

	require.NoError(t, cache.SaveRecords([]*models.AuditRecord{testRecord("a")}))
	require.NoError(t, cache.SaveRecords(nil))

	assert.Empty(t, cache.LoadRecords())
}
