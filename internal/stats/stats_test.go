package stats

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/alexivanou/weather-widget/internal/config"
	"github.com/alexivanou/weather-widget/internal/database"
	"github.com/alexivanou/weather-widget/internal/widget"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (*sqlx.DB, config.DBConfig) {
	cfg := config.DBConfig{Type: config.DBTypeMemory, Name: fmt.Sprintf("stats_%s", uuid.NewString())}
	db, err := database.Connect(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db, cfg, "../../migrations"))
	return db, cfg
}

func TestCollector_Collect(t *testing.T) {
	db, cfg := setupTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, "INSERT INTO saved_cities (name, country, position) VALUES ('London', 'GB', 1)")
	require.NoError(t, err)

	fetches := &FetchCounters{}
	fetches.RecordFetch(nil)
	collector := NewCollector(db, cfg, fetches)

	stats, err := collector.Collect(ctx)
	require.NoError(t, err)

	assert.Equal(t, "memory", stats.Database.Type)
	assert.Equal(t, int64(1), stats.Database.TotalRecords)
	require.Len(t, stats.Database.TableStats, 1)
	assert.Equal(t, "saved_cities", stats.Database.TableStats[0].Name)
	assert.Equal(t, int64(1), stats.Database.TableStats[0].RowCount)

	assert.Greater(t, stats.Memory.Alloc, uint64(0))
	assert.GreaterOrEqual(t, stats.Runtime.NumGoroutines, 1)
	assert.Equal(t, int64(1), stats.Fetches.Succeeded)

	// memory stats are cached between calls
	stats2, err := collector.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, stats.Memory.Alloc, stats2.Memory.Alloc)
}

func TestCollector_EmptyDB(t *testing.T) {
	db, cfg := setupTestDB(t)
	collector := NewCollector(db, cfg, nil)

	stats, err := collector.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(0), stats.Database.TotalRecords)
	assert.Equal(t, FetchStats{}, stats.Fetches)
}

func TestFetchCounters(t *testing.T) {
	var counters FetchCounters
	counters.RecordFetch(nil)
	counters.RecordFetch(errors.New("timeout"))
	counters.RecordFetch(fmt.Errorf("lookup: %w", &widget.CityNotFoundError{City: "Atlantis"}))

	assert.Equal(t, FetchStats{Total: 3, Succeeded: 1, Failed: 2, NotFound: 1}, counters.Snapshot())
}
