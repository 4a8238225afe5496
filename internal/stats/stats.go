package stats

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/alexivanou/weather-widget/internal/config"
	"github.com/alexivanou/weather-widget/internal/widget"
	"github.com/jmoiron/sqlx"
	"go.uber.org/atomic"
)

type Stats struct {
	Timestamp time.Time     `json:"timestamp"`
	Memory    MemoryStats   `json:"memory"`
	Database  DatabaseStats `json:"database"`
	Runtime   RuntimeStats  `json:"runtime"`
	Fetches   FetchStats    `json:"fetches"`
}

type MemoryStats struct {
	Alloc        uint64 `json:"alloc"`
	TotalAlloc   uint64 `json:"total_alloc"`
	Sys          uint64 `json:"sys"`
	NumGC        uint32 `json:"num_gc"`
	HeapAlloc    uint64 `json:"heap_alloc"`
	HeapSys      uint64 `json:"heap_sys"`
	HeapInuse    uint64 `json:"heap_inuse"`
	HeapReleased uint64 `json:"heap_released"`
}

type DatabaseStats struct {
	Type         string      `json:"type"`
	TotalRecords int64       `json:"total_records"`
	SizeBytes    int64       `json:"size_bytes"`
	TableStats   []TableStat `json:"table_stats"`
}

type TableStat struct {
	Name      string `json:"name"`
	RowCount  int64  `json:"row_count"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
}

type RuntimeStats struct {
	NumGoroutines int   `json:"num_goroutines"`
	NumCPU        int   `json:"num_cpu"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// FetchStats counts city lookups since start
type FetchStats struct {
	Total     int64 `json:"total"`
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
	NotFound  int64 `json:"not_found"`
}

// FetchCounters records lookup outcomes; it satisfies widget.Recorder
type FetchCounters struct {
	succeeded atomic.Int64
	failed    atomic.Int64
	notFound  atomic.Int64
}

// RecordFetch counts one finished lookup. Unknown cities count as failures too.
func (f *FetchCounters) RecordFetch(err error) {
	if err == nil {
		f.succeeded.Inc()
		return
	}
	f.failed.Inc()
	var notFound *widget.CityNotFoundError
	if errors.As(err, &notFound) {
		f.notFound.Inc()
	}
}

// Snapshot returns the current counts
func (f *FetchCounters) Snapshot() FetchStats {
	ok, failed := f.succeeded.Load(), f.failed.Load()
	return FetchStats{
		Total:     ok + failed,
		Succeeded: ok,
		Failed:    failed,
		NotFound:  f.notFound.Load(),
	}
}

type Collector struct {
	db         *sqlx.DB
	config     config.DBConfig
	fetches    *FetchCounters
	startTime  time.Time
	cachedMem  *MemoryStats
	cacheTime  time.Time
	cacheMutex sync.RWMutex
}

const savedCitiesTable = "saved_cities"

var memStatsCacheDuration = 5 * time.Second

// NewCollector creates a collector; fetches may be nil when no lookups are served
func NewCollector(db *sqlx.DB, cfg config.DBConfig, fetches *FetchCounters) *Collector {
	if fetches == nil {
		fetches = &FetchCounters{}
	}
	return &Collector{
		db:        db,
		config:    cfg,
		fetches:   fetches,
		startTime: time.Now(),
	}
}

func (c *Collector) Collect(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		Timestamp: time.Now(),
	}

	stats.Memory = c.collectMemoryStats()

	dbStats, err := c.collectDatabaseStats(ctx)
	if err != nil {
		return nil, err
	}
	stats.Database = *dbStats
	stats.Runtime = c.collectRuntimeStats()
	stats.Fetches = c.fetches.Snapshot()

	return stats, nil
}

func (c *Collector) collectMemoryStats() MemoryStats {
	c.cacheMutex.RLock()
	if c.cachedMem != nil && time.Since(c.cacheTime) < memStatsCacheDuration {
		mem := *c.cachedMem
		c.cacheMutex.RUnlock()
		return mem
	}
	c.cacheMutex.RUnlock()

	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	mem := MemoryStats{
		Alloc:        m.Alloc,
		TotalAlloc:   m.TotalAlloc,
		Sys:          m.Sys,
		NumGC:        m.NumGC,
		HeapAlloc:    m.HeapAlloc,
		HeapSys:      m.HeapSys,
		HeapInuse:    m.HeapInuse,
		HeapReleased: m.HeapReleased,
	}

	c.cachedMem = &mem
	c.cacheTime = time.Now()

	return mem
}

// collectDatabaseStats reports on the saved city table. Size lookups are best effort:
// sqlite builds without dbstat report zero.
func (c *Collector) collectDatabaseStats(ctx context.Context) (*DatabaseStats, error) {
	stats := &DatabaseStats{Type: string(c.config.Type)}

	var count int64
	if err := c.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM "+savedCitiesTable); err != nil {
		return nil, fmt.Errorf("failed to count saved cities: %w", err)
	}
	table := TableStat{Name: savedCitiesTable, RowCount: count}

	dbSizeQuery := "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()"
	tableSizeQuery := "SELECT COALESCE(SUM(pgsize), 0) FROM dbstat WHERE name = ?"
	if c.config.Type == config.DBTypePostgreSQL {
		dbSizeQuery = "SELECT pg_database_size(current_database())"
		tableSizeQuery = "SELECT COALESCE(pg_total_relation_size($1::regclass), 0)"
	}
	_ = c.db.GetContext(ctx, &stats.SizeBytes, dbSizeQuery)
	_ = c.db.GetContext(ctx, &table.SizeBytes, tableSizeQuery, savedCitiesTable)

	stats.TableStats = []TableStat{table}
	stats.TotalRecords = count
	return stats, nil
}

func (c *Collector) collectRuntimeStats() RuntimeStats {
	uptime := time.Since(c.startTime).Seconds()
	return RuntimeStats{
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		UptimeSeconds: int64(uptime),
	}
}
