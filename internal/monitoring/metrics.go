package monitoring

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"todotracker/internal/database"
)

// Service holds runtime context for monitoring and reporting.
type Service struct {
	startedAt time.Time
	db        *database.DB
}

type Snapshot struct {
	TimestampUTC       string `json:"timestamp_utc"`
	UptimeSeconds      int64  `json:"uptime_seconds"`
	DBState            string `json:"db_state"`
	DBDialect          string `json:"db_dialect"`
	HTTPActiveRequests int64  `json:"http_active_requests"`
	HTTPTotalRequests  uint64 `json:"http_total_requests"`
	DBOpenConnections  int    `json:"db_open_connections"`
	DBInUseConnections int    `json:"db_in_use_connections"`
	DBWaitCount        int64  `json:"db_wait_count"`
	Goroutines         int    `json:"goroutines"`
	GoMemoryAllocBytes uint64 `json:"go_memory_alloc_bytes"`
	GoHeapInUseBytes   uint64 `json:"go_heap_in_use_bytes"`
	GoGCCount          uint32 `json:"go_gc_count"`
	UsersTotal         int64  `json:"users_total"`
	TodosTotal         int64  `json:"todos_total"`
	TodosDone          int64  `json:"todos_done"`
	CommentsTotal      int64  `json:"comments_total"`
	DiskTotalBytes     uint64 `json:"disk_total_bytes"`
	DiskFreeBytes      uint64 `json:"disk_free_bytes"`
}

func NewService(startedAt time.Time, db *database.DB) *Service {
	return &Service{startedAt: startedAt, db: db}
}

// Snapshot gathers process, pool and row-count figures. Count queries that
// fail leave their field at zero; the DB state reports the failure.
func (s *Service) Snapshot(ctx context.Context) Snapshot {
	stats := s.db.Stats()
	activeHTTP, totalHTTP := getHTTPStats()

	var memory runtime.MemStats
	runtime.ReadMemStats(&memory)

	snap := Snapshot{
		TimestampUTC:       time.Now().UTC().Format(time.RFC3339),
		UptimeSeconds:      int64(time.Since(s.startedAt).Seconds()),
		DBState:            s.dbState(ctx),
		DBDialect:          string(s.db.Dialect),
		HTTPActiveRequests: activeHTTP,
		HTTPTotalRequests:  totalHTTP,
		DBOpenConnections:  stats.OpenConnections,
		DBInUseConnections: stats.InUse,
		DBWaitCount:        stats.WaitCount,
		Goroutines:         runtime.NumGoroutine(),
		GoMemoryAllocBytes: memory.Alloc,
		GoHeapInUseBytes:   memory.HeapInuse,
		GoGCCount:          memory.NumGC,
	}
	if total, free, ok := diskUsage("."); ok {
		snap.DiskTotalBytes, snap.DiskFreeBytes = total, free
	}

	_ = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "user"`).Scan(&snap.UsersTotal)
	_ = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM todo_item`).Scan(&snap.TodosTotal)
	_ = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM todo_item WHERE done = $1`, true).Scan(&snap.TodosDone)
	_ = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comment`).Scan(&snap.CommentsTotal)

	return snap
}

// Text renders the snapshot as a short human-readable report.
func (snap Snapshot) Text() string {
	return strings.Join([]string{
		"Todo Tracker Server Status",
		fmt.Sprintf("Uptime: %s", (time.Duration(snap.UptimeSeconds) * time.Second).String()),
		fmt.Sprintf("DB: %s (%s)", snap.DBState, snap.DBDialect),
		fmt.Sprintf("HTTP active requests: %d", snap.HTTPActiveRequests),
		fmt.Sprintf("HTTP total requests: %d", snap.HTTPTotalRequests),
		fmt.Sprintf("DB open connections: %d", snap.DBOpenConnections),
		fmt.Sprintf("Go goroutines: %d", snap.Goroutines),
		fmt.Sprintf("Memory alloc: %s", formatBytes(int64(snap.GoMemoryAllocBytes))),
		fmt.Sprintf("Disk free: %s of %s", formatBytes(int64(snap.DiskFreeBytes)), formatBytes(int64(snap.DiskTotalBytes))),
		fmt.Sprintf("Users: %d, todos: %d (%d done), comments: %d",
			snap.UsersTotal, snap.TodosTotal, snap.TodosDone, snap.CommentsTotal),
	}, "\n")
}

func (s *Service) dbState(ctx context.Context) string {
	if err := s.db.PingContext(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

func formatBytes(value int64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(value)
	unit := 0

	for size >= 1024 && unit < len(units)-1 {
		size /= 1024
		unit++
	}

	if unit == 0 {
		return fmt.Sprintf("%d %s", value, units[unit])
	}
	return fmt.Sprintf("%.2f %s", size, units[unit])
}
