package health

import (
	"context"
	"database/sql"
	"time"

	"business-navigator/internal/shared/storage/db"
)

// Service encapsulates health-related checks.
type Service struct {
	DB      *sql.DB
	Dialect db.Dialect
	Backend string
	Timeout time.Duration
}

// NewService constructs a new health service. A nil database reports the in-memory backend.
func NewService(database *sql.DB, dialect db.Dialect, backend string) *Service {
	return &Service{DB: database, Dialect: dialect, Backend: backend, Timeout: 2 * time.Second}
}

// Status is the health payload.
type Status struct {
	OK               bool   `json:"ok"`
	Storage          string `json:"storage"`
	Database         string `json:"database,omitempty"`
	MigrationVersion int64  `json:"migrationVersion,omitempty"`
}

// Status pings the database when one is configured.
func (s *Service) Status(ctx context.Context) Status {
	if s == nil || s.DB == nil {
		return Status{OK: true, Storage: "memory"}
	}
	out := Status{OK: true, Storage: s.Backend}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	if err := s.DB.PingContext(ctx); err != nil {
		out.OK = false
		out.Database = "unavailable"
		return out
	}
	out.Database = "ok"
	if v, err := db.MigrationVersion(ctx, s.DB, s.Dialect); err == nil {
		out.MigrationVersion = v
	}
	return out
}
