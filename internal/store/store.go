// Package store persists extraction jobs and report sessions.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/company-profiler/internal/model"
)

// ErrNotFound is returned when a job or session does not exist.
var ErrNotFound = eris.New("store: not found")

// DefaultListLimit bounds ListJobs when no limit is given.
const DefaultListLimit = 50

// Store defines the persistence interface for jobs and sessions.
type Store interface {
	// Jobs
	SaveJob(ctx context.Context, job *model.Job) (string, error)
	GetJob(ctx context.Context, id string) (*model.Job, error)
	ListJobs(ctx context.Context, limit int) ([]model.Job, error)

	// Sessions
	CreateSession(ctx context.Context) (*model.Session, error)
	GetSession(ctx context.Context, id string) (*model.Session, error)
	AppendToSession(ctx context.Context, id string, profile model.Profile) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
)

// Open connects to the store for driver ("sqlite" or "postgres") and runs
// its migration.
func Open(ctx context.Context, driver, dsn string, poolCfg *PoolConfig) (Store, error) {
	var (
		st  Store
		err error
	)
	switch driver {
	case "", "sqlite":
		st, err = NewSQLite(dsn)
	case "postgres":
		st, err = NewPostgres(ctx, dsn, poolCfg)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}
