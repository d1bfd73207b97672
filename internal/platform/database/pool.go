package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
)

// Config holds database connection configuration.
type Config struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Pool wraps a *sql.DB with health checking capabilities.
type Pool struct {
	db  *sql.DB
	cfg Config
}

// New creates a new database connection pool.
// Returns nil if the URL is empty.
func New(ctx context.Context, cfg Config) (*Pool, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck // best-effort cleanup on init failure
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{db: db, cfg: cfg}, nil
}

// DB returns the underlying *sql.DB for query operations.
func (p *Pool) DB() *sql.DB {
	return p.db
}

// Health checks if the database is reachable.
func (p *Pool) Health(ctx context.Context) error {
	if p == nil || p.db == nil {
		return fmt.Errorf("database not configured")
	}
	return p.db.PingContext(ctx)
}

// Close closes the database connection pool.
func (p *Pool) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

// Stats returns database connection pool statistics.
func (p *Pool) Stats() sql.DBStats {
	if p == nil || p.db == nil {
		return sql.DBStats{}
	}
	return p.db.Stats()
}

// RegisterMetrics exposes pool statistics as gauges on reg.
func (p *Pool) RegisterMetrics(reg prometheus.Registerer) error {
	gauges := map[string]struct {
		help  string
		value func(sql.DBStats) float64
	}{
		"deedgate_db_open_connections": {"Open connections, in use plus idle", func(s sql.DBStats) float64 { return float64(s.OpenConnections) }},
		"deedgate_db_in_use":           {"Connections currently in use", func(s sql.DBStats) float64 { return float64(s.InUse) }},
		"deedgate_db_idle":             {"Idle connections", func(s sql.DBStats) float64 { return float64(s.Idle) }},
		"deedgate_db_wait_count":       {"Connections waited for since start", func(s sql.DBStats) float64 { return float64(s.WaitCount) }},
	}
	for name, g := range gauges {
		value := g.value
		collector := prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: g.help}, func() float64 {
			return value(p.Stats())
		})
		if err := reg.Register(collector); err != nil {
			return fmt.Errorf("register %s: %w", name, err)
		}
	}
	return nil
}
