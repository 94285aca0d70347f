package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/flowplan/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a
// Store. Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

func (s *SQLiteStore) CreatePlan(ctx context.Context, p *model.SavedPlan) error {
	s.logger.Debug("sql", "op", "insert", "table", "plans", "id", p.ID)

	subtasksJSON, err := json.Marshal(p.Subtasks)
	if err != nil {
		return fmt.Errorf("marshal subtasks: %w", err)
	}
	eventsJSON, err := json.Marshal(p.Events)
	if err != nil {
		return fmt.Errorf("marshal events: %w", err)
	}

	scope := p.Scope
	if scope == "" {
		scope = model.ScopeWeekly
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO plans (id, title, descr, scope, timezone, subtasks, events, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Desc, string(scope), p.Timezone,
		string(subtasksJSON), string(eventsJSON),
		p.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteStore) GetPlan(ctx context.Context, id string) (*model.SavedPlan, error) {
	s.logger.Debug("sql", "op", "select", "table", "plans", "id", id)

	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, descr, scope, timezone, subtasks, events, created_at
		 FROM plans WHERE id = ?`, id)

	p, err := scanPlan(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (s *SQLiteStore) ListPlans(ctx context.Context, opts model.ListOptions) ([]*model.SavedPlan, int, error) {
	s.logger.Debug("sql", "op", "list", "table", "plans", "limit", opts.Limit, "offset", opts.Offset)
	opts.Clamp()

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM plans`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, descr, scope, timezone, subtasks, events, created_at
		 FROM plans ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var plans []*model.SavedPlan
	for rows.Next() {
		p, err := scanPlan(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		plans = append(plans, p)
	}
	return plans, total, rows.Err()
}

func (s *SQLiteStore) DeletePlan(ctx context.Context, id string) error {
	s.logger.Debug("sql", "op", "delete", "table", "plans", "id", id)
	_, err := s.db.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) PrunePlans(ctx context.Context, before time.Time) (int, error) {
	s.logger.Debug("sql", "op", "prune", "table", "plans", "before", before)

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM plans WHERE created_at < ?`,
		before.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// scanPlan decodes one plans row via the given Scan function.
func scanPlan(scan func(dest ...any) error) (*model.SavedPlan, error) {
	var (
		p                        model.SavedPlan
		scope                    string
		subtasksJSON, eventsJSON string
		createdAt                string
	)
	if err := scan(&p.ID, &p.Title, &p.Desc, &scope, &p.Timezone,
		&subtasksJSON, &eventsJSON, &createdAt); err != nil {
		return nil, err
	}
	p.Scope = model.Scope(scope)
	if err := json.Unmarshal([]byte(subtasksJSON), &p.Subtasks); err != nil {
		return nil, fmt.Errorf("unmarshal subtasks: %w", err)
	}
	if err := json.Unmarshal([]byte(eventsJSON), &p.Events); err != nil {
		return nil, fmt.Errorf("unmarshal events: %w", err)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &p, nil
}
