package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// PostgresStore keeps snapshots in the palette_snapshots table.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

// OpenPostgres connects to dsn, verifies the connection and applies pending
// migrations.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not establish connection with database: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStore wraps an open database that is already migrated.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Save inserts or replaces the snapshot for key.
func (p *PostgresStore) Save(ctx context.Context, key string, s *Snapshot) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	fillIdentity(s)
	data, err := s.Encode()
	if err != nil {
		return err
	}

	sqlStatement := `
		INSERT INTO palette_snapshots (key, id, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (key) DO UPDATE
		SET id = EXCLUDED.id, data = EXCLUDED.data, created_at = EXCLUDED.created_at, updated_at = NOW()`

	if _, err := p.db.ExecContext(ctx, sqlStatement, key, s.ID, string(data), s.CreatedAt); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot for key.
func (p *PostgresStore) Load(ctx context.Context, key string) (*Snapshot, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	var data []byte
	err := p.db.QueryRowContext(ctx, `SELECT data FROM palette_snapshots WHERE key = $1`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return Decode(data)
}

// List returns the stored keys in sorted order.
func (p *PostgresStore) List(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT key FROM palette_snapshots ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to list snapshots: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Delete removes the snapshot for key.
func (p *PostgresStore) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	res, err := p.db.ExecContext(ctx, `DELETE FROM palette_snapshots WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return nil
}

// Close closes the database.
func (p *PostgresStore) Close() error {
	return p.db.Close()
}

func fillIdentity(s *Snapshot) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
}
