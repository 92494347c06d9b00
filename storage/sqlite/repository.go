// Package sqlite stores the cat ledger and per-owner key/value settings in
// a single SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"brawlers/cats"
	"brawlers/config"
	"brawlers/game"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// Repository implements cats.Collection and the KV ports.
type Repository struct {
	db   *sql.DB
	path string
}

// NewRepository opens the database and applies connection settings.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// One writer at a time; mint ids come from AUTOINCREMENT.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &Repository{db: db, path: cfg.Path}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the tables if they don't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS cats (
		token_id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner TEXT NOT NULL,
		name TEXT NOT NULL,
		ens_domain TEXT NOT NULL DEFAULT '',
		level INTEGER NOT NULL DEFAULT 1,
		battles_won INTEGER NOT NULL DEFAULT 0,
		battles_lost INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		attack INTEGER NOT NULL,
		defence INTEGER NOT NULL,
		speed INTEGER NOT NULL,
		health INTEGER NOT NULL,
		color INTEGER NOT NULL,
		clothed INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_cats_owner ON cats(owner);

	CREATE TABLE IF NOT EXISTS settings (
		owner TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (owner, key)
	);
	`

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Mint inserts a new level 1 cat and returns its token id.
func (r *Repository) Mint(ctx context.Context, owner string, req cats.MintRequest) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO cats (owner, name, ens_domain, created_at, attack, defence, speed, health, color, clothed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		strings.ToLower(owner), req.Name, req.ENSDomain, timeNow().UTC(),
		req.Stats.Attack, req.Stats.Defence, req.Stats.Speed, req.Stats.Health,
		int(req.Color), req.Clothed,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting cat: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading token id: %w", err)
	}
	return id, nil
}

const catColumns = `token_id, owner, name, ens_domain, level, battles_won, battles_lost, created_at,
	attack, defence, speed, health, color, clothed`

// CatsOf lists an owner's cats in mint order.
func (r *Repository) CatsOf(ctx context.Context, owner string) ([]cats.Metadata, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+catColumns+` FROM cats WHERE owner = ? ORDER BY token_id`,
		strings.ToLower(owner))
	if err != nil {
		return nil, fmt.Errorf("querying cats: %w", err)
	}
	defer rows.Close()

	var out []cats.Metadata
	for rows.Next() {
		m, err := scanCat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cats: %w", err)
	}
	return out, nil
}

// Cat returns one cat, or cats.ErrNotFound.
func (r *Repository) Cat(ctx context.Context, tokenID int64) (cats.Metadata, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+catColumns+` FROM cats WHERE token_id = ?`, tokenID)
	m, err := scanCat(row)
	if errors.Is(err, sql.ErrNoRows) {
		return cats.Metadata{}, fmt.Errorf("%w: #%d", cats.ErrNotFound, tokenID)
	}
	return m, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCat(s scanner) (cats.Metadata, error) {
	var (
		m       cats.Metadata
		color   int
		clothed bool
	)
	err := s.Scan(&m.TokenID, &m.Owner, &m.Name, &m.ENSDomain, &m.Level, &m.BattlesWon, &m.BattlesLost,
		&m.CreatedAt, &m.Stats.Attack, &m.Stats.Defence, &m.Stats.Speed, &m.Stats.Health, &color, &clothed)
	if errors.Is(err, sql.ErrNoRows) {
		return cats.Metadata{}, err
	}
	if err != nil {
		return cats.Metadata{}, fmt.Errorf("scanning cat: %w", err)
	}
	m.Color = game.CategoryFromIndex(color)
	m.Clothed = clothed
	return m, nil
}

// SetLevel backs the level admin command; the game itself never levels cats up.
func (r *Repository) SetLevel(ctx context.Context, tokenID int64, level int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE cats SET level = ? WHERE token_id = ?`, level, tokenID)
	if err != nil {
		return fmt.Errorf("updating level: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: #%d", cats.ErrNotFound, tokenID)
	}
	return nil
}

// Get reads one setting.
func (r *Repository) Get(ctx context.Context, owner, key string) (string, bool, error) {
	var v string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE owner = ? AND key = ?`, strings.ToLower(owner), key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading setting %s: %w", key, err)
	}
	return v, true, nil
}

// Put writes one setting.
func (r *Repository) Put(ctx context.Context, owner, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (owner, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(owner, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		strings.ToLower(owner), key, value, timeNow().UTC())
	if err != nil {
		return fmt.Errorf("writing setting %s: %w", key, err)
	}
	return nil
}

// PutMany writes several settings in one transaction, so a purchase never
// lands half way.
func (r *Repository) PutMany(ctx context.Context, owner string, kv map[string]string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := timeNow().UTC()
	for k, v := range kv {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO settings (owner, key, value, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT(owner, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			strings.ToLower(owner), k, v, now); err != nil {
			return fmt.Errorf("writing setting %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing settings: %w", err)
	}
	return nil
}
