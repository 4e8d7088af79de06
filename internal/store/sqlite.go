package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"example.com/tweetfeed/internal/models"
	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var sqliteMigrations embed.FS

// --- Store Implementation ---

// SQLiteStore is the relational store for users, tweets, media, follows and likes.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the SQLite database at path and applies migrations.
// ":memory:" gives a private in-memory database.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// SQLite has a single writer, and ":memory:" is per connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}

	if err := runSQLiteMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logg.Info("store", "SQLite store ready")
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func sqliteDSN(path string) string {
	params := []string{"_pragma=foreign_keys(1)", "_pragma=busy_timeout(5000)", "_txlock=immediate"}
	if path != ":memory:" {
		params = append(params, "_pragma=journal_mode(WAL)")
	}
	return path + "?" + strings.Join(params, "&")
}

// --- Migration runner ---

func runSQLiteMigrations(db *sql.DB) error {
	src, err := iofs.New(sqliteMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migration source: %w", err)
	}

	drv, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migrate driver: %w", err)
	}

	// m.Close would close db through the driver, so it is never called
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logg.Info("store", "No new migrations to apply")
	} else {
		logg.Info("store", "Migrations applied successfully")
	}
	return nil
}

// WithTx runs fn inside a single transaction.
func (s *SQLiteStore) WithTx(ctx context.Context, fn func(tx Tx) error) (err error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := sqlTx.Rollback(); rbErr != nil {
				logg.Error("store", "Rollback failed", rbErr)
			}
			return
		}
		if cErr := sqlTx.Commit(); cErr != nil {
			err = fmt.Errorf("commit tx: %w", cErr)
		}
	}()

	return fn(&txStore{tx: sqlTx, now: s.now})
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	logg.Info("store", "SQLite store closed")
	return err
}

// txStore implements Tx on top of one *sql.Tx.
type txStore struct {
	tx  *sql.Tx
	now func() time.Time
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTweet(row rowScanner) (models.Tweet, error) {
	var t models.Tweet
	var created int64
	if err := row.Scan(&t.ID, &t.AuthorID, &t.Content, &created); err != nil {
		return models.Tweet{}, err
	}
	t.Created = unixNanoTime(created)
	return t, nil
}

func scanUsers(rows *sql.Rows) ([]models.User, error) {
	defer rows.Close()

	var res []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

func unixNanoTime(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}
