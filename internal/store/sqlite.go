package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"recheck-go/internal/recheck"
	"recheck-go/internal/store/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// timeColumnFormat is how timestamps are stored in the records table.
const timeColumnFormat = time.RFC3339Nano

// SQLiteStore keeps one row per resource in a records table. Upserts are
// durable immediately, so Save is a no-op.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if necessary) the database at path and
// brings its schema up to date. path may be ":memory:".
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := migrations.Up(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating store schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Lookup(name string) (*recheck.Record, error) {
	row := s.db.QueryRow(
		`SELECT check_time, change_time, commit_hash, archived FROM records WHERE name = ?`,
		name,
	)

	var checkTime, changeTime, commitHash string
	var archived bool
	if err := row.Scan(&checkTime, &changeTime, &commitHash, &archived); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying record %q: %w", name, err)
	}

	rec, err := decodeRecord(checkTime, changeTime, commitHash, archived)
	if err != nil {
		return nil, fmt.Errorf("record %q: %w", name, err)
	}
	return rec, nil
}

func (s *SQLiteStore) Upsert(name string, rec recheck.Record) error {
	_, err := s.db.Exec(
		`INSERT INTO records (name, check_time, change_time, commit_hash, archived)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   check_time = excluded.check_time,
		   change_time = excluded.change_time,
		   commit_hash = excluded.commit_hash,
		   archived = excluded.archived`,
		name,
		rec.CheckTime.UTC().Format(timeColumnFormat),
		rec.ChangeTime.UTC().Format(timeColumnFormat),
		rec.CommitHash.String(),
		rec.Archived,
	)
	if err != nil {
		return fmt.Errorf("upserting record %q: %w", name, err)
	}
	return nil
}

func (s *SQLiteStore) All() (map[string]recheck.Record, error) {
	rows, err := s.db.Query(`SELECT name, check_time, change_time, commit_hash, archived FROM records`)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	out := make(map[string]recheck.Record)
	for rows.Next() {
		var name, checkTime, changeTime, commitHash string
		var archived bool
		if err := rows.Scan(&name, &checkTime, &changeTime, &commitHash, &archived); err != nil {
			return nil, fmt.Errorf("scanning record row: %w", err)
		}
		rec, err := decodeRecord(checkTime, changeTime, commitHash, archived)
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", name, err)
		}
		out[name] = *rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return out, nil
}

// Save is a no-op: every Upsert is already durable.
func (s *SQLiteStore) Save() error { return nil }

func (s *SQLiteStore) Close() error { return s.db.Close() }

func decodeRecord(checkTime, changeTime, commitHash string, archived bool) (*recheck.Record, error) {
	check, err := time.Parse(timeColumnFormat, checkTime)
	if err != nil {
		return nil, fmt.Errorf("parsing check_time: %w", err)
	}
	change, err := time.Parse(timeColumnFormat, changeTime)
	if err != nil {
		return nil, fmt.Errorf("parsing change_time: %w", err)
	}
	hash, err := recheck.ParseHash(commitHash)
	if err != nil {
		return nil, fmt.Errorf("parsing commit_hash: %w", err)
	}
	return &recheck.Record{
		CheckTime:  check,
		ChangeTime: change,
		CommitHash: hash,
		Archived:   archived,
	}, nil
}
