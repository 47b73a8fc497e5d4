// Package store persists per-author document state in SQLite: the flat item
// map of each author's latest snapshot and that author's operation log.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kevinxiao27/inkdoc/doc"
	"github.com/kevinxiao27/inkdoc/ol"
	"github.com/kevinxiao27/inkdoc/registry"
)

var ErrNotFound = errors.New("store: document not found")

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    doc_id      TEXT NOT NULL,
    author      TEXT NOT NULL,
    width       INTEGER NOT NULL,
    height      INTEGER NOT NULL,
    history_limit INTEGER NOT NULL DEFAULT 0,
    flat        TEXT NOT NULL,
    updated_ns  INTEGER NOT NULL,
    PRIMARY KEY (doc_id, author)
);

CREATE TABLE IF NOT EXISTS ops (
    doc_id      TEXT NOT NULL,
    author      TEXT NOT NULL,
    agent       TEXT NOT NULL,
    seq         INTEGER NOT NULL,
    op          TEXT NOT NULL,
    PRIMARY KEY (doc_id, author, agent, seq)
);
`

// Key addresses one author's copy of a document.
type Key struct {
	Doc    string
	Author string
}

// Meta is the fixed configuration of an author copy. HistoryLimit is the
// limit its op log was recorded under; replay must use the same one.
type Meta struct {
	Width        int
	Height       int
	HistoryLimit int
}

// Record is a stored author copy.
type Record struct {
	Meta
	Items registry.Map[doc.Item]
	Ops   *ol.Log
}

type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens or creates the database at path. A nil logger means slog.Default().
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	logger.Debug("store opened", "path", path)
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveItems replaces the stored items of k.
func (s *Store) SaveItems(ctx context.Context, k Key, m Meta, items registry.Map[doc.Item]) error {
	data, err := doc.Encode(doc.Flat{Items: items})
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", k.Doc, k.Author, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (doc_id, author, width, height, history_limit, flat, updated_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (doc_id, author) DO UPDATE SET
			width = excluded.width,
			height = excluded.height,
			history_limit = excluded.history_limit,
			flat = excluded.flat,
			updated_ns = excluded.updated_ns`,
		k.Doc, k.Author, m.Width, m.Height, m.HistoryLimit, string(data), time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("save %s/%s: %w", k.Doc, k.Author, err)
	}

	s.logger.Debug("items saved", "doc", k.Doc, "author", k.Author, "items", items.Len())
	return nil
}

// AppendOps stores log entries for k. Entries already stored are skipped.
func (s *Store) AppendOps(ctx context.Context, k Key, entries []ol.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO ops (doc_id, author, agent, seq, op) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		op, err := json.Marshal(e.Op)
		if err != nil {
			return fmt.Errorf("encode op %s/%d: %w", e.ID.Agent, e.ID.Seq, err)
		}
		if _, err := stmt.ExecContext(ctx, k.Doc, k.Author, e.ID.Agent, e.ID.Seq, string(op)); err != nil {
			return fmt.Errorf("insert op %s/%d: %w", e.ID.Agent, e.ID.Seq, err)
		}
	}
	return tx.Commit()
}

// Load returns the stored copy of k, or ErrNotFound.
func (s *Store) Load(ctx context.Context, k Key) (*Record, error) {
	var (
		rec  Record
		flat string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT width, height, history_limit, flat FROM documents WHERE doc_id = ? AND author = ?`,
		k.Doc, k.Author).Scan(&rec.Width, &rec.Height, &rec.HistoryLimit, &flat)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s/%s: %w", k.Doc, k.Author, err)
	}

	f, err := doc.Decode([]byte(flat))
	if err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", k.Doc, k.Author, err)
	}
	rec.Items = f.Items

	if rec.Ops, err = s.Ops(ctx, k); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Ops returns the stored operation log of k in insertion order.
func (s *Store) Ops(ctx context.Context, k Key) (*ol.Log, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT agent, seq, op FROM ops WHERE doc_id = ? AND author = ? ORDER BY rowid`,
		k.Doc, k.Author)
	if err != nil {
		return nil, fmt.Errorf("query ops: %w", err)
	}
	defer rows.Close()

	log := ol.NewLog()
	for rows.Next() {
		var (
			e  ol.Entry
			op string
		)
		if err := rows.Scan(&e.ID.Agent, &e.ID.Seq, &op); err != nil {
			return nil, fmt.Errorf("scan op: %w", err)
		}
		if err := json.Unmarshal([]byte(op), &e.Op); err != nil {
			return nil, fmt.Errorf("decode op %s/%d: %w", e.ID.Agent, e.ID.Seq, err)
		}
		if !ol.PushRemote(log, e) {
			s.logger.Warn("skipping out-of-sequence op", "doc", k.Doc, "author", k.Author,
				"agent", e.ID.Agent, "seq", e.ID.Seq)
		}
	}
	return log, rows.Err()
}

// Authors lists the authors holding a copy of docID.
func (s *Store) Authors(ctx context.Context, docID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT author FROM documents WHERE doc_id = ? ORDER BY author`, docID)
	if err != nil {
		return nil, fmt.Errorf("query authors: %w", err)
	}
	defer rows.Close()

	var authors []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("scan author: %w", err)
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

// Delete removes every author copy and op of docID.
func (s *Store) Delete(ctx context.Context, docID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ops WHERE doc_id = ?`, docID); err != nil {
		return fmt.Errorf("delete ops: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE doc_id = ?`, docID); err != nil {
		return fmt.Errorf("delete documents: %w", err)
	}
	return tx.Commit()
}
