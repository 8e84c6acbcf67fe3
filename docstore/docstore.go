// Package docstore is a small document database on top of SQLite. Documents
// are JSON values addressed by collection and id. Listeners receive the full
// contents of a collection (or one document) whenever a write touches it.
package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned by Update and Get when the document does not exist.
	ErrNotFound = errors.New("docstore: document not found")
	// ErrPermissionDenied is returned by every write on a read-only store.
	ErrPermissionDenied = errors.New("docstore: permission denied")
)

// Ref addresses a single document.
type Ref struct {
	Collection string
	ID         string
}

// Doc returns a reference to the document id in collection.
func Doc(collection, id string) Ref {
	return Ref{Collection: collection, ID: id}
}

func (r Ref) String() string {
	return r.Collection + "/" + r.ID
}

func (r Ref) valid() bool {
	return r.Collection != "" && r.ID != ""
}

// Query selects every document of a collection, optionally ordered by a
// top-level field. Documents with equal keys keep their insertion order.
type Query struct {
	Collection string
	orderBy    string
}

// Collection returns a query over all documents of name.
func Collection(name string) Query {
	return Query{Collection: name}
}

// OrderBy sorts the query result by the top-level field, ascending.
func (q Query) OrderBy(field string) Query {
	q.orderBy = field
	return q
}

// Document is one stored JSON value.
type Document struct {
	ID   string
	Data json.RawMessage
}

// DataTo decodes the document into v.
func (d Document) DataTo(v any) error {
	return json.Unmarshal(d.Data, v)
}

// Snapshot is the full contents of a collection at one point in time.
type Snapshot struct {
	Docs []Document
}

// Empty reports whether the collection had no documents.
func (s Snapshot) Empty() bool {
	return len(s.Docs) == 0
}

// DocSnapshot is the state of a single document.
type DocSnapshot struct {
	Ref    Ref
	Exists bool
	Data   json.RawMessage
}

// DataTo decodes the document into v. It fails with ErrNotFound when the
// document does not exist.
func (d DocSnapshot) DataTo(v any) error {
	if !d.Exists {
		return ErrNotFound
	}
	return json.Unmarshal(d.Data, v)
}

// Write is one entry of a batch.
type Write struct {
	Ref   Ref
	Value any
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for write and listener diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.log = l.With().Str("component", "docstore").Logger()
	}
}

// ReadOnly makes every write fail with ErrPermissionDenied.
func ReadOnly() Option {
	return func(s *Store) {
		s.readOnly = true
	}
}

// Store is a SQLite-backed document database.
type Store struct {
	db       *sqlx.DB
	log      zerolog.Logger
	readOnly bool

	mu        sync.Mutex
	listeners map[string]map[*listener]struct{}
}

// Open opens (or creates) the database at path, ensures the data directory
// exists, and creates the documents table.
func Open(path string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create data dir")
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	// WAL lets listeners read while a writer commits; the busy timeout makes
	// writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "configure database")
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)

	s := &Store{
		db:        db,
		log:       zerolog.Nop(),
		listeners: make(map[string]map[*listener]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ensure schema")
	}
	return s, nil
}

// DB exposes the underlying handle so other tables can share the file.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close stops every listener and closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	var all []*listener
	for _, set := range s.listeners {
		for l := range set {
			all = append(all, l)
		}
	}
	s.listeners = make(map[string]map[*listener]struct{})
	s.mu.Unlock()
	for _, l := range all {
		l.stop()
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS documents (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    collection TEXT NOT NULL,
    id TEXT NOT NULL,
    data TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    UNIQUE (collection, id)
);
CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection, seq);
`)
	return err
}

const upsertSQL = `INSERT INTO documents (collection, id, data, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, e execer, ref Ref, data []byte) error {
	_, err := e.ExecContext(ctx, upsertSQL, ref.Collection, ref.ID, string(data), time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

func (s *Store) checkWrite(ref Ref) error {
	if s.readOnly {
		return ErrPermissionDenied
	}
	if !ref.valid() {
		return errors.Errorf("docstore: invalid reference %q", ref.String())
	}
	return nil
}

// Set writes v as the full contents of the document, creating it if needed.
// An existing document keeps its position in collection order.
func (s *Store) Set(ctx context.Context, ref Ref, v any) error {
	if err := s.checkWrite(ref); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %s", ref)
	}
	if err := upsert(ctx, s.db, ref, data); err != nil {
		return errors.Wrapf(err, "set %s", ref)
	}
	s.log.Debug().Str("ref", ref.String()).Msg("set")
	s.notify(ref.Collection)
	return nil
}

// Update merges the top-level fields of partial into an existing document.
// It returns ErrNotFound when the document does not exist.
func (s *Store) Update(ctx context.Context, ref Ref, partial any) error {
	if err := s.checkWrite(ref); err != nil {
		return err
	}
	patch, err := json.Marshal(partial)
	if err != nil {
		return errors.Wrapf(err, "encode %s", ref)
	}
	fields := gjson.ParseBytes(patch)
	if !fields.IsObject() {
		return errors.Errorf("docstore: update of %s needs an object, got %s", ref, fields.Type)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin update")
	}
	defer tx.Rollback()

	var current string
	err = tx.GetContext(ctx, &current, `SELECT data FROM documents WHERE collection = ? AND id = ?`, ref.Collection, ref.ID)
	if err == sql.ErrNoRows {
		return errors.Wrapf(ErrNotFound, "update %s", ref)
	}
	if err != nil {
		return errors.Wrapf(err, "read %s", ref)
	}

	merged := []byte(current)
	var mergeErr error
	fields.ForEach(func(key, value gjson.Result) bool {
		merged, mergeErr = sjson.SetRawBytes(merged, escapeKey(key.String()), []byte(value.Raw))
		return mergeErr == nil
	})
	if mergeErr != nil {
		return errors.Wrapf(mergeErr, "merge %s", ref)
	}

	if err := upsert(ctx, tx, ref, merged); err != nil {
		return errors.Wrapf(err, "update %s", ref)
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrapf(err, "commit update %s", ref)
	}
	s.log.Debug().Str("ref", ref.String()).Msg("update")
	s.notify(ref.Collection)
	return nil
}

// Delete removes the document. Deleting a missing document is not an error.
func (s *Store) Delete(ctx context.Context, ref Ref) error {
	if err := s.checkWrite(ref); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, ref.Collection, ref.ID)
	if err != nil {
		return errors.Wrapf(err, "delete %s", ref)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.log.Debug().Str("ref", ref.String()).Msg("delete")
		s.notify(ref.Collection)
	}
	return nil
}

// BatchWrite sets every entry in one transaction: either all documents are
// written or none are.
func (s *Store) BatchWrite(ctx context.Context, writes []Write) error {
	if s.readOnly {
		return ErrPermissionDenied
	}
	encoded := make([][]byte, len(writes))
	for i, w := range writes {
		if !w.Ref.valid() {
			return errors.Errorf("docstore: invalid reference %q in batch", w.Ref.String())
		}
		data, err := json.Marshal(w.Value)
		if err != nil {
			return errors.Wrapf(err, "encode %s", w.Ref)
		}
		encoded[i] = data
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin batch")
	}
	defer tx.Rollback()
	for i, w := range writes {
		if err := upsert(ctx, tx, w.Ref, encoded[i]); err != nil {
			return errors.Wrapf(err, "batch set %s", w.Ref)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit batch")
	}

	touched := make(map[string]struct{})
	for _, w := range writes {
		if _, ok := touched[w.Ref.Collection]; ok {
			continue
		}
		touched[w.Ref.Collection] = struct{}{}
		s.notify(w.Ref.Collection)
	}
	s.log.Debug().Int("writes", len(writes)).Msg("batch")
	return nil
}

type docRow struct {
	ID   string `db:"id"`
	Data string `db:"data"`
}

// List returns the current contents of the collection.
func (s *Store) List(ctx context.Context, q Query) (Snapshot, error) {
	var rows []docRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, data FROM documents WHERE collection = ? ORDER BY seq`, q.Collection); err != nil {
		return Snapshot{}, errors.Wrapf(err, "list %s", q.Collection)
	}
	docs := make([]Document, len(rows))
	for i, r := range rows {
		docs[i] = Document{ID: r.ID, Data: json.RawMessage(r.Data)}
	}
	if q.orderBy != "" {
		sortDocs(docs, q.orderBy)
	}
	return Snapshot{Docs: docs}, nil
}

// Get returns the document at ref. A missing document is reported through
// DocSnapshot.Exists, not as an error.
func (s *Store) Get(ctx context.Context, ref Ref) (DocSnapshot, error) {
	var data string
	err := s.db.GetContext(ctx, &data, `SELECT data FROM documents WHERE collection = ? AND id = ?`, ref.Collection, ref.ID)
	if err == sql.ErrNoRows {
		return DocSnapshot{Ref: ref}, nil
	}
	if err != nil {
		return DocSnapshot{}, errors.Wrapf(err, "get %s", ref)
	}
	return DocSnapshot{Ref: ref, Exists: true, Data: json.RawMessage(data)}, nil
}

func sortDocs(docs []Document, field string) {
	key := escapeKey(field)
	sort.SliceStable(docs, func(i, j int) bool {
		a := gjson.GetBytes(docs[i].Data, key)
		b := gjson.GetBytes(docs[j].Data, key)
		if a.Type == gjson.Number && b.Type == gjson.Number {
			return a.Num < b.Num
		}
		return a.String() < b.String()
	})
}

// escapeKey quotes the gjson/sjson path metacharacters in a field name.
func escapeKey(k string) string {
	var b strings.Builder
	for _, r := range k {
		switch r {
		case '.', '*', '?', '|', '#', '@', '!', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
