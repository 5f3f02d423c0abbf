package indexstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	kferrors "github.com/kestrel-labs/knowledgeforge/internal/errors"
)

// Config configures a Store. It mirrors internal/config.IndexConfig but is
// kept local so indexstore has no dependency on the config package.
type Config struct {
	Tokenizer        string
	RemoveAccents    bool
	CaseSensitive    bool
	Synchronous      string
	JournalMode      string
	VacuumThreshold  float64
	MaxContentLength int
}

// DefaultConfig returns sensible defaults for a Store.
func DefaultConfig() Config {
	return Config{
		Tokenizer:        "porter",
		RemoveAccents:    true,
		CaseSensitive:    false,
		Synchronous:      "normal",
		JournalMode:      "wal",
		VacuumThreshold:  0.2,
		MaxContentLength: 1 << 20,
	}
}

// Store is the index store (C1): a SQLite row store for entry metadata and
// raw content, paired with a Bleve inverted index for weighted full-text
// search, facets, and the query-language parsers. A write lock serializes
// writers; reads (search, count, facets) run concurrently against it and
// against each other.
type Store struct {
	mu sync.RWMutex

	db    *sql.DB
	index bleve.Index
	lock  *storeLock

	dbPath    string
	indexPath string
	config    Config

	deletedSinceVacuum int
	closed             bool
}

// Connect opens (or creates) the index store at basePath. basePath is a
// directory; the row store lives at basePath/rows.db and the inverted
// index at basePath/postings.bleve. An empty basePath creates an
// in-memory, single-process store for tests.
func Connect(basePath string, cfg Config) (*Store, error) {
	s := &Store{config: cfg}

	var dsn, indexPath string
	if basePath != "" {
		dsn = filepath.Join(basePath, "rows.db") + "?_pragma=busy_timeout(5000)"
		indexPath = filepath.Join(basePath, "postings.bleve")
		s.dbPath = filepath.Join(basePath, "rows.db")
		s.indexPath = indexPath

		s.lock = newStoreLock(basePath)
		locked, err := s.lock.TryLock()
		if err != nil {
			return nil, err
		}
		if !locked {
			return nil, kferrors.IndexCorruption(kferrors.ErrCodeIndexUnreadable,
				"index store already locked by another process", nil)
		}
	} else {
		dsn = ":memory:"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open row store: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	journal := cfg.JournalMode
	if journal == "" {
		journal = "wal"
	}
	sync := cfg.Synchronous
	if sync == "" {
		sync = "normal"
	}
	pragmas := []string{
		fmt.Sprintf("PRAGMA journal_mode = %s", journal),
		fmt.Sprintf("PRAGMA synchronous = %s", sync),
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", p, err)
		}
	}
	s.db = db

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.createIndexes(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	var idx bleve.Index
	mapping, err := buildIndexMapping(cfg.Tokenizer, cfg.RemoveAccents, cfg.CaseSensitive)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if indexPath == "" {
		idx, err = bleve.NewMemOnly(mapping)
	} else {
		idx, err = bleve.Open(indexPath)
		if err != nil {
			idx, err = bleve.New(indexPath, mapping)
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open postings index: %w", err)
	}
	s.index = idx

	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

	CREATE TABLE IF NOT EXISTS entries (
		id             TEXT PRIMARY KEY,
		type           TEXT NOT NULL,
		category       TEXT NOT NULL DEFAULT '',
		path           TEXT NOT NULL DEFAULT '',
		hash           TEXT NOT NULL DEFAULT '',
		title          TEXT NOT NULL DEFAULT '',
		content        TEXT NOT NULL DEFAULT '',
		last_modified  INTEGER NOT NULL DEFAULT 0,
		tags           TEXT NOT NULL DEFAULT '[]',
		agent_types    TEXT NOT NULL DEFAULT '[]',
		project_id     TEXT NOT NULL DEFAULT '',
		language       TEXT NOT NULL DEFAULT '',
		scope          TEXT NOT NULL DEFAULT '',
		difficulty     TEXT NOT NULL DEFAULT '',
		severity       TEXT NOT NULL DEFAULT '',
		status         TEXT NOT NULL DEFAULT '',
		usage_count    INTEGER NOT NULL DEFAULT 0,
		file_size      INTEGER NOT NULL DEFAULT 0,
		effectiveness  REAL NOT NULL DEFAULT 0,
		success_rate   REAL NOT NULL DEFAULT 0,
		last_used      INTEGER NOT NULL DEFAULT 0,
		related_ids    TEXT NOT NULL DEFAULT '[]',
		parent_id      TEXT NOT NULL DEFAULT '',
		child_ids      TEXT NOT NULL DEFAULT '[]',
		deleted        INTEGER NOT NULL DEFAULT 0
	);
	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) createIndexes() error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_entries_type ON entries(type) WHERE deleted = 0`,
		`CREATE INDEX IF NOT EXISTS idx_entries_category ON entries(category) WHERE deleted = 0`,
		`CREATE INDEX IF NOT EXISTS idx_entries_project ON entries(project_id) WHERE deleted = 0`,
		`CREATE INDEX IF NOT EXISTS idx_entries_last_modified ON entries(last_modified) WHERE deleted = 0`,
		`CREATE INDEX IF NOT EXISTS idx_entries_deleted ON entries(deleted)`,
	}
	for _, stmt := range indexes {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// migrate applies forward-only schema migrations. Currently a no-op past
// schema version 1; new columns are added here as the schema evolves.
func (s *Store) migrate() error {
	return nil
}

// Insert adds or atomically replaces entries (an id collision is an
// update: the previous row and all its inverted postings are replaced).
func (s *Store) Insert(ctx context.Context, entries []*Entry) error {
	return s.upsert(ctx, entries)
}

// Update is an alias for Insert: both paths upsert by id.
func (s *Store) Update(ctx context.Context, entries []*Entry) error {
	return s.upsert(ctx, entries)
}

func (s *Store) upsert(ctx context.Context, entries []*Entry) error {
	if len(entries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}

	return kferrors.Retry(ctx, kferrors.DefaultRetryConfig(), func() error {
		return s.upsertOnce(ctx, entries)
	})
}

// upsertOnce runs one attempt of the batch upsert transaction. Retried by
// upsert on transient I/O errors (spec §7: "transient I/O errors are
// retried at the batch level up to 3 times with exponential backoff").
func (s *Store) upsertOnce(ctx context.Context, entries []*Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (
			id, type, category, path, hash, title, content, last_modified,
			tags, agent_types, project_id, language, scope, difficulty,
			severity, status, usage_count, file_size, effectiveness,
			success_rate, last_used, related_ids, parent_id, child_ids, deleted
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,0)
		ON CONFLICT(id) DO UPDATE SET
			type=excluded.type, category=excluded.category, path=excluded.path,
			hash=excluded.hash, title=excluded.title, content=excluded.content,
			last_modified=excluded.last_modified, tags=excluded.tags,
			agent_types=excluded.agent_types, project_id=excluded.project_id,
			language=excluded.language, scope=excluded.scope,
			difficulty=excluded.difficulty, severity=excluded.severity,
			status=excluded.status, usage_count=excluded.usage_count,
			file_size=excluded.file_size, effectiveness=excluded.effectiveness,
			success_rate=excluded.success_rate, last_used=excluded.last_used,
			related_ids=excluded.related_ids, parent_id=excluded.parent_id,
			child_ids=excluded.child_ids, deleted=0
	`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	batch := s.index.NewBatch()
	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		tags, _ := json.Marshal(e.Tags)
		agentTypes, _ := json.Marshal(e.AgentTypes)
		related, _ := json.Marshal(e.RelatedIDs)
		children, _ := json.Marshal(e.ChildIDs)

		_, err := stmt.ExecContext(ctx,
			e.ID, string(e.Type), e.Category, e.Path, e.Hash, e.Title, e.Content,
			e.LastModified.Unix(), string(tags), string(agentTypes), e.ProjectID,
			e.Language, string(e.Scope), string(e.Difficulty), e.Severity, e.Status,
			e.UsageCount, e.FileSize, e.Effectiveness, e.SuccessRate, e.LastUsed.Unix(),
			string(related), e.ParentID, string(children),
		)
		if err != nil {
			return kferrors.BatchError(kferrors.ErrCodeBatchRejected, fmt.Sprintf("upsert entry %s failed", e.ID), err)
		}

		if err := batch.Index(e.ID, bleveDocFromEntry(e)); err != nil {
			return fmt.Errorf("index entry %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	if err := s.index.Batch(batch); err != nil {
		return fmt.Errorf("apply postings batch: %w", err)
	}
	return nil
}

// Delete removes entries by id from both the row store and the inverted
// index. Rows are tombstoned (deleted=1) rather than physically removed
// until a vacuum run, so the deleted/total ratio can trigger one.
func (s *Store) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}

	return kferrors.Retry(ctx, kferrors.DefaultRetryConfig(), func() error {
		return s.deleteOnce(ctx, ids)
	})
}

// deleteOnce runs one attempt of the batch tombstone-and-unindex
// transaction. Retried by Delete on transient I/O errors.
func (s *Store) deleteOnce(ctx context.Context, ids []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	q := fmt.Sprintf("UPDATE entries SET deleted = 1 WHERE id IN (%s)", strings.Join(placeholders, ","))
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("tombstone entries: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}

	batch := s.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	if err := s.index.Batch(batch); err != nil {
		return fmt.Errorf("remove postings: %w", err)
	}

	s.deletedSinceVacuum += len(ids)
	return nil
}

// GetByID fetches a single non-deleted entry. Returns NotFound if absent.
func (s *Store) GetByID(ctx context.Context, id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.getByIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, kferrors.NotFound(kferrors.ErrCodeEntryNotFound, fmt.Sprintf("entry %s not found", id))
	}
	return entries[0], nil
}

// GetByIDs fetches entries in no particular order, silently omitting ids
// that don't exist or are deleted (corrupt rows are skipped, not fatal;
// see spec §7 on row corruption policy).
func (s *Store) GetByIDs(ctx context.Context, ids []string) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getByIDs(ctx, ids)
}

func (s *Store) getByIDs(ctx context.Context, ids []string) ([]*Entry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	q := fmt.Sprintf(`SELECT %s FROM entries WHERE deleted = 0 AND id IN (%s)`, entryColumns, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			continue // corrupt row: skipped per spec §7, not fatal
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SearchFTS executes a parsed query against the inverted index and returns
// scored hits plus the total candidate count (pre-page) for facets and
// pagination.
func (s *Store) SearchFTS(ctx context.Context, text string, queryType QueryType, filter Filter, limit, offset int) (*SearchFTSResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	q, err := buildQuery(text, queryType, filter)
	if err != nil {
		return nil, err
	}

	req := bleve.NewSearchRequestOptions(q, limit, offset, false)
	req.IncludeLocations = true
	result, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	hits := make([]RawHit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		hits = append(hits, RawHit{
			ID:            hit.ID,
			Score:         hit.Score,
			MatchedFields: matchedFieldsFromLocations(hit.Locations),
		})
	}

	return &SearchFTSResult{
		Hits:         hits,
		TotalMatches: int(result.Total),
	}, nil
}

// Count returns the number of non-deleted entries matching filter.
func (s *Store) Count(ctx context.Context, filter Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := buildFilterQuery(filter)
	if q == nil {
		var n int
		err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE deleted = 0`).Scan(&n)
		return n, err
	}

	req := bleve.NewSearchRequestOptions(q, 0, 0, false)
	result, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("count query: %w", err)
	}
	return int(result.Total), nil
}

// Stats reports row counts and basic sizing for operator visibility and
// vacuum scheduling.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entryCount, deletedCount int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE deleted = 0`).Scan(&entryCount); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE deleted = 1`).Scan(&deletedCount); err != nil {
		return nil, err
	}

	docCount, _ := s.index.DocCount()

	var sizeBytes int64
	if s.dbPath != "" {
		if fi, err := dbFileSize(s.dbPath); err == nil {
			sizeBytes = fi
		}
	}

	return &Stats{
		EntryCount:     entryCount,
		DeletedCount:   deletedCount,
		TermCount:      int(docCount),
		IndexSizeBytes: sizeBytes,
	}, nil
}

// ShouldVacuum reports whether the deleted/total ratio has crossed the
// configured threshold.
func (s *Store) ShouldVacuum(ctx context.Context) (bool, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return false, err
	}
	total := stats.EntryCount + stats.DeletedCount
	if total == 0 {
		return false, nil
	}
	ratio := float64(stats.DeletedCount) / float64(total)
	return ratio >= s.config.VacuumThreshold, nil
}

// Vacuum physically removes tombstoned rows and reclaims SQLite free
// pages. It never blocks concurrent reads for more than one write
// transaction window: the purge and the VACUUM each take the store lock
// on their own, so reads run between them, and Bleve's scorch index
// compacts its own segments automatically on delete.
func (s *Store) Vacuum(ctx context.Context) (*VacuumReport, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, fmt.Errorf("store is closed")
	}

	before, err := dbFileSize(s.dbPath)
	if err != nil {
		before = 0
	}

	start := time.Now()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE deleted = 1`); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("purge tombstones: %w", err)
	}
	s.deletedSinceVacuum = 0
	s.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}
	if _, err := s.db.ExecContext(ctx, `VACUUM`); err != nil {
		return nil, fmt.Errorf("vacuum: %w", err)
	}
	duration := time.Since(start)

	after, err := dbFileSize(s.dbPath)
	if err != nil {
		after = before
	}

	freed := before - after
	if freed < 0 {
		freed = 0
	}
	return &VacuumReport{BytesFreed: freed, Duration: duration}, nil
}

// Disconnect closes the postings index, the row store, and releases the
// process lock. Safe to call once; subsequent calls are a no-op.
func (s *Store) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var firstErr error
	if s.index != nil {
		if err := s.index.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

const entryColumns = `id, type, category, path, hash, title, content, last_modified,
	tags, agent_types, project_id, language, scope, difficulty, severity,
	status, usage_count, file_size, effectiveness, success_rate, last_used,
	related_ids, parent_id, child_ids`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(rows rowScanner) (*Entry, error) {
	var e Entry
	var entryType, scope, difficulty string
	var lastModified, lastUsed int64
	var tagsJSON, agentTypesJSON, relatedJSON, childrenJSON string

	err := rows.Scan(
		&e.ID, &entryType, &e.Category, &e.Path, &e.Hash, &e.Title, &e.Content,
		&lastModified, &tagsJSON, &agentTypesJSON, &e.ProjectID, &e.Language,
		&scope, &difficulty, &e.Severity, &e.Status, &e.UsageCount, &e.FileSize,
		&e.Effectiveness, &e.SuccessRate, &lastUsed, &relatedJSON, &e.ParentID, &childrenJSON,
	)
	if err != nil {
		return nil, err
	}

	e.Type = EntryType(entryType)
	e.Scope = Scope(scope)
	e.Difficulty = Difficulty(difficulty)
	e.LastModified = time.Unix(lastModified, 0).UTC()
	e.LastUsed = time.Unix(lastUsed, 0).UTC()
	_ = json.Unmarshal([]byte(tagsJSON), &e.Tags)
	_ = json.Unmarshal([]byte(agentTypesJSON), &e.AgentTypes)
	_ = json.Unmarshal([]byte(relatedJSON), &e.RelatedIDs)
	_ = json.Unmarshal([]byte(childrenJSON), &e.ChildIDs)

	return &e, nil
}

// bleveEntryDoc is the document shape indexed into Bleve: weighted text
// fields plus keyword-mapped facet/filter fields.
type bleveEntryDoc struct {
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Tags         string    `json:"tags"`
	Category     string    `json:"category"`
	Type         string    `json:"type"`
	CategoryFct  string    `json:"category_facet"`
	TagsFct      []string  `json:"tags_facet"`
	ProjectID    string    `json:"project_id"`
	AgentTypes   []string  `json:"agent_types"`
	Language     string    `json:"language"`
	LastModified time.Time `json:"last_modified"`
}

func bleveDocFromEntry(e *Entry) bleveEntryDoc {
	return bleveEntryDoc{
		Title:        e.Title,
		Content:      e.Content,
		Tags:         strings.Join(e.Tags, " "),
		Category:     e.Category,
		Type:         string(e.Type),
		CategoryFct:  strings.ToLower(e.Category),
		TagsFct:      lowerAll(e.Tags),
		ProjectID:    e.ProjectID,
		AgentTypes:   lowerAll(e.AgentTypes),
		Language:     e.Language,
		LastModified: e.LastModified,
	}
}

func lowerAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(s)
	}
	return out
}

func dbFileSize(path string) (int64, error) {
	if path == "" {
		return 0, nil
	}
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	return fi.Size(), nil
}
