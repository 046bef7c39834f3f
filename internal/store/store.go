package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/textsieve/internal/model"
)

// FileName is the database file created inside the store directory.
const FileName = "textsieve.db"

// Store provides SQLite-based storage for batch runs and per-document
// quality metrics.
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default store options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a Store in dir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	-- One row per batch invocation
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		input_dir TEXT NOT NULL,
		scripts TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		status TEXT NOT NULL DEFAULT 'running',
		files_processed INTEGER NOT NULL DEFAULT 0,
		files_with_errors INTEGER NOT NULL DEFAULT 0,
		total_files INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Quality metrics per document and run
	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		path TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		badness_score REAL,
		greek_percentage REAL,
		english_percentage REAL,
		total_tables INTEGER NOT NULL DEFAULT 0,
		malformed_tables INTEGER NOT NULL DEFAULT 0,
		report_json TEXT NOT NULL,
		processed_at TEXT NOT NULL,
		UNIQUE(run_id, path)
	);

	CREATE INDEX IF NOT EXISTS idx_documents_run ON documents(run_id);
	CREATE INDEX IF NOT EXISTS idx_documents_hash ON documents(content_hash);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Run is one recorded batch invocation.
type Run struct {
	ID              string    `json:"id"`
	Kind            string    `json:"kind"`
	InputDir        string    `json:"input_dir"`
	Scripts         []string  `json:"scripts"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at,omitzero"`
	Status          string    `json:"status"`
	FilesProcessed  int       `json:"files_processed"`
	FilesWithErrors int       `json:"files_with_errors"`
	TotalFiles      int       `json:"total_files"`
}

// RunCounts is the outcome recorded when a run finishes.
type RunCounts struct {
	Status          string
	FilesProcessed  int
	FilesWithErrors int
	TotalFiles      int
}

// StartRun records the start of a batch run and returns it with a new ID.
func (s *Store) StartRun(ctx context.Context, kind, inputDir string, scripts []string) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Kind:      kind,
		InputDir:  inputDir,
		Scripts:   scripts,
		StartedAt: time.Now().UTC(),
		Status:    "running",
	}

	query := `
	INSERT INTO runs (id, kind, input_dir, scripts, started_at, status)
	VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		run.Kind,
		run.InputDir,
		strings.Join(scripts, ","),
		formatTimestamp(run.StartedAt),
		run.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}
	return run, nil
}

// FinishRun records the outcome of a run.
func (s *Store) FinishRun(ctx context.Context, id string, counts RunCounts) error {
	query := `
	UPDATE runs
	SET finished_at = ?, status = ?, files_processed = ?, files_with_errors = ?, total_files = ?
	WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query,
		formatTimestamp(time.Now().UTC()),
		counts.Status,
		counts.FilesProcessed,
		counts.FilesWithErrors,
		counts.TotalFiles,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// GetRun retrieves a run by ID. Returns nil, nil if it does not exist.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	query := `
	SELECT id, kind, input_dir, scripts, started_at, finished_at, status,
		files_processed, files_with_errors, total_files
	FROM runs
	WHERE id = ?
	`
	run, err := scanRun(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// LatestRun returns the most recently started run, or nil, nil if there is none.
func (s *Store) LatestRun(ctx context.Context) (*Run, error) {
	runs, err := s.ListRuns(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return runs[0], nil
}

// ListRuns returns up to limit runs, newest first. A non-positive limit returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `
	SELECT id, kind, input_dir, scripts, started_at, finished_at, status,
		files_processed, files_with_errors, total_files
	FROM runs
	ORDER BY started_at DESC, rowid DESC
	LIMIT ?
	`
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run        Run
		scripts    string
		startedAt  string
		finishedAt sql.NullString
	)
	err := row.Scan(
		&run.ID,
		&run.Kind,
		&run.InputDir,
		&scripts,
		&startedAt,
		&finishedAt,
		&run.Status,
		&run.FilesProcessed,
		&run.FilesWithErrors,
		&run.TotalFiles,
	)
	if err != nil {
		return nil, err
	}

	if scripts != "" {
		run.Scripts = strings.Split(scripts, ",")
	}
	run.StartedAt = parseTimestamp(startedAt)
	if finishedAt.Valid {
		run.FinishedAt = parseTimestamp(finishedAt.String)
	}
	return &run, nil
}

// DocumentRecord is the stored quality record of one document.
type DocumentRecord struct {
	ID              int64     `json:"id"`
	RunID           string    `json:"run_id"`
	Path            string    `json:"path"`
	ContentHash     string    `json:"content_hash"`
	BadnessScore    float64   `json:"badness_score"`
	GreekPercentage float64   `json:"greek_percentage"`
	LatinPercentage float64   `json:"latin_percentage"`
	TotalTables     int       `json:"total_tables"`
	MalformedTables int       `json:"malformed_tables"`
	ProcessedAt     time.Time `json:"processed_at"`

	// ReportJSON holds the serialized badness and table reports.
	ReportJSON string `json:"-"`
}

// storedReport is the shape of DocumentRecord.ReportJSON.
type storedReport struct {
	Badness *model.BadnessReport           `json:"badness,omitempty"`
	Tables  *model.FileTableAnalysisResult `json:"tables,omitempty"`
}

// ContentHash returns the hex SHA3-256 digest of content.
func ContentHash(content string) string {
	sum := sha3.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SaveDocument stores the metrics of one document in a run.
// Saving the same path twice in a run replaces the earlier record.
// Either report may be nil.
func (s *Store) SaveDocument(ctx context.Context, runID, path, content string, badness *model.BadnessReport, tables *model.FileTableAnalysisResult) error {
	return saveDocument(ctx, s.db, runID, path, content, badness, tables)
}

func saveDocument(ctx context.Context, db execer, runID, path, content string, badness *model.BadnessReport, tables *model.FileTableAnalysisResult) error {
	reportJSON, err := json.Marshal(storedReport{Badness: badness, Tables: tables})
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	var score, greek, latin sql.NullFloat64
	if badness != nil {
		score = sql.NullFloat64{Float64: badness.BadnessScore, Valid: true}
		greek = sql.NullFloat64{Float64: badness.GreekPercentage(), Valid: true}
		latin = sql.NullFloat64{Float64: badness.LatinPercentage(), Valid: true}
	}
	var totalTables, malformed int
	if tables != nil {
		totalTables = tables.TotalTables
		malformed = tables.BadlyFormedTables
	}

	query := `
	INSERT INTO documents (run_id, path, content_hash, badness_score, greek_percentage,
		english_percentage, total_tables, malformed_tables, report_json, processed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id, path) DO UPDATE SET
		content_hash = excluded.content_hash,
		badness_score = excluded.badness_score,
		greek_percentage = excluded.greek_percentage,
		english_percentage = excluded.english_percentage,
		total_tables = excluded.total_tables,
		malformed_tables = excluded.malformed_tables,
		report_json = excluded.report_json,
		processed_at = excluded.processed_at
	`
	_, err = db.ExecContext(ctx, query,
		runID,
		path,
		ContentHash(content),
		score,
		greek,
		latin,
		totalTables,
		malformed,
		string(reportJSON),
		formatTimestamp(time.Now().UTC()),
	)
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// SaveDocuments stores every analyzed document of a pipeline run in one
// transaction, in path order. If any document fails, none are saved.
// Documents without a badness report are skipped.
func (s *Store) SaveDocuments(ctx context.Context, runID string, docs map[string]*model.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	for _, path := range slices.Sorted(maps.Keys(docs)) {
		doc := docs[path]
		if doc == nil || doc.Badness == nil {
			continue
		}
		if err := saveDocument(ctx, tx, runID, path, doc.Original, doc.Badness, doc.Tables); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit documents: %w", err)
	}
	return nil
}

// Documents returns the records of a run ordered by path.
func (s *Store) Documents(ctx context.Context, runID string) ([]*DocumentRecord, error) {
	query := `
	SELECT id, run_id, path, content_hash, badness_score, greek_percentage,
		english_percentage, total_tables, malformed_tables, report_json, processed_at
	FROM documents
	WHERE run_id = ?
	ORDER BY path
	`
	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var records []*DocumentRecord
	for rows.Next() {
		var (
			rec                 DocumentRecord
			score, greek, latin sql.NullFloat64
			processedAt         string
		)
		err := rows.Scan(
			&rec.ID,
			&rec.RunID,
			&rec.Path,
			&rec.ContentHash,
			&score,
			&greek,
			&latin,
			&rec.TotalTables,
			&rec.MalformedTables,
			&rec.ReportJSON,
			&processedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		rec.BadnessScore = score.Float64
		rec.GreekPercentage = greek.Float64
		rec.LatinPercentage = latin.Float64
		rec.ProcessedAt = parseTimestamp(processedAt)
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// Report decodes the stored badness and table reports of a record.
func (r *DocumentRecord) Report() (*model.BadnessReport, *model.FileTableAnalysisResult, error) {
	var sr storedReport
	if err := json.Unmarshal([]byte(r.ReportJSON), &sr); err != nil {
		return nil, nil, fmt.Errorf("failed to parse stored report: %w", err)
	}
	return sr.Badness, sr.Tables, nil
}

// BadnessDistribution computes the score distribution of a run's analyzed
// documents. Documents stored without a badness score are not counted.
func (s *Store) BadnessDistribution(ctx context.Context, runID string, badnessThreshold, greekThreshold float64) (*model.BadnessDistribution, error) {
	query := `
	SELECT badness_score, COALESCE(greek_percentage, 0)
	FROM documents
	WHERE run_id = ? AND badness_score IS NOT NULL
	`
	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query badness scores: %w", err)
	}
	defer rows.Close()

	dist := model.NewBadnessDistribution(badnessThreshold, greekThreshold)
	for rows.Next() {
		var score, greek float64
		if err := rows.Scan(&score, &greek); err != nil {
			return nil, fmt.Errorf("failed to scan badness score: %w", err)
		}
		dist.Add(score, greek)
	}
	return dist, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// storedTimeFormat has fixed-width fractions so stored values sort as text.
const storedTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(storedTimeFormat)
}

// parseTimestamp returns the zero time if no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
