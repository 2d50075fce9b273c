// Package store persists run artifacts to SQLite: the normalized
// category set, per-keyword mappings, and the evidence matrix cells.
//
// The store is an index over completed runs — keyword- and
// category-scoped lookups without re-scanning corpus text. The JSON
// artifacts on disk remain the canonical stage outputs.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/driftlab/trustdebt/internal/index"
	"github.com/driftlab/trustdebt/internal/matrix"
	"github.com/driftlab/trustdebt/internal/taxonomy"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// timeNow is injected in tests for stable timestamps.
var timeNow = time.Now

// Config holds store configuration.
type Config struct {
	// DataDir is where trustdebt.db lives. Created if missing.
	DataDir string
}

// Store wraps the SQLite connection.
type Store struct {
	db  *sql.DB
	cfg Config
}

// Run is one persisted analysis run.
type Run struct {
	ID               string  `json:"id"`
	StartedAt        string  `json:"started_at"`
	FinishedAt       *string `json:"finished_at,omitempty"`
	Status           string  `json:"status"`
	SovereigntyScore float64 `json:"sovereignty_score"`
	SovereigntyGrade string  `json:"sovereignty_grade"`
	OverallAlignment float64 `json:"overall_alignment"`
}

// New opens the store, creating the data directory if needed, and runs
// migrations. SQLite runs in WAL mode with a busy timeout.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "trustdebt.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("store: migration: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			started_at  TEXT NOT NULL DEFAULT (datetime('now')),
			finished_at TEXT,
			status      TEXT NOT NULL DEFAULT 'running',
			sovereignty_score FLOAT NOT NULL DEFAULT 0,
			sovereignty_grade TEXT  NOT NULL DEFAULT '',
			overall_alignment FLOAT NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS categories (
			run_id      TEXT    NOT NULL,
			code        TEXT    NOT NULL,
			name        TEXT    NOT NULL,
			parent_code TEXT    NOT NULL DEFAULT '',
			position    INTEGER NOT NULL,
			units       FLOAT   NOT NULL DEFAULT 0,
			percentage  FLOAT   NOT NULL DEFAULT 0,
			PRIMARY KEY (run_id, code),
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS keyword_mappings (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id        TEXT    NOT NULL,
			keyword       TEXT    NOT NULL,
			category_code TEXT    NOT NULL,
			intent_count  INTEGER NOT NULL DEFAULT 0,
			reality_count INTEGER NOT NULL DEFAULT 0,
			total_count   INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_map_keyword  ON keyword_mappings(run_id, keyword);
		CREATE INDEX IF NOT EXISTS idx_map_category ON keyword_mappings(run_id, category_code);

		CREATE TABLE IF NOT EXISTS matrix_cells (
			run_id        TEXT    NOT NULL,
			row           INTEGER NOT NULL,
			col           INTEGER NOT NULL,
			row_code      TEXT    NOT NULL,
			col_code      TEXT    NOT NULL,
			intent_value  FLOAT   NOT NULL DEFAULT 0,
			reality_value FLOAT   NOT NULL DEFAULT 0,
			units         FLOAT   NOT NULL DEFAULT 0,
			triangle      TEXT    NOT NULL,
			PRIMARY KEY (run_id, row, col),
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_cells_row ON matrix_cells(run_id, row);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// Best-effort cleanup for databases written before grades were stored.
	_, _ = s.db.Exec(`UPDATE runs SET sovereignty_grade = '' WHERE sovereignty_grade IS NULL`)

	return nil
}

// ─── Runs ────────────────────────────────────────────────────────────────────

// CreateRun registers a new run as running.
func (s *Store) CreateRun(runID string) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (id, started_at, status) VALUES (?, ?, 'running')`,
		runID, timeNow().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store: create run %s: %w", runID, err)
	}
	return nil
}

// FinishRun records the run outcome and summary figures.
func (s *Store) FinishRun(runID, status string, sovereigntyScore float64, sovereigntyGrade string, overallAlignment float64) error {
	res, err := s.db.Exec(
		`UPDATE runs SET finished_at = ?, status = ?,
			sovereignty_score = ?, sovereignty_grade = ?, overall_alignment = ?
		 WHERE id = ?`,
		timeNow().UTC().Format(time.RFC3339), status,
		sovereigntyScore, sovereigntyGrade, overallAlignment, runID,
	)
	if err != nil {
		return fmt.Errorf("store: finish run %s: %w", runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: finish run %s: not found", runID)
	}
	return nil
}

// RunByID returns one run.
func (s *Store) RunByID(runID string) (Run, error) {
	var r Run
	err := s.db.QueryRow(
		`SELECT id, started_at, finished_at, status,
			sovereignty_score, sovereignty_grade, overall_alignment
		 FROM runs WHERE id = ?`, runID,
	).Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Status,
		&r.SovereigntyScore, &r.SovereigntyGrade, &r.OverallAlignment)
	if err != nil {
		return Run{}, fmt.Errorf("store: run %s: %w", runID, err)
	}
	return r, nil
}

// Runs lists runs, most recent first.
func (s *Store) Runs(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, started_at, finished_at, status,
			sovereignty_score, sovereignty_grade, overall_alignment
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Status,
			&r.SovereigntyScore, &r.SovereigntyGrade, &r.OverallAlignment); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ─── Categories ──────────────────────────────────────────────────────────────

// SaveCategories replaces the stored category set for a run.
func (s *Store) SaveCategories(runID string, cats []taxonomy.Category) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: save categories: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM categories WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("store: clear categories: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO categories (run_id, code, name, parent_code, position, units, percentage)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("store: prepare category insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range cats {
		if _, err := stmt.Exec(runID, c.Code, c.Name, c.ParentCode, c.Position, c.Units, c.Percentage); err != nil {
			return fmt.Errorf("store: insert category %s: %w", c.Code, err)
		}
	}
	return tx.Commit()
}

// CategoryByCode returns one stored category for a run.
func (s *Store) CategoryByCode(runID, code string) (taxonomy.Category, error) {
	var c taxonomy.Category
	err := s.db.QueryRow(
		`SELECT code, name, parent_code, position, units, percentage
		 FROM categories WHERE run_id = ? AND code = ?`, runID, code,
	).Scan(&c.Code, &c.Name, &c.ParentCode, &c.Position, &c.Units, &c.Percentage)
	if err != nil {
		return taxonomy.Category{}, fmt.Errorf("store: category %s in run %s: %w", code, runID, err)
	}
	return c, nil
}

// ─── Keyword mappings ────────────────────────────────────────────────────────

// RecordMappings stores the indexer's mapping rows for a run. Satisfies
// the indexer's Recorder interface.
func (s *Store) RecordMappings(runID string, mappings []index.KeywordMapping) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: record mappings: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM keyword_mappings WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("store: clear mappings: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO keyword_mappings (run_id, keyword, category_code, intent_count, reality_count, total_count)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("store: prepare mapping insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range mappings {
		if _, err := stmt.Exec(runID, m.Keyword, m.CategoryCode, m.IntentCount, m.RealityCount, m.TotalCount); err != nil {
			return fmt.Errorf("store: insert mapping %s/%s: %w", m.Keyword, m.CategoryCode, err)
		}
	}
	return tx.Commit()
}

// MappingsByKeyword returns all mapping rows for one keyword in a run.
func (s *Store) MappingsByKeyword(runID, keyword string) ([]index.KeywordMapping, error) {
	return s.queryMappings(
		`SELECT keyword, category_code, intent_count, reality_count, total_count
		 FROM keyword_mappings WHERE run_id = ? AND keyword = ?
		 ORDER BY category_code`, runID, keyword,
	)
}

// MappingsByCategory returns all mapping rows for one category in a run.
func (s *Store) MappingsByCategory(runID, code string) ([]index.KeywordMapping, error) {
	return s.queryMappings(
		`SELECT keyword, category_code, intent_count, reality_count, total_count
		 FROM keyword_mappings WHERE run_id = ? AND category_code = ?
		 ORDER BY keyword`, runID, code,
	)
}

func (s *Store) queryMappings(query string, args ...any) ([]index.KeywordMapping, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query mappings: %w", err)
	}
	defer rows.Close()

	var mappings []index.KeywordMapping
	for rows.Next() {
		var m index.KeywordMapping
		if err := rows.Scan(&m.Keyword, &m.CategoryCode, &m.IntentCount, &m.RealityCount, &m.TotalCount); err != nil {
			return nil, fmt.Errorf("store: scan mapping: %w", err)
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

// ─── Matrix cells ────────────────────────────────────────────────────────────

// SaveMatrix replaces the stored cell grid for a run.
func (s *Store) SaveMatrix(runID string, m matrix.Matrix) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: save matrix: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM matrix_cells WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("store: clear cells: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO matrix_cells (run_id, row, col, row_code, col_code, intent_value, reality_value, units, triangle)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("store: prepare cell insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range m.Cells {
		if _, err := stmt.Exec(runID, c.Row, c.Col, c.RowCode, c.ColCode,
			c.IntentValue, c.RealityValue, c.Units, string(c.Triangle)); err != nil {
			return fmt.Errorf("store: insert cell (%d,%d): %w", c.Row, c.Col, err)
		}
	}
	return tx.Commit()
}

// CellsForRow returns one matrix row for a run, ordered by column.
func (s *Store) CellsForRow(runID string, row int) ([]matrix.Cell, error) {
	rows, err := s.db.Query(
		`SELECT row, col, row_code, col_code, intent_value, reality_value, units, triangle
		 FROM matrix_cells WHERE run_id = ? AND row = ? ORDER BY col`, runID, row,
	)
	if err != nil {
		return nil, fmt.Errorf("store: query cells: %w", err)
	}
	defer rows.Close()

	var cells []matrix.Cell
	for rows.Next() {
		var c matrix.Cell
		var tri string
		if err := rows.Scan(&c.Row, &c.Col, &c.RowCode, &c.ColCode,
			&c.IntentValue, &c.RealityValue, &c.Units, &tri); err != nil {
			return nil, fmt.Errorf("store: scan cell: %w", err)
		}
		c.Triangle = matrix.Triangle(tri)
		cells = append(cells, c)
	}
	return cells, rows.Err()
}
