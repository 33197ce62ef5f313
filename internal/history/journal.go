package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/hostguard/internal/model"
)

// journalFile is the SQLite file name under the agent data directory.
const journalFile = "hostguard.db"

// Journal is the append-only scan-cycle store.
type Journal struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Cycle is one recorded scan cycle.
type Cycle struct {
	// ID is the journal row identifier, ascending with time.
	ID int64 `json:"id"`

	// ScannedAt is when the cycle ran.
	ScannedAt time.Time `json:"scanned_at"`

	// Findings are the cycle's findings; empty for clean cycles.
	Findings []model.Finding `json:"findings"`
}

// Open opens or creates the journal under dbDir.
// The directory is created if missing.
func Open(dbDir string) (*Journal, error) {
	if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}
	dbPath := filepath.Join(dbDir, journalFile)

	db, err := sql.Open("sqlite", dbPath+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// SQLite supports one writer; the journal has exactly one (the loop),
	// with occasional readers from the report command.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	j := &Journal{db: db, dbPath: dbPath}

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if err := j.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create journal schema: %w", err)
	}
	return j, nil
}

// Close closes the journal.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Path returns the journal file location.
func (j *Journal) Path() string {
	return j.dbPath
}

// createTables creates the journal schema if it doesn't exist.
func (j *Journal) createTables() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS scan_cycles (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		scanned_at    TEXT    NOT NULL,
		finding_count INTEGER NOT NULL,
		findings      TEXT    NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_scan_cycles_scanned_at
		ON scan_cycles(scanned_at);
	`
	_, err := j.db.ExecContext(context.Background(), schema)
	return err
}

// RecordCycle appends one scan cycle. The findings slice is copied into the
// row as JSON; the caller keeps ownership of the values.
func (j *Journal) RecordCycle(ctx context.Context, scannedAt time.Time, findings []model.Finding) error {
	encoded, err := json.Marshal(findings)
	if err != nil {
		return fmt.Errorf("failed to encode findings: %w", err)
	}

	_, err = j.db.ExecContext(ctx,
		`INSERT INTO scan_cycles (scanned_at, finding_count, findings) VALUES (?, ?, ?)`,
		scannedAt.UTC().Format(time.RFC3339Nano), len(findings), string(encoded),
	)
	if err != nil {
		return fmt.Errorf("failed to record scan cycle: %w", err)
	}
	return nil
}

// RecentCycles returns up to limit cycles, most recent first.
func (j *Journal) RecentCycles(ctx context.Context, limit int) ([]Cycle, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, scanned_at, findings FROM scan_cycles ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan cycles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cycles []Cycle
	for rows.Next() {
		var (
			c       Cycle
			stamp   string
			encoded string
		)
		if err := rows.Scan(&c.ID, &stamp, &encoded); err != nil {
			return nil, fmt.Errorf("failed to scan journal row: %w", err)
		}
		c.ScannedAt = parseTimestamp(stamp)
		if err := json.Unmarshal([]byte(encoded), &c.Findings); err != nil {
			return nil, fmt.Errorf("corrupt findings in journal row %d: %w", c.ID, err)
		}
		cycles = append(cycles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate journal rows: %w", err)
	}
	return cycles, nil
}

// CycleCount returns the number of recorded cycles.
func (j *Journal) CycleCount(ctx context.Context) (int64, error) {
	var count int64
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scan_cycles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count scan cycles: %w", err)
	}
	return count, nil
}

// parseTimestamp parses a stored timestamp, tolerating rows written by
// hand or by older builds. A zero time marks an unparseable stamp rather
// than failing the whole query.
func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
