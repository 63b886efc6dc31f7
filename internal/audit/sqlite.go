package audit

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// SQLiteStore implements Store with a SQLite backend
type SQLiteStore struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite-based audit store
func NewSQLiteStore(dataDir string) (*SQLiteStore, error) {
	// Ensure data directory exists
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dataDir, "audit.db")

	// Open database with SQLite settings
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with single writer
	db.SetMaxIdleConns(1)

	ss := &SQLiteStore{
		db:   db,
		path: dbPath,
	}

	// Initialize schema
	if err := ss.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return ss, nil
}

// initSchema creates the database schema
func (ss *SQLiteStore) initSchema() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("reading schema: %w", err)
	}

	_, err = ss.db.Exec(string(schema))
	return err
}

// Close closes the database connection
func (ss *SQLiteStore) Close() error {
	return ss.db.Close()
}

// RecordCommand appends one command record. A missing id or timestamp is
// filled in here so callers can pass a bare record.
func (ss *SQLiteStore) RecordCommand(rec *Record) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}

	_, err := ss.db.Exec(`
		INSERT INTO commands (id, ts, switch_addr, kind, command, response, outcome, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Time, rec.SwitchAddr, rec.Kind, rec.Command, rec.Response, rec.Outcome, rec.DurationMS)
	if err != nil {
		return fmt.Errorf("inserting command record: %w", err)
	}
	return nil
}

// ListCommands returns the most recent command records, newest first.
// limit <= 0 means a default page of 100.
func (ss *SQLiteStore) ListCommands(limit int) ([]Record, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	rows, err := ss.db.Query(`
		SELECT id, ts, switch_addr, kind, command, response, outcome, duration_ms
		FROM commands
		ORDER BY ts DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying command records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Time, &r.SwitchAddr, &r.Kind, &r.Command, &r.Response, &r.Outcome, &r.DurationMS); err != nil {
			return nil, fmt.Errorf("scanning command record: %w", err)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// RecordSnapshot appends one fabric state snapshot.
func (ss *SQLiteStore) RecordSnapshot(snap *Snapshot) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if snap.Time.IsZero() {
		snap.Time = time.Now()
	}

	_, err := ss.db.Exec(`
		INSERT INTO snapshots (id, ts, switch_addr, vsan, zone_mode, default_zone,
		                       smart_zoning, session, alias_mode, alias_distribution, alias_locked_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, snap.ID, snap.Time, snap.SwitchAddr, snap.Vsan, snap.ZoneMode, snap.DefaultZone,
		snap.SmartZoning, snap.Session, snap.AliasMode, snap.AliasDistribution, snap.AliasLockedBy)
	if err != nil {
		return fmt.Errorf("inserting snapshot: %w", err)
	}
	return nil
}

// ListSnapshots returns the most recent snapshots for a VSAN, newest
// first. vsan 0 means all VSANs.
func (ss *SQLiteStore) ListSnapshots(vsan, limit int) ([]Snapshot, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, ts, switch_addr, vsan, zone_mode, default_zone,
		       smart_zoning, session, alias_mode, alias_distribution, alias_locked_by
		FROM snapshots
	`
	args := []interface{}{}
	if vsan != 0 {
		query += " WHERE vsan = ?"
		args = append(args, vsan)
	}
	query += " ORDER BY ts DESC LIMIT ?"
	args = append(args, limit)

	rows, err := ss.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var s Snapshot
		err := rows.Scan(&s.ID, &s.Time, &s.SwitchAddr, &s.Vsan, &s.ZoneMode, &s.DefaultZone,
			&s.SmartZoning, &s.Session, &s.AliasMode, &s.AliasDistribution, &s.AliasLockedBy)
		if err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		snaps = append(snaps, s)
	}

	return snaps, rows.Err()
}

// GetDatabasePath returns the database file path
func (ss *SQLiteStore) GetDatabasePath() string {
	return ss.path
}
