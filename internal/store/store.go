package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"uvabs/internal/config"
	"uvabs/internal/correct"
	"uvabs/internal/pipeline"
)

// Store manages spectra persistence backed by SQLite. One Store is opened per
// run and shared sequentially by the batch runner; there is no pooling and no
// per-sample reconnect.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the spectra database and verifies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.Paths.DatabasePath
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// LookupWaterSampleID resolves a labware text identifier to the internal water
// sample id. A missing mapping is a routine miss (false, no error); more than
// one match is a data-integrity failure.
func (s *Store) LookupWaterSampleID(ctx context.Context, labwareTextID string) (int64, bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT water_sample_id FROM labware_sample_ids WHERE labware_text_id = ?`, labwareTextID)
	if err != nil {
		return 0, false, fmt.Errorf("lookup water sample id: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, false, fmt.Errorf("scan water sample id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, false, fmt.Errorf("iterate water sample ids: %w", err)
	}

	switch len(ids) {
	case 0:
		return 0, false, nil
	case 1:
		return ids[0], true, nil
	default:
		return 0, false, pipeline.Wrap(pipeline.ErrLookupMultiplicity, "store", "lookup",
			fmt.Sprintf("found %d water sample ids for %s", len(ids), labwareTextID), nil)
	}
}

// AddLabwareMapping registers a labware text id to water sample id mapping.
func (s *Store) AddLabwareMapping(ctx context.Context, labwareTextID string, waterSampleID int64) error {
	labwareTextID = strings.TrimSpace(labwareTextID)
	if labwareTextID == "" {
		return errors.New("labware text id is empty")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO labware_sample_ids (labware_text_id, water_sample_id) VALUES (?, ?)`,
		labwareTextID, waterSampleID)
	if err != nil {
		return fmt.Errorf("add labware mapping: %w", err)
	}
	return nil
}

// SpectrumRowCount returns the number of persisted rows for a water sample id.
func (s *Store) SpectrumRowCount(ctx context.Context, waterSampleID int64) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM absorbance_spectra WHERE water_sample_id = ?`, waterSampleID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count spectrum rows: %w", err)
	}
	return count, nil
}

// ReplaceSpectrum atomically replaces all rows for the corrected spectrum's
// water sample id and appends the audit log entry. Spectrum rows are written
// before the audit row inside one transaction, so a committed audit entry
// always implies committed spectra.
func (s *Store) ReplaceSpectrum(ctx context.Context, corrected *correct.Corrected, entry UploadLogEntry) error {
	if corrected == nil {
		return errors.New("corrected spectrum is nil")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upload tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM absorbance_spectra WHERE water_sample_id = ?`, corrected.WaterSampleID); err != nil {
		return fmt.Errorf("clear existing spectrum: %w", err)
	}

	insert, err := tx.PrepareContext(ctx,
		`INSERT INTO absorbance_spectra (water_sample_id, wavelength, value, method_id) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare spectrum insert: %w", err)
	}
	defer insert.Close()

	for _, row := range corrected.Rows {
		if _, err := insert.ExecContext(ctx, corrected.WaterSampleID, row.Wavelength, row.Value, corrected.MethodID); err != nil {
			return fmt.Errorf("insert spectrum row %d: %w", row.Wavelength, err)
		}
	}

	uploadedAt := entry.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = time.Now().UTC()
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO spectra_upload_log (
            labware_text_id, water_sample_id, year, serial_no, blank_file,
            dilution, cuvette_len_cm, original_path, archive_path, uploaded_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.LabwareTextID,
		entry.WaterSampleID,
		entry.Year,
		entry.SerialNo,
		entry.BlankFile,
		entry.Dilution,
		entry.CuvetteLenCM,
		entry.OriginalPath,
		entry.ArchivePath,
		uploadedAt.Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("append upload log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upload tx: %w", err)
	}
	return nil
}

// UploadLog returns the audit log ordered by upload time, newest last.
func (s *Store) UploadLog(ctx context.Context) ([]UploadLogEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, labware_text_id, water_sample_id, year, serial_no, blank_file,
                dilution, cuvette_len_cm, original_path, archive_path, uploaded_at
         FROM spectra_upload_log ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query upload log: %w", err)
	}
	defer rows.Close()

	var entries []UploadLogEntry
	for rows.Next() {
		var (
			entry       UploadLogEntry
			uploadedRaw string
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.LabwareTextID,
			&entry.WaterSampleID,
			&entry.Year,
			&entry.SerialNo,
			&entry.BlankFile,
			&entry.Dilution,
			&entry.CuvetteLenCM,
			&entry.OriginalPath,
			&entry.ArchivePath,
			&uploadedRaw,
		); err != nil {
			return nil, fmt.Errorf("scan upload log row: %w", err)
		}
		if uploaded, err := time.Parse(time.RFC3339Nano, uploadedRaw); err == nil {
			entry.UploadedAt = uploaded
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// CheckHealth returns diagnostic information about the spectra database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}

	if s.path == "" {
		return health, errors.New("database path is unknown")
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			health.DatabaseExists = false
			return health, nil
		}
		return health, fmt.Errorf("stat database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	if s.db == nil {
		return health, errors.New("database connection unavailable")
	}

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping database: %w", err)
	}
	health.DatabaseReadable = true

	expected := []string{"labware_sample_ids", "absorbance_spectra", "spectra_upload_log"}
	present := make(map[string]struct{})
	tableRows, err := s.db.QueryContext(connCtx,
		"SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
	if err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("query tables: %w", err)
	}
	defer tableRows.Close()
	for tableRows.Next() {
		var name string
		if err := tableRows.Scan(&name); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("scan table name: %w", err)
		}
		present[name] = struct{}{}
	}
	if err := tableRows.Err(); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("iterate tables: %w", err)
	}
	for _, table := range expected {
		if _, ok := present[table]; ok {
			health.TablesPresent = append(health.TablesPresent, table)
		} else {
			health.MissingTables = append(health.MissingTables, table)
		}
	}

	if len(health.MissingTables) == 0 {
		row := s.db.QueryRowContext(connCtx, "SELECT COUNT(*) FROM absorbance_spectra")
		if err := row.Scan(&health.SpectraRows); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("count spectra rows: %w", err)
		}
		row = s.db.QueryRowContext(connCtx, "SELECT COUNT(*) FROM spectra_upload_log")
		if err := row.Scan(&health.UploadLogRows); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("count upload log rows: %w", err)
		}
	}

	row := s.db.QueryRowContext(connCtx, "PRAGMA integrity_check")
	var integrityResult string
	if err := row.Scan(&integrityResult); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrityResult, "ok")

	return health, nil
}
