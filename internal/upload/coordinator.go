package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"uvabs/internal/correct"
	"uvabs/internal/fileutil"
	"uvabs/internal/logging"
	"uvabs/internal/pipeline"
	"uvabs/internal/store"
)

// Outcome is the result of one upload attempt.
type Outcome string

const (
	// OutcomeUploaded means the corrected spectrum was persisted, audited,
	// and its source file archived.
	OutcomeUploaded Outcome = "uploaded"
	// OutcomeSkippedDuplicate means rows already existed and force was not
	// set; nothing was mutated.
	OutcomeSkippedDuplicate Outcome = "skipped_duplicate"
)

// BatchContext carries the per-sample metadata the audit log records.
type BatchContext struct {
	Folder        string
	LabwareTextID string
	SerialNo      string
	Year          int
	BlankFile     string
	Dilution      int
	CuvetteLenCM  int
	SourcePath    string
	ArchiveDir    string
}

// Coordinator decides whether a corrected spectrum is new or a duplicate and
// owns the persist-audit-archive sequence for a sample.
type Coordinator struct {
	store  *store.Store
	logger *slog.Logger
}

// NewCoordinator builds an upload coordinator.
func NewCoordinator(st *store.Store, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		store:  st,
		logger: logging.WithComponent(logger, "upload"),
	}
}

// Upload persists one corrected spectrum unless it already exists.
//
// The existence check followed by the replace is not guarded against a second
// concurrent writer for the same water sample id; a single operator running
// sequential batches is assumed, and the run-level file lock excludes a second
// local runner. The database write itself (delete, 701 inserts, audit row) is
// one transaction, and the archive move happens only after that transaction
// commits, so a crash mid-sequence can always be diagnosed from database state.
func (c *Coordinator) Upload(ctx context.Context, corrected *correct.Corrected, batch BatchContext, forceUpdate bool) (Outcome, error) {
	if corrected == nil {
		return "", errors.New("corrected spectrum is nil")
	}

	existing, err := c.store.SpectrumRowCount(ctx, corrected.WaterSampleID)
	if err != nil {
		return "", pipeline.Wrap(pipeline.ErrTransient, "upload", "count existing", batch.LabwareTextID, err)
	}

	if existing > 0 && !forceUpdate {
		c.logger.Info("skipping upload, values already exist",
			logging.String("labware_id", batch.LabwareTextID),
			logging.Int64("water_sample_id", corrected.WaterSampleID),
			logging.Int64("existing_rows", existing),
		)
		return OutcomeSkippedDuplicate, nil
	}

	archiveDir := filepath.Join(batch.Folder, batch.ArchiveDir)
	entry := store.UploadLogEntry{
		LabwareTextID: batch.LabwareTextID,
		WaterSampleID: corrected.WaterSampleID,
		Year:          batch.Year,
		SerialNo:      batch.SerialNo,
		BlankFile:     batch.BlankFile,
		Dilution:      batch.Dilution,
		CuvetteLenCM:  batch.CuvetteLenCM,
		OriginalPath:  batch.SourcePath,
		ArchivePath:   filepath.Join(archiveDir, filepath.Base(batch.SourcePath)),
		UploadedAt:    time.Now().UTC(),
	}

	if err := c.store.ReplaceSpectrum(ctx, corrected, entry); err != nil {
		return "", pipeline.Wrap(pipeline.ErrTransient, "upload", "persist", batch.LabwareTextID, err)
	}

	if _, err := fileutil.MoveNoClobber(batch.SourcePath, archiveDir); err != nil {
		// The spectrum and audit row are committed; only the archive move
		// failed. Surface it so the sample is flagged for investigation.
		return "", pipeline.Wrap(pipeline.ErrTransient, "upload", "archive",
			fmt.Sprintf("%s uploaded but source not archived", batch.LabwareTextID), err)
	}

	c.logger.Info("uploaded new data",
		logging.String("labware_id", batch.LabwareTextID),
		logging.Int64("water_sample_id", corrected.WaterSampleID),
		logging.String("blank_file", batch.BlankFile),
		logging.Int("rows", len(corrected.Rows)),
	)
	return OutcomeUploaded, nil
}
