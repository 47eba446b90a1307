package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"uvabs/internal/blanks"
	"uvabs/internal/correct"
	"uvabs/internal/logging"
	"uvabs/internal/report"
	"uvabs/internal/spectrum"
	"uvabs/internal/store"
	"uvabs/internal/upload"
)

// Params holds the run parameters resolved from config and CLI flags.
type Params struct {
	FolderPrefix  string
	BlankPrefix   string
	FileExtension string
	ArchiveDir    string
	CuvetteLenCM  int
	MethodID      int
	Horizon       time.Time
	ForceUpdate   bool
}

// Runner walks a data root folder by folder and drives the read-assign-
// correct-upload pipeline for each sample. It is the only layer allowed to
// catch a single sample's failure and continue.
type Runner struct {
	store    *store.Store
	uploader *upload.Coordinator
	dilution correct.DilutionPolicy
	logger   *slog.Logger
	params   Params
}

// NewRunner builds a batch runner.
func NewRunner(st *store.Store, uploader *upload.Coordinator, dilution correct.DilutionPolicy, logger *slog.Logger, params Params) *Runner {
	return &Runner{
		store:    st,
		uploader: uploader,
		dilution: dilution,
		logger:   logging.WithComponent(logger, "runner"),
		params:   params,
	}
}

// Run processes every qualifying batch folder under dataDir sequentially.
// Per-sample failures are recorded in the report and do not abort the run;
// a blank-assignment failure rejects its folder entirely.
func (r *Runner) Run(ctx context.Context, dataDir string) (*report.Report, error) {
	rep := &report.Report{
		RunID:   uuid.NewString(),
		Started: time.Now().UTC(),
	}
	logger := r.logger.With(logging.String(logging.FieldRunID, rep.RunID))

	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("read data root %s: %w", dataDir, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), r.params.FolderPrefix) {
			continue
		}
		rep.FoldersScanned++
		r.processFolder(ctx, logger, filepath.Join(dataDir, entry.Name()), rep)
	}

	rep.Finished = time.Now().UTC()
	counts := rep.Counts()
	logger.Info("run finished",
		logging.Int("folders", rep.FoldersScanned),
		logging.Int("uploaded", counts.Uploaded),
		logging.Int("skipped_duplicate", counts.SkippedDuplicate),
		logging.Int("skipped_unknown", counts.SkippedUnknown),
		logging.Int("failed", counts.Failed),
		logging.Int("rejected_folders", len(rep.FolderFailures)),
	)
	return rep, nil
}

func (r *Runner) processFolder(ctx context.Context, logger *slog.Logger, folder string, rep *report.Report) {
	folderName := filepath.Base(folder)
	samples, blankFiles, err := r.splitFolder(folder)
	if err != nil {
		rep.FolderFailures = append(rep.FolderFailures, report.FolderFailure{Folder: folderName, Reason: err.Error()})
		logger.Error("folder rejected", logging.String("folder", folderName), logging.Error(err))
		return
	}
	if len(samples) == 0 || len(blankFiles) == 0 {
		logger.Debug("skipping folder without samples and blanks", logging.String("folder", folderName))
		return
	}

	logger.Info("processing folder",
		logging.String("folder", folderName),
		logging.Int("samples", len(samples)),
		logging.Int("blanks", len(blankFiles)),
	)

	sampleReadings, err := readAcquisitionTimes(samples)
	if err == nil {
		var blankReadings []blanks.Reading
		blankReadings, err = readAcquisitionTimes(blankFiles)
		if err == nil {
			var assignment blanks.Assignment
			assignment, err = blanks.Assign(sampleReadings, blankReadings, r.params.Horizon)
			if err == nil {
				r.processSamples(ctx, logger, folder, samples, assignment, rep)
				return
			}
		}
	}

	// Assignment could not be computed for every sample: the whole folder is
	// rejected and none of its samples are uploaded.
	rep.FolderFailures = append(rep.FolderFailures, report.FolderFailure{Folder: folderName, Reason: err.Error()})
	logger.Error("folder rejected", logging.String("folder", folderName), logging.Error(err))
}

func (r *Runner) processSamples(ctx context.Context, logger *slog.Logger, folder string, samples []string, assignment blanks.Assignment, rep *report.Report) {
	folderName := filepath.Base(folder)
	blankCache := make(map[string]*spectrum.Spectrum)

	for _, samplePath := range samples {
		fileName := filepath.Base(samplePath)
		result := r.processSample(ctx, logger, folder, samplePath, assignment, blankCache)
		result.Folder = folderName
		result.File = fileName
		rep.Results = append(rep.Results, result)
	}
}

// processSample runs one sample through resolve-read-correct-upload. Every
// failure is mapped to a result rather than propagated, so one bad file never
// stops the folder.
func (r *Runner) processSample(ctx context.Context, logger *slog.Logger, folder, samplePath string, assignment blanks.Assignment, blankCache map[string]*spectrum.Spectrum) report.SampleResult {
	serialNo := strings.TrimSuffix(filepath.Base(samplePath), filepath.Ext(samplePath))

	acquired, err := spectrum.AcquisitionTime(samplePath)
	if err != nil {
		return failedResult("", err)
	}
	year := acquired.Year()
	labwareID := fmt.Sprintf("NR-%d-%s", year, serialNo)

	dilution, err := r.dilution(serialNo, year)
	if err != nil {
		return failedResult(labwareID, fmt.Errorf("resolve dilution: %w", err))
	}

	waterSampleID, found, err := r.store.LookupWaterSampleID(ctx, labwareID)
	if err != nil {
		logger.Error("water sample lookup failed", logging.String("labware_id", labwareID), logging.Error(err))
		return failedResult(labwareID, err)
	}
	if !found {
		logger.Info("skipping upload, unknown water sample", logging.String("labware_id", labwareID))
		return report.SampleResult{LabwareID: labwareID, Outcome: report.OutcomeSkippedUnknown, Detail: "no water sample id found"}
	}

	blankPath, ok := assignment.BlankFor(samplePath)
	if !ok {
		// Assign succeeded for the folder, so every sample must be covered.
		return failedResult(labwareID, fmt.Errorf("no blank assigned for %s", samplePath))
	}

	sampleSpec, err := spectrum.Read(samplePath)
	if err != nil {
		return failedResult(labwareID, err)
	}
	blankSpec, cached := blankCache[blankPath]
	if !cached {
		blankSpec, err = spectrum.Read(blankPath)
		if err != nil {
			return failedResult(labwareID, err)
		}
		blankCache[blankPath] = blankSpec
	}

	corrected, err := correct.Correct(sampleSpec, blankSpec, r.params.CuvetteLenCM, dilution, waterSampleID, r.params.MethodID)
	if err != nil {
		return failedResult(labwareID, err)
	}

	outcome, err := r.uploader.Upload(ctx, corrected, upload.BatchContext{
		Folder:        folder,
		LabwareTextID: labwareID,
		SerialNo:      serialNo,
		Year:          year,
		BlankFile:     filepath.Base(blankPath),
		Dilution:      dilution,
		CuvetteLenCM:  r.params.CuvetteLenCM,
		SourcePath:    samplePath,
		ArchiveDir:    r.params.ArchiveDir,
	}, r.params.ForceUpdate)
	if err != nil {
		return failedResult(labwareID, err)
	}

	switch outcome {
	case upload.OutcomeSkippedDuplicate:
		return report.SampleResult{LabwareID: labwareID, Outcome: report.OutcomeSkippedDuplicate, Detail: "values already exist"}
	default:
		return report.SampleResult{LabwareID: labwareID, Outcome: report.OutcomeUploaded}
	}
}

// splitFolder lists the folder's instrument files and separates blanks from
// samples by file name prefix.
func (r *Runner) splitFolder(folder string) (samples, blankFiles []string, err error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, nil, fmt.Errorf("read folder %s: %w", folder, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.EqualFold(filepath.Ext(name), r.params.FileExtension) {
			continue
		}
		path := filepath.Join(folder, name)
		if strings.HasPrefix(strings.ToUpper(name), strings.ToUpper(r.params.BlankPrefix)) {
			blankFiles = append(blankFiles, path)
		} else {
			samples = append(samples, path)
		}
	}

	sort.Strings(samples)
	sort.Strings(blankFiles)
	return samples, blankFiles, nil
}

func readAcquisitionTimes(paths []string) ([]blanks.Reading, error) {
	readings := make([]blanks.Reading, 0, len(paths))
	for _, path := range paths {
		acquired, err := spectrum.AcquisitionTime(path)
		if err != nil {
			return nil, err
		}
		readings = append(readings, blanks.Reading{Path: path, AcquiredAt: acquired})
	}
	return readings, nil
}

func failedResult(labwareID string, err error) report.SampleResult {
	return report.SampleResult{LabwareID: labwareID, Outcome: report.OutcomeFailed, Detail: err.Error()}
}
