package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"uvabs/internal/batch"
	"uvabs/internal/correct"
	"uvabs/internal/logging"
	"uvabs/internal/notifications"
	"uvabs/internal/store"
	"uvabs/internal/upload"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var forceUpdate bool
	var dataDir string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Ingest, correct, and upload spectra from the data folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), ctx, dataDir, forceUpdate)
		},
	}

	cmd.Flags().BoolVar(&forceUpdate, "force", false, "Replace values that already exist in the database")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Data folder to scan (defaults to the configured data_dir)")
	return cmd
}

func runBatch(cmdCtx context.Context, ctx *commandContext, dataDir string, forceUpdate bool) error {
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if dataDir == "" {
		dataDir = cfg.Paths.DataDir
	}

	// One run at a time per machine; a second invocation fails fast instead
	// of racing the archive moves.
	lockPath := filepath.Join(cfg.Paths.LogDir, "uvabs.lock")
	runLock := flock.New(lockPath)
	locked, err := runLock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return errors.New("another uvabs run is already in progress")
	}
	defer func() { _ = runLock.Unlock() }()

	logPath := filepath.Join(cfg.Paths.LogDir,
		fmt.Sprintf("uvabs_run_%s.log", time.Now().UTC().Format("20060102T150405Z")))
	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	horizon, err := cfg.Horizon()
	if err != nil {
		return fmt.Errorf("resolve assignment horizon: %w", err)
	}

	st, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	notifier := notifications.NewService(cfg)
	if err := notifier.NotifyRunStarted(signalCtx, dataDir); err != nil {
		logger.Warn("run-started notification failed", logging.Error(err))
	}

	runner := batch.NewRunner(
		st,
		upload.NewCoordinator(st, logger),
		correct.ConstantDilution(cfg.Analysis.DilutionFactor),
		logger,
		batch.Params{
			FolderPrefix:  cfg.Analysis.FolderPrefix,
			BlankPrefix:   cfg.Analysis.BlankPrefix,
			FileExtension: cfg.Analysis.FileExtension,
			ArchiveDir:    cfg.Paths.ArchiveDir,
			CuvetteLenCM:  cfg.Analysis.CuvetteLengthCM,
			MethodID:      cfg.Analysis.MethodID,
			Horizon:       horizon,
			ForceUpdate:   forceUpdate,
		},
	)

	report, err := runner.Run(signalCtx, dataDir)
	if err != nil {
		if notifyErr := notifier.NotifyError(context.WithoutCancel(signalCtx), err, "run"); notifyErr != nil {
			logger.Warn("error notification failed", logging.Error(notifyErr))
		}
		return err
	}

	for _, failure := range report.FolderFailures {
		if notifyErr := notifier.NotifyFolderRejected(signalCtx, failure.Folder, failure.Reason); notifyErr != nil {
			logger.Warn("folder-rejected notification failed", logging.Error(notifyErr))
		}
	}

	counts := report.Counts()
	skipped := counts.SkippedDuplicate + counts.SkippedUnknown
	if err := notifier.NotifyRunCompleted(signalCtx, counts.Uploaded, skipped, counts.Failed, report.Duration()); err != nil {
		logger.Warn("run-completed notification failed", logging.Error(err))
	}

	fmt.Fprint(os.Stdout, report.Render())

	if report.HasFailures() {
		return fmt.Errorf("run %s finished with %d failed samples and %d rejected folders (see %s)",
			report.RunID, counts.Failed, len(report.FolderFailures), logPath)
	}
	return nil
}
