package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAnalysis()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.DatabasePath, err = expandPath(c.Paths.DatabasePath); err != nil {
		return fmt.Errorf("paths.database_path: %w", err)
	}
	// ArchiveDir is a subdirectory name inside each batch folder, never expanded.
	if strings.TrimSpace(c.Paths.ArchiveDir) == "" {
		c.Paths.ArchiveDir = defaultArchiveDir
	}
	return nil
}

func (c *Config) normalizeAnalysis() {
	c.Analysis.FolderPrefix = strings.TrimSpace(c.Analysis.FolderPrefix)
	if c.Analysis.FolderPrefix == "" {
		c.Analysis.FolderPrefix = defaultFolderPrefix
	}
	c.Analysis.BlankPrefix = strings.TrimSpace(c.Analysis.BlankPrefix)
	if c.Analysis.BlankPrefix == "" {
		c.Analysis.BlankPrefix = defaultBlankPrefix
	}
	c.Analysis.FileExtension = strings.TrimSpace(c.Analysis.FileExtension)
	if c.Analysis.FileExtension == "" {
		c.Analysis.FileExtension = defaultFileExtension
	}
	if !strings.HasPrefix(c.Analysis.FileExtension, ".") {
		c.Analysis.FileExtension = "." + c.Analysis.FileExtension
	}
	if strings.TrimSpace(c.Analysis.AssignmentHorizon) == "" {
		c.Analysis.AssignmentHorizon = defaultAssignmentHorizon
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
