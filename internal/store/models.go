package store

import "time"

// UploadLogEntry is one append-only audit row recording a successful upload.
type UploadLogEntry struct {
	ID            int64
	LabwareTextID string
	WaterSampleID int64
	Year          int
	SerialNo      string
	BlankFile     string
	Dilution      int
	CuvetteLenCM  int
	OriginalPath  string
	ArchivePath   string
	UploadedAt    time.Time
}

// DatabaseHealth captures diagnostic information about the spectra database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	TablesPresent    []string
	MissingTables    []string
	IntegrityCheck   bool
	SpectraRows      int
	UploadLogRows    int
	Error            string
}
