package config

const (
	defaultDataDir           = "~/uvabs/data"
	defaultLogDir            = "~/.local/share/uvabs/logs"
	defaultDatabasePath      = "~/.local/share/uvabs/uvabs.db"
	defaultArchiveDir        = "uploaded"
	defaultCuvetteLengthCM   = 5
	defaultMethodID          = 10666
	defaultDilutionFactor    = 1
	defaultFolderPrefix      = "AB"
	defaultBlankPrefix       = "BL"
	defaultFileExtension     = ".SP"
	defaultAssignmentHorizon = "2100-01-01"
	defaultRequestTimeout    = 10
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:      defaultDataDir,
			LogDir:       defaultLogDir,
			DatabasePath: defaultDatabasePath,
			ArchiveDir:   defaultArchiveDir,
		},
		Analysis: Analysis{
			CuvetteLengthCM:   defaultCuvetteLengthCM,
			MethodID:          defaultMethodID,
			DilutionFactor:    defaultDilutionFactor,
			FolderPrefix:      defaultFolderPrefix,
			BlankPrefix:       defaultBlankPrefix,
			FileExtension:     defaultFileExtension,
			AssignmentHorizon: defaultAssignmentHorizon,
		},
		Notifications: Notifications{
			RequestTimeout: defaultRequestTimeout,
			Run:            true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
