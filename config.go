package press

import "github.com/goliatone/go-press/internal/runtimeconfig"

var (
	ErrContentDirRequired        = runtimeconfig.ErrContentDirRequired
	ErrDefaultCollectionRequired = runtimeconfig.ErrDefaultCollectionRequired
	ErrStorageDriverUnknown      = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired        = runtimeconfig.ErrStorageDSNRequired
	ErrSiteOutputDirRequired     = runtimeconfig.ErrSiteOutputDirRequired
	ErrSiteBaseURLInvalid        = runtimeconfig.ErrSiteBaseURLInvalid
	ErrSiteWorkersInvalid        = runtimeconfig.ErrSiteWorkersInvalid
	ErrFeedsRequireBaseURL       = runtimeconfig.ErrFeedsRequireBaseURL
	ErrWatchRequiresContentDir   = runtimeconfig.ErrWatchRequiresContentDir
	ErrLoggingProviderRequired   = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown    = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid       = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid      = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config         = runtimeconfig.Config
	ContentConfig  = runtimeconfig.ContentConfig
	ParserConfig   = runtimeconfig.ParserConfig
	StorageConfig  = runtimeconfig.StorageConfig
	CacheConfig    = runtimeconfig.CacheConfig
	SiteConfig     = runtimeconfig.SiteConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
	Features       = runtimeconfig.Features
	CommandsConfig = runtimeconfig.CommandsConfig
)

// DefaultConfig returns opinionated defaults for a filesystem-backed corpus.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML configuration file and merges it over the defaults.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.LoadFile(path)
}
