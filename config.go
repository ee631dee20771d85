package cms

import "github.com/goliatone/go-sitecms/internal/runtimeconfig"

var (
	ErrGeneratorOutputDirRequired = runtimeconfig.ErrGeneratorOutputDirRequired
	ErrGeneratedDirInvalid        = runtimeconfig.ErrGeneratedDirInvalid
	ErrLoggingProviderRequired    = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown     = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid        = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid       = runtimeconfig.ErrLoggingFormatInvalid
	ErrStorageDriverUnknown       = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDialectUnknown      = runtimeconfig.ErrStorageDialectUnknown
	ErrStorageDSNRequired         = runtimeconfig.ErrStorageDSNRequired
	ErrCacheTTLInvalid            = runtimeconfig.ErrCacheTTLInvalid
	ErrRenderTimeoutInvalid       = runtimeconfig.ErrRenderTimeoutInvalid
	ErrMarkdownExtensionUnknown   = runtimeconfig.ErrMarkdownExtensionUnknown
)

type (
	Config          = runtimeconfig.Config
	Features        = runtimeconfig.Features
	LoggingConfig   = runtimeconfig.LoggingConfig
	MarkdownConfig  = runtimeconfig.MarkdownConfig
	RenderConfig    = runtimeconfig.RenderConfig
	GeneratorConfig = runtimeconfig.GeneratorConfig
	StorageConfig   = runtimeconfig.StorageConfig
	CacheConfig     = runtimeconfig.CacheConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML runtime config over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
