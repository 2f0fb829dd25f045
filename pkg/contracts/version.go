package contracts

const (
	// Version is the current version of the application
	Version = "1.0.0"

	// DataFormatVersion is the version of the canonical CSV layout
	DataFormatVersion = "v1"

	// ArtifactSchemaVersion is the version of the forecast artifact columns
	ArtifactSchemaVersion = "v1"

	// APIVersion is the version of the HTTP API
	APIVersion = "v1"
)

var (
	// BuildTime is set during build using ldflags
	BuildTime = "unknown"

	// GitCommit is set during build using ldflags
	GitCommit = "unknown"
)
