package version

// Build metadata, overridden at release time via
// -ldflags "-X .../internal/version.Version=...".
var (
	Version   = "dev"
	GitSHA    = "unknown"
	BuildTime = "unknown"
)
