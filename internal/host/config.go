package host

// Config holds runtime limits
type Config struct {
	// MaxEventsPerCall bounds the events a single call frame may log
	MaxEventsPerCall int
	// MaxEventSize bounds the encoded size of one event payload in bytes
	MaxEventSize int
	// SupportedVersions is the semver constraint an upgrade target must meet
	SupportedVersions string
	// MaxCallDepth bounds nested sub-calls
	MaxCallDepth int
}

// DefaultConfig returns the default runtime limits
func DefaultConfig() Config {
	return Config{
		MaxEventsPerCall:  64,
		MaxEventSize:      512,
		SupportedVersions: ">= 1.0.0, < 2.0.0",
		MaxCallDepth:      16,
	}
}
