package config

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked: the log level takes
// effect immediately, session tunables apply to sessions opened after the
// reload. Provider, answer, and database changes require a restart.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	SessionChanged bool
	NewSession     SessionConfig
}

// Empty reports whether the diff carries no applicable change.
func (d ConfigDiff) Empty() bool {
	return !d.LogLevelChanged && !d.SessionChanged
}

// Diff compares old and new configs and returns what changed.
// Only tracks changes that are safe to apply without restart.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if old.Session != new.Session {
		d.SessionChanged = true
		d.NewSession = new.Session
	}

	return d
}
