package module

import "tasksync/internal/platform/config"

// Options holds configuration settings for the tasks module
type Options struct {
	HardLimit int
	Migrate   bool
}

// FromConfig extracts Options from the given config.Conf
func FromConfig(cfg config.Conf) Options {
	tc := cfg.Prefix("CORE_TASKS_")
	return Options{
		HardLimit: tc.MayInt("HARD_LIMIT", 100),
		Migrate:   tc.MayBool("MIGRATE", true),
	}
}
