package module

import (
	"time"

	"tasksync/internal/platform/config"
)

// Options holds configuration settings for the extraction module
type Options struct {
	Workers         int
	ContextTasks    int
	ProjectKeys     []string
	OutputFormat    string
	Enrich          bool
	RunTimeout      time.Duration
	LLMTimeout      time.Duration
	SnapshotTimeout time.Duration
	DupThreshold    float64
}

// FromConfig extracts Options from the given config.Conf
func FromConfig(cfg config.Conf) Options {
	pc := cfg.Prefix("CORE_PIPELINE_")
	return Options{
		Workers:         pc.MayInt("WORKERS", 4),
		ContextTasks:    pc.MayInt("CONTEXT_TASKS", 50),
		ProjectKeys:     pc.MayCSV("PROJECT_KEYS", nil),
		OutputFormat:    pc.MayEnum("OUTPUT_FORMAT", "tags", "tags", "json"),
		Enrich:          pc.MayBool("ENRICH", false),
		RunTimeout:      pc.MayDuration("RUN_TIMEOUT", 2*time.Minute),
		LLMTimeout:      pc.MayDuration("LLM_TIMEOUT", 90*time.Second),
		SnapshotTimeout: pc.MayDuration("SNAPSHOT_TIMEOUT", 10*time.Second),
		DupThreshold:    pc.MayFloat64("DUP_THRESHOLD", 0.85),
	}
}
