// Package module implements the extraction module
package module

import (
	"tasksync/internal/core/assignee"
	"tasksync/internal/core/respparse"
	"tasksync/internal/core/status"
	"tasksync/internal/core/ticketid"
	"tasksync/internal/modkit"
	phttp "tasksync/internal/platform/net/http"
	"tasksync/internal/services/extraction/domain"
	"tasksync/internal/services/extraction/guardrails"
	"tasksync/internal/services/extraction/service"
)

// Ports exposed by the extraction module
type Ports struct {
	Extractor domain.Extractor
	Parser    respparse.Parser
	Format    respparse.Format
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the extraction module. Zero fields in overrides keep the
// configured value
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("extraction"),
	}, opts...)...)

	ports, ok := b.Ports.(domain.Ports)
	if !ok {
		panic("extraction module: expected WithPorts(extraction/domain.Ports)")
	}
	if ports.LLM == nil {
		panic("extraction module: Ports missing LLM")
	}

	cfg := merge(FromConfig(deps.Cfg), overrides)
	format, _ := respparse.ParseFormat(cfg.OutputFormat)
	log := deps.Log.With().Str("component", "extraction").Logger()

	scan := ticketid.NewScanner(cfg.ProjectKeys...)
	parser := respparse.Parser{Log: log}
	canon := ports.Canon

	finder := &service.Finder{
		LLM:          ports.LLM,
		Parser:       parser,
		Format:       format,
		Assign:       assignee.New(canon),
		Directory:    ports.Directory,
		ContextTasks: cfg.ContextTasks,
		Keys:         scan.Keys(),
		Scanner:      scan,
	}
	creator := &service.Creator{Scanner: scan, Threshold: cfg.DupThreshold, Canon: canon}
	if cfg.Enrich {
		creator.Enricher = service.LLMEnricher{LLM: ports.LLM}
	}
	updater := &service.Updater{Detector: status.New(status.Options{Scanner: scan, Log: log})}

	pipe := service.NewPipeline(finder, creator, updater, ports.Snapshot, service.Config{
		Workers: cfg.Workers,
		Timeouts: guardrails.Timeouts{
			Run:      cfg.RunTimeout,
			LLM:      cfg.LLMTimeout,
			Snapshot: cfg.SnapshotTimeout,
		},
	})

	log.Info().
		Int("workers", cfg.Workers).
		Str("format", cfg.OutputFormat).
		Strs("project_keys", scan.Keys()).
		Bool("enrich", cfg.Enrich).
		Msg("extraction module ready")

	return &Module{deps: deps, ports: Ports{Extractor: pipe, Parser: parser, Format: format}}
}

func merge(cfg, o Options) Options {
	if o.Workers != 0 {
		cfg.Workers = o.Workers
	}
	if o.ContextTasks != 0 {
		cfg.ContextTasks = o.ContextTasks
	}
	if len(o.ProjectKeys) > 0 {
		cfg.ProjectKeys = o.ProjectKeys
	}
	if o.OutputFormat != "" {
		cfg.OutputFormat = o.OutputFormat
	}
	if o.RunTimeout != 0 {
		cfg.RunTimeout = o.RunTimeout
	}
	if o.LLMTimeout != 0 {
		cfg.LLMTimeout = o.LLMTimeout
	}
	if o.SnapshotTimeout != 0 {
		cfg.SnapshotTimeout = o.SnapshotTimeout
	}
	if o.DupThreshold != 0 {
		cfg.DupThreshold = o.DupThreshold
	}
	// enrichment can only be switched on by an override
	cfg.Enrich = cfg.Enrich || o.Enrich
	return cfg
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "extraction" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(_ phttp.Router) {}
