// Package app composes the service modules and adapters both binaries run
package app

import (
	"context"
	"time"

	"tasksync/internal/adapters/archive/blob"
	"tasksync/internal/adapters/llm"
	"tasksync/internal/adapters/notify/chat"
	"tasksync/internal/adapters/participants"
	"tasksync/internal/adapters/tracker/jira"
	"tasksync/internal/core/respparse"
	"tasksync/internal/modkit"
	"tasksync/internal/modkit/module"
	"tasksync/internal/platform/config"
	perr "tasksync/internal/platform/errors"
	"tasksync/internal/platform/logger"
	"tasksync/internal/platform/store"

	exdom "tasksync/internal/services/extraction/domain"
	exmod "tasksync/internal/services/extraction/module"
	ledgerdom "tasksync/internal/services/ledger/domain"
	ledgermod "tasksync/internal/services/ledger/module"
	syncdom "tasksync/internal/services/sync/domain"
	syncmod "tasksync/internal/services/sync/module"
	tasksdom "tasksync/internal/services/tasks/domain"
	tasksmod "tasksync/internal/services/tasks/module"
)

// App is the composed pipeline
type App struct {
	Modules   []module.Module
	Processor syncdom.Processor
	Extractor exdom.Extractor
	Tasks     tasksdom.Store
	Ledger    ledgerdom.Reader
	Parser    respparse.Parser
	Format    respparse.Format
	People    *participants.Directory
	// Integrations names the optional collaborators that are enabled
	Integrations []string
}

// Build wires every module over st. Postgres is required; ClickHouse, the
// tracker, chat and the archive are optional
func Build(ctx context.Context, cfg config.Conf, st *store.Store, log logger.Logger) (*App, error) {
	if st == nil || st.PG == nil {
		return nil, perr.InvalidArgf("app: SERVICE_PGSQL_DBURL is required")
	}
	deps := modkit.FromStore(log, cfg, st)

	people, err := participants.Load(cfg.MayString("PARTICIPANTS_FILE", ""))
	if err != nil {
		return nil, err
	}

	exOpts := exmod.FromConfig(cfg)
	llmOpts := llm.FromConfig(cfg)
	llmOpts.JSON = exOpts.OutputFormat == string(respparse.FormatJSON)
	if llmOpts.APIKey == "" && llmOpts.BaseURL == "" {
		return nil, perr.InvalidArgf("app: LLM_API_KEY or LLM_BASE_URL is required")
	}

	tasks := tasksmod.New(deps.Named("tasks"))
	taskStore := module.MustPortsOf[tasksdom.Store](tasks)

	extraction := exmod.New(deps.Named("extraction"), exmod.Options{}, modkit.WithPorts(exdom.Ports{
		LLM:       llm.New(llmOpts),
		Snapshot:  taskStore,
		Directory: people,
		Canon:     people.Canonicalizer(),
	}))
	exPorts := module.MustPortsOf[exmod.Ports](extraction)

	ledger := ledgermod.New(deps.Named("ledger"))
	lp := module.MustPortsOf[ledgermod.Ports](ledger)

	ports := syncdom.Ports{
		Extractor: exPorts.Extractor,
		Store:     taskStore,
		Ledger:    lp.Recorder,
	}
	var integrations []string
	if st.CH != nil {
		integrations = append(integrations, "ledger")
	}
	if ts := jira.FromConfig(cfg); ts.Enabled {
		ports.Tracker = jira.NewClient(ts.Options, people)
		integrations = append(integrations, "tracker")
	}
	if co := chat.FromConfig(cfg); co.Enabled() {
		ports.Notifier = chat.New(co)
		integrations = append(integrations, "chat")
	}
	if ao := blob.FromConfig(cfg); ao.Enabled {
		a, err := blob.New(ao)
		if err != nil {
			return nil, err
		}
		cctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err = a.EnsureContainer(cctx)
		cancel()
		if err != nil {
			return nil, err
		}
		ports.Archiver = a
		integrations = append(integrations, "archive")
	}
	sync := syncmod.New(deps.Named("sync"), modkit.WithPorts(ports))

	a := &App{
		Modules:   []module.Module{tasks, extraction, ledger, sync},
		Processor: module.MustPortsOf[syncmod.Ports](sync).Processor,
		Extractor: exPorts.Extractor,
		Tasks:     taskStore,
		Ledger:    lp.Reader,
		Parser:    exPorts.Parser,
		Format:    exPorts.Format,
		People:    people,

		Integrations: integrations,
	}
	for _, m := range a.Modules {
		module.Register(m.Name(), m.Ports())
	}
	log.Info().
		Int("participants", people.Len()).
		Str("format", string(a.Format)).
		Strs("integrations", integrations).
		Msg("pipeline composed")
	return a, nil
}
