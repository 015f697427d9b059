package modkit

import (
	"tasksync/internal/modkit/repokit"
	"tasksync/internal/platform/config"
	"tasksync/internal/platform/logger"
	"tasksync/internal/platform/store"
)

// Deps are the process-wide dependencies handed to every module.
// PG and CH are nil when the backend is not configured
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}

// FromStore builds Deps over an opened store
func FromStore(log logger.Logger, cfg config.Conf, st *store.Store) Deps {
	d := Deps{Log: log, Cfg: cfg}
	if st != nil {
		d.PG = st.PG
		d.CH = st.CH
	}
	return d
}

// Named returns a copy of d whose logger carries the component name
func (d Deps) Named(component string) Deps {
	d.Log = d.Log.With().Str("component", component).Logger()
	return d
}
