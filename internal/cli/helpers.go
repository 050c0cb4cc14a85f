package cli

import (
	"github.com/mt5crs/riskcore/config"
	"github.com/mt5crs/riskcore/journal"
)

// loadConfig resolves the effective config: file (or defaults), then
// environment overrides, then validation.
func loadConfig(rc *RootConfig) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if rc.ConfigPath != "" {
		cfg, err = config.LoadFromFile(rc.ConfigPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
	}

	if err := cfg.ApplyEnv(rc.EnvFile); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openJournal returns the configured audit journal, or a no-op one
// when no path is set.
func openJournal(cfg *config.Config) (journal.Journal, *journal.SQLite, error) {
	if cfg.Journal.DBPath == "" {
		return journal.Nop{}, nil, nil
	}
	j, err := journal.NewSQLite(cfg.Journal.DBPath)
	if err != nil {
		return nil, nil, err
	}
	return j, j, nil
}
