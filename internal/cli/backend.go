package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/idilsaglam/daylist/internal/config"
	"github.com/idilsaglam/daylist/internal/kv"
	"github.com/idilsaglam/daylist/internal/kv/filekv"
	"github.com/idilsaglam/daylist/internal/kv/sqlitekv"
)

// openMedium builds the storage medium named by cfg.Backend. The returned
// close func is never nil.
func openMedium(cfg config.Config, log *zap.Logger) (kv.Medium, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case "memory":
		return kv.NewMemory(), noop, nil
	case "sqlite":
		s, err := sqlitekv.Open(cfg.DSN, log)
		if err != nil {
			return nil, noop, fmt.Errorf("sqlite: %w", err)
		}
		return s, s.Close, nil
	case "file", "":
		s, err := filekv.New(cfg.DataDir)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	}
	return nil, noop, fmt.Errorf("unknown backend %q", cfg.Backend)
}
