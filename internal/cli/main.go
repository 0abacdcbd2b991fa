package cli

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/idilsaglam/daylist/internal/config"
	"github.com/idilsaglam/daylist/internal/datekey"
	"github.com/idilsaglam/daylist/internal/logging"
	"github.com/idilsaglam/daylist/internal/store"
	"github.com/idilsaglam/daylist/internal/ui"
)

// Env is what Main needs from the process.
type Env struct {
	Stdout, Stderr io.Writer
	Vars           map[string]string
	Now            func() time.Time
	Interactive    func(ctx context.Context, st *store.Store, day time.Time) error
}

// Main parses root flags, wires config, logging and storage, then hands the
// remaining args to Run. It returns the process exit code.
func Main(ctx context.Context, args []string, env Env) int {
	if env.Now == nil {
		env.Now = time.Now
	}

	// Root flags (apply to every subcommand)
	fs := pflag.NewFlagSet("daylist", pflag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	fs.SetInterspersed(false)
	date := fs.StringP("date", "d", "today", "day to work on (YYYY-MM-DD, today, yesterday, tomorrow)")
	group := fs.Bool("group", false, "group ls output by pending/done")
	cfgPath := fs.StringP("config", "c", "", "config file")
	backend := fs.String("backend", "", "storage backend: file, sqlite or memory")
	dataDir := fs.String("data-dir", "", "data directory")
	theme := fs.String("theme", "", "classic, neon or mono")
	noColor := fs.Bool("no-color", false, "disable colors")
	fs.Usage = func() { PrintHelp(env.Stderr) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	rest := fs.Args()
	if len(rest) == 0 {
		PrintHelp(env.Stderr)
		return 2
	}

	day, err := datekey.Parse(*date, env.Now())
	if err != nil {
		ui.Fail(env.Stderr, err.Error())
		return 2
	}

	cfg, err := config.Load(env.Vars, config.Overrides{
		ConfigPath: *cfgPath,
		Backend:    *backend,
		DataDir:    *dataDir,
		Theme:      *theme,
	})
	if err != nil {
		ui.Fail(env.Stderr, "config: "+err.Error())
		return 2
	}
	ui.SetTheme(cfg.Theme)
	if *noColor {
		ui.SetColorForcing(false, true)
	}

	log, err := logging.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		ui.Fail(env.Stderr, "logger: "+err.Error())
		return 1
	}
	defer func() { _ = log.Sync() }()

	policy, err := store.ParseCorruptPolicy(cfg.CorruptPolicy)
	if err != nil {
		ui.Fail(env.Stderr, "config: "+err.Error())
		return 2
	}

	medium, closeMedium, err := openMedium(cfg, log)
	if err != nil {
		ui.Fail(env.Stderr, "storage: "+err.Error())
		return 1
	}
	defer func() {
		if err := closeMedium(); err != nil {
			log.Warn("closing storage", zap.Error(err))
		}
	}()

	log.Debug("starting",
		zap.String("backend", cfg.Backend),
		zap.String("config", cfg.Source),
		zap.String("key", datekey.For(day).String()))

	st := store.New(medium,
		store.WithLogger(log.Named("store")),
		store.WithCorruptPolicy(policy),
	)

	return Run(ctx, st, rest, Options{
		Group:       *group,
		Day:         day,
		Stdout:      env.Stdout,
		Stderr:      env.Stderr,
		Interactive: env.Interactive,
	})
}
