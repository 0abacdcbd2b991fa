package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tailscale/hujson"
)

// Config keeps runtime settings for daylist.
type Config struct {
	Backend       string `json:"backend" validate:"oneof=file sqlite memory"`
	DataDir       string `json:"data_dir" validate:"required_unless=Backend memory"`
	DSN           string `json:"dsn"`
	CorruptPolicy string `json:"corrupt_policy" validate:"oneof=strict lenient"`
	LogLevel      string `json:"log_level" validate:"oneof=debug info warn error"`
	Environment   string `json:"environment" validate:"oneof=development production"`
	Theme         string `json:"theme" validate:"oneof=classic neon mono"`

	// Source is the config file that was loaded, empty if none.
	Source string `json:"-"`
}

// Error variables for configuration loading.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigInvalid      = errors.New("invalid config")
)

// Overrides carries values set on the command line. Empty fields are unset.
type Overrides struct {
	ConfigPath string
	Backend    string
	DataDir    string
	Theme      string
}

// Default returns the built-in configuration for the given environment.
func Default(env map[string]string) Config {
	return Config{
		Backend:       "file",
		DataDir:       defaultDataDir(env),
		CorruptPolicy: "strict",
		LogLevel:      "warn",
		Environment:   "development",
		Theme:         "classic",
	}
}

// defaultDataDir uses $XDG_DATA_HOME/daylist, then ~/.local/share/daylist,
// then ./.daylist.
func defaultDataDir(env map[string]string) string {
	if x := env["XDG_DATA_HOME"]; x != "" {
		return filepath.Join(x, "daylist")
	}
	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".local", "share", "daylist")
	}
	return ".daylist"
}

// globalConfigPath returns $XDG_CONFIG_HOME/daylist/config.json or
// ~/.config/daylist/config.json, empty if neither can be determined.
func globalConfigPath(env map[string]string) string {
	if x := env["XDG_CONFIG_HOME"]; x != "" {
		return filepath.Join(x, "daylist", "config.json")
	}
	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "daylist", "config.json")
	}
	return ""
}

// Load resolves the configuration. Precedence, highest wins:
// defaults, config file (explicit path or the global one), DAYLIST_*
// environment variables, command line overrides.
func Load(env map[string]string, o Overrides) (Config, error) {
	cfg := Default(env)

	path, mustExist := o.ConfigPath, true
	if path == "" {
		path, mustExist = globalConfigPath(env), false
	}
	if path != "" {
		fileCfg, loaded, err := loadFile(path, mustExist)
		if err != nil {
			return Config{}, err
		}
		if loaded {
			cfg = merge(cfg, fileCfg)
			cfg.Source = path
		}
	}

	cfg = merge(cfg, Config{
		Backend:       strings.TrimSpace(env["DAYLIST_BACKEND"]),
		DataDir:       strings.TrimSpace(env["DAYLIST_DATA_DIR"]),
		DSN:           strings.TrimSpace(env["DAYLIST_DSN"]),
		CorruptPolicy: strings.TrimSpace(env["DAYLIST_CORRUPT_POLICY"]),
		LogLevel:      strings.TrimSpace(env["DAYLIST_LOG_LEVEL"]),
		Environment:   strings.TrimSpace(env["DAYLIST_ENV"]),
		Theme:         strings.TrimSpace(env["DAYLIST_THEME"]),
	})
	cfg = merge(cfg, Config{Backend: o.Backend, DataDir: o.DataDir, Theme: o.Theme})

	if cfg.DSN == "" && cfg.DataDir != "" {
		cfg.DSN = filepath.Join(cfg.DataDir, "daylist.db")
	}

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// loadFile reads a JSONC config file. A missing optional file is not an error.
func loadFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if mustExist {
				return Config{}, false, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
			}
			return Config{}, false, nil
		}
		return Config{}, false, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := parse(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}
	return cfg, true, nil
}

func parse(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return cfg, nil
}

func merge(base, overlay Config) Config {
	if overlay.Backend != "" {
		base.Backend = overlay.Backend
	}
	if overlay.DataDir != "" {
		base.DataDir = overlay.DataDir
	}
	if overlay.DSN != "" {
		base.DSN = overlay.DSN
	}
	if overlay.CorruptPolicy != "" {
		base.CorruptPolicy = overlay.CorruptPolicy
	}
	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}
	if overlay.Environment != "" {
		base.Environment = overlay.Environment
	}
	if overlay.Theme != "" {
		base.Theme = overlay.Theme
	}
	return base
}

// Environ returns the process environment as a map.
func Environ() map[string]string {
	env := map[string]string{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}
