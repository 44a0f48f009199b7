// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `.env` file at `<root>/conf/.env`.
  2. `conf/global.yaml` (optional; defaults cover a development run).
  3. Environment variables prefixed `PERKS_`, where `__` maps to “.”
     (e.g., `PERKS_SMTP__HOST → smtp.host`).

After merging, `vault:` references are resolved, the tree is unmarshalled
onto `Defaults()`, validated, enriched with the runtime root path, and
cached in an `atomic.Pointer` for lock-free reads.

Instrumentation
---------------
  • DEBUG spans: root discovery, YAML read, secret resolution.
  • ERROR spans: YAML parse, env overlay, unmarshal, validation failures.
  • INFO  span:  final “config loaded” with key highlights.
  • Logs use the global sugared logger (`zap.S()`) so early boot issues
    surface before the file logger is installed.
*/
package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

const envPrefix = "PERKS_"

var current atomic.Pointer[Config]

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves PERKS_ROOT or climbs directories until conf/global.yaml
// is found.  Falls back to the working directory.
func rootDir() string {
	if r := os.Getenv("PERKS_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, env overrides, resolves secrets, validates, and
// caches Config.  secrets may be nil when Vault is not in use; any
// `vault:` reference then fails the load.
func Load(ctx context.Context, secrets SecretResolver) (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
			return nil, err
		}
		zap.S().Debugw("config yaml absent, using defaults", "file", yamlPath)
	} else {
		zap.S().Debugw("config yaml loaded", "file", yamlPath)
	}

	// Env overrides: PERKS_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, envPrefix), "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	if err := resolveSecrets(ctx, k, secrets); err != nil {
		zap.S().Errorw("config secret resolution failed", "err", err)
		return nil, err
	}

	cfg := Defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"db_driver", cfg.Database.Driver,
		"recaptcha_bypass", cfg.Recaptcha.SecretKey == "",
		"smtp_host", cfg.SMTP.Host,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config { return current.Load() }
