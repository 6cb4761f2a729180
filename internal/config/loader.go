// internal/config/loader.go
//
// Configuration loader and hot-reloader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from defaults plus three
layers (highest precedence last):

  1. Optional `<root>/conf/.env` file.
  2. Optional `<root>/conf/apiguard.yaml`.
  3. Environment variables prefixed `APIGUARD_`, where `__` maps to “.”
     (e.g., `APIGUARD_API__DEFAULT_REGION → api.default_region`).

After merging, the tree is unmarshalled into strongly-typed structs,
validated, enriched with the runtime root path, and cached in an
`atomic.Pointer` for lock-free reads.  `Reload()` simply calls `Load()`
again and swaps the pointer.

Instrumentation
---------------
  • DEBUG spans – root discovery, YAML read, env overlay.
  • ERROR spans – YAML parse, env overlay, unmarshal, validation failures.
  • INFO  span  – final “config loaded” with key highlights.
  • Logs use the global *sugared* logger (`zap.S()`), which is a no-op
    until cmd/apiguard installs the file logger.

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/apiguard.yaml`;
    this lets `go run ./cmd/apiguard` work from any sub-directory.
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"errors"
	"fmt"
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

const (
	envPrefix = "APIGUARD_"
	fileName  = "apiguard.yaml"
)

var current atomic.Pointer[Config]

var defaults = map[string]any{
	"http.listen_addr":       ":8080",
	"http.metrics_addr":      ":9090",
	"http.max_request_bytes": int64(4 << 20),
	"http.force_https":       false,
	"api.max_body_bytes":     1 << 20,
	"log.level":              "info",
}

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves APIGUARD_ROOT or climbs directories until
// conf/apiguard.yaml is found.  Falls back to the working directory.
func rootDir() string {
	if r := os.Getenv(envPrefix + "ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", fileName)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, env overrides, validates, and caches Config.
func Load() (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")
	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("config default %s: %w", key, err)
		}
	}

	yamlPath := filepath.Join(root, "conf", fileName)
	switch _, err := os.Stat(yamlPath); {
	case err == nil:
		if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
			zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
			return nil, err
		}
		zap.S().Debugw("config yaml loaded", "file", yamlPath)
	case errors.Is(err, fs.ErrNotExist):
		zap.S().Debugw("config yaml absent, using defaults and env", "file", yamlPath)
	default:
		return nil, err
	}

	// Env overrides: APIGUARD_API__MAX_BODY_BYTES → api.max_body_bytes
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	var cfg Config
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
		"upstream", cfg.API.Upstream,
		"default_region", cfg.API.DefaultRegion,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

func envKey(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	return strings.ToLower(strings.ReplaceAll(s, "__", "."))
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config  { return current.Load() }
func Reload() error { _, err := Load(); return err }
