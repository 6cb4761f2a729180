// internal/config/loader_test.go
//
// Unit-tests for Load: defaults, YAML, env precedence, and validation.
//
// Run: go test ./internal/config -v

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConf(t *testing.T, yaml string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "conf"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "conf", fileName), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("APIGUARD_ROOT", root)
	return root
}

func TestLoad_YAMLAndDefaults(t *testing.T) {
	root := writeConf(t, `
api:
  upstream: https://api.example.com/prod
  default_region: eu-west-1
log:
  level: WARNING
`)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.Upstream != "https://api.example.com/prod" || cfg.API.DefaultRegion != "eu-west-1" {
		t.Fatalf("api section: %#v", cfg.API)
	}
	if cfg.HTTP.ListenAddr != ":8080" || cfg.API.MaxBodyBytes != 1<<20 {
		t.Fatalf("defaults not applied: %#v %#v", cfg.HTTP, cfg.API)
	}
	if cfg.Paths.Root != root {
		t.Fatalf("root = %q, want %q", cfg.Paths.Root, root)
	}
	if Get() != cfg {
		t.Fatalf("Get() does not return the cached config")
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	writeConf(t, `
api:
  upstream: https://api.example.com/prod
  max_body_bytes: 100
`)
	t.Setenv("APIGUARD_API__MAX_BODY_BYTES", "2048")
	t.Setenv("APIGUARD_HTTP__LISTEN_ADDR", "127.0.0.1:9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.MaxBodyBytes != 2048 {
		t.Fatalf("max_body_bytes = %d, want 2048", cfg.API.MaxBodyBytes)
	}
	if cfg.HTTP.ListenAddr != "127.0.0.1:9000" {
		t.Fatalf("listen_addr = %q", cfg.HTTP.ListenAddr)
	}
}

func TestLoad_NoYAML(t *testing.T) {
	t.Setenv("APIGUARD_ROOT", t.TempDir())
	t.Setenv("APIGUARD_API__UPSTREAM", "http://localhost:7000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("log level = %q, want info", cfg.Log.Level)
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := map[string]string{
		"bad region": `
api:
  upstream: https://api.example.com
  default_region: us-east-9
`,
		"bad level": `
api:
  upstream: https://api.example.com
log:
  level: verbose
`,
		"missing upstream": `
log:
  level: debug
`,
		"zero body limit": `
api:
  upstream: https://api.example.com
  max_body_bytes: 0
`,
	}
	for name, yaml := range tests {
		t.Run(name, func(t *testing.T) {
			writeConf(t, yaml)
			if _, err := Load(); err == nil {
				t.Fatalf("Load accepted invalid config")
			}
		})
	}
}
