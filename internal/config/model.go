// internal/config/model.go
//
// Typed configuration model for apiguard.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                            – dotenv values,
//   • `conf/apiguard.yaml`                       – primary static file,
//   • `APIGUARD_`-prefixed environment overrides – highest precedence.
//
// Validation happens immediately after unmarshal with the same tag set
// the request schemas use, so a typo such as `level: verbose` or
// `default_region: us-east-9` stops startup instead of surfacing later.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr  string `koanf:"listen_addr"  validate:"required,hostname_port"`
	MetricsAddr string `koanf:"metrics_addr" validate:"omitempty,hostname_port"`

	// MaxRequestBytes caps raw request bodies before decoding.
	MaxRequestBytes int64 `koanf:"max_request_bytes" validate:"gt=0"`

	// ForceHTTPS redirects plain-HTTP callers (except localhost) with 308.
	ForceHTTPS bool `koanf:"force_https"`
}

// API holds the upstream target and validation limits.
type API struct {
	// Upstream is the base URL requests on /api and /clusters forward to.
	Upstream      string `koanf:"upstream"       validate:"required,url"`
	DefaultRegion string `koanf:"default_region" validate:"omitempty,region"`

	// MaxBodyBytes is the size-guard limit on re-serialised JSON bodies.
	MaxBodyBytes int `koanf:"max_body_bytes" validate:"gt=0"`
}

// Log selects the service log level.
type Log struct {
	Level string `koanf:"level" validate:"required,loglevel"`
}

// Paths is resolved at runtime.  The loader discovers `Root` (repo root or
// APIGUARD_ROOT override) so later code can build absolute file paths.
type Paths struct {
	Root string
}

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads.
type Config struct {
	HTTP  HTTP  `koanf:"http"`
	API   API   `koanf:"api"`
	Log   Log   `koanf:"log"`
	Paths Paths `koanf:"-"`
}
