// internal/config/model.go
//
// Typed configuration model for the perks site.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                         – dotenv values,
//   • `conf/global.yaml`                      – primary static file,
//   • `PERKS_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *before* unmarshalling, so the model never
// stores Vault URIs, only plain strings.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • Durations accept Go syntax ("90s", "60m") in YAML and env.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr     string   `koanf:"listen_addr"     validate:"required,hostname_port"`
	ForceHTTPS     bool     `koanf:"force_https"`
	MaxBodyBytes   int64    `koanf:"max_body_bytes"  validate:"gt=0"`
	AllowedOrigins []string `koanf:"allowed_origins"`
}

//
// Database section
//

// Database selects the SQL driver and pool sizes.  `mysql` is the
// production driver; `sqlite` serves single-node and development setups.
type Database struct {
	Driver  string `koanf:"driver"   validate:"required,oneof=mysql sqlite"`
	DSN     string `koanf:"dsn"      validate:"required"`
	MaxOpen int    `koanf:"max_open" validate:"gte=1"`
	MaxIdle int    `koanf:"max_idle" validate:"gte=0"`
	Migrate bool   `koanf:"migrate"`
}

//
// Bot / abuse guard
//

// Recaptcha configures attestation-token verification.  An empty SecretKey
// puts the guard in bypass mode: only BypassToken verifies.
type Recaptcha struct {
	SecretKey   string        `koanf:"secret_key"`
	VerifyURL   string        `koanf:"verify_url"   validate:"required,url"`
	MinScore    float64       `koanf:"min_score"    validate:"gte=0,lte=1"`
	BypassToken string        `koanf:"bypass_token" validate:"required"`
	Timeout     time.Duration `koanf:"timeout"      validate:"gt=0"`
}

// RateLimit configures the per-address, per-endpoint submission cap.
// Retention must cover the window or the count would under-report.
type RateLimit struct {
	Window        time.Duration `koanf:"window"         validate:"gt=0"`
	Cap           int           `koanf:"cap"            validate:"gte=1"`
	StoreTimeout  time.Duration `koanf:"store_timeout"  validate:"gt=0"`
	Retention     time.Duration `koanf:"retention"      validate:"gtefield=Window"`
	PurgeInterval time.Duration `koanf:"purge_interval" validate:"gt=0"`
}

//
// Outbound mail
//

// SMTP holds relay settings.  An empty Host switches to the log-only sender.
type SMTP struct {
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port"          validate:"gte=1,lte=65535"`
	Security     string        `koanf:"security"      validate:"oneof=starttls ssl none"`
	Username     string        `koanf:"username"`
	Password     string        `koanf:"password"`
	From         string        `koanf:"from"          validate:"required,email"`
	AdminAddress string        `koanf:"admin_address" validate:"required,email"`
	Timeout      time.Duration `koanf:"timeout"       validate:"gt=0"`
}

//
// Admin API
//

// Admin configures bearer-token verification for /api/admin routes.
type Admin struct {
	JWTSecret string `koanf:"jwt_secret" validate:"required,min=16"`
	JWTIssuer string `koanf:"jwt_issuer"`
	Role      string `koanf:"role"       validate:"required"`
}

// GeoIP points at an optional GeoLite2 database.
type GeoIP struct {
	DBPath string `koanf:"db_path"`
}

// Log tunes the zap core.
type Log struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // PERKS_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP      HTTP      `koanf:"http"`
	Database  Database  `koanf:"database"`
	Recaptcha Recaptcha `koanf:"recaptcha"`
	RateLimit RateLimit `koanf:"ratelimit"`
	SMTP      SMTP      `koanf:"smtp"`
	Admin     Admin     `koanf:"admin"`
	GeoIP     GeoIP     `koanf:"geoip"`
	Log       Log       `koanf:"log"`
	Paths     Paths     `koanf:"-"`
}

// Defaults returns the baseline every overlay is merged onto.  The numbers
// mirror the production form endpoints: five accepted posts per address per
// hour.
func Defaults() Config {
	return Config{
		HTTP: HTTP{
			ListenAddr:   ":8080",
			MaxBodyBytes: 64 << 10,
		},
		Database: Database{
			Driver:  "mysql",
			MaxOpen: 15,
			MaxIdle: 5,
		},
		Recaptcha: Recaptcha{
			VerifyURL:   "https://www.google.com/recaptcha/api/siteverify",
			MinScore:    0.5,
			BypassToken: "dev-token",
			Timeout:     5 * time.Second,
		},
		RateLimit: RateLimit{
			Window:        60 * time.Minute,
			Cap:           5,
			StoreTimeout:  2 * time.Second,
			Retention:     24 * time.Hour,
			PurgeInterval: time.Hour,
		},
		SMTP: SMTP{
			Port:     587,
			Security: "starttls",
			Timeout:  15 * time.Second,
		},
		Admin: Admin{Role: "admin"},
		Log:   Log{Level: "info"},
	}
}
