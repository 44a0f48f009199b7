// internal/config/loader_test.go
//
// Loader tests: YAML + env overlay, defaults, vault references, and the
// retention ≥ window rule.

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const baseYAML = `
database:
  driver: sqlite
  dsn: "file:test.db"
smtp:
  from: "noreply@perks.example"
  admin_address: "team@perks.example"
admin:
  jwt_secret: "0123456789abcdef0123"
`

type fakeSecrets map[string]string

func (f fakeSecrets) GetKV(_ context.Context, path, key string, _ time.Duration) (string, error) {
	v, ok := f[path+"#"+key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func writeRoot(t *testing.T, yaml string) {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "conf"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "conf", "global.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PERKS_ROOT", root)
}

func TestLoad_DefaultsAndYAML(t *testing.T) {
	writeRoot(t, baseYAML)

	cfg, err := Load(context.Background(), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.RateLimit.Cap != 5 || cfg.RateLimit.Window != time.Hour {
		t.Errorf("rate limit defaults = %d/%v, want 5/1h", cfg.RateLimit.Cap, cfg.RateLimit.Window)
	}
	if cfg.Recaptcha.MinScore != 0.5 || cfg.Recaptcha.BypassToken != "dev-token" {
		t.Errorf("recaptcha defaults = %+v", cfg.Recaptcha)
	}
	if Get() != cfg {
		t.Errorf("Get() did not return the cached config")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	writeRoot(t, baseYAML)
	t.Setenv("PERKS_RATELIMIT__CAP", "9")
	t.Setenv("PERKS_SMTP__HOST", "smtp.perks.example")

	cfg, err := Load(context.Background(), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RateLimit.Cap != 9 {
		t.Errorf("cap = %d, want 9", cfg.RateLimit.Cap)
	}
	if cfg.SMTP.Host != "smtp.perks.example" {
		t.Errorf("smtp host = %q", cfg.SMTP.Host)
	}
}

func TestLoad_VaultReference(t *testing.T) {
	writeRoot(t, baseYAML+`
recaptcha:
  secret_key: "vault:secret/perks/recaptcha#secret"
`)
	secrets := fakeSecrets{"secret/perks/recaptcha#secret": "s3cr3t"}

	cfg, err := Load(context.Background(), secrets)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Recaptcha.SecretKey != "s3cr3t" {
		t.Errorf("secret = %q, want resolved value", cfg.Recaptcha.SecretKey)
	}
}

func TestLoad_VaultReferenceWithoutClient(t *testing.T) {
	writeRoot(t, baseYAML+`
geoip:
  db_path: "vault:secret/perks/geo#path"
`)
	if _, err := Load(context.Background(), nil); err == nil {
		t.Fatal("expected error for unresolved vault reference")
	}
}

func TestLoad_RetentionShorterThanWindow(t *testing.T) {
	writeRoot(t, baseYAML+`
ratelimit:
  window: 2h
  retention: 1h
`)
	if _, err := Load(context.Background(), nil); err == nil {
		t.Fatal("expected validation error when retention < window")
	}
}

func TestParseRef(t *testing.T) {
	cases := []struct {
		in, path, key string
		ok            bool
	}{
		{"vault:secret/app#pw", "secret/app", "pw", true},
		{"vault:secret/app", "", "", false},
		{"vault:#pw", "", "", false},
	}
	for _, c := range cases {
		p, k, err := parseRef(c.in)
		if (err == nil) != c.ok {
			t.Errorf("parseRef(%q) err = %v", c.in, err)
			continue
		}
		if p != c.path || k != c.key {
			t.Errorf("parseRef(%q) = %q,%q", c.in, p, k)
		}
	}
}
