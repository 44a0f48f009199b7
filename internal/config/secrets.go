// internal/config/secrets.go
//
// `vault:` reference resolution.
//
// Context
// -------
// Credentials (DB password inside the DSN, SMTP password, reCAPTCHA secret,
// admin JWT secret) stay out of YAML and git by pointing at Vault:
//
//	smtp:
//	  password: "vault:secret/perks/smtp#password"
//
// The part before `#` is the KV-v2 path (mount first), the part after is
// the key inside the secret.  Resolution runs on the merged Koanf tree, so
// env overrides may carry references too.

package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

const vaultPrefix = "vault:"

// secretTTL bounds how long the Vault client may serve a cached value.
const secretTTL = 10 * time.Minute

// SecretResolver fetches one key from a KV secret.  *vault.Client
// satisfies it.
type SecretResolver interface {
	GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error)
}

// parseRef splits "vault:mount/path#key".
func parseRef(ref string) (path, key string, err error) {
	body := strings.TrimPrefix(ref, vaultPrefix)
	path, key, ok := strings.Cut(body, "#")
	if !ok || path == "" || key == "" {
		return "", "", fmt.Errorf("malformed vault reference %q", ref)
	}
	return path, key, nil
}

// resolveSecrets rewrites every `vault:` string in k with its secret value.
func resolveSecrets(ctx context.Context, k *koanf.Koanf, secrets SecretResolver) error {
	for key, val := range k.All() {
		s, ok := val.(string)
		if !ok || !strings.HasPrefix(s, vaultPrefix) {
			continue
		}
		if secrets == nil {
			return fmt.Errorf("config key %s references vault but no vault client is configured", key)
		}
		path, field, err := parseRef(s)
		if err != nil {
			return fmt.Errorf("config key %s: %w", key, err)
		}
		plain, err := secrets.GetKV(ctx, path, field, secretTTL)
		if err != nil {
			return fmt.Errorf("config key %s: %w", key, err)
		}
		if err := k.Set(key, plain); err != nil {
			return err
		}
		zap.S().Debugw("config secret resolved", "key", key, "path", path)
	}
	return nil
}
