// internal/vault/vault.go
//
// Vault client wrapper used to resolve `vault:` configuration references.
//
// Context
// -------
//   - Wraps the HashiCorp Vault Go SDK behind config.SecretResolver.
//   - Adds per-key caching and background token renewal.
//   - Only started when VAULT_ADDR is set; the site runs fine without it.
//
// Public workflow
// ---------------
//  1. cli, err := vault.New(ctx)                  // during boot.
//  2. cfg, err := config.Load(ctx, cli)           // resolves vault:path#key.
//
// Build tags: none.
package vault

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

//
// SECTION 1.  Public façade
//

// Client is safe for concurrent use.  Zero value is invalid.
type Client struct {
	api *vault.Client
	now func() time.Time

	cacheMu sync.RWMutex
	cache   map[string]cached // path#key → value + expiry
}

type cached struct {
	val string
	exp time.Time
}

// New builds a client from the standard VAULT_* environment and starts
// token renewal bound to ctx.
func New(ctx context.Context) (*Client, error) {
	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}
	api, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}

	c := NewWithAPI(api)
	go c.renewLoop(ctx)
	return c, nil
}

// NewWithAPI wraps an already configured SDK client.  No renewal loop.
func NewWithAPI(api *vault.Client) *Client {
	return &Client{api: api, now: time.Now, cache: make(map[string]cached)}
}

// GetKV fetches one key from a KV-v2 secret ("mount/rel/path").  When
// ttl > 0 the value is cached for that long.
func (c *Client) GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error) {
	if secretPath == "" || key == "" {
		return "", errors.New("vault: secret path and key must be non-empty")
	}
	canonical := secretPath + "#" + key

	if ttl > 0 {
		c.cacheMu.RLock()
		cv, ok := c.cache[canonical]
		c.cacheMu.RUnlock()
		if ok && c.now().Before(cv.exp) {
			return cv.val, nil
		}
	}

	mount, rel := splitMount(secretPath)
	if rel == "" {
		return "", fmt.Errorf("vault: %q has no path below the mount", secretPath)
	}
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}

	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("vault: key %q not found in %q", key, secretPath)
	}
	val, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("vault: value at %s is not a string", canonical)
	}

	if ttl > 0 {
		c.cacheMu.Lock()
		c.cache[canonical] = cached{val: val, exp: c.now().Add(ttl)}
		c.cacheMu.Unlock()
	}
	return val, nil
}

//
// SECTION 2.  Background token renewal
//

func (c *Client) renewLoop(ctx context.Context) {
	log := zap.S().With("component", "vault")
	for ctx.Err() == nil {
		sec, err := c.api.Auth().Token().RenewSelfWithContext(ctx, 0)
		if err != nil {
			log.Warnw("token renew-self failed", "err", err)
			backoff(ctx, 30*time.Second)
			continue
		}
		if sec == nil || sec.Auth == nil || !sec.Auth.Renewable {
			log.Infow("token is not renewable, rechecking in 1h")
			backoff(ctx, time.Hour)
			continue
		}

		w, err := c.api.NewLifetimeWatcher(&vault.LifetimeWatcherInput{Secret: sec})
		if err != nil {
			log.Warnw("lifetime watcher init failed", "err", err)
			backoff(ctx, 30*time.Second)
			continue
		}
		c.watch(ctx, w, log)
		backoff(ctx, 15*time.Second)
	}
}

// watch runs w until it stops or ctx ends.
func (c *Client) watch(ctx context.Context, w *vault.LifetimeWatcher, log *zap.SugaredLogger) {
	go w.Start()
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-w.DoneCh():
			if err != nil {
				log.Warnw("token renewal stopped", "err", err)
			}
			return
		case ev := <-w.RenewCh():
			if ev != nil && ev.Secret != nil && ev.Secret.Auth != nil {
				log.Debugw("token renewed", "ttl_s", ev.Secret.Auth.LeaseDuration)
			}
		}
	}
}

//
// SECTION 3.  Helpers
//

func splitMount(p string) (mount, rel string) {
	mount, rel, _ = strings.Cut(strings.Trim(p, "/"), "/")
	return mount, rel
}

func backoff(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
