package vault

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	vault "github.com/hashicorp/vault/api"
)

const kvBody = `{
  "data": {
    "data": {"secret_key": "6Lc-live", "port": 587},
    "metadata": {
      "created_time": "2026-01-01T00:00:00Z",
      "deletion_time": "",
      "destroyed": false,
      "version": 3
    }
  }
}`

func fakeVault(t *testing.T, hits *int32) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if r.URL.Path != "/v1/secret/data/perks/recaptcha" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(kvBody))
	}))
	t.Cleanup(srv.Close)

	cfg := vault.DefaultConfig()
	cfg.Address = srv.URL
	api, err := vault.NewClient(cfg)
	if err != nil {
		t.Fatalf("vault client: %v", err)
	}
	api.SetToken("test-token")
	return NewWithAPI(api)
}

func TestGetKV(t *testing.T) {
	var hits int32
	c := fakeVault(t, &hits)

	got, err := c.GetKV(context.Background(), "secret/perks/recaptcha", "secret_key", 0)
	if err != nil || got != "6Lc-live" {
		t.Fatalf("GetKV = %q, %v", got, err)
	}
}

func TestGetKV_Cache(t *testing.T) {
	var hits int32
	c := fakeVault(t, &hits)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.GetKV(ctx, "secret/perks/recaptcha", "secret_key", time.Minute); err != nil {
			t.Fatal(err)
		}
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("expected one Vault call, got %d", n)
	}

	c.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := c.GetKV(ctx, "secret/perks/recaptcha", "secret_key", time.Minute); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&hits); n != 2 {
		t.Errorf("expired entry should refetch, hits=%d", n)
	}
}

func TestGetKV_Errors(t *testing.T) {
	var hits int32
	c := fakeVault(t, &hits)
	ctx := context.Background()

	if _, err := c.GetKV(ctx, "secret/perks/recaptcha", "missing", 0); err == nil {
		t.Error("missing key should error")
	}
	if _, err := c.GetKV(ctx, "secret/perks/recaptcha", "port", 0); err == nil {
		t.Error("non-string value should error")
	}
	if _, err := c.GetKV(ctx, "secret", "k", 0); err == nil {
		t.Error("bare mount should error")
	}
	if _, err := c.GetKV(ctx, "", "k", 0); err == nil {
		t.Error("empty path should error")
	}
}

func TestSplitMount(t *testing.T) {
	m, r := splitMount("/secret/perks/smtp/")
	if m != "secret" || r != "perks/smtp" {
		t.Errorf("splitMount = %q, %q", m, r)
	}
}
