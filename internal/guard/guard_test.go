// internal/guard/guard_test.go
//
// Unit-tests for token verification and the sliding-window cap.
//
// Run: go test ./internal/guard -v

package guard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/yanizio/perks/internal/config"
	"github.com/yanizio/perks/internal/submission"
)

/*──────────────────────────── verifier ────────────────────────────────────*/

func scoringServer(t *testing.T, body string, seen *url.Values) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if seen != nil {
			*seen = r.PostForm
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestVerifier(url string) *Verifier {
	cfg := config.Defaults().Recaptcha
	cfg.SecretKey = "s3cret"
	cfg.VerifyURL = url
	return NewVerifier(cfg)
}

func TestVerify_ScoreThreshold(t *testing.T) {
	cases := []struct {
		body string
		want bool
	}{
		{`{"success":true,"score":0.9}`, true},
		{`{"success":true,"score":0.5}`, false}, // must be strictly greater
		{`{"success":false,"score":0.9}`, false},
		{`{"success":true}`, false},
		{`not json`, false},
	}
	for _, c := range cases {
		srv := scoringServer(t, c.body, nil)
		if got := newTestVerifier(srv.URL).Verify(context.Background(), "tok", "203.0.113.7"); got != c.want {
			t.Errorf("Verify(%s) = %v, want %v", c.body, got, c.want)
		}
	}
}

func TestVerify_SendsSecretTokenAndIP(t *testing.T) {
	var seen url.Values
	srv := scoringServer(t, `{"success":true,"score":1}`, &seen)

	newTestVerifier(srv.URL).Verify(context.Background(), "tok-1", "203.0.113.7")

	if seen.Get("secret") != "s3cret" ||
		seen.Get("response") != "tok-1" ||
		seen.Get("remoteip") != "203.0.113.7" {
		t.Errorf("unexpected form: %v", seen)
	}
}

func TestVerify_UnknownAddressNotForwarded(t *testing.T) {
	var seen url.Values
	srv := scoringServer(t, `{"success":true,"score":1}`, &seen)

	newTestVerifier(srv.URL).Verify(context.Background(), "tok", "unknown")

	if _, ok := seen["remoteip"]; ok {
		t.Error("remoteip should be omitted for unknown clients")
	}
}

func TestVerify_ServiceErrorsFailClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	if newTestVerifier(srv.URL).Verify(context.Background(), "tok", "") {
		t.Error("non-200 answer must not verify")
	}

	down := httptest.NewServer(http.NotFoundHandler())
	addr := down.URL
	down.Close()
	if newTestVerifier(addr).Verify(context.Background(), "tok", "") {
		t.Error("unreachable service must not verify")
	}
}

func TestVerify_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	v := newTestVerifier(srv.URL)
	v.timeout = 50 * time.Millisecond

	start := time.Now()
	if v.Verify(context.Background(), "tok", "") {
		t.Error("timed-out call must not verify")
	}
	if time.Since(start) > time.Second {
		t.Error("Verify did not honour its timeout")
	}
}

func TestVerify_BypassMode(t *testing.T) {
	v := NewVerifier(config.Defaults().Recaptcha) // no secret

	if !v.Verify(context.Background(), "dev-token", "") {
		t.Error("bypass token should verify without a secret")
	}
	if v.Verify(context.Background(), "other", "") {
		t.Error("non-bypass token should fail without a secret")
	}
}

func TestVerify_BypassIgnoredWithSecret(t *testing.T) {
	srv := scoringServer(t, `{"success":false}`, nil)
	if newTestVerifier(srv.URL).Verify(context.Background(), "dev-token", "") {
		t.Error("bypass token must not short-circuit a configured secret")
	}
}

/*──────────────────────────── limiter ─────────────────────────────────────*/

type fakeLog struct {
	count    int
	err      error
	block    bool
	since    time.Time
	appended []submission.LogEntry
}

func (f *fakeLog) CountSince(ctx context.Context, _, _ string, since time.Time) (int, error) {
	f.since = since
	if f.block {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	return f.count, f.err
}

func (f *fakeLog) Append(_ context.Context, e submission.LogEntry) error {
	f.appended = append(f.appended, e)
	return f.err
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestLimiter(f *fakeLog) *Limiter {
	l := NewLimiter(f, config.Defaults().RateLimit)
	l.now = func() time.Time { return fixedNow }
	return l
}

func TestAllow_Cap(t *testing.T) {
	f := &fakeLog{}
	l := newTestLimiter(f)

	for n := 0; n <= 6; n++ {
		f.count = n
		want := n < 5
		if got := l.Allow(context.Background(), "1.2.3.4", "contact"); got != want {
			t.Errorf("count %d: Allow = %v, want %v", n, got, want)
		}
	}
	if !f.since.Equal(fixedNow.Add(-60 * time.Minute)) {
		t.Errorf("window start = %v", f.since)
	}
}

func TestAllow_FailOpenOnError(t *testing.T) {
	l := newTestLimiter(&fakeLog{err: errors.New("db down"), count: 99})
	if !l.Allow(context.Background(), "1.2.3.4", "contact") {
		t.Error("store error must allow")
	}
}

func TestAllow_FailOpenOnTimeout(t *testing.T) {
	l := newTestLimiter(&fakeLog{block: true})
	l.timeout = 20 * time.Millisecond
	if !l.Allow(context.Background(), "1.2.3.4", "contact") {
		t.Error("slow store must allow")
	}
}

func TestRecord(t *testing.T) {
	f := &fakeLog{}
	newTestLimiter(f).Record(context.Background(), "unknown", "lead")

	if len(f.appended) != 1 {
		t.Fatalf("appended %d entries", len(f.appended))
	}
	got := f.appended[0]
	if got.Address != "unknown" || got.Endpoint != "lead" || !got.CreatedAt.Equal(fixedNow) {
		t.Errorf("entry = %+v", got)
	}
}
