package acl

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yanizio/perks/internal/auth"
)

func guarded(tk *auth.Tokens) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	return Authenticate(tk)(RequireRole("admin")(ok))
}

func TestAdminGuard(t *testing.T) {
	tk := auth.NewTokens("0123456789abcdef0123", "perks")
	admin, _ := tk.Issue("sam", []string{"admin"}, time.Hour)
	editor, _ := tk.Issue("eve", []string{"editor"}, time.Hour)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"basic scheme", "Basic c2FtOnB3", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"wrong role", "Bearer " + editor, http.StatusForbidden},
		{"admin", "Bearer " + admin, http.StatusNoContent},
		{"lowercase scheme", "bearer " + admin, http.StatusNoContent},
	}
	h := guarded(tk)
	for _, c := range cases {
		r := httptest.NewRequest(http.MethodGet, "/api/admin/contact", nil)
		if c.header != "" {
			r.Header.Set("Authorization", c.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		if rec.Code != c.want {
			t.Errorf("%s: status %d, want %d", c.name, rec.Code, c.want)
		}
	}
}

func TestRequireRoleWithoutAuthenticate(t *testing.T) {
	h := RequireRole("admin")(http.NotFoundHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d", rec.Code)
	}
}
