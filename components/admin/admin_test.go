// components/admin/admin_test.go
//
// Run: go test ./components/admin -v

package admin

import (
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/yanizio/perks/internal/auth"
	"github.com/yanizio/perks/internal/content"
	"github.com/yanizio/perks/internal/form"
	"github.com/yanizio/perks/internal/submission"
)

type memSubs struct {
	rows     []submission.Submission
	deleted  []string
	listErr  error
	lastList submission.ListFilter
}

func (m *memSubs) List(_ context.Context, f submission.ListFilter) ([]submission.Submission, error) {
	m.lastList = f
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []submission.Submission{}
	for i := len(m.rows) - 1; i >= 0; i-- { // newest first
		if m.rows[i].Kind == f.Kind {
			out = append(out, m.rows[i])
		}
	}
	return out, nil
}

func (m *memSubs) Get(_ context.Context, kind form.Kind, id string) (*submission.Submission, error) {
	for i := range m.rows {
		if m.rows[i].ID == id && m.rows[i].Kind == kind {
			return &m.rows[i], nil
		}
	}
	return nil, submission.ErrNotFound
}

func (m *memSubs) Delete(_ context.Context, _ form.Kind, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type memPages struct {
	page string
	in   []content.Input
	err  error
}

func (m *memPages) Replace(_ context.Context, page string, in []content.Input) ([]content.Section, error) {
	m.page, m.in = page, in
	if m.err != nil {
		return nil, m.err
	}
	out := make([]content.Section, len(in))
	for i, s := range in {
		out[i] = content.Section{ID: "s", Page: page, Type: s.Type, Position: i, Data: s.Data}
	}
	return out, nil
}

const secret = "0123456789abcdef0123"

func setup(t *testing.T) (http.Handler, *memSubs, *memPages, string) {
	t.Helper()
	tk := auth.NewTokens(secret, "")
	tok, err := tk.Issue("sam", []string{"admin"}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	subs := &memSubs{rows: []submission.Submission{
		{ID: "c1", Kind: form.KindContact, Fields: map[string]string{"name": "Old"}, CreatedAt: time.Now().Add(-time.Hour)},
		{ID: "p1", Kind: form.KindPartner, Fields: map[string]string{"company": "Acme"}, CreatedAt: time.Now()},
		{ID: "c2", Kind: form.KindContact, Fields: map[string]string{"name": "New"}, CreatedAt: time.Now()},
	}}
	pg := &memPages{}
	c := &Component{subs: subs, pages: pg, tokens: tk, role: "admin"}
	r := chi.NewRouter()
	c.Routes(r)
	return r, subs, pg, tok
}

func do(h http.Handler, method, path, tok, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	if tok != "" {
		r.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestRequiresToken(t *testing.T) {
	h, _, _, _ := setup(t)
	if rec := do(h, http.MethodGet, "/api/admin/contact", "", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d", rec.Code)
	}
	other, _ := auth.NewTokens(secret, "").Issue("eve", []string{"editor"}, time.Hour)
	if rec := do(h, http.MethodDelete, "/api/admin/contact/c1", other, ""); rec.Code != http.StatusForbidden {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestList(t *testing.T) {
	h, subs, _, tok := setup(t)
	rec := do(h, http.MethodGet, "/api/admin/contact?limit=10", tok, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d %s", rec.Code, rec.Body)
	}
	var rows []map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0]["id"] != "c2" || rows[1]["name"] != "Old" {
		t.Errorf("rows = %v", rows)
	}
	if subs.lastList.Limit != 10 {
		t.Errorf("limit = %d", subs.lastList.Limit)
	}
}

func TestList_Gzip(t *testing.T) {
	h, subs, _, tok := setup(t)
	for i := 0; i < 50; i++ {
		subs.rows = append(subs.rows, submission.Submission{
			ID: "x", Kind: form.KindLead,
			Fields: map[string]string{"email": "someone@example.com", "source": "newsletter-footer"},
		})
	}
	r := httptest.NewRequest(http.MethodGet, "/api/admin/lead", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	r.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip, headers=%v", rec.Header())
	}
	zr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := io.ReadAll(zr)
	if !strings.Contains(string(b), "newsletter-footer") {
		t.Errorf("body = %.80s", b)
	}
}

func TestList_Errors(t *testing.T) {
	h, subs, _, tok := setup(t)
	if rec := do(h, http.MethodGet, "/api/admin/bogus", tok, ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown kind = %d", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/api/admin/contact?limit=-1", tok, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit = %d", rec.Code)
	}
	subs.listErr = errors.New("db down")
	if rec := do(h, http.MethodGet, "/api/admin/contact", tok, ""); rec.Code != http.StatusInternalServerError {
		t.Errorf("store error = %d", rec.Code)
	}
}

func TestGet(t *testing.T) {
	h, _, _, tok := setup(t)
	if rec := do(h, http.MethodGet, "/api/admin/partner/p1", tok, ""); rec.Code != http.StatusOK ||
		!strings.Contains(rec.Body.String(), `"company":"Acme"`) {
		t.Errorf("get = %d %s", rec.Code, rec.Body)
	}
	if rec := do(h, http.MethodGet, "/api/admin/partner/c1", tok, ""); rec.Code != http.StatusNotFound {
		t.Errorf("wrong kind = %d", rec.Code)
	}
}

func TestDelete(t *testing.T) {
	h, subs, _, tok := setup(t)
	for _, id := range []string{"c1", "missing"} {
		rec := do(h, http.MethodDelete, "/api/admin/contact/"+id, tok, "")
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Contact deleted successfully") {
			t.Errorf("delete %s = %d %s", id, rec.Code, rec.Body)
		}
	}
	if len(subs.deleted) != 2 {
		t.Errorf("deleted = %v", subs.deleted)
	}
}

func TestReplacePage(t *testing.T) {
	h, _, pg, tok := setup(t)
	body := `{"sections":[{"type":"hero","data":{"title":"Perks"}},{"type":"faq","data":[]}]}`
	rec := do(h, http.MethodPut, "/api/admin/pages/home", tok, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d %s", rec.Code, rec.Body)
	}
	if pg.page != "home" || len(pg.in) != 2 || string(pg.in[0].Data) != `{"title":"Perks"}` {
		t.Errorf("replace got page=%q in=%+v", pg.page, pg.in)
	}
}

func TestReplacePage_Rejects(t *testing.T) {
	h, _, pg, tok := setup(t)
	cases := []struct {
		path, body string
		want       int
	}{
		{"/api/admin/pages/home", `{`, http.StatusBadRequest},
		{"/api/admin/pages/home", `{}`, http.StatusBadRequest},
		{"/api/admin/pages/home", `{"sections":[{"type":"","data":{}}]}`, http.StatusBadRequest},
		{"/api/admin/pages/Bad_Slug", `{"sections":[]}`, http.StatusNotFound},
	}
	for _, c := range cases {
		if rec := do(h, http.MethodPut, c.path, tok, c.body); rec.Code != c.want {
			t.Errorf("%s %s = %d, want %d", c.path, c.body, rec.Code, c.want)
		}
	}
	if pg.page != "" {
		t.Error("store must not be called for rejected input")
	}

	pg.err = errors.New("deadlock")
	if rec := do(h, http.MethodPut, "/api/admin/pages/home", tok, `{"sections":[]}`); rec.Code != http.StatusInternalServerError {
		t.Errorf("store error = %d", rec.Code)
	}
}
