// components/admin/admin.go
//
// Admin API: submission listing and deletion for every form kind, plus
// page-content replacement.
//
// Context
// -------
// Everything under /api/admin requires a bearer token carrying the
// configured admin role (see internal/acl).  Responses are gzip-compressed
// when the client accepts it; submission lists grow large.
//
// Routes
// ------
//   GET    /api/admin/{kind}          newest first, optional ?limit=
//   GET    /api/admin/{kind}/{id}     one submission
//   DELETE /api/admin/{kind}/{id}     unconditional, missing ids included
//   PUT    /api/admin/pages/{slug}    replace all sections atomically
//
//------------------------------------------------------------------------------

package admin

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/gzhttp"

	"github.com/yanizio/perks/internal/acl"
	"github.com/yanizio/perks/internal/component"
	"github.com/yanizio/perks/internal/content"
	"github.com/yanizio/perks/internal/form"
	"github.com/yanizio/perks/internal/httpx"
	"github.com/yanizio/perks/internal/logger"
	"github.com/yanizio/perks/internal/submission"
)

// maxPageBody caps a page replace request.
const maxPageBody = 1 << 20

/*──────────────────────────── collaborators ────────────────────────────────*/

type submissions interface {
	List(ctx context.Context, f submission.ListFilter) ([]submission.Submission, error)
	Get(ctx context.Context, kind form.Kind, id string) (*submission.Submission, error)
	Delete(ctx context.Context, kind form.Kind, id string) error
}

type pages interface {
	Replace(ctx context.Context, page string, in []content.Input) ([]content.Section, error)
}

/*──────────────────────────── component ────────────────────────────────────*/

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component serves /api/admin.
type Component struct {
	subs   submissions
	pages  pages
	tokens acl.TokenParser
	role   string
}

// Name returns the canonical component key.
func (c *Component) Name() string { return "admin" }

// Migrations returns nil; admin owns no tables.
func (c *Component) Migrations(string) []string { return nil }

// Init wires the shared services.
func (c *Component) Init(svc component.Services) error {
	if svc.Config == nil || svc.Submissions == nil || svc.Content == nil || svc.Tokens == nil {
		return errors.New("admin: missing services")
	}
	c.subs = svc.Submissions
	c.pages = svc.Content
	c.tokens = svc.Tokens
	c.role = svc.Config.Admin.Role
	return nil
}

// Routes mounts the guarded admin subtree.
func (c *Component) Routes(r chi.Router) {
	r.Route("/api/admin", func(ar chi.Router) {
		ar.Use(acl.Authenticate(c.tokens))
		ar.Use(acl.RequireRole(c.role))
		ar.Use(func(next http.Handler) http.Handler { return gzhttp.GzipHandler(next) })

		ar.Put("/pages/{slug}", c.replacePage)
		ar.Get("/{kind}", c.list)
		ar.Get("/{kind}/{id}", c.get)
		ar.Delete("/{kind}/{id}", c.remove)
	})
}

// Register component at program start.
func init() { component.Register(&Component{}) }

/*──────────────────────────── submissions ──────────────────────────────────*/

// kindParam resolves {kind} or writes 404.
func kindParam(w http.ResponseWriter, r *http.Request) (*form.Definition, bool) {
	def, ok := form.Lookup(form.Kind(chi.URLParam(r, "kind")))
	if !ok {
		httpx.Error(r.Context(), w, http.StatusNotFound, "Unknown form")
	}
	return def, ok
}

func (c *Component) list(w http.ResponseWriter, r *http.Request) {
	def, ok := kindParam(w, r)
	if !ok {
		return
	}
	f := submission.ListFilter{Kind: def.Kind}
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			httpx.Error(r.Context(), w, http.StatusBadRequest, "Invalid limit")
			return
		}
		f.Limit = n
	}

	rows, err := c.subs.List(r.Context(), f)
	if err != nil {
		logger.FromContext(r.Context()).Errorw("list submissions", "form", def.Kind, "err", err)
		httpx.Error(r.Context(), w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.WriteJSON(r.Context(), w, http.StatusOK, rows)
}

func (c *Component) get(w http.ResponseWriter, r *http.Request) {
	def, ok := kindParam(w, r)
	if !ok {
		return
	}
	sub, err := c.subs.Get(r.Context(), def.Kind, chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, submission.ErrNotFound):
		httpx.Error(r.Context(), w, http.StatusNotFound, def.Label+" not found")
	case err != nil:
		httpx.Error(r.Context(), w, http.StatusInternalServerError, err.Error())
	default:
		httpx.WriteJSON(r.Context(), w, http.StatusOK, sub)
	}
}

func (c *Component) remove(w http.ResponseWriter, r *http.Request) {
	def, ok := kindParam(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if err := c.subs.Delete(r.Context(), def.Kind, id); err != nil {
		logger.FromContext(r.Context()).Errorw("delete submission", "form", def.Kind, "id", id, "err", err)
		httpx.Error(r.Context(), w, http.StatusInternalServerError, err.Error())
		return
	}
	logger.FromContext(r.Context()).Infow("submission deleted", "form", def.Kind, "id", id)
	httpx.WriteJSON(r.Context(), w, http.StatusOK, httpx.MessageBody{
		Message: def.Label + " deleted successfully",
	})
}

/*──────────────────────────── pages ────────────────────────────────────────*/

type replaceRequest struct {
	Sections []content.Input `json:"sections"`
}

func (c *Component) replacePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")
	if !content.ValidSlug(slug) {
		httpx.Error(ctx, w, http.StatusNotFound, "Unknown page")
		return
	}

	var req replaceRequest
	body := http.MaxBytesReader(w, r.Body, maxPageBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil || req.Sections == nil {
		httpx.Error(ctx, w, http.StatusBadRequest, form.ErrBadBody.Error())
		return
	}
	if errs := content.Validate(req.Sections); len(errs) > 0 {
		httpx.WriteJSON(ctx, w, http.StatusBadRequest, httpx.ErrorBody{
			Error:   form.ValidationError{}.Error(),
			Details: errs,
		})
		return
	}

	out, err := c.pages.Replace(ctx, slug, req.Sections)
	if err != nil {
		logger.FromContext(ctx).Errorw("replace page", "page", slug, "err", err)
		httpx.Error(ctx, w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.WriteJSON(ctx, w, http.StatusOK, httpx.MessageBody{Message: "Page updated", Data: out})
}
