// components/pages/pages.go
//
// Public page content: GET /api/pages/{slug} returns the page's sections
// in position order.  An unknown slug is an empty list, not a 404, so the
// front end can render its static fallback.

package pages

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/perks/internal/component"
	"github.com/yanizio/perks/internal/content"
	"github.com/yanizio/perks/internal/httpx"
	"github.com/yanizio/perks/internal/logger"
)

type reader interface {
	Sections(ctx context.Context, page string) ([]content.Section, error)
}

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component serves page content.
type Component struct {
	content reader
}

// Name returns the canonical component key.
func (c *Component) Name() string { return "pages" }

// Migrations returns the page_section table.
func (c *Component) Migrations(driver string) []string { return content.Schema(driver) }

// Init wires the content store.
func (c *Component) Init(svc component.Services) error {
	if svc.Content == nil {
		return errors.New("pages: missing content store")
	}
	c.content = svc.Content
	return nil
}

// Routes adds the public read endpoint.
func (c *Component) Routes(r chi.Router) {
	r.Get("/api/pages/{slug}", c.show)
}

// Register component at program start.
func init() { component.Register(&Component{}) }

func (c *Component) show(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if !content.ValidSlug(slug) {
		httpx.Error(r.Context(), w, http.StatusNotFound, "Unknown page")
		return
	}
	secs, err := c.content.Sections(r.Context(), slug)
	if err != nil {
		logger.FromContext(r.Context()).Errorw("load page", "page", slug, "err", err)
		httpx.Error(r.Context(), w, http.StatusInternalServerError, "Could not load page")
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=60")
	httpx.WriteJSON(r.Context(), w, http.StatusOK, secs)
}
