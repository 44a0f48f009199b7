// internal/component/registry.go
//
// Component registry (cycle-free).
//
// Each concrete component lives under components/<name> and calls
// component.Register() in an init() function.  cmd/web blank-imports the
// components it serves, runs their migrations, calls Init with the shared
// Services, and lets each one add its routes to the root router.

package component

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Component contract.
//
// Migrations(driver) may return nil if the component owns no tables.
// Routes adds the component's endpoints to r; paths are absolute, e.g.
//
//	r.Post("/api/contact", h.create(form.KindContact))
type Component interface {
	Name() string
	Init(Services) error
	Routes(r chi.Router)
	Migrations(driver string) []string
}

var (
	mu       sync.RWMutex
	registry = map[string]Component{}
)

// Register is invoked from component init() functions.
func Register(c Component) {
	mu.Lock()
	registry[c.Name()] = c
	mu.Unlock()
}

// All returns every registered component ordered by name.
func All() []Component {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Component, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Migrations concatenates every component's DDL for driver.
func Migrations(driver string) []string {
	var out []string
	for _, c := range All() {
		out = append(out, c.Migrations(driver)...)
	}
	return out
}

// Boot initialises every component and mounts its routes on r.  The first
// Init error aborts.
func Boot(svc Services, r chi.Router) error {
	for _, c := range All() {
		if err := c.Init(svc); err != nil {
			return fmt.Errorf("component %s: %w", c.Name(), err)
		}
		c.Routes(r)
	}
	return nil
}
