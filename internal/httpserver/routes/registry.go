// Package routes mounts the HTTP endpoints. Each file registers its group
// from init(); server.NewRouter mounts them all once.
package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
)

type Registrar func(r chi.Router, d deps.Deps)

type Middleware = func(http.Handler) http.Handler

type group struct {
	reg Registrar
	mws []Middleware
}

var groups []group

// Register adds a route group, wrapped in mws when given.
func Register(reg Registrar, mws ...Middleware) {
	groups = append(groups, group{reg: reg, mws: mws})
}

// RegisterAll mounts every registered group on r.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, g := range groups {
		target := r
		if len(g.mws) > 0 {
			target = r.With(g.mws...)
		}
		g.reg(target, d)
	}
}
