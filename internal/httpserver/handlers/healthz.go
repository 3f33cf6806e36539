package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
)

type healthzResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Backend   string `json:"backend,omitempty"`
	Version   string `json:"version,omitempty"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version,omitempty"`
}

// Healthz is the liveness probe. It never touches the store.
func Healthz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthzResponse{
			Status:    "ok",
			Uptime:    d.Now().Sub(d.StartTime).Truncate(time.Second).String(),
			Backend:   d.Backend,
			Version:   d.Version,
			Commit:    d.Commit,
			BuildDate: d.BuildDate,
			GoVersion: d.GoVersion,
		})
	}
}
