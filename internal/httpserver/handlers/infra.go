package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
)

type componentStatus struct {
	OK    bool   `json:"ok"`
	Mode  string `json:"mode,omitempty"`
	Error string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of the store and identity components.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeStatus := componentStatus{OK: true, Mode: d.Backend}
		if err := pingStore(r.Context(), d.Store); err != nil {
			storeStatus.OK = false
			storeStatus.Error = err.Error()
		}

		components := map[string]componentStatus{
			"store": storeStatus,
			"identity": {
				OK:   d.Identity != nil,
				Mode: d.IdentityMode,
			},
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Status:     overallStatus(components),
			Components: components,
		})
	}
}

func overallStatus(components map[string]componentStatus) string {
	if s, ok := components["store"]; ok && !s.OK {
		return "critical" // no store = no bookmarks
	}
	if id, ok := components["identity"]; ok && !id.OK {
		return "degraded"
	}
	return "ok"
}
