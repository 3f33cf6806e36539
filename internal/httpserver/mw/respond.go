package mw

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/shelf/internal/api"
)

func writeError(w http.ResponseWriter, status int, msg, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: msg, Code: code})
}
