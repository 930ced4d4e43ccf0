package optutils

import (
	"encoding/json"
	"fmt"
	"net/http"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func PathValueString(r *http.Request, name string) (string, error) {
	pathValue := r.PathValue(name)
	if pathValue == "" {
		return "", fmt.Errorf("empty path value for name: %s", name)
	}
	return pathValue, nil
}
