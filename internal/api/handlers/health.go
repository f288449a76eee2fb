package handlers

import (
	"net/http"
)

// Health reports service liveness. It does not probe Postgres or Redis;
// the reconcile path surfaces those failures itself.
func Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	res := map[string]string{
		"status":  "ok",
		"service": "route-segment-cache",
	}
	writeJSON(w, r, http.StatusOK, res)
}
