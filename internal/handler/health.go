package handler

import "net/http"

// Health reports service liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	WriteData(w, http.StatusOK, map[string]string{"status": "ok"})
}
