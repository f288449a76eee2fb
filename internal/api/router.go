package api

import (
	"net/http"

	"route-segment-cache/internal/api/handlers"
	"route-segment-cache/internal/ports"
	"route-segment-cache/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(repo ports.RecordRepository, reconciler *services.Reconciler) http.Handler {
	mux := http.NewServeMux()

	segmentHandler := &handlers.SegmentHandler{
		Repo:       repo,
		Reconciler: reconciler,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/segments/reconcile", segmentHandler.Reconcile)

	return requestIDMiddleware(loggingMiddleware(mux))
}
