package api

import (
	"net/http"
	"supply-chain-optimizer/internal/api/handlers"
	"supply-chain-optimizer/internal/services"
)

// NewRouter wires HTTP handlers with the optimization service and returns an http.Handler.
// Handlers stay unaware of concrete adapters.
func NewRouter(svc *services.OptimizationService) http.Handler {
	mux := http.NewServeMux()

	h := &handlers.OptimizationHandler{Service: svc}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/feasibility", h.Feasibility)
	mux.HandleFunc("/optimize", h.Optimize)
	mux.HandleFunc("/scenarios", h.Scenario)
	mux.HandleFunc("/runs", h.Runs)

	return requestIDMiddleware(loggingMiddleware(mux))
}
