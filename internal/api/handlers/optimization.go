package handlers

import (
	"net/http"
	"strconv"
	"supply-chain-optimizer/internal/api/dto"
	"supply-chain-optimizer/internal/ports"
	"supply-chain-optimizer/internal/services"
	"time"
)

const maxTimeLimit = time.Hour

type OptimizationHandler struct {
	Service *services.OptimizationService
}

// Feasibility runs the greedy material pre-check on the stored dataset.
func (h *OptimizationHandler) Feasibility(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.FeasibilityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	f, err := h.Service.Feasibility(r.Context(), req.ExcludeSpecial)
	if err != nil {
		writeServiceError(w, r, "feasibility", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewFeasibilityResponse(f))
}

// Optimize runs the two-phase facility location on the stored dataset.
func (h *OptimizationHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.OptimizeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	opts, msg := solveOptions(req.TimeLimitSeconds, req.MIPGap)
	if msg != "" {
		writeError(w, r, http.StatusBadRequest, msg)
		return
	}

	out, err := h.Service.OptimizeBaseline(r.Context(), opts)
	if err != nil {
		writeServiceError(w, r, "optimize", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.OptimizeResponse{
		RunID:       out.RunID,
		Cached:      out.Cached,
		Phase1Check: dto.NewFeasibilityResponse(out.Phase1Check),
		FullCheck:   dto.NewFeasibilityResponse(out.FullCheck),
		Result:      dto.NewResultResponse(out.Result),
	})
}

// Scenario evaluates one what-if scenario against the baseline.
func (h *OptimizationHandler) Scenario(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.ScenarioRequest
	if !decodeBody(w, r, &req) {
		return
	}

	opts, msg := solveOptions(req.TimeLimitSeconds, req.MIPGap)
	if msg != "" {
		writeError(w, r, http.StatusBadRequest, msg)
		return
	}

	res, runID, err := h.Service.RunScenario(r.Context(), services.ScenarioRequest{
		Name:          req.Name,
		Question:      req.Question,
		Modifications: req.Modifications,
	}, opts)
	if err != nil {
		writeServiceError(w, r, "scenario", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewScenarioResponse(res, runID))
}

// Runs lists persisted optimization runs, newest first.
func (h *OptimizationHandler) Runs(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	runs, err := h.Service.ListRuns(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, "list runs", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewListRunsResponse(runs))
}

// solveOptions validates request overrides; zero values keep the server defaults.
func solveOptions(seconds, gap float64) (ports.SolveOptions, string) {
	if seconds < 0 || time.Duration(seconds*float64(time.Second)) > maxTimeLimit {
		return ports.SolveOptions{}, "time_limit_seconds must be between 0 and 3600"
	}
	if gap < 0 || gap >= 1 {
		return ports.SolveOptions{}, "mip_gap must be in [0, 1)"
	}
	return ports.SolveOptions{
		TimeLimit: time.Duration(seconds * float64(time.Second)),
		MIPGap:    gap,
	}, ""
}
