package handlers

import (
	"errors"
	"log"
	"net/http"
	"supply-chain-optimizer/internal/adapters/language"
	"supply-chain-optimizer/internal/api/dto"
	"supply-chain-optimizer/internal/domain"
	"supply-chain-optimizer/internal/services"
)

// writeServiceError maps the optimization error taxonomy onto HTTP statuses.
// Unknown errors are logged and reported as 500 without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var (
		insufficient *domain.InsufficientMaterialError
		invalid      *domain.InvalidModificationError
		infeasible   *domain.ModelInfeasibleError
		solverErr    *domain.SolverError
		connErr      *language.ConnectionError
		svcErr       *language.ServiceError
		parseErr     *language.ParseError
	)

	switch {
	case errors.As(err, &insufficient):
		writeJSON(w, r, http.StatusUnprocessableEntity, dto.ErrorResponse{
			Error:   insufficient.Error(),
			Details: dto.NewInsufficientMaterialDetails(insufficient),
		})
	case errors.As(err, &invalid):
		writeError(w, r, http.StatusBadRequest, invalid.Error())
	case errors.Is(err, services.ErrScenarioRequest):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.As(err, &infeasible):
		writeError(w, r, http.StatusUnprocessableEntity, infeasible.Error())
	case errors.As(err, &solverErr):
		log.Printf("%s failed: %v", op, err)
		writeError(w, r, http.StatusBadGateway, solverErr.Error())
	case errors.As(err, &connErr):
		log.Printf("%s failed: %v", op, err)
		writeError(w, r, http.StatusServiceUnavailable, "language service unavailable")
	case errors.As(err, &svcErr), errors.As(err, &parseErr):
		log.Printf("%s failed: %v", op, err)
		writeError(w, r, http.StatusBadGateway, "language service could not interpret the question")
	default:
		log.Printf("%s failed: %v", op, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
