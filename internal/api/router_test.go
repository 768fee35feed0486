package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"supply-chain-optimizer/internal/adapters/language"
	"supply-chain-optimizer/internal/adapters/solver"
	"supply-chain-optimizer/internal/api/dto"
	"supply-chain-optimizer/internal/domain"
	"supply-chain-optimizer/internal/milp"
	"supply-chain-optimizer/internal/services"
	"testing"

	"github.com/stretchr/testify/require"
)

type memDatasets struct{ data *domain.Dataset }

func (m memDatasets) LoadDataset(context.Context) (*domain.Dataset, error) {
	return m.data.Clone(), nil
}

type failingParser struct{ err error }

func (p failingParser) Parse(context.Context, string, domain.ScenarioContext) (*domain.ParsedScenario, error) {
	return nil, p.err
}

func uniform(v float64) map[domain.Material]float64 {
	out := make(map[domain.Material]float64, len(domain.Materials))
	for _, m := range domain.Materials {
		out[m] = v
	}
	return out
}

// One plant with 100 t of A and a single port; target 40 t at yield 0.5.
func plantDataset() *domain.Dataset {
	volumes := uniform(0)
	volumes[domain.MaterialA] = 100
	return &domain.Dataset{
		CollectionPoints: []domain.CollectionPoint{{SiteID: "Plant", Volumes: volumes, Prices: uniform(10)}},
		InboundFreight:   map[domain.SitePair]float64{},
		OutboundFreight:  map[domain.SitePort]float64{{Site: "Plant", Port: "Harbor"}: 5},
		Ports:            []domain.Port{{Name: "Harbor", OperationalCost: 1, SeaFreightCost: 20}},
		Production: domain.ProductionParameters{
			TargetTons:     40,
			YieldFactors:   uniform(0.5),
			MaxConsumption: uniform(1),
		},
	}
}

func plantStep() solver.Step {
	return solver.Step{
		Status: milp.StatusOptimal,
		Values: map[string]float64{
			"y[Plant]":               1,
			"procure[Plant,Plant,A]": 80,
			"ship[Plant,Harbor]":     40,
		},
	}
}

func newTestRouter(steps ...solver.Step) (http.Handler, *services.OptimizationService) {
	svc := &services.OptimizationService{
		Datasets: memDatasets{data: plantDataset()},
		Solver:   solver.NewScriptedSolver(steps...),
		Defaults: services.DefaultSolveOptions(),
	}
	return NewRouter(svc), svc
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter()

	rec := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = do(t, h, http.MethodPost, "/health", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	h, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, "abc123", rec.Header().Get("X-Request-ID"))
}

func TestFeasibility(t *testing.T) {
	h, _ := newTestRouter()

	rec := do(t, h, http.MethodPost, "/feasibility", `{"exclude_special": true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[dto.FeasibilityResponse](t, rec)
	require.True(t, got.Feasible)
	require.True(t, got.ExcludeSpecial)
	require.InDelta(t, 50, got.Achievable, 1e-9)
	require.InDelta(t, 80, got.Allocation["A"], 1e-6)
}

func TestFeasibility_InsufficientMaterial(t *testing.T) {
	h, svc := newTestRouter()
	data := plantDataset()
	data.Production.TargetTons = 400
	svc.Datasets = memDatasets{data: data}

	rec := do(t, h, http.MethodPost, "/feasibility", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Error   string                          `json:"error"`
		Details dto.InsufficientMaterialDetails `json:"details"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Contains(t, body.Error, "insufficient raw material")
	require.InDelta(t, 350, body.Details.Deficit, 1e-9)
	require.Len(t, body.Details.Materials, len(domain.Materials))
}

func TestOptimize(t *testing.T) {
	h, _ := newTestRouter(plantStep(), plantStep())

	rec := do(t, h, http.MethodPost, "/optimize", `{"time_limit_seconds": 30}`)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[dto.OptimizeResponse](t, rec)
	require.False(t, got.Cached)
	require.Equal(t, "Plant", got.Result.Facility)
	require.NotNil(t, got.Result.Phase1)
	require.Equal(t, []string{"Harbor"}, got.Result.Final.SelectedPorts)
	// 80 t at 10 plus 40 t at 5+1+20.
	require.InDelta(t, 1840, got.Result.Final.Costs.Total, 1e-9)
	require.InDelta(t, 46, got.Result.Final.CostPerTon, 1e-9)
}

func TestOptimize_RejectsBadRequests(t *testing.T) {
	h, _ := newTestRouter()

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"mip_gap":`},
		{"unknown field", `{"gap": 0.1}`},
		{"two objects", `{} {}`},
		{"negative limit", `{"time_limit_seconds": -1}`},
		{"limit too long", `{"time_limit_seconds": 7200}`},
		{"gap out of range", `{"mip_gap": 1.5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/optimize", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.NotEmpty(t, decode[dto.ErrorResponse](t, rec).Error)
		})
	}
}

func TestOptimize_SolverStatusMapsToBadGateway(t *testing.T) {
	h, _ := newTestRouter(solver.Step{Status: milp.StatusTimeLimit})

	rec := do(t, h, http.MethodPost, "/optimize", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Contains(t, decode[dto.ErrorResponse](t, rec).Error, "time_limit")
}

func TestOptimize_InfeasibleMapsToUnprocessable(t *testing.T) {
	h, _ := newTestRouter(solver.Step{Status: milp.StatusInfeasible})

	rec := do(t, h, http.MethodPost, "/optimize", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestScenario_InvalidModification(t *testing.T) {
	h, _ := newTestRouter(plantStep(), plantStep())

	body := `{"modifications":[{"parameter_type":"facility_location","action":"set","value":"Elsewhere"}]}`
	rec := do(t, h, http.MethodPost, "/scenarios", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decode[dto.ErrorResponse](t, rec).Error, "Elsewhere")
}

func TestScenario_TargetChange(t *testing.T) {
	scenarioStep := solver.Step{
		Status: milp.StatusOptimal,
		Values: map[string]float64{
			"y[Plant]":               1,
			"procure[Plant,Plant,A]": 60,
			"ship[Plant,Harbor]":     30,
		},
	}
	h, _ := newTestRouter(plantStep(), plantStep(), scenarioStep, scenarioStep)

	body := `{"name":"Smaller run","modifications":[{"parameter_type":"production_target","action":"set","value":30}]}`
	rec := do(t, h, http.MethodPost, "/scenarios", body)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[dto.ScenarioResponse](t, rec)
	require.Equal(t, "Smaller run", got.Name)
	require.False(t, got.Comparison.FacilityChanged)
	require.InDelta(t, -460, got.Comparison.Total.Delta, 1e-9)
	require.InDelta(t, -10, got.Comparison.ProductionDelta, 1e-9)
}

func TestScenario_QuestionErrors(t *testing.T) {
	// Each request re-solves the baseline before the question is parsed.
	h, svc := newTestRouter(plantStep(), plantStep(), plantStep(), plantStep(), plantStep(), plantStep())

	rec := do(t, h, http.MethodPost, "/scenarios", `{"question":"what if ports close?"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	svc.Parser = failingParser{err: &language.ConnectionError{URL: "http://lang", Err: context.DeadlineExceeded}}
	rec = do(t, h, http.MethodPost, "/scenarios", `{"question":"what if ports close?"}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	svc.Parser = failingParser{err: &language.ServiceError{StatusCode: http.StatusTooManyRequests, Body: "slow down"}}
	rec = do(t, h, http.MethodPost, "/scenarios", `{"question":"what if ports close?"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRuns(t *testing.T) {
	h, _ := newTestRouter()

	rec := do(t, h, http.MethodGet, "/runs?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, decode[dto.ListRunsResponse](t, rec).Runs)

	rec = do(t, h, http.MethodGet, "/runs?limit=0", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
