package domain

// Baseline context handed to the language service alongside a question.
type ScenarioContext struct {
	Facility       string
	TotalCost      float64
	TargetTons     float64
	Ports          []string
	Sites          []string
	Materials      []Material
	YieldFactors   map[Material]float64
	MaxConsumption map[Material]float64
}

// NewScenarioContext summarizes a baseline run for the language service.
func NewScenarioContext(data *Dataset, baseline *Solution) ScenarioContext {
	sc := ScenarioContext{
		TargetTons:     data.Production.TargetTons,
		Ports:          data.PortNames(),
		Sites:          data.SiteIDs(),
		Materials:      append([]Material(nil), Materials...),
		YieldFactors:   data.Production.clone().YieldFactors,
		MaxConsumption: data.Production.clone().MaxConsumption,
	}
	if baseline != nil {
		sc.Facility = baseline.Facility
		sc.TotalCost = baseline.Costs.Total
	}
	return sc
}

// Structured scenario returned by the language service.
type ParsedScenario struct {
	Modifications []Modification `json:"modifications"`
	Explanation   string         `json:"explanation"`
	ScenarioName  string         `json:"scenario_name"`
}
