package domain

// Production target and conversion parameters.
//
// YieldFactors are finished-product tons per raw-material ton; MaxConsumption
// is the largest share of total raw-material consumption a material may take.
// Both are expected in (0, 1].
type ProductionParameters struct {
	TargetTons     float64
	YieldFactors   map[Material]float64
	MaxConsumption map[Material]float64
}

func (p ProductionParameters) clone() ProductionParameters {
	out := ProductionParameters{
		TargetTons:     p.TargetTons,
		YieldFactors:   make(map[Material]float64, len(p.YieldFactors)),
		MaxConsumption: make(map[Material]float64, len(p.MaxConsumption)),
	}
	for m, v := range p.YieldFactors {
		out.YieldFactors[m] = v
	}
	for m, v := range p.MaxConsumption {
		out.MaxConsumption[m] = v
	}
	return out
}
