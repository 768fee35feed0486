package milp

import (
	"errors"
	"fmt"
	"supply-chain-optimizer/internal/domain"
)

// Constraint families of the facility-location model.
const (
	FamilySingleFacility        = "single_facility"
	FamilyFacilityHasMaterial   = "facility_has_material"
	FamilyProductionTarget      = "production_target"
	FamilyYieldBalance          = "yield_balance"
	FamilyMaxConsumption        = "max_consumption"
	FamilyVolumeAvailability    = "volume_availability"
	FamilyProcurementToFacility = "procurement_to_facility"
	FamilyOutboundFromFacility  = "outbound_from_facility"
	FamilyTotalShipment         = "total_shipment"
)

// Sites whose total volume is below this cannot host the facility.
const emptySiteVolume = 0.01

// BuildOptions selects the variant of the model to build.
//
// ExcludeSpecial zeroes the special material's volumes (Phase 1). Facility,
// when set, fixes the facility indicators through their bounds. AllowedPorts,
// when non-empty, bounds shipments to every other port at zero.
type BuildOptions struct {
	ExcludeSpecial bool
	Facility       string
	AllowedPorts   []string
}

// FacilityModel is the built MILP plus the index maps and coefficient tables
// needed to read a solution back in economic terms.
type FacilityModel struct {
	*Model

	Options BuildOptions
	Sites   []string
	Ports   []string
	Special domain.Material
	Target  float64

	Y       map[string]VarID
	Procure map[domain.ProcurementKey]VarID
	Ship    map[domain.SitePort]VarID
	Produce VarID

	Volume       map[string]map[domain.Material]float64
	Price        map[string]map[domain.Material]float64
	Yield        map[domain.Material]float64
	MaxShare     map[domain.Material]float64
	OutboundRate map[domain.SitePort]float64
	PortOp       map[string]float64
	SeaFreight   map[string]float64

	inbound        map[domain.SitePair]float64
	specialFreight float64
}

// InboundRate is the per-ton inbound freight of one procurement flow: the flat
// special rate for the special material, zero for same-site transfers, else
// the site-pair rate.
func (fm *FacilityModel) InboundRate(k domain.ProcurementKey) float64 {
	if k.Material == fm.Special {
		return fm.specialFreight
	}
	if k.Origin == k.Destination {
		return 0
	}
	return fm.inbound[domain.SitePair{Origin: k.Origin, Destination: k.Destination}]
}

// ProcurementKeys lists every (origin, destination, material) in build order.
func (fm *FacilityModel) ProcurementKeys() []domain.ProcurementKey {
	keys := make([]domain.ProcurementKey, 0, len(fm.Procure))
	for _, o := range fm.Sites {
		for _, d := range fm.Sites {
			for _, m := range domain.Materials {
				keys = append(keys, domain.ProcurementKey{Origin: o, Destination: d, Material: m})
			}
		}
	}
	return keys
}

// BuildFacilityModel translates a dataset into the complete facility-location
// MILP. Every call builds a fresh model; nothing is shared between builds.
func BuildFacilityModel(data *domain.Dataset, opts BuildOptions) (*FacilityModel, error) {
	if data == nil {
		return nil, errors.New("build facility model: dataset is nil")
	}
	if len(data.CollectionPoints) == 0 {
		return nil, errors.New("build facility model: no collection points")
	}
	if len(data.Ports) == 0 {
		return nil, errors.New("build facility model: no ports")
	}

	name := "facility_location"
	if opts.ExcludeSpecial {
		name += "_locate"
	}

	fm := &FacilityModel{
		Model:          NewModel(name),
		Options:        opts,
		Sites:          data.SiteIDs(),
		Ports:          data.PortNames(),
		Special:        data.Special(),
		Target:         data.Production.TargetTons,
		Y:              make(map[string]VarID, len(data.CollectionPoints)),
		Procure:        make(map[domain.ProcurementKey]VarID),
		Ship:           make(map[domain.SitePort]VarID),
		Volume:         make(map[string]map[domain.Material]float64, len(data.CollectionPoints)),
		Price:          make(map[string]map[domain.Material]float64, len(data.CollectionPoints)),
		Yield:          make(map[domain.Material]float64, len(domain.Materials)),
		MaxShare:       make(map[domain.Material]float64, len(domain.Materials)),
		OutboundRate:   make(map[domain.SitePort]float64),
		PortOp:         make(map[string]float64, len(data.Ports)),
		SeaFreight:     make(map[string]float64, len(data.Ports)),
		inbound:        data.InboundFreight,
		specialFreight: data.SpecialFreight,
	}

	if opts.Facility != "" {
		if _, ok := data.Site(opts.Facility); !ok {
			return nil, fmt.Errorf("build facility model: facility %q is not a collection point", opts.Facility)
		}
	}
	allowed := make(map[string]bool, len(opts.AllowedPorts))
	for _, p := range opts.AllowedPorts {
		if _, ok := data.Port(p); !ok {
			return nil, fmt.Errorf("build facility model: port %q does not exist", p)
		}
		allowed[p] = true
	}

	// Parameters.
	for _, cp := range data.CollectionPoints {
		vol := make(map[domain.Material]float64, len(domain.Materials))
		price := make(map[domain.Material]float64, len(domain.Materials))
		for _, m := range domain.Materials {
			if opts.ExcludeSpecial && m == fm.Special {
				vol[m] = 0
			} else {
				vol[m] = cp.Volumes[m]
			}
			price[m] = cp.Prices[m]
		}
		fm.Volume[cp.SiteID] = vol
		fm.Price[cp.SiteID] = price
	}
	for _, m := range domain.Materials {
		fm.Yield[m] = data.Production.YieldFactors[m]
		fm.MaxShare[m] = data.Production.MaxConsumption[m]
	}
	for _, p := range data.Ports {
		fm.PortOp[p.Name] = p.OperationalCost
		fm.SeaFreight[p.Name] = p.SeaFreightCost
		for _, s := range fm.Sites {
			sp := domain.SitePort{Site: s, Port: p.Name}
			fm.OutboundRate[sp] = data.OutboundFreight[sp]
		}
	}

	fm.addVariables(allowed)
	fm.addObjective()
	fm.addConstraints()

	return fm, nil
}

func (fm *FacilityModel) addVariables(allowed map[string]bool) {
	m := fm.Model

	for _, s := range fm.Sites {
		lo, hi := 0.0, 1.0
		if fm.Options.Facility != "" {
			if s == fm.Options.Facility {
				lo = 1
			} else {
				hi = 0
			}
		}
		fm.Y[s] = m.AddVar(fmt.Sprintf("y[%s]", s), Binary, lo, hi)
	}

	for _, k := range fm.ProcurementKeys() {
		name := fmt.Sprintf("procure[%s,%s,%s]", k.Origin, k.Destination, k.Material)
		fm.Procure[k] = m.AddVar(name, Continuous, 0, fm.Volume[k.Origin][k.Material])
	}

	// Both bounds equal the target.
	fm.Produce = m.AddVar("produce", Continuous, fm.Target, fm.Target)

	for _, s := range fm.Sites {
		for _, p := range fm.Ports {
			hi := fm.Target
			if len(allowed) > 0 && !allowed[p] {
				hi = 0
			}
			fm.Ship[domain.SitePort{Site: s, Port: p}] = m.AddVar(fmt.Sprintf("ship[%s,%s]", s, p), Continuous, 0, hi)
		}
	}
}

func (fm *FacilityModel) addObjective() {
	// Raw material price plus inbound freight per procured ton.
	for _, k := range fm.ProcurementKeys() {
		fm.AddObjectiveTerm(fm.Procure[k], fm.Price[k.Origin][k.Material]+fm.InboundRate(k))
	}
	// Outbound freight, port operations and sea freight per shipped ton.
	for _, s := range fm.Sites {
		for _, p := range fm.Ports {
			sp := domain.SitePort{Site: s, Port: p}
			fm.AddObjectiveTerm(fm.Ship[sp], fm.OutboundRate[sp]+fm.PortOp[p]+fm.SeaFreight[p])
		}
	}
}

func (fm *FacilityModel) addConstraints() {
	m := fm.Model
	keys := fm.ProcurementKeys()

	// 1. Exactly one facility.
	terms := make([]Term, 0, len(fm.Sites))
	for _, s := range fm.Sites {
		terms = append(terms, Term{Var: fm.Y[s], Coef: 1})
	}
	m.AddConstraint(FamilySingleFacility, FamilySingleFacility, Equal, 1, terms...)

	// 2. A site without material cannot be the facility.
	for _, s := range fm.Sites {
		total := 0.0
		for _, mat := range domain.Materials {
			total += fm.Volume[s][mat]
		}
		if total < emptySiteVolume {
			m.AddConstraint(FamilyFacilityHasMaterial, fmt.Sprintf("%s[%s]", FamilyFacilityHasMaterial, s),
				Equal, 0, Term{Var: fm.Y[s], Coef: 1})
		}
	}

	// 3. Production equals target.
	m.AddConstraint(FamilyProductionTarget, FamilyProductionTarget, Equal, fm.Target, Term{Var: fm.Produce, Coef: 1})

	// 4. Yield balance: sum(yield*procure) - produce == 0.
	terms = make([]Term, 0, len(keys)+1)
	for _, k := range keys {
		terms = append(terms, Term{Var: fm.Procure[k], Coef: fm.Yield[k.Material]})
	}
	terms = append(terms, Term{Var: fm.Produce, Coef: -1})
	m.AddConstraint(FamilyYieldBalance, FamilyYieldBalance, Equal, 0, terms...)

	// 5. Max consumption share: flow(m) - share(m)*flow(all) <= 0.
	for _, mat := range domain.Materials {
		share := fm.MaxShare[mat]
		terms := make([]Term, 0, len(keys))
		for _, k := range keys {
			coef := -share
			if k.Material == mat {
				coef = 1 - share
			}
			terms = append(terms, Term{Var: fm.Procure[k], Coef: coef})
		}
		m.AddConstraint(FamilyMaxConsumption, fmt.Sprintf("%s[%s]", FamilyMaxConsumption, mat), LessOrEqual, 0, terms...)
	}

	// 6. Outgoing flow per (origin, material) within availability.
	for _, o := range fm.Sites {
		for _, mat := range domain.Materials {
			terms := make([]Term, 0, len(fm.Sites))
			for _, d := range fm.Sites {
				terms = append(terms, Term{Var: fm.Procure[domain.ProcurementKey{Origin: o, Destination: d, Material: mat}], Coef: 1})
			}
			m.AddConstraint(FamilyVolumeAvailability, fmt.Sprintf("%s[%s,%s]", FamilyVolumeAvailability, o, mat),
				LessOrEqual, fm.Volume[o][mat], terms...)
		}
	}

	// 7. procure[o,d,m] <= volume[o,m]*y[d]; M is the origin's own volume.
	for _, k := range keys {
		m.AddConstraint(FamilyProcurementToFacility,
			fmt.Sprintf("%s[%s,%s,%s]", FamilyProcurementToFacility, k.Origin, k.Destination, k.Material),
			LessOrEqual, 0,
			Term{Var: fm.Procure[k], Coef: 1},
			Term{Var: fm.Y[k.Destination], Coef: -fm.Volume[k.Origin][k.Material]},
		)
	}

	// 8. ship[s,p] <= target*y[s].
	for _, s := range fm.Sites {
		for _, p := range fm.Ports {
			m.AddConstraint(FamilyOutboundFromFacility, fmt.Sprintf("%s[%s,%s]", FamilyOutboundFromFacility, s, p),
				LessOrEqual, 0,
				Term{Var: fm.Ship[domain.SitePort{Site: s, Port: p}], Coef: 1},
				Term{Var: fm.Y[s], Coef: -fm.Target},
			)
		}
	}

	// 9. All output leaves through a port.
	terms = make([]Term, 0, len(fm.Ship)+1)
	for _, s := range fm.Sites {
		for _, p := range fm.Ports {
			terms = append(terms, Term{Var: fm.Ship[domain.SitePort{Site: s, Port: p}], Coef: 1})
		}
	}
	terms = append(terms, Term{Var: fm.Produce, Coef: -1})
	m.AddConstraint(FamilyTotalShipment, FamilyTotalShipment, Equal, 0, terms...)
}
