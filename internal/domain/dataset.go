package domain

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Ordered (origin, destination) pair of collection-point sites.
type SitePair struct {
	Origin      string
	Destination string
}

// (site, port) pair used by the outbound freight matrix and shipment flows.
type SitePort struct {
	Site string
	Port string
}

// Dataset is the fully validated input of one optimization run.
//
// InboundFreight is keyed by ordered site pairs; the special material ignores it
// and pays SpecialFreight per ton from any origin. ForcedFacility and ForcedPorts
// are only set by what-if scenarios.
type Dataset struct {
	CollectionPoints []CollectionPoint
	InboundFreight   map[SitePair]float64
	SpecialMaterial  Material
	SpecialFreight   float64
	OutboundFreight  map[SitePort]float64
	Ports            []Port
	Production       ProductionParameters

	ForcedFacility string
	ForcedPorts    []string
}

// Special returns the flat-rate material, defaulting to MaterialE.
func (d *Dataset) Special() Material {
	if d.SpecialMaterial == "" {
		return DefaultSpecialMaterial
	}
	return d.SpecialMaterial
}

// Clone returns a deep copy. Scenario edits are always applied to a clone so
// the baseline stays comparable.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		CollectionPoints: make([]CollectionPoint, 0, len(d.CollectionPoints)),
		InboundFreight:   make(map[SitePair]float64, len(d.InboundFreight)),
		SpecialMaterial:  d.SpecialMaterial,
		SpecialFreight:   d.SpecialFreight,
		OutboundFreight:  make(map[SitePort]float64, len(d.OutboundFreight)),
		Ports:            make([]Port, len(d.Ports)),
		Production:       d.Production.clone(),
		ForcedFacility:   d.ForcedFacility,
	}
	for i := range d.CollectionPoints {
		out.CollectionPoints = append(out.CollectionPoints, d.CollectionPoints[i].clone())
	}
	for k, v := range d.InboundFreight {
		out.InboundFreight[k] = v
	}
	for k, v := range d.OutboundFreight {
		out.OutboundFreight[k] = v
	}
	copy(out.Ports, d.Ports)
	if d.ForcedPorts != nil {
		out.ForcedPorts = append([]string(nil), d.ForcedPorts...)
	}
	return out
}

// SiteIDs returns collection-point ids in dataset order.
func (d *Dataset) SiteIDs() []string {
	ids := make([]string, 0, len(d.CollectionPoints))
	for _, cp := range d.CollectionPoints {
		ids = append(ids, cp.SiteID)
	}
	return ids
}

// PortNames returns port names in dataset order.
func (d *Dataset) PortNames() []string {
	names := make([]string, 0, len(d.Ports))
	for _, p := range d.Ports {
		names = append(names, p.Name)
	}
	return names
}

// Site looks up a collection point by id.
func (d *Dataset) Site(id string) (*CollectionPoint, bool) {
	for i := range d.CollectionPoints {
		if d.CollectionPoints[i].SiteID == id {
			return &d.CollectionPoints[i], true
		}
	}
	return nil, false
}

// Port looks up a port by name.
func (d *Dataset) Port(name string) (*Port, bool) {
	for i := range d.Ports {
		if d.Ports[i].Name == name {
			return &d.Ports[i], true
		}
	}
	return nil, false
}

// MaterialAvailability totals available volume per material across all sites.
// When excludeSpecial is set the special material reports zero.
func (d *Dataset) MaterialAvailability(excludeSpecial bool) map[Material]float64 {
	special := d.Special()
	out := make(map[Material]float64, len(Materials))
	for _, m := range Materials {
		out[m] = 0
	}
	for _, cp := range d.CollectionPoints {
		for _, m := range Materials {
			if excludeSpecial && m == special {
				continue
			}
			out[m] += cp.Volumes[m]
		}
	}
	return out
}

// Validate checks the input invariants the optimization engine relies on.
// Loaders call it; the engine itself trusts its input.
func (d *Dataset) Validate() error {
	if len(d.CollectionPoints) == 0 {
		return errors.New("validate dataset: no collection points")
	}
	if len(d.Ports) == 0 {
		return errors.New("validate dataset: no ports")
	}

	seen := make(map[string]struct{}, len(d.CollectionPoints))
	for _, cp := range d.CollectionPoints {
		if cp.SiteID == "" {
			return errors.New("validate dataset: collection point with empty site id")
		}
		if _, ok := seen[cp.SiteID]; ok {
			return fmt.Errorf("validate dataset: duplicate site id %q", cp.SiteID)
		}
		seen[cp.SiteID] = struct{}{}

		if err := checkMaterialKeys(cp.Volumes); err != nil {
			return fmt.Errorf("validate dataset: site %q volumes: %w", cp.SiteID, err)
		}
		if err := checkMaterialKeys(cp.Prices); err != nil {
			return fmt.Errorf("validate dataset: site %q prices: %w", cp.SiteID, err)
		}
		for _, m := range Materials {
			if cp.Volumes[m] < 0 {
				return fmt.Errorf("validate dataset: site %q material %s: negative volume", cp.SiteID, m)
			}
			if cp.Prices[m] < 0 {
				return fmt.Errorf("validate dataset: site %q material %s: negative price", cp.SiteID, m)
			}
		}
	}

	for pair := range d.InboundFreight {
		if _, ok := seen[pair.Origin]; !ok {
			return fmt.Errorf("validate dataset: inbound freight references unknown site %q", pair.Origin)
		}
		if _, ok := seen[pair.Destination]; !ok {
			return fmt.Errorf("validate dataset: inbound freight references unknown site %q", pair.Destination)
		}
	}

	portSeen := make(map[string]struct{}, len(d.Ports))
	for _, p := range d.Ports {
		if _, ok := portSeen[p.Name]; ok {
			return fmt.Errorf("validate dataset: duplicate port %q", p.Name)
		}
		portSeen[p.Name] = struct{}{}
		if p.OperationalCost <= 0 || p.SeaFreightCost <= 0 {
			return fmt.Errorf("validate dataset: port %q costs must be > 0", p.Name)
		}
	}
	for sp := range d.OutboundFreight {
		if _, ok := seen[sp.Site]; !ok {
			return fmt.Errorf("validate dataset: outbound freight references unknown site %q", sp.Site)
		}
		if _, ok := portSeen[sp.Port]; !ok {
			return fmt.Errorf("validate dataset: outbound freight references unknown port %q", sp.Port)
		}
	}

	if d.SpecialFreight < 0 {
		return errors.New("validate dataset: special material freight must be >= 0")
	}
	return d.Production.Validate()
}

// Validate checks target and the (0, 1] ranges of yields and consumption shares.
func (p ProductionParameters) Validate() error {
	if !(p.TargetTons > 0) || math.IsInf(p.TargetTons, 0) {
		return fmt.Errorf("validate production: target %v must be a finite value > 0", p.TargetTons)
	}
	if err := checkMaterialKeys(p.YieldFactors); err != nil {
		return fmt.Errorf("validate production: yield factors: %w", err)
	}
	if err := checkMaterialKeys(p.MaxConsumption); err != nil {
		return fmt.Errorf("validate production: max consumption: %w", err)
	}
	for _, m := range Materials {
		if v := p.YieldFactors[m]; !(v > 0 && v <= 1) {
			return fmt.Errorf("validate production: yield factor %s=%v must be in (0, 1]", m, v)
		}
		if v := p.MaxConsumption[m]; !(v > 0 && v <= 1) {
			return fmt.Errorf("validate production: max consumption %s=%v must be in (0, 1]", m, v)
		}
	}
	return nil
}

func checkMaterialKeys(values map[Material]float64) error {
	if len(values) != len(Materials) {
		keys := make([]string, 0, len(values))
		for m := range values {
			keys = append(keys, string(m))
		}
		sort.Strings(keys)
		return fmt.Errorf("want materials %v, got %v", Materials, keys)
	}
	for _, m := range Materials {
		if _, ok := values[m]; !ok {
			return fmt.Errorf("missing material %s", m)
		}
	}
	return nil
}
