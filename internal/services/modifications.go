package services

import (
	"fmt"
	"strings"
	"supply-chain-optimizer/internal/domain"
)

// ApplyModifications applies what-if edits to a deep copy of the baseline.
// The baseline is never mutated. The first edit that cannot be applied aborts
// the scenario with *domain.InvalidModificationError naming that edit.
func ApplyModifications(baseline *domain.Dataset, mods []domain.Modification) (*domain.Dataset, error) {
	data := baseline.Clone()

	for i, mod := range mods {
		if err := applyModification(data, mod); err != nil {
			return nil, &domain.InvalidModificationError{Index: i, Modification: mod, Reason: err.Error()}
		}
	}

	if err := data.Production.Validate(); err != nil {
		return nil, &domain.InvalidModificationError{
			Index:        len(mods) - 1,
			Modification: lastOrZero(mods),
			Reason:       fmt.Sprintf("resulting scenario is invalid: %v", err),
		}
	}

	return data, nil
}

func lastOrZero(mods []domain.Modification) domain.Modification {
	if len(mods) == 0 {
		return domain.Modification{}
	}
	return mods[len(mods)-1]
}

func applyModification(data *domain.Dataset, mod domain.Modification) error {
	switch mod.ParameterType {
	case domain.ParamProductionTarget:
		v, err := mod.Number()
		if err != nil {
			return err
		}
		target, err := mod.Action.Apply(data.Production.TargetTons, v)
		if err != nil {
			return err
		}
		if target <= 0 {
			return fmt.Errorf("production target %.2f must be > 0", target)
		}
		data.Production.TargetTons = target

	case domain.ParamFacilityLocation:
		site, err := mod.Text()
		if err != nil {
			return err
		}
		if _, ok := data.Site(site); !ok {
			return fmt.Errorf("collection point %q not found", site)
		}
		data.ForcedFacility = site

	case domain.ParamPortSelection:
		names, err := mod.Names()
		if err != nil {
			return err
		}
		for _, n := range names {
			if _, ok := data.Port(n); !ok {
				return fmt.Errorf("port %q not found", n)
			}
		}
		data.ForcedPorts = names

	case domain.ParamFreightInbound:
		mult, err := multiplier(mod)
		if err != nil {
			return err
		}
		for k := range data.InboundFreight {
			data.InboundFreight[k] *= mult
		}
		data.SpecialFreight *= mult

	case domain.ParamFreightOutbound:
		mult, err := multiplier(mod)
		if err != nil {
			return err
		}
		for k := range data.OutboundFreight {
			data.OutboundFreight[k] *= mult
		}

	case domain.ParamFreightSea:
		mult, err := multiplier(mod)
		if err != nil {
			return err
		}
		for i := range data.Ports {
			data.Ports[i].SeaFreightCost *= mult
		}

	case domain.ParamYieldFactor, domain.ParamMaxConsumption:
		m, err := requireMaterial(mod)
		if err != nil {
			return err
		}
		v, err := mod.Number()
		if err != nil {
			return err
		}
		values := data.Production.YieldFactors
		if mod.ParameterType == domain.ParamMaxConsumption {
			values = data.Production.MaxConsumption
		}
		next, err := mod.Action.Apply(values[m], v)
		if err != nil {
			return err
		}
		if next <= 0 || next > 1 {
			return fmt.Errorf("%s for material %s would be %v, must be in (0, 1]", mod.ParameterType, m, next)
		}
		values[m] = next

	case domain.ParamRawMaterialAvailability:
		cp, m, err := requireSiteMaterial(data, mod)
		if err != nil {
			return err
		}
		v, err := mod.Number()
		if err != nil {
			return err
		}
		next, err := mod.Action.Apply(cp.Volumes[m], v)
		if err != nil {
			return err
		}
		if next < 0 {
			return fmt.Errorf("volume of %s at %s would be negative (%.2f)", m, cp.SiteID, next)
		}
		cp.Volumes[m] = next

	case domain.ParamMaterialPrice:
		v, err := mod.Number()
		if err != nil {
			return err
		}
		// Without a site and material the edit is a global price multiplier.
		if strings.TrimSpace(mod.Site) == "" || strings.TrimSpace(mod.Material) == "" {
			if mod.Action != domain.ActionMultiply && mod.Action != "" {
				return fmt.Errorf("global price edits only support %q", domain.ActionMultiply)
			}
			for i := range data.CollectionPoints {
				for m := range data.CollectionPoints[i].Prices {
					data.CollectionPoints[i].Prices[m] *= v
				}
			}
			return nil
		}
		cp, m, err := requireSiteMaterial(data, mod)
		if err != nil {
			return err
		}
		next, err := mod.Action.Apply(cp.Prices[m], v)
		if err != nil {
			return err
		}
		if next < 0 {
			return fmt.Errorf("price of %s at %s would be negative (%.2f)", m, cp.SiteID, next)
		}
		cp.Prices[m] = next

	default:
		return fmt.Errorf("unknown parameter type %q", mod.ParameterType)
	}

	return nil
}

// multiplier reads the factor of a freight edit. Freight edits are always
// multiplicative; "set" is accepted as a synonym.
func multiplier(mod domain.Modification) (float64, error) {
	switch mod.Action {
	case domain.ActionMultiply, domain.ActionSet, "":
	default:
		return 0, fmt.Errorf("%s only supports %q, got %q", mod.ParameterType, domain.ActionMultiply, mod.Action)
	}
	v, err := mod.Number()
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("multiplier %v must be >= 0", v)
	}
	return v, nil
}

func requireMaterial(mod domain.Modification) (domain.Material, error) {
	if strings.TrimSpace(mod.Material) == "" {
		return "", fmt.Errorf("%s requires a material", mod.ParameterType)
	}
	return domain.ParseMaterial(strings.TrimSpace(mod.Material))
}

func requireSiteMaterial(data *domain.Dataset, mod domain.Modification) (*domain.CollectionPoint, domain.Material, error) {
	if strings.TrimSpace(mod.Site) == "" || strings.TrimSpace(mod.Material) == "" {
		return nil, "", fmt.Errorf("%s requires a site and a material", mod.ParameterType)
	}
	cp, ok := data.Site(strings.TrimSpace(mod.Site))
	if !ok {
		return nil, "", fmt.Errorf("collection point %q not found", mod.Site)
	}
	m, err := domain.ParseMaterial(strings.TrimSpace(mod.Material))
	if err != nil {
		return nil, "", err
	}
	return cp, m, nil
}
