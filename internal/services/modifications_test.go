package services

import (
	"errors"
	"supply-chain-optimizer/internal/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func siteEdit(param domain.ParameterType, action domain.Action, site, material string, value any) domain.Modification {
	m := domain.NewModification(param, action, value)
	m.Site = site
	m.Material = material
	return m
}

func requireInvalidAt(t *testing.T, err error, index int) *domain.InvalidModificationError {
	t.Helper()
	var invalid *domain.InvalidModificationError
	require.True(t, errors.As(err, &invalid), "expected InvalidModificationError, got %v", err)
	require.Equal(t, index, invalid.Index)
	require.ErrorIs(t, err, domain.ErrInvalidModification)
	return invalid
}

func TestApplyModifications_LeavesBaselineUntouched(t *testing.T) {
	base := twoSiteDataset()

	got, err := ApplyModifications(base, []domain.Modification{
		domain.NewModification(domain.ParamProductionTarget, domain.ActionSet, 60),
		domain.NewModification(domain.ParamFreightInbound, domain.ActionMultiply, 1.5),
		domain.NewModification(domain.ParamFreightSea, domain.ActionMultiply, 0.5),
		siteEdit(domain.ParamYieldFactor, domain.ActionSet, "", "A", 0.6),
		siteEdit(domain.ParamRawMaterialAvailability, domain.ActionIncrease, "S1", "A", 10),
		siteEdit(domain.ParamMaterialPrice, domain.ActionSet, "S2", "E", 9),
		domain.NewModification(domain.ParamFacilityLocation, domain.ActionSet, "S2"),
	})
	require.NoError(t, err)

	require.Equal(t, twoSiteDataset(), base)

	require.Equal(t, 60.0, got.Production.TargetTons)
	require.Equal(t, 0.6, got.Production.YieldFactors[domain.MaterialA])
	require.Equal(t, 110.0, got.CollectionPoints[0].Volumes[domain.MaterialA])
	require.Equal(t, 9.0, got.CollectionPoints[1].Prices[domain.MaterialE])
	require.Equal(t, 7.5, got.Ports[1].SeaFreightCost)
	require.Equal(t, "S2", got.ForcedFacility)
}

func TestApplyModifications_InboundFreightScalesSpecialRate(t *testing.T) {
	got, err := ApplyModifications(twoSiteDataset(), []domain.Modification{
		domain.NewModification(domain.ParamFreightInbound, domain.ActionMultiply, 2),
	})
	require.NoError(t, err)

	require.Equal(t, 4.0, got.SpecialFreight)
	require.Equal(t, 8.0, got.InboundFreight[domain.SitePair{Origin: "S1", Destination: "S2"}])
	require.Equal(t, 6.0, got.InboundFreight[domain.SitePair{Origin: "S2", Destination: "S1"}])
}

func TestApplyModifications_FreightSetIsMultiplier(t *testing.T) {
	got, err := ApplyModifications(twoSiteDataset(), []domain.Modification{
		domain.NewModification(domain.ParamFreightOutbound, domain.ActionSet, "1.1"),
	})
	require.NoError(t, err)
	require.InDelta(t, 6.6, got.OutboundFreight[domain.SitePort{Site: "S1", Port: "P1"}], 1e-9)

	_, err = ApplyModifications(twoSiteDataset(), []domain.Modification{
		domain.NewModification(domain.ParamFreightOutbound, domain.ActionIncrease, 3),
	})
	requireInvalidAt(t, err, 0)
}

func TestApplyModifications_TargetActions(t *testing.T) {
	got, err := ApplyModifications(twoSiteDataset(), []domain.Modification{
		domain.NewModification(domain.ParamProductionTarget, domain.ActionIncrease, 25),
		domain.NewModification(domain.ParamProductionTarget, domain.ActionMultiply, 2),
	})
	require.NoError(t, err)
	require.Equal(t, 150.0, got.Production.TargetTons)

	_, err = ApplyModifications(twoSiteDataset(), []domain.Modification{
		domain.NewModification(domain.ParamProductionTarget, domain.ActionDecrease, 60),
	})
	invalid := requireInvalidAt(t, err, 0)
	require.Contains(t, invalid.Reason, "must be > 0")

	_, err = ApplyModifications(twoSiteDataset(), []domain.Modification{
		domain.NewModification(domain.ParamProductionTarget, "double", 2),
	})
	requireInvalidAt(t, err, 0)
}

func TestApplyModifications_RejectsNonFiniteValues(t *testing.T) {
	tests := []struct {
		name string
		mod  domain.Modification
	}{
		{"NaN target", domain.NewModification(domain.ParamProductionTarget, domain.ActionSet, "NaN")},
		{"Inf target", domain.NewModification(domain.ParamProductionTarget, domain.ActionSet, "Inf")},
		{"negative Inf target", domain.NewModification(domain.ParamProductionTarget, domain.ActionSet, "-Inf")},
		{"NaN yield", siteEdit(domain.ParamYieldFactor, domain.ActionSet, "", "A", "NaN")},
		{"NaN inbound multiplier", domain.NewModification(domain.ParamFreightInbound, domain.ActionMultiply, "NaN")},
		{"Inf availability", siteEdit(domain.ParamRawMaterialAvailability, domain.ActionIncrease, "S1", "A", "Inf")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := twoSiteDataset()
			_, err := ApplyModifications(base, []domain.Modification{
				domain.NewModification(domain.ParamProductionTarget, domain.ActionSet, 40),
				tt.mod,
			})
			invalid := requireInvalidAt(t, err, 1)
			require.Contains(t, invalid.Reason, "not a finite number")
			require.Equal(t, twoSiteDataset(), base)
		})
	}
}

func TestApplyModifications_UnknownNames(t *testing.T) {
	tests := []struct {
		name string
		mod  domain.Modification
	}{
		{"facility", domain.NewModification(domain.ParamFacilityLocation, domain.ActionSet, "S9")},
		{"port", domain.NewModification(domain.ParamPortSelection, domain.ActionSet, []string{"P1", "Nowhere"})},
		{"site", siteEdit(domain.ParamRawMaterialAvailability, domain.ActionSet, "S9", "A", 1)},
		{"material", siteEdit(domain.ParamMaterialPrice, domain.ActionSet, "S1", "Z", 1)},
		{"parameter", domain.NewModification("storage_cost", domain.ActionSet, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok := domain.NewModification(domain.ParamProductionTarget, domain.ActionSet, 40)
			_, err := ApplyModifications(twoSiteDataset(), []domain.Modification{ok, tt.mod})
			requireInvalidAt(t, err, 1)
		})
	}
}

func TestApplyModifications_PortSelection(t *testing.T) {
	got, err := ApplyModifications(twoSiteDataset(), []domain.Modification{
		domain.NewModification(domain.ParamPortSelection, domain.ActionSet, "P2"),
	})
	require.NoError(t, err)
	require.Equal(t, []string{"P2"}, got.ForcedPorts)
}

func TestApplyModifications_ShareBounds(t *testing.T) {
	_, err := ApplyModifications(twoSiteDataset(), []domain.Modification{
		siteEdit(domain.ParamYieldFactor, domain.ActionMultiply, "", "A", 3),
	})
	invalid := requireInvalidAt(t, err, 0)
	require.Contains(t, invalid.Reason, "(0, 1]")

	_, err = ApplyModifications(twoSiteDataset(), []domain.Modification{
		siteEdit(domain.ParamMaxConsumption, domain.ActionSet, "", "B", 0),
	})
	requireInvalidAt(t, err, 0)

	_, err = ApplyModifications(twoSiteDataset(), []domain.Modification{
		domain.NewModification(domain.ParamMaxConsumption, domain.ActionSet, 0.3),
	})
	invalid = requireInvalidAt(t, err, 0)
	require.Contains(t, invalid.Reason, "requires a material")
}

func TestApplyModifications_GlobalPrice(t *testing.T) {
	got, err := ApplyModifications(twoSiteDataset(), []domain.Modification{
		domain.NewModification(domain.ParamMaterialPrice, domain.ActionMultiply, 2),
	})
	require.NoError(t, err)
	require.Equal(t, 20.0, got.CollectionPoints[0].Prices[domain.MaterialA])
	require.Equal(t, 10.0, got.CollectionPoints[1].Prices[domain.MaterialE])

	_, err = ApplyModifications(twoSiteDataset(), []domain.Modification{
		domain.NewModification(domain.ParamMaterialPrice, domain.ActionSet, 2),
	})
	requireInvalidAt(t, err, 0)
}

func TestApplyModifications_NegativeVolume(t *testing.T) {
	_, err := ApplyModifications(twoSiteDataset(), []domain.Modification{
		siteEdit(domain.ParamRawMaterialAvailability, domain.ActionDecrease, "S1", "A", 200),
	})
	invalid := requireInvalidAt(t, err, 0)
	require.Contains(t, invalid.Reason, "negative")
}

func TestApplyModifications_BadValueShape(t *testing.T) {
	_, err := ApplyModifications(twoSiteDataset(), []domain.Modification{
		domain.NewModification(domain.ParamProductionTarget, domain.ActionSet, "lots"),
	})
	requireInvalidAt(t, err, 0)

	_, err = ApplyModifications(twoSiteDataset(), []domain.Modification{
		domain.NewModification(domain.ParamFacilityLocation, domain.ActionSet, 3),
	})
	requireInvalidAt(t, err, 0)
}
