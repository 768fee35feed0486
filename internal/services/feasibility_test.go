package services

import (
	"errors"
	"fmt"
	"math/rand"
	"supply-chain-optimizer/internal/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckFeasibility_SingleMaterialWithHeadroom(t *testing.T) {
	data := singleMaterialDataset(1000, 0.5, 1, 400)

	f, err := CheckFeasibility(data, false)
	require.NoError(t, err)

	require.InDelta(t, 500, f.Achievable, 1e-9)
	require.InDelta(t, 100, f.Margin, 1e-9)
	require.InDelta(t, 1000, f.TotalAvailable, 1e-9)
	// The reported mix only closes the target gap.
	require.InDelta(t, 800, f.Allocation[domain.MaterialA], 1e-9)
}

func TestCheckFeasibility_TargetAboveWeightedCapacity(t *testing.T) {
	data := singleMaterialDataset(100, 0.8, 1, 200)
	data.CollectionPoints[0].Volumes[domain.MaterialB] = 100
	data.Production.YieldFactors[domain.MaterialB] = 0.5

	_, err := CheckFeasibility(data, false)

	var ie *domain.InsufficientMaterialError
	require.True(t, errors.As(err, &ie))
	require.True(t, errors.Is(err, domain.ErrInsufficientMaterial))
	require.InDelta(t, 130, ie.Achievable, 1e-9)
	require.InDelta(t, 70, ie.Deficit, 1e-9)
	require.Len(t, ie.Materials, 5)
}

func TestCheckFeasibility_ShareCapsOnlyMaterial(t *testing.T) {
	data := singleMaterialDataset(1000, 0.5, 0.3, 400)

	_, err := CheckFeasibility(data, false)

	var ie *domain.InsufficientMaterialError
	require.True(t, errors.As(err, &ie))
	// A converges to share*(A+1000) = A, i.e. ~428.6 t, so ~214 t of product.
	require.InDelta(t, 214.28, ie.Achievable, 0.1)
	require.Less(t, ie.Achievable, 400.0)
	require.InDelta(t, 400-ie.Achievable, ie.Deficit, 1e-9)
}

func TestCheckFeasibility_ShrinkingShareCollapsesAchievable(t *testing.T) {
	prev := 1e18
	for _, share := range []float64{0.3, 0.1, 0.01} {
		_, err := CheckFeasibility(singleMaterialDataset(1000, 0.5, share, 400), false)

		var ie *domain.InsufficientMaterialError
		require.True(t, errors.As(err, &ie))
		require.Less(t, ie.Achievable, prev)
		prev = ie.Achievable
	}
	require.Less(t, prev, 10.0)
}

func TestCheckFeasibility_NothingAvailable(t *testing.T) {
	data := singleMaterialDataset(0, 0.5, 1, 400)

	_, err := CheckFeasibility(data, false)

	var ie *domain.InsufficientMaterialError
	require.True(t, errors.As(err, &ie))
	require.Equal(t, 400.0, ie.Deficit)
	require.Equal(t, 0.0, ie.Achievable)
}

func TestCheckFeasibility_ExcludeSpecial(t *testing.T) {
	data := singleMaterialDataset(0, 0.5, 1, 40)
	data.CollectionPoints[0].Volumes[domain.MaterialE] = 100

	_, err := CheckFeasibility(data, true)
	require.ErrorIs(t, err, domain.ErrInsufficientMaterial)

	f, err := CheckFeasibility(data, false)
	require.NoError(t, err)
	require.InDelta(t, 50, f.Achievable, 1e-9)
}

func TestCheckFeasibility_Deterministic(t *testing.T) {
	data := twoSiteDataset()
	data.Production.MaxConsumption = materials(0.6)

	first, err := CheckFeasibility(data, false)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := CheckFeasibility(data, false)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestCheckFeasibility_AllocationRespectsLimits(t *testing.T) {
	data := twoSiteDataset()
	data.Production.MaxConsumption = materials(0.6)

	f, err := CheckFeasibility(data, false)
	require.NoError(t, err)

	avail := data.MaterialAvailability(false)
	produced := 0.0
	for m, v := range f.Allocation {
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, avail[m]+1e-9)
		produced += v * data.Production.YieldFactors[m]
	}
	require.GreaterOrEqual(t, produced, data.Production.TargetTons-0.01)
}

// randomDataset draws a one to three site dataset. Roughly a third of the
// volumes are zero so some materials run dry.
func randomDataset(rng *rand.Rand) *domain.Dataset {
	data := singleMaterialDataset(0, 0.5, 1, 1+rng.Float64()*400)
	data.CollectionPoints = nil

	sites := 1 + rng.Intn(3)
	for i := 0; i < sites; i++ {
		vol := materials(0)
		for _, m := range domain.Materials {
			if rng.Intn(3) > 0 {
				vol[m] = rng.Float64() * 500
			}
		}
		data.CollectionPoints = append(data.CollectionPoints, domain.CollectionPoint{
			SiteID:  fmt.Sprintf("S%d", i+1),
			Volumes: vol,
			Prices:  materials(1),
		})
	}
	for _, m := range domain.Materials {
		data.Production.YieldFactors[m] = 0.05 + rng.Float64()*0.95
		data.Production.MaxConsumption[m] = 0.1 + rng.Float64()*0.9
	}
	return data
}

// achievable returns the greedy maximum whether or not the target is met.
func achievable(t *testing.T, data *domain.Dataset, excludeSpecial bool) float64 {
	t.Helper()
	f, err := CheckFeasibility(data, excludeSpecial)
	if err == nil {
		return f.Achievable
	}
	var ie *domain.InsufficientMaterialError
	require.True(t, errors.As(err, &ie), "unexpected error: %v", err)
	return ie.Achievable
}

func weightedCapacity(data *domain.Dataset, excludeSpecial bool) float64 {
	total := 0.0
	for m, v := range data.MaterialAvailability(excludeSpecial) {
		total += v * data.Production.YieldFactors[m]
	}
	return total
}

func TestCheckFeasibility_RandomizedBounds(t *testing.T) {
	// Slack for the greedy stopping early on allocations below feasibilityMinAlloc.
	const tol = 0.1
	rng := rand.New(rand.NewSource(20240611))

	for i := 0; i < 2000; i++ {
		data := randomDataset(rng)
		require.NoError(t, data.Validate())

		full := achievable(t, data, false)
		require.LessOrEqual(t, full, weightedCapacity(data, false)+1e-6, "dataset %d", i)
		require.GreaterOrEqual(t, full, 0.0, "dataset %d", i)

		withoutSpecial := achievable(t, data, true)
		require.LessOrEqual(t, withoutSpecial, weightedCapacity(data, true)+1e-6, "dataset %d", i)
		require.LessOrEqual(t, withoutSpecial, full+tol, "dataset %d: excluding %s raised achievable", i, data.Special())

		more := data.Clone()
		site := rng.Intn(len(more.CollectionPoints))
		m := domain.Materials[rng.Intn(len(domain.Materials))]
		more.CollectionPoints[site].Volumes[m] += 1 + rng.Float64()*200

		require.GreaterOrEqual(t, achievable(t, more, false), full-tol,
			"dataset %d: adding %s at %s lowered achievable", i, m, more.CollectionPoints[site].SiteID)
		require.GreaterOrEqual(t, achievable(t, more, true), withoutSpecial-tol,
			"dataset %d: adding %s at %s lowered achievable without special", i, m, more.CollectionPoints[site].SiteID)
	}
}
