package domain

// Represents a raw material collection site.
// A CollectionPoint reports the available volume (tons) and unit price ($/ton)
// of every material. The site id is "<Company>_<Plant>" and is unique across a dataset.
type CollectionPoint struct {
	SiteID  string
	Company string
	Plant   string
	Volumes map[Material]float64
	Prices  map[Material]float64
}

// TotalVolume sums the available volume across all materials.
func (c *CollectionPoint) TotalVolume() float64 {
	total := 0.0
	for _, m := range Materials {
		total += c.Volumes[m]
	}
	return total
}

func (c *CollectionPoint) clone() CollectionPoint {
	out := CollectionPoint{
		SiteID:  c.SiteID,
		Company: c.Company,
		Plant:   c.Plant,
		Volumes: make(map[Material]float64, len(c.Volumes)),
		Prices:  make(map[Material]float64, len(c.Prices)),
	}
	for m, v := range c.Volumes {
		out.Volumes[m] = v
	}
	for m, p := range c.Prices {
		out.Prices[m] = p
	}
	return out
}
