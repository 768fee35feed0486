package domain

// Export port handling finished product.
// Both costs are per ton of finished product shipped through the port.
type Port struct {
	Name            string
	OperationalCost float64
	SeaFreightCost  float64
}
