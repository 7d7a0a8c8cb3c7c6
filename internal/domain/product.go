package domain

// Product is a catalog record maintained by the inventory side.
// The bot only reads it; quantity fields are adjusted elsewhere
// through stock documents and may transiently go negative.
type Product struct {
	SKU          string
	Name         string
	Qty          int
	SafetyStock  int
	InTransit    int
	LeadTimeDays int
	Price        *float64
	Status       string
}
