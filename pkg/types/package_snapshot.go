package types

import "github.com/shopspring/decimal"

// PackageSnapshot is the immutable copy of a gig package taken when an order
// is created. Later edits to the gig must never change an existing order.
type PackageSnapshot struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Price        decimal.Decimal   `json:"price"`
	DeliveryDays int               `json:"deliveryDays"`
	Revisions    int               `json:"revisions"`
	Extras       map[string]string `json:"extras,omitempty"`
}
