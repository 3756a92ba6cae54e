package domain

import "github.com/shopspring/decimal"

// RateTier is one service level of a country rate table.
type RateTier struct {
	Carrier string          `json:"carrier"`
	Service string          `json:"service"`
	Base    decimal.Decimal `json:"base"`
	PerKg   decimal.Decimal `json:"perKg"`
	Days    string          `json:"days"`
}

type ShippingRate struct {
	Carrier       string          `json:"carrier"`
	Service       string          `json:"service"`
	Cost          decimal.Decimal `json:"cost"`
	EstimatedDays string          `json:"estimatedDays"`
}

type Destination struct {
	Country    string `json:"country" validate:"required,len=2"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}
