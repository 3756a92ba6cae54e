package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductSpecs struct {
	CaseSize        string `json:"caseSize"`
	CaseMaterial    string `json:"caseMaterial"`
	StrapMaterial   string `json:"strapMaterial"`
	Movement        string `json:"movement"`
	WaterResistance string `json:"waterResistance"`
	CrystalType     string `json:"crystalType"`
	Warranty        string `json:"warranty"`
}

type Product struct {
	ID               string          `json:"id"`
	SKU              string          `json:"sku"`
	Name             string          `json:"name"`
	Slug             string          `json:"slug"`
	Brand            string          `json:"brand"`
	Price            decimal.Decimal `json:"price"`
	Currency         string          `json:"currency"`
	Images           []string        `json:"images"`
	Description      string          `json:"description"`
	ShortDescription string          `json:"shortDescription"`
	Stock            int             `json:"stock"`
	Categories       []string        `json:"categories"`
	Specs            ProductSpecs    `json:"specs"`
	Rating           float64         `json:"rating"`
	ReviewCount      int             `json:"reviewCount"`
	Tags             []string        `json:"tags"`
	Weight           int             `json:"weight"` // grams
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// PrimaryImage returns the first image or an empty string.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

func (p Product) InStock() bool {
	return p.Stock > 0
}

type Brand struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Country     string `json:"country"`
	Founded     int    `json:"founded"`
	Description string `json:"description"`
	Logo        string `json:"logo,omitempty"`
}

type Category struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

type Collection struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Description  string `json:"description"`
	ProductCount int    `json:"productCount"`
}

// SortKey orders a product listing.
type SortKey string

const (
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortRating    SortKey = "rating"
	SortNewest    SortKey = "newest"
)

type ProductFilters struct {
	Search    string
	Brands    []string
	Category  []string
	PriceMin  *decimal.Decimal
	PriceMax  *decimal.Decimal
	MinRating *float64
	Tags      []string
	InStock   bool
	Sort      SortKey
}

type Pagination struct {
	Page  int
	Limit int
}

type PaginationMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Availability is the stock answer for a single SKU.
type Availability struct {
	SKU       string `json:"sku"`
	Available bool   `json:"available"`
	Quantity  int    `json:"quantity"`
	LeadTime  string `json:"leadTime"`
}
