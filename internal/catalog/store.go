// Package catalog is the read-only reference data of the merchant: products,
// brands, coupons and shipping rate tables.
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"

	"github.com/fjod/go_cart/merchant-api/internal/domain"
)

//go:embed data/*.json
var embedded embed.FS

// InternationalRates is the rate table used for unlisted countries.
const InternationalRates = "international"

const (
	productsFile      = "products.json"
	brandsFile        = "brands.json"
	couponsFile       = "coupons.json"
	shippingRatesFile = "shipping-rates.json"
)

// Store is an immutable, indexed view over the catalog data.
// All methods are safe for concurrent use.
type Store struct {
	products []domain.Product
	byID     map[string]int
	bySKU    map[string]int
	bySlug   map[string]int
	brands   []domain.Brand
	coupons  []domain.Coupon
	rates    map[string][]domain.RateTier
}

// New builds a store from in-memory values.
func New(products []domain.Product, brands []domain.Brand, coupons []domain.Coupon, rates map[string][]domain.RateTier) (*Store, error) {
	s := &Store{
		products: products,
		byID:     make(map[string]int, len(products)),
		bySKU:    make(map[string]int, len(products)),
		bySlug:   make(map[string]int, len(products)),
		brands:   brands,
		coupons:  coupons,
		rates:    make(map[string][]domain.RateTier, len(rates)),
	}

	for i, p := range products {
		if p.SKU == "" {
			return nil, fmt.Errorf("product %q has no sku", p.ID)
		}
		if _, dup := s.bySKU[p.SKU]; dup {
			return nil, fmt.Errorf("duplicate sku %q", p.SKU)
		}
		if _, dup := s.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %q", p.ID)
		}
		s.byID[p.ID] = i
		s.bySKU[p.SKU] = i
		if p.Slug != "" {
			s.bySlug[p.Slug] = i
		}
	}

	for country, tiers := range rates {
		s.rates[rateKey(country)] = tiers
	}
	return s, nil
}

// Default loads the data set compiled into the binary.
func Default() (*Store, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, fmt.Errorf("open embedded catalog: %w", err)
	}
	return Load(sub)
}

// Load reads the four catalog files from fsys.
func Load(fsys fs.FS) (*Store, error) {
	var (
		products []domain.Product
		brands   []domain.Brand
		coupons  []domain.Coupon
		rates    map[string][]domain.RateTier
	)

	files := []struct {
		name string
		dst  any
	}{
		{productsFile, &products},
		{brandsFile, &brands},
		{couponsFile, &coupons},
		{shippingRatesFile, &rates},
	}
	for _, f := range files {
		data, err := fs.ReadFile(fsys, f.name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.name, err)
		}
		if err := json.Unmarshal(data, f.dst); err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.name, err)
		}
	}

	return New(products, brands, coupons, rates)
}

func (s *Store) ProductByID(id string) (domain.Product, bool) {
	return s.lookup(s.byID, id)
}

func (s *Store) ProductBySKU(sku string) (domain.Product, bool) {
	return s.lookup(s.bySKU, sku)
}

func (s *Store) ProductBySlug(slug string) (domain.Product, bool) {
	return s.lookup(s.bySlug, slug)
}

func (s *Store) lookup(index map[string]int, key string) (domain.Product, bool) {
	i, ok := index[key]
	if !ok {
		return domain.Product{}, false
	}
	return s.products[i], true
}

// Products returns every product in catalog order.
func (s *Store) Products() []domain.Product {
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *Store) Brands() []domain.Brand {
	out := make([]domain.Brand, len(s.brands))
	copy(out, s.brands)
	return out
}

// Categories derives the distinct categories in first-seen order with their product counts.
func (s *Store) Categories() []domain.Category {
	var order []string
	counts := make(map[string]int)
	for _, p := range s.products {
		for _, c := range p.Categories {
			if _, seen := counts[c]; !seen {
				order = append(order, c)
			}
			counts[c]++
		}
	}

	out := make([]domain.Category, len(order))
	for i, c := range order {
		out[i] = domain.Category{Name: c, Slug: slugify(c), Count: counts[c]}
	}
	return out
}

type collectionDef struct {
	id, name, description string
	match                 func(domain.Product) bool
}

var collections = []collectionDef{
	{"dive-watches", "Dive Watches", "Professional dive watches with exceptional water resistance", inCategory("Dive")},
	{"luxury-chronographs", "Luxury Chronographs", "Precision chronographs from top Swiss manufacturers", inCategory("Chronograph")},
	{"dress-watches", "Dress Watches", "Elegant timepieces for formal occasions", inCategory("Dress")},
	{"bestsellers", "Bestsellers", "Our most popular watches", hasTag("bestseller")},
}

// Collections computes the fixed groupings over the current products.
func (s *Store) Collections() []domain.Collection {
	out := make([]domain.Collection, len(collections))
	for i, def := range collections {
		count := 0
		for _, p := range s.products {
			if def.match(p) {
				count++
			}
		}
		out[i] = domain.Collection{
			ID:           def.id,
			Name:         def.name,
			Slug:         def.id,
			Description:  def.description,
			ProductCount: count,
		}
	}
	return out
}

// Coupon looks a coupon up by code, ignoring case.
func (s *Store) Coupon(code string) (domain.Coupon, bool) {
	for _, c := range s.coupons {
		if c.Matches(code) {
			return c, true
		}
	}
	return domain.Coupon{}, false
}

func (s *Store) Coupons() []domain.Coupon {
	out := make([]domain.Coupon, len(s.coupons))
	copy(out, s.coupons)
	return out
}

// RateTiers returns the ordered tiers for country, falling back to the
// international table. ok is false when neither exists.
func (s *Store) RateTiers(country string) ([]domain.RateTier, bool) {
	if tiers, ok := s.rates[rateKey(country)]; ok {
		return tiers, true
	}
	tiers, ok := s.rates[rateKey(InternationalRates)]
	return tiers, ok
}

func rateKey(country string) string {
	return strings.ToUpper(strings.TrimSpace(country))
}

func slugify(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}

func inCategory(category string) func(domain.Product) bool {
	return func(p domain.Product) bool { return contains(p.Categories, category) }
}

func hasTag(tag string) func(domain.Product) bool {
	return func(p domain.Product) bool { return contains(p.Tags, tag) }
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func intersects(values, set []string) bool {
	for _, v := range values {
		if contains(set, v) {
			return true
		}
	}
	return false
}
