package catalog

import (
	"regexp"
	"sort"
	"strings"

	"github.com/fjod/go_cart/merchant-api/internal/domain"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

var sibilantPlural = regexp.MustCompile(`([sxz]|[cs]h)es$`)

// searchVariants returns the lowercased query plus its singular form, so
// "watches" also finds "watch" and "straps" finds "strap".
func searchVariants(query string) []string {
	q := strings.ToLower(query)
	variants := []string{q}
	switch {
	case sibilantPlural.MatchString(q):
		variants = append(variants, strings.TrimSuffix(q, "es"))
	case strings.HasSuffix(q, "ies"):
		variants = append(variants, strings.TrimSuffix(q, "ies")+"y")
	case strings.HasSuffix(q, "s") && !strings.HasSuffix(q, "ss"):
		variants = append(variants, strings.TrimSuffix(q, "s"))
	}
	return variants
}

func matchesSearch(p domain.Product, variants []string) bool {
	haystacks := []string{
		strings.ToLower(p.Name),
		strings.ToLower(p.Brand),
		strings.ToLower(p.Description),
	}
	for _, h := range haystacks {
		for _, v := range variants {
			if strings.Contains(h, v) {
				return true
			}
		}
	}
	return false
}

func (f compiledFilters) match(p domain.Product) bool {
	if f.variants != nil && !matchesSearch(p, f.variants) {
		return false
	}
	if len(f.Brands) > 0 && !contains(f.Brands, p.Brand) {
		return false
	}
	if len(f.Category) > 0 && !intersects(p.Categories, f.Category) {
		return false
	}
	if f.PriceMin != nil && p.Price.LessThan(*f.PriceMin) {
		return false
	}
	if f.PriceMax != nil && p.Price.GreaterThan(*f.PriceMax) {
		return false
	}
	if f.MinRating != nil && p.Rating < *f.MinRating {
		return false
	}
	if len(f.Tags) > 0 && !intersects(p.Tags, f.Tags) {
		return false
	}
	if f.InStock && !p.InStock() {
		return false
	}
	return true
}

type compiledFilters struct {
	domain.ProductFilters
	variants []string
}

// List filters, sorts and paginates the catalog. Sorting is stable, so
// products with equal keys keep catalog order and pages never overlap.
func (s *Store) List(filters domain.ProductFilters, pagination domain.Pagination) ([]domain.Product, domain.PaginationMeta) {
	f := compiledFilters{ProductFilters: filters}
	if filters.Search != "" {
		f.variants = searchVariants(filters.Search)
	}

	filtered := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if f.match(p) {
			filtered = append(filtered, p)
		}
	}

	sortProducts(filtered, filters.Sort)

	page, limit := normalizePagination(pagination)
	total := len(filtered)
	meta := domain.PaginationMeta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}

	start := (page - 1) * limit
	if start >= total {
		return []domain.Product{}, meta
	}
	end := start + limit
	if end > total {
		end = total
	}
	return filtered[start:end], meta
}

func sortProducts(products []domain.Product, key domain.SortKey) {
	var less func(a, b domain.Product) bool
	switch key {
	case domain.SortPriceAsc:
		less = func(a, b domain.Product) bool { return a.Price.LessThan(b.Price) }
	case domain.SortPriceDesc:
		less = func(a, b domain.Product) bool { return a.Price.GreaterThan(b.Price) }
	case domain.SortRating:
		less = func(a, b domain.Product) bool { return a.Rating > b.Rating }
	case domain.SortNewest:
		less = func(a, b domain.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	default:
		return
	}
	sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
}

func normalizePagination(p domain.Pagination) (page, limit int) {
	page = p.Page
	if page < 1 {
		page = 1
	}
	limit = p.Limit
	if limit < 1 {
		limit = 1
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}
