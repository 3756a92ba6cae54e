package service

import "github.com/fjod/go_cart/merchant-api/internal/domain"

const (
	DefaultLowStockThreshold = 5

	leadTimeInStock    = "In Stock - Ships within 1-2 business days"
	leadTimeOutOfStock = "Out of Stock - 4-6 weeks"
)

type StockCatalog interface {
	ProductBySKU(sku string) (domain.Product, bool)
	Products() []domain.Product
}

// InventoryService answers stock questions from catalog stock levels.
// Nothing is reserved.
type InventoryService struct {
	catalog StockCatalog
}

func NewInventoryService(catalog StockCatalog) *InventoryService {
	return &InventoryService{catalog: catalog}
}

func (s *InventoryService) CheckAvailability(sku string) (domain.Availability, error) {
	product, ok := s.catalog.ProductBySKU(sku)
	if !ok {
		return domain.Availability{}, domain.Errorf(domain.ErrProductNotFound, "Product with SKU %s not found", sku)
	}

	leadTime := leadTimeOutOfStock
	if product.InStock() {
		leadTime = leadTimeInStock
	}
	return domain.Availability{
		SKU:       sku,
		Available: product.InStock(),
		Quantity:  product.Stock,
		LeadTime:  leadTime,
	}, nil
}

// CheckMultiple fails as a whole on the first unknown SKU.
func (s *InventoryService) CheckMultiple(skus []string) ([]domain.Availability, error) {
	result := make([]domain.Availability, 0, len(skus))
	for _, sku := range skus {
		a, err := s.CheckAvailability(sku)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, nil
}

// CanFulfil reports whether every item resolves and has enough stock.
func (s *InventoryService) CanFulfil(items []domain.LineItem) bool {
	for _, item := range items {
		product, ok := s.catalog.ProductBySKU(item.SKU)
		if !ok || product.Stock < item.Quantity {
			return false
		}
	}
	return true
}

// LowStock lists products with 0 < stock <= threshold.
func (s *InventoryService) LowStock(threshold int) []domain.Product {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	result := make([]domain.Product, 0)
	for _, p := range s.catalog.Products() {
		if p.Stock > 0 && p.Stock <= threshold {
			result = append(result, p)
		}
	}
	return result
}
