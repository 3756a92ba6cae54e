package grpc

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/merchant-api/internal/domain"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Inventory is the part of the inventory service exposed over gRPC.
type Inventory interface {
	CheckAvailability(sku string) (domain.Availability, error)
	CheckMultiple(skus []string) ([]domain.Availability, error)
	LowStock(threshold int) []domain.Product
}

// InventoryHandler implements the gRPC inventory service
type InventoryHandler struct {
	inventory Inventory
}

func NewInventoryHandler(inventory Inventory) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

func (h *InventoryHandler) CheckAvailability(_ context.Context, req *CheckAvailabilityRequest) (*CheckAvailabilityResponse, error) {
	if req.SKU == "" {
		return nil, status.Error(codes.InvalidArgument, "sku is required")
	}

	availability, err := h.inventory.CheckAvailability(req.SKU)
	if err != nil {
		return nil, mapDomainError(err)
	}
	return &CheckAvailabilityResponse{Availability: toStockAvailability(availability)}, nil
}

func (h *InventoryHandler) CheckMultiple(_ context.Context, req *CheckMultipleRequest) (*CheckMultipleResponse, error) {
	if len(req.SKUs) == 0 {
		return nil, status.Error(codes.InvalidArgument, "at least one sku is required")
	}

	result, err := h.inventory.CheckMultiple(req.SKUs)
	if err != nil {
		return nil, mapDomainError(err)
	}

	items := make([]StockAvailability, len(result))
	for i, a := range result {
		items[i] = toStockAvailability(a)
	}
	return &CheckMultipleResponse{Items: items}, nil
}

func (h *InventoryHandler) LowStock(_ context.Context, req *LowStockRequest) (*LowStockResponse, error) {
	if req.Threshold < 0 {
		return nil, status.Error(codes.InvalidArgument, "threshold must not be negative")
	}

	products := h.inventory.LowStock(int(req.Threshold))
	levels := make([]StockLevel, len(products))
	for i, p := range products {
		levels[i] = StockLevel{SKU: p.SKU, Name: p.Name, Stock: int32(p.Stock)}
	}
	return &LowStockResponse{Products: levels}, nil
}

func toStockAvailability(a domain.Availability) StockAvailability {
	return StockAvailability{
		SKU:       a.SKU,
		Available: a.Available,
		Quantity:  int32(a.Quantity),
		LeadTime:  a.LeadTime,
	}
}

// mapDomainError converts domain errors to gRPC status codes, keeping the message.
func mapDomainError(err error) error {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		return status.Errorf(codes.Internal, "internal error: %v", err)
	}
	switch derr.Kind {
	case domain.KindNotFound:
		return status.Error(codes.NotFound, derr.Message)
	case domain.KindValidation:
		return status.Error(codes.InvalidArgument, derr.Message)
	case domain.KindBusinessRule:
		return status.Error(codes.FailedPrecondition, derr.Message)
	case domain.KindConflict:
		return status.Error(codes.AlreadyExists, derr.Message)
	default:
		return status.Error(codes.Internal, derr.Message)
	}
}
