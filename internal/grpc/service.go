package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const (
	ServiceName = "merchant.inventory.v1.InventoryService"

	checkAvailabilityMethod = "/" + ServiceName + "/CheckAvailability"
	checkMultipleMethod     = "/" + ServiceName + "/CheckMultiple"
	lowStockMethod          = "/" + ServiceName + "/LowStock"
)

type CheckAvailabilityRequest struct {
	SKU string `json:"sku"`
}

type CheckAvailabilityResponse struct {
	Availability StockAvailability `json:"availability"`
}

type CheckMultipleRequest struct {
	SKUs []string `json:"skus"`
}

type CheckMultipleResponse struct {
	Items []StockAvailability `json:"items"`
}

type LowStockRequest struct {
	Threshold int32 `json:"threshold"`
}

type LowStockResponse struct {
	Products []StockLevel `json:"products"`
}

type StockAvailability struct {
	SKU       string `json:"sku"`
	Available bool   `json:"available"`
	Quantity  int32  `json:"quantity"`
	LeadTime  string `json:"leadTime"`
}

type StockLevel struct {
	SKU   string `json:"sku"`
	Name  string `json:"name"`
	Stock int32  `json:"stock"`
}

// InventoryServiceServer is the server API for the inventory service.
type InventoryServiceServer interface {
	CheckAvailability(context.Context, *CheckAvailabilityRequest) (*CheckAvailabilityResponse, error)
	CheckMultiple(context.Context, *CheckMultipleRequest) (*CheckMultipleResponse, error)
	LowStock(context.Context, *LowStockRequest) (*LowStockResponse, error)
}

// RegisterInventoryServiceServer attaches srv to s.
func RegisterInventoryServiceServer(s grpc.ServiceRegistrar, srv InventoryServiceServer) {
	s.RegisterService(&inventoryServiceDesc, srv)
}

var inventoryServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InventoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CheckAvailability", Handler: checkAvailabilityHandler},
		{MethodName: "CheckMultiple", Handler: checkMultipleHandler},
		{MethodName: "LowStock", Handler: lowStockHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "merchant/inventory/v1/inventory.proto",
}

func checkAvailabilityHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CheckAvailabilityRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InventoryServiceServer).CheckAvailability(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: checkAvailabilityMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InventoryServiceServer).CheckAvailability(ctx, req.(*CheckAvailabilityRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func checkMultipleHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CheckMultipleRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InventoryServiceServer).CheckMultiple(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: checkMultipleMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InventoryServiceServer).CheckMultiple(ctx, req.(*CheckMultipleRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func lowStockHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(LowStockRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InventoryServiceServer).LowStock(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: lowStockMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InventoryServiceServer).LowStock(ctx, req.(*LowStockRequest))
	}
	return interceptor(ctx, in, info, handler)
}
