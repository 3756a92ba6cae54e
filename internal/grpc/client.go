package grpc

import (
	"context"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// InventoryClient calls the inventory service with the JSON codec.
type InventoryClient struct {
	conn grpc.ClientConnInterface
}

func NewInventoryClient(conn grpc.ClientConnInterface) *InventoryClient {
	return &InventoryClient{conn: conn}
}

// Dial opens an insecure connection to addr. Extra options are appended.
func Dial(addr string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}, opts...)
	return grpc.NewClient(addr, opts...)
}

func (c *InventoryClient) CheckAvailability(ctx context.Context, in *CheckAvailabilityRequest, opts ...grpc.CallOption) (*CheckAvailabilityResponse, error) {
	out := new(CheckAvailabilityResponse)
	if err := c.conn.Invoke(ctx, checkAvailabilityMethod, in, out, c.callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *InventoryClient) CheckMultiple(ctx context.Context, in *CheckMultipleRequest, opts ...grpc.CallOption) (*CheckMultipleResponse, error) {
	out := new(CheckMultipleResponse)
	if err := c.conn.Invoke(ctx, checkMultipleMethod, in, out, c.callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *InventoryClient) LowStock(ctx context.Context, in *LowStockRequest, opts ...grpc.CallOption) (*LowStockResponse, error) {
	out := new(LowStockResponse)
	if err := c.conn.Invoke(ctx, lowStockMethod, in, out, c.callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// callOptions selects the JSON codec per call so other services on the
// same connection keep protobuf.
func (c *InventoryClient) callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
}
