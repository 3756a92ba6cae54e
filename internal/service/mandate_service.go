package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/fjod/go_cart/merchant-api/internal/domain"
	"github.com/fjod/go_cart/merchant-api/internal/events"
)

const (
	MerchantName     = "Watch Merchant"
	MerchantID       = "watch-merchant"
	MandateTTL       = 15 * time.Minute
	SepoliaChainID   = 11155111
	BNBChainID       = 56
	ZeroAddress      = "0x0000000000000000000000000000000000000000"
	mandatePrimary   = "PurchaseMandate"
	paymentVerifyMsg = "Payment verified and order created successfully"
)

// PaymentVerifier checks a wallet signature over a mandate.
type PaymentVerifier interface {
	Verify(ctx context.Context, cartID, signature, mandateHash string) (bool, error)
}

// AcceptAllVerifier approves every signature. Demo deployments only.
type AcceptAllVerifier struct{}

func (AcceptAllVerifier) Verify(context.Context, string, string, string) (bool, error) {
	return true, nil
}

type CartAccess interface {
	Get(ctx context.Context, cartID string) (*domain.Cart, error)
	Delete(ctx context.Context, cartID string) (bool, error)
}

type TypedDataDomain struct {
	Name              string `json:"name"`
	Version           string `json:"version"`
	ChainID           int64  `json:"chainId"`
	VerifyingContract string `json:"verifyingContract"`
}

type TypedDataField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// MandateMessage field order is part of the cart hash.
type MandateMessage struct {
	CartID     string `json:"cartId"`
	MerchantID string `json:"merchantId"`
	Amount     string `json:"amount"` // wei
	Currency   string `json:"currency"`
	Items      string `json:"items"`
	Timestamp  int64  `json:"timestamp"`
	ExpiresAt  int64  `json:"expiresAt"`
}

type TypedData struct {
	Domain      TypedDataDomain             `json:"domain"`
	Types       map[string][]TypedDataField `json:"types"`
	PrimaryType string                      `json:"primaryType"`
	Message     MandateMessage              `json:"message"`
}

type Mandate struct {
	CartHash        string            `json:"cartHash"`
	Amount          string            `json:"amount"`
	MerchantAddress string            `json:"merchantAddress"`
	Items           []domain.CartItem `json:"items"`
	TypedData       TypedData         `json:"typedData"`
	ExpiresAt       time.Time         `json:"expiresAt"`
}

type PaymentResult struct {
	Success         bool   `json:"success"`
	OrderID         string `json:"orderId"`
	TransactionHash string `json:"transactionHash"`
	Message         string `json:"message"`
}

var mandateTypes = map[string][]TypedDataField{
	mandatePrimary: {
		{Name: "cartId", Type: "string"},
		{Name: "merchantId", Type: "string"},
		{Name: "amount", Type: "uint256"},
		{Name: "currency", Type: "string"},
		{Name: "items", Type: "string"},
		{Name: "timestamp", Type: "uint256"},
		{Name: "expiresAt", Type: "uint256"},
	},
}

// MandateService builds wallet signable purchase mandates for carts and
// settles them once a signature comes back.
type MandateService struct {
	carts    CartAccess
	verifier PaymentVerifier
	contract string
	events   EventSink
	logger   *slog.Logger
	now      func() time.Time
}

func NewMandateService(carts CartAccess, verifier PaymentVerifier, contract string, sink EventSink, logger *slog.Logger) *MandateService {
	if contract == "" {
		contract = ZeroAddress
	}
	return &MandateService{
		carts:    carts,
		verifier: verifier,
		contract: contract,
		events:   sink,
		logger:   logger,
		now:      time.Now,
	}
}

func chainID(network string) int64 {
	if network == "sepolia" {
		return SepoliaChainID
	}
	return BNBChainID
}

func (s *MandateService) CreateMandate(ctx context.Context, cartID, walletAddress, network string) (*Mandate, error) {
	if walletAddress == "" {
		return nil, domain.ErrMissingWallet
	}
	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	total := cart.Subtotal()
	items, err := mandateItems(cart)
	if err != nil {
		return nil, err
	}

	now := s.now().Unix()
	expiresAt := now + int64(MandateTTL/time.Second)
	msg := MandateMessage{
		CartID:     cart.ID,
		MerchantID: MerchantID,
		Amount:     total.Shift(18).Floor().String(),
		Currency:   "USD",
		Items:      items,
		Timestamp:  now,
		ExpiresAt:  expiresAt,
	}
	hash, err := cartHash(msg)
	if err != nil {
		return nil, err
	}

	return &Mandate{
		CartHash:        hash,
		Amount:          total.String(),
		MerchantAddress: s.contract,
		Items:           cart.Items,
		TypedData: TypedData{
			Domain: TypedDataDomain{
				Name:              MerchantName,
				Version:           "1",
				ChainID:           chainID(network),
				VerifyingContract: s.contract,
			},
			Types:       mandateTypes,
			PrimaryType: mandatePrimary,
			Message:     msg,
		},
		ExpiresAt: time.Unix(expiresAt, 0).UTC(),
	}, nil
}

func mandateItems(cart *domain.Cart) (string, error) {
	type line struct {
		SKU string `json:"sku"`
		Qty int    `json:"qty"`
	}
	lines := make([]line, len(cart.Items))
	for i, item := range cart.Items {
		lines[i] = line{SKU: item.SKU, Qty: item.Quantity}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return "", fmt.Errorf("marshal mandate items: %w", err)
	}
	return string(data), nil
}

// cartHash is a fingerprint of the message, not a cryptographic digest:
// the first 32 bytes of its JSON, hex encoded.
func cartHash(msg MandateMessage) (string, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("marshal mandate message: %w", err)
	}
	encoded := hex.EncodeToString(data)
	if len(encoded) > 64 {
		encoded = encoded[:64]
	}
	return "0x" + encoded, nil
}

// VerifyPayment settles a signed mandate and removes the cart.
func (s *MandateService) VerifyPayment(ctx context.Context, cartID, signature, mandateHash string) (*PaymentResult, error) {
	if signature == "" || mandateHash == "" {
		return nil, domain.ErrMissingParams
	}
	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	ok, err := s.verifier.Verify(ctx, cart.ID, signature, mandateHash)
	if err != nil {
		return nil, fmt.Errorf("verify payment: %w", err)
	}
	if !ok {
		return nil, domain.ErrPaymentRejected
	}

	suffix, err := randomBase36(7)
	if err != nil {
		return nil, err
	}
	txHash, err := randomHex(32)
	if err != nil {
		return nil, err
	}
	orderID := fmt.Sprintf("order_%d_%s", s.now().UnixMilli(), suffix)

	if _, err := s.carts.Delete(ctx, cart.ID); err != nil {
		return nil, err
	}

	if s.events != nil {
		e, err := events.New(events.PaymentVerified, orderID, map[string]any{
			"orderId":         orderID,
			"cartId":          cart.ID,
			"transactionHash": txHash,
			"amount":          cart.Subtotal(),
		}, s.now())
		if err == nil {
			err = s.events.Enqueue(e)
		}
		if err != nil {
			s.logger.WarnContext(ctx, "event dropped", "event_type", events.PaymentVerified, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "payment verified", "cart_id", cart.ID, "order_id", orderID)
	return &PaymentResult{
		Success:         true,
		OrderID:         orderID,
		TransactionHash: txHash,
		Message:         paymentVerifyMsg,
	}, nil
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomBase36(n int) (string, error) {
	out := make([]byte, n)
	radix := big.NewInt(int64(len(base36)))
	for i := range out {
		v, err := rand.Int(rand.Reader, radix)
		if err != nil {
			return "", fmt.Errorf("random id: %w", err)
		}
		out[i] = base36[v.Int64()]
	}
	return string(out), nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("random hash: %w", err)
	}
	return "0x" + hex.EncodeToString(b), nil
}
