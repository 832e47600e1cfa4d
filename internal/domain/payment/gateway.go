package payment

import (
	"context"
	"time"
)

// QRRequestItem is one order line in the QR payment request. Prices are in
// cents here; the gateway adapter converts to the provider's wire format.
type QRRequestItem struct {
	Title       string
	Quantity    int
	UnitMeasure string
	UnitPrice   int64
	TotalAmount int64
}

type QRRequest struct {
	ExternalReference string
	Title             string
	Description       string
	TotalAmount       int64
	ExpirationDate    time.Time
	Items             []QRRequestItem
}

type QRResponse struct {
	QRData         string
	InStoreOrderID string
}

// Gateway is the outbound port for the QR payment provider. A failed call
// returns a *GatewayError; the core never retries it.
type Gateway interface {
	CreateQRPayment(ctx context.Context, req QRRequest) (*QRResponse, error)
}
