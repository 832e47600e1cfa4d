package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/totemfood/orders/internal/domain/payment"
	"github.com/totemfood/orders/internal/observability"
)

const componentGateway = "mercadopago_client"

type Config struct {
	BaseURL string
	Token   string
	UserID  string
	PosID   string
	// HTTPClient overrides the default client; handy for tests.
	HTTPClient *http.Client
}

// Client talks to the Mercado Pago in-store QR API. The wire format is
// snake_case with amounts in currency units; conversion from the internal
// cents representation happens here at the adapter edge.
type Client struct {
	cfg     Config
	http    *http.Client
	log     observability.Logger
	reqs    observability.Counter
	durHist observability.Histogram
}

func NewClient(cfg Config, obs observability.Observability) *Client {
	if obs == nil {
		obs = observability.Nop()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		cfg:     cfg,
		http:    httpClient,
		log:     obs.Logger().With(observability.F("component", componentGateway)),
		reqs:    obs.Metrics().Counter(observability.MExternalRequests),
		durHist: obs.Metrics().Histogram(observability.MExternalRequestDuration),
	}
}

type qrRequestItem struct {
	Title       string  `json:"title"`
	Quantity    int     `json:"quantity"`
	UnitMeasure string  `json:"unit_measure"`
	UnitPrice   float64 `json:"unit_price"`
	TotalAmount float64 `json:"total_amount"`
}

type qrRequest struct {
	ExternalReference string          `json:"external_reference"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	TotalAmount       float64         `json:"total_amount"`
	ExpirationDate    string          `json:"expiration_date"`
	Items             []qrRequestItem `json:"items"`
}

type qrResponse struct {
	QRData         string `json:"qr_data"`
	InStoreOrderID string `json:"in_store_order_id"`
}

type providerError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) CreateQRPayment(ctx context.Context, req payment.QRRequest) (*payment.QRResponse, error) {
	body := qrRequest{
		ExternalReference: req.ExternalReference,
		Title:             req.Title,
		Description:       req.Description,
		TotalAmount:       centsToUnits(req.TotalAmount),
		ExpirationDate:    req.ExpirationDate.UTC().Format(time.RFC3339),
		Items:             make([]qrRequestItem, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		body.Items = append(body.Items, qrRequestItem{
			Title:       item.Title,
			Quantity:    item.Quantity,
			UnitMeasure: item.UnitMeasure,
			UnitPrice:   centsToUnits(item.UnitPrice),
			TotalAmount: centsToUnits(item.TotalAmount),
		})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &payment.GatewayError{Details: "unexpected error occurred", StatusCode: http.StatusInternalServerError}
	}

	url := fmt.Sprintf("%s/instore/orders/qr/seller/collectors/%s/pos/%s/qrs",
		c.cfg.BaseURL, c.cfg.UserID, c.cfg.PosID)

	start := time.Now()
	resp, err := c.post(ctx, url, payload)
	outcome := "success"
	defer func() {
		c.reqs.Add(1, observability.L("target", "mercadopago"), observability.L("outcome", outcome))
		c.durHist.Observe(time.Since(start).Seconds(), observability.L("target", "mercadopago"))
	}()
	if err != nil {
		outcome = "error"
		c.log.Error("qr_request_failed", observability.F("error", err.Error()))
		return nil, &payment.GatewayError{Details: "unexpected error occurred", StatusCode: http.StatusInternalServerError}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome = "error"
		var perr providerError
		_ = json.NewDecoder(resp.Body).Decode(&perr)
		if perr.Message == "" {
			perr.Message = "Unknown error occurred"
		}
		if perr.Error == "" {
			perr.Error = "Error details not provided"
		}
		c.log.Error("qr_request_rejected",
			observability.F("status", resp.StatusCode),
			observability.F("provider_error", perr.Error),
		)
		return nil, &payment.GatewayError{
			Details:    fmt.Sprintf("Error: %s, Message: %s", perr.Error, perr.Message),
			StatusCode: resp.StatusCode,
		}
	}

	var out qrResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		outcome = "error"
		return nil, &payment.GatewayError{Details: "unexpected error occurred", StatusCode: http.StatusInternalServerError}
	}

	c.log.Info("qr_request_succeeded",
		observability.F("external_reference", req.ExternalReference),
	)
	return &payment.QRResponse{
		QRData:         out.QRData,
		InStoreOrderID: out.InStoreOrderID,
	}, nil
}

func (c *Client) post(ctx context.Context, url string, payload []byte) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	httpReq.Header.Set("Content-Type", "application/json")
	return c.http.Do(httpReq)
}

func centsToUnits(v int64) float64 {
	return float64(v) / 100
}
