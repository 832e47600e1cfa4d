package customerapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/totemfood/orders/internal/domain/customer"
	"github.com/totemfood/orders/internal/observability"
)

const componentCustomerAPI = "customer_api_client"

// Client consumes the external customer service. A lookup that finds no
// customer is (nil, nil); only transport and server failures are errors.
type Client struct {
	baseURL string
	http    *http.Client
	log     observability.Logger
	reqs    observability.Counter
	durHist observability.Histogram
}

func NewClient(baseURL string, httpClient *http.Client, obs observability.Observability) *Client {
	if obs == nil {
		obs = observability.Nop()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		log:     obs.Logger().With(observability.F("component", componentCustomerAPI)),
		reqs:    obs.Metrics().Counter(observability.MExternalRequests),
		durHist: obs.Metrics().Histogram(observability.MExternalRequestDuration),
	}
}

func (c *Client) GetCustomers(ctx context.Context) ([]customer.Customer, error) {
	var out []customer.Customer
	err := c.get(ctx, c.baseURL+"/admin/customers", &out)
	if err == errNoContent {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCustomerByID(ctx context.Context, id string) (*customer.Customer, error) {
	var out customer.Customer
	err := c.get(ctx, c.baseURL+"/totem/customers/property?id="+id, &out)
	if err == errNoContent {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

var errNoContent = fmt.Errorf("customer api: no content")

func (c *Client) get(ctx context.Context, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	outcome := "success"
	defer func() {
		c.reqs.Add(1, observability.L("target", "customer_api"), observability.L("outcome", outcome))
		c.durHist.Observe(time.Since(start).Seconds(), observability.L("target", "customer_api"))
	}()
	if err != nil {
		outcome = "error"
		c.log.Error("customer_api_request_failed", observability.F("error", err.Error()))
		return fmt.Errorf("customer api: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
		return errNoContent
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome = "error"
		c.log.Error("customer_api_request_rejected", observability.F("status", resp.StatusCode))
		return fmt.Errorf("customer api: unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		outcome = "error"
		return fmt.Errorf("customer api: decode: %w", err)
	}
	return nil
}
