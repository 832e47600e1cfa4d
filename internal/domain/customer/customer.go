package customer

import "context"

// Customer mirrors the record served by the external customer service.
type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// API is the outbound port for the customer service. GetCustomerByID returns
// (nil, nil) when no customer matches; transport failures return an error.
type API interface {
	GetCustomers(ctx context.Context) ([]Customer, error)
	GetCustomerByID(ctx context.Context, id string) (*Customer, error)
}
