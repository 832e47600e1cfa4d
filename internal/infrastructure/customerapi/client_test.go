package customerapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/totemfood/orders/internal/domain/customer"
)

func TestGetCustomers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/customers" {
			t.Errorf("request path = %s, want /admin/customers", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]customer.Customer{
			{ID: "c-1", Name: "Ana", Email: "ana@example.com"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)
	customers, err := client.GetCustomers(context.Background())
	if err != nil {
		t.Fatalf("GetCustomers() error = %v", err)
	}
	if len(customers) != 1 || customers[0].Name != "Ana" {
		t.Errorf("GetCustomers() = %+v, want one customer named Ana", customers)
	}
}

func TestGetCustomerByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/totem/customers/property" {
			t.Errorf("request path = %s, want /totem/customers/property", r.URL.Path)
		}
		switch r.URL.Query().Get("id") {
		case "c-1":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(customer.Customer{ID: "c-1", Name: "Ana"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)

	got, err := client.GetCustomerByID(context.Background(), "c-1")
	if err != nil {
		t.Fatalf("GetCustomerByID() error = %v", err)
	}
	if got == nil || got.Name != "Ana" {
		t.Errorf("GetCustomerByID() = %+v, want Ana", got)
	}

	// an unknown customer is not an error, it is simply absent
	got, err = client.GetCustomerByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetCustomerByID(missing) error = %v", err)
	}
	if got != nil {
		t.Errorf("GetCustomerByID(missing) = %+v, want nil", got)
	}
}

func TestGetCustomersServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)
	if _, err := client.GetCustomers(context.Background()); err == nil {
		t.Error("GetCustomers() error = nil, want error on 500")
	}
}
