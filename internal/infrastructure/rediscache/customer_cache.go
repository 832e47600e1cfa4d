package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/totemfood/orders/internal/domain/customer"
	"github.com/totemfood/orders/internal/observability"
)

const (
	componentCustomerCache = "customer_cache"
	customerKeyPrefix      = "customer:"
)

// CustomerCache is a read-through cache in front of the customer API.
// Cache failures never fail a lookup; they fall through to the origin.
type CustomerCache struct {
	next customer.API
	rdb  *redis.Client
	ttl  time.Duration
	log  observability.Logger
}

func NewCustomerCache(next customer.API, rdb *redis.Client, ttl time.Duration, obs observability.Observability) *CustomerCache {
	if obs == nil {
		obs = observability.Nop()
	}
	return &CustomerCache{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
		log:  obs.Logger().With(observability.F("component", componentCustomerCache)),
	}
}

// GetCustomers is a pass-through; the full listing is admin-facing and rare.
func (c *CustomerCache) GetCustomers(ctx context.Context) ([]customer.Customer, error) {
	return c.next.GetCustomers(ctx)
}

func (c *CustomerCache) GetCustomerByID(ctx context.Context, id string) (*customer.Customer, error) {
	key := customerKeyPrefix + id

	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var cached customer.Customer
		if unmarshalErr := json.Unmarshal(raw, &cached); unmarshalErr == nil {
			return &cached, nil
		}
		// corrupt entry, refresh from origin
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn("cache_read_failed", observability.F("error", err.Error()))
	}

	found, err := c.next.GetCustomerByID(ctx, id)
	if err != nil || found == nil {
		return found, err
	}

	if raw, marshalErr := json.Marshal(found); marshalErr == nil {
		if setErr := c.rdb.Set(ctx, key, raw, c.ttl).Err(); setErr != nil {
			c.log.Warn("cache_write_failed", observability.F("error", setErr.Error()))
		}
	}
	return found, nil
}
