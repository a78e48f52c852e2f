package postgres

import (
	"context"
	"time"
)

// healthPingTimeout bounds a /health probe against the pool.
const healthPingTimeout = 2 * time.Second

// HealthCheck reports PostgreSQL reachability on /health. Failures carry
// ports.ErrStoreUnavailable like every other repository call.
type HealthCheck struct {
	pool Pool
}

func NewHealthCheck(pool Pool) *HealthCheck {
	return &HealthCheck{pool: pool}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()
	return classify("health ping", h.pool.Ping(ctx))
}

func (h *HealthCheck) Name() string { return "postgresql" }
