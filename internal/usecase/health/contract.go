package health

import "context"

// GatewayChecker checks model gateway availability.
type GatewayChecker interface {
	HealthCheck(ctx context.Context) error
}

// CachePinger checks embedding cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}
