package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates the model gateway is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names in Report.Checks.
const (
	ComponentGateway = "gateway"
	ComponentCache   = "cache"
)

const checkTimeout = 5 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Service coordinates health checks.
type Service struct {
	gateway GatewayChecker
	cache   CachePinger
}

// New creates a Service. cache can be nil when caching is disabled.
func New(gateway GatewayChecker, cache CachePinger) *Service {
	return &Service{gateway: gateway, cache: cache}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	checks := make(map[string]CheckResult)
	status := Healthy

	if err := s.gateway.HealthCheck(ctx); err != nil {
		checks[ComponentGateway] = CheckError
		status = Unhealthy
	} else {
		checks[ComponentGateway] = CheckOK
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			checks[ComponentCache] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks[ComponentCache] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
