package notification

import (
	"context"

	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/platform/observability"
)

// NoOpPublisher is a publisher that does nothing but log alerts.
// Use this when SNS is not configured (local development, testing).
type NoOpPublisher struct {
	logger *observability.Logger
}

// NewNoOpPublisher creates a new no-op publisher that only logs alerts.
func NewNoOpPublisher(logger *observability.Logger) *NoOpPublisher {
	return &NoOpPublisher{
		logger: logger,
	}
}

// PublishQuotaAlert logs the alert instead of publishing to SNS.
// Implements AlertPublisher.
func (p *NoOpPublisher) PublishQuotaAlert(ctx context.Context, alert QuotaAlert) error {
	if p.logger != nil {
		p.logger.Info("quota exhausted (SNS disabled)",
			"customer_id", alert.CustomerID,
			"country", alert.Country,
			"operation", alert.Operation,
			"message", alert.Message,
		)
	}
	return nil
}
