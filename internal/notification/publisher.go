// Package notification publishes operator alerts for the dashboard backend.
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/platform/aws"
	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/platform/observability"
	"go.opentelemetry.io/otel/attribute"
)

// QuotaAlert describes a Google Ads API quota exhaustion event.
type QuotaAlert struct {
	CustomerID string    `json:"customerId"`
	Country    string    `json:"country,omitempty"`
	Operation  string    `json:"operation"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurredAt"`
}

// AlertPublisher delivers operator alerts.
type AlertPublisher interface {
	PublishQuotaAlert(ctx context.Context, alert QuotaAlert) error
}

// Publisher publishes alerts to SNS
type Publisher struct {
	snsClient *aws.SNSClient
	topicARN  string
	logger    *observability.Logger
	tracer    observability.Tracer
}

// PublisherConfig holds publisher configuration
type PublisherConfig struct {
	SNSClient *aws.SNSClient
	TopicARN  string
	Logger    *observability.Logger
	Tracer    observability.Tracer
}

// NewPublisher creates a new SNS alert publisher
func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	if cfg.SNSClient == nil {
		return nil, fmt.Errorf("SNS client is required")
	}
	if cfg.TopicARN == "" {
		return nil, fmt.Errorf("SNS topic ARN is required")
	}
	if cfg.Tracer == nil {
		cfg.Tracer = observability.NewNoopTracer()
	}

	return &Publisher{
		snsClient: cfg.SNSClient,
		topicARN:  cfg.TopicARN,
		logger:    cfg.Logger,
		tracer:    cfg.Tracer,
	}, nil
}

// PublishQuotaAlert publishes a quota exhaustion alert to SNS.
// Implements AlertPublisher.
func (p *Publisher) PublishQuotaAlert(ctx context.Context, alert QuotaAlert) error {
	ctx, span := p.tracer.StartSpan(
		ctx,
		"Publisher.PublishQuotaAlert",
		observability.WithAttributes(
			attribute.String("customer_id", alert.CustomerID),
			attribute.String("operation", alert.Operation),
			attribute.String("topic_arn", p.topicARN),
		),
	)
	defer span.End()

	if alert.OccurredAt.IsZero() {
		alert.OccurredAt = time.Now().UTC()
	}

	// Message attributes allow subscription filtering per operation
	attributes := map[string]string{
		"alertType":  "quota_exhausted",
		"customerId": alert.CustomerID,
		"operation":  alert.Operation,
	}

	if err := p.snsClient.Publish(ctx, p.topicARN, alert, attributes); err != nil {
		span.NoticeError(err)
		if p.logger != nil {
			p.logger.LogError(ctx, "failed to publish quota alert", err,
				"customer_id", alert.CustomerID,
				"topic_arn", p.topicARN,
			)
		}
		return fmt.Errorf("SNS publish failed: %w", err)
	}

	if p.logger != nil {
		p.logger.Info("published quota alert",
			"customer_id", alert.CustomerID,
			"operation", alert.Operation,
			"topic_arn", p.topicARN,
		)
	}

	return nil
}

// CircuitBreakerState returns the current circuit breaker state
func (p *Publisher) CircuitBreakerState() string {
	return p.snsClient.CircuitBreakerState().String()
}

// ResetCircuitBreaker manually resets the circuit breaker
func (p *Publisher) ResetCircuitBreaker() {
	p.snsClient.ResetCircuitBreaker()
	if p.logger != nil {
		p.logger.Info("reset SNS circuit breaker")
	}
}
