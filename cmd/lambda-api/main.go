// Lambda entrypoint serving the dashboard API behind an API Gateway
// HTTP API (payload format v2). One cold start builds the full service
// stack; the response cache lives as long as the execution environment.
package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/ads"
	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/api"
	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/platform/cache"
	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/platform/config"
	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/platform/observability"
	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/reports"
)

var mux *http.ServeMux

func init() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("[INIT] failed to load config: %v", err)
	}

	logger := observability.NewLogger(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)

	metrics, err := observability.NewMetrics("ads-dashboard-lambda", cfg.Observability.Metrics.Enabled)
	if err != nil {
		log.Fatalf("[INIT] failed to create metrics: %v", err)
	}

	adsClient, err := ads.NewHTTPClient(ads.HTTPClientConfig{
		BaseURL:         cfg.GoogleAds.BaseURL,
		DeveloperToken:  cfg.GoogleAds.DeveloperToken,
		AccessToken:     cfg.GoogleAds.AccessToken,
		LoginCustomerID: cfg.GoogleAds.LoginCustomerID,
		RateLimitRPM:    cfg.GoogleAds.RateLimit.RequestsPerMinute,
		RateLimitBurst:  cfg.GoogleAds.RateLimit.Burst,
		Timeout:         cfg.GoogleAds.Timeout,
		Logger:          logger,
		Metrics:         metrics,
	})
	if err != nil {
		log.Fatalf("[INIT] failed to create ads client: %v", err)
	}

	service, err := reports.NewService(reports.ServiceConfig{
		Client:   adsClient,
		Cache:    cache.NewResponseCache(cfg.Cache.MaxEntries),
		Accounts: cfg.Accounts,
		Logger:   logger,
		Metrics:  metrics,
	})
	if err != nil {
		log.Fatalf("[INIT] failed to create report service: %v", err)
	}

	handler, err := api.NewHandler(api.HandlerConfig{
		Service: service,
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("[INIT] failed to create API handler: %v", err)
	}

	mux = handler.Routes()
	log.Println("[INIT] dashboard Lambda initialized")
}

// Handler translates API Gateway v2 events to the shared HTTP mux.
func Handler(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	req, err := toHTTPRequest(ctx, event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{
			StatusCode: http.StatusBadRequest,
			Body:       fmt.Sprintf(`{"error":%q}`, err.Error()),
			Headers:    map[string]string{"Content-Type": "application/json"},
		}, nil
	}

	rec := &responseRecorder{header: make(http.Header), status: http.StatusOK}
	mux.ServeHTTP(rec, req)

	headers := make(map[string]string, len(rec.header))
	for k := range rec.header {
		headers[k] = rec.header.Get(k)
	}

	return events.APIGatewayV2HTTPResponse{
		StatusCode: rec.status,
		Headers:    headers,
		Body:       rec.body.String(),
	}, nil
}

func toHTTPRequest(ctx context.Context, event events.APIGatewayV2HTTPRequest) (*http.Request, error) {
	rawURL := event.RawPath
	if event.RawQueryString != "" {
		rawURL += "?" + event.RawQueryString
	}
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, fmt.Errorf("invalid request path: %w", err)
	}

	method := event.RequestContext.HTTP.Method
	req, err := http.NewRequestWithContext(ctx, method, rawURL, strings.NewReader(event.Body))
	if err != nil {
		return nil, err
	}
	for k, v := range event.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// responseRecorder captures the mux response for the Lambda envelope.
type responseRecorder struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func (r *responseRecorder) Header() http.Header { return r.header }

func (r *responseRecorder) Write(b []byte) (int, error) { return r.body.Write(b) }

func (r *responseRecorder) WriteHeader(status int) { r.status = status }

func main() {
	lambda.Start(Handler)
}
