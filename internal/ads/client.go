package ads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/platform/observability"
	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/platform/resilience"
)

const apiVersion = "v17"

// Client fetches reporting data from the Google Ads API.
type Client interface {
	// ListAccessibleAccounts lists client accounts under the MCC.
	ListAccessibleAccounts(ctx context.Context) ([]AccountInfo, error)

	// SearchCampaignStats reports enabled campaigns for one account.
	SearchCampaignStats(ctx context.Context, customerID string, dr DateRange) ([]CampaignRow, error)

	// SearchKeywordStats reports enabled keywords for one account.
	SearchKeywordStats(ctx context.Context, customerID string, dr DateRange) ([]KeywordRow, error)
}

// HTTPClient talks to the Google Ads REST transport with rate limiting,
// retries, and a circuit breaker.
type HTTPClient struct {
	client          *http.Client
	baseURL         string
	developerToken  string
	accessToken     string
	loginCustomerID string
	rateLimiter     *resilience.RateLimiter
	logger          *observability.Logger
	metrics         *observability.Metrics
	retryCfg        resilience.RetryConfig
	cb              *resilience.CircuitBreaker
}

// HTTPClientConfig holds Google Ads client configuration
type HTTPClientConfig struct {
	BaseURL         string
	DeveloperToken  string
	AccessToken     string
	LoginCustomerID string
	RateLimitRPM    int
	RateLimitBurst  int
	Timeout         time.Duration
	Logger          *observability.Logger
	Metrics         *observability.Metrics
	RetryConfig     resilience.RetryConfig
	CircuitBreaker  *resilience.CircuitBreaker
}

// NewHTTPClient creates a new Google Ads API client
func NewHTTPClient(cfg HTTPClientConfig) (*HTTPClient, error) {
	if cfg.DeveloperToken == "" {
		return nil, fmt.Errorf("developer token is required")
	}
	if cfg.LoginCustomerID == "" {
		return nil, fmt.Errorf("login customer ID is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://googleads.googleapis.com"
	}
	if cfg.RateLimitRPM == 0 {
		cfg.RateLimitRPM = 600
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 20
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryConfig.MaxAttempts == 0 {
		cfg.RetryConfig = resilience.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   500 * time.Millisecond,
			MaxDelay:    5 * time.Second,
			Jitter:      0.2,
		}
	}

	rateLimiter := resilience.NewRateLimiterFromRPM(cfg.RateLimitRPM, cfg.RateLimitBurst)

	cb := cfg.CircuitBreaker
	if cb == nil {
		cb = resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name:             "googleads",
			FailureThreshold: 5,
			SuccessThreshold: 2,
			Timeout:          30 * time.Second,
			OnStateChange: func(from, to resilience.State) {
				if cfg.Metrics != nil {
					cfg.Metrics.SetCircuitBreakerState(context.Background(), "googleads", int64(to))
				}
			},
		})
	}
	if cfg.Metrics != nil {
		cfg.Metrics.SetCircuitBreakerState(context.Background(), "googleads", cb.StateInt())
	}

	return &HTTPClient{
		client:          &http.Client{Timeout: cfg.Timeout},
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		developerToken:  cfg.DeveloperToken,
		accessToken:     cfg.AccessToken,
		loginCustomerID: cfg.LoginCustomerID,
		rateLimiter:     rateLimiter,
		logger:          cfg.Logger,
		metrics:         cfg.Metrics,
		retryCfg:        cfg.RetryConfig,
		cb:              cb,
	}, nil
}

// ListAccessibleAccounts lists client accounts under the MCC.
func (c *HTTPClient) ListAccessibleAccounts(ctx context.Context) ([]AccountInfo, error) {
	results, err := c.search(ctx, c.loginCustomerID, accountListQuery(), "customer_client")
	if err != nil {
		return nil, err
	}

	accounts := make([]AccountInfo, 0, len(results))
	for _, r := range results {
		cc := r.CustomerClient
		if cc == nil || cc.Manager {
			continue
		}
		level, _ := cc.Level.Int64()
		accounts = append(accounts, AccountInfo{
			CustomerID:      customerIDFromResource(cc.ClientCustomer),
			DescriptiveName: cc.DescriptiveName,
			CurrencyCode:    cc.CurrencyCode,
			Level:           level,
		})
	}

	if c.logger != nil {
		c.logger.Info("listed accessible accounts", "count", len(accounts))
	}

	return accounts, nil
}

// SearchCampaignStats reports enabled campaigns for one account.
func (c *HTTPClient) SearchCampaignStats(ctx context.Context, customerID string, dr DateRange) ([]CampaignRow, error) {
	results, err := c.search(ctx, customerID, campaignStatsQuery(dr), "campaign")
	if err != nil {
		return nil, err
	}

	rows := make([]CampaignRow, 0, len(results))
	for _, r := range results {
		if r.Campaign == nil {
			continue
		}
		rows = append(rows, CampaignRow{
			CampaignID:   r.Campaign.ID.String(),
			CampaignName: r.Campaign.Name,
			Impressions:  r.Metrics.impressions(),
			Clicks:       r.Metrics.clicks(),
			Cost:         r.Metrics.costMicros(),
		})
	}

	return rows, nil
}

// SearchKeywordStats reports enabled keywords for one account.
func (c *HTTPClient) SearchKeywordStats(ctx context.Context, customerID string, dr DateRange) ([]KeywordRow, error) {
	results, err := c.search(ctx, customerID, keywordStatsQuery(dr), "keyword_view")
	if err != nil {
		return nil, err
	}

	rows := make([]KeywordRow, 0, len(results))
	for _, r := range results {
		if r.AdGroupCriterion == nil || r.AdGroupCriterion.Keyword == nil {
			continue
		}
		row := KeywordRow{
			KeywordText: r.AdGroupCriterion.Keyword.Text,
			MatchType:   r.AdGroupCriterion.Keyword.MatchType,
			Impressions: r.Metrics.impressions(),
			Clicks:      r.Metrics.clicks(),
			Cost:        r.Metrics.costMicros(),
		}
		if r.AdGroup != nil {
			row.AdGroupName = r.AdGroup.Name
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// search runs a GAQL query, following pagination until exhausted.
// Each page goes through the circuit breaker and retry stack.
func (c *HTTPClient) search(ctx context.Context, customerID, query, endpoint string) ([]searchResult, error) {
	var all []searchResult
	pageToken := ""

	for {
		resp, err := resilience.ExecuteWithResult(c.cb, ctx, func(ctx context.Context) (*searchResponse, error) {
			return resilience.RetryIfWithResult(ctx, c.retryCfg, resilience.IsRetryable, func(ctx context.Context) (*searchResponse, error) {
				if err := c.rateLimiter.Wait(ctx); err != nil {
					return nil, fmt.Errorf("rate limiter error: %w", err)
				}

				start := time.Now()
				page, err := c.searchPage(ctx, customerID, query, pageToken)
				duration := time.Since(start)

				if c.metrics != nil {
					status := "success"
					if err != nil {
						status = "error"
					}
					c.metrics.RecordAdsAPICall(ctx, endpoint, status, duration)
				}

				return page, err
			})
		})
		if err != nil {
			return nil, err
		}

		all = append(all, resp.Results...)

		if resp.NextPageToken == "" {
			return all, nil
		}
		pageToken = resp.NextPageToken
	}
}

// searchPage executes a single googleAds:search request.
func (c *HTTPClient) searchPage(ctx context.Context, customerID, query, pageToken string) (*searchResponse, error) {
	body, err := json.Marshal(searchRequest{Query: query, PageToken: pageToken})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/customers/%s/googleAds:search", c.baseURL, apiVersion, customerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("developer-token", c.developerToken)
	req.Header.Set("login-customer-id", c.loginCustomerID)
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var apiResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &apiResp, nil
}

// parseError extracts the API error envelope from a non-2xx response.
func (c *HTTPClient) parseError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErr.Message = "failed to read error body"
		return classifyError(apiErr)
	}

	var envelope errorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Status = envelope.Error.Status
		apiErr.Message = envelope.Error.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}

	return classifyError(apiErr)
}

// CircuitBreakerState returns the current circuit breaker state.
func (c *HTTPClient) CircuitBreakerState() resilience.State {
	return c.cb.State()
}

// customerIDFromResource strips the "customers/" resource prefix.
func customerIDFromResource(resource string) string {
	return strings.TrimPrefix(resource, "customers/")
}
