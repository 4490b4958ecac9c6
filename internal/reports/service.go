package reports

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/ads"
	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/money"
	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/notification"
	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/platform/cache"
	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/platform/config"
	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/platform/observability"
	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/platform/worker"
	"go.opentelemetry.io/otel/attribute"
)

// maxFanOutWorkers bounds concurrent per-account fetches for the overview.
const maxFanOutWorkers = 8

// Service serves dashboard reports, caching Google Ads responses.
type Service struct {
	client   ads.Client
	cache    *cache.ResponseCache
	accounts config.AccountsConfig
	alerts   notification.AlertPublisher
	logger   *observability.Logger
	metrics  *observability.Metrics
	tracer   observability.Tracer
}

// ServiceConfig holds report service dependencies.
type ServiceConfig struct {
	Client   ads.Client
	Cache    *cache.ResponseCache
	Accounts config.AccountsConfig
	Alerts   notification.AlertPublisher
	Logger   *observability.Logger
	Metrics  *observability.Metrics
	Tracer   observability.Tracer
}

// NewService creates a report service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("ads client is required")
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.NewResponseCache(cache.DefaultMaxEntries)
	}
	if cfg.Alerts == nil {
		cfg.Alerts = notification.NewNoOpPublisher(cfg.Logger)
	}
	if cfg.Tracer == nil {
		cfg.Tracer = observability.NewNoopTracer()
	}

	return &Service{
		client:   cfg.Client,
		cache:    cfg.Cache,
		accounts: cfg.Accounts,
		alerts:   cfg.Alerts,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		tracer:   cfg.Tracer,
	}, nil
}

// Accounts lists client accounts under the MCC, cached for an hour.
func (s *Service) Accounts(ctx context.Context) (Envelope[[]ads.AccountInfo], error) {
	ctx, span := s.tracer.StartSpan(ctx, "Service.Accounts")
	defer span.End()

	start := time.Now()
	key := cache.GenerateKey("accounts", nil)

	accounts, cached, err := cache.FetchThrough(ctx, s.cache, key, cache.TTLAccounts,
		func(ctx context.Context) ([]ads.AccountInfo, error) {
			return s.client.ListAccessibleAccounts(ctx)
		})
	if err != nil {
		span.NoticeError(err)
		s.handleFetchError(ctx, "", "accounts", err)
		return Envelope[[]ads.AccountInfo]{}, err
	}

	s.recordReport(ctx, "accounts", cached, time.Since(start))
	return Envelope[[]ads.AccountInfo]{Data: accounts, Cached: cached}, nil
}

// CampaignPerformance reports one account's enabled campaigns over a window.
// Fully historical windows cache for 24h, today-inclusive windows for 5m.
func (s *Service) CampaignPerformance(ctx context.Context, customerID string, dr ads.DateRange) (Envelope[CampaignReport], error) {
	ctx, span := s.tracer.StartSpan(ctx, "Service.CampaignPerformance",
		observability.WithAttributes(attribute.String("customer_id", customerID)))
	defer span.End()

	if err := config.ValidateCustomerID(customerID); err != nil {
		return Envelope[CampaignReport]{}, err
	}

	start := time.Now()
	key := cache.GenerateKey("campaigns", map[string]any{
		"customerId": customerID,
		"startDate":  dr.Start,
		"endDate":    dr.End,
	})
	ttl := s.cache.SmartTTL(dr.End, cache.TTLMetrics)

	report, cached, err := cache.FetchThrough(ctx, s.cache, key, ttl,
		func(ctx context.Context) (CampaignReport, error) {
			rows, err := s.client.SearchCampaignStats(ctx, customerID, dr)
			if err != nil {
				return CampaignReport{}, err
			}
			return CampaignReport{
				CustomerID: customerID,
				StartDate:  dr.Start,
				EndDate:    dr.End,
				Campaigns:  rows,
			}, nil
		})
	if err != nil {
		span.NoticeError(err)
		s.handleFetchError(ctx, customerID, "campaigns", err)
		return Envelope[CampaignReport]{}, err
	}

	s.recordReport(ctx, "campaigns", cached, time.Since(start))
	return Envelope[CampaignReport]{Data: report, Cached: cached}, nil
}

// KeywordPerformance reports one account's enabled keywords over a window.
func (s *Service) KeywordPerformance(ctx context.Context, customerID string, dr ads.DateRange) (Envelope[KeywordReport], error) {
	ctx, span := s.tracer.StartSpan(ctx, "Service.KeywordPerformance",
		observability.WithAttributes(attribute.String("customer_id", customerID)))
	defer span.End()

	if err := config.ValidateCustomerID(customerID); err != nil {
		return Envelope[KeywordReport]{}, err
	}

	start := time.Now()
	key := cache.GenerateKey("keywords", map[string]any{
		"customerId": customerID,
		"startDate":  dr.Start,
		"endDate":    dr.End,
	})
	ttl := s.cache.SmartTTL(dr.End, cache.TTLKeywords)

	report, cached, err := cache.FetchThrough(ctx, s.cache, key, ttl,
		func(ctx context.Context) (KeywordReport, error) {
			rows, err := s.client.SearchKeywordStats(ctx, customerID, dr)
			if err != nil {
				return KeywordReport{}, err
			}
			return KeywordReport{
				CustomerID: customerID,
				StartDate:  dr.Start,
				EndDate:    dr.End,
				Keywords:   rows,
			}, nil
		})
	if err != nil {
		span.NoticeError(err)
		s.handleFetchError(ctx, customerID, "keywords", err)
		return Envelope[KeywordReport]{}, err
	}

	s.recordReport(ctx, "keywords", cached, time.Since(start))
	return Envelope[KeywordReport]{Data: report, Cached: cached}, nil
}

// Overview aggregates campaign performance across all country accounts.
// Per-account fetches fan out over a worker pool and reuse the per-account
// campaign cache, so a warm overview costs zero API calls.
func (s *Service) Overview(ctx context.Context, dr ads.DateRange) (Envelope[Overview], error) {
	ctx, span := s.tracer.StartSpan(ctx, "Service.Overview")
	defer span.End()

	start := time.Now()
	key := cache.GenerateKey("overview", map[string]any{
		"startDate": dr.Start,
		"endDate":   dr.End,
	})
	ttl := s.cache.SmartTTL(dr.End, cache.TTLMetrics)

	overview, cached, err := cache.FetchThrough(ctx, s.cache, key, ttl,
		func(ctx context.Context) (Overview, error) {
			return s.buildOverview(ctx, dr)
		})
	if err != nil {
		span.NoticeError(err)
		return Envelope[Overview]{}, err
	}

	s.recordReport(ctx, "overview", cached, time.Since(start))
	return Envelope[Overview]{Data: overview, Cached: cached}, nil
}

// buildOverview fans out one campaign fetch per configured country.
func (s *Service) buildOverview(ctx context.Context, dr ads.DateRange) (Overview, error) {
	countries := s.accounts.CountryNames()
	if len(countries) == 0 {
		return Overview{}, fmt.Errorf("no country accounts configured")
	}

	workers := len(countries)
	if workers > maxFanOutWorkers {
		workers = maxFanOutWorkers
	}

	pool := worker.NewPool(ctx, workers, len(countries))
	defer pool.Close()

	jobs := make([]worker.Job, 0, len(countries))
	for _, country := range countries {
		country := country
		customerID := s.accounts.Countries[country]
		jobs = append(jobs, worker.Job{
			ID: country,
			Execute: func(ctx context.Context) (any, error) {
				env, err := s.CampaignPerformance(ctx, customerID, dr)
				if err != nil {
					return nil, err
				}
				return summarize(country, customerID, env.Data.Campaigns), nil
			},
		})
	}

	results := pool.SubmitAndWait(jobs)

	var overview Overview
	var lastErr error
	for _, res := range results {
		if res.Err != nil {
			overview.FailedCount++
			lastErr = res.Err
			if s.logger != nil {
				s.logger.LogWarn(ctx, "overview fetch failed for country",
					"country", res.JobID, "error", res.Err)
			}
			continue
		}
		overview.Countries = append(overview.Countries, res.Value.(CountrySummary))
	}

	if len(overview.Countries) == 0 {
		if lastErr != nil {
			return Overview{}, fmt.Errorf("overview failed for all accounts: %w", lastErr)
		}
		return Overview{}, fmt.Errorf("overview produced no results")
	}

	sort.Slice(overview.Countries, func(i, j int) bool {
		return overview.Countries[i].Country < overview.Countries[j].Country
	})
	overview.Totals = totals(overview.Countries)

	return overview, nil
}

// summarize folds campaign rows into a per-country summary.
func summarize(country, customerID string, rows []ads.CampaignRow) CountrySummary {
	var impressions, clicks int64
	var cost money.Micros
	for _, row := range rows {
		impressions += row.Impressions
		clicks += row.Clicks
		cost = cost.Add(row.Cost)
	}

	return CountrySummary{
		Country:     country,
		CustomerID:  customerID,
		Campaigns:   len(rows),
		Impressions: impressions,
		Clicks:      clicks,
		Cost:        cost.Units(),
		CTR:         money.CTR(clicks, impressions),
		AvgCPC:      money.AverageCPC(cost, clicks).Units(),
	}
}

// totals sums country summaries into dashboard-wide totals.
func totals(countries []CountrySummary) Totals {
	var t Totals
	var cost money.Micros
	for _, c := range countries {
		t.Impressions += c.Impressions
		t.Clicks += c.Clicks
		cost = cost.Add(money.FromUnits(c.Cost))
	}
	t.Cost = cost.Units()
	t.CTR = money.CTR(t.Clicks, t.Impressions)
	t.AvgCPC = money.AverageCPC(cost, t.Clicks).Units()
	return t
}

// InvalidateCustomer drops all cached reports for one account.
func (s *Service) InvalidateCustomer(customerID string) int {
	removed := s.cache.InvalidateCustomer(customerID)
	if s.logger != nil {
		s.logger.Info("invalidated customer cache",
			"customer_id", customerID, "entries_removed", removed)
	}
	return removed
}

// ClearCache wipes the response cache entirely.
func (s *Service) ClearCache() {
	s.cache.Clear()
	if s.logger != nil {
		s.logger.Info("cleared response cache")
	}
}

// CacheStats reports cache counters and hit rate.
func (s *Service) CacheStats() (cache.Stats, float64) {
	return s.cache.Stats(), s.cache.HitRate()
}

// RunCacheMaintenance evicts expired and surplus cache entries on a timer
// until the context is cancelled. Intended to run in its own goroutine.
func (s *Service) RunCacheMaintenance(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cache.Cleanup()
			stats := s.cache.Stats()
			if s.metrics != nil {
				s.metrics.RecordCacheGauges(ctx, stats.Entries, s.cache.HitRate())
			}
			if s.logger != nil {
				s.logger.Debug("cache maintenance pass",
					"entries", stats.Entries, "hits", stats.Hits, "misses", stats.Misses)
			}
		}
	}
}

// recordReport emits request metrics and refreshes cache gauges.
func (s *Service) recordReport(ctx context.Context, report string, cached bool, duration time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordReportRequest(ctx, report, cached, duration)
	stats := s.cache.Stats()
	s.metrics.RecordCacheGauges(ctx, stats.Entries, s.cache.HitRate())
}

// handleFetchError alerts the operator when the API quota is exhausted.
func (s *Service) handleFetchError(ctx context.Context, customerID, operation string, err error) {
	if !errors.Is(err, ads.ErrQuotaExhausted) {
		if s.metrics != nil {
			s.metrics.RecordError(ctx, operation)
		}
		return
	}

	if s.metrics != nil {
		s.metrics.RecordQuotaExhausted(ctx, customerID)
	}

	alert := notification.QuotaAlert{
		CustomerID: customerID,
		Operation:  operation,
		Message:    err.Error(),
		OccurredAt: time.Now().UTC(),
	}
	if pubErr := s.alerts.PublishQuotaAlert(ctx, alert); pubErr != nil && s.logger != nil {
		s.logger.LogError(ctx, "failed to publish quota alert", pubErr,
			"customer_id", customerID)
	}
}
