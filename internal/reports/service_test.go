package reports

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/ads"
	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/money"
	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/notification"
	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/platform/cache"
	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/platform/config"
)

type fakeAdsClient struct {
	mu            sync.Mutex
	accountCalls  int
	campaignCalls map[string]int
	keywordCalls  map[string]int
	campaignRows  map[string][]ads.CampaignRow
	keywordRows   map[string][]ads.KeywordRow
	failFor       map[string]error
}

func newFakeAdsClient() *fakeAdsClient {
	return &fakeAdsClient{
		campaignCalls: make(map[string]int),
		keywordCalls:  make(map[string]int),
		campaignRows:  make(map[string][]ads.CampaignRow),
		keywordRows:   make(map[string][]ads.KeywordRow),
		failFor:       make(map[string]error),
	}
}

func (f *fakeAdsClient) ListAccessibleAccounts(ctx context.Context) ([]ads.AccountInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accountCalls++
	return []ads.AccountInfo{
		{CustomerID: "5756290882", DescriptiveName: "Carpets NL", CurrencyCode: "EUR", Level: 1},
	}, nil
}

func (f *fakeAdsClient) SearchCampaignStats(ctx context.Context, customerID string, dr ads.DateRange) ([]ads.CampaignRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.campaignCalls[customerID]++
	if err := f.failFor[customerID]; err != nil {
		return nil, err
	}
	return f.campaignRows[customerID], nil
}

func (f *fakeAdsClient) SearchKeywordStats(ctx context.Context, customerID string, dr ads.DateRange) ([]ads.KeywordRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keywordCalls[customerID]++
	if err := f.failFor[customerID]; err != nil {
		return nil, err
	}
	return f.keywordRows[customerID], nil
}

func (f *fakeAdsClient) campaignCallCount(customerID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.campaignCalls[customerID]
}

type recordingAlerts struct {
	mu     sync.Mutex
	alerts []notification.QuotaAlert
}

func (r *recordingAlerts) PublishQuotaAlert(ctx context.Context, alert notification.QuotaAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, alert)
	return nil
}

func newTestService(t *testing.T, client ads.Client, alerts notification.AlertPublisher) *Service {
	t.Helper()

	svc, err := NewService(ServiceConfig{
		Client: client,
		Cache:  cache.NewResponseCache(cache.DefaultMaxEntries),
		Accounts: config.AccountsConfig{Countries: map[string]string{
			"NL": "5756290882",
			"BE": "5735473691",
		}},
		Alerts: alerts,
	})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

var testRange = ads.DateRange{Start: "2024-06-01", End: "2024-06-07"}

func TestAccountsCaching(t *testing.T) {
	client := newFakeAdsClient()
	svc := newTestService(t, client, nil)

	env, err := svc.Accounts(context.Background())
	if err != nil {
		t.Fatalf("Accounts failed: %v", err)
	}
	if env.Cached {
		t.Error("first call should not be cached")
	}
	if len(env.Data) != 1 || env.Data[0].CustomerID != "5756290882" {
		t.Errorf("unexpected accounts: %+v", env.Data)
	}

	env, err = svc.Accounts(context.Background())
	if err != nil {
		t.Fatalf("second Accounts failed: %v", err)
	}
	if !env.Cached {
		t.Error("second call should be cached")
	}
	if client.accountCalls != 1 {
		t.Errorf("expected 1 API call, got %d", client.accountCalls)
	}
}

func TestCampaignPerformance(t *testing.T) {
	client := newFakeAdsClient()
	client.campaignRows["5756290882"] = []ads.CampaignRow{
		{CampaignID: "1", CampaignName: "Brand", Impressions: 1000, Clicks: 50, Cost: money.FromMicros(12_500_000)},
	}
	svc := newTestService(t, client, nil)

	env, err := svc.CampaignPerformance(context.Background(), "5756290882", testRange)
	if err != nil {
		t.Fatalf("CampaignPerformance failed: %v", err)
	}
	if env.Cached {
		t.Error("first call should not be cached")
	}
	if env.Data.CustomerID != "5756290882" || len(env.Data.Campaigns) != 1 {
		t.Errorf("unexpected report: %+v", env.Data)
	}

	env, _ = svc.CampaignPerformance(context.Background(), "5756290882", testRange)
	if !env.Cached {
		t.Error("second call should be cached")
	}
	if client.campaignCallCount("5756290882") != 1 {
		t.Errorf("expected 1 API call, got %d", client.campaignCallCount("5756290882"))
	}
}

func TestCampaignPerformanceRejectsBadCustomerID(t *testing.T) {
	svc := newTestService(t, newFakeAdsClient(), nil)

	if _, err := svc.CampaignPerformance(context.Background(), "123-456", testRange); err == nil {
		t.Error("expected error for malformed customer ID")
	}
}

func TestKeywordPerformance(t *testing.T) {
	client := newFakeAdsClient()
	client.keywordRows["5756290882"] = []ads.KeywordRow{
		{KeywordText: "vloerkleed", MatchType: "EXACT", Clicks: 30, Impressions: 300, Cost: money.FromMicros(9_000_000)},
	}
	svc := newTestService(t, client, nil)

	env, err := svc.KeywordPerformance(context.Background(), "5756290882", testRange)
	if err != nil {
		t.Fatalf("KeywordPerformance failed: %v", err)
	}
	if len(env.Data.Keywords) != 1 || env.Data.Keywords[0].KeywordText != "vloerkleed" {
		t.Errorf("unexpected report: %+v", env.Data)
	}
}

func TestOverviewAggregates(t *testing.T) {
	client := newFakeAdsClient()
	client.campaignRows["5756290882"] = []ads.CampaignRow{
		{CampaignID: "1", Impressions: 1000, Clicks: 100, Cost: money.FromMicros(50_000_000)},
	}
	client.campaignRows["5735473691"] = []ads.CampaignRow{
		{CampaignID: "2", Impressions: 500, Clicks: 25, Cost: money.FromMicros(10_000_000)},
		{CampaignID: "3", Impressions: 500, Clicks: 25, Cost: money.FromMicros(15_000_000)},
	}
	svc := newTestService(t, client, nil)

	env, err := svc.Overview(context.Background(), testRange)
	if err != nil {
		t.Fatalf("Overview failed: %v", err)
	}

	ov := env.Data
	if len(ov.Countries) != 2 {
		t.Fatalf("expected 2 countries, got %d", len(ov.Countries))
	}
	// Sorted by country label
	if ov.Countries[0].Country != "BE" || ov.Countries[1].Country != "NL" {
		t.Errorf("countries not sorted: %+v", ov.Countries)
	}

	be := ov.Countries[0]
	if be.Campaigns != 2 || be.Impressions != 1000 || be.Clicks != 50 {
		t.Errorf("unexpected BE summary: %+v", be)
	}
	if be.Cost != 25.0 {
		t.Errorf("expected BE cost 25.0, got %v", be.Cost)
	}

	if ov.Totals.Impressions != 2000 || ov.Totals.Clicks != 150 {
		t.Errorf("unexpected totals: %+v", ov.Totals)
	}
	if ov.Totals.Cost != 75.0 {
		t.Errorf("expected total cost 75.0, got %v", ov.Totals.Cost)
	}
	if ov.Totals.CTR != 7.5 {
		t.Errorf("expected CTR 7.5, got %v", ov.Totals.CTR)
	}
	if ov.Totals.AvgCPC != 0.5 {
		t.Errorf("expected avg CPC 0.5, got %v", ov.Totals.AvgCPC)
	}
}

func TestOverviewReusesCampaignCache(t *testing.T) {
	client := newFakeAdsClient()
	svc := newTestService(t, client, nil)

	// Warm the per-account cache first
	if _, err := svc.CampaignPerformance(context.Background(), "5756290882", testRange); err != nil {
		t.Fatalf("warmup failed: %v", err)
	}

	if _, err := svc.Overview(context.Background(), testRange); err != nil {
		t.Fatalf("Overview failed: %v", err)
	}

	if got := client.campaignCallCount("5756290882"); got != 1 {
		t.Errorf("overview should reuse per-account cache, got %d calls", got)
	}

	// Second overview hits the overview cache directly
	env, err := svc.Overview(context.Background(), testRange)
	if err != nil {
		t.Fatalf("second Overview failed: %v", err)
	}
	if !env.Cached {
		t.Error("second overview should be cached")
	}
}

func TestOverviewPartialFailure(t *testing.T) {
	client := newFakeAdsClient()
	client.campaignRows["5756290882"] = []ads.CampaignRow{{CampaignID: "1", Impressions: 10}}
	client.failFor["5735473691"] = fmt.Errorf("googleads: status code 500")
	svc := newTestService(t, client, nil)

	env, err := svc.Overview(context.Background(), testRange)
	if err != nil {
		t.Fatalf("Overview should tolerate partial failure: %v", err)
	}

	if env.Data.FailedCount != 1 {
		t.Errorf("expected 1 failed country, got %d", env.Data.FailedCount)
	}
	if len(env.Data.Countries) != 1 || env.Data.Countries[0].Country != "NL" {
		t.Errorf("unexpected countries: %+v", env.Data.Countries)
	}
}

func TestOverviewAllAccountsFailing(t *testing.T) {
	client := newFakeAdsClient()
	client.failFor["5756290882"] = errors.New("googleads: status code 500")
	client.failFor["5735473691"] = errors.New("googleads: status code 500")
	svc := newTestService(t, client, nil)

	if _, err := svc.Overview(context.Background(), testRange); err == nil {
		t.Error("expected error when all accounts fail")
	}
}

func TestQuotaAlertPublished(t *testing.T) {
	client := newFakeAdsClient()
	client.failFor["5756290882"] = fmt.Errorf("%w: daily limit", ads.ErrQuotaExhausted)
	alerts := &recordingAlerts{}
	svc := newTestService(t, client, alerts)

	_, err := svc.CampaignPerformance(context.Background(), "5756290882", testRange)
	if !errors.Is(err, ads.ErrQuotaExhausted) {
		t.Fatalf("expected quota error, got %v", err)
	}

	alerts.mu.Lock()
	defer alerts.mu.Unlock()
	if len(alerts.alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts.alerts))
	}
	alert := alerts.alerts[0]
	if alert.CustomerID != "5756290882" || alert.Operation != "campaigns" {
		t.Errorf("unexpected alert: %+v", alert)
	}
}

func TestErrorsNotCached(t *testing.T) {
	client := newFakeAdsClient()
	client.failFor["5756290882"] = errors.New("googleads: status code 500")
	svc := newTestService(t, client, nil)

	if _, err := svc.CampaignPerformance(context.Background(), "5756290882", testRange); err == nil {
		t.Fatal("expected error")
	}

	// Recovery: clear the fault and the next call refetches
	client.mu.Lock()
	delete(client.failFor, "5756290882")
	client.mu.Unlock()

	env, err := svc.CampaignPerformance(context.Background(), "5756290882", testRange)
	if err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if env.Cached {
		t.Error("recovered call should be a fresh fetch")
	}
	if client.campaignCallCount("5756290882") != 2 {
		t.Errorf("expected 2 API calls, got %d", client.campaignCallCount("5756290882"))
	}
}

func TestInvalidateCustomer(t *testing.T) {
	client := newFakeAdsClient()
	svc := newTestService(t, client, nil)

	svc.CampaignPerformance(context.Background(), "5756290882", testRange)
	svc.KeywordPerformance(context.Background(), "5756290882", testRange)
	svc.CampaignPerformance(context.Background(), "5735473691", testRange)

	removed := svc.InvalidateCustomer("5756290882")
	if removed != 2 {
		t.Errorf("expected 2 entries removed, got %d", removed)
	}

	// Invalidated account refetches, untouched account stays cached
	env, _ := svc.CampaignPerformance(context.Background(), "5756290882", testRange)
	if env.Cached {
		t.Error("invalidated report should refetch")
	}
	env, _ = svc.CampaignPerformance(context.Background(), "5735473691", testRange)
	if !env.Cached {
		t.Error("other account's report should remain cached")
	}
}

func TestClearCacheAndStats(t *testing.T) {
	client := newFakeAdsClient()
	svc := newTestService(t, client, nil)

	svc.CampaignPerformance(context.Background(), "5756290882", testRange) // miss
	svc.CampaignPerformance(context.Background(), "5756290882", testRange) // hit

	stats, hitRate := svc.CacheStats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if hitRate != 50.0 {
		t.Errorf("expected 50%% hit rate, got %v", hitRate)
	}

	svc.ClearCache()

	stats, hitRate = svc.CacheStats()
	if stats.Entries != 0 || stats.Hits != 0 || stats.Misses != 0 || hitRate != 0 {
		t.Errorf("expected zeroed stats after clear, got %+v hitRate=%v", stats, hitRate)
	}
}
