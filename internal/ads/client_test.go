package ads

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/money"
	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/platform/resilience"
)

func newTestClient(t *testing.T, baseURL string) *HTTPClient {
	t.Helper()

	client, err := NewHTTPClient(HTTPClientConfig{
		BaseURL:         baseURL,
		DeveloperToken:  "dev-token",
		AccessToken:     "access-token",
		LoginCustomerID: "6542318847",
		Timeout:         5 * time.Second,
		RetryConfig: resilience.RetryConfig{
			MaxAttempts: 2,
			BaseDelay:   time.Millisecond,
			MaxDelay:    5 * time.Millisecond,
		},
	})
	if err != nil {
		t.Fatalf("NewHTTPClient failed: %v", err)
	}
	return client
}

func TestSearchCampaignStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("developer-token"); got != "dev-token" {
			t.Errorf("missing developer token header, got %q", got)
		}
		if got := r.Header.Get("login-customer-id"); got != "6542318847" {
			t.Errorf("missing login customer ID header, got %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer access-token" {
			t.Errorf("missing bearer token, got %q", got)
		}
		if r.URL.Path != "/v17/customers/5756290882/googleAds:search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"results": [
				{
					"campaign": {"id": "111", "name": "Brand NL"},
					"metrics": {"impressions": "1000", "clicks": "50", "costMicros": "12500000"}
				},
				{
					"campaign": {"id": "222", "name": "Generic NL"},
					"metrics": {"impressions": "500", "clicks": "10", "costMicros": "3000000"}
				}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	rows, err := client.SearchCampaignStats(context.Background(), "5756290882",
		DateRange{Start: "2024-06-01", End: "2024-06-07"})
	if err != nil {
		t.Fatalf("SearchCampaignStats failed: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	first := rows[0]
	if first.CampaignID != "111" || first.CampaignName != "Brand NL" {
		t.Errorf("unexpected campaign: %+v", first)
	}
	if first.Impressions != 1000 || first.Clicks != 50 {
		t.Errorf("unexpected metrics: %+v", first)
	}
	if first.Cost != money.FromMicros(12_500_000) {
		t.Errorf("expected cost 12500000 micros, got %d", first.Cost)
	}
}

func TestSearchCampaignStatsPagination(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			w.Write([]byte(`{
				"results": [{"campaign": {"id": "1", "name": "A"}, "metrics": {"impressions": "1", "clicks": "1", "costMicros": "1"}}],
				"nextPageToken": "page2"
			}`))
			return
		}
		w.Write([]byte(`{
			"results": [{"campaign": {"id": "2", "name": "B"}, "metrics": {"impressions": "2", "clicks": "2", "costMicros": "2"}}]
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	rows, err := client.SearchCampaignStats(context.Background(), "5756290882",
		DateRange{Start: "2024-06-01", End: "2024-06-07"})
	if err != nil {
		t.Fatalf("SearchCampaignStats failed: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("expected rows from both pages, got %d", len(rows))
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 requests, got %d", calls.Load())
	}
}

func TestListAccessibleAccounts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v17/customers/6542318847/googleAds:search" {
			t.Errorf("account listing should query the MCC, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"results": [
				{"customerClient": {"clientCustomer": "customers/5756290882", "id": "5756290882", "descriptiveName": "Carpets NL", "currencyCode": "EUR", "level": "1", "manager": false}},
				{"customerClient": {"clientCustomer": "customers/6542318847", "id": "6542318847", "descriptiveName": "MCC", "currencyCode": "EUR", "level": "0", "manager": true}}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	accounts, err := client.ListAccessibleAccounts(context.Background())
	if err != nil {
		t.Fatalf("ListAccessibleAccounts failed: %v", err)
	}

	if len(accounts) != 1 {
		t.Fatalf("manager accounts should be skipped, got %d accounts", len(accounts))
	}
	if accounts[0].CustomerID != "5756290882" {
		t.Errorf("expected bare customer ID, got %q", accounts[0].CustomerID)
	}
	if accounts[0].DescriptiveName != "Carpets NL" {
		t.Errorf("unexpected account: %+v", accounts[0])
	}
}

func TestSearchKeywordStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"results": [
				{
					"adGroup": {"name": "Carpets"},
					"adGroupCriterion": {"keyword": {"text": "vloerkleed", "matchType": "EXACT"}},
					"metrics": {"impressions": "300", "clicks": "30", "costMicros": "9000000"}
				}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	rows, err := client.SearchKeywordStats(context.Background(), "5756290882",
		DateRange{Start: "2024-06-01", End: "2024-06-07"})
	if err != nil {
		t.Fatalf("SearchKeywordStats failed: %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	kw := rows[0]
	if kw.KeywordText != "vloerkleed" || kw.MatchType != "EXACT" || kw.AdGroupName != "Carpets" {
		t.Errorf("unexpected keyword row: %+v", kw)
	}
}

func TestQuotaExhaustedError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"code": 429, "message": "Quota exceeded for quota metric", "status": "RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.SearchCampaignStats(context.Background(), "5756290882",
		DateRange{Start: "2024-06-01", End: "2024-06-07"})
	if !errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("expected ErrQuotaExhausted, got %v", err)
	}
}

func TestNonRetryableErrorStopsImmediately(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"code": 400, "message": "Invalid GAQL query", "status": "INVALID_ARGUMENT"}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.SearchCampaignStats(context.Background(), "5756290882",
		DateRange{Start: "2024-06-01", End: "2024-06-07"})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("invalid query should not be retried, got %d attempts", calls.Load())
	}
}

func TestNewHTTPClientValidation(t *testing.T) {
	if _, err := NewHTTPClient(HTTPClientConfig{LoginCustomerID: "1"}); err == nil {
		t.Error("expected error when developer token missing")
	}
	if _, err := NewHTTPClient(HTTPClientConfig{DeveloperToken: "t"}); err == nil {
		t.Error("expected error when login customer ID missing")
	}
}
