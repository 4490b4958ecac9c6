// Package reports assembles cached dashboard reports from Google Ads data.
package reports

import "github.com/jaspervdheide/google-ads-dashboard-sub001/internal/ads"

// Envelope wraps a report payload with cache provenance.
type Envelope[T any] struct {
	Data   T    `json:"data"`
	Cached bool `json:"cached"`
}

// CountrySummary aggregates one country account's campaign metrics.
type CountrySummary struct {
	Country     string  `json:"country"`
	CustomerID  string  `json:"customerId"`
	Campaigns   int     `json:"campaigns"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Cost        float64 `json:"cost"`
	CTR         float64 `json:"ctr"`
	AvgCPC      float64 `json:"avgCpc"`
}

// Overview is the cross-account dashboard summary.
type Overview struct {
	Countries   []CountrySummary `json:"countries"`
	Totals      Totals           `json:"totals"`
	FailedCount int              `json:"failedCount,omitempty"`
}

// Totals sums metrics across all countries in an overview.
type Totals struct {
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Cost        float64 `json:"cost"`
	CTR         float64 `json:"ctr"`
	AvgCPC      float64 `json:"avgCpc"`
}

// CampaignReport is the per-account campaign performance payload.
type CampaignReport struct {
	CustomerID string            `json:"customerId"`
	StartDate  string            `json:"startDate"`
	EndDate    string            `json:"endDate"`
	Campaigns  []ads.CampaignRow `json:"campaigns"`
}

// KeywordReport is the per-account keyword performance payload.
type KeywordReport struct {
	CustomerID string           `json:"customerId"`
	StartDate  string           `json:"startDate"`
	EndDate    string           `json:"endDate"`
	Keywords   []ads.KeywordRow `json:"keywords"`
}
