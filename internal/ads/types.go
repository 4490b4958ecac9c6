// Package ads provides a client for the Google Ads reporting API.
package ads

import (
	"encoding/json"

	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/money"
)

// DateRange is an inclusive reporting window in YYYY-MM-DD format.
type DateRange struct {
	Start string
	End   string
}

// AccountInfo describes a client account reachable under the MCC.
type AccountInfo struct {
	CustomerID      string `json:"customerId"`
	DescriptiveName string `json:"descriptiveName"`
	CurrencyCode    string `json:"currencyCode"`
	Level           int64  `json:"level"`
}

// CampaignRow is one campaign's performance over a date range.
type CampaignRow struct {
	CampaignID   string       `json:"campaignId"`
	CampaignName string       `json:"campaignName"`
	Impressions  int64        `json:"impressions"`
	Clicks       int64        `json:"clicks"`
	Cost         money.Micros `json:"costMicros"`
}

// KeywordRow is one keyword's performance over a date range.
type KeywordRow struct {
	KeywordText string       `json:"keywordText"`
	MatchType   string       `json:"matchType"`
	AdGroupName string       `json:"adGroupName"`
	Impressions int64        `json:"impressions"`
	Clicks      int64        `json:"clicks"`
	Cost        money.Micros `json:"costMicros"`
}

// --- API wire types ---
// The REST transport encodes int64 metric values as JSON strings.

type searchRequest struct {
	Query     string `json:"query"`
	PageToken string `json:"pageToken,omitempty"`
}

type searchResponse struct {
	Results       []searchResult `json:"results"`
	NextPageToken string         `json:"nextPageToken,omitempty"`
}

type searchResult struct {
	Customer         *customerNode         `json:"customer,omitempty"`
	CustomerClient   *customerClientNode   `json:"customerClient,omitempty"`
	Campaign         *campaignNode         `json:"campaign,omitempty"`
	AdGroup          *adGroupNode          `json:"adGroup,omitempty"`
	AdGroupCriterion *adGroupCriterionNode `json:"adGroupCriterion,omitempty"`
	Metrics          *metricsNode          `json:"metrics,omitempty"`
}

type customerNode struct {
	ID              json.Number `json:"id"`
	DescriptiveName string      `json:"descriptiveName"`
	CurrencyCode    string      `json:"currencyCode"`
}

type customerClientNode struct {
	ClientCustomer  string      `json:"clientCustomer"` // resource name "customers/123"
	ID              json.Number `json:"id"`
	DescriptiveName string      `json:"descriptiveName"`
	CurrencyCode    string      `json:"currencyCode"`
	Level           json.Number `json:"level"`
	Manager         bool        `json:"manager"`
}

type campaignNode struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
}

type adGroupNode struct {
	Name string `json:"name"`
}

type adGroupCriterionNode struct {
	Keyword *keywordNode `json:"keyword,omitempty"`
}

type keywordNode struct {
	Text      string `json:"text"`
	MatchType string `json:"matchType"`
}

type metricsNode struct {
	Impressions json.Number `json:"impressions"`
	Clicks      json.Number `json:"clicks"`
	CostMicros  json.Number `json:"costMicros"`
}

func (m *metricsNode) impressions() int64 {
	if m == nil {
		return 0
	}
	v, _ := m.Impressions.Int64()
	return v
}

func (m *metricsNode) clicks() int64 {
	if m == nil {
		return 0
	}
	v, _ := m.Clicks.Int64()
	return v
}

func (m *metricsNode) costMicros() money.Micros {
	if m == nil {
		return 0
	}
	v, _ := m.CostMicros.Int64()
	return money.FromMicros(v)
}
