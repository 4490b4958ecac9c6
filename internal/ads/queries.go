package ads

import "fmt"

// GAQL queries for the reports the dashboard serves.

// accountListQuery lists direct client accounts of the MCC.
func accountListQuery() string {
	return `SELECT
  customer_client.client_customer,
  customer_client.id,
  customer_client.descriptive_name,
  customer_client.currency_code,
  customer_client.level,
  customer_client.manager
FROM customer_client
WHERE customer_client.level <= 1`
}

// campaignStatsQuery reports enabled campaigns over an inclusive date range.
func campaignStatsQuery(dr DateRange) string {
	return fmt.Sprintf(`SELECT
  campaign.id,
  campaign.name,
  metrics.impressions,
  metrics.clicks,
  metrics.cost_micros
FROM campaign
WHERE campaign.status = 'ENABLED'
  AND segments.date BETWEEN '%s' AND '%s'
ORDER BY metrics.cost_micros DESC`, dr.Start, dr.End)
}

// keywordStatsQuery reports enabled keywords over an inclusive date range.
func keywordStatsQuery(dr DateRange) string {
	return fmt.Sprintf(`SELECT
  ad_group_criterion.keyword.text,
  ad_group_criterion.keyword.match_type,
  ad_group.name,
  metrics.impressions,
  metrics.clicks,
  metrics.cost_micros
FROM keyword_view
WHERE ad_group_criterion.status = 'ENABLED'
  AND segments.date BETWEEN '%s' AND '%s'
ORDER BY metrics.cost_micros DESC`, dr.Start, dr.End)
}
