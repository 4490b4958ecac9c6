package cache

import "time"

// Baseline TTL tiers for report payloads. Callers pick the tier that
// matches the endpoint and, for date-windowed reports, pass it through
// SmartTTL so fully historical windows are cached far longer.
const (
	// TTLHistoricalPast applies to windows that ended before today; the
	// ads API finalizes daily stats, so those rows cannot change.
	TTLHistoricalPast = 24 * time.Hour

	// TTLHistoricalToday applies when the window still includes today,
	// whose numbers are still accumulating.
	TTLHistoricalToday = 5 * time.Minute

	TTLEntityList = 15 * time.Minute
	TTLMetrics    = 5 * time.Minute
	TTLAccounts   = time.Hour
	TTLKeywords   = 15 * time.Minute
	TTLAds        = 15 * time.Minute
)

// dateLayout is the calendar-date format used in report windows.
const dateLayout = "2006-01-02"

// SmartTTL selects the TTL for a report whose date window ends on
// windowEnd (a "2006-01-02" date). Windows that ended strictly before
// today are immutable and get TTLHistoricalPast; windows touching today
// or the future keep the caller's baseline. An unparseable date is
// treated as today-inclusive so the data is refreshed conservatively.
func (c *ResponseCache) SmartTTL(windowEnd string, base time.Duration) time.Duration {
	end, err := time.ParseInLocation(dateLayout, windowEnd, time.Local)
	if err != nil {
		return base
	}

	now := c.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if end.Before(today) {
		return TTLHistoricalPast
	}
	return base
}
