package config

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultCountryAccounts returns the built-in country -> customer ID
// mapping for the client accounts under the MCC. Deployments can
// override it via the accounts.countries config section.
func DefaultCountryAccounts() map[string]string {
	return map[string]string{
		"NL":          "5756290882",
		"BE":          "5735473691",
		"DE":          "1946606314",
		"DK":          "8921136631",
		"ES":          "4748902087",
		"FI":          "8470338623",
		"FR (Ravann)": "2846016798",
		"FR (Tapis)":  "7539242704",
		"IT":          "8472162607",
		"NO":          "3581636329",
		"PL":          "8467590750",
		"SE":          "8463558543",
		"EU":          "6542318847",
		"UK":          "8163355443",
	}
}

// ValidateCustomerID checks that a customer ID is a bare 10-digit
// account number (no "customers/" prefix, no dashes).
func ValidateCustomerID(customerID string) error {
	if len(customerID) != 10 {
		return fmt.Errorf("customer ID must be 10 digits, got %q", customerID)
	}
	for _, r := range customerID {
		if r < '0' || r > '9' {
			return fmt.Errorf("customer ID must be numeric, got %q", customerID)
		}
	}
	return nil
}

// CustomerIDForCountry resolves a country label to its customer ID.
func (a AccountsConfig) CustomerIDForCountry(country string) (string, error) {
	id, ok := a.Countries[country]
	if !ok {
		return "", fmt.Errorf("unknown country account: %s (configured: %s)",
			country, strings.Join(a.CountryNames(), ", "))
	}
	return id, nil
}

// CountryNames returns the configured country labels in sorted order,
// for stable display and error messages.
func (a AccountsConfig) CountryNames() []string {
	names := make([]string, 0, len(a.Countries))
	for name := range a.Countries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CustomerIDs returns the configured customer IDs in country-sorted order.
func (a AccountsConfig) CustomerIDs() []string {
	ids := make([]string, 0, len(a.Countries))
	for _, name := range a.CountryNames() {
		ids = append(ids, a.Countries[name])
	}
	return ids
}
