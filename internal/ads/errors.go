package ads

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrQuotaExhausted is returned when the API reports daily quota or
// rate limits as exhausted. Callers should alert the operator rather
// than keep hammering the API.
var ErrQuotaExhausted = errors.New("google ads quota exhausted")

// APIError is a non-2xx response from the Google Ads API.
type APIError struct {
	StatusCode int
	Status     string // gRPC-style status, e.g. RESOURCE_EXHAUSTED
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("googleads: status code %d %s: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("googleads: status code %d: %s", e.StatusCode, e.Message)
}

// classifyError maps an API error to a sentinel where one applies.
func classifyError(apiErr *APIError) error {
	if apiErr.StatusCode == http.StatusTooManyRequests ||
		apiErr.Status == "RESOURCE_EXHAUSTED" ||
		strings.Contains(strings.ToLower(apiErr.Message), "quota") {
		return fmt.Errorf("%w: %s", ErrQuotaExhausted, apiErr.Error())
	}
	return apiErr
}

// errorResponse is the error envelope the REST transport returns.
type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
