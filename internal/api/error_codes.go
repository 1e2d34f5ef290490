// internal/api/error_codes.go
package api

// API error codes
const (
	// generic
	ErrorBadRequest    = "BAD_REQUEST"
	ErrorNotFound      = "NOT_FOUND"
	ErrorInternalError = "INTERNAL_ERROR"
	ErrorConflict      = "CONFLICT"
	ErrorRateLimited   = "RATE_LIMIT_EXCEEDED"

	// scenarios
	ErrorScenarioNotFound    = "SCENARIO_NOT_FOUND"
	ErrorScenarioInvalid     = "INVALID_SCENARIO_FILE"
	ErrorScenarioFetchFailed = "SCENARIO_FETCH_FAILED"
	ErrorCatalogUnavailable  = "CATALOG_UNAVAILABLE"

	// snippets
	ErrorSnippetNotFound = "SNIPPET_NOT_FOUND"

	// sessions
	ErrorSessionNotFound = "SESSION_NOT_FOUND"
	ErrorSessionInvalid  = "SESSION_INVALID"
)
