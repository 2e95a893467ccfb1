package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Identity errors
	ErrIdentityNotFound = fmt.Errorf("identity not found")
	ErrIdentityStore    = fmt.Errorf("identity store failure")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrMalformedResponse  = fmt.Errorf("malformed response")
	ErrTranslateFailed    = fmt.Errorf("translation failed")
	ErrExportFailed       = fmt.Errorf("export failed")

	// Session errors
	ErrNoTranslations = fmt.Errorf("no translated chapters")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrInvalidRange    = fmt.Errorf("invalid chapter range")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
