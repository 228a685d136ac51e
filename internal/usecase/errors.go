package usecase

// DomainError is a business-rule failure the caller can act on:
// not-found lookups, validation rejections. Never retried automatically.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	_, ok := err.(*DomainError)
	return ok
}

// TechnicalError is a transient infrastructure failure (store unreachable,
// write refused). The scheduler retries these by re-scanning on the next
// tick; request-path callers get them surfaced as-is.
type TechnicalError struct {
	Code    string
	Message string
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func IsTechnicalError(err error) bool {
	_, ok := err.(*TechnicalError)
	return ok
}

const (
	CodeLeadNotFound     = "LEAD_NOT_FOUND"
	CodeValidationFailed = "VALIDATION_ERROR"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
)
