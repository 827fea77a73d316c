package services

// Custom errors shared by the service layer. Handlers map these onto
// HTTP statuses; anything unrecognized becomes a 500.

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

// UpstreamError wraps a failed call to the text-generation provider.
// It is the only failure allowed to abort a chat request.
type UpstreamError struct {
	Message string
	Err     error
}

func (e *UpstreamError) Error() string { return e.Message }

func (e *UpstreamError) Unwrap() error { return e.Err }

// NotConfiguredError reports a route whose provider key is missing from
// the environment. Surfaced as a 500, never a crash.
type NotConfiguredError struct{ Message string }

func (e *NotConfiguredError) Error() string { return e.Message }

// QuotaError reports that an anonymous session used up its free
// messages. Surfaced as a 403 with a login call-to-action.
type QuotaError struct{ Limit int }

func (e *QuotaError) Error() string { return "Free message limit reached" }

type RateLimitError struct{ Message string }

func (e *RateLimitError) Error() string { return e.Message }
