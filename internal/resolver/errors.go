package resolver

import "fmt"

// ModelUnavailableError reports a failed or timed-out generation-service
// call. The call is not retried: repeated calls to a non-deterministic
// classifier have no convergence guarantee and only add latency.
type ModelUnavailableError struct {
	Err error
}

func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("generation service unavailable: %v", e.Err)
}

func (e *ModelUnavailableError) Unwrap() error { return e.Err }

// ResponseParseError reports a generation-service response with no
// parseable intent object.
type ResponseParseError struct {
	Detail string
}

func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("unparseable generation response: %s", e.Detail)
}
