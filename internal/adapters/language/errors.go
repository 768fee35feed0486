package language

import "fmt"

// ConnectionError means the language service could not be reached.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("language service unreachable at %s: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ServiceError is an error status returned by the language service.
type ServiceError struct {
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("language service returned %d: %s", e.StatusCode, e.Body)
}

// ParseError means the service answered but the answer was not a scenario.
type ParseError struct {
	Body string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse language service response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
