package tracker

import "fmt"

// APIError is a structured error returned by the tracker API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" && e.Status > 0 {
		return fmt.Sprintf("tracker error %d: %s", e.Status, e.Message)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Status > 0 {
		return fmt.Sprintf("tracker error %d", e.Status)
	}
	return "tracker error"
}

// errorEnvelope is the tracker's JSON error wrapper.
type errorEnvelope struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}
