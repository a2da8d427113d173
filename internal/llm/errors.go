package llm

import "fmt"

// ServiceError is a non-2xx or transport-level failure from the
// structuring service. StatusCode is zero when the request never got a
// response.
type ServiceError struct {
	StatusCode int
	Detail     string
}

func (e *ServiceError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("structuring service: %s", e.Detail)
	}
	return fmt.Sprintf("structuring service: status %d: %s", e.StatusCode, e.Detail)
}
