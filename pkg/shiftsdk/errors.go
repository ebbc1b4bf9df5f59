package shiftsdk

import "fmt"

// APIError is a non-2xx response decoded into the service's uniform error
// body.
type APIError struct {
	Status      int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("shiftsdk: %s (%d): %s", e.Code, e.Status, e.Description)
	}
	return fmt.Sprintf("shiftsdk: %s (%d)", e.Code, e.Status)
}
