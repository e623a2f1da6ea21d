package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrNotSignedIn = errors.New("not signed in")

// APIError is a non 2xx answer from the API.
type APIError struct {
	Status int
	Type   string
	Fields map[string]string

	MFAMethods []string
}

func (e *APIError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Type)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
