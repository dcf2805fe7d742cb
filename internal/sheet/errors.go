package sheet

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork reports a transport failure: no response was received.
	ErrNetwork = errors.New("network error")
	// ErrServer reports a non-success response.
	ErrServer = errors.New("server error")
	// ErrNotFound reports an unknown topic or problem.
	ErrNotFound = errors.New("not found")
)

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api %s returned status %d", e.Path, e.StatusCode)
}

// Is lets errors.Is match ErrServer for every status and ErrNotFound for 404.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrServer:
		return true
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	default:
		return false
	}
}
