package newsapi

import (
	"errors"
	"fmt"
)

var ErrNetwork = errors.New("network failure")

// NetworkError describes a failed API call. StatusCode is zero when no
// response arrived; Code carries the API's error code when it sent one.
type NetworkError struct {
	Op         string
	URL        string
	StatusCode int
	Code       string
	Err        error
}

func (e *NetworkError) Error() string {
	switch {
	case e.Code != "":
		return fmt.Sprintf("%s: %s (%d %s)", e.Op, e.Err, e.StatusCode, e.Code)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: %s (%d)", e.Op, e.Err, e.StatusCode)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }
