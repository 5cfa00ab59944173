package directory

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

var (
	// ErrNotFound The requested user or group does not exist in the directory.
	ErrNotFound = errors.New("user or group not found")

	// ErrPermissionDenied The directory rejected the request. Usually a sign
	// that domain-wide delegation is not set up for the service account.
	ErrPermissionDenied = errors.New("directory permission denied")
)

func translateError(err error) error {
	googleError := &googleapi.Error{}
	if !errors.As(err, &googleError) {
		return err
	}

	switch googleError.Code {
	case http.StatusForbidden:
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	default:
		return err
	}
}
