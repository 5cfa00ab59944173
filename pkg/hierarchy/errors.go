package hierarchy

import (
	"errors"

	"github.com/asepeyo/receipts-backend/pkg/directory"
)

// ErrMissingSubject The resolution was requested without a subject email.
var ErrMissingSubject = errors.New("missing subject email")

const (
	msgMissingSubject   = "No user email was provided for the hierarchy lookup."
	msgPermissionDenied = "The directory service rejected the request. Verify that domain-wide delegation is configured for the service account, and that the delegated admin user has directory read privileges."
	msgNotFound         = "User or group not found in the directory."
	msgUnexpected       = "The directory service returned an unexpected error while resolving the hierarchy. Please try again, and contact the administrators if the error persists."
)

// UserFacingError translates a resolver error to a message suitable for end
// users. Internal details are logged, never surfaced.
func UserFacingError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingSubject):
		return msgMissingSubject
	case errors.Is(err, directory.ErrPermissionDenied):
		return msgPermissionDenied
	case errors.Is(err, directory.ErrNotFound):
		return msgNotFound
	default:
		return msgUnexpected
	}
}
