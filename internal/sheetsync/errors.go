package sheetsync

import (
	"errors"

	"google.golang.org/api/googleapi"
)

var (
	// ErrConfiguration is returned when required credential configuration is missing.
	ErrConfiguration = errors.New("credential configuration missing")

	// ErrInvalidURL is returned when a sheet URL is not a Google Sheets document URL.
	ErrInvalidURL = errors.New("invalid spreadsheet URL")

	// ErrAuthentication is returned when a token exchange or impersonation fails.
	ErrAuthentication = errors.New("authentication failed")

	// ErrRemoteAPI is returned when a read, write or insert call to the spreadsheet fails.
	ErrRemoteAPI = errors.New("spreadsheet API call failed")

	// ErrInvalidLogEntry is returned when a log entry cannot be rendered as a sheet row.
	ErrInvalidLogEntry = errors.New("invalid log entry")
)

// StatusCode returns the HTTP status of the underlying API error, or 0 if
// err does not carry one.
func StatusCode(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}
