package models

import (
	"context"
	"errors"
)

var (
	ErrInvalidInput             = errors.New("invalid input")
	ErrLocationPermissionDenied = errors.New("location permission denied")
	ErrLocationUnavailable      = errors.New("location unavailable")
	ErrAddressNotFound          = errors.New("address not found")
	ErrGeocodingFailed          = errors.New("geocoding failed")
	ErrMissingCredential        = errors.New("missing provider credential")
	ErrProviderUnavailable      = errors.New("provider unavailable")
	ErrUnknownCategory          = errors.New("unknown service category")
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrInvalidInput, "invalid_input"},
	{ErrUnknownCategory, "invalid_input"},
	{ErrLocationPermissionDenied, "location_permission_denied"},
	{ErrLocationUnavailable, "location_unavailable"},
	{ErrAddressNotFound, "address_not_found"},
	{ErrGeocodingFailed, "geocoding_failed"},
	{ErrMissingCredential, "missing_credential"},
	{ErrProviderUnavailable, "provider_unavailable"},
	{context.Canceled, "canceled"},
	{context.DeadlineExceeded, "timeout"},
}

// ErrorKind maps err to a stable identifier suitable for API bodies and metric labels.
// A nil error yields "ok"; anything outside the taxonomy yields "internal".
func ErrorKind(err error) string {
	if err == nil {
		return "ok"
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "internal"
}
