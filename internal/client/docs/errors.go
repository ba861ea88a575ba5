package docs

import "errors"

var (
	// ErrVersionNotBumped indicates a write whose version is not greater than the stored one
	ErrVersionNotBumped = errors.New("document version not bumped")

	// ErrInvalidValue indicates a value that is not valid JSON
	ErrInvalidValue = errors.New("document value is not valid JSON")
)
