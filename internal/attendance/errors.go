package attendance

import "errors"

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownAction   = errors.New("unknown action")
	ErrUnknownGender   = errors.New("unknown gender")
	// ErrMalformedTable is returned when the event table does not split into
	// rows of three cells.
	ErrMalformedTable = errors.New("malformed event table")
)
