package sentinel

import "errors"

// Sentinel errors for persistence facts. Record stores return these (optionally
// wrapped) and the lifecycle manager translates them into domain error codes.
//
//   - ErrNotFound: no record with the requested id
//   - ErrConflict: the stored version no longer matches the expected version
//   - ErrAlreadyUsed: a business key is already taken by another record
//   - ErrUnavailable: backing service temporarily unavailable
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrAlreadyUsed = errors.New("already used")
	ErrUnavailable = errors.New("unavailable")
)
