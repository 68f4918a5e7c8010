package services

import "errors"

// Errors shared by the services and mapped to HTTP statuses by the handlers.
var (
	ErrNotFound = errors.New("requested resource not found")

	// validation and business rules
	ErrValidationFailed  = errors.New("validation failed")
	ErrGameNameRequired  = errors.New("game name is required")
	ErrInvalidFormat     = errors.New("invalid game format")
	ErrNoPlayers         = errors.New("game needs at least one player")
	ErrDuplicatePlayer   = errors.New("duplicate player id in roster")
	ErrPlayerNameMissing = errors.New("player name is required")
	ErrByeMatch          = errors.New("bye matches do not take a score")
	ErrMatchNotReady     = errors.New("match participants are not decided yet")
	ErrDrawNotAllowed    = errors.New("knockout matches cannot end in a draw")
	ErrFormatMismatch    = errors.New("operation is not available for this game format")
	ErrInvalidPIN        = errors.New("host pin must be 4 to 12 characters")

	// conflicts
	ErrScheduleLocked = errors.New("schedule cannot be regenerated once results exist")
	ErrGameCompleted  = errors.New("game is already completed")

	// authentication and authorization
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for this game host")

	// lookups
	ErrGameNotFound   = errors.New("game not found")
	ErrMatchNotFound  = errors.New("match not found")
	ErrPlayerNotFound = errors.New("player not found")
)
