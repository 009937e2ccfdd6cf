package services

import "errors"

// Shared sentinel errors used across services and HTTP mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	ErrEventNotFound = errors.New("event not found")
	ErrMatchNotFound = errors.New("match not found")
	ErrTeamNotFound  = errors.New("team not found")

	ErrValidationFailed    = errors.New("validation failed")
	ErrBracketInvalid      = errors.New("bracket structure is invalid")
	ErrInvalidLane         = errors.New("lane must be winner or loser")
	ErrCandidateNotAllowed = errors.New("target match is not a valid next-match candidate")

	ErrMatchFinished           = errors.New("match is already finished")
	ErrSetAwaitingConfirmation = errors.New("set is awaiting confirmation")
	ErrNoSetToConfirm          = errors.New("no completed set awaiting confirmation")
	ErrSetTied                 = errors.New("cannot confirm a tied set")

	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	ErrLogoUploadFailed = errors.New("logo upload failed")
)
