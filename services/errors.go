package services

import "errors"

// Shared errors surfaced by the service layer and mapped onto HTTP statuses
// in the handlers package.
var (
	// Generic not-found
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed     = errors.New("validation failed")
	ErrEventNameRequired    = errors.New("event name is required")
	ErrEventEndDateRequired = errors.New("event end date is required or unparseable")
	ErrFormNameRequired     = errors.New("form name is required")
	ErrFormOwnerRequired    = errors.New("form owner is required")
	ErrEventClosed          = errors.New("event is closed for changes")
	ErrRegistrationLocked   = errors.New("registration has been submitted and can no longer change")
	ErrAcademyNotAdhered    = errors.New("academy has not adhered to this event")
	ErrNoRegistrations      = errors.New("no registrations for this academy")
	ErrNothingSubmitted     = errors.New("no submitted registrations to revert")

	// Conflicts
	ErrWalkInAlreadyExists = errors.New("athlete already has a walk-in inclusion for this event")

	// Files
	ErrUnsupportedFileExtension = errors.New("file extension is not allowed")

	// Authentication and authorization
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
	ErrWrongPanelMode         = errors.New("operation not available in the current panel mode")
	ErrNoTenantSelected       = errors.New("no federation or association selected")

	// Entity-specific not-found re-exports, kept for HTTP mapping context
	ErrUserNotFound         = errors.New("user not found")
	ErrEventNotFound        = errors.New("event not found")
	ErrFormNotFound         = errors.New("form not found")
	ErrAttachmentNotFound   = errors.New("attachment not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrAcademyNotFound      = errors.New("academy not found")
	ErrAssociationNotFound  = errors.New("association not found")
	ErrAthleteNotFound      = errors.New("athlete not found")
	ErrPaymentNotFound      = errors.New("payment record not found")
)
