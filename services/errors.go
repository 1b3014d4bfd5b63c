package services

import "errors"

// Shared errors used across services and the HTTP mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rule errors
	ErrValidationFailed  = errors.New("validation failed")
	ErrInvalidCredential = errors.New("invalid email or password")
	ErrInvalidState      = errors.New("entity is not in a state that allows this operation")
	ErrInvalidAction     = errors.New("unknown decision action")
	ErrAccountInactive   = errors.New("account is not active")
	ErrTutorRequired     = errors.New("tutor information is required for minors")

	// Conflict errors
	ErrAdminEmailConflict         = errors.New("email belongs to an administrator account")
	ErrAlreadyMember              = errors.New("already a member of this club")
	ErrDuplicateActiveScholarship = errors.New("player already holds an active scholarship")
	ErrDuplicateCampaign          = errors.New("a campaign for this year already exists")
	ErrTransferPending            = errors.New("player already has an open transfer request")

	// Authentication and authorization errors
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrForbidden    = errors.New("operation not allowed for the current user")

	// Entity errors
	ErrUserNotFound        = errors.New("user not found")
	ErrClubNotFound        = errors.New("club not found")
	ErrCoachNotFound       = errors.New("coach not found")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrScholarshipNotFound = errors.New("scholarship not found")
	ErrTransferNotFound    = errors.New("transfer request not found")
	ErrCampaignNotFound    = errors.New("campaign not found")
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrJoinRequestNotFound = errors.New("join request not found")

	// Campaign fan-out errors
	ErrCampaignPartial = errors.New("campaign created with partial ticket emission")
)
