package constants

const (
	MsgMissingFields         = "Missing required fields"
	MsgInvalidInvitation     = "Invalid invitation token"
	MsgInvitationInactive    = "This invitation is no longer active"
	MsgInvitationExpired     = "This invitation has expired"
	MsgInvitationLimit       = "This invitation has reached its usage limit"
	MsgInvitationWrongType   = "This invitation cannot be used on this form"
	MsgEmailDomainNotAllowed = "Email domain is not allowed for this invitation"
	MsgInvitationAlreadyUsed = "This email has already used this invitation"
	MsgAccountExists         = "An account with this email already exists"
	MsgProvisioningFailed    = "Failed to create account"
)

const (
	MsgUnauthenticated  = "Unauthorized"
	MsgForbidden        = "Forbidden"
	MsgProfileNotFound  = "Profile not found"
	MsgInvalidStatus    = "Invalid status. Must be one of: accepted, declined, blocked"
	MsgInvalidStage     = "Invalid stage"
	MsgRecruitNotFound  = "Recruit not found"
	MsgInternal         = "Internal server error"
	MsgInvalidJSON      = "Invalid request body"
	MsgTooManyRequests  = "Too many requests"
	MsgNotConnected     = "You can only message accepted connections"
	MsgWrongChapter     = "You do not have access to this chapter"
	MsgInvalidPhone     = "Phone number must have 10 digits"
	MsgInvalidGradYear  = "Invalid graduation year"
	MsgConnectionExists = "A connection already exists between these users"
	MsgConnectionAnswer = "Only the recipient can accept or decline a connection request"
	MsgFeatureDisabled  = "This feature is disabled for your chapter"
)
