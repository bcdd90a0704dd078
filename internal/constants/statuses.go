package constants

// ConnectionStatus mirrors connections.status
type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionDeclined ConnectionStatus = "declined"
	ConnectionBlocked  ConnectionStatus = "blocked"
)

// RecruitStage mirrors recruits.stage
type RecruitStage string

const (
	StageNew         RecruitStage = "New"
	StageContacted   RecruitStage = "Contacted"
	StageEventInvite RecruitStage = "Event Invite"
	StageBidGiven    RecruitStage = "Bid Given"
	StageAccepted    RecruitStage = "Accepted"
	StageDeclined    RecruitStage = "Declined"
)

var RecruitStages = []RecruitStage{
	StageNew, StageContacted, StageEventInvite, StageBidGiven, StageAccepted, StageDeclined,
}

func (s RecruitStage) Valid() bool {
	for _, st := range RecruitStages {
		if st == s {
			return true
		}
	}
	return false
}

// Statuses a PATCH may write. pending is only ever set on create.
var ConnectionPatchTargets = []ConnectionStatus{
	ConnectionAccepted, ConnectionDeclined, ConnectionBlocked,
}

func (s ConnectionStatus) PatchTarget() bool {
	for _, st := range ConnectionPatchTargets {
		if st == s {
			return true
		}
	}
	return false
}

// Invitation types and approval modes
const (
	InvitationTypeActiveMember = "active_member"
	InvitationTypeAlumni       = "alumni"

	ApprovalModeAuto   = "auto"
	ApprovalModeManual = "manual"
)

// Provisioning saga states
const (
	ProvisioningPending            = "pending"
	ProvisioningCompleted          = "completed"
	ProvisioningCompensated        = "compensated"
	ProvisioningCompensationFailed = "compensation_failed"
)
