package model

// Request inputs validated with go-playground/validator before any store call.

type SendMessageInput struct {
	ConnectionID string `json:"connectionId" validate:"required"`
	SenderID     string `json:"senderId" validate:"required"`
	Text         string `json:"text" validate:"required,notblank"`
}

type MarkReadInput struct {
	ConnectionID string `json:"connectionId" validate:"required"`
	UserID       string `json:"userId" validate:"required"`
}

type AcceptPostInput struct {
	PostID       string `json:"postId" validate:"required"`
	AcceptedByID string `json:"acceptedById" validate:"required"`
}

type UpdateStatusInput struct {
	Status string `json:"status" validate:"required,oneof=active completed"`
}

const (
	GroupActionJoin    = "join"
	GroupActionApprove = "approve"
	GroupActionReject  = "reject"
)

type GroupActionInput struct {
	Action     string `json:"action" validate:"required,oneof=join approve reject"`
	UserID     string `json:"userId" validate:"required"`
	ApproverID string `json:"approverId" validate:"required_unless=Action join"`
}

// MarkReadResult is the response of a mark-read call.
type MarkReadResult struct {
	ModifiedCount int64 `json:"modifiedCount"`
}
