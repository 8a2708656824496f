package model

// MessagesRead is pushed to a thread's room after a reader marked it read.
type MessagesRead struct {
	ConnectionID  string `json:"connectionId"`
	ReadBy        string `json:"readBy"`
	ModifiedCount int64  `json:"modifiedCount"`
	ReadAt        string `json:"readAt"`
}

// MemberJoined is pushed to a group thread's room when an applicant is approved.
type MemberJoined struct {
	ConnectionID string `json:"connectionId"`
	UserID       string `json:"userId"`
	GroupID      string `json:"groupId"`
}
