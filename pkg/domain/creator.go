package domain

import "time"

// CreatorRequest is a user's pending application for the creator role.
type CreatorRequest struct {
	ID        int       `json:"id"`
	UserID    string    `json:"userId"`
	MAAddress string    `json:"maAddress"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// ResponseType is an admin's decision on a creator request.
type ResponseType string

// The two decisions the approve endpoint accepts.
const (
	ResponseApprove ResponseType = "Approve"
	ResponseReject  ResponseType = "Reject"
)
