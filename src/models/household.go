package models

import "time"

type Household struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type HouseholdMember struct {
	HouseholdID int64     `json:"household_id"`
	UserID      int64     `json:"user_id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Role        string    `json:"role"` // owner or member
	JoinedAt    time.Time `json:"joined_at"`
}

type HouseholdInvite struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	Email       string    `json:"email"`
	InvitedBy   int64     `json:"invited_by"`
	CreatedAt   time.Time `json:"created_at"`
}
