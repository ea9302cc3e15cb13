package reservation

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

// IsValid reports whether s is one of the four known statuses.
// There is deliberately no transition table: an admin may overwrite
// any status with any other.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

type Reservation struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	BookID    string     `json:"bookId"`
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	Status    Status     `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// View is a Reservation with the requester name and book title
// resolved for responses. Cross-references stay by id in storage.
type View struct {
	Reservation
	UserName  string `json:"userName"`
	BookTitle string `json:"bookTitle"`
}

var ErrNotFound = errors.New("reservation not found")

type CreateReservationRequest struct {
	UserID    string     `json:"-"` // taken from the authenticated identity
	BookID    string     `json:"bookId" binding:"required,uuid"`
	StartDate time.Time  `json:"startDate" binding:"required"`
	EndDate   *time.Time `json:"endDate"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required,oneof=pending approved rejected completed"`
}

// NewFromCreateRequest builds a pending reservation.
// Overlapping reservations for the same book and dates are allowed.
func NewFromCreateRequest(req CreateReservationRequest) Reservation {
	now := time.Now().UTC()
	return Reservation{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		BookID:    req.BookID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
