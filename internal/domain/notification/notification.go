package notification

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeNewUser           Type = "new_user"
	TypeNewReservation    Type = "new_reservation"
	TypeReservationStatus Type = "reservation_status"
)

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	Type      Type      `json:"type"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

var ErrNotFound = errors.New("notification not found")

func New(userID, message string, t Type) Notification {
	return Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Message:   message,
		Type:      t,
		IsRead:    false,
		CreatedAt: time.Now().UTC(),
	}
}
