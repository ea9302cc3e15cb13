package book

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Book struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	PublicationDate time.Time `json:"publicationDate"`
	Description     string    `json:"description,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("book not found")

type CreateBookRequest struct {
	Title           string    `json:"title" binding:"required,min=1,max=200"`
	Author          string    `json:"author" binding:"required,min=1,max=120"`
	PublicationDate time.Time `json:"publicationDate" binding:"required"`
	Description     string    `json:"description" binding:"omitempty,max=2000"`
}

// a patch payload, absent fields keep their stored value.
type UpdateBookRequest struct {
	Title           *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Author          *string    `json:"author" binding:"omitempty,min=1,max=120"`
	PublicationDate *time.Time `json:"publicationDate"`
	Description     *string    `json:"description" binding:"omitempty,max=2000"`
}

func NewFromCreateRequest(req CreateBookRequest) Book {
	now := time.Now().UTC()
	return Book{
		ID:              uuid.NewString(),
		Title:           req.Title,
		Author:          req.Author,
		PublicationDate: req.PublicationDate,
		Description:     req.Description,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
