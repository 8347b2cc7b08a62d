package domain

import (
	"errors"
	"time"
)

var (
	// ErrCannotRequestOwnBook requester owns the book
	ErrCannotRequestOwnBook = errors.New("cannot request own book")
	// ErrAlreadyRequested requester already has a pending request for the book
	ErrAlreadyRequested = errors.New("book already requested")
	// ErrRequestNotFound request id does not exist
	ErrRequestNotFound = errors.New("book request not found")
	// ErrNotAllowed actor may not move the request to that status
	ErrNotAllowed = errors.New("not allowed to change this request")
	// ErrInvalidTransition request is no longer pending or the status is unknown
	ErrInvalidTransition = errors.New("invalid request status change")
	// ErrBookUnavailable book is no longer offered
	ErrBookUnavailable = errors.New("book is not available")
)

// RequestStatus book_requests.status
type RequestStatus string

const (
	// RequestPending waiting for the owner
	RequestPending RequestStatus = "pending"
	// RequestAccepted owner accepted
	RequestAccepted RequestStatus = "accepted"
	// RequestDeclined owner declined
	RequestDeclined RequestStatus = "declined"
	// RequestCancelled requester withdrew
	RequestCancelled RequestStatus = "cancelled"
)

// BookRequest row of book_requests
type BookRequest struct {
	ID          string        `gorm:"primaryKey;type:uuid" json:"id"`
	BookID      string        `gorm:"type:uuid;not null" json:"book_id"`
	RequesterID string        `gorm:"type:uuid;not null" json:"requester_id"`
	OwnerID     string        `gorm:"type:uuid;not null" json:"owner_id"`
	Message     string        `json:"message"`
	Status      RequestStatus `gorm:"not null" json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// TableName gorm table
func (BookRequest) TableName() string {
	return "book_requests"
}

// CanTransition reports whether actorID may move r to next.
// Only pending requests change; the owner accepts or declines, the requester cancels.
func (r BookRequest) CanTransition(actorID string, next RequestStatus) error {
	if r.Status != RequestPending {
		return ErrInvalidTransition
	}
	switch next {
	case RequestAccepted, RequestDeclined:
		if actorID != r.OwnerID {
			return ErrNotAllowed
		}
	case RequestCancelled:
		if actorID != r.RequesterID {
			return ErrNotAllowed
		}
	default:
		return ErrInvalidTransition
	}
	return nil
}

// Counterpart the other side of the request from actorID
func (r BookRequest) Counterpart(actorID string) string {
	if actorID == r.OwnerID {
		return r.RequesterID
	}
	return r.OwnerID
}

// CreateRequestReq request book body
type CreateRequestReq struct {
	BookID  string `json:"book_id" conform:"trim" validate:"required,uuid"`
	Message string `json:"message" conform:"trim" validate:"max=1000"`
}

// UpdateRequestReq change request status body
type UpdateRequestReq struct {
	Status RequestStatus `json:"status" conform:"trim,lower" validate:"required,oneof=accepted declined cancelled"`
}
