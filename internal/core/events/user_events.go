package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeUserCreated     = "user.created"
	EventTypeUserDeleted     = "user.deleted"
	EventTypeUserLoggedIn    = "user.logged_in"
	EventTypePasswordChanged = "user.password_changed"
)

type UserCreatedEvent struct {
	BaseEvent
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	RoleID int64  `json:"role_id"`
}

func NewUserCreatedEvent(userID int64, email string, roleID int64) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserCreated,
			Timestamp: time.Now(),
		},
		UserID: userID,
		Email:  email,
		RoleID: roleID,
	}
}

type UserDeletedEvent struct {
	BaseEvent
	UserID int64 `json:"user_id"`
}

func NewUserDeletedEvent(userID int64) *UserDeletedEvent {
	return &UserDeletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserDeleted,
			Timestamp: time.Now(),
		},
		UserID: userID,
	}
}

type UserLoggedInEvent struct {
	BaseEvent
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

func NewUserLoggedInEvent(userID int64, email string) *UserLoggedInEvent {
	return &UserLoggedInEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserLoggedIn,
			Timestamp: time.Now(),
		},
		UserID: userID,
		Email:  email,
	}
}

type PasswordChangedEvent struct {
	BaseEvent
	UserID int64 `json:"user_id"`
}

func NewPasswordChangedEvent(userID int64) *PasswordChangedEvent {
	return &PasswordChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePasswordChanged,
			Timestamp: time.Now(),
		},
		UserID: userID,
	}
}
