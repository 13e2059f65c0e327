package ports

import (
	"context"
	"time"
)

// Session maps a browser session to an identity.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionStore is the only cross-request shared state besides the database.
// Get returns (nil, nil) for unknown or expired sessions.
type SessionStore interface {
	Create(ctx context.Context, userID string) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
