package store

import (
	"context"
	"errors"

	"github.com/devotionalai/api/internal/model"
)

var (
	// ErrNotFound is returned when a record does not exist or is not
	// visible to the requesting owner.
	ErrNotFound = errors.New("record not found")

	// ErrQuotaExceeded is returned when a user's generation counter has
	// reached their plan limit.
	ErrQuotaExceeded = errors.New("generation limit reached")

	// ErrInvalidTransition is returned when a status update would move a
	// generation backwards in its lifecycle.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrEmailTaken is returned when registering an already-used email.
	ErrEmailTaken = errors.New("email already registered")
)

// GenerationStore persists generation records. CreateGeneration increments the
// owner's counter in the same transaction as the insert; the guarded Mark*
// methods enforce the pending → processing → completed|failed order.
type GenerationStore interface {
	CreateGeneration(ctx context.Context, userID string, params model.GenerationParams) (*model.Generation, error)
	GetGeneration(ctx context.Context, id, userID string) (*model.Generation, error)
	// GetGenerationAny fetches without an owner filter. Worker-side only.
	GetGenerationAny(ctx context.Context, id string) (*model.Generation, error)
	ListGenerations(ctx context.Context, userID string, offset, limit int) ([]*model.Generation, error)
	MarkProcessing(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id string, result model.GenerationResult) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
}

// UserStore persists user accounts and their quota counters.
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash, fullName string, plan model.Plan, limit int) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// Store combines both record stores behind one backing database.
type Store interface {
	GenerationStore
	UserStore
}
