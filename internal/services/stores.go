package services

import (
	"context"
	"time"

	"orderdesk/internal/domain"
	"orderdesk/internal/domain/models"
	"orderdesk/internal/listing"
)

// UserStore is the user persistence the services need.
// repositories.UserRepository satisfies it.
type UserStore interface {
	Create(ctx context.Context, u models.User) error
	EmailExists(ctx context.Context, email string) (bool, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	List(ctx context.Context, f listing.UserFilter, p listing.Page) ([]models.User, int, error)
	Update(ctx context.Context, id string, set []domain.Assignment, now time.Time) (models.User, error)
	Delete(ctx context.Context, id string) error
}

// OrderStore is the order persistence the services need.
// repositories.OrderRepository satisfies it.
type OrderStore interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id string) (models.Order, error)
	List(ctx context.Context, f listing.OrderFilter, p listing.Page) ([]models.Order, int, error)
	ListByOwner(ctx context.Context, userID string) ([]models.Order, error)
	Update(ctx context.Context, id string, set []domain.Assignment, now time.Time) (models.Order, error)
	Delete(ctx context.Context, id string) (models.Order, error)
}
