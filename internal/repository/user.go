package repository

import (
	"context"

	"authn-simple/internal/domain"
)

// UserRepository is a persistent source of user records, read once at startup.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.UserRecord) error
	List(ctx context.Context) ([]domain.UserRecord, error)
}
