package profile

import "context"

// Repository describes profile persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, userID string) (Profile, bool, error)
	GetByEmail(ctx context.Context, email string) (Profile, bool, error)
	Create(ctx context.Context, p Profile) (Profile, error)
	Update(ctx context.Context, userID string, update Update) (Profile, error)
	Delete(ctx context.Context, userID string) (bool, error)
}
