package profile

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Profile is the public snapshot shown next to uploaded media. Reads go
// through a short-lived cache; the row itself is owned by the account
// service and only read here.
type Profile struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url"`
	Bio         string    `json:"bio"`
	SpotCount   int       `json:"spot_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	FindByUsername(ctx context.Context, username string) (*Profile, error)
}
