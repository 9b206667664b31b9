package profile

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spothop/media-service/internal/application/service"
	"github.com/spothop/media-service/internal/domain/profile"
	"github.com/spothop/media-service/pkg/logger"
)

// SnapshotTTL bounds how stale a profile shown next to media may be.
const SnapshotTTL = 5 * time.Minute

// GetProfileUseCase reads profiles through an injected cache. Cache
// failures degrade to a DB read; they never fail the request.
type GetProfileUseCase struct {
	profileRepo profile.Repository
	cache       service.Cache
	ttl         time.Duration
	logger      logger.Logger
}

func NewGetProfileUseCase(repo profile.Repository, cache service.Cache, log logger.Logger) *GetProfileUseCase {
	return &GetProfileUseCase{profileRepo: repo, cache: cache, ttl: SnapshotTTL, logger: log}
}

type GetProfileInput struct {
	ProfileID uuid.UUID
}

type GetProfileOutput struct {
	Profile *profile.Profile `json:"profile"`
	Cached  bool             `json:"-"`
}

func cacheKey(id uuid.UUID) string {
	return "profile:" + id.String()
}

func (uc *GetProfileUseCase) Execute(ctx context.Context, in GetProfileInput) (*GetProfileOutput, error) {
	key := cacheKey(in.ProfileID)

	if uc.cache != nil {
		if raw, ok, err := uc.cache.Get(ctx, key); err != nil {
			uc.logger.Warn("profile cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			p := &profile.Profile{}
			if err := json.Unmarshal(raw, p); err == nil {
				return &GetProfileOutput{Profile: p, Cached: true}, nil
			}
			// Corrupt entry: drop it and fall through to the DB.
			_ = uc.cache.Delete(ctx, key)
		}
	}

	p, err := uc.profileRepo.FindByID(ctx, in.ProfileID)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if raw, err := json.Marshal(p); err == nil {
			if err := uc.cache.Set(ctx, key, raw, uc.ttl); err != nil {
				uc.logger.Warn("profile cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return &GetProfileOutput{Profile: p}, nil
}

// Invalidate drops the cached snapshot after an out-of-band profile change.
func (uc *GetProfileUseCase) Invalidate(ctx context.Context, id uuid.UUID) error {
	if uc.cache == nil {
		return nil
	}
	return uc.cache.Delete(ctx, cacheKey(id))
}
