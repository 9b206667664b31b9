package upload

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spothop/media-service/adapters/event"
	"github.com/spothop/media-service/internal/application/service"
	"github.com/spothop/media-service/internal/domain/media"
	"github.com/spothop/media-service/pkg/apperror"
	"github.com/spothop/media-service/pkg/logger"
	"github.com/spothop/media-service/pkg/tempfile"
)

type VideoUseCase struct {
	videoRepo media.VideoRepository
	videos    service.VideoProcessor
	store     service.ObjectStorage
	events    EventPublisher
	bucket    string

	// editCapMs triggers the interactive trim; hardCapMs is the absolute
	// reject limit checked just before upload. Two distinct product knobs.
	editCapMs int64
	hardCapMs int64

	sessions *Sessions
	clock    service.Clock
	logger   logger.Logger

	statFn func(string) (os.FileInfo, error)
}

func NewVideoUseCase(
	videoRepo media.VideoRepository,
	videos service.VideoProcessor,
	store service.ObjectStorage,
	events EventPublisher,
	bucket string,
	editCapSeconds, hardCapSeconds int,
	clock service.Clock,
	log logger.Logger,
) *VideoUseCase {
	if clock == nil {
		clock = time.Now
	}
	return &VideoUseCase{
		videoRepo: videoRepo,
		videos:    videos,
		store:     store,
		events:    events,
		bucket:    bucket,
		editCapMs: int64(editCapSeconds) * 1000,
		hardCapMs: int64(hardCapSeconds) * 1000,
		sessions:  NewSessions(),
		clock:     clock,
		logger:    log,
		statFn:    os.Stat,
	}
}

// Sessions exposes the recovery session registry for handler lookups.
func (uc *VideoUseCase) Sessions() *Sessions {
	return uc.sessions
}

// VideoAsset is a fully prepared clip: compressed, thumbnailed and
// size-validated, ready for upload.
type VideoAsset struct {
	LocalPath     string
	ThumbnailPath string
	FileName      string
	Width         int
	Height        int
	DurationMs    int64
	FileSize      int64
}

type PrepareInput struct {
	LocalPath  string
	DurationMs int64 // 0 = unknown, resolved by probing

	// Trimmer drives the interactive trim when the clip exceeds the edit
	// cap. A nil trim result means the user cancelled; the whole
	// preparation then resolves to nil, not an error.
	Trimmer service.Trimmer
}

// Prepare runs select → conditional trim → compress → thumbnail →
// validate. A nil, nil return means the user backed out (trim cancel);
// every other failure is fatal for the asset. Intermediate files are
// cleaned up whether or not preparation succeeds.
func (uc *VideoUseCase) Prepare(ctx context.Context, in PrepareInput) (*VideoAsset, error) {
	scope := tempfile.NewScope()
	defer scope.Cleanup()

	srcPath := in.LocalPath
	durationMs := in.DurationMs
	width, height := 0, 0

	if info, err := uc.videos.Probe(ctx, srcPath); err == nil {
		width, height = info.Width, info.Height
		if durationMs == 0 {
			durationMs = info.DurationMs
		}
	}
	if durationMs == 0 {
		return nil, apperror.NewInvalidInput("video duration is unknown", nil)
	}

	if durationMs > uc.editCapMs {
		trimmer := in.Trimmer
		if trimmer == nil {
			return nil, apperror.NewInvalidInput(
				fmt.Sprintf("video exceeds %ds and no trimmer was supplied", uc.editCapMs/1000), nil)
		}
		res, err := trimmer.Trim(ctx, srcPath, uc.editCapMs)
		if err != nil {
			return nil, apperror.NewInternal("video trim failed", err)
		}
		if res == nil {
			// User cancelled the trim: nothing selected, not an error.
			uc.logger.Info("video trim cancelled by user", zap.String("path", in.LocalPath))
			return nil, nil
		}
		scope.Register(res.Path)
		srcPath = res.Path
		durationMs = res.DurationMs
	}

	compressed, err := uc.videos.Compress(ctx, srcPath)
	if err != nil {
		return nil, apperror.NewInternal("video compression failed", err)
	}
	scope.Register(compressed)

	thumb, err := uc.videos.Thumbnail(ctx, compressed, 0)
	if err != nil {
		// scope cleanup removes the compressed intermediate on this path
		return nil, apperror.NewInternal("video thumbnail generation failed", err)
	}
	scope.Register(thumb)

	if info, err := uc.videos.Probe(ctx, compressed); err == nil {
		width, height = info.Width, info.Height
		if info.DurationMs > 0 {
			durationMs = info.DurationMs
		}
	}

	stat, err := uc.statFn(compressed)
	if err != nil || stat.Size() == 0 {
		return nil, apperror.NewInternal("compressed video is missing or empty", err)
	}

	scope.Keep(compressed)
	scope.Keep(thumb)

	return &VideoAsset{
		LocalPath:     compressed,
		ThumbnailPath: thumb,
		FileName:      uuid.New().String(),
		Width:         width,
		Height:        height,
		DurationMs:    durationMs,
		FileSize:      stat.Size(),
	}, nil
}

// Upload pushes a prepared asset (thumbnail first, then the clip body) and
// writes the metadata record. Unlike the photo path nothing is swallowed:
// videos are large and slow, so every failure surfaces for the caller's
// recovery decision.
func (uc *VideoUseCase) Upload(ctx context.Context, asset *VideoAsset, spotID, ownerID uuid.UUID) (*media.SpotVideo, error) {
	if ownerID == uuid.Nil {
		return nil, apperror.NewUnauthorized("authenticated user required for video upload", nil)
	}
	if asset.DurationMs > uc.hardCapMs {
		return nil, apperror.NewInvalidInput(
			fmt.Sprintf("video duration %dms exceeds the %ds limit", asset.DurationMs, uc.hardCapMs/1000), nil)
	}

	if asset.ThumbnailPath == "" {
		thumb, err := uc.videos.Thumbnail(ctx, asset.LocalPath, 0)
		if err != nil {
			return nil, apperror.NewInternal("video thumbnail generation failed", err)
		}
		asset.ThumbnailPath = thumb
	}

	paths := media.NewVideoPaths(spotID, asset.FileName)

	thumbURL, err := uc.store.Upload(ctx, uc.bucket, paths.Thumbnail, asset.ThumbnailPath, "image/jpeg")
	if err != nil {
		return nil, apperror.NewUnavailable("video thumbnail upload failed", err)
	}
	videoURL, err := uc.store.Upload(ctx, uc.bucket, paths.Video, asset.LocalPath, "video/mp4")
	if err != nil {
		return nil, apperror.NewUnavailable("video upload failed", err)
	}

	record := &media.SpotVideo{
		ID:           uuid.New(),
		SpotID:       spotID,
		OwnerID:      ownerID,
		VideoURL:     videoURL,
		ThumbnailURL: thumbURL,
		Width:        asset.Width,
		Height:       asset.Height,
		DurationMs:   asset.DurationMs,
		FileSize:     asset.FileSize,
		CreatedAt:    uc.clock().UTC(),
	}
	if err := uc.videoRepo.Save(ctx, record); err != nil {
		return nil, apperror.NewInternal("video record insert failed", err)
	}

	if uc.events != nil {
		go func() {
			payload := event.MediaEventPayload{
				EventType: event.MediaEventTypeVideoUploaded,
				MediaID:   record.ID,
				SpotID:    record.SpotID,
				OwnerID:   record.OwnerID,
				URL:       record.VideoURL,
			}
			if err := uc.events.PublishMediaEvent(context.Background(), payload); err != nil {
				uc.logger.Error("failed to publish video.uploaded event", err,
					zap.String("video_id", record.ID.String()))
			}
		}()
	}

	return record, nil
}

// UploadWithRecovery attempts the upload and, on failure, parks the asset
// in an AwaitingUserDecision session so the caller can retry, skip, or
// abort. The spot row already exists by now; that is what makes partial
// content possible.
func (uc *VideoUseCase) UploadWithRecovery(ctx context.Context, asset *VideoAsset, spotID, ownerID uuid.UUID) (*media.SpotVideo, *RecoverySession, error) {
	record, err := uc.Upload(ctx, asset, spotID, ownerID)
	if err == nil {
		uc.discardAssetFiles(asset)
		return record, nil, nil
	}

	sess := uc.sessions.Create(asset, spotID, ownerID, uc.clock)
	sess.fail(err)
	uc.logger.Warn("video upload failed, awaiting recovery decision",
		zap.String("session_id", sess.ID.String()),
		zap.String("spot_id", spotID.String()), zap.Error(err))
	return nil, sess, err
}

// Decide applies a recovery decision to a parked session.
func (uc *VideoUseCase) Decide(ctx context.Context, sessionID uuid.UUID, decision Decision) (*DecisionOutcome, error) {
	sess, ok := uc.sessions.Get(sessionID)
	if !ok {
		return nil, apperror.NewNotFound("upload session", sessionID.String())
	}

	switch decision {
	case DecisionRetry:
		if err := sess.transition(StateRetrying); err != nil {
			return nil, apperror.NewInvalidInput("session cannot retry", err)
		}
		record, err := uc.Upload(ctx, sess.Asset, sess.SpotID, sess.OwnerID)
		if err != nil {
			sess.fail(err)
			return &DecisionOutcome{State: sess.State()}, err
		}
		sess.complete()
		uc.closeSession(sess)
		return &DecisionOutcome{State: sess.State(), Record: record}, nil

	case DecisionSkip:
		if err := sess.transition(StateCompleted); err != nil {
			return nil, apperror.NewInvalidInput("session cannot be skipped", err)
		}
		uc.closeSession(sess)
		return &DecisionOutcome{State: sess.State()}, nil

	case DecisionAbort:
		if err := sess.transition(StateAbortedPartialContent); err != nil {
			return nil, apperror.NewInvalidInput("session cannot be aborted", err)
		}
		uc.closeSession(sess)
		return &DecisionOutcome{State: sess.State()}, nil

	default:
		return nil, apperror.NewInvalidInput(fmt.Sprintf("unknown decision %q", decision), nil)
	}
}

// closeSession drops a session that reached a terminal state. The registry
// only tracks uploads a user can still decide on; keeping finished sessions
// would pin their prepared assets for the life of the process.
func (uc *VideoUseCase) closeSession(sess *RecoverySession) {
	uc.discardAssetFiles(sess.Asset)
	uc.sessions.Remove(sess.ID)
}

func (uc *VideoUseCase) discardAssetFiles(asset *VideoAsset) {
	for _, p := range []string{asset.LocalPath, asset.ThumbnailPath} {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			uc.logger.Warn("failed to remove prepared video file", zap.String("path", p), zap.Error(err))
		}
	}
}
