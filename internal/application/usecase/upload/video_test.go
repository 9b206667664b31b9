package upload

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spothop/media-service/internal/application/service"
	"github.com/spothop/media-service/pkg/apperror"
	"github.com/spothop/media-service/pkg/logger"
)

func newVideoUC(repo *fakeVideoRepo, videos *fakeVideos, store *fakeStore) *VideoUseCase {
	return NewVideoUseCase(repo, videos, store, nil, "spot-videos", 10, 60,
		func() time.Time { return testNow }, logger.NewNop())
}

func TestPrepare_ShortClipSkipsTrimmer(t *testing.T) {
	videos := &fakeVideos{dir: t.TempDir()}
	trimmer := &fakeTrimmer{}
	uc := newVideoUC(&fakeVideoRepo{}, videos, &fakeStore{})

	asset, err := uc.Prepare(context.Background(), PrepareInput{
		LocalPath:  "/tmp/clip.mov",
		DurationMs: 8000,
		Trimmer:    trimmer,
	})

	require.NoError(t, err)
	require.NotNil(t, asset)
	assert.Zero(t, trimmer.calls, "clip within the edit cap must not be trimmed")
	assert.Equal(t, []string{"/tmp/clip.mov"}, videos.compressCalls,
		"original forwarded into compression unchanged")
	assert.Equal(t, int64(8000), asset.DurationMs)
}

func TestPrepare_TrimCancelResolvesToNil(t *testing.T) {
	videos := &fakeVideos{dir: t.TempDir()}
	trimmer := &fakeTrimmer{cancel: true}
	uc := newVideoUC(&fakeVideoRepo{}, videos, &fakeStore{})

	asset, err := uc.Prepare(context.Background(), PrepareInput{
		LocalPath:  "/tmp/clip.mov",
		DurationMs: 15000,
		Trimmer:    trimmer,
	})

	require.NoError(t, err, "user cancellation is not an error")
	assert.Nil(t, asset)
	assert.Equal(t, 1, trimmer.calls)
	assert.Empty(t, videos.compressCalls, "cancelled selection must not be compressed")
}

func TestPrepare_LongClipIsTrimmedThenCompressed(t *testing.T) {
	videos := &fakeVideos{dir: t.TempDir()}
	trimmer := &fakeTrimmer{result: &service.TrimResult{Path: "/tmp/clip.mov.trimmed", DurationMs: 9500}}
	uc := newVideoUC(&fakeVideoRepo{}, videos, &fakeStore{})

	asset, err := uc.Prepare(context.Background(), PrepareInput{
		LocalPath:  "/tmp/clip.mov",
		DurationMs: 15000,
		Trimmer:    trimmer,
	})

	require.NoError(t, err)
	require.NotNil(t, asset)
	assert.Equal(t, []string{"/tmp/clip.mov.trimmed"}, videos.compressCalls)
	assert.Equal(t, int64(9500), asset.DurationMs, "metadata carries the trimmed duration")
	assert.LessOrEqual(t, asset.DurationMs, int64(10000))
}

func TestPrepare_UnknownDurationIsFatal(t *testing.T) {
	videos := &fakeVideos{dir: t.TempDir(), probeErr: errors.New("ffprobe missing")}
	uc := newVideoUC(&fakeVideoRepo{}, videos, &fakeStore{})

	_, err := uc.Prepare(context.Background(), PrepareInput{LocalPath: "/tmp/clip.mov"})

	require.Error(t, err)
	assert.Empty(t, videos.compressCalls)
}

func TestPrepare_ThumbnailFailureCleansUpCompressedFile(t *testing.T) {
	videos := &fakeVideos{dir: t.TempDir(), thumbErr: errors.New("no frame")}
	uc := newVideoUC(&fakeVideoRepo{}, videos, &fakeStore{})

	_, err := uc.Prepare(context.Background(), PrepareInput{
		LocalPath:  "/tmp/clip.mov",
		DurationMs: 8000,
	})

	require.Error(t, err)
	require.Len(t, videos.thumbCalls, 1)
	compressed := videos.thumbCalls[0]
	_, statErr := os.Stat(compressed)
	assert.True(t, os.IsNotExist(statErr), "compressed intermediate must be removed on thumbnail failure")
}

func TestPrepare_KeepsFinalArtifacts(t *testing.T) {
	videos := &fakeVideos{dir: t.TempDir()}
	uc := newVideoUC(&fakeVideoRepo{}, videos, &fakeStore{})

	asset, err := uc.Prepare(context.Background(), PrepareInput{
		LocalPath:  "/tmp/clip.mov",
		DurationMs: 8000,
	})

	require.NoError(t, err)
	for _, p := range []string{asset.LocalPath, asset.ThumbnailPath} {
		_, statErr := os.Stat(p)
		assert.NoError(t, statErr)
	}
	assert.Positive(t, asset.FileSize)
}

func TestUpload_RejectsOverHardCapBeforeNetwork(t *testing.T) {
	store := &fakeStore{}
	uc := newVideoUC(&fakeVideoRepo{}, &fakeVideos{dir: t.TempDir()}, store)

	asset := &VideoAsset{LocalPath: "/tmp/v.mp4", ThumbnailPath: "/tmp/t.jpg", FileName: "f", DurationMs: 61000}
	_, err := uc.Upload(context.Background(), asset, uuid.New(), uuid.New())

	require.Error(t, err)
	assert.Zero(t, store.count(), "cap violations must be rejected before any network call")
}

func TestUpload_RequiresAuthenticatedOwner(t *testing.T) {
	store := &fakeStore{}
	uc := newVideoUC(&fakeVideoRepo{}, &fakeVideos{dir: t.TempDir()}, store)

	asset := &VideoAsset{LocalPath: "/tmp/v.mp4", ThumbnailPath: "/tmp/t.jpg", FileName: "f", DurationMs: 9000}
	_, err := uc.Upload(context.Background(), asset, uuid.New(), uuid.Nil)

	require.Error(t, err)
	assert.Zero(t, store.count())
}

func TestUpload_ThumbnailThenVideoThenRecord(t *testing.T) {
	store := &fakeStore{}
	repo := &fakeVideoRepo{}
	uc := newVideoUC(repo, &fakeVideos{dir: t.TempDir()}, store)

	spotID := uuid.New()
	asset := &VideoAsset{
		LocalPath:     "/tmp/v.mp4",
		ThumbnailPath: "/tmp/t.jpg",
		FileName:      "clip01",
		Width:         1280,
		Height:        720,
		DurationMs:    9000,
		FileSize:      123456,
	}
	record, err := uc.Upload(context.Background(), asset, spotID, uuid.New())

	require.NoError(t, err)
	require.Len(t, store.uploads, 2)
	assert.Contains(t, store.uploads[0], "-thumb.jpg", "thumbnail uploads first")
	assert.Contains(t, store.uploads[1], "clip01.mp4")

	require.Len(t, repo.saved, 1)
	assert.Equal(t, int64(9000), record.DurationMs)
	assert.Equal(t, int64(123456), record.FileSize)
	assert.Equal(t, testNow, record.CreatedAt)
}

func TestUpload_RecordInsertFailurePropagates(t *testing.T) {
	repo := &fakeVideoRepo{saveErr: errors.New("constraint violation")}
	uc := newVideoUC(repo, &fakeVideos{dir: t.TempDir()}, &fakeStore{})

	asset := &VideoAsset{LocalPath: "/tmp/v.mp4", ThumbnailPath: "/tmp/t.jpg", FileName: "f", DurationMs: 9000}
	_, err := uc.Upload(context.Background(), asset, uuid.New(), uuid.New())

	assert.Error(t, err, "the video path never swallows failures")
}

func TestUploadWithRecovery_SuccessDiscardsPreparedFiles(t *testing.T) {
	store := &fakeStore{}
	repo := &fakeVideoRepo{}
	uc := newVideoUC(repo, &fakeVideos{dir: t.TempDir()}, store)

	videos := &fakeVideos{dir: t.TempDir()}
	asset := &VideoAsset{LocalPath: videos.newFile("v"), ThumbnailPath: videos.newFile("t"), FileName: "f", DurationMs: 9000}
	record, sess, err := uc.UploadWithRecovery(context.Background(), asset, uuid.New(), uuid.New())

	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Nil(t, sess)
	require.Len(t, repo.saved, 1)

	for _, p := range []string{asset.LocalPath, asset.ThumbnailPath} {
		_, statErr := os.Stat(p)
		assert.True(t, os.IsNotExist(statErr), "prepared files are discarded once the upload lands")
	}
}

func TestUploadWithRecovery_FailureParksSession(t *testing.T) {
	store := &fakeStore{failAll: 2}
	uc := newVideoUC(&fakeVideoRepo{}, &fakeVideos{dir: t.TempDir()}, store)

	asset := &VideoAsset{LocalPath: "/tmp/v.mp4", ThumbnailPath: "/tmp/t.jpg", FileName: "f", DurationMs: 9000}
	record, sess, err := uc.UploadWithRecovery(context.Background(), asset, uuid.New(), uuid.New())

	require.Error(t, err)
	assert.Nil(t, record)
	require.NotNil(t, sess)
	assert.Equal(t, StateAwaitingUserDecision, sess.State())
	assert.NotEmpty(t, sess.LastError())

	got, ok := uc.Sessions().Get(sess.ID)
	require.True(t, ok)
	assert.Equal(t, sess.ID, got.ID)
}

func TestDecide_RetrySucceedsAndCompletes(t *testing.T) {
	store := &fakeStore{failAll: 1} // first attempt fails, the retried one succeeds
	repo := &fakeVideoRepo{}
	uc := newVideoUC(repo, &fakeVideos{dir: t.TempDir()}, store)

	asset := &VideoAsset{
		LocalPath:     (&fakeVideos{dir: t.TempDir()}).newFile("v"),
		ThumbnailPath: "/tmp/t.jpg",
		FileName:      "f",
		DurationMs:    9000,
	}
	_, sess, err := uc.UploadWithRecovery(context.Background(), asset, uuid.New(), uuid.New())
	require.Error(t, err)

	outcome, err := uc.Decide(context.Background(), sess.ID, DecisionRetry)

	require.NoError(t, err)
	assert.Equal(t, StateCompleted, outcome.State)
	require.NotNil(t, outcome.Record)
	require.Len(t, repo.saved, 1)

	_, ok := uc.Sessions().Get(sess.ID)
	assert.False(t, ok, "completed sessions leave the registry")
}

func TestDecide_RetryFailureReturnsToAwaiting(t *testing.T) {
	store := &fakeStore{failAll: 99}
	uc := newVideoUC(&fakeVideoRepo{}, &fakeVideos{dir: t.TempDir()}, store)

	asset := &VideoAsset{LocalPath: "/tmp/v.mp4", ThumbnailPath: "/tmp/t.jpg", FileName: "f", DurationMs: 9000}
	_, sess, _ := uc.UploadWithRecovery(context.Background(), asset, uuid.New(), uuid.New())

	outcome, err := uc.Decide(context.Background(), sess.ID, DecisionRetry)

	require.Error(t, err)
	assert.Equal(t, StateAwaitingUserDecision, outcome.State)
}

func TestDecide_SkipCompletesWithoutVideo(t *testing.T) {
	store := &fakeStore{failAll: 99}
	repo := &fakeVideoRepo{}
	uc := newVideoUC(repo, &fakeVideos{dir: t.TempDir()}, store)

	videos := &fakeVideos{dir: t.TempDir()}
	asset := &VideoAsset{LocalPath: videos.newFile("v"), ThumbnailPath: videos.newFile("t"), FileName: "f", DurationMs: 9000}
	_, sess, _ := uc.UploadWithRecovery(context.Background(), asset, uuid.New(), uuid.New())

	outcome, err := uc.Decide(context.Background(), sess.ID, DecisionSkip)

	require.NoError(t, err)
	assert.Equal(t, StateCompleted, outcome.State)
	assert.Empty(t, repo.saved)

	_, statErr := os.Stat(asset.LocalPath)
	assert.True(t, os.IsNotExist(statErr), "skip discards the prepared files")

	_, ok := uc.Sessions().Get(sess.ID)
	assert.False(t, ok, "skipped sessions leave the registry")
}

func TestDecide_AbortLeavesPartialContent(t *testing.T) {
	store := &fakeStore{failAll: 99}
	uc := newVideoUC(&fakeVideoRepo{}, &fakeVideos{dir: t.TempDir()}, store)

	asset := &VideoAsset{LocalPath: "/tmp/v.mp4", ThumbnailPath: "/tmp/t.jpg", FileName: "f", DurationMs: 9000}
	_, sess, _ := uc.UploadWithRecovery(context.Background(), asset, uuid.New(), uuid.New())

	outcome, err := uc.Decide(context.Background(), sess.ID, DecisionAbort)

	require.NoError(t, err)
	assert.Equal(t, StateAbortedPartialContent, outcome.State)

	_, ok := uc.Sessions().Get(sess.ID)
	assert.False(t, ok, "aborted sessions leave the registry")
}

func TestDecide_UnknownSessionIsNotFound(t *testing.T) {
	uc := newVideoUC(&fakeVideoRepo{}, &fakeVideos{dir: t.TempDir()}, &fakeStore{})

	_, err := uc.Decide(context.Background(), uuid.New(), DecisionRetry)

	assert.Error(t, err)
}

func TestDecide_AbortAfterCompletionIsRejected(t *testing.T) {
	store := &fakeStore{failAll: 99}
	uc := newVideoUC(&fakeVideoRepo{}, &fakeVideos{dir: t.TempDir()}, store)

	videos := &fakeVideos{dir: t.TempDir()}
	asset := &VideoAsset{LocalPath: videos.newFile("v"), ThumbnailPath: videos.newFile("t"), FileName: "f", DurationMs: 9000}
	_, sess, _ := uc.UploadWithRecovery(context.Background(), asset, uuid.New(), uuid.New())

	_, err := uc.Decide(context.Background(), sess.ID, DecisionSkip)
	require.NoError(t, err)

	_, err = uc.Decide(context.Background(), sess.ID, DecisionAbort)
	require.Error(t, err, "finished sessions accept no further decisions")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}
