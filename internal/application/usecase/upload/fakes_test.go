package upload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/spothop/media-service/internal/application/service"
	"github.com/spothop/media-service/internal/domain/media"
	"github.com/spothop/media-service/internal/domain/spot"
)

type fakeSpotRepo struct {
	exists    bool
	existsErr error
	checked   []uuid.UUID
}

func (f *fakeSpotRepo) FindByID(context.Context, uuid.UUID) (*spot.Spot, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeSpotRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	f.checked = append(f.checked, id)
	return f.exists, f.existsErr
}

func (f *fakeSpotRepo) RefreshMediaCounts(context.Context, uuid.UUID) error { return nil }
func (f *fakeSpotRepo) SetCoverURL(context.Context, uuid.UUID, string) error {
	return nil
}

type fakePhotoRepo struct {
	mu      sync.Mutex
	saved   []*media.SpotPhoto
	saveErr error
}

func (f *fakePhotoRepo) Save(_ context.Context, p *media.SpotPhoto) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, p)
	return nil
}

func (f *fakePhotoRepo) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }
func (f *fakePhotoRepo) FindByID(context.Context, uuid.UUID) (*media.SpotPhoto, error) {
	return nil, errors.New("not implemented")
}
func (f *fakePhotoRepo) ListBySpot(context.Context, uuid.UUID, int, int) ([]*media.SpotPhoto, error) {
	return nil, nil
}

type fakeVideoRepo struct {
	saved   []*media.SpotVideo
	saveErr error
}

func (f *fakeVideoRepo) Save(_ context.Context, v *media.SpotVideo) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, v)
	return nil
}

func (f *fakeVideoRepo) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }
func (f *fakeVideoRepo) FindByID(context.Context, uuid.UUID) (*media.SpotVideo, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeVideoRepo) ListBySpot(context.Context, uuid.UUID, int, int) ([]*media.SpotVideo, error) {
	return nil, nil
}

type fakeImages struct {
	mu            sync.Mutex
	optimizeCalls []string
	thumbErr      error
}

func (f *fakeImages) Optimize(_ context.Context, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.optimizeCalls = append(f.optimizeCalls, path)
	return path + ".opt", nil
}

func (f *fakeImages) Thumbnails(_ context.Context, path string) (string, string, error) {
	if f.thumbErr != nil {
		return "", "", f.thumbErr
	}
	return path + ".small", path + ".large", nil
}

// fakeStore records uploads in call order and can fail selected paths or
// fail everything a number of times.
type fakeStore struct {
	mu        sync.Mutex
	uploads   []string // "bucket/path"
	failLocal map[string]error
	failAll   int
}

func (f *fakeStore) Upload(_ context.Context, bucket, path, localPath, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll > 0 {
		f.failAll--
		return "", errors.New("storage unavailable")
	}
	if err, ok := f.failLocal[localPath]; ok {
		return "", err
	}
	f.uploads = append(f.uploads, bucket+"/"+path)
	return "https://cdn.test/" + bucket + "/" + path, nil
}

func (f *fakeStore) Remove(context.Context, string, string) error { return nil }

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

// fakeVideos writes real temp files so size validation and scope cleanup
// are observable.
type fakeVideos struct {
	dir string

	compressErr error
	thumbErr    error
	probeErr    error
	probeInfo   map[string]*service.MediaInfo

	compressCalls []string
	thumbCalls    []string
}

func (f *fakeVideos) newFile(name string) string {
	path := filepath.Join(f.dir, fmt.Sprintf("%s-%s", name, uuid.New().String()[:8]))
	_ = os.WriteFile(path, []byte("bytes"), 0o644)
	return path
}

func (f *fakeVideos) Compress(_ context.Context, path string) (string, error) {
	f.compressCalls = append(f.compressCalls, path)
	if f.compressErr != nil {
		return "", f.compressErr
	}
	return f.newFile("compressed"), nil
}

func (f *fakeVideos) Thumbnail(_ context.Context, path string, _ int64) (string, error) {
	f.thumbCalls = append(f.thumbCalls, path)
	if f.thumbErr != nil {
		return "", f.thumbErr
	}
	return f.newFile("thumb"), nil
}

func (f *fakeVideos) Probe(_ context.Context, path string) (*service.MediaInfo, error) {
	if f.probeErr != nil {
		return nil, f.probeErr
	}
	if info, ok := f.probeInfo[path]; ok {
		return info, nil
	}
	return &service.MediaInfo{Width: 1280, Height: 720, DurationMs: 0}, nil
}

type fakeTrimmer struct {
	calls  int
	cancel bool
	result *service.TrimResult
	err    error
}

func (f *fakeTrimmer) Trim(_ context.Context, path string, maxMs int64) (*service.TrimResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.cancel {
		return nil, nil
	}
	if f.result != nil {
		return f.result, nil
	}
	return &service.TrimResult{Path: path + ".trimmed", DurationMs: maxMs}, nil
}
