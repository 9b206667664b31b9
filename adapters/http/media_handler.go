package http

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spothop/media-service/adapters/ffmpeg"
	"github.com/spothop/media-service/internal/application/service"
	mediaUC "github.com/spothop/media-service/internal/application/usecase/media"
	uploadUC "github.com/spothop/media-service/internal/application/usecase/upload"
	"github.com/spothop/media-service/pkg/apperror"
	"github.com/spothop/media-service/pkg/logger"
)

type MediaHandler struct {
	photoUC       *uploadUC.PhotoUseCase
	videoUC       *uploadUC.VideoUseCase
	listUC        *mediaUC.ListSpotMediaUseCase
	deletePhotoUC *mediaUC.DeletePhotoUseCase
	deleteVideoUC *mediaUC.DeleteVideoUseCase
	trimmer       service.Trimmer
	tempDir       string
	logger        logger.Logger
}

func NewMediaHandler(
	photoUC *uploadUC.PhotoUseCase,
	videoUC *uploadUC.VideoUseCase,
	listUC *mediaUC.ListSpotMediaUseCase,
	deletePhotoUC *mediaUC.DeletePhotoUseCase,
	deleteVideoUC *mediaUC.DeleteVideoUseCase,
	trimmer service.Trimmer,
	tempDir string,
	log logger.Logger,
) *MediaHandler {
	return &MediaHandler{
		photoUC:       photoUC,
		videoUC:       videoUC,
		listUC:        listUC,
		deletePhotoUC: deletePhotoUC,
		deleteVideoUC: deleteVideoUC,
		trimmer:       trimmer,
		tempDir:       tempDir,
		logger:        log,
	}
}

// UploadPhotos ingests a batch of photos for one spot. Files come as
// repeated "files" parts; per-file dimensions arrive positionally in the
// "data" JSON array.
func (h *MediaHandler) UploadPhotos(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("userID not found in context"))
		return
	}
	spotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid spot ID", err))
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.Error(apperror.NewInvalidInput("multipart form is required", err))
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.Error(apperror.NewInvalidInput("at least one 'files' part is required", nil))
		return
	}

	var items []PhotoUploadItem
	if dataJSON := c.PostForm("data"); dataJSON != "" {
		if err := json.Unmarshal([]byte(dataJSON), &items); err != nil {
			c.Error(apperror.NewInvalidInput("'data' field is not valid JSON", err))
			return
		}
	}

	deferSave := c.PostForm("defer_save") == "true"

	inputs := make([]uploadUC.PhotoInput, 0, len(files))
	locals := make([]string, 0, len(files))
	defer func() {
		for _, p := range locals {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				h.logger.Warn("failed to remove uploaded temp file", zap.String("path", p))
			}
		}
	}()

	for i, fh := range files {
		dst := filepath.Join(h.tempDir, uuid.New().String())
		if err := c.SaveUploadedFile(fh, dst); err != nil {
			c.Error(apperror.NewInternal("failed to persist uploaded file", err))
			return
		}
		locals = append(locals, dst)

		in := uploadUC.PhotoInput{
			SpotID:    spotID,
			OwnerID:   userID,
			LocalPath: dst,
			DeferSave: deferSave,
		}
		if i < len(items) {
			in.Width = items[i].Width
			in.Height = items[i].Height
			in.Location = items[i].Location
		}
		inputs = append(inputs, in)
	}

	results, err := h.photoUC.ExecuteBatch(c.Request.Context(), inputs)
	if err != nil {
		c.Error(err)
		return
	}

	dtos := make([]PhotoDTO, 0, len(results))
	for _, r := range results {
		dtos = append(dtos, ToPhotoDTO(r.Photo, r.Saved))
	}
	c.JSON(http.StatusCreated, gin.H{"photos": dtos})
}

// UploadVideo ingests one video: prepare (probe, trim when consented,
// compress, thumbnail) then upload with the recovery protocol. A failed
// upload answers 502 with a session the client can drive via
// DecideRecovery.
func (h *MediaHandler) UploadVideo(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("userID not found in context"))
		return
	}
	spotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid spot ID", err))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.Error(apperror.NewInvalidInput("'file' is required", err))
		return
	}
	dst := filepath.Join(h.tempDir, uuid.New().String())
	if err := c.SaveUploadedFile(fileHeader, dst); err != nil {
		c.Error(apperror.NewInternal("failed to persist uploaded file", err))
		return
	}
	defer os.Remove(dst)

	var durationMs int64
	if v := c.PostForm("duration_ms"); v != "" {
		durationMs, _ = strconv.ParseInt(v, 10, 64)
	}

	// The client states up front whether the user agreed to cut the clip
	// down to the share limit; refusal turns a too-long clip into a
	// cancelled upload rather than an error.
	trimmer := h.trimmer
	if c.PostForm("trim_consent") != "true" {
		trimmer = ffmpeg.DecliningTrimmer{}
	}

	asset, err := h.videoUC.Prepare(c.Request.Context(), uploadUC.PrepareInput{
		LocalPath:  dst,
		DurationMs: durationMs,
		Trimmer:    trimmer,
	})
	if err != nil {
		c.Error(err)
		return
	}
	if asset == nil {
		c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
		return
	}

	record, sess, err := h.videoUC.UploadWithRecovery(c.Request.Context(), asset, spotID, userID)
	if err != nil {
		status := apperror.ToHTTPStatus(err)
		body := gin.H{"error": err.Error()}
		if sess != nil {
			body["session"] = RecoverySessionDTO{
				SessionID: sess.ID,
				State:     string(sess.State()),
				LastError: sess.LastError(),
			}
		}
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"video": ToVideoDTO(record)})
}

// DecideRecovery applies the user's retry/skip/abort choice to a parked
// upload session.
func (h *MediaHandler) DecideRecovery(c *gin.Context) {
	if _, ok := GetUserIDFromGinContext(c); !ok {
		c.Error(apperror.NewPermissionDenied("userID not found in context"))
		return
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid session ID", err))
		return
	}

	var req RecoveryDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}

	outcome, err := h.videoUC.Decide(c.Request.Context(), sessionID, uploadUC.Decision(req.Decision))
	if err != nil {
		if outcome != nil {
			// Retry failed: report the state so the client can ask again.
			c.JSON(apperror.ToHTTPStatus(err), gin.H{
				"error": err.Error(),
				"session": RecoverySessionDTO{
					SessionID: sessionID,
					State:     string(outcome.State),
				},
			})
			return
		}
		c.Error(err)
		return
	}

	body := gin.H{"state": string(outcome.State)}
	if outcome.Record != nil {
		body["video"] = ToVideoDTO(outcome.Record)
	}
	c.JSON(http.StatusOK, body)
}

func (h *MediaHandler) ListSpotMedia(c *gin.Context) {
	spotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid spot ID", err))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	out, err := h.listUC.Execute(c.Request.Context(), mediaUC.ListSpotMediaInput{
		SpotID: spotID, Limit: limit, Offset: offset,
	})
	if err != nil {
		c.Error(err)
		return
	}

	photos := make([]PhotoDTO, 0, len(out.Photos))
	for _, p := range out.Photos {
		photos = append(photos, ToPhotoDTO(p, true))
	}
	videos := make([]VideoDTO, 0, len(out.Videos))
	for _, v := range out.Videos {
		videos = append(videos, ToVideoDTO(v))
	}
	c.JSON(http.StatusOK, gin.H{"photos": photos, "videos": videos})
}

func (h *MediaHandler) DeletePhoto(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("userID not found in context"))
		return
	}
	photoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid photo ID", err))
		return
	}

	if err := h.deletePhotoUC.Execute(c.Request.Context(), mediaUC.DeletePhotoInput{
		OwnerID: userID, PhotoID: photoID,
	}); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Photo deleted"})
}

func (h *MediaHandler) DeleteVideo(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("userID not found in context"))
		return
	}
	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid video ID", err))
		return
	}

	if err := h.deleteVideoUC.Execute(c.Request.Context(), mediaUC.DeleteVideoInput{
		OwnerID: userID, VideoID: videoID,
	}); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Video deleted"})
}
