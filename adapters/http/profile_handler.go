package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	profileUC "github.com/spothop/media-service/internal/application/usecase/profile"
	"github.com/spothop/media-service/pkg/apperror"
	"github.com/spothop/media-service/pkg/logger"
)

type ProfileHandler struct {
	getProfileUC *profileUC.GetProfileUseCase
	logger       logger.Logger
}

func NewProfileHandler(getProfileUC *profileUC.GetProfileUseCase, log logger.Logger) *ProfileHandler {
	return &ProfileHandler{getProfileUC: getProfileUC, logger: log}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid profile ID", err))
		return
	}

	out, err := h.getProfileUC.Execute(c.Request.Context(), profileUC.GetProfileInput{ProfileID: profileID})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": ToProfileDTO(out.Profile)})
}

func (h *ProfileHandler) GetOwnProfile(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("userID not found in context"))
		return
	}

	out, err := h.getProfileUC.Execute(c.Request.Context(), profileUC.GetProfileInput{ProfileID: userID})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": ToProfileDTO(out.Profile)})
}
