package api

import (
	"alcyxob/boxing-app/internal/service"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MovementHandler serves the movement library.
type MovementHandler struct {
	movementService service.MovementService
	logger          *zap.Logger
	maxUploadBytes  int64
}

func NewMovementHandler(movementService service.MovementService, logger *zap.Logger, maxUploadBytes int64) *MovementHandler {
	return &MovementHandler{movementService: movementService, logger: logger, maxUploadBytes: maxUploadBytes}
}

func (h *MovementHandler) ListMovements(c *gin.Context) {
	movements, err := h.movementService.ListMovements(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, movements)
}

func (h *MovementHandler) GetMovement(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	movement, err := h.movementService.GetMovement(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, movement)
}

// CreateMovement godoc
// @Summary Create a movement
// @Tags Movements
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param movement body service.MovementInput true "Movement"
// @Success 201 {object} domain.Movement
// @Failure 400 {object} gin.H "Invalid input"
// @Router /movements [post]
func (h *MovementHandler) CreateMovement(c *gin.Context) {
	var in service.MovementInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	movement, err := h.movementService.CreateMovement(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, movement)
}

func (h *MovementHandler) UpdateMovement(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var in service.MovementInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	movement, err := h.movementService.UpdateMovement(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, movement)
}

func (h *MovementHandler) DeleteMovement(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.movementService.DeleteMovement(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Movement deleted successfully"})
}

// UploadMedia godoc
// @Summary Attach an image or video to a movement
// @Tags Movements
// @Security BearerAuth
// @Accept multipart/form-data
// @Param id path string true "Movement ID"
// @Param file formData file true "Media file"
// @Success 200 {object} domain.Movement
// @Failure 400 {object} gin.H "Missing or unsupported file"
// @Router /movements/{id}/media [post]
func (h *MovementHandler) UploadMedia(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "file is required")
		return
	}
	upload, err := readUpload(fh, h.maxUploadBytes)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	movement, err := h.movementService.AddMedia(c.Request.Context(), id, upload)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, movement)
}

// MediaLink godoc
// @Summary Signed download URL for a movement media item
// @Tags Movements
// @Security BearerAuth
// @Param id path string true "Movement ID"
// @Param index path int true "Position in the media list"
// @Success 200 {object} service.MediaLink
// @Failure 404 {object} gin.H "Movement or media not found"
// @Router /movements/{id}/media/{index} [get]
func (h *MovementHandler) MediaLink(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid index")
		return
	}
	link, err := h.movementService.MediaLink(c.Request.Context(), id, index)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, link)
}
