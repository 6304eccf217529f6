package api

import (
	"alcyxob/boxing-app/internal/service"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProgramHandler serves the program catalog.
type ProgramHandler struct {
	programService service.ProgramService
	logger         *zap.Logger
	maxUploadBytes int64
}

func NewProgramHandler(programService service.ProgramService, logger *zap.Logger, maxUploadBytes int64) *ProgramHandler {
	return &ProgramHandler{programService: programService, logger: logger, maxUploadBytes: maxUploadBytes}
}

// readUpload reads a multipart file, refusing anything over limit.
func readUpload(fh *multipart.FileHeader, limit int64) (service.Upload, error) {
	if fh.Size > limit {
		return service.Upload{}, fmt.Errorf("file %q exceeds the upload limit", fh.Filename)
	}
	f, err := fh.Open()
	if err != nil {
		return service.Upload{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return service.Upload{}, err
	}
	if int64(len(data)) > limit {
		return service.Upload{}, fmt.Errorf("file %q exceeds the upload limit", fh.Filename)
	}
	return service.Upload{Name: fh.Filename, Data: data}, nil
}

// bindProgramInput accepts either a JSON body or a multipart form with the JSON in "data",
// an optional "cover" image and step media in "files".
func (h *ProgramHandler) bindProgramInput(c *gin.Context) (service.ProgramInput, bool) {
	var in service.ProgramInput
	if c.ContentType() != "multipart/form-data" {
		if err := c.ShouldBindJSON(&in); err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
			return in, false
		}
		return in, true
	}

	form, err := c.MultipartForm()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return in, false
	}
	data := form.Value["data"]
	if len(data) == 0 {
		abortWithError(c, http.StatusBadRequest, "missing data field")
		return in, false
	}
	if err := json.Unmarshal([]byte(data[0]), &in); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("invalid data field: %v", err))
		return in, false
	}

	if covers := form.File["cover"]; len(covers) > 0 {
		cover, err := readUpload(covers[0], h.maxUploadBytes)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return in, false
		}
		in.Cover = &cover
	}
	in.Files = make(map[string]service.Upload, len(form.File["files"]))
	for _, fh := range form.File["files"] {
		upload, err := readUpload(fh, h.maxUploadBytes)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return in, false
		}
		in.Files[fh.Filename] = upload
	}
	return in, true
}

// CreateProgram godoc
// @Summary Create an admin program
// @Tags Programs
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} service.ProgramDetail
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Not an admin"
// @Router /programs [post]
func (h *ProgramHandler) CreateProgram(c *gin.Context) {
	in, ok := h.bindProgramInput(c)
	if !ok {
		return
	}
	detail, err := h.programService.CreateProgram(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

// CreateUserProgram godoc
// @Summary Create a program owned by the current user and enroll into it
// @Tags Programs
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} service.ProgramDetail
// @Router /programs/user [post]
func (h *ProgramHandler) CreateUserProgram(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	in, ok := h.bindProgramInput(c)
	if !ok {
		return
	}
	detail, err := h.programService.CreateUserProgram(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

// ListPrograms godoc
// @Summary All programs, newest first
// @Tags Programs
// @Produce json
// @Router /programs [get]
func (h *ProgramHandler) ListPrograms(c *gin.Context) {
	programs, err := h.programService.ListPrograms(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, programs)
}

// GetProgram godoc
// @Summary Program with days, steps and movements
// @Tags Programs
// @Produce json
// @Param id path string true "Program ID"
// @Success 200 {object} service.ProgramDetail
// @Failure 400 {object} gin.H "Malformed id"
// @Failure 404 {object} gin.H "Not found"
// @Router /programs/{id} [get]
func (h *ProgramHandler) GetProgram(c *gin.Context) {
	programID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.programService.GetProgram(c.Request.Context(), programID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *ProgramHandler) ListMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	programs, err := h.programService.ListMine(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, programs)
}

func (h *ProgramHandler) ListRegistered(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	programs, err := h.programService.ListRegistered(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, programs)
}
