package api

import (
	"alcyxob/boxing-app/internal/domain"
	"alcyxob/boxing-app/internal/service"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ProgressHandler exposes the progress tracker under /users.
type ProgressHandler struct {
	progressService service.ProgressService
	logger          *zap.Logger
}

func NewProgressHandler(progressService service.ProgressService, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{progressService: progressService, logger: logger}
}

type CompleteDayRequest struct {
	ProgramID         string `json:"programId" binding:"required"`
	DayID             string `json:"dayId" binding:"required"`
	LastCompletedStep int    `json:"lastCompletedStep" binding:"min=0"`
}

type CompleteDayResponse struct {
	Message string `json:"message"`
	*service.CompleteDayResult
}

// Enroll godoc
// @Summary Register the current user for a program
// @Tags Progress
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Success 200 {object} gin.H
// @Failure 400 {object} gin.H "Already registered"
// @Failure 404 {object} gin.H "Program not found or has no days"
// @Router /users/{programId}/register [post]
func (h *ProgressHandler) Enroll(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	programID, ok := objectIDParam(c, "programId")
	if !ok {
		return
	}

	progress, err := h.progressService.Enroll(c.Request.Context(), userID, programID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "Successfully registered for the program",
		"programId": progress.ProgramID,
		"totalDays": len(progress.Days),
	})
}

// IsRegistered godoc
// @Summary Whether the current user is enrolled in a program
// @Tags Progress
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Success 200 {object} gin.H
// @Router /users/{programId}/is-registered [get]
func (h *ProgressHandler) IsRegistered(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	programID, ok := objectIDParam(c, "programId")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"isRegistered": h.progressService.IsRegistered(c.Request.Context(), userID, programID)})
}

// completeDay returns a handler completing a day in the enrollment collection selected by kind.
func (h *ProgressHandler) completeDay(kind domain.EnrollmentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req CompleteDayRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
			return
		}
		programID, err := primitive.ObjectIDFromHex(req.ProgramID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "invalid programId")
			return
		}
		dayID, err := primitive.ObjectIDFromHex(req.DayID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "invalid dayId")
			return
		}

		result, err := h.progressService.CompleteDay(c.Request.Context(), service.CompleteDayInput{
			UserID:            userID,
			ProgramID:         programID,
			DayID:             dayID,
			LastCompletedStep: req.LastCompletedStep,
			Kind:              kind,
		})
		if err != nil {
			respondError(c, h.logger, err)
			return
		}

		msg := "Day completed successfully"
		if result.AlreadyCompleted {
			msg = "Day already completed"
		}
		c.JSON(http.StatusOK, CompleteDayResponse{Message: msg, CompleteDayResult: result})
	}
}

// CompleteDay godoc
// @Summary Mark a day completed, searching registered then user-created enrollments
// @Tags Progress
// @Security BearerAuth
// @Param body body CompleteDayRequest true "Day to complete"
// @Success 200 {object} CompleteDayResponse
// @Failure 404 {object} gin.H "Program or day not found"
// @Router /users/complete-day [patch]
func (h *ProgressHandler) CompleteDay(c *gin.Context) {
	h.completeDay(domain.KindAny)(c)
}

// CompleteRegisteredDay godoc
// @Summary Mark a day of a registered program completed
// @Tags Progress
// @Security BearerAuth
// @Router /users/complete-day-default [patch]
func (h *ProgressHandler) CompleteRegisteredDay(c *gin.Context) {
	h.completeDay(domain.KindRegistered)(c)
}

// CompleteUserCreatedDay godoc
// @Summary Mark a day of a user-created program completed
// @Tags Progress
// @Security BearerAuth
// @Router /users/complete-user-created-day [patch]
func (h *ProgressHandler) CompleteUserCreatedDay(c *gin.Context) {
	h.completeDay(domain.KindUserCreated)(c)
}

// CompleteProgram godoc
// @Summary Mark a whole program completed
// @Tags Progress
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Success 200 {object} gin.H
// @Failure 400 {object} gin.H "Already completed"
// @Failure 404 {object} gin.H "Not registered"
// @Router /users/{programId}/complete [patch]
func (h *ProgressHandler) CompleteProgram(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	programID, ok := objectIDParam(c, "programId")
	if !ok {
		return
	}

	progress, err := h.progressService.CompleteProgram(c.Request.Context(), userID, programID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"programId":         progress.ProgramID,
		"isCompleted":       progress.IsCompleted,
		"completedManually": progress.CompletedManually,
	})
}

// GetProgress godoc
// @Summary Day-by-day progress of a program
// @Tags Progress
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Success 200 {object} service.ProgressView
// @Failure 404 {object} gin.H "Not registered"
// @Router /users/{programId}/progress [get]
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	programID, ok := objectIDParam(c, "programId")
	if !ok {
		return
	}

	view, err := h.progressService.GetProgress(c.Request.Context(), userID, programID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetUserStats godoc
// @Summary Enrollment and completion counts of the current user
// @Tags Progress
// @Security BearerAuth
// @Success 200 {object} service.UserStats
// @Router /users/stats [get]
func (h *ProgressHandler) GetUserStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	stats, err := h.progressService.GetUserStats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// DeleteUserCreatedProgram godoc
// @Summary Delete a program the current user created
// @Tags Progress
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Success 200 {object} gin.H
// @Failure 404 {object} gin.H "Not found or not owned"
// @Router /users/programs/{programId} [delete]
func (h *ProgressHandler) DeleteUserCreatedProgram(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	programID, ok := objectIDParam(c, "programId")
	if !ok {
		return
	}

	result, err := h.progressService.DeleteUserCreatedProgram(c.Request.Context(), userID, programID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":            "Program deleted successfully",
		"programId":          result.ProgramID,
		"deletedPrograms":    result.DeletedPrograms,
		"deletedDays":        result.DeletedDays,
		"deletedSteps":       result.DeletedSteps,
		"removedEnrollments": result.RemovedEnrollments,
	})
}
