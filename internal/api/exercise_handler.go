package api

import (
	"alcyxob/coachtrack/internal/domain"
	"alcyxob/coachtrack/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// ListExercises godoc
// @Summary List catalog exercises
// @Description Video references are returned as playable URLs.
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param category query string false "Filter by category"
// @Success 200 {array} domain.Exercise
// @Failure 400 {object} ErrorResponse "VALIDATION_FAILED (unknown category)"
// @Router /exercises [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	var (
		exercises []domain.Exercise
		err       error
	)
	if category := c.Query("category"); category != "" {
		exercises, err = h.exerciseService.ExercisesByCategory(c.Request.Context(), domain.ExerciseCategory(category))
	} else {
		exercises, err = h.exerciseService.ListExercises(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercises)
}

// @Router /exercises/{id} [get]
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	ex, err := h.exerciseService.GetExercise(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ex)
}
