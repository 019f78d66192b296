package api

import (
	"alcyxob/coachtrack/internal/domain"
	"alcyxob/coachtrack/internal/service"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// SessionHandler drives the caller's own active workout.
type SessionHandler struct {
	sessions service.SessionService
}

func NewSessionHandler(sessions service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// StartRequest starts from a plan, from a trainer-scheduled workout, or empty.
type StartRequest struct {
	PlanID    string `json:"planId"`
	WorkoutID string `json:"workoutId"`
}

type AddExerciseRequest struct {
	ExerciseID string `json:"exerciseId" binding:"required"`
}

// ActiveResponse wraps the active workout, which is null when idle.
type ActiveResponse struct {
	Workout *domain.Workout `json:"workout"`
}

// Start godoc
// @Summary Start a workout
// @Description Returns the existing active workout if there is one.
// @Tags Session
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body StartRequest false "Plan or scheduled workout"
// @Success 200 {object} domain.Workout
// @Router /session/start [post]
func (h *SessionHandler) Start(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, err.Error())
		return
	}
	var req StartRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	var w *domain.Workout
	if req.WorkoutID != "" {
		w, err = h.sessions.StartScheduled(c.Request.Context(), userID, req.WorkoutID)
	} else {
		w, err = h.sessions.Start(c.Request.Context(), userID, req.PlanID)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// Active reports the caller's active workout, or null when idle.
// @Router /session [get]
func (h *SessionHandler) Active(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, err.Error())
		return
	}
	w, err := h.sessions.Active(c.Request.Context(), userID)
	if err != nil && !errors.Is(err, service.ErrNoActiveWorkout) {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ActiveResponse{Workout: w})
}

// @Router /session/exercises [post]
func (h *SessionHandler) AddExercise(c *gin.Context) {
	var req AddExerciseRequest
	if !bindJSON(c, &req) {
		return
	}
	h.run(c, func(userID string) (*domain.Workout, error) {
		return h.sessions.AddExercise(c.Request.Context(), userID, req.ExerciseID)
	})
}

// @Router /session/exercises/{exerciseIndex} [delete]
func (h *SessionHandler) RemoveExercise(c *gin.Context) {
	ex, ok := pathIndex(c, "exerciseIndex")
	if !ok {
		return
	}
	h.run(c, func(userID string) (*domain.Workout, error) {
		return h.sessions.RemoveExercise(c.Request.Context(), userID, ex)
	})
}

// UpdateSet applies a partial update; omitted fields keep their value.
// @Router /session/exercises/{exerciseIndex}/sets/{setIndex} [patch]
func (h *SessionHandler) UpdateSet(c *gin.Context) {
	ex, ok := pathIndex(c, "exerciseIndex")
	if !ok {
		return
	}
	set, ok := pathIndex(c, "setIndex")
	if !ok {
		return
	}
	var update domain.SetUpdate
	if !bindJSON(c, &update) {
		return
	}
	h.run(c, func(userID string) (*domain.Workout, error) {
		return h.sessions.UpdateSet(c.Request.Context(), userID, ex, set, update)
	})
}

// @Router /session/exercises/{exerciseIndex}/sets [post]
func (h *SessionHandler) AddSet(c *gin.Context) {
	ex, ok := pathIndex(c, "exerciseIndex")
	if !ok {
		return
	}
	h.run(c, func(userID string) (*domain.Workout, error) {
		return h.sessions.AddSet(c.Request.Context(), userID, ex)
	})
}

// @Router /session/exercises/{exerciseIndex}/sets/{setIndex} [delete]
func (h *SessionHandler) RemoveSet(c *gin.Context) {
	ex, ok := pathIndex(c, "exerciseIndex")
	if !ok {
		return
	}
	set, ok := pathIndex(c, "setIndex")
	if !ok {
		return
	}
	h.run(c, func(userID string) (*domain.Workout, error) {
		return h.sessions.RemoveSet(c.Request.Context(), userID, ex, set)
	})
}

// @Router /session/save [post]
func (h *SessionHandler) Save(c *gin.Context) {
	h.run(c, func(userID string) (*domain.Workout, error) {
		return h.sessions.Save(c.Request.Context(), userID)
	})
}

// End saves if needed and clears the active workout. Ending with nothing
// active answers 204.
// @Router /session/end [post]
func (h *SessionHandler) End(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, err.Error())
		return
	}
	w, err := h.sessions.End(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if w == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, w)
}

// @Router /session [delete]
func (h *SessionHandler) Discard(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, err.Error())
		return
	}
	if err := h.sessions.Discard(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// History lists the caller's workouts, completed and scheduled.
// @Router /workouts [get]
func (h *SessionHandler) History(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, err.Error())
		return
	}
	history, err := h.sessions.History(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNilWorkouts(history))
}

// run resolves the caller and writes fn's workout or error.
func (h *SessionHandler) run(c *gin.Context, fn func(userID string) (*domain.Workout, error)) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, err.Error())
		return
	}
	w, err := fn(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func pathIndex(c *gin.Context, name string) (int, bool) {
	i, err := strconv.Atoi(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, CodeValidationFailed, name+" must be an integer")
		return 0, false
	}
	return i, true
}
