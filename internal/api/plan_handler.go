package api

import (
	"alcyxob/coachtrack/internal/domain"
	"alcyxob/coachtrack/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// PlanHandler serves workout plans, trainer-pushed workouts and scheduling.
type PlanHandler struct {
	planService service.PlanService
}

func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// --- DTOs ---

type PlanRequest struct {
	Name        string                   `json:"name" binding:"required"`
	Description string                   `json:"description"`
	Exercises   []domain.WorkoutExercise `json:"exercises"`
	Schedule    []domain.ScheduleHint    `json:"schedule"`
}

func (r PlanRequest) toDomain() domain.WorkoutPlan {
	return domain.WorkoutPlan{
		Name:        r.Name,
		Description: r.Description,
		Exercises:   r.Exercises,
		Schedule:    r.Schedule,
	}
}

type AssignPlanRequest struct {
	UserID string `json:"userId" binding:"required"`
}

type CreateWorkoutRequest struct {
	UserID    string                   `json:"userId" binding:"required"`
	Name      string                   `json:"name" binding:"required"`
	Date      time.Time                `json:"date"`
	Exercises []domain.WorkoutExercise `json:"exercises"`
}

// ScheduleRequest is either a single date or a recurring weekday pattern.
type ScheduleRequest struct {
	ClientID    string    `json:"clientId" binding:"required"`
	PlanID      string    `json:"planId"`
	PlanName    string    `json:"planName"`
	ExerciseIDs []string  `json:"exerciseIds"`
	StartDate   time.Time `json:"startDate"`
	Recurring   bool      `json:"recurring"`
	EndDate     time.Time `json:"endDate"`
	Weekdays    []int     `json:"weekdays"` // 0 (Sunday) - 6 (Saturday)
}

// --- Handler Methods ---

// CreatePlan godoc
// @Summary Create a workout plan
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param plan body PlanRequest true "Plan"
// @Success 201 {object} domain.WorkoutPlan
// @Failure 400 {object} ErrorResponse "VALIDATION_FAILED"
// @Router /plans [post]
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, err.Error())
		return
	}
	var req PlanRequest
	if !bindJSON(c, &req) {
		return
	}
	plan, err := h.planService.CreatePlan(c.Request.Context(), trainerID, req.toDomain())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// @Router /plans/{planId} [put]
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	var req PlanRequest
	if !bindJSON(c, &req) {
		return
	}
	plan, err := h.planService.UpdatePlan(c.Request.Context(), c.Param("planId"), req.toDomain())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// ListPlans returns every plan to trainers and the assigned ones to clients.
// @Router /plans [get]
func (h *PlanHandler) ListPlans(c *gin.Context) {
	userID, role, ok := callerFromContext(c)
	if !ok {
		return
	}
	var (
		plans []domain.WorkoutPlan
		err   error
	)
	if domain.CanManageClients(role) {
		plans, err = h.planService.ListPlans(c.Request.Context())
	} else {
		plans, err = h.planService.PlansForUser(c.Request.Context(), userID)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if plans == nil {
		plans = []domain.WorkoutPlan{}
	}
	c.JSON(http.StatusOK, plans)
}

// GetPlan hides plans a client is not assigned to.
// @Router /plans/{planId} [get]
func (h *PlanHandler) GetPlan(c *gin.Context) {
	userID, role, ok := callerFromContext(c)
	if !ok {
		return
	}
	plan, err := h.planService.GetPlan(c.Request.Context(), c.Param("planId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !domain.CanManageClients(role) && !plan.IsAssignedTo(userID) {
		respondError(c, service.ErrPlanNotFound)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// @Router /plans/{planId} [delete]
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	if err := h.planService.DeletePlan(c.Request.Context(), c.Param("planId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Router /plans/{planId}/assign [post]
func (h *PlanHandler) AssignPlan(c *gin.Context) {
	var req AssignPlanRequest
	if !bindJSON(c, &req) {
		return
	}
	plan, err := h.planService.AssignPlan(c.Request.Context(), c.Param("planId"), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// CreateWorkout pushes a dormant workout into a client's history.
// @Router /workouts [post]
func (h *PlanHandler) CreateWorkout(c *gin.Context) {
	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, err.Error())
		return
	}
	var req CreateWorkoutRequest
	if !bindJSON(c, &req) {
		return
	}
	workout, err := h.planService.CreateWorkout(c.Request.Context(), trainerID, domain.Workout{
		UserID:    req.UserID,
		Name:      req.Name,
		Date:      req.Date,
		Exercises: req.Exercises,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, workout)
}

// Schedule godoc
// @Summary Schedule one or recurring sessions for a client
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param schedule body ScheduleRequest true "Schedule"
// @Success 201 {array} domain.Workout
// @Failure 400 {object} ErrorResponse "VALIDATION_FAILED"
// @Failure 404 {object} ErrorResponse "NOT_FOUND"
// @Router /schedules [post]
func (h *PlanHandler) Schedule(c *gin.Context) {
	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, err.Error())
		return
	}
	var req ScheduleRequest
	if !bindJSON(c, &req) {
		return
	}
	workouts, err := h.planService.ScheduleWorkouts(c.Request.Context(), trainerID, service.ScheduleRequest{
		ClientID:    req.ClientID,
		PlanID:      req.PlanID,
		PlanName:    req.PlanName,
		ExerciseIDs: req.ExerciseIDs,
		StartDate:   req.StartDate,
		Recurring:   req.Recurring,
		EndDate:     req.EndDate,
		Weekdays:    req.Weekdays,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, workouts)
}

// callerFromContext reads the caller's id and role, aborting on failure.
func callerFromContext(c *gin.Context) (string, domain.Role, bool) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, err.Error())
		return "", "", false
	}
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, err.Error())
		return "", "", false
	}
	return userID, role, true
}
