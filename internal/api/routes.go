package api

import (
	"alcyxob/coachtrack/internal/domain"
	"alcyxob/coachtrack/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	Auth      service.AuthService
	Clients   service.ClientService
	Plans     service.PlanService
	Sessions  service.SessionService
	Exercises service.ExerciseService
}

// RouteOptions toggles optional surfaces.
type RouteOptions struct {
	// DevMode registers the role-switch endpoint.
	DevMode bool
	// Degraded reports whether the primary store is unreachable. May be nil.
	Degraded func() bool
}

func SetupRoutes(router *gin.Engine, svc Services, opts RouteOptions) {
	authHandler := NewAuthHandler(svc.Auth)
	clientHandler := NewClientHandler(svc.Clients)
	planHandler := NewPlanHandler(svc.Plans)
	sessionHandler := NewSessionHandler(svc.Sessions)
	exerciseHandler := NewExerciseHandler(svc.Exercises)

	router.GET("/healthz", func(c *gin.Context) {
		status := "ok"
		if opts.Degraded != nil && opts.Degraded() {
			status = "degraded"
		}
		c.JSON(http.StatusOK, gin.H{"status": status})
	})

	apiV1 := router.Group("/api/v1")
	apiV1.POST("/auth/login", authHandler.Login)

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(svc.Auth))
	{
		// Reachable while the starter password is still in use.
		protected.GET("/me", authHandler.Me)
		protected.POST("/auth/logout", authHandler.Logout)
		protected.POST("/auth/change-password", authHandler.ChangePassword)
		if opts.DevMode {
			protected.POST("/auth/switch-role", authHandler.SwitchRole)
		}
	}

	gated := protected.Group("")
	gated.Use(PasswordChangedMiddleware())
	{
		// --- Exercise Catalog ---
		gated.GET("/exercises", exerciseHandler.ListExercises)
		gated.GET("/exercises/:id", exerciseHandler.GetExercise)

		gated.GET("/plans", planHandler.ListPlans)
		gated.GET("/plans/:planId", planHandler.GetPlan)

		// --- Active Workout ---
		session := gated.Group("/session")
		{
			session.GET("", sessionHandler.Active)
			session.DELETE("", sessionHandler.Discard)
			session.POST("/start", sessionHandler.Start)
			session.POST("/save", sessionHandler.Save)
			session.POST("/end", sessionHandler.End)
			session.POST("/exercises", sessionHandler.AddExercise)
			session.DELETE("/exercises/:exerciseIndex", sessionHandler.RemoveExercise)
			session.POST("/exercises/:exerciseIndex/sets", sessionHandler.AddSet)
			session.PATCH("/exercises/:exerciseIndex/sets/:setIndex", sessionHandler.UpdateSet)
			session.DELETE("/exercises/:exerciseIndex/sets/:setIndex", sessionHandler.RemoveSet)
		}
		gated.GET("/workouts", sessionHandler.History)
	}

	// --- Trainer Specific Routes ---
	trainer := gated.Group("")
	trainer.Use(RoleMiddleware(domain.RoleTrainer, domain.RoleAdmin))
	{
		trainer.POST("/clients", clientHandler.AddClient)
		trainer.GET("/clients", clientHandler.ListClients)
		trainer.POST("/clients/starter-password", clientHandler.StarterPassword)
		trainer.GET("/clients/:clientId", clientHandler.GetClient)
		trainer.DELETE("/clients/:clientId", clientHandler.RemoveClient)
		trainer.GET("/clients/:clientId/workouts", clientHandler.ClientHistory)

		trainer.POST("/invitations", clientHandler.InviteClient)
		trainer.GET("/invitations", clientHandler.ListInvitations)

		trainer.POST("/plans", planHandler.CreatePlan)
		trainer.PUT("/plans/:planId", planHandler.UpdatePlan)
		trainer.DELETE("/plans/:planId", planHandler.DeletePlan)
		trainer.POST("/plans/:planId/assign", planHandler.AssignPlan)

		trainer.POST("/workouts", planHandler.CreateWorkout)
		trainer.POST("/schedules", planHandler.Schedule)
	}
}
