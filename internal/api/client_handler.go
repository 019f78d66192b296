// internal/api/client_handler.go
package api

import (
	"alcyxob/coachtrack/internal/domain"
	"alcyxob/coachtrack/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ClientHandler serves the trainer-facing client registry.
type ClientHandler struct {
	clientService service.ClientService
}

func NewClientHandler(clientService service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// --- DTOs ---

type AddClientRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Phone           string `json:"phone"`
	StarterPassword string `json:"starterPassword"`
}

// AddClientResponse carries the starter password exactly once.
type AddClientResponse struct {
	Client          UserResponse `json:"client"`
	StarterPassword string       `json:"starterPassword"`
}

type InviteClientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// --- Handler Methods ---

// AddClient godoc
// @Summary Create a client account
// @Description Creates a client with a starter password and emails it to them.
// @Tags Clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param client body AddClientRequest true "Client details"
// @Success 201 {object} AddClientResponse
// @Failure 400 {object} ErrorResponse "VALIDATION_FAILED"
// @Failure 409 {object} ErrorResponse "CLIENT_EMAIL_EXISTS or CLIENT_PHONE_EXISTS"
// @Router /clients [post]
func (h *ClientHandler) AddClient(c *gin.Context) {
	var req AddClientRequest
	if !bindJSON(c, &req) {
		return
	}

	user, password, err := h.clientService.AddClient(c.Request.Context(), service.NewClient{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		StarterPassword: req.StarterPassword,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, AddClientResponse{Client: MapUserToResponse(user), StarterPassword: password})
}

// @Router /clients [get]
func (h *ClientHandler) ListClients(c *gin.Context) {
	clients, err := h.clientService.ListClients(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUsersToResponse(clients))
}

// @Router /clients/{clientId} [get]
func (h *ClientHandler) GetClient(c *gin.Context) {
	client, err := h.clientService.GetClient(c.Request.Context(), c.Param("clientId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(client))
}

// @Router /clients/{clientId} [delete]
func (h *ClientHandler) RemoveClient(c *gin.Context) {
	if err := h.clientService.RemoveClient(c.Request.Context(), c.Param("clientId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClientHistory returns a client's workouts, scheduled ones included.
// @Router /clients/{clientId}/workouts [get]
func (h *ClientHandler) ClientHistory(c *gin.Context) {
	history, err := h.clientService.ClientHistory(c.Request.Context(), c.Param("clientId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNilWorkouts(history))
}

// StarterPassword suggests a password for the create-client form.
// @Router /clients/starter-password [post]
func (h *ClientHandler) StarterPassword(c *gin.Context) {
	password, err := h.clientService.GenerateStarterPassword()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"starterPassword": password})
}

// @Router /invitations [post]
func (h *ClientHandler) InviteClient(c *gin.Context) {
	var req InviteClientRequest
	if !bindJSON(c, &req) {
		return
	}
	inv, err := h.clientService.InviteClient(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

// @Router /invitations [get]
func (h *ClientHandler) ListInvitations(c *gin.Context) {
	invs, err := h.clientService.ListInvitations(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if invs == nil {
		invs = []domain.Invitation{}
	}
	c.JSON(http.StatusOK, invs)
}

func nonNilWorkouts(in []domain.Workout) []domain.Workout {
	if in == nil {
		return []domain.Workout{}
	}
	return in
}
