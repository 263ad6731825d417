package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/services"
)

type CreateUserRequest struct {
	RegisterUserRequest
	Role      string `json:"role" binding:"required"`
	Specialty string `json:"specialty"`
}

// CreateUser is the staff path for opening accounts of any role.
func (h *Handler) CreateUser(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendValidationError(c, err.Error())
		return
	}
	u, err := h.Users.Create(c.Request.Context(), a, services.NewUser{
		Email:     req.Email,
		Password:  req.Password,
		Role:      models.Role(req.Role),
		FirstName: req.First(),
		LastName:  req.Last(),
		Phone:     req.Phone,
		Specialty: req.Specialty,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// ListUsers filters by ?role=. Doctors and patients may only list doctors.
func (h *Handler) ListUsers(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	role := models.Role(c.Query("role"))
	if !models.IsFrontDesk(a) && role != models.RoleDoctor {
		respondError(c, fmt.Errorf("%w: only doctors can be listed", models.ErrForbidden))
		return
	}
	users, err := h.Users.List(c.Request.Context(), role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) GetUser(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id := c.Param("id")
	u, err := h.Users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	// anyone may look up a doctor; other accounts are visible to staff and
	// their owner
	if u.Role != models.RoleDoctor && a.ActorID() != id {
		if _, isPatient := a.(models.Patient); isPatient {
			respondError(c, fmt.Errorf("%w: cannot view another user", models.ErrForbidden))
			return
		}
	}
	c.JSON(http.StatusOK, u)
}

type UpdateUserRequest struct {
	NameFields
	Phone string `json:"phone"`
}

func (h *Handler) UpdateUser(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendValidationError(c, "Invalid request body")
		return
	}
	u, err := h.Users.UpdateProfile(c.Request.Context(), a, c.Param("id"), models.Profile{
		FirstName: req.First(),
		LastName:  req.Last(),
		Phone:     req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.Users.Delete(c.Request.Context(), a, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
