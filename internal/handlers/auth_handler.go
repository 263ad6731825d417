package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/clinic-api/internal/services"
)

// NameFields takes the dashboard's camelCase keys and the snake_case keys
// the responses use.
type NameFields struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	FirstNameSnake string `json:"first_name"`
	LastNameSnake  string `json:"last_name"`
}

func (n NameFields) First() string { return firstNonEmpty(n.FirstName, n.FirstNameSnake) }
func (n NameFields) Last() string  { return firstNonEmpty(n.LastName, n.LastNameSnake) }

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

type RegisterUserRequest struct {
	NameFields
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone"`
}

// RegisterUser is public sign-up. The account is always a patient.
func (h *Handler) RegisterUser(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendValidationError(c, err.Error())
		return
	}
	if req.First() == "" {
		sendValidationError(c, "firstName is required")
		return
	}
	u, err := h.Users.Register(c.Request.Context(), services.NewUser{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.First(),
		LastName:  req.Last(),
		Phone:     req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendValidationError(c, "email and password are required")
		return
	}
	token, u, err := h.Users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": u})
}
