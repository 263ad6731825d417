package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/clinic-api/internal/middleware"
	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/services"
)

type RouterConfig struct {
	JWTSecret    []byte
	AllowOrigins []string
	UploadDir    string
	Limiter      *middleware.RateLimiter
}

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", h.Health)
	if cfg.UploadDir != "" {
		uploads := r.Group(services.URLPrefix, downloadOnly)
		uploads.Static("/", cfg.UploadDir)
	}

	authRoutes := r.Group("/auth")
	if cfg.Limiter != nil {
		authRoutes.Use(cfg.Limiter.Middleware())
	}
	{
		authRoutes.POST("/register", h.RegisterUser)
		authRoutes.POST("/login", h.Login)
	}

	staff := middleware.RequireRole(models.RoleAdmin, models.RoleReceptionist, models.RoleDoctor)
	frontDesk := middleware.RequireRole(models.RoleAdmin, models.RoleReceptionist)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		api.GET("/users", h.ListUsers)
		api.POST("/users", frontDesk, h.CreateUser)
		api.GET("/users/:id", h.GetUser)
		api.PUT("/users/:id", h.UpdateUser)
		api.DELETE("/users/:id", adminOnly, h.DeleteUser)

		api.GET("/slots/:doctorId", h.ListSlots)
		api.POST("/slots", middleware.RequireRole(models.RoleDoctor, models.RoleAdmin), h.AddSlot)
		api.DELETE("/slots/:id", middleware.RequireRole(models.RoleDoctor, models.RoleAdmin), h.DeleteSlot)

		api.GET("/appointments", h.GetAppointments)
		api.POST("/appointments", middleware.RequireRole(models.RolePatient, models.RoleReceptionist, models.RoleAdmin), h.CreateAppointment)
		api.PUT("/appointments/:id", h.UpdateAppointment)

		api.GET("/reports", adminOnly, h.ListReports)
		api.POST("/reports", adminOnly, h.UploadReport)
		api.DELETE("/reports/:id", adminOnly, h.DeleteReport)

		api.POST("/send-sms", staff, h.SendSMS)
	}
	return r
}

// downloadOnly keeps uploaded files from rendering in the API's origin.
func downloadOnly(c *gin.Context) {
	c.Header("Content-Disposition", "attachment")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Next()
}

func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		log.Printf("[health] store ping failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
