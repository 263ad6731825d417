package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type SendSMSRequest struct {
	To      string `json:"to" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// SendSMS sends one text synchronously and reports the provider outcome.
func (h *Handler) SendSMS(c *gin.Context) {
	var req SendSMSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "to and message are required"})
		return
	}
	receipt, err := h.SMS.Send(c.Request.Context(), req.To, req.Message)
	if err != nil {
		log.Printf("[sms] manual send failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": receipt})
}
