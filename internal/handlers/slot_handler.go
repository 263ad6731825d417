package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/clinic-api/internal/models"
)

type SlotResponse struct {
	ID       string `json:"id"`
	DoctorID string `json:"doctor_id"`
	DateTime string `json:"date_time"`
}

func toSlotResponse(s models.Slot) SlotResponse {
	return SlotResponse{ID: s.ID, DoctorID: s.DoctorID, DateTime: models.FormatDateTime(s.DateTime)}
}

func (h *Handler) ListSlots(c *gin.Context) {
	slots, err := h.Slots.ListSlots(c.Request.Context(), c.Param("doctorId"))
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]SlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, toSlotResponse(s))
	}
	c.JSON(http.StatusOK, out)
}

type AddSlotRequest struct {
	DoctorID string `json:"doctorId" binding:"required"`
	DateTime string `json:"dateTime" binding:"required"`
}

func (h *Handler) AddSlot(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req AddSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendValidationError(c, "doctorId and dateTime are required")
		return
	}
	s, err := h.Slots.AddSlot(c.Request.Context(), a, req.DoctorID, req.DateTime)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Slot added", "slot": toSlotResponse(*s)})
}

func (h *Handler) DeleteSlot(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.Slots.DeleteSlot(c.Request.Context(), a, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Slot deleted"})
}
