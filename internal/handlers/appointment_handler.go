package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/services"
)

type AppointmentResponse struct {
	ID           string        `json:"id"`
	PatientID    string        `json:"patient_id"`
	DoctorID     string        `json:"doctor_id"`
	PatientName  string        `json:"patient_name"`
	DoctorName   string        `json:"doctor_name"`
	DateTime     string        `json:"date_time"`
	Status       models.Status `json:"status"`
	PatientPhone string        `json:"patient_phone,omitempty"`
}

func toAppointmentResponse(a models.Appointment, phone string) AppointmentResponse {
	return AppointmentResponse{
		ID:           a.ID,
		PatientID:    a.PatientID,
		DoctorID:     a.DoctorID,
		PatientName:  a.PatientName,
		DoctorName:   a.DoctorName,
		DateTime:     models.FormatDateTime(a.DateTime),
		Status:       a.Status,
		PatientPhone: phone,
	}
}

// GetAppointments lists appointments visible to the caller,
// ?userId&role&order=asc|desc.
func (h *Handler) GetAppointments(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	order := models.Descending
	switch strings.ToLower(c.DefaultQuery("order", "desc")) {
	case "asc":
		order = models.Ascending
	case "desc":
	default:
		sendValidationError(c, "order must be asc or desc")
		return
	}

	rows, err := h.Workflow.ListVisible(c.Request.Context(), a, services.ListQuery{
		UserID: c.Query("userId"),
		Role:   models.Role(c.Query("role")),
		Order:  order,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]AppointmentResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, toAppointmentResponse(r.Appointment, r.PatientPhone))
	}
	c.JSON(http.StatusOK, out)
}

// CreateAppointmentRequest keeps the dashboard's body shape. Without slotId
// the slot is looked up by doctorId and date. Client-sent names are
// ignored; the server snapshots them from its user records.
type CreateAppointmentRequest struct {
	PatientID   string `json:"patientId"`
	DoctorID    string `json:"doctorId" binding:"required"`
	SlotID      string `json:"slotId"`
	Date        string `json:"date"`
	PatientName string `json:"patientName"`
	DoctorName  string `json:"doctorName"`
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendValidationError(c, "doctorId is required")
		return
	}
	if req.SlotID == "" && req.Date == "" {
		sendValidationError(c, "slotId or date is required")
		return
	}
	if req.PatientID == "" {
		if _, isPatient := a.(models.Patient); isPatient {
			req.PatientID = a.ActorID()
		}
	}
	var expected time.Time
	if req.Date != "" {
		t, err := models.ParseDateTime(req.Date)
		if err != nil {
			respondError(c, err)
			return
		}
		expected = t
	}

	apt, err := h.Workflow.Book(c.Request.Context(), a, services.BookRequest{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		SlotID:    req.SlotID,
		Expected:  expected,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":     "Appointment request submitted",
		"appointment": toAppointmentResponse(*apt, ""),
	})
}

type UpdateAppointmentRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendValidationError(c, "status is required")
		return
	}
	apt, err := h.Workflow.SetStatus(c.Request.Context(), a, c.Param("id"), models.Status(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     fmt.Sprintf("Appointment %s", strings.ToLower(string(apt.Status))),
		"appointment": toAppointmentResponse(*apt, ""),
	})
}
