package handlers

import (
	"github.com/harentsoaR/clinic-api/internal/services"
	"github.com/harentsoaR/clinic-api/internal/store"
)

// Handler holds the services the HTTP layer calls into.
type Handler struct {
	Store          store.Store
	Users          *services.UserService
	Slots          *services.SlotService
	Workflow       *services.Workflow
	Reports        *services.ReportService
	SMS            services.Notifier
	MaxUploadBytes int64
}

func NewHandler(st store.Store, users *services.UserService, slots *services.SlotService, wf *services.Workflow,
	reports *services.ReportService, sms services.Notifier, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &Handler{
		Store:          st,
		Users:          users,
		Slots:          slots,
		Workflow:       wf,
		Reports:        reports,
		SMS:            sms,
		MaxUploadBytes: maxUploadBytes,
	}
}
