package models

// Notification is one outbound text to a contact address.
type Notification struct {
	AppointmentID string `json:"appointment_id,omitempty"`
	Kind          string `json:"kind"`
	To            string `json:"to"`
	Message       string `json:"message"`
	Attempt       int    `json:"attempt,omitempty"`
}
