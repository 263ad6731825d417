package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/harentsoaR/clinic-api/internal/models"
)

const (
	KindSubmitted = "submitted"
	KindConfirmed = "confirmed"
	KindDeclined  = "declined"
	KindCancelled = "cancelled"
)

// Receipt is what a provider reports back for an accepted message.
type Receipt struct {
	Provider       string `json:"provider"`
	TextID         string `json:"textId,omitempty"`
	QuotaRemaining int    `json:"quotaRemaining,omitempty"`
}

// Notifier delivers one SMS.
type Notifier interface {
	Send(ctx context.Context, to, message string) (Receipt, error)
}

// TextbeltNotifier posts to the Textbelt HTTP API.
type TextbeltNotifier struct {
	url    string
	key    string
	client *http.Client
}

func NewTextbeltNotifier(url, key string, client *http.Client) *TextbeltNotifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &TextbeltNotifier{url: url, key: key, client: client}
}

func (t *TextbeltNotifier) Send(ctx context.Context, to, message string) (Receipt, error) {
	body, err := json.Marshal(map[string]string{
		"phone":   to,
		"message": message,
		"key":     t.key,
	})
	if err != nil {
		return Receipt{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return Receipt{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: textbelt request: %v", models.ErrNotificationDeliveryFailed, err)
	}
	defer resp.Body.Close()

	var result struct {
		Success        bool   `json:"success"`
		TextID         string `json:"textId"`
		QuotaRemaining int    `json:"quotaRemaining"`
		Error          string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Receipt{}, fmt.Errorf("%w: textbelt status %d: %v", models.ErrNotificationDeliveryFailed, resp.StatusCode, err)
	}
	if !result.Success {
		return Receipt{}, fmt.Errorf("%w: textbelt: %s", models.ErrNotificationDeliveryFailed, result.Error)
	}
	return Receipt{Provider: "textbelt", TextID: result.TextID, QuotaRemaining: result.QuotaRemaining}, nil
}

// ConsoleNotifier only logs. Used for local development.
type ConsoleNotifier struct{}

func NewConsoleNotifier() *ConsoleNotifier { return &ConsoleNotifier{} }

func (ConsoleNotifier) Send(_ context.Context, to, message string) (Receipt, error) {
	log.Printf("[sms] to=%s :: %s", to, message)
	return Receipt{Provider: "console"}, nil
}

// NotificationText renders the patient-facing text for kind.
func NotificationText(kind string, a *models.Appointment) string {
	when := models.Wall(a.DateTime).Format(models.HumanLayout)
	doctor := "Dr. " + lastName(a.DoctorName)
	switch kind {
	case KindSubmitted:
		return fmt.Sprintf("Hello %s, your appointment request with %s on %s has been submitted. Please wait for the doctor's confirmation.",
			firstName(a.PatientName), doctor, when)
	case KindConfirmed:
		return fmt.Sprintf("Good news! Your appointment with %s on %s has been CONFIRMED.", doctor, when)
	case KindDeclined:
		return fmt.Sprintf("Notice: Your appointment with %s on %s was DECLINED. Please reschedule.", doctor, when)
	case KindCancelled:
		return fmt.Sprintf("Notice: Your appointment with %s on %s has been CANCELLED by the front desk. Please contact the clinic to rebook.", doctor, when)
	}
	return fmt.Sprintf("Your appointment with %s on %s is now %s.", doctor, when, strings.ToUpper(kind))
}

func firstName(full string) string {
	if f := strings.Fields(full); len(f) > 0 {
		return f[0]
	}
	return "there"
}

func lastName(full string) string {
	f := strings.Fields(full)
	if len(f) == 0 {
		return "your doctor"
	}
	return f[len(f)-1]
}
