// Package notify formats staff alerts and delivers them over SMS.
package notify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"remy/internal/models"
)

// Urgency levels accepted from the voice assistant.
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
)

const defaultMessage = "Customer needs assistance at their table."

// Config is the externally supplied SMS provider configuration. All four
// fields are required; a missing one is a configuration error, reported
// distinctly from delivery failure.
type Config struct {
	AccountSID          string
	AuthToken           string
	MessagingServiceSID string
	ToNumber            string
}

// Complete reports whether every required field is set.
func (c Config) Complete() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.MessagingServiceSID != "" && c.ToNumber != ""
}

// Request is a staff alert. All fields are optional and defaulted.
type Request struct {
	Message      string `json:"message,omitempty"`
	Urgency      string `json:"urgency,omitempty"`
	CustomerInfo string `json:"customerInfo,omitempty"`
}

// Confirmation reports a delivered notification back to the caller.
type Confirmation struct {
	Message    string `json:"message"`
	MessageSID string `json:"messageSid"`
	Urgency    string `json:"urgency"`
}

// MessageSender delivers one SMS and returns the provider message id.
// Production uses Twilio; tests inject a fake.
type MessageSender interface {
	Send(ctx context.Context, to, messagingServiceSID, body string) (string, error)
}

type twilioSender struct {
	client *twilio.RestClient
}

func newTwilioSender(cfg Config) *twilioSender {
	return &twilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		}),
	}
}

func (t *twilioSender) Send(_ context.Context, to, messagingServiceSID, body string) (string, error) {
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetMessagingServiceSid(messagingServiceSID)
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}

// Relay builds the alert text and hands it to the sender.
type Relay struct {
	cfg    Config
	sender MessageSender
	now    func() time.Time
}

// NewRelay creates a relay for the given provider configuration. A nil
// sender gets the Twilio implementation when the config is complete.
func NewRelay(cfg Config, sender MessageSender) *Relay {
	if sender == nil && cfg.Complete() {
		sender = newTwilioSender(cfg)
	}
	return &Relay{cfg: cfg, sender: sender, now: time.Now}
}

// Notify formats and delivers a staff alert. Returns either a confirmation
// or a structured error; configuration problems are reported before any
// delivery attempt is made.
func (r *Relay) Notify(ctx context.Context, req Request) (Confirmation, *models.APIError) {
	if !r.cfg.Complete() || r.sender == nil {
		log.Println("notify: missing Twilio configuration")
		return Confirmation{}, &models.APIError{
			Error:   "Twilio configuration missing",
			Code:    "twilio_config_error",
			Level:   models.ErrorLevelError,
			Content: "Twilio credentials are not properly configured. Please check environment variables.",
		}
	}

	urgency := req.Urgency
	switch urgency {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
	default:
		urgency = UrgencyMedium
	}

	body := r.buildMessage(req.Message, urgency, req.CustomerInfo)

	sid, err := r.sender.Send(ctx, r.cfg.ToNumber, r.cfg.MessagingServiceSID, body)
	if err != nil {
		log.Printf("notify: delivery failed: %v", err)
		return Confirmation{}, classifyDeliveryError(err)
	}

	return Confirmation{
		Message:    fmt.Sprintf("Waiter has been notified via SMS. Message sent with %s priority.", urgency),
		MessageSID: sid,
		Urgency:    urgency,
	}, nil
}

// buildMessage assembles the urgency-prefixed alert, optional customer line
// and timestamp line.
func (r *Relay) buildMessage(message, urgency, customerInfo string) string {
	if message == "" {
		message = defaultMessage
	}

	var prefix string
	switch urgency {
	case UrgencyHigh:
		prefix = "URGENT: "
	case UrgencyMedium:
		prefix = "ATTENTION: "
	case UrgencyLow:
		prefix = "FYI: "
	}

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(message)
	if customerInfo != "" {
		b.WriteString("\n\nCustomer Info: ")
		b.WriteString(customerInfo)
	}
	b.WriteString("\n\nTime: ")
	b.WriteString(r.now().Format(time.Kitchen))
	return b.String()
}

// classifyDeliveryError pattern-matches the provider error text into a
// user-facing category. Brittle (the provider does not guarantee its error
// strings), kept for parity with the behavior the UI expects.
// TODO: switch to Twilio's structured error codes from TwilioRestError.
func classifyDeliveryError(err error) *models.APIError {
	msg := err.Error()

	label := "Failed to notify waiter"
	code := "notification_error"
	switch {
	case strings.Contains(msg, "phone number"):
		label = "Invalid phone number configuration"
		code = "invalid_phone_number"
	case strings.Contains(msg, "credentials"):
		label = "Invalid Twilio credentials"
		code = "invalid_credentials"
	case strings.Contains(msg, "messaging service"):
		label = "Invalid messaging service configuration"
		code = "invalid_messaging_service"
	}

	return &models.APIError{
		Error:   label,
		Code:    code,
		Level:   models.ErrorLevelError,
		Content: "Unable to send notification to waiter. Please try again or call for assistance.",
	}
}
