package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remy/internal/models"
)

type fakeSender struct {
	lastTo   string
	lastSID  string
	lastBody string
	err      error
}

func (f *fakeSender) Send(_ context.Context, to, messagingServiceSID, body string) (string, error) {
	f.lastTo = to
	f.lastSID = messagingServiceSID
	f.lastBody = body
	if f.err != nil {
		return "", f.err
	}
	return "SM123", nil
}

func completeConfig() Config {
	return Config{
		AccountSID:          "AC123",
		AuthToken:           "token",
		MessagingServiceSID: "MG123",
		ToNumber:            "+15550001111",
	}
}

func newTestRelay(cfg Config, sender MessageSender) *Relay {
	r := NewRelay(cfg, sender)
	r.now = func() time.Time {
		return time.Date(2026, 8, 30, 18, 30, 0, 0, time.UTC)
	}
	return r
}

func TestNotifyMissingConfiguration(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"all missing", Config{}},
		{"no account sid", Config{AuthToken: "t", MessagingServiceSID: "m", ToNumber: "n"}},
		{"no auth token", Config{AccountSID: "a", MessagingServiceSID: "m", ToNumber: "n"}},
		{"no messaging service", Config{AccountSID: "a", AuthToken: "t", ToNumber: "n"}},
		{"no destination", Config{AccountSID: "a", AuthToken: "t", MessagingServiceSID: "m"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			r := newTestRelay(tt.cfg, sender)

			_, apiErr := r.Notify(context.Background(), Request{Message: "help"})

			require.NotNil(t, apiErr)
			assert.Equal(t, "twilio_config_error", apiErr.Code)
			assert.Equal(t, models.ErrorLevelError, apiErr.Level)
			// Configuration errors never attempt delivery.
			assert.Empty(t, sender.lastBody)
		})
	}
}

func TestNotifyDefaults(t *testing.T) {
	sender := &fakeSender{}
	r := newTestRelay(completeConfig(), sender)

	confirmation, apiErr := r.Notify(context.Background(), Request{})

	require.Nil(t, apiErr)
	assert.Equal(t, "medium", confirmation.Urgency)
	assert.Equal(t, "SM123", confirmation.MessageSID)
	assert.Contains(t, confirmation.Message, "medium priority")

	assert.Equal(t, "+15550001111", sender.lastTo)
	assert.Equal(t, "MG123", sender.lastSID)
	assert.True(t, strings.HasPrefix(sender.lastBody, "ATTENTION: Customer needs assistance at their table."), "body was %q", sender.lastBody)
	assert.Contains(t, sender.lastBody, "Time: ")
	assert.NotContains(t, sender.lastBody, "Customer Info:")
}

func TestNotifyMessageComposition(t *testing.T) {
	tests := []struct {
		name       string
		req        Request
		wantPrefix string
	}{
		{"high urgency", Request{Message: "Spill at table 4", Urgency: "high"}, "URGENT: Spill at table 4"},
		{"low urgency", Request{Message: "More napkins", Urgency: "low"}, "FYI: More napkins"},
		{"unknown urgency defaults to medium", Request{Message: "Check please", Urgency: "now!!"}, "ATTENTION: Check please"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			r := newTestRelay(completeConfig(), sender)

			_, apiErr := r.Notify(context.Background(), tt.req)

			require.Nil(t, apiErr)
			assert.True(t, strings.HasPrefix(sender.lastBody, tt.wantPrefix), "body was %q", sender.lastBody)
		})
	}
}

func TestNotifyIncludesCustomerInfo(t *testing.T) {
	sender := &fakeSender{}
	r := newTestRelay(completeConfig(), sender)

	_, apiErr := r.Notify(context.Background(), Request{
		Message:      "Allergy question",
		CustomerInfo: "Table 7, window seat",
	})

	require.Nil(t, apiErr)
	assert.Contains(t, sender.lastBody, "Customer Info: Table 7, window seat")
}

func TestDeliveryErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"phone number", errors.New("the 'To' phone number is not valid"), "invalid_phone_number"},
		{"credentials", errors.New("authentication failed: invalid credentials"), "invalid_credentials"},
		{"messaging service", errors.New("the messaging service was not found"), "invalid_messaging_service"},
		{"anything else", errors.New("rate limited"), "notification_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{err: tt.err}
			r := newTestRelay(completeConfig(), sender)

			_, apiErr := r.Notify(context.Background(), Request{Message: "help"})

			require.NotNil(t, apiErr)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, models.ErrorLevelError, apiErr.Level)
		})
	}
}
