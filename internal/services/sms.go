package services

import (
	"fmt"
	"os"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/ridewise/ridewise-backend/internal/jobs"
)

// SMSSender delivers SMS notifications (booking confirmations, OTP relay)
// via Twilio. It implements jobs.Sender.
type SMSSender struct {
	client *twilio.RestClient
	from   string
}

// NewSMSSender creates the Twilio-backed sender. It returns an error when
// credentials are missing; main treats that as "SMS channel disabled".
func NewSMSSender() (*SMSSender, error) {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_PHONE_NUMBER")

	if accountSid == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("missing Twilio credentials in environment variables")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})

	return &SMSSender{client: client, from: from}, nil
}

// Send delivers one SMS. Subject is ignored; SMS bodies carry everything.
func (s *SMSSender) Send(msg jobs.Message) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(s.from)
	params.SetTo(msg.To)
	params.SetBody(msg.Body)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("send sms to %s: %w", msg.To, err)
	}
	return nil
}
