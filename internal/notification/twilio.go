package notification

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"seat-reservation/internal/event"
	"seat-reservation/pkg/utils"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// TwilioAPI is the part of the Twilio REST client used for SMS and calls.
type TwilioAPI interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
	CreateCall(params *twilioApi.CreateCallParams) (*twilioApi.ApiV2010Call, error)
}

// NewTwilioAPI returns nil when no credentials are configured.
func NewTwilioAPI(cfg utils.TwilioConfig) TwilioAPI {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.FromNumber == "" {
		return nil
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return client.Api
}

// ==================== SMS ====================

type SMSNotifier struct {
	api  TwilioAPI
	from string
	log  *zap.Logger
}

func NewSMSNotifier(api TwilioAPI, from string, log *zap.Logger) *SMSNotifier {
	return &SMSNotifier{
		api:  api,
		from: from,
		log:  log.With(zap.String("notifier", "sms")),
	}
}

func (n *SMSNotifier) Name() string { return "sms" }

func (n *SMSNotifier) NotifyBookingConfirmed(_ context.Context, ev event.BookingConfirmed) error {
	to := NormalizePhoneNumber(ev.PhoneNumber)
	if to == "" {
		return fmt.Errorf("sms for booking %s: %w", ev.BookingID, ErrSkipped)
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(n.from)
	params.SetBody(confirmationText(ev))

	msg, err := n.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("send sms for booking %s: %w", ev.BookingID, err)
	}

	n.log.Info("Confirmation SMS sent",
		zap.String("booking_id", ev.BookingID),
		zap.String("sid", deref(msg.Sid)),
	)
	return nil
}

// ==================== VOICE ====================

type VoiceNotifier struct {
	api  TwilioAPI
	from string
	log  *zap.Logger
}

func NewVoiceNotifier(api TwilioAPI, from string, log *zap.Logger) *VoiceNotifier {
	return &VoiceNotifier{
		api:  api,
		from: from,
		log:  log.With(zap.String("notifier", "voice")),
	}
}

func (n *VoiceNotifier) Name() string { return "voice" }

func (n *VoiceNotifier) NotifyBookingConfirmed(_ context.Context, ev event.BookingConfirmed) error {
	text := fmt.Sprintf("Your booking %s for %s at %s is confirmed. Seats %s.",
		ev.Reference, ev.MovieTitle, ev.TheatreName, strings.Join(ev.SeatLabels(), ", "))
	sid, err := n.call(ev.PhoneNumber, text)
	if err != nil {
		return fmt.Errorf("call for booking %s: %w", ev.BookingID, err)
	}

	n.log.Info("Confirmation call placed", zap.String("booking_id", ev.BookingID), zap.String("sid", sid))
	return nil
}

func (n *VoiceNotifier) SendReminder(_ context.Context, r Reminder) error {
	sid, err := n.call(r.PhoneNumber, reminderText(r))
	if err != nil {
		return fmt.Errorf("reminder call for booking %s: %w", r.BookingID, err)
	}

	n.log.Info("Reminder call placed", zap.String("booking_id", r.BookingID), zap.String("sid", sid))
	return nil
}

func (n *VoiceNotifier) call(phone, text string) (string, error) {
	to := NormalizePhoneNumber(phone)
	if to == "" {
		return "", ErrSkipped
	}

	twiml, err := sayTwiML(text)
	if err != nil {
		return "", err
	}

	params := &twilioApi.CreateCallParams{}
	params.SetTo(to)
	params.SetFrom(n.from)
	params.SetTwiml(twiml)

	call, err := n.api.CreateCall(params)
	if err != nil {
		return "", err
	}
	return deref(call.Sid), nil
}

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Say     twimlSay `xml:"Say"`
}

type twimlSay struct {
	Voice string `xml:"voice,attr"`
	Text  string `xml:",chardata"`
}

func sayTwiML(text string) (string, error) {
	out, err := xml.Marshal(twimlResponse{Say: twimlSay{Voice: "alice", Text: text}})
	if err != nil {
		return "", fmt.Errorf("build twiml: %w", err)
	}
	return xml.Header + string(out), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
