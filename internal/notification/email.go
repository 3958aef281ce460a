package notification

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"seat-reservation/internal/event"
	"seat-reservation/pkg/utils"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// MailSender is the part of gomail.Dialer used here.
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailNotifier struct {
	sender MailSender
	from   string
	log    *zap.Logger
}

// NewEmailNotifier returns nil when SMTP is not configured.
func NewEmailNotifier(cfg utils.EmailConfig, log *zap.Logger) *EmailNotifier {
	if cfg.Host == "" || cfg.From == "" {
		return nil
	}
	return NewEmailNotifierWithSender(gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password), cfg.From, log)
}

func NewEmailNotifierWithSender(sender MailSender, from string, log *zap.Logger) *EmailNotifier {
	return &EmailNotifier{
		sender: sender,
		from:   from,
		log:    log.With(zap.String("notifier", "email")),
	}
}

func (n *EmailNotifier) Name() string { return "email" }

func (n *EmailNotifier) NotifyBookingConfirmed(_ context.Context, ev event.BookingConfirmed) error {
	if strings.TrimSpace(ev.Email) == "" {
		return fmt.Errorf("email for booking %s: %w", ev.BookingID, ErrSkipped)
	}

	body, err := renderConfirmationEmail(ev)
	if err != nil {
		return fmt.Errorf("render email for booking %s: %w", ev.BookingID, err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", ev.Email)
	m.SetHeader("Subject", "Booking Confirmed - "+ev.Reference)
	m.SetBody("text/plain", confirmationText(ev))
	m.AddAlternative("text/html", body)

	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("send email for booking %s: %w", ev.BookingID, err)
	}

	n.log.Info("Confirmation email sent", zap.String("booking_id", ev.BookingID), zap.String("to", ev.Email))
	return nil
}

var confirmationEmail = template.Must(template.New("confirmation").Parse(`<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Booking Confirmed</h2>
  <p><strong>{{.MovieTitle}}</strong></p>
  <p>Theatre: {{.TheatreName}}, {{.TheatreCity}}</p>
  <p>Show time: {{.ShowTime}}</p>
  <p>Seats: {{.Seats}}</p>
  <p>Reference: {{.Reference}}</p>
  <p style="font-size: 13px; color: #6c757d;">Please arrive 15 minutes before the show.</p>
</body>
</html>`))

func renderConfirmationEmail(ev event.BookingConfirmed) (string, error) {
	var sb strings.Builder
	err := confirmationEmail.Execute(&sb, map[string]string{
		"MovieTitle":  ev.MovieTitle,
		"TheatreName": ev.TheatreName,
		"TheatreCity": ev.TheatreCity,
		"ShowTime":    ev.ShowStartTime.Format(showTimeLayout),
		"Seats":       strings.Join(ev.SeatLabels(), ", "),
		"Reference":   ev.Reference,
	})
	return sb.String(), err
}
