package services

import (
	"context"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/yukikurage/timetracker-api/internal/config"
	"github.com/yukikurage/timetracker-api/internal/metrics"
	"go.uber.org/zap"
)

// Notifier delivers account emails. Callers never wait on it; see Dispatch.
type Notifier interface {
	SendPasswordReset(ctx context.Context, email, token string) error
	SendNewAccount(ctx context.Context, email, password string) error
}

// NewNotifier returns an SMTP notifier when email delivery is configured and
// a log-only notifier otherwise.
func NewNotifier(cfg *config.Config, log *zap.Logger) Notifier {
	if cfg.EmailsEnabled() {
		return &SMTPNotifier{cfg: cfg}
	}
	return &LogNotifier{log: log}
}

// Dispatch runs send in the background. Failures and panics are logged and
// counted, never returned.
func Dispatch(log *zap.Logger, kind string, send func(ctx context.Context) error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				metrics.NotificationsTotal.WithLabelValues(kind, "error").Inc()
				log.Error("notification panicked", zap.String("kind", kind), zap.Any("panic", r))
			}
		}()

		if err := send(context.Background()); err != nil {
			metrics.NotificationsTotal.WithLabelValues(kind, "error").Inc()
			log.Warn("notification failed", zap.String("kind", kind), zap.Error(err))
			return
		}
		metrics.NotificationsTotal.WithLabelValues(kind, "sent").Inc()
	}()
}

// SMTPNotifier sends plain text mail through the configured relay.
type SMTPNotifier struct {
	cfg *config.Config
}

func (n *SMTPNotifier) SendPasswordReset(ctx context.Context, email, token string) error {
	link := strings.TrimRight(n.cfg.FrontendURL, "/") + "/reset-password?token=" + token
	body := "A password reset was requested for your account.\r\n\r\n" +
		"Use the link below within " + n.cfg.ResetTokenTTL.String() + ":\r\n" + link + "\r\n\r\n" +
		"If you did not request this, ignore this email.\r\n"
	return n.send(ctx, email, "Password recovery", body)
}

func (n *SMTPNotifier) SendNewAccount(ctx context.Context, email, password string) error {
	body := "An account has been created for you.\r\n\r\n" +
		"Username: " + email + "\r\n" +
		"Password: " + password + "\r\n\r\n" +
		"Sign in at " + n.cfg.FrontendURL + " and change your password.\r\n"
	return n.send(ctx, email, "New account", body)
}

func (n *SMTPNotifier) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	from := n.cfg.EmailsFromEmail
	if n.cfg.EmailsFromName != "" {
		from = fmt.Sprintf("%s <%s>", n.cfg.EmailsFromName, n.cfg.EmailsFromEmail)
	}
	msg := "From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n\r\n" +
		body

	addr := n.cfg.SMTPHost + ":" + strconv.Itoa(n.cfg.SMTPPort)
	var auth smtp.Auth
	if n.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", n.cfg.SMTPUser, n.cfg.SMTPPassword, n.cfg.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, n.cfg.EmailsFromEmail, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

// LogNotifier records notifications in the log instead of sending them.
type LogNotifier struct {
	log *zap.Logger
}

func (n *LogNotifier) SendPasswordReset(_ context.Context, email, _ string) error {
	n.log.Info("password reset requested, email delivery disabled", zap.String("email", email))
	return nil
}

func (n *LogNotifier) SendNewAccount(_ context.Context, email, _ string) error {
	n.log.Info("account created, email delivery disabled", zap.String("email", email))
	return nil
}
