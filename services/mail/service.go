package mail

import (
	"fmt"

	"github.com/SandipanKhanra/letschat/config"
	"github.com/SandipanKhanra/letschat/services/logging"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

type Service struct {
	config *config.MailConfig
	app    *config.AppConfig
	client *mail.Client
	logger *logging.Service
}

func NewService(cfg *config.MailConfig, app *config.AppConfig, logger *logging.Service) (*Service, error) {
	if cfg.FromAddress == "" {
		if logger != nil {
			logger.Error("mail service initialization failed: FROM_ADDRESS is required")
		}
		return nil, fmt.Errorf("LETSCHAT_MAIL_FROM_ADDRESS is required")
	}

	clientOpts := []mail.Option{
		mail.WithPort(cfg.Port),
	}

	if cfg.Username != "" {
		clientOpts = append(clientOpts, mail.WithSMTPAuth(mail.SMTPAuthPlain))
		clientOpts = append(clientOpts, mail.WithUsername(cfg.Username))
	}
	if cfg.Password != "" {
		clientOpts = append(clientOpts, mail.WithPassword(cfg.Password))
	}

	switch cfg.Encryption {
	case "tls", "starttls":
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	case "ssl":
		clientOpts = append(clientOpts, mail.WithSSL())
	case "none":
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.NoTLS))
	default:
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(cfg.Host, clientOpts...)
	if err != nil {
		if logger != nil {
			logger.Error("failed to create mail client",
				zap.Error(err),
				zap.String("host", cfg.Host),
				zap.Int("port", cfg.Port))
		}
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	if logger != nil {
		logger.Info("mail service initialized",
			zap.String("host", cfg.Host),
			zap.Int("port", cfg.Port),
			zap.String("from_address", cfg.FromAddress))
	}

	return &Service{
		config: cfg,
		app:    app,
		client: client,
		logger: logger,
	}, nil
}

func (s *Service) SendWelcome(to string, displayName string) error {
	msg := mail.NewMsg()

	if err := msg.FromFormat(s.config.FromName, s.config.FromAddress); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}

	name := displayName
	if name == "" {
		name = to
	}

	msg.Subject(fmt.Sprintf("Welcome to %s", s.app.Name))
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Hi %s,\n\nYour %s account is ready. Sign in at %s to start chatting.\n",
		name, s.app.Name, s.app.URL))

	if err := s.client.DialAndSend(msg); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to send welcome email", zap.Error(err))
		}
		return fmt.Errorf("failed to send welcome email: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("welcome email sent")
	}

	return nil
}
