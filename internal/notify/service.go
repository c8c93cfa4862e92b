package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/Mrxforte/tooler/internal/admin"
	"github.com/Mrxforte/tooler/internal/apierror"
	"github.com/Mrxforte/tooler/internal/mailer"
)

// Service sends the transactional account emails.
type Service interface {
	// SendPasswordRecovery delivers the password recovery notification and
	// returns the delivery message ID.
	SendPasswordRecovery(ctx context.Context, email, userName string) (string, error)
	// SendPasswordBackup delivers the password backup notification.
	SendPasswordBackup(ctx context.Context, email, userName string, createdAt *time.Time) (string, error)
}

type service struct {
	directory  admin.Directory
	dispatcher mailer.Dispatcher
}

// NewService creates a notification service over the given directory and dispatcher.
func NewService(directory admin.Directory, dispatcher mailer.Dispatcher) Service {
	return &service{directory: directory, dispatcher: dispatcher}
}

func (s *service) SendPasswordRecovery(ctx context.Context, email, userName string) (string, error) {
	if email == "" {
		return "", apierror.InvalidArgument("Email address is required")
	}

	// The account must exist before anything is delivered. Lookup failures,
	// including unknown addresses, are reported uniformly.
	if _, err := s.directory.GetAccountByEmail(ctx, email); err != nil {
		return "", apierror.Internal(fmt.Sprintf("Failed to send email: %v", err))
	}

	body, err := mailer.RenderPasswordRecovery(email, userName, time.Now())
	if err != nil {
		return "", apierror.Internal(fmt.Sprintf("Failed to send email: %v", err))
	}

	messageID, err := s.dispatcher.Send(ctx, mailer.Message{
		To:      email,
		Subject: mailer.SubjectPasswordRecovery,
		HTML:    body,
	})
	if err != nil {
		return "", apierror.Internal(fmt.Sprintf("Failed to send email: %v", err))
	}

	return messageID, nil
}

func (s *service) SendPasswordBackup(ctx context.Context, email, userName string, createdAt *time.Time) (string, error) {
	if email == "" {
		return "", apierror.InvalidArgument("Email address is required")
	}

	if _, err := s.directory.GetAccountByEmail(ctx, email); err != nil {
		return "", apierror.Internal(fmt.Sprintf("Failed to send email: %v", err))
	}

	body, err := mailer.RenderPasswordBackup(email, userName, createdAt)
	if err != nil {
		return "", apierror.Internal(fmt.Sprintf("Failed to send email: %v", err))
	}

	messageID, err := s.dispatcher.Send(ctx, mailer.Message{
		To:      email,
		Subject: mailer.SubjectPasswordBackup,
		HTML:    body,
	})
	if err != nil {
		return "", apierror.Internal(fmt.Sprintf("Failed to send email: %v", err))
	}

	return messageID, nil
}
