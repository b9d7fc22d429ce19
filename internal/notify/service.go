package notify

import (
	"context"
	"fmt"

	"github.com/familyplate/recipebox/internal/gallery"
	"github.com/familyplate/recipebox/pkg/logging"
)

// Service emails the archive owner about new gallery submissions. Delivery is
// best effort and never affects the webhook acknowledgment.
type Service struct {
	email      EmailSender
	ownerEmail string
	logger     *logging.Logger
}

// NewService creates a notification service. A nil sender or empty owner
// address turns every notification into a no-op.
func NewService(email EmailSender, ownerEmail string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:      email,
		ownerEmail: ownerEmail,
		logger:     logger,
	}
}

// NotifySubmission emails the owner about a newly archived gallery item.
func (s *Service) NotifySubmission(ctx context.Context, item *gallery.GalleryItem) error {
	if s == nil || s.email == nil || s.ownerEmail == "" || item == nil {
		return nil
	}

	caption := item.Caption
	if caption == "" {
		caption = "(no caption)"
	}
	msg := EmailMessage{
		To:      s.ownerEmail,
		Subject: fmt.Sprintf("New gallery submission from %s", item.Contributor),
		Body: fmt.Sprintf("%s added a new %s to the family gallery.\n\nCaption: %s\nLink: %s\n",
			item.Contributor, item.Type, caption, item.URL),
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: send submission email: %w", err)
	}
	return nil
}
