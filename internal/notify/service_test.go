package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/familyplate/recipebox/internal/gallery"
)

type mockSender struct {
	sent []EmailMessage
	err  error
}

func (m *mockSender) Send(_ context.Context, msg EmailMessage) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func TestNotifySubmission(t *testing.T) {
	sender := &mockSender{}
	svc := NewService(sender, "owner@example.com", nil)

	err := svc.NotifySubmission(context.Background(), &gallery.GalleryItem{
		ID:          "g1750000000000",
		Type:        "image",
		URL:         "https://s3.amazonaws.com/recipebox-gallery/gallery/1750000000000.jpeg",
		Caption:     "Sunday lasagna",
		Contributor: "Grandma Joan",
	})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "owner@example.com", msg.To)
	assert.Contains(t, msg.Subject, "Grandma Joan")
	assert.Contains(t, msg.Body, "Sunday lasagna")
	assert.Contains(t, msg.Body, "gallery/1750000000000.jpeg")
}

func TestNotifySubmission_Unconfigured(t *testing.T) {
	svc := NewService(nil, "", nil)
	err := svc.NotifySubmission(context.Background(), &gallery.GalleryItem{ID: "g1"})
	assert.NoError(t, err)
}

func TestNotifySubmission_SendFailure(t *testing.T) {
	svc := NewService(&mockSender{err: errors.New("ses down")}, "owner@example.com", nil)
	err := svc.NotifySubmission(context.Background(), &gallery.GalleryItem{ID: "g1"})
	assert.Error(t, err)
}
