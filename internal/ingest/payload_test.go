package ingest

import "testing"

func TestClassifyPayload(t *testing.T) {
	tests := []struct {
		name     string
		req      *WebhookRequest
		hasMedia bool
	}{
		{
			name:     "media present",
			req:      &WebhookRequest{From: "+15551234567", NumMedia: "1", MediaURL0: "https://provider/media/abc"},
			hasMedia: true,
		},
		{
			name:     "zero media",
			req:      &WebhookRequest{From: "+15551234567", NumMedia: "0"},
			hasMedia: false,
		},
		{
			name:     "absent media count",
			req:      &WebhookRequest{From: "+15551234567", MediaURL0: "https://provider/media/abc"},
			hasMedia: false,
		},
		{
			name:     "missing media url",
			req:      &WebhookRequest{From: "+15551234567", NumMedia: "1"},
			hasMedia: false,
		},
		{
			name:     "missing sender",
			req:      &WebhookRequest{NumMedia: "1", MediaURL0: "https://provider/media/abc"},
			hasMedia: false,
		},
		{
			name:     "nil request",
			req:      nil,
			hasMedia: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, ok := ClassifyPayload(tt.req)
			if ok != tt.hasMedia {
				t.Fatalf("expected hasMedia=%v, got %v", tt.hasMedia, ok)
			}
			if ok && sub.MediaURL == "" {
				t.Fatal("expected media URL on hasMedia classification")
			}
		})
	}
}

func TestClassifyPayload_Caption(t *testing.T) {
	sub, ok := ClassifyPayload(&WebhookRequest{
		From:      "+15551234567",
		Body:      "  Sunday lasagna  ",
		NumMedia:  "2",
		MediaURL0: "https://provider/media/abc",
	})
	if !ok {
		t.Fatal("expected hasMedia classification")
	}
	if sub.Caption != "Sunday lasagna" {
		t.Fatalf("expected trimmed caption, got %q", sub.Caption)
	}
}
