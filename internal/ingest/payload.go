package ingest

import (
	"strconv"
	"strings"
)

// Submission is the usable portion of a validated MMS payload.
type Submission struct {
	MediaURL string
	Caption  string
}

// ClassifyPayload reports whether the webhook carries usable media. A missing
// sender, a zero or absent media count, or an absent media URL all classify
// as "no media"; the caller replies conversationally rather than erroring.
func ClassifyPayload(req *WebhookRequest) (Submission, bool) {
	if req == nil || strings.TrimSpace(req.From) == "" {
		return Submission{}, false
	}
	count, err := strconv.Atoi(strings.TrimSpace(req.NumMedia))
	if err != nil || count <= 0 {
		return Submission{}, false
	}
	mediaURL := strings.TrimSpace(req.MediaURL0)
	if mediaURL == "" {
		return Submission{}, false
	}
	return Submission{
		MediaURL: mediaURL,
		Caption:  strings.TrimSpace(req.Body),
	}, true
}
