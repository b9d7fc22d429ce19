package ingest

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Outcome enumerates the terminal acknowledgments of the webhook pipeline.
type Outcome string

const (
	OutcomeNoMedia Outcome = "no_media"
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"

	// OutcomeRejected is metrics-only: the 403 path bypasses the TwiML
	// composer because it targets a potential attacker, not a provider retry.
	OutcomeRejected Outcome = "rejected"
)

const (
	noMediaReply = "No media detected. Attach a photo or video and it will be added to the family gallery."
	failureReply = "Sorry, something went wrong saving your submission. Please try again in a bit."
)

// ComposeReply builds the plain-text acknowledgment for an outcome. It is
// returned to the sender's messaging client in the TwiML envelope; every
// post-signature path replies in-band with HTTP 200 so the provider never
// retries a misread non-200 into a duplicate ingestion.
func ComposeReply(outcome Outcome, contributor string) string {
	switch outcome {
	case OutcomeNoMedia:
		return noMediaReply
	case OutcomeSuccess:
		return fmt.Sprintf("Thanks, %s! Your submission was added to the family gallery.", contributor)
	default:
		return failureReply
	}
}

// TwiML wraps a single message in the Twilio reply envelope. The message is
// XML-escaped so contributor names with markup characters still produce a
// well-formed reply.
func TwiML(message string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><Response><Message>`)
	_ = xml.EscapeText(&b, []byte(message))
	b.WriteString(`</Message></Response>`)
	return b.String()
}
