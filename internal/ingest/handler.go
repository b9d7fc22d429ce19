// Package ingest handles inbound Twilio MMS webhooks for the family gallery.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/familyplate/recipebox/internal/gallery"
	"github.com/familyplate/recipebox/internal/media"
	observemetrics "github.com/familyplate/recipebox/internal/observability/metrics"
	"github.com/familyplate/recipebox/pkg/logging"
)

var mmsTracer = otel.Tracer("recipebox.internal.ingest")

// developmentBaseURL is the last-resort callback host used when neither
// forwarded headers nor PUBLIC_BASE_URL identify the deployment.
const developmentBaseURL = "http://localhost:8080"

type contributorResolver interface {
	Resolve(ctx context.Context, phone string) string
}

type mediaFetcher interface {
	Fetch(ctx context.Context, url string) (*media.Object, error)
}

type archiveWriter interface {
	Archive(ctx context.Context, sub gallery.Submission) (*gallery.GalleryItem, error)
}

type submissionNotifier interface {
	NotifySubmission(ctx context.Context, item *gallery.GalleryItem) error
}

// Handler orchestrates the MMS ingestion pipeline. Each invocation is an
// independent, stateless request-response unit; once past payload
// validation, every failure is normalized to an in-band failure
// acknowledgment so the provider always receives HTTP 200.
type Handler struct {
	authToken     string
	publicBaseURL string
	resolver      contributorResolver
	fetcher       mediaFetcher
	archive       archiveWriter
	notifier      submissionNotifier
	logger        *logging.Logger
	metrics       *observemetrics.IngestMetrics
}

// HandlerConfig holds the dependencies of a Handler.
type HandlerConfig struct {
	AuthToken     string
	PublicBaseURL string
	Resolver      contributorResolver
	Fetcher       mediaFetcher
	Archive       archiveWriter
	Notifier      submissionNotifier
	Logger        *logging.Logger
	Metrics       *observemetrics.IngestMetrics
}

// NewHandler creates the webhook handler. An empty auth token disables
// signature verification entirely, which is acceptable only outside
// production.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Resolver == nil {
		panic("ingest: resolver cannot be nil")
	}
	if cfg.Fetcher == nil {
		panic("ingest: fetcher cannot be nil")
	}
	if cfg.Archive == nil {
		panic("ingest: archive writer cannot be nil")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.AuthToken == "" {
		cfg.Logger.Warn("twilio signature verification disabled: no auth token configured")
	}
	return &Handler{
		authToken:     cfg.AuthToken,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		resolver:      cfg.Resolver,
		fetcher:       cfg.Fetcher,
		archive:       cfg.Archive,
		notifier:      cfg.Notifier,
		logger:        cfg.Logger,
		metrics:       cfg.Metrics,
	}
}

// HandleMMS processes POST /webhooks/twilio/mms requests.
func (h *Handler) HandleMMS(w http.ResponseWriter, r *http.Request) {
	ctx, span := mmsTracer.Start(r.Context(), "ingest.twilio.mms")
	defer span.End()
	start := time.Now()

	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	webhookURL := h.callbackURL(r)
	if h.authToken != "" {
		if !ValidateTwilioSignature(r, h.authToken, webhookURL) {
			h.logger.Warn("invalid twilio signature", "url", webhookURL)
			span.RecordError(errors.New("invalid twilio signature"))
			h.observe(OutcomeRejected, start)
			writeJSONError(w, http.StatusForbidden, "invalid signature")
			return
		}
	}

	webhook, err := ParseWebhook(r)
	if err != nil {
		// An unreadable body carries no media; reply conversationally.
		h.logger.Warn("failed to parse twilio webhook", "error", err)
		h.ack(w, OutcomeNoMedia, "", start)
		return
	}
	span.SetAttributes(
		attribute.String("recipebox.twilio.message_sid", webhook.MessageSid),
		attribute.String("recipebox.twilio.from", webhook.From),
	)

	sub, hasMedia := ClassifyPayload(webhook)
	if !hasMedia {
		h.logger.Info("webhook without usable media", "from", webhook.From, "num_media", webhook.NumMedia)
		h.ack(w, OutcomeNoMedia, "", start)
		return
	}

	contributor := h.resolver.Resolve(ctx, webhook.From)
	span.SetAttributes(attribute.String("recipebox.contributor", contributor))

	obj, err := h.fetcher.Fetch(ctx, sub.MediaURL)
	if err != nil {
		h.logger.Error("media fetch failed", "error", err, "url", sub.MediaURL, "message_sid", webhook.MessageSid)
		span.RecordError(err)
		h.ack(w, OutcomeFailure, "", start)
		return
	}

	item, err := h.archive.Archive(ctx, gallery.Submission{
		Bytes:       obj.Bytes,
		ContentType: obj.ContentType,
		Caption:     sub.Caption,
		Contributor: contributor,
	})
	if err != nil {
		h.logger.Error("archive failed", "error", err, "message_sid", webhook.MessageSid, "contributor", contributor)
		span.RecordError(err)
		h.ack(w, OutcomeFailure, "", start)
		return
	}

	h.metrics.AddArchivedBytes(len(obj.Bytes))
	h.notifyOwner(item)
	h.logger.Info("mms ingested", "gallery_id", item.ID, "contributor", contributor, "type", item.Type)
	h.ack(w, OutcomeSuccess, contributor, start)
}

func (h *Handler) ack(w http.ResponseWriter, outcome Outcome, contributor string, start time.Time) {
	h.observe(outcome, start)
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(TwiML(ComposeReply(outcome, contributor))))
}

func (h *Handler) observe(outcome Outcome, start time.Time) {
	h.metrics.ObserveWebhook(string(outcome), time.Since(start).Seconds())
}

// notifyOwner is best effort: the provider ack never waits on email delivery
// longer than the timeout and never reflects its failure.
func (h *Handler) notifyOwner(item *gallery.GalleryItem) {
	if h.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.notifier.NotifySubmission(ctx, item); err != nil {
		h.logger.Warn("failed to send submission notification", "error", err, "gallery_id", item.ID)
	}
}

// callbackURL reconstructs the externally-visible URL the provider signed:
// forwarded headers first, then the configured public base URL, then a
// development default.
func (h *Handler) callbackURL(r *http.Request) string {
	uri := r.URL.RequestURI()
	scheme := r.Header.Get("X-Forwarded-Proto")
	if host := r.Header.Get("X-Forwarded-Host"); host != "" {
		if scheme == "" {
			scheme = "https"
		}
		return fmt.Sprintf("%s://%s%s", scheme, host, uri)
	}
	if h.publicBaseURL != "" {
		return h.publicBaseURL + uri
	}
	return developmentBaseURL + uri
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
