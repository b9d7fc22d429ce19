package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/familyplate/recipebox/internal/contributors"
	"github.com/familyplate/recipebox/internal/gallery"
	"github.com/familyplate/recipebox/internal/media"
)

type stubResolver struct {
	names map[string]string
}

func (s *stubResolver) Resolve(_ context.Context, phone string) string {
	if name, ok := s.names[phone]; ok {
		return name
	}
	return contributors.DefaultName
}

type stubFetcher struct {
	obj     *media.Object
	err     error
	fetched []string
}

func (s *stubFetcher) Fetch(_ context.Context, url string) (*media.Object, error) {
	s.fetched = append(s.fetched, url)
	if s.err != nil {
		return nil, s.err
	}
	return s.obj, nil
}

type stubArchive struct {
	subs []gallery.Submission
	item *gallery.GalleryItem
	err  error
}

func (s *stubArchive) Archive(_ context.Context, sub gallery.Submission) (*gallery.GalleryItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.subs = append(s.subs, sub)
	return s.item, nil
}

type stubNotifier struct {
	items []*gallery.GalleryItem
}

func (s *stubNotifier) NotifySubmission(_ context.Context, item *gallery.GalleryItem) error {
	s.items = append(s.items, item)
	return nil
}

func newTestHandler(authToken string, fetcher *stubFetcher, archive *stubArchive, notifier *stubNotifier) *Handler {
	var n submissionNotifier
	if notifier != nil {
		n = notifier
	}
	return NewHandler(HandlerConfig{
		AuthToken: authToken,
		Resolver:  &stubResolver{names: map[string]string{"+15551234567": "Grandma Joan"}},
		Fetcher:   fetcher,
		Archive:   archive,
		Notifier:  n,
	})
}

func mmsForm() url.Values {
	form := url.Values{}
	form.Set("MessageSid", "SM123")
	form.Set("From", "+15551234567")
	form.Set("Body", "Sunday lasagna")
	form.Set("NumMedia", "1")
	form.Set("MediaUrl0", "https://provider/media/abc")
	return form
}

func postForm(form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/twilio/mms", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// Scenario A: a signed, valid MMS lands in the gallery with its contributor
// resolved and the sender thanked by name.
func TestHandleMMS_Success(t *testing.T) {
	fetcher := &stubFetcher{obj: &media.Object{Bytes: make([]byte, 50*1024), ContentType: "image/jpeg"}}
	archive := &stubArchive{item: &gallery.GalleryItem{ID: "g1", Type: "image", Contributor: "Grandma Joan"}}
	notifier := &stubNotifier{}
	h := newTestHandler("", fetcher, archive, notifier)

	w := httptest.NewRecorder()
	h.HandleMMS(w, postForm(mmsForm()))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/xml", w.Header().Get("Content-Type"))
	assert.Contains(t, strings.ToLower(w.Body.String()), "grandma joan")

	require.Len(t, fetcher.fetched, 1)
	assert.Equal(t, "https://provider/media/abc", fetcher.fetched[0])

	require.Len(t, archive.subs, 1)
	sub := archive.subs[0]
	assert.Equal(t, "Grandma Joan", sub.Contributor)
	assert.Equal(t, "Sunday lasagna", sub.Caption)
	assert.Equal(t, "image/jpeg", sub.ContentType)
	assert.Len(t, sub.Bytes, 50*1024)

	require.Len(t, notifier.items, 1)
	assert.Equal(t, "g1", notifier.items[0].ID)
}

// Scenario B: the provider media URL 404s; nothing is written and the sender
// gets the generic failure acknowledgment over HTTP 200.
func TestHandleMMS_FetchFailure(t *testing.T) {
	fetcher := &stubFetcher{err: &media.FetchError{URL: "https://provider/media/abc", StatusCode: http.StatusNotFound}}
	archive := &stubArchive{}
	h := newTestHandler("", fetcher, archive, nil)

	w := httptest.NewRecorder()
	h.HandleMMS(w, postForm(mmsForm()))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "something went wrong")
	assert.Empty(t, archive.subs)
}

// Scenario C: zero media short-circuits before any store interaction.
func TestHandleMMS_NoMedia(t *testing.T) {
	fetcher := &stubFetcher{}
	archive := &stubArchive{}
	h := newTestHandler("", fetcher, archive, nil)

	form := mmsForm()
	form.Set("NumMedia", "0")
	form.Del("MediaUrl0")

	w := httptest.NewRecorder()
	h.HandleMMS(w, postForm(form))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/xml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "No media detected")
	assert.Empty(t, fetcher.fetched)
	assert.Empty(t, archive.subs)
}

// Scenario D: a bad signature is rejected outright with no provider-format
// body and no store writes.
func TestHandleMMS_InvalidSignature(t *testing.T) {
	fetcher := &stubFetcher{}
	archive := &stubArchive{}
	h := newTestHandler("twilio_auth_token", fetcher, archive, nil)

	req := postForm(mmsForm())
	req.Header.Set("X-Twilio-Signature", "bogus")

	w := httptest.NewRecorder()
	h.HandleMMS(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotContains(t, w.Body.String(), "<Response>")
	assert.Contains(t, w.Body.String(), "invalid signature")
	assert.Empty(t, fetcher.fetched)
	assert.Empty(t, archive.subs)
}

func TestHandleMMS_ValidSignature(t *testing.T) {
	authToken := "twilio_auth_token"
	fetcher := &stubFetcher{obj: &media.Object{Bytes: []byte("img"), ContentType: "image/jpeg"}}
	archive := &stubArchive{item: &gallery.GalleryItem{ID: "g1", Contributor: "Grandma Joan"}}
	h := newTestHandler(authToken, fetcher, archive, nil)
	h.publicBaseURL = "http://example.com"

	form := mmsForm()
	webhookURL := "http://example.com/webhooks/twilio/mms"
	req := postForm(form)
	payload := buildSignaturePayload(webhookURL, form)
	req.Header.Set("X-Twilio-Signature", computeSignature(payload, authToken))

	w := httptest.NewRecorder()
	h.HandleMMS(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, strings.ToLower(w.Body.String()), "grandma joan")
	require.Len(t, archive.subs, 1)
}

func TestHandleMMS_ForwardedHostSignature(t *testing.T) {
	authToken := "twilio_auth_token"
	fetcher := &stubFetcher{obj: &media.Object{Bytes: []byte("img"), ContentType: "image/jpeg"}}
	archive := &stubArchive{item: &gallery.GalleryItem{ID: "g1", Contributor: "Grandma Joan"}}
	h := newTestHandler(authToken, fetcher, archive, nil)

	form := mmsForm()
	// The provider signs the public URL it called, not the proxied one.
	webhookURL := "https://recipebox.example.com/webhooks/twilio/mms"
	req := postForm(form)
	req.Header.Set("X-Forwarded-Proto", "https")
	req.Header.Set("X-Forwarded-Host", "recipebox.example.com")
	payload := buildSignaturePayload(webhookURL, form)
	req.Header.Set("X-Twilio-Signature", computeSignature(payload, authToken))

	w := httptest.NewRecorder()
	h.HandleMMS(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, archive.subs, 1)
}

func TestHandleMMS_ArchiveFailure(t *testing.T) {
	fetcher := &stubFetcher{obj: &media.Object{Bytes: []byte("img"), ContentType: "image/jpeg"}}
	archive := &stubArchive{err: &gallery.ArchiveError{Step: "upload media", Err: errors.New("bucket gone")}}
	h := newTestHandler("", fetcher, archive, nil)

	w := httptest.NewRecorder()
	h.HandleMMS(w, postForm(mmsForm()))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "something went wrong")
}

func TestHandleMMS_UnknownSenderStillIngested(t *testing.T) {
	fetcher := &stubFetcher{obj: &media.Object{Bytes: []byte("img"), ContentType: "image/jpeg"}}
	archive := &stubArchive{item: &gallery.GalleryItem{ID: "g1", Contributor: contributors.DefaultName}}
	h := newTestHandler("", fetcher, archive, nil)

	form := mmsForm()
	form.Set("From", "+15550001111")

	w := httptest.NewRecorder()
	h.HandleMMS(w, postForm(form))

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, archive.subs, 1)
	assert.Equal(t, contributors.DefaultName, archive.subs[0].Contributor)
	assert.Contains(t, w.Body.String(), contributors.DefaultName)
}

func TestHandleMMS_MethodNotAllowed(t *testing.T) {
	h := newTestHandler("", &stubFetcher{}, &stubArchive{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/webhooks/twilio/mms", nil)
	w := httptest.NewRecorder()
	h.HandleMMS(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "method not allowed")
}

func TestCallbackURL_Fallbacks(t *testing.T) {
	h := newTestHandler("", &stubFetcher{}, &stubArchive{}, nil)
	h.publicBaseURL = "https://recipebox.example.com"

	req := httptest.NewRequest(http.MethodPost, "/webhooks/twilio/mms", nil)
	assert.Equal(t, "https://recipebox.example.com/webhooks/twilio/mms", h.callbackURL(req))

	req.Header.Set("X-Forwarded-Host", "proxy.example.com")
	assert.Equal(t, "https://proxy.example.com/webhooks/twilio/mms", h.callbackURL(req))

	h.publicBaseURL = ""
	req.Header.Del("X-Forwarded-Host")
	assert.Equal(t, "http://localhost:8080/webhooks/twilio/mms", h.callbackURL(req))
}
