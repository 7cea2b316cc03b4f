package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"steprighthomes/internal"
	"steprighthomes/internal/catalog"
	"steprighthomes/internal/intake"
	"steprighthomes/internal/leads"
	"steprighthomes/internal/preview"
	"steprighthomes/internal/pricing"
	"steprighthomes/pkg/types"

	"github.com/gorilla/securecookie"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

type stubSender struct {
	mu    sync.Mutex
	err   error
	leads []*leads.Lead
}

func (s *stubSender) Send(_ context.Context, lead *leads.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.leads = append(s.leads, lead)
	return nil
}

func (s *stubSender) sent() []*leads.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*leads.Lead(nil), s.leads...)
}

type harness struct {
	t      *testing.T
	svc    *Service
	srv    *httptest.Server
	client *http.Client
	store  *preview.MemoryStore
	sender *stubSender
	drafts *intake.Registry
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	logger, _ := logtest.NewNullLogger()
	store := preview.NewMemoryStore(time.Hour)
	sender := &stubSender{}
	drafts := intake.NewRegistry(intake.Config{
		Store:         store,
		Sender:        sender,
		SubmitTimeout: time.Second,
		Logger:        logger,
	})

	config := &types.Config{
		Environment:    "development",
		SiteURL:        "https://steprighthomes.com.au",
		MaxUploadMB:    5,
		CookieHashKey:  base64.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)),
		CookieBlockKey: base64.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)),
	}

	svc, err := New(config, logger, catalog.Static{}, drafts)
	require.NoError(t, err)

	srv := httptest.NewServer(svc.Handler())
	t.Cleanup(srv.Close)

	h := &harness{t: t, svc: svc, srv: srv, store: store, sender: sender, drafts: drafts}
	h.client = h.newClient()
	return h
}

func (h *harness) newClient() *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(h.t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (h *harness) get(path string) (*http.Response, string) {
	h.t.Helper()
	return h.do(h.client, http.MethodGet, path, "", nil)
}

func (h *harness) postForm(path string, values url.Values) (*http.Response, string) {
	h.t.Helper()
	return h.do(h.client, http.MethodPost, path, "application/x-www-form-urlencoded", strings.NewReader(values.Encode()))
}

func (h *harness) do(client *http.Client, method, path, contentType string, body io.Reader) (*http.Response, string) {
	h.t.Helper()

	req, err := http.NewRequest(method, h.srv.URL+path, body)
	require.NoError(h.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := client.Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	return resp, string(out)
}

type upload struct {
	name string
	data []byte
}

func (h *harness) postMultipart(path string, values url.Values, files ...upload) (*http.Response, string) {
	h.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, vs := range values {
		for _, v := range vs {
			require.NoError(h.t, mw.WriteField(k, v))
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile("files", f.name)
		require.NoError(h.t, err)
		_, err = part.Write(f.data)
		require.NoError(h.t, err)
	}
	require.NoError(h.t, mw.Close())

	return h.do(h.client, http.MethodPost, path, mw.FormDataContentType(), &buf)
}

func completeQuoteForm() url.Values {
	return url.Values{
		"name":              {"Jane Citizen"},
		"email":             {"jane@example.com"},
		"phone":             {"0400 000 000"},
		"address":           {"1 King William St, Adelaide SA 5000"},
		"service":           {"roofing"},
		"urgency":           {"priority"},
		"description":       {"Leaking gutter above the back door."},
		"preferredContact":  {"email"},
		"agreeToTerms":      {"true"},
		"agreeToCalloutFee": {"true"},
	}
}

func withAction(v url.Values, action string) url.Values {
	out := url.Values{}
	for k, vs := range v {
		out[k] = vs
	}
	out.Set("action", action)
	return out
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)

	resp, body := h.get("/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))
}

func TestRequestIDIsReused(t *testing.T) {
	h := newHarness(t)

	req, err := http.NewRequest(http.MethodGet, h.srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(requestIDHeader, "3f1c2a52-6f0e-4f3e-9b4e-1a2b3c4d5e6f")

	resp, err := h.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "3f1c2a52-6f0e-4f3e-9b4e-1a2b3c4d5e6f", resp.Header.Get(requestIDHeader))
}

func TestStripTrailingSlash(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.get("/services/")
	assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, "/services", resp.Header.Get("Location"))
}

func TestPagesRender(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		path string
		want string
	}{
		{"/", "Frequently Asked Questions"},
		{"/services", "Plumbing Works"},
		{"/about", "About Step Right Homes"},
		{"/terms", "Terms &amp; Conditions"},
		{"/privacy", "Privacy Policy"},
		{"/contact", "Send Message"},
		{"/quote", "What service do you need?"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := h.get(tt.path)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
			assert.Contains(t, body, tt.want)
		})
	}
}

func TestHomeShowsCalloutFee(t *testing.T) {
	h := newHarness(t)

	_, body := h.get("/")
	assert.Contains(t, body, "Minimum callout fee $250")
	assert.Contains(t, body, "/quote-request?service=fencing")
}

func TestWizardFlow(t *testing.T) {
	h := newHarness(t)

	steps := []url.Values{
		{"action": {"select"}, "value": {"fencing"}},
		{"action": {"next"}},
		{"action": {"select"}, "value": {"medium"}},
		{"action": {"next"}},
		{"action": {"select"}, "value": {"priority"}},
		{"action": {"next"}},
		{"action": {"select"}, "value": {"moderate"}},
		{"action": {"next"}},
	}
	for _, v := range steps {
		resp, _ := h.postForm("/quote", v)
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.Equal(t, "/quote", resp.Header.Get("Location"))
	}

	want := pricing.Calculate(pricing.Factors{
		Service:      pricing.Fencing,
		PropertySize: pricing.Medium,
		Urgency:      pricing.Priority,
		Scope:        pricing.Moderate,
	})

	resp, body := h.get("/quote")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Your Estimated Quote")
	assert.Contains(t, body, formatAUD(want.MinPrice))
	assert.Contains(t, body, formatAUD(want.MaxPrice))
	assert.Contains(t, body, want.EstimatedDuration)

	resp, _ = h.postForm("/quote", url.Values{"action": {"back"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body = h.get("/quote")
	assert.NotContains(t, body, "Your Estimated Quote")
	assert.Contains(t, body, "What&#39;s the scope of work?")

	resp, _ = h.postForm("/quote", url.Values{"action": {"next"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	resp, _ = h.postForm("/quote", url.Values{"action": {"reset"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body = h.get("/quote")
	assert.Contains(t, body, "Step 1 of 4")
}

func TestWizardRejectsAdvanceWithoutSelection(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.postForm("/quote", url.Values{"action": {"next"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/quote", loc.Path)
	assert.Equal(t, "Please choose an option to continue.", loc.Query().Get("error"))
}

func TestWizardRejectsOptionFromAnotherStep(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.postForm("/quote", url.Values{"action": {"select"}, "value": {"medium"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "error=")
}

func TestWizardUnknownAction(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.postForm("/quote", url.Values{"action": {"jump"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWizardIgnoresTamperedCookie(t *testing.T) {
	h := newHarness(t)

	u, err := url.Parse(h.srv.URL)
	require.NoError(t, err)
	h.client.Jar.SetCookies(u, []*http.Cookie{{Name: "srh-wizard", Value: "garbage", Path: "/"}})

	resp, body := h.get("/quote")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Step 1 of 4")
}

func TestQuoteRequestPreselectsService(t *testing.T) {
	h := newHarness(t)

	_, body := h.get("/quote-request?service=plumbing")
	assert.Contains(t, body, `<option value="plumbing" selected>`)
	assert.Equal(t, 1, h.drafts.Len())
}

func TestQuoteRequestPreselectOnClosedDraft(t *testing.T) {
	h := newHarness(t)

	// Closed but not yet forgotten, as between Discard's Close and its
	// removal from the registry.
	session := h.drafts.Open("")
	require.NoError(t, session.Close(context.Background()))

	cookies := httptest.NewRecorder()
	require.NoError(t, h.svc.writeCookie(cookies, internal.COOKIE_DRAFT_NAME, session.ID, time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/quote-request?service=plumbing", nil)
	for _, c := range cookies.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.svc.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/quote-request", loc.Path)
	assert.Contains(t, loc.Query().Get("notice"), "no longer open")
	assert.Equal(t, intake.StatusClosed, session.View().Status)
	assert.Empty(t, session.View().Form.Service)
}

func TestQuoteRequestValidation(t *testing.T) {
	h := newHarness(t)

	h.get("/quote-request")

	resp, body := h.postMultipart("/quote-request", url.Values{"action": {"submit"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	for _, msg := range []string{
		"Name is required",
		"Email is required",
		"Phone number is required",
		"Address is required",
		"Please select a service",
		"Please describe the work required",
		"You must agree to the terms",
		"You must acknowledge the callout fee",
	} {
		assert.Contains(t, body, msg)
	}
	assert.Empty(t, h.sender.sent())
}

func TestQuoteRequestUploadPreviewAndSubmit(t *testing.T) {
	h := newHarness(t)

	h.get("/quote-request")

	resp, _ := h.postMultipart("/quote-request", withAction(completeQuoteForm(), "upload"),
		upload{name: "gutter.png", data: pngBytes},
		upload{name: "notes.txt", data: []byte("just some notes")},
	)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Contains(t, loc.Query().Get("notice"), "Added 1 of 2 files")
	assert.Equal(t, 1, h.store.Len())

	_, body := h.get("/quote-request")
	assert.Contains(t, body, "gutter.png")
	assert.Contains(t, body, "Jane Citizen")
	assert.Contains(t, body, "1 photo(s), 0 video(s)")

	start := strings.Index(body, `src="/previews/`)
	require.NotEqual(t, -1, start)
	rest := body[start+len(`src="`):]
	previewPath := rest[:strings.Index(rest, `"`)]

	resp, data := h.get(previewPath)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, string(pngBytes), data)

	stranger := h.newClient()
	resp, _ = h.do(stranger, http.MethodGet, previewPath, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = h.postMultipart("/quote-request", withAction(completeQuoteForm(), "submit"))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	loc, err = url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/quote-request/submitted", loc.Path)

	sent := h.sender.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, leads.KindQuoteRequest, sent[0].Kind)
	assert.Equal(t, loc.Query().Get("ref"), sent[0].Reference)
	require.Len(t, sent[0].Files, 1)
	assert.Equal(t, "gutter.png", sent[0].Files[0].Name)
	assert.Equal(t, pngBytes, sent[0].Files[0].Data)

	assert.Equal(t, 0, h.store.Len())
	assert.Equal(t, 0, h.drafts.Len())

	_, body = h.get(loc.String())
	assert.Contains(t, body, sent[0].Reference)

	_, body = h.get("/quote-request")
	assert.NotContains(t, body, "Jane Citizen")
}

func TestQuoteRequestSubmitFailureKeepsAttachments(t *testing.T) {
	h := newHarness(t)
	h.sender.err = errors.New("smtp unavailable")

	h.get("/quote-request")
	resp, _ := h.postMultipart("/quote-request", withAction(completeQuoteForm(), "upload"),
		upload{name: "roof.png", data: pngBytes},
	)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, body := h.postMultipart("/quote-request", withAction(completeQuoteForm(), "submit"))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, "Your details and files are still here")
	assert.Contains(t, body, "roof.png")
	assert.Equal(t, 1, h.store.Len())
	assert.Equal(t, 1, h.drafts.Len())

	h.sender.mu.Lock()
	h.sender.err = nil
	h.sender.mu.Unlock()

	resp, _ = h.postMultipart("/quote-request", withAction(completeQuoteForm(), "submit"))
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Len(t, h.sender.sent(), 1)
	assert.Equal(t, 0, h.store.Len())
}

func TestQuoteRequestRemoveAttachment(t *testing.T) {
	h := newHarness(t)

	h.get("/quote-request")
	h.postMultipart("/quote-request", withAction(completeQuoteForm(), "upload"),
		upload{name: "a.png", data: pngBytes},
		upload{name: "b.png", data: pngBytes},
	)
	require.Equal(t, 2, h.store.Len())

	resp, _ := h.postMultipart("/quote-request?index=0", withAction(completeQuoteForm(), "remove"))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, 1, h.store.Len())

	_, body := h.get("/quote-request")
	assert.NotContains(t, body, "a.png")
	assert.Contains(t, body, "b.png")
}

func TestQuoteRequestCancelReleasesPreviews(t *testing.T) {
	h := newHarness(t)

	h.get("/quote-request")
	h.postMultipart("/quote-request", withAction(completeQuoteForm(), "upload"),
		upload{name: "a.png", data: pngBytes},
	)
	require.Equal(t, 1, h.store.Len())

	resp, _ := h.postMultipart("/quote-request", url.Values{"action": {"cancel"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/", loc.Path)
	assert.Equal(t, 0, h.store.Len())
	assert.Equal(t, 0, h.drafts.Len())
	assert.Empty(t, h.sender.sent())
}

func TestQuoteRequestUnknownAction(t *testing.T) {
	h := newHarness(t)

	h.get("/quote-request")
	resp, _ := h.postMultipart("/quote-request", url.Values{"action": {"explode"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestContact(t *testing.T) {
	h := newHarness(t)

	resp, body := h.postForm("/contact", url.Values{"name": {"Sam"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Email is required")
	assert.Contains(t, body, "Please enter a message")
	assert.Empty(t, h.sender.sent())

	resp, _ = h.postForm("/contact", url.Values{
		"name":    {"Sam"},
		"email":   {"sam@example.com"},
		"service": {"electrical"},
		"message": {"Can you install a ceiling fan?"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	sent := h.sender.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, leads.KindContact, sent[0].Kind)

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Contains(t, loc.Query().Get("notice"), sent[0].Reference)
}

func TestAPIServices(t *testing.T) {
	h := newHarness(t)

	resp, body := h.get("/api/services")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var services []types.Service
	require.NoError(t, json.Unmarshal([]byte(body), &services))
	require.Len(t, services, len(catalog.DefaultServices))
	assert.Equal(t, "fencing", services[0].ID)
}

func TestAPIEstimate(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(h.client, http.MethodPost, "/api/estimate", "application/json",
		strings.NewReader(`{"service":"plumbing","propertySize":"large","urgency":"emergency","scope":"major"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got estimateResponse
	require.NoError(t, json.Unmarshal([]byte(body), &got))

	want := pricing.Calculate(pricing.Factors{
		Service:      pricing.Plumbing,
		PropertySize: pricing.Large,
		Urgency:      pricing.Emergency,
		Scope:        pricing.Major,
	})
	assert.Equal(t, want, got.Estimate)
	assert.Equal(t, "AUD", got.Currency)
}

func TestAPIEstimateRejectsBadInput(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"unknown service", `{"service":"painting","propertySize":"large","urgency":"emergency","scope":"major"}`, http.StatusUnprocessableEntity},
		{"missing scope", `{"service":"plumbing","propertySize":"large","urgency":"emergency"}`, http.StatusUnprocessableEntity},
		{"extra field", `{"service":"plumbing","propertySize":"large","urgency":"emergency","scope":"major","discount":10}`, http.StatusUnprocessableEntity},
		{"malformed", `{"service":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := h.do(h.client, http.MethodPost, "/api/estimate", "application/json", strings.NewReader(tt.body))
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestRobotsAndSitemap(t *testing.T) {
	h := newHarness(t)

	_, body := h.get("/robots.txt")
	assert.Contains(t, body, "Sitemap: https://steprighthomes.com.au/sitemap.xml")
	assert.Contains(t, body, "Disallow: /previews/")

	resp, body := h.get("/sitemap.xml")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<loc>https://steprighthomes.com.au/quote</loc>")
}

func TestFormatAUD(t *testing.T) {
	assert.Equal(t, "$250", formatAUD(250))
	assert.Equal(t, "$12,340", formatAUD(12340))
}
