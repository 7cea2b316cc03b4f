package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"steprighthomes/internal"
	"steprighthomes/internal/intake"
	"steprighthomes/internal/preview"
	"steprighthomes/internal/pricing"
	"steprighthomes/pkg/types"

	"github.com/sirupsen/logrus"
)

const multipartMemory = 32 << 20

// draftSession returns the quote request draft named by the visitor's cookie.
func (s *Service) draftSession(r *http.Request) (*intake.Session, bool) {
	var id string
	if !s.readCookie(r, internal.COOKIE_DRAFT_NAME, &id) {
		return nil, false
	}

	session, err := s.drafts.Get(id)
	if err != nil {
		return nil, false
	}
	return session, true
}

func (s *Service) openDraft(w http.ResponseWriter, preselected string) (*intake.Session, error) {
	session := s.drafts.Open(preselected)
	if err := s.writeCookie(w, internal.COOKIE_DRAFT_NAME, session.ID, draftCookieAge); err != nil {
		s.drafts.Finish(session.ID)
		return nil, err
	}
	return session, nil
}

func (s *Service) handleGetQuoteRequest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	preselected := q.Get("service")

	session, ok := s.draftSession(r)
	if !ok {
		var err error
		session, err = s.openDraft(w, preselected)
		if err != nil {
			s.logger.WithError(err).Error("failed to open quote request draft")
			s.internalServerError(w)
			return
		}
	} else if intake.ValidService(preselected) {
		view := session.View()
		if view.Form.Service == "" {
			form := view.Form
			form.Service = preselected
			if err := session.Edit(form); err != nil {
				s.quoteRequestBusy(w, r, err)
				return
			}
		}
	}

	s.renderQuoteRequest(w, r, http.StatusOK, session.View(), q.Get("notice"), q.Get("error"))
}

func (s *Service) renderQuoteRequest(w http.ResponseWriter, r *http.Request, status int, view intake.View, notice, errMsg string) {
	ctx := r.Context()

	services, err := s.catalog.Services(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to load services")
		s.internalServerError(w)
		return
	}

	store := s.drafts.Store()
	attachments := make([]types.AttachmentView, 0, len(view.Attachments))
	for i, att := range view.Attachments {
		link, err := store.URL(ctx, att.Preview)
		if err != nil {
			s.logger.WithError(err).WithField("file", att.File.Name).Warn("failed to resolve preview url")
		}
		attachments = append(attachments, types.AttachmentView{
			Index: i,
			Name:  att.File.Name,
			Kind:  string(att.Kind),
			URL:   link,
			Size:  formatBytes(att.File.Size),
		})
	}

	urgency := make([]types.OptionData, 0, len(pricing.UrgencyLevels))
	for _, u := range pricing.UrgencyLevels {
		urgency = append(urgency, types.OptionData{
			Value:       string(u),
			Label:       u.Label(),
			Description: u.Description(),
			Selected:    string(u) == view.Form.Urgency,
		})
	}

	images, videos := view.Attachments.Counts()
	if errMsg == "" {
		errMsg = view.Failure
	}

	data := &types.QuoteRequestPageData{
		BasePageData:    types.BasePageData{Title: "Request a Quote"},
		Form:            view.Form,
		FieldErrors:     view.Errors,
		Services:        services,
		UrgencyOptions:  urgency,
		Attachments:     attachments,
		ImageCount:      images,
		VideoCount:      videos,
		AttachmentCount: len(view.Attachments),
		MaxAttachments:  intake.MaxAttachments,
		CanAttachMore:   view.Attachments.Remaining() > 0,
		Policy:          types.Pricing,
		Error:           errMsg,
		Notice:          notice,
	}

	if err := s.renderTemplateStatus(w, r, status, "page.quote-request", data); err != nil {
		s.logger.WithError(err).Error("failed to render quote request page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handlePostQuoteRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadMB<<20)
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.redirectWithError(w, r, "/quote-request", fmt.Sprintf("Those files are too large. Please keep each upload under %d MB.", s.config.MaxUploadMB))
			return
		}
		s.logger.WithError(err).Error("failed to parse form")
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	var action types.QuoteRequestAction
	if err := decoder.Decode(&action, r.Form); err != nil {
		s.logger.WithError(err).Error("failed to decode form")
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}

	var form types.QuoteRequestForm
	if err := decoder.Decode(&form, r.Form); err != nil {
		s.logger.WithError(err).Error("failed to decode form")
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}

	session, ok := s.draftSession(r)
	if !ok {
		var err error
		session, err = s.openDraft(w, "")
		if err != nil {
			s.logger.WithError(err).Error("failed to open quote request draft")
			s.internalServerError(w)
			return
		}
	}

	logger := s.logger.WithFields(logrus.Fields{
		"request_id": requestIDFromContext(ctx),
		"draft_id":   session.ID,
		"action":     action.Action,
	})

	if action.Action == types.QuoteActionCancel {
		if err := s.drafts.Discard(ctx, session.ID); err != nil && !errors.Is(err, intake.ErrSessionNotFound) {
			s.redirectWithError(w, r, "/quote-request", "Your request is still being sent. Please wait a moment.")
			return
		}
		s.clearCookie(w, internal.COOKIE_DRAFT_NAME)
		s.redirectWithNotice(w, r, "/", "Your quote request has been discarded.")
		return
	}

	if err := session.Edit(form); err != nil {
		s.quoteRequestBusy(w, r, err)
		return
	}

	switch action.Action {
	case types.QuoteActionUpload:
		uploads, err := readUploads(r.MultipartForm, "files")
		if err != nil {
			logger.WithError(err).Error("failed to read uploaded files")
			s.redirectWithError(w, r, "/quote-request", "We couldn't read those files. Please try again.")
			return
		}

		added, err := session.AddFiles(ctx, uploads)
		if err != nil {
			if errors.Is(err, intake.ErrSubmissionInFlight) || errors.Is(err, intake.ErrSessionClosed) {
				s.quoteRequestBusy(w, r, err)
				return
			}
			logger.WithError(err).Error("failed to stage attachments")
			s.redirectWithError(w, r, "/quote-request", "We couldn't attach your files. Please try again.")
			return
		}

		if added < len(uploads) {
			s.redirectWithNotice(w, r, "/quote-request", fmt.Sprintf("Added %d of %d files. Only photos and videos are accepted, up to %d in total.", added, len(uploads), intake.MaxAttachments))
			return
		}
		http.Redirect(w, r, "/quote-request", http.StatusSeeOther)

	case types.QuoteActionRemove:
		if err := session.Remove(ctx, action.Index); err != nil {
			switch {
			case errors.Is(err, intake.ErrNoSuchAttachment):
			case errors.Is(err, intake.ErrSubmissionInFlight), errors.Is(err, intake.ErrSessionClosed):
				s.quoteRequestBusy(w, r, err)
				return
			default:
				logger.WithError(err).Warn("failed to release attachment preview")
			}
		}
		http.Redirect(w, r, "/quote-request", http.StatusSeeOther)

	case types.QuoteActionSubmit:
		ref, err := session.Submit(ctx)
		switch {
		case err == nil:
		case errors.Is(err, intake.ErrPreviewCleanup) && ref != "":
			logger.WithError(err).Warn("lead sent but previews were not all released")
		case errors.Is(err, intake.ErrValidation):
			s.renderQuoteRequest(w, r, http.StatusUnprocessableEntity, session.View(), "", "Please fix the highlighted fields.")
			return
		case errors.Is(err, intake.ErrSubmitFailed):
			logger.WithError(err).Error("quote request submission failed")
			s.renderQuoteRequest(w, r, http.StatusServiceUnavailable, session.View(), "", "")
			return
		default:
			s.quoteRequestBusy(w, r, err)
			return
		}

		s.drafts.Finish(session.ID)
		s.clearCookie(w, internal.COOKIE_DRAFT_NAME)

		v := url.Values{}
		v.Set("ref", ref)
		http.Redirect(w, r, "/quote-request/submitted?"+v.Encode(), http.StatusSeeOther)

	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
	}
}

func (s *Service) quoteRequestBusy(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, intake.ErrSubmissionInFlight):
		s.redirectWithError(w, r, "/quote-request", "Your request is being sent. Please wait a moment.")
	case errors.Is(err, intake.ErrSessionClosed):
		s.clearCookie(w, internal.COOKIE_DRAFT_NAME)
		s.redirectWithNotice(w, r, "/quote-request", "That request is no longer open. You can start a new one below.")
	default:
		s.logger.WithError(err).Error("unexpected quote request error")
		s.internalServerError(w)
	}
}

func readUploads(mf *multipart.Form, field string) ([]intake.Upload, error) {
	if mf == nil {
		return nil, nil
	}

	headers := mf.File[field]
	uploads := make([]intake.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, err
		}

		contentType := fh.Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = http.DetectContentType(data)
		}

		uploads = append(uploads, intake.Upload{
			FileInfo: intake.FileInfo{
				Name:        fh.Filename,
				ContentType: contentType,
				Size:        fh.Size,
			},
			Data: data,
		})
	}
	return uploads, nil
}

func (s *Service) handleGetQuoteSubmitted(w http.ResponseWriter, r *http.Request) {
	data := &types.QuoteSubmittedPageData{
		BasePageData: types.BasePageData{Title: "Quote Request Sent"},
		Reference:    r.URL.Query().Get("ref"),
	}

	if err := s.renderTemplate(w, r, "page.quote-submitted", data); err != nil {
		s.logger.WithError(err).Error("failed to render quote submitted page")
		s.internalServerError(w)
		return
	}
}

// handleGetPreview streams a staged attachment back to the draft that owns it.
func (s *Service) handleGetPreview(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	session, ok := s.draftSession(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	owned := false
	for _, att := range session.View().Attachments {
		if att.Preview.ID == id {
			owned = true
			break
		}
	}
	if !owned {
		http.NotFound(w, r)
		return
	}

	obj, err := s.drafts.Store().Open(r.Context(), preview.Handle{ID: id})
	if err != nil {
		if errors.Is(err, preview.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.WithError(err).WithField("preview_id", id).Error("failed to open preview")
		s.internalServerError(w)
		return
	}

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(obj.Data)))
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(obj.Data)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}
