package server

import (
	"errors"
	"net/http"

	"steprighthomes/internal/intake"
	"steprighthomes/pkg/types"
)

func (s *Service) renderContact(w http.ResponseWriter, r *http.Request, status int, data *types.ContactPageData) {
	services, err := s.catalog.Services(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to load services")
		s.internalServerError(w)
		return
	}
	data.BasePageData = types.BasePageData{Title: "Contact Us"}
	data.Services = services

	if err := s.renderTemplateStatus(w, r, status, "page.contact", data); err != nil {
		s.logger.WithError(err).Error("failed to render contact page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handleGetContact(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	data := &types.ContactPageData{
		Notice: q.Get("notice"),
		Error:  q.Get("error"),
	}
	if service := q.Get("service"); intake.ValidService(service) {
		data.Form.Service = service
	}

	s.renderContact(w, r, http.StatusOK, data)
}

func (s *Service) handlePostContact(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.logger.WithError(err).Error("failed to parse form")
		s.redirectWithError(w, r, "/contact", "invalid form payload")
		return
	}

	var form types.ContactForm
	if err := decoder.Decode(&form, r.Form); err != nil {
		s.logger.WithError(err).Error("failed to decode form")
		s.redirectWithError(w, r, "/contact", "invalid form payload")
		return
	}

	ref, fieldErrors, err := s.drafts.SendContact(r.Context(), form)
	switch {
	case errors.Is(err, intake.ErrValidation):
		s.renderContact(w, r, http.StatusUnprocessableEntity, &types.ContactPageData{
			Form:        form,
			FieldErrors: fieldErrors,
		})
		return
	case err != nil:
		s.logger.WithError(err).Error("failed to send enquiry")
		s.renderContact(w, r, http.StatusServiceUnavailable, &types.ContactPageData{
			Form:  form,
			Error: "We couldn't send your message just now. Please try again in a moment or give us a call.",
		})
		return
	}

	s.redirectWithNotice(w, r, "/contact", "Thank you for your inquiry! We will contact you shortly. Your reference is "+ref+".")
}
