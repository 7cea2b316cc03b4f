package server

import (
	"net/http"

	"steprighthomes/internal/catalog"
	"steprighthomes/pkg/types"
)

type StaticPageData struct {
	types.BasePageData
	Policy types.PricingPolicy
}

func (s *Service) handleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	services, err := s.catalog.Services(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to load services")
		s.internalServerError(w)
		return
	}

	data := &types.HomePageData{
		BasePageData: types.BasePageData{Title: "Quality Home Services in Adelaide"},
		Notice:       r.URL.Query().Get("notice"),
		Error:        r.URL.Query().Get("error"),
		Services:     services,
		Policy:       types.Pricing,
		Stats:        catalog.Stats,
		Features:     catalog.Features,
		FAQs:         catalog.FAQs,
	}

	if err := s.renderTemplate(w, r, "page.home", data); err != nil {
		s.logger.WithError(err).Error("failed to render home page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handleServices(w http.ResponseWriter, r *http.Request) {
	services, err := s.catalog.Services(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to load services")
		s.internalServerError(w)
		return
	}

	data := &types.ServicesPageData{
		BasePageData: types.BasePageData{Title: "Our Services"},
		Services:     services,
		Policy:       types.Pricing,
	}

	if err := s.renderTemplate(w, r, "page.services", data); err != nil {
		s.logger.WithError(err).Error("failed to render services page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) renderStatic(w http.ResponseWriter, r *http.Request, name, title string) {
	data := &StaticPageData{
		BasePageData: types.BasePageData{Title: title},
		Policy:       types.Pricing,
	}

	if err := s.renderTemplate(w, r, name, data); err != nil {
		s.logger.WithError(err).WithField("template", name).Error("failed to render page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handleAbout(w http.ResponseWriter, r *http.Request) {
	s.renderStatic(w, r, "page.about", "About Us")
}

func (s *Service) handleTerms(w http.ResponseWriter, r *http.Request) {
	s.renderStatic(w, r, "page.terms", "Terms & Conditions")
}

func (s *Service) handlePrivacy(w http.ResponseWriter, r *http.Request) {
	s.renderStatic(w, r, "page.privacy", "Privacy Policy")
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Service) internalServerError(w http.ResponseWriter) {
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
