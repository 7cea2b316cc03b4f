package server

import (
	"bytes"
	"net/http"

	"steprighthomes/pkg/types"
)

var navLinks = []types.NavLink{
	{Href: "/", Label: "Home"},
	{Href: "/services", Label: "Services"},
	{Href: "/about", Label: "About Us"},
	{Href: "/contact", Label: "Contact"},
}

func navFor(path string) []types.NavLink {
	out := make([]types.NavLink, len(navLinks))
	for i, l := range navLinks {
		l.Active = l.Href == path
		out[i] = l
	}
	return out
}

// renderTemplate executes into a buffer so a failing template never leaves
// a half written page behind.
func (s *Service) renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) error {
	return s.renderTemplateStatus(w, r, http.StatusOK, templateName, data)
}

func (s *Service) renderTemplateStatus(w http.ResponseWriter, r *http.Request, status int, templateName string, data any) error {
	if setter, ok := data.(types.BasePageDataSetter); ok {
		setter.SetBase(r.URL.Path, navFor(r.URL.Path))
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
