package server

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
)

var sitemapPaths = []string{"/", "/services", "/quote", "/quote-request", "/about", "/contact", "/terms", "/privacy"}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	ChangeFreq string `xml:"changefreq,omitempty"`
}

type sitemap struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

func (s *Service) siteURL(path string) string {
	return strings.TrimSuffix(s.config.SiteURL, "/") + path
}

func (s *Service) handleRobots(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintf(w, "User-agent: *\nDisallow: /previews/\nDisallow: /api/\nSitemap: %s\n", s.siteURL("/sitemap.xml"))
}

func (s *Service) handleSitemap(w http.ResponseWriter, _ *http.Request) {
	doc := sitemap{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, p := range sitemapPaths {
		doc.URLs = append(doc.URLs, sitemapURL{Loc: s.siteURL(p), ChangeFreq: "monthly"})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		s.logger.WithError(err).Error("failed to encode sitemap")
		s.internalServerError(w)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(out)
}
