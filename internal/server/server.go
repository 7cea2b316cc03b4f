package server

import (
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"steprighthomes/internal/catalog"
	"steprighthomes/internal/intake"
	"steprighthomes/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates static
var uiFS embed.FS
var decoder = form.NewDecoder()

var printer = message.NewPrinter(language.English)

type Service struct {
	logger    *logrus.Logger
	config    *types.Config
	templates *template.Template
	cookie    *securecookie.SecureCookie

	catalog catalog.Source
	drafts  *intake.Registry

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	services catalog.Source,
	drafts *intake.Registry,
) (*Service, error) {
	mux := flow.New()

	hashKey, err := base64.StdEncoding.DecodeString(config.CookieHashKey)
	if err != nil {
		return nil, fmt.Errorf("decode cookie hash key: %w", err)
	}
	blockKey, err := base64.StdEncoding.DecodeString(config.CookieBlockKey)
	if err != nil {
		return nil, fmt.Errorf("decode cookie block key: %w", err)
	}

	cookie := securecookie.New(hashKey, blockKey)
	cookie.SetSerializer(securecookie.JSONEncoder{})

	s := &Service{
		logger:  logger,
		config:  config,
		cookie:  cookie,
		catalog: services,
		drafts:  drafts,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	s.templates = templates

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.RequestID)
	r.Use(s.LoggingMiddleware)
	r.Use(s.Recoverer)
	r.Use(s.StripTrailingSlash)

	r.HandleFunc("/", s.handleHome, http.MethodGet)
	r.HandleFunc("/services", s.handleServices, http.MethodGet)
	r.HandleFunc("/about", s.handleAbout, http.MethodGet)
	r.HandleFunc("/terms", s.handleTerms, http.MethodGet)
	r.HandleFunc("/privacy", s.handlePrivacy, http.MethodGet)

	r.HandleFunc("/quote", s.handleGetQuote, http.MethodGet)
	r.HandleFunc("/quote", s.handlePostQuote, http.MethodPost)

	r.HandleFunc("/quote-request", s.handleGetQuoteRequest, http.MethodGet)
	r.HandleFunc("/quote-request", s.handlePostQuoteRequest, http.MethodPost)
	r.HandleFunc("/quote-request/submitted", s.handleGetQuoteSubmitted, http.MethodGet)
	r.HandleFunc("/previews/:id", s.handleGetPreview, http.MethodGet)

	r.HandleFunc("/contact", s.handleGetContact, http.MethodGet)
	r.HandleFunc("/contact", s.handlePostContact, http.MethodPost)

	r.Group(func(r *flow.Mux) {
		r.Use(s.JSONContentType)

		r.HandleFunc("/api/services", s.handleAPIServices, http.MethodGet)
		r.HandleFunc("/api/estimate", s.handleAPIEstimate, http.MethodPost)
	})

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)
	r.Handle("/metrics", promhttp.Handler(), http.MethodGet)
	r.HandleFunc("/robots.txt", s.handleRobots, http.MethodGet)
	r.HandleFunc("/sitemap.xml", s.handleSitemap, http.MethodGet)

	staticRoot, err := fs.Sub(uiFS, "static")
	if err != nil {
		s.logger.WithError(err).Fatal("failed to mount static assets")
	}
	r.Handle("/static/...", http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot))), http.MethodGet)
}

func formatAUD(v int64) string {
	return printer.Sprintf("$%d", v)
}

func loadTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"aud": func(v any) string {
			switch n := v.(type) {
			case int:
				return formatAUD(int64(n))
			case int64:
				return formatAUD(n)
			}
			return fmt.Sprint(v)
		},
		"hasError": func(errs map[string]string, field string) bool {
			_, ok := errs[field]
			return ok
		},
		"add": func(a, b int) int {
			return a + b
		},
		"year": func() int {
			return time.Now().Year()
		},
	}

	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(uiFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		data, err := fs.ReadFile(uiFS, path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}

		if _, err := t.Parse(string(data)); err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}
