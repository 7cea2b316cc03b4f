package server

import (
	"net/http"
	"time"
)

func (s *Service) secureCookies() bool {
	return s.config.Environment != "development"
}

// writeCookie encrypts value into the named cookie.
func (s *Service) writeCookie(w http.ResponseWriter, name string, value any, age time.Duration) error {
	encoded, err := s.cookie.Encode(name, value)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    encoded,
		HttpOnly: true,
		Secure:   s.secureCookies(),
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(age.Seconds()),
	})
	return nil
}

// readCookie decrypts the named cookie into dst. A missing or tampered
// cookie reports false.
func (s *Service) readCookie(r *http.Request, name string, dst any) bool {
	c, err := r.Cookie(name)
	if err != nil {
		return false
	}

	if err := s.cookie.Decode(name, c.Value, dst); err != nil {
		s.logger.WithError(err).WithField("cookie", name).Debug("discarding unreadable cookie")
		return false
	}
	return true
}

func (s *Service) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		HttpOnly: true,
		Secure:   s.secureCookies(),
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

const (
	wizardCookieAge = 24 * time.Hour
	draftCookieAge  = 24 * time.Hour
)
