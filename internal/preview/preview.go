// Package preview stages attachment bytes while a quote request is being
// filled in. Every staged object is reachable through a Handle until the
// handle is released or its TTL runs out.
package preview

import (
	"errors"
	"time"

	"steprighthomes/internal/utils"
)

var ErrNotFound = errors.New("preview not found")

// Handle is a revocable reference to one staged file.
type Handle struct {
	ID string `json:"id"`
}

// Object is a staged file read back through its handle.
type Object struct {
	Name        string
	ContentType string
	Data        []byte
}

// DefaultTTL bounds how long an abandoned preview survives.
const DefaultTTL = time.Hour

func newHandle() Handle {
	return Handle{ID: utils.NewToken()}
}

// localURL is the path the server exposes staged bytes on for stores that
// cannot hand out their own URLs.
func localURL(h Handle) string {
	return "/previews/" + h.ID
}
