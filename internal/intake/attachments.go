package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"steprighthomes/internal/preview"
)

// MaxAttachments caps how many photos and videos one request may carry.
const MaxAttachments = 10

var ErrNoSuchAttachment = errors.New("no such attachment")

type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// ClassifyMedia sorts a file by its MIME type. Anything that is not an image
// or video reports false and is not accepted.
func ClassifyMedia(contentType string) (MediaKind, bool) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case strings.HasPrefix(ct, "image/"):
		return MediaImage, true
	case strings.HasPrefix(ct, "video/"):
		return MediaVideo, true
	}
	return "", false
}

// PreviewStore stages file bytes behind revocable handles.
type PreviewStore interface {
	Acquire(ctx context.Context, name, contentType string, data []byte) (preview.Handle, error)
	Release(ctx context.Context, h preview.Handle) error
	Open(ctx context.Context, h preview.Handle) (*preview.Object, error)
	URL(ctx context.Context, h preview.Handle) (string, error)
}

type FileInfo struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// Upload is a file picked by the customer, not yet staged.
type Upload struct {
	FileInfo
	Data []byte
}

type Attachment struct {
	File    FileInfo       `json:"file"`
	Preview preview.Handle `json:"preview"`
	Kind    MediaKind      `json:"kind"`
}

// Attachments is the ordered list of staged files. The list owns every
// handle in it; each one is released exactly once by Remove or ResetAll.
type Attachments []Attachment

// AddFiles stages each image or video until the list is full. Other file
// types and files past the cap are dropped without error. It returns how
// many files were accepted.
func (a *Attachments) AddFiles(ctx context.Context, store PreviewStore, files []Upload) (int, error) {
	added := 0
	for _, f := range files {
		if len(*a) >= MaxAttachments {
			break
		}

		kind, ok := ClassifyMedia(f.ContentType)
		if !ok {
			continue
		}

		h, err := store.Acquire(ctx, f.Name, f.ContentType, f.Data)
		if err != nil {
			return added, fmt.Errorf("failed to stage %q: %w", f.Name, err)
		}

		info := f.FileInfo
		if info.Size == 0 {
			info.Size = int64(len(f.Data))
		}

		*a = append(*a, Attachment{File: info, Preview: h, Kind: kind})
		added++
	}
	return added, nil
}

// Remove releases the handle at index and drops it from the list. The entry
// is dropped even if the release fails; the store's TTL reclaims it.
func (a *Attachments) Remove(ctx context.Context, store PreviewStore, index int) error {
	if index < 0 || index >= len(*a) {
		return fmt.Errorf("%w: %d", ErrNoSuchAttachment, index)
	}

	h := (*a)[index].Preview
	err := store.Release(ctx, h)

	*a = append((*a)[:index], (*a)[index+1:]...)

	if err != nil {
		return fmt.Errorf("failed to release preview %s: %w", h.ID, err)
	}
	return nil
}

// ResetAll releases every handle and empties the list. Every release is
// attempted; failures are joined.
func (a *Attachments) ResetAll(ctx context.Context, store PreviewStore) error {
	var errs []error
	for _, att := range *a {
		if err := store.Release(ctx, att.Preview); err != nil {
			errs = append(errs, fmt.Errorf("failed to release preview %s: %w", att.Preview.ID, err))
		}
	}
	*a = nil
	return errors.Join(errs...)
}

func (a Attachments) Counts() (images, videos int) {
	for _, att := range a {
		switch att.Kind {
		case MediaImage:
			images++
		case MediaVideo:
			videos++
		}
	}
	return images, videos
}

func (a Attachments) Remaining() int {
	return MaxAttachments - len(a)
}
