// Package media validates uploads and stores them in object storage.
package media

import (
	"context"
	"encoding/base64"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"eduvista/site/internal/domain/apperr"
	"eduvista/site/internal/domain/slug"
	"eduvista/site/internal/platform/log"
)

// MaxSize is the largest accepted upload.
const MaxSize = 10 << 20

// allowedTypes maps accepted content types to the stored file extension.
var allowedTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/avif":      ".avif",
	"application/pdf": ".pdf",
}

// Storage puts objects into a public bucket.
type Storage interface {
	Upload(ctx context.Context, objectPath, contentType string, data []byte) error
	PublicURL(objectPath string) string
}

// Asset describes a stored upload.
type Asset struct {
	Path        string    `json:"path"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	Size        int       `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// UploadInput is a file to store. Data holds raw bytes; Base64 is accepted
// from JSON clients when Data is empty.
type UploadInput struct {
	Filename string `json:"filename"`
	Base64   string `json:"data"`
	Data     []byte `json:"-"`
}

// Options configures the media service.
type Options struct {
	Storage  Storage
	Reporter *log.Reporter
	Now      func() time.Time
}

// Service uploads media.
type Service struct {
	storage  Storage
	reporter *log.Reporter
	now      func() time.Time
}

// NewService constructs a Service. A nil Storage disables uploads.
func NewService(opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{storage: opts.Storage, reporter: opts.Reporter, now: now}
}

// Upload validates type and size, then stores the file under a unique,
// date-prefixed path.
func (s *Service) Upload(ctx context.Context, input UploadInput) (*Asset, error) {
	if s.storage == nil {
		return nil, apperr.Disabled("media storage is not configured")
	}

	data := input.Data
	if len(data) == 0 && input.Base64 != "" {
		decoded, err := decodeBase64(input.Base64)
		if err != nil {
			return nil, apperr.Invalid("data is not valid base64")
		}
		data = decoded
	}
	if len(data) == 0 {
		return nil, apperr.Invalid("file is empty")
	}
	if len(data) > MaxSize {
		return nil, apperr.Invalid("file exceeds %d MiB", MaxSize>>20)
	}

	detected := mimetype.Detect(data)
	contentType, ext := "", ""
	for candidate := detected; candidate != nil; candidate = candidate.Parent() {
		if e, ok := allowedTypes[candidate.String()]; ok {
			contentType, ext = candidate.String(), e
			break
		}
	}
	if contentType == "" {
		return nil, apperr.Invalid("content type %s is not allowed", detected.String())
	}

	now := s.now().UTC()
	objectPath := path.Join("uploads", now.Format("2006/01"), uuid.NewString()+"-"+baseName(input.Filename)+ext)

	if err := s.storage.Upload(ctx, objectPath, contentType, data); err != nil {
		s.reporter.Error(logrus.Fields{"path": objectPath, "content_type": contentType}, err, "uploading media")
		return nil, apperr.Upstream(err, "uploading %s", input.Filename)
	}

	return &Asset{
		Path:        objectPath,
		URL:         s.storage.PublicURL(objectPath),
		ContentType: contentType,
		Size:        len(data),
		UploadedAt:  now,
	}, nil
}

// decodeBase64 accepts plain base64 and data: URLs.
func decodeBase64(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "data:") {
		comma := strings.IndexByte(raw, ',')
		if comma == -1 {
			return nil, eris.New("malformed data url")
		}
		raw = raw[comma+1:]
	}
	return base64.StdEncoding.DecodeString(raw)
}

func baseName(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.TrimSuffix(name, path.Ext(name))
	if s := slug.Make(name); s != "" {
		return s
	}
	return "file"
}
