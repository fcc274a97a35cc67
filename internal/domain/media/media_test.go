package media

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"eduvista/site/internal/domain/apperr"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type memoryStorage struct {
	objects map[string][]byte
	types   map[string]string
	err     error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryStorage) Upload(_ context.Context, objectPath, contentType string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.objects[objectPath] = data
	m.types[objectPath] = contentType
	return nil
}

func (m *memoryStorage) PublicURL(objectPath string) string {
	return "https://cdn.example/" + objectPath
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC)
}

func TestUploadStoresAllowedImage(t *testing.T) {
	t.Parallel()

	store := newMemoryStorage()
	svc := NewService(Options{Storage: store, Now: fixedNow})

	asset, err := svc.Upload(context.Background(), UploadInput{Filename: "Course Cover Ä.PNG", Data: pngHeader})
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if asset.ContentType != "image/png" {
		t.Fatalf("expected image/png, got %q", asset.ContentType)
	}
	if !strings.HasPrefix(asset.Path, "uploads/2025/06/") || !strings.HasSuffix(asset.Path, "-course-cover-a.png") {
		t.Fatalf("unexpected path %q", asset.Path)
	}
	if asset.URL != "https://cdn.example/"+asset.Path {
		t.Fatalf("unexpected url %q", asset.URL)
	}
	if store.types[asset.Path] != "image/png" {
		t.Fatalf("expected stored content type image/png, got %q", store.types[asset.Path])
	}
}

func TestUploadAcceptsBase64DataURL(t *testing.T) {
	t.Parallel()

	pdf := []byte("%PDF-1.7\n1 0 obj\n<<>>\nendobj\n")
	svc := NewService(Options{Storage: newMemoryStorage(), Now: fixedNow})

	asset, err := svc.Upload(context.Background(), UploadInput{
		Filename: "brochure.pdf",
		Base64:   "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(pdf),
	})
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if asset.ContentType != "application/pdf" || asset.Size != len(pdf) {
		t.Fatalf("unexpected asset %+v", asset)
	}
}

func TestUploadRejectsInvalidFiles(t *testing.T) {
	t.Parallel()

	svc := NewService(Options{Storage: newMemoryStorage()})
	cases := map[string]UploadInput{
		"empty":      {Filename: "a.png"},
		"bad base64": {Filename: "a.png", Base64: "***"},
		"html":       {Filename: "a.html", Data: []byte("<html><script>alert(1)</script></html>")},
		"too large":  {Filename: "big.png", Data: append(append([]byte{}, pngHeader...), make([]byte, MaxSize)...)},
	}
	for name, input := range cases {
		if _, err := svc.Upload(context.Background(), input); !apperr.IsKind(err, apperr.ErrInvalid) {
			t.Fatalf("%s: expected invalid error, got %v", name, err)
		}
	}
}

func TestUploadWithoutStorageIsDisabled(t *testing.T) {
	t.Parallel()

	_, err := NewService(Options{}).Upload(context.Background(), UploadInput{Data: pngHeader})
	if !apperr.IsKind(err, apperr.ErrDisabled) {
		t.Fatalf("expected disabled error, got %v", err)
	}
}

func TestUploadMapsStorageFailureToUpstream(t *testing.T) {
	t.Parallel()

	store := newMemoryStorage()
	store.err = errors.New("bucket missing")
	_, err := NewService(Options{Storage: store}).Upload(context.Background(), UploadInput{Filename: "x.png", Data: pngHeader})
	if !apperr.IsKind(err, apperr.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}
