// Package storage uploads objects to Supabase Storage.
package storage

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"

	"eduvista/site/internal/domain/media"
	"eduvista/site/internal/infrastructure/httpapi"
)

// SupabaseOptions configures the storage client.
type SupabaseOptions struct {
	URL        string
	ServiceKey string
	Bucket     string
	HTTPClient *http.Client
}

// Supabase implements media.Storage over the Storage REST API.
type Supabase struct {
	api        *httpapi.Client
	baseURL    string
	serviceKey string
	bucket     string
}

var _ media.Storage = (*Supabase)(nil)

// NewSupabase constructs a Supabase storage client.
func NewSupabase(opts SupabaseOptions) (*Supabase, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.URL), "/")
	if baseURL == "" {
		return nil, eris.New("supabase url is required")
	}
	if strings.TrimSpace(opts.ServiceKey) == "" {
		return nil, eris.New("supabase service key is required")
	}
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, eris.New("supabase bucket is required")
	}
	return &Supabase{
		api:        httpapi.New("supabase", opts.HTTPClient),
		baseURL:    baseURL + "/storage/v1",
		serviceKey: opts.ServiceKey,
		bucket:     opts.Bucket,
	}, nil
}

// Upload implements media.Storage. Existing objects are never overwritten.
func (s *Supabase) Upload(ctx context.Context, objectPath, contentType string, data []byte) error {
	_, err := s.api.Do(ctx, httpapi.Request{
		Method: http.MethodPost,
		URL:    s.baseURL + "/object/" + s.bucket + "/" + escapePath(objectPath),
		Header: http.Header{
			"Authorization": []string{"Bearer " + s.serviceKey},
			"Apikey":        []string{s.serviceKey},
			"X-Upsert":      []string{"false"},
			"Cache-Control": []string{"max-age=31536000"},
		},
		Body: httpapi.RawBody{ContentType: contentType, Data: data},
	}, nil)
	if err != nil {
		return eris.Wrapf(err, "uploading %s to bucket %s", objectPath, s.bucket)
	}
	return nil
}

// PublicURL implements media.Storage.
func (s *Supabase) PublicURL(objectPath string) string {
	return s.baseURL + "/object/public/" + s.bucket + "/" + escapePath(objectPath)
}

func escapePath(objectPath string) string {
	parts := strings.Split(strings.TrimLeft(objectPath, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
