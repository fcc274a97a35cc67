// Package httpapi holds the JSON-over-HTTP plumbing shared by the hosted
// platform clients.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"eduvista/site/internal/platform/metrics"
)

const (
	defaultTimeout  = 15 * time.Second
	maxErrorBodyLen = 512
)

// StatusError is returned when a platform answers with a non-2xx status.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s responded with status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s responded with status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Client performs JSON requests against one provider and counts outcomes.
type Client struct {
	Provider string
	HTTP     *http.Client
}

// New returns a Client with a bounded default http.Client when httpClient is nil.
func New(provider string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{Provider: provider, HTTP: httpClient}
}

// Request describes one call. Body is JSON-encoded unless it is a RawBody.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   any
}

// RawBody sends bytes as-is with the given content type.
type RawBody struct {
	ContentType string
	Data        []byte
}

// Do sends req and decodes a JSON response into out when out is non-nil.
// It returns the response headers for callers that read IDs from them.
func (c *Client) Do(ctx context.Context, req Request, out any) (http.Header, error) {
	header, err := c.do(ctx, req, out)
	metrics.IncExternalCall(c.Provider, err)
	return header, err
}

func (c *Client) do(ctx context.Context, req Request, out any) (http.Header, error) {
	var (
		body        io.Reader
		contentType string
	)
	switch payload := req.Body.(type) {
	case nil:
	case RawBody:
		body = bytes.NewReader(payload.Data)
		contentType = payload.ContentType
	default:
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, eris.Wrapf(err, "encoding %s request", c.Provider)
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, eris.Wrapf(err, "building %s request", c.Provider)
	}
	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, eris.Wrapf(err, "calling %s", c.Provider)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return resp.Header, &StatusError{Provider: c.Provider, StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.Header, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.Header, eris.Wrapf(err, "decoding %s response", c.Provider)
	}
	return resp.Header, nil
}
