// Package social implements the social.Publisher and social.MetricsProvider
// contracts over Ayrshare and the LinkedIn and Twitter APIs.
package social

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"

	"eduvista/site/internal/domain/social"
	"eduvista/site/internal/infrastructure/httpapi"
)

const ayrshareBaseURL = "https://api.ayrshare.com/api"

// AyrshareOptions configures the Ayrshare client.
type AyrshareOptions struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Ayrshare publishes to every connected network through one API.
type Ayrshare struct {
	api     *httpapi.Client
	apiKey  string
	baseURL string
}

var _ social.MetricsProvider = (*Ayrshare)(nil)

type ayrsharePostRequest struct {
	Post      string   `json:"post"`
	Platforms []string `json:"platforms"`
	MediaURLs []string `json:"mediaUrls,omitempty"`
}

type ayrsharePostResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
	Errors []struct {
		Platform string `json:"platform"`
		Message  string `json:"message"`
	} `json:"errors"`
}

type ayrshareAnalyticsRequest struct {
	ID        string   `json:"id"`
	Platforms []string `json:"platforms,omitempty"`
}

// NewAyrshare constructs an Ayrshare client.
func NewAyrshare(opts AyrshareOptions) (*Ayrshare, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, eris.New("ayrshare api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = ayrshareBaseURL
	}
	return &Ayrshare{api: httpapi.New("ayrshare", opts.HTTPClient), apiKey: opts.APIKey, baseURL: baseURL}, nil
}

func (a *Ayrshare) header() http.Header {
	return http.Header{"Authorization": []string{"Bearer " + a.apiKey}}
}

// Post publishes content to platforms and returns the Ayrshare post ID.
func (a *Ayrshare) Post(ctx context.Context, content string, platforms []social.Platform, mediaURLs []string) (string, error) {
	names := make([]string, len(platforms))
	for i, platform := range platforms {
		names[i] = string(platform)
	}

	var resp ayrsharePostResponse
	_, err := a.api.Do(ctx, httpapi.Request{
		Method: http.MethodPost,
		URL:    a.baseURL + "/post",
		Header: a.header(),
		Body:   ayrsharePostRequest{Post: content, Platforms: names, MediaURLs: mediaURLs},
	}, &resp)
	if err != nil {
		return "", eris.Wrap(err, "posting via ayrshare")
	}

	if !strings.EqualFold(resp.Status, "success") {
		messages := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			messages = append(messages, e.Platform+": "+e.Message)
		}
		return resp.ID, eris.Errorf("ayrshare post status %q: %s", resp.Status, strings.Join(messages, "; "))
	}
	if resp.ID == "" {
		return "", eris.New("ayrshare response did not include a post id")
	}
	return resp.ID, nil
}

// FetchMetrics implements social.MetricsProvider. externalID may be a bare
// Ayrshare ID or a joined router ID containing an "ayrshare:" segment.
func (a *Ayrshare) FetchMetrics(ctx context.Context, externalID string) (social.Metrics, error) {
	id, ok := providerID(externalID, providerAyrshare)
	if !ok {
		if strings.Contains(externalID, ":") {
			return social.Metrics{}, eris.Errorf("post %q was not published through ayrshare", externalID)
		}
		id = externalID
	}

	var resp map[string]json.RawMessage
	_, err := a.api.Do(ctx, httpapi.Request{
		Method: http.MethodPost,
		URL:    a.baseURL + "/analytics/post",
		Header: a.header(),
		Body:   ayrshareAnalyticsRequest{ID: id},
	}, &resp)
	if err != nil {
		return social.Metrics{}, eris.Wrap(err, "fetching ayrshare analytics")
	}

	return sumAnalytics(resp), nil
}

// sumAnalytics adds up the per-platform counters. Each network reports under
// its own key with its own field names.
func sumAnalytics(resp map[string]json.RawMessage) social.Metrics {
	var total social.Metrics
	for key, raw := range resp {
		if !social.Platform(key).Valid() {
			continue
		}
		var platform struct {
			Analytics map[string]json.RawMessage `json:"analytics"`
		}
		if err := json.Unmarshal(raw, &platform); err != nil || platform.Analytics == nil {
			continue
		}
		a := platform.Analytics
		total.Likes += firstInt(a, "likeCount", "likes", "reactionCount", "favoriteCount")
		total.Comments += firstInt(a, "commentCount", "comments", "replyCount")
		total.Shares += firstInt(a, "shareCount", "shares", "retweetCount")
		total.Impressions += firstInt(a, "impressionCount", "impressions", "views")
		total.Clicks += firstInt(a, "clickCount", "clicks", "urlLinkClicks")
	}
	return total
}

func firstInt(values map[string]json.RawMessage, keys ...string) int {
	for _, key := range keys {
		raw, ok := values[key]
		if !ok {
			continue
		}
		var n float64
		if err := json.Unmarshal(raw, &n); err == nil {
			return int(n)
		}
	}
	return 0
}
