package social

import (
	"context"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"

	"eduvista/site/internal/infrastructure/httpapi"
)

const twitterBaseURL = "https://api.twitter.com/2"

// TwitterOptions configures direct posting through the v2 API.
type TwitterOptions struct {
	BearerToken string
	BaseURL     string
	HTTPClient  *http.Client
}

// Twitter creates tweets with a user-context bearer token.
type Twitter struct {
	api     *httpapi.Client
	token   string
	baseURL string
}

// NewTwitter constructs a Twitter client.
func NewTwitter(opts TwitterOptions) (*Twitter, error) {
	if strings.TrimSpace(opts.BearerToken) == "" {
		return nil, eris.New("twitter bearer token is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = twitterBaseURL
	}
	return &Twitter{api: httpapi.New("twitter", opts.HTTPClient), token: opts.BearerToken, baseURL: baseURL}, nil
}

// Post creates a tweet and returns its ID. Media is not uploaded.
func (t *Twitter) Post(ctx context.Context, content string) (string, error) {
	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	_, err := t.api.Do(ctx, httpapi.Request{
		Method: http.MethodPost,
		URL:    t.baseURL + "/tweets",
		Header: http.Header{"Authorization": []string{"Bearer " + t.token}},
		Body:   map[string]string{"text": content},
	}, &resp)
	if err != nil {
		return "", eris.Wrap(err, "posting to twitter")
	}
	if resp.Data.ID == "" {
		return "", eris.New("twitter response did not include a tweet id")
	}
	return resp.Data.ID, nil
}
