package social

import (
	"context"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"

	"eduvista/site/internal/infrastructure/httpapi"
)

const linkedInBaseURL = "https://api.linkedin.com/v2"

// LinkedInOptions configures direct LinkedIn publishing.
type LinkedInOptions struct {
	AccessToken string
	AuthorURN   string
	BaseURL     string
	HTTPClient  *http.Client
}

// LinkedIn publishes UGC posts for one author.
type LinkedIn struct {
	api     *httpapi.Client
	token   string
	author  string
	baseURL string
}

type ugcText struct {
	Text string `json:"text"`
}

type ugcMedia struct {
	Status      string `json:"status"`
	OriginalURL string `json:"originalUrl"`
}

type ugcShareContent struct {
	ShareCommentary    ugcText    `json:"shareCommentary"`
	ShareMediaCategory string     `json:"shareMediaCategory"`
	Media              []ugcMedia `json:"media,omitempty"`
}

type ugcPost struct {
	Author          string                     `json:"author"`
	LifecycleState  string                     `json:"lifecycleState"`
	SpecificContent map[string]ugcShareContent `json:"specificContent"`
	Visibility      map[string]string          `json:"visibility"`
}

// NewLinkedIn constructs a LinkedIn client.
func NewLinkedIn(opts LinkedInOptions) (*LinkedIn, error) {
	if strings.TrimSpace(opts.AccessToken) == "" {
		return nil, eris.New("linkedin access token is required")
	}
	if !strings.HasPrefix(opts.AuthorURN, "urn:li:") {
		return nil, eris.Errorf("linkedin author urn %q is invalid", opts.AuthorURN)
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = linkedInBaseURL
	}
	return &LinkedIn{
		api:     httpapi.New("linkedin", opts.HTTPClient),
		token:   opts.AccessToken,
		author:  opts.AuthorURN,
		baseURL: baseURL,
	}, nil
}

// Post shares content and returns the created post URN. The first media URL
// is attached as an article link.
func (l *LinkedIn) Post(ctx context.Context, content string, mediaURLs []string) (string, error) {
	share := ugcShareContent{ShareCommentary: ugcText{Text: content}, ShareMediaCategory: "NONE"}
	if len(mediaURLs) > 0 {
		share.ShareMediaCategory = "ARTICLE"
		share.Media = []ugcMedia{{Status: "READY", OriginalURL: mediaURLs[0]}}
	}

	body := ugcPost{
		Author:          l.author,
		LifecycleState:  "PUBLISHED",
		SpecificContent: map[string]ugcShareContent{"com.linkedin.ugc.ShareContent": share},
		Visibility:      map[string]string{"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC"},
	}

	var resp struct {
		ID string `json:"id"`
	}
	header, err := l.api.Do(ctx, httpapi.Request{
		Method: http.MethodPost,
		URL:    l.baseURL + "/ugcPosts",
		Header: http.Header{
			"Authorization":             []string{"Bearer " + l.token},
			"X-Restli-Protocol-Version": []string{"2.0.0"},
		},
		Body: body,
	}, &resp)
	if err != nil {
		return "", eris.Wrap(err, "posting to linkedin")
	}

	id := resp.ID
	if id == "" {
		id = header.Get("X-Restli-Id")
	}
	if id == "" {
		return "", eris.New("linkedin response did not include a post id")
	}
	return id, nil
}
