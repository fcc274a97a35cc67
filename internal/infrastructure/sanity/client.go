// Package sanity talks to the Sanity HTTP API: GROQ queries for imports and
// mutations for publishing blog posts.
package sanity

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"eduvista/site/internal/domain/blog"
	"eduvista/site/internal/infrastructure/httpapi"
	"eduvista/site/internal/platform/cache"
)

const postsQuery = `*[_type == "post" && defined(slug.current)] | order(publishedAt desc) {
  _id,
  "slug": slug.current,
  title,
  excerpt,
  "bodyHtml": coalesce(bodyHtml, ""),
  "coverImageUrl": coalesce(coverImageUrl, mainImage.asset->url),
  "authorName": author->name,
  "categoryTitle": categories[0]->title,
  tags,
  publishedAt
}`

// Options configures the Sanity client.
type Options struct {
	ProjectID  string
	Dataset    string
	Token      string
	APIVersion string
	// BaseURL overrides https://<project>.api.sanity.io for tests.
	BaseURL    string
	HTTPClient *http.Client
	Logger     *logrus.Logger
	// Cache holds raw query results for CacheTTL. Nil disables caching.
	Cache    cache.Cache
	CacheTTL time.Duration
}

// Client implements blog.CMSSource and blog.CMSPublisher.
type Client struct {
	api     *httpapi.Client
	token   string
	dataset string
	baseURL  string
	logger   *logrus.Logger
	cache    cache.Cache
	cacheTTL time.Duration
}

var (
	_ blog.CMSSource    = (*Client)(nil)
	_ blog.CMSPublisher = (*Client)(nil)
)

type postDocument struct {
	ID            string     `json:"_id"`
	Slug          string     `json:"slug"`
	Title         string     `json:"title"`
	Excerpt       string     `json:"excerpt"`
	BodyHTML      string     `json:"bodyHtml"`
	CoverImageURL string     `json:"coverImageUrl"`
	AuthorName    string     `json:"authorName"`
	CategoryTitle string     `json:"categoryTitle"`
	Tags          []string   `json:"tags"`
	PublishedAt   *time.Time `json:"publishedAt"`
}

type slugField struct {
	Type    string `json:"_type"`
	Current string `json:"current"`
}

type postMutationDoc struct {
	ID            string    `json:"_id"`
	Type          string    `json:"_type"`
	Title         string    `json:"title"`
	Slug          slugField `json:"slug"`
	Excerpt       string    `json:"excerpt,omitempty"`
	BodyHTML      string    `json:"bodyHtml"`
	CoverImageURL string    `json:"coverImageUrl,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	PublishedAt   string    `json:"publishedAt,omitempty"`
}

type mutateRequest struct {
	Mutations []map[string]postMutationDoc `json:"mutations"`
}

type mutateResponse struct {
	TransactionID string `json:"transactionId"`
	Results       []struct {
		ID        string `json:"id"`
		Operation string `json:"operation"`
	} `json:"results"`
}

// NewClient constructs a Client.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.ProjectID) == "" {
		return nil, eris.New("sanity project id is required")
	}
	if strings.TrimSpace(opts.Dataset) == "" {
		return nil, eris.New("sanity dataset is required")
	}
	apiVersion := opts.APIVersion
	if apiVersion == "" {
		apiVersion = "v2021-10-21"
	}

	host := strings.TrimRight(opts.BaseURL, "/")
	if host == "" {
		host = fmt.Sprintf("https://%s.api.sanity.io", opts.ProjectID)
	}

	return &Client{
		api:     httpapi.New("sanity", opts.HTTPClient),
		token:   opts.Token,
		dataset: opts.Dataset,
		baseURL:  host + "/" + apiVersion + "/data",
		logger:   opts.Logger,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
	}, nil
}

func (c *Client) header() http.Header {
	if c.token == "" {
		return nil
	}
	return http.Header{"Authorization": []string{"Bearer " + c.token}}
}

// Query runs a GROQ query and decodes its result into out. Results are
// served from the cache when one is configured.
func (c *Client) Query(ctx context.Context, groq string, out any) error {
	key := c.queryKey(groq)
	if c.cache != nil && c.cacheTTL > 0 {
		raw, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			c.logError(logrus.Fields{"key": key}, err, "sanity cache read failed")
		} else if ok {
			if err := json.Unmarshal(raw, out); err == nil {
				return nil
			}
		}
	}

	endpoint := fmt.Sprintf("%s/query/%s?%s", c.baseURL, url.PathEscape(c.dataset), url.Values{"query": []string{groq}}.Encode())

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if _, err := c.api.Do(ctx, httpapi.Request{Method: http.MethodGet, URL: endpoint, Header: c.header()}, &envelope); err != nil {
		c.logError(logrus.Fields{"dataset": c.dataset}, err, "sanity query failed")
		return eris.Wrap(err, "querying sanity")
	}

	raw := envelope.Result
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return eris.Wrap(err, "decoding sanity query result")
	}

	if c.cache != nil && c.cacheTTL > 0 {
		if err := c.cache.Set(ctx, key, raw, c.cacheTTL); err != nil {
			c.logError(logrus.Fields{"key": key}, err, "sanity cache write failed")
		}
	}
	return nil
}

func (c *Client) queryKey(groq string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(groq))
	return fmt.Sprintf("sanity:%s:%x", c.dataset, h.Sum64())
}

// FetchPosts implements blog.CMSSource.
func (c *Client) FetchPosts(ctx context.Context) ([]blog.CMSPost, error) {
	var docs []postDocument
	if err := c.Query(ctx, postsQuery, &docs); err != nil {
		return nil, err
	}

	posts := make([]blog.CMSPost, 0, len(docs))
	for _, doc := range docs {
		posts = append(posts, blog.CMSPost{
			ID:            doc.ID,
			Slug:          doc.Slug,
			Title:         doc.Title,
			Excerpt:       doc.Excerpt,
			BodyHTML:      doc.BodyHTML,
			CoverImageURL: doc.CoverImageURL,
			AuthorName:    doc.AuthorName,
			CategoryTitle: doc.CategoryTitle,
			Tags:          doc.Tags,
			PublishedAt:   doc.PublishedAt,
		})
	}
	return posts, nil
}

// PublishPost implements blog.CMSPublisher with a createOrReplace mutation.
// Posts without a document ID get a stable one derived from their row ID.
func (c *Client) PublishPost(ctx context.Context, post blog.Post) (string, error) {
	if c.token == "" {
		return "", eris.New("sanity token is required to publish")
	}

	documentID := post.SanityID
	if documentID == "" {
		documentID = fmt.Sprintf("eduvista-post-%d", post.ID)
	}

	doc := postMutationDoc{
		ID:            documentID,
		Type:          "post",
		Title:         post.Title,
		Slug:          slugField{Type: "slug", Current: post.Slug},
		Excerpt:       post.Excerpt,
		BodyHTML:      post.BodyHTML,
		CoverImageURL: post.CoverImageURL,
		Tags:          post.Tags,
	}
	if post.PublishedAt != nil {
		doc.PublishedAt = post.PublishedAt.UTC().Format(time.RFC3339)
	}

	var resp mutateResponse
	_, err := c.api.Do(ctx, httpapi.Request{
		Method: http.MethodPost,
		URL:    fmt.Sprintf("%s/mutate/%s?returnIds=true", c.baseURL, url.PathEscape(c.dataset)),
		Header: c.header(),
		Body:   mutateRequest{Mutations: []map[string]postMutationDoc{{"createOrReplace": doc}}},
	}, &resp)
	if err != nil {
		c.logError(logrus.Fields{"post_id": post.ID, "document_id": documentID}, err, "sanity mutation failed")
		return "", eris.Wrapf(err, "publishing post %d to sanity", post.ID)
	}

	if len(resp.Results) > 0 && resp.Results[0].ID != "" {
		return resp.Results[0].ID, nil
	}
	return documentID, nil
}

func (c *Client) logError(fields logrus.Fields, err error, message string) {
	if c.logger == nil || err == nil {
		return
	}
	c.logger.WithFields(fields).WithField("error", err.Error()).Error(message)
}
