package social

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"eduvista/site/internal/domain/apperr"
	"eduvista/site/internal/domain/social"
)

const (
	providerAyrshare = "ayrshare"
	providerLinkedIn = "linkedin"
	providerTwitter  = "twitter"
)

// Router sends each platform to a direct client when one is configured and
// the remaining platforms to Ayrshare in a single call.
type Router struct {
	linkedIn *LinkedIn
	twitter  *Twitter
	ayrshare *Ayrshare
}

var _ social.Publisher = (*Router)(nil)

// NewRouter builds a Router. Any client may be nil.
func NewRouter(linkedIn *LinkedIn, twitter *Twitter, ayrshare *Ayrshare) *Router {
	return &Router{linkedIn: linkedIn, twitter: twitter, ayrshare: ayrshare}
}

// Metrics returns the analytics provider, or nil when Ayrshare is not configured.
func (r *Router) Metrics() social.MetricsProvider {
	if r.ayrshare == nil {
		return nil
	}
	return r.ayrshare
}

// Publish implements social.Publisher. On partial failure the result still
// carries the IDs of the posts that were created.
func (r *Router) Publish(ctx context.Context, req social.PublishRequest) (social.PublishResult, error) {
	var (
		ids      []string
		failures []string
		rest     []social.Platform
	)

	for _, platform := range req.Platforms {
		switch {
		case platform == social.LinkedIn && r.linkedIn != nil:
			id, err := r.linkedIn.Post(ctx, req.Content, req.MediaURLs)
			if err != nil {
				failures = append(failures, err.Error())
				continue
			}
			ids = append(ids, providerLinkedIn+":"+id)
		case platform == social.Twitter && r.twitter != nil:
			id, err := r.twitter.Post(ctx, req.Content)
			if err != nil {
				failures = append(failures, err.Error())
				continue
			}
			ids = append(ids, providerTwitter+":"+id)
		default:
			rest = append(rest, platform)
		}
	}

	if len(rest) > 0 {
		if r.ayrshare == nil {
			names := make([]string, len(rest))
			for i, platform := range rest {
				names[i] = string(platform)
			}
			err := apperr.Disabled("no social provider configured for %s", strings.Join(names, ", "))
			return social.PublishResult{ExternalID: strings.Join(ids, ",")}, err
		}
		id, err := r.ayrshare.Post(ctx, req.Content, rest, req.MediaURLs)
		if id != "" {
			ids = append(ids, providerAyrshare+":"+id)
		}
		if err != nil {
			failures = append(failures, err.Error())
		}
	}

	result := social.PublishResult{ExternalID: strings.Join(ids, ",")}
	if len(failures) > 0 {
		return result, eris.New(strings.Join(failures, "; "))
	}
	return result, nil
}

// providerID extracts the ID stored for provider from a joined external ID.
func providerID(externalID, provider string) (string, bool) {
	for _, part := range strings.Split(externalID, ",") {
		if id, ok := strings.CutPrefix(strings.TrimSpace(part), provider+":"); ok && id != "" {
			return id, true
		}
	}
	return "", false
}
