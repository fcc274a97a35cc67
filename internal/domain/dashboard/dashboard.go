// Package dashboard aggregates the admin overview widgets.
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"eduvista/site/internal/domain/audit"
	"eduvista/site/internal/domain/blog"
	"eduvista/site/internal/domain/contact"
	"eduvista/site/internal/domain/newsletter"
	"eduvista/site/internal/domain/social"
	"eduvista/site/internal/platform/log"
)

const (
	WidgetSubscribers     = "subscribers"
	WidgetBlogPosts       = "blog_posts"
	WidgetSocialPosts     = "social_posts"
	WidgetPendingContacts = "pending_contacts"
	WidgetScheduled       = "scheduled"
	WidgetRecentAudit     = "recent_audit"

	recentAuditLimit = 10
)

type SubscriberCounter interface {
	CountSubscribers(ctx context.Context) (map[newsletter.SubscriberStatus]int64, error)
}

type CampaignLister interface {
	ListCampaigns(ctx context.Context, status newsletter.CampaignStatus) ([]newsletter.Campaign, error)
}

type BlogCounter interface {
	CountByStatus(ctx context.Context) (map[blog.Status]int64, error)
}

type SocialCounter interface {
	CountByStatus(ctx context.Context) (map[social.Status]int64, error)
}

type ContactCounter interface {
	CountByStatus(ctx context.Context) (map[contact.Status]int64, error)
}

type AuditLister interface {
	List(ctx context.Context, filter audit.Filter) ([]audit.Entry, error)
}

// Options wires the widget sources. Every source is required.
type Options struct {
	Subscribers SubscriberCounter
	Campaigns   CampaignLister
	Blog        BlogCounter
	Social      SocialCounter
	Contacts    ContactCounter
	Audit       AuditLister
	Reporter    *log.Reporter
	Now         func() time.Time
}

// Scheduled counts items waiting for the scheduler.
type Scheduled struct {
	BlogPosts   int64 `json:"blog_posts"`
	SocialPosts int64 `json:"social_posts"`
	Campaigns   int64 `json:"campaigns"`
}

// Snapshot is the dashboard payload. A widget that failed is absent and
// its error is listed under Errors.
type Snapshot struct {
	Subscribers     map[newsletter.SubscriberStatus]int64 `json:"subscribers,omitempty"`
	BlogPosts       map[blog.Status]int64                 `json:"blog_posts,omitempty"`
	SocialPosts     map[social.Status]int64               `json:"social_posts,omitempty"`
	PendingContacts *int64                                `json:"pending_contacts,omitempty"`
	Scheduled       *Scheduled                            `json:"scheduled,omitempty"`
	RecentAudit     []audit.Entry                         `json:"recent_audit,omitempty"`
	Errors          map[string]string                     `json:"errors"`
	GeneratedAt     time.Time                             `json:"generated_at"`
}

// WidgetUnavailable is reported for a failed widget. The cause is logged only.
const WidgetUnavailable = "unavailable"

// Service builds snapshots.
type Service struct {
	opts Options
	now  func() time.Time
}

// NewService validates the sources and constructs a Service.
func NewService(opts Options) (*Service, error) {
	switch {
	case opts.Subscribers == nil:
		return nil, eris.New("subscriber counter is required")
	case opts.Campaigns == nil:
		return nil, eris.New("campaign lister is required")
	case opts.Blog == nil:
		return nil, eris.New("blog counter is required")
	case opts.Social == nil:
		return nil, eris.New("social counter is required")
	case opts.Contacts == nil:
		return nil, eris.New("contact counter is required")
	case opts.Audit == nil:
		return nil, eris.New("audit lister is required")
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{opts: opts, now: now}, nil
}

// Snapshot fetches every widget concurrently. Widgets settle independently:
// one failing never cancels or fails the others. The audit widget is only
// loaded when includeAudit is set.
func (s *Service) Snapshot(ctx context.Context, includeAudit bool) *Snapshot {
	snap := &Snapshot{Errors: map[string]string{}}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	run := func(widget string, fetch func(ctx context.Context) error) {
		g.Go(func() error {
			if err := fetch(ctx); err != nil {
				s.opts.Reporter.Warn(logrus.Fields{"widget": widget}, err, "dashboard widget failed")
				mu.Lock()
				snap.Errors[widget] = WidgetUnavailable
				mu.Unlock()
			}
			return nil
		})
	}

	run(WidgetSubscribers, func(ctx context.Context) error {
		counts, err := s.opts.Subscribers.CountSubscribers(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		snap.Subscribers = counts
		mu.Unlock()
		return nil
	})

	run(WidgetBlogPosts, func(ctx context.Context) error {
		counts, err := s.opts.Blog.CountByStatus(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		snap.BlogPosts = counts
		mu.Unlock()
		return nil
	})

	run(WidgetSocialPosts, func(ctx context.Context) error {
		counts, err := s.opts.Social.CountByStatus(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		snap.SocialPosts = counts
		mu.Unlock()
		return nil
	})

	run(WidgetPendingContacts, func(ctx context.Context) error {
		counts, err := s.opts.Contacts.CountByStatus(ctx)
		if err != nil {
			return err
		}
		pending := counts[contact.StatusNew]
		mu.Lock()
		snap.PendingContacts = &pending
		mu.Unlock()
		return nil
	})

	run(WidgetScheduled, func(ctx context.Context) error {
		scheduled, err := s.scheduled(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		snap.Scheduled = scheduled
		mu.Unlock()
		return nil
	})

	if includeAudit {
		run(WidgetRecentAudit, func(ctx context.Context) error {
			entries, err := s.opts.Audit.List(ctx, audit.Filter{Limit: recentAuditLimit})
			if err != nil {
				return err
			}
			mu.Lock()
			snap.RecentAudit = entries
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	snap.GeneratedAt = s.now().UTC()
	return snap
}

func (s *Service) scheduled(ctx context.Context) (*Scheduled, error) {
	blogCounts, err := s.opts.Blog.CountByStatus(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "counting scheduled blog posts")
	}
	socialCounts, err := s.opts.Social.CountByStatus(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "counting scheduled social posts")
	}
	campaigns, err := s.opts.Campaigns.ListCampaigns(ctx, newsletter.CampaignScheduled)
	if err != nil {
		return nil, eris.Wrap(err, "listing scheduled campaigns")
	}
	return &Scheduled{
		BlogPosts:   blogCounts[blog.StatusScheduled],
		SocialPosts: socialCounts[social.StatusScheduled],
		Campaigns:   int64(len(campaigns)),
	}, nil
}
