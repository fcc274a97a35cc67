package dashboard

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"eduvista/site/internal/domain/audit"
	"eduvista/site/internal/domain/blog"
	"eduvista/site/internal/domain/contact"
	"eduvista/site/internal/domain/newsletter"
	"eduvista/site/internal/domain/social"
)

type stubSources struct {
	subscribersErr error
	auditCalls     int
}

func (s *stubSources) CountSubscribers(context.Context) (map[newsletter.SubscriberStatus]int64, error) {
	if s.subscribersErr != nil {
		return nil, s.subscribersErr
	}
	return map[newsletter.SubscriberStatus]int64{newsletter.Subscribed: 12, newsletter.Unsubscribed: 3}, nil
}

func (s *stubSources) ListCampaigns(_ context.Context, status newsletter.CampaignStatus) ([]newsletter.Campaign, error) {
	if status != newsletter.CampaignScheduled {
		return nil, errors.New("unexpected status filter")
	}
	return []newsletter.Campaign{{ID: 1}, {ID: 2}}, nil
}

func (s *stubSources) List(context.Context, audit.Filter) ([]audit.Entry, error) {
	s.auditCalls++
	return []audit.Entry{{ID: 1, Action: "POST", Path: "/api/admin/blog/posts"}}, nil
}

type blogCounts struct{}

func (blogCounts) CountByStatus(context.Context) (map[blog.Status]int64, error) {
	return map[blog.Status]int64{blog.StatusPublished: 8, blog.StatusScheduled: 2}, nil
}

type socialCounts struct{ err error }

func (s socialCounts) CountByStatus(context.Context) (map[social.Status]int64, error) {
	if s.err != nil {
		return nil, s.err
	}
	return map[social.Status]int64{social.StatusScheduled: 4}, nil
}

type contactCounts struct{}

func (contactCounts) CountByStatus(context.Context) (map[contact.Status]int64, error) {
	return map[contact.Status]int64{contact.StatusNew: 5, contact.StatusResolved: 9}, nil
}

func newService(t *testing.T, sources *stubSources, socialErr error) *Service {
	t.Helper()

	svc, err := NewService(Options{
		Subscribers: sources,
		Campaigns:   sources,
		Blog:        blogCounts{},
		Social:      socialCounts{err: socialErr},
		Contacts:    contactCounts{},
		Audit:       sources,
		Now:         func() time.Time { return time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestSnapshotCollectsEveryWidget(t *testing.T) {
	t.Parallel()

	sources := &stubSources{}
	snap := newService(t, sources, nil).Snapshot(context.Background(), true)

	if len(snap.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", snap.Errors)
	}
	if snap.Subscribers[newsletter.Subscribed] != 12 {
		t.Fatalf("unexpected subscribers %v", snap.Subscribers)
	}
	if snap.PendingContacts == nil || *snap.PendingContacts != 5 {
		t.Fatalf("expected 5 pending contacts, got %v", snap.PendingContacts)
	}
	want := Scheduled{BlogPosts: 2, SocialPosts: 4, Campaigns: 2}
	if snap.Scheduled == nil || *snap.Scheduled != want {
		t.Fatalf("expected scheduled %+v, got %+v", want, snap.Scheduled)
	}
	if len(snap.RecentAudit) != 1 {
		t.Fatalf("expected recent audit entries, got %v", snap.RecentAudit)
	}
	if snap.GeneratedAt.IsZero() {
		t.Fatalf("expected generated_at to be set")
	}
}

func TestSnapshotReportsFailingWidgetsWithoutFailing(t *testing.T) {
	t.Parallel()

	sources := &stubSources{subscribersErr: errors.New("db down")}
	snap := newService(t, sources, errors.New("social table locked")).Snapshot(context.Background(), false)

	for _, widget := range []string{WidgetSubscribers, WidgetSocialPosts, WidgetScheduled} {
		if snap.Errors[widget] != WidgetUnavailable {
			t.Fatalf("expected %s to be reported unavailable, got %v", widget, snap.Errors)
		}
	}
	for widget, text := range snap.Errors {
		if strings.Contains(text, "db down") || strings.Contains(text, "locked") {
			t.Fatalf("expected %s error to hide the cause, got %q", widget, text)
		}
	}
	if snap.Subscribers != nil || snap.SocialPosts != nil || snap.Scheduled != nil {
		t.Fatalf("expected failed widgets to be empty")
	}
	if snap.BlogPosts[blog.StatusPublished] != 8 {
		t.Fatalf("expected blog widget to succeed, got %v", snap.BlogPosts)
	}
	if sources.auditCalls != 0 || snap.RecentAudit != nil {
		t.Fatalf("expected audit widget to be skipped")
	}
}

func TestNewServiceRequiresSources(t *testing.T) {
	t.Parallel()

	if _, err := NewService(Options{}); err == nil {
		t.Fatalf("expected error without sources")
	}
}
