package automation_test

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"

	automationdata "eduvista/site/internal/data/automation"
	"eduvista/site/internal/data/dbtest"
	"eduvista/site/internal/domain/apperr"
	"eduvista/site/internal/domain/automation"
	"eduvista/site/internal/domain/email"
	"eduvista/site/internal/domain/events"
	"eduvista/site/internal/domain/social"
)

type stubSharer struct {
	inputs []social.PostInput
	err    error
}

func (s *stubSharer) CreateAndPublish(_ context.Context, input social.PostInput) (*social.Post, error) {
	s.inputs = append(s.inputs, input)
	if s.err != nil {
		return nil, s.err
	}
	return &social.Post{ID: uint(len(s.inputs)), Content: input.Content, Platforms: input.Platforms, Status: social.StatusPublished}, nil
}

type stubSender struct {
	messages []email.Message
}

func (s *stubSender) Send(_ context.Context, msg email.Message) error {
	s.messages = append(s.messages, msg)
	return nil
}

func setup(t *testing.T, sharer *stubSharer, sender *stubSender) *automation.Service {
	t.Helper()

	repo, err := automationdata.NewRepository(dbtest.Open(t, &automationdata.RuleRecord{}), nil)
	if err != nil {
		t.Fatalf("NewRepository returned error: %v", err)
	}

	opts := automation.Options{
		Repository: repo,
		Now:        func() time.Time { return time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC) },
	}
	if sharer != nil {
		opts.Social = sharer
	}
	if sender != nil {
		opts.Sender = sender
	}

	service, err := automation.NewService(opts)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return service
}

func TestCreateRuleValidation(t *testing.T) {
	t.Parallel()

	service := setup(t, &stubSharer{}, &stubSender{})
	ctx := context.Background()

	cases := []struct {
		name  string
		input automation.RuleInput
	}{
		{name: "unknown trigger", input: automation.RuleInput{Name: "x", Trigger: "order.created", Action: automation.ActionEmailSend}},
		{name: "unknown action", input: automation.RuleInput{Name: "x", Trigger: events.BlogPublished, Action: "webhook.post"}},
		{name: "share without platforms", input: automation.RuleInput{Name: "x", Trigger: events.BlogPublished, Action: automation.ActionSocialShare}},
		{name: "share bad platform", input: automation.RuleInput{Name: "x", Trigger: events.BlogPublished, Action: automation.ActionSocialShare, Config: map[string]string{"platforms": "myspace"}}},
		{name: "email without body", input: automation.RuleInput{Name: "x", Trigger: events.ContactSubmitted, Action: automation.ActionEmailSend, Config: map[string]string{"subject": "Hi"}}},
		{name: "email blog without recipient", input: automation.RuleInput{Name: "x", Trigger: events.BlogPublished, Action: automation.ActionEmailSend, Config: map[string]string{"subject": "New", "body": "{{url}}"}}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if _, err := service.CreateRule(ctx, tc.input); !apperr.IsKind(err, apperr.ErrInvalid) {
				t.Fatalf("expected invalid error, got %v", err)
			}
		})
	}
}

func TestCreateRuleRequiresConfiguredIntegration(t *testing.T) {
	t.Parallel()

	service := setup(t, nil, nil)

	_, err := service.CreateRule(context.Background(), automation.RuleInput{
		Name:    "share",
		Trigger: events.BlogPublished,
		Action:  automation.ActionSocialShare,
		Config:  map[string]string{"platforms": "linkedin"},
	})
	if !apperr.IsKind(err, apperr.ErrDisabled) {
		t.Fatalf("expected disabled error, got %v", err)
	}
}

func TestDispatchSharesBlogPost(t *testing.T) {
	t.Parallel()

	sharer := &stubSharer{}
	service := setup(t, sharer, &stubSender{})
	ctx := context.Background()

	rule, err := service.CreateRule(ctx, automation.RuleInput{
		Name:    "share posts",
		Trigger: events.BlogPublished,
		Action:  automation.ActionSocialShare,
		Config:  map[string]string{"platforms": "linkedin, twitter", "template": "New on the blog: {{title}} {{url}}"},
	})
	if err != nil {
		t.Fatalf("CreateRule returned error: %v", err)
	}
	disabled := false
	if _, err := service.CreateRule(ctx, automation.RuleInput{
		Name:    "paused",
		Trigger: events.BlogPublished,
		Action:  automation.ActionSocialShare,
		Config:  map[string]string{"platforms": "facebook"},
		Enabled: &disabled,
	}); err != nil {
		t.Fatalf("CreateRule returned error: %v", err)
	}

	service.Dispatch(ctx, events.Event{Trigger: events.BlogPublished, Title: "Microlearning", URL: "https://eduvista.example/blog/microlearning"})

	if len(sharer.inputs) != 1 {
		t.Fatalf("expected one share, got %d", len(sharer.inputs))
	}
	got := sharer.inputs[0]
	if got.Content != "New on the blog: Microlearning https://eduvista.example/blog/microlearning" {
		t.Fatalf("unexpected content %q", got.Content)
	}
	if len(got.Platforms) != 2 || got.Platforms[0] != social.LinkedIn || got.Platforms[1] != social.Twitter {
		t.Fatalf("unexpected platforms %v", got.Platforms)
	}

	stored, err := service.GetRule(ctx, rule.ID)
	if err != nil {
		t.Fatalf("GetRule returned error: %v", err)
	}
	if stored.RunCount != 1 || stored.LastRunAt == nil {
		t.Fatalf("expected run to be recorded, got %+v", stored)
	}
}

func TestDispatchEmailsEventAddress(t *testing.T) {
	t.Parallel()

	sender := &stubSender{}
	service := setup(t, &stubSharer{}, sender)
	ctx := context.Background()

	if _, err := service.CreateRule(ctx, automation.RuleInput{
		Name:    "welcome",
		Trigger: events.NewsletterSubscribed,
		Action:  automation.ActionEmailSend,
		Config:  map[string]string{"subject": "Welcome {{name}}", "body": "Thanks for joining, {{name}}."},
	}); err != nil {
		t.Fatalf("CreateRule returned error: %v", err)
	}

	service.Dispatch(ctx, events.Event{Trigger: events.NewsletterSubscribed, Email: "ada@example.com", Name: "Ada"})

	if len(sender.messages) != 1 {
		t.Fatalf("expected one email, got %d", len(sender.messages))
	}
	msg := sender.messages[0]
	if msg.To != "ada@example.com" || msg.Subject != "Welcome Ada" || msg.Text != "Thanks for joining, Ada." {
		t.Fatalf("unexpected email %+v", msg)
	}
}

func TestDispatchSwallowsFailures(t *testing.T) {
	t.Parallel()

	sharer := &stubSharer{err: eris.New("ayrshare unavailable")}
	service := setup(t, sharer, &stubSender{})
	ctx := context.Background()

	rule, err := service.CreateRule(ctx, automation.RuleInput{
		Name:    "share posts",
		Trigger: events.BlogPublished,
		Action:  automation.ActionSocialShare,
		Config:  map[string]string{"platforms": "linkedin"},
	})
	if err != nil {
		t.Fatalf("CreateRule returned error: %v", err)
	}

	service.Dispatch(ctx, events.Event{Trigger: events.BlogPublished, Title: "Post"})

	stored, err := service.GetRule(ctx, rule.ID)
	if err != nil {
		t.Fatalf("GetRule returned error: %v", err)
	}
	if stored.RunCount != 1 {
		t.Fatalf("expected failed run to be counted, got %d", stored.RunCount)
	}
}

func TestRenderLeavesUnknownPlaceholders(t *testing.T) {
	t.Parallel()

	got := automation.Render("{{title}} by {{author}}", map[string]string{"title": "Hello"})
	if got != "Hello by {{author}}" {
		t.Fatalf("unexpected render %q", got)
	}
}
