package newsletter

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"eduvista/site/internal/domain/apperr"
	"eduvista/site/internal/domain/email"
	"eduvista/site/internal/domain/events"
	"eduvista/site/internal/domain/scheduler"
	"eduvista/site/internal/platform/log"
	"eduvista/site/internal/platform/validation"
)

// ProcessorName identifies the newsletter processor in scheduler reports.
const ProcessorName = "newsletter"

const unsubscribePlaceholder = "{{unsubscribe_url}}"

// Options configures the newsletter service. Events is optional.
type Options struct {
	Repository Repository
	Sender     email.Sender
	Events     events.Dispatcher
	BaseURL    string
	Reporter   *log.Reporter
	Now        func() time.Time
}

// Service manages subscriptions and campaigns.
type Service struct {
	repo     Repository
	sender   email.Sender
	events   events.Dispatcher
	baseURL  string
	reporter *log.Reporter
	now      func() time.Time
}

var _ scheduler.Processor = (*Service)(nil)

// NewService validates dependencies and constructs a Service.
func NewService(opts Options) (*Service, error) {
	if opts.Repository == nil {
		return nil, eris.New("newsletter repository is required")
	}
	if opts.Sender == nil {
		return nil, eris.New("email sender is required")
	}

	dispatcher := opts.Events
	if dispatcher == nil {
		dispatcher = events.Nop{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		repo:     opts.Repository,
		sender:   opts.Sender,
		events:   dispatcher,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		reporter: opts.Reporter,
		now:      now,
	}, nil
}

// Name implements scheduler.Processor.
func (s *Service) Name() string {
	return ProcessorName
}

// Subscribe adds or reactivates a subscriber. It is idempotent for addresses
// that are already subscribed and reports whether anything changed.
func (s *Service) Subscribe(ctx context.Context, input SubscribeInput) (*Subscriber, bool, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = strings.TrimSpace(input.Name)
	input.Source = strings.TrimSpace(input.Source)
	if err := validation.Struct(input); err != nil {
		return nil, false, err
	}
	if input.Source == "" {
		input.Source = "website"
	}

	fields := logrus.Fields{"email": input.Email}
	now := s.now().UTC()

	existing, err := s.repo.GetSubscriberByEmail(ctx, input.Email)
	if err != nil {
		s.reporter.Error(fields, err, "looking up subscriber")
		return nil, false, eris.Wrap(err, "looking up subscriber")
	}

	if existing != nil {
		if existing.Status == Subscribed {
			return existing, false, nil
		}
		existing.Status = Subscribed
		existing.SubscribedAt = now
		existing.UnsubscribedAt = nil
		if input.Name != "" {
			existing.Name = input.Name
		}
		if existing.UnsubscribeToken == "" {
			existing.UnsubscribeToken = uuid.NewString()
		}
		if err := s.repo.UpdateSubscriber(ctx, existing); err != nil {
			return nil, false, err
		}
		s.emitSubscribed(ctx, existing)
		return existing, true, nil
	}

	subscriber := &Subscriber{
		Email:            input.Email,
		Name:             input.Name,
		Status:           Subscribed,
		Source:           input.Source,
		UnsubscribeToken: uuid.NewString(),
		SubscribedAt:     now,
	}
	if err := s.repo.CreateSubscriber(ctx, subscriber); err != nil {
		if apperr.IsKind(err, apperr.ErrConflict) {
			// Lost a race with a concurrent signup for the same address.
			current, lookupErr := s.repo.GetSubscriberByEmail(ctx, input.Email)
			if lookupErr == nil && current != nil {
				return current, false, nil
			}
		}
		return nil, false, err
	}
	s.emitSubscribed(ctx, subscriber)
	return subscriber, true, nil
}

func (s *Service) emitSubscribed(ctx context.Context, subscriber *Subscriber) {
	s.events.Dispatch(ctx, events.Event{
		Trigger:    events.NewsletterSubscribed,
		Email:      subscriber.Email,
		Name:       subscriber.Name,
		URL:        s.UnsubscribeURL(subscriber.UnsubscribeToken),
		Data:       map[string]string{"source": subscriber.Source},
		OccurredAt: subscriber.SubscribedAt,
	})
}

// Unsubscribe deactivates the subscriber owning token.
func (s *Service) Unsubscribe(ctx context.Context, token string) (*Subscriber, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperr.Invalid("token is required")
	}

	subscriber, err := s.repo.GetSubscriberByToken(ctx, token)
	if err != nil {
		s.reporter.Error(nil, err, "looking up unsubscribe token")
		return nil, eris.Wrap(err, "looking up unsubscribe token")
	}
	if subscriber == nil {
		return nil, apperr.NotFound("subscription not found")
	}
	if subscriber.Status == Unsubscribed {
		return subscriber, nil
	}

	now := s.now().UTC()
	subscriber.Status = Unsubscribed
	subscriber.UnsubscribedAt = &now
	if err := s.repo.UpdateSubscriber(ctx, subscriber); err != nil {
		return nil, err
	}
	return subscriber, nil
}

// UnsubscribeURL returns the public link that cancels a subscription.
func (s *Service) UnsubscribeURL(token string) string {
	return s.baseURL + "/newsletter/unsubscribe?token=" + url.QueryEscape(token)
}

// ListSubscribers returns one page of subscribers.
func (s *Service) ListSubscribers(ctx context.Context, filter SubscriberFilter) ([]Subscriber, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, apperr.Invalid("status %q is invalid", filter.Status)
	}

	items, total, err := s.repo.ListSubscribers(ctx, filter)
	if err != nil {
		s.reporter.Error(nil, err, "listing subscribers")
		return nil, 0, eris.Wrap(err, "listing subscribers")
	}
	return items, total, nil
}

// DeleteSubscriber removes a subscriber permanently.
func (s *Service) DeleteSubscriber(ctx context.Context, id uint) error {
	return s.repo.DeleteSubscriber(ctx, id)
}

// CountSubscribers returns subscriber counts per status.
func (s *Service) CountSubscribers(ctx context.Context) (map[SubscriberStatus]int64, error) {
	counts, err := s.repo.CountSubscribersByStatus(ctx)
	if err != nil {
		s.reporter.Error(nil, err, "counting subscribers")
		return nil, eris.Wrap(err, "counting subscribers")
	}
	return counts, nil
}

// ExportSubscribers returns every subscriber with status (all when empty) for CSV export.
func (s *Service) ExportSubscribers(ctx context.Context, status SubscriberStatus) ([]Subscriber, error) {
	if status != "" && !status.Valid() {
		return nil, apperr.Invalid("status %q is invalid", status)
	}

	items, err := s.repo.AllSubscribers(ctx, status)
	if err != nil {
		s.reporter.Error(nil, err, "exporting subscribers")
		return nil, eris.Wrap(err, "exporting subscribers")
	}
	return items, nil
}

// ListCampaigns returns campaigns, optionally filtered by status.
func (s *Service) ListCampaigns(ctx context.Context, status CampaignStatus) ([]Campaign, error) {
	if status != "" && !status.Valid() {
		return nil, apperr.Invalid("status %q is invalid", status)
	}

	items, err := s.repo.ListCampaigns(ctx, status)
	if err != nil {
		s.reporter.Error(nil, err, "listing campaigns")
		return nil, eris.Wrap(err, "listing campaigns")
	}
	return items, nil
}

// GetCampaign returns the campaign with id.
func (s *Service) GetCampaign(ctx context.Context, id uint) (*Campaign, error) {
	campaign, err := s.repo.GetCampaign(ctx, id)
	if err != nil {
		s.reporter.Error(logrus.Fields{"campaign_id": id}, err, "fetching campaign")
		return nil, eris.Wrapf(err, "fetching campaign %d", id)
	}
	if campaign == nil {
		return nil, apperr.NotFound("campaign %d not found", id)
	}
	return campaign, nil
}

// CreateCampaign validates input and stores a draft campaign.
func (s *Service) CreateCampaign(ctx context.Context, input CampaignInput) (*Campaign, error) {
	input.Subject = strings.TrimSpace(input.Subject)
	input.PreviewText = strings.TrimSpace(input.PreviewText)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	campaign := &Campaign{
		Subject:     input.Subject,
		PreviewText: input.PreviewText,
		BodyHTML:    input.BodyHTML,
		Status:      CampaignDraft,
	}
	if err := s.repo.CreateCampaign(ctx, campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

// UpdateCampaign edits a campaign that has not been sent.
func (s *Service) UpdateCampaign(ctx context.Context, id uint, patch CampaignPatch) (*Campaign, error) {
	campaign, err := s.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign.Status == CampaignSent || campaign.Status == CampaignSending {
		return nil, apperr.Conflict("campaign %d is %s and can no longer be edited", id, campaign.Status)
	}

	if patch.Subject != nil {
		value := strings.TrimSpace(*patch.Subject)
		if value == "" {
			return nil, apperr.Invalid("subject is required")
		}
		campaign.Subject = value
	}
	if patch.PreviewText != nil {
		campaign.PreviewText = strings.TrimSpace(*patch.PreviewText)
	}
	if patch.BodyHTML != nil {
		if strings.TrimSpace(*patch.BodyHTML) == "" {
			return nil, apperr.Invalid("body_html is required")
		}
		campaign.BodyHTML = *patch.BodyHTML
	}

	if err := s.repo.UpdateCampaign(ctx, campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

// DeleteCampaign removes a campaign.
func (s *Service) DeleteCampaign(ctx context.Context, id uint) error {
	return s.repo.DeleteCampaign(ctx, id)
}

// ScheduleCampaign queues the campaign for sending at at, which must be in the future.
func (s *Service) ScheduleCampaign(ctx context.Context, id uint, at time.Time) (*Campaign, error) {
	if at.IsZero() {
		return nil, apperr.Invalid("scheduled_at is required")
	}
	if !at.After(s.now()) {
		return nil, apperr.Invalid("scheduled_at must be in the future")
	}

	campaign, err := s.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign.Status == CampaignSent || campaign.Status == CampaignSending {
		return nil, apperr.Conflict("campaign %d has already been sent", id)
	}

	scheduled := at.UTC()
	campaign.Status = CampaignScheduled
	campaign.ScheduledAt = &scheduled
	if err := s.repo.UpdateCampaign(ctx, campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

// SendCampaign delivers the campaign to every subscribed address.
func (s *Service) SendCampaign(ctx context.Context, id uint) (*Campaign, error) {
	campaign, err := s.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	return campaign, s.send(ctx, campaign)
}

// ProcessScheduled sends every scheduled campaign that is due.
func (s *Service) ProcessScheduled(ctx context.Context, now time.Time) (scheduler.Report, error) {
	report := scheduler.Report{Kind: ProcessorName}

	due, err := s.repo.DueCampaigns(ctx, now)
	if err != nil {
		s.reporter.Error(nil, err, "loading due campaigns")
		return report, eris.Wrap(err, "loading due campaigns")
	}

	for i := range due {
		report.Record(due[i].ID, s.send(ctx, &due[i]))
	}
	return report, nil
}

func (s *Service) send(ctx context.Context, campaign *Campaign) error {
	fields := logrus.Fields{"campaign_id": campaign.ID}

	if campaign.Status == CampaignSent || campaign.Status == CampaignSending {
		return apperr.Conflict("campaign %d has already been sent", campaign.ID)
	}

	claimed, err := s.repo.ClaimCampaign(ctx, campaign.ID, CampaignDraft, CampaignScheduled, CampaignFailed)
	if err != nil {
		s.reporter.Error(fields, err, "claiming campaign")
		return eris.Wrapf(err, "claiming campaign %d", campaign.ID)
	}
	if !claimed {
		return apperr.Conflict("campaign %d has already been sent", campaign.ID)
	}
	campaign.Status = CampaignSending

	recipients, err := s.repo.AllSubscribers(ctx, Subscribed)
	if err != nil {
		s.reporter.Error(fields, err, "loading recipients")
		s.finish(ctx, campaign, 0, 0, CampaignFailed)
		return eris.Wrap(err, "loading recipients")
	}

	failures := 0
	for _, recipient := range recipients {
		msg := email.Message{
			To:      recipient.Email,
			ToName:  recipient.Name,
			Subject: campaign.Subject,
			HTML:    s.renderBody(campaign, recipient),
			Tags:    []string{"newsletter"},
		}
		if err := s.sender.Send(ctx, msg); err != nil {
			failures++
			s.reporter.Warn(logrus.Fields{"campaign_id": campaign.ID, "subscriber_id": recipient.ID}, err, "sending campaign email")
		}
	}

	status := CampaignSent
	if len(recipients) > 0 && failures == len(recipients) {
		status = CampaignFailed
	}
	s.finish(ctx, campaign, len(recipients), failures, status)

	if status == CampaignFailed {
		return apperr.Upstream(nil, "campaign %d failed for all %d recipients", campaign.ID, len(recipients))
	}
	return nil
}

func (s *Service) finish(ctx context.Context, campaign *Campaign, recipients, failures int, status CampaignStatus) {
	now := s.now().UTC()
	campaign.Status = status
	campaign.RecipientCount = recipients
	campaign.FailureCount = failures
	campaign.ScheduledAt = nil
	if status == CampaignSent {
		campaign.SentAt = &now
	}
	if err := s.repo.UpdateCampaign(ctx, campaign); err != nil {
		s.reporter.Error(logrus.Fields{"campaign_id": campaign.ID, "status": status}, err, "recording campaign outcome")
	}
}

func (s *Service) renderBody(campaign *Campaign, recipient Subscriber) string {
	link := s.UnsubscribeURL(recipient.UnsubscribeToken)
	body := campaign.BodyHTML
	if strings.Contains(body, unsubscribePlaceholder) {
		return strings.ReplaceAll(body, unsubscribePlaceholder, link)
	}
	return body + `<p style="font-size:12px;color:#6b7280">You receive this email because you subscribed to the eduvista newsletter. <a href="` + link + `">Unsubscribe</a></p>`
}
