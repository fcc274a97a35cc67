package automation

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"eduvista/site/internal/domain/apperr"
	"eduvista/site/internal/domain/email"
	"eduvista/site/internal/domain/events"
	"eduvista/site/internal/domain/social"
	"eduvista/site/internal/platform/log"
	"eduvista/site/internal/platform/metrics"
	"eduvista/site/internal/platform/validation"
)

// Options configures the automation service. Social and Sender are optional;
// rules whose action needs a missing dependency are rejected on save.
type Options struct {
	Repository Repository
	Social     SocialSharer
	Sender     email.Sender
	Reporter   *log.Reporter
	Now        func() time.Time
}

// Service stores rules and runs them when events are dispatched.
type Service struct {
	repo     Repository
	social   SocialSharer
	sender   email.Sender
	reporter *log.Reporter
	now      func() time.Time
}

var _ events.Dispatcher = (*Service)(nil)

// NewService validates dependencies and constructs a Service.
func NewService(opts Options) (*Service, error) {
	if opts.Repository == nil {
		return nil, eris.New("automation repository is required")
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		repo:     opts.Repository,
		social:   opts.Social,
		sender:   opts.Sender,
		reporter: opts.Reporter,
		now:      now,
	}, nil
}

// ListRules returns every rule, optionally restricted to trigger.
func (s *Service) ListRules(ctx context.Context, trigger events.Trigger) ([]Rule, error) {
	if trigger != "" && !trigger.Valid() {
		return nil, apperr.Invalid("trigger %q is invalid", trigger)
	}
	rules, err := s.repo.ListRules(ctx, trigger)
	if err != nil {
		s.reporter.Error(nil, err, "listing automation rules")
		return nil, eris.Wrap(err, "listing automation rules")
	}
	return rules, nil
}

// GetRule returns the rule with id.
func (s *Service) GetRule(ctx context.Context, id uint) (*Rule, error) {
	rule, err := s.repo.GetRule(ctx, id)
	if err != nil {
		s.reporter.Error(logrus.Fields{"rule_id": id}, err, "fetching automation rule")
		return nil, eris.Wrapf(err, "fetching automation rule %d", id)
	}
	if rule == nil {
		return nil, apperr.NotFound("automation rule %d not found", id)
	}
	return rule, nil
}

// CreateRule validates and stores a rule.
func (s *Service) CreateRule(ctx context.Context, input RuleInput) (*Rule, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	rule := &Rule{
		Name:    input.Name,
		Trigger: input.Trigger,
		Action:  input.Action,
		Config:  cleanConfig(input.Config),
		Enabled: true,
	}
	if input.Enabled != nil {
		rule.Enabled = *input.Enabled
	}
	if err := s.checkRule(rule); err != nil {
		return nil, err
	}

	if err := s.repo.CreateRule(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// UpdateRule applies patch to the rule with id.
func (s *Service) UpdateRule(ctx context.Context, id uint, patch RulePatch) (*Rule, error) {
	rule, err := s.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperr.Invalid("name is required")
		}
		rule.Name = name
	}
	if patch.Trigger != nil {
		rule.Trigger = *patch.Trigger
	}
	if patch.Action != nil {
		rule.Action = *patch.Action
	}
	if patch.Config != nil {
		rule.Config = cleanConfig(*patch.Config)
	}
	if patch.Enabled != nil {
		rule.Enabled = *patch.Enabled
	}
	if err := s.checkRule(rule); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateRule(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// DeleteRule removes a rule.
func (s *Service) DeleteRule(ctx context.Context, id uint) error {
	return s.repo.DeleteRule(ctx, id)
}

// Dispatch runs every enabled rule for the event's trigger. Rule failures
// are logged and counted; the caller never sees them.
func (s *Service) Dispatch(ctx context.Context, event events.Event) {
	rules, err := s.repo.EnabledRules(ctx, event.Trigger)
	if err != nil {
		s.reporter.Error(logrus.Fields{"trigger": event.Trigger}, err, "loading automation rules")
		return
	}

	for _, rule := range rules {
		fields := logrus.Fields{"rule_id": rule.ID, "trigger": event.Trigger, "action": rule.Action}

		runErr := s.run(ctx, rule, event)
		metrics.IncAutomationRun(string(event.Trigger), string(rule.Action), runErr)
		if runErr != nil {
			s.reporter.Error(fields, runErr, "automation rule failed")
		} else {
			s.reporter.Info(fields, "automation rule ran")
		}

		if err := s.repo.RecordRun(ctx, rule.ID, s.now().UTC()); err != nil {
			s.reporter.Error(fields, err, "recording automation run")
		}
	}
}

func (s *Service) run(ctx context.Context, rule Rule, event events.Event) error {
	vars := event.Vars()

	switch rule.Action {
	case ActionSocialShare:
		if s.social == nil {
			return apperr.Disabled("social publishing is not configured")
		}
		template := rule.Config[ConfigTemplate]
		if template == "" {
			template = defaultShareTemplate
		}
		platforms, err := parsePlatforms(rule.Config[ConfigPlatforms])
		if err != nil {
			return err
		}
		_, err = s.social.CreateAndPublish(ctx, social.PostInput{
			Content:   strings.TrimSpace(Render(template, vars)),
			Platforms: platforms,
		})
		return err

	case ActionEmailSend:
		if s.sender == nil {
			return apperr.Disabled("email delivery is not configured")
		}
		to := rule.Config[ConfigTo]
		if to == "" {
			to = event.Email
		}
		if to == "" {
			return apperr.Invalid("rule %d has no recipient for %s", rule.ID, event.Trigger)
		}
		body := Render(rule.Config[ConfigBody], vars)
		return s.sender.Send(ctx, email.Message{
			To:      to,
			ToName:  event.Name,
			Subject: Render(rule.Config[ConfigSubject], vars),
			HTML:    body,
			Text:    body,
			Tags:    []string{"automation", string(event.Trigger)},
		})
	}
	return apperr.Invalid("action %q is not supported", rule.Action)
}

func (s *Service) checkRule(rule *Rule) error {
	if !rule.Trigger.Valid() {
		return apperr.Invalid("trigger %q is invalid", rule.Trigger)
	}
	if !rule.Action.Valid() {
		return apperr.Invalid("action %q is not supported", rule.Action)
	}

	switch rule.Action {
	case ActionSocialShare:
		if s.social == nil {
			return apperr.Disabled("social publishing is not configured")
		}
		if _, err := parsePlatforms(rule.Config[ConfigPlatforms]); err != nil {
			return err
		}
	case ActionEmailSend:
		if s.sender == nil {
			return apperr.Disabled("email delivery is not configured")
		}
		if rule.Config[ConfigSubject] == "" || rule.Config[ConfigBody] == "" {
			return apperr.Invalid("email.send rules need config.subject and config.body")
		}
		to := rule.Config[ConfigTo]
		if to != "" && !validation.Email(to) {
			return apperr.Invalid("config.to must be a valid email address")
		}
		if to == "" && rule.Trigger == events.BlogPublished {
			return apperr.Invalid("config.to is required for %s rules", rule.Trigger)
		}
	}
	return nil
}

// Render replaces {{key}} placeholders with vars. Unknown placeholders are
// left as they are.
func Render(template string, vars map[string]string) string {
	if template == "" || len(vars) == 0 {
		return template
	}
	pairs := make([]string, 0, len(vars)*2)
	for key, value := range vars {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func parsePlatforms(raw string) ([]social.Platform, error) {
	var platforms []social.Platform
	for _, part := range strings.Split(raw, ",") {
		platform := social.Platform(strings.ToLower(strings.TrimSpace(part)))
		if platform == "" {
			continue
		}
		if !platform.Valid() {
			return nil, apperr.Invalid("platform %q is not supported", platform)
		}
		platforms = append(platforms, platform)
	}
	if len(platforms) == 0 {
		return nil, apperr.Invalid("social.share rules need config.platforms")
	}
	return platforms, nil
}

func cleanConfig(config map[string]string) map[string]string {
	out := make(map[string]string, len(config))
	for key, value := range config {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		out[key] = strings.TrimSpace(value)
	}
	return out
}
