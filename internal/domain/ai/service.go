package ai

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"eduvista/site/internal/domain/apperr"
	"eduvista/site/internal/platform/log"
	"eduvista/site/internal/platform/validation"
)

// Options configures the generation service. A nil Completer disables it.
type Options struct {
	Completer Completer
	Reporter  *log.Reporter
}

// Service generates marketing copy with a language model.
type Service struct {
	completer Completer
	reporter  *log.Reporter
}

// NewService constructs a Service.
func NewService(opts Options) *Service {
	return &Service{completer: opts.Completer, reporter: opts.Reporter}
}

// Enabled reports whether a model is configured.
func (s *Service) Enabled() bool {
	return s.completer != nil
}

// Generate produces content of input.Kind about input.Topic.
func (s *Service) Generate(ctx context.Context, input GenerateInput) (*Result, error) {
	input.Topic = strings.TrimSpace(input.Topic)
	input.Tone = strings.TrimSpace(input.Tone)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if !input.Kind.Valid() {
		return nil, apperr.Invalid("kind %q is invalid", input.Kind)
	}
	if input.Kind == KindSocialPost {
		input.Platform = platformOrDefault(input.Platform)
		if !input.Platform.Valid() {
			return nil, apperr.Invalid("platform %q is invalid", input.Platform)
		}
	} else {
		input.Platform = ""
	}

	if s.completer == nil {
		return nil, apperr.Disabled("content generation is not configured")
	}

	fields := logrus.Fields{"kind": input.Kind}
	raw, err := s.completer.Complete(ctx, buildPrompt(input))
	if err != nil {
		s.reporter.Error(fields, err, "generating content")
		return nil, apperr.Upstream(err, "generating %s", input.Kind)
	}

	content, err := postProcess(input, raw)
	if err != nil {
		s.reporter.Error(fields, err, "cleaning generated content")
		return nil, apperr.Upstream(err, "cleaning generated %s", input.Kind)
	}

	return &Result{Kind: input.Kind, Content: content, Platform: input.Platform}, nil
}

func postProcess(input GenerateInput, raw string) (string, error) {
	switch input.Kind {
	case KindBlogPost, KindNewsletter:
		return SanitizeHTML(raw)
	case KindSocialPost:
		return TrimToLimit(raw, input.Platform.CharacterLimit()), nil
	case KindSEO:
		return TrimToLimit(strings.Trim(strings.TrimSpace(raw), `"`), MaxMetaDescription), nil
	}
	return raw, nil
}
