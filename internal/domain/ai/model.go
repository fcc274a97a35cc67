package ai

import (
	"context"

	"eduvista/site/internal/domain/social"
)

// Kind selects what is generated.
type Kind string

const (
	KindBlogPost   Kind = "blog_post"
	KindSocialPost Kind = "social_post"
	KindNewsletter Kind = "newsletter"
	KindSEO        Kind = "seo"
)

// Valid reports whether k is a supported kind.
func (k Kind) Valid() bool {
	switch k {
	case KindBlogPost, KindSocialPost, KindNewsletter, KindSEO:
		return true
	}
	return false
}

// MaxMetaDescription is the longest SEO description returned.
const MaxMetaDescription = 160

// GenerateInput describes the requested content. Platform only applies to
// social posts and defaults to linkedin.
type GenerateInput struct {
	Kind     Kind            `json:"kind" validate:"required"`
	Topic    string          `json:"topic" validate:"required,max=500"`
	Tone     string          `json:"tone,omitempty" validate:"max=50"`
	Keywords []string        `json:"keywords,omitempty" validate:"max=20,dive,max=60"`
	Platform social.Platform `json:"platform,omitempty"`
}

// Result is generated content ready to be saved as a draft.
type Result struct {
	Kind     Kind            `json:"kind"`
	Content  string          `json:"content"`
	Platform social.Platform `json:"platform,omitempty"`
}

// Prompt is one chat completion request.
type Prompt struct {
	Kind      Kind
	System    string
	User      string
	MaxTokens int
}

// Completer returns the model's answer for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}
