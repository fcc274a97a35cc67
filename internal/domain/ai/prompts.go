package ai

import (
	"fmt"
	"strings"

	"eduvista/site/internal/domain/social"
)

const brandVoice = "You write for eduvista, a company that builds eLearning courses and learning platforms for organisations. "

const defaultTone = "professional and approachable"

func buildPrompt(input GenerateInput) Prompt {
	tone := input.Tone
	if tone == "" {
		tone = defaultTone
	}

	var user strings.Builder
	fmt.Fprintf(&user, "Topic: %s\nTone: %s\n", input.Topic, tone)
	if len(input.Keywords) > 0 {
		fmt.Fprintf(&user, "Keywords: %s\n", strings.Join(input.Keywords, ", "))
	}

	prompt := Prompt{Kind: input.Kind, User: user.String()}
	switch input.Kind {
	case KindBlogPost:
		prompt.System = brandVoice + "Write a blog article as an HTML fragment using <h2>, <h3>, <p>, <ul>, <li>, <strong> and <a> only. " +
			"Do not include <html>, <head> or <body> and do not wrap the answer in markdown."
		prompt.MaxTokens = 2500
	case KindNewsletter:
		prompt.System = brandVoice + "Write a newsletter email body as an HTML fragment with a greeting, two or three short sections and a call to action. " +
			"Use inline-friendly markup only: <h2>, <p>, <ul>, <li>, <strong>, <a>."
		prompt.MaxTokens = 1500
	case KindSocialPost:
		limit := input.Platform.CharacterLimit()
		prompt.System = brandVoice + fmt.Sprintf(
			"Write one %s post in plain text, at most %d characters, with no more than three hashtags. Reply with the post only.",
			input.Platform, limit,
		)
		prompt.MaxTokens = 800
	case KindSEO:
		prompt.System = brandVoice + fmt.Sprintf(
			"Write a meta description of at most %d characters. Reply with the description only, without quotes.",
			MaxMetaDescription,
		)
		prompt.MaxTokens = 120
	}
	return prompt
}

// TrimToLimit shortens text to at most limit runes, cutting at the last word
// boundary when one exists. A limit of zero leaves text unchanged.
func TrimToLimit(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	cut := runes[:limit]
	if !isSpace(runes[limit]) {
		for i := len(cut) - 1; i > 0; i-- {
			if isSpace(cut[i]) {
				cut = cut[:i]
				break
			}
		}
	}
	return strings.TrimSpace(string(cut))
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}

func platformOrDefault(platform social.Platform) social.Platform {
	if platform == "" {
		return social.LinkedIn
	}
	return platform
}
