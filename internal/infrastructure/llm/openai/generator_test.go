package openai

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared/constant"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"eduvista/site/internal/domain/ai"
)

type fakeChatService struct {
	responses  map[string]*openai.ChatCompletion
	errs       map[string]error
	models     []string
	lastParams openai.ChatCompletionNewParams
}

var fakeBaseURL = "https://fake-llm-provider.ai/api/v1"

func (f *fakeChatService) New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	f.lastParams = body
	model := string(body.Model)
	f.models = append(f.models, model)
	if err := f.errs[model]; err != nil {
		return nil, err
	}
	return f.responses[model], nil
}

func completion(content, finishReason, refusal string) *openai.ChatCompletion {
	return &openai.ChatCompletion{
		ID:      "gen-1",
		Created: time.Now().Unix(),
		Model:   "test-model",
		Object:  constant.ValueOf[constant.ChatCompletion](),
		Choices: []openai.ChatCompletionChoice{
			{
				FinishReason: finishReason,
				Index:        0,
				Logprobs: openai.ChatCompletionChoiceLogprobs{
					Content: []openai.ChatCompletionTokenLogprob{},
					Refusal: []openai.ChatCompletionTokenLogprob{},
				},
				Message: openai.ChatCompletionMessage{
					Content: content,
					Refusal: refusal,
					Role:    constant.ValueOf[constant.Assistant](),
				},
			},
		},
	}
}

func newTestGenerator(t *testing.T, chat *fakeChatService, models ...string) *Generator {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	client := &Client{chat: chat, logger: logger, baseURL: fakeBaseURL}
	generator, err := NewGenerator(GeneratorOptions{Client: client, Models: models})
	if err != nil {
		t.Fatalf("NewGenerator returned error: %v", err)
	}
	return generator
}

func TestGeneratorReturnsContentWithoutCodeFence(t *testing.T) {
	t.Parallel()

	chat := &fakeChatService{responses: map[string]*openai.ChatCompletion{
		"model-a": completion("```html\n<h2>Blended learning</h2>\n<p>Mix formats.</p>\n```", "stop", ""),
	}}
	generator := newTestGenerator(t, chat, "model-a")

	content, err := generator.Complete(context.Background(), ai.Prompt{Kind: ai.KindBlogPost, System: "sys", User: "topic", MaxTokens: 100})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}

	expected := "<h2>Blended learning</h2>\n<p>Mix formats.</p>"
	if content != expected {
		t.Fatalf("expected %q, got %q", expected, content)
	}
	if len(chat.lastParams.Messages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(chat.lastParams.Messages))
	}
	if !chat.lastParams.MaxCompletionTokens.Valid() || chat.lastParams.MaxCompletionTokens.Value != 100 {
		t.Fatalf("expected max tokens 100, got %+v", chat.lastParams.MaxCompletionTokens)
	}
}

func TestGeneratorFallsBackToNextModel(t *testing.T) {
	t.Parallel()

	chat := &fakeChatService{
		errs:      map[string]error{"model-a": eris.New("overloaded")},
		responses: map[string]*openai.ChatCompletion{"model-b": completion("fallback answer", "stop", "")},
	}
	generator := newTestGenerator(t, chat, "model-a", " ", "model-b")

	content, err := generator.Complete(context.Background(), ai.Prompt{System: "sys", User: "user"})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if content != "fallback answer" {
		t.Fatalf("expected fallback answer, got %q", content)
	}
	if strings.Join(chat.models, ",") != "model-a,model-b" {
		t.Fatalf("expected both models to be tried in order, got %v", chat.models)
	}
}

func TestGeneratorRejectsUnusableChoices(t *testing.T) {
	t.Parallel()

	cases := map[string]*openai.ChatCompletion{
		"content filter": completion("partial", "content_filter", ""),
		"refusal":        completion("", "stop", "I can't help with that"),
		"empty":          completion("  ", "stop", ""),
		"no choices":     {ID: "gen-2"},
	}

	for name, response := range cases {
		response := response
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			chat := &fakeChatService{responses: map[string]*openai.ChatCompletion{"model-a": response}}
			generator := newTestGenerator(t, chat, "model-a")
			if _, err := generator.Complete(context.Background(), ai.Prompt{System: "sys", User: "user"}); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestGeneratorPropagatesAPIError(t *testing.T) {
	t.Parallel()

	chat := &fakeChatService{errs: map[string]error{"model-a": eris.New("api failure")}}
	generator := newTestGenerator(t, chat, "model-a")

	if _, err := generator.Complete(context.Background(), ai.Prompt{System: "sys", User: "user"}); err == nil {
		t.Fatalf("expected error when chat service returns failure")
	}
}

func TestNewGeneratorRequiresModels(t *testing.T) {
	t.Parallel()

	client := &Client{chat: &fakeChatService{}, baseURL: fakeBaseURL}
	if _, err := NewGenerator(GeneratorOptions{Client: client, Models: []string{" "}}); err == nil {
		t.Fatalf("expected error without models")
	}
	if _, err := NewGenerator(GeneratorOptions{Models: []string{"m"}}); err == nil {
		t.Fatalf("expected error without client")
	}
}

func TestStripCodeFence(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"plain":                      "plain",
		"```\nbody\n```":             "body",
		"```markdown\n# Title\n```  ": "# Title",
		"```unterminated\nbody":      "```unterminated\nbody",
	}
	for input, want := range cases {
		if got := stripCodeFence(input); got != want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestGeneratorLive(t *testing.T) {
	// Needs a .env next to this file with LLM_API_KEY, LLM_ENDPOINT and LLM_MODELS.
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if err := godotenv.Load(); err != nil {
		t.Logf("%v", eris.Wrap(err, "loading .env file"))
	}

	if os.Getenv("LLM_LIVE_TEST") != "1" {
		t.Skip("live generator test disabled; set LLM_LIVE_TEST=1 to enable")
	}

	apiKey := strings.TrimSpace(os.Getenv("LLM_API_KEY"))
	if apiKey == "" {
		t.Skip("LLM_API_KEY is required for the live generator test")
	}

	client, err := NewClient(ClientOptions{APIKey: apiKey, BaseURL: os.Getenv("LLM_ENDPOINT"), Logger: logger})
	if err != nil {
		t.Fatalf("failed to build live client: %v", err)
	}

	var models []string
	for _, candidate := range strings.Split(strings.Trim(os.Getenv("LLM_MODELS"), "[]"), ",") {
		if candidate = strings.Trim(strings.TrimSpace(candidate), "\"'"); candidate != "" {
			models = append(models, candidate)
		}
	}

	generator, err := NewGenerator(GeneratorOptions{Client: client, Models: models})
	if err != nil {
		t.Fatalf("failed to create live generator: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	start := time.Now()
	content, err := generator.Complete(ctx, ai.Prompt{
		Kind:   ai.KindSEO,
		System: "Write a meta description of at most 160 characters.",
		User:   "Topic: compliance training for hospitals",
	})
	if err != nil {
		t.Fatalf("live generator call failed: %v", err)
	}

	t.Logf("LLM models %v responded in %s: %s", models, time.Since(start), content)
}
