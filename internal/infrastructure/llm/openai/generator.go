package openai

import (
	"context"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/shared"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"eduvista/site/internal/domain/ai"
	"eduvista/site/internal/platform/metrics"
)

const defaultTemperature = 0.7

// GeneratorOptions configures the chat-completion generator. Models are
// tried in order until one answers.
type GeneratorOptions struct {
	Client      *Client
	Models      []string
	Temperature float64
}

// Generator implements ai.Completer over chat completions.
type Generator struct {
	client      *Client
	logger      *logrus.Logger
	models      []string
	temperature float64
}

var _ ai.Completer = (*Generator)(nil)

// NewGenerator constructs a Generator.
func NewGenerator(opts GeneratorOptions) (*Generator, error) {
	if opts.Client == nil {
		return nil, eris.New("llm client is required")
	}

	models := make([]string, 0, len(opts.Models))
	for _, model := range opts.Models {
		if model = strings.TrimSpace(model); model != "" {
			models = append(models, model)
		}
	}
	if len(models) == 0 {
		return nil, eris.New("at least one generator model is required")
	}

	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}

	return &Generator{
		client:      opts.Client,
		logger:      opts.Client.logger,
		models:      models,
		temperature: temperature,
	}, nil
}

// Complete sends the prompt and returns the assistant's text with any
// surrounding code fence removed.
func (g *Generator) Complete(ctx context.Context, prompt ai.Prompt) (string, error) {
	var lastErr error
	for _, model := range g.models {
		content, err := g.complete(ctx, model, prompt)
		metrics.IncExternalCall("llm", err)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}

func (g *Generator) complete(ctx context.Context, model string, prompt ai.Prompt) (string, error) {
	fields := logrus.Fields{"model": model, "kind": prompt.Kind}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
		Temperature: openai.Float(g.temperature),
	}
	if prompt.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(prompt.MaxTokens))
	}

	completion, err := g.client.chat.New(ctx, params)
	if err != nil {
		g.logError(fields, err, "requesting chat completion")
		return "", eris.Wrap(err, "requesting chat completion")
	}

	if len(completion.Choices) == 0 {
		err := eris.New("llm completion returned no choices")
		g.logError(fields, err, "processing chat completion")
		return "", err
	}

	choice := completion.Choices[0]
	if reason := strings.TrimSpace(choice.FinishReason); strings.EqualFold(reason, "content_filter") {
		err := eris.New("llm blocked the request via content filter")
		g.logError(fields, err, "generator blocked")
		return "", err
	}

	if refusal := strings.TrimSpace(choice.Message.Refusal); refusal != "" {
		err := eris.Errorf("llm refused to generate content: %s", refusal)
		g.logError(fields, err, "generator refused")
		return "", err
	}

	content := stripCodeFence(strings.TrimSpace(choice.Message.Content))
	if content == "" {
		err := eris.New("llm response content is empty")
		g.logError(fields, err, "empty llm response")
		return "", err
	}
	return content, nil
}

func (g *Generator) logError(fields logrus.Fields, err error, message string) {
	if g.logger == nil || err == nil {
		return
	}

	entry := g.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}

func stripCodeFence(content string) string {
	if !strings.HasPrefix(content, "```") {
		return content
	}

	body := content[3:]
	newline := strings.IndexByte(body, '\n')
	if newline == -1 {
		return content
	}
	body = body[newline+1:]

	trimmed := strings.TrimRight(body, " \t\r\n")
	if !strings.HasSuffix(trimmed, "```") {
		return content
	}
	return strings.TrimSpace(trimmed[:len(trimmed)-3])
}
