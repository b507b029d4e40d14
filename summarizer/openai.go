package summarizer

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = `You are an assistant that summarizes video transcripts.
Respond with a JSON object with these fields:
"title": a short descriptive title for the video,
"summary": a concise summary of the transcript in a few paragraphs,
"key_points": a list of the most important points as short strings,
"topics": a list of topics the video covers,
"category": a single word category such as technology, education, news, entertainment or other.
Do not add commentary outside the JSON object.`

// Result is the structured summarization output plus token accounting.
type Result struct {
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	KeyPoints    []string `json:"key_points"`
	Topics       []string `json:"topics"`
	Category     string   `json:"category"`
	Model        string   `json:"-"`
	InputTokens  int      `json:"-"`
	OutputTokens int      `json:"-"`
	TotalTokens  int      `json:"-"`
}

type Config struct {
	Model string
}

type OpenAI struct {
	client *openai.Client
	config Config
}

func NewOpenAI(apiKey string, cfg Config) *OpenAI {
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	return &OpenAI{
		client: openai.NewClient(apiKey),
		config: cfg,
	}
}

func (o *OpenAI) Summarize(ctx context.Context, text string) (*Result, error) {
	resp, err := o.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: o.config.Model,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: text,
				},
			},
		})
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch summary")
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("summary response contained no choices")
	}

	content := resp.Choices[len(resp.Choices)-1].Message.Content

	var result Result
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &result); err != nil {
		return nil, errors.Wrap(err, "failed to parse summary response")
	}
	if result.Summary == "" {
		return nil, errors.New("summary response was empty")
	}

	result.Model = resp.Model
	result.InputTokens = resp.Usage.PromptTokens
	result.OutputTokens = resp.Usage.CompletionTokens
	result.TotalTokens = resp.Usage.TotalTokens

	return &result, nil
}
