package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

const (
	DefaultModel = "gpt-4o-mini"

	baseMaxOutputTokens  int64 = 100
	limitMaxOutputTokens int64 = 400
	temperature                = 0.7
	requestTimeout             = 2 * time.Minute

	systemPrompt = `You are an expert social media manager who writes engaging posts about news articles.

Rules:
- Under 280 characters in total, including the link.
- Exactly one promotional sentence or short paragraph.
- Include the article URL exactly as given.
- Include 1-3 relevant hashtags.
- No quotes around the post, no preamble.
- Output only the post text.`
)

// OpenAIGenerator writes posts with OpenAI's Responses API.
type OpenAIGenerator struct {
	client openai.Client
	model  string
}

func NewOpenAIGenerator(apiKey string, model string, opts ...option.RequestOption) *OpenAIGenerator {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}

	clientOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(requestTimeout),
	}, opts...)

	return &OpenAIGenerator{
		client: openai.NewClient(clientOpts...),
		model:  model,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, input Input) (string, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	articleURL := strings.TrimSpace(input.URL)

	if description == "" {
		return "", errors.New("description is empty")
	}
	if articleURL == "" {
		return "", errors.New("URL is empty")
	}

	userPrompt := buildUserPrompt(title, description, articleURL)

	maxOutputTokens := baseMaxOutputTokens
	for {
		resp, err := g.client.Responses.New(ctx, responses.ResponseNewParams{
			Model:           g.model,
			MaxOutputTokens: openai.Int(maxOutputTokens),
			Temperature:     openai.Float(temperature),
			Instructions:    openai.String(systemPrompt),
			Input: responses.ResponseNewParamsInputUnion{
				OfString: openai.String(userPrompt),
			},
		})
		if err != nil {
			return "", fmt.Errorf("do request: %w", err)
		}

		if resp.Status == "incomplete" {
			if resp.IncompleteDetails.Reason == "max_output_tokens" && maxOutputTokens < limitMaxOutputTokens {
				maxOutputTokens = min(maxOutputTokens*2, limitMaxOutputTokens)
				continue
			}
			return "", fmt.Errorf(
				"response is incomplete (reason = %s, maxOutputTokens = %d)",
				resp.IncompleteDetails.Reason,
				maxOutputTokens,
			)
		}

		text := strings.TrimSpace(resp.OutputText())
		if text == "" {
			return "", fmt.Errorf("output text is missing (status = %s)", resp.Status)
		}

		post, err := FitPost(text, articleURL)
		if err != nil {
			return "", fmt.Errorf("fit post: %w", err)
		}
		return post, nil
	}
}

func buildUserPrompt(title, description, articleURL string) string {
	b := strings.Builder{}

	b.WriteString("Write a post about this news article.\n\n")
	if title != "" {
		b.WriteString("Title: ")
		b.WriteString(title)
		b.WriteString("\n")
	}
	b.WriteString("Description: ")
	b.WriteString(description)
	b.WriteString("\nURL: ")
	b.WriteString(articleURL)

	return b.String()
}
