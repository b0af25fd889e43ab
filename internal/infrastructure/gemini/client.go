package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/dmitrv/soulmate-bot/internal/domain"
)

// Client generates a short icebreaker line for a fresh match. It is optional:
// the bot works the same without it, the match notice just loses the opener.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewClient(apiKey string) (*Client, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-1.5-pro")
	model.SetTemperature(0.7)

	return &Client{client: client, model: model}, nil
}

func (c *Client) Close() {
	c.client.Close()
}

// Suggest implements browse.IcebreakerSuggester.
func (c *Client) Suggest(ctx context.Context, a, b *domain.Profile) (string, error) {
	prompt := fmt.Sprintf(`
		Two people just matched in a dating bot.
		Person 1: name %q, city %q, looking for %q, about: %q
		Person 2: name %q, city %q, looking for %q, about: %q

		Task: Write one short, warm opening line (a single sentence) either of
		them could send to start the conversation. No emoji spam, no quotes.
		Output: just the line.
	`,
		a.DisplayName, a.City, a.Looking, a.About,
		b.DisplayName, b.City, b.Looking, b.About,
	)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
