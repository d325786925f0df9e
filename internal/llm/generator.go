package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	tonifyerrors "tonify/internal/errors"
	"tonify/internal/ports"
	"tonify/internal/trait"
)

// ContentClient implements ports.ContentGenerator against the content
// generation oracle. The narrative (title/summary/prompt) and examples
// requests are issued concurrently; both must succeed or the whole call
// fails with no partial content.
type ContentClient struct {
	client *client
}

var _ ports.ContentGenerator = (*ContentClient)(nil)

// NewContentClient constructs a generator from oracle configuration.
func NewContentClient(config Config) *ContentClient {
	return &ContentClient{client: newClient(config, "content-generator")}
}

// GenerateContent requests title+summary+prompt and exactly four usage
// examples for a trait vector.
func (g *ContentClient) GenerateContent(ctx context.Context, traits trait.Vector) (ports.GeneratedContent, error) {
	if err := traits.Validate(); err != nil {
		return ports.GeneratedContent{}, fmt.Errorf("generate content: %w", err)
	}

	userPrompt := buildTraitsUserPrompt(traits)

	var narrative struct {
		Title   string `json:"title"`
		Summary string `json:"summary"`
		Prompt  string `json:"prompt"`
	}
	var examples []string

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		content, err := g.client.completeWithRetry(groupCtx, "generate narrative", narrativeSystemPrompt, userPrompt)
		if err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(content), &narrative); err != nil {
			return tonifyerrors.NewIncompleteError(fmt.Errorf("decode narrative response: %w", err), "")
		}
		if narrative.Title == "" || narrative.Summary == "" || narrative.Prompt == "" {
			return tonifyerrors.NewIncompleteError(
				fmt.Errorf("narrative response missing title, summary, or prompt"), "")
		}
		return nil
	})

	group.Go(func() error {
		content, err := g.client.completeWithRetry(groupCtx, "generate examples", examplesSystemPrompt, userPrompt)
		if err != nil {
			return err
		}
		var parsed struct {
			Examples []string `json:"examples"`
		}
		if err := json.Unmarshal([]byte(content), &parsed); err != nil {
			return tonifyerrors.NewIncompleteError(fmt.Errorf("decode examples response: %w", err), "")
		}
		if len(parsed.Examples) != ports.ExampleCount {
			return tonifyerrors.NewIncompleteError(
				fmt.Errorf("expected %d examples, got %d", ports.ExampleCount, len(parsed.Examples)), "")
		}
		for i, example := range parsed.Examples {
			if example == "" {
				return tonifyerrors.NewIncompleteError(fmt.Errorf("example %d is empty", i), "")
			}
		}
		examples = parsed.Examples
		return nil
	})

	if err := group.Wait(); err != nil {
		return ports.GeneratedContent{}, err
	}

	return ports.GeneratedContent{
		Title:    narrative.Title,
		Summary:  narrative.Summary,
		Prompt:   narrative.Prompt,
		Examples: examples,
	}, nil
}
