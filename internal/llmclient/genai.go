// Package llmclient implements engine.Collaborator against Google's
// Gemini API via google.golang.org/genai. It is the one concrete
// transport the engine is wired to at startup; the engine itself never
// imports this package directly.
package llmclient

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"hermes/internal/chat"
	"hermes/internal/logging"
)

// GenAICollaborator streams Gemini responses as engine.Collaborator.
type GenAICollaborator struct {
	client *genai.Client
	model  string
}

// NewGenAICollaborator creates a collaborator backed by apiKey and model.
// model defaults to "gemini-2.0-flash" when empty.
func NewGenAICollaborator(ctx context.Context, apiKey, model string) (*GenAICollaborator, error) {
	timer := logging.StartTimer(logging.CategoryLLM, "NewGenAICollaborator")
	defer timer.Stop()

	if apiKey == "" {
		return nil, fmt.Errorf("llmclient: API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
		logging.LLMDebug("model defaulted to: %s", model)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("llmclient: failed to create genai client: %w", err)
	}

	logging.LLM("genai collaborator ready: model=%s", model)
	return &GenAICollaborator{client: client, model: model}, nil
}

// Send renders transcript as conversation history ahead of prompt and
// streams the model's reply one chunk at a time on the returned channel.
// The channel is closed once streaming completes or fails; a failure
// mid-stream simply stops further sends, matching the engine's "empty
// response is a no-op turn" policy rather than propagating the error.
func (g *GenAICollaborator) Send(ctx context.Context, prompt string, transcript []chat.ChatMessage) (<-chan string, error) {
	contents := make([]*genai.Content, 0, len(transcript)+1)
	for _, turn := range transcript {
		role := genai.RoleUser
		if turn.Author == chat.AuthorAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(prompt, genai.RoleUser))

	out := make(chan string)

	apiStart := time.Now()
	go func() {
		defer close(out)

		for resp, err := range g.client.Models.GenerateContentStream(ctx, g.model, contents, nil) {
			if err != nil {
				logging.LLMError("genai stream error after %v: %v", time.Since(apiStart), err)
				return
			}
			text := resp.Text()
			if text == "" {
				continue
			}
			select {
			case out <- text:
			case <-ctx.Done():
				return
			}
		}
		logging.LLMDebug("genai stream completed in %v", time.Since(apiStart))
	}()

	return out, nil
}

// Close releases the underlying client. GenAI's client needs no explicit
// teardown today; this exists so callers can defer it unconditionally.
func (g *GenAICollaborator) Close() error {
	return nil
}
