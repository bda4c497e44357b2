package engine

import (
	"context"

	"hermes/internal/chat"
)

// Collaborator is the one abstract seam between the engine and whatever
// LLM transport renders a turn's prompt into a response. The engine
// depends only on this interface; internal/llmclient supplies one
// concrete implementation backed by google.golang.org/genai, but any
// transport satisfying Send can be wired in its place.
type Collaborator interface {
	// Send renders prompt plus the prior transcript and returns a
	// channel of text chunks as the LLM streams its reply. The channel
	// is closed when the response is complete; a non-nil error means no
	// channel was returned at all (the engine treats it as an empty
	// turn and re-renders on the next tick, per the no-timeout-primitive
	// policy).
	Send(ctx context.Context, prompt string, transcript []chat.ChatMessage) (<-chan string, error)
}
