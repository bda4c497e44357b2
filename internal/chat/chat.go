// Package chat holds each node's conversation transcript and the
// machinery that aggregates a turn's side effects into a single
// AutoReply, the engine's one reply-to-the-LLM unit per turn.
package chat

import (
	"sync"

	"github.com/google/go-cmp/cmp"

	"hermes/internal/logging"
)

// Author identifies who spoke a ChatMessage.
type Author string

const (
	AuthorUser      Author = "user"
	AuthorAssistant Author = "assistant"
)

// ChatMessage is one turn of raw conversation text.
type ChatMessage struct {
	Author  Author
	Content string
}

// CommandOutput records the result of one executed command, surfaced
// back to the LLM in the next AutoReply.
type CommandOutput struct {
	Name   string
	Args   map[string]string
	Output string
}

// InternalMessage is a message delivered to a node from elsewhere in the
// tree — typically from the scheduler on focus_up/fail_and_focus_up.
type InternalMessage struct {
	Text        string
	OriginTitle string
}

// SectionChange is one dynamic section whose rendered data changed since
// the prior turn, keyed by its fixed section index.
type SectionChange struct {
	Index int
	Data  interface{}
}

// AutoReply is the engine's structured reply to the LLM for a single
// turn: everything accumulated since the last AutoReply, compiled once.
type AutoReply struct {
	ErrorReport        string
	CommandOutputs     []CommandOutput
	InternalMessages   []InternalMessage
	ConfirmationNeeded string
	SectionChanges     []SectionChange
}

// IsEmpty reports whether this AutoReply carries nothing worth sending.
func (r *AutoReply) IsEmpty() bool {
	return r.ErrorReport == "" &&
		len(r.CommandOutputs) == 0 &&
		len(r.InternalMessages) == 0 &&
		r.ConfirmationNeeded == "" &&
		len(r.SectionChanges) == 0
}

// TranscriptEntry is either a *ChatMessage or a *AutoReply, in the order
// they occurred.
type TranscriptEntry struct {
	Message   *ChatMessage
	AutoReply *AutoReply
}

// AutoReplyAggregator accumulates one turn's side effects for a single
// node and materializes them into an AutoReply on demand. It also holds
// the dynamic-section snapshot from the previous turn for diffing.
type AutoReplyAggregator struct {
	mu sync.Mutex

	transcript []TranscriptEntry

	pendingErrorReport  string
	pendingOutputs      []CommandOutput
	pendingInternalMsgs []InternalMessage
	pendingConfirmation string

	lastDynamicSectionsState []interface{}
	seeded                   bool
}

// NewAggregator creates an empty aggregator for one node.
func NewAggregator() *AutoReplyAggregator {
	return &AutoReplyAggregator{}
}

// AppendUserMessage appends a user-authored message directly to the
// transcript (bypassing the pending-AutoReply buffer).
func (a *AutoReplyAggregator) AppendUserMessage(content string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.transcript = append(a.transcript, TranscriptEntry{Message: &ChatMessage{Author: AuthorUser, Content: content}})
}

// AppendAssistantMessage appends the LLM's raw response to the transcript.
func (a *AutoReplyAggregator) AppendAssistantMessage(content string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.transcript = append(a.transcript, TranscriptEntry{Message: &ChatMessage{Author: AuthorAssistant, Content: content}})
}

// SetErrorReport records this turn's parse/dispatch error report.
func (a *AutoReplyAggregator) SetErrorReport(report string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pendingErrorReport = report
}

// AddCommandOutput records one executed command's output.
func (a *AutoReplyAggregator) AddCommandOutput(name string, args map[string]string, output string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pendingOutputs = append(a.pendingOutputs, CommandOutput{Name: name, Args: args, Output: output})
}

// AddInternalMessage records a message delivered from elsewhere in the
// tree, to be surfaced in this node's next AutoReply.
func (a *AutoReplyAggregator) AddInternalMessage(text, originTitle string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pendingInternalMsgs = append(a.pendingInternalMsgs, InternalMessage{Text: text, OriginTitle: originTitle})
}

// RequestConfirmation records a pending confirmation prompt for this turn.
func (a *AutoReplyAggregator) RequestConfirmation(prompt string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pendingConfirmation = prompt
}

// UpdateDynamicSections compares newState against the last recorded
// dynamic-section snapshot element-wise by value equality, records the
// differing (index, data) pairs, and replaces the stored snapshot. The
// first call on a fresh aggregator seeds state without reporting changes.
func (a *AutoReplyAggregator) UpdateDynamicSections(newState []interface{}) []SectionChange {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.seeded {
		a.lastDynamicSectionsState = append([]interface{}(nil), newState...)
		a.seeded = true
		return nil
	}

	var changes []SectionChange
	for i, data := range newState {
		var prev interface{}
		if i < len(a.lastDynamicSectionsState) {
			prev = a.lastDynamicSectionsState[i]
		}
		if !cmp.Equal(prev, data) {
			changes = append(changes, SectionChange{Index: i, Data: data})
		}
	}

	a.lastDynamicSectionsState = append([]interface{}(nil), newState...)
	return changes
}

// Flush materializes the pending turn state into an AutoReply, appends it
// to the transcript if non-empty, resets the pending buffers, and returns
// it. sectionChanges come from the caller's own UpdateDynamicSections
// call (kept separate so the engine controls ordering relative to
// command execution).
func (a *AutoReplyAggregator) Flush(sectionChanges []SectionChange) *AutoReply {
	a.mu.Lock()
	defer a.mu.Unlock()

	reply := &AutoReply{
		ErrorReport:        a.pendingErrorReport,
		CommandOutputs:     a.pendingOutputs,
		InternalMessages:   a.pendingInternalMsgs,
		ConfirmationNeeded: a.pendingConfirmation,
		SectionChanges:     sectionChanges,
	}

	a.pendingErrorReport = ""
	a.pendingOutputs = nil
	a.pendingInternalMsgs = nil
	a.pendingConfirmation = ""

	if !reply.IsEmpty() {
		a.transcript = append(a.transcript, TranscriptEntry{AutoReply: reply})
		logging.ChatDebug("flushed AutoReply: %d outputs, %d internal messages, %d section changes",
			len(reply.CommandOutputs), len(reply.InternalMessages), len(reply.SectionChanges))
	}

	return reply
}

// Transcript returns a defensive copy of the full ordered transcript.
func (a *AutoReplyAggregator) Transcript() []TranscriptEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]TranscriptEntry, len(a.transcript))
	copy(out, a.transcript)
	return out
}

// Registry holds one aggregator per node title, created lazily.
type Registry struct {
	mu   sync.Mutex
	byID map[string]*AutoReplyAggregator
}

// NewRegistry creates an empty transcript registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*AutoReplyAggregator)}
}

// For returns the aggregator for title, creating it on first use.
func (r *Registry) For(title string) *AutoReplyAggregator {
	r.mu.Lock()
	defer r.mu.Unlock()
	agg, ok := r.byID[title]
	if !ok {
		agg = NewAggregator()
		r.byID[title] = agg
	}
	return agg
}

// Deliver routes an internal message to the aggregator for title.
func (r *Registry) Deliver(title, text, originTitle string) {
	r.For(title).AddInternalMessage(text, originTitle)
}
