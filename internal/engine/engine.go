// Package engine drives the turn loop: render the current node's
// dynamic sections and pending auto-reply into a prompt, send it to a
// Collaborator, parse the reply into commands, dispatch them against
// the tree, and repeat until the scheduler resolves the root. This is
// the one package that wires problem, scheduler, chat, render, command,
// store and knowledge together; every other package stays ignorant of
// the others.
package engine

import (
	"context"
	"fmt"
	"strings"

	"hermes/internal/chat"
	"hermes/internal/command"
	"hermes/internal/config"
	"hermes/internal/knowledge"
	"hermes/internal/logging"
	"hermes/internal/problem"
	"hermes/internal/render"
	"hermes/internal/scheduler"
	"hermes/internal/store"
)

// shutdownSentinel anywhere in an assistant response forces the
// scheduler finished, regardless of focus-stack depth.
const shutdownSentinel = "SHUT_DOWN_DEEP_RESEARCHER"

// Config holds the engine's tunables, sourced from config.Config at
// startup.
type Config struct {
	PerCommandOutputMaxLength int
	BudgetTotal               int
}

// ConfigFromFile adapts a loaded config.Config into an engine Config.
func ConfigFromFile(c *config.Config) Config {
	return Config{
		PerCommandOutputMaxLength: c.PerCommandOutputMaxLength,
		BudgetTotal:               c.BudgetTotal,
	}
}

// Engine owns one research run: a problem tree, its scheduler, the
// per-node transcripts, the shared knowledge base, and the collaborator
// that stands in for the LLM.
type Engine struct {
	store           *store.Store
	scheduler       *scheduler.Scheduler
	chatReg         *chat.Registry
	kb              *knowledge.KnowledgeBase
	registry        *command.Registry
	parser          *command.Parser
	collaborator    Collaborator
	root            *problem.Node
	cfg             Config
	budgetRemaining *int
}

// New wires a fresh Engine around root, already seeded into st/sch/kb.
func New(st *store.Store, sch *scheduler.Scheduler, chatReg *chat.Registry, kb *knowledge.KnowledgeBase, registry *command.Registry, collaborator Collaborator, root *problem.Node, cfg Config) *Engine {
	e := &Engine{
		store:        st,
		scheduler:    sch,
		chatReg:      chatReg,
		kb:           kb,
		registry:     registry,
		parser:       command.NewParser(registry),
		collaborator: collaborator,
		root:         root,
		cfg:          cfg,
	}
	if cfg.BudgetTotal > 0 {
		remaining := cfg.BudgetTotal
		e.budgetRemaining = &remaining
	}
	return e
}

// Run drives turns until the scheduler finishes or ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	return e.RunN(ctx, 0)
}

// RunN drives at most maxTurns turns (0 = unbounded), stopping early if
// the scheduler finishes, the budget is exhausted, or ctx is cancelled.
func (e *Engine) RunN(ctx context.Context, maxTurns int) error {
	logging.Engine("run starting: root=%q", e.root.Title)
	turns := 0
	for !e.scheduler.Finished() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if maxTurns > 0 && turns >= maxTurns {
			logging.EngineWarn("max turns (%d) reached, stopping before scheduler finished", maxTurns)
			return fmt.Errorf("engine: max turns (%d) reached with scheduler unfinished", maxTurns)
		}
		if e.budgetRemaining != nil && *e.budgetRemaining <= 0 {
			logging.EngineWarn("budget exhausted, stopping before scheduler finished")
			return fmt.Errorf("engine: budget exhausted with scheduler unfinished")
		}
		if err := e.turn(ctx); err != nil {
			return err
		}
		turns++
	}
	logging.Engine("run finished: root status=%s", e.root.GetStatus())
	return nil
}

// turn runs exactly one cycle of the engine loop for the node currently
// in focus, per the fixed eight-step algorithm: snapshot the dynamic
// sections, diff them against the prior turn, flush the node's pending
// auto-reply, render the prompt, send it to the collaborator, append
// the assistant's reply to the transcript, parse it into commands, and
// dispatch every well-formed one before looping again.
func (e *Engine) turn(ctx context.Context) error {
	current := e.scheduler.Current()
	if current == nil {
		return fmt.Errorf("engine: no current node, scheduler not initialized")
	}
	agg := e.chatReg.For(current.Title)

	// 1. Snapshot this turn's dynamic section data.
	parentChain := ancestorChain(current)
	snapshot := render.Snapshot(
		current,
		e.root,
		parentChain,
		e.store.GetExternalFiles(),
		e.kb.Entries(),
		current.PermanentLogsSnapshot(),
		e.budgetTotalPtr(),
		e.budgetRemaining,
	)

	// 2. Diff against the last recorded state for this node.
	changes := agg.UpdateDynamicSections(snapshot)

	// 3. Flush pending command outputs/errors/internal messages plus the
	// section diff into one AutoReply, appended to the transcript.
	agg.Flush(changes)

	// 4. Render the full prompt: every section in fixed order. Future
	// changes are counted after the transcript's last entry, so nothing
	// is omitted here; KnowledgeBase omission applies only to earlier
	// auto-replies replayed as history.
	transcript := agg.Transcript()
	futureChanges := render.FutureChangesMap(transcript, len(transcript)-1)
	prompt := render.RenderAll(snapshot, futureChanges)

	// 5. Send to the collaborator and collect the streamed reply.
	history := historyMessages(transcript)
	stream, err := e.collaborator.Send(ctx, prompt, history)
	if err != nil {
		logging.EngineError("collaborator.Send failed, re-rendering next turn: %v", err)
		return nil
	}
	var sb strings.Builder
	for chunk := range stream {
		sb.WriteString(chunk)
	}
	response := sb.String()
	if response == "" {
		logging.EngineDebug("empty collaborator response, re-rendering next turn")
		return nil
	}

	// 6. Append the assistant's raw reply to the transcript.
	agg.AppendAssistantMessage(response)

	if e.budgetRemaining != nil {
		*e.budgetRemaining--
	}

	if strings.Contains(response, shutdownSentinel) {
		logging.Engine("shutdown sentinel observed, forcing scheduler finished")
		e.scheduler.ForceFinish()
		return nil
	}

	// 7. Parse the response into zero or more command blocks.
	results := e.parser.ParseText(response)

	// 8. Surface parse/validation errors, then dispatch every command
	// that parsed cleanly, against the node that was current when the
	// response arrived (a command may itself change focus mid-dispatch,
	// e.g. activate_subproblems_and_wait).
	if report := command.GenerateErrorReport(results); report != "" {
		agg.SetErrorReport(report)
	}
	e.dispatch(current, results)

	return nil
}

// dispatch executes every successfully-parsed command in results
// in order, against node. A command that errors records its failure as
// its own command output rather than aborting the remaining commands.
func (e *Engine) dispatch(node *problem.Node, results []command.ParseResult) {
	for _, r := range results {
		if !r.Valid() {
			continue
		}
		spec := e.registry.Get(r.CommandName)
		if spec == nil {
			continue
		}

		ctx := command.NewContext(node, e.root, e.store, e.kb, e.scheduler, e.chatReg)
		ctx.CommandName = r.CommandName

		out, err := spec.Handler(ctx, r.Args)
		if err != nil {
			logging.CommandError("%s failed: %v", r.CommandName, err)
			ctx.AddCommandOutput(r.CommandName, r.Args, "Error: "+err.Error())
			continue
		}
		ctx.AddCommandOutput(r.CommandName, r.Args, e.truncate(out))
	}
}

// truncate caps a command's rendered output at PerCommandOutputMaxLength,
// replacing the overflow with a "characters omitted" marker carrying the
// percentage of the original text that was dropped. Zero or negative
// limits disable truncation.
func (e *Engine) truncate(text string) string {
	limit := e.cfg.PerCommandOutputMaxLength
	if limit <= 0 || len(text) <= limit {
		return text
	}
	omitted := len(text) - limit
	pct := omitted * 100 / len(text)
	return fmt.Sprintf("%s\n[...%d characters omitted (%d%%)]", text[:limit], omitted, pct)
}

func (e *Engine) budgetTotalPtr() *int {
	if e.cfg.BudgetTotal <= 0 {
		return nil
	}
	total := e.cfg.BudgetTotal
	return &total
}

// ancestorChain returns the path from root to current, inclusive, in
// root-to-leaf order.
func ancestorChain(current *problem.Node) []*problem.Node {
	var chain []*problem.Node
	for n := current; n != nil; n = n.Parent {
		chain = append(chain, n)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// historyMessages flattens a node's full transcript into the
// ChatMessage sequence a Collaborator expects as conversation history.
// AutoReply entries (command outputs, internal messages, section diffs)
// have no assistant/user author of their own in the Python original's
// sense, so they are folded in as synthetic user turns; this keeps the
// streamed model's multi-turn context honest without replaying the
// entire rendered prompt string on every turn.
func historyMessages(transcript []chat.TranscriptEntry) []chat.ChatMessage {
	var out []chat.ChatMessage
	for i, entry := range transcript {
		switch {
		case entry.Message != nil:
			out = append(out, *entry.Message)
		case entry.AutoReply != nil:
			text := renderAutoReplyText(entry.AutoReply, transcript, i)
			if text == "" {
				continue
			}
			out = append(out, chat.ChatMessage{Author: chat.AuthorUser, Content: text})
		}
	}
	return out
}

// renderAutoReplyText renders one historical AutoReply as plain text for
// inclusion in conversation history, respecting the same
// future-changes-based KnowledgeBase omission the live prompt uses.
func renderAutoReplyText(reply *chat.AutoReply, transcript []chat.TranscriptEntry, index int) string {
	var sb strings.Builder
	if reply.ErrorReport != "" {
		sb.WriteString(reply.ErrorReport)
		sb.WriteString("\n")
	}
	for _, out := range reply.CommandOutputs {
		fmt.Fprintf(&sb, "[%s] %s\n", out.Name, out.Output)
	}
	for _, msg := range reply.InternalMessages {
		fmt.Fprintf(&sb, "(message from %s): %s\n", msg.OriginTitle, msg.Text)
	}
	if reply.ConfirmationNeeded != "" {
		fmt.Fprintf(&sb, "(confirmation needed): %s\n", reply.ConfirmationNeeded)
	}

	if len(reply.SectionChanges) > 0 {
		futureChanges := render.FutureChangesMap(transcript, index)
		for _, change := range reply.SectionChanges {
			kind := render.Order[change.Index]
			sb.WriteString(render.Render(kind, change.Data, futureChanges[change.Index]))
			sb.WriteString("\n")
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}
