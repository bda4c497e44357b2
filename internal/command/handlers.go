package command

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"hermes/internal/knowledge"
	"hermes/internal/logging"
	"hermes/internal/problem"
)

func init() {
	Global.MustRegister(defineProblemSpec())
	Global.MustRegister(addCriteriaSpec())
	Global.MustRegister(markCriteriaAsDoneSpec())
	Global.MustRegister(addSubproblemSpec())
	Global.MustRegister(addCriteriaToSubproblemSpec())
	Global.MustRegister(addArtifactSpec())
	Global.MustRegister(appendToProblemDefinitionSpec())
	Global.MustRegister(activateSubproblemsAndWaitSpec())
	Global.MustRegister(finishProblemSpec())
	Global.MustRegister(failProblemSpec())
	Global.MustRegister(cancelSubproblemSpec())
	Global.MustRegister(addLogEntrySpec())
	Global.MustRegister(openArtifactSpec())
	Global.MustRegister(halfCloseArtifactSpec())
	Global.MustRegister(thinkSpec())
	Global.MustRegister(addKnowledgeSpec())
}

func one(args map[string][]string, name string) string {
	if v := args[name]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func defineProblemSpec() *Spec {
	return &Spec{
		Schema: Schema{
			Name: "define_problem",
			Help: "Creates the root problem. Legal only before any root exists.",
			Sections: []Section{
				{Name: "title", Required: true},
				{Name: "content", Required: true},
			},
		},
		Handler: func(ctx *Context, args map[string][]string) (string, error) {
			if ctx.Node != nil {
				return "", fmt.Errorf("define_problem: a root problem already exists")
			}
			root, err := ctx.Store.CreateRoot(one(args, "title"), one(args, "content"))
			if err != nil {
				return "", err
			}
			ctx.Root = root
			ctx.Node = root
			ctx.Scheduler.Initialize(root)
			logging.CommandDebug("define_problem: created root %q", root.Title)
			return "Root problem defined.", nil
		},
	}
}

func addCriteriaSpec() *Spec {
	return &Spec{
		Schema: Schema{
			Name: "add_criteria",
			Help: "Appends a criterion to the current node's definition of done.",
			Sections: []Section{
				{Name: "criteria", Required: true},
			},
		},
		Handler: func(ctx *Context, args map[string][]string) (string, error) {
			ctx.Node.AddCriteria(one(args, "criteria"))
			return "Criteria added.", ctx.Persist()
		},
	}
}

func markCriteriaAsDoneSpec() *Spec {
	return &Spec{
		Schema: Schema{
			Name: "mark_criteria_as_done",
			Help: "Marks a 1-based criterion number as done on the current node.",
			Sections: []Section{
				{Name: "criteria_number", Required: true},
			},
		},
		Validate: func(args map[string][]string) []string {
			if _, err := strconv.Atoi(one(args, "criteria_number")); err != nil {
				return []string{"criteria_number must be an integer"}
			}
			return nil
		},
		Handler: func(ctx *Context, args map[string][]string) (string, error) {
			n, _ := strconv.Atoi(one(args, "criteria_number"))
			if err := ctx.Node.MarkCriteriaDone(n); err != nil {
				return "", err
			}
			return fmt.Sprintf("Criteria #%d marked done.", n), ctx.Persist()
		},
	}
}

func addSubproblemSpec() *Spec {
	return &Spec{
		Schema: Schema{
			Name: "add_subproblem",
			Help: "Creates a new child of the current node, not yet activated.",
			Sections: []Section{
				{Name: "title", Required: true},
				{Name: "content", Required: true},
			},
		},
		Handler: func(ctx *Context, args map[string][]string) (string, error) {
			title := one(args, "title")
			ctx.Node.AddSubproblem(title, one(args, "content"))
			return fmt.Sprintf("Subproblem %q added.", title), ctx.Persist()
		},
	}
}

func addCriteriaToSubproblemSpec() *Spec {
	return &Spec{
		Schema: Schema{
			Name: "add_criteria_to_subproblem",
			Help: "Appends a criterion to a named child of the current node.",
			Sections: []Section{
				{Name: "title", Required: true},
				{Name: "criteria", Required: true},
			},
		},
		Handler: func(ctx *Context, args map[string][]string) (string, error) {
			title := one(args, "title")
			child, ok := ctx.Node.Subproblem(title)
			if !ok {
				return "", fmt.Errorf("add_criteria_to_subproblem: no subproblem named %q", title)
			}
			child.AddCriteria(one(args, "criteria"))
			return "Criteria added to subproblem.", ctx.Persist()
		},
	}
}

func addArtifactSpec() *Spec {
	return &Spec{
		Schema: Schema{
			Name: "add_artifact",
			Help: "Attaches a named artifact to the current node.",
			Sections: []Section{
				{Name: "name", Required: true},
				{Name: "content", Required: true},
			},
		},
		Handler: func(ctx *Context, args map[string][]string) (string, error) {
			name := one(args, "name")
			ctx.Node.AddArtifact(name, one(args, "content"), false)
			return fmt.Sprintf("Artifact %q saved.", name), ctx.Persist()
		},
	}
}

func appendToProblemDefinitionSpec() *Spec {
	return &Spec{
		Schema: Schema{
			Name: "append_to_problem_definition",
			Help: "Appends text to the current node's problem definition.",
			Sections: []Section{
				{Name: "content", Required: true},
			},
		},
		Handler: func(ctx *Context, args map[string][]string) (string, error) {
			ctx.Node.AppendToDefinition(one(args, "content"))
			return "Problem definition updated.", ctx.Persist()
		},
	}
}

func activateSubproblemsAndWaitSpec() *Spec {
	return &Spec{
		Schema: Schema{
			Name: "activate_subproblems_and_wait",
			Help: "Activates the first listed subproblem and queues the rest to run sequentially as each predecessor finishes.",
			Sections: []Section{
				{Name: "title", Required: true, AllowMultiple: true},
			},
			ShouldBeLastInMessage: true,
		},
		Handler: func(ctx *Context, args map[string][]string) (string, error) {
			titles := args["title"]
			for _, t := range titles {
				if _, ok := ctx.Node.Subproblem(t); !ok {
					return "", fmt.Errorf("activate_subproblems_and_wait: no subproblem named %q", t)
				}
			}
			if len(titles) > 1 {
				ctx.EnqueueChildren(titles[1:])
			}
			if err := ctx.FocusDown(titles[0]); err != nil {
				return "", err
			}
			return fmt.Sprintf("Activated %q; %d more queued to follow.", titles[0], len(titles)-1), ctx.Persist()
		},
	}
}

func finishProblemSpec() *Spec {
	return &Spec{
		Schema: Schema{
			Name: "finish_problem",
			Help: "Marks the current node finished and resumes its parent.",
			Sections: []Section{
				{Name: "message", Required: false},
			},
			ShouldBeLastInMessage: true,
		},
		Handler: func(ctx *Context, args map[string][]string) (string, error) {
			if err := ctx.FocusUp(one(args, "message")); err != nil {
				return "", err
			}
			return "Problem finished.", ctx.Persist()
		},
	}
}

func failProblemSpec() *Spec {
	return &Spec{
		Schema: Schema{
			Name: "fail_problem",
			Help: "Marks the current node failed and resumes its parent.",
			Sections: []Section{
				{Name: "message", Required: false},
			},
			ShouldBeLastInMessage: true,
		},
		Handler: func(ctx *Context, args map[string][]string) (string, error) {
			if err := ctx.FailAndFocusUp(one(args, "message")); err != nil {
				return "", err
			}
			return "Problem failed.", ctx.Persist()
		},
	}
}

func cancelSubproblemSpec() *Spec {
	return &Spec{
		Schema: Schema{
			Name: "cancel_subproblem",
			Help: "Cancels a not-yet-activated child of the current node.",
			Sections: []Section{
				{Name: "title", Required: true},
			},
		},
		Handler: func(ctx *Context, args map[string][]string) (string, error) {
			title := one(args, "title")
			child, ok := ctx.Node.Subproblem(title)
			if !ok {
				return "", fmt.Errorf("cancel_subproblem: no subproblem named %q", title)
			}
			if child.GetStatus() != problem.StatusNotStarted {
				return "", fmt.Errorf("cancel_subproblem: %q has already been activated", title)
			}
			child.SetStatus(problem.StatusCancelled)
			return fmt.Sprintf("Subproblem %q cancelled.", title), ctx.Persist()
		},
	}
}

func addLogEntrySpec() *Spec {
	return &Spec{
		Schema: Schema{
			Name: "add_log_entry",
			Help: "Appends a line to the permanent, cross-turn log.",
			Sections: []Section{
				{Name: "content", Required: true},
			},
		},
		Handler: func(ctx *Context, args map[string][]string) (string, error) {
			ctx.Node.AddPermanentLog(one(args, "content"))
			logging.TreeDebug("permanent log [%s]: %s", ctx.Node.Title, one(args, "content"))
			return "Log entry recorded.", ctx.Persist()
		},
	}
}

func openArtifactSpec() *Spec {
	return &Spec{
		Schema: Schema{
			Name: "open_artifact",
			Help: "Renders a named artifact in full for the rest of this branch's visibility.",
			Sections: []Section{
				{Name: "name", Required: true},
				{Name: "reason", Required: true},
			},
		},
		Handler: func(ctx *Context, args map[string][]string) (string, error) {
			name := one(args, "name")
			ctx.Node.SetArtifactVisible(name, true)
			return fmt.Sprintf("Artifact %q will render in full.", name), nil
		},
	}
}

func halfCloseArtifactSpec() *Spec {
	return &Spec{
		Schema: Schema{
			Name: "half_close_artifact",
			Help: "Returns a named artifact to its truncated preview form.",
			Sections: []Section{
				{Name: "name", Required: true},
				{Name: "reason", Required: true},
			},
		},
		Handler: func(ctx *Context, args map[string][]string) (string, error) {
			name := one(args, "name")
			ctx.Node.SetArtifactVisible(name, false)
			return fmt.Sprintf("Artifact %q will render truncated.", name), nil
		},
	}
}

func thinkSpec() *Spec {
	return &Spec{
		Schema: Schema{
			Name: "think",
			Help: "A scratch pad with no side effects, for working through reasoning before acting.",
			Sections: []Section{
				{Name: "content", Required: false},
			},
		},
		Handler: func(ctx *Context, args map[string][]string) (string, error) {
			return "", nil
		},
	}
}

func addKnowledgeSpec() *Spec {
	return &Spec{
		Schema: Schema{
			Name: "add_knowledge",
			Help: "Adds an entry to the shared knowledge base, visible to every node.",
			Sections: []Section{
				{Name: "content", Required: true},
				{Name: "title", Required: false},
				{Name: "tag", Required: false, AllowMultiple: true},
			},
		},
		Handler: func(ctx *Context, args map[string][]string) (string, error) {
			title := one(args, "title")
			if title == "" {
				title = strings.TrimSpace(one(args, "content"))
				if len(title) > 60 {
					title = title[:60] + "..."
				}
			}
			entry := knowledge.Entry{
				Title:           title,
				Content:         one(args, "content"),
				AuthorNodeTitle: ctx.Node.Title,
				Tags:            args["tag"],
				Timestamp:       time.Now().UTC().Format(time.RFC3339Nano),
			}
			if err := ctx.KB.AddEntry(entry); err != nil {
				return "", err
			}
			return "Knowledge entry recorded.", nil
		},
	}
}
