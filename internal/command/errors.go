package command

import "fmt"

// CommandError is one parse, validation, or dispatch failure, carrying
// enough context to render a useful error report back to the LLM.
type CommandError struct {
	Command       string
	Message       string
	LineNumber    int
	IsSyntaxError bool
}

func (e CommandError) String() string {
	if e.LineNumber > 0 {
		return fmt.Sprintf("Command: %s at line %d\nMessage: %s", e.Command, e.LineNumber, e.Message)
	}
	return fmt.Sprintf("Command: %s\nMessage: %s", e.Command, e.Message)
}

// ParseResult is the outcome of parsing one `<<< ... >>>` block.
type ParseResult struct {
	CommandName    string
	Args           map[string][]string
	Errors         []CommandError
	HasSyntaxError bool
}

// Valid reports whether this block parsed with no errors at all.
func (r ParseResult) Valid() bool {
	return len(r.Errors) == 0
}

// GenerateErrorReport renders every error across results into the
// "### Errors report" block the engine surfaces to the LLM. Returns ""
// when there is nothing to report.
func GenerateErrorReport(results []ParseResult) string {
	var errs []CommandError
	for _, r := range results {
		errs = append(errs, r.Errors...)
	}
	if len(errs) == 0 {
		return ""
	}

	report := "### Errors report:\n"
	for i, e := range errs {
		report += fmt.Sprintf("#### Error %d\n%s\n\n", i+1, e.String())
	}

	var syntaxErrCommands []string
	for _, r := range results {
		if r.HasSyntaxError {
			line := 0
			if len(r.Errors) > 0 {
				line = r.Errors[0].LineNumber
			}
			if line > 0 {
				syntaxErrCommands = append(syntaxErrCommands, fmt.Sprintf("- %s at line %d", r.CommandName, line))
			} else {
				syntaxErrCommands = append(syntaxErrCommands, fmt.Sprintf("- %s", r.CommandName))
			}
		}
	}
	if len(syntaxErrCommands) > 0 {
		report += "Commands with syntax errors that will not be executed:\n"
		for _, c := range syntaxErrCommands {
			report += c + "\n"
		}
		report += "\nNo command in this message was executed; resend the commands with the syntax corrected.\n"
	}

	return report
}
