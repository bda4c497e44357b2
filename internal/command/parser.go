package command

import (
	"regexp"
	"strings"
)

// Parser is the deterministic, side-effect-free two-pass scanner for the
// `<<< name /// section ... >>>` block syntax. Parsing never mutates the
// tree; dispatch (executing a ParseResult's command) is a separate step.
type Parser struct {
	registry *Registry
}

// NewParser creates a parser bound to registry.
func NewParser(registry *Registry) *Parser {
	return &Parser{registry: registry}
}

var openTagPattern = regexp.MustCompile(`^<<<\s*(\w+)`)
var sectionHeaderPattern = regexp.MustCompile(`^///(\w+)\s*(.*)$`)

type tagBlock struct {
	openLine  int
	closeLine int
}

// ParseText parses every command block out of text. If any tag-pairing
// syntax error exists, the full, unexecutable error report is returned
// as the single result and no command in the message executes.
// Otherwise each well-formed block is parsed independently; a block with
// its own section/validation errors still doesn't block the others.
func (p *Parser) ParseText(text string) []ParseResult {
	blocks, syntaxErrors := p.checkBlockSyntax(text)
	if len(syntaxErrors) > 0 {
		return []ParseResult{{Errors: syntaxErrors, HasSyntaxError: true}}
	}

	lines := strings.Split(text, "\n")
	var results []ParseResult
	for _, b := range blocks {
		openLine := strings.TrimSpace(lines[b.openLine])
		m := openTagPattern.FindStringSubmatch(openLine)
		if m == nil {
			continue
		}
		commandName := m[1]
		blockContent := strings.Join(lines[b.openLine+1:b.closeLine], "\n")

		result := ParseResult{CommandName: commandName}
		spec := p.registry.Get(commandName)
		if spec == nil {
			result.Errors = []CommandError{{
				Command:    commandName,
				Message:    "Unknown command: '" + commandName + "'",
				LineNumber: b.openLine + 1,
			}}
			results = append(results, result)
			continue
		}

		args, errs := parseSections(blockContent, b.openLine+1, spec.Schema.RequiredSections(), commandName, &spec.Schema)

		if spec.Transform != nil {
			args = spec.Transform(args)
		}

		if spec.Validate != nil {
			for _, msg := range spec.Validate(args) {
				errs = append(errs, CommandError{Command: commandName, Message: msg, LineNumber: b.openLine + 1})
			}
		}

		result.Args = args
		result.Errors = errs
		results = append(results, result)
	}

	return p.enforceLastInMessage(results)
}

// enforceLastInMessage rejects a should_be_last_in_message command that
// is not the final valid command in the message (spec step 4: "A command
// whose schema says should_be_last_in_message must be the final valid
// command in the message; violations are rejected with an error"). Only
// commands that otherwise parsed cleanly are considered: a
// should-be-last command is the violator, not whatever came after it.
func (p *Parser) enforceLastInMessage(results []ParseResult) []ParseResult {
	lastValid := -1
	for i, r := range results {
		if r.Valid() {
			lastValid = i
		}
	}

	for i := range results {
		r := &results[i]
		if !r.Valid() || i == lastValid {
			continue
		}
		spec := p.registry.Get(r.CommandName)
		if spec == nil || !spec.Schema.ShouldBeLastInMessage {
			continue
		}
		r.Errors = append(r.Errors, CommandError{
			Command: r.CommandName,
			Message: "'" + r.CommandName + "' must be the last command in the message, but other commands follow it",
		})
	}

	return results
}

// checkBlockSyntax scans for `<<<`/`>>>` tag pairing problems: duplicate
// openers, duplicate closers, unopened closers, and unclosed openers.
// Mirrors the original tag-pairing algorithm exactly, including which
// index is blamed for each class of error.
func (p *Parser) checkBlockSyntax(text string) ([]tagBlock, []CommandError) {
	lines := strings.Split(text, "\n")

	latestOpen := -1
	latestClose := -1
	var blocks []tagBlock
	var dupOpen, dupClose, unclosedOpen, unopenedClose []int

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "<<<"):
			if latestOpen > latestClose {
				dupOpen = append(dupOpen, latestOpen)
			}
			latestOpen = i
		case strings.HasPrefix(line, ">>>"):
			switch {
			case latestClose > latestOpen:
				dupClose = append(dupClose, i)
			case latestOpen == -1:
				unopenedClose = append(unopenedClose, i)
			default:
				latestClose = i
				blocks = append(blocks, tagBlock{openLine: latestOpen, closeLine: latestClose})
			}
		}
	}

	if latestOpen > latestClose {
		unclosedOpen = append(unclosedOpen, latestOpen)
	}

	var errs []CommandError
	for _, idx := range dupOpen {
		errs = append(errs, CommandError{
			Command:       lines[idx],
			Message:       "Duplicate opening tags. Other opening tags coming after it. This tag did not trigger a command.",
			LineNumber:    idx,
			IsSyntaxError: true,
		})
	}
	for _, idx := range dupClose {
		errs = append(errs, CommandError{
			Command:       lines[idx],
			Message:       "Duplicate closing tags. Other opening tags coming before it. This tag did not trigger a command.",
			LineNumber:    idx,
			IsSyntaxError: true,
		})
	}
	for _, idx := range unclosedOpen {
		errs = append(errs, CommandError{
			Command:       lines[idx],
			Message:       "This command tag was never closed in the message. This tag did not trigger a command.",
			LineNumber:    idx,
			IsSyntaxError: true,
		})
	}
	for _, idx := range unopenedClose {
		errs = append(errs, CommandError{
			Command:       lines[idx],
			Message:       "This command tag does not have corresponding opening tag coming before it. This tag did not trigger a command.",
			LineNumber:    idx,
			IsSyntaxError: true,
		})
	}

	return blocks, errs
}

// parseSections extracts `///name value` sections from a block's body,
// folding repeats into a sequence. Required sections that are missing or
// empty produce an error; empty, non-required sections are simply
// dropped.
func parseSections(content string, lineNumber int, required []string, commandName string, schema *Schema) (map[string][]string, []CommandError) {
	var errs []CommandError
	found := make(map[string][]string)

	lines := strings.Split(content, "\n")
	var curName string
	var curBuf []string
	flush := func() {
		if curName == "" {
			return
		}
		value := strings.TrimSpace(strings.Join(curBuf, "\n"))
		found[curName] = append(found[curName], value)
	}
	for _, line := range lines {
		if m := sectionHeaderPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			flush()
			curName = m[1]
			curBuf = nil
			if m[2] != "" {
				curBuf = append(curBuf, m[2])
			}
			continue
		}
		if curName != "" {
			curBuf = append(curBuf, line)
		}
	}
	flush()

	for _, name := range required {
		values, ok := found[name]
		if !ok || len(values) == 0 || (len(values) == 1 && values[0] == "") {
			errs = append(errs, CommandError{
				Command:    commandName,
				Message:    "Missing '///" + name + "' section in " + commandName + " command",
				LineNumber: lineNumber,
			})
		}
	}

	result := make(map[string][]string)
	for name, values := range found {
		var nonEmpty []string
		for _, v := range values {
			if v != "" {
				nonEmpty = append(nonEmpty, v)
			}
		}
		if len(nonEmpty) == 0 {
			continue
		}
		if len(nonEmpty) > 1 && schema != nil && !schema.AllowsMultiple(name) {
			errs = append(errs, CommandError{
				Command:    commandName,
				Message:    "Section '///" + name + "' was repeated but " + commandName + " does not allow multiple values for it",
				LineNumber: lineNumber,
			})
		}
		result[name] = nonEmpty
	}

	return result, errs
}
