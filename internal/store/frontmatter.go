package store

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterFence = "---"

// ParseFrontmatter splits a file's content into its YAML frontmatter (the
// block between the leading "---" fences) and the remaining body. Absent
// frontmatter yields a nil meta map and the original content as the body.
func ParseFrontmatter(data []byte) (meta map[string]interface{}, body string, err error) {
	content := string(data)
	trimmed := strings.TrimLeft(content, "\n")
	if !strings.HasPrefix(trimmed, frontmatterFence) {
		return nil, content, nil
	}

	rest := strings.TrimPrefix(trimmed, frontmatterFence)
	rest = strings.TrimPrefix(rest, "\n")

	closeIdx := strings.Index(rest, "\n"+frontmatterFence)
	if closeIdx == -1 {
		return nil, content, nil
	}

	rawYAML := rest[:closeIdx]
	remainder := rest[closeIdx+len("\n"+frontmatterFence):]
	remainder = strings.TrimPrefix(remainder, "\n")

	m := make(map[string]interface{})
	if err := yaml.Unmarshal([]byte(rawYAML), &m); err != nil {
		return nil, content, fmt.Errorf("frontmatter: invalid YAML: %w", err)
	}

	return m, remainder, nil
}

// WriteFrontmatter renders meta as a YAML frontmatter block followed by
// body.
func WriteFrontmatter(meta map[string]interface{}, body string) ([]byte, error) {
	rawYAML, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("frontmatter: marshal failed: %w", err)
	}

	var b strings.Builder
	b.WriteString(frontmatterFence)
	b.WriteString("\n")
	b.Write(rawYAML)
	b.WriteString(frontmatterFence)
	b.WriteString("\n")
	b.WriteString(body)

	return []byte(b.String()), nil
}
