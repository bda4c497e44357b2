package problem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IngestDocument reads a plain-text or markdown file from disk and returns
// an external Artifact ready to be registered through the store's
// AddExternalFile. Other formats (PDF/DOCX/EML, clipboard, URL fetch) are
// out of scope here; only .md and .txt are read directly.
func IngestDocument(path string) (*Artifact, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".md" && ext != ".txt" {
		return nil, fmt.Errorf("ingest: unsupported extension %q (only .md and .txt are read directly)", ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: failed to read %s: %w", path, err)
	}

	name := filepath.Base(path)
	return &Artifact{Name: name, Content: string(data), IsExternal: true}, nil
}
