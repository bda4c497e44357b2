package store

import "testing"

func TestFrontmatter_RoundTrip(t *testing.T) {
	meta := map[string]interface{}{"title": "Root"}
	data, err := WriteFrontmatter(meta, "Hello, world.")
	if err != nil {
		t.Fatalf("WriteFrontmatter: %v", err)
	}

	gotMeta, body, err := ParseFrontmatter(data)
	if err != nil {
		t.Fatalf("ParseFrontmatter: %v", err)
	}
	if gotMeta["title"] != "Root" {
		t.Errorf("title = %v, want Root", gotMeta["title"])
	}
	if body != "Hello, world." {
		t.Errorf("body = %q", body)
	}
}

func TestParseFrontmatter_AbsentFrontmatterReturnsWholeBody(t *testing.T) {
	content := "Just plain content, no frontmatter."
	meta, body, err := ParseFrontmatter([]byte(content))
	if err != nil {
		t.Fatalf("ParseFrontmatter: %v", err)
	}
	if meta != nil {
		t.Errorf("expected nil meta, got %v", meta)
	}
	if body != content {
		t.Errorf("body = %q, want %q", body, content)
	}
}
