package markdown

import (
	"strings"
	"testing"
)

// TestSplitSections_TitleAndComments mirrors the artifact shape: an H1 with
// body text and an H2 comments block.
func TestSplitSections_TitleAndComments(t *testing.T) {
	input := `# My legion Y540 still serving me after 5 years

Bought this in 2020 during lockdown.

## Comments

- Great to hear!
- Solid machine.
`

	sections, err := SplitSections([]byte(input))
	if err != nil {
		t.Fatalf("SplitSections failed: %v", err)
	}
	if len(sections) != 2 {
		t.Fatalf("Expected 2 sections, got %d", len(sections))
	}

	if sections[0].Index != 0 {
		t.Errorf("Section 0 index: expected 0, got %d", sections[0].Index)
	}
	if sections[0].HeaderPath != "# My legion Y540 still serving me after 5 years" {
		t.Errorf("Section 0 HeaderPath: got %q", sections[0].HeaderPath)
	}
	if !strings.Contains(sections[0].Content, "Bought this in 2020") {
		t.Errorf("Section 0 missing body text")
	}
	if strings.Contains(sections[0].Content, "Great to hear") {
		t.Errorf("Section 0 should not contain comment text")
	}

	wantPath := "# My legion Y540 still serving me after 5 years > ## Comments"
	if sections[1].HeaderPath != wantPath {
		t.Errorf("Section 1 HeaderPath: expected %q, got %q", wantPath, sections[1].HeaderPath)
	}
	if !strings.Contains(sections[1].Content, "Solid machine.") {
		t.Errorf("Section 1 missing comment text")
	}
}

func TestSplitSections_NoHeaders(t *testing.T) {
	sections, err := SplitSections([]byte("just plain text\nwith no headers\n"))
	if err != nil {
		t.Fatalf("SplitSections failed: %v", err)
	}
	if len(sections) != 1 {
		t.Fatalf("Expected 1 section, got %d", len(sections))
	}
	if sections[0].HeaderPath != "" {
		t.Errorf("Expected empty header path, got %q", sections[0].HeaderPath)
	}
	if !strings.Contains(sections[0].Content, "just plain text") {
		t.Errorf("Section missing content")
	}
}

func TestSplitSections_MultipleH2(t *testing.T) {
	input := `# Review

Intro.

## Pros

Fast.

## Cons

Loud fans.
`

	sections, err := SplitSections([]byte(input))
	if err != nil {
		t.Fatalf("SplitSections failed: %v", err)
	}
	if len(sections) != 3 {
		t.Fatalf("Expected 3 sections, got %d", len(sections))
	}
	if sections[1].HeaderPath != "# Review > ## Pros" {
		t.Errorf("Section 1 HeaderPath: got %q", sections[1].HeaderPath)
	}
	if sections[2].HeaderPath != "# Review > ## Cons" {
		t.Errorf("Section 2 HeaderPath: got %q", sections[2].HeaderPath)
	}
	if !strings.Contains(sections[2].Content, "Loud fans.") {
		t.Errorf("Section 2 missing content")
	}

	for i, s := range sections {
		if s.Index != i {
			t.Errorf("Section %d has index %d", i, s.Index)
		}
	}
}

func TestSplitSections_StrippedArtifact(t *testing.T) {
	artifact := "---\nsource: reddit\nurl: x\nlaptop: y\n---\n\n# Title\n\nbody\n"

	sections, err := SplitSections(StripFrontMatter([]byte(artifact)))
	if err != nil {
		t.Fatalf("SplitSections failed: %v", err)
	}
	if len(sections) != 1 {
		t.Fatalf("Expected 1 section, got %d", len(sections))
	}
	if strings.Contains(sections[0].Content, "source: reddit") {
		t.Errorf("Front matter leaked into section content")
	}
}
