package markdown

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"
)

// Section is one header-delimited slice of an artifact. Sections are what
// gets embedded: a whole post in one vector dilutes the comment signal, so
// the title/body block and the comments block are indexed separately.
type Section struct {
	Index      int    // position within the artifact (0, 1, 2...)
	HeaderPath string // "# Title" or "# Title > ## Comments"
	Content    string // section text, heading line included
}

// headerRef is a flattened TOC entry in document order.
type headerRef struct {
	id   string
	path string
}

var sectionParser = goldmark.New(
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// SplitSections splits markdown at H1 and H2 boundaries. Each section keeps
// its header hierarchy as context for retrieval. A document without headers
// comes back as a single section.
func SplitSections(source []byte) ([]Section, error) {
	doc := sectionParser.Parser().Parse(text.NewReader(source))

	tree, err := toc.Inspect(doc, source,
		toc.MinDepth(1),
		toc.MaxDepth(2),
		toc.Compact(true),
	)
	if err != nil {
		return nil, fmt.Errorf("inspect headings: %w", err)
	}

	refs := flattenItems(tree.Items, "")
	if len(refs) == 0 {
		return []Section{{Index: 0, Content: strings.TrimSpace(string(source))}}, nil
	}

	// Resolve each heading to its position in the source.
	starts := make([]int, len(refs))
	for i, ref := range refs {
		node := headingByID(doc, ref.id)
		if node == nil || node.Lines().Len() == 0 {
			starts[i] = -1
			continue
		}
		starts[i] = node.Lines().At(0).Start
	}

	var sections []Section
	for i, ref := range refs {
		if starts[i] < 0 {
			continue
		}
		end := len(source)
		for j := i + 1; j < len(refs); j++ {
			if starts[j] >= 0 {
				end = starts[j]
				break
			}
		}

		// Heading line start: back up to the beginning of the line so the
		// "#" marker is part of the section.
		start := starts[i]
		for start > 0 && source[start-1] != '\n' {
			start--
		}

		content := strings.TrimSpace(string(source[start:end]))
		if content == "" {
			continue
		}
		sections = append(sections, Section{
			Index:      len(sections),
			HeaderPath: ref.path,
			Content:    content,
		})
	}

	return sections, nil
}

// flattenItems walks the TOC tree into document order with header paths.
func flattenItems(items toc.Items, parentPath string) []headerRef {
	var refs []headerRef
	for _, item := range items {
		depth := 1
		if parentPath != "" {
			depth = 2
		}
		label := strings.Repeat("#", depth) + " " + string(item.Title)

		path := label
		if parentPath != "" {
			path = parentPath + " > " + label
		}

		refs = append(refs, headerRef{id: string(item.ID), path: path})
		refs = append(refs, flattenItems(item.Items, path)...)
	}
	return refs
}

// headingByID locates a heading node by its auto-generated ID.
func headingByID(root ast.Node, id string) ast.Node {
	var found ast.Node
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindHeading {
			return ast.WalkContinue, nil
		}
		if attr, ok := n.AttributeString("id"); ok {
			if raw, ok := attr.([]byte); ok && string(raw) == id {
				found = n
				return ast.WalkStop, nil
			}
		}
		return ast.WalkContinue, nil
	})
	return found
}
