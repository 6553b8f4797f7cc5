package vocab

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// ParseMarkdown reads a phrase→replacement mapping from Markdown table rows.
// The first column is the source phrase and the second the replacement;
// header rows and rows with fewer than two cells are ignored. Multiple
// tables accumulate into one mapping; on duplicate phrases the first row
// wins.
func ParseMarkdown(source []byte) (map[string]string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(source))

	mapping := make(map[string]string)
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		// Header rows parse as TableHeader nodes, so TableRow only ever
		// yields body rows here.
		row, ok := n.(*east.TableRow)
		if !ok {
			return ast.WalkContinue, nil
		}
		cells := make([]string, 0, 2)
		for cell := row.FirstChild(); cell != nil && len(cells) < 2; cell = cell.NextSibling() {
			cells = append(cells, strings.TrimSpace(string(cell.Text(source))))
		}
		if len(cells) == 2 && cells[0] != "" && cells[1] != "" {
			if _, ok := mapping[cells[0]]; !ok {
				mapping[cells[0]] = cells[1]
			}
		}
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, fmt.Errorf("vocab: walk markdown: %w", err)
	}
	return mapping, nil
}
