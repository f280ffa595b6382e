package detect

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

var (
	// horizontalWS collapses runs of spaces and tabs.
	horizontalWS = regexp.MustCompile(`[ \t]+`)
	// blankLines collapses runs of newlines to a single newline. Line
	// boundaries are kept because task phrases never cross them.
	blankLines = regexp.MustCompile(`\n\s*\n+`)
)

// markdown is the shared converter used for stripping. Parsing is
// stateless, so one instance is safe for concurrent scans.
var markdown = goldmark.New()

// Normalize prepares raw note text for extraction: markdown is stripped by
// walking the parsed AST and keeping only text content, then whitespace is
// collapsed. Case is preserved; the extractors depend on capitalization.
func Normalize(input string) string {
	src := []byte(input)
	doc := markdown.Parser().Parse(gmtext.NewReader(src))

	var buf bytes.Buffer
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				buf.Write(node.Segment.Value(src))
				if node.SoftLineBreak() || node.HardLineBreak() {
					buf.WriteByte('\n')
				}
			}
		case *ast.String:
			if entering {
				buf.Write(node.Value)
			}
		case *ast.AutoLink:
			if entering {
				buf.Write(node.URL(src))
			}
		default:
			// Block boundaries become line boundaries. Fenced code is
			// dropped: code is not note prose.
			if !entering && node.Type() == ast.TypeBlock {
				buf.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})

	out := horizontalWS.ReplaceAllString(buf.String(), " ")
	out = blankLines.ReplaceAllString(out, "\n")

	lines := strings.Split(out, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
