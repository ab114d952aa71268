package render

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// CodeBlock is a fenced code block found in a reply.
type CodeBlock struct {
	Language string
	Code     string
}

var markdownParser = goldmark.New().Parser()

// CodeBlocks returns the fenced code blocks of a Markdown document in
// document order.
func CodeBlocks(markdown string) []CodeBlock {
	source := []byte(markdown)
	doc := markdownParser.Parse(text.NewReader(source))

	var blocks []CodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fenced, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		var code bytes.Buffer
		lines := fenced.Lines()
		for i := 0; i < lines.Len(); i++ {
			segment := lines.At(i)
			code.Write(segment.Value(source))
		}
		blocks = append(blocks, CodeBlock{
			Language: string(fenced.Language(source)),
			Code:     strings.TrimRight(code.String(), "\n"),
		})
		return ast.WalkSkipChildren, nil
	})
	return blocks
}

// CopyText picks what --copy puts on the clipboard: the first fenced code
// block when the reply has one, otherwise the whole reply.
func CopyText(reply string) string {
	for _, block := range CodeBlocks(reply) {
		if strings.TrimSpace(block.Code) != "" {
			return block.Code
		}
	}
	return strings.TrimSpace(reply)
}
